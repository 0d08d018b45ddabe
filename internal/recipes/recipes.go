// Package recipes supplies alternative recipes for meal substitutions.
package recipes

import (
	"context"

	"fitia-backend/internal/plan"
)

// Unimplemented is the default operational recipe source: there is no recipe
// catalog upstream yet, so every lookup reports that no alternative exists.
// The substitution path is expected to fail cleanly under this source.
//
// TODO: back this with AI single-recipe generation once the swap flow needs
// more than the full-plan regenerate button.
type Unimplemented struct{}

// FindAlternative always reports that no alternative is available.
func (Unimplemented) FindAlternative(ctx context.Context, mealType string, excludeIDs, keywords []string) (*plan.AlternativeRecipe, error) {
	return nil, nil
}
