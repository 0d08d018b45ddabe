package plan

import (
	"context"
	"fmt"
)

const (
	msgNoPlan        = "No active plan found to update."
	msgNoAlternative = "Could not find a suitable alternative recipe."
)

// Substituter performs point-edits on an already-persisted plan. The
// read-modify-write sequence is not transactional: two concurrent
// substitutions on the same plan race and the second writer's full-field
// overwrite wins. That lost-update behavior is accepted and tested, not
// hidden.
type Substituter struct {
	store   Store
	recipes RecipeSource
}

// NewSubstituter creates a Substituter over the given collaborators.
func NewSubstituter(store Store, recipes RecipeSource) *Substituter {
	return &Substituter{store: store, recipes: recipes}
}

// UpdateLatestPlanMeal replaces the first meal of the given type in the
// user's latest plan with an alternative from the recipe source, keeping the
// owning day's calorie total consistent via a signed delta. mealType is
// matched case-sensitively; callers capitalize it beforehand.
//
// "Latest" is the last element of whatever sequence the store returns. The
// store gives no ordering guarantee, so this is a weak policy, kept as-is.
//
// A Go error is returned only for collaborator transport failures; every
// domain-level failure comes back as an unsuccessful SwapResult.
func (s *Substituter) UpdateLatestPlanMeal(ctx context.Context, userID, mealType string, keywords []string) (SwapResult, error) {
	docs, err := s.store.GetUserPlans(ctx, userID)
	if err != nil {
		return SwapResult{}, fmt.Errorf("failed to load plans for user %s: %w", userID, err)
	}
	if len(docs) == 0 {
		return SwapResult{Success: false, Message: msgNoPlan}, nil
	}

	latest := docs[len(docs)-1]
	days := latest.Plan.Days

	for di := range days {
		for mi := range days[di].Meals {
			current := days[di].Meals[mi]
			if current.MealType != mealType {
				continue
			}

			alt, err := s.recipes.FindAlternative(ctx, mealType, []string{current.RecipeID}, keywords)
			if err != nil {
				return SwapResult{}, fmt.Errorf("failed to find alternative for %s: %w", mealType, err)
			}
			if alt == nil {
				// First match decides: no alternative means stop, not keep
				// scanning later meals or days.
				return SwapResult{Success: false, Message: msgNoAlternative}, nil
			}

			days[di].Meals[mi] = Meal{
				RecipeID: alt.ID,
				Name:     alt.Name,
				Calories: alt.Calories,
				MealType: alt.Type,
			}
			// Delta, not resum: applying it twice to the same slot without
			// the original baseline would drift, which is why the write
			// below persists the mutated plan immediately.
			days[di].TotalCalories += alt.Calories - current.Calories

			if err := s.store.UpdatePlanField(ctx, userID, latest.ID, "plan", days); err != nil {
				return SwapResult{}, fmt.Errorf("failed to persist updated plan %s: %w", latest.ID, err)
			}

			newMeal := days[di].Meals[mi]
			return SwapResult{
				Success: true,
				Message: fmt.Sprintf("Updated your %s to: %s", mealType, alt.Name),
				NewMeal: &newMeal,
			}, nil
		}
	}

	return SwapResult{Success: false, Message: msgNoAlternative}, nil
}
