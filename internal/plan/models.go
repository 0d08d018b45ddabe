package plan

import "context"

// Meal is one entry in a day's meal list. After a substitution the entry is
// replaced with a narrowed shape carrying only recipe_id, name, calories and
// meal_type; consumers must tolerate the missing macro and image fields.
type Meal struct {
	MealType    string   `json:"meal_type" firestore:"meal_type"`
	Name        string   `json:"name" firestore:"name"`
	Calories    float64  `json:"calories" firestore:"calories"`
	Protein     float64  `json:"protein,omitempty" firestore:"protein,omitempty"`
	Carbs       float64  `json:"carbs,omitempty" firestore:"carbs,omitempty"`
	Fats        float64  `json:"fats,omitempty" firestore:"fats,omitempty"`
	Ingredients []string `json:"ingredients,omitempty" firestore:"ingredients,omitempty"`
	PrepTime    string   `json:"prepTime,omitempty" firestore:"prepTime,omitempty"`
	ID          string   `json:"id,omitempty" firestore:"id,omitempty"`
	Image       string   `json:"image,omitempty" firestore:"image,omitempty"`
	RecipeID    string   `json:"recipe_id,omitempty" firestore:"recipe_id,omitempty"`
}

// Day is one weekday of a weekly plan. TotalCalories must equal the sum of
// the meal calories after every mutation; the substitution path maintains it
// with a signed delta rather than a resum. TargetCalories is only set in
// custom (template) mode.
type Day struct {
	Day            string  `json:"day" firestore:"day"`
	TotalCalories  float64 `json:"total_calories" firestore:"total_calories"`
	TargetCalories int     `json:"target_calories,omitempty" firestore:"target_calories,omitempty"`
	Meals          []Meal  `json:"meals" firestore:"meals"`
}

// WeeklyPlan is the persisted unit: one document per generation. A failed
// generation yields an empty Days slice, never a missing document.
type WeeklyPlan struct {
	BMR            int   `json:"bmr" firestore:"bmr"`
	TDEE           int   `json:"tdee" firestore:"tdee"`
	TargetCalories int   `json:"target_calories" firestore:"target_calories"`
	Days           []Day `json:"plan" firestore:"plan"`
}

// AlternativeRecipe is a replacement candidate produced by a recipe source.
// It lives only for the duration of one substitution.
type AlternativeRecipe struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Type     string  `json:"type"`
}

// SwapResult is the outcome of a meal substitution. Every failure short of a
// collaborator transport error is reported here, not as a Go error.
type SwapResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	NewMeal *Meal  `json:"new_meal,omitempty"`
}

// PlanDocument pairs a stored weekly plan with its document identity.
type PlanDocument struct {
	ID   string
	Plan WeeklyPlan
}

// Store is the subset of the document store the plan engine needs. The
// sequence returned by GetUserPlans carries no ordering guarantee.
type Store interface {
	GetUserPlans(ctx context.Context, userID string) ([]PlanDocument, error)
	AddPlan(ctx context.Context, userID string, p WeeklyPlan) (string, error)
	UpdatePlanField(ctx context.Context, userID, planID, field string, value any) error
}

// RecipeSource supplies alternative recipes for substitutions. A nil recipe
// with a nil error means no alternative is available.
type RecipeSource interface {
	FindAlternative(ctx context.Context, mealType string, excludeIDs, keywords []string) (*AlternativeRecipe, error)
}
