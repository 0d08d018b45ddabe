package user

// Gender is required by the energy calculator; profiles without it are
// rejected before plan generation, never defaulted.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Goal drives the calorie adjustment on top of TDEE.
type Goal string

const (
	GoalLoseWeight Goal = "Lose Weight"
	GoalMaintain   Goal = "Maintain Weight"
	GoalGainMuscle Goal = "Gain Muscle"
)

// ActivityLevel selects the TDEE multiplier.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "Sedentary"
	ActivityLight      ActivityLevel = "Lightly Active"
	ActivityModerate   ActivityLevel = "Moderately Active"
	ActivityVeryActive ActivityLevel = "Very Active"
)

// DietType constrains the kind of dishes the plan generator suggests.
type DietType string

const (
	DietBalanced    DietType = "Balanced"
	DietHighProtein DietType = "High Protein"
	DietLowCarb     DietType = "Low Carb"
	DietKeto        DietType = "Keto"
	DietLowFat      DietType = "Low Fat"
	DietVegan       DietType = "Vegan"
)

// PreparationStyle selects between full recipes and simple ingredient lists.
type PreparationStyle string

const (
	PrepRecipes     PreparationStyle = "Recipes"
	PrepIngredients PreparationStyle = "Ingredients"
)

// VarietyLevel controls how much repetition the generated week may have.
type VarietyLevel string

const (
	VarietyHigh   VarietyLevel = "High"
	VarietyMedium VarietyLevel = "Medium"
	VarietyLow    VarietyLevel = "Low"
)

// PlanningMode decides whether the plan content is AI-authored (Automatic)
// or a blank template the user fills in themselves (Custom).
type PlanningMode string

const (
	ModeAutomatic PlanningMode = "Automatic"
	ModeCustom    PlanningMode = "Custom"
)

// Profile holds the physiological and preference data a plan is computed
// from. It is immutable for the duration of a request.
type Profile struct {
	ID                   string           `json:"id,omitempty" firestore:"-"`
	Email                string           `json:"email" firestore:"email"`
	Name                 string           `json:"name" firestore:"name"`
	Age                  int              `json:"age" firestore:"age"`
	Weight               float64          `json:"weight" firestore:"weight"`
	Height               float64          `json:"height" firestore:"height"`
	Gender               Gender           `json:"gender" firestore:"gender"`
	Goal                 Goal             `json:"goal" firestore:"goal"`
	ActivityLevel        ActivityLevel    `json:"activity_level" firestore:"activity_level"`
	Country              string           `json:"country" firestore:"country"`
	Region               string           `json:"region" firestore:"region"`
	IsOnboardingComplete bool             `json:"is_onboarding_complete" firestore:"is_onboarding_complete"`
	DietType             DietType         `json:"diet_type" firestore:"diet_type"`
	FoodsLike            []string         `json:"foods_like" firestore:"foods_like"`
	MealsPerDay          []string         `json:"meals_per_day" firestore:"meals_per_day"`
	PreparationStyle     PreparationStyle `json:"preparation_style" firestore:"preparation_style"`
	VarietyLevel         VarietyLevel     `json:"variety_level" firestore:"variety_level"`
	PlanningMode         PlanningMode     `json:"planning_mode" firestore:"planning_mode"`
}
