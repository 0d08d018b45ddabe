// Package energy computes daily calorie requirements from a user profile.
// All functions are pure arithmetic; physiologically implausible inputs are
// a caller responsibility.
package energy

import (
	"fitia-backend/internal/user"
)

// activityMultipliers maps activity levels to their TDEE multiplier.
var activityMultipliers = map[user.ActivityLevel]float64{
	user.ActivitySedentary:  1.2,
	user.ActivityLight:      1.375,
	user.ActivityModerate:   1.55,
	user.ActivityVeryActive: 1.725,
}

// Requirement is the computed energy need for one user. It is never stored
// on its own, only embedded in a weekly plan.
type Requirement struct {
	BMR            float64 `json:"bmr"`
	TDEE           float64 `json:"tdee"`
	TargetCalories int     `json:"target_calories"`
}

// BMR calculates Basal Metabolic Rate using the Harris-Benedict revised
// formula. Any gender other than Male uses the female coefficients.
func BMR(p user.Profile) float64 {
	if p.Gender == user.GenderMale {
		return 88.362 + (13.397 * p.Weight) + (4.799 * p.Height) - (5.677 * float64(p.Age))
	}
	return 447.593 + (9.247 * p.Weight) + (3.098 * p.Height) - (4.330 * float64(p.Age))
}

// TDEE scales BMR by the activity multiplier. An unrecognized level falls
// back to the Sedentary multiplier rather than failing.
func TDEE(bmr float64, level user.ActivityLevel) float64 {
	mult, ok := activityMultipliers[level]
	if !ok {
		mult = 1.2
	}
	return bmr * mult
}

// AdjustForGoal applies the goal offset: -500 kcal to lose weight, +300 to
// gain muscle, unchanged otherwise.
func AdjustForGoal(tdee float64, goal user.Goal) float64 {
	switch goal {
	case user.GoalLoseWeight:
		return tdee - 500
	case user.GoalGainMuscle:
		return tdee + 300
	}
	return tdee
}

// Calculate runs the full pipeline. The daily target is truncated toward
// zero, not rounded.
func Calculate(p user.Profile) Requirement {
	bmr := BMR(p)
	tdee := TDEE(bmr, p.ActivityLevel)
	return Requirement{
		BMR:            bmr,
		TDEE:           tdee,
		TargetCalories: int(AdjustForGoal(tdee, p.Goal)),
	}
}
