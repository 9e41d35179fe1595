package nutrition

import (
	"fmt"
	"math"
)

// MinCalorieTarget is the lowest daily target ComputeGoals will return.
// Lower raw targets are clamped and reported through CalorieFloorApplied.
const MinCalorieTarget = 1200

// Energy per gram of each macro.
const (
	kcalPerGramCarb    = 4
	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
)

// waterMlPerKg is the baseline daily intake recommendation.
const waterMlPerKg = 35

// Goals is derived from a Profile and never patched in place.
type Goals struct {
	BMR                 int         `json:"bmr"`
	MaintenanceCalories int         `json:"maintenance_calories"`
	CalorieTarget       int         `json:"calorie_target"`
	RawCalorieTarget    int         `json:"raw_calorie_target"`
	CalorieFloorApplied bool        `json:"calorie_floor_applied"`
	ProteinGrams        int         `json:"protein_g"`
	CarbGrams           int         `json:"carbs_g"`
	FatGrams            int         `json:"fat_g"`
	BMI                 float64     `json:"bmi"`
	BMICategory         BMICategory `json:"bmi_category"`
	WaterTargetMl       int         `json:"water_target_ml"`
}

// BMR computes basal metabolic rate (kcal/day) via Mifflin-St Jeor.
func BMR(p Profile) (float64, error) {
	base := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	switch p.Sex {
	case Male:
		return base + 5, nil
	case Female:
		return base - 161, nil
	}
	return 0, fmt.Errorf("%w: unknown sex %q", ErrInvalidInput, string(p.Sex))
}

// TDEE is BMR scaled by the activity multiplier, unrounded.
func TDEE(p Profile) (float64, error) {
	bmr, err := BMR(p)
	if err != nil {
		return 0, err
	}
	mult, err := p.ActivityLevel.Multiplier()
	if err != nil {
		return 0, err
	}
	return bmr * mult, nil
}

// TargetCalories returns round(TDEE + goal modifier). No floor is applied
// here; an aggressive deficit can yield a low or negative number.
func TargetCalories(p Profile) (int, error) {
	tdee, err := TDEE(p)
	if err != nil {
		return 0, err
	}
	mod, err := p.WeightGoal.CalorieModifier()
	if err != nil {
		return 0, err
	}
	return int(math.Round(tdee + float64(mod))), nil
}

// Macros are daily gram targets.
type Macros struct {
	ProteinGrams int `json:"protein_g"`
	CarbGrams    int `json:"carbs_g"`
	FatGrams     int `json:"fat_g"`
}

// SplitMacros allocates 40% carbs, 30% protein and 30% fat. Each figure is
// rounded on its own, so the grams need not re-sum to calorieTarget.
func SplitMacros(calorieTarget int) Macros {
	kcal := float64(calorieTarget)
	return Macros{
		CarbGrams:    int(math.Round(kcal * 0.4 / kcalPerGramCarb)),
		ProteinGrams: int(math.Round(kcal * 0.3 / kcalPerGramProtein)),
		FatGrams:     int(math.Round(kcal * 0.3 / kcalPerGramFat)),
	}
}

// WaterTarget returns the daily water target in mL, rounded half-up to the
// nearest 100. Non-positive weights give 0.
func WaterTarget(weightKg float64) int {
	if weightKg <= 0 {
		return 0
	}
	return int(math.Round(weightKg*waterMlPerKg/100)) * 100
}

// ComputeGoals validates p and derives the full goal set from it.
func ComputeGoals(p Profile) (Goals, error) {
	if err := p.Validate(); err != nil {
		return Goals{}, err
	}

	bmr, err := BMR(p)
	if err != nil {
		return Goals{}, err
	}
	tdee, err := TDEE(p)
	if err != nil {
		return Goals{}, err
	}
	raw, err := TargetCalories(p)
	if err != nil {
		return Goals{}, err
	}

	target := raw
	floored := false
	if target < MinCalorieTarget {
		target = MinCalorieTarget
		floored = true
	}

	macros := SplitMacros(target)
	// Validate already guarantees positive height and weight.
	bmi, _ := ComputeBMI(p.HeightCm, p.WeightKg)

	return Goals{
		BMR:                 int(math.Round(bmr)),
		MaintenanceCalories: int(math.Round(tdee)),
		CalorieTarget:       target,
		RawCalorieTarget:    raw,
		CalorieFloorApplied: floored,
		ProteinGrams:        macros.ProteinGrams,
		CarbGrams:           macros.CarbGrams,
		FatGrams:            macros.FatGrams,
		BMI:                 bmi.Value,
		BMICategory:         bmi.Category,
		WaterTargetMl:       WaterTarget(p.WeightKg),
	}, nil
}
