package nutrition

import "math"

// BMICategory is the WHO weight class for a BMI value.
type BMICategory string

const (
	Underweight      BMICategory = "underweight"
	Normal           BMICategory = "normal"
	Overweight       BMICategory = "overweight"
	Obese            BMICategory = "obese"
	BMINotApplicable BMICategory = "not applicable"
)

// BMI is a body mass index rounded to one decimal place.
type BMI struct {
	Value    float64     `json:"bmi"`
	Category BMICategory `json:"category"`
}

// ComputeBMI returns ok=false and the not-applicable result when height or
// weight is not positive. The category is taken from the rounded value, so
// 24.96 reports as 25.0 and overweight.
func ComputeBMI(heightCm, weightKg float64) (BMI, bool) {
	if heightCm <= 0 || weightKg <= 0 {
		return BMI{Value: 0, Category: BMINotApplicable}, false
	}
	m := heightCm / 100
	v := math.Round(weightKg/(m*m)*10) / 10
	return BMI{Value: v, Category: classifyBMI(v)}, true
}

func classifyBMI(v float64) BMICategory {
	switch {
	case v < 18.5:
		return Underweight
	case v < 25:
		return Normal
	case v < 30:
		return Overweight
	default:
		return Obese
	}
}
