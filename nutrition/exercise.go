package nutrition

import "math"

// Exercise is an activity with its Metabolic Equivalent of Task.
type Exercise struct {
	Name string  `json:"name" yaml:"name"`
	MET  float64 `json:"met"  yaml:"met"`
}

// CaloriesBurned estimates kcal spent on ex:
// round(minutes * (MET * 3.5 * kg) / 200). Non-positive duration or weight
// yields 0.
func CaloriesBurned(ex Exercise, durationMinutes int, weightKg float64) int {
	if durationMinutes <= 0 || weightKg <= 0 {
		return 0
	}
	kcal := float64(durationMinutes) * (ex.MET * 3.5 * weightKg) / 200
	return int(math.Round(kcal))
}
