// CLI for the nutrition calculator: compute daily goals for a profile, or the
// calories burned by an activity, without a server or database.
// Usage:
//
//	go run ./cmd/goals compute --age 30 --sex male --height 180 --weight 80 --activity moderate --goal maintain
//	go run ./cmd/goals burned --exercise "Running (jogging)" --minutes 30 --weight 70
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lg/diet-tracker-api/nutrition"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "goals",
		Short:         "Nutrition goal calculator",
		SilenceUsage: true,
	}
	root.AddCommand(newComputeCmd(), newBurnedCmd())
	return root
}

func newComputeCmd() *cobra.Command {
	var (
		p        nutrition.Profile
		sex      string
		activity string
		goal     string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute BMR, calorie target, macros, BMI and water target",
		Long: `Compute daily nutrition goals from a body profile.

BMR uses Mifflin-St Jeor. The calorie target is BMR x activity multiplier
plus the goal modifier (-500 lose, +500 gain), floored at 1200 kcal.

Activity levels: sedentary, light, moderate, active, veryActive
Goals:           lose, maintain, gain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Sex = nutrition.Sex(sex)
			p.ActivityLevel = nutrition.ActivityLevel(activity)
			p.WeightGoal = nutrition.WeightGoal(goal)

			g, err := nutrition.ComputeGoals(p)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), g)
			}
			printGoals(cmd.OutOrStdout(), g)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&p.Age, "age", 0, "age in years")
	f.StringVar(&sex, "sex", "", "male or female")
	f.Float64Var(&p.HeightCm, "height", 0, "height in cm")
	f.Float64Var(&p.WeightKg, "weight", 0, "weight in kg")
	f.StringVar(&activity, "activity", "moderate", "activity level")
	f.StringVar(&goal, "goal", "maintain", "weight goal")
	f.BoolVar(&asJSON, "json", false, "print goals as JSON")
	for _, name := range []string{"age", "sex", "height", "weight"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newBurnedCmd() *cobra.Command {
	var (
		exercise string
		met      float64
		minutes  int
		weight   float64
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "burned",
		Short: "Estimate calories burned by an activity",
		Long: `Estimate calories burned: minutes x (MET x 3.5 x kg) / 200.

Pass --exercise to look up a catalog activity, or --met for anything else.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := resolveExercise(exercise, met)
			if err != nil {
				return err
			}
			kcal := nutrition.CaloriesBurned(ex, minutes, weight)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"exercise":         ex.Name,
					"met":              ex.MET,
					"duration_minutes": minutes,
					"weight_kg":        weight,
					"calories_burned":  kcal,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (MET %.1f), %d min at %.1f kg: %d kcal\n",
				ex.Name, ex.MET, minutes, weight, kcal)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&exercise, "exercise", "", "catalog exercise name")
	f.Float64Var(&met, "met", 0, "MET value for activities not in the catalog")
	f.IntVar(&minutes, "minutes", 0, "duration in minutes")
	f.Float64Var(&weight, "weight", 0, "body weight in kg")
	f.BoolVar(&asJSON, "json", false, "print result as JSON")
	cmd.MarkFlagsOneRequired("exercise", "met")
	_ = cmd.MarkFlagRequired("minutes")
	_ = cmd.MarkFlagRequired("weight")
	return cmd
}

// resolveExercise prefers an explicit MET over the catalog lookup.
func resolveExercise(name string, met float64) (nutrition.Exercise, error) {
	if met > 0 {
		if name == "" {
			name = "Custom activity"
		}
		return nutrition.Exercise{Name: name, MET: met}, nil
	}
	catalog, err := nutrition.DefaultCatalog()
	if err != nil {
		return nutrition.Exercise{}, err
	}
	ex, ok := catalog.Exercise(name)
	if !ok {
		return nutrition.Exercise{}, fmt.Errorf("unknown exercise %q; pass --met for custom activities", name)
	}
	return ex, nil
}

func printGoals(w io.Writer, g nutrition.Goals) {
	fmt.Fprintf(w, "BMR:             %d kcal\n", g.BMR)
	fmt.Fprintf(w, "Maintenance:     %d kcal\n", g.MaintenanceCalories)
	fmt.Fprintf(w, "Calorie target:  %d kcal\n", g.CalorieTarget)
	if g.CalorieFloorApplied {
		fmt.Fprintf(w, "                 (raised from %d to the %d kcal floor)\n",
			g.RawCalorieTarget, nutrition.MinCalorieTarget)
	}
	fmt.Fprintf(w, "Protein:         %d g\n", g.ProteinGrams)
	fmt.Fprintf(w, "Carbs:           %d g\n", g.CarbGrams)
	fmt.Fprintf(w, "Fat:             %d g\n", g.FatGrams)
	fmt.Fprintf(w, "BMI:             %.1f (%s)\n", g.BMI, g.BMICategory)
	fmt.Fprintf(w, "Water:           %d ml\n", g.WaterTargetMl)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
