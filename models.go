package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"lg/diet-tracker-api/nutrition"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// profileRow maps to the profiles table: one row per user holding the body
// profile and the goals last computed from it.
type profileRow struct {
	UserID        int     `db:"user_id"`
	Age           int     `db:"age"`
	Sex           string  `db:"sex"`
	HeightCm      float64 `db:"height_cm"`
	WeightKg      float64 `db:"weight_kg"`
	ActivityLevel string  `db:"activity_level"`
	WeightGoal    string  `db:"weight_goal"`
	Allergies     string  `db:"allergies"`

	BMR                 int     `db:"bmr"`
	MaintenanceCalories int     `db:"maintenance_calories"`
	CalorieTarget       int     `db:"calorie_target"`
	RawCalorieTarget    int     `db:"raw_calorie_target"`
	CalorieFloorApplied bool    `db:"calorie_floor_applied"`
	ProteinG            int     `db:"protein_g"`
	CarbsG              int     `db:"carbs_g"`
	FatG                int     `db:"fat_g"`
	BMI                 float64 `db:"bmi"`
	BMICategory         string  `db:"bmi_category"`
	WaterTargetMl       int     `db:"water_target_ml"`

	UpdatedAt *time.Time `db:"updated_at"`
}

func (r profileRow) profile() nutrition.Profile {
	return nutrition.Profile{
		Age:           r.Age,
		Sex:           nutrition.Sex(r.Sex),
		HeightCm:      r.HeightCm,
		WeightKg:      r.WeightKg,
		ActivityLevel: nutrition.ActivityLevel(r.ActivityLevel),
		WeightGoal:    nutrition.WeightGoal(r.WeightGoal),
		Allergies:     r.Allergies,
	}
}

func (r profileRow) goals() nutrition.Goals {
	return nutrition.Goals{
		BMR:                 r.BMR,
		MaintenanceCalories: r.MaintenanceCalories,
		CalorieTarget:       r.CalorieTarget,
		RawCalorieTarget:    r.RawCalorieTarget,
		CalorieFloorApplied: r.CalorieFloorApplied,
		ProteinGrams:        r.ProteinG,
		CarbGrams:           r.CarbsG,
		FatGrams:            r.FatG,
		BMI:                 r.BMI,
		BMICategory:         nutrition.BMICategory(r.BMICategory),
		WaterTargetMl:       r.WaterTargetMl,
	}
}

// newProfileRow flattens a profile and its goals for storage.
func newProfileRow(userID int, p nutrition.Profile, g nutrition.Goals) profileRow {
	return profileRow{
		UserID:              userID,
		Age:                 p.Age,
		Sex:                 string(p.Sex),
		HeightCm:            p.HeightCm,
		WeightKg:            p.WeightKg,
		ActivityLevel:       string(p.ActivityLevel),
		WeightGoal:          string(p.WeightGoal),
		Allergies:           p.Allergies,
		BMR:                 g.BMR,
		MaintenanceCalories: g.MaintenanceCalories,
		CalorieTarget:       g.CalorieTarget,
		RawCalorieTarget:    g.RawCalorieTarget,
		CalorieFloorApplied: g.CalorieFloorApplied,
		ProteinG:            g.ProteinGrams,
		CarbsG:              g.CarbGrams,
		FatG:                g.FatGrams,
		BMI:                 g.BMI,
		BMICategory:         string(g.BMICategory),
		WaterTargetMl:       g.WaterTargetMl,
	}
}

// mealEntry maps to the meals table. FoodItems is a jsonb column; the totals
// are always the sums over FoodItems.
type mealEntry struct {
	ID            int                  `json:"id" db:"id"`
	UserID        int                  `json:"user_id" db:"user_id"`
	Date          DateOnly             `json:"date" db:"date"`
	MealType      string               `json:"meal_type" db:"meal_type"`
	FoodItems     []nutrition.FoodItem `json:"food_items" db:"food_items"`
	TotalCalories int                  `json:"total_calories" db:"total_calories"`
	TotalProteinG float64              `json:"total_protein_g" db:"total_protein_g"`
	TotalCarbsG   float64              `json:"total_carbs_g" db:"total_carbs_g"`
	TotalFatG     float64              `json:"total_fat_g" db:"total_fat_g"`
	CreatedAt     *time.Time           `json:"created_at" db:"created_at"`
}

// exerciseEntry maps to the exercises table.
type exerciseEntry struct {
	ID              int        `json:"id" db:"id"`
	UserID          int        `json:"user_id" db:"user_id"`
	Date            DateOnly   `json:"date" db:"date"`
	Name            string     `json:"name" db:"name"`
	MET             float64    `json:"met" db:"met"`
	DurationMinutes int        `json:"duration_minutes" db:"duration_minutes"`
	WeightKg        float64    `json:"weight_kg" db:"weight_kg"`
	CaloriesBurned  int        `json:"calories_burned" db:"calories_burned"`
	CreatedAt       *time.Time `json:"created_at" db:"created_at"`
}

// weightEntry maps to the weight_log table. One row per user per day.
type weightEntry struct {
	ID        int        `json:"id" db:"id"`
	UserID    int        `json:"user_id" db:"user_id"`
	Date      DateOnly   `json:"date" db:"date"`
	WeightKg  float64    `json:"weight_kg" db:"weight_kg"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// dayTotals is the shape of each row returned by the per-day GROUP BY over
// meals and exercises. Used for progress, streaks and badges.
type dayTotals struct {
	Date             DateOnly `db:"date"`
	CaloriesConsumed int      `db:"calories_consumed"`
	CaloriesBurned   int      `db:"calories_burned"`
	MealCount        int      `db:"meal_count"`
	ExerciseCount    int      `db:"exercise_count"`
}

/* ─── Request / response shapes ──────────────────────────────────────── */

// profileResponse is returned by GET and PUT /api/profile.
type profileResponse struct {
	Profile nutrition.Profile `json:"profile"`
	Goals   nutrition.Goals   `json:"goals"`
}

// dailySummary is the response shape for GET /api/diary/daily.
type dailySummary struct {
	Date             string          `json:"date"`
	CalorieTarget    int             `json:"calorie_target"`
	CaloriesConsumed int             `json:"calories_consumed"`
	CaloriesBurned   int             `json:"calories_burned"`
	NetCalories      int             `json:"net_calories"`
	CaloriesLeft     int             `json:"calories_left"`
	ProteinG         float64         `json:"protein_g"`
	CarbsG           float64         `json:"carbs_g"`
	FatG             float64         `json:"fat_g"`
	Goals            nutrition.Goals `json:"goals"`
	Water            waterStatus     `json:"water"`
	WeightKg         *float64        `json:"weight_kg"`
	Meals            []mealEntry     `json:"meals"`
	Exercises        []exerciseEntry `json:"exercises"`
}

// waterStatus is one day's water intake against the target.
type waterStatus struct {
	Date      string `json:"date"`
	IntakeMl  int    `json:"intake_ml"`
	TargetMl  int    `json:"target_ml"`
	Percent   int    `json:"percent"`
	Cups      int    `json:"cups"`
	GoalCups  int    `json:"goal_cups"`
	Completed bool   `json:"completed"`
}

// createMealRequest is the request body for POST /api/diary/meals.
type createMealRequest struct {
	Date      string               `json:"date"`
	MealType  string               `json:"meal_type" binding:"required,oneof=breakfast lunch dinner snack"`
	FoodItems []nutrition.FoodItem `json:"food_items" binding:"required,min=1,dive"`
}

// createExerciseRequest is the request body for POST /api/diary/exercises.
// MET is only needed for activities missing from the catalog.
type createExerciseRequest struct {
	Date            string   `json:"date"`
	Name            string   `json:"name" binding:"required"`
	DurationMinutes int      `json:"duration_minutes" binding:"gt=0,lte=1440"`
	MET             *float64 `json:"met" binding:"omitempty,gt=0,lte=25"`
}

// adjustWaterRequest is the request body for POST /api/water.
type adjustWaterRequest struct {
	Date    string `json:"date"`
	DeltaMl int    `json:"delta_ml" binding:"required,min=-5000,max=5000"`
}

// progressPoint is one calendar day in GET /api/progress.
type progressPoint struct {
	Date     string  `json:"date"`
	Calories int     `json:"calories"`
	WeightKg float64 `json:"weight_kg"`
}

// progressResponse is the response shape for GET /api/progress.
type progressResponse struct {
	Range      int             `json:"range"`
	Days       []progressPoint `json:"days"`
	DaysLogged int             `json:"days_logged"`
	LastWeight float64         `json:"last_weight"`
	Streak     int             `json:"streak"`
	Badges     []badge         `json:"badges"`
}
