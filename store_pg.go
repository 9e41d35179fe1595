package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"lg/diet-tracker-api/nutrition"
)

// pgStore implements Store on a pgx connection pool.
type pgStore struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func newPGStore(db *pgxpool.Pool, log *zap.Logger) *pgStore {
	return &pgStore{db: db, log: log}
}

/* ─── Query helpers ──────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches);
// a missing row is returned as ErrNotFound without logging.
func queryOne[T any](ctx context.Context, s *pgStore, sql string, args pgx.NamedArgs) (T, error) {
	var zero T
	rows, err := s.db.Query(ctx, sql, args)
	if err != nil {
		s.log.Error("query failed", zap.String("helper", "queryOne"), zap.Error(err))
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		s.log.Error("scan failed", zap.String("helper", "queryOne"), zap.Error(err))
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
// Always returns a non-nil slice on success so JSON renders [] rather than null.
func queryMany[T any](ctx context.Context, s *pgStore, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := s.db.Query(ctx, sql, args)
	if err != nil {
		s.log.Error("query failed", zap.String("helper", "queryMany"), zap.Error(err))
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		s.log.Error("scan failed", zap.String("helper", "queryMany"), zap.Error(err))
		return nil, err
	}
	if results == nil {
		results = []T{}
	}
	return results, nil
}

// execOwned runs a DELETE-style statement and maps zero affected rows to ErrNotFound.
func (s *pgStore) execOwned(ctx context.Context, sql string, args pgx.NamedArgs) error {
	result, err := s.db.Exec(ctx, sql, args)
	if err != nil {
		s.log.Error("exec failed", zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

/* ─── Users ──────────────────────────────────────────────────────────── */

func (s *pgStore) UserByUsername(ctx context.Context, username string) (user, error) {
	return queryOne[user](ctx, s,
		"SELECT * FROM users WHERE username = @username",
		pgx.NamedArgs{"username": username})
}

func (s *pgStore) UserIDByToken(ctx context.Context, token string) (int, error) {
	var userID int
	err := s.db.QueryRow(ctx, "SELECT id FROM users WHERE auth_token = $1", token).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return userID, err
}

/* ─── Profile ────────────────────────────────────────────────────────── */

func (s *pgStore) GetProfile(ctx context.Context, userID int) (profileRow, error) {
	return queryOne[profileRow](ctx, s,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
}

// SaveProfile replaces the whole row; goals columns are always written
// together with the profile they were computed from.
func (s *pgStore) SaveProfile(ctx context.Context, r profileRow) (profileRow, error) {
	return queryOne[profileRow](ctx, s,
		`INSERT INTO profiles (
			user_id, age, sex, height_cm, weight_kg, activity_level, weight_goal, allergies,
			bmr, maintenance_calories, calorie_target, raw_calorie_target, calorie_floor_applied,
			protein_g, carbs_g, fat_g, bmi, bmi_category, water_target_ml, updated_at)
		 VALUES (
			@userID, @age, @sex, @heightCm, @weightKg, @activityLevel, @weightGoal, @allergies,
			@bmr, @maintenance, @target, @rawTarget, @floorApplied,
			@proteinG, @carbsG, @fatG, @bmi, @bmiCategory, @waterTargetMl, now())
		 ON CONFLICT (user_id) DO UPDATE SET
			age = EXCLUDED.age,
			sex = EXCLUDED.sex,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			activity_level = EXCLUDED.activity_level,
			weight_goal = EXCLUDED.weight_goal,
			allergies = EXCLUDED.allergies,
			bmr = EXCLUDED.bmr,
			maintenance_calories = EXCLUDED.maintenance_calories,
			calorie_target = EXCLUDED.calorie_target,
			raw_calorie_target = EXCLUDED.raw_calorie_target,
			calorie_floor_applied = EXCLUDED.calorie_floor_applied,
			protein_g = EXCLUDED.protein_g,
			carbs_g = EXCLUDED.carbs_g,
			fat_g = EXCLUDED.fat_g,
			bmi = EXCLUDED.bmi,
			bmi_category = EXCLUDED.bmi_category,
			water_target_ml = EXCLUDED.water_target_ml,
			updated_at = now()
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": r.UserID, "age": r.Age, "sex": r.Sex,
			"heightCm": r.HeightCm, "weightKg": r.WeightKg,
			"activityLevel": r.ActivityLevel, "weightGoal": r.WeightGoal,
			"allergies": r.Allergies, "bmr": r.BMR, "maintenance": r.MaintenanceCalories,
			"target": r.CalorieTarget, "rawTarget": r.RawCalorieTarget,
			"floorApplied": r.CalorieFloorApplied, "proteinG": r.ProteinG,
			"carbsG": r.CarbsG, "fatG": r.FatG, "bmi": r.BMI,
			"bmiCategory": r.BMICategory, "waterTargetMl": r.WaterTargetMl,
		})
}

/* ─── Meals ──────────────────────────────────────────────────────────── */

func (s *pgStore) ListMeals(ctx context.Context, userID int, date string) ([]mealEntry, error) {
	return queryMany[mealEntry](ctx, s,
		`SELECT * FROM meals
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at, id`,
		pgx.NamedArgs{"userID": userID, "date": date})
}

func (s *pgStore) CreateMeal(ctx context.Context, m mealEntry) (mealEntry, error) {
	// The pool runs in simple-protocol mode, so the jsonb value is sent as text.
	items, err := json.Marshal(m.FoodItems)
	if err != nil {
		return mealEntry{}, fmt.Errorf("marshal food items: %w", err)
	}
	return queryOne[mealEntry](ctx, s,
		`INSERT INTO meals (user_id, date, meal_type, food_items,
			total_calories, total_protein_g, total_carbs_g, total_fat_g)
		 VALUES (@userID, @date, @mealType, @foodItems::jsonb,
			@calories, @proteinG, @carbsG, @fatG)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": m.UserID, "date": m.Date.Format("2006-01-02"),
			"mealType": m.MealType, "foodItems": string(items),
			"calories": m.TotalCalories, "proteinG": m.TotalProteinG,
			"carbsG": m.TotalCarbsG, "fatG": m.TotalFatG,
		})
}

func (s *pgStore) DeleteMeal(ctx context.Context, userID, id int) error {
	return s.execOwned(ctx,
		"DELETE FROM meals WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
}

/* ─── Exercises ──────────────────────────────────────────────────────── */

func (s *pgStore) ListExercises(ctx context.Context, userID int, date string) ([]exerciseEntry, error) {
	return queryMany[exerciseEntry](ctx, s,
		`SELECT * FROM exercises
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at, id`,
		pgx.NamedArgs{"userID": userID, "date": date})
}

func (s *pgStore) CreateExercise(ctx context.Context, e exerciseEntry) (exerciseEntry, error) {
	return queryOne[exerciseEntry](ctx, s,
		`INSERT INTO exercises (user_id, date, name, met, duration_minutes, weight_kg, calories_burned)
		 VALUES (@userID, @date, @name, @met, @duration, @weightKg, @calories)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": e.UserID, "date": e.Date.Format("2006-01-02"), "name": e.Name,
			"met": e.MET, "duration": e.DurationMinutes, "weightKg": e.WeightKg,
			"calories": e.CaloriesBurned,
		})
}

func (s *pgStore) DeleteExercise(ctx context.Context, userID, id int) error {
	return s.execOwned(ctx,
		"DELETE FROM exercises WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
}

/* ─── Water ──────────────────────────────────────────────────────────── */

func (s *pgStore) WaterIntake(ctx context.Context, userID int, date string) (int, error) {
	var ml int
	err := s.db.QueryRow(ctx,
		"SELECT intake_ml FROM water_log WHERE user_id = @userID AND date = @date",
		pgx.NamedArgs{"userID": userID, "date": date}).Scan(&ml)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return ml, err
}

func (s *pgStore) AdjustWater(ctx context.Context, userID int, date string, deltaMl int) (int, error) {
	var ml int
	err := s.db.QueryRow(ctx,
		`INSERT INTO water_log (user_id, date, intake_ml)
		 VALUES (@userID, @date, GREATEST(@delta, 0))
		 ON CONFLICT (user_id, date) DO UPDATE
			SET intake_ml = GREATEST(water_log.intake_ml + @delta, 0)
		 RETURNING intake_ml`,
		pgx.NamedArgs{"userID": userID, "date": date, "delta": deltaMl}).Scan(&ml)
	if err != nil {
		s.log.Error("adjust water failed", zap.Int("user_id", userID), zap.Error(err))
	}
	return ml, err
}

/* ─── Weight log ─────────────────────────────────────────────────────── */

func (s *pgStore) ListWeights(ctx context.Context, userID int, start, end string) ([]weightEntry, error) {
	return queryMany[weightEntry](ctx, s,
		`SELECT * FROM weight_log
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
}

func (s *pgStore) LatestWeight(ctx context.Context, userID int, date string) (weightEntry, error) {
	return queryOne[weightEntry](ctx, s,
		`SELECT * FROM weight_log
		 WHERE user_id = @userID AND date <= @date
		 ORDER BY date DESC LIMIT 1`,
		pgx.NamedArgs{"userID": userID, "date": date})
}

// UpsertWeight relies on UNIQUE(user_id, date): posting the same date updates in place.
func (s *pgStore) UpsertWeight(ctx context.Context, userID int, date string, weightKg float64) (weightEntry, error) {
	return queryOne[weightEntry](ctx, s,
		`INSERT INTO weight_log (user_id, date, weight_kg)
		 VALUES (@userID, @date, @weightKg)
		 ON CONFLICT (user_id, date) DO UPDATE SET weight_kg = EXCLUDED.weight_kg
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": date, "weightKg": weightKg})
}

// UpdateWeight uses COALESCE so nil arguments keep their current values.
func (s *pgStore) UpdateWeight(ctx context.Context, userID, id int, date *string, weightKg *float64) (weightEntry, error) {
	return queryOne[weightEntry](ctx, s,
		`UPDATE weight_log SET
			date      = COALESCE(@date::date, date),
			weight_kg = COALESCE(@weightKg, weight_kg)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "userID": userID, "date": date, "weightKg": weightKg})
}

func (s *pgStore) DeleteWeight(ctx context.Context, userID, id int) error {
	return s.execOwned(ctx,
		"DELETE FROM weight_log WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
}

/* ─── Aggregates ─────────────────────────────────────────────────────── */

func (s *pgStore) ListDayTotals(ctx context.Context, userID int, start, end string) ([]dayTotals, error) {
	return queryMany[dayTotals](ctx, s,
		`SELECT
			date,
			COALESCE(SUM(consumed), 0)::int                  AS calories_consumed,
			COALESCE(SUM(burned), 0)::int                    AS calories_burned,
			COUNT(*) FILTER (WHERE kind = 'meal')::int       AS meal_count,
			COUNT(*) FILTER (WHERE kind = 'exercise')::int   AS exercise_count
		 FROM (
			SELECT date, total_calories AS consumed, 0 AS burned, 'meal' AS kind
			FROM meals WHERE user_id = @userID AND date >= @start AND date <= @end
			UNION ALL
			SELECT date, 0, calories_burned, 'exercise'
			FROM exercises WHERE user_id = @userID AND date >= @start AND date <= @end
		 ) entries
		 GROUP BY date
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
}

/* ─── Custom foods ───────────────────────────────────────────────────── */

func (s *pgStore) ListCustomFoods(ctx context.Context, userID int) ([]nutrition.FoodItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT name, calories, protein_g, carbs_g, fat_g, serving_size
		 FROM custom_foods WHERE user_id = @userID ORDER BY name`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		s.log.Error("list custom foods failed", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	foods, err := pgx.CollectRows(rows, scanCustomFood)
	if err != nil {
		return nil, err
	}
	if foods == nil {
		foods = []nutrition.FoodItem{}
	}
	return foods, nil
}

func (s *pgStore) CreateCustomFood(ctx context.Context, userID int, f nutrition.FoodItem) (nutrition.FoodItem, error) {
	rows, err := s.db.Query(ctx,
		`INSERT INTO custom_foods (user_id, name, calories, protein_g, carbs_g, fat_g, serving_size)
		 VALUES (@userID, @name, @calories, @proteinG, @carbsG, @fatG, @servingSize)
		 RETURNING name, calories, protein_g, carbs_g, fat_g, serving_size`,
		pgx.NamedArgs{
			"userID": userID, "name": f.Name, "calories": f.Calories,
			"proteinG": f.ProteinG, "carbsG": f.CarbsG, "fatG": f.FatG,
			"servingSize": f.ServingSize,
		})
	if err != nil {
		s.log.Error("create custom food failed", zap.Int("user_id", userID), zap.Error(err))
		return nutrition.FoodItem{}, err
	}
	return pgx.CollectOneRow(rows, scanCustomFood)
}

func scanCustomFood(row pgx.CollectableRow) (nutrition.FoodItem, error) {
	f := nutrition.FoodItem{Custom: true}
	err := row.Scan(&f.Name, &f.Calories, &f.ProteinG, &f.CarbsG, &f.FatG, &f.ServingSize)
	return f, err
}

/* ─── Badges ─────────────────────────────────────────────────────────── */

func (s *pgStore) ListBadges(ctx context.Context, userID int) ([]string, error) {
	rows, err := s.db.Query(ctx,
		"SELECT badge_id FROM user_badges WHERE user_id = @userID ORDER BY unlocked_at, badge_id",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *pgStore) UnlockBadges(ctx context.Context, userID int, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(
			"INSERT INTO user_badges (user_id, badge_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			userID, id)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		s.log.Error("unlock badges failed", zap.Int("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}
