package main

import (
	"context"
	"errors"

	"lg/diet-tracker-api/nutrition"
)

// ErrNotFound is returned by Store methods when the requested row does not
// exist (or belongs to another user).
var ErrNotFound = errors.New("not found")

// Store is the persistence boundary for handlers. pgStore is the production
// implementation; tests use an in-memory fake. Dates are "YYYY-MM-DD".
type Store interface {
	UserByUsername(ctx context.Context, username string) (user, error)
	UserIDByToken(ctx context.Context, token string) (int, error)

	GetProfile(ctx context.Context, userID int) (profileRow, error)
	SaveProfile(ctx context.Context, row profileRow) (profileRow, error)

	ListMeals(ctx context.Context, userID int, date string) ([]mealEntry, error)
	CreateMeal(ctx context.Context, m mealEntry) (mealEntry, error)
	DeleteMeal(ctx context.Context, userID, id int) error

	ListExercises(ctx context.Context, userID int, date string) ([]exerciseEntry, error)
	CreateExercise(ctx context.Context, e exerciseEntry) (exerciseEntry, error)
	DeleteExercise(ctx context.Context, userID, id int) error

	// WaterIntake returns 0 for days with nothing logged.
	WaterIntake(ctx context.Context, userID int, date string) (int, error)
	// AdjustWater adds deltaMl to the day's intake, flooring the result at 0.
	AdjustWater(ctx context.Context, userID int, date string, deltaMl int) (int, error)

	ListWeights(ctx context.Context, userID int, start, end string) ([]weightEntry, error)
	// LatestWeight returns the most recent entry on or before date.
	LatestWeight(ctx context.Context, userID int, date string) (weightEntry, error)
	UpsertWeight(ctx context.Context, userID int, date string, weightKg float64) (weightEntry, error)
	UpdateWeight(ctx context.Context, userID, id int, date *string, weightKg *float64) (weightEntry, error)
	DeleteWeight(ctx context.Context, userID, id int) error

	// ListDayTotals returns one row per day in [start, end] that has at least
	// one meal or exercise, ordered by date.
	ListDayTotals(ctx context.Context, userID int, start, end string) ([]dayTotals, error)

	ListCustomFoods(ctx context.Context, userID int) ([]nutrition.FoodItem, error)
	CreateCustomFood(ctx context.Context, userID int, f nutrition.FoodItem) (nutrition.FoodItem, error)

	ListBadges(ctx context.Context, userID int) ([]string, error)
	// UnlockBadges records ids as unlocked; already-unlocked ids are ignored.
	UnlockBadges(ctx context.Context, userID int, ids []string) error
}
