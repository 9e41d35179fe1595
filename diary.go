package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"lg/diet-tracker-api/nutrition"
)

// getDailySummary returns the day's meals, exercises, water and weight with
// totals against the user's goals.
// GET /api/diary/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailySummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	date, ok := h.dateOrToday(c, c.Query("date"), "date")
	if !ok {
		return
	}

	row, err := h.store.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.storeError(c, err, "profile not found", "failed to fetch profile")
		return
	}
	goals := row.goals()

	// The four reads are independent; fan them out on the pool.
	var (
		meals     []mealEntry
		exercises []exerciseEntry
		intake    int
		weight    *float64
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		meals, err = h.store.ListMeals(ctx, userID, date)
		return err
	})
	g.Go(func() (err error) {
		exercises, err = h.store.ListExercises(ctx, userID, date)
		return err
	})
	g.Go(func() (err error) {
		intake, err = h.store.WaterIntake(ctx, userID, date)
		return err
	})
	g.Go(func() error {
		w, err := h.store.LatestWeight(ctx, userID, date)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		weight = &w.WeightKg
		return nil
	})
	if err := g.Wait(); err != nil {
		h.storeError(c, err, "diary not found", "failed to fetch diary")
		return
	}

	summary := summarizeDay(date, goals, meals, exercises)
	summary.Water = newWaterStatus(date, intake, goals.WaterTargetMl)
	summary.WeightKg = weight
	c.JSON(http.StatusOK, summary)
}

// summarizeDay totals meals and exercises. Net = consumed minus burned,
// left = target minus net.
func summarizeDay(date string, goals nutrition.Goals, meals []mealEntry, exercises []exerciseEntry) dailySummary {
	s := dailySummary{
		Date:          date,
		CalorieTarget: goals.CalorieTarget,
		Goals:         goals,
		Meals:         meals,
		Exercises:     exercises,
	}
	if s.Meals == nil {
		s.Meals = []mealEntry{}
	}
	if s.Exercises == nil {
		s.Exercises = []exerciseEntry{}
	}
	for _, m := range meals {
		s.CaloriesConsumed += m.TotalCalories
		s.ProteinG += m.TotalProteinG
		s.CarbsG += m.TotalCarbsG
		s.FatG += m.TotalFatG
	}
	for _, e := range exercises {
		s.CaloriesBurned += e.CaloriesBurned
	}
	s.NetCalories = s.CaloriesConsumed - s.CaloriesBurned
	s.CaloriesLeft = goals.CalorieTarget - s.NetCalories
	return s
}

// createMeal logs a meal of one or more food items. Totals are the sums of
// the items, computed here rather than trusted from the client.
// POST /api/diary/meals. Defaults date to today if omitted.
func (h *Handler) createMeal(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createMealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "meal_type must be one of: breakfast, lunch, dinner, snack, and food_items must be non-empty with non-negative values")
		return
	}
	date, ok := h.dateOrToday(c, body.Date, "date")
	if !ok {
		return
	}
	for _, f := range body.FoodItems {
		if strings.TrimSpace(f.Name) == "" {
			apiError(c, http.StatusBadRequest, "food item name is required")
			return
		}
	}

	d, _ := time.Parse("2006-01-02", date)
	meal := mealEntry{UserID: userID, Date: DateOnly{d}, MealType: body.MealType, FoodItems: body.FoodItems}
	for _, f := range body.FoodItems {
		meal.TotalCalories += f.Calories
		meal.TotalProteinG += f.ProteinG
		meal.TotalCarbsG += f.CarbsG
		meal.TotalFatG += f.FatG
	}

	created, err := h.store.CreateMeal(c.Request.Context(), meal)
	if err != nil {
		h.storeError(c, err, "meal not found", "failed to create meal")
		return
	}
	diaryEntries.WithLabelValues("meal").Inc()
	c.JSON(http.StatusCreated, created)
}

// deleteMeal removes a meal. Returns 204 on success, 404 if not found.
// DELETE /api/diary/meals/:id.
func (h *Handler) deleteMeal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteMeal(c.Request.Context(), c.GetInt("user_id"), id); err != nil {
		h.storeError(c, err, "meal not found", "failed to delete meal")
		return
	}
	c.Status(http.StatusNoContent)
}

// createExercise logs a workout. The MET value comes from the catalog unless
// the request supplies one; the body weight is the latest weight entry on or
// before the date, falling back to the profile weight.
// POST /api/diary/exercises.
func (h *Handler) createExercise(c *gin.Context) {
	userID := c.GetInt("user_id")
	ctx := c.Request.Context()

	var body createExerciseRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "name is required and duration_minutes must be between 1 and 1440")
		return
	}
	date, ok := h.dateOrToday(c, body.Date, "date")
	if !ok {
		return
	}

	ex, found := h.catalog.Exercise(body.Name)
	if body.MET != nil {
		ex = nutrition.Exercise{Name: strings.TrimSpace(body.Name), MET: *body.MET}
	} else if !found {
		apiError(c, http.StatusBadRequest, "unknown exercise; provide met for custom activities")
		return
	}

	weightKg, err := h.weightOn(c, userID, date)
	if err != nil {
		h.storeError(c, err, "profile not found", "failed to resolve body weight")
		return
	}

	d, _ := time.Parse("2006-01-02", date)
	entry := exerciseEntry{
		UserID:          userID,
		Date:            DateOnly{d},
		Name:            ex.Name,
		MET:             ex.MET,
		DurationMinutes: body.DurationMinutes,
		WeightKg:        weightKg,
		CaloriesBurned:  nutrition.CaloriesBurned(ex, body.DurationMinutes, weightKg),
	}
	created, err := h.store.CreateExercise(ctx, entry)
	if err != nil {
		h.storeError(c, err, "exercise not found", "failed to create exercise")
		return
	}
	diaryEntries.WithLabelValues("exercise").Inc()
	c.JSON(http.StatusCreated, created)
}

// weightOn resolves the user's body weight for date: the latest weight entry
// on or before it, else the profile weight. ErrNotFound means neither exists.
func (h *Handler) weightOn(c *gin.Context, userID int, date string) (float64, error) {
	w, err := h.store.LatestWeight(c.Request.Context(), userID, date)
	if err == nil {
		return w.WeightKg, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, err
	}
	row, err := h.store.GetProfile(c.Request.Context(), userID)
	if err != nil {
		return 0, err
	}
	return row.WeightKg, nil
}

// deleteExercise removes an exercise entry. Returns 204 on success, 404 if not found.
// DELETE /api/diary/exercises/:id.
func (h *Handler) deleteExercise(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteExercise(c.Request.Context(), c.GetInt("user_id"), id); err != nil {
		h.storeError(c, err, "exercise not found", "failed to delete exercise")
		return
	}
	c.Status(http.StatusNoContent)
}
