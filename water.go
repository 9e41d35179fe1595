package main

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
)

// cupMl is the size of one "cup" step in the water tracker.
const cupMl = 250

// newWaterStatus reports intake against target. Percent is 0 without a target
// and may exceed 100.
func newWaterStatus(date string, intakeMl, targetMl int) waterStatus {
	s := waterStatus{
		Date:     date,
		IntakeMl: intakeMl,
		TargetMl: targetMl,
		Cups:     int(math.Round(float64(intakeMl) / cupMl)),
		GoalCups: int(math.Round(float64(targetMl) / cupMl)),
	}
	if targetMl > 0 {
		s.Percent = int(math.Round(float64(intakeMl) / float64(targetMl) * 100))
		s.Completed = intakeMl >= targetMl
	}
	return s
}

// waterTarget returns the persisted water goal, or 0 before onboarding.
func (h *Handler) waterTarget(c *gin.Context, userID int) (int, error) {
	row, err := h.store.GetProfile(c.Request.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.WaterTargetMl, nil
}

// getWater returns the day's water intake against the target.
// GET /api/water?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getWater(c *gin.Context) {
	userID := c.GetInt("user_id")
	date, ok := h.dateOrToday(c, c.Query("date"), "date")
	if !ok {
		return
	}

	target, err := h.waterTarget(c, userID)
	if err != nil {
		h.storeError(c, err, "profile not found", "failed to fetch water target")
		return
	}
	intake, err := h.store.WaterIntake(c.Request.Context(), userID, date)
	if err != nil {
		h.storeError(c, err, "water log not found", "failed to fetch water intake")
		return
	}
	c.JSON(http.StatusOK, newWaterStatus(date, intake, target))
}

// adjustWater adds (or with a negative delta removes) water for a day.
// Intake never drops below zero.
// POST /api/water. Body: { "date"?: "YYYY-MM-DD", "delta_ml": 250 }.
func (h *Handler) adjustWater(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body adjustWaterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "delta_ml must be a non-zero amount between -5000 and 5000")
		return
	}
	date, ok := h.dateOrToday(c, body.Date, "date")
	if !ok {
		return
	}

	target, err := h.waterTarget(c, userID)
	if err != nil {
		h.storeError(c, err, "profile not found", "failed to fetch water target")
		return
	}
	intake, err := h.store.AdjustWater(c.Request.Context(), userID, date, body.DeltaMl)
	if err != nil {
		h.storeError(c, err, "water log not found", "failed to update water intake")
		return
	}
	diaryEntries.WithLabelValues("water").Inc()
	c.JSON(http.StatusOK, newWaterStatus(date, intake, target))
}
