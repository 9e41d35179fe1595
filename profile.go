package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/diet-tracker-api/nutrition"
)

// getProfile returns the body profile and the goals last computed from it.
// GET /api/profile. 404 until the user has completed onboarding.
func (h *Handler) getProfile(c *gin.Context) {
	row, err := h.store.GetProfile(c.Request.Context(), c.GetInt("user_id"))
	if err != nil {
		h.storeError(c, err, "profile not found", "failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, profileResponse{Profile: row.profile(), Goals: row.goals()})
}

// getGoals returns only the persisted goals.
// GET /api/goals.
func (h *Handler) getGoals(c *gin.Context) {
	row, err := h.store.GetProfile(c.Request.Context(), c.GetInt("user_id"))
	if err != nil {
		h.storeError(c, err, "profile not found", "failed to fetch goals")
		return
	}
	c.JSON(http.StatusOK, row.goals())
}

// putProfile replaces the whole profile, recomputes every goal from it and
// records the profile weight as today's weight entry.
// PUT /api/profile. Used both for onboarding and for later edits.
func (h *Handler) putProfile(c *gin.Context) {
	userID := c.GetInt("user_id")
	ctx := c.Request.Context()

	var p nutrition.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		if errors.Is(err, nutrition.ErrInvalidInput) {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	goals, err := nutrition.ComputeGoals(p)
	if err != nil {
		goalsComputed.WithLabelValues("invalid").Inc()
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	goalsComputed.WithLabelValues("ok").Inc()
	if goals.CalorieFloorApplied {
		h.log.Info("calorie target clamped to floor",
			zap.Int("user_id", userID),
			zap.Int("raw_target", goals.RawCalorieTarget),
			zap.Int("floor", nutrition.MinCalorieTarget))
	}

	row, err := h.store.SaveProfile(ctx, newProfileRow(userID, p, goals))
	if err != nil {
		h.storeError(c, err, "profile not found", "failed to save profile")
		return
	}

	// The profile weight is today's weight; a failure here does not undo the
	// profile update.
	if _, err := h.store.UpsertWeight(ctx, userID, h.today(), p.WeightKg); err != nil {
		h.log.Warn("weight entry for profile update failed", zap.Int("user_id", userID), zap.Error(err))
	}

	c.JSON(http.StatusOK, profileResponse{Profile: row.profile(), Goals: row.goals()})
}
