package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// maxWeightKg bounds accepted weight entries.
const maxWeightKg = 700

// getWeightLog returns weight entries for the authenticated user within [start, end].
// GET /api/weight-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getWeightLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	start := c.Query("start")
	end := c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	if _, err := time.Parse("2006-01-02", start); err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return
	}
	if _, err := time.Parse("2006-01-02", end); err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	entries, err := h.store.ListWeights(c.Request.Context(), userID, start, end)
	if err != nil {
		h.storeError(c, err, "weight log not found", "failed to fetch weight log")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// upsertWeightEntry creates or updates the weight entry for the given date.
// POST /api/weight-log. Body: { "date": "YYYY-MM-DD", "weight_kg": 84.2 }.
func (h *Handler) upsertWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date     string  `json:"date"`
		WeightKg float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		apiError(c, http.StatusBadRequest, "date is required")
		return
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if body.WeightKg <= 0 || body.WeightKg > maxWeightKg {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 700")
		return
	}

	entry, err := h.store.UpsertWeight(c.Request.Context(), userID, body.Date, body.WeightKg)
	if err != nil {
		h.storeError(c, err, "weight entry not found", "failed to upsert weight entry")
		return
	}
	diaryEntries.WithLabelValues("weight").Inc()
	c.JSON(http.StatusCreated, entry)
}

// updateWeightEntry partially updates an existing weight entry.
// PUT /api/weight-log/:id. Body: { "date"?, "weight_kg"? }.
// Omitted fields keep their current values.
func (h *Handler) updateWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, ok := pathID(c)
	if !ok {
		return
	}

	var body struct {
		Date     *string  `json:"date"`
		WeightKg *float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date != nil {
		if _, err := time.Parse("2006-01-02", *body.Date); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}
	if body.WeightKg != nil && (*body.WeightKg <= 0 || *body.WeightKg > maxWeightKg) {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 700")
		return
	}

	entry, err := h.store.UpdateWeight(c.Request.Context(), userID, id, body.Date, body.WeightKg)
	if err != nil {
		h.storeError(c, err, "weight entry not found", "failed to update weight entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// deleteWeightEntry removes a weight log entry by ID.
// DELETE /api/weight-log/:id. Returns 204 on success, 404 if not found.
// Ownership is enforced by requiring both id and user_id to match.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteWeight(c.Request.Context(), c.GetInt("user_id"), id); err != nil {
		h.storeError(c, err, "weight entry not found", "failed to delete weight entry")
		return
	}
	c.Status(http.StatusNoContent)
}
