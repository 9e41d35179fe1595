package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lg/diet-tracker-api/nutrition"
)

// listExercises returns the built-in exercise catalog.
// GET /api/exercises.
func (h *Handler) listExercises(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Exercises)
}

// searchFoods returns catalog foods followed by the user's custom foods whose
// name contains q (case-insensitive). An empty q lists everything.
// GET /api/foods?q=pho.
func (h *Handler) searchFoods(c *gin.Context) {
	q := c.Query("q")

	custom, err := h.store.ListCustomFoods(c.Request.Context(), c.GetInt("user_id"))
	if err != nil {
		h.storeError(c, err, "foods not found", "failed to fetch custom foods")
		return
	}

	foods := h.catalog.SearchFoods(q)
	foods = append(foods, nutrition.FilterFoods(custom, q)...)
	c.JSON(http.StatusOK, foods)
}

// createCustomFood saves a user-defined food for later manual logging.
// POST /api/foods.
func (h *Handler) createCustomFood(c *gin.Context) {
	var body nutrition.FoodItem
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "name is required and nutrition values must be non-negative")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}

	created, err := h.store.CreateCustomFood(c.Request.Context(), c.GetInt("user_id"), body)
	if err != nil {
		h.storeError(c, err, "food not found", "failed to create custom food")
		return
	}
	diaryEntries.WithLabelValues("custom_food").Inc()
	c.JSON(http.StatusCreated, created)
}
