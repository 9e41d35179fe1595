package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"lg/diet-tracker-api/nutrition"
)

// Handler holds shared dependencies (store, catalog, logger) for all route handlers.
type Handler struct {
	store        Store
	catalog      *nutrition.Catalog
	log          *zap.Logger
	loginLimiter *rate.Limiter    // nil disables login throttling
	now          func() time.Time // overridable for tests
}

func newHandler(store Store, catalog *nutrition.Catalog, log *zap.Logger) *Handler {
	return &Handler{store: store, catalog: catalog, log: log, now: time.Now}
}

/* ─── Request helpers ─────────────────────────────────────────────────── */

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// today returns the current date as YYYY-MM-DD.
func (h *Handler) today() string {
	return h.now().Format("2006-01-02")
}

// dateOrToday validates a YYYY-MM-DD string, defaulting empty input to today.
// Writes a 400 and returns ok=false on a malformed date.
func (h *Handler) dateOrToday(c *gin.Context, raw, field string) (string, bool) {
	if raw == "" {
		return h.today(), true
	}
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		apiError(c, http.StatusBadRequest, "invalid "+field+", expected YYYY-MM-DD")
		return "", false
	}
	return raw, true
}

// pathID parses the :id path parameter. Writes a 400 on failure.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		apiError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// storeError maps a Store error to a response: ErrNotFound becomes a 404 with
// notFoundMsg, anything else is logged and becomes a 500 with failMsg.
func (h *Handler) storeError(c *gin.Context, err error, notFoundMsg, failMsg string) {
	if errors.Is(err, ErrNotFound) {
		apiError(c, http.StatusNotFound, notFoundMsg)
		return
	}
	h.log.Error(failMsg,
		zap.Int("user_id", c.GetInt("user_id")),
		zap.String("route", c.FullPath()),
		zap.Error(err))
	apiError(c, http.StatusInternalServerError, failMsg)
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn) because
// Neon closes idle connections after ~5 minutes.
func getDBPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, err
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from Neon's server-side prepared statement cache after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	return pgxpool.NewWithConfig(ctx, config)
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)
	router.GET("/metrics", gin.WrapH(metricsHandler()))

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.putProfile)
	api.GET("/goals", h.getGoals)
	api.GET("/diary/daily", h.getDailySummary)
	api.POST("/diary/meals", h.createMeal)
	api.DELETE("/diary/meals/:id", h.deleteMeal)
	api.POST("/diary/exercises", h.createExercise)
	api.DELETE("/diary/exercises/:id", h.deleteExercise)
	api.GET("/water", h.getWater)
	api.POST("/water", h.adjustWater)
	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.upsertWeightEntry)
	api.PUT("/weight-log/:id", h.updateWeightEntry)
	api.DELETE("/weight-log/:id", h.deleteWeightEntry)
	api.GET("/exercises", h.listExercises)
	api.GET("/foods", h.searchFoods)
	api.POST("/foods", h.createCustomFood)
	api.GET("/progress", h.getProgress)
}
