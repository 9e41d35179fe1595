package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// progressRanges are the chart windows the client can request, in days.
var progressRanges = map[int]bool{7: true, 30: true, 90: true}

const defaultProgressRange = 30

// badge is an achievement shown on the progress screen.
type badge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	earned func(badgeFacts) bool
}

// badgeFacts is everything badge conditions look at.
type badgeFacts struct {
	hasProfile    bool
	calorieTarget int
	streak        int
	totals        []dayTotals
}

// badgeCatalog lists every badge in display order.
var badgeCatalog = []badge{
	{ID: "profile_complete", Title: "Ready to Go!", Description: "You completed your profile.", Icon: "🎉",
		earned: func(f badgeFacts) bool { return f.hasProfile }},
	{ID: "first_scan", Title: "First Scan", Description: "You logged your first meal.", Icon: "📸",
		earned: func(f badgeFacts) bool { return sumMeals(f.totals) > 0 }},
	{ID: "streak_3", Title: "On a Roll", Description: "Logged for 3 days in a row.", Icon: "🔥",
		earned: func(f badgeFacts) bool { return f.streak >= 3 }},
	{ID: "log_10_meals", Title: "Food Explorer", Description: "You logged 10 meals.", Icon: "🍲",
		earned: func(f badgeFacts) bool { return sumMeals(f.totals) >= 10 }},
	{ID: "first_exercise", Title: "Getting Active", Description: "You logged your first exercise.", Icon: "🏃",
		earned: func(f badgeFacts) bool {
			for _, d := range f.totals {
				if d.ExerciseCount > 0 {
					return true
				}
			}
			return false
		}},
	{ID: "goal_hit_1", Title: "Goal Getter", Description: "You met your calorie goal for one day.", Icon: "🎯",
		earned: func(f badgeFacts) bool {
			if !f.hasProfile || f.calorieTarget <= 0 {
				return false
			}
			for _, d := range f.totals {
				if d.MealCount > 0 && withinTenPercent(d.CaloriesConsumed, f.calorieTarget) {
					return true
				}
			}
			return false
		}},
}

func sumMeals(totals []dayTotals) int {
	n := 0
	for _, d := range totals {
		n += d.MealCount
	}
	return n
}

// withinTenPercent reports whether v lies in [0.9·target, 1.1·target].
// Integer form avoids float edge cases at the bounds.
func withinTenPercent(v, target int) bool {
	return v*10 >= target*9 && v*10 <= target*11
}

// earnedBadges returns the IDs of every badge whose condition holds.
func earnedBadges(f badgeFacts) []string {
	var ids []string
	for _, b := range badgeCatalog {
		if b.earned(f) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// badgesByID resolves unlocked IDs to catalog entries in display order.
// Unknown IDs (e.g. retired badges) are skipped.
func badgesByID(ids []string) []badge {
	unlocked := make(map[string]bool, len(ids))
	for _, id := range ids {
		unlocked[id] = true
	}
	out := []badge{}
	for _, b := range badgeCatalog {
		if unlocked[b.ID] {
			out = append(out, b)
		}
	}
	return out
}

/* ─── Pure helpers ────────────────────────────────────────────────────── */

// dailyStreak counts consecutive active days ending today. Returns 0 when
// today itself has no activity.
func dailyStreak(active map[string]bool, today time.Time) int {
	streak := 0
	for d := today; active[d.Format("2006-01-02")]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// buildProgress returns one point per day from start for n days. Calories come
// from totals; days without a weight entry carry the last known weight forward,
// starting from prior (0 if nothing was ever logged).
func buildProgress(start time.Time, n int, totals []dayTotals, prior float64, weights []weightEntry) []progressPoint {
	calories := make(map[string]int, len(totals))
	for _, d := range totals {
		calories[d.Date.Format("2006-01-02")] = d.CaloriesConsumed
	}
	byDate := make(map[string]float64, len(weights))
	for _, w := range weights {
		byDate[w.Date.Format("2006-01-02")] = w.WeightKg
	}

	points := make([]progressPoint, 0, n)
	last := prior
	for i := 0; i < n; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		if w, ok := byDate[day]; ok {
			last = w
		}
		points = append(points, progressPoint{Date: day, Calories: calories[day], WeightKg: last})
	}
	return points
}

/* ─── Handler ─────────────────────────────────────────────────────────── */

// getProgress returns chart data for the last `range` days plus streak and
// badges. Newly earned badges are persisted before responding.
// GET /api/progress?range=7|30|90 (default 30).
func (h *Handler) getProgress(c *gin.Context) {
	userID := c.GetInt("user_id")

	n := defaultProgressRange
	if raw := c.Query("range"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || !progressRanges[v] {
			apiError(c, http.StatusBadRequest, "range must be 7, 30 or 90")
			return
		}
		n = v
	}

	todayStr := h.today()
	today, _ := time.Parse("2006-01-02", todayStr)
	start := today.AddDate(0, 0, -(n - 1))
	startStr := start.Format("2006-01-02")
	beforeStart := start.AddDate(0, 0, -1).Format("2006-01-02")

	var (
		row        profileRow
		hasProfile bool
		totals     []dayTotals
		weights    []weightEntry
		prior      float64
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		row, err = h.store.GetProfile(ctx, userID)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		hasProfile = err == nil
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = h.store.ListDayTotals(ctx, userID, "0001-01-01", todayStr)
		return err
	})
	g.Go(func() error {
		var err error
		weights, err = h.store.ListWeights(ctx, userID, startStr, todayStr)
		return err
	})
	g.Go(func() error {
		w, err := h.store.LatestWeight(ctx, userID, beforeStart)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		prior = w.WeightKg
		return err
	})
	if err := g.Wait(); err != nil {
		h.storeError(c, err, "progress not found", "failed to fetch progress")
		return
	}

	active := make(map[string]bool, len(totals))
	daysLogged := 0
	for _, d := range totals {
		day := d.Date.Format("2006-01-02")
		active[day] = true
		if day >= startStr {
			daysLogged++
		}
	}
	streak := dailyStreak(active, today)

	earned := earnedBadges(badgeFacts{
		hasProfile:    hasProfile,
		calorieTarget: row.CalorieTarget,
		streak:        streak,
		totals:        totals,
	})
	if len(earned) > 0 {
		if err := h.store.UnlockBadges(c.Request.Context(), userID, earned); err != nil {
			h.storeError(c, err, "badges not found", "failed to save badges")
			return
		}
	}
	unlocked, err := h.store.ListBadges(c.Request.Context(), userID)
	if err != nil {
		h.storeError(c, err, "badges not found", "failed to fetch badges")
		return
	}

	days := buildProgress(start, n, totals, prior, weights)
	c.JSON(http.StatusOK, progressResponse{
		Range:      n,
		Days:       days,
		DaysLogged: daysLogged,
		LastWeight: days[len(days)-1].WeightKg,
		Streak:     streak,
		Badges:     badgesByID(unlocked),
	})
}
