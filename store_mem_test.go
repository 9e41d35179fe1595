package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"lg/diet-tracker-api/nutrition"
)

/* ─── In-memory Store ────────────────────────────────────────────────── */

// memStore is a Store backed by maps. Safe for the concurrent reads that
// getDailySummary and getProgress fan out.
type memStore struct {
	mu sync.Mutex

	users     []user
	profiles  map[int]profileRow
	meals     []mealEntry
	exercises []exerciseEntry
	water     map[string]int // "userID/date" → ml
	weights   []weightEntry
	foods     map[int][]nutrition.FoodItem
	badges    map[int][]string
	lastID    int

	// failWith, when set, is returned by every read and write.
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		profiles: map[int]profileRow{},
		water:    map[string]int{},
		foods:    map[int][]nutrition.FoodItem{},
		badges:   map[int][]string{},
	}
}

func (s *memStore) id() int {
	s.lastID++
	return s.lastID
}

func day(t time.Time) string { return t.Format("2006-01-02") }

func mustDate(date string) DateOnly {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return DateOnly{d}
}

func (s *memStore) UserByUsername(_ context.Context, username string) (user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user{}, ErrNotFound
}

func (s *memStore) UserIDByToken(_ context.Context, token string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.AuthToken == token {
			return u.ID, nil
		}
	}
	return 0, ErrNotFound
}

func (s *memStore) GetProfile(_ context.Context, userID int) (profileRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return profileRow{}, s.failWith
	}
	row, ok := s.profiles[userID]
	if !ok {
		return profileRow{}, ErrNotFound
	}
	return row, nil
}

func (s *memStore) SaveProfile(_ context.Context, row profileRow) (profileRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return profileRow{}, s.failWith
	}
	now := time.Now()
	row.UpdatedAt = &now
	s.profiles[row.UserID] = row
	return row, nil
}

func (s *memStore) ListMeals(_ context.Context, userID int, date string) ([]mealEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []mealEntry{}
	for _, m := range s.meals {
		if m.UserID == userID && day(m.Date.Time) == date {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) CreateMeal(_ context.Context, m mealEntry) (mealEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return mealEntry{}, s.failWith
	}
	m.ID = s.id()
	s.meals = append(s.meals, m)
	return m, nil
}

func (s *memStore) DeleteMeal(_ context.Context, userID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.meals {
		if m.ID == id && m.UserID == userID {
			s.meals = append(s.meals[:i], s.meals[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *memStore) ListExercises(_ context.Context, userID int, date string) ([]exerciseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []exerciseEntry{}
	for _, e := range s.exercises {
		if e.UserID == userID && day(e.Date.Time) == date {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) CreateExercise(_ context.Context, e exerciseEntry) (exerciseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return exerciseEntry{}, s.failWith
	}
	e.ID = s.id()
	s.exercises = append(s.exercises, e)
	return e, nil
}

func (s *memStore) DeleteExercise(_ context.Context, userID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.exercises {
		if e.ID == id && e.UserID == userID {
			s.exercises = append(s.exercises[:i], s.exercises[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func waterKey(userID int, date string) string {
	return fmt.Sprintf("%d/%s", userID, date)
}

func (s *memStore) WaterIntake(_ context.Context, userID int, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	return s.water[waterKey(userID, date)], nil
}

func (s *memStore) AdjustWater(_ context.Context, userID int, date string, deltaMl int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	k := waterKey(userID, date)
	s.water[k] = max(s.water[k]+deltaMl, 0)
	return s.water[k], nil
}

func (s *memStore) ListWeights(_ context.Context, userID int, start, end string) ([]weightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []weightEntry{}
	for _, w := range s.weights {
		d := day(w.Date.Time)
		if w.UserID == userID && d >= start && d <= end {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *memStore) LatestWeight(_ context.Context, userID int, date string) (weightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return weightEntry{}, s.failWith
	}
	var best *weightEntry
	for i, w := range s.weights {
		if w.UserID != userID || day(w.Date.Time) > date {
			continue
		}
		if best == nil || w.Date.After(best.Date.Time) {
			best = &s.weights[i]
		}
	}
	if best == nil {
		return weightEntry{}, ErrNotFound
	}
	return *best, nil
}

func (s *memStore) UpsertWeight(_ context.Context, userID int, date string, weightKg float64) (weightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return weightEntry{}, s.failWith
	}
	for i, w := range s.weights {
		if w.UserID == userID && day(w.Date.Time) == date {
			s.weights[i].WeightKg = weightKg
			return s.weights[i], nil
		}
	}
	w := weightEntry{ID: s.id(), UserID: userID, Date: mustDate(date), WeightKg: weightKg}
	s.weights = append(s.weights, w)
	return w, nil
}

func (s *memStore) UpdateWeight(_ context.Context, userID, id int, date *string, weightKg *float64) (weightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.weights {
		if w.ID != id || w.UserID != userID {
			continue
		}
		if date != nil {
			s.weights[i].Date = mustDate(*date)
		}
		if weightKg != nil {
			s.weights[i].WeightKg = *weightKg
		}
		return s.weights[i], nil
	}
	return weightEntry{}, ErrNotFound
}

func (s *memStore) DeleteWeight(_ context.Context, userID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.weights {
		if w.ID == id && w.UserID == userID {
			s.weights = append(s.weights[:i], s.weights[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *memStore) ListDayTotals(_ context.Context, userID int, start, end string) ([]dayTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	byDate := map[string]*dayTotals{}
	get := func(d DateOnly) *dayTotals {
		k := day(d.Time)
		if byDate[k] == nil {
			byDate[k] = &dayTotals{Date: d}
		}
		return byDate[k]
	}
	for _, m := range s.meals {
		if d := day(m.Date.Time); m.UserID == userID && d >= start && d <= end {
			t := get(m.Date)
			t.CaloriesConsumed += m.TotalCalories
			t.MealCount++
		}
	}
	for _, e := range s.exercises {
		if d := day(e.Date.Time); e.UserID == userID && d >= start && d <= end {
			t := get(e.Date)
			t.CaloriesBurned += e.CaloriesBurned
			t.ExerciseCount++
		}
	}
	out := []dayTotals{}
	for _, t := range byDate {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *memStore) ListCustomFoods(_ context.Context, userID int) ([]nutrition.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return append([]nutrition.FoodItem{}, s.foods[userID]...), nil
}

func (s *memStore) CreateCustomFood(_ context.Context, userID int, f nutrition.FoodItem) (nutrition.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nutrition.FoodItem{}, s.failWith
	}
	f.Custom = true
	s.foods[userID] = append(s.foods[userID], f)
	return f, nil
}

func (s *memStore) ListBadges(_ context.Context, userID int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return append([]string{}, s.badges[userID]...), nil
}

func (s *memStore) UnlockBadges(_ context.Context, userID int, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	have := map[string]bool{}
	for _, id := range s.badges[userID] {
		have[id] = true
	}
	for _, id := range ids {
		if !have[id] {
			s.badges[userID] = append(s.badges[userID], id)
			have[id] = true
		}
	}
	return nil
}

var errStoreDown = errors.New("connection refused")

/* ─── Test harness ───────────────────────────────────────────────────── */

const (
	testUserID   = 1
	testToken    = "tok-1"
	testPassword = "correct horse"
)

// testNow is the fixed clock for handler tests: 2026-10-17.
var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router  *gin.Engine
	store   *memStore
	handler *Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	store := newMemStore()
	store.users = []user{{ID: testUserID, Username: "lan", Email: "lan@example.com", AuthToken: testToken, Password: string(hash)}}

	catalog, err := nutrition.DefaultCatalog()
	require.NoError(t, err)

	h := newHandler(store, catalog, zap.NewNop())
	h.now = func() time.Time { return testNow }

	router := gin.New()
	h.registerRoutes(router)
	return &testServer{router: router, store: store, handler: h}
}

// do sends an authenticated request with an optional JSON body.
func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func pathf(format string, args ...any) string { return fmt.Sprintf(format, args...) }

// decode unmarshals a recorder body into T.
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

// maleProfile is the reference profile: BMR 1780, maintenance 2759.
func maleProfile() nutrition.Profile {
	return nutrition.Profile{
		Age: 30, Sex: nutrition.Male, HeightCm: 180, WeightKg: 80,
		ActivityLevel: nutrition.Moderate, WeightGoal: nutrition.Maintain,
	}
}

// seedProfile stores p with its computed goals for the test user.
func (ts *testServer) seedProfile(t *testing.T, p nutrition.Profile) nutrition.Goals {
	t.Helper()
	g, err := nutrition.ComputeGoals(p)
	require.NoError(t, err)
	_, err = ts.store.SaveProfile(context.Background(), newProfileRow(testUserID, p, g))
	require.NoError(t, err)
	return g
}
