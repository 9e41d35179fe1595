package nutrition

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// maleProfile is a 30-year-old, 180cm, 80kg moderately active man.
// BMR = 10*80 + 6.25*180 - 5*30 + 5 = 1780; TDEE = 1780*1.55 = 2759.
func maleProfile(goal WeightGoal) Profile {
	return Profile{
		Age:           30,
		Sex:           Male,
		HeightCm:      180,
		WeightKg:      80,
		ActivityLevel: Moderate,
		WeightGoal:    goal,
	}
}

/* ─── BMR / TDEE ─────────────────────────────────────────────────────── */

func TestBMR_MifflinStJeor(t *testing.T) {
	cases := []struct {
		name string
		p    Profile
		want float64
	}{
		{"male", maleProfile(Maintain), 1780},
		{"female", Profile{Age: 25, Sex: Female, HeightCm: 165, WeightKg: 60}, 1345.25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BMR(tc.p)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestBMR_UnknownSexRejected(t *testing.T) {
	p := maleProfile(Maintain)
	p.Sex = "other"
	_, err := BMR(p)
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
}

func TestTargetCalories_ActivityMultipliers(t *testing.T) {
	cases := map[ActivityLevel]int{
		Sedentary:  2136, // 1780 * 1.2
		Light:      2448, // 1780 * 1.375 = 2447.5
		Moderate:   2759,
		Active:     3071, // 1780 * 1.725 = 3070.5
		VeryActive: 3382,
	}
	for level, want := range cases {
		t.Run(string(level), func(t *testing.T) {
			p := maleProfile(Maintain)
			p.ActivityLevel = level
			got, err := TargetCalories(p)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestTargetCalories_GoalStepsAre500(t *testing.T) {
	lose, err := TargetCalories(maleProfile(Lose))
	require.NoError(t, err)
	maintain, err := TargetCalories(maleProfile(Maintain))
	require.NoError(t, err)
	gain, err := TargetCalories(maleProfile(Gain))
	require.NoError(t, err)

	assert.Less(t, lose, maintain)
	assert.Less(t, maintain, gain)
	assert.Equal(t, 500, maintain-lose)
	assert.Equal(t, 500, gain-maintain)
}

func TestTargetCalories_UnknownEnumsRejected(t *testing.T) {
	p := maleProfile(Maintain)
	p.ActivityLevel = "couch"
	_, err := TargetCalories(p)
	assert.ErrorIs(t, err, ErrInvalidInput)

	p = maleProfile("bulk")
	_, err = TargetCalories(p)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

/* ─── Macros / water ─────────────────────────────────────────────────── */

func TestSplitMacros_2000(t *testing.T) {
	got := SplitMacros(2000)
	assert.Equal(t, Macros{CarbGrams: 200, ProteinGrams: 150, FatGrams: 67}, got)
}

func TestWaterTarget_RoundsToNearestHundred(t *testing.T) {
	cases := []struct {
		weight float64
		want   int
	}{
		{68, 2400}, // 2380
		{50, 1800}, // 1750, half rounds up
		{80, 2800},
		{61, 2100}, // 2135
		{0, 0},
		{-5, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, WaterTarget(tc.weight), "weight %.1f", tc.weight)
	}
}

/* ─── ComputeGoals ───────────────────────────────────────────────────── */

func TestComputeGoals_Male(t *testing.T) {
	got, err := ComputeGoals(maleProfile(Maintain))
	require.NoError(t, err)

	want := Goals{
		BMR:                 1780,
		MaintenanceCalories: 2759,
		CalorieTarget:       2759,
		RawCalorieTarget:    2759,
		ProteinGrams:        207, // 2759*0.3/4 = 206.925
		CarbGrams:           276, // 2759*0.4/4 = 275.9
		FatGrams:            92,  // 2759*0.3/9 = 91.97
		BMI:                 24.7,
		BMICategory:         Normal,
		WaterTargetMl:       2800,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeGoals mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeGoals_FemaleLose(t *testing.T) {
	p := Profile{Age: 25, Sex: Female, HeightCm: 165, WeightKg: 60, ActivityLevel: Light, WeightGoal: Lose}
	got, err := ComputeGoals(p)
	require.NoError(t, err)

	// 1345.25 * 1.375 = 1849.72; -500 = 1349.72
	assert.Equal(t, 1345, got.BMR)
	assert.Equal(t, 1850, got.MaintenanceCalories)
	assert.Equal(t, 1350, got.CalorieTarget)
	assert.False(t, got.CalorieFloorApplied)
}

func TestComputeGoals_ClampsToFloor(t *testing.T) {
	// BMR = 400 + 937.5 - 400 - 161 = 776.5; *1.2 - 500 = 431.8
	p := Profile{Age: 80, Sex: Female, HeightCm: 150, WeightKg: 40, ActivityLevel: Sedentary, WeightGoal: Lose}
	got, err := ComputeGoals(p)
	require.NoError(t, err)

	assert.True(t, got.CalorieFloorApplied)
	assert.Equal(t, MinCalorieTarget, got.CalorieTarget)
	assert.Equal(t, 432, got.RawCalorieTarget)
	assert.Equal(t, SplitMacros(MinCalorieTarget), Macros{
		ProteinGrams: got.ProteinGrams, CarbGrams: got.CarbGrams, FatGrams: got.FatGrams,
	})
}

func TestComputeGoals_Deterministic(t *testing.T) {
	p := maleProfile(Gain)
	first, err := ComputeGoals(p)
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := ComputeGoals(p)
		require.NoError(t, err)
		againJSON, err := json.Marshal(again)
		require.NoError(t, err)
		require.Equal(t, string(firstJSON), string(againJSON))
	}
}

func TestComputeGoals_InvalidProfile(t *testing.T) {
	cases := []struct {
		name    string
		mutFn   func(p *Profile)
		wantMsg string
	}{
		{"zero age", func(p *Profile) { p.Age = 0 }, "age"},
		{"implausible age", func(p *Profile) { p.Age = 200 }, "age"},
		{"zero height", func(p *Profile) { p.HeightCm = 0 }, "height_cm"},
		{"negative weight", func(p *Profile) { p.WeightKg = -1 }, "weight_kg"},
		{"empty sex", func(p *Profile) { p.Sex = "" }, "sex"},
		{"unknown activity", func(p *Profile) { p.ActivityLevel = "very_active" }, "activity_level"},
		{"unknown goal", func(p *Profile) { p.WeightGoal = "cut" }, "weight_goal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := maleProfile(Maintain)
			tc.mutFn(&p)
			_, err := ComputeGoals(p)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

/* ─── JSON boundary ──────────────────────────────────────────────────── */

func TestProfile_UnmarshalRejectsUnknownEnums(t *testing.T) {
	cases := map[string]string{
		"sex":      `{"age":30,"sex":"x","height_cm":180,"weight_kg":80,"activity_level":"light","weight_goal":"lose"}`,
		"activity": `{"age":30,"sex":"male","height_cm":180,"weight_kg":80,"activity_level":"extreme","weight_goal":"lose"}`,
		"goal":     `{"age":30,"sex":"male","height_cm":180,"weight_kg":80,"activity_level":"light","weight_goal":"bulk"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var p Profile
			err := json.Unmarshal([]byte(body), &p)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestProfile_UnmarshalValid(t *testing.T) {
	var p Profile
	body := `{"age":30,"sex":"male","height_cm":180,"weight_kg":80,"activity_level":"veryActive","weight_goal":"gain"}`
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	assert.Equal(t, VeryActive, p.ActivityLevel)
	assert.Equal(t, Gain, p.WeightGoal)
	assert.NoError(t, p.Validate())
}
