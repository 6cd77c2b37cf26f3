package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/prize-engine/models"
)

// refDate is the fixed reference date every test computes ages against.
var refDate = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

func intp(v int) *int                     { return &v }
func strp(v string) *string               { return &v }
func genp(g models.Gender) *models.Gender { return &g }
func dobAged(age int) *time.Time {
	d := time.Date(refDate.Year()-age, time.January, 15, 0, 0, 0, 0, time.UTC)
	return &d
}

func baseRules() models.RuleConfig {
	return models.RuleConfig{
		AgeBandPolicy:      models.AgeBandsOverlapping,
		MainVsSidePriority: models.PriorityMainFirst,
		MultiPrizePolicy:   models.MultiPrizeSingle,
		MaxAgeInclusive:    true,
		ReferenceDate:      refDate,
	}
}

func category(id string, criteria models.CategoryCriteria) *models.Category {
	return &models.Category{
		ID:       id,
		Name:     id,
		IsActive: true,
		Criteria: criteria,
	}
}

func TestEvaluateAge(t *testing.T) {
	t.Parallel()

	band := models.CategoryCriteria{MinAge: intp(10), MaxAge: intp(14)}

	tests := []struct {
		name       string
		player     *models.Player
		cfg        func(models.RuleConfig) models.RuleConfig
		wantOK     bool
		wantReason models.ReasonCode
	}{
		{
			name:   "inside band",
			player: &models.Player{ID: "p1", Rank: 1, DOB: dobAged(12)},
			wantOK: true,
		},
		{
			name:   "on max boundary inclusive",
			player: &models.Player{ID: "p1", Rank: 1, DOB: dobAged(14)},
			wantOK: true,
		},
		{
			name:   "on max boundary exclusive",
			player: &models.Player{ID: "p1", Rank: 1, DOB: dobAged(14)},
			cfg: func(c models.RuleConfig) models.RuleConfig {
				c.MaxAgeInclusive = false
				return c
			},
			wantOK:     false,
			wantReason: models.ReasonAgeOutOfRange,
		},
		{
			name:       "below band",
			player:     &models.Player{ID: "p1", Rank: 1, DOB: dobAged(9)},
			wantOK:     false,
			wantReason: models.ReasonAgeOutOfRange,
		},
		{
			name:       "above band",
			player:     &models.Player{ID: "p1", Rank: 1, DOB: dobAged(15)},
			wantOK:     false,
			wantReason: models.ReasonAgeOutOfRange,
		},
		{
			name:   "missing dob tolerated by default",
			player: &models.Player{ID: "p1", Rank: 1},
			wantOK: true,
		},
		{
			name:   "missing dob under strict age",
			player: &models.Player{ID: "p1", Rank: 1},
			cfg: func(c models.RuleConfig) models.RuleConfig {
				c.StrictAge = true
				return c
			},
			wantOK:     false,
			wantReason: models.ReasonNoDOB,
		},
		{
			name:   "missing dob under strict age with explicit allowance",
			player: &models.Player{ID: "p1", Rank: 1},
			cfg: func(c models.RuleConfig) models.RuleConfig {
				c.StrictAge = true
				c.AllowMissingDOBForAge = true
				return c
			},
			wantOK: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := baseRules()
			if tc.cfg != nil {
				cfg = tc.cfg(cfg)
			}
			cat := category("u14", band)
			ev := NewEvaluator(cfg, []*models.Category{cat}, []*models.Player{tc.player})

			ok, reason := ev.Evaluate(tc.player, cat)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantReason, reason)
		})
	}
}

func TestEvaluateRating(t *testing.T) {
	t.Parallel()

	band := models.CategoryCriteria{MinRating: intp(1200), MaxRating: intp(1400)}

	tests := []struct {
		name         string
		rating       *int
		allowUnrated bool
		wantOK       bool
		wantReason   models.ReasonCode
	}{
		{name: "inside band", rating: intp(1300), wantOK: true},
		{name: "on min boundary", rating: intp(1200), wantOK: true},
		{name: "on max boundary", rating: intp(1400), wantOK: true},
		{name: "below band", rating: intp(1150), wantOK: false, wantReason: models.ReasonRatingOutOfRange},
		{name: "above band", rating: intp(1500), wantOK: false, wantReason: models.ReasonRatingOutOfRange},
		{name: "unrated excluded by default", rating: nil, wantOK: false, wantReason: models.ReasonUnrated},
		{name: "unrated allowed by config", rating: nil, allowUnrated: true, wantOK: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := baseRules()
			cfg.AllowUnratedInRating = tc.allowUnrated
			cat := category("rated", band)
			p := &models.Player{ID: "p1", Rank: 1, Rating: tc.rating}
			ev := NewEvaluator(cfg, []*models.Category{cat}, []*models.Player{p})

			ok, reason := ev.Evaluate(p, cat)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantReason, reason)
		})
	}
}

func TestEvaluateOtherCriteria(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		criteria   models.CategoryCriteria
		player     *models.Player
		wantOK     bool
		wantReason models.ReasonCode
	}{
		{
			name:     "gender match",
			criteria: models.CategoryCriteria{Gender: genp(models.GenderFemale)},
			player:   &models.Player{ID: "p1", Rank: 1, Gender: genp(models.GenderFemale)},
			wantOK:   true,
		},
		{
			name:       "gender mismatch",
			criteria:   models.CategoryCriteria{Gender: genp(models.GenderFemale)},
			player:     &models.Player{ID: "p1", Rank: 1, Gender: genp(models.GenderMale)},
			wantOK:     false,
			wantReason: models.ReasonGenderMismatch,
		},
		{
			name:       "unknown gender never matches a gender criterion",
			criteria:   models.CategoryCriteria{Gender: genp(models.GenderFemale)},
			player:     &models.Player{ID: "p1", Rank: 1},
			wantOK:     false,
			wantReason: models.ReasonGenderMismatch,
		},
		{
			name:     "state match",
			criteria: models.CategoryCriteria{State: strp("WA")},
			player:   &models.Player{ID: "p1", Rank: 1, State: strp("WA")},
			wantOK:   true,
		},
		{
			name:       "unknown state never matches a state criterion",
			criteria:   models.CategoryCriteria{State: strp("WA")},
			player:     &models.Player{ID: "p1", Rank: 1},
			wantOK:     false,
			wantReason: models.ReasonLocationMismatch,
		},
		{
			name:       "club mismatch",
			criteria:   models.CategoryCriteria{Club: strp("Knights")},
			player:     &models.Player{ID: "p1", Rank: 1, Club: strp("Rooks")},
			wantOK:     false,
			wantReason: models.ReasonLocationMismatch,
		},
		{
			name:       "disability required",
			criteria:   models.CategoryCriteria{RequiresDisability: true},
			player:     &models.Player{ID: "p1", Rank: 1},
			wantOK:     false,
			wantReason: models.ReasonDisabilityRequired,
		},
		{
			name:     "disability satisfied",
			criteria: models.CategoryCriteria{RequiresDisability: true},
			player:   &models.Player{ID: "p1", Rank: 1, HasDisability: true},
			wantOK:   true,
		},
		{
			name:       "missing tag",
			criteria:   models.CategoryCriteria{Tags: []string{"veteran"}},
			player:     &models.Player{ID: "p1", Rank: 1, Tags: []string{"junior"}},
			wantOK:     false,
			wantReason: models.ReasonTagMismatch,
		},
		{
			name:     "all tags present",
			criteria: models.CategoryCriteria{Tags: []string{"veteran", "local"}},
			player:   &models.Player{ID: "p1", Rank: 1, Tags: []string{"local", "veteran"}},
			wantOK:   true,
		},
		{
			name:     "empty criteria admit everyone",
			criteria: models.CategoryCriteria{},
			player:   &models.Player{ID: "p1", Rank: 1},
			wantOK:   true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cat := category("c1", tc.criteria)
			ev := NewEvaluator(baseRules(), []*models.Category{cat}, []*models.Player{tc.player})

			ok, reason := ev.Evaluate(tc.player, cat)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantReason, reason)
		})
	}
}

func TestNonOverlappingAgeBands(t *testing.T) {
	t.Parallel()

	// Two bands both contain age 11; the narrower one claims the player.
	narrow := category("u12", models.CategoryCriteria{MinAge: intp(8), MaxAge: intp(12)})
	wide := category("open-youth", models.CategoryCriteria{MinAge: intp(6), MaxAge: intp(18)})
	player := &models.Player{ID: "p1", Rank: 1, DOB: dobAged(11)}

	cfg := baseRules()
	cfg.AgeBandPolicy = models.AgeBandsNonOverlapping
	ev := NewEvaluator(cfg, []*models.Category{narrow, wide}, []*models.Player{player})

	ok, _ := ev.Evaluate(player, narrow)
	assert.True(t, ok, "player belongs to the narrowest band")

	ok, reason := ev.Evaluate(player, wide)
	assert.False(t, ok, "player is excluded from every other band")
	assert.Equal(t, models.ReasonAgeOutOfRange, reason)

	// Under the overlapping policy the same player fits both.
	evOverlap := NewEvaluator(baseRules(), []*models.Category{narrow, wide}, []*models.Player{player})
	ok, _ = evOverlap.Evaluate(player, narrow)
	assert.True(t, ok)
	ok, _ = evOverlap.Evaluate(player, wide)
	assert.True(t, ok)
}

func TestNonOverlappingEqualWidthTieGoesToLowerOrderIdx(t *testing.T) {
	t.Parallel()

	a := category("band-a", models.CategoryCriteria{MinAge: intp(10), MaxAge: intp(14)})
	a.OrderIdx = 2
	b := category("band-b", models.CategoryCriteria{MinAge: intp(11), MaxAge: intp(15)})
	b.OrderIdx = 1
	player := &models.Player{ID: "p1", Rank: 1, DOB: dobAged(12)}

	cfg := baseRules()
	cfg.AgeBandPolicy = models.AgeBandsNonOverlapping
	ev := NewEvaluator(cfg, []*models.Category{a, b}, []*models.Player{player})

	ok, _ := ev.Evaluate(player, b)
	require.True(t, ok, "equal width resolves by lower order_idx")
	ok, _ = ev.Evaluate(player, a)
	assert.False(t, ok)
}
