package models

import "time"

// AgeBandPolicy — как трактуются возрастные диапазоны категорий.
type AgeBandPolicy string

const (
	// AgeBandsNonOverlapping assigns a player to exactly one band: the
	// narrowest band containing their age.
	AgeBandsNonOverlapping AgeBandPolicy = "non_overlapping"
	// AgeBandsOverlapping allows membership in every band containing the age.
	AgeBandsOverlapping AgeBandPolicy = "overlapping"
)

func (p AgeBandPolicy) Valid() bool {
	switch p {
	case AgeBandsNonOverlapping, AgeBandsOverlapping:
		return true
	}
	return false
}

// MainVsSidePriorityMode — какие призы раздаются первыми.
type MainVsSidePriorityMode string

const (
	// PriorityMainFirst allocates all main prizes before any side prize.
	PriorityMainFirst MainVsSidePriorityMode = "main_first"
	// PriorityValueFirst orders prizes by cash value regardless of main-ness.
	PriorityValueFirst MainVsSidePriorityMode = "value_first"
)

func (m MainVsSidePriorityMode) Valid() bool {
	switch m {
	case PriorityMainFirst, PriorityValueFirst:
		return true
	}
	return false
}

// MultiPrizePolicy limits how many prizes one player may win in a pass.
type MultiPrizePolicy string

const (
	// MultiPrizeSingle: one prize total.
	MultiPrizeSingle MultiPrizePolicy = "single"
	// MultiPrizeMainPlusOneSide: at most one main and one side prize.
	MultiPrizeMainPlusOneSide MultiPrizePolicy = "main_plus_one_side"
	// MultiPrizeUnlimited: no cap.
	MultiPrizeUnlimited MultiPrizePolicy = "unlimited"
)

func (m MultiPrizePolicy) Valid() bool {
	switch m {
	case MultiPrizeSingle, MultiPrizeMainPlusOneSide, MultiPrizeUnlimited:
		return true
	}
	return false
}

// RuleConfig — конфигурация правил распределения для одного турнира.
// Все перечислимые поля — закрытые enum'ы, не произвольные строки.
type RuleConfig struct {
	StrictAge              bool                   `json:"strict_age"`
	AllowMissingDOBForAge  bool                   `json:"allow_missing_dob_for_age"`
	MaxAgeInclusive        bool                   `json:"max_age_inclusive"` // ≤ vs <
	AgeBandPolicy          AgeBandPolicy          `json:"age_band_policy"`
	AllowUnratedInRating   bool                   `json:"allow_unrated_in_rating"`
	PreferMainOnEqualValue bool                   `json:"prefer_main_on_equal_value"`
	MainVsSidePriority     MainVsSidePriorityMode `json:"main_vs_side_priority_mode"`
	MultiPrizePolicy       MultiPrizePolicy       `json:"multi_prize_policy"`
	// ReferenceDate is the fixed date age is computed at (usually the
	// tournament start date). Zero means "today", resolved once per run.
	ReferenceDate time.Time `json:"reference_date,omitempty"`
}

// Normalize fills unset enum fields with the documented defaults.
// A missing rule config never fails a run.
func (c RuleConfig) Normalize() RuleConfig {
	if !c.AgeBandPolicy.Valid() {
		c.AgeBandPolicy = AgeBandsNonOverlapping
	}
	if !c.MainVsSidePriority.Valid() {
		c.MainVsSidePriority = PriorityMainFirst
	}
	if !c.MultiPrizePolicy.Valid() {
		c.MultiPrizePolicy = MultiPrizeSingle
	}
	if c.ReferenceDate.IsZero() {
		c.ReferenceDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	return c
}
