package models

import "time"

// ConflictType — закрытый набор типов конфликтов.
type ConflictType string

const (
	// ConflictTie: the same player tops two or more value-equal prizes.
	ConflictTie ConflictType = "tie"
	// ConflictMultiEligibility: a player is the only candidate for several
	// prizes whose relative order cannot be decided by configuration.
	ConflictMultiEligibility ConflictType = "multi_eligibility"
	// ConflictPolicyExclusion: honoring one assignment forces another prize
	// empty under the one-prize policy.
	ConflictPolicyExclusion ConflictType = "policy_exclusion"
)

// Suggestion is the solver's proposed resolution for a conflict.
type Suggestion struct {
	PrizeID  string `json:"prize_id"`
	PlayerID string `json:"player_id"`
}

// Winner — один присуждённый приз.
type Winner struct {
	PrizeID  string       `json:"prize_id"`
	PlayerID string       `json:"player_id"`
	Reasons  []ReasonCode `json:"reasons"`
	IsManual bool         `json:"is_manual"`
}

// Conflict — неразрешённая неоднозначность, требующая решения органайзера.
// Блокирует коммит, но не превью.
type Conflict struct {
	ID              string       `json:"id"`
	Type            ConflictType `json:"type"`
	ImpactedPlayers []string     `json:"impacted_players"`
	ImpactedPrizes  []string     `json:"impacted_prizes"`
	Reasons         []ReasonCode `json:"reasons"`
	Suggested       *Suggestion  `json:"suggested,omitempty"`
}

// UnfilledEntry — приз без победителя. ReasonCodes всегда непуст.
type UnfilledEntry struct {
	PrizeID     string       `json:"prize_id"`
	ReasonCodes []ReasonCode `json:"reason_codes"`
}

// CoverageEntry — per-prize диагностика для аудита и отладки.
type CoverageEntry struct {
	PrizeID       string     `json:"prize_id"`
	CategoryID    string     `json:"category_id"`
	CategoryName  string     `json:"category_name"`
	Place         int        `json:"place"`
	EligibleCount int        `json:"eligible_count"`
	PickedCount   int        `json:"picked_count"`
	WinnerID      *string    `json:"winner_id,omitempty"`
	ReasonCode    ReasonCode `json:"reason_code"`
	IsUnfilled    bool       `json:"is_unfilled"`
	IsCritical    bool       `json:"is_critical"`
}

// ResultMeta — счётчики одного запуска солвера.
type ResultMeta struct {
	PlayerCount      int  `json:"player_count"`
	ActivePrizeCount int  `json:"active_prize_count"`
	WinnersCount     int  `json:"winners_count"`
	ConflictCount    int  `json:"conflict_count"`
	UnfilledCount    int  `json:"unfilled_count"`
	DryRun           bool `json:"dry_run"`
}

// AllocationResult — результат одного запуска. Никогда не мутируется после
// возврата: каждый вызов солвера строит свежее значение.
type AllocationResult struct {
	Winners     []Winner         `json:"winners"`
	Conflicts   []Conflict       `json:"conflicts"`
	Unfilled    []UnfilledEntry  `json:"unfilled"`
	Coverage    []CoverageEntry  `json:"coverage"`
	DroppedPins []ManualDecision `json:"dropped_pins,omitempty"` // stale pins, reported, never silently kept
	Meta        ResultMeta       `json:"meta"`
	DryRun      bool             `json:"dry_run"`
}

// HasCriticalCoverage reports whether any coverage entry carries a
// commit-blocking reason code.
func (r *AllocationResult) HasCriticalCoverage() bool {
	for _, c := range r.Coverage {
		if c.IsCritical {
			return true
		}
	}
	return false
}

// PublishedVersion — зафиксированная версия распределения. Номера версий
// строго возрастают в рамках турнира; состав победителей неизменяем.
type PublishedVersion struct {
	TournamentID     string    `json:"tournament_id" db:"tournament_id"`
	Version          int       `json:"version" db:"version"`
	Winners          []Winner  `json:"winners" db:"-"`
	AllocationsCount int       `json:"allocations_count" db:"allocations_count"`
	CommittedAt      time.Time `json:"committed_at" db:"committed_at"`
}
