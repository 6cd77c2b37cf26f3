package models

import (
	"sort"
	"time"
)

// DecisionReason — откуда взялось ручное решение.
type DecisionReason string

const (
	// DecisionManualOverride: явное решение органайзера.
	DecisionManualOverride DecisionReason = "manual_override"
	// DecisionSuggestedResolution: принятая подсказка из конфликта.
	DecisionSuggestedResolution DecisionReason = "suggested_resolution"
)

func (r DecisionReason) Valid() bool {
	return r == DecisionManualOverride || r == DecisionSuggestedResolution
}

// ManualDecision pins a player to a prize for every subsequent solver run,
// until explicitly replaced. The solver treats both reasons uniformly.
type ManualDecision struct {
	PrizeID  string         `json:"prize_id" db:"prize_id"`
	PlayerID string         `json:"player_id" db:"player_id"`
	Reason   DecisionReason `json:"reason" db:"reason"`
	// AppliedBy — user id органайзера из JWT; аудит, на результат не влияет.
	AppliedBy string    `json:"applied_by,omitempty" db:"applied_by"`
	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
}

// ManualDecisionSet — решения, ключованные по призу. Не более одного
// решения на приз; последняя запись по призу выигрывает.
type ManualDecisionSet map[string]ManualDecision

// Merge returns a new set with every override applied on top of the
// existing decisions. Last write wins per prize; inputs are not mutated.
func (s ManualDecisionSet) Merge(overrides ...ManualDecision) ManualDecisionSet {
	merged := make(ManualDecisionSet, len(s)+len(overrides))
	for k, v := range s {
		merged[k] = v
	}
	for _, o := range overrides {
		if o.PrizeID == "" || o.PlayerID == "" {
			continue
		}
		if !o.Reason.Valid() {
			o.Reason = DecisionManualOverride
		}
		merged[o.PrizeID] = o
	}
	return merged
}

// Without returns a copy of the set with the pin for prizeID removed.
func (s ManualDecisionSet) Without(prizeID string) ManualDecisionSet {
	out := make(ManualDecisionSet, len(s))
	for k, v := range s {
		if k != prizeID {
			out[k] = v
		}
	}
	return out
}

// Sorted returns the decisions ordered by prize ID, for deterministic
// iteration and stable serialization.
func (s ManualDecisionSet) Sorted() []ManualDecision {
	out := make([]ManualDecision, 0, len(s))
	for _, d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PrizeID < out[j].PrizeID })
	return out
}
