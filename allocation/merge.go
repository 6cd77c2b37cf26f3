package allocation

import (
	"sort"
	"time"

	"github.com/Dosada05/prize-engine/models"
)

// AcceptSuggestion converts one conflict's suggested resolution into a
// manual decision. The second return is false when the conflict carries no
// suggestion.
func AcceptSuggestion(c models.Conflict, now time.Time) (models.ManualDecision, bool) {
	if c.Suggested == nil {
		return models.ManualDecision{}, false
	}
	return models.ManualDecision{
		PrizeID:   c.Suggested.PrizeID,
		PlayerID:  c.Suggested.PlayerID,
		Reason:    models.DecisionSuggestedResolution,
		CreatedAt: now,
	}, true
}

// AcceptAllSuggestions resolves every conflict that has a suggestion,
// first-come-first-served within the batch: conflicts are visited in the
// allocation order of their suggested prize, and a suggestion whose prize
// or player was already claimed earlier in the batch is skipped.
func AcceptAllSuggestions(conflicts []models.Conflict, ordered []RankedPrize, now time.Time) []models.ManualDecision {
	prizePos := make(map[string]int, len(ordered))
	for i, rp := range ordered {
		prizePos[rp.Prize.ID] = i
	}

	// Visit in prize priority order; unknown prizes go last, by conflict ID.
	sorted := make([]models.Conflict, len(conflicts))
	copy(sorted, conflicts)
	less := func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		pa, pb := len(ordered), len(ordered)
		if a.Suggested != nil {
			if pos, ok := prizePos[a.Suggested.PrizeID]; ok {
				pa = pos
			}
		}
		if b.Suggested != nil {
			if pos, ok := prizePos[b.Suggested.PrizeID]; ok {
				pb = pos
			}
		}
		if pa != pb {
			return pa < pb
		}
		return a.ID < b.ID
	}
	sort.SliceStable(sorted, less)

	claimedPrize := make(map[string]bool)
	claimedPlayer := make(map[string]bool)
	var out []models.ManualDecision
	for _, c := range sorted {
		dec, ok := AcceptSuggestion(c, now)
		if !ok {
			continue
		}
		if claimedPrize[dec.PrizeID] || claimedPlayer[dec.PlayerID] {
			continue
		}
		claimedPrize[dec.PrizeID] = true
		claimedPlayer[dec.PlayerID] = true
		out = append(out, dec)
	}
	return out
}
