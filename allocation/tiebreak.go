package allocation

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Dosada05/prize-engine/models"
)

var conflictNamespace = uuid.MustParse("7a1e63d4-52f0-4f7e-9c55-0d8b1f6a9e21")

// SuggestPrize picks the prize a tied player should be steered to, using
// the ordered discriminators: prefer main (when configured), then higher
// cash value, then lower place number, then category order_idx, then prize
// ID. The input must be non-empty; the pick is always deterministic.
func SuggestPrize(prizes []RankedPrize, cfg models.RuleConfig) RankedPrize {
	best := prizes[0]
	for _, p := range prizes[1:] {
		if suggestionLess(p, best, cfg) {
			best = p
		}
	}
	return best
}

func suggestionLess(a, b RankedPrize, cfg models.RuleConfig) bool {
	if cfg.PreferMainOnEqualValue && a.IsMain() != b.IsMain() {
		return a.IsMain()
	}
	if a.Prize.CashAmount != b.Prize.CashAmount {
		return a.Prize.CashAmount > b.Prize.CashAmount
	}
	if a.Prize.Place != b.Prize.Place {
		return a.Prize.Place < b.Prize.Place
	}
	if a.Category.OrderIdx != b.Category.OrderIdx {
		return a.Category.OrderIdx < b.Category.OrderIdx
	}
	return a.Prize.ID < b.Prize.ID
}

// newConflict builds a conflict for a player topping several value-equal
// prizes at once. IDs are content-derived (uuid v5) so that identical
// inputs always yield byte-identical results.
func newConflict(tournamentID string, playerID string, prizes []RankedPrize, ctype models.ConflictType, suggested RankedPrize) models.Conflict {
	prizeIDs := make([]string, len(prizes))
	for i, p := range prizes {
		prizeIDs[i] = p.Prize.ID
	}
	sort.Strings(prizeIDs)

	id := uuid.NewSHA1(conflictNamespace, []byte(tournamentID+"|"+playerID+"|"+strings.Join(prizeIDs, ","))).String()

	return models.Conflict{
		ID:              id,
		Type:            ctype,
		ImpactedPlayers: []string{playerID},
		ImpactedPrizes:  prizeIDs,
		Reasons:         []models.ReasonCode{models.ReasonConflictPending},
		Suggested: &models.Suggestion{
			PrizeID:  suggested.Prize.ID,
			PlayerID: playerID,
		},
	}
}

// classifyConflict decides the conflict type from the alternatives each
// impacted prize has besides the tied player: everyone has alternatives →
// plain tie; nobody does → resolving it either way necessarily empties the
// other prizes (policy exclusion); mixed → multi-eligibility.
func classifyConflict(alternativeCounts []int) models.ConflictType {
	withAlt := 0
	for _, n := range alternativeCounts {
		if n > 0 {
			withAlt++
		}
	}
	switch withAlt {
	case len(alternativeCounts):
		return models.ConflictTie
	case 0:
		return models.ConflictPolicyExclusion
	default:
		return models.ConflictMultiEligibility
	}
}
