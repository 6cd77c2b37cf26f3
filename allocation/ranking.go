package allocation

import (
	"sort"

	"github.com/Dosada05/prize-engine/models"
)

// RankedPrize pairs a prize with its category for ordering and eligibility.
type RankedPrize struct {
	Prize    models.Prize
	Category *models.Category
}

// IsMain reports whether the prize belongs to the main (overall) category.
func (rp RankedPrize) IsMain() bool { return rp.Category.IsMain }

// OrderPrizes flattens active categories into the allocation order:
// primary key per main_vs_side_priority_mode, then category order_idx,
// then place ascending, then prize ID as the final deterministic key.
// Inactive prizes are skipped entirely; prizes of inactive categories are
// excluded here and reported separately by the solver.
func OrderPrizes(categories []*models.Category, cfg models.RuleConfig) []RankedPrize {
	out := make([]RankedPrize, 0)
	for _, cat := range categories {
		if !cat.IsActive {
			continue
		}
		for _, prize := range cat.Prizes {
			if !prize.IsActive {
				continue
			}
			out = append(out, RankedPrize{Prize: prize, Category: cat})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return comparePrizes(out[i], out[j], cfg) < 0
	})
	return out
}

func comparePrizes(a, b RankedPrize, cfg models.RuleConfig) int {
	switch cfg.MainVsSidePriority {
	case models.PriorityValueFirst:
		if a.Prize.CashAmount != b.Prize.CashAmount {
			if a.Prize.CashAmount > b.Prize.CashAmount {
				return -1
			}
			return 1
		}
		if a.IsMain() != b.IsMain() {
			if a.IsMain() {
				return -1
			}
			return 1
		}
	default: // PriorityMainFirst
		if a.IsMain() != b.IsMain() {
			if a.IsMain() {
				return -1
			}
			return 1
		}
	}
	if a.Category.OrderIdx != b.Category.OrderIdx {
		if a.Category.OrderIdx < b.Category.OrderIdx {
			return -1
		}
		return 1
	}
	if a.Prize.Place != b.Prize.Place {
		if a.Prize.Place < b.Prize.Place {
			return -1
		}
		return 1
	}
	if a.Prize.ID != b.Prize.ID {
		if a.Prize.ID < b.Prize.ID {
			return -1
		}
		return 1
	}
	return 0
}

// tierKey identifies a value-equivalence class of prizes: identical cash
// amount and place, plus identical main-ness under main_first (where main
// prizes are always handed out strictly before side prizes). Under
// value_first a main and a side prize of equal value share a class, which
// is exactly where the prefer_main_on_equal_value discriminator applies.
// Prizes of one class compete in the same tier no matter how far apart the
// allocation order puts them: a cheaper prize of an earlier category
// sitting between two tied prizes must not turn the tie into a first-come
// win.
type tierKey struct {
	isMain bool
	cash   int64
	place  int
}

func valueKey(rp RankedPrize, cfg models.RuleConfig) tierKey {
	k := tierKey{cash: rp.Prize.CashAmount, place: rp.Prize.Place}
	if cfg.MainVsSidePriority != models.PriorityValueFirst {
		k.isMain = rp.IsMain()
	}
	return k
}

// RankPoints converts an official rank into a score: higher rank (lower
// number) gives more points, monotonic and deterministic from roster size.
func RankPoints(rank, rosterSize int) int {
	return rosterSize - rank + 1
}

// OrderCandidates sorts candidates for one prize into a total order:
// rank points descending, official rank ascending, rating descending
// (unrated last), player ID ascending. Two distinct players never compare
// equal. The input slice is sorted in place and returned.
func OrderCandidates(players []*models.Player, rosterSize int) []*models.Player {
	sort.Slice(players, func(i, j int) bool {
		a, b := players[i], players[j]
		pa, pb := RankPoints(a.Rank, rosterSize), RankPoints(b.Rank, rosterSize)
		if pa != pb {
			return pa > pb
		}
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		ra, rb := ratingOrZero(a), ratingOrZero(b)
		if ra != rb {
			return ra > rb
		}
		return a.ID < b.ID
	})
	return players
}

func ratingOrZero(p *models.Player) int {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}
