package allocation

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/prize-engine/models"
)

// greedySolver runs a single deterministic greedy pass over all active
// prizes: pinned decisions first, then prizes in PriorityRanker order,
// value-equal prizes resolved simultaneously as one tier.
type greedySolver struct{}

func NewGreedySolver() Solver {
	return &greedySolver{}
}

func (s *greedySolver) GetName() string {
	return "GreedyPriority"
}

// budget tracks prizes already charged to one player within a pass.
type budget struct {
	main int
	side int
}

func (b budget) exhaustedFor(policy models.MultiPrizePolicy, isMain bool) bool {
	switch policy {
	case models.MultiPrizeUnlimited:
		return false
	case models.MultiPrizeMainPlusOneSide:
		if isMain {
			return b.main >= 1
		}
		return b.side >= 1
	default: // single
		return b.main+b.side >= 1
	}
}

// Solve never fails for data-shape problems it can classify: every such
// case becomes a reason code. A panic anywhere inside the pass is caught
// here and reported as a single critical INTERNAL_ERROR coverage entry.
func (s *greedySolver) Solve(ctx context.Context, params SolveParams) (result *models.AllocationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = internalErrorResult(params, fmt.Sprintf("%v", r))
			err = nil
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := params.Rules.Normalize()
	rosterSize := len(params.Players)

	playersByID := make(map[string]*models.Player, rosterSize)
	for _, p := range params.Players {
		playersByID[p.ID] = p
	}

	ev := NewEvaluator(cfg, params.Categories, params.Players)
	ordered := OrderPrizes(params.Categories, cfg)

	diag := &RunDiagnostics{
		Ordered:       ordered,
		EligibleCount: make(map[string]int, len(ordered)),
		WinnerByPrize: make(map[string]string),
		Conflicted:    make(map[string]bool),
		Unfilled:      make(map[string][]models.ReasonCode),
	}

	var (
		winners     []models.Winner
		conflicts   []models.Conflict
		unfilled    []models.UnfilledEntry
		droppedPins []models.ManualDecision
	)

	budgets := make(map[string]budget, rosterSize)
	conflictedPlayers := make(map[string]bool)

	charge := func(playerID string, isMain bool) {
		b := budgets[playerID]
		if isMain {
			b.main++
		} else {
			b.side++
		}
		budgets[playerID] = b
	}

	// Active prizes inside inactive categories never yield winners and are
	// reported as a hard unfilled reason.
	for _, cat := range params.Categories {
		if cat.IsActive {
			continue
		}
		for _, prize := range cat.Prizes {
			if !prize.IsActive {
				continue
			}
			unfilled = append(unfilled, models.UnfilledEntry{
				PrizeID:     prize.ID,
				ReasonCodes: []models.ReasonCode{models.ReasonCategoryInactive},
			})
			diag.Unfilled[prize.ID] = []models.ReasonCode{models.ReasonCategoryInactive}
			diag.Inactive = append(diag.Inactive, RankedPrize{Prize: prize, Category: cat})
		}
	}

	// Pre-compute, per active prize, the pre-exclusion eligible pool and a
	// tally of ineligibility reasons (for TOO_STRICT classification).
	pools := make(map[string][]*models.Player, len(ordered))
	ineligibleReasons := make(map[string][]models.ReasonCode, len(ordered))
	for _, rp := range ordered {
		var pool []*models.Player
		var reasons []models.ReasonCode
		for _, p := range params.Players {
			ok, reason := ev.Evaluate(p, rp.Category)
			if ok {
				pool = append(pool, p)
			} else {
				reasons = append(reasons, reason)
			}
		}
		pools[rp.Prize.ID] = OrderCandidates(pool, rosterSize)
		ineligibleReasons[rp.Prize.ID] = reasons
		diag.EligibleCount[rp.Prize.ID] = len(pool)
	}

	// Phase 1: fix manual decisions as pre-assigned winners, in prize
	// order. A pin whose player is gone or no longer eligible is dropped
	// and reported, never silently honored.
	pinnedPrize := make(map[string]bool)
	droppedPrize := make(map[string]bool)
	rankedByID := make(map[string]RankedPrize, len(ordered))
	for _, rp := range ordered {
		rankedByID[rp.Prize.ID] = rp
	}
	for _, rp := range ordered {
		dec, ok := params.Decisions[rp.Prize.ID]
		if !ok {
			continue
		}
		player, exists := playersByID[dec.PlayerID]
		eligible := false
		if exists {
			eligible, _ = ev.Evaluate(player, rp.Category)
		}
		if !exists || !eligible {
			droppedPins = append(droppedPins, dec)
			droppedPrize[rp.Prize.ID] = true
			continue
		}
		reason := models.ReasonManualOverride
		if dec.Reason == models.DecisionSuggestedResolution {
			reason = models.ReasonSuggestedAccepted
		}
		winners = append(winners, models.Winner{
			PrizeID:  rp.Prize.ID,
			PlayerID: dec.PlayerID,
			Reasons:  []models.ReasonCode{reason},
			IsManual: true,
		})
		diag.WinnerByPrize[rp.Prize.ID] = dec.PlayerID
		pinnedPrize[rp.Prize.ID] = true
		charge(dec.PlayerID, rp.IsMain())
	}
	// Decisions pointing at unknown or inactive prizes are stale too.
	for _, dec := range params.Decisions.Sorted() {
		if _, known := rankedByID[dec.PrizeID]; !known {
			droppedPins = append(droppedPins, dec)
		}
	}

	remaining := make([]RankedPrize, 0, len(ordered))
	for _, rp := range ordered {
		if !pinnedPrize[rp.Prize.ID] {
			remaining = append(remaining, rp)
		}
	}

	// Phase 2: greedy pass over value tiers. A tier is a value-equivalence
	// class of the remaining prizes, not a run of adjacent ones: equal-value
	// prizes stay tied even when the allocation order interleaves other
	// prizes between them. Tiers run in first-occurrence order; prizes of
	// one tier select their top candidates against the same exclusion
	// state, and the same player topping two of them is a conflict, not a
	// first-come win.
	var tierOrder []tierKey
	tiersByKey := make(map[tierKey][]RankedPrize, len(remaining))
	for _, rp := range remaining {
		k := valueKey(rp, cfg)
		if _, ok := tiersByKey[k]; !ok {
			tierOrder = append(tierOrder, k)
		}
		tiersByKey[k] = append(tiersByKey[k], rp)
	}
	for _, k := range tierOrder {
		tier := tiersByKey[k]

		type pick struct {
			prize RankedPrize
			pool  []*models.Player // after exclusions
			top   *models.Player
		}
		picks := make([]pick, 0, len(tier))
		topCount := make(map[string]int)
		for _, rp := range tier {
			var pool []*models.Player
			for _, p := range pools[rp.Prize.ID] {
				if conflictedPlayers[p.ID] {
					continue
				}
				if budgets[p.ID].exhaustedFor(cfg.MultiPrizePolicy, rp.IsMain()) {
					continue
				}
				pool = append(pool, p)
			}
			pk := pick{prize: rp, pool: pool}
			if len(pool) > 0 {
				pk.top = pool[0]
				topCount[pool[0].ID]++
			}
			picks = append(picks, pk)
		}

		handledConflict := make(map[string]bool)
		type tierWin struct {
			w      models.Winner
			isMain bool
		}
		var tierWinners []tierWin
		for _, pk := range picks {
			switch {
			case pk.top == nil:
				reasons := classifyEmptyPool(
					diag.EligibleCount[pk.prize.Prize.ID],
					ineligibleReasons[pk.prize.Prize.ID],
				)
				if droppedPrize[pk.prize.Prize.ID] {
					reasons = append(reasons, models.ReasonStalePinDropped)
				}
				unfilled = append(unfilled, models.UnfilledEntry{
					PrizeID:     pk.prize.Prize.ID,
					ReasonCodes: reasons,
				})
				diag.Unfilled[pk.prize.Prize.ID] = reasons

			case topCount[pk.top.ID] > 1:
				if handledConflict[pk.top.ID] {
					continue
				}
				handledConflict[pk.top.ID] = true

				var impacted []RankedPrize
				var alternatives []int
				for _, other := range picks {
					if other.top != nil && other.top.ID == pk.top.ID {
						impacted = append(impacted, other.prize)
						alternatives = append(alternatives, len(other.pool)-1)
					}
				}
				suggested := SuggestPrize(impacted, cfg)
				ctype := classifyConflict(alternatives)
				conflicts = append(conflicts, newConflict(params.TournamentID, pk.top.ID, impacted, ctype, suggested))
				for _, rp := range impacted {
					diag.Conflicted[rp.Prize.ID] = true
				}
				conflictedPlayers[pk.top.ID] = true

			default:
				reasons := []models.ReasonCode{models.ReasonTopRanked}
				// Equal official rank resolved by rating/ID is worth an
				// explicit trace in the audit trail.
				if len(pk.pool) > 1 && pk.pool[1].Rank == pk.top.Rank {
					reasons = append(reasons, models.ReasonTieBreakApplied)
				}
				if droppedPrize[pk.prize.Prize.ID] {
					reasons = append(reasons, models.ReasonStalePinDropped)
				}
				tierWinners = append(tierWinners, tierWin{
					w: models.Winner{
						PrizeID:  pk.prize.Prize.ID,
						PlayerID: pk.top.ID,
						Reasons:  reasons,
					},
					isMain: pk.prize.IsMain(),
				})
			}
		}

		// Budgets are charged only after the whole tier settles, so every
		// tier member selected against the same exclusion state.
		for _, tw := range tierWinners {
			winners = append(winners, tw.w)
			diag.WinnerByPrize[tw.w.PrizeID] = tw.w.PlayerID
			charge(tw.w.PlayerID, tw.isMain)
		}
	}

	diag.DroppedPins = droppedPins
	coverage := BuildCoverage(diag)

	result = &models.AllocationResult{
		Winners:     winners,
		Conflicts:   conflicts,
		Unfilled:    sortUnfilled(unfilled),
		Coverage:    coverage,
		DroppedPins: droppedPins,
		DryRun:      params.DryRun,
		Meta: models.ResultMeta{
			PlayerCount:      rosterSize,
			ActivePrizeCount: len(ordered),
			WinnersCount:     len(winners),
			ConflictCount:    len(conflicts),
			UnfilledCount:    len(unfilled),
			DryRun:           params.DryRun,
		},
	}
	return result, nil
}

// classifyEmptyPool maps an empty candidate pool to its unfilled reasons.
// A pool that was non-empty before exclusions was blocked by the one-prize
// policy; a pool empty from the start is either dominated by one criterion
// field (too strict) or simply has no eligible players.
func classifyEmptyPool(eligibleBefore int, reasons []models.ReasonCode) []models.ReasonCode {
	if eligibleBefore > 0 {
		return []models.ReasonCode{models.ReasonBlockedByOnePrize}
	}
	if field, ok := dominantField(reasons); ok {
		return []models.ReasonCode{models.TooStrictCriteria(field), models.ReasonNoEligiblePlayers}
	}
	return []models.ReasonCode{models.ReasonNoEligiblePlayers}
}

// dominantField reports the single criterion field responsible for every
// ineligibility, when there is exactly one.
func dominantField(reasons []models.ReasonCode) (models.CriterionField, bool) {
	var field models.CriterionField
	found := false
	for _, r := range reasons {
		f, ok := r.FieldOf()
		if !ok {
			return "", false
		}
		if !found {
			field = f
			found = true
		} else if f != field {
			return "", false
		}
	}
	return field, found
}

func sortUnfilled(entries []models.UnfilledEntry) []models.UnfilledEntry {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].PrizeID < entries[j].PrizeID })
	return entries
}

// internalErrorResult is the degraded result returned when the pass
// panicked: no winners, a single commit-blocking coverage entry.
func internalErrorResult(params SolveParams, detail string) *models.AllocationResult {
	_ = detail // detail is intentionally not exposed; the code is enough for the caller
	return &models.AllocationResult{
		Winners:   []models.Winner{},
		Conflicts: []models.Conflict{},
		Unfilled:  []models.UnfilledEntry{},
		Coverage: []models.CoverageEntry{{
			PrizeID:    "",
			ReasonCode: models.ReasonInternalError,
			IsUnfilled: true,
			IsCritical: true,
		}},
		DryRun: params.DryRun,
		Meta: models.ResultMeta{
			PlayerCount: len(params.Players),
			DryRun:      params.DryRun,
		},
	}
}
