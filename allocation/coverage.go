package allocation

import (
	"github.com/Dosada05/prize-engine/models"
)

// RunDiagnostics is the raw per-prize bookkeeping of one solver pass,
// consumed by BuildCoverage. It is produced by the solver and never fed
// back into it.
type RunDiagnostics struct {
	Ordered  []RankedPrize // active prizes, allocation order
	Inactive []RankedPrize // active prizes of inactive categories

	EligibleCount map[string]int    // prizeID -> pre-exclusion eligible count
	WinnerByPrize map[string]string // prizeID -> playerID
	Conflicted    map[string]bool   // prizeID -> impacted by a conflict
	Unfilled      map[string][]models.ReasonCode

	DroppedPins []models.ManualDecision
}

// BuildCoverage turns a solver run into per-prize diagnostic records,
// enriched with category display metadata. Read-only: it never alters
// winners, conflicts or unfilled entries.
func BuildCoverage(d *RunDiagnostics) []models.CoverageEntry {
	entries := make([]models.CoverageEntry, 0, len(d.Ordered)+len(d.Inactive))

	for _, rp := range d.Ordered {
		e := models.CoverageEntry{
			PrizeID:       rp.Prize.ID,
			CategoryID:    rp.Category.ID,
			CategoryName:  rp.Category.Name,
			Place:         rp.Prize.Place,
			EligibleCount: d.EligibleCount[rp.Prize.ID],
		}
		switch {
		case d.WinnerByPrize[rp.Prize.ID] != "":
			winnerID := d.WinnerByPrize[rp.Prize.ID]
			e.PickedCount = 1
			e.WinnerID = &winnerID
			e.ReasonCode = models.ReasonAllocated
		case d.Conflicted[rp.Prize.ID]:
			e.ReasonCode = models.ReasonConflictPending
		default:
			reasons := d.Unfilled[rp.Prize.ID]
			if len(reasons) == 0 {
				// A prize the pass never classified is an internal defect.
				reasons = []models.ReasonCode{models.ReasonInternalError}
			}
			e.ReasonCode = reasons[0]
			e.IsUnfilled = true
		}
		e.IsCritical = e.ReasonCode.IsCritical()
		entries = append(entries, e)
	}

	for _, rp := range d.Inactive {
		entries = append(entries, models.CoverageEntry{
			PrizeID:      rp.Prize.ID,
			CategoryID:   rp.Category.ID,
			CategoryName: rp.Category.Name,
			Place:        rp.Prize.Place,
			ReasonCode:   models.ReasonCategoryInactive,
			IsUnfilled:   true,
			IsCritical:   true,
		})
	}

	return entries
}
