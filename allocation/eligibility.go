package allocation

import (
	"github.com/Dosada05/prize-engine/models"
)

// Evaluator decides whether a player satisfies a category's criteria under
// the active rule configuration. It is built once per solver run and is
// side-effect free after construction: Evaluate never mutates anything and
// always terminates with either eligibility or a stable reason code.
type Evaluator struct {
	cfg models.RuleConfig

	// assignedBand maps playerID -> categoryID of the single age band the
	// player belongs to under the non-overlapping policy. Empty value means
	// no band contains the player's age.
	assignedBand map[string]string
}

// NewEvaluator precomputes the per-player age-band assignment needed for
// the non-overlapping policy: each player with a known DOB is assigned to
// the narrowest active band containing their age (ties go to the lower
// order_idx). Under the overlapping policy the map stays nil.
func NewEvaluator(cfg models.RuleConfig, categories []*models.Category, players []*models.Player) *Evaluator {
	e := &Evaluator{cfg: cfg}
	if cfg.AgeBandPolicy != models.AgeBandsNonOverlapping {
		return e
	}

	e.assignedBand = make(map[string]string, len(players))
	for _, p := range players {
		age, ok := p.AgeAt(cfg.ReferenceDate)
		if !ok {
			continue
		}
		bestID := ""
		bestWidth := -1
		bestOrder := 0
		for _, cat := range categories {
			if !cat.IsActive || !cat.Criteria.HasAgeBand() {
				continue
			}
			if !e.ageInBand(age, cat.Criteria) {
				continue
			}
			w := bandWidth(cat.Criteria)
			if bestID == "" || w < bestWidth || (w == bestWidth && cat.OrderIdx < bestOrder) {
				bestID = cat.ID
				bestWidth = w
				bestOrder = cat.OrderIdx
			}
		}
		if bestID != "" {
			e.assignedBand[p.ID] = bestID
		}
	}
	return e
}

const openBandWidth = 1 << 20 // effective width of a half-open age band

func bandWidth(c models.CategoryCriteria) int {
	if c.MinAge == nil || c.MaxAge == nil {
		return openBandWidth
	}
	return *c.MaxAge - *c.MinAge
}

func (e *Evaluator) ageInBand(age int, c models.CategoryCriteria) bool {
	if c.MinAge != nil && age < *c.MinAge {
		return false
	}
	if c.MaxAge != nil {
		if e.cfg.MaxAgeInclusive {
			if age > *c.MaxAge {
				return false
			}
		} else if age >= *c.MaxAge {
			return false
		}
	}
	return true
}

// Evaluate — тотальный предикат допуска. Порядок проверок фиксирован
// (возраст, пол, рейтинг, локация, инвалидность, теги), чтобы коды причин
// были воспроизводимы между запусками.
func (e *Evaluator) Evaluate(p *models.Player, cat *models.Category) (bool, models.ReasonCode) {
	c := cat.Criteria

	if c.HasAgeBand() {
		age, known := p.AgeAt(e.cfg.ReferenceDate)
		if !known {
			if e.cfg.StrictAge && !e.cfg.AllowMissingDOBForAge {
				return false, models.ReasonNoDOB
			}
			// Missing DOB tolerated: the age check passes vacuously.
		} else {
			if !e.ageInBand(age, c) {
				return false, models.ReasonAgeOutOfRange
			}
			if e.assignedBand != nil {
				// Non-overlapping bands: membership only in the assigned band.
				if e.assignedBand[p.ID] != cat.ID {
					return false, models.ReasonAgeOutOfRange
				}
			}
		}
	}

	if c.Gender != nil {
		if p.Gender == nil || *p.Gender != *c.Gender {
			return false, models.ReasonGenderMismatch
		}
	}

	if c.HasRatingBand() {
		if p.Rating == nil {
			if !e.cfg.AllowUnratedInRating {
				return false, models.ReasonUnrated
			}
		} else {
			if c.MinRating != nil && *p.Rating < *c.MinRating {
				return false, models.ReasonRatingOutOfRange
			}
			if c.MaxRating != nil && *p.Rating > *c.MaxRating {
				return false, models.ReasonRatingOutOfRange
			}
		}
	}

	if !matchNullable(c.State, p.State) || !matchNullable(c.City, p.City) || !matchNullable(c.Club, p.Club) {
		return false, models.ReasonLocationMismatch
	}

	if c.RequiresDisability && !p.HasDisability {
		return false, models.ReasonDisabilityRequired
	}

	for _, tag := range c.Tags {
		if !p.HasTag(tag) {
			return false, models.ReasonTagMismatch
		}
	}

	return true, ""
}

// matchNullable: nil criterion matches everyone; a set criterion is an
// exact-match predicate and a nil player field never matches it.
func matchNullable(criterion, value *string) bool {
	if criterion == nil {
		return true
	}
	if value == nil {
		return false
	}
	return *criterion == *value
}
