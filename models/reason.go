package models

// ReasonCode — стабильные, перечислимые коды причин. Никогда не свободный текст:
// CoverageReporter агрегирует по ним.
type ReasonCode string

const (
	// Eligibility reasons (player vs category criteria).
	ReasonNoDOB              ReasonCode = "NO_DOB"
	ReasonAgeOutOfRange      ReasonCode = "AGE_OUT_OF_RANGE"
	ReasonGenderMismatch     ReasonCode = "GENDER_MISMATCH"
	ReasonUnrated            ReasonCode = "UNRATED"
	ReasonRatingOutOfRange   ReasonCode = "RATING_OUT_OF_RANGE"
	ReasonLocationMismatch   ReasonCode = "LOCATION_MISMATCH"
	ReasonDisabilityRequired ReasonCode = "DISABILITY_REQUIRED"
	ReasonTagMismatch        ReasonCode = "TAG_MISMATCH"

	// Unfilled / coverage reasons.
	ReasonNoEligiblePlayers ReasonCode = "NO_ELIGIBLE_PLAYERS"
	ReasonBlockedByOnePrize ReasonCode = "BLOCKED_BY_ONE_PRIZE_POLICY"
	ReasonCategoryInactive  ReasonCode = "CATEGORY_INACTIVE"
	ReasonInternalError     ReasonCode = "INTERNAL_ERROR"
	ReasonAllocated         ReasonCode = "ALLOCATED"
	ReasonConflictPending   ReasonCode = "CONFLICT_PENDING"
	ReasonManualOverride    ReasonCode = "MANUAL_OVERRIDE"
	ReasonSuggestedAccepted ReasonCode = "SUGGESTED_RESOLUTION"
	ReasonTopRanked         ReasonCode = "TOP_RANKED"
	ReasonTieBreakApplied   ReasonCode = "TIE_BREAK_APPLIED"
	ReasonStalePinDropped   ReasonCode = "STALE_PIN_DROPPED"
)

// CriterionField identifies which criterion knocked a player out.
// Used to build the TOO_STRICT_CRITERIA_<FIELD> family of unfilled reasons.
type CriterionField string

const (
	FieldAge        CriterionField = "AGE"
	FieldGender     CriterionField = "GENDER"
	FieldRating     CriterionField = "RATING"
	FieldLocation   CriterionField = "LOCATION"
	FieldDisability CriterionField = "DISABILITY"
	FieldTags       CriterionField = "TAGS"
)

const tooStrictPrefix = "TOO_STRICT_CRITERIA_"

// TooStrictCriteria returns the unfilled reason for a pool emptied by a
// single dominant criterion field, e.g. TOO_STRICT_CRITERIA_RATING.
func TooStrictCriteria(field CriterionField) ReasonCode {
	return ReasonCode(tooStrictPrefix + string(field))
}

// FieldOf maps an eligibility reason to the criterion field that produced it.
// The second return is false for reasons that are not field-scoped.
func (r ReasonCode) FieldOf() (CriterionField, bool) {
	switch r {
	case ReasonNoDOB, ReasonAgeOutOfRange:
		return FieldAge, true
	case ReasonGenderMismatch:
		return FieldGender, true
	case ReasonUnrated, ReasonRatingOutOfRange:
		return FieldRating, true
	case ReasonLocationMismatch:
		return FieldLocation, true
	case ReasonDisabilityRequired:
		return FieldDisability, true
	case ReasonTagMismatch:
		return FieldTags, true
	}
	return "", false
}

// IsCritical reports whether the reason blocks commit (см. PreviewCommitController).
func (r ReasonCode) IsCritical() bool {
	return r == ReasonInternalError || r == ReasonCategoryInactive
}
