package models

// CategoryCriteria — критерии допуска категории. Nil-поле означает
// "критерий не задан": он никогда не исключает игрока.
type CategoryCriteria struct {
	MinAge             *int     `json:"min_age,omitempty" db:"min_age"`
	MaxAge             *int     `json:"max_age,omitempty" db:"max_age"`
	Gender             *Gender  `json:"gender,omitempty" db:"gender"`
	MinRating          *int     `json:"min_rating,omitempty" db:"min_rating"`
	MaxRating          *int     `json:"max_rating,omitempty" db:"max_rating"`
	State              *string  `json:"state,omitempty" db:"state"`
	City               *string  `json:"city,omitempty" db:"city"`
	Club               *string  `json:"club,omitempty" db:"club"`
	RequiresDisability bool     `json:"requires_disability" db:"requires_disability"`
	Tags               []string `json:"tags,omitempty" db:"-"`
}

// HasAgeBand reports whether the category restricts by age at all.
func (c CategoryCriteria) HasAgeBand() bool {
	return c.MinAge != nil || c.MaxAge != nil
}

// HasRatingBand reports whether the category restricts by rating.
func (c CategoryCriteria) HasRatingBand() bool {
	return c.MinRating != nil || c.MaxRating != nil
}

// Category — именованная группа призов с общими критериями допуска.
type Category struct {
	ID       string           `json:"id" db:"id"`
	Name     string           `json:"name" db:"name"`
	IsMain   bool             `json:"is_main" db:"is_main"`
	OrderIdx int              `json:"order_idx" db:"order_idx"` // brochure / ceremony order
	IsActive bool             `json:"is_active" db:"is_active"`
	Criteria CategoryCriteria `json:"criteria"`
	Prizes   []Prize          `json:"prizes,omitempty" db:"-"`
}

// Prize belongs to exactly one category. Place 1 is the highest value
// within the category.
type Prize struct {
	ID         string `json:"id" db:"id"`
	CategoryID string `json:"category_id" db:"category_id"`
	Place      int    `json:"place" db:"place"`
	CashAmount int64  `json:"cash_amount" db:"cash_amount"`
	HasTrophy  bool   `json:"has_trophy" db:"has_trophy"`
	HasMedal   bool   `json:"has_medal" db:"has_medal"`
	IsActive   bool   `json:"is_active" db:"is_active"`
}
