package models

import "time"

// Gender соответствует ENUM в БД.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Player представляет участника в рамках одного запуска распределения.
// Снимок ростера неизменяем после импорта: солвер никогда не мутирует игроков.
type Player struct {
	ID            string     `json:"id" db:"id"`
	FullName      string     `json:"full_name" db:"full_name"`
	Rank          int        `json:"rank" db:"rank"` // official rank, positive, unique within the roster
	Rating        *int       `json:"rating,omitempty" db:"rating"`
	DOB           *time.Time `json:"dob,omitempty" db:"dob"`
	Gender        *Gender    `json:"gender,omitempty" db:"gender"`
	State         *string    `json:"state,omitempty" db:"state"`
	City          *string    `json:"city,omitempty" db:"city"`
	Club          *string    `json:"club,omitempty" db:"club"`
	HasDisability bool       `json:"has_disability" db:"has_disability"`
	Tags          []string   `json:"tags,omitempty" db:"-"`
}

// AgeAt returns the player's age in whole years at the reference date.
// The second return is false when DOB is unknown.
func (p *Player) AgeAt(ref time.Time) (int, bool) {
	if p.DOB == nil {
		return 0, false
	}
	age := ref.Year() - p.DOB.Year()
	if ref.Month() < p.DOB.Month() || (ref.Month() == p.DOB.Month() && ref.Day() < p.DOB.Day()) {
		age--
	}
	return age, true
}

// HasTag reports whether the player carries the given custom tag.
func (p *Player) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
