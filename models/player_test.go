package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlayerAgeAt(t *testing.T) {
	t.Parallel()

	ref := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	dob := func(y time.Month, year, day int) *time.Time {
		d := time.Date(year, y, day, 0, 0, 0, 0, time.UTC)
		return &d
	}

	tests := []struct {
		name    string
		dob     *time.Time
		wantAge int
		wantOK  bool
	}{
		{name: "birthday already passed this year", dob: dob(time.March, 2010, 5), wantAge: 15, wantOK: true},
		{name: "birthday later this year", dob: dob(time.December, 2010, 5), wantAge: 14, wantOK: true},
		{name: "birthday today", dob: dob(time.July, 2010, 1), wantAge: 15, wantOK: true},
		{name: "birthday tomorrow", dob: dob(time.July, 2010, 2), wantAge: 14, wantOK: true},
		{name: "unknown dob", dob: nil, wantOK: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := &Player{ID: "p1", Rank: 1, DOB: tc.dob}
			age, ok := p.AgeAt(ref)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.wantAge, age)
			}
		})
	}
}

func TestPlayerHasTag(t *testing.T) {
	t.Parallel()

	p := &Player{ID: "p1", Rank: 1, Tags: []string{"veteran", "local"}}
	assert.True(t, p.HasTag("local"))
	assert.False(t, p.HasTag("junior"))
	assert.False(t, (&Player{}).HasTag("any"))
}
