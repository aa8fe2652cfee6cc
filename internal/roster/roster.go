// Package roster holds the people enrolled for a distribution session.
package roster

import (
	"errors"
	"strings"
	"time"
)

// Person is one enrolled roster member. People are created during
// enrollment (or inline while scanning) and never edited, only removed.
type Person struct {
	LastName  string    `json:"last_name"`
	FirstName string    `json:"first_name"`
	Badge     string    `json:"badge"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
}

// Units is the organizational-unit label table. Branding variants swap
// this table out, not the enrollment code.
var Units = []string{"North", "South", "East", "West"}

// ErrIncomplete is returned when a person is missing required fields.
var ErrIncomplete = errors.New("last name and badge are required")

// NormalizeBadge canonicalizes a badge identifier for comparison:
// surrounding whitespace stripped, uppercased.
func NormalizeBadge(badge string) string {
	return strings.ToUpper(strings.TrimSpace(badge))
}

// Validate checks the required enrollment fields.
func Validate(p Person) error {
	if strings.TrimSpace(p.LastName) == "" || strings.TrimSpace(p.Badge) == "" {
		return ErrIncomplete
	}
	return nil
}

// DisplayName renders "First Last", tolerating a missing first name.
func (p Person) DisplayName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	return p.FirstName + " " + p.LastName
}

// Find returns the first person whose normalized badge matches the
// normalized input. Badge uniqueness is assumed, not enforced; on a
// duplicate the earliest roster entry wins.
func Find(people []Person, badge string) (Person, bool) {
	want := NormalizeBadge(badge)
	if want == "" {
		return Person{}, false
	}
	for _, p := range people {
		if NormalizeBadge(p.Badge) == want {
			return p, true
		}
	}
	return Person{}, false
}
