// Package session holds the mutable state of one distribution mission:
// the working roster, the scan log, and the active selection. The session
// is owned by the root controller and passed by handle to the classifier
// and the report composer.
package session

import (
	"github.com/sdis66/epitrack/internal/distribution"
	"github.com/sdis66/epitrack/internal/roster"
)

// Session is the in-memory state of a mission. The roster survives in
// local storage across restarts; the log and selection do not.
type Session struct {
	people   []roster.Person
	records  []distribution.Record
	selected string // normalized badge of the active person, "" if none
}

// New creates a session seeded with a previously saved roster.
func New(people []roster.Person) *Session {
	return &Session{people: people}
}

// People returns the roster in enrollment order.
func (s *Session) People() []roster.Person { return s.people }

// Records returns the scan log, newest first.
func (s *Session) Records() []distribution.Record { return s.records }

// Selected returns the normalized badge of the active person, or "".
func (s *Session) Selected() string { return s.selected }

// SelectedPerson returns the active person, if any.
func (s *Session) SelectedPerson() (roster.Person, bool) {
	if s.selected == "" {
		return roster.Person{}, false
	}
	return roster.Find(s.people, s.selected)
}

// Select makes the person with the given badge the target of new scans.
func (s *Session) Select(badge string) {
	s.selected = roster.NormalizeBadge(badge)
}

// AddPerson appends a person to the roster.
func (s *Session) AddPerson(p roster.Person) {
	s.people = append(s.people, p)
}

// RemovePerson drops the person at index i. Records already attributed
// to them stay in the log; the selection is cleared if it pointed at them.
func (s *Session) RemovePerson(i int) {
	if i < 0 || i >= len(s.people) {
		return
	}
	if roster.NormalizeBadge(s.people[i].Badge) == s.selected {
		s.selected = ""
	}
	s.people = append(s.people[:i], s.people[i+1:]...)
}

// Find looks up a roster member by badge.
func (s *Session) Find(badge string) (roster.Person, bool) {
	return roster.Find(s.people, badge)
}

// Append prepends a record so the log reads newest-first.
func (s *Session) Append(r distribution.Record) {
	s.records = append([]distribution.Record{r}, s.records...)
}

// RemoveRecord deletes a single record by id.
func (s *Session) RemoveRecord(id string) {
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return
		}
	}
}

// CountFor returns how many records are attributed to a badge.
func (s *Session) CountFor(badge string) int {
	n := 0
	for _, r := range s.records {
		if r.Badge == badge {
			n++
		}
	}
	return n
}

// Replace overwrites the roster and log wholesale. Used when a sync
// payload from another device is captured — overwrite, not merge.
func (s *Session) Replace(people []roster.Person, records []distribution.Record) {
	s.people = people
	s.records = records
	s.selected = ""
}

// ClearRecords empties the scan log, keeping the roster and selection.
func (s *Session) ClearRecords() {
	s.records = nil
}

// Reset discards everything — end of mission.
func (s *Session) Reset() {
	s.people = nil
	s.records = nil
	s.selected = ""
}
