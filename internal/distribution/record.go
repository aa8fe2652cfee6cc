// Package distribution defines the scan records linking equipment codes
// to roster members.
package distribution

import (
	"time"

	"github.com/google/uuid"
)

// Record associates one equipment code with one person at a capture time.
// Records are immutable once created: they can be removed, never edited.
type Record struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Badge     string `json:"badge"`
	Timestamp string `json:"timestamp"`
}

// New creates a record binding a verbatim equipment code to a badge.
// The timestamp is human-readable local time, matching what operators
// see in the log and the emailed report.
func New(code, badge string, now time.Time) Record {
	return Record{
		ID:        uuid.NewString(),
		Code:      code,
		Badge:     badge,
		Timestamp: now.Format("15:04:05"),
	}
}

// ForBadge returns the records attributed to the given badge, preserving
// log order.
func ForBadge(records []Record, badge string) []Record {
	var out []Record
	for _, r := range records {
		if r.Badge == badge {
			out = append(out, r)
		}
	}
	return out
}
