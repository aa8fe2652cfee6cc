// Package report composes the plain-text distribution report and hands it
// to the platform's default mail client.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sdis66/epitrack/internal/distribution"
	"github.com/sdis66/epitrack/internal/roster"
)

// FallbackSummary replaces the AI paragraph whenever the generative call
// fails or returns nothing. The rest of the body never depends on the
// call succeeding.
const FallbackSummary = "Automated distribution report."

// ErrNothingToReport guards composition: no records or no recipients.
var ErrNothingToReport = errors.New("report: need at least one record and one recipient")

// Summarizer produces the optional natural-language summary paragraph.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Mail is a composed report ready for the mail handoff.
type Mail struct {
	Recipients   []string
	Subject      string
	Body         string
	FallbackUsed bool
}

// Composer renders reports. Summarizer may be nil, in which case the
// fallback paragraph is always used.
type Composer struct {
	Summarizer Summarizer
	Now        func() time.Time
}

// Compose builds the report for the given session data. The body is
// deterministic apart from the summary paragraph: for a fixed roster, log,
// and date, two fallback-path invocations produce identical output.
func (c *Composer) Compose(ctx context.Context, people []roster.Person, records []distribution.Record, rcpts []string) (Mail, error) {
	if len(records) == 0 || len(rcpts) == 0 {
		return Mail{}, ErrNothingToReport
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	dateStr := now().Format("2006-01-02")

	summary, fallback := c.summary(ctx, people, records)

	var b strings.Builder
	fmt.Fprintf(&b, "EQUIPMENT DISTRIBUTION REPORT - %s\n", dateStr)
	b.WriteString("=========================================\n\n")
	fmt.Fprintf(&b, "OVERVIEW:\n%s\n\n", summary)

	for _, p := range people {
		items := distribution.ForBadge(records, roster.NormalizeBadge(p.Badge))
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "AGENT: %s (%s)\n", p.DisplayName(), p.Badge)
		fmt.Fprintf(&b, "UNIT: %s\n", p.Unit)
		b.WriteString("EQUIPMENT ISSUED:\n")
		for _, it := range items {
			fmt.Fprintf(&b, " - [%s] code: %s\n", it.Timestamp, it.Code)
		}
		b.WriteString("-----------------------------------------\n")
	}

	b.WriteString("\nGenerated by epitrack.")

	return Mail{
		Recipients:   rcpts,
		Subject:      fmt.Sprintf("Equipment distribution report - %s", dateStr),
		Body:         b.String(),
		FallbackUsed: fallback,
	}, nil
}

// summary returns the AI paragraph or the fallback. Failures are fully
// recovered here; the operator never sees them.
func (c *Composer) summary(ctx context.Context, people []roster.Person, records []distribution.Record) (string, bool) {
	if c.Summarizer == nil {
		return FallbackSummary, true
	}

	text, err := c.Summarizer.Summarize(ctx, BuildPrompt(people, records))
	if err != nil || strings.TrimSpace(text) == "" {
		return FallbackSummary, true
	}
	return strings.TrimSpace(text), false
}

// BuildPrompt renders the summary request from the roster and log.
func BuildPrompt(people []roster.Person, records []distribution.Record) string {
	names := make([]string, 0, len(people))
	details := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.LastName)
		items := distribution.ForBadge(records, roster.NormalizeBadge(p.Badge))
		if len(items) == 0 {
			continue
		}
		codes := make([]string, len(items))
		for i, it := range items {
			codes[i] = it.Code
		}
		details = append(details, fmt.Sprintf("%s: %s", p.LastName, strings.Join(codes, ", ")))
	}

	return fmt.Sprintf(
		"Write one short, formal paragraph summarizing a protective-equipment distribution. "+
			"Personnel involved: %s. Items issued: %d. Per-person detail: %s.",
		strings.Join(names, ", "), len(records), strings.Join(details, " | "))
}
