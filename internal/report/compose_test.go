package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sdis66/epitrack/internal/distribution"
	"github.com/sdis66/epitrack/internal/roster"
)

// fakes

type fakeSummarizer struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

// helpers

func fixedNow() time.Time {
	return time.Date(2025, 3, 10, 16, 0, 0, 0, time.Local)
}

func testPeople() []roster.Person {
	return []roster.Person{
		{LastName: "Dupont", FirstName: "Jean", Badge: "660123", Unit: "North"},
		{LastName: "Martin", FirstName: "Claire", Badge: "660456", Unit: "South"},
	}
}

func testRecords() []distribution.Record {
	return []distribution.Record{
		{ID: "r2", Code: "EPI-77004", Badge: "660123", Timestamp: "15:42:10"},
		{ID: "r1", Code: "EPI-55021", Badge: "660123", Timestamp: "15:40:02"},
	}
}

func TestComposeGuards(t *testing.T) {
	c := &Composer{Now: fixedNow}

	if _, err := c.Compose(context.Background(), testPeople(), nil, []string{"a@b.fr"}); !errors.Is(err, ErrNothingToReport) {
		t.Errorf("zero records: got %v", err)
	}
	if _, err := c.Compose(context.Background(), testPeople(), testRecords(), nil); !errors.Is(err, ErrNothingToReport) {
		t.Errorf("zero recipients: got %v", err)
	}
}

func TestComposeBody(t *testing.T) {
	c := &Composer{
		Summarizer: &fakeSummarizer{text: "All nominal."},
		Now:        fixedNow,
	}

	m, err := c.Compose(context.Background(), testPeople(), testRecords(), []string{"officer@sdis66.fr"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	if m.FallbackUsed {
		t.Error("summarizer succeeded, fallback flag must be false")
	}
	if !strings.Contains(m.Subject, "2025-03-10") {
		t.Errorf("subject missing date: %q", m.Subject)
	}
	if !strings.Contains(m.Body, "EQUIPMENT DISTRIBUTION REPORT - 2025-03-10") {
		t.Errorf("body missing header:\n%s", m.Body)
	}
	if !strings.Contains(m.Body, "All nominal.") {
		t.Errorf("body missing summary:\n%s", m.Body)
	}
	if !strings.Contains(m.Body, "AGENT: Jean Dupont (660123)") {
		t.Errorf("body missing Dupont block:\n%s", m.Body)
	}
	if !strings.Contains(m.Body, "[15:40:02] code: EPI-55021") {
		t.Errorf("body missing record line:\n%s", m.Body)
	}
	if strings.Contains(m.Body, "Martin") {
		t.Errorf("people with zero records must be omitted:\n%s", m.Body)
	}
}

func TestComposeFallbackOnError(t *testing.T) {
	c := &Composer{
		Summarizer: &fakeSummarizer{err: errors.New("network down")},
		Now:        fixedNow,
	}

	m, err := c.Compose(context.Background(), testPeople(), testRecords(), []string{"officer@sdis66.fr"})
	if err != nil {
		t.Fatalf("an AI failure must never fail composition: %v", err)
	}
	if !m.FallbackUsed {
		t.Error("fallback flag must be set")
	}
	if !strings.Contains(m.Body, FallbackSummary) {
		t.Errorf("body missing fallback paragraph:\n%s", m.Body)
	}
}

func TestComposeFallbackOnEmptyText(t *testing.T) {
	c := &Composer{
		Summarizer: &fakeSummarizer{text: "   \n"},
		Now:        fixedNow,
	}

	m, _ := c.Compose(context.Background(), testPeople(), testRecords(), []string{"a@b.fr"})
	if !m.FallbackUsed || !strings.Contains(m.Body, FallbackSummary) {
		t.Error("blank summary must use the fallback")
	}
}

func TestComposeNilSummarizer(t *testing.T) {
	c := &Composer{Now: fixedNow}

	m, err := c.Compose(context.Background(), testPeople(), testRecords(), []string{"a@b.fr"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !m.FallbackUsed {
		t.Error("no summarizer configured means fallback")
	}
}

func TestComposeDeterministicUnderFallback(t *testing.T) {
	c := &Composer{
		Summarizer: &fakeSummarizer{err: errors.New("down")},
		Now:        fixedNow,
	}

	a, _ := c.Compose(context.Background(), testPeople(), testRecords(), []string{"a@b.fr"})
	b, _ := c.Compose(context.Background(), testPeople(), testRecords(), []string{"a@b.fr"})

	if a.Body != b.Body {
		t.Error("fallback-path bodies must be byte-identical for a fixed date")
	}
	if a.Subject != b.Subject {
		t.Error("subjects must match")
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(testPeople(), testRecords())

	if !strings.Contains(p, "Dupont, Martin") {
		t.Errorf("prompt missing names: %q", p)
	}
	if !strings.Contains(p, "Items issued: 2") {
		t.Errorf("prompt missing count: %q", p)
	}
	if !strings.Contains(p, "Dupont: EPI-77004, EPI-55021") {
		t.Errorf("prompt missing per-person detail: %q", p)
	}
	if strings.Contains(p, "Martin:") {
		t.Errorf("zero-record person should carry no detail: %q", p)
	}
}

func TestMailtoURL(t *testing.T) {
	m := Mail{
		Recipients: []string{"a@b.fr", "c@d.fr"},
		Subject:    "Equipment report - 2025-03-10",
		Body:       "line one\nline two & more",
	}

	u := MailtoURL(m)

	if !strings.HasPrefix(u, "mailto:a@b.fr,c@d.fr?") {
		t.Errorf("recipients: %q", u)
	}
	if !strings.Contains(u, "subject=Equipment%20report%20-%202025-03-10") {
		t.Errorf("subject encoding: %q", u)
	}
	if strings.Contains(u, "+") {
		t.Errorf("spaces must encode as %%20, not '+': %q", u)
	}
	if !strings.Contains(u, "line%20one%0Aline%20two%20%26%20more") {
		t.Errorf("body encoding: %q", u)
	}
}
