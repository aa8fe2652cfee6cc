package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/sdis66/epitrack/internal/gemini"
	"github.com/sdis66/epitrack/internal/report"
	"github.com/sdis66/epitrack/internal/session"
)

// summaryTimeout bounds the Gemini call; past it the composer falls
// back to the static summary.
const summaryTimeout = 20 * time.Second

type reportPhase int

const (
	reportConfirm reportPhase = iota
	reportRunning
	reportDone
)

// composeReportMsg requests composing and handing off the report.
type composeReportMsg struct{}

// reportResultMsg carries the composed mail or the failure.
type reportResultMsg struct {
	mail report.Mail
	err  error
}

// reportModel drives report composition: a summary of what will be
// sent, a progress phase while the AI summary runs, and the outcome.
type reportModel struct {
	agents     int
	records    int
	recipients []string
	aiReady    bool
	phase      reportPhase
	mail       report.Mail
	err        error
}

func newReportModel(s *session.Session, rcpts []string, gm GeminiSettings) reportModel {
	agents := 0
	for _, p := range s.People() {
		if s.CountFor(p.Badge) > 0 {
			agents++
		}
	}

	return reportModel{
		agents:     agents,
		records:    len(s.Records()),
		recipients: rcpts,
		aiReady:    gm.Configured(),
	}
}

func (m reportModel) Init() tea.Cmd {
	return nil
}

func (m reportModel) Update(msg tea.Msg) (reportModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case composeReportMsg:
		m.phase = reportRunning
		return m, nil

	case reportResultMsg:
		m.mail = msg.mail
		m.err = msg.err
		m.phase = reportDone
		return m, nil
	}

	return m, nil
}

func (m reportModel) handleKey(msg tea.KeyMsg) (reportModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	switch m.phase {
	case reportConfirm:
		if key.Matches(msg, zstyle.KeyBack) {
			return m, func() tea.Msg { return navigateMsg{view: viewScan} }
		}
		if key.Matches(msg, zstyle.KeyEnter) {
			if m.records == 0 || len(m.recipients) == 0 {
				return m, nil
			}
			return m, func() tea.Msg { return composeReportMsg{} }
		}

	case reportDone:
		// any key returns to scanning
		return m, func() tea.Msg { return navigateMsg{view: viewScan} }
	}

	return m, nil
}

func (m reportModel) View() string {
	switch m.phase {
	case reportConfirm:
		return m.viewConfirm()
	case reportRunning:
		return m.viewRunning()
	case reportDone:
		return m.viewDone()
	}
	return ""
}

func (m reportModel) viewConfirm() string {
	s := "\n  " + zstyle.Subtitle.Render("send distribution report?") + "\n\n"

	s += fmt.Sprintf("  %s %d\n", zstyle.MutedText.Render("agents equipped"), m.agents)
	s += fmt.Sprintf("  %s %d\n", zstyle.MutedText.Render("records       "), m.records)
	s += fmt.Sprintf("  %s %s\n", zstyle.MutedText.Render("recipients    "), strings.Join(m.recipients, ", "))

	if m.aiReady {
		s += fmt.Sprintf("  %s %s\n", zstyle.MutedText.Render("summary       "), "gemini")
	} else {
		s += fmt.Sprintf("  %s %s\n", zstyle.MutedText.Render("summary       "), "static fallback")
	}

	s += "\n"

	switch {
	case m.records == 0:
		s += "  " + zstyle.StatusWarn.Render("nothing issued yet") + "\n"
	case len(m.recipients) == 0:
		s += "  " + zstyle.StatusWarn.Render("add a recipient first") + "\n"
	default:
		s += "  " + zstyle.MutedText.Render("enter to compose and open the mail client") + "\n"
	}

	return s
}

func (m reportModel) viewRunning() string {
	return "\n  " + zstyle.MutedText.Render("composing report...") + "\n"
}

func (m reportModel) viewDone() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString("\n  " + zstyle.StatusErr.Render("report failed: "+m.err.Error()) + "\n\n")
		b.WriteString("  " + zstyle.MutedText.Render("press any key to continue") + "\n")
		return b.String()
	}

	b.WriteString("\n  " + zstyle.StatusOK.Render("mail client opened") + "\n\n")
	b.WriteString("  " + zstyle.MutedText.Render(m.mail.Subject) + "\n")

	if m.mail.FallbackUsed {
		b.WriteString("  " + zstyle.StatusWarn.Render("AI summary unavailable, static summary used") + "\n")
	}

	b.WriteString("\n  " + zstyle.MutedText.Render("press any key to continue") + "\n")
	return b.String()
}

// composeReport builds the mail off the UI loop and opens the mail
// client when composition succeeds.
func (m Model) composeReport() tea.Cmd {
	people := m.session.People()
	records := m.session.Records()
	rcpts := loadEmails(m.contacts)

	composer := &report.Composer{}
	if m.gmConfig.Configured() {
		composer.Summarizer = gemini.NewClient(m.gmConfig.GeminiConfig())
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), summaryTimeout)
		defer cancel()

		mail, err := composer.Compose(ctx, people, records, rcpts)
		if err != nil {
			return reportResultMsg{err: err}
		}

		if err := report.Handoff(mail); err != nil {
			return reportResultMsg{mail: mail, err: err}
		}

		return reportResultMsg{mail: mail}
	}
}
