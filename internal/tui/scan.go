package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/sdis66/epitrack/internal/session"
)

// flashMsg clears the flash after a timeout.
type flashMsg struct{}

func clearFlashAfter() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return flashMsg{}
	})
}

type flashKind int

const (
	flashOK flashKind = iota
	flashWarn
)

// scanSubmitMsg carries a manually entered code.
type scanSubmitMsg struct {
	raw string
}

// selectAgentMsg selects the active agent by badge.
type selectAgentMsg struct {
	badge string
}

// cooldownOverMsg refreshes the lock indicator once a cool-down expires.
type cooldownOverMsg struct{}

func cooldownOver(d time.Duration) tea.Cmd {
	return tea.Tick(d+50*time.Millisecond, func(time.Time) tea.Msg {
		return cooldownOverMsg{}
	})
}

const logPreview = 5

// scanModel is the live scanning screen: active agent, manual entry and
// a preview of the distribution log.
type scanModel struct {
	session   *session.Session
	input     textinput.Model
	scannerOK bool
	locked    bool
	flash     string
	flashKind flashKind
}

func newScanModel(s *session.Session, scannerOK bool) scanModel {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40
	ti.Prompt = ""
	ti.Placeholder = "scan or type a code"
	ti.Focus()

	return scanModel{
		session:   s,
		input:     ti,
		scannerOK: scannerOK,
	}
}

func (m scanModel) refresh(s *session.Session, locked bool) scanModel {
	if m.session == nil {
		m = newScanModel(s, m.scannerOK)
	}
	m.session = s
	m.locked = locked
	return m
}

func (m scanModel) setFlash(msg string, kind flashKind) scanModel {
	m.flash = msg
	m.flashKind = kind
	return m
}

func (m scanModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m scanModel) Update(msg tea.Msg) (scanModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m.updateInput(msg)
}

func (m scanModel) handleKey(msg tea.KeyMsg) (scanModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEnter:
		raw := m.input.Value()
		if strings.TrimSpace(raw) == "" {
			return m, nil
		}
		m.input.Reset()
		return m, func() tea.Msg { return scanSubmitMsg{raw: raw} }

	case tea.KeyTab:
		if badge, ok := m.nextAgent(); ok {
			return m, func() tea.Msg { return selectAgentMsg{badge: badge} }
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+l":
		return m, func() tea.Msg { return navigateMsg{view: viewLog} }
	case "ctrl+a":
		return m, func() tea.Msg { return navigateMsg{view: viewPersonForm} }
	case "ctrl+e":
		return m, func() tea.Msg { return navigateMsg{view: viewRecipients} }
	case "ctrl+r":
		return m, func() tea.Msg { return navigateMsg{view: viewReport} }
	case "ctrl+y":
		return m, func() tea.Msg { return navigateMsg{view: viewSync} }
	case "ctrl+g":
		return m, func() tea.Msg { return navigateMsg{view: viewSettings} }
	case "ctrl+x":
		return m, func() tea.Msg { return navigateMsg{view: viewReset} }
	}

	return m.updateInput(msg)
}

// nextAgent returns the badge after the current selection, wrapping
// around the roster.
func (m scanModel) nextAgent() (string, bool) {
	people := m.session.People()
	if len(people) == 0 {
		return "", false
	}

	current := m.session.Selected()
	for i, p := range people {
		if p.Badge == current {
			return people[(i+1)%len(people)].Badge, true
		}
	}
	return people[0].Badge, true
}

func (m scanModel) updateInput(msg tea.Msg) (scanModel, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m scanModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	s := "\n"

	// active agent line
	if p, ok := m.session.SelectedPerson(); ok {
		issued := m.session.CountFor(p.Badge)
		s += "  " + accentStyle.Render("agent") + "  " + p.DisplayName() +
			" (" + p.Badge + ")  " +
			zstyle.MutedText.Render(fmt.Sprintf("%d issued", issued)) + "\n"
	} else {
		s += "  " + zstyle.StatusWarn.Render("no agent selected") + "  " +
			zstyle.MutedText.Render("scan a badge or press tab") + "\n"
	}

	// scanner status line
	if m.scannerOK {
		s += "  " + zstyle.StatusOK.Render("scanner connected") + "\n"
	} else {
		s += "  " + zstyle.MutedText.Render("scanner offline, manual entry only") + "\n"
	}

	s += "\n  " + m.input.View() + "\n\n"

	// always reserve a line for flash to prevent layout shift
	switch {
	case m.flash != "" && m.flashKind == flashWarn:
		s += "  " + zstyle.StatusWarn.Render(m.flash) + "\n"
	case m.flash != "":
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	case m.locked:
		s += "  " + zstyle.MutedText.Render("cooling down...") + "\n"
	default:
		s += "\n"
	}

	// recent activity
	records := m.session.Records()
	s += "\n  " + zstyle.MutedText.Render(fmt.Sprintf("log (%d)", len(records))) + "\n"

	n := min(len(records), logPreview)
	for _, r := range records[:n] {
		line := fmt.Sprintf("[%s] %s", r.Timestamp, r.Code)
		if p, ok := m.session.Find(r.Badge); ok {
			line += zstyle.MutedText.Render("  " + p.DisplayName())
		}
		s += "    " + line + "\n"
	}

	return s
}
