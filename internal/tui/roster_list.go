package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/sdis66/epitrack/internal/roster"
)

// rosterModel is the enrollment screen shown before a mission starts.
type rosterModel struct {
	version string
	people  []roster.Person
	cursor  int
	flash   string
}

// deletePersonMsg requests removal of the person at a roster index.
type deletePersonMsg struct {
	index int
}

// startMissionMsg requests the switch to the scan view.
type startMissionMsg struct{}

func newRosterModel(version string, people []roster.Person) rosterModel {
	return rosterModel{version: version, people: people}
}

func (m rosterModel) Init() tea.Cmd {
	return nil
}

func (m rosterModel) Update(msg tea.Msg) (rosterModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m rosterModel) handleKey(msg tea.KeyMsg) (rosterModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	switch msg.String() {
	case "a":
		return m, func() tea.Msg { return navigateMsg{view: viewPersonForm} }
	case "s":
		return m, func() tea.Msg { return startMissionMsg{} }
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		return m, func() tea.Msg { return startMissionMsg{} }
	}

	if len(m.people) == 0 {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.people)-1 {
			m.cursor++
		}
		return m, nil
	}

	if msg.String() == "d" {
		i := m.cursor
		if m.cursor == len(m.people)-1 && m.cursor > 0 {
			m.cursor--
		}
		return m, func() tea.Msg { return deletePersonMsg{index: i} }
	}

	return m, nil
}

func (m rosterModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	title := zstyle.Title.Render("epitrack")
	ver := zstyle.MutedText.Render(m.version)

	s := fmt.Sprintf("\n  %s %s\n", title, ver)
	s += "  " + zstyle.Subtitle.Render("mission roster") + "\n\n"

	if len(m.people) == 0 {
		s += "  " + zstyle.MutedText.Render("no agents enrolled") + "\n"
	}

	for i, p := range m.people {
		name := truncate(p.DisplayName(), 24)
		line := fmt.Sprintf("%-24s %-10s %s", name, p.Badge, zstyle.MutedText.Render(p.Unit))

		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	s += "\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusWarn.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	s += "\n  " + zstyle.MutedText.Render("a add  d remove  j/k navigate  enter start mission  q quit") + "\n\n"
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
