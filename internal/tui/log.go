package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/sdis66/epitrack/internal/distribution"
	"github.com/sdis66/epitrack/internal/session"
)

// logModel lists the full distribution log, newest first, and lets the
// operator correct mistakes by deleting entries.
type logModel struct {
	records []distribution.Record
	names   map[string]string // badge -> display name
	cursor  int
	flash   string
}

// deleteRecordMsg requests removal of a distribution record.
type deleteRecordMsg struct {
	id string
}

func newLogModel(s *session.Session) logModel {
	names := make(map[string]string)
	for _, p := range s.People() {
		names[p.Badge] = p.DisplayName()
	}
	return logModel{records: s.Records(), names: names}
}

func (m logModel) Init() tea.Cmd {
	return nil
}

func (m logModel) Update(msg tea.Msg) (logModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m logModel) handleKey(msg tea.KeyMsg) (logModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewScan} }
	}

	if len(m.records) == 0 {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.records)-1 {
			m.cursor++
		}
		return m, nil
	}

	if msg.String() == "d" {
		id := m.records[m.cursor].ID
		return m, func() tea.Msg { return deleteRecordMsg{id: id} }
	}

	return m, nil
}

func (m logModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	s := "\n"

	if len(m.records) == 0 {
		s += "  " + zstyle.MutedText.Render("no equipment issued yet") + "\n\n\n"
		return s
	}

	for i, r := range m.records {
		name := m.names[r.Badge]
		if name == "" {
			name = r.Badge
		}
		line := fmt.Sprintf("[%s] %-24s %s", r.Timestamp, truncate(r.Code, 24), zstyle.MutedText.Render(name))

		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	s += "\n"

	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}
