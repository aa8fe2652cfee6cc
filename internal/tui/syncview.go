package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/sdis66/epitrack/internal/scan"
	"github.com/sdis66/epitrack/internal/session"
)

// syncModel shows the export payload another terminal can scan or
// paste to adopt this device's roster and log.
type syncModel struct {
	payload string
	agents  int
	records int
	err     error
	flash   string
}

func newSyncModel(s *session.Session) syncModel {
	payload, err := scan.EncodePayload(s.People(), s.Records(), time.Now().UTC())
	return syncModel{
		payload: payload,
		agents:  len(s.People()),
		records: len(s.Records()),
		err:     err,
	}
}

func (m syncModel) Init() tea.Cmd {
	return nil
}

func (m syncModel) Update(msg tea.Msg) (syncModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, zstyle.KeyQuit) {
			return m, tea.Quit
		}

		if key.Matches(msg, zstyle.KeyBack) {
			return m, func() tea.Msg { return navigateMsg{view: viewScan} }
		}

		if msg.String() == "c" {
			if err := copyToClipboard(m.payload); err != nil {
				m.flash = "copy: " + err.Error()
				return m, clearFlashAfter()
			}
			m.flash = "copied!"
			return m, clearFlashAfter()
		}

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m syncModel) View() string {
	s := "\n"

	if m.err != nil {
		s += "  " + zstyle.StatusErr.Render("export failed: "+m.err.Error()) + "\n"
		return s
	}

	s += "  " + zstyle.MutedText.Render(fmt.Sprintf("%d agents, %d records", m.agents, m.records)) + "\n\n"
	s += "  " + zstyle.MutedText.Render("paste this payload into another terminal's scan input:") + "\n\n"
	s += "  " + truncate(m.payload, 76) + "\n"

	s += "\n"

	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}
