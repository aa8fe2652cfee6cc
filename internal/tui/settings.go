package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
)

type settingsChoice int

const (
	settingsGemini settingsChoice = iota
	settingsScanner
	settingsBack
)

var settingsItems = []string{
	"gemini",
	"scanner",
	"back",
}

// settingsModel displays the settings menu with integration status.
type settingsModel struct {
	cursor         int
	gemini         GeminiSettings
	scanner        ScannerSettings
	scannerPresent bool
}

func newSettingsModel(gm GeminiSettings, sc ScannerSettings, scannerPresent bool) settingsModel {
	return settingsModel{
		gemini:         gm,
		scanner:        sc,
		scannerPresent: scannerPresent,
	}
}

func (m settingsModel) Init() tea.Cmd {
	return nil
}

func (m settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, zstyle.KeyQuit) {
			return m, tea.Quit
		}

		if key.Matches(msg, zstyle.KeyBack) {
			return m, func() tea.Msg { return navigateMsg{view: viewScan} }
		}

		if key.Matches(msg, zstyle.KeyUp) {
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		}

		if key.Matches(msg, zstyle.KeyDown) {
			if m.cursor < len(settingsItems)-1 {
				m.cursor++
			}
			return m, nil
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			return m, m.selectItem()
		}
	}

	return m, nil
}

func (m settingsModel) selectItem() tea.Cmd {
	switch settingsChoice(m.cursor) {
	case settingsGemini:
		return func() tea.Msg { return navigateMsg{view: viewSettingsGemini} }
	case settingsScanner:
		return func() tea.Msg { return navigateMsg{view: viewSettingsScanner} }
	case settingsBack:
		return func() tea.Msg { return navigateMsg{view: viewScan} }
	}
	return nil
}

func (m settingsModel) statusFor(choice settingsChoice) string {
	switch choice {
	case settingsGemini:
		if m.gemini.Configured() {
			return "configured"
		}
		return "not configured"
	case settingsScanner:
		if m.scannerPresent {
			return "connected"
		}
		return "offline"
	}
	return ""
}

func (m settingsModel) View() string {
	s := "\n"

	for i, item := range settingsItems {
		choice := settingsChoice(i)

		var countStr string
		if status := m.statusFor(choice); status != "" {
			statusStyle := zstyle.StatusErr
			if status == "configured" || status == "connected" {
				statusStyle = zstyle.StatusOK
			}
			countStr = statusStyle.Render(status)
		}

		mi := zstyle.MenuItem{
			Label:  item,
			Active: m.cursor == i,
		}
		line := zstyle.RenderMenuItem(mi, accentColor)
		if countStr != "" {
			line += " " + countStr
		}
		s += line + "\n"
	}

	return s
}
