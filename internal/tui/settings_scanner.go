package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/sdis66/epitrack/internal/scanner"
)

// saveScannerMsg requests saving scanner settings.
type saveScannerMsg struct {
	settings ScannerSettings
}

// scannerModel is the form for the wedge device path.
type scannerModel struct {
	input textinput.Model
	flash string
}

func newScannerModel(cfg ScannerSettings) scannerModel {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	ti.Placeholder = scanner.DefaultDevice
	ti.SetValue(cfg.DevicePath)
	ti.Focus()

	return scannerModel{input: ti}
}

func (m scannerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m scannerModel) Update(msg tea.Msg) (scannerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, zstyle.KeyQuit) {
			return m, tea.Quit
		}

		if msg.Type == tea.KeyEsc {
			return m, func() tea.Msg { return navigateMsg{view: viewSettings} }
		}

		if key.Matches(msg, zstyle.KeyEnter) || msg.String() == "ctrl+s" {
			s := ScannerSettings{DevicePath: strings.TrimSpace(m.input.Value())}
			return m, func() tea.Msg { return saveScannerMsg{settings: s} }
		}

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m scannerModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	label := zstyle.MutedText.Render("  device      ")
	s := "\n" + accentStyle.Render("▸") + " " + label + m.input.View() + "\n"
	s += "  " + zstyle.MutedText.Render("  empty uses "+scanner.DefaultDevice+", applied on next mission start") + "\n\n"

	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}
