package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
)

type gmField int

const (
	gmAPIKey gmField = iota
	gmModel
	gmFieldCount
)

var gmLabels = [gmFieldCount]string{
	"api key",
	"model",
}

// saveGeminiMsg requests saving gemini settings.
type saveGeminiMsg struct {
	settings GeminiSettings
}

// geminiModel is the form for configuring the summary API.
type geminiModel struct {
	inputs []textinput.Model
	focus  int
	flash  string
}

func newGeminiModel(cfg GeminiSettings) geminiModel {
	inputs := make([]textinput.Model, gmFieldCount)

	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 50
		inputs[i] = ti
	}

	inputs[gmAPIKey].Placeholder = "api key"
	inputs[gmAPIKey].SetValue(cfg.APIKey)
	inputs[gmAPIKey].EchoMode = textinput.EchoPassword
	inputs[gmAPIKey].EchoCharacter = '*'

	inputs[gmModel].Placeholder = "gemini-2.0-flash"
	inputs[gmModel].SetValue(cfg.Model)

	inputs[0].Focus()

	return geminiModel{inputs: inputs}
}

func (m geminiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m geminiModel) Update(msg tea.Msg) (geminiModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, zstyle.KeyQuit) {
			return m, tea.Quit
		}

		if msg.Type == tea.KeyEsc {
			return m, func() tea.Msg { return navigateMsg{view: viewSettings} }
		}

		if key.Matches(msg, zstyle.KeyTab) || msg.Type == tea.KeyDown {
			return m.nextField(), nil
		}

		if msg.Type == tea.KeyUp || msg.Type == tea.KeyShiftTab {
			return m.prevField(), nil
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			// enter on last field saves; otherwise advance
			if m.focus == int(gmFieldCount)-1 {
				return m.save()
			}
			return m.nextField(), nil
		}

		if msg.String() == "ctrl+s" {
			return m.save()
		}

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m.updateInput(msg)
}

func (m geminiModel) save() (geminiModel, tea.Cmd) {
	apiKey := strings.TrimSpace(m.inputs[gmAPIKey].Value())
	if apiKey == "" {
		m.flash = "api key is required"
		return m, clearFlashAfter()
	}

	s := GeminiSettings{
		APIKey: apiKey,
		Model:  strings.TrimSpace(m.inputs[gmModel].Value()),
	}
	return m, func() tea.Msg { return saveGeminiMsg{settings: s} }
}

func (m geminiModel) nextField() geminiModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % int(gmFieldCount)
	m.inputs[m.focus].Focus()
	return m
}

func (m geminiModel) prevField() geminiModel {
	m.inputs[m.focus].Blur()
	m.focus--
	if m.focus < 0 {
		m.focus = int(gmFieldCount) - 1
	}
	m.inputs[m.focus].Focus()
	return m
}

func (m geminiModel) updateInput(msg tea.Msg) (geminiModel, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m geminiModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	s := "\n"

	for i, input := range m.inputs {
		label := zstyle.MutedText.Render(fmt.Sprintf("  %-12s", gmLabels[i]))
		if i == m.focus {
			s += accentStyle.Render("▸") + " " + label + input.View() + "\n"
		} else {
			s += "  " + label + input.View() + "\n"
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
