package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/sdis66/epitrack/internal/roster"
)

const (
	fieldLastName = iota
	fieldFirstName
	fieldBadge
	fieldUnit
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"last name",
	"first name",
	"badge",
	"unit",
}

// savePersonMsg requests enrolling a person in the mission roster.
type savePersonMsg struct {
	person roster.Person
}

// personFormModel handles enrolling a new agent. The unit field cycles
// through the fixed unit list with space instead of free text.
type personFormModel struct {
	inputs  [fieldCount - 1]textinput.Model
	focus   int
	unitIdx int
	inline  bool // true when opened from the scan view
	flash   string
}

func newPersonFormModel(inline bool) personFormModel {
	var inputs [fieldCount - 1]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 64
		ti.Width = 30
		ti.Prompt = ""
		inputs[i] = ti
	}

	m := personFormModel{inputs: inputs, inline: inline}
	m.inputs[m.focus].Focus()
	return m
}

func (m personFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m personFormModel) Update(msg tea.Msg) (personFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m.updateInput(msg)
}

func (m personFormModel) handleKey(msg tea.KeyMsg) (personFormModel, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		back := viewRoster
		if m.inline {
			back = viewScan
		}
		return m, func() tea.Msg { return navigateMsg{view: back} }
	}

	switch msg.String() {
	case "tab":
		return m.moveFocus(1), textinput.Blink

	case "shift+tab":
		return m.moveFocus(-1), textinput.Blink
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		return m.submit()
	}

	// unit field cycles with space; other keys are swallowed there
	if m.focus == fieldUnit {
		if msg.String() == " " {
			m.unitIdx = (m.unitIdx + 1) % len(roster.Units)
		}
		return m, nil
	}

	return m.updateInput(msg)
}

func (m personFormModel) moveFocus(delta int) personFormModel {
	if m.focus < fieldUnit {
		m.inputs[m.focus].Blur()
	}
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	if m.focus < fieldUnit {
		m.inputs[m.focus].Focus()
	}
	return m
}

func (m personFormModel) updateInput(msg tea.Msg) (personFormModel, tea.Cmd) {
	if m.focus >= fieldUnit {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m personFormModel) submit() (personFormModel, tea.Cmd) {
	p := roster.Person{
		LastName:  strings.TrimSpace(m.inputs[fieldLastName].Value()),
		FirstName: strings.TrimSpace(m.inputs[fieldFirstName].Value()),
		Badge:     roster.NormalizeBadge(m.inputs[fieldBadge].Value()),
		Unit:      roster.Units[m.unitIdx],
		CreatedAt: time.Now().UTC(),
	}

	if err := roster.Validate(p); err != nil {
		m.flash = err.Error()
		return m, clearFlashAfter()
	}

	return m, func() tea.Msg { return savePersonMsg{person: p} }
}

func (m personFormModel) View() string {
	s := "\n"

	for i := range fieldCount {
		label := zstyle.MutedText.Render(fmt.Sprintf("  %-12s", fieldLabels[i]))
		cursor := "  "
		if i == m.focus {
			cursor = "> "
		}

		var fieldView string
		if i == fieldUnit {
			fieldView = roster.Units[m.unitIdx] + " " + zstyle.MutedText.Render("[space to cycle]")
		} else {
			fieldView = m.inputs[i].View()
		}

		s += fmt.Sprintf("  %s%s %s\n", cursor, label, fieldView)
	}

	s += "\n"

	if m.flash != "" {
		s += "  " + zstyle.StatusWarn.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}
