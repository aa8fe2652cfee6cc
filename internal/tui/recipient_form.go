package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
)

// saveRecipientMsg requests adding a recipient email.
type saveRecipientMsg struct {
	email string
}

// recipientFormModel is a single-field form for a new recipient.
type recipientFormModel struct {
	input textinput.Model
	flash string
}

func newRecipientFormModel() recipientFormModel {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40
	ti.Prompt = ""
	ti.Placeholder = "officer@sdis66.fr"
	ti.Focus()

	return recipientFormModel{input: ti}
}

func (m recipientFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m recipientFormModel) Update(msg tea.Msg) (recipientFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if key.Matches(msg, zstyle.KeyBack) {
			return m, func() tea.Msg { return navigateMsg{view: viewRecipients} }
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			email := strings.TrimSpace(m.input.Value())
			if email == "" {
				return m, nil
			}
			return m, func() tea.Msg { return saveRecipientMsg{email: email} }
		}

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m recipientFormModel) View() string {
	label := zstyle.MutedText.Render("  email")
	s := "\n  " + label + "  " + m.input.View() + "\n\n"

	if m.flash != "" {
		s += "  " + zstyle.StatusWarn.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}
