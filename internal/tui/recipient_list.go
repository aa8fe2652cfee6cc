package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
)

// recipientListModel lists the saved report recipients.
type recipientListModel struct {
	emails []string
	cursor int
	flash  string
}

// deleteRecipientMsg requests removal of a recipient.
type deleteRecipientMsg struct {
	email string
}

func newRecipientListModel(emails []string) recipientListModel {
	return recipientListModel{emails: emails}
}

func (m recipientListModel) Init() tea.Cmd {
	return nil
}

func (m recipientListModel) Update(msg tea.Msg) (recipientListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m recipientListModel) handleKey(msg tea.KeyMsg) (recipientListModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewScan} }
	}

	if msg.String() == "a" {
		return m, func() tea.Msg { return navigateMsg{view: viewRecipientForm} }
	}

	if len(m.emails) == 0 {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.emails)-1 {
			m.cursor++
		}
		return m, nil
	}

	if msg.String() == "d" {
		email := m.emails[m.cursor]
		return m, func() tea.Msg { return deleteRecipientMsg{email: email} }
	}

	return m, nil
}

func (m recipientListModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	s := "\n"

	if len(m.emails) == 0 {
		s += "  " + zstyle.MutedText.Render("no recipients, press a to add one") + "\n\n\n"
		return s
	}

	for i, email := range m.emails {
		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + email + "\n"
		} else {
			s += "    " + email + "\n"
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
