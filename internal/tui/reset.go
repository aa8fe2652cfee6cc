package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
)

type resetPhase int

const (
	resetConfirm resetPhase = iota
	resetDone
)

// endMissionMsg requests clearing the roster and distribution log.
type endMissionMsg struct{}

// missionEndedMsg confirms the reset completed.
type missionEndedMsg struct{}

// resetModel manages the end-of-mission confirmation dialog.
type resetModel struct {
	agents  int
	records int
	phase   resetPhase
}

func newResetModel(agents, records int) resetModel {
	return resetModel{agents: agents, records: records}
}

func (m resetModel) Init() tea.Cmd {
	return nil
}

func (m resetModel) Update(msg tea.Msg) (resetModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case missionEndedMsg:
		m.phase = resetDone
		return m, nil
	}

	return m, nil
}

func (m resetModel) handleKey(msg tea.KeyMsg) (resetModel, tea.Cmd) {
	switch m.phase {
	case resetConfirm:
		// quit always works
		if key.Matches(msg, zstyle.KeyQuit) {
			return m, tea.Quit
		}

		switch msg.String() {
		case "y":
			return m, func() tea.Msg { return endMissionMsg{} }
		default:
			// any other key cancels, back to scanning
			return m, func() tea.Msg { return navigateMsg{view: viewScan} }
		}

	case resetDone:
		// any key returns to enrollment
		return m, func() tea.Msg { return navigateMsg{view: viewRoster} }
	}
	return m, nil
}

func (m resetModel) View() string {
	switch m.phase {
	case resetConfirm:
		return m.viewConfirm()
	case resetDone:
		return m.viewDone()
	}
	return ""
}

func (m resetModel) viewConfirm() string {
	s := "\n  " + zstyle.Subtitle.Render("end the mission?") + "\n\n"

	s += "  " + zstyle.MutedText.Render("this will:") + "\n"
	s += fmt.Sprintf("  %s clear %d enrolled agents\n", zstyle.StatusWarn.Render("-"), m.agents)
	s += fmt.Sprintf("  %s clear %d distribution records\n", zstyle.StatusWarn.Render("-"), m.records)
	s += fmt.Sprintf("  %s release the scanner device\n", zstyle.StatusWarn.Render("-"))
	s += "\n  " + zstyle.MutedText.Render("recipients are kept") + "\n"

	s += "\n"
	s += "  " + zstyle.StatusWarn.Render("this cannot be undone.") + " (y/n)\n"

	return s
}

func (m resetModel) viewDone() string {
	s := "\n  " + zstyle.StatusOK.Render("mission ended") + "\n\n"
	s += "  " + zstyle.MutedText.Render("press any key to enroll the next team") + "\n"
	return s
}
