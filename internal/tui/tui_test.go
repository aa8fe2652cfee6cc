package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sdis66/epitrack/internal/distribution"
	"github.com/sdis66/epitrack/internal/report"
	"github.com/sdis66/epitrack/internal/roster"
	"github.com/sdis66/epitrack/internal/session"
)

// helpers

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func enterKey() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

func escKey() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEsc}
}

func tabKey() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyTab}
}

func testPeople() []roster.Person {
	return []roster.Person{
		{LastName: "Dupont", FirstName: "Marie", Badge: "660123", Unit: "North",
			CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)},
		{LastName: "Martin", FirstName: "Luc", Badge: "660456", Unit: "South",
			CreatedAt: time.Date(2026, 3, 1, 8, 5, 0, 0, time.UTC)},
	}
}

// roster view tests

func TestRosterViewEmpty(t *testing.T) {
	m := newRosterModel("v1.0.0", nil)
	view := m.View()

	if !strings.Contains(view, "no agents enrolled") {
		t.Error("empty roster should show the empty state")
	}
	if !strings.Contains(view, "epitrack") {
		t.Error("view should show title")
	}
	if !strings.Contains(view, "v1.0.0") {
		t.Error("view should show version")
	}
}

func TestRosterViewListsPeople(t *testing.T) {
	m := newRosterModel("dev", testPeople())
	view := m.View()

	if !strings.Contains(view, "Marie Dupont") {
		t.Error("view should show enrolled agent name")
	}
	if !strings.Contains(view, "660123") {
		t.Error("view should show badge")
	}
	if !strings.Contains(view, "North") {
		t.Error("view should show unit")
	}
}

func TestRosterAddOpensForm(t *testing.T) {
	m := newRosterModel("dev", nil)

	_, cmd := m.Update(keyMsg('a'))
	if cmd == nil {
		t.Fatal("a should emit a command")
	}

	msg, ok := cmd().(navigateMsg)
	if !ok || msg.view != viewPersonForm {
		t.Errorf("a should navigate to the enroll form, got %v", msg)
	}
}

func TestRosterDeleteEmitsIndex(t *testing.T) {
	m := newRosterModel("dev", testPeople())

	m, _ = m.Update(keyMsg('j'))
	_, cmd := m.Update(keyMsg('d'))
	if cmd == nil {
		t.Fatal("d should emit a command")
	}

	msg, ok := cmd().(deletePersonMsg)
	if !ok || msg.index != 1 {
		t.Errorf("expected deletePersonMsg{1}, got %v", msg)
	}
}

func TestRosterEnterStartsMission(t *testing.T) {
	m := newRosterModel("dev", testPeople())

	_, cmd := m.Update(enterKey())
	if cmd == nil {
		t.Fatal("enter should emit a command")
	}
	if _, ok := cmd().(startMissionMsg); !ok {
		t.Error("enter should request mission start")
	}
}

// person form tests

func TestPersonFormRequiresBadge(t *testing.T) {
	m := newPersonFormModel(false)
	m.inputs[fieldLastName].SetValue("Dupont")

	m, cmd := m.Update(enterKey())
	if cmd == nil {
		t.Fatal("submit should emit a flash timer")
	}
	if !strings.Contains(m.View(), "required") {
		t.Error("incomplete form should flash a validation error")
	}
}

func TestPersonFormSubmitNormalizesBadge(t *testing.T) {
	m := newPersonFormModel(false)
	m.inputs[fieldLastName].SetValue("Dupont")
	m.inputs[fieldFirstName].SetValue("Marie")
	m.inputs[fieldBadge].SetValue("  abc660 ")

	_, cmd := m.Update(enterKey())
	if cmd == nil {
		t.Fatal("valid form should emit a command")
	}

	msg, ok := cmd().(savePersonMsg)
	if !ok {
		t.Fatal("expected savePersonMsg")
	}
	if msg.person.Badge != "ABC660" {
		t.Errorf("badge should be normalized, got %q", msg.person.Badge)
	}
	if msg.person.Unit != roster.Units[0] {
		t.Errorf("default unit should be %q, got %q", roster.Units[0], msg.person.Unit)
	}
}

func TestPersonFormCyclesUnit(t *testing.T) {
	m := newPersonFormModel(false)

	// move focus to the unit field
	for range 3 {
		m, _ = m.Update(tabKey())
	}
	m, _ = m.Update(keyMsg(' '))

	if !strings.Contains(m.View(), roster.Units[1]) {
		t.Errorf("space should cycle the unit to %q", roster.Units[1])
	}
}

func TestPersonFormEscReturnsToRoster(t *testing.T) {
	m := newPersonFormModel(false)

	_, cmd := m.Update(escKey())
	msg, ok := cmd().(navigateMsg)
	if !ok || msg.view != viewRoster {
		t.Error("esc should return to the roster")
	}
}

func TestPersonFormInlineEscReturnsToScan(t *testing.T) {
	m := newPersonFormModel(true)

	_, cmd := m.Update(escKey())
	msg, ok := cmd().(navigateMsg)
	if !ok || msg.view != viewScan {
		t.Error("inline esc should return to scanning")
	}
}

// scan view tests

func TestScanViewNoSelection(t *testing.T) {
	s := session.New(testPeople())
	m := newScanModel(s, false)

	view := m.View()
	if !strings.Contains(view, "no agent selected") {
		t.Error("view should show selection hint")
	}
	if !strings.Contains(view, "manual entry only") {
		t.Error("offline scanner should be reported")
	}
}

func TestScanViewShowsSelectedAgent(t *testing.T) {
	s := session.New(testPeople())
	s.Select("660123")
	m := newScanModel(s, true)

	view := m.View()
	if !strings.Contains(view, "Marie Dupont") {
		t.Error("view should show the selected agent")
	}
	if !strings.Contains(view, "scanner connected") {
		t.Error("view should report the connected scanner")
	}
}

func TestScanSubmitKeepsRawValue(t *testing.T) {
	s := session.New(testPeople())
	m := newScanModel(s, false)
	m.input.SetValue("  epi-55021 ")

	m, cmd := m.Update(enterKey())
	if cmd == nil {
		t.Fatal("enter should emit a command")
	}

	msg, ok := cmd().(scanSubmitMsg)
	if !ok {
		t.Fatal("expected scanSubmitMsg")
	}
	if msg.raw != "  epi-55021 " {
		t.Errorf("manual entry must stay verbatim, got %q", msg.raw)
	}
	if m.input.Value() != "" {
		t.Error("input should clear after submit")
	}
}

func TestScanSubmitIgnoresBlankInput(t *testing.T) {
	s := session.New(testPeople())
	m := newScanModel(s, false)
	m.input.SetValue("   ")

	_, cmd := m.Update(enterKey())
	if cmd != nil {
		t.Error("blank input should not submit")
	}
}

func TestScanTabCyclesSelection(t *testing.T) {
	s := session.New(testPeople())
	m := newScanModel(s, false)

	_, cmd := m.Update(tabKey())
	if cmd == nil {
		t.Fatal("tab should emit a command")
	}

	msg, ok := cmd().(selectAgentMsg)
	if !ok || msg.badge != "660123" {
		t.Errorf("tab should select the first agent, got %v", msg)
	}

	s.Select("660123")
	_, cmd = m.Update(tabKey())
	msg = cmd().(selectAgentMsg)
	if msg.badge != "660456" {
		t.Errorf("tab should advance to the next agent, got %q", msg.badge)
	}
}

// log view tests

func TestLogDeleteEmitsRecordID(t *testing.T) {
	s := session.New(testPeople())
	s.Append(distribution.New("EPI-1", "660123", time.Now()))
	s.Append(distribution.New("EPI-2", "660123", time.Now()))

	m := newLogModel(s)
	m, _ = m.Update(keyMsg('j'))
	_, cmd := m.Update(keyMsg('d'))
	if cmd == nil {
		t.Fatal("d should emit a command")
	}

	msg := cmd().(deleteRecordMsg)
	// records are newest first; cursor 1 is the older record
	if msg.id != s.Records()[1].ID {
		t.Errorf("expected id of second row, got %q", msg.id)
	}
}

func TestLogViewShowsAgentName(t *testing.T) {
	s := session.New(testPeople())
	s.Append(distribution.New("EPI-1", "660123", time.Now()))

	view := newLogModel(s).View()
	if !strings.Contains(view, "EPI-1") {
		t.Error("view should show the code")
	}
	if !strings.Contains(view, "Marie Dupont") {
		t.Error("view should resolve the badge to a name")
	}
}

// recipient tests

func TestRecipientFormSubmit(t *testing.T) {
	m := newRecipientFormModel()
	m.input.SetValue("Officer@SDIS66.fr")

	_, cmd := m.Update(enterKey())
	msg, ok := cmd().(saveRecipientMsg)
	if !ok || msg.email != "Officer@SDIS66.fr" {
		t.Errorf("expected saveRecipientMsg with typed value, got %v", msg)
	}
}

func TestRecipientListDelete(t *testing.T) {
	m := newRecipientListModel([]string{"a@sdis66.fr", "b@sdis66.fr"})
	m, _ = m.Update(keyMsg('j'))

	_, cmd := m.Update(keyMsg('d'))
	msg := cmd().(deleteRecipientMsg)
	if msg.email != "b@sdis66.fr" {
		t.Errorf("expected second email, got %q", msg.email)
	}
}

// report view tests

func TestReportBlockedWithoutRecords(t *testing.T) {
	s := session.New(testPeople())
	m := newReportModel(s, []string{"chief@sdis66.fr"}, GeminiSettings{})

	if !strings.Contains(m.View(), "nothing issued yet") {
		t.Error("view should warn about the empty log")
	}

	_, cmd := m.Update(enterKey())
	if cmd != nil {
		t.Error("enter must not compose with zero records")
	}
}

func TestReportBlockedWithoutRecipients(t *testing.T) {
	s := session.New(testPeople())
	s.Append(distribution.New("EPI-1", "660123", time.Now()))
	m := newReportModel(s, nil, GeminiSettings{})

	if !strings.Contains(m.View(), "add a recipient first") {
		t.Error("view should warn about missing recipients")
	}

	_, cmd := m.Update(enterKey())
	if cmd != nil {
		t.Error("enter must not compose without recipients")
	}
}

func TestReportComposeFlow(t *testing.T) {
	s := session.New(testPeople())
	s.Append(distribution.New("EPI-1", "660123", time.Now()))
	m := newReportModel(s, []string{"chief@sdis66.fr"}, GeminiSettings{APIKey: "k"})

	if !strings.Contains(m.View(), "gemini") {
		t.Error("configured key should advertise the AI summary")
	}

	_, cmd := m.Update(enterKey())
	if cmd == nil {
		t.Fatal("enter should emit a command")
	}
	if _, ok := cmd().(composeReportMsg); !ok {
		t.Fatal("expected composeReportMsg")
	}

	m, _ = m.Update(composeReportMsg{})
	if !strings.Contains(m.View(), "composing") {
		t.Error("running phase should show progress")
	}

	m, _ = m.Update(reportResultMsg{mail: report.Mail{
		Subject:      "Equipment Distribution Report - 2026-03-01",
		FallbackUsed: true,
	}})
	view := m.View()
	if !strings.Contains(view, "mail client opened") {
		t.Error("done phase should confirm the handoff")
	}
	if !strings.Contains(view, "static summary used") {
		t.Error("fallback result should be visible")
	}
}

// reset view tests

func TestResetConfirmAndDone(t *testing.T) {
	m := newResetModel(2, 5)

	view := m.View()
	if !strings.Contains(view, "2 enrolled agents") || !strings.Contains(view, "5 distribution records") {
		t.Error("confirm view should show what gets cleared")
	}
	if !strings.Contains(view, "recipients are kept") {
		t.Error("confirm view should state that recipients survive")
	}

	_, cmd := m.Update(keyMsg('y'))
	if _, ok := cmd().(endMissionMsg); !ok {
		t.Fatal("y should request the reset")
	}

	m, _ = m.Update(missionEndedMsg{})
	if !strings.Contains(m.View(), "mission ended") {
		t.Error("done view should confirm the reset")
	}
}

func TestResetAnyOtherKeyCancels(t *testing.T) {
	m := newResetModel(1, 1)

	_, cmd := m.Update(keyMsg('n'))
	msg, ok := cmd().(navigateMsg)
	if !ok || msg.view != viewScan {
		t.Error("n should cancel back to scanning")
	}
}

// settings tests

func TestSettingsMenuNavigation(t *testing.T) {
	m := newSettingsModel(GeminiSettings{APIKey: "k"}, ScannerSettings{}, false)

	view := m.View()
	if !strings.Contains(view, "configured") {
		t.Error("gemini row should show configured")
	}
	if !strings.Contains(view, "offline") {
		t.Error("scanner row should show offline")
	}

	_, cmd := m.Update(enterKey())
	msg := cmd().(navigateMsg)
	if msg.view != viewSettingsGemini {
		t.Error("enter on first row should open gemini settings")
	}
}

func TestGeminiFormRequiresKey(t *testing.T) {
	m := newGeminiModel(GeminiSettings{})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !strings.Contains(m.View(), "api key is required") {
		t.Error("saving an empty key should flash an error")
	}
}

func TestGeminiFormSave(t *testing.T) {
	m := newGeminiModel(GeminiSettings{})
	m.inputs[gmAPIKey].SetValue("secret")
	m.inputs[gmModel].SetValue("gemini-2.0-flash")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	msg, ok := cmd().(saveGeminiMsg)
	if !ok {
		t.Fatal("expected saveGeminiMsg")
	}
	if msg.settings.APIKey != "secret" || msg.settings.Model != "gemini-2.0-flash" {
		t.Errorf("unexpected settings: %+v", msg.settings)
	}
}

func TestScannerFormSave(t *testing.T) {
	m := newScannerModel(ScannerSettings{})
	m.input.SetValue("/dev/ttyACM0")

	_, cmd := m.Update(enterKey())
	msg, ok := cmd().(saveScannerMsg)
	if !ok || msg.settings.DevicePath != "/dev/ttyACM0" {
		t.Errorf("expected scanner settings with device path, got %v", msg)
	}
}

// root model tests

func rootModel(t *testing.T) Model {
	t.Helper()
	return New("test", nil, nil, nil)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestRootStartsOnRoster(t *testing.T) {
	m := rootModel(t)
	if m.active != viewRoster {
		t.Error("should start on the enrollment screen")
	}
}

func TestRootBlocksEmptyMission(t *testing.T) {
	m := rootModel(t)

	m, _ = update(t, m, startMissionMsg{})
	if m.active != viewRoster {
		t.Error("mission must not start with an empty roster")
	}
	if !strings.Contains(m.View(), "enroll at least one agent") {
		t.Error("should flash the reason")
	}
}

func TestRootEnrollAndScanFlow(t *testing.T) {
	m := rootModel(t)

	p := testPeople()[0]
	m, _ = update(t, m, savePersonMsg{person: p})
	if m.active != viewRoster {
		t.Fatal("saving from the form should land on the roster")
	}
	if len(m.session.People()) != 1 {
		t.Fatal("person should join the session roster")
	}

	m, _ = update(t, m, startMissionMsg{})
	if m.active != viewScan {
		t.Fatal("mission start should open the scan view")
	}

	// badge scan selects the agent
	m, _ = update(t, m, scanSubmitMsg{raw: " 660123 "})
	if m.session.Selected() != "660123" {
		t.Errorf("badge scan should select, got %q", m.session.Selected())
	}

	// a second input inside the cool-down window is ignored
	m, _ = update(t, m, scanSubmitMsg{raw: "EPI-55021"})
	if len(m.session.Records()) != 0 {
		t.Error("input during cool-down must not create a record")
	}
	if !strings.Contains(m.scanView.View(), "cooling down") {
		t.Error("cool-down rejection should be visible")
	}
}

func TestRootEndMissionClearsSession(t *testing.T) {
	m := rootModel(t)
	m, _ = update(t, m, savePersonMsg{person: testPeople()[0]})
	m, _ = update(t, m, startMissionMsg{})

	m, _ = update(t, m, endMissionMsg{})
	if len(m.session.People()) != 0 || len(m.session.Records()) != 0 {
		t.Error("end of mission should clear the session")
	}
	if m.reader != nil {
		t.Error("end of mission should release the scanner")
	}
}
