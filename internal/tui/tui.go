// Package tui implements the root Bubble Tea model for epitrack.
package tui

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/sdis66/epitrack/internal/haptics"
	"github.com/sdis66/epitrack/internal/recipients"
	"github.com/sdis66/epitrack/internal/roster"
	"github.com/sdis66/epitrack/internal/scan"
	"github.com/sdis66/epitrack/internal/scanner"
	"github.com/sdis66/epitrack/internal/session"
)

type viewID int

const (
	viewRoster viewID = iota
	viewPersonForm
	viewScan
	viewLog
	viewRecipients
	viewRecipientForm
	viewReport
	viewSync
	viewSettings
	viewSettingsGemini
	viewSettingsScanner
	viewReset
)

// accentColor is the shared zstyle accent used for cursors and headers.
var accentColor = zstyle.ZburnAccent

// navigateMsg switches the active view.
type navigateMsg struct {
	view viewID
}

// scanLineMsg carries one line read from the wedge scanner device.
type scanLineMsg struct {
	line string
}

// scannerStoppedMsg signals that the device reader has closed.
type scannerStoppedMsg struct{}

// Model is the root TUI model.
type Model struct {
	version  string
	store    *zstore.Store
	people   *zstore.Collection[roster.Person]
	contacts *zstore.Collection[recipients.Entry]
	configs  *zstore.Collection[configEnvelope]

	session *session.Session
	engine  *scan.Engine
	reader  *scanner.Reader

	active          viewID
	rosterView      rosterModel
	personForm      personFormModel
	scanView        scanModel
	logView         logModel
	recipientList   recipientListModel
	recipientForm   recipientFormModel
	reportView      reportModel
	syncView        syncModel
	settings        settingsModel
	settingsGemini  geminiModel
	settingsScanner scannerModel
	reset           resetModel

	// cached config state
	gmConfig GeminiSettings
	scConfig ScannerSettings

	// terminal dimensions
	width  int
	height int
}

// New creates the root TUI model. The collections may be nil when the
// store failed to open; the model degrades to an in-memory session.
func New(version string, store *zstore.Store, people *zstore.Collection[roster.Person], contacts *zstore.Collection[recipients.Entry]) Model {
	m := Model{
		version:  version,
		store:    store,
		people:   people,
		contacts: contacts,
	}

	if store != nil {
		cfgCol, err := zstore.NewCollection[configEnvelope](store, "config")
		if err != nil {
			slog.Warn("open config collection", "error", err)
		} else {
			m.configs = cfgCol
		}
	}
	m.loadConfigs()

	saved := loadPeople(people)
	m.session = session.New(saved)
	m.engine = scan.NewEngine(m.session)

	m.active = viewRoster
	m.rosterView = newRosterModel(version, saved)
	return m
}

// SetPulser wires the haptic driver into the scan engine. A nil pulser
// disables feedback.
func (m *Model) SetPulser(p haptics.Pulser) {
	m.engine.SetPulser(p)
}

func (m Model) Init() tea.Cmd {
	return m.rosterView.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case navigateMsg:
		return m.navigate(msg.view)

	case savePersonMsg:
		return m.handleSavePerson(msg.person)

	case deletePersonMsg:
		return m.handleDeletePerson(msg.index)

	case startMissionMsg:
		return m.startMission()

	case scanSubmitMsg:
		return m.handleScan(msg.raw)

	case scanLineMsg:
		model, cmd := m.handleScan(msg.line)
		return model, tea.Batch(cmd, waitForScan(m.reader))

	case scannerStoppedMsg:
		m.scanView.scannerOK = false
		return m, nil

	case cooldownOverMsg:
		m.scanView = m.scanView.refresh(m.session, m.engine.Locked())
		return m, nil

	case selectAgentMsg:
		m.session.Select(msg.badge)
		m.scanView = m.scanView.refresh(m.session, m.engine.Locked())
		return m, nil

	case deleteRecordMsg:
		m.session.RemoveRecord(msg.id)
		m.logView = newLogModel(m.session)
		m.scanView = m.scanView.refresh(m.session, m.engine.Locked())
		return m, nil

	case saveRecipientMsg:
		return m.handleSaveRecipient(msg.email)

	case deleteRecipientMsg:
		return m.handleDeleteRecipient(msg.email)

	case composeReportMsg:
		m.reportView, _ = m.reportView.Update(msg)
		return m, m.composeReport()

	case reportResultMsg:
		m.reportView, _ = m.reportView.Update(msg)
		return m, nil

	case saveGeminiMsg:
		return m.handleSaveGemini(msg.settings)

	case saveScannerMsg:
		return m.handleSaveScanner(msg.settings)

	case endMissionMsg:
		return m.endMission()
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	// the roster view carries the logo — render directly
	if m.active == viewRoster {
		return m.rosterView.View()
	}

	// all other views: header + separator + content + footer
	var content string
	switch m.active {
	case viewPersonForm:
		content = m.personForm.View()
	case viewScan:
		content = m.scanView.View()
	case viewLog:
		content = m.logView.View()
	case viewRecipients:
		content = m.recipientList.View()
	case viewRecipientForm:
		content = m.recipientForm.View()
	case viewReport:
		content = m.reportView.View()
	case viewSync:
		content = m.syncView.View()
	case viewSettings:
		content = m.settings.View()
	case viewSettingsGemini:
		content = m.settingsGemini.View()
	case viewSettingsScanner:
		content = m.settingsScanner.View()
	case viewReset:
		content = m.reset.View()
	}

	header := zstyle.RenderHeader("epitrack", viewTitle(m.active), accentColor)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(helpFor(m.active))

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

// viewTitle returns the display title for each view.
func viewTitle(id viewID) string {
	switch id {
	case viewPersonForm:
		return "Enroll Agent"
	case viewScan:
		return "Scan"
	case viewLog:
		return "Distribution Log"
	case viewRecipients:
		return "Recipients"
	case viewRecipientForm:
		return "Add Recipient"
	case viewReport:
		return "Report"
	case viewSync:
		return "Sync"
	case viewSettings:
		return "Settings"
	case viewSettingsGemini:
		return "Gemini"
	case viewSettingsScanner:
		return "Scanner"
	case viewReset:
		return "End Mission"
	}
	return ""
}

// helpFor returns keybinding pairs for each view's footer.
func helpFor(id viewID) []zstyle.HelpPair {
	switch id {
	case viewPersonForm:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next"},
			{Key: "shift+tab", Desc: "prev"},
			{Key: "space", Desc: "cycle unit"},
			{Key: "enter", Desc: "save"},
			{Key: "esc", Desc: "cancel"},
		}
	case viewScan:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "submit"},
			{Key: "tab", Desc: "select agent"},
			{Key: "ctrl+l", Desc: "log"},
			{Key: "ctrl+a", Desc: "enroll"},
			{Key: "ctrl+e", Desc: "recipients"},
			{Key: "ctrl+r", Desc: "report"},
			{Key: "ctrl+y", Desc: "sync"},
			{Key: "ctrl+g", Desc: "settings"},
			{Key: "ctrl+x", Desc: "end"},
		}
	case viewLog:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "d", Desc: "delete"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewRecipients:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "a", Desc: "add"},
			{Key: "d", Desc: "remove"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewRecipientForm:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "add"},
			{Key: "esc", Desc: "cancel"},
		}
	case viewReport:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "compose"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewSync:
		return []zstyle.HelpPair{
			{Key: "c", Desc: "copy payload"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewSettings:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "select"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewSettingsGemini, viewSettingsScanner:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next"},
			{Key: "ctrl+s", Desc: "save"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewReset:
		return []zstyle.HelpPair{
			{Key: "y", Desc: "confirm"},
			{Key: "n", Desc: "cancel"},
			{Key: "q", Desc: "quit"},
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewRoster:
		m.rosterView, cmd = m.rosterView.Update(msg)
	case viewPersonForm:
		m.personForm, cmd = m.personForm.Update(msg)
	case viewScan:
		m.scanView, cmd = m.scanView.Update(msg)
	case viewLog:
		m.logView, cmd = m.logView.Update(msg)
	case viewRecipients:
		m.recipientList, cmd = m.recipientList.Update(msg)
	case viewRecipientForm:
		m.recipientForm, cmd = m.recipientForm.Update(msg)
	case viewReport:
		m.reportView, cmd = m.reportView.Update(msg)
	case viewSync:
		m.syncView, cmd = m.syncView.Update(msg)
	case viewSettings:
		m.settings, cmd = m.settings.Update(msg)
	case viewSettingsGemini:
		m.settingsGemini, cmd = m.settingsGemini.Update(msg)
	case viewSettingsScanner:
		m.settingsScanner, cmd = m.settingsScanner.Update(msg)
	case viewReset:
		m.reset, cmd = m.reset.Update(msg)
	}

	return m, cmd
}

func (m Model) navigate(view viewID) (tea.Model, tea.Cmd) {
	switch view {
	case viewRoster:
		m.rosterView = newRosterModel(m.version, m.session.People())
		m.active = viewRoster
		return m, tea.ClearScreen

	case viewPersonForm:
		m.personForm = newPersonFormModel(m.active == viewScan)
		m.active = viewPersonForm
		return m, tea.Batch(m.personForm.Init(), tea.ClearScreen)

	case viewScan:
		m.scanView = m.scanView.refresh(m.session, m.engine.Locked())
		m.active = viewScan
		return m, tea.Batch(m.scanView.Init(), tea.ClearScreen)

	case viewLog:
		m.logView = newLogModel(m.session)
		m.active = viewLog
		return m, tea.ClearScreen

	case viewRecipients:
		m.recipientList = newRecipientListModel(loadEmails(m.contacts))
		m.active = viewRecipients
		return m, tea.ClearScreen

	case viewRecipientForm:
		m.recipientForm = newRecipientFormModel()
		m.active = viewRecipientForm
		return m, tea.Batch(m.recipientForm.Init(), tea.ClearScreen)

	case viewReport:
		m.reportView = newReportModel(m.session, loadEmails(m.contacts), m.gmConfig)
		m.active = viewReport
		return m, tea.ClearScreen

	case viewSync:
		m.syncView = newSyncModel(m.session)
		m.active = viewSync
		return m, tea.ClearScreen

	case viewSettings:
		m.settings = newSettingsModel(m.gmConfig, m.scConfig, m.reader != nil)
		m.active = viewSettings
		return m, tea.ClearScreen

	case viewSettingsGemini:
		m.settingsGemini = newGeminiModel(m.gmConfig)
		m.active = viewSettingsGemini
		return m, tea.Batch(m.settingsGemini.Init(), tea.ClearScreen)

	case viewSettingsScanner:
		m.settingsScanner = newScannerModel(m.scConfig)
		m.active = viewSettingsScanner
		return m, tea.Batch(m.settingsScanner.Init(), tea.ClearScreen)

	case viewReset:
		m.reset = newResetModel(len(m.session.People()), len(m.session.Records()))
		m.active = viewReset
		return m, tea.ClearScreen
	}

	return m, nil
}

// startMission opens the scanner device and switches to the scan view.
// A missing device is not fatal: manual entry still works.
func (m Model) startMission() (tea.Model, tea.Cmd) {
	if len(m.session.People()) == 0 {
		m.rosterView.flash = "enroll at least one agent first"
		return m, clearFlashAfter()
	}

	if m.reader == nil {
		r, err := scanner.Open(m.scConfig.Device())
		if err != nil {
			slog.Warn("open scanner", "device", m.scConfig.Device(), "error", err)
		} else {
			m.reader = r
			m.engine.SetGate(r)
		}
	}

	m.scanView = newScanModel(m.session, m.reader != nil)
	m.active = viewScan

	cmds := []tea.Cmd{m.scanView.Init(), tea.ClearScreen}
	if m.reader != nil {
		cmds = append(cmds, waitForScan(m.reader))
	}
	return m, tea.Batch(cmds...)
}

// waitForScan blocks on the next line from the wedge device.
func waitForScan(r *scanner.Reader) tea.Cmd {
	if r == nil {
		return nil
	}
	return func() tea.Msg {
		line, ok := <-r.Lines()
		if !ok {
			return scannerStoppedMsg{}
		}
		return scanLineMsg{line: line}
	}
}

// handleScan routes one raw input through the classify engine and turns
// the outcome into scan view feedback.
func (m Model) handleScan(raw string) (tea.Model, tea.Cmd) {
	res, err := m.engine.Submit(raw)

	var cmds []tea.Cmd
	switch {
	case errors.Is(err, scan.ErrLocked):
		m.scanView = m.scanView.setFlash("cooling down, input ignored", flashWarn)
	case errors.Is(err, scan.ErrNoSelection):
		m.scanView = m.scanView.setFlash("scan a badge or select an agent first", flashWarn)
	case err != nil:
		m.scanView = m.scanView.setFlash(err.Error(), flashWarn)
	default:
		switch res.Kind {
		case scan.KindAgent:
			m.scanView = m.scanView.setFlash("agent: "+res.Agent.DisplayName(), flashOK)
		case scan.KindItem:
			m.scanView = m.scanView.setFlash("issued "+res.Record.Code, flashOK)
		case scan.KindSync:
			if err := m.persistRoster(); err != nil {
				slog.Warn("persist synced roster", "error", err)
			}
			m.scanView = m.scanView.setFlash(
				fmt.Sprintf("roster synced: %d agents", len(m.session.People())), flashOK)
		}
		cmds = append(cmds, cooldownOver(res.Cooldown))
	}

	m.scanView = m.scanView.refresh(m.session, m.engine.Locked())
	cmds = append(cmds, clearFlashAfter())
	return m, tea.Batch(cmds...)
}

func (m Model) handleSavePerson(p roster.Person) (tea.Model, tea.Cmd) {
	m.session.AddPerson(p)

	if m.people != nil {
		if err := m.people.Put(roster.NormalizeBadge(p.Badge), p); err != nil {
			slog.Warn("save person", "badge", p.Badge, "error", err)
		}
	}

	// inline enrollment returns to scanning with the new agent selected
	if m.personForm.inline {
		m.session.Select(p.Badge)
		return m.navigate(viewScan)
	}
	return m.navigate(viewRoster)
}

func (m Model) handleDeletePerson(i int) (tea.Model, tea.Cmd) {
	people := m.session.People()
	if i < 0 || i >= len(people) {
		return m, nil
	}
	badge := people[i].Badge
	m.session.RemovePerson(i)

	if m.people != nil {
		if err := m.people.Delete(roster.NormalizeBadge(badge)); err != nil {
			slog.Warn("delete person", "badge", badge, "error", err)
		}
	}

	m.rosterView = newRosterModel(m.version, m.session.People())
	m.rosterView.flash = "removed"
	return m, clearFlashAfter()
}

func (m Model) handleSaveRecipient(email string) (tea.Model, tea.Cmd) {
	existing := loadEmails(m.contacts)
	updated, err := recipients.Add(existing, email)
	if err != nil {
		m.recipientForm.flash = err.Error()
		return m, clearFlashAfter()
	}

	normalized := updated[len(updated)-1]
	if m.contacts != nil {
		entry := recipients.Entry{Email: normalized, AddedAt: time.Now().UTC()}
		if err := m.contacts.Put(normalized, entry); err != nil {
			m.recipientForm.flash = "save: " + err.Error()
			return m, clearFlashAfter()
		}
	}

	return m.navigate(viewRecipients)
}

func (m Model) handleDeleteRecipient(email string) (tea.Model, tea.Cmd) {
	if m.contacts != nil {
		if err := m.contacts.Delete(email); err != nil {
			m.recipientList.flash = "remove: " + err.Error()
			return m, clearFlashAfter()
		}
	}

	m.recipientList = newRecipientListModel(loadEmails(m.contacts))
	m.recipientList.flash = "removed"
	return m, clearFlashAfter()
}

func (m Model) handleSaveGemini(s GeminiSettings) (tea.Model, tea.Cmd) {
	if err := saveConfig(m.configs, "gemini", s); err != nil {
		m.settingsGemini.flash = "save: " + err.Error()
		return m, clearFlashAfter()
	}

	m.gmConfig = s
	m.settingsGemini.flash = "saved"
	return m, clearFlashAfter()
}

func (m Model) handleSaveScanner(s ScannerSettings) (tea.Model, tea.Cmd) {
	if err := saveConfig(m.configs, "scanner", s); err != nil {
		m.settingsScanner.flash = "save: " + err.Error()
		return m, clearFlashAfter()
	}

	m.scConfig = s

	// reopen the device on the next mission start
	if m.reader != nil {
		m.reader.Close()
		m.reader = nil
		m.engine.SetGate(nil)
	}

	m.settingsScanner.flash = "saved"
	return m, clearFlashAfter()
}

// endMission clears the roster and distribution log, releases the
// scanner device and returns to enrollment. Recipients survive.
func (m Model) endMission() (tea.Model, tea.Cmd) {
	m.session.Reset()

	if m.people != nil {
		if saved, err := m.people.List(); err == nil {
			for _, p := range saved {
				if err := m.people.Delete(roster.NormalizeBadge(p.Badge)); err != nil {
					slog.Warn("clear roster", "badge", p.Badge, "error", err)
				}
			}
		}
	}

	if m.reader != nil {
		m.reader.Close()
		m.reader = nil
		m.engine.SetGate(nil)
	}

	m.reset, _ = m.reset.Update(missionEndedMsg{})
	return m, nil
}

// persistRoster rewrites the saved roster to match the session, used
// after a sync payload replaces the in-memory roster.
func (m Model) persistRoster() error {
	if m.people == nil {
		return nil
	}

	saved, err := m.people.List()
	if err != nil {
		return err
	}

	current := m.session.People()
	keep := make(map[string]bool, len(current))
	for _, p := range current {
		keep[roster.NormalizeBadge(p.Badge)] = true
		if err := m.people.Put(roster.NormalizeBadge(p.Badge), p); err != nil {
			return err
		}
	}

	for _, p := range saved {
		key := roster.NormalizeBadge(p.Badge)
		if !keep[key] {
			if err := m.people.Delete(key); err != nil {
				return err
			}
		}
	}

	return nil
}

// loadConfigs reads settings from the store into cached fields. Missing
// configs are silently ignored (zero value = unconfigured).
func (m *Model) loadConfigs() {
	m.gmConfig = loadConfig[GeminiSettings](m.configs, "gemini")
	m.scConfig = loadConfig[ScannerSettings](m.configs, "scanner")

	// environment key wins until one is saved explicitly
	if m.gmConfig.APIKey == "" {
		m.gmConfig.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}

// loadConfig reads a typed config from the envelope collection.
func loadConfig[T any](col *zstore.Collection[configEnvelope], key string) T {
	var zero T
	if col == nil {
		return zero
	}

	env, err := col.Get(key)
	if err != nil {
		return zero
	}

	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return zero
	}

	return v
}

// saveConfig persists a typed config into the envelope collection.
func saveConfig[T any](col *zstore.Collection[configEnvelope], key string, v T) error {
	if col == nil {
		return errors.New("store not available")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return col.Put(key, configEnvelope{Data: data})
}

// loadPeople reads the saved roster, oldest enrollment first.
func loadPeople(col *zstore.Collection[roster.Person]) []roster.Person {
	if col == nil {
		return nil
	}

	people, err := col.List()
	if err != nil {
		slog.Warn("load roster", "error", err)
		return nil
	}

	sort.Slice(people, func(i, j int) bool {
		return people[i].CreatedAt.Before(people[j].CreatedAt)
	})
	return people
}

// loadEmails reads the saved recipient emails, oldest first.
func loadEmails(col *zstore.Collection[recipients.Entry]) []string {
	if col == nil {
		return nil
	}

	entries, err := col.List()
	if err != nil {
		slog.Warn("load recipients", "error", err)
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AddedAt.Before(entries[j].AddedAt)
	})

	emails := make([]string, 0, len(entries))
	for _, e := range entries {
		emails = append(emails, e.Email)
	}
	return emails
}

// Close releases the scanner device and the store. Call after the
// program exits.
func (m Model) Close() {
	if m.reader != nil {
		m.reader.Close()
	}
	if m.store != nil {
		m.store.Close()
	}
}
