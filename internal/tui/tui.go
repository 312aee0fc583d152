// Package tui implements the root Bubble Tea model for zacct.
package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zacct/internal/api"
	"github.com/zarlcorp/zacct/internal/config"
	"github.com/zarlcorp/zacct/internal/store"
)

// zacctAccent is the product accent color.
var zacctAccent = lipgloss.Color("#2EB7A4")

type viewID int

const (
	viewUnlock viewID = iota
	viewSettings
	viewAccounts
)

// navigateMsg tells the root model to switch views.
type navigateMsg struct {
	view viewID
}

// accountsLoadedMsg signals that the store finished (re)loading.
type accountsLoadedMsg struct {
	err error
}

// Model is the root TUI model.
type Model struct {
	version  string
	dataDir  string
	firstRun bool

	vault    *zstore.Store
	configs  *zstore.Collection[config.Envelope]
	settings config.Server
	accounts *store.Store
	notices  chan store.Notice

	active       viewID
	unlock       unlockModel
	settingsView settingsModel
	accountsView accountsModel

	// terminal dimensions
	width  int
	height int
}

// New creates the root TUI model.
func New(version, dataDir string, firstRun bool) Model {
	return Model{
		version:  version,
		dataDir:  dataDir,
		firstRun: firstRun,
		active:   viewUnlock,
		unlock:   newUnlockModel(firstRun),
		notices:  make(chan store.Notice, 8),
	}
}

func (m Model) Init() tea.Cmd {
	return m.unlock.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case unlockSubmitMsg:
		return m.openVault(msg.password)

	case saveSettingsMsg:
		return m.handleSaveSettings(msg.settings)

	case navigateMsg:
		return m.navigate(msg.view)

	case accountsLoadedMsg:
		return m.handleLoaded()

	case saveRowMsg:
		return m, m.saveRowCmd(msg)

	case removeAccountMsg:
		return m, m.removeCmd(msg)

	case noticeMsg:
		// deliver to the active view, re-arm the listener
		model, _ := m.updateActive(msg)
		return model, tea.Batch(m.waitForNotice(), clearFlashAfter())
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	// the unlock view carries the logo and renders without chrome
	if m.active == viewUnlock {
		return m.unlock.View()
	}

	var content string
	switch m.active {
	case viewSettings:
		content = m.settingsView.View()
	case viewAccounts:
		content = m.accountsView.View()
	}

	header := zstyle.RenderHeader("zacct", viewTitle(m.active), zacctAccent)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(helpFor(m.active))

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

func viewTitle(id viewID) string {
	switch id {
	case viewSettings:
		return "Server Settings"
	case viewAccounts:
		return "Accounts"
	}
	return ""
}

// helpFor returns keybinding pairs for each view's footer.
func helpFor(id viewID) []zstyle.HelpPair {
	switch id {
	case viewSettings:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next"},
			{Key: "ctrl+s", Desc: "save"},
			{Key: "esc", Desc: "back"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	case viewAccounts:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next field"},
			{Key: "↑/↓", Desc: "row"},
			{Key: "space", Desc: "type"},
			{Key: "ctrl+n", Desc: "add"},
			{Key: "ctrl+d", Desc: "delete"},
			{Key: "ctrl+r", Desc: "reveal"},
			{Key: "ctrl+g", Desc: "generate"},
			{Key: "esc", Desc: "settings"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewUnlock:
		m.unlock, cmd = m.unlock.Update(msg)
	case viewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case viewAccounts:
		m.accountsView, cmd = m.accountsView.Update(msg)
	}

	return m, cmd
}

func (m Model) openVault(password string) (tea.Model, tea.Cmd) {
	if err := os.MkdirAll(m.dataDir, 0o700); err != nil {
		m.unlock, _ = m.unlock.Update(unlockErrMsg{
			err: fmt.Errorf("create data dir: %w", err),
		})
		return m, nil
	}

	fsys := zfilesystem.NewOSFileSystem(m.dataDir)
	s, err := zstore.Open(fsys, []byte(password))
	if err != nil {
		m.unlock, _ = m.unlock.Update(unlockErrMsg{err: err})
		return m, nil
	}

	cfgCol, err := zstore.NewCollection[config.Envelope](s, "config")
	if err != nil {
		s.Close()
		m.unlock, _ = m.unlock.Update(unlockErrMsg{err: err})
		return m, nil
	}

	m.vault = s
	m.configs = cfgCol
	m.settings = config.LoadServer(cfgCol)

	if !m.settings.Configured() {
		m.settingsView = newSettingsModel(m.settings)
		m.active = viewSettings
		return m, tea.Batch(m.settingsView.Init(), tea.ClearScreen)
	}

	return m.connect()
}

// connect builds the API client and account store from the current
// settings and moves to the account form.
func (m Model) connect() (tea.Model, tea.Cmd) {
	ch := m.notices
	client := api.NewClient(m.settings.APIConfig())
	m.accounts = store.New(client, store.WithNotify(func(n store.Notice) {
		select {
		case ch <- n:
		default:
		}
	}))

	m.accountsView = accountsModel{loading: true}
	m.active = viewAccounts

	return m, tea.Batch(
		m.loadCmd(),
		m.waitForNotice(),
		tea.ClearScreen,
	)
}

func (m Model) handleSaveSettings(s config.Server) (tea.Model, tea.Cmd) {
	if err := config.SaveServer(m.configs, s); err != nil {
		m.settingsView.flash = "save: " + err.Error()
		return m, clearFlashAfter()
	}

	m.settings = s
	return m.connect()
}

func (m Model) navigate(view viewID) (tea.Model, tea.Cmd) {
	switch view {
	case viewSettings:
		m.settingsView = newSettingsModel(m.settings)
		m.active = viewSettings
		return m, tea.Batch(m.settingsView.Init(), tea.ClearScreen)

	case viewAccounts:
		if m.accounts == nil {
			return m.connect()
		}
		m.accountsView = accountsModel{loading: true}
		m.active = viewAccounts
		return m, tea.Batch(m.loadCmd(), tea.ClearScreen)
	}

	return m, nil
}

func (m Model) handleLoaded() (tea.Model, tea.Cmd) {
	// seed rows from whatever the store holds; on a failed load that is
	// the prior state, and the error notice explains why
	m.accountsView = newAccountsModel(m.accounts.Accounts())
	m.active = viewAccounts
	return m, m.accountsView.Init()
}

func (m Model) loadCmd() tea.Cmd {
	s := m.accounts
	return func() tea.Msg {
		err := s.Load(context.Background())
		return accountsLoadedMsg{err: err}
	}
}

func (m Model) saveRowCmd(msg saveRowMsg) tea.Cmd {
	s := m.accounts
	if s == nil {
		return nil
	}

	if msg.account.Persisted() {
		return func() tea.Msg {
			err := s.Update(context.Background(), msg.account)
			return rowUpdatedMsg{index: msg.index, err: err}
		}
	}

	return func() tea.Msg {
		created, err := s.Add(context.Background(), msg.account)
		return rowAddedMsg{index: msg.index, account: created, err: err}
	}
}

func (m Model) removeCmd(msg removeAccountMsg) tea.Cmd {
	s := m.accounts
	if s == nil {
		return nil
	}

	return func() tea.Msg {
		err := s.Remove(context.Background(), msg.id)
		return rowRemovedMsg{index: msg.index, err: err}
	}
}

// waitForNotice blocks until the store emits a notice and forwards it
// as a message. Re-armed by the root after each delivery.
func (m Model) waitForNotice() tea.Cmd {
	ch := m.notices
	return func() tea.Msg {
		return noticeMsg{notice: <-ch}
	}
}

// Close cleans up resources. Call after the program exits.
func (m Model) Close() {
	if m.vault != nil {
		m.vault.Close()
	}
}
