// Package tui implements the Bubble Tea terminal UI for gymdesk.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiercm/gymdesk/internal/core/notify"
	"github.com/javiercm/gymdesk/internal/core/session"
	"github.com/javiercm/gymdesk/internal/core/styles"
)

// UIState represents the active screen of the TUI.
type UIState int

const (
	stateInitializing UIState = iota
	stateLogin
	stateFeed
	stateSettings
)

// Messages produced by async commands.
type (
	initDoneMsg    struct{}
	loginResultMsg struct{ result session.Result }
	feedReloadMsg  struct{}
	settingsSaved  struct{ err error }
)

// KeyMap defines the feed-view key bindings.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	MarkRead   key.Binding
	MarkAll    key.Binding
	Delete     key.Binding
	Reload     key.Binding
	UnreadOnly key.Binding
	Dismiss    key.Binding
	Settings   key.Binding
	Logout     key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the standard key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		MarkRead:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "mark read")),
		MarkAll:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "mark all read")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		UnreadOnly: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unread only")),
		Dismiss:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss toast")),
		Settings:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		Logout:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "logout")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	session *session.Manager
	store   *notify.Store
	signal  *ChangeSignal
	keys    KeyMap

	state  UIState
	width  int
	height int

	spinner spinner.Model
	busy    bool

	// Login form.
	email    textinput.Model
	password textinput.Model
	focusPwd bool
	loginErr string

	// Feed view.
	cursor     int
	unreadOnly bool

	// Settings view.
	settingsDraft  notify.Settings
	settingsCursor int
	settingsErr    string

	quitting bool
}

// New constructs the root model. The session manager and notification
// store must already be wired to the api client.
func New(mgr *session.Manager, store *notify.Store) Model {
	signal := NewChangeSignal()
	mgr.Subscribe(signal.Notify)
	store.Subscribe(signal.Notify)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ListSelectedStyle

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 120

	return Model{
		session:  mgr,
		store:    store,
		signal:   signal,
		keys:     DefaultKeyMap(),
		state:    stateInitializing,
		spinner:  sp,
		email:    email,
		password: password,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.signal.Wait(),
		m.initializeCmd(),
	)
}

// initializeCmd restores the persisted session and, when it resolves to
// an authenticated state, hydrates the notification store.
func (m Model) initializeCmd() tea.Cmd {
	mgr, store := m.session, m.store
	return func() tea.Msg {
		ctx := context.Background()
		mgr.Initialize(ctx)
		if mgr.State() == session.StateAuthenticated {
			store.Initialize(ctx)
		}
		return initDoneMsg{}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	mgr, store := m.session, m.store
	return func() tea.Msg {
		ctx := context.Background()
		res := mgr.Login(ctx, email, password)
		if res.OK {
			store.Initialize(ctx)
		}
		return loginResultMsg{result: res}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx := context.Background()
		store.Load(ctx, notify.Filter{})
		store.LoadUnreadCount(ctx)
		return feedReloadMsg{}
	}
}

func (m Model) markReadCmd(id int64) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		store.MarkRead(context.Background(), id)
		return feedReloadMsg{}
	}
}

func (m Model) markAllCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		store.MarkAllRead(context.Background())
		return feedReloadMsg{}
	}
}

func (m Model) deleteCmd(id int64) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		// Failure keeps the record; the store logs and the feed view
		// re-renders from store state either way.
		_ = store.Delete(context.Background(), id)
		return feedReloadMsg{}
	}
}

func (m Model) saveSettingsCmd(s notify.Settings) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return settingsSaved{err: store.UpdateSettings(context.Background(), s)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case storeChangedMsg:
		// State moved under us (toast expiry, forced logout). Re-render
		// and re-arm the wait.
		if m.state == stateFeed && m.session.State() == session.StateUnauthenticated {
			m.state = stateLogin
			m.loginErr = m.session.Err()
		}
		m.clampCursor()
		return m, m.signal.Wait()

	case initDoneMsg:
		m.busy = false
		if m.session.State() == session.StateAuthenticated {
			m.state = stateFeed
		} else {
			m.state = stateLogin
		}
		return m, nil

	case loginResultMsg:
		m.busy = false
		if msg.result.OK {
			m.state = stateFeed
			m.loginErr = ""
			m.password.SetValue("")
			return m, nil
		}
		m.loginErr = msg.result.Message
		return m, nil

	case feedReloadMsg:
		m.busy = false
		m.clampCursor()
		return m, nil

	case settingsSaved:
		m.busy = false
		if msg.err != nil {
			m.settingsErr = "Could not save settings"
			return m, nil
		}
		m.state = stateFeed
		m.settingsErr = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) && m.state != stateLogin {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case stateLogin:
		return m.handleLoginKey(msg)
	case stateFeed:
		return m.handleFeedKey(msg)
	case stateSettings:
		return m.handleSettingsKey(msg)
	}
	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "shift+tab":
		m.focusPwd = !m.focusPwd
		if m.focusPwd {
			m.email.Blur()
			return m, m.password.Focus()
		}
		m.password.Blur()
		return m, m.email.Focus()

	case "enter":
		if m.busy {
			return m, nil
		}
		email, password := m.email.Value(), m.password.Value()
		if email == "" || password == "" {
			m.loginErr = "Email and password are required"
			return m, nil
		}
		m.busy = true
		m.loginErr = ""
		return m, m.loginCmd(email, password)
	}

	var cmd tea.Cmd
	if m.focusPwd {
		m.password, cmd = m.password.Update(msg)
	} else {
		m.email, cmd = m.email.Update(msg)
	}
	return m, cmd
}

func (m Model) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	feed := m.feed()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(feed)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		if m.cursor < len(feed) && !feed[m.cursor].Read {
			return m, m.markReadCmd(feed[m.cursor].ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkAll):
		return m, m.markAllCmd()

	case key.Matches(msg, m.keys.Delete):
		if m.cursor < len(feed) {
			return m, m.deleteCmd(feed[m.cursor].ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		m.busy = true
		return m, m.reloadCmd()

	case key.Matches(msg, m.keys.UnreadOnly):
		m.unreadOnly = !m.unreadOnly
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		if toasts := m.store.Toasts(); len(toasts) > 0 {
			m.store.RemoveToast(toasts[len(toasts)-1].DisplayID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Settings):
		m.state = stateSettings
		m.settingsDraft = m.store.Settings()
		m.settingsCursor = 0
		m.settingsErr = ""
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		m.session.Logout()
		m.store.ClearAll()
		m.state = stateLogin
		m.loginErr = ""
		return m, nil
	}

	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := settingsRows(m.settingsDraft)

	switch msg.String() {
	case "esc":
		m.state = stateFeed
		return m, nil

	case "up", "k":
		if m.settingsCursor > 0 {
			m.settingsCursor--
		}
		return m, nil

	case "down", "j":
		if m.settingsCursor < len(rows)-1 {
			m.settingsCursor++
		}
		return m, nil

	case " ":
		rows[m.settingsCursor].toggle(&m.settingsDraft)
		return m, nil

	case "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.saveSettingsCmd(m.settingsDraft)
	}

	return m, nil
}

// feed returns the notifications currently shown, honoring the unread
// filter toggle.
func (m Model) feed() []notify.Notification {
	if m.unreadOnly {
		unread := false
		return m.store.Filtered(notify.Filter{Read: &unread})
	}
	return m.store.Notifications()
}

func (m *Model) clampCursor() {
	if n := len(m.feed()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}
