package tui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/studiowebux/marketcli/internal/analytics"
	"github.com/studiowebux/marketcli/internal/catalog"
	"github.com/studiowebux/marketcli/internal/config"
	"github.com/studiowebux/marketcli/internal/executor"
	"github.com/studiowebux/marketcli/internal/history"
	"github.com/studiowebux/marketcli/internal/keybinds"
	"github.com/studiowebux/marketcli/internal/session"
	"github.com/studiowebux/marketcli/internal/types"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeFilter
	ModeHistory
	ModeStats
	ModeHelp
)

// Focus is the pane receiving keys in ModeNormal
type Focus int

const (
	FocusList Focus = iota
	FocusForm
)

// Model represents the TUI state
type Model struct {
	ctx      context.Context
	settings *config.Settings
	log      zerolog.Logger
	client   *http.Client
	keys     *keybinds.Registry

	session   *session.Session
	recorder  *history.Recorder
	history   *history.Manager
	analytics *analytics.Manager

	mode  Mode
	focus Focus

	// Endpoint list
	market      catalog.Market // empty shows both markets
	searchQuery string
	endpoints   []catalog.Endpoint
	cursor      int

	// Parameter form, one input per parameter of the selected endpoint
	fields     []textinput.Model
	fieldIndex int

	// Prompt shared by search and filter modes
	input       textinput.Model
	savedSearch string

	// JMESPath filter over the response
	filterExpr string
	filtered   string
	filterErr  string

	response   viewport.Model
	helpView   viewport.Model
	spinner    spinner.Model
	cancelCall context.CancelFunc

	historyEntries []types.HistoryEntry
	historyIndex   int
	confirmClear   bool

	stats      []analytics.Stats
	statsIndex int

	statusMsg string
	errorMsg  string

	width  int
	height int
}

// Messages

type callCompletedMsg struct {
	ticket session.Ticket
	result *types.CallResult
}

type historyLoadedMsg struct {
	entries []types.HistoryEntry
}

type historyClearedMsg struct {
	count int
}

type statsLoadedMsg struct {
	stats []analytics.Stats
}

type settingsReloadedMsg struct {
	settings *config.Settings
	err      error
}

type clipboardMsg struct {
	what string
	err  error
}

type errorMsg string

type clearStatusMsg struct{}

// New creates the TUI model. A nil opts.History disables the history and
// stats views.
func New(ctx context.Context, opts Options) *Model {
	settings := opts.Settings
	if settings == nil {
		d := config.Defaults()
		settings = &d
	}
	keys := opts.Keys
	if keys == nil {
		keys = keybinds.NewDefaultRegistry()
	}

	input := textinput.New()
	input.CharLimit = 256

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleWarning))

	m := &Model{
		ctx:      ctx,
		settings: settings,
		log:      opts.Log,
		client:   executor.NewClient(settings.Timeout),
		keys:     keys,
		session:  session.New(settings.BaseURL),
		recorder: history.NewRecorder(opts.History, settings.History, opts.Log),
		history:  opts.History,
		input:    input,
		response: viewport.New(0, 0),
		helpView: viewport.New(0, 0),
		spinner:  sp,
	}
	if opts.History != nil {
		m.analytics = analytics.NewManager(opts.History.DB())
	}
	m.refreshEndpoints()
	return m
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKeyPress(msg)

	case spinner.TickMsg:
		if m.session.Outcome().State != session.Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case callCompletedMsg:
		return m, m.completeCall(msg)

	case historyLoadedMsg:
		m.historyEntries = msg.entries
		if m.historyIndex >= len(m.historyEntries) {
			m.historyIndex = max(0, len(m.historyEntries)-1)
		}
		return m, nil

	case historyClearedMsg:
		m.historyEntries = nil
		m.historyIndex = 0
		return m, m.setStatusMessage(fmt.Sprintf("History cleared (%d entries)", msg.count))

	case statsLoadedMsg:
		m.stats = msg.stats
		if m.statsIndex >= len(m.stats) {
			m.statsIndex = max(0, len(m.stats)-1)
		}
		return m, nil

	case settingsReloadedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("settings reload failed")
			return m, m.setErrorMessage(fmt.Sprintf("Settings reload failed: %v", msg.err))
		}
		return m, m.applySettings(msg.settings)

	case clipboardMsg:
		if msg.err != nil {
			return m, m.setErrorMessage(fmt.Sprintf("Failed to copy to clipboard: %v", msg.err))
		}
		return m, m.setStatusMessage(msg.what + " copied to clipboard")

	case errorMsg:
		return m, m.setErrorMessage(string(msg))

	case clearStatusMsg:
		m.statusMsg = ""
		m.errorMsg = ""
		return m, nil
	}

	return m, nil
}

// View renders the current mode
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.mode {
	case ModeHistory:
		return m.renderHistory()
	case ModeStats:
		return m.renderStats()
	case ModeHelp:
		return m.renderHelp()
	default:
		return m.renderMain()
	}
}

// Cleanup cancels any in-flight call
func (m *Model) Cleanup() {
	if m.cancelCall != nil {
		m.cancelCall()
		m.cancelCall = nil
	}
}

// applySettings switches to reloaded settings without dropping the selection
func (m *Model) applySettings(s *config.Settings) tea.Cmd {
	if s == nil {
		return nil
	}
	if s.Timeout != m.settings.Timeout {
		m.client = executor.NewClient(s.Timeout)
	}
	m.settings = s
	m.session.SetBaseURL(s.BaseURL)
	m.recorder.SetEnabled(s.History)
	m.refreshResponseView()
	m.log.Info().Str("base_url", s.BaseURL).Bool("history", s.History).Msg("settings reloaded")

	if s.History && m.history == nil {
		return m.setErrorMessage("Settings reloaded, history is unavailable until restart")
	}
	return m.setStatusMessage("Settings reloaded")
}

// Helper methods for setting messages with timeout
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.errorMsg = ""
	m.statusMsg = truncate(msg, MaxStatusLength)
	return clearAfter(StatusMessageTimeout)
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.statusMsg = ""
	m.errorMsg = truncate(msg, MaxStatusLength)
	return clearAfter(StatusMessageTimeout)
}

func clearAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-3]) + "..."
}
