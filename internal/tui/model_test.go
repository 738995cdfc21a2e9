package tui

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/marketcli/internal/catalog"
	"github.com/studiowebux/marketcli/internal/config"
	"github.com/studiowebux/marketcli/internal/history"
	"github.com/studiowebux/marketcli/internal/mock"
	"github.com/studiowebux/marketcli/internal/session"
)

// newTestModel returns a model wired to an in-process mock market API and a
// temporary history database
func newTestModel(t *testing.T, routes ...mock.Route) *Model {
	t.Helper()

	srv := httptest.NewServer(mock.NewServer(&mock.Config{Routes: routes}, t.TempDir(), zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)

	hist, err := history.NewManager(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { hist.Close() })

	settings := config.Defaults()
	settings.BaseURL = srv.URL + mock.DefaultPrefix
	settings.Timeout = 5 * time.Second

	m := New(context.Background(), Options{Settings: &settings, Log: zerolog.Nop(), History: hist})
	t.Cleanup(m.Cleanup)
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

// call dispatches the current request and feeds the result back, returning
// the follow-up command
func call(t *testing.T, m *Model) tea.Cmd {
	t.Helper()
	run, err := m.startCall()
	require.NoError(t, err)
	require.Equal(t, session.Pending, m.session.Outcome().State)
	_, cmd := m.Update(run())
	return cmd
}

func TestNew(t *testing.T) {
	m := newTestModel(t)

	assert.Len(t, m.endpoints, len(catalog.All()))
	_, selected := m.session.Selected()
	assert.False(t, selected, "no endpoint is selected on start")
	assert.Equal(t, "Loading...", m.View())
}

func TestNavigation(t *testing.T) {
	m := newTestModel(t)
	last := len(catalog.All()) - 1

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)

	press(m, keyRunes("G"))
	assert.Equal(t, last, m.cursor)

	press(m, keyRunes("g"), keyRunes("g"))
	assert.Equal(t, 0, m.cursor)

	press(m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor, "cursor stays on the list")
}

func TestCycleMarket(t *testing.T) {
	m := newTestModel(t)

	press(m, keyRunes("m"))
	assert.Equal(t, catalog.MarketSpot, m.market)
	for _, ep := range m.endpoints {
		assert.Equal(t, catalog.MarketSpot, ep.Market)
	}

	press(m, keyRunes("m"))
	assert.Len(t, m.endpoints, len(catalog.ByMarket(catalog.MarketFutures)))

	press(m, keyRunes("m"))
	assert.Len(t, m.endpoints, len(catalog.All()))
}

func TestSearch(t *testing.T) {
	m := newTestModel(t)

	press(m, keyRunes("/"))
	require.Equal(t, ModeSearch, m.mode)

	press(m, keyRunes("f"), keyRunes("u"), keyRunes("n"), keyRunes("d"))
	assert.Equal(t, "fund", m.searchQuery)
	require.NotEmpty(t, m.endpoints)
	names := make([]string, 0, len(m.endpoints))
	for _, ep := range m.endpoints {
		names = append(names, ep.Name)
	}
	assert.Contains(t, names, "Futures Funding Rate")
	assert.Less(t, len(m.endpoints), len(catalog.All()))

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, "fund", m.searchQuery, "enter keeps the query")

	// esc in the list clears the search before touching the selection
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.searchQuery)
	assert.Len(t, m.endpoints, len(catalog.All()))
}

func TestSearch_CancelRestores(t *testing.T) {
	m := newTestModel(t)

	press(m, keyRunes("/"), keyRunes("x"), keyRunes("y"))
	press(m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, ModeNormal, m.mode)
	assert.Empty(t, m.searchQuery)
	assert.Len(t, m.endpoints, len(catalog.All()))
}

func TestSelect_SeedsDefaults(t *testing.T) {
	m := newTestModel(t)

	require.NoError(t, m.selectEndpoint("Spot Depth"))

	require.Len(t, m.fields, 2)
	assert.Equal(t, catalog.DefaultSymbol, m.fields[0].Value())
	assert.Equal(t, "10", m.fields[1].Value())
	assert.Equal(t, m.settings.BaseURL+"/depth?symbol=BTCUSDT&limit=10", m.session.URL())
}

func TestSelect_ViaEnter(t *testing.T) {
	m := newTestModel(t)

	press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})

	ep, ok := m.session.Selected()
	require.True(t, ok)
	assert.Equal(t, catalog.All()[1].Name, ep.Name)
	assert.Contains(t, m.statusMsg, "Selected")
}

func TestForm_EditUpdatesURL(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Depth"))

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, FocusForm, m.focus)
	require.Equal(t, 0, m.fieldIndex)

	for range catalog.DefaultSymbol {
		press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	press(m, keyRunes("ETHUSDT"))

	assert.Equal(t, "ETHUSDT", m.session.Value("symbol"))
	assert.Contains(t, m.session.Command(), "/depth?symbol=ETHUSDT&limit=10")

	// printable keys bound in the list are typed while the form has focus
	press(m, keyRunes("q"))
	assert.Equal(t, "ETHUSDTq", m.session.Value("symbol"))
}

func TestForm_IntegerFieldTakesDigitsOnly(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Depth"))

	press(m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 1, m.fieldIndex)

	press(m, keyRunes("a"), keyRunes("5"), keyRunes("-"))
	assert.Equal(t, "105", m.session.Value("limit"))
}

func TestForm_EmptyValueOmittedFromURL(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Depth"))

	press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, 1, m.fieldIndex, "shift+tab from the list focuses the last field")

	press(m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, m.settings.BaseURL+"/depth?symbol=BTCUSDT", m.session.URL())
}

func TestForm_TabWrapsToList(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Ticker Price (Single)"))

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FocusForm, m.focus)
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FocusList, m.focus)

	press(m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, FocusList, m.focus, "esc leaves the form")
	_, selected := m.session.Selected()
	assert.True(t, selected, "leaving the form keeps the selection")
}

func TestTab_WithoutSelection(t *testing.T) {
	m := newTestModel(t)

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FocusList, m.focus)
	assert.Equal(t, noSelectionMessage, m.errorMsg)
}

func TestResetValues(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Depth"))
	require.NoError(t, m.session.SetValue("symbol", "DOGEUSDT"))

	press(m, keyRunes("r"))
	assert.Equal(t, catalog.DefaultSymbol, m.session.Value("symbol"))
	assert.Equal(t, catalog.DefaultSymbol, m.fields[0].Value())
}

func TestClear(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Ping"))
	call(t, m)
	require.Equal(t, session.Succeeded, m.session.Outcome().State)

	press(m, tea.KeyMsg{Type: tea.KeyEsc})

	_, selected := m.session.Selected()
	assert.False(t, selected)
	assert.Equal(t, session.Idle, m.session.Outcome().State)
	assert.Nil(t, m.fields)
}

func TestExecute_Success(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Ticker Price (Single)"))
	require.NoError(t, m.session.SetValue("symbol", "ETHUSDT"))

	record := call(t, m)

	out := m.session.Outcome()
	require.Equal(t, session.Succeeded, out.State)
	assert.Equal(t, 200, out.Result.Status)
	assert.Equal(t, "Spot Ticker Price (Single)", out.Result.Endpoint)
	assert.Contains(t, m.responseText(), `"symbol": "ETHUSDT"`)
	assert.Nil(t, m.cancelCall, "completed call releases its context")

	require.NotNil(t, record, "accepted results are recorded")
	record()

	entries, err := m.history.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Spot Ticker Price (Single)", entries[0].Endpoint)
	assert.Contains(t, entries[0].URL, "symbol=ETHUSDT")
}

func TestExecute_Failure(t *testing.T) {
	m := newTestModel(t, mock.Route{Path: "/depth", Status: 429, Body: `{"error":"rate limited"}`})
	require.NoError(t, m.selectEndpoint("Spot Depth"))

	call(t, m)

	out := m.session.Outcome()
	require.Equal(t, session.Failed, out.State)
	assert.Equal(t, "rate limited", out.Message())
	assert.Equal(t, `{"error":"rate limited"}`, m.responseText())
}

func TestExecute_GenericFailure(t *testing.T) {
	m := newTestModel(t, mock.Route{Path: "/ping", Status: 500})
	require.NoError(t, m.selectEndpoint("Spot Ping"))

	call(t, m)

	assert.Equal(t, "HTTP error! status: 500", m.session.Outcome().Message())
}

func TestExecute_WithoutSelection(t *testing.T) {
	m := newTestModel(t)

	cmd := m.executeRequest()
	assert.NotNil(t, cmd)
	assert.Equal(t, noSelectionMessage, m.errorMsg)
	assert.Equal(t, session.Idle, m.session.Outcome().State)
}

func TestExecute_StaleResultDropped(t *testing.T) {
	m := newTestModel(t, mock.Route{Path: "/time", Status: 200, Body: `{"serverTime":1}`, Delay: 200})
	require.NoError(t, m.selectEndpoint("Spot Server Time"))

	run, err := m.startCall()
	require.NoError(t, err)

	// selecting another endpoint supersedes and cancels the call in flight
	require.NoError(t, m.selectEndpoint("Spot Ping"))
	_, cmd := m.Update(run())

	assert.Nil(t, cmd, "stale results are not recorded")
	assert.Equal(t, session.Idle, m.session.Outcome().State)
	ep, _ := m.session.Selected()
	assert.Equal(t, "Spot Ping", ep.Name)

	count, err := m.history.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestExecute_SecondCallSupersedesFirst(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Ping"))

	first, err := m.startCall()
	require.NoError(t, err)
	second, err := m.startCall()
	require.NoError(t, err)

	m.Update(first())
	assert.Equal(t, session.Pending, m.session.Outcome().State)

	m.Update(second())
	assert.Equal(t, session.Succeeded, m.session.Outcome().State)
}

func TestFilter(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Depth"))
	call(t, m)

	press(m, keyRunes("f"))
	require.Equal(t, ModeFilter, m.mode)
	press(m, keyRunes("length(bids)"), tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, "length(bids)", m.filterExpr)
	assert.Equal(t, "10", m.responseText())

	// a new call keeps the expression and filters the new payload
	require.NoError(t, m.session.SetValue("limit", "3"))
	call(t, m)
	assert.Equal(t, "3", m.responseText())

	// an empty expression clears the filter
	press(m, keyRunes("f"))
	for range "length(bids)" {
		press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.filterExpr)
	assert.Contains(t, m.responseText(), `"bids"`)
}

func TestFilter_InvalidExpression(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Ping"))
	call(t, m)

	press(m, keyRunes("f"), keyRunes("bids["), tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ModeFilter, m.mode, "invalid expressions keep the prompt open")
	assert.Contains(t, m.errorMsg, "invalid JMESPath expression")
	assert.Empty(t, m.filterExpr)
}

func TestFilter_RequiresSuccess(t *testing.T) {
	m := newTestModel(t)

	press(m, keyRunes("f"))
	assert.Equal(t, ModeNormal, m.mode)
	assert.NotEmpty(t, m.errorMsg)
}

func TestFilter_ClearedOnSelection(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Depth"))
	call(t, m)
	m.applyFilter("bids")

	require.NoError(t, m.selectEndpoint("Spot Ping"))
	assert.Empty(t, m.filterExpr)
}

func TestCopy_RequiresContent(t *testing.T) {
	m := newTestModel(t)

	m.copyCommand()
	assert.Equal(t, noSelectionMessage, m.errorMsg)

	require.NoError(t, m.selectEndpoint("Spot Ping"))
	m.copyResponse()
	assert.Equal(t, "No response to copy", m.errorMsg)
}

func TestClipboardMsg(t *testing.T) {
	m := newTestModel(t)

	press(m, clipboardMsg{what: "Command"})
	assert.Equal(t, "Command copied to clipboard", m.statusMsg)

	press(m, clipboardMsg{what: "Command", err: assert.AnError})
	assert.Contains(t, m.errorMsg, "Failed to copy to clipboard")
	assert.Empty(t, m.statusMsg)
}

func TestHistory_LoadAndReplay(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Klines"))
	require.NoError(t, m.session.SetValue("interval", "4h"))
	record := call(t, m)
	require.NotNil(t, record)
	record()

	require.NoError(t, m.selectEndpoint("Spot Ping"))

	load := m.openHistory()
	require.Equal(t, ModeHistory, m.mode)
	press(m, load())
	require.Len(t, m.historyEntries, 1)

	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	assert.Equal(t, ModeNormal, m.mode)
	ep, _ := m.session.Selected()
	assert.Equal(t, "Spot Klines", ep.Name)
	assert.Equal(t, "4h", m.session.Value("interval"))
	assert.Equal(t, "4h", m.fields[1].Value())
	assert.Equal(t, session.Pending, m.session.Outcome().State, "replay calls the endpoint again")
}

func TestHistory_ClearNeedsConfirmation(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Ping"))
	call(t, m)()

	press(m, m.openHistory()())
	require.Len(t, m.historyEntries, 1)

	assert.NotNil(t, press(m, keyRunes("C")))
	assert.True(t, m.confirmClear)
	assert.Contains(t, m.statusMsg, "again")

	confirm := press(m, keyRunes("C"))
	require.NotNil(t, confirm)
	press(m, confirm())

	assert.Empty(t, m.historyEntries)
	assert.Equal(t, "History cleared (1 entries)", m.statusMsg)

	count, err := m.history.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHistory_Disabled(t *testing.T) {
	m := New(context.Background(), Options{Log: zerolog.Nop()})

	assert.NotNil(t, m.openHistory())
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, "History is disabled", m.errorMsg)

	m.openStats()
	assert.Equal(t, ModeNormal, m.mode)
	assert.Contains(t, m.errorMsg, "no stats available")
}

func TestStats(t *testing.T) {
	m := newTestModel(t, mock.Route{Path: "/time", Status: 503})
	require.NoError(t, m.selectEndpoint("Spot Ping"))
	call(t, m)()
	call(t, m)()
	require.NoError(t, m.selectEndpoint("Spot Server Time"))
	call(t, m)()

	load := m.openStats()
	require.Equal(t, ModeStats, m.mode)
	press(m, load())
	require.Len(t, m.stats, 2)

	byName := map[string]int{}
	for _, s := range m.stats {
		byName[s.Endpoint] = s.TotalCalls
	}
	assert.Equal(t, 2, byName["Spot Ping"])
	assert.Equal(t, 1, byName["Spot Server Time"])

	// enter selects the highlighted endpoint
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeNormal, m.mode)
	ep, _ := m.session.Selected()
	assert.Equal(t, m.stats[m.statsIndex].Endpoint, ep.Name)
}

func TestSettingsReload(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Ping"))

	next := *m.settings
	next.BaseURL = "http://localhost:9999/api/crypto"
	next.History = false
	press(m, settingsReloadedMsg{settings: &next})

	assert.Equal(t, "http://localhost:9999/api/crypto/ping", m.session.URL())
	assert.False(t, m.recorder.Enabled())
	assert.Equal(t, "Settings reloaded", m.statusMsg)

	press(m, settingsReloadedMsg{err: assert.AnError})
	assert.Contains(t, m.errorMsg, "Settings reload failed")
	assert.Equal(t, "http://localhost:9999/api/crypto", m.session.BaseURL())
}

func TestSettingsReload_TurnsHistoryBackOn(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.selectEndpoint("Spot Ping"))

	off := *m.settings
	off.History = false
	press(m, settingsReloadedMsg{settings: &off})
	assert.Nil(t, call(t, m), "nothing is recorded while history is off")

	on := off
	on.History = true
	press(m, settingsReloadedMsg{settings: &on})
	assert.True(t, m.recorder.Enabled())
	assert.Equal(t, "Settings reloaded", m.statusMsg)

	record := call(t, m)
	require.NotNil(t, record)
	record()

	count, err := m.history.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSettingsReload_HistoryWithoutCallLog(t *testing.T) {
	m := New(context.Background(), Options{Log: zerolog.Nop()})

	next := config.Defaults()
	next.History = true
	press(m, settingsReloadedMsg{settings: &next})

	assert.False(t, m.recorder.Enabled())
	assert.Empty(t, m.statusMsg)
	assert.Contains(t, m.errorMsg, "history is unavailable until restart")
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.WindowSizeMsg{Width: 140, Height: 40})

	view := m.View()
	assert.Contains(t, view, "Endpoints")
	assert.Contains(t, view, "SPOT")
	assert.Contains(t, view, "Spot Ping")

	require.NoError(t, m.selectEndpoint("Spot Depth"))
	call(t, m)
	view = m.View()
	assert.Contains(t, view, "Parameters")
	assert.Contains(t, view, "symbol*")
	assert.Contains(t, view, "curl")
	assert.Contains(t, view, "200 OK")

	press(m, keyRunes("?"))
	assert.Contains(t, m.View(), "Key bindings")
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeNormal, m.mode)
}

func TestHelpContent_FollowsRegistry(t *testing.T) {
	m := newTestModel(t)

	help := m.helpContent()
	assert.Contains(t, help, "Endpoint list")
	assert.Contains(t, help, "cycle market")
	assert.True(t, strings.Contains(help, "ctrl+r"), help)
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)

	cmd := press(m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestSetStatusMessage_Truncates(t *testing.T) {
	m := newTestModel(t)

	m.setStatusMessage(strings.Repeat("x", 150))
	assert.Len(t, m.statusMsg, MaxStatusLength)
	assert.True(t, strings.HasSuffix(m.statusMsg, "..."))
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	m := newTestModel(t)

	m.setErrorMessage(strings.Repeat("é", 150))
	assert.True(t, utf8.ValidString(m.errorMsg))
	assert.Equal(t, MaxStatusLength, utf8.RuneCountInString(m.errorMsg))
	assert.True(t, strings.HasSuffix(m.errorMsg, "é..."))

	assert.Equal(t, "naïve", truncate("naïve", 5))
	assert.Equal(t, "日本", truncate("日本語", 2))
	assert.Empty(t, truncate("abc", 0))
}

func TestStatusStyle(t *testing.T) {
	assert.Equal(t, styleSuccess, statusStyle(200))
	assert.Equal(t, styleWarning, statusStyle(404))
	assert.Equal(t, styleError, statusStyle(503))
	assert.Equal(t, styleError, statusStyle(0), "transport failures")
	assert.Equal(t, styleSubtle, statusStyle(304))
}
