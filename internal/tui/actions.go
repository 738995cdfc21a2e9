package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/marketcli/internal/catalog"
	"github.com/studiowebux/marketcli/internal/executor"
	"github.com/studiowebux/marketcli/internal/filter"
	"github.com/studiowebux/marketcli/internal/history"
	"github.com/studiowebux/marketcli/internal/keybinds"
	"github.com/studiowebux/marketcli/internal/session"
	"github.com/studiowebux/marketcli/internal/types"
)

// refreshEndpoints recomputes the visible list from the market and search
// filters
func (m *Model) refreshEndpoints() {
	list := catalog.All()
	if m.market != "" {
		list = catalog.ByMarket(m.market)
	}
	m.endpoints = catalog.SearchIn(list, m.searchQuery)
	if m.cursor >= len(m.endpoints) {
		m.cursor = max(0, len(m.endpoints)-1)
	}
}

// moveCursor moves the list cursor by delta, clamped to the list
func (m *Model) moveCursor(delta int) {
	if len(m.endpoints) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.endpoints)-1)
}

// cycleMarket switches the list between all, spot and futures endpoints
func (m *Model) cycleMarket() {
	switch m.market {
	case "":
		m.market = catalog.MarketSpot
	case catalog.MarketSpot:
		m.market = catalog.MarketFutures
	default:
		m.market = ""
	}
	m.cursor = 0
	m.refreshEndpoints()
}

// selectHighlighted selects the endpoint under the cursor
func (m *Model) selectHighlighted() tea.Cmd {
	if len(m.endpoints) == 0 {
		return nil
	}
	name := m.endpoints[m.cursor].Name
	if err := m.selectEndpoint(name); err != nil {
		return m.setErrorMessage(err.Error())
	}
	return m.setStatusMessage("Selected " + name)
}

// selectEndpoint makes name the current endpoint with its default values.
// An in-flight call is cancelled and its result will be dropped.
func (m *Model) selectEndpoint(name string) error {
	if err := m.session.Select(name); err != nil {
		return err
	}
	m.supersede()
	m.clearFilter()
	m.buildFields()
	m.revealEndpoint(name)
	m.updateLayout()
	m.log.Debug().Str("endpoint", name).Msg("endpoint selected")
	return nil
}

// revealEndpoint moves the cursor to name, dropping list filters that hide it
func (m *Model) revealEndpoint(name string) {
	for i, ep := range m.endpoints {
		if ep.Name == name {
			m.cursor = i
			return
		}
	}
	m.market = ""
	m.searchQuery = ""
	m.refreshEndpoints()
	for i, ep := range m.endpoints {
		if ep.Name == name {
			m.cursor = i
			return
		}
	}
}

// clear drops the search query, or the selection when there is none
func (m *Model) clear() tea.Cmd {
	if m.searchQuery != "" {
		m.searchQuery = ""
		m.refreshEndpoints()
		return m.setStatusMessage("Search cleared")
	}
	if _, ok := m.session.Selected(); !ok {
		return nil
	}

	m.supersede()
	m.session.Clear()
	m.clearFilter()
	m.fields = nil
	m.fieldIndex = 0
	m.focus = FocusList
	m.updateLayout()
	return m.setStatusMessage("Selection cleared")
}

// resetValues restores the default values of the selected endpoint
func (m *Model) resetValues() tea.Cmd {
	ep, ok := m.session.Selected()
	if !ok {
		return m.setErrorMessage(noSelectionMessage)
	}
	if err := m.session.ReplaceValues(catalog.DefaultValues(ep)); err != nil {
		return m.setErrorMessage(err.Error())
	}
	m.buildFields()
	return m.setStatusMessage("Parameters reset to defaults")
}

const noSelectionMessage = "Select an endpoint first (enter)"

// buildFields creates one input per parameter, seeded from the session
func (m *Model) buildFields() {
	m.fields = nil
	m.fieldIndex = 0
	m.focus = FocusList

	ep, ok := m.session.Selected()
	if !ok {
		return
	}

	m.fields = make([]textinput.Model, len(ep.Params))
	for i, p := range ep.Params {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = FieldCharLimit
		ti.Placeholder = string(p.Kind)
		ti.SetValue(m.session.Value(p.Name))
		m.fields[i] = ti
	}
	m.sizeFields()
}

// focusField focuses form field i; an index outside the form returns focus
// to the list
func (m *Model) focusField(i int) tea.Cmd {
	if len(m.fields) == 0 {
		if _, ok := m.session.Selected(); ok {
			return m.setStatusMessage("This endpoint takes no parameters")
		}
		return m.setErrorMessage(noSelectionMessage)
	}
	if i < 0 || i >= len(m.fields) {
		m.blurForm()
		return nil
	}

	for j := range m.fields {
		m.fields[j].Blur()
	}
	m.fieldIndex = i
	m.focus = FocusForm
	return m.fields[i].Focus()
}

// blurForm hands keys back to the endpoint list
func (m *Model) blurForm() {
	for i := range m.fields {
		m.fields[i].Blur()
	}
	m.focus = FocusList
}

// supersede cancels the in-flight call, if any
func (m *Model) supersede() {
	if m.cancelCall != nil {
		m.cancelCall()
		m.cancelCall = nil
	}
}

// executeRequest dispatches the current request
func (m *Model) executeRequest() tea.Cmd {
	call, err := m.startCall()
	if err != nil {
		if errors.Is(err, session.ErrNoSelection) {
			return m.setErrorMessage(noSelectionMessage)
		}
		return m.setErrorMessage(err.Error())
	}
	return tea.Batch(m.spinner.Tick, call)
}

// startCall marks the session pending and returns the command performing the
// call. The previous call, if still running, is cancelled.
func (m *Model) startCall() (tea.Cmd, error) {
	ticket, err := m.session.Begin()
	if err != nil {
		return nil, err
	}

	m.supersede()
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelCall = cancel

	m.filtered, m.filterErr = "", ""
	m.statusMsg, m.errorMsg = "", ""
	m.refreshResponseView()

	m.log.Debug().
		Str("endpoint", ticket.Endpoint).
		Str("url", ticket.URL).
		Uint64("generation", ticket.Generation).
		Msg("call dispatched")

	client := m.client
	return func() tea.Msg {
		res := executor.Execute(ctx, client, ticket.Method, ticket.URL)
		res.Endpoint = ticket.Endpoint
		return callCompletedMsg{ticket: ticket, result: res}
	}, nil
}

// completeCall applies a call result unless its ticket was superseded
func (m *Model) completeCall(msg callCompletedMsg) tea.Cmd {
	if !m.session.Complete(msg.ticket, msg.result) {
		m.log.Debug().
			Str("endpoint", msg.ticket.Endpoint).
			Uint64("generation", msg.ticket.Generation).
			Uint64("current", m.session.Generation()).
			Msg("stale result discarded")
		return nil
	}
	m.supersede()

	res := msg.result
	event := m.log.Info()
	if res.Failed() {
		event = m.log.Warn().Str("error", res.Error)
	}
	event.
		Str("endpoint", res.Endpoint).
		Str("url", res.URL).
		Int("status", res.Status).
		Int64("duration_ms", res.Duration).
		Msg("call completed")

	m.runFilter()
	m.refreshResponseView()
	m.response.GotoTop()

	return m.recordCall(res)
}

// recordCall writes an accepted result to history
func (m *Model) recordCall(res *types.CallResult) tea.Cmd {
	if !m.recorder.Enabled() {
		return nil
	}
	recorder, ctx := m.recorder, m.ctx
	return func() tea.Msg {
		recorder.Record(ctx, res)
		return nil
	}
}

// responseText is the text shown for the current outcome, filtered when a
// filter is active
func (m *Model) responseText() string {
	out := m.session.Outcome()
	switch out.State {
	case session.Succeeded:
		if m.filterExpr != "" && m.filterErr == "" {
			return m.filtered
		}
		return executor.PrettyPayload(out.Result.Payload)
	case session.Failed:
		if out.Result.Body != "" {
			return out.Result.Body
		}
		return out.Result.Error
	}
	return ""
}

// copyCommand copies the curl line of the current request
func (m *Model) copyCommand() tea.Cmd {
	command := m.session.Command()
	if command == "" {
		return m.setErrorMessage(noSelectionMessage)
	}
	return writeClipboard("Command", command)
}

// copyResponse copies the FULL response body, filtered if a filter is set
func (m *Model) copyResponse() tea.Cmd {
	body := m.responseText()
	if body == "" {
		return m.setErrorMessage("No response to copy")
	}
	return writeClipboard("Response", body)
}

func writeClipboard(what, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{what: what, err: clipboard.WriteAll(text)}
	}
}

// openSearch opens the fuzzy endpoint search prompt
func (m *Model) openSearch() tea.Cmd {
	m.savedSearch = m.searchQuery
	m.mode = ModeSearch
	m.input.Reset()
	m.input.Prompt = "/"
	m.input.Placeholder = "search endpoints"
	m.input.SetValue(m.searchQuery)
	m.input.CursorEnd()
	return m.input.Focus()
}

// openFilter opens the JMESPath prompt over the current response
func (m *Model) openFilter() tea.Cmd {
	if m.session.Outcome().State != session.Succeeded {
		return m.setErrorMessage("No successful response to filter")
	}
	m.mode = ModeFilter
	m.input.Reset()
	m.input.Prompt = "Filter: "
	m.input.Placeholder = "JMESPath, e.g. bids[:3]"
	m.input.SetValue(m.filterExpr)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closePrompt() {
	m.input.Blur()
	m.mode = ModeNormal
}

// applyFilter sets the response filter; an empty expression removes it
func (m *Model) applyFilter(expr string) tea.Cmd {
	expr = strings.TrimSpace(expr)
	if expr != "" {
		if err := filter.Validate(expr); err != nil {
			return m.setErrorMessage(err.Error())
		}
	}

	m.closePrompt()
	m.filterExpr = expr
	m.runFilter()
	m.refreshResponseView()
	m.response.GotoTop()

	switch {
	case expr == "":
		return m.setStatusMessage("Filter cleared")
	case m.filterErr != "":
		return m.setErrorMessage(m.filterErr)
	default:
		return m.setStatusMessage("Filter applied: " + expr)
	}
}

// runFilter evaluates the filter against the current successful response
func (m *Model) runFilter() {
	m.filtered, m.filterErr = "", ""
	out := m.session.Outcome()
	if m.filterExpr == "" || out.State != session.Succeeded {
		return
	}
	filtered, err := filter.Apply(out.Result.Body, m.filterExpr)
	if err != nil {
		m.filterErr = err.Error()
		return
	}
	m.filtered = filtered
}

func (m *Model) clearFilter() {
	m.filterExpr, m.filtered, m.filterErr = "", "", ""
}

// openHistory shows the call log
func (m *Model) openHistory() tea.Cmd {
	if m.history == nil {
		return m.setErrorMessage("History is disabled")
	}
	m.mode = ModeHistory
	m.historyIndex = 0
	m.confirmClear = false
	return m.loadHistory()
}

// loadHistory loads the most recent calls
func (m *Model) loadHistory() tea.Cmd {
	mgr, ctx := m.history, m.ctx
	return func() tea.Msg {
		entries, err := mgr.List(ctx, history.DefaultLimit)
		if err != nil {
			return errorMsg(fmt.Sprintf("Failed to load history: %v", err))
		}
		return historyLoadedMsg{entries: entries}
	}
}

// replayHistoryEntry re-selects the entry's endpoint with the values parsed
// back from its URL and calls it again against the current base URL
func (m *Model) replayHistoryEntry(index int) tea.Cmd {
	if index < 0 || index >= len(m.historyEntries) {
		return nil
	}
	entry := m.historyEntries[index]

	ep, err := catalog.Find(entry.Endpoint)
	if err != nil {
		return m.setErrorMessage(fmt.Sprintf("Cannot replay %q: %v", entry.Endpoint, err))
	}
	values, err := catalog.ParseValues(ep, entry.URL)
	if err != nil {
		return m.setErrorMessage(fmt.Sprintf("Cannot replay %q: %v", entry.Endpoint, err))
	}

	m.mode = ModeNormal
	if err := m.selectEndpoint(ep.Name); err != nil {
		return m.setErrorMessage(err.Error())
	}
	if err := m.session.ReplaceValues(values); err != nil {
		return m.setErrorMessage(err.Error())
	}
	m.buildFields()

	m.log.Info().Str("id", entry.ID).Str("endpoint", ep.Name).Msg("replaying history entry")
	return m.executeRequest()
}

// clearHistory deletes the call log after a second confirming key press
func (m *Model) clearHistory() tea.Cmd {
	if !m.confirmClear {
		m.confirmClear = true
		key := m.keys.GetBindingString(keybinds.ContextHistory, keybinds.ActionHistoryClear)
		return m.setStatusMessage(fmt.Sprintf("Press %s again to clear all history", key))
	}
	m.confirmClear = false

	mgr, ctx := m.history, m.ctx
	return func() tea.Msg {
		count, err := mgr.Count(ctx)
		if err != nil {
			return errorMsg(fmt.Sprintf("Failed to clear history: %v", err))
		}
		if err := mgr.Clear(ctx); err != nil {
			return errorMsg(fmt.Sprintf("Failed to clear history: %v", err))
		}
		return historyClearedMsg{count: count}
	}
}

// openStats shows per-endpoint aggregates of the call log
func (m *Model) openStats() tea.Cmd {
	if m.analytics == nil {
		return m.setErrorMessage("History is disabled, no stats available")
	}
	m.mode = ModeStats
	m.statsIndex = 0
	return m.loadStats()
}

func (m *Model) loadStats() tea.Cmd {
	mgr, ctx := m.analytics, m.ctx
	return func() tea.Msg {
		stats, err := mgr.StatsPerEndpoint(ctx)
		if err != nil {
			return errorMsg(fmt.Sprintf("Failed to load stats: %v", err))
		}
		return statsLoadedMsg{stats: stats}
	}
}

// openHelp shows the key bindings in effect
func (m *Model) openHelp() {
	m.mode = ModeHelp
	m.helpView.SetContent(m.helpContent())
	m.helpView.GotoTop()
}
