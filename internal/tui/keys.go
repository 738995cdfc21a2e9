package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/marketcli/internal/catalog"
	"github.com/studiowebux/marketcli/internal/keybinds"
)

// handleKeyPress routes a key to the handler of the current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	// ctrl+c is reserved and always quits
	if msg.String() == "ctrl+c" {
		m.Cleanup()
		return tea.Quit
	}

	switch m.mode {
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeFilter:
		return m.handleFilterKeys(msg)
	case ModeHistory:
		return m.handleHistoryKeys(msg)
	case ModeStats:
		return m.handleStatsKeys(msg)
	case ModeHelp:
		return m.handleHelpKeys(msg)
	}

	if m.focus == FocusForm {
		return m.handleFormKeys(msg)
	}
	return m.handleListKeys(msg)
}

// handleGlobalAction runs actions that mean the same thing in the list and
// the form
func (m *Model) handleGlobalAction(action keybinds.Action) (tea.Cmd, bool) {
	switch action {
	case keybinds.ActionQuit, keybinds.ActionQuitForce:
		m.Cleanup()
		return tea.Quit, true
	case keybinds.ActionExecute:
		return m.executeRequest(), true
	case keybinds.ActionCopyCommand:
		return m.copyCommand(), true
	case keybinds.ActionCopyResponse:
		return m.copyResponse(), true
	case keybinds.ActionOpenHistory:
		return m.openHistory(), true
	case keybinds.ActionOpenStats:
		return m.openStats(), true
	case keybinds.ActionOpenHelp:
		m.openHelp()
		return nil, true
	case keybinds.ActionOpenFilter:
		return m.openFilter(), true
	case keybinds.ActionScrollUp:
		m.response.HalfViewUp()
		return nil, true
	case keybinds.ActionScrollDown:
		m.response.HalfViewDown()
		return nil, true
	}
	return nil, false
}

func (m *Model) handleListKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok, partial := m.keys.MatchMultiKey(keybinds.ContextList, msg.String())
	if partial || !ok {
		return nil
	}

	if cmd, handled := m.handleGlobalAction(action); handled {
		return cmd
	}

	switch action {
	case keybinds.ActionNavigateUp:
		m.moveCursor(-1)
	case keybinds.ActionNavigateDown:
		m.moveCursor(1)
	case keybinds.ActionGoToTop:
		m.cursor = 0
	case keybinds.ActionGoToBottom:
		m.cursor = max(0, len(m.endpoints)-1)
	case keybinds.ActionSelect:
		return m.selectHighlighted()
	case keybinds.ActionClear:
		return m.clear()
	case keybinds.ActionNextField:
		return m.focusField(0)
	case keybinds.ActionPrevField:
		return m.focusField(len(m.fields) - 1)
	case keybinds.ActionOpenSearch:
		return m.openSearch()
	case keybinds.ActionCycleMarket:
		m.cycleMarket()
	case keybinds.ActionResetValues:
		return m.resetValues()
	}
	return nil
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keys.Match(keybinds.ContextForm, msg.String())
	if ok {
		if cmd, handled := m.handleGlobalAction(action); handled {
			return cmd
		}
		switch action {
		case keybinds.ActionNextField:
			return m.focusField(m.fieldIndex + 1)
		case keybinds.ActionPrevField:
			return m.focusField(m.fieldIndex - 1)
		case keybinds.ActionClear:
			m.blurForm()
			return nil
		}
	}

	return m.typeIntoField(msg)
}

// typeIntoField forwards a key to the focused input and stores the new
// value. Integer fields only take digits.
func (m *Model) typeIntoField(msg tea.KeyMsg) tea.Cmd {
	if m.fieldIndex < 0 || m.fieldIndex >= len(m.fields) {
		return nil
	}
	ep, selected := m.session.Selected()
	if !selected || m.fieldIndex >= len(ep.Params) {
		return nil
	}
	spec := ep.Params[m.fieldIndex]

	if spec.Kind == catalog.KindInteger && msg.Type == tea.KeyRunes {
		for _, r := range msg.Runes {
			if r < '0' || r > '9' {
				return nil
			}
		}
	}

	var cmd tea.Cmd
	m.fields[m.fieldIndex], cmd = m.fields[m.fieldIndex].Update(msg)

	if err := m.session.SetValue(spec.Name, m.fields[m.fieldIndex].Value()); err != nil {
		return m.setErrorMessage(err.Error())
	}
	return cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keys.Match(keybinds.ContextSearch, msg.String()); ok {
		switch action {
		case keybinds.ActionTextSubmit:
			m.closePrompt()
			return nil
		case keybinds.ActionTextCancel:
			m.searchQuery = m.savedSearch
			m.refreshEndpoints()
			m.closePrompt()
			return nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.searchQuery {
		m.searchQuery = m.input.Value()
		m.cursor = 0
		m.refreshEndpoints()
	}
	return cmd
}

func (m *Model) handleFilterKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keys.Match(keybinds.ContextFilter, msg.String()); ok {
		switch action {
		case keybinds.ActionTextSubmit:
			return m.applyFilter(m.input.Value())
		case keybinds.ActionTextCancel:
			m.closePrompt()
			return nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok, partial := m.keys.MatchMultiKey(keybinds.ContextHistory, msg.String())
	if partial || !ok {
		return nil
	}
	if action != keybinds.ActionHistoryClear {
		m.confirmClear = false
	}

	switch action {
	case keybinds.ActionCloseModal:
		m.mode = ModeNormal
	case keybinds.ActionNavigateUp:
		if m.historyIndex > 0 {
			m.historyIndex--
		}
	case keybinds.ActionNavigateDown:
		if m.historyIndex < len(m.historyEntries)-1 {
			m.historyIndex++
		}
	case keybinds.ActionGoToTop:
		m.historyIndex = 0
	case keybinds.ActionGoToBottom:
		m.historyIndex = max(0, len(m.historyEntries)-1)
	case keybinds.ActionHistoryReplay:
		return m.replayHistoryEntry(m.historyIndex)
	case keybinds.ActionHistoryClear:
		return m.clearHistory()
	case keybinds.ActionRefresh:
		return m.loadHistory()
	}
	return nil
}

func (m *Model) handleStatsKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keys.Match(keybinds.ContextStats, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionCloseModal:
		m.mode = ModeNormal
	case keybinds.ActionNavigateUp:
		if m.statsIndex > 0 {
			m.statsIndex--
		}
	case keybinds.ActionNavigateDown:
		if m.statsIndex < len(m.stats)-1 {
			m.statsIndex++
		}
	case keybinds.ActionSelect:
		if m.statsIndex < len(m.stats) {
			m.mode = ModeNormal
			if err := m.selectEndpoint(m.stats[m.statsIndex].Endpoint); err != nil {
				return m.setErrorMessage(err.Error())
			}
		}
	case keybinds.ActionRefresh:
		return m.loadStats()
	}
	return nil
}

func (m *Model) handleHelpKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keys.Match(keybinds.ContextHelp, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionCloseModal:
		m.mode = ModeNormal
	case keybinds.ActionScrollUp:
		m.helpView.ScrollUp(1)
	case keybinds.ActionScrollDown:
		m.helpView.ScrollDown(1)
	}
	return nil
}
