package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal  Context = "global"  // Available everywhere
	ContextList    Context = "list"    // Endpoint list focused
	ContextForm    Context = "form"    // Parameter form focused
	ContextSearch  Context = "search"  // Endpoint fuzzy search input
	ContextFilter  Context = "filter"  // JMESPath filter input
	ContextHistory Context = "history" // Call history browser
	ContextStats   Context = "stats"   // Per-endpoint stats viewer
	ContextHelp    Context = "help"    // Help viewer
)

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit application
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)

	// Navigation actions
	ActionNavigateUp   Action = "navigate_up"
	ActionNavigateDown Action = "navigate_down"
	ActionPageUp       Action = "page_up"
	ActionPageDown     Action = "page_down"
	ActionGoToTop      Action = "go_to_top"
	ActionGoToBottom   Action = "go_to_bottom"
	ActionScrollUp     Action = "scroll_up"   // Scroll response viewport up
	ActionScrollDown   Action = "scroll_down" // Scroll response viewport down

	// Focus
	ActionNextField Action = "next_field" // Next form field, wraps to the list
	ActionPrevField Action = "prev_field"

	// Endpoint actions
	ActionSelect       Action = "select"        // Select the highlighted endpoint
	ActionClear        Action = "clear"         // Leave the form or clear the selection
	ActionResetValues  Action = "reset_values"  // Restore default parameter values
	ActionCycleMarket  Action = "cycle_market"  // all -> spot -> futures
	ActionExecute      Action = "execute"       // Dispatch the current request
	ActionCopyCommand  Action = "copy_command"  // Copy the curl line
	ActionCopyResponse Action = "copy_response" // Copy the (filtered) response body

	// Modal launchers
	ActionOpenSearch  Action = "open_search"
	ActionOpenFilter  Action = "open_filter"
	ActionOpenHistory Action = "open_history"
	ActionOpenStats   Action = "open_stats"
	ActionOpenHelp    Action = "open_help"

	// Text input actions
	ActionTextSubmit Action = "text_submit"
	ActionTextCancel Action = "text_cancel"

	// Modal actions
	ActionCloseModal Action = "close_modal"

	// History actions
	ActionHistoryReplay Action = "history_replay" // Restore the entry's endpoint and values
	ActionHistoryClear  Action = "history_clear"

	// Shared
	ActionRefresh Action = "refresh"
)

// knownActions lists every action the application dispatches
var knownActions = map[Action]bool{
	ActionQuit: true, ActionQuitForce: true,
	ActionNavigateUp: true, ActionNavigateDown: true, ActionPageUp: true, ActionPageDown: true,
	ActionGoToTop: true, ActionGoToBottom: true, ActionScrollUp: true, ActionScrollDown: true,
	ActionNextField: true, ActionPrevField: true,
	ActionSelect: true, ActionClear: true, ActionResetValues: true, ActionCycleMarket: true,
	ActionExecute: true, ActionCopyCommand: true, ActionCopyResponse: true,
	ActionOpenSearch: true, ActionOpenFilter: true, ActionOpenHistory: true, ActionOpenStats: true,
	ActionOpenHelp: true, ActionTextSubmit: true, ActionTextCancel: true, ActionCloseModal: true,
	ActionHistoryReplay: true, ActionHistoryClear: true, ActionRefresh: true,
}

// Contexts returns every context in display order
func Contexts() []Context {
	return []Context{
		ContextGlobal, ContextList, ContextForm, ContextSearch,
		ContextFilter, ContextHistory, ContextStats, ContextHelp,
	}
}
