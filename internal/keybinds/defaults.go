package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerListBindings(r)
	registerFormBindings(r)
	registerInputBindings(r)
	registerHistoryBindings(r)
	registerStatsBindings(r)
	registerHelpBindings(r)

	return r
}

// registerGlobalBindings sets up bindings available in all modes.
// Printable keys are kept out of global so form fields can receive them.
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextGlobal, "ctrl+r", ActionExecute)
	r.Register(ContextGlobal, "ctrl+y", ActionCopyCommand)
	r.Register(ContextGlobal, "ctrl+o", ActionCopyResponse)
	r.Register(ContextGlobal, "ctrl+h", ActionOpenHistory)
	r.Register(ContextGlobal, "ctrl+s", ActionOpenStats)
	r.Register(ContextGlobal, "pgup", ActionScrollUp)
	r.Register(ContextGlobal, "pgdown", ActionScrollDown)
}

// registerListBindings sets up the endpoint list
func registerListBindings(r *Registry) {
	r.Register(ContextList, "q", ActionQuit)
	r.RegisterMultiple(ContextList, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextList, []string{"down", "j"}, ActionNavigateDown)
	r.RegisterMultiple(ContextList, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(ContextList, []string{"G", "end"}, ActionGoToBottom)
	r.Register(ContextList, "enter", ActionSelect)
	r.Register(ContextList, "esc", ActionClear)
	r.Register(ContextList, "tab", ActionNextField)
	r.Register(ContextList, "shift+tab", ActionPrevField)
	r.Register(ContextList, "/", ActionOpenSearch)
	r.Register(ContextList, "f", ActionOpenFilter)
	r.Register(ContextList, "m", ActionCycleMarket)
	r.Register(ContextList, "x", ActionExecute)
	r.Register(ContextList, "r", ActionResetValues)
	r.Register(ContextList, "H", ActionOpenHistory)
	r.Register(ContextList, "A", ActionOpenStats)
	r.Register(ContextList, "?", ActionOpenHelp)
}

// registerFormBindings sets up the parameter form. Unbound keys are typed
// into the focused field.
func registerFormBindings(r *Registry) {
	r.Register(ContextForm, "tab", ActionNextField)
	r.Register(ContextForm, "down", ActionNextField)
	r.Register(ContextForm, "shift+tab", ActionPrevField)
	r.Register(ContextForm, "up", ActionPrevField)
	r.Register(ContextForm, "enter", ActionExecute)
	r.Register(ContextForm, "esc", ActionClear)
}

// registerInputBindings sets up the single-line prompts
func registerInputBindings(r *Registry) {
	for _, ctx := range []Context{ContextSearch, ContextFilter} {
		r.Register(ctx, "enter", ActionTextSubmit)
		r.Register(ctx, "esc", ActionTextCancel)
	}
}

// registerHistoryBindings sets up keybindings for the history browser
func registerHistoryBindings(r *Registry) {
	r.RegisterMultiple(ContextHistory, []string{"esc", "q", "H"}, ActionCloseModal)
	r.RegisterMultiple(ContextHistory, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextHistory, []string{"down", "j"}, ActionNavigateDown)
	r.RegisterMultiple(ContextHistory, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(ContextHistory, []string{"G", "end"}, ActionGoToBottom)
	r.Register(ContextHistory, "enter", ActionHistoryReplay)
	r.Register(ContextHistory, "C", ActionHistoryClear)
	r.Register(ContextHistory, "r", ActionRefresh)
}

// registerStatsBindings sets up keybindings for the stats viewer
func registerStatsBindings(r *Registry) {
	r.RegisterMultiple(ContextStats, []string{"esc", "q", "A"}, ActionCloseModal)
	r.RegisterMultiple(ContextStats, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextStats, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextStats, "enter", ActionSelect)
	r.Register(ContextStats, "r", ActionRefresh)
}

// registerHelpBindings sets up keybindings for the help viewer
func registerHelpBindings(r *Registry) {
	r.RegisterMultiple(ContextHelp, []string{"esc", "?", "q"}, ActionCloseModal)
	r.RegisterMultiple(ContextHelp, []string{"up", "k"}, ActionScrollUp)
	r.RegisterMultiple(ContextHelp, []string{"down", "j"}, ActionScrollDown)
}
