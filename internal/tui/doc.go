/*
Package tui implements the terminal user interface of marketcli.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - model.go: Core state, messages and the Update loop
  - keys.go: Keyboard input handling, routed through keybinds.Registry
  - actions.go: Side effects (calls, clipboard, history, stats)
  - render.go: View rendering

# Layout

The left pane lists the endpoint catalog grouped by market. The right pane
shows the selected endpoint: its parameter form, the live curl line derived
from the current values, and the outcome of the last call.

# Calls

Every call is dispatched with a session.Ticket. Selecting another endpoint,
clearing the selection or starting a new call supersedes the ticket and
cancels the superseded request's context; a result that arrives for a
superseded ticket is logged and dropped. Only accepted results are written
to history.

# Threading Model

All state is owned by the Bubble Tea event loop. Commands run the HTTP call,
clipboard writes and database queries on their own goroutines and report
back with messages; they never touch the Model.
*/
package tui
