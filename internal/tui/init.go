package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/studiowebux/marketcli/internal/config"
	"github.com/studiowebux/marketcli/internal/history"
	"github.com/studiowebux/marketcli/internal/keybinds"
)

// Options configures the TUI
type Options struct {
	Settings *config.Settings
	Log      zerolog.Logger
	History  *history.Manager
	Keys     *keybinds.Registry

	// Overrides is applied to every reloaded settings value, e.g. to keep
	// command-line flags in force
	Overrides func(*config.Settings) error
}

// Run starts the TUI and blocks until the user quits. Changes to the
// settings file are applied while it runs.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(ctx, opts)
	defer m.Cleanup()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if file := m.settings.File; file != "" {
		err := config.Watch(ctx, file, func(s *config.Settings, err error) {
			if err == nil && opts.Overrides != nil {
				err = opts.Overrides(s)
			}
			p.Send(settingsReloadedMsg{settings: s, err: err})
		})
		if err != nil {
			m.log.Warn().Err(err).Str("file", file).Msg("settings hot reload disabled")
		}
	}

	m.log.Info().Str("base_url", m.settings.BaseURL).Msg("tui started")

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
