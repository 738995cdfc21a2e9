package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/studiowebux/marketcli/internal/config"
	"github.com/studiowebux/marketcli/internal/executor"
	"github.com/studiowebux/marketcli/internal/history"
	"github.com/studiowebux/marketcli/internal/output"
	"github.com/studiowebux/marketcli/internal/session"
)

// ErrCallFailed is returned when a command completed but at least one call
// ended in a failure message. The failure has already been printed.
var ErrCallFailed = errors.New("call failed")

// ErrHistoryDisabled is returned by history commands when no call log is open
var ErrHistoryDisabled = errors.New("history is disabled")

// Env is what every command runs against
type Env struct {
	Out      io.Writer
	Err      io.Writer
	Settings *config.Settings
	Log      zerolog.Logger
	History  *history.Manager // nil when history is off
	Color    bool             // highlight and colour text output
}

// Client returns the HTTP client for market-data calls
func (e *Env) Client() *http.Client {
	return executor.NewClient(e.Settings.Timeout)
}

// Recorder returns the call-log recorder for this environment
func (e *Env) Recorder() *history.Recorder {
	return history.NewRecorder(e.History, e.Settings.History, e.Log)
}

func (e *Env) format(explicit string) (output.Format, error) {
	format, err := output.ParseFormat(explicit)
	if err != nil {
		return "", err
	}
	if format == "" {
		return output.FormatTable, nil
	}
	return format, nil
}

func (e *Env) write(format output.Format, data any) error {
	return output.NewFormatter(format).Format(e.Out, data)
}

// applySets parses name=value pairs into the session's values
func applySets(s *session.Session, sets []string) error {
	for _, set := range sets {
		name, value, ok := strings.Cut(set, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --set %q (expected name=value)", set)
		}
		if err := s.SetValue(name, value); err != nil {
			return err
		}
	}
	return nil
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func (e *Env) paint(style lipgloss.Style, s string) string {
	if !e.Color {
		return s
	}
	return style.Render(s)
}

func statusStyle(status int) lipgloss.Style {
	switch {
	case executor.IsSuccessStatus(status):
		return successStyle
	case executor.IsClientErrorStatus(status):
		return warningStyle
	case status == 0, executor.IsServerErrorStatus(status):
		return failureStyle
	default:
		return mutedStyle
	}
}
