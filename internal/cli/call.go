package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/studiowebux/marketcli/internal/config"
	"github.com/studiowebux/marketcli/internal/executor"
	"github.com/studiowebux/marketcli/internal/filter"
	"github.com/studiowebux/marketcli/internal/highlight"
	"github.com/studiowebux/marketcli/internal/output"
	"github.com/studiowebux/marketcli/internal/session"
	"github.com/studiowebux/marketcli/internal/types"
)

// CallOptions contains options for calling one endpoint
type CallOptions struct {
	Endpoint string
	Set      []string // name=value, repeatable
	Query    string   // JMESPath expression applied to a successful payload
	Output   string   // text, body, json, yaml
	SavePath string
}

// Call selects an endpoint, applies overrides to its defaults, issues the
// request and prints the outcome. A failed call returns ErrCallFailed.
func Call(ctx context.Context, env *Env, opts CallOptions) error {
	if opts.Query != "" {
		if err := filter.Validate(opts.Query); err != nil {
			return err
		}
	}

	s := session.New(env.Settings.BaseURL)
	if err := s.Select(opts.Endpoint); err != nil {
		return err
	}
	if err := applySets(s, opts.Set); err != nil {
		return err
	}

	ticket, err := s.Begin()
	if err != nil {
		return err
	}
	env.Log.Debug().Str("endpoint", ticket.Endpoint).Str("url", ticket.URL).Msg("dispatching call")

	result := executor.Execute(ctx, env.Client(), ticket.Method, ticket.URL)
	result.Endpoint = ticket.Endpoint
	s.Complete(ticket, result)

	env.Log.Info().
		Str("endpoint", result.Endpoint).
		Int("status", result.Status).
		Int64("duration_ms", result.Duration).
		Str("error", result.Error).
		Msg("call completed")
	env.Recorder().Record(ctx, result)

	if !result.Failed() && opts.Query != "" {
		filtered, err := filter.Apply(result.Body, opts.Query)
		if err != nil {
			fmt.Fprintf(env.Err, "Warning: query error: %v\n", err)
		} else {
			result.Body = filtered
			if payload, err := executor.DecodePayload([]byte(filtered)); err == nil {
				result.Payload = payload
			}
		}
	}

	out, err := formatResult(env, result, opts.Output)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if opts.SavePath != "" {
		if err := os.WriteFile(opts.SavePath, []byte(out), config.FilePermissions); err != nil {
			return fmt.Errorf("failed to save response: %w", err)
		}
		fmt.Fprintf(env.Err, "Response saved to %s\n", opts.SavePath)
	} else {
		fmt.Fprint(env.Out, out)
	}

	if s.Outcome().State == session.Failed {
		return ErrCallFailed
	}
	return nil
}

// formatResult renders a call result in the requested format
func formatResult(env *Env, result *types.CallResult, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case "yaml":
		var sb strings.Builder
		view := *result
		view.Payload = plainNumbers(view.Payload)
		if err := output.NewFormatter(output.FormatYAML).Format(&sb, view); err != nil {
			return "", err
		}
		return sb.String(), nil

	case "body":
		return result.Body + "\n", nil

	case "", "text":
		return formatText(env, result), nil

	default:
		return "", fmt.Errorf("unsupported output format %q (use text, body, json, or yaml)", format)
	}
}

// plainNumbers replaces json.Number with int64 or float64 so YAML output
// shows numbers rather than quoted strings
func plainNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = plainNumbers(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plainNumbers(val)
		}
		return out
	default:
		return v
	}
}

func formatText(env *Env, result *types.CallResult) string {
	var sb strings.Builder

	status := result.StatusText
	if result.Status == 0 {
		status = "no response"
	}
	sb.WriteString(env.paint(statusStyle(result.Status), status))
	sb.WriteString("\n")
	sb.WriteString(env.paint(mutedStyle, fmt.Sprintf("Duration: %s | Size: %s",
		executor.FormatDuration(result.Duration),
		executor.FormatSize(result.ResponseSize))))
	sb.WriteString("\n")

	body := result.Body
	if !result.Failed() && result.Payload != nil {
		body = executor.PrettyPayload(result.Payload)
	}
	if body != "" {
		sb.WriteString("\n")
		if env.Color && !result.Failed() {
			body = highlight.JSON(body, env.Settings.Theme)
		}
		sb.WriteString(body)
		sb.WriteString("\n")
	}

	if result.Failed() {
		sb.WriteString("\n")
		sb.WriteString(env.paint(failureStyle, "Error: "+result.Error))
		sb.WriteString("\n")
	}

	return sb.String()
}
