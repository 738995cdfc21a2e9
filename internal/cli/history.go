package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/studiowebux/marketcli/internal/analytics"
	"github.com/studiowebux/marketcli/internal/catalog"
	"github.com/studiowebux/marketcli/internal/executor"
	"github.com/studiowebux/marketcli/internal/output"
	"github.com/studiowebux/marketcli/internal/types"
)

// HistoryOptions contains options for listing the call log
type HistoryOptions struct {
	Endpoint string
	Limit    int
	Output   string
}

type historyList []types.HistoryEntry

func (l historyList) TableData() output.Data {
	rows := make([][]string, 0, len(l))
	for _, e := range l {
		status := "-"
		if e.Status != 0 {
			status = strconv.Itoa(e.Status)
		}
		rows = append(rows, []string{
			e.ID[:8],
			e.Timestamp.Local().Format(time.DateTime),
			e.Endpoint,
			status,
			executor.FormatDuration(e.Duration),
			executor.FormatSize(e.ResponseSize),
			e.Error,
		})
	}
	return output.Data{
		Headers: []string{"ID", "Time", "Endpoint", "Status", "Duration", "Size", "Error"},
		Rows:    rows,
	}
}

// History prints the most recent calls, newest first
func History(ctx context.Context, env *Env, opts HistoryOptions) error {
	if env.History == nil {
		return ErrHistoryDisabled
	}
	format, err := env.format(opts.Output)
	if err != nil {
		return err
	}

	var entries []types.HistoryEntry
	if opts.Endpoint != "" {
		if _, err := catalog.Find(opts.Endpoint); err != nil {
			return err
		}
		entries, err = env.History.ListForEndpoint(ctx, opts.Endpoint, opts.Limit)
	} else {
		entries, err = env.History.List(ctx, opts.Limit)
	}
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if format == output.FormatTable {
		if len(entries) == 0 {
			fmt.Fprintln(env.Out, "No calls recorded yet")
			return nil
		}
		return env.write(format, historyList(entries))
	}
	if entries == nil {
		entries = []types.HistoryEntry{}
	}
	return env.write(format, entries)
}

// HistoryShow prints one entry. IDs may be abbreviated to the prefix shown
// by History.
func HistoryShow(ctx context.Context, env *Env, id, format string) error {
	if env.History == nil {
		return ErrHistoryDisabled
	}
	f, err := env.format(format)
	if err != nil {
		return err
	}

	entry, err := env.History.Resolve(ctx, id)
	if err != nil {
		return err
	}
	if f == output.FormatTable {
		f = output.FormatYAML
	}
	return env.write(f, entry)
}

// HistoryDelete removes one entry. IDs may be abbreviated like HistoryShow.
func HistoryDelete(ctx context.Context, env *Env, id string) error {
	if env.History == nil {
		return ErrHistoryDisabled
	}
	entry, err := env.History.Resolve(ctx, id)
	if err != nil {
		return err
	}
	if err := env.History.Delete(ctx, entry.ID); err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Deleted %s (%s)\n", entry.ID, entry.Endpoint)
	return nil
}

// HistoryClear deletes the whole call log
func HistoryClear(ctx context.Context, env *Env) error {
	if env.History == nil {
		return ErrHistoryDisabled
	}
	n, err := env.History.Count(ctx)
	if err != nil {
		return err
	}
	if err := env.History.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Fprintf(env.Out, "History cleared (%d entries)\n", n)
	return nil
}

// StatsOptions contains options for the analytics summary
type StatsOptions struct {
	Endpoint string
	Output   string
}

type statsList []analytics.Stats

func (l statsList) TableData() output.Data {
	rows := make([][]string, 0, len(l)+1)
	for _, s := range l {
		rows = append(rows, statsRow(s.Endpoint, s))
	}
	if len(l) > 1 {
		rows = append(rows, statsRow("TOTAL", analytics.Totals(l)))
	}
	right := output.AlignRight
	return output.Data{
		Headers:         []string{"Endpoint", "Calls", "OK", "Failed", "Unreachable", "Success", "Avg", "Min", "Max", "Last called"},
		Rows:            rows,
		ColumnAlignment: []output.Align{output.AlignLeft, right, right, right, right, right, right, right, right, output.AlignLeft},
	}
}

func statsRow(name string, s analytics.Stats) []string {
	last := "-"
	if !s.LastCalled.IsZero() {
		last = s.LastCalled.Local().Format(time.DateTime)
	}
	return []string{
		name,
		strconv.Itoa(s.TotalCalls),
		strconv.Itoa(s.SuccessCount),
		strconv.Itoa(s.FailureCount),
		strconv.Itoa(s.TransportFailures),
		fmt.Sprintf("%.1f%%", s.SuccessRate()),
		executor.FormatDuration(int64(s.AvgDurationMs)),
		executor.FormatDuration(s.MinDurationMs),
		executor.FormatDuration(s.MaxDurationMs),
		last,
	}
}

// Stats prints per-endpoint aggregates over the call log
func Stats(ctx context.Context, env *Env, opts StatsOptions) error {
	if env.History == nil {
		return ErrHistoryDisabled
	}
	format, err := env.format(opts.Output)
	if err != nil {
		return err
	}

	mgr := analytics.NewManager(env.History.DB())
	var list []analytics.Stats
	if opts.Endpoint != "" {
		if _, err := catalog.Find(opts.Endpoint); err != nil {
			return err
		}
		s, ok, err := mgr.StatsForEndpoint(ctx, opts.Endpoint)
		if err != nil {
			return err
		}
		if ok {
			list = []analytics.Stats{s}
		}
	} else {
		list, err = mgr.StatsPerEndpoint(ctx)
		if err != nil {
			return err
		}
	}

	if format == output.FormatTable {
		if len(list) == 0 {
			fmt.Fprintln(env.Out, "No calls recorded yet")
			return nil
		}
		return env.write(format, statsList(list))
	}
	if list == nil {
		list = []analytics.Stats{}
	}
	return env.write(format, list)
}
