package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/studiowebux/marketcli/internal/executor"
	"github.com/studiowebux/marketcli/internal/output"
	"github.com/studiowebux/marketcli/internal/sweep"
	"github.com/studiowebux/marketcli/internal/types"
)

// SweepOptions contains options for sweeping the catalog
type SweepOptions struct {
	Market      string
	Concurrency int // 0 uses the configured sweep_concurrency
	Output      string
}

// sweepSummary is the machine-readable form of a sweep report
type sweepSummary struct {
	Results           []*types.CallResult `json:"results" yaml:"results"`
	Skipped           []string            `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	SuccessCount      int                 `json:"successCount" yaml:"successCount"`
	FailureCount      int                 `json:"failureCount" yaml:"failureCount"`
	TransportFailures int                 `json:"transportFailures" yaml:"transportFailures"`
	AvgDurationMs     float64             `json:"avgDurationMs" yaml:"avgDurationMs"`
	P95DurationMs     int64               `json:"p95DurationMs" yaml:"p95DurationMs"`
	WallTimeMs        int64               `json:"wallTimeMs" yaml:"wallTimeMs"`
}

// Sweep calls every endpoint that works with its defaults and prints one row
// per endpoint. Any failed call makes it return ErrCallFailed.
func Sweep(ctx context.Context, env *Env, opts SweepOptions) error {
	format, err := env.format(opts.Output)
	if err != nil {
		return err
	}
	market, err := parseMarket(opts.Market)
	if err != nil {
		return err
	}
	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = env.Settings.SweepConcurrency
	}

	report, err := sweep.Run(ctx, env.Client(), sweep.Options{
		BaseURL:     env.Settings.BaseURL,
		Concurrency: concurrency,
		Market:      market,
		OnResult: func(res *types.CallResult) {
			env.Log.Debug().Str("endpoint", res.Endpoint).Int("status", res.Status).Msg("sweep call completed")
		},
	})
	if err != nil {
		return err
	}

	recorder := env.Recorder()
	for _, res := range report.Results {
		recorder.Record(ctx, res)
	}
	env.Log.Info().
		Int("calls", report.Stats.CompletedRequests).
		Int("failed", len(report.Failed())).
		Dur("wall_time", report.Duration).
		Msg("sweep completed")

	if format == output.FormatTable {
		if err := env.write(format, sweepTable(env, report)); err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "\n%d calls: %d ok, %d failed, %d unreachable | avg %s, p95 %s | wall %s\n",
			report.Stats.CompletedRequests,
			report.Stats.SuccessCount,
			report.Stats.FailureCount,
			report.Stats.TransportFailures,
			executor.FormatDuration(int64(report.Stats.AvgDurationMs())),
			executor.FormatDuration(report.Stats.P95()),
			executor.FormatDuration(report.Duration.Milliseconds()))
		for _, name := range report.Skipped {
			fmt.Fprintf(env.Err, "Skipped %s: required parameter without default\n", name)
		}
	} else {
		summary := sweepSummary{
			Results:           report.Results,
			Skipped:           report.Skipped,
			SuccessCount:      report.Stats.SuccessCount,
			FailureCount:      report.Stats.FailureCount,
			TransportFailures: report.Stats.TransportFailures,
			AvgDurationMs:     report.Stats.AvgDurationMs(),
			P95DurationMs:     report.Stats.P95(),
			WallTimeMs:        report.Duration.Milliseconds(),
		}
		// Payloads are large and already summarised by status
		for i, res := range summary.Results {
			trimmed := *res
			trimmed.Body, trimmed.Payload = "", nil
			summary.Results[i] = &trimmed
		}
		if err := env.write(format, summary); err != nil {
			return err
		}
	}

	if len(report.Failed()) > 0 {
		return ErrCallFailed
	}
	return nil
}

func sweepTable(env *Env, report *sweep.Report) output.Data {
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		status := "-"
		if res.Status != 0 {
			status = strconv.Itoa(res.Status)
		}
		rows = append(rows, []string{
			res.Endpoint,
			env.paint(statusStyle(res.Status), status),
			executor.FormatDuration(res.Duration),
			executor.FormatSize(res.ResponseSize),
			res.Error,
		})
	}
	return output.Data{
		Headers:         []string{"Endpoint", "Status", "Duration", "Size", "Error"},
		Rows:            rows,
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignRight, output.AlignRight, output.AlignRight, output.AlignLeft},
	}
}
