package sweep

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/studiowebux/marketcli/internal/catalog"
	"github.com/studiowebux/marketcli/internal/executor"
	"github.com/studiowebux/marketcli/internal/types"
)

// DefaultConcurrency bounds in-flight requests when Options leaves it unset
const DefaultConcurrency = 4

// Options configures a sweep
type Options struct {
	BaseURL     string
	Concurrency int
	Market      catalog.Market // empty for every market

	// OnResult, when set, is called as each call finishes. Calls come from
	// worker goroutines and are serialised.
	OnResult func(*types.CallResult)
}

// Report is the outcome of a sweep
type Report struct {
	Results  []*types.CallResult
	Skipped  []string // endpoints with a required parameter that has no default
	Stats    *Stats
	Duration time.Duration
}

// Failed returns the results that ended in a failure message
func (r *Report) Failed() []*types.CallResult {
	var out []*types.CallResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Eligible reports whether ep can be called with its defaults alone
func Eligible(ep catalog.Endpoint) bool {
	for _, p := range ep.Params {
		if p.Required && !p.HasDefault() {
			return false
		}
	}
	return true
}

// Plan splits endpoints into the callable and skipped sets, keeping order
func Plan(endpoints []catalog.Endpoint) (callable []catalog.Endpoint, skipped []string) {
	for _, ep := range endpoints {
		if Eligible(ep) {
			callable = append(callable, ep)
		} else {
			skipped = append(skipped, ep.Name)
		}
	}
	return callable, skipped
}

// Run dispatches every eligible endpoint and waits for all of them
func Run(ctx context.Context, client *http.Client, opts Options) (*Report, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("concurrency must be positive, got %d", opts.Concurrency)
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = DefaultConcurrency
	}

	endpoints := catalog.All()
	if opts.Market != "" {
		endpoints = catalog.ByMarket(opts.Market)
	}
	callable, skipped := Plan(endpoints)

	report := &Report{
		Results: make([]*types.CallResult, len(callable)),
		Skipped: skipped,
		Stats:   NewStats(len(callable)),
	}
	start := time.Now()

	results := make(chan *types.CallResult)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for res := range results {
			report.Stats.AddResult(res)
			if opts.OnResult != nil {
				opts.OnResult(res)
			}
		}
	}()

	g := new(errgroup.Group)
	g.SetLimit(opts.Concurrency)
	for i, ep := range callable {
		g.Go(func() error {
			url := catalog.DeriveURL(opts.BaseURL, ep, catalog.DefaultValues(ep))
			res := executor.Execute(ctx, client, ep.Method, url)
			res.Endpoint = ep.Name
			report.Results[i] = res
			results <- res
			return nil
		})
	}
	// Workers never return an error: failures travel inside the results.
	_ = g.Wait()
	close(results)
	<-collected

	report.Duration = time.Since(start)
	return report, nil
}
