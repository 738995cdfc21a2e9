/*
Package sweep calls many catalog endpoints at once and summarises the outcome.

# Overview

A sweep is a smoke test of a market-data deployment: every endpoint that can
be called with its declared defaults alone is dispatched once, with at most
Concurrency requests in flight.

# Eligibility

An endpoint is eligible when each of its required parameters has a default.
Optional parameters without a default are left out of the URL, exactly as
the request builder does for an interactive call.

# Results

Results are returned in catalog order regardless of completion order. A
failed call is a Result with a non-empty Error; Run itself only errors when
the options are unusable.

# Example Usage

	report, err := sweep.Run(ctx, executor.NewClient(10*time.Second), sweep.Options{
		BaseURL:     "http://localhost:8080/api/crypto",
		Concurrency: 4,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%d/%d succeeded, p95 %dms\n",
		report.Stats.SuccessCount, report.Stats.CompletedRequests, report.Stats.P95())
*/
package sweep
