package sweep

import (
	"sort"

	"github.com/studiowebux/marketcli/internal/types"
)

// Stats holds aggregate statistics for a sweep
type Stats struct {
	TotalRequests     int
	CompletedRequests int
	SuccessCount      int
	FailureCount      int // HTTP responses that ended in a failure message
	TransportFailures int // no HTTP response at all
	Durations         []int64
	TotalDurationMs   int64
	MinDurationMs     int64
	MaxDurationMs     int64
}

// NewStats creates a Stats expecting total results
func NewStats(total int) *Stats {
	return &Stats{
		TotalRequests: total,
		Durations:     make([]int64, 0, total),
		MinDurationMs: -1,
		MaxDurationMs: -1,
	}
}

// AddResult folds one call result into the statistics
func (s *Stats) AddResult(res *types.CallResult) {
	s.CompletedRequests++
	s.TotalDurationMs += res.Duration
	s.Durations = append(s.Durations, res.Duration)

	switch {
	case res.TransportFailure():
		s.TransportFailures++
	case res.Failed():
		s.FailureCount++
	default:
		s.SuccessCount++
	}

	if s.MinDurationMs == -1 || res.Duration < s.MinDurationMs {
		s.MinDurationMs = res.Duration
	}
	if s.MaxDurationMs == -1 || res.Duration > s.MaxDurationMs {
		s.MaxDurationMs = res.Duration
	}
}

// AvgDurationMs returns the average duration in milliseconds
func (s *Stats) AvgDurationMs() float64 {
	if s.CompletedRequests == 0 {
		return 0
	}
	return float64(s.TotalDurationMs) / float64(s.CompletedRequests)
}

// Min returns the minimum duration, or 0 if no results
func (s *Stats) Min() int64 {
	if s.MinDurationMs == -1 {
		return 0
	}
	return s.MinDurationMs
}

// Max returns the maximum duration, or 0 if no results
func (s *Stats) Max() int64 {
	if s.MaxDurationMs == -1 {
		return 0
	}
	return s.MaxDurationMs
}

// Percentile interpolates the p-th percentile duration (0-100)
func (s *Stats) Percentile(p float64) int64 {
	if len(s.Durations) == 0 {
		return 0
	}

	sorted := make([]int64, len(s.Durations))
	copy(sorted, s.Durations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return int64(float64(sorted[lower])*(1-weight) + float64(sorted[upper])*weight)
}

// P50 returns the median duration
func (s *Stats) P50() int64 {
	return s.Percentile(50)
}

// P95 returns the 95th percentile duration
func (s *Stats) P95() int64 {
	return s.Percentile(95)
}

// SuccessRate returns the success rate as a percentage
func (s *Stats) SuccessRate() float64 {
	if s.CompletedRequests == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.CompletedRequests) * 100
}
