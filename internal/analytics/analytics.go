package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
)

// Stats aggregates the call log of one endpoint
type Stats struct {
	Endpoint          string      `json:"endpoint" yaml:"endpoint"`
	Market            string      `json:"market" yaml:"market"`
	TotalCalls        int         `json:"totalCalls" yaml:"totalCalls"`
	SuccessCount      int         `json:"successCount" yaml:"successCount"`
	FailureCount      int         `json:"failureCount" yaml:"failureCount"`
	TransportFailures int         `json:"transportFailures" yaml:"transportFailures"` // no HTTP response (status 0)
	AvgDurationMs     float64     `json:"avgDurationMs" yaml:"avgDurationMs"`
	MinDurationMs     int64       `json:"minDurationMs" yaml:"minDurationMs"`
	MaxDurationMs     int64       `json:"maxDurationMs" yaml:"maxDurationMs"`
	TotalRespSize     int64       `json:"totalResponseSize" yaml:"totalResponseSize"`
	StatusCodes       map[int]int `json:"statusCodes" yaml:"statusCodes"`
	LastCalled        time.Time   `json:"lastCalled" yaml:"lastCalled"`
}

// SuccessRate is the share of successful calls in percent
func (s Stats) SuccessRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.SuccessCount) * 100 / float64(s.TotalCalls)
}

// Manager computes aggregates over the history table
type Manager struct {
	db *sqlx.DB
}

// NewManager aggregates over db, which must carry the migrated history schema
func NewManager(db *sqlx.DB) *Manager {
	return &Manager{db: db}
}

type statsRow struct {
	Endpoint          string  `db:"endpoint"`
	Market            string  `db:"market"`
	TotalCalls        int     `db:"total_calls"`
	SuccessCount      int     `db:"success_count"`
	FailureCount      int     `db:"failure_count"`
	TransportFailures int     `db:"transport_failures"`
	AvgDuration       float64 `db:"avg_duration"`
	MinDuration       int64   `db:"min_duration"`
	MaxDuration       int64   `db:"max_duration"`
	TotalRespSize     int64   `db:"total_resp_size"`
	LastCalled        int64   `db:"last_called"`
	StatusCodesJSON   string  `db:"status_codes_json"`
}

// StatsPerEndpoint returns one aggregate per endpoint that has been called,
// most recently called first
func (m *Manager) StatsPerEndpoint(ctx context.Context) ([]Stats, error) {
	return m.query(ctx, "")
}

// StatsForEndpoint returns the aggregate of one endpoint; ok is false when it
// has never been called
func (m *Manager) StatsForEndpoint(ctx context.Context, endpoint string) (Stats, bool, error) {
	list, err := m.query(ctx, endpoint)
	if err != nil || len(list) == 0 {
		return Stats{}, false, err
	}
	return list[0], true, nil
}

func (m *Manager) query(ctx context.Context, endpoint string) ([]Stats, error) {
	// Status codes are folded into a JSON object per endpoint in one pass
	query := `
		WITH status_codes_agg AS (
			SELECT
				endpoint,
				json_group_object(CAST(status AS TEXT), count) AS status_codes_json
			FROM (
				SELECT endpoint, status, COUNT(*) AS count
				FROM history
				WHERE ? = '' OR endpoint = ?
				GROUP BY endpoint, status
			)
			GROUP BY endpoint
		)
		SELECT
			h.endpoint,
			MAX(h.market) AS market,
			COUNT(*) AS total_calls,
			SUM(CASE WHEN h.error IS NULL OR h.error = '' THEN 1 ELSE 0 END) AS success_count,
			SUM(CASE WHEN h.error IS NOT NULL AND h.error != '' THEN 1 ELSE 0 END) AS failure_count,
			SUM(CASE WHEN h.status = 0 THEN 1 ELSE 0 END) AS transport_failures,
			AVG(h.duration_ms) AS avg_duration,
			MIN(h.duration_ms) AS min_duration,
			MAX(h.duration_ms) AS max_duration,
			SUM(h.response_size) AS total_resp_size,
			MAX(h.timestamp_ms) AS last_called,
			COALESCE(s.status_codes_json, '{}') AS status_codes_json
		FROM history h
		LEFT JOIN status_codes_agg s ON h.endpoint = s.endpoint
		WHERE ? = '' OR h.endpoint = ?
		GROUP BY h.endpoint
		ORDER BY last_called DESC, h.endpoint
	`

	var rows []statsRow
	if err := m.db.SelectContext(ctx, &rows, query, endpoint, endpoint, endpoint, endpoint); err != nil {
		return nil, fmt.Errorf("failed to get stats per endpoint: %w", err)
	}

	statsList := make([]Stats, 0, len(rows))
	for _, r := range rows {
		s := Stats{
			Endpoint:          r.Endpoint,
			Market:            r.Market,
			TotalCalls:        r.TotalCalls,
			SuccessCount:      r.SuccessCount,
			FailureCount:      r.FailureCount,
			TransportFailures: r.TransportFailures,
			AvgDurationMs:     r.AvgDuration,
			MinDurationMs:     r.MinDuration,
			MaxDurationMs:     r.MaxDuration,
			TotalRespSize:     r.TotalRespSize,
			LastCalled:        time.UnixMilli(r.LastCalled),
			StatusCodes:       make(map[int]int),
		}

		var codes map[string]int
		if err := json.Unmarshal([]byte(r.StatusCodesJSON), &codes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status codes: %w", err)
		}
		for codeStr, count := range codes {
			if code, err := strconv.Atoi(codeStr); err == nil {
				s.StatusCodes[code] = count
			}
		}

		statsList = append(statsList, s)
	}

	return statsList, nil
}

// Totals folds a stats list into one aggregate named "all"
func Totals(list []Stats) Stats {
	total := Stats{Endpoint: "all", StatusCodes: make(map[int]int)}
	var durationSum float64
	for i, s := range list {
		total.TotalCalls += s.TotalCalls
		total.SuccessCount += s.SuccessCount
		total.FailureCount += s.FailureCount
		total.TransportFailures += s.TransportFailures
		total.TotalRespSize += s.TotalRespSize
		durationSum += s.AvgDurationMs * float64(s.TotalCalls)
		if i == 0 || s.MinDurationMs < total.MinDurationMs {
			total.MinDurationMs = s.MinDurationMs
		}
		if s.MaxDurationMs > total.MaxDurationMs {
			total.MaxDurationMs = s.MaxDurationMs
		}
		if s.LastCalled.After(total.LastCalled) {
			total.LastCalled = s.LastCalled
		}
		for code, n := range s.StatusCodes {
			total.StatusCodes[code] += n
		}
	}
	if total.TotalCalls > 0 {
		total.AvgDurationMs = durationSum / float64(total.TotalCalls)
	}
	return total
}

// SortedStatusCodes returns the status codes of s in ascending order
func SortedStatusCodes(s Stats) []int {
	codes := make([]int, 0, len(s.StatusCodes))
	for code := range s.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
