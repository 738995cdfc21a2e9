package types

import "time"

// CallResult is the terminal outcome of one dispatched market-data call.
// Error is empty exactly when the call succeeded.
type CallResult struct {
	Endpoint     string `json:"endpoint" yaml:"endpoint"`
	Method       string `json:"method" yaml:"method"`
	URL          string `json:"url" yaml:"url"`
	Status       int    `json:"status" yaml:"status"` // 0 when no HTTP response arrived
	StatusText   string `json:"statusText" yaml:"statusText"`
	Body         string `json:"body" yaml:"body"`
	Payload      any    `json:"payload,omitempty" yaml:"payload,omitempty"`
	Duration     int64  `json:"duration" yaml:"duration"`         // milliseconds
	ResponseSize int    `json:"responseSize" yaml:"responseSize"` // bytes
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the call ended in a failure message
func (r *CallResult) Failed() bool {
	return r.Error != ""
}

// TransportFailure reports whether the call failed before any HTTP response
func (r *CallResult) TransportFailure() bool {
	return r.Error != "" && r.Status == 0
}

// HistoryEntry is one persisted call record
type HistoryEntry struct {
	ID           string    `json:"id" yaml:"id"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Endpoint     string    `json:"endpoint" yaml:"endpoint"`
	Market       string    `json:"market,omitempty" yaml:"market,omitempty"`
	Method       string    `json:"method" yaml:"method"`
	URL          string    `json:"url" yaml:"url"`
	Status       int       `json:"status" yaml:"status"`
	Duration     int64     `json:"duration" yaml:"duration"`
	ResponseSize int       `json:"responseSize" yaml:"responseSize"`
	Error        string    `json:"error,omitempty" yaml:"error,omitempty"`
}
