package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/studiowebux/marketcli/internal/types"
)

// httpErrorFormat is used when a failed response carries no usable error text
const httpErrorFormat = "HTTP error! status: %d"

// NewClient returns the client used for market-data calls. A zero timeout
// leaves calls unbounded; they still end when their context is cancelled.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: http.DefaultTransport,
	}
}

// Execute issues a single request and folds every outcome into a CallResult.
// Failures are reported through CallResult.Error, never as a Go error.
func Execute(ctx context.Context, client *http.Client, method, rawURL string) *types.CallResult {
	result := &types.CallResult{
		Method: method,
		URL:    rawURL,
	}
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		return result
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Duration = time.Since(startTime).Milliseconds()
		result.Error = DescribeTransportError(err)
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	result.Duration = time.Since(startTime).Milliseconds()
	result.Status = resp.StatusCode
	result.StatusText = resp.Status
	if err != nil {
		result.Error = fmt.Sprintf("failed to read response body: %v", err)
		return result
	}
	result.Body = string(body)
	result.ResponseSize = len(body)

	if !IsSuccessStatus(resp.StatusCode) {
		result.Error = ErrorMessage(resp.StatusCode, body)
		return result
	}

	payload, err := DecodePayload(body)
	if err != nil {
		result.Error = fmt.Sprintf("invalid JSON response: %v", err)
		return result
	}
	result.Payload = payload

	return result
}

// ErrorMessage extracts the failure text of a non-success response: the
// body's "error" field when it is a non-empty string, otherwise a generic
// message naming the status.
func ErrorMessage(status int, body []byte) string {
	var envelope struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if msg, ok := envelope.Error.(string); ok && msg != "" {
			return msg
		}
	}
	return fmt.Sprintf(httpErrorFormat, status)
}

// DecodePayload parses a JSON body keeping numbers exact
func DecodePayload(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON document")
	}
	return payload, nil
}

// PrettyPayload renders a payload as indented JSON
func PrettyPayload(payload any) string {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(data)
}

// FormatDuration formats duration in milliseconds to human-readable string
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	return fmt.Sprintf("%.2fs", seconds)
}

// FormatSize formats byte size to human-readable string
func FormatSize(bytes int) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	}
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.2fKB", float64(bytes)/1024.0)
	}
	return fmt.Sprintf("%.2fMB", float64(bytes)/(1024.0*1024.0))
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

// IsClientErrorStatus returns true if status code is 4xx
func IsClientErrorStatus(status int) bool {
	return status >= 400 && status < 500
}

// IsServerErrorStatus returns true if status code is 5xx
func IsServerErrorStatus(status int) bool {
	return status >= 500 && status < 600
}
