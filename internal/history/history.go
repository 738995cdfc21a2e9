package history

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/studiowebux/marketcli/internal/catalog"
	"github.com/studiowebux/marketcli/internal/types"
)

// Recorder appends call results to the call log when history is enabled.
// Write failures are logged and never fail the call that produced them.
type Recorder struct {
	manager *Manager
	enabled atomic.Bool
	log     zerolog.Logger
}

// NewRecorder wraps manager. A nil manager records nothing.
func NewRecorder(manager *Manager, enabled bool, log zerolog.Logger) *Recorder {
	r := &Recorder{manager: manager, log: log}
	r.enabled.Store(enabled)
	return r
}

// Enabled reports whether Record writes anything. Safe to call while
// another goroutine toggles recording.
func (r *Recorder) Enabled() bool {
	return r != nil && r.manager != nil && r.enabled.Load()
}

// SetEnabled toggles recording
func (r *Recorder) SetEnabled(enabled bool) {
	r.enabled.Store(enabled)
}

// Record stores result under the market of its endpoint
func (r *Recorder) Record(ctx context.Context, result *types.CallResult) {
	if !r.Enabled() || result == nil {
		return
	}

	market := ""
	if ep, ok := catalog.Lookup(result.Endpoint); ok {
		market = string(ep.Market)
	}

	if _, err := r.manager.Save(ctx, market, result); err != nil {
		r.log.Warn().Err(err).Str("endpoint", result.Endpoint).Msg("history write failed")
	}
}
