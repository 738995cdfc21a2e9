package session

import (
	"errors"
	"fmt"

	"github.com/studiowebux/marketcli/internal/catalog"
	"github.com/studiowebux/marketcli/internal/types"
)

// ErrNoSelection is returned by operations that need a selected endpoint
var ErrNoSelection = errors.New("no endpoint selected")

// State is the phase of the most recent call
type State int

const (
	Idle State = iota
	Pending
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "success"
	case Failed:
		return "failure"
	default:
		return "idle"
	}
}

// Outcome is the tri-state result of the most recent call, or Idle when no
// call has been made for the current selection.
type Outcome struct {
	State  State
	Result *types.CallResult
}

// Message returns the failure text of a failed outcome
func (o Outcome) Message() string {
	if o.State != Failed || o.Result == nil {
		return ""
	}
	return o.Result.Error
}

// Ticket identifies one dispatched call. Results are accepted only for the
// ticket of the current generation.
type Ticket struct {
	Generation uint64
	Endpoint   string
	Method     string
	URL        string
}

// Session holds the interactive state scoped to the current endpoint
// selection. It is confined to the UI event loop and is not synchronized.
type Session struct {
	baseURL    string
	endpoint   catalog.Endpoint
	selected   bool
	values     catalog.Values
	outcome    Outcome
	generation uint64
}

// New creates an empty session deriving URLs against baseURL
func New(baseURL string) *Session {
	return &Session{baseURL: baseURL}
}

// BaseURL returns the base URL derived URLs start with
func (s *Session) BaseURL() string {
	return s.baseURL
}

// SetBaseURL switches the base URL; derived URLs follow on next read
func (s *Session) SetBaseURL(baseURL string) {
	s.baseURL = baseURL
}

// Select makes name the current endpoint, seeds its default values and
// clears the previous outcome. Any in-flight call becomes stale.
func (s *Session) Select(name string) error {
	ep, err := catalog.Find(name)
	if err != nil {
		return err
	}
	s.endpoint = ep
	s.selected = true
	s.values = catalog.DefaultValues(ep)
	s.outcome = Outcome{}
	s.generation++
	return nil
}

// Clear drops the selection, its values and its outcome
func (s *Session) Clear() {
	s.endpoint = catalog.Endpoint{}
	s.selected = false
	s.values = nil
	s.outcome = Outcome{}
	s.generation++
}

// Selected returns the current endpoint
func (s *Session) Selected() (catalog.Endpoint, bool) {
	return s.endpoint, s.selected
}

// Values returns a copy of the current parameter values
func (s *Session) Values() catalog.Values {
	return s.values.Clone()
}

// Value returns the current value of one parameter
func (s *Session) Value(name string) string {
	return s.values[name]
}

// SetValue records user input for one parameter of the selected endpoint
func (s *Session) SetValue(name, raw string) error {
	if !s.selected {
		return ErrNoSelection
	}
	spec, ok := s.endpoint.Param(name)
	if !ok {
		return fmt.Errorf("endpoint %q has no parameter %q", s.endpoint.Name, name)
	}
	s.values.Set(spec, raw)
	return nil
}

// ReplaceValues overwrites every declared parameter; names missing from
// values become empty.
func (s *Session) ReplaceValues(values catalog.Values) error {
	if !s.selected {
		return ErrNoSelection
	}
	next := make(catalog.Values, len(s.endpoint.Params))
	for _, p := range s.endpoint.Params {
		next.Set(p, values[p.Name])
	}
	s.values = next
	return nil
}

// URL derives the request URL from the current selection and values
func (s *Session) URL() string {
	if !s.selected {
		return ""
	}
	return catalog.DeriveURL(s.baseURL, s.endpoint, s.values)
}

// Command derives the curl invocation from the current selection and values
func (s *Session) Command() string {
	if !s.selected {
		return ""
	}
	return catalog.DeriveCommand(s.baseURL, s.endpoint, s.values)
}

// Begin starts a call for the current selection. The outcome becomes
// Pending and every earlier ticket is superseded.
func (s *Session) Begin() (Ticket, error) {
	if !s.selected {
		return Ticket{}, ErrNoSelection
	}
	s.generation++
	s.outcome = Outcome{State: Pending}
	return Ticket{
		Generation: s.generation,
		Endpoint:   s.endpoint.Name,
		Method:     s.endpoint.Method,
		URL:        s.URL(),
	}, nil
}

// Complete applies the result of the call identified by t. It returns false
// and leaves the session untouched when t has been superseded.
func (s *Session) Complete(t Ticket, result *types.CallResult) bool {
	if t.Generation != s.generation || s.outcome.State != Pending {
		return false
	}
	state := Succeeded
	if result.Failed() {
		state = Failed
	}
	s.outcome = Outcome{State: state, Result: result}
	return true
}

// Outcome returns the outcome of the most recent call
func (s *Session) Outcome() Outcome {
	return s.outcome
}

// Generation returns the supersession counter
func (s *Session) Generation() uint64 {
	return s.generation
}
