package catalog

// ParamKind is the semantic type of a request parameter. It governs how
// user input is coerced, not how strictly it is validated.
type ParamKind string

const (
	KindText    ParamKind = "text"
	KindInteger ParamKind = "integer"
)

// Market groups endpoints for presentation
type Market string

const (
	MarketSpot    Market = "spot"
	MarketFutures Market = "futures"
)

// ParameterSpec describes one named query parameter of an endpoint
type ParameterSpec struct {
	Name        string    `json:"name" yaml:"name"`
	Kind        ParamKind `json:"kind" yaml:"kind"`
	Required    bool      `json:"required" yaml:"required"`
	Default     string    `json:"default,omitempty" yaml:"default,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// HasDefault reports whether the parameter is pre-filled on selection
func (p ParameterSpec) HasDefault() bool {
	return p.Default != ""
}

// Endpoint describes one read-only operation of the market-data API.
// Path is relative to the base URL and never carries a query string.
type Endpoint struct {
	Name        string          `json:"name" yaml:"name"`
	Market      Market          `json:"market" yaml:"market"`
	Path        string          `json:"path" yaml:"path"`
	Method      string          `json:"method" yaml:"method"`
	Params      []ParameterSpec `json:"params,omitempty" yaml:"params,omitempty"`
	Description string          `json:"description" yaml:"description"`
}

// Param returns the parameter spec with the given name
func (e Endpoint) Param(name string) (ParameterSpec, bool) {
	for _, p := range e.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterSpec{}, false
}

// RequiredParams returns the names of required parameters in declared order
func (e Endpoint) RequiredParams() []string {
	var names []string
	for _, p := range e.Params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// ParamNames returns all parameter names in declared order
func (e Endpoint) ParamNames() []string {
	names := make([]string, 0, len(e.Params))
	for _, p := range e.Params {
		names = append(names, p.Name)
	}
	return names
}

// clone returns a copy that does not share the parameter slice
func (e Endpoint) clone() Endpoint {
	if e.Params != nil {
		params := make([]ParameterSpec, len(e.Params))
		copy(params, e.Params)
		e.Params = params
	}
	return e
}
