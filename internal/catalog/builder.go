package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// Values maps parameter names to the current user input for one endpoint.
// Integer parameters are carried in their decimal string form; an empty
// string means "no value".
type Values map[string]string

// DefaultValues seeds the values for a freshly selected endpoint: the
// declared default where there is one, otherwise the empty value.
func DefaultValues(ep Endpoint) Values {
	v := make(Values, len(ep.Params))
	for _, p := range ep.Params {
		v[p.Name] = p.Default
	}
	return v
}

// Set stores raw input for the parameter, coercing integer input to its
// canonical form when it parses. Input that does not parse is kept verbatim.
func (v Values) Set(spec ParameterSpec, raw string) {
	v[spec.Name] = Coerce(spec.Kind, raw)
}

// Clone returns an independent copy
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Coerce normalizes raw input for a parameter kind
func Coerce(kind ParamKind, raw string) string {
	if kind != KindInteger {
		return raw
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return trimmed
}

// DeriveURL builds the request URL for ep: base + path, followed by every
// non-empty value in declared parameter order. Missing or empty values are
// omitted; required parameters are not enforced.
func DeriveURL(base string, ep Endpoint, values Values) string {
	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString(ep.Path)

	sep := byte('?')
	for _, p := range ep.Params {
		val, ok := values[p.Name]
		if !ok || val == "" {
			continue
		}
		sb.WriteByte(sep)
		sb.WriteString(p.Name)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(val))
		sep = '&'
	}
	return sb.String()
}

// DeriveCommand renders the curl invocation equivalent to DeriveURL
func DeriveCommand(base string, ep Endpoint, values Values) string {
	return FormatCommand(ep.Method, DeriveURL(base, ep, values))
}

// FormatCommand renders a curl invocation for an already derived URL
func FormatCommand(method, rawURL string) string {
	return "curl -X " + method + ` "` + rawURL + `"`
}

// ParseValues recovers parameter values from a URL previously produced by
// DeriveURL. Query keys that are not parameters of ep are ignored.
func ParseValues(ep Endpoint, rawURL string) (Values, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	values := make(Values, len(ep.Params))
	for _, p := range ep.Params {
		values[p.Name] = q.Get(p.Name)
	}
	return values, nil
}
