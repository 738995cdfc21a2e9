package mock

import "time"

// DefaultPrefix is the path the catalog is mounted under, matching the
// deployed market-data API
const DefaultPrefix = "/api/crypto"

// Config represents the mock server configuration
type Config struct {
	Port    int      `json:"port" yaml:"port"`                           // Server port (default: 8080)
	Host    string   `json:"host" yaml:"host"`                           // Server host (default: localhost)
	Prefix  string   `json:"prefix,omitempty" yaml:"prefix,omitempty"`   // Path prefix of every catalog endpoint (default: /api/crypto)
	Symbols []string `json:"symbols,omitempty" yaml:"symbols,omitempty"` // Symbols listed by the all-symbol endpoints
	Routes  []Route  `json:"routes,omitempty" yaml:"routes,omitempty"`   // Overrides checked before the canned catalog responses
	Logging bool     `json:"logging" yaml:"logging"`                     // Enable request logging (default: true)
}

// Route overrides the canned response of one path
type Route struct {
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`               // Route description
	Method      string            `json:"method,omitempty" yaml:"method,omitempty"`           // HTTP method (default: GET)
	Path        string            `json:"path" yaml:"path"`                                   // Path relative to the prefix, e.g. /depth
	PathType    string            `json:"pathType,omitempty" yaml:"pathType,omitempty"`       // exact, prefix, regex (default: exact)
	Status      int               `json:"status" yaml:"status"`                               // HTTP status code
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`         // Response headers
	Body        string            `json:"body,omitempty" yaml:"body,omitempty"`               // Response body
	BodyFile    string            `json:"bodyFile,omitempty" yaml:"bodyFile,omitempty"`       // Path to response body file
	Delay       int               `json:"delay,omitempty" yaml:"delay,omitempty"`             // Response delay in milliseconds
	Description string            `json:"description,omitempty" yaml:"description,omitempty"` // Route documentation
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp   time.Time     `json:"timestamp" yaml:"timestamp"`
	Method      string        `json:"method" yaml:"method"`
	Path        string        `json:"path" yaml:"path"`
	Query       string        `json:"query,omitempty" yaml:"query,omitempty"`
	MatchedRule string        `json:"matchedRule" yaml:"matchedRule"`
	Status      int           `json:"status" yaml:"status"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

// DefaultSymbols are listed by the all-symbol endpoints when the config names none
var DefaultSymbols = []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT", "XRPUSDT"}
