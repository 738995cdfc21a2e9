package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiowebux/marketcli/internal/catalog"
)

// maxLogs bounds the in-memory request log
const maxLogs = 1000

// Server is an offline stand-in for the market-data API. Every catalog
// endpoint answers with canned JSON; configured routes take precedence.
type Server struct {
	config     *Config
	httpServer *http.Server
	listener   net.Listener
	logs       []RequestLog
	logsMutex  sync.RWMutex
	workdir    string
	notifyCh   chan struct{} // Channel to notify when new log arrives
	log        zerolog.Logger
	now        func() time.Time
}

// NewServer creates a new mock server
func NewServer(config *Config, workdir string, log zerolog.Logger) *Server {
	if config == nil {
		config = &Config{Logging: true}
	}
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}
	config.Prefix = strings.TrimRight(config.Prefix, "/")
	if len(config.Symbols) == 0 {
		config.Symbols = DefaultSymbols
	}

	return &Server{
		config:   config,
		logs:     make([]RequestLog, 0),
		workdir:  workdir,
		notifyCh: make(chan struct{}, 100),
		log:      log,
		now:      time.Now,
	}
}

// Handler exposes the request router, e.g. for httptest servers
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	return mux
}

// Start binds the configured address and serves in the background
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.Serve(ln)
	return nil
}

// Serve serves on ln in the background
func (s *Server) Serve(ln net.Listener) {
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("mock server stopped")
		}
	}()

	s.log.Info().Str("address", s.Address()).Msg("mock server listening")
}

// Stop stops the mock server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// handleRequest handles incoming HTTP requests
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	w.Header().Set("Content-Type", "application/json")

	status, body, matchedRule := s.respond(w, r)

	w.WriteHeader(status)
	_, _ = w.Write(body)

	duration := time.Since(start)

	s.log.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("query", r.URL.RawQuery).
		Int("status", status).
		Str("rule", matchedRule).
		Dur("duration", duration).
		Msg("mock request")

	if s.config.Logging {
		s.logRequest(RequestLog{
			Timestamp:   start,
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.RawQuery,
			MatchedRule: matchedRule,
			Status:      status,
			Duration:    duration,
		})
	}
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request) (int, []byte, string) {
	path, ok := s.relativePath(r.URL.Path)
	if !ok {
		return http.StatusNotFound, errorBody(fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path)), "none"
	}

	if route := s.findMatchingRoute(r.Method, path); route != nil {
		return s.override(w, r, route)
	}

	ep, ok := catalog.ByPath(path)
	if !ok {
		return http.StatusNotFound, errorBody(fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path)), "none"
	}
	if r.Method != ep.Method {
		return http.StatusMethodNotAllowed, errorBody("method not allowed"), ep.Name
	}

	q := r.URL.Query()
	if msg, ok := validate(ep, q); !ok {
		return http.StatusBadRequest, errorBody(msg), ep.Name
	}

	payload := responders[ep.Path](newRequest(ep, q, s.now(), s.config.Symbols))
	data, err := json.Marshal(payload)
	if err != nil {
		return http.StatusInternalServerError, errorBody(err.Error()), ep.Name
	}
	return http.StatusOK, data, ep.Name
}

// errorBody renders the {"error": "..."} shape the API uses for failures
func errorBody(msg string) []byte {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return data
}

func (s *Server) override(w http.ResponseWriter, r *http.Request, route *Route) (int, []byte, string) {
	if route.Delay > 0 {
		select {
		case <-time.After(time.Duration(route.Delay) * time.Millisecond):
		case <-r.Context().Done():
		}
	}

	status := route.Status
	if status == 0 {
		status = http.StatusOK
	}

	for key, value := range route.Headers {
		w.Header().Set(key, value)
	}

	matchedRule := route.Name
	if matchedRule == "" {
		matchedRule = fmt.Sprintf("%s %s", route.method(), route.Path)
	}

	if route.BodyFile != "" {
		filePath := route.BodyFile
		if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(s.workdir, filePath)
		}
		body, err := os.ReadFile(filePath)
		if err != nil {
			return http.StatusInternalServerError, errorBody(fmt.Sprintf("failed to read body file %s: %v", route.BodyFile, err)), matchedRule
		}
		return status, body, matchedRule
	}

	return status, []byte(route.Body), matchedRule
}

// relativePath strips the configured prefix
func (s *Server) relativePath(path string) (string, bool) {
	if s.config.Prefix == "" {
		return path, true
	}
	rest, ok := strings.CutPrefix(path, s.config.Prefix)
	if !ok || (rest != "" && !strings.HasPrefix(rest, "/")) {
		return "", false
	}
	return rest, true
}

func (r *Route) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

// findMatchingRoute finds the first route that matches the method and path
func (s *Server) findMatchingRoute(method, path string) *Route {
	for i := range s.config.Routes {
		route := &s.config.Routes[i]
		if !strings.EqualFold(route.method(), method) {
			continue
		}

		pathType := route.PathType
		if pathType == "" {
			pathType = "exact"
		}

		matched := false
		switch pathType {
		case "exact":
			matched = route.Path == path
		case "prefix":
			matched = strings.HasPrefix(path, route.Path)
		case "regex":
			if re, err := regexp.Compile(route.Path); err == nil {
				matched = re.MatchString(path)
			}
		}

		if matched {
			return route
		}
	}

	return nil
}

// logRequest adds a request to the log
func (s *Server) logRequest(entry RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, entry)

	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}

	// Notify listeners (non-blocking)
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// NotifyChannel returns the notification channel
func (s *Server) NotifyChannel() <-chan struct{} {
	return s.notifyCh
}

// Logs returns a copy of the logged requests, oldest first
func (s *Server) Logs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// ClearLogs clears all logged requests
func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = make([]RequestLog, 0)
}

// Address returns the server root address
func (s *Server) Address() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return "http://" + net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))
}

// BaseURL returns the address the catalog is mounted under
func (s *Server) BaseURL() string {
	return s.Address() + s.config.Prefix
}
