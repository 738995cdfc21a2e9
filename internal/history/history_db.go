package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/studiowebux/marketcli/internal/config"
	"github.com/studiowebux/marketcli/internal/migrations"
	"github.com/studiowebux/marketcli/internal/types"
)

// DefaultLimit caps List when the caller passes a non-positive limit
const DefaultLimit = 100

// ErrNotFound is returned by Get for an unknown entry id
var ErrNotFound = errors.New("history entry not found")

// ErrAmbiguous is returned by Resolve when an id prefix matches several entries
var ErrAmbiguous = errors.New("history id prefix is ambiguous")

// Manager records executed calls in the sqlite call log
type Manager struct {
	db  *sqlx.DB
	now func() time.Time
}

// row mirrors the history table
type row struct {
	ID           string         `db:"id"`
	TimestampMS  int64          `db:"timestamp_ms"`
	Endpoint     string         `db:"endpoint"`
	Market       string         `db:"market"`
	Method       string         `db:"method"`
	URL          string         `db:"url"`
	Status       int            `db:"status"`
	DurationMS   int64          `db:"duration_ms"`
	ResponseSize int            `db:"response_size"`
	Error        sql.NullString `db:"error"`
}

func (r row) entry() types.HistoryEntry {
	return types.HistoryEntry{
		ID:           r.ID,
		Timestamp:    time.UnixMilli(r.TimestampMS),
		Endpoint:     r.Endpoint,
		Market:       r.Market,
		Method:       r.Method,
		URL:          r.URL,
		Status:       r.Status,
		Duration:     r.DurationMS,
		ResponseSize: r.ResponseSize,
		Error:        r.Error.String,
	}
}

const selectColumns = `
	SELECT id, timestamp_ms, endpoint, market, method, url,
	       status, duration_ms, response_size, error
	FROM history`

// NewManager opens (creating when needed) the database at dbPath and brings
// its schema up to date. An empty path uses config.DatabasePath.
func NewManager(dbPath string) (*Manager, error) {
	if dbPath == "" {
		dbPath = config.DatabasePath
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db, now: time.Now}, nil
}

// DB exposes the underlying handle for packages that aggregate over the call log
func (m *Manager) DB() *sqlx.DB {
	return m.db
}

// Save appends one call result and returns the stored entry
func (m *Manager) Save(ctx context.Context, market string, result *types.CallResult) (types.HistoryEntry, error) {
	r := row{
		ID:           uuid.NewString(),
		TimestampMS:  m.now().UnixMilli(),
		Endpoint:     result.Endpoint,
		Market:       market,
		Method:       result.Method,
		URL:          result.URL,
		Status:       result.Status,
		DurationMS:   result.Duration,
		ResponseSize: result.ResponseSize,
		Error:        sql.NullString{String: result.Error, Valid: result.Error != ""},
	}

	query := `
		INSERT INTO history (
			id, timestamp_ms, endpoint, market, method, url,
			status, duration_ms, response_size, error
		) VALUES (
			:id, :timestamp_ms, :endpoint, :market, :method, :url,
			:status, :duration_ms, :response_size, :error
		)
	`
	if _, err := sqlx.NamedExecContext(ctx, m.db, query, r); err != nil {
		return types.HistoryEntry{}, fmt.Errorf("failed to save history entry: %w", err)
	}

	return r.entry(), nil
}

// List returns the most recent entries, newest first
func (m *Manager) List(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var rows []row
	query := selectColumns + ` ORDER BY timestamp_ms DESC, rowid DESC LIMIT ?`
	if err := m.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return entries(rows), nil
}

// ListForEndpoint returns the most recent entries of one endpoint, newest first
func (m *Manager) ListForEndpoint(ctx context.Context, endpoint string, limit int) ([]types.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var rows []row
	query := selectColumns + ` WHERE endpoint = ? ORDER BY timestamp_ms DESC, rowid DESC LIMIT ?`
	if err := m.db.SelectContext(ctx, &rows, query, endpoint, limit); err != nil {
		return nil, fmt.Errorf("failed to load history for endpoint: %w", err)
	}
	return entries(rows), nil
}

// Get returns one entry by id
func (m *Manager) Get(ctx context.Context, id string) (types.HistoryEntry, error) {
	var r row
	if err := m.db.GetContext(ctx, &r, selectColumns+` WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.HistoryEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return types.HistoryEntry{}, fmt.Errorf("failed to load history entry: %w", err)
	}
	return r.entry(), nil
}

// Resolve returns the entry whose id is id or starts with it. The prefix is
// compared literally.
func (m *Manager) Resolve(ctx context.Context, id string) (types.HistoryEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.HistoryEntry{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	var rows []row
	if err := m.db.SelectContext(ctx, &rows, selectColumns+` WHERE substr(id, 1, length(?)) = ? LIMIT 2`, id, id); err != nil {
		return types.HistoryEntry{}, fmt.Errorf("failed to load history entry: %w", err)
	}
	switch len(rows) {
	case 0:
		return types.HistoryEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return rows[0].entry(), nil
	default:
		return types.HistoryEntry{}, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
}

// Delete removes one entry
func (m *Manager) Delete(ctx context.Context, id string) error {
	res, err := m.db.ExecContext(ctx, "DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Clear removes every entry
func (m *Manager) Clear(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, "DELETE FROM history")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Count returns the number of stored entries
func (m *Manager) Count(ctx context.Context) (int, error) {
	var count int
	if err := m.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM history"); err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func entries(rows []row) []types.HistoryEntry {
	out := make([]types.HistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entry())
	}
	return out
}
