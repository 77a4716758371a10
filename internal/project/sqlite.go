package project

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"glossa/internal/config"
	"glossa/internal/faults"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the database to adopt the new schema.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteStore manages project persistence backed by SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// Open initializes or connects to the project database.
func Open(cfg *config.Config) (*SQLiteStore, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "projects.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Create inserts a new pending project.
func (s *SQLiteStore) Create(ctx context.Context, ownerID, title, sourceRef string) (*Project, error) {
	if err := validateCreate(ownerID, sourceRef); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO projects (id, owner_id, title, status, source_ref, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		strings.TrimSpace(ownerID),
		strings.TrimSpace(title),
		StatusPending,
		sourceRef,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, faults.Wrap(faults.ErrPersistence, "store", "create", "insert project", err)
	}
	return s.Get(ctx, id)
}

// Get fetches a project by identifier.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	proj, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, faults.Wrap(faults.ErrNotFound, "store", "get", fmt.Sprintf("project %s", id), nil)
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrPersistence, "store", "get", "query project", err)
	}
	return proj, nil
}

// ListByOwner returns the owner's projects, most recent first.
func (s *SQLiteStore) ListByOwner(ctx context.Context, ownerID string) ([]*Project, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+projectColumns+` FROM projects WHERE owner_id = ? ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, faults.Wrap(faults.ErrPersistence, "store", "list", "query by owner", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, faults.Wrap(faults.ErrPersistence, "store", "list", "scan project", err)
		}
		projects = append(projects, proj)
	}
	return projects, rows.Err()
}

// UpdateStatus applies a transition atomically via a conditional UPDATE
// restricted to legal prior statuses.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*Project, error) {
	if err := validateUpdate(update); err != nil {
		return nil, faults.Wrap(faults.ErrConflict, "store", "update-status", err.Error(), nil)
	}

	priors := transitionPriors[update.Status]
	placeholders := makePlaceholders(len(priors))
	now := time.Now().UTC().Format(time.RFC3339Nano)

	args := make([]any, 0, len(priors)+4)
	args = append(args, update.Status, nullableString(update.ResultRef), nullableString(update.Diagnostic), now, id)
	for _, prior := range priors {
		args = append(args, prior)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE projects
         SET status = ?, result_ref = ?, error_message = ?, updated_at = ?
         WHERE id = ? AND status IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, faults.Wrap(faults.ErrPersistence, "store", "update-status", "update project", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, faults.Wrap(faults.ErrPersistence, "store", "update-status", "rows affected", err)
	}
	if affected == 0 {
		current, getErr := s.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, faults.Wrap(faults.ErrConflict, "store", "update-status",
			fmt.Sprintf("cannot move project %s from %s to %s", id, current.Status, update.Status), nil)
	}
	return s.Get(ctx, id)
}

// ReclaimProcessing fails every project left in processing, typically after a
// crash interrupted a run.
func (s *SQLiteStore) ReclaimProcessing(ctx context.Context, diagnostic string) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE projects
         SET status = ?, result_ref = NULL, error_message = ?, updated_at = ?
         WHERE status = ?`,
		StatusFailed,
		nullableString(diagnostic),
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusProcessing,
	)
	if err != nil {
		return 0, faults.Wrap(faults.ErrPersistence, "store", "reclaim", "fail orphaned projects", err)
	}
	return res.RowsAffected()
}

// Health aggregates project counts per status.
func (s *SQLiteStore) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM projects GROUP BY status`)
	if err != nil {
		return HealthSummary{}, faults.Wrap(faults.ErrPersistence, "store", "health", "count by status", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, err
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return HealthSummary{}, err
	}
	return healthFromCounts(counts), nil
}

const projectColumns = "id, owner_id, title, status, source_ref, result_ref, error_message, created_at, updated_at"

func scanProject(scanner interface{ Scan(dest ...any) error }) (*Project, error) {
	var (
		id           string
		ownerID      string
		title        string
		statusStr    string
		sourceRef    string
		resultRef    sql.NullString
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(&id, &ownerID, &title, &statusStr, &sourceRef, &resultRef, &errorMessage, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	proj := &Project{
		ID:           id,
		OwnerID:      ownerID,
		Title:        title,
		Status:       Status(statusStr),
		SourceRef:    sourceRef,
		ResultRef:    resultRef.String,
		ErrorMessage: errorMessage.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		proj.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		proj.UpdatedAt = updated
	}
	return proj, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *SQLiteStore) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}
