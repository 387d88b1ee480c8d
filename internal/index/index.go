package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"loom/internal/campaign"
	"loom/internal/config"
	"loom/internal/services"
)

// RunState is the sequencer-level lifecycle of a campaign run. It is kept in
// the index, not in campaign metadata, because metadata's status enum has no
// failed value and stays within its published vocabulary.
type RunState string

const (
	RunInitializing RunState = "initializing"
	RunRunning      RunState = "running"
	RunCompleted    RunState = "completed"
	RunFailed       RunState = "failed"
)

// Record is one campaign row in the index.
type Record struct {
	CampaignID        string
	Name              string
	Brand             string
	Type              campaign.Type
	Status            campaign.Status
	Phase             campaign.Phase
	RunState          RunState
	CompletionPercent int
	FailureKind       string
	FailureMessage    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Index tracks every known campaign in a SQLite database so status queries
// never have to walk the campaigns tree.
type Index struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS campaigns (
    campaign_id        TEXT PRIMARY KEY,
    name               TEXT NOT NULL DEFAULT '',
    brand              TEXT NOT NULL DEFAULT '',
    campaign_type      TEXT NOT NULL DEFAULT '',
    status             TEXT NOT NULL DEFAULT '',
    phase              TEXT NOT NULL DEFAULT '',
    run_state          TEXT NOT NULL DEFAULT '',
    completion_percent INTEGER NOT NULL DEFAULT 0,
    failure_kind       TEXT NOT NULL DEFAULT '',
    failure_message    TEXT NOT NULL DEFAULT '',
    created_at         TEXT NOT NULL,
    updated_at         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_campaigns_run_state ON campaigns(run_state);
`

// Open initializes or connects to the campaign index database.
func Open(cfg *config.Config) (*Index, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "", "open index", "ensure directories", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "campaigns.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "", "open index", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrPersistence, "", "open index", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	idx := &Index{db: db, path: dbPath}
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrPersistence, "", "open index", "init schema", err)
	}
	return idx, nil
}

// Close closes the underlying database connection.
func (i *Index) Close() error {
	if i == nil || i.db == nil {
		return nil
	}
	return i.db.Close()
}

// Path returns the database file path.
func (i *Index) Path() string { return i.path }

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

func (i *Index) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := i.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Upsert inserts or refreshes a campaign row from its metadata and run state.
func (i *Index) Upsert(ctx context.Context, rec Record) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	err := i.execWithRetry(ctx,
		`INSERT INTO campaigns (
            campaign_id, name, brand, campaign_type, status, phase,
            run_state, completion_percent, failure_kind, failure_message,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(campaign_id) DO UPDATE SET
            name = excluded.name,
            brand = excluded.brand,
            campaign_type = excluded.campaign_type,
            status = excluded.status,
            phase = excluded.phase,
            run_state = excluded.run_state,
            completion_percent = excluded.completion_percent,
            failure_kind = excluded.failure_kind,
            failure_message = excluded.failure_message,
            updated_at = excluded.updated_at`,
		rec.CampaignID, rec.Name, rec.Brand, string(rec.Type), string(rec.Status), string(rec.Phase),
		string(rec.RunState), rec.CompletionPercent, rec.FailureKind, rec.FailureMessage,
		created.Format(time.RFC3339Nano), now,
	)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "", "index upsert", rec.CampaignID, err)
	}
	return nil
}

// MarkFailed records a stage failure against the campaign row.
func (i *Index) MarkFailed(ctx context.Context, campaignID string, failure services.Failure) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := i.execWithRetry(ctx,
		`UPDATE campaigns SET
            run_state = ?, failure_kind = ?, failure_message = ?, updated_at = ?
        WHERE campaign_id = ?`,
		string(RunFailed), string(failure.Kind), failure.Message, now, campaignID,
	)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "", "index mark failed", campaignID, err)
	}
	return nil
}

// Get returns the row for a campaign id, or nil when unknown.
func (i *Index) Get(ctx context.Context, campaignID string) (*Record, error) {
	ctx = ensureContext(ctx)
	row := i.db.QueryRowContext(ctx,
		`SELECT campaign_id, name, brand, campaign_type, status, phase,
                run_state, completion_percent, failure_kind, failure_message,
                created_at, updated_at
         FROM campaigns WHERE campaign_id = ?`, campaignID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "", "index get", campaignID, err)
	}
	return rec, nil
}

// List returns every campaign row, most recently updated first.
func (i *Index) List(ctx context.Context) ([]Record, error) {
	ctx = ensureContext(ctx)
	rows, err := i.db.QueryContext(ctx,
		`SELECT campaign_id, name, brand, campaign_type, status, phase,
                run_state, completion_percent, failure_kind, failure_message,
                created_at, updated_at
         FROM campaigns ORDER BY updated_at DESC`)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "", "index list", "", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "", "index list", "scan row", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "", "index list", "iterate rows", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec                  Record
		typ, status, phase   string
		runState             string
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&rec.CampaignID, &rec.Name, &rec.Brand, &typ, &status, &phase,
		&runState, &rec.CompletionPercent, &rec.FailureKind, &rec.FailureMessage,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	rec.Type = campaign.Type(typ)
	rec.Status = campaign.Status(status)
	rec.Phase = campaign.Phase(phase)
	rec.RunState = RunState(runState)
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		rec.UpdatedAt = ts
	}
	return &rec, nil
}
