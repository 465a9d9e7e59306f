// Package sqlite implements the SnapshotStore port on an embedded SQLite
// database. Snapshots are stored as JSON payloads keyed by snapshot time;
// the schema never decomposes the metrics structure, so adding fields to
// BotMetrics needs no migration.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/fixtrace/internal/domain/model"
	"github.com/ericfisherdev/fixtrace/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SnapshotStore = (*SnapshotRepo)(nil)

// SnapshotRepo is the SQLite implementation of the SnapshotStore port.
type SnapshotRepo struct {
	db *DB
}

// NewSnapshotRepo creates a new SnapshotRepo backed by the given DB.
func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Archive persists one metrics snapshot as a JSON payload.
func (r *SnapshotRepo) Archive(ctx context.Context, m model.BotMetrics) error {
	const query = `INSERT INTO metrics_snapshots (id, snapshot_date, payload) VALUES (?, ?, ?)`

	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	stamp := m.SnapshotDate.Time().UTC().Format(time.RFC3339Nano)
	if _, err := r.db.Writer.ExecContext(ctx, query, uuid.NewString(), stamp, string(payload)); err != nil {
		return fmt.Errorf("archive snapshot %s: %w", stamp, err)
	}

	return nil
}

// History returns archived snapshots ordered oldest first. limit <= 0 returns
// every snapshot.
func (r *SnapshotRepo) History(ctx context.Context, limit int) ([]model.BotMetrics, error) {
	query := `SELECT payload FROM metrics_snapshots ORDER BY snapshot_date ASC`
	args := []any{}
	if limit > 0 {
		// Keep the most recent rows when capped, still returned oldest first.
		query = `SELECT payload FROM (
			SELECT payload, snapshot_date FROM metrics_snapshots
			ORDER BY snapshot_date DESC LIMIT ?
		) ORDER BY snapshot_date ASC`
		args = append(args, limit)
	}

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []model.BotMetrics{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}

		var m model.BotMetrics
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		snapshots = append(snapshots, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// Latest returns the most recently archived snapshot, or nil when the archive
// is empty.
func (r *SnapshotRepo) Latest(ctx context.Context) (*model.BotMetrics, error) {
	const query = `SELECT payload FROM metrics_snapshots ORDER BY snapshot_date DESC LIMIT 1`

	var payload string
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}

	var m model.BotMetrics
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return &m, nil
}
