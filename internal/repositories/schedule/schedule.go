// Package schedule persists the single sync schedule row.
package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agendasync/internal/dbx"
	"github.com/dmitrijs2005/agendasync/internal/models"
)

type Repository interface {
	// Load returns models.DefaultSchedule when nothing was saved yet.
	Load(ctx context.Context) (models.SyncSchedule, error)
	Save(ctx context.Context, s models.SyncSchedule) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) (models.SyncSchedule, error) {
	var (
		s              models.SyncSchedule
		frequency      string
		lastSync, next sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT enabled, frequency, time, last_sync, next_sync
		FROM sync_schedule WHERE id = 1`).Scan(&s.Enabled, &frequency, &s.Time, &lastSync, &next)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultSchedule(), nil
	}
	if err != nil {
		return models.SyncSchedule{}, fmt.Errorf("failed to load schedule: %w", err)
	}

	s.Frequency = models.Frequency(frequency)
	s.LastSync = parseNullTime(lastSync)
	s.NextSync = parseNullTime(next)
	return s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s models.SyncSchedule) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_schedule (id, enabled, frequency, time, last_sync, next_sync)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			enabled = excluded.enabled,
			frequency = excluded.frequency,
			time = excluded.time,
			last_sync = excluded.last_sync,
			next_sync = excluded.next_sync
	`, s.Enabled, string(s.Frequency), s.Time, formatNullTime(s.LastSync), formatNullTime(s.NextSync))
	if err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}
