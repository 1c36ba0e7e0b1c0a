package schedule

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/agendasync/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE sync_schedule (
    id        INTEGER PRIMARY KEY CHECK (id = 1),
    enabled   INTEGER NOT NULL DEFAULT 0,
    frequency TEXT NOT NULL DEFAULT 'daily',
    time      TEXT NOT NULL DEFAULT '07:00',
    last_sync TEXT,
    next_sync TEXT
);`)
	require.NoError(t, err)
	return db
}

func TestLoad_DefaultWhenEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	s, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSchedule(), s)
}

func TestSaveThenLoad_SingleRow(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	next := time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)
	require.NoError(t, r.Save(ctx, models.SyncSchedule{Enabled: true, Frequency: models.FrequencyDaily, Time: "08:00", NextSync: &next}))

	last := time.Date(2025, 3, 11, 8, 0, 5, 0, time.UTC)
	require.NoError(t, r.Save(ctx, models.SyncSchedule{Enabled: true, Frequency: models.FrequencyWeekly, Time: "08:00", LastSync: &last, NextSync: &next}))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sync_schedule`).Scan(&n))
	assert.Equal(t, 1, n)

	s, err := r.Load(ctx)
	require.NoError(t, err)
	assert.True(t, s.Enabled)
	assert.Equal(t, models.FrequencyWeekly, s.Frequency)
	require.NotNil(t, s.LastSync)
	assert.True(t, last.Equal(*s.LastSync))
	require.NotNil(t, s.NextSync)
	assert.True(t, next.Equal(*s.NextSync))
}

func TestLoad_WrapsDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("database is locked")
	mock.ExpectQuery(`FROM sync_schedule`).WillReturnError(boom)

	_, err = NewSQLiteRepository(db).Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to load schedule")
}
