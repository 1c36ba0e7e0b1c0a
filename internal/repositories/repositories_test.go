package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/agendasync/internal/models"
)

func TestOpen_MigratesAndWires(t *testing.T) {
	ctx := context.Background()
	repos, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	for _, table := range []string{"metadata", "subjects", "exams", "homework", "topics", "lessons", "sync_schedule"} {
		var name string
		err := repos.DB.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	s, err := repos.Schedule.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSchedule(), s)

	require.NoError(t, repos.Metadata.Set(ctx, "k", []byte("v")))
	subjects, err := repos.Planner.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, subjects)
}

func TestOpen_IsIdempotentOnReopen(t *testing.T) {
	ctx := context.Background()
	repos, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer repos.Close()

	require.NoError(t, RunMigrations(ctx, repos.DB))
}

func TestRunMigrations_Error(t *testing.T) {
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	_, err := Open(context.Background(), ":memory:")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestInTx_CommitsAndRollsBack(t *testing.T) {
	ctx := context.Background()
	repos, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer repos.Close()

	require.NoError(t, repos.InTx(ctx, func(tx *Repositories) error {
		return tx.Metadata.Set(ctx, "salt", []byte("s"))
	}))

	boom := errors.New("boom")
	err = repos.InTx(ctx, func(tx *Repositories) error {
		require.NoError(t, tx.Metadata.Set(ctx, "verifier", []byte("v")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	salt, err := repos.Metadata.Get(ctx, "salt")
	require.NoError(t, err)
	assert.Equal(t, []byte("s"), salt)

	verifier, err := repos.Metadata.Get(ctx, "verifier")
	require.NoError(t, err)
	assert.Nil(t, verifier)
}
