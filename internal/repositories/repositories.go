// Package repositories opens the local SQLite database, applies the
// embedded goose migrations and vends the concrete repositories.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/agendasync/internal/dbx"
	"github.com/dmitrijs2005/agendasync/internal/migrations"
	"github.com/dmitrijs2005/agendasync/internal/repositories/metadata"
	"github.com/dmitrijs2005/agendasync/internal/repositories/planner"
	"github.com/dmitrijs2005/agendasync/internal/repositories/schedule"
)

// Repositories groups the repositories sharing one *sql.DB.
type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
	Planner  planner.Repository
	Schedule schedule.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Open opens (creating if needed) the database at dsn and migrates it.
// SQLite allows one writer, so the pool is capped at one connection; this
// also keeps ":memory:" databases alive across calls.
func Open(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return New(db), nil
}

// New binds the repositories to an already migrated database.
func New(db *sql.DB) *Repositories {
	return bind(db, db)
}

func bind(db *sql.DB, q dbx.DBTX) *Repositories {
	return &Repositories{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(q),
		Planner:  planner.NewSQLiteRepository(q),
		Schedule: schedule.NewSQLiteRepository(q),
	}
}

// InTx runs fn with repositories bound to one transaction; it commits when
// fn returns nil. The pool has a single connection, so fn must not use r.
func (r *Repositories) InTx(ctx context.Context, fn func(tx *Repositories) error) error {
	return dbx.WithTx(ctx, r.DB, nil, func(ctx context.Context, q dbx.DBTX) error {
		return fn(bind(r.DB, q))
	})
}

// Close releases the database.
func (r *Repositories) Close() error {
	return r.DB.Close()
}
