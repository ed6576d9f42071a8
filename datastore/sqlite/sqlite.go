// Package sqlite implements the invocation log on a local SQLite database.
package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/onetakeda/sapio-webhooks/datastore"
)

const schema = `
CREATE TABLE IF NOT EXISTS invocations (
	id TEXT NOT NULL PRIMARY KEY,
	endpoint_path TEXT NOT NULL,
	handler TEXT NOT NULL,
	username TEXT NOT NULL DEFAULT '',
	passed INTEGER NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invocations_endpoint_path
	ON invocations (endpoint_path, created_at);
`

type InvocationRepo struct {
	db *sqlx.DB
}

var _ datastore.InvocationRepository = (*InvocationRepo)(nil)

// New opens (creating if needed) the SQLite database at dsn and migrates the
// schema.
func New(dsn string) (*InvocationRepo, error) {
	db, err := sqlx.Open("sqlite3", "file:"+dsn+"?cache=shared&_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}

	// sqlite handles one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "failed to migrate invocation schema")
	}

	return &InvocationRepo{db: db}, nil
}

func (r *InvocationRepo) Close() error {
	return r.db.Close()
}

func (r *InvocationRepo) CreateInvocation(ctx context.Context, inv *datastore.Invocation) error {
	query := `INSERT INTO invocations (id, endpoint_path, handler, username, passed, message, duration_ms, created_at)
	VALUES (:id, :endpoint_path, :handler, :username, :passed, :message, :duration_ms, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, inv)
	if err != nil {
		return errors.Wrap(err, "failed to insert invocation")
	}

	return nil
}

func (r *InvocationRepo) FindRecentInvocations(ctx context.Context, limit int) ([]datastore.Invocation, error) {
	query := `SELECT * FROM invocations ORDER BY created_at DESC, id DESC LIMIT ?`

	invocations := make([]datastore.Invocation, 0)
	if err := r.db.SelectContext(ctx, &invocations, query, limit); err != nil {
		return nil, errors.Wrap(err, "failed to fetch invocations")
	}

	return invocations, nil
}

func (r *InvocationRepo) FindInvocationsByEndpoint(ctx context.Context, endpointPath string, limit int) ([]datastore.Invocation, error) {
	query := `SELECT * FROM invocations WHERE endpoint_path = ? ORDER BY created_at DESC, id DESC LIMIT ?`

	invocations := make([]datastore.Invocation, 0)
	if err := r.db.SelectContext(ctx, &invocations, query, endpointPath, limit); err != nil {
		return nil, errors.Wrap(err, "failed to fetch invocations for endpoint")
	}

	return invocations, nil
}
