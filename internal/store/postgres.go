package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: sq.Dollar,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS participants (
			id BIGSERIAL PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			club TEXT NOT NULL DEFAULT '',
			gender TEXT NOT NULL,
			is_new BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS participants_created_at_idx ON participants (created_at)`,
	},
}

// OpenPostgres connects to url, waiting up to wait for the server to come up.
func OpenPostgres(ctx context.Context, url string, wait time.Duration) (*SQLStore, error) {
	cfg, err := pgx.ParseConfig(url)
	if err != nil {
		return nil, persistence("parse postgres url", err)
	}
	db := stdlib.OpenDB(*cfg)
	db.SetMaxOpenConns(10)

	if err := ping(ctx, db, wait); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := newSQLStore(db, postgresDialect)
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
