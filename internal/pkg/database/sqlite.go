package database

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// NewSQLite opens an embedded SQLite database for local single-node runs and tests.
// A single connection serializes writers; sqlite has no row locks to hand out anyway.
func NewSQLite(path string) (*sqlx.DB, error) {
	dsn := strings.TrimPrefix(path, "sqlite://")
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	log.Info().Str("path", dsn).Msg("Opened SQLite database")
	return db, nil
}
