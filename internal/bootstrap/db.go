package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

type DBOptions struct {
	DSN      string
	MaxConns int
	PingTO   time.Duration
}

// OpenDB opens the direct-Postgres connection used in postgres remote mode.
func OpenDB(ctx context.Context, opt DBOptions) (*sql.DB, error) {
	if opt.DSN == "" {
		return nil, fmt.Errorf("REMOTE_DSN is not set")
	}
	if opt.MaxConns == 0 {
		opt.MaxConns = 10
	}
	if opt.PingTO == 0 {
		opt.PingTO = 3 * time.Second
	}

	db, err := sql.Open("postgres", opt.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	db.SetMaxOpenConns(opt.MaxConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// Fail fast
	pctx, cancel := context.WithTimeout(ctx, opt.PingTO)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}
