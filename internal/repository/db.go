package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

type Config struct {
	Driver      string // sqlite | pgx
	DSN         string
	MaxConns    int32
	DialTimeout time.Duration
}

// DB is a *sql.DB that remembers its dialect.
type DB struct {
	*sql.DB
	driver string
	pool   *pgxpool.Pool
}

// Open connects to the ledger database and creates the schema if needed.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	logger.Info("connecting to ledger database", "driver", cfg.Driver)

	var db *DB
	switch cfg.Driver {
	case DriverSQLite, "":
		sdb, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			logger.Error("failed to open sqlite ledger", "error", err)
			return nil, err
		}
		// one writer; avoids SQLITE_BUSY between the pipeline and history queries
		sdb.SetMaxOpenConns(1)
		db = &DB{DB: sdb, driver: DriverSQLite}
	case DriverPostgres:
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("failed to parse ledger dsn", "error", err)
			return nil, err
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "deepread-extract"

		dctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(dctx, pc)
		if err != nil {
			logger.Error("failed to connect to ledger database", "error", err)
			return nil, err
		}
		db = &DB{DB: stdlib.OpenDBFromPool(pool), driver: DriverPostgres, pool: pool}
	default:
		return nil, fmt.Errorf("unsupported ledger driver %q", cfg.Driver)
	}

	if err := db.migrate(ctx); err != nil {
		logger.Error("ledger migration failed", "error", err)
		_ = db.Close()
		return nil, err
	}
	logger.Info("ledger database ready", "driver", db.driver)
	return db, nil
}

// Driver returns the dialect name.
func (db *DB) Driver() string { return db.driver }

// Close closes the database connections.
func (db *DB) Close() error {
	err := db.DB.Close()
	if db.pool != nil {
		db.pool.Close()
	}
	return err
}

func (db *DB) migrate(ctx context.Context) error {
	ts, id := "TIMESTAMP", "TEXT"
	if db.driver == DriverPostgres {
		ts, id = "TIMESTAMPTZ", "UUID"
	}
	ddl := `CREATE TABLE IF NOT EXISTS extract_runs (
	id            ` + id + ` PRIMARY KEY,
	source_path   TEXT NOT NULL,
	language      TEXT NOT NULL,
	process_type  TEXT NOT NULL,
	status        TEXT NOT NULL,
	json_path     TEXT NOT NULL DEFAULT '',
	image_path    TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	started_at    ` + ts + ` NOT NULL,
	finished_at   ` + ts + `
)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create extract_runs: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS extract_runs_started_at_idx ON extract_runs (started_at)`); err != nil {
		return fmt.Errorf("create extract_runs index: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HealthCheck pings the database.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
