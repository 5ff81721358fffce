// Package database owns the single long-lived connection sqlchat answers
// questions against. One *sql.DB is opened per process and one dedicated
// *sql.Conn is taken from it; every statement runs on that connection while
// holding its lock.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/go-sql-driver/mysql" // register the MySQL/MariaDB driver as "mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3" // register the SQLite driver as "sqlite3"

	"github.com/papercomputeco/sqlchat/pkg/errkind"
)

// Queryer runs a statement and returns its rows. *sql.Conn and *sql.DB both
// satisfy it.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Runner hands out exclusive use of a Queryer for the duration of fn.
type Runner interface {
	Run(ctx context.Context, fn func(Queryer) error) error
	Dialect() Dialect
}

// Conn is the process-wide database connection.
type Conn struct {
	mu      sync.Mutex
	db      *sql.DB
	conn    *sql.Conn
	dialect Dialect
	logger  *slog.Logger
}

// Open connects to the database described by opts and pins one connection.
// Every failure is a StartupFailure.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Conn, error) {
	dialect, err := ParseDialect(opts.Driver)
	if err != nil {
		return nil, errkind.Wrap(errkind.StartupFailure, "resolving database driver", err)
	}

	dsn, err := BuildDSN(dialect, opts)
	if err != nil {
		return nil, errkind.Wrap(errkind.StartupFailure, "building database DSN", err)
	}

	var db *sql.DB
	if dialect == Postgres {
		connCfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, errkind.Wrap(errkind.StartupFailure, "parsing postgres DSN", err)
		}
		db = stdlib.OpenDB(*connCfg)
	} else {
		db, err = sql.Open(dialect.DriverName(), dsn)
		if err != nil {
			return nil, errkind.Wrap(errkind.StartupFailure, "opening database", err)
		}
	}

	c, err := New(ctx, db, dialect, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

// New pins a dedicated connection from db. The returned Conn owns db and
// closes it on Close.
func New(ctx context.Context, db *sql.DB, dialect Dialect, logger *slog.Logger) (*Conn, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, errkind.Wrap(errkind.StartupFailure, "connecting to database", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, errkind.Wrap(errkind.StartupFailure, "pinging database", err)
	}

	logger.Debug("database connection established", "dialect", string(dialect))

	return &Conn{
		db:      db,
		conn:    conn,
		dialect: dialect,
		logger:  logger,
	}, nil
}

// Run calls fn with exclusive use of the pinned connection. Rows returned by
// fn's queries must be fully consumed and closed before fn returns.
func (c *Conn) Run(ctx context.Context, fn func(Queryer) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return sql.ErrConnDone
	}

	return fn(c.conn)
}

// Dialect returns the SQL dialect of the connected database.
func (c *Conn) Dialect() Dialect {
	return c.dialect
}

// Ping checks the pinned connection is still alive.
func (c *Conn) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return sql.ErrConnDone
	}

	return c.conn.PingContext(ctx)
}

// Close releases the pinned connection and closes the underlying pool.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	connErr := c.conn.Close()
	c.conn = nil
	dbErr := c.db.Close()

	if connErr != nil {
		return fmt.Errorf("closing connection: %w", connErr)
	}
	if dbErr != nil {
		return fmt.Errorf("closing database: %w", dbErr)
	}
	return nil
}
