// Package schema reads table and column names from the connected database
// and renders them as the plain-text description embedded in prompts.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/sqlchat/pkg/database"
	"github.com/papercomputeco/sqlchat/pkg/errkind"
)

// Table is one table (or view) and its column names in database order.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// Description is the ordered list of tables in the database.
type Description []Table

// String renders the description as "Tables: t1 (c1, c2), t2 (c1)".
func (d Description) String() string {
	parts := make([]string, 0, len(d))
	for _, t := range d {
		parts = append(parts, fmt.Sprintf("%s (%s)", t.Name, strings.Join(t.Columns, ", ")))
	}
	return "Tables: " + strings.Join(parts, ", ")
}

// Inspector lists tables and columns through a database.Runner. Nothing is
// cached: every call re-reads the metadata.
type Inspector struct {
	runner  database.Runner
	queries dialectQueries
	logger  *slog.Logger
}

// NewInspector creates an Inspector for the runner's dialect.
func NewInspector(runner database.Runner, logger *slog.Logger) *Inspector {
	return &Inspector{
		runner:  runner,
		queries: queriesFor(runner.Dialect()),
		logger:  logger,
	}
}

// Describe reads every table and its columns. Errors are SchemaInspectionFailure.
func (i *Inspector) Describe(ctx context.Context) (Description, error) {
	var desc Description

	err := i.runner.Run(ctx, func(q database.Queryer) error {
		tables, err := i.queries.tables(ctx, q)
		if err != nil {
			return err
		}

		desc = make(Description, 0, len(tables))
		for _, name := range tables {
			cols, err := i.queries.columns(ctx, q, name)
			if err != nil {
				i.logger.Debug("describing table failed", "table", name, "error", err)
				return err
			}
			desc = append(desc, Table{Name: name, Columns: cols})
		}
		return nil
	})
	if err != nil {
		return nil, errkind.Wrap(errkind.SchemaInspectionFailure, "inspecting schema", err)
	}

	return desc, nil
}

// DescribeSchema returns the rendered description, or the database error
// text in its place when the metadata cannot be read.
func (i *Inspector) DescribeSchema(ctx context.Context) string {
	desc, err := i.Describe(ctx)
	if err != nil {
		i.logger.Warn("schema inspection failed, using error text as schema", "error", err)
		return errkind.Detail(err)
	}

	text := desc.String()
	i.logger.Debug("schema described", "tables", len(desc), "length", len(text))

	return text
}

// dialectQueries holds the introspection statements of one SQL dialect.
type dialectQueries struct {
	tables  func(ctx context.Context, q database.Queryer) ([]string, error)
	columns func(ctx context.Context, q database.Queryer, table string) ([]string, error)
}

func queriesFor(d database.Dialect) dialectQueries {
	switch d {
	case database.Postgres:
		return dialectQueries{
			tables: func(ctx context.Context, q database.Queryer) ([]string, error) {
				return collect(ctx, q, 0, postgresTablesQuery)
			},
			columns: func(ctx context.Context, q database.Queryer, table string) ([]string, error) {
				return collect(ctx, q, 0, postgresColumnsQuery, table)
			},
		}

	case database.SQLite:
		return dialectQueries{
			tables: func(ctx context.Context, q database.Queryer) ([]string, error) {
				return collect(ctx, q, 0, sqliteTablesQuery)
			},
			columns: func(ctx context.Context, q database.Queryer, table string) ([]string, error) {
				return collect(ctx, q, 1, "PRAGMA table_info("+quoteIdent(table, '"')+")")
			},
		}

	default:
		return dialectQueries{
			tables: func(ctx context.Context, q database.Queryer) ([]string, error) {
				return collect(ctx, q, 0, "SHOW TABLES")
			},
			columns: func(ctx context.Context, q database.Queryer, table string) ([]string, error) {
				return collect(ctx, q, 0, "DESCRIBE "+quoteIdent(table, '`'))
			},
		}
	}
}

const (
	postgresTablesQuery = `SELECT table_name FROM information_schema.tables
WHERE table_schema = current_schema() AND table_type IN ('BASE TABLE', 'VIEW')
ORDER BY table_name`

	postgresColumnsQuery = `SELECT column_name FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1
ORDER BY ordinal_position`

	sqliteTablesQuery = `SELECT name FROM sqlite_master
WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
ORDER BY name`
)

// collect runs query and returns column idx of every row as text.
func collect(ctx context.Context, q database.Queryer, idx int, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if idx >= len(cols) {
		return nil, fmt.Errorf("query returned %d columns, need at least %d", len(cols), idx+1)
	}

	out := []string{}
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for j := range values {
			dest[j] = &values[j]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, values[idx].String)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// quoteIdent wraps name in quote, doubling any embedded quote characters.
func quoteIdent(name string, quote rune) string {
	q := string(quote)
	return q + strings.ReplaceAll(name, q, q+q) + q
}
