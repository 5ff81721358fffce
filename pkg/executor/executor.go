// Package executor runs generated SQL verbatim on the shared connection and
// turns every outcome, including database errors, into a Result value.
package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/sqlchat/pkg/database"
	"github.com/papercomputeco/sqlchat/pkg/errkind"
)

// Success holds the column names and every materialised row of a statement.
type Success struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Failure holds the database error text of a statement that did not run.
type Failure struct {
	Message string `json:"message"`
}

// Result is exactly one of Success or Failure.
type Result struct {
	Success *Success `json:"success,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

// Failed reports whether the statement failed.
func (r Result) Failed() bool {
	return r.Failure != nil
}

// RowCount is the number of rows of a successful result, 0 otherwise.
func (r Result) RowCount() int {
	if r.Success == nil {
		return 0
	}
	return len(r.Success.Rows)
}

func succeeded(columns []string, rows [][]any) Result {
	return Result{Success: &Success{Columns: columns, Rows: rows}}
}

func failed(message string) Result {
	return Result{Failure: &Failure{Message: message}}
}

// Executor runs statements through a database.Runner.
type Executor struct {
	runner database.Runner
	logger *slog.Logger
}

func NewExecutor(runner database.Runner, logger *slog.Logger) *Executor {
	return &Executor{
		runner: runner,
		logger: logger,
	}
}

// Execute submits sql unchanged and materialises all of its rows. It never
// returns an error: every database problem becomes a Failure.
func (e *Executor) Execute(ctx context.Context, sql string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic while executing statement", "sql", sql, "panic", r)
			result = failed(fmt.Sprint(r))
		}
	}()

	var (
		columns []string
		rows    [][]any
	)

	err := e.runner.Run(ctx, func(q database.Queryer) error {
		var err error
		columns, rows, err = query(ctx, q, sql)
		return err
	})
	if err != nil {
		err = errkind.Wrap(errkind.ExecutionFailure, "executing statement", err)
		e.logger.Warn("statement failed", "sql", sql, "error", err)
		return failed(errkind.Detail(err))
	}

	e.logger.Debug("statement executed", "sql", sql, "columns", len(columns), "rows", len(rows))

	return succeeded(columns, rows)
}

func query(ctx context.Context, q database.Queryer, sql string) ([]string, [][]any, error) {
	rs, err := q.QueryContext(ctx, sql)
	if err != nil {
		return nil, nil, err
	}
	defer rs.Close()

	columns, err := rs.Columns()
	if err != nil {
		return nil, nil, err
	}
	if columns == nil {
		columns = []string{}
	}

	rows := [][]any{}
	for rs.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}

		if err := rs.Scan(dest...); err != nil {
			return nil, nil, err
		}

		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		rows = append(rows, values)
	}

	if err := rs.Err(); err != nil {
		return nil, nil, err
	}

	return columns, rows, nil
}
