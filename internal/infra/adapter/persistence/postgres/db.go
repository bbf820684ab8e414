package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"leadscout/internal/observability/metrics"
)

// DB is the query surface the repositories need. Both *sql.DB and the
// resilience layer's DBCircuitBreaker satisfy it.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// instrumentedDB records query durations around an inner DB.
type instrumentedDB struct {
	inner DB
}

// Instrument wraps db so every query reports its duration to the
// db_query_duration_seconds histogram, labeled by SQL verb.
func Instrument(db DB) DB {
	return &instrumentedDB{inner: db}
}

func (d *instrumentedDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.inner.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery(queryOp(query), time.Since(start))
	return rows, err
}

func (d *instrumentedDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := d.inner.ExecContext(ctx, query, args...)
	metrics.RecordDBQuery(queryOp(query), time.Since(start))
	return result, err
}

func (d *instrumentedDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := d.inner.QueryRowContext(ctx, query, args...)
	metrics.RecordDBQuery(queryOp(query), time.Since(start))
	return row
}

// queryOp extracts the leading SQL verb for the metric label.
func queryOp(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
