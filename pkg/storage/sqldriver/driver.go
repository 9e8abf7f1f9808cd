// Package sqldriver provides storage operations over database/sql.
// It is database-agnostic and is embedded by the sqlite and postgres drivers.
package sqldriver

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/papercomputeco/dispatch/pkg/storage"
)

// Dialect captures the differences between SQL backends.
type Dialect struct {
	// Schema creates the log table if it is absent.
	Schema string

	// Placeholder renders the i-th (1-based) bind parameter.
	Placeholder func(i int) string

	// Returning is set when INSERT ... RETURNING id is used instead of
	// LastInsertId.
	Returning bool
}

// QuestionPlaceholder renders "?" placeholders.
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder renders "$1", "$2", ... placeholders.
func DollarPlaceholder(i int) string { return "$" + strconv.Itoa(i) }

// Driver implements storage.Driver on a *sql.DB.
type Driver struct {
	DB      *sql.DB
	Dialect Dialect
}

// Migrate creates the log table if needed.
func (d *Driver) Migrate(ctx context.Context) error {
	if _, err := d.DB.ExecContext(ctx, d.Dialect.Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (d *Driver) Append(ctx context.Context, r *storage.LogRecord) error {
	if r == nil {
		return storage.ErrNilRecord
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	p := d.Dialect.Placeholder
	query := fmt.Sprintf(
		`INSERT INTO %s (query, response, agent_name, response_time, timestamp) VALUES (%s, %s, %s, %s, %s)`,
		storage.TableName, p(1), p(2), p(3), p(4), p(5),
	)
	args := []any{r.Query, r.Response, r.AgentName, r.ResponseTime, r.Timestamp.Format(storage.TimestampLayout)}

	if d.Dialect.Returning {
		if err := d.DB.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&r.ID); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
		return nil
	}

	res, err := d.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read record id: %w", err)
	}
	r.ID = id
	return nil
}

func (d *Driver) Recent(ctx context.Context, limit int) ([]*storage.LogRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT id, query, response, agent_name, response_time, timestamp FROM %s ORDER BY id DESC LIMIT %s`,
		storage.TableName, d.Dialect.Placeholder(1),
	)

	rows, err := d.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []*storage.LogRecord
	for rows.Next() {
		var (
			r                     storage.LogRecord
			q, resp, agent, stamp sql.NullString
			responseTime          sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &q, &resp, &agent, &responseTime, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		r.Query = q.String
		r.Response = resp.String
		r.AgentName = agent.String
		r.ResponseTime = responseTime.Float64
		if stamp.Valid && stamp.String != "" {
			ts, err := storage.ParseTimestamp(stamp.String)
			if err != nil {
				return nil, err
			}
			r.Timestamp = ts
		}

		records = append(records, &r)
	}

	return records, rows.Err()
}

func (d *Driver) Close() error {
	return d.DB.Close()
}
