package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"gridbench/internal/log"
)

const queryTimeout = 30 * time.Second

// ErrNotQuery is returned when the SQL would not produce rows.
var ErrNotQuery = errors.New("statement does not return rows")

// QueryResult holds the text form of a SELECT-like query.
type QueryResult struct {
	Columns  []string
	Rows     [][]string
	ExecTime time.Duration
}

// isSelectLike returns true if the query returns rows.
func isSelectLike(sql string) bool {
	upper := strings.ToUpper(strings.TrimSpace(sql))
	return strings.HasPrefix(upper, "SELECT") ||
		strings.HasPrefix(upper, "WITH") ||
		strings.HasPrefix(upper, "TABLE") ||
		strings.HasPrefix(upper, "VALUES")
}

// TableQuery returns the SQL that reads every row of a table. name may be
// schema-qualified.
func TableQuery(name string) string {
	return "SELECT * FROM " + pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

// QueryGrid runs a read-only query and returns every value as the text
// PostgreSQL itself prints. SQL NULL becomes the empty string.
func (d *DB) QueryGrid(ctx context.Context, sql string) (*QueryResult, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return nil, fmt.Errorf("empty query")
	}
	if !isSelectLike(trimmed) {
		return nil, ErrNotQuery
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	// The simple protocol returns every column in text format.
	rows, err := d.conn.Query(ctx, trimmed, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var resultRows [][]string
	for rows.Next() {
		raw := rows.RawValues()
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = string(v)
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	elapsed := time.Since(start)
	log.Debug(log.CatDB, "query done", "rows", len(resultRows), "cols", len(columns), "elapsed", elapsed)
	return &QueryResult{
		Columns:  columns,
		Rows:     resultRows,
		ExecTime: elapsed,
	}, nil
}
