package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const tablesSQL = `
	SELECT table_schema, table_name
	FROM information_schema.tables
	WHERE table_type IN ('BASE TABLE', 'VIEW')
	  AND table_schema NOT IN ('pg_catalog', 'information_schema')
	  AND table_schema NOT LIKE 'pg_toast%'
	ORDER BY table_schema <> 'public', table_schema, table_name
`

type tableRef struct {
	Schema string
	Name   string
}

// qualified drops the schema for public tables, matching what TableQuery
// accepts.
func (t tableRef) qualified() string {
	if t.Schema == "public" || t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// ListTables returns tables and views the user can open, public ones
// first and unqualified.
func (d *DB) ListTables(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	rows, err := d.conn.Query(ctx, tablesSQL)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	refs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[tableRef])
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.qualified()
	}
	return names, nil
}
