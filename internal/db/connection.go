package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"gridbench/internal/log"
)

const (
	connectTimeout = 10 * time.Second
	closeTimeout   = 5 * time.Second
)

// Params are the discrete fields of a PostgreSQL connection.
type Params struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// ConnString builds a postgres:// URI with sslmode=prefer.
func (p Params) ConnString() string {
	port := p.Port
	if port == "" {
		port = "5432"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + port,
		Path:     "/" + p.Database,
		RawQuery: "sslmode=prefer",
	}
	return u.String()
}

// DB wraps a pgx connection with metadata.
type DB struct {
	conn     *pgx.Conn
	host     string
	port     string
	user     string
	database string
}

// Connect opens a connection from discrete parameters.
func Connect(ctx context.Context, p Params) (*DB, error) {
	return ConnectURI(ctx, p.ConnString())
}

// ConnectURI opens a connection from a postgres:// URI, defaulting the port
// to 5432 and sslmode to prefer.
func ConnectURI(ctx context.Context, uri string) (*DB, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid URI: %w", err)
	}

	port := parsed.Port()
	if port == "" {
		port = "5432"
	}
	q := parsed.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "prefer")
		parsed.RawQuery = q.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	conn, err := pgx.Connect(ctx, parsed.String())
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", parsed.Redacted(), err)
	}

	d := &DB{
		conn:     conn,
		host:     parsed.Hostname(),
		port:     port,
		user:     parsed.User.Username(),
		database: strings.TrimPrefix(parsed.Path, "/"),
	}
	log.Info(log.CatDB, "connected", "target", d.ConnInfo())
	return d, nil
}

// Database returns the current database name.
func (d *DB) Database() string {
	return d.database
}

// Close closes the database connection.
func (d *DB) Close() {
	if d.conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	_ = d.conn.Close(ctx)
}

// Ping checks the connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	if d.conn == nil {
		return fmt.Errorf("not connected")
	}
	return d.conn.Ping(ctx)
}

// ConnInfo returns a display-safe connection string (no password).
func (d *DB) ConnInfo() string {
	return fmt.Sprintf("postgres://%s@%s:%s/%s", d.user, d.host, d.port, d.database)
}
