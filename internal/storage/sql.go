package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/checksum"
)

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const postgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	data       BYTEA NOT NULL,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// SQL is a Store backed by a documents table in SQLite or PostgreSQL.
type SQL struct {
	conn     *sql.DB
	dialect  string
	numbered bool // $1 placeholders instead of ?
}

// OpenSQLite opens (or creates) the SQLite database and applies the schema.
func OpenSQLite(ctx context.Context, dsn string) (*SQL, error) {
	conn, err := sql.Open("sqlite3", sqliteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	return initSQL(ctx, conn, "sqlite", false, sqliteSchemaSQL)
}

// sqliteDSN appends the WAL and busy timeout options to dsn, keeping any
// query parameters it already carries.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_journal_mode=WAL&_busy_timeout=5000"
}

// OpenPostgres connects through the pgx stdlib driver and applies the
// schema.
func OpenPostgres(ctx context.Context, databaseURL string) (*SQL, error) {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}
	conn.SetConnMaxIdleTime(5 * time.Minute)
	conn.SetConnMaxLifetime(30 * time.Minute)
	conn.SetMaxIdleConns(5)
	conn.SetMaxOpenConns(10)
	return initSQL(ctx, conn, "postgres", true, postgresSchemaSQL)
}

func initSQL(ctx context.Context, conn *sql.DB, dialect string, numbered bool, schema string) (*SQL, error) {
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", dialect, err)
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply %s schema: %w", dialect, err)
	}
	return &SQL{conn: conn, dialect: dialect, numbered: numbered}, nil
}

// rebind rewrites ? placeholders for drivers that number them.
func (s *SQL) rebind(query string) string {
	if !s.numbered {
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

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.conn.QueryRowContext(ctx, s.rebind(`SELECT data FROM documents WHERE id = ?`), key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: get %s: %w", key, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return data, nil
}

func (s *SQL) Set(ctx context.Context, key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx, s.rebind(`
		INSERT INTO documents (id, data, checksum, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data       = excluded.data,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`), key, data, checksum.Sum(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	res, err := s.conn.ExecContext(ctx, s.rebind(`DELETE FROM documents WHERE id = ?`), key)
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("storage: delete %s: %w", key, apperr.ErrNotFound)
	}
	return nil
}

func (s *SQL) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, checksum, updated_at FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Checksum, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("storage: list scan: %w", err)
		}
		e.UpdatedAt = e.UpdatedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQL) Close() error {
	return s.conn.Close()
}
