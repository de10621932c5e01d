// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package connector provides a small SQLite connection adapter for
// the differ's test harness: a single-connection, mutex-guarded
// wrapper around database/sql plus the mattn/go-sqlite3 driver that
// parses a connector-style connection string, runs raw queries and
// scripts, and maps SQLite's constraint-violation errors to a closed
// error taxonomy. It is not a general-purpose driver: no pooling, no
// introspection, no migration execution.
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
)

// ConnectionInfo is the parsed form of a "file:" or "sqlite:"
// connection string.
type ConnectionInfo struct {
	// File is the path to the database file, or ":memory:" for an
	// in-memory database.
	File string
	// DBName is the logical schema name attached databases are
	// addressed under; it defaults to "quaint".
	DBName string
	// ConnectionLimit caps the number of connections database/sql may
	// open for this DB. SQLite only ever serializes writes through one
	// connection anyway, but the adapter honors an explicit limit.
	ConnectionLimit int
	// SocketTimeout bounds how long a busy database is waited on
	// before returning SQLITE_BUSY.
	SocketTimeout time.Duration
}

// ParseConnectionString parses a connection string of the form
// "file:path/to/db.sqlite?connection_limit=1&db_name=main" or
// "sqlite:path/to/db.sqlite". Recognized query parameters are
// connection_limit, db_name and socket_timeout; any other parameter is
// accepted and ignored, mirroring how permissive connector-string
// parsers in this family of tools tend to be about forward
// compatibility.
func ParseConnectionString(raw string) (*ConnectionInfo, error) {
	rest, ok := stripKnownPrefix(raw)
	if !ok {
		return nil, &DatabaseURLInvalidError{URL: raw, Reason: "must start with \"file:\" or \"sqlite:\""}
	}

	path, query := rest, ""
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		path, query = rest[:i], rest[i+1:]
	}
	if path == "" {
		return nil, &DatabaseURLInvalidError{URL: raw, Reason: "missing database file path"}
	}

	info := &ConnectionInfo{File: path, DBName: "quaint", SocketTimeout: 5 * time.Second}
	if path != ":memory:" {
		if fi, err := os.Stat(path); err == nil && fi.IsDir() {
			return nil, &DatabaseURLInvalidError{URL: raw, Reason: "path is a directory, not a database file"}
		}
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, &InvalidConnectionArgumentsError{Err: err}
	}
	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		v := vs[0]
		switch key {
		case "connection_limit":
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, &InvalidConnectionArgumentsError{Err: fmt.Errorf("connection_limit: %w", err)}
			}
			info.ConnectionLimit = n
		case "db_name":
			info.DBName = v
		case "socket_timeout":
			secs, err := strconv.Atoi(v)
			if err != nil {
				return nil, &InvalidConnectionArgumentsError{Err: fmt.Errorf("socket_timeout: %w", err)}
			}
			info.SocketTimeout = time.Duration(secs) * time.Second
		default:
			// Unknown parameters are discarded rather than rejected: a
			// newer caller may pass options this adapter doesn't
			// understand yet.
		}
	}
	return info, nil
}

func stripKnownPrefix(raw string) (string, bool) {
	for _, prefix := range []string{"file:", "sqlite:"} {
		if strings.HasPrefix(raw, prefix) {
			return strings.TrimPrefix(raw, prefix), true
		}
	}
	return "", false
}

// Conn is a single SQLite connection guarded by a mutex: SQLite
// serializes writers at the file level anyway, and the test harness
// this adapter serves never needs concurrent access to outrun that.
type Conn struct {
	mu   sync.Mutex
	db   *sql.DB
	info *ConnectionInfo
}

// Open parses connStr and opens the database it names.
func Open(connStr string) (*Conn, error) {
	info, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("%s?_busy_timeout=%d", info.File, info.SocketTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &DriverError{Err: err}
	}
	db.SetMaxOpenConns(1)
	if info.ConnectionLimit > 0 {
		db.SetMaxOpenConns(info.ConnectionLimit)
	}
	return &Conn{db: db, info: info}, nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.db.Close()
}

// Info returns the ConnectionInfo this Conn was opened with.
func (c *Conn) Info() *ConnectionInfo {
	return c.info
}

// AttachDatabase attaches the database file at path under schemaName,
// unless PRAGMA database_list already lists it as attached, and
// enables foreign-key enforcement for the connection.
func (c *Conn) AttachDatabase(ctx context.Context, path, schemaName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	attached, err := c.isAttached(ctx, schemaName)
	if err != nil {
		return err
	}
	if !attached {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("ATTACH DATABASE %s AS %s", quoteLiteral(path), quoteIdent(schemaName))); err != nil {
			return mapSQLiteError(err)
		}
		again, err := c.isAttached(ctx, schemaName)
		if err != nil {
			return err
		}
		if !again {
			return &DriverError{Err: fmt.Errorf("attach database: %q not found in database_list after ATTACH", schemaName)}
		}
	}
	if _, err := c.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return &DriverError{Err: fmt.Errorf("enabling foreign_keys after attach: %w", err)}
	}
	return nil
}

// isAttached reports whether schemaName already appears in
// PRAGMA database_list, the witness a live SQLite session uses to
// confirm an ATTACH actually took effect.
func (c *Conn) isAttached(ctx context.Context, schemaName string) (bool, error) {
	rows, err := c.db.QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return false, mapSQLiteError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var seq int
		var name, file string
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return false, &DriverError{Err: err}
		}
		if strings.EqualFold(name, schemaName) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Row is one row of a QueryRaw result, indexed by column position.
type Row []any

// ResultSet is the materialized result of QueryRaw: every row is read
// into memory up front since callers always want the whole window of
// rows a test fixture query returns.
type ResultSet struct {
	Columns      []string
	Rows         []Row
	LastInsertID int64
	RowsAffected int64
}

// QueryRaw prepares query, runs it with args bound positionally, and
// materializes every row into a ResultSet. The statement is prepared
// and closed on every call; prepared statements are not cached.
func (c *Conn) QueryRaw(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &DriverError{Err: err}
	}
	rs := &ResultSet{Columns: cols}
	for rows.Next() {
		row := make(Row, len(cols))
		scanTargets := make([]any, len(cols))
		for i := range row {
			scanTargets[i] = &row[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, &DriverError{Err: err}
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	var lastID int64
	if err := c.db.QueryRowContext(ctx, "SELECT last_insert_rowid()").Scan(&lastID); err == nil {
		rs.LastInsertID = lastID
	}
	return rs, nil
}

// RawCmd executes script, which may contain multiple semicolon
// separated statements, as a single batch. It is for DDL and fixture
// setup, not for statements whose results the caller needs back.
func (c *Conn) RawCmd(ctx context.Context, script string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.db.Conn(ctx)
	if err != nil {
		return &DriverError{Err: err}
	}
	defer conn.Close()

	var execErr error
	err = conn.Raw(func(driverConn any) error {
		raw, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("connector: unexpected driver connection type %T", driverConn)
		}
		_, execErr = raw.Exec(script, nil)
		return nil
	})
	if err != nil {
		return &DriverError{Err: err}
	}
	if execErr != nil {
		return mapSQLiteError(execErr)
	}
	return nil
}

// Tx wraps a database/sql transaction. Callers get one back from
// WithTransaction; they should never call Commit or Rollback
// themselves.
type Tx struct {
	tx *sql.Tx
}

// QueryRaw runs query against the transaction, exactly like
// Conn.QueryRaw.
func (t *Tx) QueryRaw(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &DriverError{Err: err}
	}
	rs := &ResultSet{Columns: cols}
	for rows.Next() {
		row := make(Row, len(cols))
		scanTargets := make([]any, len(cols))
		for i := range row {
			scanTargets[i] = &row[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, &DriverError{Err: err}
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	var lastID int64
	if err := t.tx.QueryRowContext(ctx, "SELECT last_insert_rowid()").Scan(&lastID); err == nil {
		rs.LastInsertID = lastID
	}
	return rs, nil
}

// RawCmd executes script against the transaction.
func (t *Tx) RawCmd(ctx context.Context, script string) error {
	if _, err := t.tx.ExecContext(ctx, script); err != nil {
		return mapSQLiteError(err)
	}
	return nil
}

// WithTransaction runs fn inside a transaction, toggling the
// foreign_keys pragma off around it and back on afterward. SQLite
// refuses to let a transaction touch the foreign_keys pragma, so a
// transaction that needs to violate referential integrity midway
// through (as a schema-redefine's copy-and-swap dance does) has to
// have the pragma disabled before it opens.
func (c *Conn) WithTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var on sql.NullBool
	if err := c.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on); err != nil {
		return &DriverError{Err: fmt.Errorf("querying foreign_keys pragma: %w", err)}
	}
	if on.Bool {
		if _, err := c.db.ExecContext(ctx, "PRAGMA foreign_keys = off"); err != nil {
			return &DriverError{Err: fmt.Errorf("set foreign_keys = off: %w", err)}
		}
	}
	restore := func() error {
		if !on.Bool {
			return nil
		}
		if _, err := c.db.ExecContext(ctx, "PRAGMA foreign_keys = on"); err != nil {
			return &DriverError{Err: fmt.Errorf("set foreign_keys = on: %w", err)}
		}
		return nil
	}

	sqlTx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		_ = restore()
		return &DriverError{Err: err}
	}
	if err := fn(&Tx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		_ = restore()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		_ = restore()
		return mapSQLiteError(err)
	}
	return restore()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
