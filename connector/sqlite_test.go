// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package connector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseConnectionString(t *testing.T) {
	t.Run("file prefix with params", func(t *testing.T) {
		info, err := ParseConnectionString("file::memory:?connection_limit=1&db_name=primary")
		require.NoError(t, err)
		require.Equal(t, ":memory:", info.File)
		require.Equal(t, "primary", info.DBName)
		require.Equal(t, 1, info.ConnectionLimit)
	})

	t.Run("sqlite prefix defaults db_name", func(t *testing.T) {
		info, err := ParseConnectionString("sqlite::memory:")
		require.NoError(t, err)
		require.Equal(t, "quaint", info.DBName)
		require.Equal(t, 5*time.Second, info.SocketTimeout)
	})

	t.Run("unknown params are discarded, not rejected", func(t *testing.T) {
		info, err := ParseConnectionString("file::memory:?some_future_flag=true")
		require.NoError(t, err)
		require.Equal(t, ":memory:", info.File)
	})

	t.Run("missing prefix is rejected", func(t *testing.T) {
		_, err := ParseConnectionString(":memory:")
		require.True(t, IsDatabaseURLInvalidError(err))
	})

	t.Run("directory path is rejected", func(t *testing.T) {
		_, err := ParseConnectionString("file:.")
		require.True(t, IsDatabaseURLInvalidError(err))
	})

	t.Run("non-numeric connection_limit is rejected", func(t *testing.T) {
		_, err := ParseConnectionString("file::memory:?connection_limit=nope")
		require.True(t, IsInvalidConnectionArgumentsError(err))
	})

	t.Run("connection_limit parses and unknown keys are discarded", func(t *testing.T) {
		info, err := ParseConnectionString("file:db/test.db?connection_limit=4&unknown=x")
		require.NoError(t, err)
		require.Equal(t, "db/test.db", info.File)
		require.Equal(t, 4, info.ConnectionLimit)
		require.Equal(t, "quaint", info.DBName)
	})

	t.Run("a directory path fails with DatabaseUrlIsInvalid", func(t *testing.T) {
		_, err := ParseConnectionString("sqlite:/etc")
		require.True(t, IsDatabaseURLInvalidError(err))
	})
}

func TestConnQueryAndCmd(t *testing.T) {
	ctx := context.Background()
	conn, err := Open("file::memory:")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.RawCmd(ctx, `
		CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL UNIQUE);
		INSERT INTO users (email) VALUES ('a@example.com');
	`))

	rs, err := conn.QueryRaw(ctx, "SELECT id, email FROM users WHERE email = ?", "a@example.com")
	require.NoError(t, err)
	require.Equal(t, []string{"id", "email"}, rs.Columns)
	require.Len(t, rs.Rows, 1)
	require.Equal(t, "a@example.com", rs.Rows[0][1])
}

func TestConnUniqueConstraintViolation(t *testing.T) {
	ctx := context.Background()
	conn, err := Open("file::memory:")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.RawCmd(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL UNIQUE)`))
	_, err = conn.QueryRaw(ctx, "INSERT INTO users (email) VALUES (?)", "a@example.com")
	require.NoError(t, err)

	_, err = conn.QueryRaw(ctx, "INSERT INTO users (email) VALUES (?)", "a@example.com")
	require.True(t, IsUniqueConstraintViolationError(err))
}

func TestConnNullConstraintViolation(t *testing.T) {
	ctx := context.Background()
	conn, err := Open("file::memory:")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.RawCmd(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL)`))
	_, err = conn.QueryRaw(ctx, "INSERT INTO users (id) VALUES (1)")
	require.True(t, IsNullConstraintViolationError(err))
}

func TestConnWithTransactionTogglesForeignKeys(t *testing.T) {
	ctx := context.Background()
	conn, err := Open("file::memory:")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.RawCmd(ctx, `PRAGMA foreign_keys = ON`))
	require.NoError(t, conn.RawCmd(ctx, `CREATE TABLE parents (id INTEGER PRIMARY KEY)`))
	require.NoError(t, conn.RawCmd(ctx, `CREATE TABLE children (id INTEGER PRIMARY KEY, parent_id INTEGER REFERENCES parents(id))`))

	err = conn.WithTransaction(ctx, func(tx *Tx) error {
		_, err := tx.QueryRaw(ctx, "INSERT INTO children (id, parent_id) VALUES (1, 999)")
		return err
	})
	require.NoError(t, err)

	var on int
	require.NoError(t, conn.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on))
	require.Equal(t, 1, on)
}
