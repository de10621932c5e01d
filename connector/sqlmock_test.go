// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package connector

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// TestQueryRawWrapsUnrecognizedDriverErrors exercises the DriverError
// fallback path against a mocked database/sql driver, so an
// unrecognized failure (one that isn't a *sqlite3.Error at all) is
// still reported through this package's error taxonomy rather than
// leaking a raw driver error.
func TestQueryRawWrapsUnrecognizedDriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPrepare("SELECT 1").WillReturnError(errors.New("connection reset by peer"))

	conn := &Conn{db: db, info: &ConnectionInfo{File: ":memory:", DBName: "main"}}
	_, err = conn.QueryRaw(context.Background(), "SELECT 1")
	require.True(t, IsDriverError(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
