// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package connector

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/mattn/go-sqlite3"
)

// DatabaseURLInvalidError is returned when a connection string is
// malformed or names a path that cannot be a SQLite database file.
type DatabaseURLInvalidError struct {
	URL    string
	Reason string
}

func (e *DatabaseURLInvalidError) Error() string {
	return fmt.Sprintf("connector: invalid database url %q: %s", e.URL, e.Reason)
}

// IsDatabaseURLInvalidError reports whether err is, or wraps, a
// DatabaseURLInvalidError.
func IsDatabaseURLInvalidError(err error) bool {
	var e *DatabaseURLInvalidError
	return errors.As(err, &e)
}

// InvalidConnectionArgumentsError is returned when a connection
// string's query parameters are malformed (e.g. a non-numeric
// connection_limit).
type InvalidConnectionArgumentsError struct {
	Err error
}

func (e *InvalidConnectionArgumentsError) Error() string {
	return fmt.Sprintf("connector: invalid connection arguments: %s", e.Err)
}

func (e *InvalidConnectionArgumentsError) Unwrap() error { return e.Err }

// IsInvalidConnectionArgumentsError reports whether err is, or wraps,
// an InvalidConnectionArgumentsError.
func IsInvalidConnectionArgumentsError(err error) bool {
	var e *InvalidConnectionArgumentsError
	return errors.As(err, &e)
}

// UniqueConstraintViolationError is returned when a statement violates
// a UNIQUE or PRIMARY KEY constraint. Constraint is SQLite's raw,
// comma-joined "table.column" text rather than a decoded list of field
// names.
type UniqueConstraintViolationError struct {
	Constraint string
}

func (e *UniqueConstraintViolationError) Error() string {
	return fmt.Sprintf("connector: unique constraint violation on %q", e.Constraint)
}

// IsUniqueConstraintViolationError reports whether err is, or wraps, a
// UniqueConstraintViolationError.
func IsUniqueConstraintViolationError(err error) bool {
	var e *UniqueConstraintViolationError
	return errors.As(err, &e)
}

// NullConstraintViolationError is returned when a statement violates a
// NOT NULL constraint. Constraint is SQLite's raw "table.column" text,
// not a decoded list of field names.
type NullConstraintViolationError struct {
	Constraint string
}

func (e *NullConstraintViolationError) Error() string {
	return fmt.Sprintf("connector: null constraint violation on %q", e.Constraint)
}

// IsNullConstraintViolationError reports whether err is, or wraps, a
// NullConstraintViolationError.
func IsNullConstraintViolationError(err error) bool {
	var e *NullConstraintViolationError
	return errors.As(err, &e)
}

// DriverError wraps any error the underlying driver returned that
// doesn't map to one of this package's specific error types.
type DriverError struct {
	Err error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("connector: driver error: %s", e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

// IsDriverError reports whether err is, or wraps, a DriverError.
func IsDriverError(err error) bool {
	var e *DriverError
	return errors.As(err, &e)
}

// constraintName extracts the column or index name SQLite embeds in
// its constraint-violation error message, e.g.
// "UNIQUE constraint failed: users.email" -> "users.email".
var constraintNamePattern = regexp.MustCompile(`constraint failed: (.+)$`)

func constraintName(msg string) string {
	if m := constraintNamePattern.FindStringSubmatch(msg); len(m) == 2 {
		return m[1]
	}
	return ""
}

// mapSQLiteError translates a raw *sqlite3.Error into this package's
// closed error taxonomy, falling back to DriverError for anything it
// doesn't specifically recognize.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return &DriverError{Err: err}
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return &UniqueConstraintViolationError{Constraint: constraintName(sqliteErr.Error())}
	case sqlite3.ErrConstraintNotNull:
		return &NullConstraintViolationError{Constraint: constraintName(sqliteErr.Error())}
	default:
		return &DriverError{Err: err}
	}
}
