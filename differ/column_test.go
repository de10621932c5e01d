// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package differ_test

import (
	"testing"

	"ariga.io/schemadiff/dialect"
	"ariga.io/schemadiff/differ"
	"ariga.io/schemadiff/migration"
	"ariga.io/schemadiff/schema"
	"github.com/stretchr/testify/require"
)

func TestDiffColumnsDetectsArityAndDefaultChanges(t *testing.T) {
	flavour := dialect.NewSQLite()
	prev := &schema.Column{Name: "bio", Type: schema.StringType{}, Arity: schema.Required}
	next := &schema.Column{Name: "bio", Type: schema.StringType{}, Arity: schema.Nullable, Default: &schema.Expr{Text: "''"}}

	diff := differ.DiffColumns(flavour, prev, next)
	require.True(t, diff.Changes.Is(migration.ChangeArity))
	require.True(t, diff.Changes.Is(migration.ChangeNotNull))
	require.True(t, diff.Changes.Is(migration.ChangeDefault))
	require.False(t, diff.Changes.Is(migration.ChangeType))
	require.Nil(t, diff.TypeChange)
}

func TestDiffColumnsNoChange(t *testing.T) {
	flavour := dialect.NewSQLite()
	prev := &schema.Column{Name: "id", Type: schema.IntType{}, Arity: schema.Required}
	next := &schema.Column{Name: "id", Type: schema.IntType{}, Arity: schema.Required}

	diff := differ.DiffColumns(flavour, prev, next)
	require.False(t, diff.Changes.DiffersInSomething())
	require.Nil(t, diff.TypeChange)
}

func TestDiffColumnsIntegerAffinityIsNotAChangeOnSQLite(t *testing.T) {
	flavour := dialect.NewSQLite()
	prev := &schema.Column{Name: "count", Type: schema.IntType{}, Arity: schema.Required}
	next := &schema.Column{Name: "count", Type: schema.BigIntType{}, Arity: schema.Required}

	diff := differ.DiffColumns(flavour, prev, next)
	require.False(t, diff.Changes.DiffersInSomething())
}

func TestDiffColumnsStringWideningIsSameFamilyChange(t *testing.T) {
	flavour := dialect.NewSQLite()
	prev := &schema.Column{Name: "name", Type: schema.StringType{Size: 50}, Arity: schema.Required}
	next := &schema.Column{Name: "name", Type: schema.StringType{Size: 255}, Arity: schema.Required}

	diff := differ.DiffColumns(flavour, prev, next)
	require.True(t, diff.Changes.Is(migration.ChangeType))
	require.NotNil(t, diff.TypeChange)
}
