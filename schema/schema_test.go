// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		Name: "users",
		Columns: []*Column{
			{Name: "id", Type: IntType{}, Arity: Required, AutoIncrement: true},
			{Name: "email", Type: StringType{Size: 255}, Arity: Required},
			{Name: "Bio", Type: StringType{}, Arity: Nullable},
		},
		PrimaryKey: &PrimaryKey{Columns: []int{0}},
		Indexes: []*Index{
			{Name: "idx_users_email", Kind: IndexUnique, Parts: []int{1}},
		},
	}
}

func TestSchemaTableLookup(t *testing.T) {
	s := &Schema{Tables: []*Table{sampleTable()}}

	tbl, id, ok := s.Table("users")
	require.True(t, ok)
	require.Equal(t, 0, id)
	require.Same(t, s.Tables[0], tbl)

	_, _, ok = s.Table("missing")
	require.False(t, ok)

	require.Same(t, tbl, s.TableAt(0))
}

func TestColumnLookupWithCustomEquality(t *testing.T) {
	tbl := sampleTable()

	_, _, ok := tbl.Column("bio", func(a, b string) bool { return a == b })
	require.False(t, ok, "case-sensitive equality should not match Bio")

	col, id, ok := tbl.Column("bio", strings.EqualFold)
	require.True(t, ok)
	require.Equal(t, 2, id)
	require.Equal(t, "Bio", col.Name)
}

func TestIsPartOfPrimaryKey(t *testing.T) {
	tbl := sampleTable()
	require.True(t, tbl.IsPartOfPrimaryKey(0))
	require.False(t, tbl.IsPartOfPrimaryKey(1))

	tbl.PrimaryKey = nil
	require.False(t, tbl.IsPartOfPrimaryKey(0))
}

func TestIndexColumnNamesAndCoverage(t *testing.T) {
	tbl := sampleTable()
	idx := tbl.Indexes[0]
	require.Equal(t, []string{"email"}, idx.ColumnNames(tbl))
	require.True(t, idx.CoversColumn(1))
	require.False(t, idx.CoversColumn(0))
}

func TestForeignKeyRefColumnNames(t *testing.T) {
	tbl := sampleTable()
	fk := &ForeignKey{Columns: []int{1}, RefTable: "accounts", RefColumns: []string{"email"}}
	require.Equal(t, []string{"email"}, fk.RefColumnNamesOf(tbl))
}

func TestEnumLookup(t *testing.T) {
	s := &Schema{Enums: []*Enum{{Name: "status", Values: []string{"active", "inactive"}}}}
	e, ok := s.Enum("status")
	require.True(t, ok)
	require.Equal(t, []string{"active", "inactive"}, e.Values)

	_, ok = s.Enum("missing")
	require.False(t, ok)
}
