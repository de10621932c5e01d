// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package differ_test

import (
	"testing"

	"ariga.io/schemadiff/dialect"
	"ariga.io/schemadiff/differ"
	"ariga.io/schemadiff/migration"
	"ariga.io/schemadiff/pair"
	"ariga.io/schemadiff/schema"
	"github.com/stretchr/testify/require"
)

func usersTable(cols ...*schema.Column) *schema.Table {
	return &schema.Table{
		Name:       "users",
		Columns:    cols,
		PrimaryKey: &schema.PrimaryKey{Columns: []int{0}},
	}
}

func idColumn() *schema.Column {
	return &schema.Column{Name: "id", Type: schema.IntType{}, Arity: schema.Required, AutoIncrement: true}
}

func TestDiffCreatesNewTable(t *testing.T) {
	prev := &schema.Schema{}
	next := &schema.Schema{Tables: []*schema.Table{usersTable(idColumn())}}

	steps := differ.Diff(pair.New(prev, next), dialect.NewSQLite())
	require.Len(t, steps, 1)
	require.Equal(t, migration.CreateTable{TableID: 0}, steps[0])
}

func TestDiffDropsRemovedTable(t *testing.T) {
	prev := &schema.Schema{Tables: []*schema.Table{usersTable(idColumn())}}
	next := &schema.Schema{}

	steps := differ.Diff(pair.New(prev, next), dialect.NewSQLite())
	require.Len(t, steps, 1)
	require.Equal(t, migration.DropTable{TableID: 0}, steps[0])
}

func TestDiffAddsColumnInPlace(t *testing.T) {
	prev := &schema.Schema{Tables: []*schema.Table{usersTable(idColumn())}}
	next := &schema.Schema{Tables: []*schema.Table{usersTable(
		idColumn(),
		&schema.Column{Name: "email", Type: schema.StringType{Size: 255}, Arity: schema.Required},
	)}}

	steps := differ.Diff(pair.New(prev, next), dialect.NewSQLite())
	require.Len(t, steps, 1)
	alter, ok := steps[0].(migration.AlterTable)
	require.True(t, ok)
	require.Equal(t, pair.New(0, 0), alter.TableIDs)
	require.Equal(t, []migration.TableChange{migration.AddColumn{ColumnID: 1}}, alter.Changes)
}

func TestDiffTypeChangeForcesRedefineOnSQLite(t *testing.T) {
	prev := &schema.Schema{Tables: []*schema.Table{usersTable(
		idColumn(),
		&schema.Column{Name: "age", Type: schema.StringType{Size: 10}, Arity: schema.Required},
	)}}
	next := &schema.Schema{Tables: []*schema.Table{usersTable(
		idColumn(),
		&schema.Column{Name: "age", Type: schema.IntType{}, Arity: schema.Required},
	)}}

	steps := differ.Diff(pair.New(prev, next), dialect.NewSQLite())
	require.Len(t, steps, 1)
	redefine, ok := steps[0].(migration.RedefineTables)
	require.True(t, ok)
	require.Len(t, redefine.Tables, 1)
	require.Equal(t, pair.New(0, 0), redefine.Tables[0].TableIDs)
}

func TestDiffCreatedIndex(t *testing.T) {
	base := func() []*schema.Column { return []*schema.Column{idColumn()} }
	prev := &schema.Schema{Tables: []*schema.Table{usersTable(base()...)}}
	next := &schema.Schema{Tables: []*schema.Table{{
		Name:       "users",
		Columns:    base(),
		PrimaryKey: &schema.PrimaryKey{Columns: []int{0}},
		Indexes:    []*schema.Index{{Name: "idx_users_id", Kind: schema.IndexUnique, Parts: []int{0}}},
	}}}

	steps := differ.Diff(pair.New(prev, next), dialect.NewSQLite())
	require.Len(t, steps, 1)
	create, ok := steps[0].(migration.CreateIndex)
	require.True(t, ok)
	require.Equal(t, 0, create.IndexIndex)
	require.Equal(t, 0, create.NextTableID)
}

func TestDiffCreatesEnumOnPostgres(t *testing.T) {
	prev := &schema.Schema{}
	next := &schema.Schema{Enums: []*schema.Enum{{Name: "status", Values: []string{"active", "inactive"}}}}

	steps := differ.Diff(pair.New(prev, next), dialect.NewPostgres())
	require.Len(t, steps, 1)
	require.Equal(t, migration.CreateEnum{Index: 0}, steps[0])
}

func TestDiffPreservesEnumDefaultUsageAcrossAlterEnum(t *testing.T) {
	prev := &schema.Schema{
		Enums: []*schema.Enum{{Name: "status", Values: []string{"active", "inactive"}}},
		Tables: []*schema.Table{{
			Name: "users",
			Columns: []*schema.Column{
				{Name: "state", Type: schema.EnumType{Enum: "status"}, Default: &schema.Expr{Text: "'active'"}},
			},
		}},
	}
	next := &schema.Schema{
		Enums: []*schema.Enum{{Name: "status", Values: []string{"active", "inactive", "pending"}}},
		Tables: []*schema.Table{{
			Name: "users",
			Columns: []*schema.Column{
				{Name: "state", Type: schema.EnumType{Enum: "status"}, Default: &schema.Expr{Text: "'active'"}},
			},
		}},
	}

	steps := differ.Diff(pair.New(prev, next), dialect.NewPostgres())
	require.Len(t, steps, 1)
	alter, ok := steps[0].(migration.AlterEnum)
	require.True(t, ok)
	require.Equal(t, pair.New(0, 0), alter.Enums)
	require.Equal(t, []migration.EnumDefaultUsage{{
		Previous: migration.ColumnRef{TableID: 0, ColumnID: 0},
		Next:     &migration.ColumnRef{TableID: 0, ColumnID: 0},
	}}, alter.PreviousUsagesAsDefault)
}

func TestDiffNotCastableColumnOnPrimaryKeyRecreatesKeyOnMSSQL(t *testing.T) {
	prev := &schema.Schema{Tables: []*schema.Table{{
		Name:       "users",
		Columns:    []*schema.Column{{Name: "id", Type: schema.BooleanType{}, Arity: schema.Required}},
		PrimaryKey: &schema.PrimaryKey{Columns: []int{0}},
	}}}
	next := &schema.Schema{Tables: []*schema.Table{{
		Name:       "users",
		Columns:    []*schema.Column{{Name: "id", Type: schema.BinaryType{}, Arity: schema.Required}},
		PrimaryKey: &schema.PrimaryKey{Columns: []int{0}},
	}}}

	steps := differ.Diff(pair.New(prev, next), dialect.NewMSSQL())
	require.Len(t, steps, 1)
	alter, ok := steps[0].(migration.AlterTable)
	require.True(t, ok)
	require.Equal(t, []migration.TableChange{
		migration.DropPrimaryKey{},
		migration.DropAndRecreateColumn{
			ColumnIDs: pair.New(0, 0),
			Changes:   migration.ChangeType,
		},
		migration.AddPrimaryKey{},
	}, alter.Changes)
}

func TestForeignKeysDoNotMatchOnListArityMismatch(t *testing.T) {
	accounts := func() *schema.Table {
		return &schema.Table{Name: "accounts", Columns: []*schema.Column{idColumn()}, PrimaryKey: &schema.PrimaryKey{Columns: []int{0}}}
	}
	usersWithArity := func(a schema.Arity) *schema.Table {
		return &schema.Table{
			Name:       "users",
			Columns:    []*schema.Column{idColumn(), {Name: "account_id", Type: schema.IntType{}, Arity: a}},
			PrimaryKey: &schema.PrimaryKey{Columns: []int{0}},
			ForeignKeys: []*schema.ForeignKey{
				{Columns: []int{1}, RefTable: "accounts", RefColumns: []string{"id"}},
			},
		}
	}
	prev := &schema.Schema{Tables: []*schema.Table{accounts(), usersWithArity(schema.Required)}}
	next := &schema.Schema{Tables: []*schema.Table{accounts(), usersWithArity(schema.List)}}

	steps := differ.Diff(pair.New(prev, next), dialect.NewMySQL())

	var sawDrop, sawAdd bool
	for _, s := range steps {
		switch s.(type) {
		case migration.DropForeignKey:
			sawDrop = true
		case migration.AddForeignKey:
			sawAdd = true
		}
	}
	require.True(t, sawDrop, "a required->List arity change must not be tolerated as the same foreign key")
	require.True(t, sawAdd)
}

func TestDiffOrdersForeignKeyDropBeforeTableDrop(t *testing.T) {
	prev := &schema.Schema{
		Tables: []*schema.Table{
			{Name: "accounts", Columns: []*schema.Column{idColumn()}, PrimaryKey: &schema.PrimaryKey{Columns: []int{0}}},
			{
				Name:       "users",
				Columns:    []*schema.Column{idColumn(), {Name: "account_id", Type: schema.IntType{}, Arity: schema.Required}},
				PrimaryKey: &schema.PrimaryKey{Columns: []int{0}},
				ForeignKeys: []*schema.ForeignKey{
					{Columns: []int{1}, RefTable: "accounts", RefColumns: []string{"id"}},
				},
			},
		},
	}
	next := &schema.Schema{}

	mysql := dialect.NewMySQL()
	steps := differ.Diff(pair.New(prev, next), mysql)

	var dropFKIndex, dropUsersTableIndex = -1, -1
	for i, s := range steps {
		switch v := s.(type) {
		case migration.DropForeignKey:
			dropFKIndex = i
		case migration.DropTable:
			if v.TableID == 1 {
				dropUsersTableIndex = i
			}
		}
	}
	require.NotEqual(t, -1, dropFKIndex)
	require.NotEqual(t, -1, dropUsersTableIndex)
	require.Less(t, dropFKIndex, dropUsersTableIndex)
}
