// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package migration defines the closed set of migration primitives that
// the differ emits. These types are the differ's public ABI: a
// downstream renderer walks a []Step and turns it into dialect-specific
// SQL. This package only describes the steps; it never executes them.
package migration

import "ariga.io/schemadiff/pair"

// A Step is a single migration primitive. The set of concrete types
// implementing Step is closed to the variants declared in this file.
type Step interface {
	step()
}

type (
	// CreateTable describes the creation of the table at TableID in the
	// next schema.
	CreateTable struct {
		TableID int
	}

	// DropTable describes the removal of the table at TableID in the
	// previous schema.
	DropTable struct {
		TableID int
	}

	// AddForeignKey describes the creation of the foreign key at
	// ForeignKeyIndex on the table at TableID, both in the next schema.
	AddForeignKey struct {
		TableID         int
		ForeignKeyIndex int
	}

	// DropForeignKey describes the removal of the foreign key at
	// ForeignKeyIndex on the table at TableID, both in the previous
	// schema.
	DropForeignKey struct {
		TableID         int
		ForeignKeyIndex int
	}

	// AlterTable describes one or more in-place changes to a table that
	// exists on both sides. TableIDs binds the previous and next
	// TableID of the same table.
	AlterTable struct {
		TableIDs pair.Pair[int]
		Changes  []TableChange
	}

	// CreateIndex describes the creation of the index at IndexIndex on
	// the next table NextTableID. PreviousTableID is set when the
	// index's table also exists in the previous schema (i.e. this is an
	// index added to a paired table, not to a newly created one).
	CreateIndex struct {
		PreviousTableID *int
		NextTableID     int
		IndexIndex      int
	}

	// DropIndex describes the removal of the index at IndexIndex on the
	// previous table at TableID.
	DropIndex struct {
		TableID    int
		IndexIndex int
	}

	// AlterIndex describes an in-place index change (e.g. a rename) that
	// the flavour can express without recreating the index.
	AlterIndex struct {
		Table pair.Pair[int]
		Index pair.Pair[int]
	}

	// RedefineIndex describes an index change that must be implemented
	// as a drop-then-create because the flavour cannot alter indexes in
	// place.
	RedefineIndex struct {
		Table pair.Pair[int]
		Index pair.Pair[int]
	}

	// AlterEnum describes a change to an enum's value set, plus the
	// column default usages that the renderer must drop and restore
	// around the edit.
	AlterEnum struct {
		Enums                   pair.Pair[int]
		PreviousUsagesAsDefault []EnumDefaultUsage
	}

	// CreateEnum describes the creation of the enum at Index in the next
	// schema.
	CreateEnum struct {
		Index int
	}

	// DropEnum describes the removal of the enum at Index in the
	// previous schema.
	DropEnum struct {
		Index int
	}

	// RedefineTables describes a batch of tables that must be rebuilt
	// wholesale (drop, recreate, copy rows) because the flavour cannot
	// alter them in place.
	RedefineTables struct {
		Tables []RedefineTable
	}
)

func (CreateTable) step()     {}
func (DropTable) step()       {}
func (AddForeignKey) step()   {}
func (DropForeignKey) step()  {}
func (AlterTable) step()      {}
func (CreateIndex) step()     {}
func (DropIndex) step()       {}
func (AlterIndex) step()      {}
func (RedefineIndex) step()   {}
func (AlterEnum) step()       {}
func (CreateEnum) step()      {}
func (DropEnum) step()        {}
func (RedefineTables) step()  {}

// A ColumnRef addresses a column by the position of its owning table
// and the column's position within that table.
type ColumnRef struct {
	TableID  int
	ColumnID int
}

// An EnumDefaultUsage records a column that used an enum as its default
// value in the previous schema, together with the same column's
// position in the next schema if it still exists and still defaults to
// the enum there.
type EnumDefaultUsage struct {
	Previous ColumnRef
	Next     *ColumnRef
}

// A RedefineTable carries everything the renderer needs to rebuild one
// table wholesale.
type RedefineTable struct {
	TableIDs          pair.Pair[int]
	DroppedPrimaryKey bool
	AddedColumns      []int
	DroppedColumns    []int
	ColumnPairs       []RedefineColumn
}

// A RedefineColumn is one column pair inside a RedefineTable, carrying
// the same change classification an AlterColumn step would.
type RedefineColumn struct {
	ColumnIDs  pair.Pair[int]
	Changes    ColumnChanges
	TypeChange *ColumnTypeChange
}

// A TableChange is one of the closed set of modifications that can
// appear inside an AlterTable step. Within a single AlterTable, changes
// always appear in the canonical order: DropPrimaryKey, DropColumn...,
// AddColumn..., AlterColumn... (sorted by column id pair),
// DropAndRecreateColumn..., AddPrimaryKey.
type TableChange interface {
	tableChange()
}

type (
	// DropPrimaryKey describes the removal of a table's primary key.
	DropPrimaryKey struct{}

	// DropColumn describes the removal of the column at ColumnID in the
	// previous table.
	DropColumn struct {
		ColumnID int
	}

	// AddColumn describes the addition of the column at ColumnID in the
	// next table.
	AddColumn struct {
		ColumnID int
	}

	// AlterColumn describes an in-place column change. TypeChange is nil
	// when the column's type did not change.
	AlterColumn struct {
		ColumnIDs  pair.Pair[int]
		Changes    ColumnChanges
		TypeChange *ColumnTypeChange
	}

	// DropAndRecreateColumn describes a column whose type change has no
	// in-place representation: the column is dropped and recreated,
	// losing its data.
	DropAndRecreateColumn struct {
		ColumnIDs pair.Pair[int]
		Changes   ColumnChanges
	}

	// AddPrimaryKey describes the addition of a table's primary key.
	AddPrimaryKey struct{}
)

func (DropPrimaryKey) tableChange()         {}
func (DropColumn) tableChange()             {}
func (AddColumn) tableChange()              {}
func (AlterColumn) tableChange()            {}
func (DropAndRecreateColumn) tableChange()  {}
func (AddPrimaryKey) tableChange()          {}

// ColumnChanges is a bitset of the attributes that changed between two
// paired columns. A non-zero ColumnChanges, or a non-nil
// ColumnTypeChange, means the pair DiffersInSomething.
type ColumnChanges uint8

const (
	// ChangeType describes a change to the column's type: its family,
	// or a same-family attribute such as size or precision.
	ChangeType ColumnChanges = 1 << iota
	// ChangeArity describes a change to the column's nullability/arity.
	ChangeArity
	// ChangeDefault describes a change to the column's default
	// expression.
	ChangeDefault
	// ChangeSequence describes a change to a column's backing sequence
	// (e.g. a SERIAL's underlying sequence name or start value).
	ChangeSequence
	// ChangeAutoIncrement describes a change to the column's
	// auto-increment flag.
	ChangeAutoIncrement
	// ChangeNotNull describes a change to the column's NOT NULL
	// constraint, tracked separately from ChangeArity because some
	// flavours treat list-arity and nullability as independent axes.
	ChangeNotNull
)

// Is reports whether c includes every bit set in mask.
func (c ColumnChanges) Is(mask ColumnChanges) bool {
	return c&mask == mask
}

// DiffersInSomething reports whether any bit is set.
func (c ColumnChanges) DiffersInSomething() bool {
	return c != 0
}

// A ColumnTypeChange is the three-valued castability verdict for a
// column whose type changed.
type ColumnTypeChange uint8

const (
	// SafeCast means every row in the old column converts losslessly.
	SafeCast ColumnTypeChange = iota
	// RiskyCast means conversion is defined but may truncate or fail on
	// some rows.
	RiskyCast
	// NotCastable means no in-place conversion exists; the column must
	// be dropped and recreated.
	NotCastable
)
