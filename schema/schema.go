// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package schema holds the immutable data model that the differ
// operates on: two Schema snapshots describe the "previous" and "next"
// state of a database, and the differ computes the migration steps that
// move one into the other.
package schema

type (
	// A Schema is an immutable snapshot of a database schema. It is never
	// mutated after construction; the differ reads from two Schema values
	// (previous and next) but never writes to either.
	Schema struct {
		Tables  []*Table
		Enums   []*Enum
		Dialect string // optional dialect metadata (e.g. "sqlite", "postgres").
	}

	// A Table represents a table definition. TableID is the table's
	// position in its owning Schema.Tables and is the stable handle used
	// by migration steps to refer back to it.
	Table struct {
		Name        string
		Columns     []*Column
		Indexes     []*Index
		ForeignKeys []*ForeignKey
		PrimaryKey  *PrimaryKey
	}

	// A Column represents a column definition. ColumnID is its position
	// in the owning Table.Columns.
	Column struct {
		Name          string
		Type          Type
		Arity         Arity
		Default       *Expr
		AutoIncrement bool
	}

	// An Expr is a raw default expression, kept opaque by the differ:
	// two defaults are compared for equality of their literal text, never
	// evaluated.
	Expr struct {
		Text string
	}

	// An IndexKind enumerates the closed set of index kinds.
	IndexKind uint8

	// An Index represents an index definition. The index's position in
	// its owning Table.Indexes is its IndexID.
	Index struct {
		Name  string
		Kind  IndexKind
		Parts []int // ordered column positions (ColumnID) within the owning table.
	}

	// A PrimaryKey is an ordered list of column positions. A nil
	// *PrimaryKey on a Table means the table has none.
	PrimaryKey struct {
		Columns []int // ordered ColumnID values.
	}

	// A ReferenceOption enumerates the closed set of referential actions.
	ReferenceOption string

	// A ForeignKey represents a foreign-key constraint. Its position in
	// the owning Table.ForeignKeys is its ForeignKeyID.
	ForeignKey struct {
		Columns    []int // ordered ColumnID values of the constrained (child) columns.
		RefTable   string
		RefColumns []string // ordered column names on the referenced table.
		OnDelete   ReferenceOption
		OnUpdate   ReferenceOption
	}

	// An Enum represents a named enumeration type and its ordered values.
	Enum struct {
		Name   string
		Values []string
	}
)

// Index kinds.
const (
	IndexNormal IndexKind = iota
	IndexUnique
	IndexFulltext
)

// Referential actions. An empty ReferenceOption is dialect-defined and is
// normalized to NoAction by flavours that treat "unspecified" as such.
const (
	NoAction   ReferenceOption = "NO ACTION"
	Restrict   ReferenceOption = "RESTRICT"
	Cascade    ReferenceOption = "CASCADE"
	SetNull    ReferenceOption = "SET NULL"
	SetDefault ReferenceOption = "SET DEFAULT"
)

// Table returns the table with the given name and its TableID, or
// (nil, 0, false) if no such table exists in s.
func (s *Schema) Table(name string) (*Table, int, bool) {
	for i, t := range s.Tables {
		if t.Name == name {
			return t, i, true
		}
	}
	return nil, 0, false
}

// TableAt returns the table at the given TableID.
func (s *Schema) TableAt(id int) *Table {
	return s.Tables[id]
}

// Enum returns the enum with the given name, or (nil, false) if no such
// enum exists in s.
func (s *Schema) Enum(name string) (*Enum, bool) {
	for _, e := range s.Enums {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Column returns the column with the given name and its ColumnID, using
// eq for name comparison (allowing dialect-specific case sensitivity).
func (t *Table) Column(name string, eq func(a, b string) bool) (*Column, int, bool) {
	for i, c := range t.Columns {
		if eq(c.Name, name) {
			return c, i, true
		}
	}
	return nil, 0, false
}

// ColumnAt returns the column at the given ColumnID.
func (t *Table) ColumnAt(id int) *Column {
	return t.Columns[id]
}

// Index returns the index with the given name and its position, or
// (nil, 0, false) if no such index exists on t.
func (t *Table) Index(name string) (*Index, int, bool) {
	for i, idx := range t.Indexes {
		if idx.Name == name {
			return idx, i, true
		}
	}
	return nil, 0, false
}

// IsPartOfPrimaryKey reports whether the column at the given ColumnID is
// one of t's primary-key columns.
func (t *Table) IsPartOfPrimaryKey(columnID int) bool {
	if t.PrimaryKey == nil {
		return false
	}
	for _, c := range t.PrimaryKey.Columns {
		if c == columnID {
			return true
		}
	}
	return false
}

// ColumnNames returns the names of the columns backing idx, in order.
func (idx *Index) ColumnNames(t *Table) []string {
	names := make([]string, len(idx.Parts))
	for i, p := range idx.Parts {
		names[i] = t.Columns[p].Name
	}
	return names
}

// CoversColumn reports whether idx includes the column at the given
// ColumnID among its parts.
func (idx *Index) CoversColumn(columnID int) bool {
	for _, p := range idx.Parts {
		if p == columnID {
			return true
		}
	}
	return false
}

// RefColumnNamesOf returns fk's constrained column names, in order, as
// named on t.
func (fk *ForeignKey) RefColumnNamesOf(t *Table) []string {
	names := make([]string, len(fk.Columns))
	for i, c := range fk.Columns {
		names[i] = t.Columns[c].Name
	}
	return names
}
