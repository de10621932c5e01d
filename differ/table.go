// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package differ

import (
	"ariga.io/schemadiff/pair"
	"ariga.io/schemadiff/schema"
)

// An IndexWalker addresses one index together with the table it
// belongs to and the schema side it came from. Flavours receive pairs
// of these when deciding whether an index pair should be expressed as
// a rename.
type IndexWalker struct {
	TableID int
	Table   *schema.Table
	IndexID int
	Index   *schema.Index
}

// A TableDiffer computes the column, index, foreign-key and
// primary-key differences between one matched pair of tables. It is
// the per-table counterpart of SchemaDiffer, which owns one
// TableDiffer per entry in DifferDatabase.TablePairs.
type TableDiffer struct {
	db       *DifferDatabase
	flavour  Flavour
	tableIDs pair.Pair[int]
}

// NewTableDiffer builds a TableDiffer for the table pair tableIDs
// (previous TableID, next TableID).
func NewTableDiffer(db *DifferDatabase, flavour Flavour, tableIDs pair.Pair[int]) *TableDiffer {
	return &TableDiffer{db: db, flavour: flavour, tableIDs: tableIDs}
}

// TableIDs returns the previous/next TableID pair this differ covers.
func (td *TableDiffer) TableIDs() pair.Pair[int] {
	return td.tableIDs
}

// Previous returns the table as it exists in the previous schema.
func (td *TableDiffer) Previous() *schema.Table {
	return td.db.schemas.Previous.TableAt(td.tableIDs.Previous)
}

// Next returns the table as it exists in the next schema.
func (td *TableDiffer) Next() *schema.Table {
	return td.db.schemas.Next.TableAt(td.tableIDs.Next)
}

// ColumnPairs returns the ColumnID pairs that match by name under the
// flavour's identity rules, in the order columns appear in Previous.
func (td *TableDiffer) ColumnPairs() []pair.Pair[int] {
	prev, next := td.Previous(), td.Next()
	matchedNext := make(map[int]bool, len(next.Columns))
	var pairs []pair.Pair[int]
	for pid, pc := range prev.Columns {
		for nid, nc := range next.Columns {
			if matchedNext[nid] {
				continue
			}
			if td.flavour.ColumnNamesMatch(pc.Name, nc.Name) {
				pairs = append(pairs, pair.New(pid, nid))
				matchedNext[nid] = true
				break
			}
		}
	}
	return pairs
}

// AddedColumns returns the ColumnIDs (in Next) of columns with no
// match in Previous.
func (td *TableDiffer) AddedColumns() []int {
	prev, next := td.Previous(), td.Next()
	var added []int
	for nid, nc := range next.Columns {
		found := false
		for _, pc := range prev.Columns {
			if td.flavour.ColumnNamesMatch(pc.Name, nc.Name) {
				found = true
				break
			}
		}
		if !found {
			added = append(added, nid)
		}
	}
	return added
}

// DroppedColumns returns the ColumnIDs (in Previous) of columns with
// no match in Next.
func (td *TableDiffer) DroppedColumns() []int {
	prev, next := td.Previous(), td.Next()
	var dropped []int
	for pid, pc := range prev.Columns {
		found := false
		for _, nc := range next.Columns {
			if td.flavour.ColumnNamesMatch(pc.Name, nc.Name) {
				found = true
				break
			}
		}
		if !found {
			dropped = append(dropped, pid)
		}
	}
	return dropped
}

// IndexPairs returns the index pairs that match by name, in the order
// indexes appear in Previous.
func (td *TableDiffer) IndexPairs() []pair.Pair[int] {
	prev, next := td.Previous(), td.Next()
	matchedNext := make(map[int]bool, len(next.Indexes))
	var pairs []pair.Pair[int]
	for pid, pidx := range prev.Indexes {
		for nid, nidx := range next.Indexes {
			if matchedNext[nid] {
				continue
			}
			if pidx.Name == nidx.Name {
				pairs = append(pairs, pair.New(pid, nid))
				matchedNext[nid] = true
				break
			}
		}
	}
	return pairs
}

// CreatedIndexes returns the IndexIDs (in Next) of indexes with no
// match in Previous.
func (td *TableDiffer) CreatedIndexes() []int {
	prev, next := td.Previous(), td.Next()
	var created []int
	for nid, nidx := range next.Indexes {
		found := false
		for _, pidx := range prev.Indexes {
			if pidx.Name == nidx.Name {
				found = true
				break
			}
		}
		if !found {
			created = append(created, nid)
		}
	}
	return created
}

// DroppedIndexes returns the IndexIDs (in Previous) of indexes with no
// match in Next.
func (td *TableDiffer) DroppedIndexes() []int {
	prev, next := td.Previous(), td.Next()
	var dropped []int
	for pid, pidx := range prev.Indexes {
		found := false
		for _, nidx := range next.Indexes {
			if pidx.Name == nidx.Name {
				found = true
				break
			}
		}
		if !found {
			dropped = append(dropped, pid)
		}
	}
	return dropped
}

// CreatedPrimaryKey reports whether Next has a primary key that
// Previous lacked.
func (td *TableDiffer) CreatedPrimaryKey() bool {
	return td.Previous().PrimaryKey == nil && td.Next().PrimaryKey != nil
}

// DroppedPrimaryKey reports whether Previous had a primary key that
// Next lacks, or whose column set changed (a changed primary key is
// always expressed as drop-then-add; there is no in-place alter).
func (td *TableDiffer) DroppedPrimaryKey() bool {
	prev, next := td.Previous(), td.Next()
	if prev.PrimaryKey == nil {
		return false
	}
	if next.PrimaryKey == nil {
		return true
	}
	return !td.primaryKeysEquivalent(prev.PrimaryKey, next.PrimaryKey)
}

// AddedPrimaryKey reports whether Next's primary key must be emitted,
// either because it is new or because the column set changed and the
// old one was dropped.
func (td *TableDiffer) AddedPrimaryKey() bool {
	prev, next := td.Previous(), td.Next()
	if next.PrimaryKey == nil {
		return false
	}
	if prev.PrimaryKey == nil {
		return true
	}
	return !td.primaryKeysEquivalent(prev.PrimaryKey, next.PrimaryKey)
}

func (td *TableDiffer) primaryKeysEquivalent(prev, next *schema.PrimaryKey) bool {
	if len(prev.Columns) != len(next.Columns) {
		return false
	}
	prevTable, nextTable := td.Previous(), td.Next()
	for i, pc := range prev.Columns {
		nc := next.Columns[i]
		if !td.flavour.ColumnNamesMatch(prevTable.Columns[pc].Name, nextTable.Columns[nc].Name) {
			return false
		}
	}
	return true
}

// CreatedForeignKeys returns the ForeignKeyIndexes (in Next) of
// foreign keys with no match in Previous, per ForeignKeysMatch.
func (td *TableDiffer) CreatedForeignKeys() []int {
	prev, next := td.Previous(), td.Next()
	var created []int
	for nid, nfk := range next.ForeignKeys {
		found := false
		for _, pfk := range prev.ForeignKeys {
			if td.ForeignKeysMatch(prev, pfk, next, nfk) {
				found = true
				break
			}
		}
		if !found {
			created = append(created, nid)
		}
	}
	return created
}

// DroppedForeignKeys returns the ForeignKeyIndexes (in Previous) of
// foreign keys with no match in Next, per ForeignKeysMatch.
func (td *TableDiffer) DroppedForeignKeys() []int {
	prev, next := td.Previous(), td.Next()
	var dropped []int
	for pid, pfk := range prev.ForeignKeys {
		found := false
		for _, nfk := range next.ForeignKeys {
			if td.ForeignKeysMatch(prev, pfk, next, nfk) {
				found = true
				break
			}
		}
		if !found {
			dropped = append(dropped, pid)
		}
	}
	return dropped
}

// ForeignKeysMatch reports whether pfk (on prevTable, in the previous
// schema) and nfk (on nextTable, in the next schema) identify the same
// constraint. Two foreign keys match when: they reference the same
// table under the flavour's table-identity rules; their constrained
// columns pair up by name in order and share a type family, with a
// Uuid<->String compatibility carve-out for columns that round-trip
// through a textual representation; their referenced column names pair
// up in order; and their
// referential actions match whenever the flavour's ReferentialActions
// feature is enabled. A required constrained column that became
// nullable is always tolerated; the reverse direction is tolerated
// only when the flavour opts in via
// CanCopeWithForeignKeyColumnBecomingNonNullable.
func (td *TableDiffer) ForeignKeysMatch(prevTable *schema.Table, pfk *schema.ForeignKey, nextTable *schema.Table, nfk *schema.ForeignKey) bool {
	if !td.flavour.TableNamesMatch(pair.New(pfk.RefTable, nfk.RefTable)) {
		return false
	}
	if len(pfk.Columns) != len(nfk.Columns) || len(pfk.RefColumns) != len(nfk.RefColumns) {
		return false
	}
	for i, pc := range pfk.Columns {
		prevCol := prevTable.Columns[pc]
		nextCol := nextTable.Columns[nfk.Columns[i]]
		if !td.flavour.ColumnNamesMatch(prevCol.Name, nextCol.Name) {
			return false
		}
		pf, nf := prevCol.Type.Family(), nextCol.Type.Family()
		uuidString := (pf == schema.FamilyUUID && nf == schema.FamilyString) || (pf == schema.FamilyString && nf == schema.FamilyUUID)
		if pf != nf && !uuidString {
			return false
		}
		if !columnArityCompatible(td.flavour, prevCol, nextCol) {
			return false
		}
	}
	for i, refName := range pfk.RefColumns {
		if !td.flavour.ColumnNamesMatch(refName, nfk.RefColumns[i]) {
			return false
		}
	}
	if td.referentialActionsEnabled() {
		if td.flavour.ReferenceActionChanged(pfk.OnDelete, nfk.OnDelete) {
			return false
		}
		if td.flavour.ReferenceActionChanged(pfk.OnUpdate, nfk.OnUpdate) {
			return false
		}
	}
	return true
}

func (td *TableDiffer) referentialActionsEnabled() bool {
	_, ok := td.flavour.PreviewFeatures()[ReferentialActions]
	return ok
}

// columnArityCompatible implements the asymmetric arity tolerance that
// ForeignKeysMatch applies to constrained columns: widening from
// required to nullable never breaks a match, but narrowing from
// nullable to required only matches when the flavour says it can cope.
func columnArityCompatible(flavour Flavour, prev, next *schema.Column) bool {
	if prev.Arity == next.Arity {
		return true
	}
	if prev.Arity.IsRequired() && next.Arity.IsNullable() {
		return true
	}
	if prev.Arity.IsNullable() && next.Arity.IsRequired() {
		return flavour.CanCopeWithForeignKeyColumnBecomingNonNullable()
	}
	// Neither side is a required<->nullable widening/narrowing (e.g. one
	// side is a repeated List arity): no tolerance rule applies, so the
	// arities must already have been equal above.
	return false
}
