// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package dialect

import (
	"ariga.io/schemadiff/differ"
	"ariga.io/schemadiff/migration"
	"ariga.io/schemadiff/pair"
	"ariga.io/schemadiff/schema"
)

// SQLite implements differ.Flavour for SQLite. SQLite's ALTER TABLE
// supports little beyond adding a column and renaming a table or
// column, so this flavour redefines (rebuilds) a table for almost any
// structural change, matching the approach SQLite migration tooling
// has converged on rather than chasing the handful of cases the
// dialect's ALTER TABLE happens to support directly.
type SQLite struct {
	features map[differ.Feature]struct{}
}

// NewSQLite returns a SQLite flavour with the given preview features
// enabled.
func NewSQLite(features ...differ.Feature) *SQLite {
	return &SQLite{features: newFeatureSet(features...)}
}

func (f *SQLite) TablesToRedefine(d *differ.SchemaDiffer) map[string]struct{} {
	redefine := make(map[string]struct{})
	for _, tp := range d.Database().TablePairs() {
		td := d.TableDiffer(tp.Previous)
		if f.needsRedefine(td) {
			redefine[td.Next().Name] = struct{}{}
		}
	}
	return redefine
}

func (f *SQLite) needsRedefine(td *differ.TableDiffer) bool {
	if td.DroppedPrimaryKey() || td.AddedPrimaryKey() {
		return true
	}
	if len(td.CreatedForeignKeys()) > 0 || len(td.DroppedForeignKeys()) > 0 {
		return true
	}
	if len(td.DroppedColumns()) > 0 {
		return true
	}
	for _, cp := range td.ColumnPairs() {
		prevCol := td.Previous().ColumnAt(cp.Previous)
		nextCol := td.Next().ColumnAt(cp.Next)
		if prevCol.Type.Family() != nextCol.Type.Family() && !f.sameIntegerAffinity(prevCol.Type, nextCol.Type) {
			return true
		}
	}
	return false
}

// sameIntegerAffinity reports whether both types fall into SQLite's
// single INTEGER storage class, which has no real sub-types: INT,
// BIGINT, SMALLINT and friends are all the same column underneath.
func (f *SQLite) sameIntegerAffinity(prev, next schema.Type) bool {
	return isSQLiteInteger(prev) && isSQLiteInteger(next)
}

func isSQLiteInteger(t schema.Type) bool {
	switch t.Family() {
	case schema.FamilyInt, schema.FamilyBigInt:
		return true
	default:
		return false
	}
}

// AlterEnums is always empty: SQLite has no enum type, so Prisma-style
// schemas represent enum columns as TEXT and any value-set change is
// just a column default/check concern, not handled at this layer.
func (f *SQLite) AlterEnums(d *differ.SchemaDiffer) []migration.AlterEnum {
	return nil
}

func (f *SQLite) CreateEnums(d *differ.SchemaDiffer, out *[]migration.Step) {}

func (f *SQLite) DropEnums(d *differ.SchemaDiffer, out *[]migration.Step) {}

func (f *SQLite) CanAlterIndex() bool { return false }

// ShouldPushForeignKeysFromCreatedTables is false: SQLite only
// supports foreign keys declared inline in CREATE TABLE, so a created
// table's foreign keys stay inlined rather than becoming their own
// AddForeignKey steps.
func (f *SQLite) ShouldPushForeignKeysFromCreatedTables() bool { return false }

func (f *SQLite) ShouldDropForeignKeysFromDroppedTables() bool { return false }

func (f *SQLite) ShouldCreateIndexesFromCreatedTables() bool { return true }

func (f *SQLite) ShouldSkipIndexForNewTable(idx *schema.Index) bool { return false }

func (f *SQLite) ShouldDropIndexesFromDroppedTables() bool { return false }

func (f *SQLite) ShouldSkipFKIndexes() bool { return false }

func (f *SQLite) IndexesShouldBeRecreatedAfterColumnDrop() bool { return true }

func (f *SQLite) ShouldRecreateThePrimaryKeyOnColumnRecreate() bool { return true }

// IndexShouldBeRenamed is always false: SQLite has no ALTER INDEX, so
// a renamed index is always a drop followed by a create.
func (f *SQLite) IndexShouldBeRenamed(p pair.Pair[*differ.IndexWalker]) bool { return false }

func (f *SQLite) TableNamesMatch(p pair.Pair[string]) bool {
	return exactNameMatch(p.Previous, p.Next)
}

func (f *SQLite) ColumnNamesMatch(a, b string) bool {
	return exactNameMatch(a, b)
}

// CanCopeWithForeignKeyColumnBecomingNonNullable is true: SQLite only
// validates foreign keys when PRAGMA foreign_keys is on for the
// connection doing the writing, so a column narrowing to NOT NULL
// does not retroactively break the constraint's identity.
func (f *SQLite) CanCopeWithForeignKeyColumnBecomingNonNullable() bool { return true }

// PushIndexChangesForColumnChanges is a no-op: SQLite indexes are not
// typed, so a column's type or width change never invalidates one.
func (f *SQLite) PushIndexChangesForColumnChanges(table *differ.TableDiffer, columnIDs pair.Pair[int], changes migration.ColumnChanges, out *[]migration.Step) {
}

func (f *SQLite) ClassifyTypeChange(prev, next *schema.Column) *migration.ColumnTypeChange {
	if f.sameIntegerAffinity(prev.Type, next.Type) {
		return nil
	}
	change := crossFamilyCast(prev.Type, next.Type)
	return ptr(change)
}

// ReferenceActionChanged normalizes SQLite's implicit NO ACTION (an
// omitted ON DELETE/ON UPDATE clause) before comparing.
func (f *SQLite) ReferenceActionChanged(prev, next schema.ReferenceOption) bool {
	return normalizeEmptyReferenceAction(prev) != normalizeEmptyReferenceAction(next)
}

func (f *SQLite) PreviewFeatures() map[differ.Feature]struct{} {
	return f.features
}
