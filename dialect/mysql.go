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

// MySQL implements differ.Flavour for MySQL/MariaDB. Its ENUM is an
// inline column type rather than a standalone object, so, like
// SQLite, this flavour never emits enum DDL of its own; an enum
// value-set change surfaces as an ordinary column type change.
type MySQL struct {
	features map[differ.Feature]struct{}
}

// NewMySQL returns a MySQL flavour with the given preview features
// enabled.
func NewMySQL(features ...differ.Feature) *MySQL {
	return &MySQL{features: newFeatureSet(features...)}
}

func (f *MySQL) TablesToRedefine(d *differ.SchemaDiffer) map[string]struct{} {
	return map[string]struct{}{}
}

func (f *MySQL) AlterEnums(d *differ.SchemaDiffer) []migration.AlterEnum { return nil }

func (f *MySQL) CreateEnums(d *differ.SchemaDiffer, out *[]migration.Step) {}

func (f *MySQL) DropEnums(d *differ.SchemaDiffer, out *[]migration.Step) {}

// CanAlterIndex is true: MySQL 8+ supports ALTER TABLE ... RENAME
// INDEX.
func (f *MySQL) CanAlterIndex() bool { return true }

func (f *MySQL) ShouldPushForeignKeysFromCreatedTables() bool { return true }

func (f *MySQL) ShouldDropForeignKeysFromDroppedTables() bool { return true }

func (f *MySQL) ShouldCreateIndexesFromCreatedTables() bool { return false }

func (f *MySQL) ShouldSkipIndexForNewTable(idx *schema.Index) bool { return false }

func (f *MySQL) ShouldDropIndexesFromDroppedTables() bool { return false }

// ShouldSkipFKIndexes is true: MySQL (InnoDB) automatically creates a
// supporting index for every foreign key, so that index is dropped as
// a side effect of dropping the constraint, not by its own DropIndex.
func (f *MySQL) ShouldSkipFKIndexes() bool { return true }

func (f *MySQL) IndexesShouldBeRecreatedAfterColumnDrop() bool { return true }

func (f *MySQL) ShouldRecreateThePrimaryKeyOnColumnRecreate() bool { return false }

func (f *MySQL) IndexShouldBeRenamed(p pair.Pair[*differ.IndexWalker]) bool { return true }

// TableNamesMatch is case-sensitive: whether MySQL table names are
// case-sensitive depends on the server's lower_case_table_names
// setting, but the differ has no live connection to query it, so it
// takes the stricter, more common default.
func (f *MySQL) TableNamesMatch(p pair.Pair[string]) bool {
	return exactNameMatch(p.Previous, p.Next)
}

// ColumnNamesMatch is case-insensitive: unlike table names, MySQL
// column identifiers are always case-insensitive regardless of
// platform or lower_case_table_names.
func (f *MySQL) ColumnNamesMatch(a, b string) bool {
	return caseInsensitiveNameMatch(a, b)
}

func (f *MySQL) CanCopeWithForeignKeyColumnBecomingNonNullable() bool { return false }

// PushIndexChangesForColumnChanges redefines any index covering a
// column whose type changed: MySQL index key parts can carry a prefix
// length tied to the column's declared width, so a narrower or
// differently-typed column invalidates the index definition.
func (f *MySQL) PushIndexChangesForColumnChanges(table *differ.TableDiffer, columnIDs pair.Pair[int], changes migration.ColumnChanges, out *[]migration.Step) {
	if !changes.Is(migration.ChangeType) {
		return
	}
	next := table.Next()
	for idxID, idx := range next.Indexes {
		if idx.CoversColumn(columnIDs.Next) {
			*out = append(*out, migration.RedefineIndex{
				Table: table.TableIDs(),
				Index: pair.New(idxID, idxID),
			})
		}
	}
}

func (f *MySQL) ClassifyTypeChange(prev, next *schema.Column) *migration.ColumnTypeChange {
	if isMySQLInteger(prev.Type) && isMySQLInteger(next.Type) {
		if mysqlIntegerWidth(next.Type) >= mysqlIntegerWidth(prev.Type) {
			return ptr(migration.SafeCast)
		}
		return ptr(migration.RiskyCast)
	}
	change := crossFamilyCast(prev.Type, next.Type)
	return ptr(change)
}

func isMySQLInteger(t schema.Type) bool {
	switch t.Family() {
	case schema.FamilyInt, schema.FamilyBigInt:
		return true
	default:
		return false
	}
}

func mysqlIntegerWidth(t schema.Type) int {
	if t.Family() == schema.FamilyBigInt {
		return 64
	}
	return 32
}

// ReferenceActionChanged folds both the empty clause and RESTRICT
// into NO ACTION before comparing: MySQL (InnoDB) checks foreign keys
// immediately, so RESTRICT and NO ACTION behave identically.
func (f *MySQL) ReferenceActionChanged(prev, next schema.ReferenceOption) bool {
	return normalizeMySQLReferenceAction(prev) != normalizeMySQLReferenceAction(next)
}

func (f *MySQL) PreviewFeatures() map[differ.Feature]struct{} {
	return f.features
}
