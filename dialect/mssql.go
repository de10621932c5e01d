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

// MSSQL implements differ.Flavour for SQL Server. Like SQLite and
// MySQL, SQL Server has no standalone enum type, so its enum hooks
// never fire.
type MSSQL struct {
	features map[differ.Feature]struct{}
}

// NewMSSQL returns a SQL Server flavour with the given preview
// features enabled.
func NewMSSQL(features ...differ.Feature) *MSSQL {
	return &MSSQL{features: newFeatureSet(features...)}
}

func (f *MSSQL) TablesToRedefine(d *differ.SchemaDiffer) map[string]struct{} {
	return map[string]struct{}{}
}

func (f *MSSQL) AlterEnums(d *differ.SchemaDiffer) []migration.AlterEnum { return nil }

func (f *MSSQL) CreateEnums(d *differ.SchemaDiffer, out *[]migration.Step) {}

func (f *MSSQL) DropEnums(d *differ.SchemaDiffer, out *[]migration.Step) {}

// CanAlterIndex is true: sp_rename renames an index in the system
// catalog without rebuilding it, the same stored procedure the driver
// uses to rename a table in place (renameTable in the original
// driver's migrate.go).
func (f *MSSQL) CanAlterIndex() bool { return true }

func (f *MSSQL) ShouldPushForeignKeysFromCreatedTables() bool { return true }

func (f *MSSQL) ShouldDropForeignKeysFromDroppedTables() bool { return true }

func (f *MSSQL) ShouldCreateIndexesFromCreatedTables() bool { return true }

func (f *MSSQL) ShouldSkipIndexForNewTable(idx *schema.Index) bool { return false }

func (f *MSSQL) ShouldDropIndexesFromDroppedTables() bool { return false }

func (f *MSSQL) ShouldSkipFKIndexes() bool { return false }

func (f *MSSQL) IndexesShouldBeRecreatedAfterColumnDrop() bool { return true }

// ShouldRecreateThePrimaryKeyOnColumnRecreate is true: SQL Server's
// default clustered primary key determines the table's physical row
// order, so recreating a key column is safest when paired with
// rebuilding the key.
func (f *MSSQL) ShouldRecreateThePrimaryKeyOnColumnRecreate() bool { return true }

func (f *MSSQL) IndexShouldBeRenamed(p pair.Pair[*differ.IndexWalker]) bool { return true }

// TableNamesMatch and ColumnNamesMatch are case-insensitive: SQL
// Server's default collation (SQL_Latin1_General_CP1_CI_AS and most
// of its locale-specific siblings) compares identifiers without
// regard to case. The driver's own inspector reads the server's actual
// collation off SERVERPROPERTY('Collation') per connection
// (propertiesQuery in the original driver's driver.go) rather than
// assuming one; this differ has no live connection to query, so it
// takes the server default.
func (f *MSSQL) TableNamesMatch(p pair.Pair[string]) bool {
	return caseInsensitiveNameMatch(p.Previous, p.Next)
}

func (f *MSSQL) ColumnNamesMatch(a, b string) bool {
	return caseInsensitiveNameMatch(a, b)
}

func (f *MSSQL) CanCopeWithForeignKeyColumnBecomingNonNullable() bool { return false }

func (f *MSSQL) PushIndexChangesForColumnChanges(table *differ.TableDiffer, columnIDs pair.Pair[int], changes migration.ColumnChanges, out *[]migration.Step) {
}

func (f *MSSQL) ClassifyTypeChange(prev, next *schema.Column) *migration.ColumnTypeChange {
	change := crossFamilyCast(prev.Type, next.Type)
	return ptr(change)
}

func (f *MSSQL) ReferenceActionChanged(prev, next schema.ReferenceOption) bool {
	return normalizeEmptyReferenceAction(prev) != normalizeEmptyReferenceAction(next)
}

func (f *MSSQL) PreviewFeatures() map[differ.Feature]struct{} {
	return f.features
}
