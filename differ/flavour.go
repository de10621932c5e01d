// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package differ

import (
	"ariga.io/schemadiff/migration"
	"ariga.io/schemadiff/pair"
	"ariga.io/schemadiff/schema"
)

// A Feature is a preview feature flag that a Flavour may or may not
// have enabled. It gates behavior that not every caller wants turned
// on, such as tracking foreign-key referential actions.
type Feature string

// ReferentialActions, when enabled, makes foreign-key matching and
// diffing sensitive to ON DELETE / ON UPDATE action changes.
const ReferentialActions Feature = "ReferentialActions"

// A Flavour is a pure-predicate strategy object exposing
// dialect-specific rules to the differ. It holds no state of its own;
// every method takes whatever context it needs as an argument. One
// Flavour implementation exists per supported dialect (see the
// dialect package).
//
// Flavour carries the database/dialect specific diff capabilities,
// much like atlas's sqlx.DiffDriver wraps the same kind of per-dialect
// hooks for its generic differ.
type Flavour interface {
	// TablesToRedefine returns the set of (next-side) table names that
	// cannot be altered in place and must instead go through a full
	// redefine (drop, recreate, copy rows).
	TablesToRedefine(d *SchemaDiffer) map[string]struct{}

	// AlterEnums returns the enum changes the flavour wants to emit.
	// PreviousUsagesAsDefault is filled in by the pipeline afterwards.
	AlterEnums(d *SchemaDiffer) []migration.AlterEnum

	// CreateEnums appends CreateEnum steps for enums the flavour wants
	// created.
	CreateEnums(d *SchemaDiffer, out *[]migration.Step)

	// DropEnums appends DropEnum steps for enums the flavour wants
	// dropped.
	DropEnums(d *SchemaDiffer, out *[]migration.Step)

	// CanAlterIndex reports whether the dialect supports an in-place
	// index rename/alter, as opposed to always needing a drop+create.
	CanAlterIndex() bool

	// ShouldPushForeignKeysFromCreatedTables reports whether foreign
	// keys on a newly created table should be emitted as separate
	// AddForeignKey steps (true), or left inlined in the CreateTable
	// (false).
	ShouldPushForeignKeysFromCreatedTables() bool

	// ShouldDropForeignKeysFromDroppedTables reports whether foreign
	// keys on a table being dropped need an explicit DropForeignKey
	// step before the DropTable.
	ShouldDropForeignKeysFromDroppedTables() bool

	// ShouldCreateIndexesFromCreatedTables reports whether indexes on a
	// newly created table need separate CreateIndex steps.
	ShouldCreateIndexesFromCreatedTables() bool

	// ShouldSkipIndexForNewTable reports whether idx, which belongs to
	// a table being created, should be skipped when
	// ShouldCreateIndexesFromCreatedTables is true (e.g. because the
	// dialect creates it implicitly).
	ShouldSkipIndexForNewTable(idx *schema.Index) bool

	// ShouldDropIndexesFromDroppedTables reports whether indexes that
	// belong to a table being redefined (not dropped outright) still
	// need explicit DropIndex steps.
	ShouldDropIndexesFromDroppedTables() bool

	// ShouldSkipFKIndexes reports whether indexes that merely back a
	// foreign key should be left for the foreign-key's own drop to
	// remove, rather than getting a DropIndex step of their own.
	ShouldSkipFKIndexes() bool

	// IndexesShouldBeRecreatedAfterColumnDrop reports whether an index
	// covering a NotCastable column needs a fresh CreateIndex once that
	// column has been dropped and recreated.
	IndexesShouldBeRecreatedAfterColumnDrop() bool

	// ShouldRecreateThePrimaryKeyOnColumnRecreate reports whether a
	// DropAndRecreateColumn on a primary-key column forces
	// DropPrimaryKey/AddPrimaryKey even when the primary key's own
	// definition is unchanged.
	ShouldRecreateThePrimaryKeyOnColumnRecreate() bool

	// IndexShouldBeRenamed reports whether the paired indexes differ
	// only by name and the flavour wants that expressed as an in-place
	// rename rather than a drop+create.
	IndexShouldBeRenamed(p pair.Pair[*IndexWalker]) bool

	// TableNamesMatch reports whether two table names identify the same
	// table under the dialect's identity rules.
	TableNamesMatch(p pair.Pair[string]) bool

	// ColumnNamesMatch reports whether two column names identify the
	// same column under the dialect's identity rules. SQLite and
	// PostgreSQL are case-sensitive; MySQL and MSSQL compare
	// case-insensitively.
	ColumnNamesMatch(a, b string) bool

	// CanCopeWithForeignKeyColumnBecomingNonNullable reports whether the
	// flavour tolerates a foreign-key column that narrows from nullable
	// to required. When false, only the opposite direction
	// (required -> nullable) is tolerated during FK matching.
	CanCopeWithForeignKeyColumnBecomingNonNullable() bool

	// PushIndexChangesForColumnChanges lets the flavour inject
	// index-side steps driven by a column's attribute change (e.g. a
	// MySQL column width change invalidating an index).
	PushIndexChangesForColumnChanges(table *TableDiffer, columnIDs pair.Pair[int], changes migration.ColumnChanges, out *[]migration.Step)

	// ClassifyTypeChange returns the castability verdict for a column
	// pair whose type family changed, or nil if the flavour considers
	// the two types equivalent (e.g. SQLite's integer affinity classes).
	ClassifyTypeChange(prev, next *schema.Column) *migration.ColumnTypeChange

	// ReferenceActionChanged reports whether a foreign key's referential
	// action meaningfully changed, normalizing dialect-specific notions
	// of "unspecified" (e.g. SQLite's implicit NO ACTION).
	ReferenceActionChanged(prev, next schema.ReferenceOption) bool

	// PreviewFeatures returns the set of preview features this flavour
	// instance has enabled.
	PreviewFeatures() map[Feature]struct{}
}
