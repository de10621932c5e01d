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

// Postgres implements differ.Flavour for PostgreSQL. Unlike SQLite
// and MySQL, PostgreSQL enums are standalone CREATE TYPE ... AS ENUM
// objects, so this is the one flavour whose enum hooks do real work.
type Postgres struct {
	features map[differ.Feature]struct{}
}

// NewPostgres returns a Postgres flavour with the given preview
// features enabled.
func NewPostgres(features ...differ.Feature) *Postgres {
	return &Postgres{features: newFeatureSet(features...)}
}

func (f *Postgres) TablesToRedefine(d *differ.SchemaDiffer) map[string]struct{} {
	return map[string]struct{}{}
}

func (f *Postgres) AlterEnums(d *differ.SchemaDiffer) []migration.AlterEnum {
	var alters []migration.AlterEnum
	for _, p := range d.Enums().Pairs() {
		if d.Enums().Changed(p) {
			alters = append(alters, migration.AlterEnum{Enums: p})
		}
	}
	return alters
}

func (f *Postgres) CreateEnums(d *differ.SchemaDiffer, out *[]migration.Step) {
	for _, eid := range d.Enums().Created() {
		*out = append(*out, migration.CreateEnum{Index: eid})
	}
}

func (f *Postgres) DropEnums(d *differ.SchemaDiffer, out *[]migration.Step) {
	for _, eid := range d.Enums().Dropped() {
		*out = append(*out, migration.DropEnum{Index: eid})
	}
}

// CanAlterIndex is true: PostgreSQL supports ALTER INDEX ... RENAME
// TO.
func (f *Postgres) CanAlterIndex() bool { return true }

func (f *Postgres) ShouldPushForeignKeysFromCreatedTables() bool { return true }

func (f *Postgres) ShouldDropForeignKeysFromDroppedTables() bool { return true }

// ShouldCreateIndexesFromCreatedTables is true: this flavour always
// emits a table's indexes (other than the one backing its primary
// key) as their own CREATE INDEX steps, so they can later be rendered
// CONCURRENTLY if the caller wants that.
func (f *Postgres) ShouldCreateIndexesFromCreatedTables() bool { return true }

func (f *Postgres) ShouldSkipIndexForNewTable(idx *schema.Index) bool { return false }

func (f *Postgres) ShouldDropIndexesFromDroppedTables() bool { return false }

func (f *Postgres) ShouldSkipFKIndexes() bool { return false }

func (f *Postgres) IndexesShouldBeRecreatedAfterColumnDrop() bool { return true }

func (f *Postgres) ShouldRecreateThePrimaryKeyOnColumnRecreate() bool { return false }

func (f *Postgres) IndexShouldBeRenamed(p pair.Pair[*differ.IndexWalker]) bool { return true }

func (f *Postgres) TableNamesMatch(p pair.Pair[string]) bool {
	return exactNameMatch(p.Previous, p.Next)
}

func (f *Postgres) ColumnNamesMatch(a, b string) bool {
	return exactNameMatch(a, b)
}

func (f *Postgres) CanCopeWithForeignKeyColumnBecomingNonNullable() bool { return false }

func (f *Postgres) PushIndexChangesForColumnChanges(table *differ.TableDiffer, columnIDs pair.Pair[int], changes migration.ColumnChanges, out *[]migration.Step) {
}

// ClassifyTypeChange special-cases the Uuid<->String compatibility
// that this differ's matching logic also grants foreign keys: a
// textual representation of a UUID round-trips losslessly.
func (f *Postgres) ClassifyTypeChange(prev, next *schema.Column) *migration.ColumnTypeChange {
	pf, nf := prev.Type.Family(), next.Type.Family()
	if (pf == schema.FamilyUUID && nf == schema.FamilyString) || (pf == schema.FamilyString && nf == schema.FamilyUUID) {
		return ptr(migration.SafeCast)
	}
	change := crossFamilyCast(prev.Type, next.Type)
	return ptr(change)
}

func (f *Postgres) ReferenceActionChanged(prev, next schema.ReferenceOption) bool {
	return normalizeEmptyReferenceAction(prev) != normalizeEmptyReferenceAction(next)
}

func (f *Postgres) PreviewFeatures() map[differ.Feature]struct{} {
	return f.features
}
