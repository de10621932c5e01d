// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package differ computes the migration steps that move one schema
// snapshot to another. It never renders SQL and never talks to a live
// database; it operates entirely on the in-memory schema.Schema values
// it is given. See SchemaDiffer and Diff.
package differ

import (
	"ariga.io/schemadiff/migration"
	"ariga.io/schemadiff/pair"
	"ariga.io/schemadiff/schema"
)

// A SchemaDiffer orchestrates the whole pipeline: it owns the
// DifferDatabase, the EnumDiffer, and one TableDiffer per matched
// table pair, and exposes them to the active Flavour so dialect rules
// can make decisions informed by the full picture.
type SchemaDiffer struct {
	db      *DifferDatabase
	flavour Flavour
	enums   *EnumDiffer

	tableDiffers map[int]*TableDiffer // keyed by previous TableID
}

// Diff computes the ordered list of migration steps that turn
// schemas.Previous into schemas.Next, under the rules of flavour.
func Diff(schemas pair.Pair[*schema.Schema], flavour Flavour) []migration.Step {
	sd := newSchemaDiffer(schemas, flavour)
	return sd.run()
}

func newSchemaDiffer(schemas pair.Pair[*schema.Schema], flavour Flavour) *SchemaDiffer {
	db := NewDifferDatabase(schemas, flavour)
	sd := &SchemaDiffer{
		db:           db,
		flavour:      flavour,
		enums:        NewEnumDiffer(schemas),
		tableDiffers: make(map[int]*TableDiffer, len(db.TablePairs())),
	}
	for _, tp := range db.TablePairs() {
		sd.tableDiffers[tp.Previous] = NewTableDiffer(db, flavour, tp)
	}
	return sd
}

// Database returns the SchemaDiffer's DifferDatabase.
func (sd *SchemaDiffer) Database() *DifferDatabase {
	return sd.db
}

// Schemas returns the pair of schemas being diffed.
func (sd *SchemaDiffer) Schemas() pair.Pair[*schema.Schema] {
	return sd.db.schemas
}

// Enums returns the SchemaDiffer's EnumDiffer.
func (sd *SchemaDiffer) Enums() *EnumDiffer {
	return sd.enums
}

// TableDiffer returns the TableDiffer for the matched table pair whose
// previous-side TableID is previousTableID, or nil if no such pair
// exists.
func (sd *SchemaDiffer) TableDiffer(previousTableID int) *TableDiffer {
	return sd.tableDiffers[previousTableID]
}

// run executes the pipeline described informally as: create enums,
// create tables (plus their foreign keys and indexes, per flavour),
// drop foreign keys and tables that no longer exist, alter the tables
// that can be altered in place, redefine the tables that cannot,
// alter enums, drop enums, then sort everything into the canonical
// step order.
func (sd *SchemaDiffer) run() []migration.Step {
	var steps []migration.Step

	sd.flavour.CreateEnums(sd, &steps)

	sd.pushCreatedTables(&steps)
	sd.pushDroppedTables(&steps)

	tablesToRedefine := sd.flavour.TablesToRedefine(sd)
	for _, tp := range sd.db.TablePairs() {
		nextTable := sd.db.schemas.Next.TableAt(tp.Next)
		if _, redefine := tablesToRedefine[nextTable.Name]; redefine {
			continue
		}
		sd.pushAlteredTable(tp, &steps)
	}
	sd.pushRedefinedTables(tablesToRedefine, &steps)

	sd.pushAlteredEnums(&steps)
	sd.flavour.DropEnums(sd, &steps)

	SortSteps(steps)
	return steps
}

func (sd *SchemaDiffer) pushCreatedTables(steps *[]migration.Step) {
	for _, tid := range sd.db.CreatedTables() {
		*steps = append(*steps, migration.CreateTable{TableID: tid})
		table := sd.db.schemas.Next.TableAt(tid)
		if sd.flavour.ShouldPushForeignKeysFromCreatedTables() {
			for fkID := range table.ForeignKeys {
				*steps = append(*steps, migration.AddForeignKey{TableID: tid, ForeignKeyIndex: fkID})
			}
		}
		if sd.flavour.ShouldCreateIndexesFromCreatedTables() {
			for idxID, idx := range table.Indexes {
				if sd.flavour.ShouldSkipIndexForNewTable(idx) {
					continue
				}
				*steps = append(*steps, migration.CreateIndex{NextTableID: tid, IndexIndex: idxID})
			}
		}
	}
}

func (sd *SchemaDiffer) pushDroppedTables(steps *[]migration.Step) {
	for _, tid := range sd.db.DroppedTables() {
		table := sd.db.schemas.Previous.TableAt(tid)
		if sd.flavour.ShouldDropForeignKeysFromDroppedTables() {
			for fkID := range table.ForeignKeys {
				*steps = append(*steps, migration.DropForeignKey{TableID: tid, ForeignKeyIndex: fkID})
			}
		}
		*steps = append(*steps, migration.DropTable{TableID: tid})
	}
}

func (sd *SchemaDiffer) pushAlteredTable(tp pair.Pair[int], steps *[]migration.Step) {
	td := sd.TableDiffer(tp.Previous)

	var changes []migration.TableChange
	if td.DroppedPrimaryKey() {
		changes = append(changes, migration.DropPrimaryKey{})
	}
	for _, cid := range td.DroppedColumns() {
		changes = append(changes, migration.DropColumn{ColumnID: cid})
	}
	for _, cid := range td.AddedColumns() {
		changes = append(changes, migration.AddColumn{ColumnID: cid})
	}
	for _, cp := range td.ColumnPairs() {
		prevCol := td.Previous().ColumnAt(cp.Previous)
		nextCol := td.Next().ColumnAt(cp.Next)
		diff := DiffColumns(sd.flavour, prevCol, nextCol)
		if !diff.Changes.DiffersInSomething() {
			continue
		}
		if diff.TypeChange != nil && *diff.TypeChange == migration.NotCastable {
			changes = append(changes, migration.DropAndRecreateColumn{ColumnIDs: cp, Changes: diff.Changes})
			if sd.flavour.IndexesShouldBeRecreatedAfterColumnDrop() {
				for idxID, idx := range td.Next().Indexes {
					if idx.CoversColumn(cp.Next) {
						*steps = append(*steps, migration.CreateIndex{PreviousTableID: &tp.Previous, NextTableID: tp.Next, IndexIndex: idxID})
					}
				}
			}
			if sd.flavour.ShouldRecreateThePrimaryKeyOnColumnRecreate() && td.Previous().IsPartOfPrimaryKey(cp.Previous) {
				changes = append(changes, migration.DropPrimaryKey{}, migration.AddPrimaryKey{})
			}
		} else {
			changes = append(changes, migration.AlterColumn{ColumnIDs: cp, Changes: diff.Changes, TypeChange: diff.TypeChange})
			sd.flavour.PushIndexChangesForColumnChanges(td, cp, diff.Changes, steps)
		}
	}
	if td.AddedPrimaryKey() {
		changes = append(changes, migration.AddPrimaryKey{})
	}
	SortTableChanges(changes)
	if len(changes) > 0 {
		*steps = append(*steps, migration.AlterTable{TableIDs: tp, Changes: changes})
	}

	for _, fkID := range td.DroppedForeignKeys() {
		*steps = append(*steps, migration.DropForeignKey{TableID: tp.Previous, ForeignKeyIndex: fkID})
	}
	for _, fkID := range td.CreatedForeignKeys() {
		*steps = append(*steps, migration.AddForeignKey{TableID: tp.Next, ForeignKeyIndex: fkID})
	}

	sd.pushIndexChanges(td, tp, steps)
}

func (sd *SchemaDiffer) pushIndexChanges(td *TableDiffer, tp pair.Pair[int], steps *[]migration.Step) {
	prevTable, nextTable := td.Previous(), td.Next()
	dropped := td.DroppedIndexes()
	created := td.CreatedIndexes()
	renamedDropped := make(map[int]bool, len(dropped))
	renamedCreated := make(map[int]bool, len(created))

	for _, pid := range dropped {
		pidx := prevTable.Indexes[pid]
		for _, nid := range created {
			if renamedCreated[nid] {
				continue
			}
			nidx := nextTable.Indexes[nid]
			if !sd.indexColumnsMatch(prevTable, pidx, nextTable, nidx) {
				continue
			}
			pw := &IndexWalker{TableID: tp.Previous, Table: prevTable, IndexID: pid, Index: pidx}
			nw := &IndexWalker{TableID: tp.Next, Table: nextTable, IndexID: nid, Index: nidx}
			if !sd.flavour.IndexShouldBeRenamed(pair.New(pw, nw)) {
				continue
			}
			kind := migration.RedefineIndex{Table: tp, Index: pair.New(pid, nid)}
			if sd.flavour.CanAlterIndex() {
				*steps = append(*steps, migration.AlterIndex{Table: tp, Index: pair.New(pid, nid)})
			} else {
				*steps = append(*steps, kind)
			}
			renamedDropped[pid] = true
			renamedCreated[nid] = true
			break
		}
	}

	for _, pid := range dropped {
		if renamedDropped[pid] {
			continue
		}
		if sd.flavour.ShouldSkipFKIndexes() && indexBacksForeignKey(prevTable, pid) {
			continue
		}
		*steps = append(*steps, migration.DropIndex{TableID: tp.Previous, IndexIndex: pid})
	}
	for _, nid := range created {
		if renamedCreated[nid] {
			continue
		}
		*steps = append(*steps, migration.CreateIndex{PreviousTableID: &tp.Previous, NextTableID: tp.Next, IndexIndex: nid})
	}
}

func (sd *SchemaDiffer) indexColumnsMatch(prevTable *schema.Table, pidx *schema.Index, nextTable *schema.Table, nidx *schema.Index) bool {
	if pidx.Kind != nidx.Kind || len(pidx.Parts) != len(nidx.Parts) {
		return false
	}
	pNames, nNames := pidx.ColumnNames(prevTable), nidx.ColumnNames(nextTable)
	for i, pn := range pNames {
		if !sd.flavour.ColumnNamesMatch(pn, nNames[i]) {
			return false
		}
	}
	return true
}

func indexBacksForeignKey(t *schema.Table, indexID int) bool {
	idx := t.Indexes[indexID]
	for _, fk := range t.ForeignKeys {
		if len(fk.Columns) != len(idx.Parts) {
			continue
		}
		matches := true
		for i, c := range fk.Columns {
			if idx.Parts[i] != c {
				matches = false
				break
			}
		}
		if matches {
			return true
		}
	}
	return false
}

func (sd *SchemaDiffer) pushRedefinedTables(tablesToRedefine map[string]struct{}, steps *[]migration.Step) {
	var tables []migration.RedefineTable
	for _, tp := range sd.db.TablePairs() {
		nextTable := sd.db.schemas.Next.TableAt(tp.Next)
		if _, ok := tablesToRedefine[nextTable.Name]; !ok {
			continue
		}
		td := sd.TableDiffer(tp.Previous)

		var columnPairs []migration.RedefineColumn
		for _, cp := range td.ColumnPairs() {
			prevCol := td.Previous().ColumnAt(cp.Previous)
			nextCol := td.Next().ColumnAt(cp.Next)
			diff := DiffColumns(sd.flavour, prevCol, nextCol)
			columnPairs = append(columnPairs, migration.RedefineColumn{
				ColumnIDs:  cp,
				Changes:    diff.Changes,
				TypeChange: diff.TypeChange,
			})
		}

		tables = append(tables, migration.RedefineTable{
			TableIDs:          tp,
			DroppedPrimaryKey: td.DroppedPrimaryKey(),
			AddedColumns:      td.AddedColumns(),
			DroppedColumns:    td.DroppedColumns(),
			ColumnPairs:       columnPairs,
		})

		if sd.flavour.ShouldDropIndexesFromDroppedTables() {
			for _, iid := range td.DroppedIndexes() {
				*steps = append(*steps, migration.DropIndex{TableID: tp.Previous, IndexIndex: iid})
			}
		}
	}
	if len(tables) > 0 {
		*steps = append(*steps, migration.RedefineTables{Tables: tables})
	}
}

func (sd *SchemaDiffer) pushAlteredEnums(steps *[]migration.Step) {
	alters := sd.flavour.AlterEnums(sd)
	for i := range alters {
		prevEnum := sd.db.schemas.Previous.Enums[alters[i].Enums.Previous]
		alters[i].PreviousUsagesAsDefault = sd.enumDefaultUsages(prevEnum.Name)
		*steps = append(*steps, alters[i])
	}
}

// enumDefaultUsages finds every column, across every matched table
// pair, that defaults to one of enumName's values in the previous
// schema. It reports the column's position in both schemas when the
// column still exists and still defaults to the same enum in the next
// schema, so the renderer can drop the default before editing the
// enum and restore it afterward.
func (sd *SchemaDiffer) enumDefaultUsages(enumName string) []migration.EnumDefaultUsage {
	var usages []migration.EnumDefaultUsage
	for _, tp := range sd.db.TablePairs() {
		prevTable := sd.db.schemas.Previous.TableAt(tp.Previous)
		td := sd.TableDiffer(tp.Previous)
		columnPairs := td.ColumnPairs()
		for cid, col := range prevTable.Columns {
			if col.Default == nil {
				continue
			}
			et, ok := col.Type.(schema.EnumType)
			if !ok || et.Enum != enumName {
				continue
			}
			usage := migration.EnumDefaultUsage{Previous: migration.ColumnRef{TableID: tp.Previous, ColumnID: cid}}
			for _, cp := range columnPairs {
				if cp.Previous != cid {
					continue
				}
				nextCol := td.Next().ColumnAt(cp.Next)
				if net, ok := nextCol.Type.(schema.EnumType); ok && net.Enum == enumName && nextCol.Default != nil {
					usage.Next = &migration.ColumnRef{TableID: tp.Next, ColumnID: cp.Next}
				}
				break
			}
			usages = append(usages, usage)
		}
	}
	return usages
}
