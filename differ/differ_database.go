// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package differ

import (
	"ariga.io/schemadiff/pair"
	"ariga.io/schemadiff/schema"
)

// A DifferDatabase precomputes the cross-schema lookups that the rest
// of the differ needs repeatedly: which tables exist on only one side,
// which pair up under the flavour's identity rules, and a name index
// into each side's columns and indexes so that per-table differs never
// have to rescan a whole schema to answer "does this name exist on the
// other side".
type DifferDatabase struct {
	schemas pair.Pair[*schema.Schema]
	flavour Flavour

	tablePairs    []pair.Pair[int]
	createdTables []int
	droppedTables []int

	// columnsByName[0] indexes schemas.Previous, columnsByName[1]
	// indexes schemas.Next. Each maps a TableID to a name->ColumnID
	// lookup for that table.
	columnsByName [2]map[int]map[string]int
	// indexesByName mirrors columnsByName for index names.
	indexesByName [2]map[int]map[string]int
}

// NewDifferDatabase builds a DifferDatabase for the given schema pair
// under flavour's identity rules.
func NewDifferDatabase(schemas pair.Pair[*schema.Schema], flavour Flavour) *DifferDatabase {
	db := &DifferDatabase{schemas: schemas, flavour: flavour}
	db.indexNames()
	db.pairTables()
	return db
}

func (db *DifferDatabase) indexNames() {
	sides := [2]*schema.Schema{db.schemas.Previous, db.schemas.Next}
	for side, s := range sides {
		db.columnsByName[side] = make(map[int]map[string]int, len(s.Tables))
		db.indexesByName[side] = make(map[int]map[string]int, len(s.Tables))
		for tid, t := range s.Tables {
			cols := make(map[string]int, len(t.Columns))
			for cid, c := range t.Columns {
				cols[c.Name] = cid
			}
			db.columnsByName[side][tid] = cols
			idxs := make(map[string]int, len(t.Indexes))
			for iid, idx := range t.Indexes {
				idxs[idx.Name] = iid
			}
			db.indexesByName[side][tid] = idxs
		}
	}
}

func (db *DifferDatabase) pairTables() {
	matchedNext := make(map[int]bool, len(db.schemas.Next.Tables))
	for pid, pt := range db.schemas.Previous.Tables {
		matched := false
		for nid, nt := range db.schemas.Next.Tables {
			if matchedNext[nid] {
				continue
			}
			if db.flavour.TableNamesMatch(pair.New(pt.Name, nt.Name)) {
				db.tablePairs = append(db.tablePairs, pair.New(pid, nid))
				matchedNext[nid] = true
				matched = true
				break
			}
		}
		if !matched {
			db.droppedTables = append(db.droppedTables, pid)
		}
	}
	for nid := range db.schemas.Next.Tables {
		if !matchedNext[nid] {
			db.createdTables = append(db.createdTables, nid)
		}
	}
}

// Schemas returns the pair of schemas this DifferDatabase was built
// from.
func (db *DifferDatabase) Schemas() pair.Pair[*schema.Schema] {
	return db.schemas
}

// TablePairs returns the TableID pairs that matched across both
// schemas, in the order tables appear in the previous schema.
func (db *DifferDatabase) TablePairs() []pair.Pair[int] {
	return db.tablePairs
}

// CreatedTables returns the TableIDs (in the next schema) of tables
// that exist only in the next schema.
func (db *DifferDatabase) CreatedTables() []int {
	return db.createdTables
}

// DroppedTables returns the TableIDs (in the previous schema) of
// tables that exist only in the previous schema.
func (db *DifferDatabase) DroppedTables() []int {
	return db.droppedTables
}

// ColumnByName looks up a column by exact name on the table at tableID,
// on the given side (0 = previous, 1 = next).
func (db *DifferDatabase) ColumnByName(side, tableID int, name string) (int, bool) {
	id, ok := db.columnsByName[side][tableID][name]
	return id, ok
}

// IndexByName looks up an index by exact name on the table at tableID,
// on the given side (0 = previous, 1 = next).
func (db *DifferDatabase) IndexByName(side, tableID int, name string) (int, bool) {
	id, ok := db.indexesByName[side][tableID][name]
	return id, ok
}
