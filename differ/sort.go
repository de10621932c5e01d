// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package differ

import (
	"sort"

	"ariga.io/schemadiff/migration"
)

// stepKind assigns each Step variant a position in the total order the
// pipeline emits steps in. The order is chosen so that the dependency
// invariants the renderer relies on hold without a full topological
// sort: a foreign key is always dropped before its table, a table is
// always created before a foreign key into it is added, and so on.
func stepKind(s migration.Step) int {
	switch s.(type) {
	case migration.DropForeignKey:
		return 0
	case migration.DropIndex:
		return 1
	case migration.DropTable:
		return 2
	case migration.DropEnum:
		return 3
	case migration.CreateEnum:
		return 4
	case migration.CreateTable:
		return 5
	case migration.AlterEnum:
		return 6
	case migration.AlterTable:
		return 7
	case migration.CreateIndex:
		return 8
	case migration.AlterIndex:
		return 9
	case migration.RedefineIndex:
		return 10
	case migration.AddForeignKey:
		return 11
	case migration.RedefineTables:
		return 12
	default:
		return 13
	}
}

// SortSteps stably sorts steps into the pipeline's canonical order.
// Stability preserves the relative order the pipeline constructed
// steps of the same kind in (e.g. two CreateTable steps keep appearing
// in the order their tables were discovered).
func SortSteps(steps []migration.Step) {
	sort.SliceStable(steps, func(i, j int) bool {
		return stepKind(steps[i]) < stepKind(steps[j])
	})
}

// tableChangeKind mirrors stepKind for the closed set of TableChange
// variants that can appear inside a single AlterTable step.
func tableChangeKind(c migration.TableChange) int {
	switch c.(type) {
	case migration.DropPrimaryKey:
		return 0
	case migration.DropColumn:
		return 1
	case migration.AddColumn:
		return 2
	case migration.AlterColumn:
		return 3
	case migration.DropAndRecreateColumn:
		return 4
	case migration.AddPrimaryKey:
		return 5
	default:
		return 6
	}
}

// SortTableChanges stably sorts the changes inside one AlterTable step
// into their canonical order: DropPrimaryKey, DropColumn(s),
// AddColumn(s), AlterColumn(s) (already built in (previous, next)
// column id order), DropAndRecreateColumn(s), AddPrimaryKey.
func SortTableChanges(changes []migration.TableChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		return tableChangeKind(changes[i]) < tableChangeKind(changes[j])
	})
}
