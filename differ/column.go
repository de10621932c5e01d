// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package differ

import (
	"ariga.io/schemadiff/migration"
	"ariga.io/schemadiff/schema"
)

// ColumnDiff classifies the differences between a paired previous and
// next column. It never decides whether the result is representable
// in place; that is SchemaDiffer's job, informed by TypeChange.
type ColumnDiff struct {
	Changes    migration.ColumnChanges
	TypeChange *migration.ColumnTypeChange
}

// DiffColumns compares prev and next under flavour and returns the
// attribute-level classification of what changed between them.
func DiffColumns(flavour Flavour, prev, next *schema.Column) ColumnDiff {
	var changes migration.ColumnChanges
	var typeChange *migration.ColumnTypeChange

	if prev.Type.Family() != next.Type.Family() {
		// A nil verdict means the flavour treats the two types as
		// equivalent (e.g. SQLite's integer affinity), so no type change.
		typeChange = flavour.ClassifyTypeChange(prev, next)
		if typeChange != nil {
			changes |= migration.ChangeType
		}
	} else if tc := sameFamilyTypeChange(prev.Type, next.Type); tc {
		changes |= migration.ChangeType
		verdict := migration.RiskyCast
		typeChange = &verdict
	}

	if prev.Arity != next.Arity {
		changes |= migration.ChangeArity
		if prev.Arity.IsRequired() != next.Arity.IsRequired() {
			changes |= migration.ChangeNotNull
		}
	}

	if !defaultsEqual(prev.Default, next.Default) {
		changes |= migration.ChangeDefault
	}

	if prev.AutoIncrement != next.AutoIncrement {
		changes |= migration.ChangeAutoIncrement
	}

	return ColumnDiff{Changes: changes, TypeChange: typeChange}
}

// sameFamilyTypeChange reports whether two types sharing a family still
// differ in a way that amounts to a type change (e.g. a narrower
// varchar, a different decimal precision/scale).
func sameFamilyTypeChange(prev, next schema.Type) bool {
	switch p := prev.(type) {
	case schema.StringType:
		n := next.(schema.StringType)
		return p.Size != n.Size
	case schema.BinaryType:
		n := next.(schema.BinaryType)
		return p.Size != n.Size
	case schema.DecimalType:
		n := next.(schema.DecimalType)
		return p.Precision != n.Precision || p.Scale != n.Scale
	case schema.FloatType:
		n := next.(schema.FloatType)
		return p.Precision != n.Precision
	case schema.DateTimeType:
		n := next.(schema.DateTimeType)
		return p.Precision != n.Precision
	case schema.EnumType:
		n := next.(schema.EnumType)
		return p.Enum != n.Enum
	case schema.UnsupportedType:
		n := next.(schema.UnsupportedType)
		return p.Raw != n.Raw
	default:
		return false
	}
}

func defaultsEqual(prev, next *schema.Expr) bool {
	if prev == nil || next == nil {
		return prev == next
	}
	return prev.Text == next.Text
}
