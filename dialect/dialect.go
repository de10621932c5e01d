// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package dialect provides the differ.Flavour implementations for the
// dialects this differ supports: SQLite, MySQL, PostgreSQL and SQL
// Server. Each Flavour is a pure-predicate strategy object; none of
// them talk to a live database.
package dialect

import (
	"strings"

	"ariga.io/schemadiff/differ"
	"ariga.io/schemadiff/migration"
	"ariga.io/schemadiff/schema"
)

// newFeatureSet builds a Feature set from a variadic list, the
// convenience atlas-style Driver constructors use for their own
// option sets.
func newFeatureSet(features ...differ.Feature) map[differ.Feature]struct{} {
	set := make(map[differ.Feature]struct{}, len(features))
	for _, f := range features {
		set[f] = struct{}{}
	}
	return set
}

// exactNameMatch is the identity rule for dialects whose identifiers
// are byte-exact case-sensitive (SQLite and PostgreSQL's default
// unquoted behavior, which atlas's inspection normalizes to already).
func exactNameMatch(a, b string) bool {
	return a == b
}

// caseInsensitiveNameMatch is the identity rule for dialects whose
// default collation treats identifiers case-insensitively (SQL
// Server's default collation; MySQL on case-insensitive filesystems).
func caseInsensitiveNameMatch(a, b string) bool {
	return strings.EqualFold(a, b)
}

// widenable reports whether moving from prev to next bytes/precision
// within the same family is a safe cast (widening) or risky
// (narrowing).
func widenable(prevSize, nextSize int) migration.ColumnTypeChange {
	if nextSize == 0 || prevSize == 0 || nextSize >= prevSize {
		return migration.SafeCast
	}
	return migration.RiskyCast
}

// crossFamilyCast classifies a type change between two different
// families using the same conservative rule every dialect in this
// package shares: numeric families interconvert with risk, anything
// converts safely into a string, a string converts into anything else
// with risk, and everything else is not castable in place.
func crossFamilyCast(prev, next schema.Type) migration.ColumnTypeChange {
	pf, nf := prev.Family(), next.Family()
	if nf == schema.FamilyString {
		return migration.SafeCast
	}
	if pf == schema.FamilyString {
		return migration.RiskyCast
	}
	if isNumericFamily(pf) && isNumericFamily(nf) {
		return migration.RiskyCast
	}
	return migration.NotCastable
}

func isNumericFamily(f schema.TypeFamily) bool {
	switch f {
	case schema.FamilyInt, schema.FamilyBigInt, schema.FamilyFloat, schema.FamilyDecimal:
		return true
	default:
		return false
	}
}

func ptr(c migration.ColumnTypeChange) *migration.ColumnTypeChange {
	return &c
}

// normalizeEmptyReferenceAction maps an unspecified ReferenceOption to
// schema.NoAction before two actions are compared. SQLite and
// PostgreSQL treat an omitted ON DELETE/ON UPDATE clause as NO ACTION
// and nothing else.
func normalizeEmptyReferenceAction(a schema.ReferenceOption) schema.ReferenceOption {
	if a == "" {
		return schema.NoAction
	}
	return a
}

// normalizeMySQLReferenceAction additionally folds RESTRICT into NO
// ACTION, since MySQL checks foreign keys immediately and treats the
// two as equivalent (see ariga.io/atlas/sql/mysql's ReferenceChanged).
func normalizeMySQLReferenceAction(a schema.ReferenceOption) schema.ReferenceOption {
	a = normalizeEmptyReferenceAction(a)
	if a == schema.Restrict {
		return schema.NoAction
	}
	return a
}
