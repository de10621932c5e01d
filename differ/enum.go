// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package differ

import (
	"ariga.io/schemadiff/pair"
	"ariga.io/schemadiff/schema"
)

// An EnumDiffer pairs enums by name across the two schemas and reports
// which ones were created, dropped, or changed their value set.
type EnumDiffer struct {
	schemas pair.Pair[*schema.Schema]

	pairs   []pair.Pair[int]
	created []int
	dropped []int
}

// NewEnumDiffer pairs every enum in schemas.Previous and
// schemas.Next by exact name match.
func NewEnumDiffer(schemas pair.Pair[*schema.Schema]) *EnumDiffer {
	ed := &EnumDiffer{schemas: schemas}
	matchedNext := make(map[int]bool, len(schemas.Next.Enums))
	for pid, pe := range schemas.Previous.Enums {
		matched := false
		for nid, ne := range schemas.Next.Enums {
			if matchedNext[nid] {
				continue
			}
			if pe.Name == ne.Name {
				ed.pairs = append(ed.pairs, pair.New(pid, nid))
				matchedNext[nid] = true
				matched = true
				break
			}
		}
		if !matched {
			ed.dropped = append(ed.dropped, pid)
		}
	}
	for nid := range schemas.Next.Enums {
		if !matchedNext[nid] {
			ed.created = append(ed.created, nid)
		}
	}
	return ed
}

// Pairs returns the EnumID pairs that matched by name.
func (ed *EnumDiffer) Pairs() []pair.Pair[int] {
	return ed.pairs
}

// Created returns the EnumIDs (in the next schema) of enums with no
// match in the previous schema.
func (ed *EnumDiffer) Created() []int {
	return ed.created
}

// Dropped returns the EnumIDs (in the previous schema) of enums with
// no match in the next schema.
func (ed *EnumDiffer) Dropped() []int {
	return ed.dropped
}

// Changed reports whether the paired enum at p has a different
// ordered value set between the two schemas.
func (ed *EnumDiffer) Changed(p pair.Pair[int]) bool {
	prev := ed.schemas.Previous.Enums[p.Previous]
	next := ed.schemas.Next.Enums[p.Next]
	if len(prev.Values) != len(next.Values) {
		return true
	}
	for i, v := range prev.Values {
		if next.Values[i] != v {
			return true
		}
	}
	return false
}

// DroppedValues returns the values present in the previous enum but
// absent from the next one, for the paired enum at p.
func (ed *EnumDiffer) DroppedValues(p pair.Pair[int]) []string {
	prev := ed.schemas.Previous.Enums[p.Previous]
	next := ed.schemas.Next.Enums[p.Next]
	nextSet := make(map[string]bool, len(next.Values))
	for _, v := range next.Values {
		nextSet[v] = true
	}
	var dropped []string
	for _, v := range prev.Values {
		if !nextSet[v] {
			dropped = append(dropped, v)
		}
	}
	return dropped
}
