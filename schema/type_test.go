// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArity(t *testing.T) {
	require.True(t, Required.IsRequired())
	require.False(t, Required.IsNullable())
	require.True(t, Nullable.IsNullable())
	require.False(t, List.IsRequired())
}

func TestTypeFamilies(t *testing.T) {
	cases := []struct {
		typ    Type
		family TypeFamily
	}{
		{IntType{}, FamilyInt},
		{BigIntType{}, FamilyBigInt},
		{FloatType{Precision: 24}, FamilyFloat},
		{DecimalType{Precision: 10, Scale: 2}, FamilyDecimal},
		{BooleanType{}, FamilyBoolean},
		{StringType{Size: 255}, FamilyString},
		{DateTimeType{Precision: 6}, FamilyDateTime},
		{BinaryType{Size: 16}, FamilyBinary},
		{JSONType{}, FamilyJSON},
		{UUIDType{}, FamilyUUID},
		{EnumType{Enum: "status"}, FamilyEnum},
		{UnsupportedType{Raw: "geometry"}, FamilyUnsupported},
	}
	for _, c := range cases {
		require.Equal(t, c.family, c.typ.Family())
	}
}
