// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package schema

// An Arity describes the cardinality of a column value.
type Arity uint8

const (
	// Required columns reject NULL.
	Required Arity = iota
	// Nullable columns accept NULL.
	Nullable
	// List columns hold an ordered collection of values (e.g. a
	// dialect-native array type). Atlas-style relational dialects in
	// this differ's scope never produce List columns directly, but the
	// arity is part of the closed set so flavours can reason about it
	// uniformly with column families that do support it.
	List
)

// IsRequired reports whether a is Required.
func (a Arity) IsRequired() bool { return a == Required }

// IsNullable reports whether a is Nullable.
func (a Arity) IsNullable() bool { return a == Nullable }

// A Type is a member of the closed set of column type families. The set
// is closed: Family returns one of the TypeFamily constants, and no
// other concrete Type implementations exist outside this package.
type Type interface {
	Family() TypeFamily
}

// A TypeFamily enumerates the closed set of column type families.
type TypeFamily uint8

const (
	FamilyInt TypeFamily = iota
	FamilyBigInt
	FamilyFloat
	FamilyDecimal
	FamilyBoolean
	FamilyString
	FamilyDateTime
	FamilyBinary
	FamilyJSON
	FamilyUUID
	FamilyEnum
	FamilyUnsupported
)

type (
	// IntType is a 32-bit (or dialect-equivalent) integer.
	IntType struct{}
	// BigIntType is a 64-bit (or dialect-equivalent) integer.
	BigIntType struct{}
	// FloatType is an IEEE floating point number.
	FloatType struct{ Precision int }
	// DecimalType is a fixed-point number.
	DecimalType struct{ Precision, Scale int }
	// BooleanType is a boolean.
	BooleanType struct{}
	// StringType is a character string, bounded by Size when Size > 0.
	StringType struct{ Size int }
	// DateTimeType is a timestamp, optionally with a precision.
	DateTimeType struct{ Precision int }
	// BinaryType is a byte string, bounded by Size when Size > 0.
	BinaryType struct{ Size int }
	// JSONType is a JSON document.
	JSONType struct{}
	// UUIDType is a 128-bit UUID.
	UUIDType struct{}
	// EnumType references a named Enum defined in the owning Schema.
	EnumType struct{ Enum string }
	// UnsupportedType carries the dialect's raw type string for a type
	// the differ has no specific family for. Two UnsupportedTypes with
	// different Raw strings are a same-family type change, which
	// differ.DiffColumns classifies as RiskyCast; a change to or from
	// another family is classified by the flavour's ClassifyTypeChange.
	UnsupportedType struct{ Raw string }
)

func (IntType) Family() TypeFamily           { return FamilyInt }
func (BigIntType) Family() TypeFamily        { return FamilyBigInt }
func (FloatType) Family() TypeFamily         { return FamilyFloat }
func (DecimalType) Family() TypeFamily       { return FamilyDecimal }
func (BooleanType) Family() TypeFamily       { return FamilyBoolean }
func (StringType) Family() TypeFamily        { return FamilyString }
func (DateTimeType) Family() TypeFamily      { return FamilyDateTime }
func (BinaryType) Family() TypeFamily        { return FamilyBinary }
func (JSONType) Family() TypeFamily          { return FamilyJSON }
func (UUIDType) Family() TypeFamily          { return FamilyUUID }
func (EnumType) Family() TypeFamily          { return FamilyEnum }
func (UnsupportedType) Family() TypeFamily   { return FamilyUnsupported }
