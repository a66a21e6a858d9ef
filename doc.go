// Package dynarray implements a dynamic, typed, n-dimensional array
// engine: users construct heterogeneously-typed multi-dimensional arrays,
// slice and reshape them, cast between element types, and evaluate
// elementwise or reducing computations over them. Storage is decoupled
// from type, and type is decoupled from the expression being evaluated.
//
// This package is the public facade wiring the internal layers together:
// internal/dtype's open type system, internal/node's deferred expression
// graph, internal/gfunc's elementwise/reduce/rolling dispatch, and
// internal/assign's type-pair conversion engine. Array is the one exported
// value type; everything else is reached through it or through the
// re-exported type-factory functions below.
//
// Grounded on _examples/sentra-language-sentra's convention of a thin,
// mostly re-exporting root package sitting over a deep internal/ tree.
package dynarray

import "dynarray/internal/dtype"

// Type is a type descriptor handle (spec §3 "Type descriptor"): either a
// builtin scalar id or a heap composite type object. Re-exported from
// internal/dtype so callers never need to import it directly.
type Type = dtype.Type

// AssignErrorMode controls how numeric narrowing is validated during
// assignment (spec §6 "Error modes").
type AssignErrorMode = dtype.AssignErrorMode

const (
	ErrorModeNone       = dtype.ErrorModeNone
	ErrorModeOverflow   = dtype.ErrorModeOverflow
	ErrorModeFractional = dtype.ErrorModeFractional
	ErrorModeInexact    = dtype.ErrorModeInexact
)

// Builtin scalar types, re-exported for callers building arrays without
// reaching into internal/dtype.
var (
	Bool       = dtype.TBool
	Int8       = dtype.TInt8
	Int16      = dtype.TInt16
	Int32      = dtype.TInt32
	Int64      = dtype.TInt64
	Uint8      = dtype.TUint8
	Uint16     = dtype.TUint16
	Uint32     = dtype.TUint32
	Uint64     = dtype.TUint64
	Float32    = dtype.TFloat32
	Float64    = dtype.TFloat64
	Complex64  = dtype.TComplex64
	Complex128 = dtype.TComplex128
)
