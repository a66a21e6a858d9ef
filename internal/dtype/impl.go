package dtype

import "dynarray/internal/kernel"

// TypeImpl is implemented by every heap-allocated composite type object
// (spec §3 "Composite", §4.2 "Operations every type provides"). A TypeImpl
// carries its own refcount in the embedding struct's choice of storage —
// here, composite types are not interned (spec §9 "Global type registry":
// "composite types are produced on demand and not interned — structural
// equality suffices"), so they are plain Go values reachable only through
// the Type handle that wraps them; Go's GC retires the refcounting that the
// original needs for manual memory management.
type TypeImpl interface {
	// String renders the type's canonical spelling (print_type).
	String() string

	// ElementSize is the byte size of one value, 0 for variable-sized
	// types such as string.
	ElementSize() int
	Alignment() int
	Kind() Kind
	MetadataSize() int
	MemoryManagement() MemoryManagement
	Flags() Flags

	// Equal implements structural equality against another TypeImpl of
	// (possibly) the same concrete type; implementations type-assert other
	// and return false on a kind mismatch.
	Equal(other TypeImpl) bool

	// MetadataDefaultConstruct lays down per-instance offset/stride tables
	// into buf, validating ndim/shape against this type's own structure
	// (spec §4.2; struct_dtype.cpp's rollback-on-failure pattern, spec
	// SPEC_FULL.md supplemented feature 3).
	MetadataDefaultConstruct(buf []byte, ndim int, shape []int64) error
	MetadataCopyConstruct(dst, src []byte)
	MetadataDestruct(buf []byte)

	// PrintData renders one element's worth of data at the given metadata
	// into a human-readable string (print_data, spec §4.2, §6 "Streams").
	PrintData(metadata, data []byte) string

	// AssignFrom attempts to produce a kernel that assigns a value of type
	// src into a destination of this type, appending it to b. ok is false
	// when this type does not know how to consume src; the dispatcher in
	// internal/assign then tries its other strategies (builtin numeric
	// conversion, stringifying into a string destination, expression-kind
	// decomposition). src's own TypeImpl is never asked.
	AssignFrom(b *kernel.Builder, dstMeta []byte, src Type, srcMeta []byte, mode AssignErrorMode) (ok bool, err error)
}

// ExpressionImpl is additionally implemented by expression-kind types
// (convert, view, categorical): values are
// represented in a different storage_type and require a kernel chain to
// materialize into value_type (spec §3 "Expression-kind types", §4.4
// "Storage↔value chains").
type ExpressionImpl interface {
	TypeImpl
	StorageType() Type
	ValueType() Type

	// ValueToStorage and StorageToValue return the one conversion kernel
	// this type contributes to a push_front_storage_to_value /
	// push_back_value_to_storage chain (spec §4.4); internal/assign
	// threads them together with any operand conversions.
	StorageToValue() kernel.Unary
	ValueToStorage(mode AssignErrorMode) kernel.Unary
}
