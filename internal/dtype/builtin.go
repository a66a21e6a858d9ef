package dtype

import "dynarray/internal/dyerr"

// BuiltinID names one of the inline scalar kinds (spec §3 "Builtin
// scalar"). Builtin ids never allocate — element_size and alignment are
// derived from the id with no heap object behind the handle.
type BuiltinID uint8

const (
	Bool BuiltinID = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Complex64
	Complex128
	builtinCount
)

var builtinNames = [builtinCount]string{
	Bool: "bool", Int8: "int8", Int16: "int16", Int32: "int32", Int64: "int64",
	Uint8: "uint8", Uint16: "uint16", Uint32: "uint32", Uint64: "uint64",
	Float32: "float32", Float64: "float64", Complex64: "complex64", Complex128: "complex128",
}

var builtinSizes = [builtinCount]int{
	Bool: 1, Int8: 1, Int16: 2, Int32: 4, Int64: 8,
	Uint8: 1, Uint16: 2, Uint32: 4, Uint64: 8,
	Float32: 4, Float64: 8, Complex64: 8, Complex128: 16,
}

func (id BuiltinID) String() string      { return builtinNames[id] }
func (id BuiltinID) ElementSize() int    { return builtinSizes[id] }
func (id BuiltinID) Alignment() int      { return builtinSizes[id] }
func (id BuiltinID) IsFloat() bool       { return id == Float32 || id == Float64 }
func (id BuiltinID) IsComplex() bool     { return id == Complex64 || id == Complex128 }
func (id BuiltinID) IsUnsigned() bool    { return id >= Uint8 && id <= Uint64 }
func (id BuiltinID) IsSignedInteger() bool {
	return id >= Int8 && id <= Int64
}
func (id BuiltinID) IsInteger() bool { return id.IsSignedInteger() || id.IsUnsigned() || id == Bool }

// byName looks up a builtin id by its canonical spelling, used by the
// type-of-type string parser (spec §4.2 "assignment from a string parses
// the text to a type" — a name-table lookup stands in for the full grammar
// parser named out-of-scope in §1).
func byName(name string) (BuiltinID, bool) {
	for i := BuiltinID(0); i < builtinCount; i++ {
		if builtinNames[i] == name {
			return i, true
		}
	}
	return 0, false
}

// Type is the type handle: a tagged union of a builtin scalar id or a
// pointer to a heap-allocated composite type object (spec §3, §9 "Type
// handles as tagged values"). The zero Type is not a valid handle; use one
// of the Bool/Int32/... constants or a Make* factory.
type Type struct {
	builtin BuiltinID
	heap    TypeImpl // nil iff this handle names a builtin
}

// Builtin wraps a BuiltinID as a Type handle. Builtin handles never
// allocate and compare equal by value.
func Builtin(id BuiltinID) Type { return Type{builtin: id} }

// Composite wraps a heap-allocated TypeImpl as a Type handle.
func Composite(impl TypeImpl) Type { return Type{heap: impl} }

var (
	TBool       = Builtin(Bool)
	TInt8       = Builtin(Int8)
	TInt16      = Builtin(Int16)
	TInt32      = Builtin(Int32)
	TInt64      = Builtin(Int64)
	TUint8      = Builtin(Uint8)
	TUint16     = Builtin(Uint16)
	TUint32     = Builtin(Uint32)
	TUint64     = Builtin(Uint64)
	TFloat32    = Builtin(Float32)
	TFloat64    = Builtin(Float64)
	TComplex64  = Builtin(Complex64)
	TComplex128 = Builtin(Complex128)
)

// IsBuiltin reports whether t names an inline scalar id rather than a heap
// composite object.
func (t Type) IsBuiltin() bool { return t.heap == nil }

// BuiltinID returns the scalar id this handle names; valid only when
// IsBuiltin is true.
func (t Type) BuiltinID() BuiltinID { return t.builtin }

// Impl returns the heap TypeImpl this handle points to, or nil for a
// builtin handle.
func (t Type) Impl() TypeImpl { return t.heap }

func (t Type) ElementSize() int {
	if t.IsBuiltin() {
		return t.builtin.ElementSize()
	}
	return t.heap.ElementSize()
}

func (t Type) Alignment() int {
	if t.IsBuiltin() {
		return t.builtin.Alignment()
	}
	return t.heap.Alignment()
}

func (t Type) Kind() Kind {
	if t.IsBuiltin() {
		return KindPod
	}
	return t.heap.Kind()
}

func (t Type) MetadataSize() int {
	if t.IsBuiltin() {
		return 0
	}
	return t.heap.MetadataSize()
}

func (t Type) MemoryManagement() MemoryManagement {
	if t.IsBuiltin() {
		return ManagementPod
	}
	return t.heap.MemoryManagement()
}

func (t Type) Flags() Flags {
	if t.IsBuiltin() {
		return FlagScalar | FlagZeroinit
	}
	return t.heap.Flags()
}

// IsExpression reports whether values of this type require a storage↔value
// kernel chain to materialize (spec §3 "Expression-kind types").
func (t Type) IsExpression() bool { return t.Kind() == KindExpression }

// String renders the type's canonical spelling (print_type, spec §4.2).
func (t Type) String() string {
	if t.IsBuiltin() {
		return t.builtin.String()
	}
	return t.heap.String()
}

// Equal implements the structural, name-agnostic equality of spec §3
// ("interned by structural equality only... not required to share pointer
// identity").
func (t Type) Equal(other Type) bool {
	if t.IsBuiltin() != other.IsBuiltin() {
		return false
	}
	if t.IsBuiltin() {
		return t.builtin == other.builtin
	}
	return t.heap.Equal(other.heap)
}

// StorageType and ValueType answer the expression-kind decomposition of
// spec §3/§4.2. For a non-expression type both return t itself.
func (t Type) StorageType() Type {
	if ex, ok := t.heap.(ExpressionImpl); ok {
		return ex.StorageType()
	}
	return t
}

func (t Type) ValueType() Type {
	if ex, ok := t.heap.(ExpressionImpl); ok {
		return ex.ValueType()
	}
	return t
}

// ErrCannotAssign renders the standard "cannot assign from X to Y" message
// required by spec §4.7 step 3, for use by internal/assign's dispatcher
// once every TypeImpl.AssignFrom on both sides has declined.
func ErrCannotAssign(src, dst Type) error {
	return dyerr.AssignFrom(src, dst)
}
