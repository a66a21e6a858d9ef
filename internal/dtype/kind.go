// Package dtype implements the open type system (spec §3 "Type
// descriptor", §4.2): a type handle is a small tagged value — either a
// builtin scalar id or a pointer to a heap-allocated composite type object.
// Composite objects carry no refcount; Go's garbage collector keeps them
// alive while any handle points at them.
//
// Grounded on _examples/sentra-language-sentra/internal/vmregister/value.go
// for the "small integer id vs. tagged heap pointer" representation this
// package generalizes from a single NaN-boxed word into an explicit Go
// tagged union (spec §9 "Type handles as tagged values" recommends exactly
// this Builtin(id) | Heap(Arc<dyn TypeImpl>) shape), and on
// _examples/original_source/src/dynd/dtypes/struct_dtype.cpp and
// type_type.cpp for the composite-type virtual operation set.
package dtype

// Kind classifies how a type's values are stored and evaluated.
type Kind uint8

const (
	KindPod        Kind = iota // plain fixed-layout data, assignable by memcpy when types match
	KindExpression             // storage_type != value_type; needs a kernel chain to materialize
	KindString                 // variable-sized string/bytes storage
	KindCustom                 // categorical and other types with bespoke metadata/behavior
)

func (k Kind) String() string {
	switch k {
	case KindPod:
		return "pod"
	case KindExpression:
		return "expression"
	case KindString:
		return "string"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// MemoryManagement is a type's data-lifecycle discipline (spec §3
// "Composite" variant).
type MemoryManagement uint8

const (
	ManagementPod MemoryManagement = iota
	ManagementZeroinit
	ManagementBlockref
	ManagementObject
)

// Flags is a bitmask of per-type properties (spec §4.2 "flags (scalar,
// zero-init, has-destructor, etc.)").
type Flags uint32

const (
	FlagScalar Flags = 1 << iota
	FlagZeroinit
	FlagHasDestructor
	FlagExpression
)

// AssignErrorMode controls how numeric narrowing is validated during
// assignment (spec §6 "Error modes", §4.7).
type AssignErrorMode uint8

const (
	ErrorModeNone AssignErrorMode = iota
	ErrorModeOverflow
	ErrorModeFractional
	ErrorModeInexact
)
