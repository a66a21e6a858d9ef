// Package node implements the expression-node graph (spec §4.5): the
// immutable, copy-on-write IR of deferred array evaluation. A node answers
// category, dtype, ndim, shape, and access-flag questions without touching
// memory; evaluate() is the only operation that allocates and runs kernels.
//
// Grounded on
// _examples/original_source/include/dnd/nodes/ndarray_node.hpp for the
// node_category/access_flags/expr_node_type taxonomy and the
// as_dtype/apply_linear_index contracts. The original's boost::intrusive_ptr
// reference count (driving the "unique() permits in-place mutation"
// optimization, spec §5) is reimplemented here as a small atomic counter in
// the same style as internal/memblock's refcounted and
// internal/vmregister/value.go's NaN-boxed Value, rather than leaning on
// Go's GC to stand in for the original's explicit use-count check — the
// use-count is a semantic signal ("does any other handle alias this node"),
// not a lifetime mechanism, so GC reachability cannot substitute for it.
package node

import (
	"sync/atomic"

	"dynarray/internal/dtype"
)

// Category classifies how a node's data is reached (spec §4.5,
// ndarray_node_category).
type Category uint8

const (
	CategoryStridedArray Category = iota
	CategoryElementwise
	CategoryArbitrary
)

func (c Category) String() string {
	switch c {
	case CategoryStridedArray:
		return "strided_array"
	case CategoryElementwise:
		return "elementwise"
	case CategoryArbitrary:
		return "arbitrary"
	default:
		return "unknown"
	}
}

// NodeType identifies a node's concrete variant (spec §4.5, expr_node_type).
type NodeType uint8

const (
	TypeStridedArray NodeType = iota
	TypeImmutableScalar
	TypeElementwiseUnaryKernel
	TypeElementwiseBinaryKernel
)

func (t NodeType) String() string {
	switch t {
	case TypeStridedArray:
		return "strided_array"
	case TypeImmutableScalar:
		return "immutable_scalar"
	case TypeElementwiseUnaryKernel:
		return "elementwise_unary_kernel"
	case TypeElementwiseBinaryKernel:
		return "elementwise_binary_kernel"
	default:
		return "unknown"
	}
}

// AccessFlags is the bitmask named in spec §4.5 (read/write/immutable).
type AccessFlags uint32

const (
	AccessRead AccessFlags = 1 << iota
	AccessWrite
	AccessImmutable
)

func (f AccessFlags) Readable() bool  { return f&AccessRead != 0 }
func (f AccessFlags) Writable() bool  { return f&AccessWrite != 0 }
func (f AccessFlags) Immutable() bool { return f&AccessImmutable != 0 }

// Node is the virtual interface every node variant implements (spec §4.5).
type Node interface {
	Category() Category
	NodeType() NodeType
	DType() dtype.Type
	Ndim() int
	Shape() []int64
	AccessFlags() AccessFlags
	Nop() int
	Operand(i int) Node

	// AsDtype returns self if compatible, or a new node layered as a
	// conversion over self. allowInPlace permits mutating self when the
	// caller holds the only live reference (Unique()).
	AsDtype(dt dtype.Type, mode dtype.AssignErrorMode, allowInPlace bool) (Node, error)

	// ApplyLinearIndex pushes an index operation through the tree, folding
	// into a strided leaf's origin/strides where possible and descending
	// into operand nodes otherwise (spec §4.5). The invariant
	// broadcast(linear_index(node)) == linear_index(broadcast(node)) holds
	// on every implementation.
	ApplyLinearIndex(idx LinearIndex, allowInPlace bool) (Node, error)

	// Unique reports whether the caller holds the only live reference to
	// this node, permitting AsDtype/ApplyLinearIndex to mutate in place
	// instead of allocating a new node (spec §5).
	Unique() bool
	// Retain/Release adjust the node's use count; every place a node
	// pointer is stored in more than one parent must Retain it first.
	Retain()
	Release()
}

// refcount is the shared atomic use-count embedded by every node variant,
// mirroring internal/memblock.refcounted.
type refcount struct {
	count int32
}

func (r *refcount) init()        { atomic.StoreInt32(&r.count, 1) }
func (r *refcount) Retain()      { atomic.AddInt32(&r.count, 1) }
func (r *refcount) Release()     { atomic.AddInt32(&r.count, -1) }
func (r *refcount) Unique() bool { return atomic.LoadInt32(&r.count) <= 1 }

// LinearIndex bundles apply_linear_index's parameters (spec §4.5). This
// package scopes indexing to the non-broadcasting case: a node's own Ndim()
// must equal len(Shape) when the index is applied directly to it, matching
// how the top-level array facade resolves an irange.Range per axis before
// handing the result down the tree; broadcasting together nodes of
// differing rank is elementwise-kernel-node composition's job (spec §4.6),
// not indexing's.
type LinearIndex struct {
	// RemoveAxis[i] is true for a single-index selection that collapses
	// axis i (irange.Range.IsIndex()).
	RemoveAxis []bool
	// Start[i] is the resolved starting position along axis i.
	Start []int64
	// Strides[i] is the step multiplying axis i's existing stride; for a
	// removed axis this field is unused.
	Strides []int64
	// Shape[i] is the resulting size along axis i; unused where
	// RemoveAxis[i] is true.
	Shape []int64
}

// Ndim is the rank the index was resolved against.
func (idx LinearIndex) Ndim() int { return len(idx.RemoveAxis) }

// outShape is the shape remaining after axes flagged RemoveAxis are
// dropped, used by every ApplyLinearIndex implementation.
func (idx LinearIndex) outShape() []int64 {
	out := make([]int64, 0, len(idx.Shape))
	for i, rm := range idx.RemoveAxis {
		if !rm {
			out = append(out, idx.Shape[i])
		}
	}
	return out
}

// contiguousStrides computes the C-order (row-major) element strides for
// shape, the layout evaluate() gives every output buffer it allocates.
func contiguousStrides(shape []int64, elementSize int) []int64 {
	n := len(shape)
	strides := make([]int64, n)
	acc := int64(elementSize)
	for i := n - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

func elementCount(shape []int64) int64 {
	n := int64(1)
	for _, s := range shape {
		n *= s
	}
	return n
}
