// Package gfunc implements general functions (spec §4.6): keyed dispatch
// tables mapping parameter-type tuples to kernels, plus the reduce and
// rolling/window evaluators built on top of them.
//
// Grounded on
// _examples/original_source/include/dnd/gfunc/elwise_reduce_gfunc.hpp for
// the find_matching_kernel/add_kernel dispatch-table shape; the elementwise
// (non-reduce) table below is the structurally identical sibling the
// original's elwise_gfunc.hpp would have held, built the same way since no
// copy of that header survived in the retrieved source tree.
package gfunc

import (
	"dynarray/internal/dtype"
	"dynarray/internal/kernel"
	"dynarray/internal/node"
)

// ElementwiseKernel is one registered implementation of an elementwise
// gfunc: a parameter-type tuple plus the kernel that produces ReturnType
// from operands of those types. Exactly one of Unary/Binary is set,
// matching the node package's own unary/binary kernel node split.
type ElementwiseKernel struct {
	ParamTypes []dtype.Type
	ReturnType dtype.Type
	Unary      kernel.Unary
	Binary     kernel.Binary
}

func (k *ElementwiseKernel) arity() int { return len(k.ParamTypes) }

func paramTypesEqual(a, b []dtype.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Elementwise is a named dispatch table of ElementwiseKernel (spec §4.6
// "a gfunc is a keyed dispatch table of kernel implementations over
// parameter-type tuples"). The backing slice plays the role of the
// original's deque: kernels are appended, never reordered or copied out
// from under a live pointer, and FindMatchingKernel always returns the
// first match (registration order is significant, matching
// find_matching_kernel's "first kernel whose parameter-type vector
// equals... under operator==").
type Elementwise struct {
	name    string
	kernels []*ElementwiseKernel
}

// NewElementwise names a new, empty elementwise gfunc.
func NewElementwise(name string) *Elementwise {
	return &Elementwise{name: name}
}

// Name is the gfunc's registered name, used in error messages.
func (g *Elementwise) Name() string { return g.name }

// AddKernel registers k. The original swaps a kernel_instance out of a
// caller-owned temporary to avoid copying non-copyable kernel state; a Go
// kernel.Unary/kernel.Binary value is safe to copy by value (its Aux is an
// interface, not an owning raw pointer), so AddKernel simply stores k's
// pointer rather than requiring a swap — the non-copy discipline is
// preserved by storing the pointer, not the kernel slot.
func (g *Elementwise) AddKernel(k *ElementwiseKernel) {
	g.kernels = append(g.kernels, k)
}

// FindMatchingKernel returns the first registered kernel whose parameter
// types equal paramtypes, in registration order (spec §4.6).
func (g *Elementwise) FindMatchingKernel(paramtypes []dtype.Type) (*ElementwiseKernel, bool) {
	for _, k := range g.kernels {
		if paramTypesEqual(k.ParamTypes, paramtypes) {
			return k, true
		}
	}
	return nil, false
}

// Apply dispatches on the dtypes of args and wraps them in the matching
// elementwise kernel node. Broadcasting between differently-shaped operands
// is assumed already resolved by the caller (internal/node's
// ElementwiseBinaryKernelNode documents the same assumption) — Apply only
// resolves *which* kernel runs, not how the operand shapes line up.
func (g *Elementwise) Apply(args ...node.Node) (node.Node, error) {
	paramtypes := make([]dtype.Type, len(args))
	for i, a := range args {
		paramtypes[i] = a.DType()
	}
	k, ok := g.FindMatchingKernel(paramtypes)
	if !ok {
		return nil, errNoMatchingKernel(g.name, paramtypes)
	}
	switch k.arity() {
	case 1:
		return node.NewElementwiseUnaryKernel(args[0], k.ReturnType, k.Unary), nil
	case 2:
		return node.NewElementwiseBinaryKernel(args[0], args[1], k.ReturnType, k.Binary), nil
	default:
		return nil, errNoMatchingKernel(g.name, paramtypes)
	}
}
