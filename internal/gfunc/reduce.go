package gfunc

import (
	"dynarray/internal/dtype"
	"dynarray/internal/kernel"
	"dynarray/internal/node"
)

// ReduceKernel is one registered reduction implementation (spec §4.6
// "Elementwise reduce"). Identity is a value of ReturnType's width, used
// both as the seed for an empty window and as the running accumulator's
// initial state.
type ReduceKernel struct {
	Associative bool
	Commutative bool
	ReturnType  dtype.Type
	ParamType   dtype.Type
	Identity    []byte

	// LeftAssoc does dst <- op(dst, src), run iterating 0..N-1.
	LeftAssoc kernel.Binary
	// RightAssoc does dst <- op(src, dst), run iterating N-1..0. May be the
	// zero value iff Commutative (spec §4.6).
	RightAssoc kernel.Binary

	// WindowSentinelNaN, when set, tells a rolling evaluation to fill the
	// first W-1 outputs with NaN instead of Identity — the "NaN sentinel
	// for floats, depending on kernel flags" branch of spec §4.6. Only
	// meaningful when ReturnType is a floating-point builtin.
	WindowSentinelNaN bool

	// Finalize, if set, post-processes the accumulator after every element
	// in the window has been folded in (e.g. dividing a running sum by the
	// element count to produce a mean). Most reduce kernels (sum, min, max)
	// leave this nil.
	Finalize func(acc []byte, count int)
}

func (k *ReduceKernel) newAccumulator() []byte {
	return append([]byte(nil), k.Identity...)
}

func (k *ReduceKernel) fold(acc, elem []byte, leftToRight bool) {
	if leftToRight || k.Commutative {
		k.LeftAssoc.Invoke(acc, 0, acc, 0, elem, 0, 1)
		return
	}
	k.RightAssoc.Invoke(acc, 0, elem, 0, acc, 0, 1)
}

// Reduce is a named dispatch table of ReduceKernel, mirroring Elementwise's
// shape but keyed on a single parameter type (spec §4.6's reduce table is
// indexed the same way as the elementwise one, just with arity fixed at 1).
type Reduce struct {
	name    string
	kernels []*ReduceKernel
}

func NewReduce(name string) *Reduce {
	return &Reduce{name: name}
}

func (g *Reduce) Name() string { return g.name }

func (g *Reduce) AddKernel(k *ReduceKernel) {
	g.kernels = append(g.kernels, k)
}

func (g *Reduce) FindMatchingKernel(paramtype dtype.Type) (*ReduceKernel, bool) {
	for _, k := range g.kernels {
		if k.ParamType.Equal(paramtype) {
			return k, true
		}
	}
	return nil, false
}

// Apply evaluates n, dispatches on its dtype, and folds every element into
// a scalar via the matching kernel, iterating left-to-right (0..N-1).
func (g *Reduce) Apply(n node.Node) (node.Node, error) {
	k, ok := g.FindMatchingKernel(n.DType())
	if !ok {
		return nil, errNoMatchingKernel(g.name, []dtype.Type{n.DType()})
	}
	return ReduceAll(k, n)
}

// ReduceAll folds every element of n (in row-major order) into a single
// scalar using k, iterating 0..N-1 through k.LeftAssoc. A rank-2-or-higher n
// is rejected unless k.Commutative, matching spec §4.6 "multidimensional
// reductions are rejected unless commutative".
func ReduceAll(k *ReduceKernel, n node.Node) (node.Node, error) {
	return reduceAll(k, n, false)
}

// ReduceAllReverse folds n's elements in the opposite order, N-1..0,
// through k.RightAssoc (spec §4.6: "right_assoc_kernel: ... used when
// iterating N-1..0; may be absent iff commutative"). Use this when a
// non-commutative kernel's natural accumulation order is right-to-left
// (e.g. right fold over a non-associative-in-practice op).
func ReduceAllReverse(k *ReduceKernel, n node.Node) (node.Node, error) {
	return reduceAll(k, n, true)
}

func reduceAll(k *ReduceKernel, n node.Node, reverse bool) (node.Node, error) {
	if n.Ndim() > 1 && !k.Commutative {
		return nil, errMultidimReduceNotCommutative(n.Ndim())
	}
	if reverse && !k.Commutative && k.RightAssoc.Fn == nil {
		return nil, errReduceNeedsRightAssoc()
	}

	ev, err := node.Evaluate(n)
	if err != nil {
		return nil, err
	}
	if scalar, ok := ev.(*node.ImmutableScalarNode); ok {
		// A rank-0 input evaluates to an ImmutableScalarNode already holding
		// the single value; reducing one element is a no-op copy.
		data, _ := scalar.DataAndStrides()
		acc := k.newAccumulator()
		k.fold(acc, data, !reverse)
		if k.Finalize != nil {
			k.Finalize(acc, 1)
		}
		return node.NewImmutableScalar(acc, k.ReturnType), nil
	}

	sn := ev.(*node.StridedArrayNode)
	data, strides := sn.DataAndStrides()
	shape := sn.Shape()
	elemSize := k.ParamType.ElementSize()

	offsets := make([]int64, 0, elementCountOf(shape))
	walkRowMajor(shape, strides, func(offset int64) {
		offsets = append(offsets, offset)
	})
	if reverse {
		for i, j := 0, len(offsets)-1; i < j; i, j = i+1, j-1 {
			offsets[i], offsets[j] = offsets[j], offsets[i]
		}
	}

	acc := k.newAccumulator()
	for _, offset := range offsets {
		k.fold(acc, data[offset:offset+int64(elemSize)], !reverse)
	}
	if k.Finalize != nil {
		k.Finalize(acc, len(offsets))
	}
	return node.NewImmutableScalar(acc, k.ReturnType), nil
}

func elementCountOf(shape []int64) int64 {
	n := int64(1)
	for _, s := range shape {
		n *= s
	}
	return n
}

// walkRowMajor invokes fn once per element of a buffer with the given
// shape/strides, visiting multi-indices in row-major (last axis fastest)
// order. This is the same C-order walk internal/node's evaluate.go performs
// internally, re-expressed here since that helper is unexported across
// package boundaries.
func walkRowMajor(shape, strides []int64, fn func(offset int64)) {
	ndim := len(shape)
	if ndim == 0 {
		fn(0)
		return
	}
	for _, s := range shape {
		if s == 0 {
			return
		}
	}
	idx := make([]int64, ndim)
	for {
		var offset int64
		for d := 0; d < ndim; d++ {
			offset += idx[d] * strides[d]
		}
		fn(offset)

		axis := ndim - 1
		for axis >= 0 {
			idx[axis]++
			if idx[axis] < shape[axis] {
				break
			}
			idx[axis] = 0
			axis--
		}
		if axis < 0 {
			return
		}
	}
}
