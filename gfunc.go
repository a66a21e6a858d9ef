package dynarray

import (
	"dynarray/internal/gfunc"
	"dynarray/internal/node"
)

// ElementwiseKernel is one registered implementation of an elementwise
// gfunc: a parameter-type tuple plus the kernel producing its result (spec
// §4.6).
type ElementwiseKernel = gfunc.ElementwiseKernel

// ReduceKernel is one registered reduction implementation (spec §4.6
// "Elementwise reduce").
type ReduceKernel = gfunc.ReduceKernel

// BuiltinSum1D and BuiltinMean1D are the ready-made commutative reduce
// kernels spec §8's rolling-window scenarios fold arrays through directly,
// without needing a named dispatch table.
var (
	BuiltinSum1D  = gfunc.BuiltinSum1D
	BuiltinMean1D = gfunc.BuiltinMean1D
)

// Elementwise is a named, keyed dispatch table of ElementwiseKernel,
// wrapping arguments and results in Array instead of raw expression nodes.
type Elementwise struct {
	g *gfunc.Elementwise
}

// NewElementwise names a new, empty elementwise gfunc.
func NewElementwise(name string) *Elementwise {
	return &Elementwise{g: gfunc.NewElementwise(name)}
}

// Name is the gfunc's registered name, used in error messages.
func (e *Elementwise) Name() string { return e.g.Name() }

// AddKernel registers k under e's dispatch table.
func (e *Elementwise) AddKernel(k *ElementwiseKernel) { e.g.AddKernel(k) }

// Apply dispatches on args' dtypes and returns the deferred expression
// array wrapping the matching kernel (spec §4.6; the result is lazy, call
// Eval to materialize it).
func (e *Elementwise) Apply(args ...*Array) (*Array, error) {
	nodes := make([]node.Node, len(args))
	for i, a := range args {
		nodes[i] = a.n
	}
	out, err := e.g.Apply(nodes...)
	if err != nil {
		return nil, err
	}
	return &Array{n: out}, nil
}

// Reduce is a named dispatch table of ReduceKernel, folding a single array
// down to a scalar (spec §4.6 "Elementwise reduce").
type Reduce struct {
	g *gfunc.Reduce
}

// NewReduce names a new, empty reduce gfunc.
func NewReduce(name string) *Reduce {
	return &Reduce{g: gfunc.NewReduce(name)}
}

// Name is the gfunc's registered name.
func (r *Reduce) Name() string { return r.g.Name() }

// AddKernel registers k under r's dispatch table.
func (r *Reduce) AddKernel(k *ReduceKernel) { r.g.AddKernel(k) }

// Apply evaluates a and folds every element into a scalar via the matching
// registered kernel, iterating left-to-right.
func (r *Reduce) Apply(a *Array) (*Array, error) {
	out, err := r.g.Apply(a.n)
	if err != nil {
		return nil, err
	}
	return &Array{n: out}, nil
}

// ReduceAll folds every element of a into a single scalar using k,
// iterating left-to-right (spec §4.6).
func ReduceAll(k *ReduceKernel, a *Array) (*Array, error) {
	out, err := gfunc.ReduceAll(k, a.n)
	if err != nil {
		return nil, err
	}
	return &Array{n: out}, nil
}

// ReduceAllReverse folds a's elements right-to-left through k.RightAssoc
// (spec §4.6).
func ReduceAllReverse(k *ReduceKernel, a *Array) (*Array, error) {
	out, err := gfunc.ReduceAllReverse(k, a.n)
	if err != nil {
		return nil, err
	}
	return &Array{n: out}, nil
}

// Rolling wraps an inner reduce kernel into a sliding-window arrfunc (spec
// §4.6 "rolling/window reductions of width W").
type Rolling struct {
	r *gfunc.Rolling
}

// MakeRollingArrfunc builds a Rolling evaluator from an inner reduce kernel
// and a window width.
func MakeRollingArrfunc(inner *ReduceKernel, window int) *Rolling {
	return &Rolling{r: gfunc.MakeRollingArrfunc(inner, window)}
}

// Apply evaluates a width-r.window rolling reduction over the rank-1 array
// a, producing an array of a's own length (spec §8 rolling scenario).
func (r *Rolling) Apply(a *Array) (*Array, error) {
	out, err := r.r.Apply(a.n)
	if err != nil {
		return nil, err
	}
	return &Array{n: out}, nil
}
