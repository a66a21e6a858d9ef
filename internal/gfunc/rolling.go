package gfunc

import (
	"math"

	"dynarray/internal/dtype"
	"dynarray/internal/node"
)

// Rolling wraps an inner reduce kernel into a sliding-window arrfunc (spec
// §4.6 "rolling/window reductions of width W"; spec §6
// "make_rolling_arrfunc(inner_reducer, window) -> arrfunc"). Grounded on
// _examples/original_source/tests/func/test_rolling.cpp's BuiltinSum_Kernel
// and BuiltinMean_Kernel cases: width-4 windows over a 13-element float64
// array, the first three outputs a NaN sentinel, output[i] the inner
// reducer applied to xs[i-3..i].
type Rolling struct {
	inner  *ReduceKernel
	window int
}

// MakeRollingArrfunc builds a Rolling evaluator from an inner reduce kernel
// and a window width. window must be >= 1.
func MakeRollingArrfunc(inner *ReduceKernel, window int) *Rolling {
	return &Rolling{inner: inner, window: window}
}

// Apply evaluates a width-r.window rolling reduction over the 1-dimensional
// array n, producing an array of the same length (spec §8 "output has N
// elements"). Elements before the window has filled (index < window-1) are
// set to the identity value, or NaN when r.inner.WindowSentinelNaN is set
// and the return type is floating point.
func (r *Rolling) Apply(n node.Node) (node.Node, error) {
	if n.Ndim() != 1 {
		return nil, errRollingRequiresRank1(n.Ndim())
	}
	ev, err := node.Evaluate(n)
	if err != nil {
		return nil, err
	}
	sn := ev.(*node.StridedArrayNode)
	data, strides := sn.DataAndStrides()
	count := sn.Shape()[0]
	if int64(r.window) > count {
		return nil, errRollingWindowTooLarge(r.window, count)
	}

	srcStride := strides[0]
	srcElemSize := r.inner.ParamType.ElementSize()
	dstElemSize := r.inner.ReturnType.ElementSize()

	out := make([]byte, count*int64(dstElemSize))
	fill := r.sentinelValue()
	for i := int64(0); i < int64(r.window)-1 && i < count; i++ {
		copy(out[i*int64(dstElemSize):], fill)
	}

	for i := int64(r.window) - 1; i < count; i++ {
		acc := r.inner.newAccumulator()
		for j := i - int64(r.window) + 1; j <= i; j++ {
			offset := j * srcStride
			elem := data[offset : offset+int64(srcElemSize)]
			r.inner.fold(acc, elem, true)
		}
		if r.inner.Finalize != nil {
			r.inner.Finalize(acc, r.window)
		}
		copy(out[i*int64(dstElemSize):], acc)
	}

	outStrides := []int64{int64(dstElemSize)}
	return node.NewStridedArray(out, outStrides, []int64{count}, r.inner.ReturnType, node.AccessRead), nil
}

// sentinelValue is the byte pattern written to every not-yet-filled output
// slot: NaN for a floating-point return type flagged WindowSentinelNaN,
// otherwise the kernel's own identity value.
func (r *Rolling) sentinelValue() []byte {
	if r.inner.WindowSentinelNaN && r.inner.ReturnType.IsBuiltin() {
		switch r.inner.ReturnType.BuiltinID() {
		case dtype.Float64:
			buf := make([]byte, 8)
			putFloat64(buf, math.NaN())
			return buf
		case dtype.Float32:
			buf := make([]byte, 4)
			putFloat32(buf, float32(math.NaN()))
			return buf
		}
	}
	return r.inner.Identity
}
