package node

import (
	"dynarray/internal/dtype"
	"dynarray/internal/dyerr"
	"dynarray/internal/kernel"
)

// dataStrider is satisfied by every leaf node variant: it can hand back its
// raw buffer and stride vector without running any kernel.
type dataStrider interface {
	Node
	DataAndStrides() ([]byte, []int64)
}

// Evaluate produces a strided-array node whose dtype is not expression-kind
// (spec §4.5 "evaluate()"). It walks the tree bottom-up: leaves first
// materialize any expression-kind storage↔value link, then elementwise
// kernel nodes compose their operands' materialized values through their
// own per-node kernel and, if the node's own dtype is itself
// expression-kind, through a trailing value→storage link.
func Evaluate(n Node) (result Node, err error) {
	// A kernel invoked below (storage<->value links, elementwise ops) may
	// raise a numeric error-mode violation via panic(dyerr...) rather than
	// an error return — the chained-unary calling convention has no
	// per-element error channel. This is the synchronous-call boundary
	// spec §4.7/§7 require the violation to surface at, so it is recovered
	// here and turned into the returned error; anything else re-panics.
	defer func() {
		if r := recover(); r != nil {
			if de, ok := dyerr.FromPanic(r); ok {
				result, err = nil, de
				return
			}
			panic(r)
		}
	}()

	switch t := n.(type) {
	case *StridedArrayNode:
		return materializeLeaf(t)
	case *ImmutableScalarNode:
		return materializeLeaf(t)
	case *ElementwiseUnaryKernelNode:
		return evaluateUnary(t)
	case *ElementwiseBinaryKernelNode:
		return evaluateBinary(t)
	default:
		return nil, dyerr.New(dyerr.Unsupported, "evaluate: unrecognized node variant")
	}
}

// materializeLeaf resolves a leaf's expression-kind dtype (if any) into a
// concrete buffer of its value type, running the storage→value kernel once
// per innermost-axis run of elements.
func materializeLeaf(n dataStrider) (Node, error) {
	dt := n.DType()
	if !dt.IsExpression() {
		return n, nil
	}
	ex, ok := dt.Impl().(dtype.ExpressionImpl)
	if !ok {
		return nil, dyerr.New(dyerr.InvariantViolation, "expression-kind dtype %s has no ExpressionImpl", dt)
	}
	valueType := ex.ValueType()
	data, strides := n.DataAndStrides()
	shape := n.Shape()

	outElemSize := valueType.ElementSize()
	outStrides := contiguousStrides(shape, outElemSize)
	outBuf := make([]byte, elementCount(shape)*int64(outElemSize))

	op := ex.StorageToValue()
	runElementwise(shape, [][]byte{data}, [][]int64{strides}, outBuf, outStrides, outElemSize, func(dst []byte, dstStride int, srcs [][]byte, srcStrides []int, count int) {
		op.Invoke(dst, dstStride, srcs[0], srcStrides[0], count)
	})

	return NewStridedArray(outBuf, outStrides, shape, valueType, n.AccessFlags()|AccessRead), nil
}

func evaluateUnary(n *ElementwiseUnaryKernelNode) (Node, error) {
	operand, err := Evaluate(n.operand)
	if err != nil {
		return nil, err
	}
	ds, ok := operand.(dataStrider)
	if !ok {
		return nil, dyerr.New(dyerr.Unsupported, "evaluate: unary operand did not materialize to a strided leaf")
	}
	srcData, srcStrides := ds.DataAndStrides()
	shape := n.Shape()

	storageType := n.dt.StorageType()
	outElemSize := storageType.ElementSize()
	outStrides := contiguousStrides(shape, outElemSize)
	outBuf := make([]byte, elementCount(shape)*int64(outElemSize))

	// The node's own kernel always writes into the node's value
	// representation; only the trailing value->storage step (if n.dt is
	// itself expression-kind) bridges into outBuf.
	valueBuf, valueStrides, valueElemSize := outBuf, outStrides, outElemSize
	if n.dt.IsExpression() {
		valueType := n.dt.ValueType()
		valueElemSize = valueType.ElementSize()
		valueBuf = make([]byte, elementCount(shape)*int64(valueElemSize))
		valueStrides = contiguousStrides(shape, valueElemSize)
	}

	runElementwise(shape, [][]byte{srcData}, [][]int64{srcStrides}, valueBuf, valueStrides, valueElemSize, func(dst []byte, dstStride int, srcs [][]byte, srcStrides []int, count int) {
		n.op.Invoke(dst, dstStride, srcs[0], srcStrides[0], count)
	})

	if n.dt.IsExpression() {
		ex := n.dt.Impl().(dtype.ExpressionImpl)
		vts := ex.ValueToStorage(dtype.ErrorModeOverflow)
		runElementwise(shape, [][]byte{valueBuf}, [][]int64{valueStrides}, outBuf, outStrides, outElemSize, func(dst []byte, dstStride int, srcs [][]byte, srcStrides []int, count int) {
			vts.Invoke(dst, dstStride, srcs[0], srcStrides[0], count)
		})
	}

	return NewStridedArray(outBuf, outStrides, shape, n.dt, AccessRead|AccessImmutable), nil
}

func evaluateBinary(n *ElementwiseBinaryKernelNode) (Node, error) {
	left, err := Evaluate(n.left)
	if err != nil {
		return nil, err
	}
	right, err := Evaluate(n.right)
	if err != nil {
		return nil, err
	}
	lds, ok := left.(dataStrider)
	if !ok {
		return nil, dyerr.New(dyerr.Unsupported, "evaluate: binary left operand did not materialize to a strided leaf")
	}
	rds, ok := right.(dataStrider)
	if !ok {
		return nil, dyerr.New(dyerr.Unsupported, "evaluate: binary right operand did not materialize to a strided leaf")
	}
	shape := n.Shape()
	lData, lStrides := broadcastStrides(lds, shape)
	rData, rStrides := broadcastStrides(rds, shape)

	storageType := n.dt.StorageType()
	outElemSize := storageType.ElementSize()

	var outBuf []byte
	var outStrides []int64
	if n.dt.IsExpression() {
		valueType := n.dt.ValueType()
		vElemSize := valueType.ElementSize()
		vStrides := contiguousStrides(shape, vElemSize)
		vBuf := make([]byte, elementCount(shape)*int64(vElemSize))
		runElementwiseBinary(shape, lData, lStrides, rData, rStrides, vBuf, vStrides, vElemSize, n.op)

		ex := n.dt.Impl().(dtype.ExpressionImpl)
		vts := ex.ValueToStorage(dtype.ErrorModeOverflow)
		outStrides = contiguousStrides(shape, outElemSize)
		outBuf = make([]byte, elementCount(shape)*int64(outElemSize))
		runElementwise(shape, [][]byte{vBuf}, [][]int64{vStrides}, outBuf, outStrides, outElemSize, func(dst []byte, dstStride int, srcs [][]byte, srcStrides []int, count int) {
			vts.Invoke(dst, dstStride, srcs[0], srcStrides[0], count)
		})
	} else {
		outStrides = contiguousStrides(shape, outElemSize)
		outBuf = make([]byte, elementCount(shape)*int64(outElemSize))
		runElementwiseBinary(shape, lData, lStrides, rData, rStrides, outBuf, outStrides, outElemSize, n.op)
	}

	return NewStridedArray(outBuf, outStrides, shape, n.dt, AccessRead|AccessImmutable), nil
}

// broadcastStrides returns n's data together with a stride vector padded
// (on the left, with zero strides) out to len(shape) — a rank-0 scalar
// operand's single element is read for every iteration, and a lower-rank
// operand's existing axes line up against shape's trailing axes.
func broadcastStrides(n dataStrider, shape []int64) ([]byte, []int64) {
	data, strides := n.DataAndStrides()
	if len(strides) == len(shape) {
		return data, strides
	}
	padded := make([]int64, len(shape))
	offset := len(shape) - len(strides)
	for i := range padded {
		if i < offset {
			padded[i] = 0
		} else {
			padded[i] = strides[i-offset]
		}
	}
	return data, padded
}

// elementwiseFn runs one innermost-axis batch: dst/srcs point at the first
// element of the batch, {dst,srcs}Stride(s) are that axis's byte stride,
// and count is the batch length.
type elementwiseFn func(dst []byte, dstStride int, srcs [][]byte, srcStrides []int, count int)

// runElementwise walks every multi-index of shape except the innermost
// axis, invoking fn once per innermost-axis run — "a single call per
// innermost axis" (spec §4.5 step 3). Every caller passes a single logical
// source array; the srcs slice only exists so materializeLeaf and
// evaluateUnary's storage<->value bridging steps share one walk helper.
func runElementwise(shape []int64, srcs [][]byte, srcStrides [][]int64, dst []byte, dstStrides []int64, elemSize int, fn elementwiseFn) {
	ndim := len(shape)
	if ndim == 0 {
		fn(dst, elemSize, srcs, stridesToInt(firstOf(srcStrides)), 1)
		return
	}

	innerLen := shape[ndim-1]
	outerShape := shape[:ndim-1]
	walkIndices(outerShape, func(idx []int64) {
		dstOff := strideOffset(idx, dstStrides[:ndim-1])
		srcOffs := make([]int64, len(srcs))
		for i := range srcs {
			srcOffs[i] = strideOffset(idx, srcStrides[i][:ndim-1])
		}
		srcBatch := make([][]byte, len(srcs))
		srcBatchStride := make([]int, len(srcs))
		for i := range srcs {
			srcBatch[i] = srcs[i][srcOffs[i]:]
			srcBatchStride[i] = int(srcStrides[i][ndim-1])
		}
		fn(dst[dstOff:], int(dstStrides[ndim-1]), srcBatch, srcBatchStride, int(innerLen))
	})
}

// runElementwiseBinary is runElementwise specialized to the BinaryFunc
// calling convention, since kernel.Binary takes two independent source
// strides rather than a slice of sources.
func runElementwiseBinary(shape []int64, left []byte, leftStrides []int64, right []byte, rightStrides []int64, dst []byte, dstStrides []int64, elemSize int, op kernel.Binary) {
	ndim := len(shape)
	if ndim == 0 {
		op.Invoke(dst, elemSize, left, elemSize, right, elemSize, 1)
		return
	}

	innerLen := shape[ndim-1]
	outerShape := shape[:ndim-1]
	walkIndices(outerShape, func(idx []int64) {
		dstOff := strideOffset(idx, dstStrides[:ndim-1])
		lOff := strideOffset(idx, leftStrides[:ndim-1])
		rOff := strideOffset(idx, rightStrides[:ndim-1])
		op.Invoke(dst[dstOff:], int(dstStrides[ndim-1]), left[lOff:], int(leftStrides[ndim-1]), right[rOff:], int(rightStrides[ndim-1]), int(innerLen))
	})
}

// walkIndices calls fn once for every multi-index in [0,shape[0])x...,
// row-major order, including the single empty-index call when shape is
// empty (scalar case).
func walkIndices(shape []int64, fn func(idx []int64)) {
	if len(shape) == 0 {
		fn(nil)
		return
	}
	idx := make([]int64, len(shape))
	for {
		fn(idx)
		axis := len(shape) - 1
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

func strideOffset(idx []int64, strides []int64) int64 {
	var off int64
	for i, v := range idx {
		off += v * strides[i]
	}
	return off
}

func stridesToInt(s []int64) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[i] = int(v)
	}
	return out
}

func firstOf(ss [][]int64) []int64 {
	if len(ss) == 0 {
		return nil
	}
	return ss[0]
}
