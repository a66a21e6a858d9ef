package gfunc

import (
	"encoding/binary"
	"math"

	"dynarray/internal/dtype"
	"dynarray/internal/kernel"
)

func getFloat64(b []byte) float64    { return math.Float64frombits(binary.LittleEndian.Uint64(b)) }
func putFloat64(b []byte, v float64) { binary.LittleEndian.PutUint64(b, math.Float64bits(v)) }
func getFloat32(b []byte) float32    { return math.Float32frombits(binary.LittleEndian.Uint32(b)) }
func putFloat32(b []byte, v float32) { binary.LittleEndian.PutUint32(b, math.Float32bits(v)) }

func addFloat64Binary(dst []byte, dstStride int, src1 []byte, src1Stride int, src2 []byte, src2Stride int, count int, _ kernel.Aux) {
	for i := 0; i < count; i++ {
		a := getFloat64(src1[i*src1Stride : i*src1Stride+8])
		b := getFloat64(src2[i*src2Stride : i*src2Stride+8])
		putFloat64(dst[i*dstStride:i*dstStride+8], a+b)
	}
}

// BuiltinSum1D is the float64 summation reduce kernel, grounded on
// kernels::make_builtin_sum1d_arrfunc(float64_type_id) from
// _examples/original_source/tests/func/test_rolling.cpp. Associative and
// commutative: addition needs no right-associative kernel.
func BuiltinSum1D() *ReduceKernel {
	identity := make([]byte, 8)
	putFloat64(identity, 0)
	return &ReduceKernel{
		Associative:       true,
		Commutative:       true,
		ReturnType:        dtype.TFloat64,
		ParamType:         dtype.TFloat64,
		Identity:          identity,
		LeftAssoc:         kernel.Binary{Fn: addFloat64Binary},
		WindowSentinelNaN: true,
	}
}

// BuiltinMean1D is the float64 mean reduce kernel, grounded on
// kernels::make_builtin_mean1d_arrfunc(float64_type_id, 0) from the same
// test file: it accumulates a sum exactly like BuiltinSum1D and divides by
// the element count in Finalize once the fold completes.
func BuiltinMean1D() *ReduceKernel {
	k := BuiltinSum1D()
	k.Finalize = func(acc []byte, count int) {
		if count == 0 {
			return
		}
		putFloat64(acc, getFloat64(acc)/float64(count))
	}
	return k
}
