package node

import (
	"encoding/binary"

	"dynarray/internal/kernel"
)

// doubleUnaryKernel and addBinaryKernel are minimal int32 test fixtures
// standing in for a gfunc-dispatched kernel (spec §4.6); internal/gfunc is
// what actually builds kernels like these for elementwise node graphs.

func doubleUnaryKernel() kernel.Unary {
	return kernel.Unary{Fn: func(dst []byte, dstStride int, src []byte, srcStride int, count int, aux kernel.Aux) {
		for i := 0; i < count; i++ {
			v := int32(binary.LittleEndian.Uint32(src[i*srcStride:]))
			binary.LittleEndian.PutUint32(dst[i*dstStride:], uint32(v*2))
		}
	}}
}

func addBinaryKernel() kernel.Binary {
	return kernel.Binary{Fn: func(dst []byte, dstStride int, src1 []byte, src1Stride int, src2 []byte, src2Stride int, count int, aux kernel.Aux) {
		for i := 0; i < count; i++ {
			a := int32(binary.LittleEndian.Uint32(src1[i*src1Stride:]))
			b := int32(binary.LittleEndian.Uint32(src2[i*src2Stride:]))
			binary.LittleEndian.PutUint32(dst[i*dstStride:], uint32(a+b))
		}
	}}
}
