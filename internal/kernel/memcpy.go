package kernel

// memcpyFn is the trivial unary kernel used whenever dst and src share an
// identical pod layout (spec §4.7 step 1: "If types are identical and pod,
// a memcpy kernel").
func memcpyFn(dst []byte, dstStride int, src []byte, srcStride int, count int, aux Aux) {
	size := aux.(int)
	if dstStride == size && srcStride == size {
		copy(dst[:size*count], src[:size*count])
		return
	}
	for i := 0; i < count; i++ {
		copy(dst[i*dstStride:i*dstStride+size], src[i*srcStride:i*srcStride+size])
	}
}

// MemcpyUnary builds a unary kernel that copies elementSize bytes per
// element, taking the contiguous fast path when both strides equal the
// element size.
func MemcpyUnary(elementSize int) Unary {
	return Unary{Fn: memcpyFn, Aux: elementSize}
}
