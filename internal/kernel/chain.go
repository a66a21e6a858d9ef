package kernel

// targetBufferBytes bounds the size of each intermediate buffer so a chain
// stays cache-friendly regardless of how many elements it is ultimately
// asked to process (spec §4.4 "Batch size is chosen to keep the buffer in a
// small, fixed byte budget").
const targetBufferBytes = 4096

// buffer is one reusable intermediate buffer in a chain, sized for a batch
// of up to its link's elementSize.
type buffer struct {
	elementSize int
	batch       int
	data        []byte
}

func newBuffer(elementSize int) buffer {
	batch := targetBufferBytes / elementSize
	if batch < 1 {
		batch = 1
	}
	return buffer{elementSize: elementSize, batch: batch, data: make([]byte, elementSize*batch)}
}

// chained2Aux is the auxiliary payload for a two-kernel chain: one
// intermediate buffer and the two kernels it sits between. Grounded on
// chained_2_unary_kernel_auxdata in the original.
type chained2Aux struct {
	kernels [2]Unary
	buf     buffer
}

func (a *chained2Aux) Close() {
	a.kernels[0].Release()
	a.kernels[1].Release()
}

// chained2Fn is the UnaryFunc that drives a two-kernel chain in batches
// bounded by the intermediate buffer's capacity.
func chained2Fn(dst []byte, dstStride int, src []byte, srcStride int, count int, aux Aux) {
	a := aux.(*chained2Aux)
	remaining := count
	srcOff, dstOff := 0, 0
	for remaining > 0 {
		n := remaining
		if n > a.buf.batch {
			n = a.buf.batch
		}
		a.kernels[0].Invoke(a.buf.data, a.buf.elementSize, src[srcOff:], srcStride, n)
		a.kernels[1].Invoke(dst[dstOff:], dstStride, a.buf.data, a.buf.elementSize, n)
		srcOff += n * srcStride
		dstOff += n * dstStride
		remaining -= n
	}
}

// MakeChained2 composes two unary kernels through a single intermediate
// buffer of bufElementSize, consuming (swapping out of) first and second.
func MakeChained2(first, second *Unary, bufElementSize int) Unary {
	aux := &chained2Aux{buf: newBuffer(bufElementSize)}
	aux.kernels[0].Swap(first)
	aux.kernels[1].Swap(second)
	return Unary{Fn: chained2Fn, Aux: aux}
}

// chainedNAux is the auxiliary payload for an N-kernel chain: N kernels and
// N-1 intermediate buffers, each reused across every batch.
type chainedNAux struct {
	kernels []Unary
	bufs    []buffer
}

func (a *chainedNAux) Close() {
	for i := range a.kernels {
		a.kernels[i].Release()
	}
}

func chainedNFn(dst []byte, dstStride int, src []byte, srcStride int, count int, aux Aux) {
	a := aux.(*chainedNAux)
	if len(a.kernels) == 1 {
		a.kernels[0].Invoke(dst, dstStride, src, srcStride, count)
		return
	}

	// Batch size is bounded by the smallest intermediate buffer's capacity
	// so every link's buffer stays within its byte budget.
	batch := a.bufs[0].batch
	for _, b := range a.bufs[1:] {
		if b.batch < batch {
			batch = b.batch
		}
	}

	remaining := count
	srcOff, dstOff := 0, 0
	for remaining > 0 {
		n := remaining
		if n > batch {
			n = batch
		}

		curSrc, curStride := src[srcOff:], srcStride
		for i := 0; i < len(a.kernels)-1; i++ {
			buf := &a.bufs[i]
			a.kernels[i].Invoke(buf.data, buf.elementSize, curSrc, curStride, n)
			curSrc, curStride = buf.data, buf.elementSize
		}
		last := &a.kernels[len(a.kernels)-1]
		last.Invoke(dst[dstOff:], dstStride, curSrc, curStride, n)

		srcOff += n * srcStride
		dstOff += n * dstStride
		remaining -= n
	}
}

// MakeChainedUnaryKernel composes len(kernelsIn) kernels (N >= 1) through
// len(elementSizesIn) == N-1 intermediate buffers into a single chained
// Unary kernel. kernelsIn and elementSizesIn are swapped out (truncated to
// length zero) on return, matching the original's "the deque no longer
// contains them on exit" contract (spec §4.4, §9).
func MakeChainedUnaryKernel(kernelsIn *[]Unary, elementSizesIn *[]int) Unary {
	n := len(*kernelsIn)
	if n == 0 {
		panic("kernel: MakeChainedUnaryKernel requires at least one kernel")
	}
	if len(*elementSizesIn) != n-1 {
		panic("kernel: MakeChainedUnaryKernel requires exactly N-1 element sizes for N kernels")
	}

	if n == 1 {
		out := Unary{}
		out.Swap(&(*kernelsIn)[0])
		*kernelsIn = (*kernelsIn)[:0]
		*elementSizesIn = (*elementSizesIn)[:0]
		return out
	}

	aux := &chainedNAux{
		kernels: make([]Unary, n),
		bufs:    make([]buffer, n-1),
	}
	for i := range aux.kernels {
		aux.kernels[i].Swap(&(*kernelsIn)[i])
	}
	for i, sz := range *elementSizesIn {
		aux.bufs[i] = newBuffer(sz)
	}
	*kernelsIn = (*kernelsIn)[:0]
	*elementSizesIn = (*elementSizesIn)[:0]

	return Unary{Fn: chainedNFn, Aux: aux}
}

// Builder is an append-only kernel list a dtype's AssignFrom
// implementation appends one or more kernels into — the Go analogue of
// the original's hierarchical_kernel + offset protocol (spec §4.2).
type Builder struct {
	Kernels []Unary
}

// Append adds k to the builder and returns the new length, the Go
// equivalent of "append-only builder... return the new write offset".
func (b *Builder) Append(k Unary) int {
	b.Kernels = append(b.Kernels, k)
	return len(b.Kernels)
}

// PushFront and PushBack build the two halves of an expression-kind type's
// storage<->value chain (spec §4.4). They work on the plain kernel and
// element-size slices MakeChainedUnaryKernel consumes, and internal/assign
// calls them when it decomposes an expression-kind (convert, view,
// categorical) source or destination: the dtype itself produces the one
// conversion kernel for its own storage<->value link; these helpers just
// thread it onto the front or back of the chain being built.

// PushFront prepends k and its element size to the given kernel/size
// slices, used by push_front_storage_to_value composition (outermost
// evaluation materializes storage into user-visible values).
func PushFront(kernels *[]Unary, sizes *[]int, k Unary, elementSize int) {
	*kernels = append([]Unary{k}, *kernels...)
	*sizes = append([]int{elementSize}, *sizes...)
}

// PushBack appends k and its element size, used by push_back_value_to_storage
// composition (assigning into an expression-kind destination).
func PushBack(kernels *[]Unary, sizes *[]int, k Unary, elementSize int) {
	*kernels = append(*kernels, k)
	*sizes = append(*sizes, elementSize)
}
