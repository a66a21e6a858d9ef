// Package kernel implements the kernel instance and kernel-chain layer
// (spec §4.4): a kernel is a function pointer plus an owned, type-erased
// auxiliary payload; a chained unary kernel composes N unary kernels
// through N-1 reused intermediate buffers.
//
// Grounded on
// _examples/original_source/include/dnd/kernels/chained_unary_kernels.hpp
// for the two-kernel and N-kernel chain shapes and the "swap, don't copy"
// composition discipline (spec §9 "Non-copyable kernel instances").
package kernel

// Aux is the type-erased auxiliary payload a kernel instance owns. A
// payload that holds resources needing explicit teardown implements Closer;
// each kernel's Release calls it even if the kernel's function was never
// invoked, matching the "must safely destruct on kernel teardown" rule of
// spec §4.4.
type Aux interface{}

// Closer is implemented by an Aux payload that owns something needing
// explicit teardown (most payloads don't and just implement Aux as a plain
// struct with no Close method).
type Closer interface {
	Close()
}

// UnaryFunc has the per-kind inner-loop signature for a unary kernel:
// unary(dst, dst_stride, src, src_stride, count, aux).
type UnaryFunc func(dst []byte, dstStride int, src []byte, srcStride int, count int, aux Aux)

// NullaryFunc has the per-kind inner-loop signature for a nullary kernel:
// nullary(dst, dst_stride, count, aux).
type NullaryFunc func(dst []byte, dstStride int, count int, aux Aux)

// BinaryFunc has the per-kind inner-loop signature for a binary kernel:
// binary(dst, dst_stride, src1, src1_stride, src2, src2_stride, count, aux).
type BinaryFunc func(dst []byte, dstStride int, src1 []byte, src1Stride int, src2 []byte, src2Stride int, count int, aux Aux)

// Unary is a non-copyable (by convention — see Swap) kernel instance for
// the unary calling convention.
type Unary struct {
	Fn  UnaryFunc
	Aux Aux
}

// Invoke runs the kernel. A nil Fn is a programmer error (an empty
// kernel should never be invoked) and panics rather than silently
// no-opping, matching the original's assumption that kernel slots are
// always populated before use.
func (k *Unary) Invoke(dst []byte, dstStride int, src []byte, srcStride int, count int) {
	k.Fn(dst, dstStride, src, srcStride, count, k.Aux)
}

// Release tears down the kernel's auxiliary payload, whether or not the
// kernel function was ever invoked.
func (k *Unary) Release() {
	if c, ok := k.Aux.(Closer); ok {
		c.Close()
	}
	k.Fn, k.Aux = nil, nil
}

// Swap exchanges the contents of k and other in place. Kernel instances
// are swapped rather than copied throughout this package, mirroring the
// original's "swap it out of the deque" composition discipline — copying
// an Aux payload that owns a Closer would otherwise let two kernels
// release the same resource.
func (k *Unary) Swap(other *Unary) {
	*k, *other = *other, *k
}

// Nullary is the kernel instance for the nullary calling convention
// (identity seeds, fills).
type Nullary struct {
	Fn  NullaryFunc
	Aux Aux
}

func (k *Nullary) Invoke(dst []byte, dstStride int, count int) {
	k.Fn(dst, dstStride, count, k.Aux)
}

func (k *Nullary) Release() {
	if c, ok := k.Aux.(Closer); ok {
		c.Close()
	}
	k.Fn, k.Aux = nil, nil
}

// Binary is the kernel instance for the binary calling convention
// (element-wise binary operators).
type Binary struct {
	Fn  BinaryFunc
	Aux Aux
}

func (k *Binary) Invoke(dst []byte, dstStride int, src1 []byte, src1Stride int, src2 []byte, src2Stride int, count int) {
	k.Fn(dst, dstStride, src1, src1Stride, src2, src2Stride, count, k.Aux)
}

func (k *Binary) Release() {
	if c, ok := k.Aux.(Closer); ok {
		c.Close()
	}
	k.Fn, k.Aux = nil, nil
}
