// Package assign implements the assignment engine (spec §4.7): given a
// destination and source type, it builds the single kernel that copies one
// value from the source's representation into the destination's.
//
// Grounded on _examples/original_source/include/dnd/dtype_assign.hpp's
// same-dtype/different-dtype dtype_assign split, generalized here into a
// full dispatcher: try the destination type's own conversion logic, then
// builtin numeric conversion, then expression-kind storage<->value
// decomposition, and only then give up.
// Every per-type conversion already lives on dtype.TypeImpl.AssignFrom and
// dtype.ExpressionImpl.StorageToValue/ValueToStorage (internal/dtype); this
// package is the thin recursive glue spec §4.7 describes as building "a
// chain: src.storage -> src.value -> dst.value -> dst.storage".
package assign

import (
	"dynarray/internal/dtype"
	"dynarray/internal/dyerr"
	"dynarray/internal/kernel"
)

// MakeKernel builds the single kernel that assigns a value of type src into
// a destination of type dst, honoring mode's numeric-narrowing checks.
func MakeKernel(dst, src dtype.Type, mode dtype.AssignErrorMode) (kernel.Unary, error) {
	kernels, sizes, err := build(dst, src, mode, 0)
	if err != nil {
		return kernel.Unary{}, err
	}
	return kernel.MakeChainedUnaryKernel(&kernels, &sizes), nil
}

// Values copies count elements from src into dst, strided by srcStride and
// dstStride respectively, converting between dstType and srcType as needed
// (spec §6 val_assign). This is the outermost call boundary for a value
// assignment: a numeric error-mode violation raised partway through the
// batch surfaces here as panic(dyerr...) (see internal/dtype/numeric.go)
// and is recovered into the returned error rather than crashing the caller.
func Values(dst []byte, dstStride int, dstType dtype.Type, src []byte, srcStride int, srcType dtype.Type, count int, mode dtype.AssignErrorMode) (err error) {
	k, err := MakeKernel(dstType, srcType, mode)
	if err != nil {
		return err
	}
	defer k.Release()
	defer func() {
		if r := recover(); r != nil {
			if de, ok := dyerr.FromPanic(r); ok {
				err = de
				return
			}
			panic(r)
		}
	}()
	k.Invoke(dst, dstStride, src, srcStride, count)
	return nil
}

// maxChainDepth bounds the storage<->value unwinding recursion; every
// expression-kind type in this package peels exactly one layer per step, so
// any real type graph terminates in a handful of steps. This guards against
// a pathological type cycle rather than any expected depth.
const maxChainDepth = 16

// build recursively assembles the kernel chain for dst<-src, returning the
// flat kernel/element-size lists MakeChainedUnaryKernel expects.
func build(dst, src dtype.Type, mode dtype.AssignErrorMode, depth int) ([]kernel.Unary, []int, error) {
	if depth > maxChainDepth {
		return nil, nil, dtype.ErrCannotAssign(src, dst)
	}

	// Step 1: identical fixed-layout types need nothing but a byte copy.
	if dst.Equal(src) && dst.Kind() != dtype.KindString && dst.ElementSize() > 0 {
		return []kernel.Unary{kernel.MemcpyUnary(dst.ElementSize())}, nil, nil
	}

	// Step 2: let dst's own TypeImpl produce the kernel directly — same-type
	// string/categorical/struct copies, and the handful of specific
	// cross-type conversions each composite type knows about
	// (string->categorical, int64->datetime, string->type-of-type, ...).
	if b, ok := tryAssignFrom(dst, src, mode); ok {
		return b.Kernels, nil, nil
	}

	// Step 3: builtin<->builtin numeric conversion.
	if dst.IsBuiltin() && src.IsBuiltin() {
		return []kernel.Unary{dtype.NumericConversionKernel(dst.BuiltinID(), src.BuiltinID(), mode)}, nil, nil
	}

	// Step 3b: any type assigned into a string destination that didn't
	// already decline for a more specific reason renders through its own
	// PrintData, the generic "stringify anything" path typeoftype.go's
	// AssignFrom documents as string<-type-of-type's other half.
	if k, ok := stringifyKernel(dst, src); ok {
		return []kernel.Unary{k}, nil, nil
	}

	// Step 4: expression-kind decomposition. If src carries its own
	// storage/value link, first convert its storage bytes up into its
	// value type, then recurse on value_type<-dst; if dst does, recurse on
	// dst's value type first and convert the result back down into dst's
	// storage on the way out. This is the "src.storage -> src.value ->
	// dst.value -> dst.storage" chain of spec §4.7.
	if srcExpr, ok := src.Impl().(dtype.ExpressionImpl); ok {
		kernels, sizes, err := build(dst, srcExpr.ValueType(), mode, depth+1)
		if err != nil {
			return nil, nil, err
		}
		kernel.PushFront(&kernels, &sizes, srcExpr.StorageToValue(), srcExpr.ValueType().ElementSize())
		return kernels, sizes, nil
	}
	if dstExpr, ok := dst.Impl().(dtype.ExpressionImpl); ok {
		kernels, sizes, err := build(dstExpr.ValueType(), src, mode, depth+1)
		if err != nil {
			return nil, nil, err
		}
		kernel.PushBack(&kernels, &sizes, dstExpr.ValueToStorage(mode), dstExpr.ValueType().ElementSize())
		return kernels, sizes, nil
	}

	return nil, nil, dtype.ErrCannotAssign(src, dst)
}

// tryAssignFrom asks dst's own TypeImpl whether it knows how to consume src
// directly. Builtin destinations have no TypeImpl to ask.
func tryAssignFrom(dst, src dtype.Type, mode dtype.AssignErrorMode) (*kernel.Builder, bool) {
	impl := dst.Impl()
	if impl == nil {
		return nil, false
	}
	b := &kernel.Builder{}
	ok, err := impl.AssignFrom(b, nil, src, nil, mode)
	if !ok || err != nil || len(b.Kernels) == 0 {
		return nil, false
	}
	return b, true
}

// stringifyKernel handles dst being a variable-length string and src being
// any other type, builtin or heap: it renders each source element with
// Type.PrintData (the same top-level formatter spec §6's Streams use) and
// stores the resulting text, the generic fallback the original reaches for
// once no type-specific encode exists. A fixed-size string src never
// reaches here since step 2 already handles it.
func stringifyKernel(dst, src dtype.Type) (kernel.Unary, bool) {
	strImpl, ok := dst.Impl().(*dtype.StringImpl)
	if !ok {
		return kernel.Unary{}, false
	}
	srcSize := src.ElementSize()
	return kernel.Unary{Fn: func(dstBuf []byte, dstStride int, srcBuf []byte, srcStride int, count int, aux kernel.Aux) {
		for i := 0; i < count; i++ {
			text := src.PrintData(nil, srcBuf[i*srcStride:i*srcStride+srcSize])
			strImpl.Store(dstBuf[i*dstStride:], text)
		}
	}}, true
}
