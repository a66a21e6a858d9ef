package dynarray

import (
	"encoding/binary"
	"math"

	"dynarray/internal/assign"
	"dynarray/internal/dtype"
	"dynarray/internal/dyerr"
	"dynarray/internal/irange"
	"dynarray/internal/node"
)

// Array is the one exported value type of this package: a handle onto an
// expression-node graph (spec §4.5), carrying a type descriptor and a
// deferred computation rather than necessarily owning materialized bytes.
type Array struct {
	n node.Node
}

// stridedData is satisfied by every node.Node leaf variant capable of
// handing back its raw buffer without evaluation; declared locally since
// internal/node keeps the equivalent interface unexported.
type stridedData interface {
	DataAndStrides() ([]byte, []int64)
}

// Ndim is the array's rank.
func (a *Array) Ndim() int { return a.n.Ndim() }

// Shape is the array's per-axis extents.
func (a *Array) Shape() []int64 { return a.n.Shape() }

// Type is the array's element type descriptor.
func (a *Array) Type() Type { return a.n.DType() }

// DimSize is the extent of axis i (spec §6 dim_size(i)).
func (a *Array) DimSize(i int) int64 { return a.n.Shape()[i] }

func contiguousStrides(shape []int64, elementSize int) []int64 {
	n := len(shape)
	strides := make([]int64, n)
	acc := int64(elementSize)
	for i := n - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

func elementCount(shape []int64) int64 {
	n := int64(1)
	for _, s := range shape {
		n *= s
	}
	return n
}

// Empty allocates a new, writable, zero-filled array of the given shape and
// type (spec §6 "constructors from ... (shape, type)").
func Empty(shape []int64, dt Type) *Array {
	strides := contiguousStrides(shape, dt.ElementSize())
	data := make([]byte, elementCount(shape)*int64(dt.ElementSize()))
	return &Array{n: node.NewStridedArray(data, strides, shape, dt, node.AccessRead|node.AccessWrite)}
}

// FromStrided wraps an existing byte buffer as a strided array without
// copying, the lower-level constructor the typed From* helpers build on.
func FromStrided(data []byte, shape []int64, dt Type) *Array {
	strides := contiguousStrides(shape, dt.ElementSize())
	return &Array{n: node.NewStridedArray(data, strides, shape, dt, node.AccessRead|node.AccessWrite)}
}

// scalarBytes renders a single Number value into its builtin little-endian
// byte encoding, the same encoding internal/dtype/numeric.go's conversion
// kernels assume.
func scalarBytes[T dtype.Number](v T) []byte {
	switch x := any(v).(type) {
	case bool:
		if x {
			return []byte{1}
		}
		return []byte{0}
	case int8:
		return []byte{byte(x)}
	case uint8:
		return []byte{x}
	case int16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(x))
		return b
	case uint16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, x)
		return b
	case int32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(x))
		return b
	case uint32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, x)
		return b
	case int64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(x))
		return b
	case uint64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, x)
		return b
	case float32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(x))
		return b
	case float64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(x))
		return b
	default:
		panic("dynarray: unreachable Number case")
	}
}

func readScalar[T dtype.Number](data []byte) T {
	var zero T
	switch any(zero).(type) {
	case bool:
		return any(data[0] != 0).(T)
	case int8:
		return any(int8(data[0])).(T)
	case uint8:
		return any(data[0]).(T)
	case int16:
		return any(int16(binary.LittleEndian.Uint16(data))).(T)
	case uint16:
		return any(binary.LittleEndian.Uint16(data)).(T)
	case int32:
		return any(int32(binary.LittleEndian.Uint32(data))).(T)
	case uint32:
		return any(binary.LittleEndian.Uint32(data)).(T)
	case int64:
		return any(int64(binary.LittleEndian.Uint64(data))).(T)
	case uint64:
		return any(binary.LittleEndian.Uint64(data)).(T)
	case float32:
		return any(math.Float32frombits(binary.LittleEndian.Uint32(data))).(T)
	case float64:
		return any(math.Float64frombits(binary.LittleEndian.Uint64(data))).(T)
	default:
		panic("dynarray: unreachable Number case")
	}
}

// FromScalar builds a rank-0 array holding a single value of builtin type T
// (spec §6 "constructors from scalars").
func FromScalar[T dtype.Number](v T) *Array {
	return &Array{n: node.NewImmutableScalar(scalarBytes(v), MakeType[T]())}
}

// FromSlice builds a rank-1 array of builtin type T over values.
func FromSlice[T dtype.Number](values []T) *Array {
	dt := MakeType[T]()
	sz := dt.ElementSize()
	data := make([]byte, len(values)*sz)
	for i, v := range values {
		copy(data[i*sz:], scalarBytes(v))
	}
	return FromStrided(data, []int64{int64(len(values))}, dt)
}

// FromString builds a rank-0 UTF-8 string array holding value.
func FromString(value string) (*Array, error) {
	str := MakeString(UTF8)
	buf := make([]byte, str.ElementSize())
	if err := str.Impl().(*dtype.StringImpl).Store(buf, value); err != nil {
		return nil, err
	}
	return &Array{n: node.NewImmutableScalar(buf, str)}, nil
}

// FromStrings builds a rank-1 UTF-8 string array over values (spec §8
// scenario 4's slice-assignment source).
func FromStrings(values []string) (*Array, error) {
	str := MakeString(UTF8)
	impl := str.Impl().(*dtype.StringImpl)
	sz := str.ElementSize()
	data := make([]byte, len(values)*sz)
	for i, v := range values {
		if err := impl.Store(data[i*sz:(i+1)*sz], v); err != nil {
			return nil, err
		}
	}
	return FromStrided(data, []int64{int64(len(values))}, str), nil
}

// As extracts the scalar value of a rank-0 array of builtin type T (spec §6
// as<T>(), §8 "from_scalar(v).as<T>() == v"). The array is evaluated first
// so an expression-kind type (e.g. a convert-typed scalar) materializes
// into its value representation.
func As[T dtype.Number](a *Array) (T, error) {
	var zero T
	ev, err := a.Eval()
	if err != nil {
		return zero, err
	}
	sd, ok := ev.n.(stridedData)
	if !ok {
		return zero, dyerr.New(dyerr.Unsupported, "as: evaluated array is not a readable leaf")
	}
	data, _ := sd.DataAndStrides()
	return readScalar[T](data), nil
}

// AsString extracts the scalar text of a rank-0 string (or any type that
// formats through PrintData) array, unquoting a plain string value.
func (a *Array) AsString() (string, error) {
	ev, err := a.Eval()
	if err != nil {
		return "", err
	}
	sd, ok := ev.n.(stridedData)
	if !ok {
		return "", dyerr.New(dyerr.Unsupported, "as_string: evaluated array is not a readable leaf")
	}
	data, _ := sd.DataAndStrides()
	if strImpl, ok := ev.Type().Impl().(*dtype.StringImpl); ok {
		return strImpl.Load(data), nil
	}
	return ev.Type().PrintData(nil, data), nil
}

// Eval materializes the array's deferred computation into a concrete
// strided buffer of a non-expression-kind type (spec §4.5 "evaluate()",
// §8 "a.eval().eval() has the same shape, type, and values as a.eval()").
func (a *Array) Eval() (*Array, error) {
	ev, err := node.Evaluate(a.n)
	if err != nil {
		return nil, err
	}
	return &Array{n: ev}, nil
}

// Ucast casts the array's element type to target without touching its
// data, deferring the actual conversion to the next evaluation (spec §6
// ucast(target_type) → array). The storage<->value link uses an
// overflow-checked error mode, matching MakeConvert's own default.
func (a *Array) Ucast(target Type) (*Array, error) {
	converted, err := a.n.AsDtype(target, dtype.ErrorModeOverflow, false)
	if err != nil {
		return nil, err
	}
	return &Array{n: converted}, nil
}

// P looks up a named property off the array's type (spec §6 p("property_name")).
func (a *Array) P(name string) (dtype.Property, error) { return dtype.P(a.Type(), name) }

// At resolves ranges against the array's shape (spec §4.3, §6 "indexing
// a(i), slicing a(range, range, ...)") and returns the resulting view. One
// range must be given per axis.
func (a *Array) At(ranges ...irange.Range) (*Array, error) {
	shape := a.n.Shape()
	if len(ranges) != len(shape) {
		return nil, dyerr.New(dyerr.Unsupported, "at: expected one range per axis")
	}
	idx := node.LinearIndex{
		RemoveAxis: make([]bool, len(ranges)),
		Start:      make([]int64, len(ranges)),
		Strides:    make([]int64, len(ranges)),
		Shape:      make([]int64, len(ranges)),
	}
	for i, r := range ranges {
		start, count, step, removeAxis, err := r.Resolve(shape[i])
		if err != nil {
			return nil, err
		}
		idx.RemoveAxis[i] = removeAxis
		idx.Start[i] = start
		idx.Strides[i] = step
		idx.Shape[i] = count
	}
	out, err := a.n.ApplyLinearIndex(idx, false)
	if err != nil {
		return nil, err
	}
	return &Array{n: out}, nil
}

// broadcastStrides pads srcStrides on the left with zero strides (rank
// broadcasting) and zeros any axis where srcShape is 1 but dstShape is not
// (size-1 broadcasting), the same two numpy-style rules node.Evaluate's own
// elementwise composition applies to its operands.
func broadcastStrides(srcShape, srcStrides, dstShape []int64) []int64 {
	out := make([]int64, len(dstShape))
	offset := len(dstShape) - len(srcShape)
	for i := range out {
		si := i - offset
		if si < 0 {
			out[i] = 0
			continue
		}
		if srcShape[si] == 1 && dstShape[i] != 1 {
			out[i] = 0
			continue
		}
		out[i] = srcStrides[si]
	}
	return out
}

// ValAssign copies rhs's (possibly broadcast) values into a's existing
// storage element by element, converting types as needed under mode (spec
// §6 val_assign(rhs, error_mode)). a must be a writable strided leaf or
// rank-0 scalar — i.e. something constructed by Empty, FromStrided, or a
// slice of one of those — not a deferred elementwise expression.
func (a *Array) ValAssign(rhs *Array, mode AssignErrorMode) error {
	dst, ok := a.n.(stridedData)
	if !ok {
		return dyerr.New(dyerr.Unsupported, "val_assign: destination is not an addressable strided array")
	}
	dstData, dstStrides := dst.DataAndStrides()
	dstShape := a.n.Shape()
	dstType := a.n.DType()

	rhsEval, err := rhs.Eval()
	if err != nil {
		return err
	}
	src, ok := rhsEval.n.(stridedData)
	if !ok {
		return dyerr.New(dyerr.Unsupported, "val_assign: source did not evaluate to a readable leaf")
	}
	srcData, srcStrides := src.DataAndStrides()
	srcShape := rhsEval.n.Shape()
	srcType := rhsEval.n.DType()

	if len(srcShape) > len(dstShape) {
		return dyerr.New(dyerr.Unsupported, "val_assign: source has more axes than destination")
	}
	effSrcStrides := broadcastStrides(srcShape, srcStrides, dstShape)

	return assignWalk(dstData, dstStrides, dstShape, dstType, srcData, effSrcStrides, srcType, mode)
}

// SetVals is the value-assign convenience spec §6 sketches as "vals() =
// rhs", using the same overflow-checked default error mode MakeConvert
// uses when none is given explicitly.
func (a *Array) SetVals(rhs *Array) error {
	return a.ValAssign(rhs, dtype.ErrorModeOverflow)
}

// assignWalk drives a value-converting assignment over every element of
// dstShape, batching the innermost axis into one assign.Values call per
// outer multi-index — the same "one call per innermost axis" discipline
// node.Evaluate's own elementwise walk uses.
func assignWalk(dstData []byte, dstStrides, dstShape []int64, dstType Type, srcData []byte, srcStrides []int64, srcType Type, mode AssignErrorMode) error {
	ndim := len(dstShape)
	if ndim == 0 {
		return assign.Values(dstData, dstType.ElementSize(), dstType, srcData, srcType.ElementSize(), srcType, 1, mode)
	}

	inner := dstShape[ndim-1]
	outer := dstShape[:ndim-1]
	idx := make([]int64, len(outer))
	for {
		var dstOff, srcOff int64
		for i, v := range idx {
			dstOff += v * dstStrides[i]
			srcOff += v * srcStrides[i]
		}
		err := assign.Values(
			dstData[dstOff:], int(dstStrides[ndim-1]), dstType,
			srcData[srcOff:], int(srcStrides[ndim-1]), srcType,
			int(inner), mode,
		)
		if err != nil {
			return err
		}

		axis := len(outer) - 1
		for axis >= 0 {
			idx[axis]++
			if idx[axis] < outer[axis] {
				break
			}
			idx[axis] = 0
			axis--
		}
		if axis < 0 {
			return nil
		}
	}
}
