package dtype

import (
	"encoding/binary"
	"math"

	"golang.org/x/exp/constraints"
	"modernc.org/mathutil"

	"dynarray/internal/dyerr"
	"dynarray/internal/kernel"
)

// numberKind classifies a builtin id's representation family for the
// generic intermediate-value conversion below.
type numberKind uint8

const (
	numBool numberKind = iota
	numSigned
	numUnsigned
	numFloat
)

func family(id BuiltinID) numberKind {
	switch {
	case id == Bool:
		return numBool
	case id.IsSignedInteger():
		return numSigned
	case id.IsUnsigned():
		return numUnsigned
	default:
		return numFloat
	}
}

func readAsInt64(id BuiltinID, data []byte) int64 {
	switch id {
	case Int8:
		return int64(int8(data[0]))
	case Int16:
		return int64(int16(binary.LittleEndian.Uint16(data)))
	case Int32:
		return int64(int32(binary.LittleEndian.Uint32(data)))
	case Int64:
		return int64(binary.LittleEndian.Uint64(data))
	case Bool:
		if data[0] != 0 {
			return 1
		}
		return 0
	default:
		return int64(readAsUint64(id, data))
	}
}

func readAsUint64(id BuiltinID, data []byte) uint64 {
	switch id {
	case Uint8:
		return uint64(data[0])
	case Uint16:
		return uint64(binary.LittleEndian.Uint16(data))
	case Uint32:
		return uint64(binary.LittleEndian.Uint32(data))
	case Uint64:
		return binary.LittleEndian.Uint64(data)
	default:
		return uint64(readAsInt64(id, data))
	}
}

func readAsFloat64(id BuiltinID, data []byte) float64 {
	switch family(id) {
	case numFloat:
		if id == Float32 {
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(data)))
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(data))
	case numSigned, numBool:
		return float64(readAsInt64(id, data))
	default:
		return float64(readAsUint64(id, data))
	}
}

func writeInt64(id BuiltinID, data []byte, v int64) {
	switch id {
	case Int8:
		data[0] = byte(v)
	case Int16:
		binary.LittleEndian.PutUint16(data, uint16(v))
	case Int32:
		binary.LittleEndian.PutUint32(data, uint32(v))
	case Int64:
		binary.LittleEndian.PutUint64(data, uint64(v))
	case Bool:
		if v != 0 {
			data[0] = 1
		} else {
			data[0] = 0
		}
	}
}

func writeUint64(id BuiltinID, data []byte, v uint64) {
	switch id {
	case Uint8:
		data[0] = byte(v)
	case Uint16:
		binary.LittleEndian.PutUint16(data, uint16(v))
	case Uint32:
		binary.LittleEndian.PutUint32(data, uint32(v))
	case Uint64:
		binary.LittleEndian.PutUint64(data, v)
	}
}

func writeFloat64(id BuiltinID, data []byte, v float64) {
	if id == Float32 {
		binary.LittleEndian.PutUint32(data, math.Float32bits(float32(v)))
	} else {
		binary.LittleEndian.PutUint64(data, math.Float64bits(v))
	}
}

// clampToRange reports whether v lies within [lo, hi], generic over any
// integer builtin's Go representation — used by the overflow error-mode
// check below so the bound comparison is written once instead of once per
// destination width (the x/exp/constraints entry of SPEC_FULL.md's domain
// stack).
func clampToRange[T constraints.Integer](v int64, lo, hi T) bool {
	return v >= int64(lo) && v <= int64(hi)
}

var intBounds = map[BuiltinID][2]int64{
	Int8:   {-1 << 7, 1<<7 - 1},
	Int16:  {-1 << 15, 1<<15 - 1},
	Int32:  {-1 << 31, 1<<31 - 1},
	Int64:  {math.MinInt64, math.MaxInt64},
	Uint8:  {0, 1<<8 - 1},
	Uint16: {0, 1<<16 - 1},
	Uint32: {0, 1<<32 - 1},
	Uint64: {0, math.MaxInt64}, // unused: Uint64 destinations skip this table, see convertOne
	Bool:   {0, 1},
}

// NumericConversionKernel builds the unary kernel converting src builtin
// values into dst builtin values under the given error mode (spec §4.7
// "Numeric conversions honor error_mode"). mathutil.Int64FromFloat64-style
// bounded conversion checks ground the overflow/fractional/inexact
// detection named in SPEC_FULL.md's domain-stack wiring.
func NumericConversionKernel(dst, src BuiltinID, mode AssignErrorMode) kernel.Unary {
	dstSize, srcSize := dst.ElementSize(), src.ElementSize()
	return kernel.Unary{Fn: func(dstBuf []byte, dstStride int, srcBuf []byte, srcStride int, count int, aux kernel.Aux) {
		for i := 0; i < count; i++ {
			d := dstBuf[i*dstStride : i*dstStride+dstSize]
			s := srcBuf[i*srcStride : i*srcStride+srcSize]
			convertOne(dst, src, d, s, mode)
		}
	}}
}

func convertOne(dst, src BuiltinID, d, s []byte, mode AssignErrorMode) {
	if dst == src {
		copy(d, s)
		return
	}

	switch family(dst) {
	case numFloat:
		v := readAsFloat64(src, s)
		if mode >= ErrorModeInexact && family(src) != numFloat {
			// integer -> float precision check: float64 holds every int64
			// exactly only up to 2^53; beyond that, flag inexact.
			if iv := readAsInt64(src, s); math.Abs(float64(iv)) > (1 << 53) {
				raiseInexact(dst, src)
			}
		}
		if dst == Float32 && mode >= ErrorModeInexact {
			if float64(float32(v)) != v {
				raiseInexact(dst, src)
			}
		}
		writeFloat64(dst, d, v)
		return

	case numBool:
		v := readAsFloat64(src, s)
		if v != 0 {
			d[0] = 1
		} else {
			d[0] = 0
		}
		return
	}

	// Destination is a fixed-width integer (signed or unsigned).
	var asInt int64
	var negative bool
	switch family(src) {
	case numFloat:
		v := readAsFloat64(src, s)
		if mode >= ErrorModeFractional && v != math.Trunc(v) {
			raiseFractional(dst, src)
		}
		truncated := math.Trunc(v)
		if truncated < float64(mathutil.MinInt) || truncated > float64(mathutil.MaxInt) {
			if mode >= ErrorModeOverflow {
				raiseOverflow(dst, src)
			}
			if truncated < 0 {
				truncated = float64(mathutil.MinInt)
			} else {
				truncated = float64(mathutil.MaxInt)
			}
		}
		asInt = int64(truncated)
	case numSigned, numBool:
		asInt = readAsInt64(src, s)
		negative = asInt < 0
	case numUnsigned:
		u := readAsUint64(src, s)
		if u > math.MaxInt64 {
			if mode >= ErrorModeOverflow {
				raiseOverflow(dst, src)
			}
			asInt = math.MaxInt64
		} else {
			asInt = int64(u)
		}
	}

	if family(dst) == numUnsigned {
		if negative && mode >= ErrorModeOverflow {
			raiseOverflow(dst, src)
		}
		if dst != Uint64 && mode >= ErrorModeOverflow {
			if bounds, ok := intBounds[dst]; ok && !clampToRange(asInt, bounds[0], bounds[1]) {
				raiseOverflow(dst, src)
			}
		}
		writeUint64(dst, d, uint64(asInt))
		return
	}

	if bounds, ok := intBounds[dst]; ok && mode >= ErrorModeOverflow {
		if !clampToRange(asInt, bounds[0], bounds[1]) {
			raiseOverflow(dst, src)
		}
	}
	writeInt64(dst, d, asInt)
}

// raiseOverflow, raiseFractional and raiseInexact panic with a taxonomied
// dyerr so they can be recovered by internal/assign's outermost call and
// turned into a returned error — the chained-unary calling convention
// (spec §4.4) has no per-element error channel, so a narrowing violation
// partway through a batch must unwind past the kernel loop rather than
// return a sentinel. This mirrors the "no panics cross a package boundary"
// rule only loosely: the panic is always recovered before leaving
// internal/assign, which owns the public call boundary for assignment.
func raiseOverflow(dst, src BuiltinID) {
	panic(dyerr.New(dyerr.OutOfRangeConversion, "value out of range converting %s to %s", src, dst))
}

func raiseFractional(dst, src BuiltinID) {
	panic(dyerr.New(dyerr.OutOfRangeConversion, "fractional part lost converting %s to %s", src, dst))
}

func raiseInexact(dst, src BuiltinID) {
	panic(dyerr.New(dyerr.OutOfRangeConversion, "precision lost converting %s to %s", src, dst))
}
