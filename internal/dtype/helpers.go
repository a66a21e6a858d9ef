package dtype

import (
	"encoding/binary"
	"fmt"
	"math"
)

// printScalar renders one value of t at data/metadata, the shared
// formatting path used both by Type.PrintData at the top level and by
// composite types printing their own sub-fields (spec §4.2 "print_data").
func printScalar(t Type, metadata, data []byte) string {
	if !t.IsBuiltin() {
		return t.Impl().PrintData(metadata, data)
	}
	switch t.BuiltinID() {
	case Bool:
		if data[0] != 0 {
			return "true"
		}
		return "false"
	case Int8:
		return fmt.Sprintf("%d", int8(data[0]))
	case Int16:
		return fmt.Sprintf("%d", int16(binary.LittleEndian.Uint16(data)))
	case Int32:
		return fmt.Sprintf("%d", int32(binary.LittleEndian.Uint32(data)))
	case Int64:
		return fmt.Sprintf("%d", int64(binary.LittleEndian.Uint64(data)))
	case Uint8:
		return fmt.Sprintf("%d", data[0])
	case Uint16:
		return fmt.Sprintf("%d", binary.LittleEndian.Uint16(data))
	case Uint32:
		return fmt.Sprintf("%d", binary.LittleEndian.Uint32(data))
	case Uint64:
		return fmt.Sprintf("%d", binary.LittleEndian.Uint64(data))
	case Float32:
		return fmt.Sprintf("%g", math.Float32frombits(binary.LittleEndian.Uint32(data)))
	case Float64:
		return fmt.Sprintf("%g", math.Float64frombits(binary.LittleEndian.Uint64(data)))
	case Complex64:
		re := math.Float32frombits(binary.LittleEndian.Uint32(data))
		im := math.Float32frombits(binary.LittleEndian.Uint32(data[4:]))
		return fmt.Sprintf("(%g+%gi)", re, im)
	case Complex128:
		re := math.Float64frombits(binary.LittleEndian.Uint64(data))
		im := math.Float64frombits(binary.LittleEndian.Uint64(data[8:]))
		return fmt.Sprintf("(%g+%gi)", re, im)
	default:
		return "?"
	}
}

// PrintData is the top-level entry point for rendering one element of any
// type handle (spec §4.2, §6 "Streams").
func (t Type) PrintData(metadata, data []byte) string {
	return printScalar(t, metadata, data)
}
