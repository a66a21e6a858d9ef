package dtype

import (
	"github.com/google/uuid"

	"dynarray/internal/dyerr"
	"dynarray/internal/kernel"
)

// TypeOfTypeImpl is the scalar-kind type whose element is itself another
// type handle (spec §3 "type-of-type", §4.2 "Type-of-type"). Its data
// destructor would decrement the stored handle's refcount in the original;
// Go's GC retires that bookkeeping, so this port only needs the
// assignment-dispatch rules spec §4.2 and SPEC_FULL.md supplemented
// feature 4 describe.
type TypeOfTypeImpl struct {
	id uuid.UUID // diagnostic identity only, see DebugID; never consulted by Equal
}

// MakeTypeOfType builds the type-of-type handle.
func MakeTypeOfType() Type {
	return Composite(&TypeOfTypeImpl{id: uuid.New()})
}

// DebugID surfaces a stable per-instance identity for diagnostic printing
// and logging, distinct from structural equality (spec §9 "Global type
// registry"; grounds SPEC_FULL.md's google/uuid wiring).
func (t *TypeOfTypeImpl) DebugID() uuid.UUID { return t.id }

func (t *TypeOfTypeImpl) String() string             { return "type" }
func (t *TypeOfTypeImpl) Kind() Kind                 { return KindPod }
func (t *TypeOfTypeImpl) ElementSize() int           { return 8 } // an index into cellTable, see storeCell/loadCell
func (t *TypeOfTypeImpl) Alignment() int             { return 8 }
func (t *TypeOfTypeImpl) MetadataSize() int          { return 0 }
func (t *TypeOfTypeImpl) MemoryManagement() MemoryManagement { return ManagementObject }
func (t *TypeOfTypeImpl) Flags() Flags               { return FlagHasDestructor }

func (t *TypeOfTypeImpl) Equal(other TypeImpl) bool {
	_, ok := other.(*TypeOfTypeImpl)
	return ok
}

func (t *TypeOfTypeImpl) MetadataDefaultConstruct(buf []byte, ndim int, shape []int64) error {
	return nil
}
func (t *TypeOfTypeImpl) MetadataCopyConstruct(dst, src []byte) {}
func (t *TypeOfTypeImpl) MetadataDestruct(buf []byte)           {}

// cell is the boxed Type handle a type-of-type value's data slot actually
// stores; data_destruct in the original decrements its refcount, here Go's
// GC collects it once the last cell referencing it is gone.
type cell struct{ t Type }

func (t *TypeOfTypeImpl) PrintData(metadata, data []byte) string {
	c := loadCell(data)
	return c.t.String()
}

// cellTable indirects a plain []byte data slot to a live Go Type value,
// the same index-into-a-side-table trick internal/dtype's string type uses
// to keep a reference reachable from raw bytes without unsafe.Pointer.
var cellTable []*cell

func loadCell(data []byte) *cell {
	return cellTable[leUint64(data)]
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

func storeCell(data []byte, t Type) {
	idx := uint64(len(cellTable))
	cellTable = append(cellTable, &cell{t: t})
	for i := 0; i < 8; i++ {
		data[i] = byte(idx >> (8 * i))
	}
}

// AssignFrom implements the three rules of spec §4.2/SPEC_FULL.md
// supplemented feature 4: type-of-type <- type-of-type copies the handle;
// type-of-type <- string parses the text as a builtin name (the only
// grammar this core supports, a full type-expression parser being out of
// scope per §1); string <- type-of-type is handled symmetrically by
// StringImpl declining and this type's reverse path in internal/assign
// formatting via PrintData.
func (t *TypeOfTypeImpl) AssignFrom(b *kernel.Builder, dstMeta []byte, src Type, srcMeta []byte, mode AssignErrorMode) (bool, error) {
	if _, ok := src.Impl().(*TypeOfTypeImpl); ok {
		b.Append(kernel.Unary{Fn: func(dst []byte, dstStride int, srcBuf []byte, srcStride int, count int, aux kernel.Aux) {
			for i := 0; i < count; i++ {
				c := loadCell(srcBuf[i*srcStride:])
				storeCell(dst[i*dstStride:], c.t)
			}
		}})
		return true, nil
	}
	if srcStr, ok := src.Impl().(*StringImpl); ok {
		b.Append(kernel.Unary{Fn: func(dst []byte, dstStride int, srcBuf []byte, srcStride int, count int, aux kernel.Aux) {
			for i := 0; i < count; i++ {
				name := srcStr.Load(srcBuf[i*srcStride:])
				parsed, err := ParseBuiltinName(name)
				if err != nil {
					panic(err)
				}
				storeCell(dst[i*dstStride:], parsed)
			}
		}})
		return true, nil
	}
	return false, nil
}

// ParseBuiltinName looks up a builtin type by its canonical spelling (spec
// §8 scenario 6: assigning "int32" produces a handle equal to
// make_type<i32>()). A full type-expression grammar is out of scope per
// §1; this name-table lookup is the one parsing path this core implements.
func ParseBuiltinName(name string) (Type, error) {
	switch name {
	case "int8":
		return TInt8, nil
	case "int16":
		return TInt16, nil
	case "int32":
		return TInt32, nil
	case "int64":
		return TInt64, nil
	case "uint8":
		return TUint8, nil
	case "uint16":
		return TUint16, nil
	case "uint32":
		return TUint32, nil
	case "uint64":
		return TUint64, nil
	case "float32":
		return TFloat32, nil
	case "float64":
		return TFloat64, nil
	case "complex64":
		return TComplex64, nil
	case "complex128":
		return TComplex128, nil
	case "bool":
		return TBool, nil
	default:
		if id, ok := byName(name); ok {
			return Builtin(id), nil
		}
		return Type{}, dyerr.New(dyerr.ParseError, "unrecognized type name %q", name)
	}
}

// FormatType renders a type-of-type value's stored handle back to text
// (spec §8 scenario 6's reverse direction), formatting via the same
// canonical spelling ParseBuiltinName parses.
func FormatType(data []byte) string {
	return loadCell(data).t.String()
}

// NewTypeOfTypeValue stores a type handle into a fresh data slot, for use
// by the array package's construction helpers.
func NewTypeOfTypeValue(data []byte, t Type) {
	storeCell(data, t)
}
