package dtype

import (
	"fmt"

	"dynarray/internal/dyerr"
	"dynarray/internal/kernel"
)

// ViewImpl is the expression-kind "view" type: it reinterprets the same
// bytes as a different element type without conversion, the bit-pattern
// reinterpretation named alongside "convert" in spec §3. Unlike convert,
// storage and value must share an element size — there is nothing to
// narrow or widen, only to relabel.
type ViewImpl struct {
	value, storage Type
}

// MakeView builds a view type that reads storageType's bytes as valueType.
func MakeView(valueType, storageType Type) (Type, error) {
	if valueType.ElementSize() != storageType.ElementSize() {
		return Type{}, dyerr.New(dyerr.TypeMismatch,
			"view requires equal element sizes, got value=%d storage=%d",
			valueType.ElementSize(), storageType.ElementSize())
	}
	return Composite(&ViewImpl{value: valueType, storage: storageType}), nil
}

func (v *ViewImpl) String() string {
	return fmt.Sprintf("view[%s, %s]", v.value.String(), v.storage.String())
}

func (v *ViewImpl) Kind() Kind                 { return KindExpression }
func (v *ViewImpl) ElementSize() int           { return v.storage.ElementSize() }
func (v *ViewImpl) Alignment() int             { return v.storage.Alignment() }
func (v *ViewImpl) MetadataSize() int          { return 0 }
func (v *ViewImpl) MemoryManagement() MemoryManagement { return ManagementPod }
func (v *ViewImpl) Flags() Flags               { return FlagExpression }

func (v *ViewImpl) Equal(other TypeImpl) bool {
	o, ok := other.(*ViewImpl)
	return ok && o.value.Equal(v.value) && o.storage.Equal(v.storage)
}

func (v *ViewImpl) MetadataDefaultConstruct(buf []byte, ndim int, shape []int64) error { return nil }
func (v *ViewImpl) MetadataCopyConstruct(dst, src []byte)                              {}
func (v *ViewImpl) MetadataDestruct(buf []byte)                                        {}

func (v *ViewImpl) PrintData(metadata, data []byte) string {
	return printScalar(v.value, metadata, data)
}

func (v *ViewImpl) StorageType() Type { return v.storage }
func (v *ViewImpl) ValueType() Type   { return v.value }

func (v *ViewImpl) StorageToValue() kernel.Unary { return kernel.MemcpyUnary(v.ElementSize()) }
func (v *ViewImpl) ValueToStorage(AssignErrorMode) kernel.Unary {
	return kernel.MemcpyUnary(v.ElementSize())
}

func (v *ViewImpl) AssignFrom(b *kernel.Builder, dstMeta []byte, src Type, srcMeta []byte, mode AssignErrorMode) (bool, error) {
	o, ok := src.Impl().(*ViewImpl)
	if !ok || !o.Equal(v) {
		return false, nil
	}
	b.Append(kernel.MemcpyUnary(v.ElementSize()))
	return true, nil
}
