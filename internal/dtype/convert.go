package dtype

import (
	"fmt"

	"dynarray/internal/kernel"
)

// ConvertImpl is the explicit expression-kind "convert" type: storage is
// one type, value is another, and every materialization runs a conversion
// kernel between them (spec §3 "convert", §4.2 "Expression-kind types").
type ConvertImpl struct {
	value, storage Type
	mode           AssignErrorMode
}

// MakeConvert builds a convert type over (valueType, storageType) (spec §6
// make_convert(value_type, storage_type)). The error mode stored for the
// storage->value link is overflow-checked; ValueToStorage takes the
// caller's mode as an argument instead.
func MakeConvert(valueType, storageType Type) Type {
	return Composite(&ConvertImpl{value: valueType, storage: storageType, mode: ErrorModeOverflow})
}

// MakeConvertMode is MakeConvert with an explicit error mode for the
// storage<->value link, used by internal/node's as_dtype (spec §4.5) which
// takes the caller's error_mode directly rather than defaulting it.
func MakeConvertMode(valueType, storageType Type, mode AssignErrorMode) Type {
	return Composite(&ConvertImpl{value: valueType, storage: storageType, mode: mode})
}

func (c *ConvertImpl) String() string {
	return fmt.Sprintf("convert[%s, %s]", c.value.String(), c.storage.String())
}

func (c *ConvertImpl) Kind() Kind                 { return KindExpression }
func (c *ConvertImpl) ElementSize() int           { return c.storage.ElementSize() }
func (c *ConvertImpl) Alignment() int             { return c.storage.Alignment() }
func (c *ConvertImpl) MetadataSize() int          { return c.storage.MetadataSize() }
func (c *ConvertImpl) MemoryManagement() MemoryManagement { return c.storage.MemoryManagement() }
func (c *ConvertImpl) Flags() Flags               { return FlagExpression }

func (c *ConvertImpl) Equal(other TypeImpl) bool {
	o, ok := other.(*ConvertImpl)
	return ok && o.value.Equal(c.value) && o.storage.Equal(c.storage)
}

func (c *ConvertImpl) MetadataDefaultConstruct(buf []byte, ndim int, shape []int64) error {
	if impl := c.storage.Impl(); impl != nil {
		return impl.MetadataDefaultConstruct(buf, ndim, shape)
	}
	return nil
}

func (c *ConvertImpl) MetadataCopyConstruct(dst, src []byte) {
	if impl := c.storage.Impl(); impl != nil {
		impl.MetadataCopyConstruct(dst, src)
	}
}

func (c *ConvertImpl) MetadataDestruct(buf []byte) {
	if impl := c.storage.Impl(); impl != nil {
		impl.MetadataDestruct(buf)
	}
}

func (c *ConvertImpl) PrintData(metadata, data []byte) string {
	valueBuf := make([]byte, c.value.ElementSize())
	c.StorageToValue().Invoke(valueBuf, len(valueBuf), data, len(data), 1)
	return printScalar(c.value, metadata, valueBuf)
}

func (c *ConvertImpl) StorageType() Type { return c.storage }
func (c *ConvertImpl) ValueType() Type   { return c.value }

func (c *ConvertImpl) StorageToValue() kernel.Unary {
	return convertKernel(c.value, c.storage, c.mode)
}

func (c *ConvertImpl) ValueToStorage(mode AssignErrorMode) kernel.Unary {
	return convertKernel(c.storage, c.value, mode)
}

func (c *ConvertImpl) AssignFrom(b *kernel.Builder, dstMeta []byte, src Type, srcMeta []byte, mode AssignErrorMode) (bool, error) {
	if o, ok := src.Impl().(*ConvertImpl); ok && o.Equal(c) {
		b.Append(kernel.MemcpyUnary(c.ElementSize()))
		return true, nil
	}
	return false, nil
}

// convertKernel builds the single unary kernel converting a value of type
// src into a value of type dst: builtin-to-builtin uses the numeric table,
// anything else defers to dst's own AssignFrom (assumed to append exactly
// one kernel, true of every composite type in this package), keeping this
// helper free of a dependency on internal/assign's fuller dispatch.
func convertKernel(dst, src Type, mode AssignErrorMode) kernel.Unary {
	if dst.IsBuiltin() && src.IsBuiltin() {
		return NumericConversionKernel(dst.BuiltinID(), src.BuiltinID(), mode)
	}
	b := &kernel.Builder{}
	if impl := dst.Impl(); impl != nil {
		if ok, err := impl.AssignFrom(b, nil, src, nil, mode); ok && err == nil && len(b.Kernels) > 0 {
			return b.Kernels[0]
		}
	}
	return kernel.MemcpyUnary(dst.ElementSize())
}
