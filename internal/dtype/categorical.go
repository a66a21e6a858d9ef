package dtype

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/slices"

	"dynarray/internal/dyerr"
	"dynarray/internal/kernel"
)

// CategoricalImpl is the categorical composite type: values are stored as a
// small integer index into a fixed category list, with the index's storage
// width chosen by population size (spec SPEC_FULL.md supplemented feature
// 6, grounded on tests/types/test_categorical_type.cpp). It implements
// ExpressionImpl because its storage (an index) and value (the category
// text) differ, even though its Kind is "custom" rather than "expression"
// (spec §3 lists categorical and expression as separate kind/variant
// concerns; this core lets a type be both).
type CategoricalImpl struct {
	categories []string
	storageID  BuiltinID
	valueType  *StringImpl
}

// MakeCategorical builds a categorical type over categories, rejecting
// duplicates (spec §6 make_categorical, §8 scenario 2). The storage width
// is chosen by the exact table of supplemented feature 6: <=256 -> u8,
// 257..65536 -> u16, >65536 -> u32. The category index itself is always
// computed in int32 space regardless of storage width.
//
// factor_categorical (automatic de-duplication from observed values) is
// named out of scope by spec §1 "categorical factor helper"; this
// constructor only validates an explicitly supplied, already-unique list.
func MakeCategorical(categories []string) (Type, error) {
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if _, dup := seen[c]; dup {
			return Type{}, dyerr.New(dyerr.TypeMismatch, "duplicate category %q", c)
		}
		seen[c] = struct{}{}
	}
	cp := make([]string, len(categories))
	copy(cp, categories)

	var storageID BuiltinID
	switch n := len(cp); {
	case n <= 256:
		storageID = Uint8
	case n <= 65536:
		storageID = Uint16
	default:
		storageID = Uint32
	}

	return Composite(&CategoricalImpl{
		categories: cp,
		storageID:  storageID,
		valueType:  &StringImpl{encoding: UTF8}, // lazily gets its own backing block on first Store
	}), nil
}

func (c *CategoricalImpl) Categories() []string { return c.categories }

func (c *CategoricalImpl) String() string {
	return fmt.Sprintf("categorical%v", c.categories)
}

func (c *CategoricalImpl) Kind() Kind                 { return KindCustom }
func (c *CategoricalImpl) ElementSize() int           { return c.storageID.ElementSize() }
func (c *CategoricalImpl) Alignment() int             { return c.storageID.Alignment() }
func (c *CategoricalImpl) MetadataSize() int          { return 0 }
func (c *CategoricalImpl) MemoryManagement() MemoryManagement { return ManagementPod }
func (c *CategoricalImpl) Flags() Flags               { return FlagExpression }

func (c *CategoricalImpl) Equal(other TypeImpl) bool {
	o, ok := other.(*CategoricalImpl)
	return ok && slices.Equal(o.categories, c.categories)
}

func (c *CategoricalImpl) MetadataDefaultConstruct(buf []byte, ndim int, shape []int64) error {
	return nil
}
func (c *CategoricalImpl) MetadataCopyConstruct(dst, src []byte) {}
func (c *CategoricalImpl) MetadataDestruct(buf []byte)           {}

// Encode returns the int32 position of category in the category list, or a
// taxonomied type-mismatch error if it is not a member (spec §8 "any v not
// in C fails with taxonomied type mismatch").
func (c *CategoricalImpl) Encode(category string) (int32, error) {
	idx := slices.Index(c.categories, category)
	if idx < 0 {
		return 0, dyerr.New(dyerr.TypeMismatch, "%q is not a member of this categorical's categories", category)
	}
	return int32(idx), nil
}

// Decode returns the category text for a stored index.
func (c *CategoricalImpl) Decode(index int32) string {
	return c.categories[index]
}

func (c *CategoricalImpl) readIndex(data []byte) int32 {
	switch c.storageID {
	case Uint8:
		return int32(data[0])
	case Uint16:
		return int32(binary.LittleEndian.Uint16(data))
	default:
		return int32(binary.LittleEndian.Uint32(data))
	}
}

func (c *CategoricalImpl) writeIndex(data []byte, idx int32) {
	switch c.storageID {
	case Uint8:
		data[0] = byte(idx)
	case Uint16:
		binary.LittleEndian.PutUint16(data, uint16(idx))
	default:
		binary.LittleEndian.PutUint32(data, uint32(idx))
	}
}

func (c *CategoricalImpl) PrintData(metadata, data []byte) string {
	return fmt.Sprintf("%q", c.Decode(c.readIndex(data)))
}

// StorageType is the integer index type backing each value.
func (c *CategoricalImpl) StorageType() Type { return Builtin(c.storageID) }

// ValueType is the category text type each value materializes into.
// is_lossless(string, categorical) is false (spec §8 scenario 5) precisely
// because this ValueType link is lossy in the unsupported direction: an
// arbitrary string might not be a member, so the conversion always needs
// per-assignment validation rather than being a structural no-op.
func (c *CategoricalImpl) ValueType() Type { return Composite(c.valueType) }

func (c *CategoricalImpl) StorageToValue() kernel.Unary {
	return kernel.Unary{Fn: func(dst []byte, dstStride int, src []byte, srcStride int, count int, aux kernel.Aux) {
		for i := 0; i < count; i++ {
			idx := c.readIndex(src[i*srcStride:])
			c.valueType.Store(dst[i*dstStride:], c.Decode(idx))
		}
	}}
}

// ValueToStorage encodes each category string into its index. A value not
// present in this categorical's category list is a spec §8 "any v not in C
// fails with taxonomied type mismatch" violation; since the chained-unary
// calling convention has no per-element error return channel (the same
// constraint internal/dtype/numeric.go's raiseOverflow documents), the
// failure is raised via panic(dyerr...) and recovered at the assignment
// boundary (internal/assign.Values, node.Evaluate) into a returned error.
func (c *CategoricalImpl) ValueToStorage(mode AssignErrorMode) kernel.Unary {
	return kernel.Unary{Fn: func(dst []byte, dstStride int, src []byte, srcStride int, count int, aux kernel.Aux) {
		for i := 0; i < count; i++ {
			text := c.valueType.Load(src[i*srcStride:])
			idx, err := c.Encode(text)
			if err != nil {
				panic(err)
			}
			c.writeIndex(dst[i*dstStride:], idx)
		}
	}}
}

// AssignFrom handles categorical<-categorical (identical category lists,
// memcpy of the index) and categorical<-string (encode, spec §8 scenario
// 4's slice-assignment example). Any other source falls back to the
// generic expression-kind decomposition in internal/assign via ValueType.
func (c *CategoricalImpl) AssignFrom(b *kernel.Builder, dstMeta []byte, src Type, srcMeta []byte, mode AssignErrorMode) (bool, error) {
	if o, ok := src.Impl().(*CategoricalImpl); ok && c.Equal(o) {
		b.Append(kernel.MemcpyUnary(c.ElementSize()))
		return true, nil
	}
	if o, ok := src.Impl().(*StringImpl); ok {
		storage := c
		srcStr := o
		b.Append(kernel.Unary{Fn: func(dst []byte, dstStride int, srcBuf []byte, srcStride int, count int, aux kernel.Aux) {
			for i := 0; i < count; i++ {
				text := srcStr.Load(srcBuf[i*srcStride:])
				idx, err := storage.Encode(text)
				if err != nil {
					panic(err)
				}
				storage.writeIndex(dst[i*dstStride:], idx)
			}
		}})
		return true, nil
	}
	return false, nil
}
