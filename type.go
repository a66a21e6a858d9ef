package dynarray

import "dynarray/internal/dtype"

// Encoding names a string type's text encoding.
type Encoding = dtype.Encoding

const (
	UTF8  = dtype.UTF8
	ASCII = dtype.ASCII
	UTF16 = dtype.UTF16
)

// Field is one (type, name) pair of a struct type.
type Field = dtype.Field

// MakeType returns the builtin Type handle naming Go type T (spec §6
// make_type<T>()).
func MakeType[T dtype.Number]() Type { return dtype.MakeType[T]() }

// MakeString builds a variable-length string type (spec §6 make_string).
func MakeString(encoding Encoding) Type { return dtype.MakeString(encoding) }

// MakeFixedString builds a fixed-byte-width string type (spec §6
// make_fixedstring).
func MakeFixedString(size int, encoding Encoding) Type {
	return dtype.MakeFixedString(size, encoding)
}

// MakeBytes builds a fixed-size raw byte buffer type.
func MakeBytes(size int) Type { return dtype.MakeBytes(size) }

// MakeStridedOf builds a fixed-length strided array of elem (spec §6
// make_strided_of(T)).
func MakeStridedOf(elem Type, length int) Type { return dtype.MakeStridedOf(elem, length) }

// MakeCategorical builds a categorical type over a unique category list
// (spec §6 make_categorical). factor_categorical — automatic
// de-duplication from observed values — is named out of scope by spec §1
// ("the categorical factor helper"); callers needing it supply their own
// unique category list to MakeCategorical directly.
func MakeCategorical(categories []string) (Type, error) { return dtype.MakeCategorical(categories) }

// MakeConvert builds an explicit convert type over (valueType, storageType)
// (spec §6 make_convert).
func MakeConvert(valueType, storageType Type) Type { return dtype.MakeConvert(valueType, storageType) }

// MakeConvertMode is MakeConvert with an explicit assignment error mode for
// the storage<->value link.
func MakeConvertMode(valueType, storageType Type, mode AssignErrorMode) Type {
	return dtype.MakeConvertMode(valueType, storageType, mode)
}

// MakeStruct builds a struct type from field (type, name) pairs in
// declaration order (spec §6 make_cstruct).
func MakeStruct(fields ...Field) Type { return dtype.MakeStruct(fields...) }

// MakeDatetime builds a datetime type over the given text layout.
func MakeDatetime(layout string) Type { return dtype.MakeDatetime(layout) }

// MakeView builds a reinterpret-cast view type over (valueType,
// storageType) of equal size.
func MakeView(valueType, storageType Type) (Type, error) { return dtype.MakeView(valueType, storageType) }

// MakeTypeOfType builds the type-of-type handle, whose elements are
// themselves type descriptors.
func MakeTypeOfType() Type { return dtype.MakeTypeOfType() }

// ParseBuiltinName looks up a builtin type by its canonical spelling (spec
// §8 scenario 6).
func ParseBuiltinName(name string) (Type, error) { return dtype.ParseBuiltinName(name) }

// IsLossless reports whether every value of src can be represented exactly
// as dst without per-assignment validation (spec §8 scenario 5).
func IsLossless(dst, src Type) bool { return dtype.IsLossless(dst, src) }
