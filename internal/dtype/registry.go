package dtype

import "dynarray/internal/dyerr"

// Number is the set of Go scalar types make_type[T]() can map onto a
// builtin id.
type Number interface {
	~bool | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// MakeType returns the builtin Type handle naming Go type T (spec §6
// make_type<T>()). Complex64/128 have no matching Go generic constraint
// term that also fits signed/unsigned/float in one set without duplicating
// the whole switch, so they're exposed separately as TComplex64/TComplex128
// constants instead of through this generic entry point.
func MakeType[T Number]() Type {
	var zero T
	switch any(zero).(type) {
	case bool:
		return TBool
	case int8:
		return TInt8
	case int16:
		return TInt16
	case int32:
		return TInt32
	case int64:
		return TInt64
	case uint8:
		return TUint8
	case uint16:
		return TUint16
	case uint32:
		return TUint32
	case uint64:
		return TUint64
	case float32:
		return TFloat32
	case float64:
		return TFloat64
	default:
		panic("dtype: unreachable Number case")
	}
}

// Property is a typed metadata accessor result (spec §6 `p("property_name")`
// for e.g. a categorical's storage_type, category_type, categories).
type Property struct {
	Type     Type
	Types    []Type
	Strings  []string
}

// P looks up a named property off a composite type, the Go rendering of
// the original's `p("property_name")` (spec §6). Builtins carry no
// properties.
func P(t Type, name string) (Property, error) {
	switch impl := t.Impl().(type) {
	case *CategoricalImpl:
		switch name {
		case "storage_type":
			return Property{Type: impl.StorageType()}, nil
		case "category_type":
			return Property{Type: impl.ValueType()}, nil
		case "categories":
			return Property{Strings: impl.Categories()}, nil
		}
	case *StructImpl:
		switch name {
		case "field_types":
			types := make([]Type, len(impl.fields))
			for i, f := range impl.fields {
				types[i] = f.Type
			}
			return Property{Types: types}, nil
		case "field_names":
			names := make([]string, len(impl.fields))
			for i, f := range impl.fields {
				names[i] = f.Name
			}
			return Property{Strings: names}, nil
		}
	case *ConvertImpl:
		switch name {
		case "storage_type":
			return Property{Type: impl.StorageType()}, nil
		case "value_type":
			return Property{Type: impl.ValueType()}, nil
		}
	}
	return Property{}, dyerr.New(dyerr.Unsupported, "type %s has no property %q", t.String(), name)
}

// IsLossless reports whether every value of src can be represented exactly
// as dst without per-assignment validation (spec §8 scenario 5:
// is_lossless(string, categorical) is false, symmetric both ways — an
// arbitrary string might not be a category, and a category index doesn't
// determine a unique string without the type's own table). Builtins are
// lossless in the widening direction only.
func IsLossless(dst, src Type) bool {
	if dst.Equal(src) {
		return true
	}
	if dst.IsBuiltin() && src.IsBuiltin() {
		return losslessBuiltin(dst.BuiltinID(), src.BuiltinID())
	}
	if _, ok := dst.Impl().(*CategoricalImpl); ok {
		return false
	}
	if _, ok := src.Impl().(*CategoricalImpl); ok {
		return false
	}
	return false
}

func losslessBuiltin(dst, src BuiltinID) bool {
	if dst == src {
		return true
	}
	rank := map[BuiltinID]int{
		Int8: 1, Int16: 2, Int32: 3, Int64: 4,
		Uint8: 1, Uint16: 2, Uint32: 3, Uint64: 4,
		Float32: 5, Float64: 6,
	}
	if family(dst) == family(src) {
		return rank[dst] >= rank[src]
	}
	if family(dst) == numFloat && family(src) != numFloat {
		// An integer converts exactly only while it fits the float's
		// mantissa (24 bits for float32, 53 for float64).
		switch dst {
		case Float32, Complex64:
			return builtinSizes[src] <= 2
		case Float64, Complex128:
			return builtinSizes[src] <= 4
		}
	}
	return false
}
