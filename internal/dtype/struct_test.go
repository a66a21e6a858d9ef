package dtype

import "testing"

func TestStructEqualityIgnoresFieldNames(t *testing.T) {
	// spec §8: "For struct types S1, S2 with equal field-type vectors,
	// alignment, memory-management: S1 == S2" — field names excluded.
	a := MakeStruct(Field{Name: "x", Type: TInt32}, Field{Name: "y", Type: TFloat64})
	b := MakeStruct(Field{Name: "lat", Type: TInt32}, Field{Name: "lon", Type: TFloat64})

	if !a.Equal(b) {
		t.Fatal("expected structurally identical structs to compare equal regardless of field names")
	}
}

func TestStructInequalityOnFieldType(t *testing.T) {
	a := MakeStruct(Field{Name: "x", Type: TInt32})
	b := MakeStruct(Field{Name: "x", Type: TInt64})
	if a.Equal(b) {
		t.Fatal("expected structs with differing field types to compare unequal")
	}
}

func TestStructFieldOffsetsRespectAlignment(t *testing.T) {
	// int8 field then int32 field: the int32 must be padded up to its own
	// alignment (4), not packed immediately after the single byte.
	s := MakeStruct(Field{Name: "a", Type: TInt8}, Field{Name: "b", Type: TInt32})
	impl := s.Impl().(*StructImpl)
	offs := impl.fieldOffsets()
	if offs[0] != 0 {
		t.Fatalf("expected first field at offset 0, got %d", offs[0])
	}
	if offs[1] != 4 {
		t.Fatalf("expected second field aligned to offset 4, got %d", offs[1])
	}
	if s.ElementSize() != 8 {
		t.Fatalf("expected struct rounded to its own alignment (4), got size %d", s.ElementSize())
	}
}

func TestStructMetadataDefaultConstructRejectsWrongFieldCount(t *testing.T) {
	s := MakeStruct(Field{Name: "a", Type: TInt32}, Field{Name: "b", Type: TInt32})
	impl := s.Impl().(*StructImpl)
	buf := make([]byte, impl.MetadataSize())
	err := impl.MetadataDefaultConstruct(buf, 1, []int64{3})
	if err == nil {
		t.Fatal("expected shape/field-count mismatch to error")
	}
}

func TestStructProjectSelectsFieldSubset(t *testing.T) {
	s := MakeStruct(
		Field{Name: "a", Type: TInt32},
		Field{Name: "b", Type: TFloat64},
		Field{Name: "c", Type: TBool},
	)
	impl := s.Impl().(*StructImpl)
	sub := impl.Project(1, 3)
	subImpl := sub.Impl().(*StructImpl)
	if len(subImpl.Fields()) != 2 {
		t.Fatalf("expected 2 projected fields, got %d", len(subImpl.Fields()))
	}
	if subImpl.Fields()[0].Name != "b" || subImpl.Fields()[1].Name != "c" {
		t.Fatalf("unexpected projected fields: %+v", subImpl.Fields())
	}
}
