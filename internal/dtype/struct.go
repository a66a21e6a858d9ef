package dtype

import (
	"encoding/binary"
	"strings"

	"golang.org/x/exp/slices"

	"dynarray/internal/dyerr"
	"dynarray/internal/kernel"
)

// Field is one (type, name) pair of a struct type (spec §4.2 "Struct
// type... Fields are (type, name) pairs").
type Field struct {
	Name string
	Type Type
}

// StructImpl is the struct composite type. Grounded verbatim on
// struct_dtype.cpp's field-offset accumulation, metadata layout, and
// equality rule (spec SPEC_FULL.md supplemented feature 3).
type StructImpl struct {
	fields []Field
}

// MakeStruct builds a struct type from field (type, name) pairs in
// declaration order, the Go equivalent of make_cstruct(field_type,
// field_name, ...) (spec §6).
func MakeStruct(fields ...Field) Type {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return Composite(&StructImpl{fields: cp})
}

func (s *StructImpl) Fields() []Field { return s.fields }

func (s *StructImpl) String() string {
	var b strings.Builder
	b.WriteString("struct{")
	for i, f := range s.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Type.String())
		b.WriteByte(' ')
		b.WriteString(f.Name)
	}
	b.WriteByte('}')
	return b.String()
}

func (s *StructImpl) Kind() Kind { return KindPod }

// ElementSize is the struct's own packed byte size: each field's offset
// rounded to its alignment, plus its size, with the whole struct then
// rounded up to its own Alignment.
func (s *StructImpl) ElementSize() int {
	cursor := 0
	align := 1
	for _, f := range s.fields {
		a := f.Type.Alignment()
		if a > align {
			align = a
		}
		cursor = incToAlignment(cursor, a)
		cursor += f.Type.ElementSize()
	}
	return incToAlignment(cursor, align)
}

func (s *StructImpl) Alignment() int {
	align := 1
	for _, f := range s.fields {
		if a := f.Type.Alignment(); a > align {
			align = a
		}
	}
	return align
}

// MetadataSize is the field-offset table (one int64 per field) plus every
// field's own metadata, laid out back to back (spec SPEC_FULL.md
// supplemented feature 3: "metadata holding a size_t offset table sized
// fields * sizeof(size_t) before any sub-metadata").
func (s *StructImpl) MetadataSize() int {
	total := 8 * len(s.fields)
	for _, f := range s.fields {
		total += f.Type.MetadataSize()
	}
	return total
}

func (s *StructImpl) MemoryManagement() MemoryManagement {
	for _, f := range s.fields {
		if f.Type.MemoryManagement() != ManagementPod {
			return ManagementBlockref
		}
	}
	return ManagementPod
}

func (s *StructImpl) Flags() Flags {
	var fl Flags
	for _, f := range s.fields {
		if f.Type.Flags()&FlagHasDestructor != 0 {
			fl |= FlagHasDestructor
		}
	}
	return fl
}

// Equal matches fields iff alignment, memory management, and the
// field-*type* vector agree; field names are explicitly excluded from
// identity (spec §4.2, §9 open question 2).
func (s *StructImpl) Equal(other TypeImpl) bool {
	o, ok := other.(*StructImpl)
	if !ok {
		return false
	}
	if s.Alignment() != o.Alignment() || s.MemoryManagement() != o.MemoryManagement() {
		return false
	}
	if len(s.fields) != len(o.fields) {
		return false
	}
	for i := range s.fields {
		if !s.fields[i].Type.Equal(o.fields[i].Type) {
			return false
		}
	}
	return true
}

// fieldOffsets computes each field's byte offset into the data buffer,
// using the same rounding rule as ElementSize.
func (s *StructImpl) fieldOffsets() []int64 {
	offs := make([]int64, len(s.fields))
	cursor := 0
	for i, f := range s.fields {
		cursor = incToAlignment(cursor, f.Type.Alignment())
		offs[i] = int64(cursor)
		cursor += f.Type.ElementSize()
	}
	return offs
}

// fieldMetaOffsets returns, for each field, the byte offset of its own
// metadata sub-range within this struct's metadata buffer (after the
// offset table).
func (s *StructImpl) fieldMetaOffsets() []int {
	offs := make([]int, len(s.fields))
	cursor := 8 * len(s.fields)
	for i, f := range s.fields {
		offs[i] = cursor
		cursor += f.Type.MetadataSize()
	}
	return offs
}

// MetadataDefaultConstruct writes the field-offset table and recurses into
// each field's own metadata. On any field's failure, every previously
// constructed field [0, i) is destructed before the error propagates,
// matching struct_dtype.cpp's rollback loop (spec §5 "Failure atomicity",
// SPEC_FULL.md supplemented feature 3).
func (s *StructImpl) MetadataDefaultConstruct(buf []byte, ndim int, shape []int64) error {
	if ndim > 0 && shape[0] >= 0 && shape[0] != int64(len(s.fields)) {
		return dyerr.New(dyerr.TypeMismatch,
			"struct has %d fields, shape requests dimension size %d", len(s.fields), shape[0])
	}

	offs := s.fieldOffsets()
	for i, o := range offs {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(o))
	}

	metaOffs := s.fieldMetaOffsets()
	for i, f := range s.fields {
		sz := f.Type.MetadataSize()
		if sz == 0 {
			continue
		}
		sub := buf[metaOffs[i] : metaOffs[i]+sz]
		var subShape []int64
		if ndim > 1 {
			subShape = shape[1:]
		}
		if impl := f.Type.Impl(); impl != nil {
			if err := impl.MetadataDefaultConstruct(sub, ndim-1, subShape); err != nil {
				for j := 0; j < i; j++ {
					if impl2 := s.fields[j].Type.Impl(); impl2 != nil && s.fields[j].Type.MetadataSize() > 0 {
						impl2.MetadataDestruct(buf[metaOffs[j] : metaOffs[j]+s.fields[j].Type.MetadataSize()])
					}
				}
				return err
			}
		}
	}
	return nil
}

func (s *StructImpl) MetadataCopyConstruct(dst, src []byte) {
	copy(dst, src)
	metaOffs := s.fieldMetaOffsets()
	for i, f := range s.fields {
		sz := f.Type.MetadataSize()
		if sz == 0 {
			continue
		}
		if impl := f.Type.Impl(); impl != nil {
			impl.MetadataCopyConstruct(dst[metaOffs[i]:metaOffs[i]+sz], src[metaOffs[i]:metaOffs[i]+sz])
		}
	}
}

func (s *StructImpl) MetadataDestruct(buf []byte) {
	metaOffs := s.fieldMetaOffsets()
	for i, f := range s.fields {
		sz := f.Type.MetadataSize()
		if sz == 0 {
			continue
		}
		if impl := f.Type.Impl(); impl != nil {
			impl.MetadataDestruct(buf[metaOffs[i] : metaOffs[i]+sz])
		}
	}
}

func (s *StructImpl) PrintData(metadata, data []byte) string {
	offs := s.fieldOffsets()
	metaOffs := s.fieldMetaOffsets()
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range s.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		fieldData := data[offs[i] : int(offs[i])+f.Type.ElementSize()]
		var fieldMeta []byte
		if sz := f.Type.MetadataSize(); sz > 0 {
			fieldMeta = metadata[metaOffs[i] : metaOffs[i]+sz]
		}
		b.WriteString(printScalar(f.Type, fieldMeta, fieldData))
	}
	b.WriteByte('}')
	return b.String()
}

// AssignFrom only handles the identical-layout case directly (a structural
// memcpy); cross-struct-type field-wise conversion is composed one level up
// by internal/assign, which has visibility into every field type without
// internal/dtype needing to import it back (avoiding an import cycle).
func (s *StructImpl) AssignFrom(b *kernel.Builder, dstMeta []byte, src Type, srcMeta []byte, mode AssignErrorMode) (bool, error) {
	srcImpl, ok := src.Impl().(*StructImpl)
	if !ok || !s.Equal(srcImpl) {
		return false, nil
	}
	b.Append(kernel.MemcpyUnary(s.ElementSize()))
	return true, nil
}

// FieldIndex returns the index of the named field, used by apply_linear_index
// field projection (spec §4.2 "a single index with step 0 returns the
// sub-field type").
func (s *StructImpl) FieldIndex(name string) (int, bool) {
	idx := slices.IndexFunc(s.fields, func(f Field) bool { return f.Name == name })
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

// Project returns a new struct type over the field subset [lo, hi), the
// strided-index case of apply_linear_index (spec §4.2).
func (s *StructImpl) Project(lo, hi int) Type {
	return MakeStruct(s.fields[lo:hi]...)
}

func incToAlignment(offset, align int) int {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
