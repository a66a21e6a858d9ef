package dtype

import (
	"fmt"
	"strings"

	"dynarray/internal/dyerr"
	"dynarray/internal/kernel"
)

// StridedOfImpl is the "fixed-array/strided" composite kind (spec §3): a
// fixed-length embedded array of an element type, most commonly used as a
// struct field that is itself a small array rather than as the outer
// shape mechanism of a whole Array (the node graph in internal/node owns
// the general n-dimensional strided-origin bookkeeping of §4.5 — this type
// is the dtype-level building block for a *fixed*, compile-time-known
// repeat count).
type StridedOfImpl struct {
	elem   Type
	length int
}

// MakeStridedOf builds a fixed-length array-of-T type (spec §6
// make_strided_of(T)).
func MakeStridedOf(elem Type, length int) Type {
	return Composite(&StridedOfImpl{elem: elem, length: length})
}

func (s *StridedOfImpl) Elem() Type  { return s.elem }
func (s *StridedOfImpl) Length() int { return s.length }

func (s *StridedOfImpl) String() string {
	return fmt.Sprintf("%d * %s", s.length, s.elem.String())
}

func (s *StridedOfImpl) Kind() Kind                 { return s.elem.Kind() }
func (s *StridedOfImpl) ElementSize() int           { return s.elem.ElementSize() * s.length }
func (s *StridedOfImpl) Alignment() int             { return s.elem.Alignment() }
func (s *StridedOfImpl) MetadataSize() int          { return s.elem.MetadataSize() }
func (s *StridedOfImpl) MemoryManagement() MemoryManagement { return s.elem.MemoryManagement() }
func (s *StridedOfImpl) Flags() Flags               { return s.elem.Flags() }

func (s *StridedOfImpl) Equal(other TypeImpl) bool {
	o, ok := other.(*StridedOfImpl)
	return ok && o.length == s.length && o.elem.Equal(s.elem)
}

func (s *StridedOfImpl) MetadataDefaultConstruct(buf []byte, ndim int, shape []int64) error {
	if ndim > 0 && shape[0] >= 0 && shape[0] != int64(s.length) {
		return dyerr.New(dyerr.TypeMismatch,
			"strided-of has fixed length %d, shape requests dimension size %d", s.length, shape[0])
	}
	if impl := s.elem.Impl(); impl != nil {
		return impl.MetadataDefaultConstruct(buf, ndim-1, nextShape(ndim, shape))
	}
	return nil
}

func (s *StridedOfImpl) MetadataCopyConstruct(dst, src []byte) {
	if impl := s.elem.Impl(); impl != nil {
		impl.MetadataCopyConstruct(dst, src)
	}
}

func (s *StridedOfImpl) MetadataDestruct(buf []byte) {
	if impl := s.elem.Impl(); impl != nil {
		impl.MetadataDestruct(buf)
	}
}

func (s *StridedOfImpl) PrintData(metadata, data []byte) string {
	elemSize := s.elem.ElementSize()
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < s.length; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(printScalar(s.elem, metadata, data[i*elemSize:(i+1)*elemSize]))
	}
	b.WriteByte(']')
	return b.String()
}

func (s *StridedOfImpl) AssignFrom(b *kernel.Builder, dstMeta []byte, src Type, srcMeta []byte, mode AssignErrorMode) (bool, error) {
	o, ok := src.Impl().(*StridedOfImpl)
	if !ok || o.length != s.length || !o.elem.Equal(s.elem) {
		return false, nil
	}
	b.Append(kernel.MemcpyUnary(s.ElementSize()))
	return true, nil
}

func nextShape(ndim int, shape []int64) []int64 {
	if ndim > 1 {
		return shape[1:]
	}
	return nil
}
