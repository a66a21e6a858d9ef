package dtype

import (
	"encoding/binary"
	"fmt"

	"dynarray/internal/kernel"
	"dynarray/internal/memblock"
)

// Encoding names a string type's text encoding (spec §3 "string with
// encoding").
type Encoding uint8

const (
	UTF8 Encoding = iota
	ASCII
	UTF16
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf8"
	case ASCII:
		return "ascii"
	case UTF16:
		return "utf16"
	default:
		return "unknown"
	}
}

// StringImpl is the variable-length string composite type. Each value is a
// fixed 16-byte descriptor (allocation index, length) naming one of the
// allocations the type made in a pod bump block it owns — the Go-idiomatic rendering of the original's begin/end-pointer
// pair into a blockref memory block; threading a live block reference
// through a raw []byte metadata slot would need unsafe.Pointer tricks this
// port avoids (see DESIGN.md).
type StringImpl struct {
	encoding Encoding
	block    *memblock.BumpBlock
	allocs   []*memblock.Allocation
}

// MakeString builds a variable-length string type with the given encoding
// (spec §6 make_string(encoding)).
func MakeString(encoding Encoding) Type {
	return Composite(&StringImpl{encoding: encoding, block: memblock.NewPod(0)})
}

func (s *StringImpl) Encoding() Encoding { return s.encoding }

func (s *StringImpl) String() string             { return fmt.Sprintf("string[%s]", s.encoding) }
func (s *StringImpl) Kind() Kind                 { return KindString }
func (s *StringImpl) ElementSize() int           { return 16 }
func (s *StringImpl) Alignment() int             { return 8 }
func (s *StringImpl) MetadataSize() int          { return 0 }
func (s *StringImpl) MemoryManagement() MemoryManagement { return ManagementBlockref }
func (s *StringImpl) Flags() Flags               { return 0 }

func (s *StringImpl) Equal(other TypeImpl) bool {
	o, ok := other.(*StringImpl)
	return ok && o.encoding == s.encoding
}

func (s *StringImpl) MetadataDefaultConstruct(buf []byte, ndim int, shape []int64) error { return nil }
func (s *StringImpl) MetadataCopyConstruct(dst, src []byte)                              {}
func (s *StringImpl) MetadataDestruct(buf []byte)                                        {}

// descriptor reads the (allocIndex, length) pair a string value's data
// encodes: allocIndex names which of the type's own backing-block
// allocations holds the bytes.
func (s *StringImpl) descriptor(data []byte) (allocIndex, length int64) {
	return int64(binary.LittleEndian.Uint64(data)), int64(binary.LittleEndian.Uint64(data[8:]))
}

func (s *StringImpl) putDescriptor(data []byte, allocIndex, length int64) {
	binary.LittleEndian.PutUint64(data, uint64(allocIndex))
	binary.LittleEndian.PutUint64(data[8:], uint64(length))
}

// Store copies text's bytes into the type's backing block and writes the
// resulting descriptor into data, the write half of the string's
// blockref discipline.
func (s *StringImpl) Store(data []byte, text string) error {
	if s.block == nil {
		s.block = memblock.NewPod(0)
	}
	a, err := s.block.Allocate(len(text), 1)
	if err != nil {
		return err
	}
	copy(a.Bytes(s.block), text)
	idx := int64(len(s.allocs))
	s.allocs = append(s.allocs, a)
	s.putDescriptor(data, idx, int64(len(text)))
	return nil
}

// Load reads the text a value's descriptor names out of the backing block.
func (s *StringImpl) Load(data []byte) string {
	idx, length := s.descriptor(data)
	a := s.allocs[idx]
	return string(a.Bytes(s.block)[:length])
}

func (s *StringImpl) PrintData(metadata, data []byte) string {
	return fmt.Sprintf("%q", s.Load(data))
}

func (s *StringImpl) AssignFrom(b *kernel.Builder, dstMeta []byte, src Type, srcMeta []byte, mode AssignErrorMode) (bool, error) {
	srcImpl, ok := src.Impl().(*StringImpl)
	if !ok {
		return false, nil
	}
	dst := s
	b.Append(kernel.Unary{Fn: func(dstBuf []byte, dstStride int, srcBuf []byte, srcStride int, count int, aux kernel.Aux) {
		for i := 0; i < count; i++ {
			text := srcImpl.Load(srcBuf[i*srcStride:])
			dst.Store(dstBuf[i*dstStride:], text)
		}
	}})
	return true, nil
}

// FixedStringImpl is a fixed-byte-width string composite type (spec §6
// make_fixedstring(size, encoding)); its data is stored inline, no
// backing block required.
type FixedStringImpl struct {
	size     int
	encoding Encoding
}

func MakeFixedString(size int, encoding Encoding) Type {
	return Composite(&FixedStringImpl{size: size, encoding: encoding})
}

func (f *FixedStringImpl) String() string             { return fmt.Sprintf("fixedstring[%d,%s]", f.size, f.encoding) }
func (f *FixedStringImpl) Kind() Kind                 { return KindString }
func (f *FixedStringImpl) ElementSize() int           { return f.size }
func (f *FixedStringImpl) Alignment() int             { return 1 }
func (f *FixedStringImpl) MetadataSize() int          { return 0 }
func (f *FixedStringImpl) MemoryManagement() MemoryManagement { return ManagementPod }
func (f *FixedStringImpl) Flags() Flags               { return 0 }

func (f *FixedStringImpl) Equal(other TypeImpl) bool {
	o, ok := other.(*FixedStringImpl)
	return ok && o.size == f.size && o.encoding == f.encoding
}

func (f *FixedStringImpl) MetadataDefaultConstruct(buf []byte, ndim int, shape []int64) error {
	return nil
}
func (f *FixedStringImpl) MetadataCopyConstruct(dst, src []byte) {}
func (f *FixedStringImpl) MetadataDestruct(buf []byte)           {}

func (f *FixedStringImpl) PrintData(metadata, data []byte) string {
	raw := data[:f.size]
	n := len(raw)
	for n > 0 && raw[n-1] == 0 {
		n--
	}
	return fmt.Sprintf("%q", string(raw[:n]))
}

func (f *FixedStringImpl) AssignFrom(b *kernel.Builder, dstMeta []byte, src Type, srcMeta []byte, mode AssignErrorMode) (bool, error) {
	o, ok := src.Impl().(*FixedStringImpl)
	if !ok || o.size != f.size {
		return false, nil
	}
	b.Append(kernel.MemcpyUnary(f.size))
	return true, nil
}

// BytesImpl is a fixed-size raw byte buffer composite type (spec §3
// "bytes"), distinct from string in that it carries no text encoding.
type BytesImpl struct {
	size int
}

func MakeBytes(size int) Type { return Composite(&BytesImpl{size: size}) }

func (b *BytesImpl) String() string                      { return fmt.Sprintf("bytes[%d]", b.size) }
func (b *BytesImpl) Kind() Kind                          { return KindPod }
func (b *BytesImpl) ElementSize() int                    { return b.size }
func (b *BytesImpl) Alignment() int                      { return 1 }
func (b *BytesImpl) MetadataSize() int                   { return 0 }
func (b *BytesImpl) MemoryManagement() MemoryManagement { return ManagementPod }
func (b *BytesImpl) Flags() Flags                        { return 0 }

func (b *BytesImpl) Equal(other TypeImpl) bool {
	o, ok := other.(*BytesImpl)
	return ok && o.size == b.size
}

func (b *BytesImpl) MetadataDefaultConstruct(buf []byte, ndim int, shape []int64) error { return nil }
func (b *BytesImpl) MetadataCopyConstruct(dst, src []byte)                              {}
func (b *BytesImpl) MetadataDestruct(buf []byte)                                        {}

func (b *BytesImpl) PrintData(metadata, data []byte) string {
	return fmt.Sprintf("% x", data[:b.size])
}

func (b *BytesImpl) AssignFrom(bld *kernel.Builder, dstMeta []byte, src Type, srcMeta []byte, mode AssignErrorMode) (bool, error) {
	o, ok := src.Impl().(*BytesImpl)
	if !ok || o.size != b.size {
		return false, nil
	}
	bld.Append(kernel.MemcpyUnary(b.size))
	return true, nil
}
