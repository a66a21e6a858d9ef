package dtype

import (
	"encoding/binary"
	"time"

	"github.com/golang-sql/civil"
	strftime "github.com/ncruces/go-strftime"

	"dynarray/internal/kernel"
)

// DatetimeImpl is the datetime composite type: each value is stored as a
// fixed-width int64 count of microseconds since the Unix epoch, formatted
// through golang-sql/civil + ncruces/go-strftime (spec SPEC_FULL.md domain
// stack). The string->datetime *parser* is named out of scope by spec §1
// ("the date/time text parser" is listed as an external collaborator), so
// this type only supports construction from ticks and formatting to text,
// not parsing text into a value.
type DatetimeImpl struct {
	layout string // strftime-style layout, e.g. "%Y-%m-%d %H:%M:%S"
}

// MakeDatetime builds a datetime type that formats with the given
// strftime-style layout.
func MakeDatetime(layout string) Type {
	if layout == "" {
		layout = "%Y-%m-%d %H:%M:%S"
	}
	return Composite(&DatetimeImpl{layout: layout})
}

func (d *DatetimeImpl) String() string             { return "datetime[" + d.layout + "]" }
func (d *DatetimeImpl) Kind() Kind                 { return KindPod }
func (d *DatetimeImpl) ElementSize() int           { return 8 }
func (d *DatetimeImpl) Alignment() int             { return 8 }
func (d *DatetimeImpl) MetadataSize() int          { return 0 }
func (d *DatetimeImpl) MemoryManagement() MemoryManagement { return ManagementPod }
func (d *DatetimeImpl) Flags() Flags               { return 0 }

func (d *DatetimeImpl) Equal(other TypeImpl) bool {
	o, ok := other.(*DatetimeImpl)
	return ok && o.layout == d.layout
}

func (d *DatetimeImpl) MetadataDefaultConstruct(buf []byte, ndim int, shape []int64) error { return nil }
func (d *DatetimeImpl) MetadataCopyConstruct(dst, src []byte)                              {}
func (d *DatetimeImpl) MetadataDestruct(buf []byte)                                        {}

// ToCivil converts stored microseconds-since-epoch data into a civil
// DateTime for formatting or programmatic access.
func (d *DatetimeImpl) ToCivil(data []byte) civil.DateTime {
	micros := int64(binary.LittleEndian.Uint64(data))
	t := time.UnixMicro(micros).UTC()
	return civil.DateTimeOf(t)
}

// PutCivil encodes a civil DateTime as microseconds-since-epoch into data.
func (d *DatetimeImpl) PutCivil(data []byte, dt civil.DateTime) {
	t := dt.In(time.UTC)
	binary.LittleEndian.PutUint64(data, uint64(t.UnixMicro()))
}

func (d *DatetimeImpl) PrintData(metadata, data []byte) string {
	t := d.ToCivil(data).In(time.UTC)
	return strftime.Format(d.layout, t)
}

func (d *DatetimeImpl) AssignFrom(b *kernel.Builder, dstMeta []byte, src Type, srcMeta []byte, mode AssignErrorMode) (bool, error) {
	if o, ok := src.Impl().(*DatetimeImpl); ok && o.layout == d.layout {
		b.Append(kernel.MemcpyUnary(8))
		return true, nil
	}
	if src.IsBuiltin() && src.BuiltinID() == Int64 {
		// ticks (microseconds since epoch) assigned directly, used by
		// construction helpers that don't go through civil.DateTime at all.
		b.Append(kernel.MemcpyUnary(8))
		return true, nil
	}
	return false, nil
}
