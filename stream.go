package dynarray

import (
	"io"
	"strings"
)

// String formats the array via its type's print_data (spec §6 "Streams":
// operator<<(out, array) formats the array via its type's print_data),
// bracketing nested axes the same way internal/dtype's own StridedOfImpl
// and StructImpl render a fixed-length run of elements: "[e0, e1, e2]",
// nested once per remaining axis. Evaluation happens first so a deferred
// expression prints its materialized values, not its operand graph.
func (a *Array) String() string {
	ev, err := a.Eval()
	if err != nil {
		return "<error: " + err.Error() + ">"
	}
	sd, ok := ev.n.(stridedData)
	if !ok {
		return "<unprintable array>"
	}
	data, strides := sd.DataAndStrides()
	var b strings.Builder
	writeArray(&b, data, strides, ev.Shape(), ev.Type())
	return b.String()
}

// Fprint writes a's formatted representation to out (spec §6 operator<<).
func (a *Array) Fprint(out io.Writer) error {
	_, err := io.WriteString(out, a.String())
	return err
}

func writeArray(b *strings.Builder, data []byte, strides, shape []int64, dt Type) {
	if len(shape) == 0 {
		b.WriteString(dt.PrintData(nil, data[:dt.ElementSize()]))
		return
	}
	b.WriteByte('[')
	for i := int64(0); i < shape[0]; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		offset := i * strides[0]
		writeArray(b, data[offset:], strides[1:], shape[1:], dt)
	}
	b.WriteByte(']')
}
