package dynarray

import (
	"encoding/binary"
	"testing"

	"github.com/rogpeppe/go-internal/diff"
)

func TestStringFormatsNestedShape(t *testing.T) {
	data := make([]byte, 16)
	for i, v := range []int32{1, 2, 3, 4} {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(v))
	}
	a := FromStrided(data, []int64{2, 2}, Int32)
	want := "[[1, 2], [3, 4]]"
	if got := a.String(); got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestStringFormatsScalar(t *testing.T) {
	a := FromScalar[float64](3.5)
	if got, want := a.String(), "3.5"; got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

// TestStringGoldenDiff pins a larger nested print_data rendering against a
// literal golden fixture; on mismatch the failure shows an aligned diff
// instead of two opaque strings side by side.
func TestStringGoldenDiff(t *testing.T) {
	data := make([]byte, 16)
	for i, v := range []int32{10, 20, 30, 40} {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(v))
	}
	a := FromStrided(data, []int64{4}, Int32)
	golden := "[10, 20, 30, 40]"
	got := a.String()
	if got != golden {
		t.Fatalf("print_data mismatch:\n%s", diff.Diff("got", []byte(got), "golden", []byte(golden)))
	}
}
