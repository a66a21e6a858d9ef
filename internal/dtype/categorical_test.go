package dtype

import "testing"

func TestCategoricalRejectsDuplicate(t *testing.T) {
	// spec §8 scenario 2: make_categorical(["foo","bar","foo"]) fails.
	_, err := MakeCategorical([]string{"foo", "bar", "foo"})
	if err == nil {
		t.Fatal("expected duplicate category to error")
	}
}

func TestCategoricalStorageSizing(t *testing.T) {
	// spec §8 scenario 3: 256 categories -> u8, 257..65536 -> u16,
	// >=65537 -> u32, independent of the int32 category index.
	mk := func(n int) BuiltinID {
		cats := make([]string, n)
		for i := range cats {
			cats[i] = string(rune('a')) + itoa(i)
		}
		typ, err := MakeCategorical(cats)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		return typ.Impl().(*CategoricalImpl).storageID
	}

	if got := mk(256); got != Uint8 {
		t.Fatalf("256 categories: expected u8 storage, got %v", got)
	}
	if got := mk(257); got != Uint16 {
		t.Fatalf("257 categories: expected u16 storage, got %v", got)
	}
	if got := mk(65536); got != Uint16 {
		t.Fatalf("65536 categories: expected u16 storage, got %v", got)
	}
	if got := mk(65537); got != Uint32 {
		t.Fatalf("65537 categories: expected u32 storage, got %v", got)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func TestCategoricalRoundTrip(t *testing.T) {
	// spec §8: "every v in C round-trips through encode . decode; any v not
	// in C fails with taxonomied type mismatch."
	typ, err := MakeCategorical([]string{"foo", "bar", "baz"})
	if err != nil {
		t.Fatal(err)
	}
	impl := typ.Impl().(*CategoricalImpl)

	for _, c := range []string{"foo", "bar", "baz"} {
		idx, err := impl.Encode(c)
		if err != nil {
			t.Fatalf("encode %q: %v", c, err)
		}
		if got := impl.Decode(idx); got != c {
			t.Fatalf("round trip: got %q want %q", got, c)
		}
	}

	if _, err := impl.Encode("quux"); err == nil {
		t.Fatal("expected encoding a non-member category to fail")
	}
}

func TestIsLosslessStringCategoricalIsFalseBothWays(t *testing.T) {
	// spec §8 scenario 5.
	catType, err := MakeCategorical([]string{"foo", "bar"})
	if err != nil {
		t.Fatal(err)
	}
	strType := MakeString(UTF8)

	if IsLossless(catType, strType) {
		t.Fatal("expected is_lossless(categorical, string) to be false")
	}
	if IsLossless(strType, catType) {
		t.Fatal("expected is_lossless(string, categorical) to be false")
	}
}
