package irange

import "dynarray/internal/dyerr"

func errNegativeIndex(idx int64) error {
	return dyerr.New(dyerr.Unsupported, "negative indices are undefined in this core, got %d", idx)
}

func errOutOfRange(idx, size int64) error {
	return dyerr.New(dyerr.TypeMismatch, "index %d out of range for axis of size %d", idx, size)
}
