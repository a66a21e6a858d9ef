package gfunc

import (
	"strings"

	"dynarray/internal/dtype"
	"dynarray/internal/dyerr"
)

func paramTypesString(paramtypes []dtype.Type) string {
	names := make([]string, len(paramtypes))
	for i, t := range paramtypes {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

func errNoMatchingKernel(name string, paramtypes []dtype.Type) error {
	return dyerr.New(dyerr.TypeMismatch, "gfunc %q: no kernel registered for parameter types (%s)", name, paramTypesString(paramtypes))
}

func errMultidimReduceNotCommutative(ndim int) error {
	return dyerr.New(dyerr.Unsupported, "reduce: multidimensional reduction (ndim=%d) requires a commutative kernel", ndim)
}

func errReduceNeedsRightAssoc() error {
	return dyerr.New(dyerr.InvariantViolation, "reduce: non-commutative kernel has no right-associative kernel")
}

func errRollingRequiresRank1(ndim int) error {
	return dyerr.New(dyerr.Unsupported, "rolling: inner array must be rank 1, got ndim=%d", ndim)
}

func errRollingWindowTooLarge(window int, n int64) error {
	return dyerr.New(dyerr.Unsupported, "rolling: window %d exceeds array length %d", window, n)
}
