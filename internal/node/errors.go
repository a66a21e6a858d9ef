package node

import "dynarray/internal/dyerr"

func errRankMismatch(idxNdim, nodeNdim int) error {
	return dyerr.New(dyerr.InvariantViolation, "linear index has rank %d, node has rank %d", idxNdim, nodeNdim)
}

func errNoOperand(i, nop int) error {
	return dyerr.New(dyerr.InvariantViolation, "operand index %d out of range for node with %d operands", i, nop)
}
