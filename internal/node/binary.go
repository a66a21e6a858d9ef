package node

import (
	"dynarray/internal/dtype"
	"dynarray/internal/kernel"
)

// ElementwiseBinaryKernelNode represents a deferred elementwise nop()->2
// transformation of two operands (spec §4.5,
// elementwise_binary_kernel_node_type). Both operands are assumed already
// broadcast to a common shape by whatever constructed the node — gfunc
// dispatch resolves broadcasting before building this node (spec §4.6), not
// this type itself.
type ElementwiseBinaryKernelNode struct {
	refcount

	left, right Node
	dt          dtype.Type
	op          kernel.Binary
}

// NewElementwiseBinaryKernel wraps (left, right) with a binary op producing
// values of dt. left and right must already share a shape.
func NewElementwiseBinaryKernel(left, right Node, dt dtype.Type, op kernel.Binary) *ElementwiseBinaryKernelNode {
	left.Retain()
	right.Retain()
	n := &ElementwiseBinaryKernelNode{left: left, right: right, dt: dt, op: op}
	n.init()
	return n
}

func (n *ElementwiseBinaryKernelNode) Category() Category       { return CategoryElementwise }
func (n *ElementwiseBinaryKernelNode) NodeType() NodeType       { return TypeElementwiseBinaryKernel }
func (n *ElementwiseBinaryKernelNode) DType() dtype.Type        { return n.dt }
func (n *ElementwiseBinaryKernelNode) AccessFlags() AccessFlags { return AccessRead | AccessImmutable }
func (n *ElementwiseBinaryKernelNode) Nop() int                 { return 2 }

// Ndim and Shape follow whichever operand has the larger rank, matching the
// broadcasting convention that a lower-rank operand (typically a scalar,
// ndim 0) is implicitly stretched to the other's shape.
func (n *ElementwiseBinaryKernelNode) Ndim() int {
	if n.left.Ndim() >= n.right.Ndim() {
		return n.left.Ndim()
	}
	return n.right.Ndim()
}

func (n *ElementwiseBinaryKernelNode) Shape() []int64 {
	if n.left.Ndim() >= n.right.Ndim() {
		return n.left.Shape()
	}
	return n.right.Shape()
}

func (n *ElementwiseBinaryKernelNode) Operand(i int) Node {
	switch i {
	case 0:
		return n.left
	case 1:
		return n.right
	default:
		panic(errNoOperand(i, 2))
	}
}

func (n *ElementwiseBinaryKernelNode) AsDtype(dt dtype.Type, mode dtype.AssignErrorMode, allowInPlace bool) (Node, error) {
	if n.dt.Equal(dt) {
		return n, nil
	}
	converted := dtype.MakeConvertMode(dt, n.dt, mode)
	if allowInPlace && n.Unique() {
		n.dt = converted
		return n, nil
	}
	return NewElementwiseBinaryKernel(n.left, n.right, converted, n.op), nil
}

// ApplyLinearIndex descends into both operands. The broadcast axis of
// whichever operand has lower rank is left untouched by construction: a
// rank-0 operand's own ApplyLinearIndex is always a no-op (scalar.go), and
// this package's LinearIndex is only ever built against the node's own
// Ndim(), so the higher-rank operand receives the index unchanged while the
// lower-rank one simply ignores it.
func (n *ElementwiseBinaryKernelNode) ApplyLinearIndex(idx LinearIndex, allowInPlace bool) (Node, error) {
	newLeft, err := n.left.ApplyLinearIndex(idx, allowInPlace)
	if err != nil {
		return nil, err
	}
	newRight, err := n.right.ApplyLinearIndex(idx, allowInPlace)
	if err != nil {
		return nil, err
	}
	if allowInPlace && n.Unique() && newLeft == n.left && newRight == n.right {
		return n, nil
	}
	return NewElementwiseBinaryKernel(newLeft, newRight, n.dt, n.op), nil
}
