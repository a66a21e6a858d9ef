package node

import (
	"dynarray/internal/dtype"
	"dynarray/internal/kernel"
)

// ElementwiseUnaryKernelNode represents a deferred elementwise nop()->1
// transformation of a single operand (spec §4.5,
// elementwise_unary_kernel_node_type). The kernel itself is supplied by
// whatever built the node (a gfunc dispatch, a convert/view dtype's
// storage<->value link, ...); this type only threads it through the graph.
type ElementwiseUnaryKernelNode struct {
	refcount

	operand Node
	dt      dtype.Type
	op      kernel.Unary
}

// NewElementwiseUnaryKernel wraps operand with a unary op producing values
// of dt. The node retains operand (Retain) since it is now a second owner.
func NewElementwiseUnaryKernel(operand Node, dt dtype.Type, op kernel.Unary) *ElementwiseUnaryKernelNode {
	operand.Retain()
	n := &ElementwiseUnaryKernelNode{operand: operand, dt: dt, op: op}
	n.init()
	return n
}

func (n *ElementwiseUnaryKernelNode) Category() Category      { return CategoryElementwise }
func (n *ElementwiseUnaryKernelNode) NodeType() NodeType      { return TypeElementwiseUnaryKernel }
func (n *ElementwiseUnaryKernelNode) DType() dtype.Type       { return n.dt }
func (n *ElementwiseUnaryKernelNode) Ndim() int               { return n.operand.Ndim() }
func (n *ElementwiseUnaryKernelNode) Shape() []int64          { return n.operand.Shape() }
func (n *ElementwiseUnaryKernelNode) AccessFlags() AccessFlags { return AccessRead | AccessImmutable }
func (n *ElementwiseUnaryKernelNode) Nop() int                 { return 1 }

func (n *ElementwiseUnaryKernelNode) Operand(i int) Node {
	if i != 0 {
		panic(errNoOperand(i, 1))
	}
	return n.operand
}

func (n *ElementwiseUnaryKernelNode) AsDtype(dt dtype.Type, mode dtype.AssignErrorMode, allowInPlace bool) (Node, error) {
	if n.dt.Equal(dt) {
		return n, nil
	}
	converted := dtype.MakeConvertMode(dt, n.dt, mode)
	if allowInPlace && n.Unique() {
		n.dt = converted
		return n, nil
	}
	return NewElementwiseUnaryKernel(n.operand, converted, n.op), nil
}

// ApplyLinearIndex descends into the operand, per spec §4.5 "for a kernel
// node it descends into each operand"; an elementwise node's own shape
// always mirrors its operand's, so the wrapper needs no index bookkeeping
// of its own.
func (n *ElementwiseUnaryKernelNode) ApplyLinearIndex(idx LinearIndex, allowInPlace bool) (Node, error) {
	newOperand, err := n.operand.ApplyLinearIndex(idx, allowInPlace)
	if err != nil {
		return nil, err
	}
	if allowInPlace && n.Unique() && newOperand == n.operand {
		return n, nil
	}
	return NewElementwiseUnaryKernel(newOperand, n.dt, n.op), nil
}
