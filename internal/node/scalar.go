package node

import "dynarray/internal/dtype"

// ImmutableScalarNode holds a single scalar element by value (spec §4.5,
// immutable_scalar_node_type). Its rank is always zero: it broadcasts
// against any shape, so indexing and broadcasting never touch its data.
type ImmutableScalarNode struct {
	refcount

	data []byte
	dt   dtype.Type
}

// NewImmutableScalar copies value (len(value) must equal dt.ElementSize())
// into a private buffer the node owns outright.
func NewImmutableScalar(value []byte, dt dtype.Type) *ImmutableScalarNode {
	n := &ImmutableScalarNode{data: append([]byte(nil), value...), dt: dt}
	n.init()
	return n
}

func (n *ImmutableScalarNode) Category() Category      { return CategoryStridedArray }
func (n *ImmutableScalarNode) NodeType() NodeType      { return TypeImmutableScalar }
func (n *ImmutableScalarNode) DType() dtype.Type       { return n.dt }
func (n *ImmutableScalarNode) Ndim() int               { return 0 }
func (n *ImmutableScalarNode) Shape() []int64          { return nil }
func (n *ImmutableScalarNode) AccessFlags() AccessFlags { return AccessRead | AccessImmutable }
func (n *ImmutableScalarNode) Nop() int                 { return 0 }
func (n *ImmutableScalarNode) Operand(i int) Node {
	panic("node: ImmutableScalarNode has no operand nodes")
}

// DataAndStrides satisfies the same reader shape as StridedArrayNode, with
// a nil stride vector since there are no axes to stride over.
func (n *ImmutableScalarNode) DataAndStrides() ([]byte, []int64) {
	return n.data, nil
}

func (n *ImmutableScalarNode) AsDtype(dt dtype.Type, mode dtype.AssignErrorMode, allowInPlace bool) (Node, error) {
	if n.dt.Equal(dt) {
		return n, nil
	}
	converted := dtype.MakeConvertMode(dt, n.dt, mode)
	if allowInPlace && n.Unique() {
		n.dt = converted
		return n, nil
	}
	return NewImmutableScalar(n.data, converted), nil
}

// ApplyLinearIndex is always a no-op: a rank-0 node is broadcastable to any
// shape, so linear_index(broadcast(scalar)) == scalar for every index.
func (n *ImmutableScalarNode) ApplyLinearIndex(idx LinearIndex, allowInPlace bool) (Node, error) {
	return n, nil
}
