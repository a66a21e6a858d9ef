package node

import "dynarray/internal/dtype"

// StridedArrayNode is a leaf node pointing at a simple strided array in
// memory (spec §4.5, strided_array_node_type). It does not own the backing
// bytes: the owner is whatever memory block (or Go slice backing array)
// handed them to it, matching the original's "points at", not "owns",
// relationship between a node and its data.
type StridedArrayNode struct {
	refcount

	data    []byte
	strides []int64
	shape   []int64
	dt      dtype.Type
	flags   AccessFlags
}

// NewStridedArray builds a leaf node over an existing byte buffer. len(data)
// must cover every element the (strides, shape) pair can address.
func NewStridedArray(data []byte, strides, shape []int64, dt dtype.Type, flags AccessFlags) *StridedArrayNode {
	n := &StridedArrayNode{data: data, strides: append([]int64(nil), strides...), shape: append([]int64(nil), shape...), dt: dt, flags: flags}
	n.init()
	return n
}

func (n *StridedArrayNode) Category() Category       { return CategoryStridedArray }
func (n *StridedArrayNode) NodeType() NodeType       { return TypeStridedArray }
func (n *StridedArrayNode) DType() dtype.Type        { return n.dt }
func (n *StridedArrayNode) Ndim() int                { return len(n.shape) }
func (n *StridedArrayNode) Shape() []int64           { return n.shape }
func (n *StridedArrayNode) AccessFlags() AccessFlags { return n.flags }
func (n *StridedArrayNode) Nop() int                 { return 0 }
func (n *StridedArrayNode) Operand(i int) Node {
	panic("node: StridedArrayNode has no operand nodes")
}

// DataAndStrides exposes the raw buffer and its stride vector for readers
// (and, when n.flags.Writable(), writers) that need direct access rather
// than going through evaluate() — the Go analogue of
// as_read{write,only}_data_and_strides, collapsed into one accessor since Go
// has no const-overload mechanism to distinguish the two.
func (n *StridedArrayNode) DataAndStrides() ([]byte, []int64) {
	return n.data, n.strides
}

func (n *StridedArrayNode) AsDtype(dt dtype.Type, mode dtype.AssignErrorMode, allowInPlace bool) (Node, error) {
	if n.dt.Equal(dt) {
		return n, nil
	}
	converted := dtype.MakeConvertMode(dt, n.dt, mode)
	if allowInPlace && n.Unique() {
		n.dt = converted
		return n, nil
	}
	return NewStridedArray(n.data, n.strides, n.shape, converted, n.flags), nil
}

func (n *StridedArrayNode) ApplyLinearIndex(idx LinearIndex, allowInPlace bool) (Node, error) {
	if idx.Ndim() != n.Ndim() {
		return nil, errRankMismatch(idx.Ndim(), n.Ndim())
	}

	var offset int64
	newStrides := make([]int64, 0, n.Ndim())
	for i := 0; i < n.Ndim(); i++ {
		offset += idx.Start[i] * n.strides[i]
		if idx.RemoveAxis[i] {
			continue
		}
		newStrides = append(newStrides, n.strides[i]*idx.Strides[i])
	}
	newShape := idx.outShape()
	newData := n.data[offset:]

	if allowInPlace && n.Unique() {
		n.data, n.strides, n.shape = newData, newStrides, newShape
		return n, nil
	}
	return NewStridedArray(newData, newStrides, newShape, n.dt, n.flags), nil
}
