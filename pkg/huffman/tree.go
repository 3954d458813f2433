package huffman

import (
	"container/heap"
	"math/bits"
)

// Node is a Huffman tree node. A node is either a leaf carrying a
// symbol or an internal node owning exactly two children.
type Node struct {
	Freq   uint64
	Symbol byte
	Left   *Node
	Right  *Node

	// synthetic marks the zero-frequency sibling added when the input
	// holds a single distinct symbol. It never carries data.
	synthetic bool
}

// IsLeaf reports whether n has no children
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Tree is a Huffman prefix-code tree built from one frequency table
type Tree struct {
	Root *Node
}

// nodeHeap is a min-heap of nodes keyed on frequency
type nodeHeap []*Node

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].Freq < h[j].Freq }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) {
	*h = append(*h, x.(*Node))
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}

// BuildTree builds the Huffman tree for table. It returns nil when
// every count is zero.
//
// Leaves enter the heap in ascending symbol order, so equal
// frequencies always resolve the same way and the decoder rebuilds an
// identical tree from the persisted table.
func BuildTree(table *FrequencyTable) *Tree {
	h := make(nodeHeap, 0, Symbols)
	for sym, freq := range table {
		if freq > 0 {
			heap.Push(&h, &Node{Freq: freq, Symbol: byte(sym)})
		}
	}

	switch h.Len() {
	case 0:
		return nil
	case 1:
		only := heap.Pop(&h).(*Node)
		return &Tree{Root: &Node{
			Freq:  only.Freq,
			Left:  only,
			Right: &Node{synthetic: true},
		}}
	}

	for h.Len() > 1 {
		left := heap.Pop(&h).(*Node)
		right := heap.Pop(&h).(*Node)
		heap.Push(&h, &Node{
			Freq:  left.Freq + right.Freq,
			Left:  left,
			Right: right,
		})
	}
	return &Tree{Root: heap.Pop(&h).(*Node)}
}

// Depth returns the length of the longest root-to-leaf path
func (t *Tree) Depth() int {
	if t == nil {
		return 0
	}
	deepest := 0
	t.walkLeaves(func(_ *Node, depth int) {
		if depth > deepest {
			deepest = depth
		}
	})
	return deepest
}

// EncodedBits returns the exact number of bits the bitstream for the
// table this tree was built from occupies. ok is false if the count
// does not fit in 64 bits.
func (t *Tree) EncodedBits() (total uint64, ok bool) {
	if t == nil {
		return 0, true
	}
	ok = true
	t.walkLeaves(func(leaf *Node, depth int) {
		hi, lo := bits.Mul64(leaf.Freq, uint64(depth))
		var carry uint64
		total, carry = bits.Add64(total, lo, 0)
		if hi != 0 || carry != 0 {
			ok = false
		}
	})
	return total, ok
}

// walkLeaves visits every leaf with its depth. It keeps its own stack
// since a skewed tree can be up to 255 levels deep.
func (t *Tree) walkLeaves(visit func(leaf *Node, depth int)) {
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{t.Root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node.IsLeaf() {
			visit(f.node, f.depth)
			continue
		}
		stack = append(stack, frame{f.node.Right, f.depth + 1}, frame{f.node.Left, f.depth + 1})
	}
}
