package huffman

import "fmt"

// MaxCodeLen is the longest code a Code can hold
const MaxCodeLen = 64

// Code is the bit pattern assigned to one symbol. The pattern occupies
// the low Len bits of Bits and is emitted most significant bit first.
// Len is zero for symbols that do not occur.
type Code struct {
	Bits uint64
	Len  uint8
}

// CodeTable maps every byte value to its code
type CodeTable [Symbols]Code

// DeriveCodes walks the tree depth first, appending 0 when descending
// left and 1 when descending right, and records the path of every leaf.
// The synthetic leaf of a single-symbol tree gets no code.
//
// Codes longer than MaxCodeLen are rejected with ErrCodeTooLong. That
// depth needs a Fibonacci-shaped distribution over more than 10^13
// input bytes.
func DeriveCodes(t *Tree) (CodeTable, error) {
	var codes CodeTable
	if t == nil {
		return codes, nil
	}

	type frame struct {
		node *Node
		bits uint64
		len  int
	}
	stack := []frame{{node: t.Root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.node.IsLeaf() {
			if f.node.synthetic {
				continue
			}
			if f.len > MaxCodeLen {
				return codes, fmt.Errorf("symbol %#02x needs %d bits: %w", f.node.Symbol, f.len, ErrCodeTooLong)
			}
			codes[f.node.Symbol] = Code{Bits: f.bits, Len: uint8(f.len)}
			continue
		}
		stack = append(stack,
			frame{f.node.Right, f.bits<<1 | 1, f.len + 1},
			frame{f.node.Left, f.bits << 1, f.len + 1},
		)
	}
	return codes, nil
}
