package huffman

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestBuildTreeEmpty(t *testing.T) {
	var table FrequencyTable
	if tree := BuildTree(&table); tree != nil {
		t.Fatalf("BuildTree(all zero) = %+v, want nil", tree)
	}
	codes, err := DeriveCodes(nil)
	if err != nil {
		t.Fatalf("DeriveCodes(nil) failed: %v", err)
	}
	for sym, c := range codes {
		if c.Len != 0 {
			t.Fatalf("symbol %d has a code in an empty table", sym)
		}
	}
}

func TestBuildTreeSingleSymbol(t *testing.T) {
	var table FrequencyTable
	table['k'] = 42
	tree := BuildTree(&table)
	if tree == nil {
		t.Fatal("BuildTree returned nil")
	}
	root := tree.Root
	if root.IsLeaf() {
		t.Fatal("root of a single-symbol tree must be internal")
	}
	if !root.Left.IsLeaf() || root.Left.Symbol != 'k' || root.Left.Freq != 42 {
		t.Errorf("left child = %+v, want leaf 'k' with frequency 42", root.Left)
	}
	if !root.Right.IsLeaf() || root.Right.Freq != 0 || !root.Right.synthetic {
		t.Errorf("right child = %+v, want synthetic zero-frequency leaf", root.Right)
	}

	codes, err := DeriveCodes(tree)
	if err != nil {
		t.Fatalf("DeriveCodes failed: %v", err)
	}
	if c := codes['k']; c.Len != 1 || c.Bits != 0 {
		t.Errorf("code for 'k' = %+v, want single 0 bit", c)
	}
	// the synthetic sibling carries symbol 0 but must not claim a code
	if c := codes[0]; c.Len != 0 {
		t.Errorf("synthetic leaf received code %+v", c)
	}
}

func TestBuildTreeStrictlyBinary(t *testing.T) {
	table, err := CountFrequencies(strings.NewReader("mississippi river banks"))
	if err != nil {
		t.Fatalf("CountFrequencies failed: %v", err)
	}
	tree := BuildTree(&table)

	var check func(n *Node)
	check = func(n *Node) {
		if (n.Left == nil) != (n.Right == nil) {
			t.Fatalf("node %+v has exactly one child", n)
		}
		if n.IsLeaf() {
			return
		}
		if n.Freq != n.Left.Freq+n.Right.Freq {
			t.Errorf("internal frequency %d != %d + %d", n.Freq, n.Left.Freq, n.Right.Freq)
		}
		check(n.Left)
		check(n.Right)
	}
	check(tree.Root)

	if tree.Root.Freq != table.Total() {
		t.Errorf("root frequency = %d, want %d", tree.Root.Freq, table.Total())
	}
}

func TestBuildTreeDeterministic(t *testing.T) {
	// equal frequencies everywhere exercise heap tie-breaking
	var table FrequencyTable
	for sym := 0; sym < Symbols; sym += 3 {
		table[sym] = 5
	}
	first, err := DeriveCodes(BuildTree(&table))
	if err != nil {
		t.Fatalf("DeriveCodes failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := DeriveCodes(BuildTree(&table))
		if err != nil {
			t.Fatalf("DeriveCodes failed: %v", err)
		}
		if again != first {
			t.Fatal("code table differs between builds of the same frequency table")
		}
	}
}

func TestCodesArePrefixFree(t *testing.T) {
	table, err := CountFrequencies(bytes.NewReader([]byte("a prefix code never lets one code start another")))
	if err != nil {
		t.Fatalf("CountFrequencies failed: %v", err)
	}
	codes, err := DeriveCodes(BuildTree(&table))
	if err != nil {
		t.Fatalf("DeriveCodes failed: %v", err)
	}

	for a, ca := range codes {
		if table[a] == 0 {
			if ca.Len != 0 {
				t.Errorf("absent symbol %#02x has code %+v", a, ca)
			}
			continue
		}
		if ca.Len == 0 {
			t.Errorf("present symbol %#02x has no code", a)
			continue
		}
		for b, cb := range codes {
			if a == b || cb.Len == 0 || cb.Len < ca.Len {
				continue
			}
			if cb.Bits>>(cb.Len-ca.Len) == ca.Bits {
				t.Errorf("code of %#02x is a prefix of the code of %#02x", a, b)
			}
		}
	}
}

// fibonacciTable returns n symbols whose counts force a maximally
// skewed tree of depth n-1.
func fibonacciTable(n int) FrequencyTable {
	var table FrequencyTable
	a, b := uint64(1), uint64(2)
	for sym := 0; sym < n; sym++ {
		table[sym] = a
		a, b = b, a+b
	}
	return table
}

func TestSkewedTreeDepth(t *testing.T) {
	table := fibonacciTable(20)
	tree := BuildTree(&table)
	if got := tree.Depth(); got != 19 {
		t.Fatalf("Depth() = %d, want 19", got)
	}
	codes, err := DeriveCodes(tree)
	if err != nil {
		t.Fatalf("DeriveCodes failed: %v", err)
	}
	if codes[0].Len != 19 || codes[19].Len != 1 {
		t.Errorf("code lengths = %d and %d, want 19 and 1", codes[0].Len, codes[19].Len)
	}
}

func TestCodeTooLong(t *testing.T) {
	table := fibonacciTable(70)
	tree := BuildTree(&table)
	if got := tree.Depth(); got != 69 {
		t.Fatalf("Depth() = %d, want 69", got)
	}
	if _, err := DeriveCodes(tree); !errors.Is(err, ErrCodeTooLong) {
		t.Fatalf("DeriveCodes error = %v, want ErrCodeTooLong", err)
	}
	// payload length is computed from depths and is not limited
	if _, err := PayloadSize(&table); err != nil {
		t.Fatalf("PayloadSize failed: %v", err)
	}
}
