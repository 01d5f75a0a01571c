// Package cfg builds and queries the control-flow graph reconstructed
// from the union of edges observed across every trace: one basic
// block at a time, via a depth-first traversal that terminates a
// block whenever control genuinely forks or joins.
package cfg

import (
	"fmt"
	"strings"
)

// BasicBlock is a maximal straight-line run of addresses: no
// instruction inside it (other than the last) forks control flow, and
// no instruction inside it (other than the first) is itself a join
// point of multiple predecessors.
type BasicBlock struct {
	// Body holds every address in the block, in execution order.
	Body []uint64

	// Predecessors is the predecessor address set of the block's
	// leading address.
	Predecessors map[uint64]struct{}

	// Successors is the successor address set of the block's
	// terminal address.
	Successors map[uint64]struct{}
}

// Head returns the block's leading address.
func (b *BasicBlock) Head() uint64 { return b.Body[0] }

// Tail returns the block's terminal address.
func (b *BasicBlock) Tail() uint64 { return b.Body[len(b.Body)-1] }

// Contains reports whether address is part of this block's body.
func (b *BasicBlock) Contains(address uint64) bool {
	for _, a := range b.Body {
		if a == address {
			return true
		}
	}
	return false
}

// String renders a block as its address range, for debug output and
// dot export node labels.
func (b *BasicBlock) String() string {
	var sb strings.Builder
	for i, a := range b.Body {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("0x%x", a))
	}
	return sb.String()
}
