package cfg

import (
	"fmt"
	"sort"
	"strings"
)

// Graph is the reconstructed control-flow graph: two lookups,
// address-to-block-exit-address and exit-address-to-block, built from
// the union of edges across every ingested trace.
type Graph struct {
	// exitOf maps any address in the graph to the exit address of its
	// containing block.
	exitOf map[uint64]uint64
	// blocks maps an exit address to its block.
	blocks map[uint64]*BasicBlock
}

// Contains reports whether address belongs to any block in the graph.
func (g *Graph) Contains(address uint64) bool {
	_, ok := g.exitOf[address]
	return ok
}

// BlockContaining returns the block that owns address, if any.
func (g *Graph) BlockContaining(address uint64) (*BasicBlock, bool) {
	exit, ok := g.exitOf[address]
	if !ok {
		return nil, false
	}
	b := g.blocks[exit]
	return b, b != nil
}

// SuccessorsAt returns the successor set for address: non-empty only
// when address is a block exit, matching the CFG Builder's contract
// that successors are owned by terminal addresses.
func (g *Graph) SuccessorsAt(address uint64) map[uint64]struct{} {
	b, ok := g.BlockContaining(address)
	if !ok || b.Tail() != address {
		return nil
	}
	return b.Successors
}

// Heads returns every block whose leading address has no
// predecessors recorded in the graph.
func (g *Graph) Heads() []uint64 {
	var heads []uint64
	for _, b := range g.blocks {
		if len(b.Predecessors) == 0 {
			heads = append(heads, b.Head())
		}
	}
	sort.Slice(heads, func(i, j int) bool { return heads[i] < heads[j] })
	return heads
}

// Leaves returns every block whose terminal address has no
// successors recorded in the graph.
func (g *Graph) Leaves() []uint64 {
	var leaves []uint64
	for exit, b := range g.blocks {
		if len(b.Successors) == 0 {
			leaves = append(leaves, exit)
		}
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i] < leaves[j] })
	return leaves
}

// Blocks returns every block in the graph, in no particular order.
func (g *Graph) Blocks() []*BasicBlock {
	out := make([]*BasicBlock, 0, len(g.blocks))
	for _, b := range g.blocks {
		out = append(out, b)
	}
	return out
}

// DOT renders the graph in Graphviz dot format: one node per block,
// labeled with its address range, one edge per observed successor.
func (g *Graph) DOT() string {
	var sb strings.Builder
	sb.WriteString("digraph cfg {\n")

	exits := make([]uint64, 0, len(g.blocks))
	for exit := range g.blocks {
		exits = append(exits, exit)
	}
	sort.Slice(exits, func(i, j int) bool { return exits[i] < exits[j] })

	for _, exit := range exits {
		b := g.blocks[exit]
		sb.WriteString(fmt.Sprintf("  \"0x%x\" [label=\"%s\"];\n", b.Head(), b))
	}
	for _, exit := range exits {
		b := g.blocks[exit]
		succs := make([]uint64, 0, len(b.Successors))
		for s := range b.Successors {
			succs = append(succs, s)
		}
		sort.Slice(succs, func(i, j int) bool { return succs[i] < succs[j] })
		for _, s := range succs {
			sb.WriteString(fmt.Sprintf("  \"0x%x\" -> \"0x%x\";\n", b.Head(), s))
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
