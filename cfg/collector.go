package cfg

import "fmt"

// Collector accumulates (src, dst) edges from instruction successor
// lists across every trace, then builds the single Graph shared by
// the whole analysis.
type Collector struct {
	predecessors map[uint64]map[uint64]struct{}
	successors   map[uint64]map[uint64]struct{}
	addresses    map[uint64]struct{}
}

// NewCollector returns an empty Collector ready to accumulate edges.
func NewCollector() *Collector {
	return &Collector{
		predecessors: make(map[uint64]map[uint64]struct{}),
		successors:   make(map[uint64]map[uint64]struct{}),
		addresses:    make(map[uint64]struct{}),
	}
}

// AddInstruction records address and its outgoing successor edges.
func (c *Collector) AddInstruction(address uint64, successors []uint64) {
	c.addresses[address] = struct{}{}
	c.ensure(address)

	for _, s := range successors {
		c.addresses[s] = struct{}{}
		c.ensure(s)
		c.successors[address][s] = struct{}{}
		c.predecessors[s][address] = struct{}{}
	}
}

func (c *Collector) ensure(address uint64) {
	if _, ok := c.successors[address]; !ok {
		c.successors[address] = make(map[uint64]struct{})
	}
	if _, ok := c.predecessors[address]; !ok {
		c.predecessors[address] = make(map[uint64]struct{})
	}
}

// Construct builds the Graph from the accumulated edges via a
// depth-first traversal from the unique head. A block terminates at
// an address whose successor count is not exactly 1, or whose single
// successor has more than one predecessor. Construction asserts
// exactly one head; a non-singular head is a configuration error
// upstream and aborts analysis.
func (c *Collector) Construct(head uint64) (*Graph, error) {
	return c.construct(&head)
}

// ConstructAuto builds the Graph the same way Construct does, but
// infers the head itself instead of validating it against a caller's
// expectation. Used during ingestion, before any trace's reported
// first address has been cross-checked against the graph.
func (c *Collector) ConstructAuto() (*Graph, error) {
	return c.construct(nil)
}

func (c *Collector) construct(expectedHead *uint64) (*Graph, error) {
	heads := c.findHeads()
	if len(heads) != 1 {
		return nil, fmt.Errorf("cfg: expected exactly one head, found %d", len(heads))
	}
	head := heads[0]
	if expectedHead != nil && heads[0] != *expectedHead {
		return nil, fmt.Errorf("cfg: computed head 0x%x does not match expected head 0x%x", heads[0], *expectedHead)
	}

	g := &Graph{
		exitOf: make(map[uint64]uint64, len(c.addresses)),
		blocks: make(map[uint64]*BasicBlock),
	}

	visited := make(map[uint64]struct{}, len(c.addresses))
	var stack []uint64
	stack = append(stack, head)

	for len(stack) > 0 {
		start := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[start]; ok {
			continue
		}

		block := &BasicBlock{
			Predecessors: c.predecessors[start],
		}

		cur := start
		for {
			visited[cur] = struct{}{}
			block.Body = append(block.Body, cur)
			g.exitOf[cur] = 0 // placeholder, fixed below once exit is known

			succs := c.successors[cur]
			if len(succs) != 1 {
				break
			}

			var only uint64
			for s := range succs {
				only = s
			}
			if len(c.predecessors[only]) != 1 {
				break
			}
			if _, ok := visited[only]; ok {
				break
			}
			cur = only
		}

		block.Successors = c.successors[cur]
		exit := cur
		for _, a := range block.Body {
			g.exitOf[a] = exit
		}
		g.blocks[exit] = block

		for s := range block.Successors {
			if _, ok := visited[s]; !ok {
				stack = append(stack, s)
			}
		}
	}

	return g, nil
}

// findHeads returns every address with no recorded predecessors.
func (c *Collector) findHeads() []uint64 {
	var heads []uint64
	for a := range c.addresses {
		if len(c.predecessors[a]) == 0 {
			heads = append(heads, a)
		}
	}
	return heads
}
