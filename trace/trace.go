package trace

import "fmt"

// Trace is a labeled, immutable collection of per-address instruction
// summaries collected from one execution of a target binary.
type Trace struct {
	Name         string
	ImageBase    uint64
	FirstAddress uint64
	LastAddress  uint64
	Instructions map[uint64]Instruction
}

// Contains reports whether address was seen in this trace.
func (t *Trace) Contains(address uint64) bool {
	_, ok := t.Instructions[address]
	return ok
}

// At returns the instruction summary recorded at address, if any.
func (t *Trace) At(address uint64) (Instruction, bool) {
	i, ok := t.Instructions[address]
	return i, ok
}

// VisitedAddresses returns every address this trace recorded an
// instruction summary at.
func (t *Trace) VisitedAddresses() map[uint64]struct{} {
	out := make(map[uint64]struct{}, len(t.Instructions))
	for a := range t.Instructions {
		out[a] = struct{}{}
	}
	return out
}

// String renders the trace the way verbose dumps reference it.
func (t *Trace) String() string {
	return fmt.Sprintf("%s (%d instructions, first=0x%x, last=0x%x)",
		t.Name, len(t.Instructions), t.FirstAddress, t.LastAddress)
}

// Vec is an ordered, named collection of traces — a "crashes" set or
// a "non_crashes" set.
type Vec struct {
	Label  string
	Traces []*Trace
}

// Len returns the number of traces in the set.
func (v *Vec) Len() int { return len(v.Traces) }

// VisitedAddressUnion returns the union of addresses visited across
// every trace in the set.
func (v *Vec) VisitedAddressUnion() map[uint64]struct{} {
	out := make(map[uint64]struct{})
	for _, t := range v.Traces {
		for a := range t.Instructions {
			out[a] = struct{}{}
		}
	}
	return out
}

// CountContaining returns how many traces in the set recorded an
// instruction summary at address.
func (v *Vec) CountContaining(address uint64) int {
	n := 0
	for _, t := range v.Traces {
		if t.Contains(address) {
			n++
		}
	}
	return n
}

// ValuesAt collects, for every trace containing address, the observed
// value of register index under selector (Min or Max).
func (v *Vec) ValuesAt(address uint64, index int, selector func(Instruction) (uint64, bool)) []uint64 {
	var out []uint64
	for _, t := range v.Traces {
		instr, ok := t.At(address)
		if !ok {
			continue
		}
		if val, ok := selector(instr); ok {
			out = append(out, val)
		}
	}
	return out
}
