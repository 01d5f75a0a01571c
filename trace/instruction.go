package trace

import (
	"fmt"
	"sort"
	"strings"
)

// Instruction is the per-address aggregate recorded by a trace: the
// observed register extrema and the set of control-flow successors
// seen leaving this address.
type Instruction struct {
	Address  uint64
	Mnemonic string

	// RegistersMin and RegistersMax are keyed by register index
	// (see REGISTERS). A register absent from both maps was never
	// observed at this address.
	RegistersMin map[int]uint64
	RegistersMax map[int]uint64

	// Successors holds every distinct destination address observed
	// leaving this instruction, sorted ascending.
	Successors []uint64
}

// HasRegister reports whether register index i was observed at this
// instruction.
func (i *Instruction) HasRegister(index int) bool {
	_, ok := i.RegistersMin[index]
	return ok
}

// Min returns the observed minimum of register index, and whether it
// was observed at all.
func (i *Instruction) Min(index int) (uint64, bool) {
	v, ok := i.RegistersMin[index]
	return v, ok
}

// Max returns the observed maximum of register index, and whether it
// was observed at all.
func (i *Instruction) Max(index int) (uint64, bool) {
	v, ok := i.RegistersMax[index]
	return v, ok
}

// IsBlockExit reports whether this instruction's successor count
// differs from 1, which is one half of the CFG block-termination
// rule; the other half needs predecessor information the Instruction
// alone does not carry.
func (i *Instruction) IsBlockExit() bool {
	return len(i.Successors) != 1
}

// String renders the instruction the way trace dumps and debug
// output reference it: "<addr> <mnemonic>".
func (i *Instruction) String() string {
	return fmt.Sprintf("0x%x %s", i.Address, i.Mnemonic)
}

// IsMemoryWrite reports whether the mnemonic text looks like a
// "mov ..., ..." where the destination is a memory operand, the
// shape trace integrity checks use to require indices 23/24.
func (i *Instruction) IsMemoryWrite() bool {
	m := i.Mnemonic
	return strings.Contains(m, "], ") &&
		strings.Contains(m, "mov") &&
		!strings.Contains(m, "rep")
}

// sortedSuccessors returns a defensively copied, sorted successor
// slice; call sites build Successors incrementally and only sort
// once ingestion of a trace is complete.
func sortedSuccessors(addrs map[uint64]struct{}) []uint64 {
	out := make([]uint64, 0, len(addrs))
	for a := range addrs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
