// Package monitor re-executes a target binary under a ptrace-driven
// debugger, places software breakpoints at candidate addresses,
// single-steps past each one to capture pre/post register state, and
// evaluates the corresponding predicate against live CPU registers
// and memory reads.
package monitor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// EdgeTransition distinguishes an edge predicate that wants to see a
// specific destination taken from one that wants to see it NOT taken
// (the "only taken to" family).
type EdgeTransition int

const (
	EdgeTaken EdgeTransition = iota
	EdgeNotTaken
)

// CompareOp is the comparator a Compare predicate applies. Only these
// two are reachable: lowering maps every min/max_reg_val_less name to
// Less and every *_greater_or_equal name to GreaterOrEqual; the
// last_* and max_min_diff_* families are unsupported and dropped
// during lowering before a CompareOp is ever chosen.
type CompareOp int

const (
	Less CompareOp = iota
	GreaterOrEqual
)

// EvalContext is the live state a RuntimePredicate evaluates against:
// R0 is the register snapshot saved at the breakpoint strike (before
// the instruction executed), R1 is the snapshot after the
// single-step. ReadWord performs a live ptrace memory read for
// memory-value predicates.
type EvalContext struct {
	R0, R1   unix.PtraceRegs
	ReadWord func(address uint64) (uint64, error)
}

// RuntimePredicate is the lowered, ptrace-evaluable form of a
// predicate.Serialized: one of the four families Lower can produce.
type RuntimePredicate interface {
	Evaluate(ctx EvalContext) (bool, error)
	fmt.Stringer
}

// Visited always fires: the runtime counterpart of "is_visited",
// which is trivially true once the instruction has been decoded and
// a breakpoint reached.
type Visited struct{}

func (Visited) Evaluate(EvalContext) (bool, error) { return true, nil }
func (Visited) String() string                     { return "is_visited" }

// Edge checks a control-flow transition purely from instruction
// pointers: no memory read is involved.
type Edge struct {
	Source      uint64
	Transition  EdgeTransition
	Destination uint64
}

func (e *Edge) Evaluate(ctx EvalContext) (bool, error) {
	if ctx.R0.Rip != e.Source {
		return false, nil
	}
	switch e.Transition {
	case EdgeTaken:
		return ctx.R1.Rip == e.Destination, nil
	case EdgeNotTaken:
		return ctx.R1.Rip != e.Destination, nil
	default:
		return false, nil
	}
}

func (e *Edge) String() string {
	verb := "has_edge_to"
	if e.Transition == EdgeNotTaken {
		verb = "edge_only_taken_to"
	}
	return fmt.Sprintf("0x%x %s 0x%x", e.Source, verb, e.Destination)
}

// FlagSet tests a single eflags bit against the post-step registers.
type FlagSet struct {
	Bit  uint
	Name string
}

func (f *FlagSet) Evaluate(ctx EvalContext) (bool, error) {
	return flagBit(&ctx.R1, f.Bit), nil
}

func (f *FlagSet) String() string { return f.Name }

// Compare tests a value destination (register, memory address, or
// live memory value) against a threshold.
type Compare struct {
	Destination ValueDestination
	Op          CompareOp
	Value       uint64
}

func (c *Compare) Evaluate(ctx EvalContext) (bool, error) {
	value, err := c.Destination.resolve(ctx)
	if err != nil {
		return false, err
	}

	switch c.Op {
	case Less:
		return value < c.Value, nil
	case GreaterOrEqual:
		return value >= c.Value, nil
	default:
		return false, nil
	}
}

func (c *Compare) String() string {
	op := "<"
	if c.Op == GreaterOrEqual {
		op = ">="
	}
	return fmt.Sprintf("%s %s 0x%x", c.Destination, op, c.Value)
}
