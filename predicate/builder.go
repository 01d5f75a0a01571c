package predicate

import (
	"fmt"
	"strings"

	"github.com/sarchlab/aurora/trace"
)

// thresholds are the fixed power-of-two-minus-one constants the
// Builder emits register-max/min "< v" predicates for, independent of
// the Synthesizer's data-driven thresholds.
var thresholds = [...]uint64{0xff, 0xffff, 0xffffffff, 0xffffffffffffffff}

// Build enumerates every candidate predicate at address: an
// always-present is_visited, register-threshold predicates unless the
// mnemonic is exempt, CFG-shaped predicates at block exits, and flag
// predicates when any trace recorded eflags at address.
func Build(address uint64, ctx Context) []*Predicate {
	var out []*Predicate
	out = append(out, genVisited(address))

	skip := skipRegisterMnemonic(ctx.AnyMnemonic(address))
	if !skip {
		out = append(out, Synthesize(address, ctx)...)
		out = append(out, genRegisterPredicates(address, ctx)...)
	}

	out = append(out, genCFGPredicates(address, ctx)...)

	if ctx.AnyInstructionContainsReg(address, trace.RegEflags) {
		out = append(out, genFlagPredicates(address)...)
	}

	return out
}

func genVisited(address uint64) *Predicate {
	return New("is_visited", address, isVisited, 0, 0)
}

func genFlagPredicates(address uint64) []*Predicate {
	out := make([]*Predicate, 0, len(trace.FlagBits)*2)
	for _, sel := range []Selector{SelectorMin, SelectorMax} {
		prefix := "min"
		if sel == SelectorMax {
			prefix = "max"
		}
		for _, fb := range trace.FlagBits {
			name := fmt.Sprintf("%s_%s_set", prefix, fb.Name)
			out = append(out, New(name, address, isFlagBitSet(sel, uint64(fb.Bit)), 0, 0))
		}
	}
	return out
}

func genCFGPredicates(address uint64, ctx Context) []*Predicate {
	if !ctx.IsBlockExit(address) {
		return nil
	}

	var out []*Predicate
	for _, n := range []uint64{0, 1, 2} {
		out = append(out, New(fmt.Sprintf("num_successors_greater %d", n), address, numSuccessorsGreater, n, 0))
	}
	for _, n := range []uint64{0, 1, 2} {
		out = append(out, New(fmt.Sprintf("num_successors_equal %d", n), address, numSuccessorsEqual, n, 0))
	}
	for _, n := range []uint64{0, 1, 2} {
		out = append(out, New(fmt.Sprintf("num_successors_less %d", n), address, numSuccessorsLess, n, 0))
	}

	for _, to := range ctx.CFGSuccessors(address) {
		name := fmt.Sprintf("0x%x has_edge_to 0x%x", address, to)
		out = append(out, New(name, address, hasEdgeTo, to, 0))
	}
	for _, to := range ctx.CFGSuccessors(address) {
		name := fmt.Sprintf("0x%x edge_only_taken_to 0x%x", address, to)
		out = append(out, New(name, address, edgeOnlyTakenTo, to, 0))
	}
	return out
}

func genRegisterPredicates(address uint64, ctx Context) []*Predicate {
	var out []*Predicate
	for _, v := range thresholds {
		out = append(out, genAllRegValPredicates(address, ctx, SelectorMax, v)...)
	}
	for _, v := range thresholds {
		out = append(out, genAllRegValPredicates(address, ctx, SelectorMin, v)...)
	}
	return out
}

func genAllRegValPredicates(address uint64, ctx Context, sel Selector, value uint64) []*Predicate {
	var out []*Predicate
	for regIndex := range trace.REGISTERS {
		if !eligibleRegister(address, regIndex, ctx) {
			continue
		}
		name := regValName(regIndex, selectorValLessName(sel), value)
		out = append(out, New(name, address, selectorValLess(sel), uint64(regIndex), value))
	}
	return out
}

// eligibleRegister applies the shared skip-list: rsp, eflags and the
// memory-address synthetic register are never candidates for value
// predicates.
func eligibleRegister(address uint64, regIndex int, ctx Context) bool {
	if regIndex == trace.RegRSP || regIndex == trace.RegEflags || regIndex == trace.RegMemoryAddress {
		return false
	}
	return ctx.AnyInstructionContainsReg(address, regIndex)
}

func regValName(regIndex int, predName string, value uint64) string {
	return fmt.Sprintf("%s %s 0x%x", trace.REGISTERS[regIndex], predName, value)
}

// skipRegisterMnemonic mirrors the exemption list: leave instructions,
// xmm operands, rsp references outside memory brackets, and constant
// loads ("mov ..., 0x...") are not worth synthesizing register
// predicates for.
func skipRegisterMnemonic(mnemonic string) bool {
	switch {
	case strings.Contains(mnemonic, "leave"):
		return true
	case strings.Contains(mnemonic, "xmm"):
		return true
	case !strings.Contains(mnemonic, "[") && strings.Contains(mnemonic, "rsp"):
		return true
	case strings.Contains(mnemonic, "mov") && strings.Contains(mnemonic, ", 0x"):
		return true
	default:
		return false
	}
}
