package predicate_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/aurora/predicate"
	"github.com/sarchlab/aurora/trace"
)

// fakeContext is a hand-built predicate.Context used only by these
// tests; fixed block-exit and successor tables stand in for the CFG,
// just enough to exercise the Builder, Synthesizer and Analyzer
// directly.
type fakeContext struct {
	crashes, nonCrashes  []*trace.Trace
	blockExits           map[uint64]bool
	successors           map[uint64][]uint64
	heapStart, heapEnd   uint64
	stackStart, stackEnd uint64
}

func (f *fakeContext) AnyInstructionContainsReg(address uint64, regIndex int) bool {
	for _, t := range append(append([]*trace.Trace{}, f.crashes...), f.nonCrashes...) {
		if i, ok := t.At(address); ok && i.HasRegister(regIndex) {
			return true
		}
	}
	return false
}

func (f *fakeContext) AnyMnemonic(address uint64) string {
	for _, t := range append(append([]*trace.Trace{}, f.crashes...), f.nonCrashes...) {
		if i, ok := t.At(address); ok {
			return i.Mnemonic
		}
	}
	return ""
}

func (f *fakeContext) CFGSuccessors(address uint64) []uint64 { return f.successors[address] }
func (f *fakeContext) IsBlockExit(address uint64) bool       { return f.blockExits[address] }

func (f *fakeContext) ValuesAt(address uint64, regIndex int, sel predicate.Selector) []uint64 {
	var out []uint64
	for _, t := range append(append([]*trace.Trace{}, f.crashes...), f.nonCrashes...) {
		i, ok := t.At(address)
		if !ok {
			continue
		}
		var v uint64
		var present bool
		switch sel {
		case predicate.SelectorMin:
			v, present = i.Min(regIndex)
		case predicate.SelectorMax:
			v, present = i.Max(regIndex)
		}
		if present {
			out = append(out, v)
		}
	}
	return out
}

func (f *fakeContext) UniqueValuesAt(address uint64, regIndex int, sel predicate.Selector) []uint64 {
	seen := map[uint64]bool{}
	var out []uint64
	for _, v := range f.ValuesAt(address, regIndex, sel) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func (f *fakeContext) HeapBounds() (uint64, uint64)  { return f.heapStart, f.heapEnd }
func (f *fakeContext) StackBounds() (uint64, uint64) { return f.stackStart, f.stackEnd }
func (f *fakeContext) Crashes() []*trace.Trace       { return f.crashes }
func (f *fakeContext) NonCrashes() []*trace.Trace    { return f.nonCrashes }

func traceWithInstr(instrs map[uint64]trace.Instruction) *trace.Trace {
	return &trace.Trace{Instructions: instrs}
}

var _ = Describe("is_visited", func() {
	It("scores 1.0 when it appears in every crash and no non-crash", func() {
		addr := uint64(0x401000)
		crash := traceWithInstr(map[uint64]trace.Instruction{addr: {Address: addr}})
		nonCrash := traceWithInstr(map[uint64]trace.Instruction{})

		ctx := &fakeContext{
			crashes:    []*trace.Trace{crash, crash},
			nonCrashes: []*trace.Trace{nonCrash, nonCrash},
			heapStart:  1, heapEnd: 0, // empty range, nothing looks like heap/stack
		}

		best := predicate.EvaluateBestAt(addr, ctx)
		Expect(best.Score).To(Equal(1.0))
	})
})

var _ = Describe("register threshold predicates", func() {
	It("separates populations with no overlap", func() {
		addr := uint64(0x40110a)
		mkInstr := func(v uint64) trace.Instruction {
			return trace.Instruction{
				Address:      addr,
				RegistersMax: map[int]uint64{0: v},
				RegistersMin: map[int]uint64{0: v},
			}
		}

		crash1 := traceWithInstr(map[uint64]trace.Instruction{addr: mkInstr(0x40)})
		crash2 := traceWithInstr(map[uint64]trace.Instruction{addr: mkInstr(0x41)})
		non1 := traceWithInstr(map[uint64]trace.Instruction{addr: mkInstr(0x10)})
		non2 := traceWithInstr(map[uint64]trace.Instruction{addr: mkInstr(0x11)})

		ctx := &fakeContext{
			crashes:    []*trace.Trace{crash1, crash2},
			nonCrashes: []*trace.Trace{non1, non2},
			heapStart:  1, heapEnd: 0,
		}

		best := predicate.EvaluateBestAt(addr, ctx)
		Expect(best.Score).To(Equal(1.0))
	})
})

var _ = Describe("edge predicates", func() {
	It("scores has_edge_to 1.0 when crashes always take one edge and non-crashes take another", func() {
		addr := uint64(0x40120a)
		crash := traceWithInstr(map[uint64]trace.Instruction{
			addr: {Address: addr, Successors: []uint64{0x401300}},
		})
		nonCrash := traceWithInstr(map[uint64]trace.Instruction{
			addr: {Address: addr, Successors: []uint64{0x401400}},
		})

		ctx := &fakeContext{
			crashes:    []*trace.Trace{crash},
			nonCrashes: []*trace.Trace{nonCrash},
			blockExits: map[uint64]bool{addr: true},
			successors: map[uint64][]uint64{addr: {0x401300, 0x401400}},
			heapStart:  1, heapEnd: 0,
		}

		best := predicate.EvaluateBestAt(addr, ctx)
		Expect(best.Score).To(Equal(1.0))
	})
})

var _ = Describe("flag predicates", func() {
	It("scores min_zero_flag_set 1.0 when ZF is set in crashes only", func() {
		addr := uint64(0x40130a)
		const zf = uint64(1) << trace.FlagZero

		crash := traceWithInstr(map[uint64]trace.Instruction{
			addr: {Address: addr, RegistersMin: map[int]uint64{trace.RegEflags: zf}, RegistersMax: map[int]uint64{trace.RegEflags: zf}},
		})
		nonCrash := traceWithInstr(map[uint64]trace.Instruction{
			addr: {Address: addr, RegistersMin: map[int]uint64{trace.RegEflags: 0}, RegistersMax: map[int]uint64{trace.RegEflags: 0}},
		})

		ctx := &fakeContext{
			crashes:    []*trace.Trace{crash},
			nonCrashes: []*trace.Trace{nonCrash},
			heapStart:  1, heapEnd: 0,
		}

		best := predicate.EvaluateBestAt(addr, ctx)
		Expect(best.Name).To(Equal("min_zero_flag_set"))
		Expect(best.Score).To(Equal(1.0))
	})
})
