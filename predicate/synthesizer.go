package predicate

import (
	"math"
	"sort"

	"github.com/sarchlab/aurora/trace"
)

// Synthesize discovers data-driven threshold predicates for every
// eligible register at address: mid-gap constants placed between the
// best- and worst-splitting observed values.
func Synthesize(address uint64, ctx Context) []*Predicate {
	var out []*Predicate
	out = append(out, registerConstantPredicates(address, ctx, SelectorMax)...)
	out = append(out, registerConstantPredicates(address, ctx, SelectorMin)...)
	return out
}

func registerConstantPredicates(address uint64, ctx Context, sel Selector) []*Predicate {
	var out []*Predicate
	heapStart, heapEnd := ctx.HeapBounds()
	stackStart, stackEnd := ctx.StackBounds()

	for regIndex := range trace.REGISTERS {
		if !eligibleRegister(address, regIndex, ctx) {
			continue
		}

		values := ctx.ValuesAt(address, regIndex, sel)
		if allInRange(values, heapStart, heapEnd) {
			continue
		}
		if allInRange(values, stackStart, stackEnd) {
			continue
		}

		out = append(out, synthesizeConstantPredicates(address, ctx, sel, regIndex)...)
	}
	return out
}

// allInRange reports whether every value lies within [start, end]; an
// empty slice is vacuously true.
func allInRange(values []uint64, start, end uint64) bool {
	for _, v := range values {
		if v < start || v > end {
			return false
		}
	}
	return true
}

func synthesizeConstantPredicates(address uint64, ctx Context, sel Selector, regIndex int) []*Predicate {
	values := ctx.UniqueValuesAt(address, regIndex, sel)
	if len(values) == 0 {
		return nil
	}

	type scored struct {
		v uint64
		f float64
	}
	scoredVals := make([]scored, len(values))
	for i, v := range values {
		name := regValName(regIndex, selectorValLessName(sel), v)
		p := New(name, address, selectorValLess(sel), uint64(regIndex), v)
		scoredVals[i] = scored{v, evaluatePredicateWithReachability(address, ctx, p)}
	}
	sort.Slice(scoredVals, func(i, j int) bool { return scoredVals[i].f < scoredVals[j].f })

	vLow := scoredVals[0].v
	vHigh := scoredVals[len(scoredVals)-1].v

	tGE := arithmeticMean(vLow, values)
	tLT := arithmeticMean(vHigh, values)

	name1 := regValName(regIndex, selectorValGreaterOrEqualName(sel), tGE)
	name2 := regValName(regIndex, selectorValLessName(sel), tLT)

	return []*Predicate{
		New(name1, address, selectorValGreaterOrEqual(sel), uint64(regIndex), tGE),
		New(name2, address, selectorValLess(sel), uint64(regIndex), tLT),
	}
}

// arithmeticMean is the mid-gap threshold: the mean of v1 and the
// largest observed value strictly less than v1, or v1 itself if none
// exists.
func arithmeticMean(v1 uint64, values []uint64) uint64 {
	var best uint64
	found := false
	for _, v := range values {
		if v < v1 && (!found || v > best) {
			best = v
			found = true
		}
	}
	if !found {
		return v1
	}
	return uint64(math.Round((float64(v1) + float64(best)) / 2.0))
}

// evaluatePredicateWithReachability is the Synthesizer's scoring
// function f(v): unlike the plain Analyzer score, TNR here also
// credits non-crash traces where the address is absent.
func evaluatePredicateWithReachability(address uint64, ctx Context, p *Predicate) float64 {
	crashes := ctx.Crashes()
	nonCrashes := ctx.NonCrashes()

	var truePositive float64
	for _, t := range crashes {
		if instr, ok := t.At(address); ok && p.Execute(&instr) {
			truePositive++
		}
	}
	truePositive /= float64(len(crashes))

	var truePresent, trueAbsent float64
	for _, t := range nonCrashes {
		instr, ok := t.At(address)
		if !ok {
			trueAbsent++
			continue
		}
		if !p.Execute(&instr) {
			truePresent++
		}
	}
	trueNegative := (truePresent + trueAbsent) / float64(len(nonCrashes))

	return (truePositive + trueNegative) / 2.0
}
