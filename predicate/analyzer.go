package predicate

import (
	"github.com/sarchlab/aurora/trace"
)

// DefaultScoreThreshold is the default cutoff above which a predicate
// is considered worth exporting.
const DefaultScoreThreshold = 0.9

// EvaluateBestAt builds every candidate predicate at address, scores
// each with the balanced score, and returns the highest scoring one.
// Ties are broken by evaluation order.
func EvaluateBestAt(address uint64, ctx Context) *Predicate {
	candidates := Build(address, ctx)
	if len(candidates) == 0 {
		return New("empty", address, func(trace.Instruction, uint64, uint64) bool { return false }, 0, 0)
	}

	best := candidates[0]
	for _, p := range candidates {
		p.Score = evaluateBalanced(address, ctx, p)
		if p.Score > best.Score {
			best = p
		}
	}
	return best
}

// evaluateBalanced is the default score(p) = (TPR + TNR) / 2: a
// missing instruction contributes as a false evaluation of p, with no
// reachability credit (unlike the Synthesizer's internal scoring).
func evaluateBalanced(address uint64, ctx Context, p *Predicate) float64 {
	crashes := ctx.Crashes()
	nonCrashes := ctx.NonCrashes()

	var tp float64
	for _, t := range crashes {
		if p.Execute(instrAt(t, address)) {
			tp++
		}
	}
	tp /= float64(len(crashes))

	var tn float64
	for _, t := range nonCrashes {
		if !p.Execute(instrAt(t, address)) {
			tn++
		}
	}
	tn /= float64(len(nonCrashes))

	return (tp + tn) / 2.0
}

func instrAt(t *trace.Trace, address uint64) *trace.Instruction {
	i, ok := t.At(address)
	if !ok {
		return nil
	}
	return &i
}
