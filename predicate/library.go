package predicate

import "github.com/sarchlab/aurora/trace"

// Selector chooses which view of a register summary a predicate
// consumes.
type Selector int

const (
	SelectorMin Selector = iota
	SelectorMax
	SelectorMaxMinDiff
)

func isVisited(trace.Instruction, uint64, uint64) bool { return true }

func minRegValLess(i trace.Instruction, reg, v uint64) bool {
	val, ok := i.Min(int(reg))
	return ok && val < v
}

func maxRegValLess(i trace.Instruction, reg, v uint64) bool {
	val, ok := i.Max(int(reg))
	return ok && val < v
}

func maxMinDiffRegValLess(i trace.Instruction, reg, v uint64) bool {
	max, okMax := i.Max(int(reg))
	min, okMin := i.Min(int(reg))
	return okMax && okMin && max-min < v
}

func minRegValGreaterOrEqual(i trace.Instruction, reg, v uint64) bool {
	val, ok := i.Min(int(reg))
	return ok && val >= v
}

func maxRegValGreaterOrEqual(i trace.Instruction, reg, v uint64) bool {
	val, ok := i.Max(int(reg))
	return ok && val >= v
}

func maxMinDiffRegValGreaterOrEqual(i trace.Instruction, reg, v uint64) bool {
	max, okMax := i.Max(int(reg))
	min, okMin := i.Min(int(reg))
	return okMax && okMin && max-min >= v
}

// selectorValLess and selectorValGreaterOrEqual resolve a Selector to
// the right register-comparison family member.
func selectorValLess(s Selector) libraryFunc {
	switch s {
	case SelectorMin:
		return minRegValLess
	case SelectorMax:
		return maxRegValLess
	case SelectorMaxMinDiff:
		return maxMinDiffRegValLess
	default:
		panic("predicate: unknown selector")
	}
}

func selectorValGreaterOrEqual(s Selector) libraryFunc {
	switch s {
	case SelectorMin:
		return minRegValGreaterOrEqual
	case SelectorMax:
		return maxRegValGreaterOrEqual
	case SelectorMaxMinDiff:
		return maxMinDiffRegValGreaterOrEqual
	default:
		panic("predicate: unknown selector")
	}
}

func selectorValLessName(s Selector) string {
	switch s {
	case SelectorMin:
		return "min_reg_val_less"
	case SelectorMax:
		return "max_reg_val_less"
	case SelectorMaxMinDiff:
		return "max_min_diff_reg_val_less"
	default:
		panic("predicate: unknown selector")
	}
}

func selectorValGreaterOrEqualName(s Selector) string {
	switch s {
	case SelectorMin:
		return "min_reg_val_greater_or_equal"
	case SelectorMax:
		return "max_reg_val_greater_or_equal"
	case SelectorMaxMinDiff:
		return "max_min_diff_reg_val_greater_or_equal"
	default:
		panic("predicate: unknown selector")
	}
}

func isFlagBitSet(sel Selector, pos uint64) libraryFunc {
	return func(i trace.Instruction, _, _ uint64) bool {
		var reg uint64
		var ok bool
		switch sel {
		case SelectorMin:
			reg, ok = i.Min(trace.RegEflags)
		case SelectorMax:
			reg, ok = i.Max(trace.RegEflags)
		}
		return ok && reg&(1<<pos) != 0
	}
}

func numSuccessorsGreater(i trace.Instruction, n, _ uint64) bool {
	return uint64(len(i.Successors)) > n
}

func numSuccessorsEqual(i trace.Instruction, n, _ uint64) bool {
	return uint64(len(i.Successors)) == n
}

func numSuccessorsLess(i trace.Instruction, n, _ uint64) bool {
	return uint64(len(i.Successors)) < n
}

func hasEdgeTo(i trace.Instruction, address, _ uint64) bool {
	for _, s := range i.Successors {
		if s == address {
			return true
		}
	}
	return false
}

func edgeOnlyTakenTo(i trace.Instruction, address, _ uint64) bool {
	return len(i.Successors) == 1 && hasEdgeTo(i, address, 0)
}
