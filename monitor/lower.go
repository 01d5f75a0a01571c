package monitor

import (
	"strconv"
	"strings"
)

// Lower converts a serialized predicate name into a RuntimePredicate
// by keyword dispatch. The second return is false when the name names
// an unsupported family (last_*, max_min_diff_*, segment registers,
// eflags, ins_count, selector_val, num_successors) — drop, never an
// error.
func Lower(name string, instr *DecodedInstruction) (RuntimePredicate, bool) {
	parts := strings.Fields(name)

	var function string
	switch len(parts) {
	case 1, 2:
		function = parts[0]
	case 3:
		function = parts[1]
	default:
		return nil, false
	}

	switch {
	case strings.Contains(function, "edge"):
		return lowerEdge(function, parts)
	case strings.Contains(function, "reg_val"):
		return lowerCompare(function, parts, instr)
	case strings.Contains(function, "flag"):
		return lowerFlag(function, name)
	case function == "is_visited":
		return Visited{}, true
	default:
		// ins_count, selector_val, num_successors and anything else:
		// no runtime counterpart, drop.
		return nil, false
	}
}

func lowerEdge(function string, parts []string) (RuntimePredicate, bool) {
	if len(parts) != 3 {
		return nil, false
	}

	var transition EdgeTransition
	switch function {
	case "has_edge_to":
		transition = EdgeTaken
	case "edge_only_taken_to":
		transition = EdgeNotTaken
	default:
		// last_edge_to: unsupported, drop.
		return nil, false
	}

	source, err := parseHexToken(parts[0])
	if err != nil {
		return nil, false
	}
	destination, err := parseHexToken(parts[2])
	if err != nil {
		return nil, false
	}

	return &Edge{Source: source, Transition: transition, Destination: destination}, true
}

func lowerCompare(function string, parts []string, instr *DecodedInstruction) (RuntimePredicate, bool) {
	if len(parts) != 3 {
		return nil, false
	}

	var op CompareOp
	switch function {
	case "min_reg_val_less", "max_reg_val_less":
		op = Less
	case "min_reg_val_greater_or_equal", "max_reg_val_greater_or_equal":
		op = GreaterOrEqual
	default:
		// last_reg_val_*, max_min_diff_reg_val_*: unsupported, drop.
		return nil, false
	}

	value, err := parseHexToken(parts[2])
	if err != nil {
		return nil, false
	}

	dest, ok := lowerDestination(parts[0], instr)
	if !ok {
		return nil, false
	}

	return &Compare{Destination: dest, Op: op, Value: value}, true
}

func lowerDestination(token string, instr *DecodedInstruction) (ValueDestination, bool) {
	switch token {
	case "memory_address":
		if instr.Memory == nil {
			return nil, false
		}
		return &AddressDestination{Mem: *instr.Memory}, true
	case "memory_value":
		if instr.Memory == nil {
			return nil, false
		}
		return &MemoryValueDestination{Mem: *instr.Memory, AccessSizeBits: instr.OperandWidthBits()}, true
	case "cs", "ss", "ds", "es", "fs", "gs", "eflags":
		// segment registers and eflags: unsupported as a Compare
		// destination, drop.
		return nil, false
	default:
		if !isKnownRegisterName(token) {
			return nil, false
		}
		return &RegisterDestination{Name: token}, true
	}
}

func lowerFlag(function, fullName string) (RuntimePredicate, bool) {
	if strings.HasPrefix(function, "last_") {
		return nil, false
	}

	var bit uint
	var ok bool
	switch {
	case strings.HasSuffix(function, "carry_flag_set"):
		bit, ok = 0, true
	case strings.HasSuffix(function, "parity_flag_set"):
		bit, ok = 2, true
	case strings.HasSuffix(function, "adjust_flag_set"):
		bit, ok = 4, true
	case strings.HasSuffix(function, "zero_flag_set"):
		bit, ok = 6, true
	case strings.HasSuffix(function, "sign_flag_set"):
		bit, ok = 7, true
	case strings.HasSuffix(function, "trap_flag_set"):
		bit, ok = 8, true
	case strings.HasSuffix(function, "interrupt_flag_set"):
		bit, ok = 9, true
	case strings.HasSuffix(function, "direction_flag_set"):
		bit, ok = 10, true
	case strings.HasSuffix(function, "overflow_flag_set"):
		bit, ok = 11, true
	}
	if !ok {
		return nil, false
	}

	return &FlagSet{Bit: bit, Name: fullName}, true
}

// parseHexToken parses a "0x..." token, the format both address and
// immediate tokens take in a predicate name.
func parseHexToken(tok string) (uint64, error) {
	return strconv.ParseUint(tok, 0, 64)
}
