// Package trace holds the data model ingested from crash and non-crash
// execution traces: register summaries, per-address instruction
// aggregates, and the traces themselves.
package trace

// REGISTERS is the fixed index order relied upon throughout the
// analysis pipeline. rsp is index 7, eflags is index 22; indices 23
// and 24 are synthetic slots for the most recently touched memory
// address and memory value, not real architectural registers.
var REGISTERS = [...]string{
	"rax", "rbx", "rcx", "rdx", "rsi", "rdi", "rbp", "rsp",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
	"cs", "ss", "ds", "es", "fs", "gs",
	"eflags",
	"memory_address", "memory_value",
}

const (
	// RegRSP is the fixed index of the stack pointer.
	RegRSP = 7
	// RegEflags is the fixed index of the flags register.
	RegEflags = 22
	// RegMemoryAddress is the synthetic index for the last touched
	// memory address.
	RegMemoryAddress = 23
	// RegMemoryValue is the synthetic index for the last touched
	// memory value.
	RegMemoryValue = 24
)

// RegisterIndex returns the fixed index for a register name, and
// false if the name is not one of the known registers.
func RegisterIndex(name string) (int, bool) {
	for i, n := range REGISTERS {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// flag bit positions within eflags, named per the Predicate Library.
const (
	FlagCarry     = 0
	FlagParity    = 2
	FlagAdjust    = 4
	FlagZero      = 6
	FlagSign      = 7
	FlagTrap      = 8
	FlagInterrupt = 9
	FlagDirection = 10
	FlagOverflow  = 11
)

// FlagBits lists every flag bit the Predicate Library tests, in the
// order predicates are generated for them.
var FlagBits = [...]struct {
	Name string
	Bit  uint
}{
	{"carry_flag", FlagCarry},
	{"parity_flag", FlagParity},
	{"adjust_flag", FlagAdjust},
	{"zero_flag", FlagZero},
	{"sign_flag", FlagSign},
	{"trap_flag", FlagTrap},
	{"interrupt_flag", FlagInterrupt},
	{"direction_flag", FlagDirection},
	{"overflow_flag", FlagOverflow},
}
