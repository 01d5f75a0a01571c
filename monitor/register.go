package monitor

import (
	"golang.org/x/sys/unix"

	"github.com/sarchlab/aurora/trace"
)

// registerValue resolves a register name from trace.REGISTERS (the
// fixed name table the predicate builder encodes into predicate
// names) against a live register snapshot. Only the named
// general-purpose registers are reachable here in practice: lowering
// drops segment-register and eflags destinations, and the builder
// never synthesizes rsp or memory-address predicates.
func registerValue(regs *unix.PtraceRegs, name string) (uint64, bool) {
	switch name {
	case "rax":
		return regs.Rax, true
	case "rbx":
		return regs.Rbx, true
	case "rcx":
		return regs.Rcx, true
	case "rdx":
		return regs.Rdx, true
	case "rsi":
		return regs.Rsi, true
	case "rdi":
		return regs.Rdi, true
	case "rbp":
		return regs.Rbp, true
	case "rsp":
		return regs.Rsp, true
	case "r8":
		return regs.R8, true
	case "r9":
		return regs.R9, true
	case "r10":
		return regs.R10, true
	case "r11":
		return regs.R11, true
	case "r12":
		return regs.R12, true
	case "r13":
		return regs.R13, true
	case "r14":
		return regs.R14, true
	case "r15":
		return regs.R15, true
	case "cs":
		return regs.Cs, true
	case "ss":
		return regs.Ss, true
	case "ds":
		return regs.Ds, true
	case "es":
		return regs.Es, true
	case "fs":
		return regs.Fs, true
	case "gs":
		return regs.Gs, true
	case "eflags":
		return regs.Eflags, true
	default:
		return 0, false
	}
}

// flagBit reports whether bit pos of eflags is set, the live
// counterpart of the flag-set family in predicate.Library.
func flagBit(regs *unix.PtraceRegs, pos uint) bool {
	return regs.Eflags&(1<<pos) != 0
}

// isKnownRegisterName lets Lower validate that a destination token
// names a real register before treating it as one.
func isKnownRegisterName(name string) bool {
	_, ok := trace.RegisterIndex(name)
	return ok
}
