package monitor

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"
	"golang.org/x/sys/unix"
)

// codeReader reads len(out) bytes of the inferior's memory at addr,
// the seam Decode needs without depending on a concrete ptrace
// backend (Session supplies ptracePeek; tests supply a byte slice).
type codeReader func(addr uint64, out []byte) error

// DecodedInstruction is the slice of a decoded instruction the
// monitor needs: the operand width for memory_value masking and the
// last memory operand, for effective-address computation.
type DecodedInstruction struct {
	Address uint64
	Inst    x86asm.Inst
	// Memory is the last memory-typed operand of the instruction, nil
	// if the instruction has none. "Last" follows x86asm's Intel
	// argument order (destination first), so when an instruction has
	// two memory operands the later, source-side one is kept.
	Memory *x86asm.Mem
}

// OperandWidthBits returns the instruction's operand width in bits:
// memory operand size when one is present, otherwise the decoded
// default data size. This is the access size fed, unmodified, into
// maskAccessSize.
func (d *DecodedInstruction) OperandWidthBits() int {
	if d.Inst.MemBytes > 0 {
		return d.Inst.MemBytes * 8
	}
	return d.Inst.DataSize
}

// Decode reads 16 bytes at address via read and decodes the single
// x86-64 long-mode instruction found there.
func Decode(read codeReader, address uint64) (*DecodedInstruction, error) {
	code := make([]byte, 16)
	if err := read(address, code); err != nil {
		return nil, fmt.Errorf("monitor: read code at 0x%x: %w", address, err)
	}

	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return nil, fmt.Errorf("monitor: decode instruction at 0x%x: %w", address, err)
	}

	return &DecodedInstruction{
		Address: address,
		Inst:    inst,
		Memory:  lastMemoryOperand(inst),
	}, nil
}

func lastMemoryOperand(inst x86asm.Inst) *x86asm.Mem {
	var mem *x86asm.Mem
	for _, arg := range inst.Args {
		if arg == nil {
			continue
		}
		if m, ok := arg.(x86asm.Mem); ok {
			mCopy := m
			mem = &mCopy
		}
	}
	return mem
}

// effectiveAddress computes base + index*scale + displacement, with
// displacement signed. Go's uint64(int64) conversion performs the
// two's-complement addition directly, so no explicit sign branch is
// needed.
func effectiveAddress(regs *unix.PtraceRegs, mem x86asm.Mem) uint64 {
	var addr uint64
	if mem.Base != 0 {
		addr += regValue64(regs, mem.Base)
	}
	if mem.Index != 0 && mem.Scale != 0 {
		addr += regValue64(regs, mem.Index) * uint64(mem.Scale)
	}
	addr += uint64(mem.Disp)
	return addr
}

// regValue64 resolves an x86asm base/index register to its 64-bit
// value. Long-mode effective-address computation only ever uses the
// full-width GPRs or rip, so that is all this covers.
func regValue64(regs *unix.PtraceRegs, reg x86asm.Reg) uint64 {
	switch reg {
	case x86asm.RAX:
		return regs.Rax
	case x86asm.RCX:
		return regs.Rcx
	case x86asm.RDX:
		return regs.Rdx
	case x86asm.RBX:
		return regs.Rbx
	case x86asm.RSP:
		return regs.Rsp
	case x86asm.RBP:
		return regs.Rbp
	case x86asm.RSI:
		return regs.Rsi
	case x86asm.RDI:
		return regs.Rdi
	case x86asm.R8:
		return regs.R8
	case x86asm.R9:
		return regs.R9
	case x86asm.R10:
		return regs.R10
	case x86asm.R11:
		return regs.R11
	case x86asm.R12:
		return regs.R12
	case x86asm.R13:
		return regs.R13
	case x86asm.R14:
		return regs.R14
	case x86asm.R15:
		return regs.R15
	case x86asm.RIP:
		return regs.Rip
	default:
		return 0
	}
}
