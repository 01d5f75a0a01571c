package monitor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// int3 is the x86 software breakpoint opcode.
const int3 = 0xCC

// ptraceBackend is the narrow syscall surface the monitor needs. It
// exists so the single-step protocol is unit-testable against a
// scripted fake instead of a real ptraced process.
//
//go:generate mockgen -destination=mock_ptrace_test.go -package=monitor . ptraceBackend
type ptraceBackend interface {
	GetRegs(pid int, regs *unix.PtraceRegs) error
	SetRegs(pid int, regs *unix.PtraceRegs) error
	PeekText(pid int, addr uintptr, out []byte) (int, error)
	PokeText(pid int, addr uintptr, data []byte) (int, error)
	Cont(pid int, signal int) error
	SingleStep(pid int) error
	Wait4(pid int) (wpid int, status unix.WaitStatus, err error)
}

// sysBackend is the real backend, a thin wrapper over
// golang.org/x/sys/unix's ptrace syscalls.
type sysBackend struct{}

func (sysBackend) GetRegs(pid int, regs *unix.PtraceRegs) error {
	return unix.PtraceGetRegs(pid, regs)
}

func (sysBackend) SetRegs(pid int, regs *unix.PtraceRegs) error {
	return unix.PtraceSetRegs(pid, regs)
}

func (sysBackend) PeekText(pid int, addr uintptr, out []byte) (int, error) {
	return unix.PtracePeekText(pid, addr, out)
}

func (sysBackend) PokeText(pid int, addr uintptr, data []byte) (int, error) {
	return unix.PtracePokeText(pid, addr, data)
}

func (sysBackend) Cont(pid int, signal int) error {
	return unix.PtraceCont(pid, signal)
}

func (sysBackend) SingleStep(pid int) error {
	return unix.PtraceSingleStep(pid)
}

func (sysBackend) Wait4(pid int) (int, unix.WaitStatus, error) {
	var status unix.WaitStatus
	wpid, err := unix.Wait4(pid, &status, 0, nil)
	return wpid, status, err
}

// Spawn starts target under ptrace (PTRACE_TRACEME in the child,
// implicit SIGTRAP stop on exec) and returns its pid, ready for
// NewSession. Stdin is inherited so an input piped to the monitor
// reaches the target; stdout/stderr are inherited so a crashing
// target's own diagnostics still reach the monitor's log.
func Spawn(target string, args []string) (int, error) {
	cmd := exec.Command(target, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Ptrace: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("monitor: spawn %s: %w", target, err)
	}

	var status unix.WaitStatus
	if _, err := unix.Wait4(cmd.Process.Pid, &status, 0, nil); err != nil {
		return 0, fmt.Errorf("monitor: wait for initial stop: %w", err)
	}

	return cmd.Process.Pid, nil
}

// readMemory reads len(out) bytes at addr from pid's address space
// via PTRACE_PEEKTEXT, one machine word (8 bytes) at a time — the
// granularity the kernel enforces for this request.
func readMemory(backend ptraceBackend, pid int, addr uint64, out []byte) error {
	read := 0
	for read < len(out) {
		word := make([]byte, 8)
		n, err := backend.PeekText(pid, uintptr(addr)+uintptr(read), word)
		if err != nil {
			return fmt.Errorf("monitor: peektext at 0x%x: %w", addr+uint64(read), err)
		}
		copy(out[read:], word[:n])
		read += n
		if n == 0 {
			break
		}
	}
	return nil
}

// readWord reads one 8-byte word at addr, the unit memory-value
// predicates compare against before masking.
func readWord(backend ptraceBackend, pid int, addr uint64) (uint64, error) {
	var buf [8]byte
	if err := readMemory(backend, pid, addr, buf[:]); err != nil {
		return 0, err
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v, nil
}

// insertBreakpoint overwrites the byte at addr with 0xCC, returning
// the original byte so it can be restored later.
func insertBreakpoint(backend ptraceBackend, pid int, addr uint64) (byte, error) {
	var original [1]byte
	if _, err := backend.PeekText(pid, uintptr(addr), original[:]); err != nil {
		return 0, fmt.Errorf("monitor: read original byte at 0x%x: %w", addr, err)
	}

	patched := [1]byte{int3}
	if _, err := backend.PokeText(pid, uintptr(addr), patched[:]); err != nil {
		return 0, fmt.Errorf("monitor: insert breakpoint at 0x%x: %w", addr, err)
	}
	return original[0], nil
}

// removeBreakpoint restores the original byte at addr.
func removeBreakpoint(backend ptraceBackend, pid int, addr uint64, original byte) error {
	patched := [1]byte{original}
	if _, err := backend.PokeText(pid, uintptr(addr), patched[:]); err != nil {
		return fmt.Errorf("monitor: remove breakpoint at 0x%x: %w", addr, err)
	}
	return nil
}

// isESRCH reports whether err is the transient "no such process"
// ptrace can return when the debugee isn't ptrace-stopped yet; the
// session retries these before treating them as terminal.
func isESRCH(err error) bool {
	return errors.Is(err, unix.ESRCH)
}
