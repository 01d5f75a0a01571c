package monitor

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sys/unix"

	"github.com/sarchlab/aurora/predicate"
)

// maxESRCHRetries bounds the retry loop for the kernel's transient
// ESRCH response.
const maxESRCHRetries = 3

// graceWindow is how long a timed-out inferior is given to exit on
// its own (via SIGTERM) before the monitor sends SIGKILL.
const graceWindow = 10 * time.Second

// Session drives one ptraced inferior through the two-event
// breakpoint/single-step protocol. Ptrace semantics bind the tracer
// to a single thread, so a Session must never be driven from more
// than one goroutine; many Sessions (one per crashing input) may run
// concurrently, one tracer goroutine each.
type Session struct {
	backend ptraceBackend
	pid     int
	logger  *slog.Logger

	candidates map[uint64]*RootCauseCandidate
	breakpoint map[uint64]byte

	// threads tracks every live thread id seen so far; emptied on
	// PTRACE_EVENT_EXIT-less kernels this degenerates to {pid}, which
	// is sufficient for single-threaded targets.
	threads map[int]struct{}
	// pendingStep holds the pre-step register snapshot for a thread
	// that just hit a breakpoint and has a single-step outstanding.
	pendingStep map[int]unix.PtraceRegs

	current    int
	currentReg unix.PtraceRegs

	satisfaction []uint64

	// graceWindow overrides the package-level default; tests shrink it
	// so a fake inferior that never reports exit doesn't stall.
	graceWindow time.Duration
}

// NewSession decodes every candidate address, lowers its predicate,
// and installs breakpoints for whatever survives.
func NewSession(pid int, predicates []predicate.Serialized, logger *slog.Logger) (*Session, error) {
	return newSession(sysBackend{}, pid, predicates, logger)
}

func newSession(backend ptraceBackend, pid int, predicates []predicate.Serialized, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var regs unix.PtraceRegs
	if err := backend.GetRegs(pid, &regs); err != nil {
		return nil, fmt.Errorf("monitor: initial GetRegs: %w", err)
	}

	read := func(addr uint64, out []byte) error { return readMemory(backend, pid, addr, out) }
	candidates := convertCandidates(read, predicates, logger)

	s := &Session{
		backend:     backend,
		pid:         pid,
		logger:      logger,
		candidates:  candidates,
		breakpoint:  make(map[uint64]byte, len(candidates)),
		threads:     map[int]struct{}{pid: {}},
		pendingStep: make(map[int]unix.PtraceRegs),
		current:     pid,
		currentReg:  regs,
		graceWindow: graceWindow,
	}

	for addr := range candidates {
		original, err := insertBreakpoint(backend, pid, addr)
		if err != nil {
			return nil, fmt.Errorf("monitor: insert breakpoint: %w", err)
		}
		s.breakpoint[addr] = original
	}

	s.logger.Debug("breakpoints installed", slog.Int("count", len(s.breakpoint)))
	return s, nil
}

// Run drives the execution protocol until the inferior exits, is
// signaled, no threads remain, or timeout elapses, returning the
// ordered list of addresses whose predicates fired.
func (s *Session) Run(timeout time.Duration) []uint64 {
	start := time.Now()

	for {
		if r0, stepping := s.pendingStep[s.current]; stepping {
			delete(s.pendingStep, s.current)
			s.checkCandidate(r0)
		} else {
			s.maybeArmSingleStep()
		}

		if time.Since(start) >= timeout {
			s.logger.Info("monitor timeout reached", slog.Duration("timeout", timeout))
			s.killWithGrace()
			break
		}

		done, err := s.advance()
		if err != nil {
			s.logger.Warn("inferior gone, stopping monitor", slog.String("err", err.Error()))
			break
		}
		if done {
			break
		}
	}

	return append([]uint64(nil), s.satisfaction...)
}

// maybeArmSingleStep is the breakpoint-strike half of the loop
// invariant: the instruction pointer sits at a candidate address with
// no pending step, so restore the original byte (the int3 is still
// sitting under the instruction pointer), save R0, and request one.
func (s *Session) maybeArmSingleStep() {
	addr := s.currentReg.Rip
	if _, isCandidate := s.candidates[addr]; !isCandidate {
		return
	}

	if original, ok := s.breakpoint[addr]; ok {
		if err := removeBreakpoint(s.backend, s.current, addr, original); err != nil {
			s.logger.Error("failed to restore original byte before single-step",
				slog.Uint64("address", addr), slog.String("err", err.Error()))
		}
	}

	s.logger.Debug("breakpoint hit", slog.Uint64("address", addr))
	s.pendingStep[s.current] = s.currentReg
}

// checkCandidate is the post-single-step half: evaluate the
// predicate using r0 for memory-address computation and the current
// registers for everything else.
func (s *Session) checkCandidate(r0 unix.PtraceRegs) {
	oldRip := r0.Rip
	rcc, ok := s.candidates[oldRip]
	if !ok {
		// The breakpoint may already be gone because an earlier
		// satisfaction removed it; clear any leftover trap byte.
		s.clearBreakpoint(oldRip)
		return
	}

	tid := s.current
	ctx := EvalContext{
		R0: r0,
		R1: s.currentReg,
		ReadWord: func(addr uint64) (uint64, error) {
			return readWord(s.backend, tid, addr)
		},
	}

	satisfied, err := rcc.Predicate.Evaluate(ctx)
	if err != nil {
		s.logger.Warn("memory read failed, treating as unsatisfied this round",
			slog.Uint64("address", oldRip), slog.String("err", err.Error()))
		s.reinsertBreakpoint(oldRip)
		return
	}
	if !satisfied {
		s.logger.Debug("predicate not satisfied", slog.Uint64("address", oldRip))
		s.reinsertBreakpoint(oldRip)
		return
	}

	s.logger.Info("predicate satisfied", slog.Uint64("address", oldRip), slog.String("predicate", rcc.Predicate.String()))
	s.satisfaction = append(s.satisfaction, oldRip)
	delete(s.candidates, oldRip)
	delete(s.breakpoint, oldRip)
}

// reinsertBreakpoint restores the int3 that maybeArmSingleStep lifted
// so an address whose predicate didn't fire this visit still traps on
// a later one (loop bodies, retried code paths).
func (s *Session) reinsertBreakpoint(addr uint64) {
	if _, ok := s.breakpoint[addr]; !ok {
		return
	}
	patched := [1]byte{int3}
	if _, err := s.backend.PokeText(s.current, uintptr(addr), patched[:]); err != nil {
		s.logger.Error("failed to reinsert breakpoint", slog.Uint64("address", addr), slog.String("err", err.Error()))
	}
}

func (s *Session) clearBreakpoint(addr uint64) {
	original, ok := s.breakpoint[addr]
	if !ok {
		return
	}
	if err := removeBreakpoint(s.backend, s.current, addr, original); err != nil {
		s.logger.Error("failed to remove breakpoint", slog.Uint64("address", addr), slog.String("err", err.Error()))
		return
	}
	delete(s.breakpoint, addr)
}

// advance issues the next ptrace request (continue, or single-step
// when any thread has one pending) and waits for the resulting event,
// retrying transient ESRCH up to maxESRCHRetries times. Returns
// done=true once no further progress is possible.
func (s *Session) advance() (done bool, err error) {
	step := len(s.pendingStep) > 0

	for attempt := 0; ; attempt++ {
		if step {
			err = s.backend.SingleStep(s.current)
		} else {
			err = s.backend.Cont(s.current, 0)
		}
		if err == nil || !isESRCH(err) || attempt == maxESRCHRetries {
			break
		}
		s.logger.Debug("ptrace returned ESRCH, retrying", slog.Int("attempt", attempt+1))
	}
	if err != nil {
		return true, err
	}

	wpid, status, err := s.backend.Wait4(s.current)
	if err != nil {
		return true, fmt.Errorf("monitor: wait4: %w", err)
	}

	switch {
	case status.Exited():
		s.logger.Info("inferior exited", slog.Int("pid", wpid), slog.Int("status", status.ExitStatus()))
		delete(s.threads, wpid)
		return len(s.threads) == 0, nil
	case status.Signaled():
		s.logger.Info("inferior signaled", slog.Int("pid", wpid), slog.String("signal", status.Signal().String()))
		delete(s.threads, wpid)
		return len(s.threads) == 0, nil
	}

	var regs unix.PtraceRegs
	if err := s.backend.GetRegs(wpid, &regs); err != nil {
		return true, fmt.Errorf("monitor: GetRegs after stop: %w", err)
	}

	// A trap from an int3 the monitor planted reports rip one byte past
	// the breakpoint address (the CPU already retired the 1-byte
	// instruction); a single-step trap needs no such correction, so
	// only look for the over-run when this stop followed a Cont, never
	// a SingleStep.
	if !step && status.Stopped() && status.StopSignal() == unix.SIGTRAP {
		if _, isBreakpoint := s.breakpoint[regs.Rip-1]; isBreakpoint {
			regs.Rip--
			if err := s.backend.SetRegs(wpid, &regs); err != nil {
				return true, fmt.Errorf("monitor: rewind rip after breakpoint trap: %w", err)
			}
		}
	}

	s.current = wpid
	s.currentReg = regs
	s.threads[wpid] = struct{}{}
	return len(s.threads) == 0, nil
}

// killWithGrace sends SIGTERM and waits up to graceWindow for a
// normal exit before escalating to SIGKILL.
func (s *Session) killWithGrace() {
	_ = unix.Kill(s.pid, unix.SIGTERM)

	deadline := time.Now().Add(s.graceWindow)
	for time.Now().Before(deadline) {
		var status unix.WaitStatus
		wpid, err := unix.Wait4(s.pid, &status, unix.WNOHANG, nil)
		if err == nil && wpid == s.pid && (status.Exited() || status.Signaled()) {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	_ = unix.Kill(s.pid, unix.SIGKILL)
}
