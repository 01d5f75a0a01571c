// Package traceanalysis orchestrates the static analysis path: it
// ingests crash and non-crash trace sets, builds the shared CFG,
// checks trace integrity, and drives the Predicate Builder, Synthesizer
// and Analyzer to produce a scored predicate set per address.
package traceanalysis

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/aurora/cfg"
	"github.com/sarchlab/aurora/predicate"
	"github.com/sarchlab/aurora/trace"
)

// Analyzer owns an immutable snapshot of an ingested trace corpus: it
// implements predicate.Context so the Builder/Synthesizer/Analyzer
// can drive scoring directly against it.
type Analyzer struct {
	crashes    []*trace.Trace
	nonCrashes []*trace.Trace
	CFG        *cfg.Graph
	Memory     MemoryAddresses

	Logger *slog.Logger
}

// Config describes how to assemble an Analyzer from trace documents
// on disk. Crash traces whose base filename appears in Blacklist are
// excluded from ingestion.
type Config struct {
	CrashPaths    []string
	NonCrashPaths []string
	Zipped        bool
	Memory        MemoryAddresses
	Blacklist     map[string]bool
	// FilterNonCrashes drops non-crash traces that never visit any
	// address a crash trace also reached.
	FilterNonCrashes bool
}

// New ingests every trace named in config, builds the shared control
// flow graph, and returns an Analyzer ready for scoring. Ingestion of
// independent traces runs in parallel: no trace mutates shared state
// after it is parsed.
func New(config Config, logger *slog.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	crashPaths := config.CrashPaths
	if config.Blacklist != nil {
		crashPaths = filterBlacklist(crashPaths, config.Blacklist)
	}

	crashes, err := loadAll(crashPaths, config.Zipped)
	if err != nil {
		return nil, fmt.Errorf("traceanalysis: loading crashes: %w", err)
	}

	nonCrashes, err := loadAll(config.NonCrashPaths, config.Zipped)
	if err != nil {
		return nil, fmt.Errorf("traceanalysis: loading non-crashes: %w", err)
	}

	if config.FilterNonCrashes {
		nonCrashes = filterNonCrashesByCrashLeaves(crashes, nonCrashes)
	}

	collector := cfg.NewCollector()
	for _, t := range append(append([]*trace.Trace{}, crashes...), nonCrashes...) {
		for addr, instr := range t.Instructions {
			collector.AddInstruction(addr, instr.Successors)
		}
	}

	graph, err := collector.ConstructAuto()
	if err != nil {
		return nil, fmt.Errorf("traceanalysis: building CFG: %w", err)
	}

	a := &Analyzer{
		crashes:    crashes,
		nonCrashes: nonCrashes,
		CFG:         graph,
		Memory:      config.Memory,
		Logger:      logger,
	}
	return a, nil
}

func filterBlacklist(paths []string, blacklist map[string]bool) []string {
	var out []string
	for _, p := range paths {
		if !blacklist[filepath.Base(p)] {
			out = append(out, p)
		}
	}
	return out
}

// filterNonCrashesByCrashLeaves keeps only non-crash traces that
// visit at least one address a crash trace also visited.
func filterNonCrashesByCrashLeaves(crashes, nonCrashes []*trace.Trace) []*trace.Trace {
	crashAddrs := make(map[uint64]struct{})
	for _, t := range crashes {
		for a := range t.Instructions {
			crashAddrs[a] = struct{}{}
		}
	}

	var out []*trace.Trace
	for _, t := range nonCrashes {
		for a := range t.Instructions {
			if _, ok := crashAddrs[a]; ok {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

func loadAll(paths []string, zipped bool) ([]*trace.Trace, error) {
	traces := make([]*trace.Trace, len(paths))
	g := new(errgroup.Group)

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
			var t *trace.Trace
			var err error
			if zipped {
				t, err = trace.LoadZip(name, p)
			} else {
				t, err = trace.Load(name, p)
			}
			if err != nil {
				return err
			}
			traces[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return traces, nil
}

// AddressUnion returns the union of every address observed across
// every ingested trace, crash or non-crash.
func (a *Analyzer) AddressUnion() map[uint64]struct{} {
	out := make(map[uint64]struct{})
	for _, t := range a.crashes {
		for addr := range t.Instructions {
			out[addr] = struct{}{}
		}
	}
	for _, t := range a.nonCrashes {
		for addr := range t.Instructions {
			out[addr] = struct{}{}
		}
	}
	return out
}

// CrashAddressUnion returns the union of addresses observed in any
// crash trace.
func (a *Analyzer) CrashAddressUnion() map[uint64]struct{} {
	out := make(map[uint64]struct{})
	for _, t := range a.crashes {
		for addr := range t.Instructions {
			out[addr] = struct{}{}
		}
	}
	return out
}

// Scores evaluates the best predicate at every address in the
// address union, in parallel, and returns every predicate strictly
// above threshold. Per-address scoring mutates no shared state, so
// addresses can be scored concurrently without locks.
func (a *Analyzer) Scores(threshold float64) []*predicate.Predicate {
	union := a.AddressUnion()
	addrs := make([]uint64, 0, len(union))
	for addr := range union {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	results := make([]*predicate.Predicate, len(addrs))
	g := new(errgroup.Group)
	for i, addr := range addrs {
		i, addr := i, addr
		g.Go(func() error {
			results[i] = predicate.EvaluateBestAt(addr, a)
			return nil
		})
	}
	_ = g.Wait() // EvaluateBestAt never errors

	var out []*predicate.Predicate
	for _, p := range results {
		if p.Score > threshold {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// IterAllTraces visits every ingested trace, crash or non-crash.
func (a *Analyzer) IterAllTraces() []*trace.Trace {
	out := make([]*trace.Trace, 0, len(a.crashes)+len(a.nonCrashes))
	out = append(out, a.crashes...)
	out = append(out, a.nonCrashes...)
	return out
}

// AnyMnemonic satisfies predicate.Context: it returns whichever
// mnemonic was recorded at address, since all traces agree on the
// static instruction text at a given address.
func (a *Analyzer) AnyMnemonic(address uint64) string {
	for _, t := range a.IterAllTraces() {
		if instr, ok := t.At(address); ok {
			return instr.Mnemonic
		}
	}
	return ""
}

// AnyInstructionContainsReg satisfies predicate.Context.
func (a *Analyzer) AnyInstructionContainsReg(address uint64, regIndex int) bool {
	for _, t := range a.IterAllTraces() {
		if instr, ok := t.At(address); ok && instr.HasRegister(regIndex) {
			return true
		}
	}
	return false
}

// CFGSuccessors satisfies predicate.Context.
func (a *Analyzer) CFGSuccessors(address uint64) []uint64 {
	succs := a.CFG.SuccessorsAt(address)
	out := make([]uint64, 0, len(succs))
	for s := range succs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsBlockExit satisfies predicate.Context.
func (a *Analyzer) IsBlockExit(address uint64) bool {
	b, ok := a.CFG.BlockContaining(address)
	return ok && b.Tail() == address
}

// ValuesAt satisfies predicate.Context.
func (a *Analyzer) ValuesAt(address uint64, regIndex int, sel predicate.Selector) []uint64 {
	var out []uint64
	for _, t := range a.IterAllTraces() {
		instr, ok := t.At(address)
		if !ok {
			continue
		}
		v, present := selectorValue(instr, regIndex, sel)
		if present {
			out = append(out, v)
		}
	}
	return out
}

// UniqueValuesAt satisfies predicate.Context.
func (a *Analyzer) UniqueValuesAt(address uint64, regIndex int, sel predicate.Selector) []uint64 {
	seen := make(map[uint64]bool)
	var out []uint64
	for _, v := range a.ValuesAt(address, regIndex, sel) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func selectorValue(instr trace.Instruction, regIndex int, sel predicate.Selector) (uint64, bool) {
	switch sel {
	case predicate.SelectorMin:
		return instr.Min(regIndex)
	case predicate.SelectorMax:
		return instr.Max(regIndex)
	default:
		return 0, false
	}
}

// HeapBounds satisfies predicate.Context.
func (a *Analyzer) HeapBounds() (uint64, uint64) { return a.Memory.HeapStart, a.Memory.HeapEnd }

// StackBounds satisfies predicate.Context.
func (a *Analyzer) StackBounds() (uint64, uint64) { return a.Memory.StackStart, a.Memory.StackEnd }

// Crashes satisfies predicate.Context.
func (a *Analyzer) Crashes() []*trace.Trace { return a.crashes }

// NonCrashes satisfies predicate.Context.
func (a *Analyzer) NonCrashes() []*trace.Trace { return a.nonCrashes }
