// Package predicate implements the Predicate Library, Builder,
// Synthesizer and Analyzer: the static, trace-side half of the
// analysis, which enumerates and scores candidate boolean classifiers
// per address without ever touching a live process.
package predicate

import (
	"fmt"

	"github.com/sarchlab/aurora/trace"
)

// libraryFunc is the shape every Predicate Library member has: an
// instruction summary and up to two bound parameters (register index,
// immediate/threshold), never more.
type libraryFunc func(instr trace.Instruction, p1, p2 uint64) bool

// Predicate is a named, address-bound boolean function drawn from the
// Predicate Library, with its discriminative score once evaluated.
type Predicate struct {
	Name    string
	Address uint64
	Score   float64

	p1, p2 uint64
	fn     libraryFunc
}

// New binds a library function with its name, address and up to two
// parameters.
func New(name string, address uint64, fn libraryFunc, p1, p2 uint64) *Predicate {
	return &Predicate{Name: name, Address: address, fn: fn, p1: p1, p2: p2}
}

// Execute evaluates the predicate against an instruction summary.
// A nil summary (the address was not observed in this trace) yields
// false unconditionally, matching the Predicate Library's contract.
func (p *Predicate) Execute(instr *trace.Instruction) bool {
	if instr == nil {
		return false
	}
	return p.fn(*instr, p.p1, p.p2)
}

// String renders the predicate the way serialized output and debug
// dumps reference it.
func (p *Predicate) String() string {
	return fmt.Sprintf("0x%018x -- %s -- %v", p.Address, p.Name, p.Score)
}

// Serialized is the export shape: only name, address and score
// survive serialization. The monitor re-derives a runtime predicate
// from the name, not from the function pointer.
type Serialized struct {
	Name    string  `json:"name"`
	Address uint64  `json:"address"`
	Score   float64 `json:"score"`
}

// Serialize drops everything but the exported fields.
func (p *Predicate) Serialize() Serialized {
	return Serialized{Name: p.Name, Address: p.Address, Score: p.Score}
}
