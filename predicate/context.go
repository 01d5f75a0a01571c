package predicate

import "github.com/sarchlab/aurora/trace"

// Context is the view of the ingested trace corpus the Builder,
// Synthesizer and Analyzer need. traceanalysis.Analyzer implements
// this; it is declared here, at the point of use, so this package
// never imports traceanalysis.
type Context interface {
	// AnyInstructionContainsReg reports whether any trace (crash or
	// non-crash) recorded register index at address.
	AnyInstructionContainsReg(address uint64, regIndex int) bool

	// AnyMnemonic returns some mnemonic observed at address, for the
	// skip_register_mnemonic check; "" if address was never observed.
	AnyMnemonic(address uint64) string

	// CFGSuccessors returns the successor set of a block-exit address,
	// empty when address is not a block exit.
	CFGSuccessors(address uint64) []uint64

	// IsBlockExit reports whether address is a CFG block exit.
	IsBlockExit(address uint64) bool

	// ValuesAt collects observed values of regIndex under selector at
	// address across both crash and non-crash traces, duplicates
	// included.
	ValuesAt(address uint64, regIndex int, selector Selector) []uint64

	// UniqueValuesAt is ValuesAt with duplicates removed.
	UniqueValuesAt(address uint64, regIndex int, selector Selector) []uint64

	// HeapBounds and StackBounds give the memory boundaries used to
	// skip synthesizing constants for pointer-valued registers.
	HeapBounds() (start, end uint64)
	StackBounds() (start, end uint64)

	// Crashes and NonCrashes expose the raw trace sets for scoring.
	Crashes() []*trace.Trace
	NonCrashes() []*trace.Trace
}
