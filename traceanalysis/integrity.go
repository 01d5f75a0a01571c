package traceanalysis

import (
	"fmt"

	"github.com/sarchlab/aurora/trace"
)

// Finding is a non-fatal trace integrity observation. Error findings
// indicate a broken invariant; warning findings are
// expected-but-worth-noting conditions (such as divergent crash and
// non-crash CFG leaves).
type Finding struct {
	Severity string // "error" or "warning"
	Message  string
}

// CheckIntegrity runs every trace integrity check and logs each
// finding; analysis continues regardless of what is found.
func (a *Analyzer) CheckIntegrity() []Finding {
	var findings []Finding
	findings = append(findings, a.checkCFGNotEmpty()...)
	findings = append(findings, a.checkCFGHeads()...)
	findings = append(findings, a.checkCFGLeaves()...)
	findings = append(findings, a.checkCFGHeadEqualsFirstInstruction()...)
	findings = append(findings, a.checkCFGAddressesUnique()...)
	findings = append(findings, a.checkInstructionMnemonicNotEmpty()...)
	findings = append(findings, a.checkCompareRegMinMax()...)
	findings = append(findings, a.checkUntrackedMemoryWrite()...)

	for _, f := range findings {
		if f.Severity == "error" {
			a.Logger.Error(f.Message)
		} else {
			a.Logger.Warn(f.Message)
		}
	}
	return findings
}

func (a *Analyzer) checkCFGNotEmpty() []Finding {
	if len(a.CFG.Blocks()) == 0 {
		return []Finding{{"error", "CFG is empty"}}
	}
	return nil
}

func (a *Analyzer) checkCFGHeads() []Finding {
	heads := a.CFG.Heads()
	if len(heads) != 1 {
		return []Finding{{"error", fmt.Sprintf("CFG has %d heads (should have 1)", len(heads))}}
	}
	return nil
}

func (a *Analyzer) checkCFGLeaves() []Finding {
	leaves := a.CFG.Leaves()
	if len(leaves) != 1 {
		return []Finding{{"warning", fmt.Sprintf(
			"CFG has %d leaves (should have 1 leaf unless crash-CFG leaf != CFG leaf)", len(leaves))}}
	}
	return nil
}

func (a *Analyzer) checkCFGHeadEqualsFirstInstruction() []Finding {
	heads := a.CFG.Heads()
	if len(heads) == 0 {
		return nil
	}
	head := heads[0]
	for _, t := range a.IterAllTraces() {
		if head != t.FirstAddress {
			return []Finding{{"error", fmt.Sprintf(
				"CFG head (0x%x) is not equal to first instruction address (0x%x) reported in trace %s",
				head, t.FirstAddress, t.Name)}}
		}
	}
	return nil
}

func (a *Analyzer) checkCFGAddressesUnique() []Finding {
	seen := make(map[uint64]int)
	total := 0
	for _, b := range a.CFG.Blocks() {
		for _, addr := range b.Body {
			seen[addr]++
			total++
		}
	}

	var findings []Finding
	if total != len(seen) {
		findings = append(findings, Finding{"error", fmt.Sprintf(
			"#addresses (%d) != #unique_addresses (%d) in CFG", total, len(seen))})
	}

	union := a.AddressUnion()
	if total != len(union) {
		findings = append(findings, Finding{"error", fmt.Sprintf(
			"#addresses (%d) in CFG != #address_union (%d)", total, len(union))})
	}
	return findings
}

func (a *Analyzer) checkInstructionMnemonicNotEmpty() []Finding {
	for _, t := range a.IterAllTraces() {
		for _, instr := range t.Instructions {
			if instr.Mnemonic == "" {
				return []Finding{{"error", fmt.Sprintf(
					"instruction 0x%x has empty mnemonic in trace %s", instr.Address, t.Name)}}
			}
		}
	}
	return nil
}

func (a *Analyzer) checkUntrackedMemoryWrite() []Finding {
	var findings []Finding
	for _, t := range a.IterAllTraces() {
		for _, instr := range t.Instructions {
			if !instr.IsMemoryWrite() {
				continue
			}
			if !instr.HasRegister(trace.RegMemoryAddress) {
				findings = append(findings, Finding{"error", fmt.Sprintf(
					"memory write found in mnemonic but no memory address field tracked for instruction 0x%x (%s) in trace %s",
					instr.Address, instr.Mnemonic, t.Name)})
			}
			if !instr.HasRegister(trace.RegMemoryValue) {
				findings = append(findings, Finding{"error", fmt.Sprintf(
					"memory write found in mnemonic but no memory value field tracked for instruction 0x%x (%s) in trace %s",
					instr.Address, instr.Mnemonic, t.Name)})
			}
		}
	}
	return findings
}

func (a *Analyzer) checkCompareRegMinMax() []Finding {
	var findings []Finding
	for _, t := range a.IterAllTraces() {
		for _, instr := range t.Instructions {
			for idx := range trace.REGISTERS {
				min, okMin := instr.Min(idx)
				max, okMax := instr.Max(idx)
				if !okMin || !okMax {
					continue
				}
				if min > max {
					findings = append(findings, Finding{"error", fmt.Sprintf(
						"min reg %s is not <= max reg for instruction 0x%x in trace %s",
						trace.REGISTERS[idx], instr.Address, t.Name)})
				}
			}
		}
	}
	return findings
}
