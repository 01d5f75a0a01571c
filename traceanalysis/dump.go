package traceanalysis

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sarchlab/aurora/predicate"
)

// DumpScores writes scores_linear.csv (address, score, predicate
// name, mnemonic) and the exhaustive scores_linear_serialized.json
// per-address best predicate set to dir. The linear dump keeps every
// address's best predicate regardless of threshold, unlike Scores
// which filters.
func (a *Analyzer) DumpScores(dir string) error {
	union := a.AddressUnion()
	addrs := make([]uint64, 0, len(union))
	for addr := range union {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	best := make([]*predicate.Predicate, len(addrs))
	for i, addr := range addrs {
		best[i] = predicate.EvaluateBestAt(addr, a)
	}

	if err := a.writeScoresCSV(filepath.Join(dir, "scores_linear.csv"), best); err != nil {
		return err
	}
	if err := a.writeSerialized(filepath.Join(dir, "scores_linear_serialized.json"), best); err != nil {
		return err
	}
	return nil
}

func (a *Analyzer) writeScoresCSV(path string, preds []*predicate.Predicate) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("traceanalysis: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for _, p := range preds {
		record := []string{
			fmt.Sprintf("0x%x", p.Address),
			fmt.Sprintf("%v", p.Score),
			p.Name,
			a.AnyMnemonic(p.Address),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("traceanalysis: write %s: %w", path, err)
		}
	}
	return w.Error()
}

func (a *Analyzer) writeSerialized(path string, preds []*predicate.Predicate) error {
	out := make([]predicate.Serialized, len(preds))
	for i, p := range preds {
		out[i] = p.Serialize()
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("traceanalysis: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("traceanalysis: write %s: %w", path, err)
	}
	return nil
}

// DumpPredicates writes predicates.json: the (possibly
// threshold-filtered) predicate set handed to the monitor.
func (a *Analyzer) DumpPredicates(path string, preds []*predicate.Predicate) error {
	out := make([]predicate.Serialized, len(preds))
	for i, p := range preds {
		out[i] = p.Serialize()
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("traceanalysis: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("traceanalysis: write %s: %w", path, err)
	}
	return nil
}

// DumpMnemonics writes the mnemonics.json side table: every address
// in the union mapped to whichever mnemonic was observed there. The
// ranking combiner reads this back instead of re-deriving mnemonics
// from trace data on every rank computation.
func (a *Analyzer) DumpMnemonics(path string) error {
	union := a.AddressUnion()
	table := make(map[string]string, len(union))
	for addr := range union {
		table[fmt.Sprintf("%d", addr)] = a.AnyMnemonic(addr)
	}

	b, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("traceanalysis: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("traceanalysis: write %s: %w", path, err)
	}
	return nil
}
