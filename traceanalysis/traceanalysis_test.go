package traceanalysis_test

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/aurora/traceanalysis"
)

// writeTrace writes a minimal trace document: head -> mid -> tail, a
// single straight-line run so the resulting CFG is a single block.
func writeTrace(dir, name string, regAtMid uint64) string {
	doc := map[string]any{
		"image_base":    0,
		"first_address": 0x1000,
		"last_address":  0x1002,
		"instructions": []map[string]any{
			{"address": 0x1000, "mnemonic": "push rbp", "registers_min": map[string]uint64{}, "registers_max": map[string]uint64{}},
			{"address": 0x1001, "mnemonic": "cmp eax, ebx", "registers_min": map[string]uint64{"0": regAtMid}, "registers_max": map[string]uint64{"0": regAtMid}},
			{"address": 0x1002, "mnemonic": "ret", "registers_min": map[string]uint64{}, "registers_max": map[string]uint64{}},
		},
		"edges": []map[string]any{
			{"from": 0x1000, "to": 0x1001, "count": 1},
			{"from": 0x1001, "to": 0x1002, "count": 1},
		},
	}

	b, err := json.Marshal(doc)
	Expect(err).NotTo(HaveOccurred())

	path := filepath.Join(dir, name+".json")
	Expect(os.WriteFile(path, b, 0o644)).To(Succeed())
	return path
}

var _ = Describe("Analyzer", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "traceanalysis")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("ingests traces, builds a single-block CFG, and finds no integrity findings", func() {
		crashPath := writeTrace(dir, "crash1", 0x40)
		nonCrashPath := writeTrace(dir, "noncrash1", 0x10)

		a, err := traceanalysis.New(traceanalysis.Config{
			CrashPaths:    []string{crashPath},
			NonCrashPaths: []string{nonCrashPath},
		}, slog.Default())
		Expect(err).NotTo(HaveOccurred())

		Expect(a.CFG.Heads()).To(Equal([]uint64{0x1000}))
		Expect(a.CFG.Leaves()).To(Equal([]uint64{0x1002}))

		findings := a.CheckIntegrity()
		Expect(findings).To(BeEmpty())
	})

	It("scores a register threshold predicate above the default threshold", func() {
		crashPath := writeTrace(dir, "crash1", 0x40)
		nonCrashPath := writeTrace(dir, "noncrash1", 0x10)

		a, err := traceanalysis.New(traceanalysis.Config{
			CrashPaths:    []string{crashPath},
			NonCrashPaths: []string{nonCrashPath},
		}, slog.Default())
		Expect(err).NotTo(HaveOccurred())

		scores := a.Scores(0.9)
		var found bool
		for _, p := range scores {
			if p.Address == 0x1001 {
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})

	It("dumps scores_linear.csv and the serialized predicate set", func() {
		crashPath := writeTrace(dir, "crash1", 0x40)
		nonCrashPath := writeTrace(dir, "noncrash1", 0x10)

		a, err := traceanalysis.New(traceanalysis.Config{
			CrashPaths:    []string{crashPath},
			NonCrashPaths: []string{nonCrashPath},
		}, slog.Default())
		Expect(err).NotTo(HaveOccurred())

		Expect(a.DumpScores(dir)).To(Succeed())
		Expect(filepath.Join(dir, "scores_linear.csv")).To(BeAnExistingFile())
		Expect(filepath.Join(dir, "scores_linear_serialized.json")).To(BeAnExistingFile())
	})

	It("excludes blacklisted crash traces from ingestion", func() {
		crashPath := writeTrace(dir, "crash1", 0x40)
		nonCrashPath := writeTrace(dir, "noncrash1", 0x10)

		a, err := traceanalysis.New(traceanalysis.Config{
			CrashPaths:    []string{crashPath},
			NonCrashPaths: []string{nonCrashPath},
			Blacklist:     map[string]bool{"crash1.json": true},
		}, slog.Default())
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Crashes()).To(BeEmpty())
	})
})
