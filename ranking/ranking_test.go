package ranking_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/aurora/predicate"
	"github.com/sarchlab/aurora/ranking"
	"github.com/sarchlab/aurora/trace"
)

func alwaysFalse(instr trace.Instruction, p1, p2 uint64) bool { return false }

func mkPredicate(name string, address uint64, score float64) *predicate.Predicate {
	p := predicate.New(name, address, alwaysFalse, 0, 0)
	p.Score = score
	return p
}

var _ = Describe("MeanPathRank", func() {
	It("is the absent sentinel when an address never appears in any ranking", func() {
		rank := ranking.MeanPathRank(0x999, [][]uint64{{0x1, 0x2}, {0x3, 0x4}})
		Expect(rank).To(Equal(2.0))
	})

	It("averages position/length across rankings where the address appears", func() {
		rank := ranking.MeanPathRank(0x2, [][]uint64{{0x1, 0x2, 0x3}, {0x2}})
		Expect(rank).To(Equal((1.0/3.0 + 0.0/1.0) / 2.0))
	})
})

var _ = Describe("Combine", func() {
	It("orders by score descending, then mean path rank ascending", func() {
		pLowRank := mkPredicate("a", 0x1, 0.95)
		pHighRank := mkPredicate("b", 0x2, 0.95)
		pLowScore := mkPredicate("c", 0x3, 0.5)

		rankings := [][]uint64{{0x1, 0x2}, {0x1, 0x2}}
		// 0x1 is always first (rank 0), 0x2 always second (rank 0.5).
		ranked := ranking.Combine([]*predicate.Predicate{pHighRank, pLowScore, pLowRank}, rankings)

		Expect(ranked[0].Predicate.Address).To(Equal(uint64(0x1)))
		Expect(ranked[1].Predicate.Address).To(Equal(uint64(0x2)))
		Expect(ranked[2].Predicate.Address).To(Equal(uint64(0x3)))
	})
})

var _ = Describe("WriteRankedPredicates", func() {
	It("writes one formatted line per predicate", func() {
		dir, err := os.MkdirTemp("", "ranking")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		ranked := []ranking.Ranked{
			{Predicate: mkPredicate("is_visited", 0x1000, 1.0), MeanPathRank: 0.0},
		}
		mnemonics := ranking.MnemonicTable{0x1000: "push rbp"}

		path := filepath.Join(dir, "ranked_predicates.txt")
		Expect(ranking.WriteRankedPredicates(path, ranked, mnemonics)).To(Succeed())

		b, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal("0x1000 -- is_visited -- 1 -- push rbp (path rank: 0)\n"))
	})
})

var _ = Describe("LoadMnemonicTable and LoadRankings", func() {
	It("round-trips JSON written by the analysis side", func() {
		dir, err := os.MkdirTemp("", "ranking")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		mnemonicsPath := filepath.Join(dir, "mnemonics.json")
		Expect(os.WriteFile(mnemonicsPath, []byte(`{"4096":"push rbp"}`), 0o644)).To(Succeed())

		table, err := ranking.LoadMnemonicTable(mnemonicsPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(table[0x1000]).To(Equal("push rbp"))

		rankingsPath := filepath.Join(dir, "rankings.json")
		Expect(os.WriteFile(rankingsPath, []byte(`[[4096,4097],[4097]]`), 0o644)).To(Succeed())

		rankings, err := ranking.LoadRankings(rankingsPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(rankings).To(Equal([][]uint64{{0x1000, 0x1001}, {0x1001}}))
	})
})
