package ranking

import (
	"bufio"
	"fmt"
	"os"
)

// WriteRankedPredicates writes ranked_predicates.txt: one line per
// predicate, already in Combine's final order, formatted
// "<address hex> -- <name> -- <score> -- <mnemonic> (path rank: <r>)".
func WriteRankedPredicates(path string, ranked []Ranked, mnemonics MnemonicTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ranking: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, r := range ranked {
		mnemonic := mnemonics[r.Predicate.Address]
		_, err := fmt.Fprintf(w, "0x%x -- %s -- %v -- %s (path rank: %v)\n",
			r.Predicate.Address, r.Predicate.Name, r.Predicate.Score, mnemonic, r.MeanPathRank)
		if err != nil {
			return fmt.Errorf("ranking: write %s: %w", path, err)
		}
	}
	return w.Flush()
}
