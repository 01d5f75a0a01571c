package ranking

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// MnemonicTable is the mnemonics.json side table: one mnemonic per
// address, loaded once instead of re-derived from trace data on
// every rank computation.
type MnemonicTable map[uint64]string

// LoadMnemonicTable reads a mnemonics.json file written by
// traceanalysis.Analyzer.DumpMnemonics.
func LoadMnemonicTable(path string) (MnemonicTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ranking: read %s: %w", path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("ranking: decode %s: %w", path, err)
	}

	table := make(MnemonicTable, len(raw))
	for k, v := range raw {
		addr, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ranking: decode %s: bad address key %q: %w", path, k, err)
		}
		table[addr] = v
	}
	return table, nil
}

// LoadRankings reads rankings.json: an array of arrays of integer
// addresses, one inner array per crashing input.
func LoadRankings(path string) ([][]uint64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ranking: read %s: %w", path, err)
	}

	var rankings [][]uint64
	if err := json.Unmarshal(b, &rankings); err != nil {
		return nil, fmt.Errorf("ranking: decode %s: %w", path, err)
	}
	return rankings, nil
}
