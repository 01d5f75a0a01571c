package monitor

import (
	"fmt"
	"log/slog"

	"github.com/sarchlab/aurora/predicate"
)

// RootCauseCandidate binds a lowered runtime predicate to the
// address it fires at and the static score the analyzer gave it.
type RootCauseCandidate struct {
	Address   uint64
	Score     float64
	Predicate RuntimePredicate
}

func (c *RootCauseCandidate) String() string {
	return fmt.Sprintf("0x%x %s (score %v)", c.Address, c.Predicate, c.Score)
}

// convertCandidates decodes the instruction at every serialized
// predicate's address and lowers its name into a RuntimePredicate.
// Addresses that fail to decode, or names that lower to
// "unsupported", are dropped with a single warning each, never
// fatally.
func convertCandidates(
	read codeReader,
	predicates []predicate.Serialized,
	logger *slog.Logger,
) map[uint64]*RootCauseCandidate {
	out := make(map[uint64]*RootCauseCandidate, len(predicates))

	for _, sp := range predicates {
		instr, err := Decode(read, sp.Address)
		if err != nil {
			logger.Warn("failed to decode instruction, skipping candidate",
				slog.Uint64("address", sp.Address), slog.String("err", err.Error()))
			continue
		}

		rp, ok := Lower(sp.Name, instr)
		if !ok {
			logger.Warn("predicate lowering unsupported, dropping",
				slog.String("name", sp.Name), slog.Uint64("address", sp.Address))
			continue
		}

		out[sp.Address] = &RootCauseCandidate{Address: sp.Address, Score: sp.Score, Predicate: rp}
	}

	return out
}
