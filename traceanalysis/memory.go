package traceanalysis

import (
	"encoding/json"
	"fmt"
	"os"
)

// MemoryAddresses is the memory boundaries document written by the
// tracer: the heap and stack ranges the synthesizer uses to skip
// thresholding pointer-valued registers.
type MemoryAddresses struct {
	HeapStart  uint64 `json:"heap_start"`
	HeapEnd    uint64 `json:"heap_end"`
	StackStart uint64 `json:"stack_start"`
	StackEnd   uint64 `json:"stack_end"`
}

// LoadMemoryAddresses reads addresses.json from the analysis output
// directory.
func LoadMemoryAddresses(path string) (MemoryAddresses, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return MemoryAddresses{}, fmt.Errorf("traceanalysis: read %s: %w", path, err)
	}

	var m MemoryAddresses
	if err := json.Unmarshal(b, &m); err != nil {
		return MemoryAddresses{}, fmt.Errorf("traceanalysis: decode %s: %w", path, err)
	}
	return m, nil
}
