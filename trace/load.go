package trace

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
)

// registerKeyIndex parses a JSON object key from a registers_min/max
// map. Trace documents key these by register index (as produced by
// the upstream instrumentation), but names are accepted too so
// hand-authored fixtures can use either form.
func registerKeyIndex(key string) (int, bool) {
	if idx, err := strconv.Atoi(key); err == nil {
		return idx, true
	}
	return RegisterIndex(key)
}

// Load reads a trace document from a plain JSON file.
func Load(name, path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	defer f.Close()
	return decode(name, f)
}

// LoadZip reads a trace document from the single entry of a zip
// archive, the format trace collection tooling emits by default.
func LoadZip(name, path string) (*Trace, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open zip %s: %w", path, err)
	}
	defer r.Close()

	if len(r.File) != 1 {
		return nil, fmt.Errorf("trace: %s: expected exactly one entry, found %d", path, len(r.File))
	}

	rc, err := r.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("trace: open zip entry in %s: %w", path, err)
	}
	defer rc.Close()

	return decode(name, rc)
}

func decode(name string, r io.Reader) (*Trace, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("trace: decode %s: %w", name, err)
	}

	// Accumulate successor sets per address from the edge list, since
	// Instruction.Successors is derived rather than carried verbatim
	// per-instruction in the wire format.
	successors := make(map[uint64]map[uint64]struct{}, len(doc.Edges))
	for _, e := range doc.Edges {
		set, ok := successors[e.From]
		if !ok {
			set = make(map[uint64]struct{})
			successors[e.From] = set
		}
		set[e.To] = struct{}{}
	}

	instructions := make(map[uint64]Instruction, len(doc.Instructions))
	for _, id := range doc.Instructions {
		instructions[id.Address] = id.toInstruction(successors[id.Address])
	}

	return &Trace{
		Name:         name,
		ImageBase:    doc.ImageBase,
		FirstAddress: doc.FirstAddress,
		LastAddress:  doc.LastAddress,
		Instructions: instructions,
	}, nil
}
