package trace

// document mirrors the on-disk JSON shape the tracer emits: a trace
// document, optionally the sole entry of a zip archive.
type document struct {
	ImageBase    uint64     `json:"image_base"`
	FirstAddress uint64     `json:"first_address"`
	LastAddress  uint64     `json:"last_address"`
	Instructions []instrDoc `json:"instructions"`
	Edges        []edgeDoc  `json:"edges"`
}

type instrDoc struct {
	Address       uint64            `json:"address"`
	Mnemonic      string            `json:"mnemonic"`
	RegistersMin  map[string]uint64 `json:"registers_min"`
	RegistersMax  map[string]uint64 `json:"registers_max"`
	RegistersLast map[string]uint64 `json:"registers_last"`
	LastSuccessor uint64            `json:"last_successor"`
	Count         uint64            `json:"count"`
	Memory        *memoryDoc        `json:"memory"`
}

type memoryDoc struct {
	MinAddress  uint64 `json:"min_address"`
	MaxAddress  uint64 `json:"max_address"`
	LastAddress uint64 `json:"last_address"`
	MinValue    uint64 `json:"min_value"`
	MaxValue    uint64 `json:"max_value"`
	LastValue   uint64 `json:"last_value"`
}

type edgeDoc struct {
	From  uint64 `json:"from"`
	To    uint64 `json:"to"`
	Count uint64 `json:"count"`
}

// toInstruction converts a wire-format instrDoc into the in-memory
// Instruction, synthesizing the memory-address and memory-value
// register slots from the memory field when present.
func (d *instrDoc) toInstruction(successors map[uint64]struct{}) Instruction {
	min := make(map[int]uint64, len(d.RegistersMin)+2)
	max := make(map[int]uint64, len(d.RegistersMax)+2)

	for name, v := range d.RegistersMin {
		if idx, ok := registerKeyIndex(name); ok {
			min[idx] = v
		}
	}
	for name, v := range d.RegistersMax {
		if idx, ok := registerKeyIndex(name); ok {
			max[idx] = v
		}
	}

	if d.Memory != nil {
		min[RegMemoryAddress] = d.Memory.MinAddress
		max[RegMemoryAddress] = d.Memory.MaxAddress
		min[RegMemoryValue] = d.Memory.MinValue
		max[RegMemoryValue] = d.Memory.MaxValue
	}

	return Instruction{
		Address:      d.Address,
		Mnemonic:     d.Mnemonic,
		RegistersMin: min,
		RegistersMax: max,
		Successors:   sortedSuccessors(successors),
	}
}
