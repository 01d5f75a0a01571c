package monitor

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

// ValueDestination resolves the value side of a Compare predicate.
// Register reads the current (post-step) registers; Address and
// MemoryValue compute the effective address against the pre-step
// registers, since those are what the instruction executed with.
type ValueDestination interface {
	resolve(ctx EvalContext) (uint64, error)
	fmt.Stringer
}

// RegisterDestination reads a named register from the post-step
// snapshot.
type RegisterDestination struct {
	Name string
}

func (r *RegisterDestination) resolve(ctx EvalContext) (uint64, error) {
	v, ok := registerValue(&ctx.R1, r.Name)
	if !ok {
		return 0, fmt.Errorf("monitor: unknown register %q", r.Name)
	}
	return v, nil
}

func (r *RegisterDestination) String() string { return r.Name }

// AddressDestination resolves to the effective address of the
// instruction's last memory operand, computed against the pre-step
// registers — the instruction that just executed used those.
type AddressDestination struct {
	Mem x86asm.Mem
}

func (a *AddressDestination) resolve(ctx EvalContext) (uint64, error) {
	return effectiveAddress(&ctx.R0, a.Mem), nil
}

func (a *AddressDestination) String() string { return "memory_address" }

// MemoryValueDestination reads the live value at the instruction's
// memory operand, masked by maskAccessSize. AccessSizeBits carries
// the decoded operand width verbatim.
type MemoryValueDestination struct {
	Mem            x86asm.Mem
	AccessSizeBits int
}

func (m *MemoryValueDestination) resolve(ctx EvalContext) (uint64, error) {
	address := effectiveAddress(&ctx.R0, m.Mem)
	raw, err := ctx.ReadWord(address)
	if err != nil {
		return 0, fmt.Errorf("monitor: read memory value at 0x%x: %w", address, err)
	}
	return maskAccessSize(raw, m.AccessSizeBits), nil
}

func (m *MemoryValueDestination) String() string { return "memory_value" }

// maskAccessSize masks a raw word by 1 << bits, NOT by the byte-width
// mask (1<<(bits))-1; a shift of 64 or more bits leaves the value
// untouched. This single-bit mask is deliberate — downstream scoring
// depends on the exact computation, so do not "fix" it.
func maskAccessSize(value uint64, bits int) uint64 {
	if bits < 0 || bits >= 64 {
		return value
	}
	return value & (uint64(1) << uint(bits))
}
