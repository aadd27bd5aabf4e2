//go:build !amd64 && !386

package cpuid

// Hardware is a placeholder on architectures without the CPUID instruction.
// Callers are expected to pick a different probe; every query reports no
// supported leaves and no set bits.
type Hardware struct{}

// Supported reports whether the running architecture can issue CPUID.
func (Hardware) Supported() bool {
	return false
}

// CPUID implements Provider.
func (Hardware) CPUID(leaf, subleaf uint32) Registers {
	return Registers{}
}
