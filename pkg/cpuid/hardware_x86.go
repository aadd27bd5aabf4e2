//go:build amd64 || 386

package cpuid

// cpuidLow is implemented in assembly.
func cpuidLow(leaf, subleaf uint32) (eax, ebx, ecx, edx uint32)

// Hardware issues the CPUID instruction on the running CPU.
type Hardware struct{}

// Supported reports whether the running architecture can issue CPUID.
func (Hardware) Supported() bool {
	return true
}

// CPUID implements Provider.
func (Hardware) CPUID(leaf, subleaf uint32) Registers {
	eax, ebx, ecx, edx := cpuidLow(leaf, subleaf)
	return Registers{EAX: eax, EBX: ebx, ECX: ecx, EDX: edx}
}
