package schema

import (
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	uerrors "github.com/mchmarny/uarch/pkg/errors"
)

// CPUIDDocument describes which CPUID leaves and bits reveal the vendor,
// the brand string, and the feature flags of an x86 CPU.
type CPUIDDocument struct {
	Vendor                  CPUIDProperty `yaml:"vendor"`
	HighestExtensionSupport CPUIDProperty `yaml:"highest_extension_support"`
	Flags                   []CPUIDFlags  `yaml:"flags"`
	ExtensionFlags          []CPUIDFlags  `yaml:"extension-flags"`
}

// CPUIDProperty is a single CPUID query point.
type CPUIDProperty struct {
	Description string     `yaml:"description"`
	Input       CPUIDInput `yaml:"input"`
}

// CPUIDFlags is a set of feature bits readable from one CPUID query.
type CPUIDFlags struct {
	Description string     `yaml:"description"`
	Input       CPUIDInput `yaml:"input"`
	Bits        []CPUIDBit `yaml:"bits"`
}

// CPUIDBit names one feature bit in one output register.
type CPUIDBit struct {
	Name     string   `yaml:"name"`
	Register Register `yaml:"register"`
	Bit      uint8    `yaml:"bit"`
}

// CPUIDInput is the (leaf, sub-leaf) pair passed to the CPUID instruction.
type CPUIDInput struct {
	EAX uint32 `yaml:"eax"`
	ECX uint32 `yaml:"ecx"`
}

// Register identifies one of the four CPUID output registers.
type Register string

const (
	RegisterEAX Register = "eax"
	RegisterEBX Register = "ebx"
	RegisterECX Register = "ecx"
	RegisterEDX Register = "edx"
)

// UnmarshalYAML implements yaml.Unmarshaler, rejecting unknown registers.
func (r *Register) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("failed to decode register name: %w", err)
	}
	switch Register(s) {
	case RegisterEAX, RegisterEBX, RegisterECX, RegisterEDX:
		*r = Register(s)
		return nil
	default:
		return fmt.Errorf("unknown cpuid register %q", s)
	}
}

var loadCPUIDDocument = sync.OnceValues(func() (*CPUIDDocument, error) {
	var doc CPUIDDocument
	if err := yaml.Unmarshal(cpuidData, &doc); err != nil {
		return nil, uerrors.Wrap(uerrors.ErrCodeInvalidCatalog,
			"failed to parse embedded cpuid catalog", err)
	}
	return &doc, nil
})

// LoadCPUID returns the parsed CPUID catalog, shared process-wide.
func LoadCPUID() (*CPUIDDocument, error) {
	return loadCPUIDDocument()
}
