package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	uerrors "github.com/mchmarny/uarch/pkg/errors"
)

//go:embed data/microarchitectures.yaml
var microarchitecturesData []byte

//go:embed data/cpuid.yaml
var cpuidData []byte

// Document is the parsed microarchitecture catalog.
type Document struct {
	Microarchitectures map[string]Entry        `yaml:"microarchitectures"`
	FeatureAliases     map[string]FeatureAlias `yaml:"feature_aliases"`
	Conversions        Conversions             `yaml:"conversions"`
}

// Entry describes a single microarchitecture in the catalog.
type Entry struct {
	// From lists the immediate parents. The catalog accepts a null, a single
	// name, or a list of names; all three normalize to a slice. The first
	// parent determines the architecture family.
	From NameList `yaml:"from"`

	// Vendor is the silicon vendor, or "generic" for an architecture level.
	Vendor string `yaml:"vendor"`

	// Features lists the CPU features this entry adds on top of its parents.
	Features []string `yaml:"features"`

	// Compilers holds optional per-compiler optimization hints.
	Compilers map[string]CompilerSet `yaml:"compilers"`

	// Generation of the microarchitecture, where relevant (Power).
	Generation int `yaml:"generation"`
}

// FeatureAlias is a synthesized feature derived from existing features or
// from membership in an architecture family.
type FeatureAlias struct {
	Reason   string   `yaml:"reason"`
	AnyOf    []string `yaml:"any_of"`
	Families []string `yaml:"families"`
}

// Conversions map platform specific values to their canonical counterparts.
type Conversions struct {
	Description string `yaml:"description"`

	// ARMVendors maps ARM implementer hex codes to vendor names.
	ARMVendors map[string]string `yaml:"arm_vendors"`

	// DarwinFlags maps macOS feature tokens to one or more space separated
	// canonical feature names.
	DarwinFlags map[string]string `yaml:"darwin_flags"`
}

// Compiler tells one compiler release range how to optimize for a target.
type Compiler struct {
	Versions string `yaml:"versions" json:"versions"`
	Flags    string `yaml:"flags" json:"flags"`
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
}

// NameList accepts a null, a single string, or a sequence of strings.
type NameList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *NameList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
		var s string
		if err := value.Decode(&s); err != nil {
			return fmt.Errorf("failed to decode parent name: %w", err)
		}
		*l = NameList{s}
		return nil
	case yaml.SequenceNode:
		var s []string
		if err := value.Decode(&s); err != nil {
			return fmt.Errorf("failed to decode parent names: %w", err)
		}
		*l = s
		return nil
	default:
		return fmt.Errorf("unexpected yaml node kind %d for name list", value.Kind)
	}
}

// CompilerSet accepts a single compiler entry or a sequence of entries,
// normalizing both to a slice.
type CompilerSet []Compiler

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *CompilerSet) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		var single Compiler
		if err := value.Decode(&single); err != nil {
			return fmt.Errorf("failed to decode compiler entry: %w", err)
		}
		*c = CompilerSet{single}
		return nil
	case yaml.SequenceNode:
		var many []Compiler
		if err := value.Decode(&many); err != nil {
			return fmt.Errorf("failed to decode compiler entries: %w", err)
		}
		*c = many
		return nil
	default:
		return fmt.Errorf("unexpected yaml node kind %d for compiler set", value.Kind)
	}
}

// Validate checks the structural integrity of the catalog: every referenced
// parent must be defined, and no entry may transitively depend on itself.
func (d *Document) Validate() error {
	for name, entry := range d.Microarchitectures {
		for _, parent := range entry.From {
			if _, ok := d.Microarchitectures[parent]; !ok {
				return uerrors.New(uerrors.ErrCodeInvalidCatalog,
					fmt.Sprintf("microarchitecture %q references undefined parent %q", name, parent))
			}
		}
	}

	// Three-color DFS over the parent graph.
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(d.Microarchitectures))
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			return uerrors.New(uerrors.ErrCodeInvalidCatalog,
				fmt.Sprintf("microarchitecture %q transitively depends on itself", name))
		}
		state[name] = visiting
		for _, parent := range d.Microarchitectures[name].From {
			if err := visit(parent); err != nil {
				return err
			}
		}
		state[name] = visited
		return nil
	}
	for name := range d.Microarchitectures {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

var loadDocument = sync.OnceValues(func() (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(microarchitecturesData, &doc); err != nil {
		return nil, uerrors.Wrap(uerrors.ErrCodeInvalidCatalog,
			"failed to parse embedded microarchitecture catalog", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
})

// Load returns the parsed and validated microarchitecture catalog. The
// catalog is parsed once per process; all callers share the same document.
func Load() (*Document, error) {
	return loadDocument()
}
