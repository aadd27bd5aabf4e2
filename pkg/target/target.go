package target

import (
	"fmt"
	"sync"

	"github.com/mchmarny/uarch/pkg/schema"
	"github.com/mchmarny/uarch/pkg/version"
)

// Compiler tells one compiler release range how to optimize for a target.
// It mirrors schema.Compiler so that consumers of resolved targets do not
// need to depend on the catalog package.
type Compiler = schema.Compiler

// Microarchitecture is one node in the graph of known microarchitectures.
//
// Nodes are immutable once constructed and are always shared by pointer,
// never copied. Features holds only the features this node adds on top of
// its parents; use AllFeatures for the transitive set.
type Microarchitecture struct {
	Name       string
	Vendor     string
	Features   FeatureSet
	Compilers  map[string][]Compiler
	Generation int

	// Parents is ordered: the first parent defines the architecture family.
	Parents []*Microarchitecture

	ancestorsOnce sync.Once
	ancestors     []*Microarchitecture
}

// New constructs a microarchitecture node.
func New(name, vendor string, features FeatureSet, parents []*Microarchitecture,
	compilers map[string][]Compiler, generation int) *Microarchitecture {
	return &Microarchitecture{
		Name:       name,
		Vendor:     vendor,
		Features:   features,
		Compilers:  compilers,
		Generation: generation,
		Parents:    parents,
	}
}

// Generic constructs a root-less generic microarchitecture with no features.
// It is used both for catalog fallback roots and for draft nodes describing
// the probed host.
func Generic(name string) *Microarchitecture {
	return &Microarchitecture{
		Name:     name,
		Vendor:   "generic",
		Features: FeatureSet{},
	}
}

// Ancestors returns the transitive closure over the parents of this node in
// breadth-first, first-discovered order. The receiver itself is excluded and
// every ancestor appears exactly once. The result is computed lazily and
// memoized; callers must not modify it.
func (m *Microarchitecture) Ancestors() []*Microarchitecture {
	m.ancestorsOnce.Do(func() {
		seen := make(map[string]struct{}, len(m.Parents))
		out := make([]*Microarchitecture, 0, len(m.Parents))
		for _, p := range m.Parents {
			if _, ok := seen[p.Name]; !ok {
				seen[p.Name] = struct{}{}
				out = append(out, p)
			}
		}
		for _, p := range m.Parents {
			for _, a := range p.Ancestors() {
				if _, ok := seen[a.Name]; !ok {
					seen[a.Name] = struct{}{}
					out = append(out, a)
				}
			}
		}
		m.ancestors = out
	})
	return m.ancestors
}

// DescendantOf reports whether other is an ancestor of this node.
func (m *Microarchitecture) DescendantOf(other *Microarchitecture) bool {
	for _, a := range m.Ancestors() {
		if a.Name == other.Name {
			return true
		}
	}
	return false
}

// nodeSet returns the names of this node and all its ancestors, i.e. every
// node in the graph reachable from this one.
func (m *Microarchitecture) nodeSet() map[string]struct{} {
	ancestors := m.Ancestors()
	set := make(map[string]struct{}, len(ancestors)+1)
	set[m.Name] = struct{}{}
	for _, a := range ancestors {
		set[a.Name] = struct{}{}
	}
	return set
}

// IsSuperset reports whether the reachable node set of this node contains
// the reachable node set of other.
func (m *Microarchitecture) IsSuperset(other *Microarchitecture) bool {
	set := m.nodeSet()
	for name := range other.nodeSet() {
		if _, ok := set[name]; !ok {
			return false
		}
	}
	return true
}

// IsStrictSuperset reports whether this node is a superset of other and the
// two are not the same node.
func (m *Microarchitecture) IsStrictSuperset(other *Microarchitecture) bool {
	return m.Name != other.Name && m.IsSuperset(other)
}

// Family returns the architecture root: the first parent chain is followed
// until a node without parents is reached. Every reachable tree is assumed
// to have a single root.
func (m *Microarchitecture) Family() *Microarchitecture {
	node := m
	for len(node.Parents) > 0 {
		node = node.Parents[0]
	}
	return node
}

// AllFeatures returns the union of this node's own features and the
// features of every ancestor.
func (m *Microarchitecture) AllFeatures() FeatureSet {
	all := make(FeatureSet, len(m.Features))
	for f := range m.Features {
		all[f] = struct{}{}
	}
	for _, a := range m.Ancestors() {
		for f := range a.Features {
			all[f] = struct{}{}
		}
	}
	return all
}

// Equal reports structural equality over name, vendor, features, parents,
// compilers, and generation. The memoized ancestor cache is not part of the
// comparison.
func (m *Microarchitecture) Equal(other *Microarchitecture) bool {
	if m == other {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	if m.Name != other.Name ||
		m.Vendor != other.Vendor ||
		m.Generation != other.Generation ||
		!m.Features.Equal(other.Features) ||
		len(m.Parents) != len(other.Parents) ||
		len(m.Compilers) != len(other.Compilers) {
		return false
	}
	for i, p := range m.Parents {
		if !p.Equal(other.Parents[i]) {
			return false
		}
	}
	for vendor, set := range m.Compilers {
		otherSet, ok := other.Compilers[vendor]
		if !ok || len(set) != len(otherSet) {
			return false
		}
		for i, c := range set {
			if c != otherSet[i] {
				return false
			}
		}
	}
	return true
}

// String returns the node name.
func (m *Microarchitecture) String() string {
	return m.Name
}

// OptimizationFlags returns the compiler flag hints for the given compiler,
// or nil when the catalog carries none.
func (m *Microarchitecture) OptimizationFlags(compiler string) []Compiler {
	return m.Compilers[compiler]
}

// OptimizationFlagsFor returns the hint entry whose version range admits the
// given compiler release. It returns an error when the release string cannot
// be parsed or no entry covers it.
func (m *Microarchitecture) OptimizationFlagsFor(compiler, release string) (Compiler, error) {
	ver, err := version.ParseVersion(release)
	if err != nil {
		return Compiler{}, fmt.Errorf("failed to parse compiler release %q: %w", release, err)
	}
	for _, entry := range m.Compilers[compiler] {
		rng, err := version.ParseRange(entry.Versions)
		if err != nil {
			return Compiler{}, fmt.Errorf("invalid version range %q for %s on %s: %w",
				entry.Versions, compiler, m.Name, err)
		}
		if rng.Contains(ver) {
			return entry, nil
		}
	}
	return Compiler{}, fmt.Errorf("no %s %s optimization hints for target %s", compiler, release, m.Name)
}
