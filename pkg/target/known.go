package target

import (
	"runtime"
	"sync"

	"github.com/mchmarny/uarch/pkg/schema"
)

// NativeArch returns the catalog name of the architecture this binary was
// compiled for.
func NativeArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "386":
		return "x86"
	case "arm64":
		return "aarch64"
	default:
		// ppc64, ppc64le, riscv64, and the rest already use catalog names.
		return runtime.GOARCH
	}
}

var knownTargets = sync.OnceValues(func() (map[string]*Microarchitecture, error) {
	doc, err := schema.Load()
	if err != nil {
		return nil, err
	}

	targets := make(map[string]*Microarchitecture, len(doc.Microarchitectures))

	// Parents are built before their children so that every node holds
	// fully formed parent references. The catalog is validated to be
	// acyclic at load time, so the recursion is bounded.
	var build func(name string)
	build = func(name string) {
		if _, ok := targets[name]; ok {
			return
		}
		entry := doc.Microarchitectures[name]
		parents := make([]*Microarchitecture, 0, len(entry.From))
		for _, parent := range entry.From {
			build(parent)
			parents = append(parents, targets[parent])
		}

		compilers := make(map[string][]Compiler, len(entry.Compilers))
		for vendor, set := range entry.Compilers {
			compilers[vendor] = []Compiler(set)
		}

		targets[name] = New(name, entry.Vendor, NewFeatureSet(entry.Features...),
			parents, compilers, entry.Generation)
	}
	for name := range doc.Microarchitectures {
		build(name)
	}

	// The native architecture always resolves to at least a generic floor,
	// even when the catalog does not describe it.
	if native := NativeArch(); targets[native] == nil {
		targets[native] = Generic(native)
	}

	return targets, nil
})

// Known returns all known microarchitectures keyed by name. The graph is
// built once per process from the embedded catalog; concurrent callers all
// observe the same fully built, immutable result. A structurally invalid
// catalog is a fatal configuration error.
func Known() (map[string]*Microarchitecture, error) {
	return knownTargets()
}

var featureAliases = sync.OnceValues(func() (map[string]schema.FeatureAlias, error) {
	doc, err := schema.Load()
	if err != nil {
		return nil, err
	}
	return doc.FeatureAliases, nil
})

// Supports reports whether the target provides the given feature, either
// directly, through an ancestor, or through a catalog feature alias (a
// spelling used by some tools, or a capability implied by family
// membership).
func (m *Microarchitecture) Supports(feature string) bool {
	all := m.AllFeatures()
	if all.Has(feature) {
		return true
	}
	aliases, err := featureAliases()
	if err != nil {
		return false
	}
	alias, ok := aliases[feature]
	if !ok {
		return false
	}
	for _, f := range alias.AnyOf {
		if all.Has(f) {
			return true
		}
	}
	family := m.Family().Name
	for _, f := range alias.Families {
		if f == family {
			return true
		}
	}
	return false
}
