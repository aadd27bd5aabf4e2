package detect

import (
	"fmt"
	"strings"

	"github.com/mchmarny/uarch/pkg/cpuid"
	uerrors "github.com/mchmarny/uarch/pkg/errors"
	"github.com/mchmarny/uarch/pkg/schema"
	"github.com/mchmarny/uarch/pkg/target"
)

// draftLinux shapes a /proc/cpuinfo block into a draft node for the given
// architecture family. The draft describes the literal host and is never
// inserted into the graph of known targets.
func draftLinux(arch string, info *CPUInfo, conv schema.Conversions) *target.Microarchitecture {
	switch arch {
	case "x86_64":
		return &target.Microarchitecture{
			Vendor:   info.GetDefault("vendor_id", "generic"),
			Features: target.NewFeatureSet(strings.Fields(info.GetDefault("flags", ""))...),
		}
	case "aarch64":
		vendor := "generic"
		if implementer, ok := info.Get("CPU implementer"); ok {
			if v, ok := conv.ARMVendors[implementer]; ok {
				vendor = v
			}
		}
		return &target.Microarchitecture{
			Vendor:   vendor,
			Features: target.NewFeatureSet(strings.Fields(info.GetDefault("Features", ""))...),
		}
	case "ppc64", "ppc64le":
		return &target.Microarchitecture{
			Vendor:     "generic",
			Features:   target.FeatureSet{},
			Generation: powerGeneration(info.GetDefault("cpu", "")),
		}
	case "riscv64":
		uarch := info.GetDefault("uarch", arch)
		// The one known multi-token uarch value gets its catalog alias.
		if uarch == "sifive,u74-mc" {
			uarch = "u74mc"
		}
		return target.Generic(uarch)
	default:
		return target.Generic(arch)
	}
}

// powerGeneration parses the leading digits after the "POWER" prefix of the
// cpu field, e.g. "POWER9 (architected), altivec supported" yields 9.
func powerGeneration(cpu string) int {
	rest, found := strings.CutPrefix(cpu, "POWER")
	if !found {
		return 0
	}
	gen := 0
	for _, c := range rest {
		if c < '0' || c > '9' {
			break
		}
		gen = gen*10 + int(c-'0')
	}
	return gen
}

// draftDarwin shapes macOS sysctl values into a draft node. On x86 the
// feature tokens are lower-cased and translated to their canonical names
// through the conversion table; on Apple silicon sysctl cannot enumerate
// features, so the brand string picks an exact named model instead.
func draftDarwin(arch string, sysctl SysctlProvider, conv schema.Conversions) *target.Microarchitecture {
	if arch == "x86_64" {
		features := target.FeatureSet{}
		for _, name := range []string{"machdep.cpu.features", "machdep.cpu.leaf7_features"} {
			v, err := sysctl.Sysctl(name)
			if err != nil {
				continue
			}
			features.Add(strings.Fields(strings.ToLower(v))...)
		}
		for darwinFlag, canonical := range conv.DarwinFlags {
			if features.Has(darwinFlag) {
				features.Add(strings.Fields(canonical)...)
			}
		}

		vendor, err := sysctl.Sysctl("machdep.cpu.vendor")
		if err != nil {
			vendor = ""
		}
		return &target.Microarchitecture{
			Vendor:   vendor,
			Features: features,
		}
	}

	model := "unknown"
	if brand, err := sysctl.Sysctl("machdep.cpu.brand_string"); err == nil {
		switch b := strings.ToLower(brand); {
		case strings.Contains(b, "m2"):
			model = "m2"
		case strings.Contains(b, "m1"):
			model = "m1"
		case strings.Contains(b, "apple"):
			model = "m1"
		}
	}
	return &target.Microarchitecture{
		Name:     model,
		Vendor:   "Apple",
		Features: target.FeatureSet{},
	}
}

// snapshotFrom reads the CPU identity from the provider. The real hardware
// goes through the process-wide memoized snapshot; injected providers are
// queried directly.
func snapshotFrom(p cpuid.Provider) (*cpuid.Snapshot, error) {
	if _, ok := p.(cpuid.Hardware); ok {
		return cpuid.Host()
	}
	return cpuid.Detect(p)
}

// draftWindows builds a draft node from CPUID on x86 machines and falls
// back to an architecture-level generic node elsewhere.
func draftWindows(arch string, provider cpuid.Provider) (*target.Microarchitecture, error) {
	switch arch {
	case "x86_64", "x86":
		snapshot, err := snapshotFrom(provider)
		if err != nil {
			return nil, err
		}
		return &target.Microarchitecture{
			Vendor:   snapshot.Vendor,
			Features: snapshot.Features,
		}, nil
	case "ppc64", "ppc64le", "aarch64", "riscv64":
		return target.Generic(arch), nil
	default:
		return nil, uerrors.New(uerrors.ErrCodeUnsupported,
			fmt.Sprintf("unsupported architecture %q", arch))
	}
}
