package detect

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/mchmarny/uarch/pkg/cpuid"
	uerrors "github.com/mchmarny/uarch/pkg/errors"
	"github.com/mchmarny/uarch/pkg/schema"
	"github.com/mchmarny/uarch/pkg/target"
)

// Detector resolves the host microarchitecture. All platform interfaces it
// consumes are injectable; the zero-option Detector probes the running
// machine.
type Detector struct {
	targetOS   string
	targetArch string
	cpuInfo    *CPUInfo
	sysctl     SysctlProvider
	cpuid      cpuid.Provider
}

// Option configures a Detector.
type Option func(*Detector)

// WithTargetOS overrides the operating system, using runtime.GOOS names.
func WithTargetOS(os string) Option {
	return func(d *Detector) { d.targetOS = os }
}

// WithTargetArch overrides architecture resolution with a catalog family
// name such as "x86_64" or "aarch64".
func WithTargetArch(arch string) Option {
	return func(d *Detector) { d.targetArch = arch }
}

// WithCPUInfo supplies a pre-parsed cpuinfo block instead of /proc/cpuinfo.
func WithCPUInfo(info *CPUInfo) Option {
	return func(d *Detector) { d.cpuInfo = info }
}

// WithSysctlProvider replaces the machine sysctl queries.
func WithSysctlProvider(p SysctlProvider) Option {
	return func(d *Detector) { d.sysctl = p }
}

// WithCPUIDProvider replaces the hardware CPUID instruction.
func WithCPUIDProvider(p cpuid.Provider) Option {
	return func(d *Detector) { d.cpuid = p }
}

// New creates a Detector backed by the running machine, with any overrides
// applied.
func New(opts ...Option) *Detector {
	d := &Detector{
		sysctl: machineSysctl{},
		cpuid:  cpuid.Hardware{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Host detects the microarchitecture of the running machine and returns the
// most specific catalog node the host is provably compatible with.
func Host() (*target.Microarchitecture, error) {
	return New().Detect()
}

// Detect resolves the best matching known microarchitecture, or an
// unsupported-microarchitecture error when the environment cannot be
// matched. Identical inputs always resolve to the same node.
func (d *Detector) Detect() (*target.Microarchitecture, error) {
	targets, err := target.Known()
	if err != nil {
		return nil, err
	}

	osName, arch, draft, err := d.probe()
	if err != nil {
		return nil, err
	}

	slog.Debug("probed host",
		"os", osName,
		"arch", arch,
		"vendor", draft.Vendor,
		"features", len(draft.Features),
	)

	return resolve(targets, arch, osName == "darwin", draft)
}

// Probe builds the draft node describing the literal host without matching
// it against the catalog. Intended for diagnostics.
func (d *Detector) Probe() (*target.Microarchitecture, error) {
	_, _, draft, err := d.probe()
	return draft, err
}

func (d *Detector) probe() (osName, arch string, draft *target.Microarchitecture, err error) {
	doc, err := schema.Load()
	if err != nil {
		return "", "", nil, err
	}

	osName = d.targetOS
	if osName == "" {
		osName = runtime.GOOS
	}

	arch, err = d.resolveArch(osName)
	if err != nil {
		return "", "", nil, uerrors.Wrap(uerrors.ErrCodeUnsupported,
			"failed to determine host architecture", err)
	}

	switch osName {
	case "linux":
		info := d.cpuInfo
		if info == nil {
			if info, err = ReadCPUInfo(); err != nil {
				return "", "", nil, uerrors.Wrap(uerrors.ErrCodeUnsupported,
					"failed to read cpu info", err)
			}
		}
		draft = draftLinux(arch, info, doc.Conversions)
	case "darwin":
		draft = draftDarwin(arch, d.sysctl, doc.Conversions)
	case "windows":
		if draft, err = draftWindows(arch, d.cpuid); err != nil {
			return "", "", nil, err
		}
	default:
		return "", "", nil, uerrors.New(uerrors.ErrCodeUnsupported,
			fmt.Sprintf("unsupported operating system %q", osName))
	}
	return osName, arch, draft, nil
}

// resolveArch determines the architecture family name: an explicit override
// wins, then the OS machine name on Linux, then the Rosetta brand-string
// heuristic on macOS, then the compile-time constant.
func (d *Detector) resolveArch(osName string) (string, error) {
	if d.targetArch != "" {
		return d.targetArch, nil
	}
	switch osName {
	case "linux":
		return unameMachine()
	case "darwin":
		// An M-series machine running under Rosetta reports x86_64 from
		// uname; the brand string still names the vendor.
		brand, err := d.sysctl.Sysctl("machdep.cpu.brand_string")
		if err == nil && strings.Contains(brand, "Apple") {
			return "aarch64", nil
		}
		return "x86_64", nil
	default:
		return target.NativeArch(), nil
	}
}

// resolve picks the best matching node for the draft: the most derived
// generic candidate establishes a floor with zero vendor-specific
// assumptions, then the most derived strict superset of that floor wins.
// The superset restriction discards sibling branches while tolerating a
// niche feature toggled off at firmware level.
func resolve(targets map[string]*target.Microarchitecture, arch string, macos bool,
	draft *target.Microarchitecture) (*target.Microarchitecture, error) {

	candidates := compatibleTargets(targets, arch, macos, draft)

	var generics []*target.Microarchitecture
	for _, c := range candidates {
		if c.Vendor == "generic" {
			generics = append(generics, c)
		}
	}
	floor := bestOf(generics)
	if floor == nil {
		return nil, uerrors.New(uerrors.ErrCodeUnsupported,
			fmt.Sprintf("no generic candidate for architecture %q", arch))
	}

	var restricted []*target.Microarchitecture
	for _, c := range candidates {
		if c.IsStrictSuperset(floor) {
			restricted = append(restricted, c)
		}
	}
	if best := bestOf(restricted); best != nil {
		return best, nil
	}
	return floor, nil
}

// compatibleTargets computes the candidate set: every known node of the
// detected family whose family-specific compatibility predicate holds
// against the draft.
func compatibleTargets(targets map[string]*target.Microarchitecture, arch string, macos bool,
	draft *target.Microarchitecture) []*target.Microarchitecture {
	switch arch {
	case "x86_64", "x86":
		return compatibleX86(targets, arch, draft)
	case "aarch64":
		return compatibleAarch64(targets, macos, draft)
	case "ppc64", "ppc64le":
		return compatiblePower(targets, arch, draft)
	case "riscv64":
		return compatibleRiscv64(targets, draft)
	default:
		return nil
	}
}

func compatibleX86(targets map[string]*target.Microarchitecture, arch string,
	draft *target.Microarchitecture) []*target.Microarchitecture {
	root, ok := targets[arch]
	if !ok {
		return nil
	}
	var out []*target.Microarchitecture
	for _, t := range targets {
		if (t == root || t.DescendantOf(root)) &&
			(t.Vendor == draft.Vendor || t.Vendor == "generic") &&
			t.Features.SubsetOf(draft.Features) {
			out = append(out, t)
		}
	}
	return out
}

func compatibleAarch64(targets map[string]*target.Microarchitecture, macos bool,
	draft *target.Microarchitecture) []*target.Microarchitecture {
	root, ok := targets["aarch64"]
	if !ok {
		return nil
	}

	// On macOS sysctl cannot enumerate CPU features, but the brand string
	// names the exact model; compatibility then means being that model or
	// one of its ancestors.
	var model *target.Microarchitecture
	if macos {
		if model, ok = targets[draft.Name]; !ok {
			return nil
		}
	}

	var out []*target.Microarchitecture
	for _, t := range targets {
		if t.Family() != root {
			continue
		}
		if t.Vendor != "generic" && t.Vendor != draft.Vendor {
			continue
		}
		if model != nil {
			if t == model || model.DescendantOf(t) {
				out = append(out, t)
			}
			continue
		}
		if t.Features.SubsetOf(draft.Features) {
			out = append(out, t)
		}
	}
	return out
}

func compatiblePower(targets map[string]*target.Microarchitecture, arch string,
	draft *target.Microarchitecture) []*target.Microarchitecture {
	root, ok := targets[arch]
	if !ok {
		return nil
	}
	var out []*target.Microarchitecture
	for _, t := range targets {
		if (t == root || t.DescendantOf(root)) && t.Generation <= draft.Generation {
			out = append(out, t)
		}
	}
	return out
}

func compatibleRiscv64(targets map[string]*target.Microarchitecture,
	draft *target.Microarchitecture) []*target.Microarchitecture {
	root, ok := targets["riscv64"]
	if !ok {
		return nil
	}
	var out []*target.Microarchitecture
	for _, t := range targets {
		if (t == root || t.DescendantOf(root)) &&
			(t.Name == draft.Name || t.Vendor == "generic") {
			out = append(out, t)
		}
	}
	return out
}

// bestOf returns the maximum node by (ancestor count, own feature count,
// name). Ancestor count approximates depth in a predominantly single
// inheritance tree; feature count disambiguates equal depths reached
// through multi-parent merges; the name keeps residual ties deterministic.
func bestOf(nodes []*target.Microarchitecture) *target.Microarchitecture {
	var best *target.Microarchitecture
	for _, n := range nodes {
		if best == nil || moreDerived(n, best) {
			best = n
		}
	}
	return best
}

func moreDerived(a, b *target.Microarchitecture) bool {
	if la, lb := len(a.Ancestors()), len(b.Ancestors()); la != lb {
		return la > lb
	}
	if la, lb := len(a.Features), len(b.Features); la != lb {
		return la > lb
	}
	return a.Name > b.Name
}
