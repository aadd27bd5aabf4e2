package cpuid

import (
	"bytes"
	"strings"
	"sync"

	"github.com/mchmarny/uarch/pkg/schema"
	"github.com/mchmarny/uarch/pkg/target"
)

// Registers holds the four 32-bit output registers of one CPUID query.
type Registers struct {
	EAX uint32
	EBX uint32
	ECX uint32
	EDX uint32
}

// Provider issues a CPUID query for the given leaf and sub-leaf.
type Provider interface {
	CPUID(leaf, subleaf uint32) Registers
}

// Snapshot is the decoded CPU identity: vendor string, optional brand
// string, and the set of detected feature names. CPU identity is invariant
// for a running process, so the hardware snapshot is computed at most once.
type Snapshot struct {
	// Vendor is the 12-byte vendor string from leaf 0 (e.g. "GenuineIntel").
	Vendor string

	// Brand is the human-readable brand string, empty when the CPU does not
	// support the brand leaves.
	Brand string

	// Features holds the names of all detected feature flags.
	Features target.FeatureSet
}

// brandLeafMax is the last of the three brand string leaves; brand decoding
// requires extended leaf support up to and including it.
const brandLeafMax = 0x80000004

// Detect reads the CPU identity through the given provider, driven by the
// embedded CPUID catalog. It has no side effects beyond the hardware query.
func Detect(p Provider) (*Snapshot, error) {
	doc, err := schema.LoadCPUID()
	if err != nil {
		return nil, err
	}

	regs := p.CPUID(doc.Vendor.Input.EAX, doc.Vendor.Input.ECX)
	highestBasic := regs.EAX
	vendor := string(leBytes(regs.EBX, regs.EDX, regs.ECX))

	regs = p.CPUID(doc.HighestExtensionSupport.Input.EAX, doc.HighestExtensionSupport.Input.ECX)
	highestExtension := regs.EAX

	features := target.FeatureSet{}
	scanFlags(p, doc.Flags, highestBasic, features)
	scanFlags(p, doc.ExtensionFlags, highestExtension, features)

	var brand string
	if highestExtension >= brandLeafMax {
		raw := make([]byte, 0, 48)
		for leaf := uint32(0x80000002); leaf <= brandLeafMax; leaf++ {
			r := p.CPUID(leaf, 0)
			raw = append(raw, leBytes(r.EAX, r.EBX, r.ECX, r.EDX)...)
		}
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		brand = strings.TrimSpace(string(raw))
	}

	return &Snapshot{
		Vendor:   vendor,
		Brand:    brand,
		Features: features,
	}, nil
}

// scanFlags tests every flag descriptor whose leaf is supported and inserts
// the names of the set bits into features.
func scanFlags(p Provider, flags []schema.CPUIDFlags, highest uint32, features target.FeatureSet) {
	for _, f := range flags {
		if f.Input.EAX > highest {
			continue
		}
		regs := p.CPUID(f.Input.EAX, f.Input.ECX)
		for _, b := range f.Bits {
			var reg uint32
			switch b.Register {
			case schema.RegisterEAX:
				reg = regs.EAX
			case schema.RegisterEBX:
				reg = regs.EBX
			case schema.RegisterECX:
				reg = regs.ECX
			case schema.RegisterEDX:
				reg = regs.EDX
			}
			if reg&(1<<b.Bit) != 0 {
				features.Add(b.Name)
			}
		}
	}
}

// leBytes concatenates the registers as little-endian byte sequences, the
// layout CPUID uses for its embedded ASCII strings.
func leBytes(regs ...uint32) []byte {
	out := make([]byte, 0, len(regs)*4)
	for _, r := range regs {
		out = append(out, byte(r), byte(r>>8), byte(r>>16), byte(r>>24))
	}
	return out
}

var hostSnapshot = sync.OnceValues(func() (*Snapshot, error) {
	return Detect(Hardware{})
})

// Host returns the memoized CPUID snapshot of the running machine. Only
// meaningful on x86 and x86_64; see Hardware.
func Host() (*Snapshot, error) {
	return hostSnapshot()
}
