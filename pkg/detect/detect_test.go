package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/uarch/pkg/cpuid"
	uerrors "github.com/mchmarny/uarch/pkg/errors"
)

// fakeCPUID answers CPUID queries from a canned table.
type fakeCPUID map[[2]uint32]cpuid.Registers

func (f fakeCPUID) CPUID(leaf, subleaf uint32) cpuid.Registers {
	return f[[2]uint32{leaf, subleaf}]
}

const linuxIntelHaswell = `processor	: 0
vendor_id	: GenuineIntel
model name	: Intel(R) Core(TM) i7-4770 CPU @ 3.40GHz
flags		: fpu cmov mmx sse sse2 ssse3 cx16 lahf_lm popcnt sse4_1 sse4_2 abm avx avx2 bmi1 bmi2 f16c fma movbe xsave aes pclmulqdq
`

const linuxArmNeoverseN1 = `processor	: 0
Features	: fp asimd asimdrdm atomics fphp asimdhp dcpop asimddp lrcpc
CPU implementer	: 0x41
CPU part	: 0xd0c
`

const linuxPower9 = `processor	: 0
cpu		: POWER9 (architected), altivec supported
`

const linuxSiFive = `processor	: 0
hart		: 0
uarch		: sifive,u74-mc
`

func mustDetect(t *testing.T, opts ...Option) string {
	t.Helper()
	got, err := New(opts...).Detect()
	require.NoError(t, err)
	return got.Name
}

func withCPUInfoText(t *testing.T, text string) Option {
	t.Helper()
	info, err := ParseCPUInfoString(text)
	require.NoError(t, err)
	return WithCPUInfo(info)
}

func TestDetectLinuxIntel(t *testing.T) {
	name := mustDetect(t,
		WithTargetOS("linux"),
		WithTargetArch("x86_64"),
		withCPUInfoText(t, linuxIntelHaswell),
	)
	assert.Equal(t, "haswell", name)
}

func TestDetectLinuxArm(t *testing.T) {
	name := mustDetect(t,
		WithTargetOS("linux"),
		WithTargetArch("aarch64"),
		withCPUInfoText(t, linuxArmNeoverseN1),
	)
	assert.Equal(t, "neoverse_n1", name)
}

func TestDetectLinuxPower(t *testing.T) {
	name := mustDetect(t,
		WithTargetOS("linux"),
		WithTargetArch("ppc64le"),
		withCPUInfoText(t, linuxPower9),
	)
	assert.Equal(t, "power9le", name)
}

func TestDetectLinuxRiscv(t *testing.T) {
	name := mustDetect(t,
		WithTargetOS("linux"),
		WithTargetArch("riscv64"),
		withCPUInfoText(t, linuxSiFive),
	)
	assert.Equal(t, "u74mc", name)
}

func TestDetectDarwinAppleSilicon(t *testing.T) {
	// No architecture override: the brand string alone must steer the
	// resolution to aarch64, which also covers Rosetta-translated
	// processes where uname reports x86_64.
	name := mustDetect(t,
		WithTargetOS("darwin"),
		WithSysctlProvider(fakeSysctl{"machdep.cpu.brand_string": "Apple M2"}),
	)
	assert.Equal(t, "m2", name)
}

func TestDetectDarwinIntel(t *testing.T) {
	name := mustDetect(t,
		WithTargetOS("darwin"),
		WithSysctlProvider(fakeSysctl{
			"machdep.cpu.brand_string": "Intel(R) Core(TM) i5-5257U",
			"machdep.cpu.vendor":       "GenuineIntel",
			"machdep.cpu.features":     "FPU CMOV MMX SSE SSE2 SSSE3 SSE4.1 SSE4.2 CX16 LAHF",
		}),
	)
	// The probed feature level proves x86-64-v2; nehalem is the matching
	// vendor node at that level.
	assert.Equal(t, "nehalem", name)
}

func TestDetectWindows(t *testing.T) {
	cpu := fakeCPUID{
		{0, 0}: {EAX: 0x7, EBX: 0x756e6547, EDX: 0x49656e69, ECX: 0x6c65746e},
		{1, 0}: {EDX: 0x06808000, ECX: 0x00982200},

		{0x80000000, 0}: {EAX: 0x80000004},
		{0x80000001, 0}: {ECX: 0x1},
	}
	name := mustDetect(t,
		WithTargetOS("windows"),
		WithTargetArch("x86_64"),
		WithCPUIDProvider(cpu),
	)
	assert.Equal(t, "nehalem", name)
}

func TestSnapshotFromMemoizesHardware(t *testing.T) {
	first, err := snapshotFrom(cpuid.Hardware{})
	require.NoError(t, err)
	second, err := snapshotFrom(cpuid.Hardware{})
	require.NoError(t, err)
	assert.Same(t, first, second, "hardware is read once per process")

	cpu := fakeCPUID{
		{0, 0}:          {EAX: 0x1, EBX: 0x756e6547, EDX: 0x49656e69, ECX: 0x6c65746e},
		{0x80000000, 0}: {},
	}
	a, err := snapshotFrom(cpu)
	require.NoError(t, err)
	b, err := snapshotFrom(cpu)
	require.NoError(t, err)
	assert.NotSame(t, a, b, "injected providers are queried directly")
	assert.Equal(t, "GenuineIntel", a.Vendor)
}

func TestDetectUnsupportedArch(t *testing.T) {
	_, err := New(
		WithTargetOS("linux"),
		WithTargetArch("sparc64"),
		WithCPUInfo(&CPUInfo{}),
	).Detect()
	require.Error(t, err)
	assert.True(t, uerrors.IsUnsupported(err))
}

func TestDetectUnsupportedOS(t *testing.T) {
	_, err := New(WithTargetOS("plan9")).Detect()
	require.Error(t, err)
	assert.True(t, uerrors.IsUnsupported(err))
}

func TestDetectIsDeterministic(t *testing.T) {
	opts := []Option{
		WithTargetOS("linux"),
		WithTargetArch("x86_64"),
		withCPUInfoText(t, linuxIntelHaswell),
	}
	first, err := New(opts...).Detect()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got, err := New(opts...).Detect()
		require.NoError(t, err)
		assert.Same(t, first, got)
	}
}

func TestProbeReturnsDraft(t *testing.T) {
	draft, err := New(
		WithTargetOS("linux"),
		WithTargetArch("x86_64"),
		withCPUInfoText(t, linuxIntelHaswell),
	).Probe()
	require.NoError(t, err)

	assert.Equal(t, "GenuineIntel", draft.Vendor)
	assert.True(t, draft.Features.Has("avx2"))
	assert.True(t, draft.Features.Has("fpu"))
}
