package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uerrors "github.com/mchmarny/uarch/pkg/errors"
	"github.com/mchmarny/uarch/pkg/target"
)

// x86Graph builds a miniature x86_64 graph:
//
//	x86_64 -> v2 -> v3 (generic levels)
//	v2 -> gale -> storm (vendor "acme"; storm also derives from v3)
//	v2 -> rival (vendor "other")
func x86Graph() map[string]*target.Microarchitecture {
	root := target.Generic("x86_64")
	root.Features = target.NewFeatureSet("sse2")
	v2 := target.New("x86_64_v2", "generic", target.NewFeatureSet("sse4_2"),
		[]*target.Microarchitecture{root}, nil, 0)
	v3 := target.New("x86_64_v3", "generic", target.NewFeatureSet("avx2"),
		[]*target.Microarchitecture{v2}, nil, 0)
	gale := target.New("gale", "acme", target.NewFeatureSet("aes"),
		[]*target.Microarchitecture{v2}, nil, 0)
	storm := target.New("storm", "acme", target.NewFeatureSet("vaes"),
		[]*target.Microarchitecture{gale, v3}, nil, 0)
	rival := target.New("rival", "other", target.NewFeatureSet("aes"),
		[]*target.Microarchitecture{v2}, nil, 0)

	return map[string]*target.Microarchitecture{
		"x86_64": root, "x86_64_v2": v2, "x86_64_v3": v3,
		"gale": gale, "storm": storm, "rival": rival,
	}
}

func draftOf(vendor string, features ...string) *target.Microarchitecture {
	return &target.Microarchitecture{
		Vendor:   vendor,
		Features: target.NewFeatureSet(features...),
	}
}

func TestResolvePicksMostDerivedVendorNode(t *testing.T) {
	targets := x86Graph()

	got, err := resolve(targets, "x86_64", false,
		draftOf("acme", "sse2", "sse4_2", "avx2", "aes", "vaes"))
	require.NoError(t, err)
	assert.Same(t, targets["storm"], got)
}

func TestResolveFallsBackToGenericFloor(t *testing.T) {
	targets := x86Graph()

	// No vendor node ships these features, so the generic level wins.
	got, err := resolve(targets, "x86_64", false, draftOf("unknown-vendor", "sse2", "sse4_2"))
	require.NoError(t, err)
	assert.Same(t, targets["x86_64_v2"], got)
}

func TestResolveDiscardsSiblingBranches(t *testing.T) {
	targets := x86Graph()

	// A draft lacking avx2 floors at v2; gale belongs to another vendor and
	// is discarded, leaving rival as the only branch above the floor.
	got, err := resolve(targets, "x86_64", false, draftOf("other", "sse2", "sse4_2", "aes"))
	require.NoError(t, err)
	assert.Same(t, targets["rival"], got)
}

func TestResolveToleratesDisabledNicheFeature(t *testing.T) {
	targets := x86Graph()

	// The draft carries everything storm needs except avx2 (toggled off at
	// firmware level). Storm still wins: it only has to be a strict
	// superset of the proven generic floor, not of every probed bit.
	got, err := resolve(targets, "x86_64", false,
		draftOf("acme", "sse2", "sse4_2", "aes", "vaes"))
	require.NoError(t, err)
	assert.Same(t, targets["storm"], got)
}

func TestResolveVendorMismatchStaysGeneric(t *testing.T) {
	targets := x86Graph()

	got, err := resolve(targets, "x86_64", false,
		draftOf("other", "sse2", "sse4_2", "avx2", "aes", "vaes"))
	require.NoError(t, err)

	// rival matches, but the v3 floor excludes it: rival does not descend
	// from v3, so the floor itself is the answer.
	assert.Same(t, targets["x86_64_v3"], got)
}

func TestResolveUnknownFamily(t *testing.T) {
	_, err := resolve(x86Graph(), "sparc64", false, draftOf("generic"))
	require.Error(t, err)
	assert.True(t, uerrors.IsUnsupported(err))
}

func TestResolveIsDeterministic(t *testing.T) {
	targets := x86Graph()
	draft := draftOf("acme", "sse2", "sse4_2", "avx2", "aes", "vaes")

	first, err := resolve(targets, "x86_64", false, draft)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		got, err := resolve(targets, "x86_64", false, draft)
		require.NoError(t, err)
		assert.Same(t, first, got)
	}
}

func TestResolveVendorNodeAboveFloor(t *testing.T) {
	// A vendor node hanging off a mid-level generic target: the node wins
	// when its features are probed, and the generic level absorbs the
	// result when they are not.
	root := target.Generic("x86_64")
	v2 := target.New("x86_64_v2", "generic", target.NewFeatureSet("sse", "sse2"),
		[]*target.Microarchitecture{root}, nil, 0)
	v3 := target.New("x86_64_v3", "generic", target.NewFeatureSet("avx2"),
		[]*target.Microarchitecture{v2}, nil, 0)
	icelake := target.New("icelake", "GenuineIntel", target.NewFeatureSet("avx"),
		[]*target.Microarchitecture{v2}, nil, 0)
	targets := map[string]*target.Microarchitecture{
		"x86_64": root, "x86_64_v2": v2, "x86_64_v3": v3, "icelake": icelake,
	}

	got, err := resolve(targets, "x86_64", false, draftOf("GenuineIntel", "sse", "sse2", "avx"))
	require.NoError(t, err)
	assert.Same(t, icelake, got)

	got, err = resolve(targets, "x86_64", false, draftOf("GenuineIntel", "sse", "sse2"))
	require.NoError(t, err)
	assert.Same(t, v2, got)
}

func TestResolvePowerGenerations(t *testing.T) {
	root := target.Generic("ppc64le")
	g8 := target.New("power8le", "IBM", target.FeatureSet{},
		[]*target.Microarchitecture{root}, nil, 8)
	g9 := target.New("power9le", "IBM", target.FeatureSet{},
		[]*target.Microarchitecture{g8}, nil, 9)
	targets := map[string]*target.Microarchitecture{
		"ppc64le": root, "power8le": g8, "power9le": g9,
	}

	draft := &target.Microarchitecture{Vendor: "generic", Features: target.FeatureSet{}, Generation: 8}
	got, err := resolve(targets, "ppc64le", false, draft)
	require.NoError(t, err)
	assert.Same(t, g8, got)

	draft.Generation = 20
	got, err = resolve(targets, "ppc64le", false, draft)
	require.NoError(t, err)
	assert.Same(t, g9, got)
}

func TestMoreDerivedOrdering(t *testing.T) {
	targets := x86Graph()

	assert.True(t, moreDerived(targets["x86_64_v2"], targets["x86_64"]))
	assert.True(t, moreDerived(targets["storm"], targets["x86_64_v3"]))
	assert.False(t, moreDerived(targets["x86_64"], targets["gale"]))

	// Equal depth and feature count falls through to the name.
	assert.True(t, moreDerived(targets["rival"], targets["gale"]))
	assert.False(t, moreDerived(targets["gale"], targets["rival"]))
}
