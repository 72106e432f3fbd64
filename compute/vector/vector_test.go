package vector_test

import (
	"testing"

	"lareveal/compute"
	"lareveal/compute/vector"
	"lareveal/internal/gf2"
	"lareveal/internal/model"
	"lareveal/internal/prng"
	"lareveal/internal/sizeinv"
)

// ivLinearMap mirrors seedinv.ivLinearMap: the fixed RNG's prefix up to
// and including the six IV draws, the GF(2)-linear map the coset search
// inverts.
func ivLinearMap(shinyRolls int) gf2.LinearMap {
	return func(seed uint64) uint64 {
		r := prng.New(0, 0)
		r.ReInit(seed)
		r.Next()
		r.Next()
		for i := 0; i < shinyRolls; i++ {
			r.Next()
		}
		var out uint64
		for i := 0; i < 6; i++ {
			out |= r.NextRand(32) << uint(5*i)
		}
		return out
	}
}

func simulateFixed(seed uint64, shinyRolls int) (ivs model.IVs, nature, h, w uint8) {
	r := prng.New(0, 0)
	r.ReInit(seed)
	r.Next() // EC
	r.Next() // sidtid
	for i := 0; i < shinyRolls; i++ {
		r.Next()
	}
	for i := range ivs {
		ivs[i] = uint8(r.NextRand(32))
	}
	r.NextRand(2) // ability
	// no gender draw: the test species is genderless
	nature = uint8(r.NextRand(25))
	h = uint8(r.NextRand(0x81) + r.NextRand(0x80))
	w = uint8(r.NextRand(0x81) + r.NextRand(0x80))
	return
}

// TestFindFixedSeedsRoundTrip confirms the parallelized backend recovers
// exactly the same coset a direct host search would (seed 0 is always
// the gf2 system's particular solution, per seedinv's own round-trip
// test).
func TestFindFixedSeedsRoundTrip(t *testing.T) {
	const knownSeed = 0
	const shinyRolls = 1
	ivs, nature, h, w := simulateFixed(knownSeed, shinyRolls)

	sys := gf2.BuildSystem(ivLinearMap(shinyRolls), 30)
	var packed uint64
	for i, v := range ivs {
		packed |= uint64(v) << uint(5*i)
	}

	spec := compute.KernelSpec{
		ShinyRolls:  shinyRolls,
		IVConst:     sys.ParticularSolution(packed),
		SeedMat:     sys,
		NullSpace:   sys.NullSpace(),
		IVs:         ivs,
		GenderRatio: 255, // genderless: no gender draw to satisfy
		Gender:      model.GenderGenderless,
		Nature:      nature,
		Sizes:       []sizeinv.HW{{Height: h, Weight: w}},
	}

	b := vector.New()
	seeds, err := b.FindFixedSeeds(spec, 1)
	if err != nil {
		t.Fatalf("FindFixedSeeds: %v", err)
	}
	found := false
	for _, s := range seeds {
		if s == knownSeed {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected seed set %x to contain original seed %x", seeds, uint64(knownSeed))
	}
}

// TestFindGeneratorSeedsRoundTrip mirrors seedinv's generator-seed round
// trip test against the worker-pool backend.
func TestFindGeneratorSeedsRoundTrip(t *testing.T) {
	const knownGenerator = uint64(54321)
	_, fixedSeed := func() (float64, uint64) {
		r := prng.New(0, 0)
		r.ReInit(knownGenerator)
		slot := float64(r.Next()) / (1 << 64)
		return slot, r.Next()
	}()

	b := vector.New()
	got, err := b.FindGeneratorSeeds([]uint64{fixedSeed}, 1)
	if err != nil {
		t.Fatalf("FindGeneratorSeeds: %v", err)
	}
	found := false
	for _, g := range got {
		if g == knownGenerator {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected generator seed set %v to contain %d", got, knownGenerator)
	}
}

// TestFindGroupSeedRoundTrip mirrors seedinv's group-seed round trip
// test, confirming the chunked-by-candidate parallel search still
// recovers the exact seed a sequential scan would.
func TestFindGroupSeedRoundTrip(t *testing.T) {
	const s0, s1 = uint64(0xABCDE), uint64(0xFEEDFACECAFEBABE)

	for _, multi := range []bool{false, true} {
		r := prng.New(s0, s1)
		g1 := r.Next()
		if multi {
			r.Next()
			r.Next()
		}
		g2 := r.Next()

		rg := prng.New(0, 0)
		rg.ReInit(g2)
		rg.Next()
		f2 := rg.Next()

		b := vector.New()
		got, err := b.FindGroupSeed([]uint64{g1}, []uint64{f2, f2 + 1, f2 + 99}, multi)
		if err != nil {
			t.Fatalf("multi=%v: FindGroupSeed: %v", multi, err)
		}
		if got.S0 != s0 || got.S1 != s1 {
			t.Fatalf("multi=%v: recovered (%x,%x), want (%x,%x)", multi, got.S0, got.S1, s0, s1)
		}
	}
}

var _ compute.Backend = (*vector.Backend)(nil)
