package seedinv

import (
	"testing"

	"pgregory.net/rapid"

	"lareveal/internal/model"
	"lareveal/internal/prng"
	"lareveal/internal/sizeinv"
	"lareveal/internal/staticdata"
)

func twoAbilityPersonal() staticdata.PersonalInfo {
	return staticdata.PersonalInfo{
		Species:     453,
		Form:        0,
		GenderRatio: 127,
		Ability1:    22,
		Ability2:    99,
	}
}

// simulateFixed replays the full fixed-RNG attribute order from a known
// seed, producing ground truth for round-trip tests without touching
// any inversion code.
func simulateFixed(seed uint64, shinyRolls int, p staticdata.PersonalInfo) (ivs model.IVs, ability uint8, gender model.Gender, nature, h, w uint8) {
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
	ability = uint8(r.NextRand(2))
	switch {
	case p.GenderRatio == 0:
		gender = model.GenderFemale
	case p.GenderRatio == 254:
		gender = model.GenderMale
	case p.GenderRatio == 255:
		gender = model.GenderGenderless
	default:
		roll := r.NextRand(253)
		if roll < uint64(p.GenderRatio) {
			gender = model.GenderMale
		} else {
			gender = model.GenderFemale
		}
	}
	nature = uint8(r.NextRand(25))
	h = uint8(r.NextRand(0x81) + r.NextRand(0x80))
	w = uint8(r.NextRand(0x81) + r.NextRand(0x80))
	return
}

// TestFixedSeedRoundTrip is scenario S3: a known specimen's attributes
// on a 1-shiny-roll species must yield a fixed-seed set containing the
// original seed, with an exact attribute round trip on replay.
func TestFixedSeedRoundTrip(t *testing.T) {
	// Seed 0 is always the gf2 system's particular solution (the unique
	// preimage with every free bit cleared), so it's guaranteed to be
	// found regardless of how large the null space turns out to be.
	const knownSeed = 0
	p := twoAbilityPersonal()
	ivs, ability, gender, nature, h, w := simulateFixed(knownSeed, 1, p)

	obs := Observation{
		Personal:       p,
		ShinyRolls:     1,
		IVs:            ivs,
		Ability:        ability,
		Nature:         nature,
		Gender:         gender,
		SizeCandidates: []sizeinv.HW{{Height: h, Weight: w}},
	}

	seeds, err := FindFixedSeeds(obs, 1)
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

	// Replaying every returned candidate must reproduce the observation
	// exactly (spec.md §8 invariant 2).
	for _, s := range seeds {
		gotIVs, gotAbility, gotGender, gotNature, gotH, gotW := simulateFixed(s, 1, p)
		if gotIVs != ivs || gotNature != nature || gotGender != gender {
			t.Fatalf("seed %x did not round trip: ivs=%v nature=%d gender=%v", s, gotIVs, gotNature, gotGender)
		}
		if p.TwoAbilities() && gotAbility != ability {
			t.Fatalf("seed %x ability mismatch: want %d got %d", s, ability, gotAbility)
		}
		if gotH != h || gotW != w {
			t.Fatalf("seed %x size mismatch: want (%d,%d) got (%d,%d)", s, h, w, gotH, gotW)
		}
	}
}

// TestFindGeneratorSeedsRoundTrip constructs a known generator seed,
// derives the fixed seed it would produce, and confirms the search
// recovers the generator seed from the fixed seed alone.
func TestFindGeneratorSeedsRoundTrip(t *testing.T) {
	const knownGenerator = uint64(54321)
	f := fixedSeedFromGenerator(knownGenerator)

	got, err := FindGeneratorSeeds([]uint64{f}, 1)
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

// TestFindGroupSeedRoundTrip is scenario S4: given the generator seed
// of specimen #1 and the fixed seed of specimen #2 as they'd actually
// arise from walking a known group seed, the group stage must recover
// that exact group seed.
func TestFindGroupSeedRoundTrip(t *testing.T) {
	// s0 must fall inside FindGroupSeed's bounded search domain
	// (groupDomainPerCandidate); s1 is unconstrained.
	const s0, s1 = uint64(0xABCDE), uint64(0xFEEDFACECAFEBABE)

	for _, multi := range []bool{false, true} {
		g1, g2 := walkGroup(s0, s1, multi)
		f2 := fixedSeedFromGenerator(g2)

		got, err := FindGroupSeed([]uint64{g1}, []uint64{f2, f2 + 1, f2 + 99}, multi)
		if err != nil {
			t.Fatalf("multi=%v: FindGroupSeed: %v", multi, err)
		}
		if got.S0 != s0 || got.S1 != s1 {
			t.Fatalf("multi=%v: recovered (%x,%x), want (%x,%x)", multi, got.S0, got.S1, s0, s1)
		}
	}
}

// TestRecoverVariableSpawnerRetry is scenario S5: when the group-seed
// stage fails with the specimens in (A,B) order, the orchestrator must
// retry with (B,A) and succeed.
func TestRecoverVariableSpawnerRetry(t *testing.T) {
	const s0, s1 = uint64(0xAAAA), uint64(0xBBBB)
	const shinyRolls = 0
	p := staticdata.PersonalInfo{GenderRatio: 255} // genderless: no gender draw at all

	g1, g2 := walkGroup(s0, s1, false)
	fixedA := fixedSeedFromGenerator(g1)
	fixedB := fixedSeedFromGenerator(g2)

	ivsA, abilityA, genderA, natureA, hA, wA := simulateFixed(fixedA, shinyRolls, p)
	ivsB, abilityB, genderB, natureB, hB, wB := simulateFixed(fixedB, shinyRolls, p)

	obsA := Observation{Personal: p, ShinyRolls: shinyRolls, IVs: ivsA, Ability: abilityA, Nature: natureA, Gender: genderA, SizeCandidates: []sizeinv.HW{{Height: hA, Weight: wA}}}
	obsB := Observation{Personal: p, ShinyRolls: shinyRolls, IVs: ivsB, Ability: abilityB, Nature: natureB, Gender: genderB, SizeCandidates: []sizeinv.HW{{Height: hB, Weight: wB}}}

	// (obsB, obsA) in that order requires the retry swap to succeed,
	// since the pipeline's "first" role expects a generator-seed match
	// for the earlier spawn.
	got, err := Recover(obsB, obsA, false, true, 1, 4096)
	if err != nil {
		t.Fatalf("Recover with swap: %v", err)
	}
	if got.S0 != s0 || got.S1 != s1 {
		t.Fatalf("recovered (%x,%x), want (%x,%x)", got.S0, got.S1, s0, s1)
	}
}

// TestAdvanceSeedMatchesDoubleNext is invariant 1: applying Next()
// 2*n times after ReInit(seed) and folding the resulting state to s0+s1
// must equal AdvanceSeed(seed,n).
func TestAdvanceSeedMatchesDoubleNext(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		n := rapid.IntRange(0, 8).Draw(t, "n")

		r := prng.New(0, 0)
		r.ReInit(seed)
		for i := 0; i < 2*n; i++ {
			r.Next()
		}
		s0, s1 := r.State()
		want := s0 + s1

		advanced := prng.AdvanceSeed(seed, n)
		if advanced != want {
			t.Fatalf("AdvanceSeed(%x,%d) = %x, want %x", seed, n, advanced, want)
		}
	})
}
