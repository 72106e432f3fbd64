package seedinv

import (
	"lareveal/internal/attrs"
	"lareveal/internal/gf2"
	"lareveal/internal/prng"
	"lareveal/internal/sizeinv"
)

// ivLinearMap returns the GF(2)-linear map the fixed RNG's attribute
// prefix induces on a candidate fixed seed: after re-seeding, the RNG
// draws EC, sidtid, shinyRolls PID rolls (all discarded here — they're
// 32-bit power-of-two draws that don't affect the six IV rolls that
// follow), then the six 5-bit IVs packed into a 30-bit vector. Every
// draw up to and including the IVs is a power-of-two NextRand, which
// never rejects, so the whole prefix is exactly linear in the seed —
// this is what makes the fixed-seed stage invertible at all. This also
// means a coset member's guaranteed-IV count must be 0: the forward
// generator's index-draw retry loop is not power-of-two-linear.
func ivLinearMap(shinyRolls int) gf2.LinearMap {
	return func(seed uint64) uint64 {
		r := prng.New(0, 0)
		r.ReInit(seed)
		r.Next()                      // EC
		r.Next()                      // sidtid
		for i := 0; i < shinyRolls; i++ {
			r.Next() // PID roll
		}
		var out uint64
		for i := 0; i < 6; i++ {
			out |= r.NextRand(32) << uint(5*i)
		}
		return out
	}
}

// BuildMatrix constructs the gf2 system for a given shiny-roll count.
// This is the Go analogue of the kernel-constant substitution spec.md
// §6 names (SEED_MAT/NULL_SPACE/IV_CONST): rather than building device
// kernel source text, it builds the compute.KernelSpec fields directly
// (see compute/backend.go).
func BuildMatrix(shinyRolls int) *gf2.System {
	return gf2.BuildSystem(ivLinearMap(shinyRolls), 30)
}

// FindFixedSeeds enumerates the null-space coset implied by obs's IVs
// and verifies each candidate against every other observed attribute,
// per spec.md §4.5 steps (a)-(g). steps is accepted for interface
// parity with the device-parallel signature in spec.md §6 but has no
// effect here: EnumerateCoset already walks the whole coset in one
// host-side pass (see gf2.EnumerateCoset's doc comment).
func FindFixedSeeds(obs Observation, steps int) ([]uint64, error) {
	sys := BuildMatrix(obs.ShinyRolls)
	particular := sys.ParticularSolution(packIVs(obs.IVs))
	basis := sys.NullSpace()

	var results []uint64
	var verifyErr error
	gf2.EnumerateCoset(particular, basis, func(seed uint64) bool {
		ok, err := verifyFixed(seed, obs)
		if err != nil {
			verifyErr = err
			return false
		}
		if ok {
			results = append(results, seed)
		}
		return true
	})
	if verifyErr != nil {
		return nil, verifyErr
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}
	return results, nil
}

// verifyFixed replays the fixed RNG's full attribute order from a
// candidate seed and checks it against every field of obs, per
// spec.md §4.5. A false return means "reject, try the next candidate";
// a non-nil error means the self-check in step (c) failed, which
// spec.md §7 treats as fatal rather than an ordinary rejection.
func verifyFixed(seed uint64, obs Observation) (bool, error) {
	// guaranteedIVs is always 0 here: ivLinearMap above assumes the six
	// IV draws are plain next_rand(32) rolls with no preceding
	// rejection-sampling index draws, so a slot's guaranteed-IV count
	// (if any) cannot be threaded through this verification path
	// without breaking the coset this function is enumerating.
	draw := attrs.FromFixedSeed(seed, obs.ShinyRolls, 0, obs.Personal, obs.BasculinGenderOverride)

	if draw.IVs != obs.IVs {
		// By construction every coset member reproduces the observed
		// IVs exactly; a mismatch means the gf2 system itself is wrong.
		return false, &VerificationError{Seed: seed, Field: "ivs", Want: obs.IVs, Got: draw.IVs}
	}
	if obs.Personal.TwoAbilities() && draw.Ability != obs.Ability {
		return false, nil
	}
	if draw.Gender != obs.Gender {
		return false, nil
	}
	if draw.Nature != obs.Nature {
		return false, nil
	}
	if !sizeinv.Contains(obs.SizeCandidates, draw.Height, draw.Weight) {
		return false, nil
	}
	return true, nil
}
