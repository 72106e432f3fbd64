package seedinv

import "lareveal/internal/attrs"

// slicesPerStep and the 3D (256x256x256) domain it's paired with mirror
// spec.md §4.6's device work-domain sizing: one "slice" of the outer
// dimension is 256x256 = 65536 candidates, and steps controls how many
// slices one call searches before returning.
const slicesPerStep = 256 * 256

// fixedSeedFromGenerator replays the two emissions spec.md §4.1 and
// §4.6 describe a generator seed producing, via attrs.GeneratorDraw
// (the same replay the forward generator's node materialization uses),
// discarding the slot-selection draw this stage has no use for.
func fixedSeedFromGenerator(generatorSeed uint64) uint64 {
	_, fixedSeed := attrs.GeneratorDraw(generatorSeed)
	return fixedSeed
}

// FindGeneratorSeeds searches generator seeds whose second emission
// (see fixedSeedFromGenerator) matches any of fixedSeeds, per spec.md
// §4.6. The search walks g over [0, slicesPerStep*steps) — the same
// bounded, device-occupancy-sized domain the kernel-build constants
// describe rather than the full 64-bit space, since the stage is a
// brute-force equality search, not an analytic inversion like the
// fixed-seed stage's gf2 system.
func FindGeneratorSeeds(fixedSeeds []uint64, steps int) ([]uint64, error) {
	if steps <= 0 {
		steps = 1
	}
	target := make(map[uint64]bool, len(fixedSeeds))
	for _, f := range fixedSeeds {
		target[f] = true
	}

	domain := uint64(slicesPerStep) * uint64(steps)
	// expected count sized at 1.5x per spec.md §4.6's memory guarantee;
	// the buffer still grows past this via append if the search domain
	// turns out richer than expected.
	results := make([]uint64, 0, (len(fixedSeeds)*3)/2+1)
	for g := uint64(0); g < domain; g++ {
		if target[fixedSeedFromGenerator(g)] {
			results = append(results, g)
		}
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}
	return results, nil
}
