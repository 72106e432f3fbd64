// Package sizeinv inverts a specimen's displayed height/weight back to
// the underlying byte pair(s) that could have produced it, per
// spec.md §4.4. The forward formula is species-specific (loaded from
// staticdata.PersonalInfo's base height/weight and rand-max scalars); the
// inverse is a brute-force scan over the byte domain, exactly as the
// reference tool does it, since the formula is piecewise and not worth
// inverting analytically for a one-shot lookup.
package sizeinv

import (
	"math"

	"lareveal/internal/staticdata"
)

// HW is one candidate (height byte, weight byte) pair.
type HW struct {
	Height uint8
	Weight uint8
}

// scale maps a byte in [0,255] and a percentage rand-max into a
// multiplicative factor centered on 1.0, the same shape of formula the
// reference tool's size_display uses for every species: the byte is
// recentered around its midpoint (128) and scaled by randMax/100.
func scale(b uint8, randMax uint8) float64 {
	return 1.0 + (float64(b)-128.0)/255.0*(float64(randMax)/100.0)
}

// HeightMeters and WeightKilograms compute the metric display values
// for a given (height, weight) byte pair under a species' personal
// info, per spec.md §4.4's "species-specific piecewise formula".
func HeightMeters(p staticdata.PersonalInfo, h uint8) float64 {
	return p.BaseHeight * scale(h, p.HeightRandMax)
}

func WeightKilograms(p staticdata.PersonalInfo, w uint8) float64 {
	return p.BaseWeight * scale(w, p.WeightRandMax)
}

// DisplayMetric renders the height/weight the way the in-game metric
// unit toggle would: meters and kilograms rounded to one decimal.
func DisplayMetric(p staticdata.PersonalInfo, h, w uint8) (heightM, weightKg float64) {
	return round1(HeightMeters(p, h)), round1(WeightKilograms(p, w))
}

// DisplayImperial renders height in total inches (feet'inches" is a
// front-end formatting concern, out of scope per spec.md §1) and
// weight in pounds, both rounded to one decimal.
func DisplayImperial(p staticdata.PersonalInfo, h, w uint8) (heightIn, weightLb float64) {
	m, kg := HeightMeters(p, h), WeightKilograms(p, w)
	return round1(m * 39.3701), round1(kg * 2.20462)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Invert enumerates every (height, weight) byte pair whose displayed
// size (metric or imperial, per the imperial flag) rounds to the
// observed values. Alpha specimens force height/weight to 255 at
// display time regardless of the underlying draw (spec.md §3), so for
// those the candidate set is unconstrained: every draw is consistent
// with the observation, and Invert returns nil to mean "no restriction"
// rather than enumerating a (still-vacuous) 65536-entry set.
func Invert(p staticdata.PersonalInfo, observedHeight, observedWeight float64, imperial, alpha bool) []HW {
	if alpha {
		return nil
	}

	var candidates []HW
	for h := 0; h <= 255; h++ {
		var dh float64
		if imperial {
			dh, _ = DisplayImperial(p, uint8(h), 0)
		} else {
			dh, _ = DisplayMetric(p, uint8(h), 0)
		}
		if !approxEqual(dh, observedHeight) {
			continue
		}
		for w := 0; w <= 255; w++ {
			var dw float64
			if imperial {
				_, dw = DisplayImperial(p, uint8(h), uint8(w))
			} else {
				_, dw = DisplayMetric(p, uint8(h), uint8(w))
			}
			if approxEqual(dw, observedWeight) {
				candidates = append(candidates, HW{Height: uint8(h), Weight: uint8(w)})
			}
		}
	}
	return candidates
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// Contains reports whether the pair is in the candidate set, treating a
// nil set (alpha, or "no size observation supplied") as unconstrained.
func Contains(candidates []HW, h, w uint8) bool {
	if candidates == nil {
		return true
	}
	for _, c := range candidates {
		if c.Height == h && c.Weight == w {
			return true
		}
	}
	return false
}

// Intersect narrows a running candidate set by another specimen's
// candidates sharing the same height/weight bytes, per spec.md §4.4:
// "When multiple specimens of the same species share height/weight,
// intersect the candidate sets." A nil running set means "no
// constraint yet" and simply adopts other; nil other leaves running
// unconstrained.
func Intersect(running, other []HW) []HW {
	if other == nil {
		return running
	}
	if running == nil {
		return other
	}
	var out []HW
	for _, r := range running {
		if Contains(other, r.Height, r.Weight) {
			out = append(out, r)
		}
	}
	return out
}
