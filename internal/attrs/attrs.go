// Package attrs holds the single fixed-RNG attribute draw sequence that
// both the seed-inversion pipeline's verification step (internal/seedinv)
// and the forward generator's specimen materialization (internal/forward)
// drive, per spec.md §4.8's "three engines share the inner
// specimen-materialization logic of §4.5/§4.6". Keeping one copy of the
// draw order is what makes the two sides of the pipeline (inversion and
// generation) provably consistent with each other.
package attrs

import (
	"lareveal/internal/model"
	"lareveal/internal/prng"
	"lareveal/internal/staticdata"
)

// Draw is the full result of replaying a fixed seed's attribute prefix:
// every value an inversion candidate is checked against, or a forward
// generation node emits as a specimen's attributes.
type Draw struct {
	EC      uint32
	PID     uint32
	Shiny   model.ShinyGrade
	IVs     model.IVs
	Ability uint8
	Gender  model.Gender
	Nature  uint8
	Height  uint8
	Weight  uint8
}

// FromFixedSeed re-seeds a fixed RNG from seed and replays the full
// attribute order of spec.md §4.1/§4.5: EC, sidtid, shinyRolls PID
// rolls (keeping the first shiny hit, or the last roll if none is
// shiny), six IVs, ability, gender, nature, height, and weight.
// guaranteedIVs is the slot's guaranteed-31 count (0 if not
// applicable): that many IV positions are drawn as next_rand(6)
// indices with a collision retry before the remaining positions fill
// with the usual next_rand(32) roll (generator.py:101-109).
//
// Every draw happens unconditionally and in this exact order regardless
// of outcome (e.g. a shiny hit on an early roll does not skip later
// rolls), which is what keeps the prefix's consumption count fixed and
// therefore keeps the six IV draws linear in the seed for the gf2
// kernel (internal/gf2, internal/seedinv) — which is also why
// guaranteedIVs must always be 0 on that call path: the index-draw
// loop's rejection sampling is not linear over GF(2).
func FromFixedSeed(seed uint64, shinyRolls int, guaranteedIVs uint8, p staticdata.PersonalInfo, basculinOverride *model.Gender) Draw {
	r := prng.New(0, 0)
	r.ReInit(seed)

	ec := uint32(r.Next())
	sidtid := uint32(r.Next())

	var pid uint32
	shiny := model.ShinyNone
	sawShiny := false
	for i := 0; i < shinyRolls; i++ {
		cand := uint32(r.Next())
		if sawShiny {
			continue
		}
		grade := shinyGrade(cand, sidtid)
		if grade != model.ShinyNone {
			pid, shiny, sawShiny = cand, grade, true
		} else {
			pid = cand
		}
	}

	var ivs model.IVs
	for i := 0; i < int(guaranteedIVs) && i < len(ivs); i++ {
		index := int(r.NextRand(6))
		for ivs[index] != 0 {
			index = int(r.NextRand(6))
		}
		ivs[index] = 31
	}
	for i := range ivs {
		if ivs[i] == 0 {
			ivs[i] = uint8(r.NextRand(32))
		}
	}

	ability := uint8(r.NextRand(2))

	var gender model.Gender
	switch {
	case basculinOverride != nil:
		gender = *basculinOverride
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

	nature := uint8(r.NextRand(25))
	height := uint8(r.NextRand(0x81) + r.NextRand(0x80))
	weight := uint8(r.NextRand(0x81) + r.NextRand(0x80))

	return Draw{
		EC: ec, PID: pid, Shiny: shiny, IVs: ivs,
		Ability: ability, Gender: gender, Nature: nature,
		Height: height, Weight: weight,
	}
}

// two64 is 2^64, used to normalize a raw 64-bit draw into [0,1) for slot
// selection; it is exactly representable as a float64 so the division
// below loses no precision beyond the raw draw's own 64 bits.
const two64 = 1 << 64

// GeneratorDraw replays the two emissions a generator seed produces
// per spec.md §4.1/§4.6: re-seed, emit one value consumed by slot
// selection (normalized here to the [0,1) draw EncounterTable.CalcSlot
// expects), then emit the value that becomes the fixed seed. Both the
// forward generator's per-node materialization and the seed-inversion
// pipeline's generator-seed stage replay this exact pair of emissions,
// which is why it lives here rather than in either caller's package.
func GeneratorDraw(generatorSeed uint64) (slotU01 float64, fixedSeed uint64) {
	r := prng.New(0, 0)
	r.ReInit(generatorSeed)
	slotU01 = float64(r.Next()) / two64
	fixedSeed = r.Next()
	return slotU01, fixedSeed
}

// shinyGrade applies the PID/sidtid XOR rule: 0 is square, 1..15 is
// star, anything else is not shiny. sidtid is the fixed RNG's own
// second draw (generator.py's "sidtid"), not a caller-supplied trainer
// value — both halves of the XOR come from the same fixed-seed replay.
func shinyGrade(pid, sidtid uint32) model.ShinyGrade {
	xor := uint16(pid>>16) ^ uint16(sidtid>>16) ^ uint16(pid&0xFFFF) ^ uint16(sidtid&0xFFFF)
	switch {
	case xor == 0:
		return model.ShinySquare
	case xor < 16:
		return model.ShinyStar
	default:
		return model.ShinyNone
	}
}
