package forward

import (
	"lareveal/internal/model"
	"lareveal/internal/sizeinv"
)

// Filters is the filter/pipeline glue of spec.md §2/§4.8: the set of
// predicates applied to every materialized specimen before it is
// emitted. A zero-value Filters matches everything.
type Filters struct {
	// Species restricts results to the listed species ids. Empty means
	// any species.
	Species []uint16

	// Natures restricts results to the listed nature indices. Empty
	// means any nature.
	Natures []uint8

	// Gender, when non-nil, requires an exact gender match.
	Gender *model.Gender

	// Alpha, when non-nil, requires the specimen's alpha flag to equal
	// its value.
	Alpha *bool

	// ShinyOnly requires any non-ShinyNone grade.
	ShinyOnly bool

	// SizeCandidates, when non-nil, requires (Height,Weight) to appear
	// in the set (see sizeinv.Contains); this is how an observed
	// displayed size from §4.4 is threaded into forward enumeration.
	SizeCandidates []sizeinv.HW

	// IVMin/IVMax, active only when HasIVRange is set, bound each of
	// the six IVs independently per spec.md §4.8's "IV ranges".
	HasIVRange bool
	IVMin      model.IVs
	IVMax      model.IVs

	// Dedup enables spec.md §4.9's shortest-path deduplication: only
	// the first-seen specimen for a given dedup key is emitted. The key
	// is (species, form, EC, PID) per spec.md §9(b)'s preference for
	// the wider key over the narrower (EC, PID) pair.
	Dedup bool
}

// Match reports whether s passes every active predicate.
func (f Filters) Match(s model.Specimen) bool {
	if len(f.Species) > 0 && !containsU16(f.Species, s.Species) {
		return false
	}
	if len(f.Natures) > 0 && !containsU8(f.Natures, s.Nature) {
		return false
	}
	if f.Gender != nil && *f.Gender != s.Gender {
		return false
	}
	if f.Alpha != nil && *f.Alpha != s.Alpha {
		return false
	}
	if f.ShinyOnly && s.Shiny == model.ShinyNone {
		return false
	}
	if f.SizeCandidates != nil && !sizeinv.Contains(f.SizeCandidates, s.Height, s.Weight) {
		return false
	}
	if f.HasIVRange {
		for i := range s.IVs {
			if s.IVs[i] < f.IVMin[i] || s.IVs[i] > f.IVMax[i] {
				return false
			}
		}
	}
	return true
}

func containsU16(xs []uint16, v uint16) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsU8(xs []uint8, v uint8) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// dedupKey identifies a specimen for §4.9 deduplication.
type dedupKey struct {
	species uint16
	form    uint8
	ec      uint32
	pid     uint32
}

func keyOf(s model.Specimen) dedupKey {
	return dedupKey{species: s.Species, form: s.Form, ec: s.EC, pid: s.PID}
}
