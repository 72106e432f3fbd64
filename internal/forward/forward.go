// Package forward implements the path-enumeration engine of spec.md
// §4.8: given a recovered group seed and a spawner shape, it performs a
// depth-first walk of the reachable (advance, path) tree, materializing
// every specimen present at each node via the same attribute-draw order the
// seed-inversion pipeline verifies against (internal/attrs), and
// streams results through the worker harness (internal/worker).
package forward

import (
	"fmt"

	"lareveal/internal/attrs"
	"lareveal/internal/model"
	"lareveal/internal/prng"
	"lareveal/internal/staticdata"
	"lareveal/internal/worker"
)

// SpeciesInfo bundles the static-data facade with the one per-run
// parameter spec.md's attribute draw order needs but its own §6
// "species_info" name doesn't spell out: how many PID rolls the fixed
// RNG takes (shiny_rolls). Shininess itself is graded from the fixed
// RNG's own sidtid draw (internal/attrs), not a caller-supplied value.
type SpeciesInfo struct {
	Store      *staticdata.Store
	ShinyRolls int
}

// Result is one emitted row: spec.md §6's (advance, path, specimen)
// tuple.
type Result struct {
	Advance  int
	Path     model.Path
	Specimen model.Specimen
}

// StandardStartingPath returns the label for the standard engine's
// first root, per spec.md §4.8 and generator.py:56-66: (1,1) for a
// single spawner, (2,) for a double or a triple. A triple spawner
// actually has two independent roots sharing the group seed's starting
// state — (2,) and (3,) — rather than one path that concatenates both;
// GenerateStandard adds the second root itself when maxCount>=3, since
// a single model.Path return value can't carry two.
func StandardStartingPath(maxCount int) model.Path {
	if maxCount <= 1 {
		return model.Path{1, 1}
	}
	return model.Path{2}
}

// rootAdvanceKOs sums a root path's actions: the number of KO-spawn
// iterations the group seed's starting state is advanced by before the
// root node is resolved (generator.py:56-66's advance_seed(seed,1)
// applied twice for a single spawner, or advance_seed(seed,2)/(seed,3)
// for a double/triple root — both collapse to "advance by the sum of
// this path's actions" once the advance is expressed as a raw,
// continuously-walked group state rather than a re-seeded scalar).
func rootAdvanceKOs(path model.Path) int {
	var n int
	for _, a := range path {
		n += int(a)
	}
	return n
}

// VariableStartingPath returns the fixed (2,) prefix spec.md §4.8 names
// for the variable-count engine.
func VariableStartingPath() model.Path {
	return model.Path{2}
}

// materialize replays one spawn's emission chain from a generator
// seed: the generator-seed-role draw (slot selection, then the fixed
// seed) followed by the fixed RNG's full attribute order, per spec.md
// §4.1 and §4.5. This is the "three engines share the inner
// specimen-materialization logic" sentence of spec.md §4.8 made
// concrete — every engine in this file calls only this.
func materialize(generatorSeed uint64, info SpeciesInfo, table staticdata.EncounterTable, weather staticdata.Weather, tod staticdata.TimeOfDay) (model.Specimen, error) {
	u01, fixedSeed := attrs.GeneratorDraw(generatorSeed)
	slot := table.CalcSlot(u01, tod, weather)

	personal, ok := info.Store.PersonalInfo(slot.Species, slot.Form)
	if !ok {
		return model.Specimen{}, fmt.Errorf("forward: no personal info for species %d form %d", slot.Species, slot.Form)
	}

	var genderOverride *model.Gender
	if slot.FixedGender >= 0 {
		g := model.Gender(slot.FixedGender)
		genderOverride = &g
	}

	draw := attrs.FromFixedSeed(fixedSeed, info.ShinyRolls, slot.GuaranteedIVs, personal, genderOverride)
	specimen := model.Specimen{
		Species: slot.Species,
		Form:    slot.Form,
		Alpha:   slot.Alpha,
		EC:      draw.EC,
		PID:     draw.PID,
		IVs:     draw.IVs,
		Ability: draw.Ability,
		Gender:  draw.Gender,
		Nature:  draw.Nature,
		Shiny:   draw.Shiny,
		Height:  draw.Height,
		Weight:  draw.Weight,
	}
	specimen.ForceAlphaSize()
	return specimen, nil
}

// materializeSpawns walks the group RNG's raw, continuous state
// forward exactly count steps — one Next() per spawn, per spec.md
// §4.1's "for each spawn it emits one value that re-seeds a generator
// RNG" — materializing the specimen each step's emission produces.
// The group state is never re-seeded between these draws; only the
// returned specimens are collected, since a node's children derive
// from the node's own starting (s0,s1) pair independently of this walk
// (generator.py:75-155's local group_rng instance is never read back
// by the caller that popped group_seed off the queue).
func materializeSpawns(s0, s1 uint64, count int, info SpeciesInfo, table staticdata.EncounterTable, weather staticdata.Weather, tod staticdata.TimeOfDay) ([]model.Specimen, error) {
	if count <= 0 {
		return nil, nil
	}
	r := prng.New(s0, s1)
	specimens := make([]model.Specimen, 0, count)
	for i := 0; i < count; i++ {
		specimen, err := materialize(r.Next(), info, table, weather, tod)
		if err != nil {
			return nil, err
		}
		specimens = append(specimens, specimen)
	}
	return specimens, nil
}

// sink threads the three things every node touches regardless of which
// engine produced it: the worker's control block, the filter/dedup
// glue, and the bound every engine stops enumeration against.
type sink struct {
	control        *worker.ControlBlock
	emit           func(Result)
	filters        Filters
	seen           map[dedupKey]bool
	minAdv, maxAdv int
}

func newSink(control *worker.ControlBlock, emit func(Result), filters Filters, minAdv, maxAdv int) *sink {
	s := &sink{control: control, emit: emit, filters: filters, minAdv: minAdv, maxAdv: maxAdv}
	if filters.Dedup {
		s.seen = make(map[dedupKey]bool)
	}
	return s
}

// visitNode records one visited tree node, which may carry more than
// one materialized specimen (a double/triple/variable/outbreak spawner
// shows every creature present at that node, not just one). The
// progress counter ticks exactly once per node regardless of how many
// specimens it carries, per spec.md §4.8's "every visited node (not
// every specimen)"; each specimen is then run through the filter/dedup
// glue independently. Reports whether the caller observed cancellation
// and should stop expanding children.
func (s *sink) visitNode(advance int, path model.Path, specimens []model.Specimen) (cancelled bool) {
	s.control.Tick()
	if advance >= s.minAdv && advance < s.maxAdv {
		for _, specimen := range specimens {
			if !s.filters.Match(specimen) {
				continue
			}
			if s.seen == nil {
				s.emit(Result{Advance: advance, Path: path, Specimen: specimen})
			} else if k := keyOf(specimen); !s.seen[k] {
				s.seen[k] = true
				s.emit(Result{Advance: advance, Path: path, Specimen: specimen})
			}
		}
	}
	return s.control.Cancelled()
}

// tickOnly accounts for a visited tree node that carries no specimen
// of its own — a ghost resolution or a wave-clear action — without
// running it through the filter/dedup glue.
func (s *sink) tickOnly() (cancelled bool) {
	s.control.Tick()
	return s.control.Cancelled()
}

// GenerateStandard enumerates the single-spawner and fixed-count multi
// shapes of spec.md §4.8. Each root's starting state is the group
// seed's raw (S0,S1) advanced by that root's own KO-iteration count
// (rootAdvanceKOs), not a re-seeded scalar — this is what keeps the
// forward walk consistent with the continuous group-RNG state the
// group stage actually solved for (internal/seedinv's walkGroup). A
// triple spawner gets a second, independent root (3,) sharing the same
// starting state, per generator.py:56-66. At every node, all maxCount
// creatures present there are materialized, then for each k in
// 1..maxCount a child's state is advanced by k KO-spawn iterations from
// that node's own starting state and its advance total increases by k,
// stopping once advance would reach maxAdv. minAdv/maxAdv bound which
// advances are actually emitted (spec.md §4.8's general "max advance
// bound" input, made explicit here since the §6 signature table omits
// it for this engine's neighbors but every engine needs a concrete
// stopping rule).
func GenerateStandard(seed model.GroupSeed, startingPath model.Path, minAdv, maxAdv, maxCount int, table staticdata.EncounterTable, weather staticdata.Weather, tod staticdata.TimeOfDay, info SpeciesInfo, filters Filters, control *worker.ControlBlock, emit func(Result)) error {
	s := newSink(control, emit, filters, minAdv, maxAdv)

	s0, s1 := prng.AdvanceGroup(seed.S0, seed.S1, rootAdvanceKOs(startingPath))
	if err := standardNode(s0, s1, startingPath, 0, maxAdv, maxCount, table, weather, tod, info, s); err != nil {
		return err
	}

	if maxCount >= 3 {
		t0, t1 := prng.AdvanceGroup(seed.S0, seed.S1, 3)
		if err := standardNode(t0, t1, model.Path{3}, 0, maxAdv, maxCount, table, weather, tod, info, s); err != nil {
			return err
		}
	}
	return nil
}

func standardNode(s0, s1 uint64, path model.Path, advance, maxAdv, maxCount int, table staticdata.EncounterTable, weather staticdata.Weather, tod staticdata.TimeOfDay, info SpeciesInfo, s *sink) error {
	specimens, err := materializeSpawns(s0, s1, maxCount, info, table, weather, tod)
	if err != nil {
		return err
	}
	if s.visitNode(advance, path, specimens) {
		return nil
	}
	for k := 1; k <= maxCount; k++ {
		newAdvance := advance + k
		if newAdvance >= maxAdv {
			continue
		}
		cs0, cs1 := prng.AdvanceGroup(s0, s1, k)
		childPath := path.Append(model.Action(k))
		if err := standardNode(cs0, cs1, childPath, newAdvance, maxAdv, maxCount, table, weather, tod, info, s); err != nil {
			return err
		}
	}
	return nil
}

// GenerateMassOutbreak enumerates the mass-outbreak shape of spec.md
// §4.8: firstWaveCount single KOs are always resolved first — all but
// the last silently, via AdvanceGroup, per spec.md §4.2's shortcut —
// then the tree branches over 0..3 optional ghost resolutions, each
// followed by a mandatory wave-clear that consumes 4 second-wave slots
// and switches to secondTable, after which the second wave enumerates
// like a capped variable-count spawner (1..min(4,remaining) per KO).
// Per spec.md §9(a), whether ghost resolution consumes second-wave
// capacity the way this implementation assumes is flagged as an
// assumption mirroring the source rather than a fully verified fact.
func GenerateMassOutbreak(seed model.GroupSeed, minAdv, maxAdv, firstWaveCount, secondWaveCount int, firstTable, secondTable staticdata.EncounterTable, weather staticdata.Weather, tod staticdata.TimeOfDay, info SpeciesInfo, filters Filters, control *worker.ControlBlock, emit func(Result)) error {
	s := newSink(control, emit, filters, minAdv, maxAdv)
	preConsume := firstWaveCount - 1
	if preConsume < 0 {
		preConsume = 0
	}
	s0, s1 := prng.AdvanceGroup(seed.S0, seed.S1, preConsume)
	return massOutbreakFirstWave(s0, s1, model.Path{1}, 0, maxAdv, secondWaveCount, firstTable, secondTable, weather, tod, info, s)
}

func massOutbreakFirstWave(s0, s1 uint64, path model.Path, advance, maxAdv, secondWaveCount int, firstTable, secondTable staticdata.EncounterTable, weather staticdata.Weather, tod staticdata.TimeOfDay, info SpeciesInfo, s *sink) error {
	specimens, err := materializeSpawns(s0, s1, 1, info, firstTable, weather, tod)
	if err != nil {
		return err
	}
	if s.visitNode(advance, path, specimens) {
		return nil
	}

	for ghostCount := 0; ghostCount <= 3; ghostCount++ {
		gS0, gS1, gPath, gAdvance := s0, s1, path, advance
		if ghostCount > 0 {
			gAdvance = advance + ghostCount
			if gAdvance >= maxAdv {
				continue
			}
			gS0, gS1 = prng.AdvanceGroup(s0, s1, ghostCount)
			gPath = path.Append(model.Action(10 + ghostCount))
			if s.tickOnly() {
				return nil
			}
		}

		clearAdvance := gAdvance + 4
		if clearAdvance >= maxAdv {
			continue
		}
		clearS0, clearS1 := prng.AdvanceGroup(gS0, gS1, 4)
		clearPath := gPath.Append(model.ActionClearWave)
		if s.tickOnly() {
			return nil
		}

		if err := massOutbreakSecondWave(clearS0, clearS1, clearPath, clearAdvance, maxAdv, secondWaveCount, secondTable, weather, tod, info, s); err != nil {
			return err
		}
	}
	return nil
}

func massOutbreakSecondWave(s0, s1 uint64, path model.Path, advance, maxAdv, remaining int, table staticdata.EncounterTable, weather staticdata.Weather, tod staticdata.TimeOfDay, info SpeciesInfo, s *sink) error {
	count := remaining
	if count > 4 {
		count = 4
	}
	specimens, err := materializeSpawns(s0, s1, count, info, table, weather, tod)
	if err != nil {
		return err
	}
	if s.visitNode(advance, path, specimens) {
		return nil
	}
	if remaining <= 0 {
		return nil
	}

	maxK := remaining
	if maxK > 4 {
		maxK = 4
	}
	for k := 1; k <= maxK; k++ {
		newAdvance := advance + k
		if newAdvance >= maxAdv {
			continue
		}
		cs0, cs1 := prng.AdvanceGroup(s0, s1, k)
		childPath := path.Append(model.Action(k))
		if err := massOutbreakSecondWave(cs0, cs1, childPath, newAdvance, maxAdv, remaining-k, table, weather, tod, info, s); err != nil {
			return err
		}
	}
	return nil
}

// GenerateVariable enumerates the variable-count multi shape of
// spec.md §4.8: population tops back up to minCount after every KO
// (max(cur-k, minCount)), the next spawn count always equals the
// post-action population, and every visited node materializes as many
// specimens as are currently present there (curPop), the same rule
// GenerateStandard applies for its fixed-count shapes.
func GenerateVariable(seed model.GroupSeed, startingPath model.Path, minAdv, maxAdv, minCount, maxCount int, table staticdata.EncounterTable, weather staticdata.Weather, tod staticdata.TimeOfDay, info SpeciesInfo, filters Filters, control *worker.ControlBlock, emit func(Result)) error {
	s := newSink(control, emit, filters, minAdv, maxAdv)
	s0, s1 := prng.AdvanceGroup(seed.S0, seed.S1, rootAdvanceKOs(startingPath))
	return variableNode(s0, s1, startingPath, 0, maxAdv, maxCount, minCount, table, weather, tod, info, s)
}

func variableNode(s0, s1 uint64, path model.Path, advance, maxAdv, curPop, minCount int, table staticdata.EncounterTable, weather staticdata.Weather, tod staticdata.TimeOfDay, info SpeciesInfo, s *sink) error {
	specimens, err := materializeSpawns(s0, s1, curPop, info, table, weather, tod)
	if err != nil {
		return err
	}
	if s.visitNode(advance, path, specimens) {
		return nil
	}
	for k := 1; k <= curPop; k++ {
		newAdvance := advance + k
		if newAdvance >= maxAdv {
			continue
		}
		cs0, cs1 := prng.AdvanceGroup(s0, s1, k)
		newPop := curPop - k
		if newPop < minCount {
			newPop = minCount
		}
		childPath := path.Append(model.Action(k))
		if err := variableNode(cs0, cs1, childPath, newAdvance, maxAdv, newPop, minCount, table, weather, tod, info, s); err != nil {
			return err
		}
	}
	return nil
}
