// Package vector is the always-available compute.Backend: a goroutine
// worker pool that runs the three seed-inversion kernels against the
// host CPU, grounded on the teacher's channel/WaitGroup worker pool in
// pipeline/1_DATA_MINER/internal/app/processor.go rather than on
// golang.org/x/sync/errgroup (no example repo imports errgroup directly,
// only transitively — see DESIGN.md).
package vector

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"lareveal/compute"
	"lareveal/internal/attrs"
	"lareveal/internal/model"
	"lareveal/internal/prng"
	"lareveal/internal/sizeinv"
	"lareveal/internal/staticdata"
)

// Backend is the CPU worker-pool implementation. It has no setup cost
// and is always available, mirroring the teacher's software hashing
// method.
type Backend struct {
	// Workers bounds how many goroutines a single search call fans out
	// to. Zero means runtime.GOMAXPROCS(0).
	Workers int
}

// New returns a Backend sized to the host's available processors.
func New() *Backend {
	return &Backend{Workers: runtime.GOMAXPROCS(0)}
}

func (b *Backend) workerCount() int {
	if b.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return b.Workers
}

func (b *Backend) Name() string      { return "vector" }
func (b *Backend) IsAvailable() bool { return true }

func (b *Backend) Capabilities() compute.Capabilities {
	return compute.Capabilities{
		Name:            "CPU vector backend",
		IsHardware:      false,
		ThroughputHint:  50_000_000,
		ProductionReady: true,
	}
}

// FindFixedSeeds parallelizes spec.KernelSpec's coset enumeration across
// workerCount() goroutines, each owning a disjoint slice of the coset's
// mask space, exactly the shape of partitioning the teacher's
// processor.go gives each worker a disjoint slice of the job queue.
func (b *Backend) FindFixedSeeds(spec compute.KernelSpec, steps int) ([]uint64, error) {
	n := len(spec.NullSpace)
	if n > 24 {
		n = 24
	}
	total := uint64(1) << uint(n)

	workers := b.workerCount()
	if uint64(workers) > total {
		workers = int(total)
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (total + uint64(workers) - 1) / uint64(workers)

	type outcome struct {
		seeds []uint64
		err   error
	}
	results := make([]outcome, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := uint64(w) * chunk
		hi := lo + chunk
		if hi > total {
			hi = total
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(w int, lo, hi uint64) {
			defer wg.Done()
			var found []uint64
			for mask := lo; mask < hi; mask++ {
				seed := spec.IVConst
				for i := 0; i < n; i++ {
					if mask&(1<<uint(i)) != 0 {
						seed ^= spec.NullSpace[i]
					}
				}
				ok, err := verifyCandidate(seed, spec)
				if err != nil {
					results[w] = outcome{err: err}
					return
				}
				if ok {
					found = append(found, seed)
				}
			}
			results[w] = outcome{seeds: found}
		}(w, lo, hi)
	}
	wg.Wait()

	var out []uint64
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, r.seeds...)
	}
	if len(out) == 0 {
		return nil, compute.ErrNoResult
	}
	return out, nil
}

// verifyCandidate replays a candidate fixed seed's attribute prefix and
// checks it against spec's observations, mirroring seedinv.verifyFixed
// but driven off KernelSpec instead of seedinv.Observation.
func verifyCandidate(seed uint64, spec compute.KernelSpec) (bool, error) {
	p := staticdata.PersonalInfo{GenderRatio: spec.GenderRatio}
	// guaranteedIVs is always 0: KernelSpec carries no slot context, and
	// the gf2 coset this seed came from assumes no guaranteed-IV draws.
	draw := attrs.FromFixedSeed(seed, spec.ShinyRolls, 0, p, spec.BasculinOverride)

	if draw.IVs != spec.IVs {
		return false, &VerificationError{Seed: seed, Field: "ivs", Want: spec.IVs, Got: draw.IVs}
	}
	if spec.TwoAbilities && draw.Ability != spec.Ability {
		return false, nil
	}
	if draw.Gender != spec.Gender {
		return false, nil
	}
	if draw.Nature != spec.Nature {
		return false, nil
	}
	if !sizeinv.Contains(spec.Sizes, draw.Height, draw.Weight) {
		return false, nil
	}
	return true, nil
}

// VerificationError is compute's copy of seedinv's fatal self-check
// failure (spec.md §7): a coset member, by construction, must reproduce
// the observed IVs, so a mismatch means the gf2 system that built
// IVConst/NullSpace was wrong.
type VerificationError struct {
	Seed  uint64
	Field string
	Want  any
	Got   any
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("compute/vector: verification failed for seed %#016x: %s mismatch (want %v, got %v)",
		e.Seed, e.Field, e.Want, e.Got)
}

// generatorDraw replays the two emissions a generator seed produces,
// matching attrs.GeneratorDraw's second return value; duplicated here
// (rather than imported from internal/seedinv) since compute sits below
// seedinv in the import graph.
func generatorDraw(generatorSeed uint64) uint64 {
	_, fixedSeed := attrs.GeneratorDraw(generatorSeed)
	return fixedSeed
}

// slicesPerStep mirrors seedinv.slicesPerStep: one 256x256 slice of the
// device-parallel work domain spec.md §4.6 describes.
const slicesPerStep = 256 * 256

// FindGeneratorSeeds parallelizes the brute-force equality search across
// workerCount() goroutines, each owning a disjoint slice of [0, domain).
func (b *Backend) FindGeneratorSeeds(fixedSeeds []uint64, steps int) ([]uint64, error) {
	if steps <= 0 {
		steps = 1
	}
	target := make(map[uint64]bool, len(fixedSeeds))
	for _, f := range fixedSeeds {
		target[f] = true
	}
	domain := uint64(slicesPerStep) * uint64(steps)

	workers := b.workerCount()
	if uint64(workers) > domain {
		workers = int(domain)
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (domain + uint64(workers) - 1) / uint64(workers)

	resultsCh := make([][]uint64, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := uint64(w) * chunk
		hi := lo + chunk
		if hi > domain {
			hi = domain
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(w int, lo, hi uint64) {
			defer wg.Done()
			var found []uint64
			for g := lo; g < hi; g++ {
				if target[generatorDraw(g)] {
					found = append(found, g)
				}
			}
			resultsCh[w] = found
		}(w, lo, hi)
	}
	wg.Wait()

	var out []uint64
	for _, r := range resultsCh {
		out = append(out, r...)
	}
	if len(out) == 0 {
		return nil, compute.ErrNoResult
	}
	return out, nil
}

// groupDomainPerCandidate mirrors seedinv.groupDomainPerCandidate.
const groupDomainPerCandidate = 1 << 20

// FindGroupSeed splits the outer loop over generatorSeeds across
// workerCount() goroutines; each worker owns a disjoint subset of the
// candidate first-spawn generator seeds and races to report the first
// S0 it finds whose walk also satisfies the second spawn.
func (b *Backend) FindGroupSeed(generatorSeeds, fixedSeeds2 []uint64, isMulti bool) (*model.GroupSeed, error) {
	sorted := append([]uint64(nil), fixedSeeds2...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	workers := b.workerCount()
	if workers > len(generatorSeeds) {
		workers = len(generatorSeeds)
	}
	if workers < 1 {
		workers = 1
	}

	type found struct {
		seed *model.GroupSeed
	}
	resultCh := make(chan found, 1)
	var wg sync.WaitGroup
	chunk := (len(generatorSeeds) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(generatorSeeds) {
			hi = len(generatorSeeds)
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(seeds []uint64) {
			defer wg.Done()
			for _, g1 := range seeds {
				for s0 := uint64(0); s0 < groupDomainPerCandidate; s0++ {
					s1 := g1 - s0
					_, g2 := walkGroup(s0, s1, isMulti)
					f2 := generatorDraw(g2)
					if binarySearch(sorted, f2) {
						select {
						case resultCh <- found{seed: &model.GroupSeed{S0: s0, S1: s1}}:
						default:
						}
						return
					}
				}
			}
		}(generatorSeeds[lo:hi])
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case r := <-resultCh:
		return r.seed, nil
	case <-done:
		select {
		case r := <-resultCh:
			return r.seed, nil
		default:
			return nil, compute.ErrNoResult
		}
	}
}

func walkGroup(s0, s1 uint64, isMulti bool) (g1, g2 uint64) {
	r := prng.New(s0, s1)
	g1 = r.Next()
	if isMulti {
		r.Next()
		r.Next()
	}
	g2 = r.Next()
	return
}

func binarySearch(sorted []uint64, target uint64) bool {
	lo, hi := 0, len(sorted)
	for lo < hi {
		mid := (lo + hi) / 2
		if sorted[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(sorted) && sorted[lo] == target
}

var _ compute.Backend = (*Backend)(nil)
