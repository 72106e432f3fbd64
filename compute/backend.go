// Package compute defines the backend abstraction the seed-inversion
// pipeline is built against, per spec.md §9's design note ("keep the
// option to compile the three stage kernels against either a CPU vector
// backend or a GPU backend"). This mirrors the teacher's hashing-method
// backend family (pkg/hashing/core.HashMethod + factory.HashMethodFactory
// + hardware.DeviceDetector): a small interface, several concrete
// implementations, and a factory that detects and picks among them.
package compute

import (
	"lareveal/internal/gf2"
	"lareveal/internal/model"
	"lareveal/internal/sizeinv"
)

// KernelSpec carries exactly the fields spec.md §6's "Kernel build
// constants" table names, substituted as Go struct fields rather than
// into device kernel source text (there being no compiled kernel text in
// a Go implementation — see DESIGN.md). Every field here is everything
// a fixed-seed candidate needs to be enumerated and verified.
type KernelSpec struct {
	// ShinyRolls is SHINY_ROLLS: the count of PID draws consumed before
	// the six IV rolls.
	ShinyRolls int

	// IVConst is IV_CONST: the particular solution for the observed IV
	// output, i.e. gf2.System.ParticularSolution(packedIVs).
	IVConst uint64

	// SeedMat is SEED_MAT: the row-reduced linear system itself (the Go
	// analogue of "generalized inverse rows" — it answers exactly the
	// same question, "what seed bit does this combination of output
	// bits decide", without needing to flatten into a literal row
	// table).
	SeedMat *gf2.System

	// NullSpace is NULL_SPACE: the homogeneous basis XORed against
	// IVConst to enumerate the full coset.
	NullSpace []uint64

	// IVs is IVS: the six observed IVs, used for the self-check in
	// verification (spec.md §7's fatal "verification failure" case).
	IVs model.IVs

	TwoAbilities bool
	Ability      uint8
	GenderRatio  uint8
	Gender       model.Gender
	Nature       uint8

	// Sizes is SIZES: the flat (h,w) candidate table a materialized
	// size must appear in. Alpha specimens carry a nil table since
	// their size is forced rather than observed.
	Sizes []sizeinv.HW

	IsMultiSpawner bool

	// BasculinOverride is carried alongside the table's named fields
	// for the same reason seedinv.Observation carries it: spec.md §6
	// names "Basculin gender override" support explicitly even though
	// the kernel-build-constants table predates that addition.
	BasculinOverride *model.Gender
}

// Capabilities describes one backend's reported characteristics, the Go
// analogue of the teacher's core.Capabilities.
type Capabilities struct {
	Name            string
	IsHardware      bool
	ThroughputHint  uint64 // candidates/sec this backend expects to sustain
	ProductionReady bool
	Reason          string // populated only when unavailable
}

// Backend is the seed-inversion pipeline's compute-device API (spec.md
// §6), mirroring the teacher's core.HashMethod: a uniform surface over
// however many concrete execution strategies exist, selected once by a
// Factory at startup.
type Backend interface {
	Name() string
	IsAvailable() bool
	Capabilities() Capabilities

	// FindFixedSeeds enumerates spec's coset and verifies each
	// candidate, mirroring seedinv.FindFixedSeeds but driven off a
	// pre-built KernelSpec instead of a seedinv.Observation (compute
	// sits below seedinv in the import graph, so it can't depend on
	// that type directly).
	FindFixedSeeds(spec KernelSpec, steps int) ([]uint64, error)

	// FindGeneratorSeeds mirrors seedinv.FindGeneratorSeeds.
	FindGeneratorSeeds(fixedSeeds []uint64, steps int) ([]uint64, error)

	// FindGroupSeed mirrors seedinv.FindGroupSeed.
	FindGroupSeed(generatorSeeds, fixedSeeds2 []uint64, isMulti bool) (*model.GroupSeed, error)
}

// ErrNoResult is returned by a Backend's search methods when a stage's
// domain is exhausted without a match, mirroring seedinv.ErrNoResult
// (kept as a distinct value since compute does not import seedinv).
var ErrNoResult = errNoResult{}

type errNoResult struct{}

func (errNoResult) Error() string { return "compute: no result" }
