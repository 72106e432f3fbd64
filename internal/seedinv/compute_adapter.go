package seedinv

import (
	"lareveal/compute"
	"lareveal/internal/model"
)

// BuildKernelSpec translates an Observation into the compute.KernelSpec a
// Backend's FindFixedSeeds needs, per spec.md §4.10/§6: the gf2 system is
// built exactly as BuildMatrix does, and every other field is copied
// straight across from the observation it was derived from.
func BuildKernelSpec(obs Observation) compute.KernelSpec {
	sys := BuildMatrix(obs.ShinyRolls)
	return compute.KernelSpec{
		ShinyRolls:       obs.ShinyRolls,
		IVConst:          sys.ParticularSolution(packIVs(obs.IVs)),
		SeedMat:          sys,
		NullSpace:        sys.NullSpace(),
		IVs:              obs.IVs,
		TwoAbilities:     obs.Personal.TwoAbilities(),
		Ability:          obs.Ability,
		GenderRatio:      obs.Personal.GenderRatio,
		Gender:           obs.Gender,
		Nature:           obs.Nature,
		Sizes:            obs.SizeCandidates,
		IsMultiSpawner:   false, // set by the caller per-recovery, not per-observation
		BasculinOverride: obs.BasculinGenderOverride,
	}
}

// RecoverWithBackend is the compute.Backend-routed counterpart to
// Recover: the same three-stage pipeline and variable-spawner retry
// policy (spec.md §4.7/§7), but every stage's search runs on backend
// instead of directly on the host functions in fixed.go/generator.go/
// group.go. This is what lets the pipeline "compile against either a
// CPU vector backend or a GPU backend" per spec.md §9 while leaving the
// pure host functions in place for direct use and testing.
func RecoverWithBackend(backend compute.Backend, obs1, obs2 Observation, isMulti, variableSpawner bool, fixedSteps, generatorSteps int) (*model.GroupSeed, error) {
	seed, err := recoverOnceWithBackend(backend, obs1, obs2, isMulti, fixedSteps, generatorSteps)
	if err == nil {
		return seed, nil
	}
	if !variableSpawner {
		return nil, err
	}
	return recoverOnceWithBackend(backend, obs2, obs1, isMulti, fixedSteps, generatorSteps)
}

func recoverOnceWithBackend(backend compute.Backend, first, second Observation, isMulti bool, fixedSteps, generatorSteps int) (*model.GroupSeed, error) {
	spec1 := BuildKernelSpec(first)
	spec1.IsMultiSpawner = isMulti
	fixed1, err := backend.FindFixedSeeds(spec1, fixedSteps)
	if err != nil {
		return nil, normalizeNoResult(err)
	}
	generator1, err := backend.FindGeneratorSeeds(fixed1, generatorSteps)
	if err != nil {
		return nil, normalizeNoResult(err)
	}
	spec2 := BuildKernelSpec(second)
	spec2.IsMultiSpawner = isMulti
	fixed2, err := backend.FindFixedSeeds(spec2, fixedSteps)
	if err != nil {
		return nil, normalizeNoResult(err)
	}
	seed, err := backend.FindGroupSeed(generator1, fixed2, isMulti)
	if err != nil {
		return nil, normalizeNoResult(err)
	}
	return seed, nil
}

// normalizeNoResult maps compute.ErrNoResult onto seedinv.ErrNoResult so
// callers of RecoverWithBackend see the same "empty result" taxonomy
// entry (spec.md §7) regardless of which backend ran the search; every
// other error (a backend's VerificationError) passes through unchanged.
func normalizeNoResult(err error) error {
	if err == compute.ErrNoResult {
		return ErrNoResult
	}
	return err
}
