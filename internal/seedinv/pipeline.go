package seedinv

import "lareveal/internal/model"

// Recover runs the full three-stage pipeline for two observed
// specimens, per spec.md §4.7 and §7's "empty result" policy: on
// variable spawners, a failed (obs1, obs2) attempt is retried once with
// the roles swapped before the pipeline reports unsuccessful (scenario
// S5). isMulti selects the group-RNG walk shape (spec.md §4.7).
func Recover(obs1, obs2 Observation, isMulti, variableSpawner bool, fixedSteps, generatorSteps int) (*model.GroupSeed, error) {
	seed, err := recoverOnce(obs1, obs2, isMulti, fixedSteps, generatorSteps)
	if err == nil {
		return seed, nil
	}
	if !variableSpawner {
		return nil, err
	}
	return recoverOnce(obs2, obs1, isMulti, fixedSteps, generatorSteps)
}

func recoverOnce(first, second Observation, isMulti bool, fixedSteps, generatorSteps int) (*model.GroupSeed, error) {
	fixed1, err := FindFixedSeeds(first, fixedSteps)
	if err != nil {
		return nil, err
	}
	generator1, err := FindGeneratorSeeds(fixed1, generatorSteps)
	if err != nil {
		return nil, err
	}
	fixed2, err := FindFixedSeeds(second, fixedSteps)
	if err != nil {
		return nil, err
	}
	return FindGroupSeed(generator1, fixed2, isMulti)
}
