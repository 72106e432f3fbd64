package model

import "fmt"

// GroupSeed is the 128-bit state that roots one spawner's entire timeline:
// two 64-bit PRNG words. Recovering this value is the end goal of the
// seed-inversion pipeline and the sole input the forward generator needs.
type GroupSeed struct {
	S0, S1 uint64
}

// String renders the seed the way the reference tool logs a recovered
// group seed.
func (g GroupSeed) String() string {
	return fmt.Sprintf("%016X:%016X", g.S0, g.S1)
}

// SpawnerKind distinguishes the four shapes of spawner the forward
// generator knows how to walk.
type SpawnerKind uint8

const (
	SpawnerSingle SpawnerKind = iota
	SpawnerFixedMulti
	SpawnerMassOutbreak
	SpawnerVariableMulti
)

// SpawnerDescriptor mirrors the static-data facade's spawner record: the
// fields needed to drive the forward generator, independent of any
// per-species or per-table detail.
type SpawnerDescriptor struct {
	ID             uint32
	EncounterTable uint32
	MinCount       int
	MaxCount       int
	MassOutbreak   bool
	X, Y, Z        float64
}

// Kind classifies the descriptor per spec.md §4.8: mass-outbreak flag
// wins, then fixed-vs-variable count determines the remaining split.
func (d SpawnerDescriptor) Kind() SpawnerKind {
	switch {
	case d.MassOutbreak:
		return SpawnerMassOutbreak
	case d.MinCount == d.MaxCount && d.MinCount == 1:
		return SpawnerSingle
	case d.MinCount == d.MaxCount:
		return SpawnerFixedMulti
	default:
		return SpawnerVariableMulti
	}
}
