// Package staticdata is the read-only facade over the game tables the
// rest of the pipeline needs: per-species personal info, encounter
// tables, spawner descriptors, and the name lookups used for display.
// Everything is decoded up front from embedded JSON fixtures by Load and
// read behind a RWMutex; every lookup takes only the read lock, and
// nothing in this package writes to a Store after Load returns.
package staticdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"lareveal/internal/model"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// PersonalInfo is the subset of per-species/per-form data the pipeline
// consumes: draw bounds for ability and gender, the base stats, the base
// height/weight and rand-max scalars internal/sizeinv uses to decode
// observed size back to height/weight bytes, and the two ability ids
// spec.md §6 names directly (equal ids mean a single-ability species).
type PersonalInfo struct {
	Species        uint16     `json:"species"`
	Form           uint8      `json:"form"`
	GenderRatio    uint8      `json:"gender_ratio"`
	Ability1       uint16     `json:"ability_1"`
	Ability2       uint16     `json:"ability_2"`
	BaseStats      [6]uint16  `json:"base_stats"`
	FormStatsIndex uint16     `json:"form_stats_index"`
	BaseHeight     float64    `json:"base_height"`
	BaseWeight     float64    `json:"base_weight"`
	HeightRandMax  uint8      `json:"height_rand_max"`
	WeightRandMax  uint8      `json:"weight_rand_max"`
}

// TwoAbilities reports whether the species has two distinct abilities,
// per spec.md §3: "equal ⇒ single-ability species".
func (p PersonalInfo) TwoAbilities() bool {
	return p.Ability1 != p.Ability2
}

// TimeOfDay and Weather tag a slot's applicability window. "Any" matches
// every observed tag.
type TimeOfDay uint8
type Weather uint8

const (
	TimeAny TimeOfDay = iota
	TimeMorning
	TimeDay
	TimeNight
)

const (
	WeatherAny Weather = iota
	WeatherNormal
	WeatherRain
	WeatherSnow
	WeatherSandstorm
	WeatherFog
)

// EncounterSlot is one weighted row of an encounter table: species/form,
// alpha flag, level range, guaranteed IV count, an optional fixed-gender
// override, and the time/weather window it applies in.
type EncounterSlot struct {
	Species        uint16    `json:"species"`
	Form           uint8     `json:"form"`
	Alpha          bool      `json:"alpha"`
	MinLevel       uint8     `json:"min_level"`
	MaxLevel       uint8     `json:"max_level"`
	GuaranteedIVs  uint8     `json:"guaranteed_ivs"`
	FixedGender    int8      `json:"fixed_gender"` // -1 = no override
	Time           TimeOfDay `json:"time"`
	Weather        Weather   `json:"weather"`
	Weight         uint32    `json:"weight"`
}

// EncounterTable is a full weighted table, ordered per spec.md §3.
type EncounterTable struct {
	ID    uint32          `json:"id"`
	Slots []EncounterSlot `json:"slots"`
}

// applicable reports whether a slot's time/weather window covers the
// observed tags.
func (s EncounterSlot) applicable(time TimeOfDay, weather Weather) bool {
	return (s.Time == TimeAny || s.Time == time) && (s.Weather == WeatherAny || s.Weather == weather)
}

// CalcSlot resolves a uniform [0,1) draw, filtered first to the slots
// applicable under the given time/weather tags, mirroring the reference
// tool's calc_slot: weights are re-normalized over the applicable subset
// before the cumulative walk.
func (t EncounterTable) CalcSlot(u01 float64, time TimeOfDay, weather Weather) EncounterSlot {
	var applicable []EncounterSlot
	var total uint32
	for _, s := range t.Slots {
		if s.applicable(time, weather) {
			applicable = append(applicable, s)
			total += s.Weight
		}
	}
	if len(applicable) == 0 {
		applicable = t.Slots
		total = t.TotalWeight()
	}
	if total == 0 {
		return applicable[0]
	}
	roll := uint32(u01 * float64(total))
	if roll >= total {
		roll = total - 1
	}
	var acc uint32
	for _, s := range applicable {
		acc += s.Weight
		if roll < acc {
			return s
		}
	}
	return applicable[len(applicable)-1]
}

// TotalWeight sums every slot's weight; CalcSlot scales its [0,1) draw
// by this total when no slot is applicable to the given tags.
func (t EncounterTable) TotalWeight() uint32 {
	var total uint32
	for _, s := range t.Slots {
		total += s.Weight
	}
	return total
}

// SpawnerRecord is the raw fixture shape a spawner descriptor is parsed
// from; Store converts these into model.SpawnerDescriptor on demand.
type SpawnerRecord struct {
	ID             uint32  `json:"id"`
	EncounterTable uint32  `json:"encounter_table"`
	MinCount       int     `json:"min_count"`
	MaxCount       int     `json:"max_count"`
	MassOutbreak   bool    `json:"mass_outbreak"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Z              float64 `json:"z"`
}

type fixtures struct {
	Personal  []PersonalInfo   `json:"personal"`
	Tables    []EncounterTable `json:"tables"`
	Spawners  []SpawnerRecord  `json:"spawners"`
	Species   map[string]string `json:"species_names"`
	Natures   []string          `json:"nature_names"`
	Abilities map[string]string `json:"ability_names"`
}

// Store is the facade every stage of the pipeline depends on. It is
// built once at startup via Load and is safe for concurrent read access
// from worker goroutines.
type Store struct {
	mu sync.RWMutex

	personal  map[personalKey]PersonalInfo
	tables    map[uint32]EncounterTable
	spawners  map[uint32]SpawnerRecord
	species   map[string]string
	natures   []string
	abilities map[string]string
}

type personalKey struct {
	species uint16
	form    uint8
}

// Load reads the embedded fixture set and builds a ready-to-use Store.
// There is no lazy generation step — unlike a procedural chunk cache,
// every table here is small and fixed, so the whole set is decoded up
// front and the mutex exists purely to guard against a future fixture
// hot-reload, not to gate expensive recomputation.
func Load() (*Store, error) {
	raw, err := fixtureFS.ReadFile("fixtures/tables.json")
	if err != nil {
		return nil, fmt.Errorf("staticdata: read fixtures: %w", err)
	}
	var f fixtures
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("staticdata: decode fixtures: %w", err)
	}

	s := &Store{
		personal:  make(map[personalKey]PersonalInfo, len(f.Personal)),
		tables:    make(map[uint32]EncounterTable, len(f.Tables)),
		spawners:  make(map[uint32]SpawnerRecord, len(f.Spawners)),
		species:   f.Species,
		natures:   f.Natures,
		abilities: f.Abilities,
	}
	for _, p := range f.Personal {
		s.personal[personalKey{p.Species, p.Form}] = p
	}
	for _, t := range f.Tables {
		s.tables[t.ID] = t
	}
	for _, sp := range f.Spawners {
		s.spawners[sp.ID] = sp
	}
	return s, nil
}

// PersonalInfo looks up a species/form's draw bounds and size baseline.
func (s *Store) PersonalInfo(species uint16, form uint8) (PersonalInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.personal[personalKey{species, form}]
	return p, ok
}

// EncounterTable looks up a weighted spawn table by ID.
func (s *Store) EncounterTable(id uint32) (EncounterTable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	return t, ok
}

// Spawner looks up a raw spawner fixture record by ID.
func (s *Store) Spawner(id uint32) (SpawnerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.spawners[id]
	return sp, ok
}

// SpawnerDescriptor looks up a spawner by ID and converts it to the
// model.SpawnerDescriptor shape the forward generator drives, the
// facade-side half of the conversion internal/forward's engines expect
// a caller to have already done.
func (s *Store) SpawnerDescriptor(id uint32) (model.SpawnerDescriptor, bool) {
	rec, ok := s.Spawner(id)
	if !ok {
		return model.SpawnerDescriptor{}, false
	}
	return model.SpawnerDescriptor{
		ID:             rec.ID,
		EncounterTable: rec.EncounterTable,
		MinCount:       rec.MinCount,
		MaxCount:       rec.MaxCount,
		MassOutbreak:   rec.MassOutbreak,
		X:              rec.X,
		Y:              rec.Y,
		Z:              rec.Z,
	}, true
}

// SpeciesName resolves a species/form pair to its display name.
func (s *Store) SpeciesName(species uint16, form uint8) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := fmt.Sprintf("%d-%d", species, form)
	if name, ok := s.species[key]; ok {
		return name
	}
	if name, ok := s.species[fmt.Sprintf("%d", species)]; ok {
		return name
	}
	return fmt.Sprintf("#%d", species)
}

// NatureName resolves a nature index (0..24) to its display name.
func (s *Store) NatureName(n uint8) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(n) < len(s.natures) {
		return s.natures[n]
	}
	return fmt.Sprintf("Nature(%d)", n)
}

// AbilityName resolves a species/form/slot triple to its ability name.
func (s *Store) AbilityName(species uint16, form, slot uint8) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := fmt.Sprintf("%d-%d-%d", species, form, slot)
	if name, ok := s.abilities[key]; ok {
		return name
	}
	return fmt.Sprintf("Ability(%d)", slot)
}
