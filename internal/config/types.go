package config

import "github.com/xtding233/rank-ladder/internal/ladder"

// RawConfig is one ladder YAML file. Unset fields inherit from the file
// below it (built-in defaults <- default.yaml <- modes/<mode>.yaml).
type RawConfig struct {
	Version       string               `yaml:"version"`
	StepsPerTier  map[string]int       `yaml:"steps_per_tier,omitempty"`
	StepsGained   map[string]int       `yaml:"steps_gained,omitempty"`
	StepsLost     map[string]int       `yaml:"steps_lost,omitempty"`
	Protection    *ProtectionConfig    `yaml:"protection,omitempty"`
	GamesPerMatch *GamesPerMatchConfig `yaml:"games_per_match,omitempty"`
	Simulation    *SimulationConfig    `yaml:"simulation,omitempty"`
	Notes         string               `yaml:"notes,omitempty"`
}

// ProtectionConfig is the number of protected matches granted on tier promotion.
type ProtectionConfig struct {
	Single      *int `yaml:"single,omitempty"`
	BestOfThree *int `yaml:"best_of_three,omitempty"`
}

type GamesPerMatchConfig struct {
	BestOfThree *float64 `yaml:"best_of_three,omitempty"`
}

type SimulationConfig struct {
	Trials *int    `yaml:"trials,omitempty"`
	Seed   *uint64 `yaml:"seed,omitempty"` // 0 or unset: crypto source
}

// Settings is a resolved, validated configuration for one game mode.
type Settings struct {
	Version string
	Table   *ladder.Table
	Trials  int
	Seed    uint64
}

// RNG returns a seeded source when Seed is set, else the crypto source.
func (s Settings) RNG() ladder.RandomSource {
	if s.Seed != 0 {
		return ladder.NewSeededRNG(s.Seed)
	}
	return ladder.DefaultRNG()
}

// Overrides carries per-request adjustments on top of Settings.
type Overrides struct {
	Trials        *int
	Seed          *uint64
	GamesPerMatch *float64
}

// Apply returns a copy of s with o applied. The table is copied when
// GamesPerMatch changes so cached settings stay untouched.
func (s Settings) Apply(o Overrides) Settings {
	out := s
	if o.Trials != nil && *o.Trials > 0 {
		out.Trials = *o.Trials
	}
	if o.Seed != nil {
		out.Seed = *o.Seed
	}
	if o.GamesPerMatch != nil && *o.GamesPerMatch > 0 && s.Table != nil {
		tbl := *s.Table
		tbl.GamesPerMatch = *o.GamesPerMatch
		out.Table = &tbl
	}
	return out
}
