package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/rank-ladder/internal/ladder"
)

// Paths locates the ladder files under a base directory.
type Paths struct {
	BaseDir string // e.g. ./configs
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "ladder", "default.yaml")
}

func (p Paths) ModePath(mode ladder.Mode) string {
	return filepath.Join(p.BaseDir, "ladder", "modes", string(mode)+".yaml")
}

// Loader reads ladder YAML and caches resolved settings per mode.
type Loader struct {
	paths Paths

	// Log is attached to every resolved table.
	Log *slog.Logger

	mu    sync.RWMutex
	cache map[ladder.Mode]Settings
}

// NewLoader creates a loader rooted at baseDir. Missing files are allowed;
// the built-in tables fill the gaps.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[ladder.Mode]Settings),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged reads default.yaml and the mode file and merges them, the mode
// file winning. It does not validate.
func (l *Loader) LoadMerged(mode ladder.Mode) (RawConfig, error) {
	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	modeCfg, err := readYAML(l.paths.ModePath(mode))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read mode %s: %w", mode, err)
	}
	return mergeRaw(defCfg, modeCfg), nil
}

// Settings returns the validated settings for mode, from cache when possible.
func (l *Loader) Settings(mode ladder.Mode) (Settings, error) {
	l.mu.RLock()
	if s, ok := l.cache[mode]; ok {
		l.mu.RUnlock()
		return s, nil
	}
	l.mu.RUnlock()

	raw, err := l.LoadMerged(mode)
	if err != nil {
		return Settings{}, err
	}
	s, err := Resolve(mode, raw)
	if err != nil {
		return Settings{}, err
	}
	s.Table.Log = l.Log

	l.mu.Lock()
	l.cache[mode] = s
	l.mu.Unlock()
	return s, nil
}

// Invalidate clears the cache. The file watcher calls it on change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[ladder.Mode]Settings)
}

// Resolve validates raw and lays it over the built-in table for mode.
func Resolve(mode ladder.Mode, raw RawConfig) (Settings, error) {
	if err := ValidateRaw(raw); err != nil {
		return Settings{}, err
	}
	tbl, err := ladder.DefaultTable(mode)
	if err != nil {
		return Settings{}, err
	}
	for name, v := range raw.StepsPerTier {
		r, _ := ladder.ParseRank(name)
		rr := tbl.Ranks[r]
		rr.StepsPerTier = v
		tbl.Ranks[r] = rr
	}
	for name, v := range raw.StepsGained {
		r, _ := ladder.ParseRank(name)
		rr := tbl.Ranks[r]
		rr.StepsGained = v
		tbl.Ranks[r] = rr
	}
	for name, v := range raw.StepsLost {
		r, _ := ladder.ParseRank(name)
		rr := tbl.Ranks[r]
		rr.StepsLost = v
		tbl.Ranks[r] = rr
	}
	if p := raw.Protection; p != nil {
		if p.Single != nil {
			tbl.Protection[ladder.Single] = *p.Single
		}
		if p.BestOfThree != nil {
			tbl.Protection[ladder.BestOfThree] = *p.BestOfThree
		}
	}
	if g := raw.GamesPerMatch; g != nil && g.BestOfThree != nil {
		tbl.GamesPerMatch = *g.BestOfThree
	}
	if err := tbl.Validate(); err != nil {
		return Settings{}, fmt.Errorf("mode %s: %w", mode, err)
	}

	s := Settings{Version: raw.Version, Table: tbl, Trials: ladder.DefaultTrials}
	if sim := raw.Simulation; sim != nil {
		if sim.Trials != nil {
			s.Trials = *sim.Trials
		}
		if sim.Seed != nil {
			s.Seed = *sim.Seed
		}
	}
	return s, nil
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw overlays b on a: set scalars and pointers in b win, map entries
// in b replace the same keys in a.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	out.StepsPerTier = mergeInts(a.StepsPerTier, b.StepsPerTier)
	out.StepsGained = mergeInts(a.StepsGained, b.StepsGained)
	out.StepsLost = mergeInts(a.StepsLost, b.StepsLost)

	switch {
	case out.Protection == nil && b.Protection != nil:
		c := *b.Protection
		out.Protection = &c
	case out.Protection != nil && b.Protection != nil:
		c := *out.Protection
		if b.Protection.Single != nil {
			c.Single = b.Protection.Single
		}
		if b.Protection.BestOfThree != nil {
			c.BestOfThree = b.Protection.BestOfThree
		}
		out.Protection = &c
	}

	if b.GamesPerMatch != nil && b.GamesPerMatch.BestOfThree != nil {
		out.GamesPerMatch = &GamesPerMatchConfig{BestOfThree: b.GamesPerMatch.BestOfThree}
	}

	switch {
	case out.Simulation == nil && b.Simulation != nil:
		c := *b.Simulation
		out.Simulation = &c
	case out.Simulation != nil && b.Simulation != nil:
		c := *out.Simulation
		if b.Simulation.Trials != nil {
			c.Trials = b.Simulation.Trials
		}
		if b.Simulation.Seed != nil {
			c.Seed = b.Simulation.Seed
		}
		out.Simulation = &c
	}
	return out
}

func mergeInts(a, b map[string]int) map[string]int {
	if len(b) == 0 {
		return a
	}
	out := make(map[string]int, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}
