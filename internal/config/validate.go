package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xtding233/rank-ladder/internal/ladder"
)

// ValidateRaw checks semantic constraints of a RawConfig and reports every
// violation at once.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	checkRanks := func(field string, m map[string]int, min int) {
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, err := ladder.ParseRank(name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: unknown rank %q", field, name))
				continue
			}
			if m[name] < min {
				errs = append(errs, fmt.Sprintf("%s.%s must be >= %d", field, name, min))
			}
		}
	}
	checkRanks("steps_per_tier", cfg.StepsPerTier, ladder.ProtectedSteps)
	checkRanks("steps_gained", cfg.StepsGained, 1)
	checkRanks("steps_lost", cfg.StepsLost, 0)

	if p := cfg.Protection; p != nil {
		if p.Single != nil && (*p.Single < 0 || *p.Single > ladder.MaxProtection) {
			errs = append(errs, fmt.Sprintf("protection.single must be in [0,%d]", ladder.MaxProtection))
		}
		if p.BestOfThree != nil && (*p.BestOfThree < 0 || *p.BestOfThree > ladder.MaxProtection) {
			errs = append(errs, fmt.Sprintf("protection.best_of_three must be in [0,%d]", ladder.MaxProtection))
		}
	}

	if g := cfg.GamesPerMatch; g != nil && g.BestOfThree != nil {
		if *g.BestOfThree < 2 || *g.BestOfThree > 3 {
			errs = append(errs, "games_per_match.best_of_three must be in [2,3]")
		}
	}

	if sim := cfg.Simulation; sim != nil && sim.Trials != nil && *sim.Trials <= 0 {
		errs = append(errs, "simulation.trials must be > 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: config validation failed: %s", ladder.ErrInvalidInput, strings.Join(errs, "; "))
	}
	return nil
}
