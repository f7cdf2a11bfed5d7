package ladder

import (
	"fmt"
	"log/slog"
)

// RankRules holds the per-rank step arithmetic.
type RankRules struct {
	StepsPerTier int // steps needed to clear one tier
	StepsGained  int // steps gained by a single-game win
	StepsLost    int // steps lost by a single-game loss
}

// Table is the step configuration of one game mode.
type Table struct {
	Mode  Mode
	Ranks map[Rank]RankRules

	// Protection is the number of protected matches granted on tier promotion.
	Protection map[Format]int

	// GamesPerMatch converts best-of-three matches into games in the exact model.
	GamesPerMatch float64

	// Log receives the per-state transition trace at debug level. Nil disables it.
	Log *slog.Logger
}

var (
	defaultGained = map[Rank]int{Bronze: 2, Silver: 2, Gold: 2, Platinum: 1, Diamond: 1}
	defaultLost   = map[Rank]int{Bronze: 0, Silver: 1, Gold: 1, Platinum: 1, Diamond: 1}

	defaultStepsPerTier = map[Mode]map[Rank]int{
		ModeLimited:     {Bronze: 4, Silver: 5, Gold: 5, Platinum: 5, Diamond: 5},
		ModeConstructed: {Bronze: 6, Silver: 6, Gold: 6, Platinum: 6, Diamond: 6},
	}
)

// DefaultProtection returns the protected-match count granted on promotion.
func DefaultProtection(f Format) int {
	if f == BestOfThree {
		return 1
	}
	return 3
}

// DefaultTable returns the built-in table for a mode.
func DefaultTable(m Mode) (*Table, error) {
	steps, ok := defaultStepsPerTier[m]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, m)
	}
	t := &Table{
		Mode:  m,
		Ranks: make(map[Rank]RankRules, len(Ranks)),
		Protection: map[Format]int{
			Single:      DefaultProtection(Single),
			BestOfThree: DefaultProtection(BestOfThree),
		},
		GamesPerMatch: DefaultGamesPerMatch,
	}
	for _, r := range Ranks {
		t.Ranks[r] = RankRules{
			StepsPerTier: steps[r],
			StepsGained:  defaultGained[r],
			StepsLost:    defaultLost[r],
		}
	}
	return t, nil
}

// StepsPerTier looks up the built-in steps-per-tier value for rank and mode.
func StepsPerTier(r Rank, m Mode) (int, error) {
	t, err := DefaultTable(m)
	if err != nil {
		return 0, err
	}
	return t.StepsPerTier(r)
}

// StepsPerTier returns the steps needed to clear one tier of r.
func (t *Table) StepsPerTier(r Rank) (int, error) {
	rr, ok := t.Ranks[r]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRank, r)
	}
	return rr.StepsPerTier, nil
}

// Validate checks that every rank can be encoded and simulated in both formats.
func (t *Table) Validate() error {
	if len(t.Ranks) == 0 {
		return fmt.Errorf("%w: no ranks", ErrInvalidTable)
	}
	for r, rr := range t.Ranks {
		if rr.StepsPerTier < ProtectedSteps {
			return fmt.Errorf("%w: %s steps_per_tier %d < %d", ErrInvalidTable, r, rr.StepsPerTier, ProtectedSteps)
		}
		if rr.StepsGained <= 0 || rr.StepsLost < 0 {
			return fmt.Errorf("%w: %s gains %d, losses %d", ErrInvalidTable, r, rr.StepsGained, rr.StepsLost)
		}
		// a best-of-three win must not skip a whole tier
		if BestOfThree.StepMultiplier()*rr.StepsGained > rr.StepsPerTier ||
			BestOfThree.StepMultiplier()*rr.StepsLost > rr.StepsPerTier {
			return fmt.Errorf("%w: %s steps exceed tier size %d", ErrInvalidTable, r, rr.StepsPerTier)
		}
	}
	for f, p := range t.Protection {
		if p < 0 || p > MaxProtection {
			return fmt.Errorf("%w: %s protection %d outside [0,%d]", ErrInvalidTable, f, p, MaxProtection)
		}
	}
	if t.GamesPerMatch <= 0 {
		return fmt.Errorf("%w: games_per_match must be > 0", ErrInvalidTable)
	}
	return nil
}

// Rules resolves the transition parameters for one rank and match format.
func (t *Table) Rules(r Rank, f Format) (Rules, error) {
	if !f.valid() {
		return Rules{}, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
	}
	rr, ok := t.Ranks[r]
	if !ok {
		return Rules{}, fmt.Errorf("%w: %s", ErrUnknownRank, r)
	}
	prot, ok := t.Protection[f]
	if !ok {
		prot = DefaultProtection(f)
	}
	m := f.StepMultiplier()
	return Rules{
		Geometry:      Geometry{StepsPerTier: rr.StepsPerTier},
		Gain:          m * rr.StepsGained,
		Loss:          m * rr.StepsLost,
		ProtectionMax: prot,
	}, nil
}

// WithProtection returns a copy of t granting n protected matches on
// promotion in format f. t is not modified.
func (t *Table) WithProtection(f Format, n int) *Table {
	cp := *t
	cp.Protection = make(map[Format]int, len(t.Protection)+1)
	for k, v := range t.Protection {
		cp.Protection[k] = v
	}
	cp.Protection[f] = n
	return &cp
}

func (t *Table) gamesPerMatch() float64 {
	if t.GamesPerMatch > 0 {
		return t.GamesPerMatch
	}
	return DefaultGamesPerMatch
}

func (t *Table) logger() *slog.Logger {
	if t.Log == nil {
		return discard
	}
	return t.Log
}

var discard = slog.New(slog.DiscardHandler)
