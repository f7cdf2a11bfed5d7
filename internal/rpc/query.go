package rpc

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/rank-ladder/internal/config"
	"github.com/xtding233/rank-ladder/internal/ladder"
)

// Query is one evaluation request, shared by the gRPC and HTTP transports.
type Query struct {
	P      float64
	Rank   ladder.Rank
	Mode   ladder.Mode
	Format ladder.Format

	// Protection forces the protected-match count granted on promotion.
	Protection *int

	config.Overrides
}

// NewQuery returns a query with the default mode and format.
func NewQuery(p float64, r ladder.Rank) Query {
	return Query{P: p, Rank: r, Mode: ladder.ModeConstructed, Format: ladder.Single}
}

// QueryFromStruct reads a query from a request message. p and rank are
// required; mode defaults to constructed and format to bo1.
func QueryFromStruct(in *structpb.Struct) (Query, error) {
	f := in.GetFields()

	p, ok, err := number(f, "p")
	if err != nil {
		return Query{}, err
	}
	if !ok {
		return Query{}, fmt.Errorf("%w: missing p", ladder.ErrInvalidInput)
	}
	name, ok, err := str(f, "rank")
	if err != nil {
		return Query{}, err
	}
	if !ok {
		return Query{}, fmt.Errorf("%w: missing rank", ladder.ErrInvalidInput)
	}
	r, err := ladder.ParseRank(name)
	if err != nil {
		return Query{}, err
	}
	q := NewQuery(p, r)

	if s, ok, err := str(f, "mode"); err != nil {
		return Query{}, err
	} else if ok {
		if q.Mode, err = ladder.ParseMode(s); err != nil {
			return Query{}, err
		}
	}
	if s, ok, err := str(f, "format"); err != nil {
		return Query{}, err
	} else if ok {
		if q.Format, err = ladder.ParseFormat(s); err != nil {
			return Query{}, err
		}
	}
	if v, ok, err := integer(f, "protection"); err != nil {
		return Query{}, err
	} else if ok {
		q.Protection = &v
	}
	if v, ok, err := integer(f, "trials"); err != nil {
		return Query{}, err
	} else if ok {
		q.Trials = &v
	}
	if v, ok, err := integer(f, "seed"); err != nil {
		return Query{}, err
	} else if ok {
		if v < 0 {
			return Query{}, fmt.Errorf("%w: seed must be >= 0", ladder.ErrInvalidInput)
		}
		seed := uint64(v)
		q.Seed = &seed
	}
	if v, ok, err := number(f, "games_per_match"); err != nil {
		return Query{}, err
	} else if ok {
		q.GamesPerMatch = &v
	}
	return q, nil
}

func number(f map[string]*structpb.Value, key string) (float64, bool, error) {
	v, ok := f[key]
	if !ok {
		return 0, false, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false, fmt.Errorf("%w: %s must be a number", ladder.ErrInvalidInput, key)
	}
	return n.NumberValue, true, nil
}

func integer(f map[string]*structpb.Value, key string) (int, bool, error) {
	v, ok, err := number(f, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
		return 0, false, fmt.Errorf("%w: %s must be an integer", ladder.ErrInvalidInput, key)
	}
	return int(v), true, nil
}

func str(f map[string]*structpb.Value, key string) (string, bool, error) {
	v, ok := f[key]
	if !ok {
		return "", false, nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false, fmt.Errorf("%w: %s must be a string", ladder.ErrInvalidInput, key)
	}
	return s.StringValue, true, nil
}

// SettingsSource resolves the ladder settings of a mode. *config.Loader
// implements it.
type SettingsSource interface {
	Settings(mode ladder.Mode) (config.Settings, error)
}

// DefaultMaxTrials caps the climbs one Simulate call may request.
const DefaultMaxTrials = 1_000_000

// Service evaluates queries against the current settings.
type Service struct {
	Source SettingsSource
	Log    *slog.Logger

	// MaxTrials caps Query.Trials; zero means DefaultMaxTrials.
	MaxTrials int

	// SimulateTimeout bounds each Simulate call on top of the caller's
	// context. Zero leaves only the caller's deadline.
	SimulateTimeout time.Duration
}

func (s *Service) maxTrials() int {
	if s.MaxTrials > 0 {
		return s.MaxTrials
	}
	return DefaultMaxTrials
}

func (s *Service) settings(q Query) (config.Settings, error) {
	st, err := s.Source.Settings(q.Mode)
	if err != nil {
		return config.Settings{}, err
	}
	return st.Apply(q.Overrides), nil
}

// Expected returns the exact expectation with tier protection.
func (s *Service) Expected(ctx context.Context, q Query) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	st, err := s.settings(q)
	if err != nil {
		return 0, err
	}
	if q.Protection != nil {
		return st.Table.ExpectedGamesWithProtection(q.P, q.Rank, q.Format, *q.Protection)
	}
	return st.Table.ExpectedGamesToPromotion(q.P, q.Rank, q.Format)
}

// NoProtection returns the expectation of the ladder without tier protection.
func (s *Service) NoProtection(ctx context.Context, q Query) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	st, err := s.settings(q)
	if err != nil {
		return 0, err
	}
	return st.Table.ExpectedGamesNoProtection(q.P, q.Rank, q.Format)
}

// Simulate runs the Monte Carlo estimate. A Protection override applies to
// the simulated table as it does to Expected. The simulation stops with the
// context's error when ctx or SimulateTimeout expires.
func (s *Service) Simulate(ctx context.Context, q Query) (ladder.Stats, error) {
	if err := ctx.Err(); err != nil {
		return ladder.Stats{}, err
	}
	if q.Trials != nil && *q.Trials > s.maxTrials() {
		return ladder.Stats{}, fmt.Errorf("%w: trials %d above limit %d", ladder.ErrInvalidInput, *q.Trials, s.maxTrials())
	}
	st, err := s.settings(q)
	if err != nil {
		return ladder.Stats{}, err
	}
	tbl := st.Table
	if q.Protection != nil {
		tbl = tbl.WithProtection(q.Format, *q.Protection)
	}
	if s.SimulateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.SimulateTimeout)
		defer cancel()
	}
	stats, err := tbl.RunMonteCarlo(ctx, q.P, q.Rank, q.Format, st.Trials, st.RNG())
	if err != nil {
		return ladder.Stats{}, err
	}
	if s.Log != nil {
		s.Log.Debug("simulated", "mode", q.Mode, "rank", q.Rank.String(), "format", q.Format.String(),
			"p", q.P, "trials", stats.Trials, "seeded", st.Seed != 0, "mean", stats.Mean)
	}
	return stats, nil
}

// Steps returns the step rules of every rank in mode, keyed by rank name.
func (s *Service) Steps(mode ladder.Mode) (map[string]ladder.RankRules, error) {
	st, err := s.Source.Settings(mode)
	if err != nil {
		return nil, err
	}
	out := make(map[string]ladder.RankRules, len(ladder.Ranks))
	for _, r := range ladder.Ranks {
		out[r.String()] = st.Table.Ranks[r]
	}
	return out, nil
}
