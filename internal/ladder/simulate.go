package ladder

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// DefaultTrials is the number of walks RunSimulation averages when the
// caller asks for zero.
const DefaultTrials = 5000

// checkEvery is how many matches a walk plays between context checks. At
// low win rates a single climb may never end in practice.
const checkEvery = 1 << 14

// Outcome is one simulated climb through a rank.
type Outcome struct {
	Matches int
	Wins    int
	Losses  int

	// Games is Matches for Single. For BestOfThree it weights won and lost
	// matches by their mean game counts.
	Games float64
}

// Stats summarizes simulated game counts.
type Stats struct {
	Trials int
	Mean   float64
	Var    float64
	StdDev float64
	StdErr float64
	P50    float64
	P90    float64
	P99    float64
	// raw samples for callers building histograms
	Samples []float64 `json:"-"`
}

// walk plays matches from the entry state until a win leaves the rank or
// ctx is done.
func walk(ctx context.Context, rules Rules, winrate float64, rng RandomSource) (wins, losses int, err error) {
	s := Start
	for n := 1; ; n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return wins, losses, fmt.Errorf("climb abandoned after %d matches: %w", n-1, err)
			}
		}
		w := won(winrate, rng)
		if w {
			wins++
		} else {
			losses++
		}
		next, promoted := rules.Next(s, w)
		if promoted {
			return wins, losses, nil
		}
		s = next
	}
}

// SimulateOneRun performs a single stochastic climb. A nil rng uses the
// crypto source.
func (t *Table) SimulateOneRun(ctx context.Context, p float64, r Rank, f Format, rng RandomSource) (Outcome, error) {
	if err := validateProb(p); err != nil {
		return Outcome{}, err
	}
	rules, err := t.Rules(r, f)
	if err != nil {
		return Outcome{}, err
	}
	if err := rules.validate(); err != nil {
		return Outcome{}, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return simulateOne(ctx, rules, p, f, rng)
}

func simulateOne(ctx context.Context, rules Rules, p float64, f Format, rng RandomSource) (Outcome, error) {
	wins, losses, err := walk(ctx, rules, f.MatchWinRate(p), rng)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Matches: wins + losses, Wins: wins, Losses: losses}
	if f == BestOfThree {
		out.Games = float64(wins)*GamesPerMatchWon(p) + float64(losses)*GamesPerMatchLost(p)
	} else {
		out.Games = float64(out.Matches)
	}
	return out, nil
}

// RunSimulation returns the mean game count over trials independent climbs.
// trials <= 0 means DefaultTrials. The error of the estimate shrinks as
// 1/sqrt(trials) and is not reported here; see RunMonteCarlo.
func (t *Table) RunSimulation(ctx context.Context, p float64, r Rank, f Format, trials int, rng RandomSource) (float64, error) {
	st, err := t.RunMonteCarlo(ctx, p, r, f, trials, rng)
	if err != nil {
		return 0, err
	}
	return st.Mean, nil
}

// RunMonteCarlo repeats climbs and returns summary stats. It stops with
// ctx's error once ctx is done, including in the middle of a climb.
func (t *Table) RunMonteCarlo(ctx context.Context, p float64, r Rank, f Format, trials int, rng RandomSource) (Stats, error) {
	if err := validateProb(p); err != nil {
		return Stats{}, err
	}
	rules, err := t.Rules(r, f)
	if err != nil {
		return Stats{}, err
	}
	if err := rules.validate(); err != nil {
		return Stats{}, err
	}
	if trials <= 0 {
		trials = DefaultTrials
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	samples := make([]float64, trials)
	for i := range samples {
		if err := ctx.Err(); err != nil {
			return Stats{}, fmt.Errorf("simulation stopped after %d of %d climbs: %w", i, trials, err)
		}
		out, err := simulateOne(ctx, rules, p, f, rng)
		if err != nil {
			return Stats{}, err
		}
		samples[i] = out.Games
	}
	st := calcStats(samples)
	t.logger().Debug("simulation finished",
		"mode", t.Mode, "rank", r.String(), "format", f.String(), "p", p,
		"trials", trials, "mean", st.Mean, "stderr", st.StdErr)
	return st, nil
}

// calcStats computes mean, population variance and interpolated percentiles.
func calcStats(xs []float64) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	mean := sum / float64(n)

	var acc float64
	for _, v := range xs {
		d := v - mean
		acc += d * d
	}
	variance := acc / float64(n)
	stddev := math.Sqrt(variance)

	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return cp[0]
		}
		if p >= 1 {
			return cp[n-1]
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return cp[i]
		}
		return cp[i]*(1-f) + cp[i+1]*f
	}

	return Stats{
		Trials:  n,
		Mean:    mean,
		Var:     variance,
		StdDev:  stddev,
		StdErr:  stddev / math.Sqrt(float64(n)),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}
