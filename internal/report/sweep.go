package report

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/xtding233/rank-ladder/internal/ladder"
)

// Point is one evaluated win probability.
type Point struct {
	P     float64
	Games float64
}

// Series is a named curve.
type Series struct {
	Name   string
	Points []Point
}

// Range returns n probabilities start, start+step, ... computed by
// multiplication so that long sweeps do not drift.
func Range(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

var (
	// LimitedWinProbs are the rows of the Limited table.
	LimitedWinProbs = Range(0.40, 0.02, 16)

	// ConstructedWinProbs are the rows of each Constructed table.
	ConstructedWinProbs = []float64{0.45, 0.5, 0.52, 0.54, 0.56, 0.6, 0.62, 0.64, 0.66, 0.68, 0.7, 0.75, 0.8}

	// LimitedPlotProbs and ConstructedPlotProbs are the plot x axes.
	LimitedPlotProbs     = Range(0.48, 0.001, 161)
	ConstructedPlotProbs = Range(0.48, 0.01, 17)
)

// Func evaluates one point. rng is private to the call.
type Func func(ctx context.Context, p float64, rng ladder.RandomSource) (float64, error)

// Reporter evaluates sweeps against one table.
type Reporter struct {
	Table  *ladder.Table
	Trials int

	// Seed makes simulated columns reproducible. Point i of stream s uses
	// Seed + s<<32 + i, so columns on different streams never share draws.
	// Zero uses the crypto source.
	Seed uint64

	// Workers bounds concurrent evaluations; zero means GOMAXPROCS.
	Workers int
}

func (r *Reporter) rng(stream, i int) ladder.RandomSource {
	if r.Seed == 0 {
		return ladder.DefaultRNG()
	}
	return ladder.NewSeededRNG(r.Seed + uint64(stream)<<32 + uint64(i))
}

// SimStream is the seed stream of the simulated curve for rank and f. Exact
// curves ignore their stream and use 0.
func SimStream(rank ladder.Rank, f ladder.Format) int {
	return 1 + 2*int(rank) + int(f)
}

// Curve evaluates fn at every probability, drawing randomness from stream.
// Points are independent, so they run concurrently; results keep the order
// of probs.
func (r *Reporter) Curve(ctx context.Context, stream int, probs []float64, fn Func) ([]Point, error) {
	out := make([]Point, len(probs))
	g, ctx := errgroup.WithContext(ctx)
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for i, p := range probs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := fn(ctx, p, r.rng(stream, i))
			if err != nil {
				return err
			}
			out[i] = Point{P: p, Games: v}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Exact returns the tier-protection model as a Func.
func (r *Reporter) Exact(rank ladder.Rank, f ladder.Format) Func {
	return func(_ context.Context, p float64, _ ladder.RandomSource) (float64, error) {
		return r.Table.ExpectedGamesToPromotion(p, rank, f)
	}
}

// NoProtection returns the reduced model as a Func.
func (r *Reporter) NoProtection(rank ladder.Rank, f ladder.Format) Func {
	return func(_ context.Context, p float64, _ ladder.RandomSource) (float64, error) {
		return r.Table.ExpectedGamesNoProtection(p, rank, f)
	}
}

// Simulated returns the Monte Carlo estimate as a Func.
func (r *Reporter) Simulated(rank ladder.Rank, f ladder.Format) Func {
	return func(ctx context.Context, p float64, rng ladder.RandomSource) (float64, error) {
		return r.Table.RunSimulation(ctx, p, rank, f, r.Trials, rng)
	}
}
