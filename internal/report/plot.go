package report

import (
	"context"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/xtding233/rank-ladder/internal/ladder"
)

// percentTicks labels the win-rate axis as percentages.
type percentTicks struct{}

func (percentTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = fmt.Sprintf("%.0f%%", ticks[i].Value*100)
		}
	}
	return ticks
}

// SavePlot writes series as a line plot. The image format follows the
// extension of path (png, svg, pdf).
func SavePlot(path, title string, series []Series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Game win rate"
	p.Y.Label.Text = "Expected number of games"
	p.X.Tick.Marker = percentTicks{}
	p.Add(plotter.NewGrid())

	var lines []any
	for _, s := range series {
		xys := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			xys[i].X = pt.P
			xys[i].Y = pt.Games
		}
		lines = append(lines, s.Name, xys)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return err
	}
	p.Legend.Top = true
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// PlotLimited plots best-of-one expectations of every rank.
func (r *Reporter) PlotLimited(ctx context.Context, path string, probs []float64) error {
	var series []Series
	for _, rank := range ladder.Ranks {
		pts, err := r.Curve(ctx, 0, probs, r.Exact(rank, ladder.Single))
		if err != nil {
			return err
		}
		series = append(series, Series{Name: title(rank.String()), Points: pts})
	}
	return SavePlot(path, fmt.Sprintf("Expected games to reach the next rank in %s", title(string(r.Table.Mode))), series)
}

// PlotRank plots exact best-of-one against simulated best-of-three for one rank.
func (r *Reporter) PlotRank(ctx context.Context, path string, rank ladder.Rank, probs []float64) error {
	bo1, err := r.Curve(ctx, 0, probs, r.Exact(rank, ladder.Single))
	if err != nil {
		return err
	}
	bo3, err := r.Curve(ctx, SimStream(rank, ladder.BestOfThree), probs, r.Simulated(rank, ladder.BestOfThree))
	if err != nil {
		return err
	}
	t := fmt.Sprintf("Expected games from %s to the next rank in %s", title(rank.String()), title(string(r.Table.Mode)))
	return SavePlot(path, t, []Series{
		{Name: "best-of-1", Points: bo1},
		{Name: "best-of-3", Points: bo3},
	})
}
