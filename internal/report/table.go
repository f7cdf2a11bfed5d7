package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/xtding233/rank-ladder/internal/ladder"
)

// title upper-cases the first letter of each word. Casers keep state, so
// each call gets its own.
func title(s string) string { return cases.Title(language.English).String(s) }

// writeRows prints one semicolon separated row per probability.
func writeRows(w io.Writer, header string, probs []float64, cols [][]Point) error {
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	for i, p := range probs {
		fields := []string{fmt.Sprintf("%.3f", p)}
		for _, col := range cols {
			fields = append(fields, fmt.Sprintf("%.3f", col[i].Games))
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "; ")); err != nil {
			return err
		}
	}
	return nil
}

// LimitedTable prints expected best-of-one games for every rank.
func (r *Reporter) LimitedTable(ctx context.Context, w io.Writer, probs []float64) error {
	header := []string{strings.ToUpper(string(r.Table.Mode)) + " win_prob"}
	var cols [][]Point
	for _, rank := range ladder.Ranks {
		col, err := r.Curve(ctx, 0, probs, r.Exact(rank, ladder.Single))
		if err != nil {
			return fmt.Errorf("%s: %w", rank, err)
		}
		cols = append(cols, col)
		header = append(header, fmt.Sprintf("%s to %s", rank, rank.Next()))
	}
	return writeRows(w, strings.Join(header, "; "), probs, cols)
}

// ConstructedTable prints, for one rank, the exact best-of-one value, the
// simulated best-of-three value and the two cross checks.
func (r *Reporter) ConstructedTable(ctx context.Context, w io.Writer, rank ladder.Rank, probs []float64) error {
	columns := []struct {
		stream int
		fn     Func
	}{
		{0, r.Exact(rank, ladder.Single)},
		{SimStream(rank, ladder.BestOfThree), r.Simulated(rank, ladder.BestOfThree)},
		{SimStream(rank, ladder.Single), r.Simulated(rank, ladder.Single)},
		{0, r.Exact(rank, ladder.BestOfThree)},
	}
	cols := make([][]Point, len(columns))
	for i, c := range columns {
		col, err := r.Curve(ctx, c.stream, probs, c.fn)
		if err != nil {
			return fmt.Errorf("%s: %w", rank, err)
		}
		cols[i] = col
	}
	header := fmt.Sprintf("%s win_prob in rank %s; bo1; bo3; bo1 sim check; bo3 exact check",
		strings.ToUpper(string(r.Table.Mode)), rank)
	return writeRows(w, header, probs, cols)
}

// ProtectionImpact prints the best-of-one expectation with and without tier
// protection for one rank.
func (r *Reporter) ProtectionImpact(w io.Writer, rank ladder.Rank, probs []float64) error {
	for _, p := range probs {
		without, err := r.Table.ExpectedGamesNoProtection(p, rank, ladder.Single)
		if err != nil {
			return err
		}
		with, err := r.Table.ExpectedGamesToPromotion(p, rank, ladder.Single)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w,
			"%s best-of-one from %s to %s at a %.1f%% winrate: %.3f games without tier protection, %.3f with it.\n",
			title(string(r.Table.Mode)), rank, rank.Next(), p*100, without, with)
		if err != nil {
			return err
		}
	}
	return nil
}
