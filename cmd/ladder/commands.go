package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/xtding233/rank-ladder/internal/ladder"
	"github.com/xtding233/rank-ladder/internal/report"
)

// pointFlags are the flags of the single-point commands.
type pointFlags struct {
	p          float64
	rank       string
	mode       string
	format     string
	protection int
}

func (pf *pointFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&pf.p, "p", 0.5, "single-game win probability")
	f.StringVar(&pf.rank, "rank", "gold", "rank to climb out of")
	f.StringVar(&pf.mode, "mode", string(ladder.ModeConstructed), "limited or constructed")
	f.StringVar(&pf.format, "format", "bo1", "bo1 or bo3")
	f.IntVar(&pf.protection, "protection", -1, "force the protected matches granted on promotion (-1 uses the table)")
}

func (pf *pointFlags) parse() (ladder.Rank, ladder.Mode, ladder.Format, error) {
	r, err := ladder.ParseRank(pf.rank)
	if err != nil {
		return 0, "", 0, err
	}
	m, err := ladder.ParseMode(pf.mode)
	if err != nil {
		return 0, "", 0, err
	}
	f, err := ladder.ParseFormat(pf.format)
	if err != nil {
		return 0, "", 0, err
	}
	return r, m, f, nil
}

func (a *app) tableCmd() *cobra.Command {
	var probs []float64
	var rank string
	cmd := &cobra.Command{
		Use:       "table (limited|constructed)",
		Short:     "Print semicolon separated expected-games tables",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(ladder.ModeLimited), string(ladder.ModeConstructed)},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := ladder.ParseMode(args[0])
			if err != nil {
				return err
			}
			r, err := a.reporter(mode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if mode == ladder.ModeLimited {
				return r.LimitedTable(cmd.Context(), out, orDefault(probs, report.LimitedWinProbs))
			}
			ranks, err := ranksFor(rank)
			if err != nil {
				return err
			}
			for i, rk := range ranks {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := r.ConstructedTable(cmd.Context(), out, rk, orDefault(probs, report.ConstructedWinProbs)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&probs, "probs", nil, "win probabilities (default: the standard sweep)")
	cmd.Flags().StringVar(&rank, "rank", "", "constructed only: a single rank (default: every rank)")
	return cmd
}

func (a *app) impactCmd() *cobra.Command {
	var probs []float64
	var mode, rank string
	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Compare best-of-one expectations with and without tier protection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := ladder.ParseMode(mode)
			if err != nil {
				return err
			}
			rk, err := ladder.ParseRank(rank)
			if err != nil {
				return err
			}
			r, err := a.reporter(m)
			if err != nil {
				return err
			}
			return r.ProtectionImpact(cmd.OutOrStdout(), rk, probs)
		},
	}
	cmd.Flags().Float64SliceVar(&probs, "probs", []float64{0.5, 0.6}, "win probabilities")
	cmd.Flags().StringVar(&mode, "mode", string(ladder.ModeLimited), "limited or constructed")
	cmd.Flags().StringVar(&rank, "rank", "gold", "rank to climb out of")
	return cmd
}

func (a *app) plotCmd() *cobra.Command {
	var dir, rank string
	cmd := &cobra.Command{
		Use:       "plot (limited|constructed)",
		Short:     "Write expected-games plots as PNG files",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(ladder.ModeLimited), string(ladder.ModeConstructed)},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := ladder.ParseMode(args[0])
			if err != nil {
				return err
			}
			ranks, err := ranksFor(rank)
			if err != nil {
				return err
			}
			return a.plots(cmd, mode, dir, ranks)
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&rank, "rank", "", "constructed only: a single rank (default: every rank)")
	return cmd
}

func (a *app) plots(cmd *cobra.Command, mode ladder.Mode, dir string, ranks []ladder.Rank) error {
	r, err := a.reporter(mode)
	if err != nil {
		return err
	}
	if mode == ladder.ModeLimited {
		path := filepath.Join(dir, "Expected_number_of_games_Limited.png")
		if err := r.PlotLimited(cmd.Context(), path, report.LimitedPlotProbs); err != nil {
			return err
		}
		a.log.Info("plot written", "path", path)
		return nil
	}
	caser := cases.Title(language.English)
	for _, rk := range ranks {
		path := filepath.Join(dir, fmt.Sprintf("Expected_number_of_games_Constructed_%s.png", caser.String(rk.String())))
		if err := r.PlotRank(cmd.Context(), path, rk, report.ConstructedPlotProbs); err != nil {
			return err
		}
		a.log.Info("plot written", "path", path)
	}
	return nil
}

func (a *app) expectedCmd() *cobra.Command {
	var pf pointFlags
	var noProtection bool
	cmd := &cobra.Command{
		Use:   "expected",
		Short: "Exact expected games to reach the next rank",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rk, m, f, err := pf.parse()
			if err != nil {
				return err
			}
			st, err := a.settings(m)
			if err != nil {
				return err
			}
			var games float64
			switch {
			case noProtection:
				games, err = st.Table.ExpectedGamesNoProtection(pf.p, rk, f)
			case pf.protection >= 0:
				games, err = st.Table.ExpectedGamesWithProtection(pf.p, rk, f, pf.protection)
			default:
				games, err = st.Table.ExpectedGamesToPromotion(pf.p, rk, f)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%.3f\n", games)
			return err
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&noProtection, "no-protection", false, "use the model without tier protection")
	return cmd
}

func (a *app) simulateCmd() *cobra.Command {
	var pf pointFlags
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Monte Carlo estimate of the games to reach the next rank",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rk, m, f, err := pf.parse()
			if err != nil {
				return err
			}
			st, err := a.settings(m)
			if err != nil {
				return err
			}
			tbl := st.Table
			if pf.protection >= 0 {
				tbl = tbl.WithProtection(f, pf.protection)
			}
			stats, err := tbl.RunMonteCarlo(cmd.Context(), pf.p, rk, f, st.Trials, st.RNG())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"mean %.3f; stderr %.3f; stddev %.3f; p50 %.1f; p90 %.1f; p99 %.1f; trials %d\n",
				stats.Mean, stats.StdErr, stats.StdDev, stats.P50, stats.P90, stats.P99, stats.Trials)
			return err
		},
	}
	pf.register(cmd)
	return cmd
}

// allCmd prints every table and writes every plot of the standard report.
func (a *app) allCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Print every table and write every plot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			limited, err := a.reporter(ladder.ModeLimited)
			if err != nil {
				return err
			}
			if err := limited.LimitedTable(ctx, out, report.LimitedWinProbs); err != nil {
				return err
			}
			if err := a.plots(cmd, ladder.ModeLimited, dir, nil); err != nil {
				return err
			}
			if err := limited.ProtectionImpact(out, ladder.Gold, []float64{0.5, 0.6}); err != nil {
				return err
			}

			constructed, err := a.reporter(ladder.ModeConstructed)
			if err != nil {
				return err
			}
			for _, rk := range ladder.Ranks {
				fmt.Fprintln(out)
				if err := constructed.ConstructedTable(ctx, out, rk, report.ConstructedWinProbs); err != nil {
					return err
				}
			}
			return a.plots(cmd, ladder.ModeConstructed, dir, ladder.Ranks)
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "plot output directory")
	return cmd
}

func ranksFor(name string) ([]ladder.Rank, error) {
	if strings.TrimSpace(name) == "" {
		return ladder.Ranks, nil
	}
	r, err := ladder.ParseRank(name)
	if err != nil {
		return nil, err
	}
	return []ladder.Rank{r}, nil
}

func orDefault(probs, def []float64) []float64 {
	if len(probs) == 0 {
		return def
	}
	return probs
}
