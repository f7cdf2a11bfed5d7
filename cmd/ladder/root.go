package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xtding233/rank-ladder/internal/config"
	"github.com/xtding233/rank-ladder/internal/ladder"
	"github.com/xtding233/rank-ladder/internal/logger"
	"github.com/xtding233/rank-ladder/internal/report"
)

type app struct {
	configDir string
	logLevel  string
	trials    int
	seed      uint64
	workers   int

	log    *slog.Logger
	closer io.Closer
	loader *config.Loader
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ladder",
		Short:         "Expected games to climb the ranked ladder",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}

	def := os.Getenv("LADDER_CONFIG_DIR")
	if def == "" {
		def = "configs"
	}
	f := root.PersistentFlags()
	f.StringVar(&a.configDir, "config", def, "configuration directory")
	f.StringVar(&a.logLevel, "log-level", "", "override the configured log level")
	f.IntVar(&a.trials, "trials", 0, "simulated climbs per point (0 uses the configured value)")
	f.Uint64Var(&a.seed, "seed", 0, "seed for simulations (0 uses the configured value)")
	f.IntVar(&a.workers, "workers", 0, "concurrent evaluations (0 uses GOMAXPROCS)")

	root.AddCommand(
		a.tableCmd(),
		a.impactCmd(),
		a.plotCmd(),
		a.expectedCmd(),
		a.simulateCmd(),
		a.allCmd(),
	)
	return root
}

func (a *app) init() error {
	cfg, err := logger.LoadConfig(filepath.Join(a.configDir, "logging.yaml"))
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Level = a.logLevel
	}
	log, closer, err := logger.New(cfg)
	if err != nil {
		return err
	}
	a.log, a.closer = log, closer
	a.loader = config.NewLoader(a.configDir)
	a.loader.Log = log
	return nil
}

// settings resolves mode and applies the command-line overrides.
func (a *app) settings(mode ladder.Mode) (config.Settings, error) {
	st, err := a.loader.Settings(mode)
	if err != nil {
		return config.Settings{}, err
	}
	var o config.Overrides
	if a.trials > 0 {
		o.Trials = &a.trials
	}
	if a.seed != 0 {
		o.Seed = &a.seed
	}
	return st.Apply(o), nil
}

func (a *app) reporter(mode ladder.Mode) (*report.Reporter, error) {
	st, err := a.settings(mode)
	if err != nil {
		return nil, err
	}
	return &report.Reporter{Table: st.Table, Trials: st.Trials, Seed: st.Seed, Workers: a.workers}, nil
}
