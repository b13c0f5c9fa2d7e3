package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"fuzzevo/internal/config"
	"fuzzevo/internal/telemetry"
	"fuzzevo/internal/trial"
	"fuzzevo/pkg/fuzzevo"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		store      storeFlags
		jsonOut    bool
		plotPath   string
		flagCfg    = config.Default()
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve classifiers over a dataset and record the run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, &cfg, flagCfg)
			cfg.Normalize()
			if err := cfg.Validate(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("store") && cfg.Store.Kind != config.Default().Store.Kind {
				store.kind = cfg.Store.Kind
			}
			if !cmd.Flags().Changed("db") && cfg.Store.Path != "" {
				store.db = cfg.Store.Path
			}
			return runExperiment(cmd, cfg, store, jsonOut, plotPath)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML experiment file")
	f.StringVar(&flagCfg.Data, "data", "", "CSV or XLSX dataset")
	f.StringVar(&flagCfg.Sheet, "sheet", "", "XLSX sheet (default first)")
	f.StringVar(&flagCfg.Output, "output", "", "output column (default last)")
	f.StringVar(&flagCfg.SeedInput, "seed-input", "", "input partitioned into one set per category for the seed rules (default first)")
	f.IntVar(&flagCfg.Category, "category", flagCfg.Category, "positive category of the TSS fitness")
	f.StringVar(&flagCfg.Logic, "logic", flagCfg.Logic, "truth logic: lukasiewicz|godel|product")
	f.Int64Var(&flagCfg.Seed, "seed", 0, "master random seed")
	f.IntVar(&flagCfg.Trials, "trials", flagCfg.Trials, "independent trials")
	f.IntVar(&flagCfg.Workers, "workers", 0, "parallel trials (default GOMAXPROCS)")
	f.IntVar(&flagCfg.NSets, "nsets", flagCfg.NSets, "fuzzy sets per input")
	f.IntVar(&flagCfg.Population, "population", flagCfg.Population, "population size (min 8)")
	f.IntVar(&flagCfg.Elites, "elites", 0, "elites per generation (default population/10, max population/2)")
	f.IntVar(&flagCfg.Generations, "generations", flagCfg.Generations, "generations per trial")
	f.IntVar(&flagCfg.MutationTrials, "mutation-trials", flagCfg.MutationTrials, "binomial trials of the per-generation mutation count")
	f.Float64Var(&flagCfg.MutationProb, "mutation-prob", flagCfg.MutationProb, "binomial probability of the per-generation mutation count")
	f.IntVar(&flagCfg.MaxConditions, "max-conditions", flagCfg.MaxConditions, "conditions of a new random rule, at most")
	f.Float64Var(&flagCfg.Alpha, "alpha", flagCfg.Alpha, "complexity penalty per condition")
	f.StringVar(&flagCfg.Penalty, "penalty", flagCfg.Penalty, "complexity penalty: linear|size_proportional|none")
	f.Float64Var(&flagCfg.Goal, "goal", 0, "stop a trial once its best fitness reaches this value (0 disables)")
	f.Float64Var(&flagCfg.TestProportion, "test-proportion", flagCfg.TestProportion, "share of rows held out for testing")
	f.StringVar(&flagCfg.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	f.StringVar(&flagCfg.Log.Level, "log-level", flagCfg.Log.Level, "log level: debug|info|warn|error")
	f.StringVar(&flagCfg.Log.Format, "log-format", flagCfg.Log.Format, "log format: auto|text|json")
	f.BoolVar(&jsonOut, "json", false, "print the report as JSON")
	f.StringVar(&plotPath, "plot", "", "also write the fitness curves to this image file")
	store.register(cmd)
	return cmd
}

// applyFlagOverrides copies every explicitly set flag from flags into cfg.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Experiment, flags config.Experiment) {
	set := cmd.Flags().Changed
	overrides := []struct {
		name  string
		apply func()
	}{
		{"data", func() { cfg.Data = flags.Data }},
		{"sheet", func() { cfg.Sheet = flags.Sheet }},
		{"output", func() { cfg.Output = flags.Output }},
		{"seed-input", func() { cfg.SeedInput = flags.SeedInput }},
		{"category", func() { cfg.Category = flags.Category }},
		{"logic", func() { cfg.Logic = flags.Logic }},
		{"seed", func() { cfg.Seed = flags.Seed }},
		{"trials", func() { cfg.Trials = flags.Trials }},
		{"workers", func() { cfg.Workers = flags.Workers }},
		{"nsets", func() { cfg.NSets = flags.NSets }},
		{"population", func() { cfg.Population = flags.Population; cfg.Elites = 0 }},
		{"elites", func() { cfg.Elites = flags.Elites }},
		{"generations", func() { cfg.Generations = flags.Generations }},
		{"mutation-trials", func() { cfg.MutationTrials = flags.MutationTrials }},
		{"mutation-prob", func() { cfg.MutationProb = flags.MutationProb }},
		{"max-conditions", func() { cfg.MaxConditions = flags.MaxConditions }},
		{"alpha", func() { cfg.Alpha = flags.Alpha }},
		{"penalty", func() { cfg.Penalty = flags.Penalty }},
		{"goal", func() { cfg.Goal = flags.Goal }},
		{"test-proportion", func() { cfg.TestProportion = flags.TestProportion }},
		{"metrics-addr", func() { cfg.MetricsAddr = flags.MetricsAddr }},
		{"log-level", func() { cfg.Log.Level = flags.Log.Level }},
		{"log-format", func() { cfg.Log.Format = flags.Log.Format }},
	}
	for _, o := range overrides {
		if set(o.name) {
			o.apply()
		}
	}
}

func runExperiment(cmd *cobra.Command, cfg config.Experiment, store storeFlags, jsonOut bool, plotPath string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := newLogger(cmd, cfg.Log)
	if err != nil {
		return err
	}

	opts := fuzzevo.Options{Logger: logger}
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts.Registerer = reg

		serveCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := telemetry.Serve(serveCtx, cfg.MetricsAddr, reg); err != nil {
				logger.Error("metrics server stopped", slog.String("addr", cfg.MetricsAddr), slog.Any("error", err))
			}
		}()
		logger.Info("serving metrics", slog.String("addr", cfg.MetricsAddr))
	}

	client, err := openClient(ctx, store, opts)
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Run(ctx, cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			RunID        string       `json:"run_id"`
			TrainingRows int          `json:"training_rows"`
			TestRows     int          `json:"test_rows"`
			Report       trial.Report `json:"report"`
		}{summary.RunID, summary.TrainingRows, summary.TestRows, summary.Report}); err != nil {
			return err
		}
	} else {
		printRunSummary(out, cfg, summary)
	}

	if plotPath != "" {
		if _, err := client.Plot(ctx, fuzzevo.RunRef{RunID: summary.RunID}, plotPath); err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		fmt.Fprintf(out, "\nfitness plot: %s\n", plotPath)
	}
	return nil
}

func printRunSummary(w io.Writer, cfg config.Experiment, s fuzzevo.RunSummary) {
	fmt.Fprintf(w, "Run %s\n", s.RunID)
	fmt.Fprintln(w, "Parameters:")
	fmt.Fprintf(w, "  Seed: %d\n", cfg.Seed)
	fmt.Fprintf(w, "  Trials: %d\n", cfg.Trials)
	fmt.Fprintf(w, "  Logic: %s\n", s.Report.Logic)
	fmt.Fprintf(w, "  Fuzzy sets per input: %d\n", cfg.NSets)
	fmt.Fprintf(w, "  Population size: %d\n", cfg.Population)
	fmt.Fprintf(w, "  Elites: %d\n", cfg.Elites)
	fmt.Fprintf(w, "  Non-elites: %d\n", cfg.Population-cfg.Elites)
	fmt.Fprintf(w, "  Complexity penalty (%s): %g\n", cfg.Penalty, cfg.Alpha)
	fmt.Fprintf(w, "  Proportion held for testing: %g\n", cfg.TestProportion)

	interp := s.Interpretation
	fmt.Fprintln(w, "\nInput variables:")
	for v := 0; v < interp.NumInputs(); v++ {
		fmt.Fprintf(w, "  %d: %s %s\n", v, interp.InputName(uint32(v)), interp.PartitionName(uint32(v)))
	}
	fmt.Fprintf(w, "\nTraining rows: %s\nTesting rows: %s\n", humanize.Comma(int64(s.TrainingRows)), humanize.Comma(int64(s.TestRows)))

	for _, t := range s.Report.Trials {
		fmt.Fprintf(w, "\n# Trial %d (seed %d, %d generations, %s)\n", t.Trial, t.Seed, t.Generations, t.Elapsed.Round(1e6))
		fmt.Fprintf(w, "\n## Best classifier (fitness %s)\n\n%s", humanize.FtoaWithDigits(t.BestFitness, 4), t.Rules)
		fmt.Fprintf(w, "\nTSS change: %.4f -> %.4f (improvement: %.4f)\n", t.TestTSSBefore, t.TestTSSAfter, t.Improvement)
	}
	fmt.Fprintf(w, "\nMean improvement: %.4f\n", s.Report.MeanImprovement)
	fmt.Fprintf(w, "Frequency of the most common solution: %.2f\n", s.Report.ModeFrequency)
	fmt.Fprintf(w, "Elapsed: %s\n", s.Report.Elapsed.Round(1e6))
}
