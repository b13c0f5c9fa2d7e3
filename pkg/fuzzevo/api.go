// Package fuzzevo is the public entry point: it loads a dataset, runs the
// trial driver and keeps run metrics in a store.
package fuzzevo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fuzzevo/internal/config"
	"fuzzevo/internal/dataset"
	"fuzzevo/internal/evo"
	"fuzzevo/internal/fuzzy"
	"fuzzevo/internal/logging"
	"fuzzevo/internal/model"
	"fuzzevo/internal/stats/report"
	"fuzzevo/internal/storage"
	"fuzzevo/internal/telemetry"
	"fuzzevo/internal/trial"
	"fuzzevo/internal/truth"
)

const defaultDBPath = "fuzzevo.db"

var ErrNoRuns = errors.New("no runs available")

type Options struct {
	StoreKind string
	DBPath    string
	Logger    *slog.Logger
	// Registerer, when set, receives the search metrics.
	Registerer prometheus.Registerer
}

type Client struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

type RunSummary struct {
	RunID          string
	TrainingRows   int
	TestRows       int
	Interpretation *fuzzy.Interpretation
	Report         trial.Report
}

type RunRef struct {
	RunID  string
	Latest bool
}

type RunDetail struct {
	Run    model.Run
	Trials []model.Trial
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.Open(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Client{store: store, logger: logger}
	if opts.Registerer != nil {
		c.metrics = telemetry.New(opts.Registerer)
	}
	return c, nil
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Close() error {
	return storage.Close(c.store)
}

// Run loads cfg.Data, holds out cfg.TestProportion of it, runs every trial and
// records the run. The split and the trial seeds both come from cfg.Seed.
func (c *Client) Run(ctx context.Context, cfg config.Experiment) (RunSummary, error) {
	if cfg.Data == "" {
		return RunSummary{}, fmt.Errorf("%w: data path is required", config.ErrInvalidConfig)
	}
	logic, err := cfg.ParsedLogic()
	if err != nil {
		c.logger.Warn("unknown logic, using lukasiewicz", slog.String("logic", cfg.Logic))
		logic = truth.Lukasiewicz
		cfg.Logic = logic.String()
	}
	penalty, err := cfg.ComplexityPenalty()
	if err != nil {
		return RunSummary{}, err
	}
	ds, err := dataset.Load(cfg.Data, dataset.Options{Output: cfg.Output, Sheet: cfg.Sheet})
	if err != nil {
		return RunSummary{}, fmt.Errorf("load dataset: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	test := ds.Split(cfg.TestProportion, rng)
	if ds.Len() == 0 || test.Len() == 0 {
		return RunSummary{}, fmt.Errorf("%w: training (%d rows) and test (%d rows) sets must both be non-empty", config.ErrInvalidConfig, ds.Len(), test.Len())
	}
	interp, seedVar, err := trial.BuildInterpretation(ds, cfg.SeedInput, cfg.NSets)
	if err != nil {
		return RunSummary{}, err
	}
	interp.Freeze()
	rules, protected := trial.SeedRules(interp, seedVar)

	runID := storage.NewRunID(time.Now())
	logger := c.logger.With(slog.String("run_id", runID))
	logger.Info("run started",
		slog.String("logic", logic.String()),
		slog.Int("training_rows", ds.Len()),
		slog.Int("test_rows", test.Len()),
		slog.Int("trials", cfg.Trials),
	)

	setup := trial.Setup{
		Interpretation: interp,
		SeedRules:      rules,
		Protected:      protected,
		Operators:      cfg.Operators,
		MaxConditions:  cfg.MaxConditions,
		Penalty:        penalty,
		Category:       cfg.Category,
		Goal:           cfg.Goal,
		Training:       ds,
		Test:           test,
		Trials:         cfg.Trials,
		Workers:        cfg.Workers,
		MasterSeed:     rng.Int63(),
		Evolve:         cfg.EvolveConfig(),
		TracerFor: func(i int) evo.Tracer {
			tracers := evo.MultiTracer{evo.LogTracer{Logger: logger.With(slog.Int("trial", i))}}
			if c.metrics != nil {
				tracers = append(tracers, c.metrics.Tracer(i))
			}
			return tracers
		},
	}
	if c.metrics != nil {
		setup.Observer = c.metrics.ObserveOperator
		setup.TrialHook = func(int) func() { return c.metrics.TrialStarted() }
	}

	report, err := trial.RunForLogic(ctx, logic, setup)
	if err != nil {
		return RunSummary{}, err
	}
	if err := c.record(ctx, runID, cfg, ds.Len(), test.Len(), report); err != nil {
		return RunSummary{}, fmt.Errorf("record run %s: %w", runID, err)
	}
	logger.Info("run finished",
		slog.Float64("mean_improvement", report.MeanImprovement),
		slog.Float64("mode_frequency", report.ModeFrequency),
		slog.Duration("elapsed", report.Elapsed),
	)
	return RunSummary{
		RunID:          runID,
		TrainingRows:   ds.Len(),
		TestRows:       test.Len(),
		Interpretation: interp,
		Report:         report,
	}, nil
}

func (c *Client) record(ctx context.Context, runID string, cfg config.Experiment, trainRows, testRows int, report trial.Report) error {
	best := 0.0
	trials := make([]model.Trial, len(report.Trials))
	for i, r := range report.Trials {
		if i == 0 || r.BestFitness > best {
			best = r.BestFitness
		}
		trials[i] = model.Trial{
			VersionedRecord: storage.CurrentVersion(),
			Trial:           r.Trial,
			Seed:            r.Seed,
			BestFitness:     r.BestFitness,
			Generations:     r.Generations,
			Stopped:         r.Stopped,
			TestTSSBefore:   r.TestTSSBefore,
			TestTSSAfter:    r.TestTSSAfter,
			TrainTSS:        r.TrainTSS,
			Improvement:     r.Improvement,
			Fingerprint:     r.Signature.Fingerprint,
			Rules:           r.Signature.Rules,
			Complexity:      r.Signature.Complexity,
			ElapsedMillis:   r.Elapsed.Milliseconds(),
		}
		if err := c.store.SaveFitnessHistory(ctx, runID, r.Trial, r.History); err != nil {
			return err
		}
		if err := c.store.SaveGenerationDiagnostics(ctx, runID, r.Trial, diagnosticsOf(r.Diagnostics)); err != nil {
			return err
		}
	}
	if err := c.store.SaveTrials(ctx, runID, trials); err != nil {
		return err
	}
	return c.store.SaveRun(ctx, model.Run{
		VersionedRecord: storage.CurrentVersion(),
		ID:              runID,
		CreatedAt:       time.Now().UTC(),
		Dataset:         cfg.Data,
		TrainingRows:    trainRows,
		TestRows:        testRows,
		Config:          runConfigOf(cfg, report.Logic),
		Summary: model.RunSummary{
			MeanTSSBefore:   report.MeanTSSBefore,
			MeanTSSAfter:    report.MeanTSSAfter,
			MeanImprovement: report.MeanImprovement,
			ModeFrequency:   report.ModeFrequency,
			ModeFingerprint: report.ModeFingerprint,
			BestFitness:     best,
			ElapsedMillis:   report.Elapsed.Milliseconds(),
		},
	})
}

func runConfigOf(cfg config.Experiment, logic string) model.RunConfig {
	return model.RunConfig{
		Logic:          logic,
		Seed:           cfg.Seed,
		Trials:         cfg.Trials,
		NSets:          cfg.NSets,
		SeedInput:      cfg.SeedInput,
		Category:       cfg.Category,
		Population:     cfg.Population,
		Elites:         cfg.Elites,
		Generations:    cfg.Generations,
		MutationTrials: cfg.MutationTrials,
		MutationProb:   cfg.MutationProb,
		MaxConditions:  cfg.MaxConditions,
		Alpha:          cfg.Alpha,
		Penalty:        cfg.Penalty,
		Goal:           cfg.Goal,
		TestProportion: cfg.TestProportion,
		Operators:      cfg.Operators,
	}
}

func diagnosticsOf(gens []evo.GenerationStats) []model.GenerationDiagnostics {
	out := make([]model.GenerationDiagnostics, len(gens))
	for i, g := range gens {
		out[i] = model.GenerationDiagnostics{
			Generation:     g.Generation,
			BestFitness:    g.Best,
			MeanFitness:    g.Mean,
			MinFitness:     g.Min,
			MeanComplexity: g.MeanComplexity,
			MeanRules:      g.MeanRules,
			Mutations:      g.Mutations,
			Diversity:      g.Diversity,
		}
	}
	return out
}

// Runs lists recorded runs, newest first, at most limit of them (all when
// limit <= 0).
func (c *Client) Runs(ctx context.Context, limit int) ([]model.Run, error) {
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (c *Client) resolve(ctx context.Context, ref RunRef) (string, error) {
	if ref.RunID != "" && ref.Latest {
		return "", errors.New("use either run id or latest")
	}
	if ref.RunID != "" {
		return ref.RunID, nil
	}
	if !ref.Latest {
		return "", errors.New("run id or latest is required")
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrNoRuns
	}
	return runs[0].ID, nil
}

func (c *Client) Show(ctx context.Context, ref RunRef) (RunDetail, error) {
	runID, err := c.resolve(ctx, ref)
	if err != nil {
		return RunDetail{}, err
	}
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return RunDetail{}, err
	}
	if !ok {
		return RunDetail{}, fmt.Errorf("run not found: %s", runID)
	}
	trials, _, err := c.store.GetTrials(ctx, runID)
	if err != nil {
		return RunDetail{}, err
	}
	return RunDetail{Run: run, Trials: trials}, nil
}

// Delete removes a run and everything recorded for it.
func (c *Client) Delete(ctx context.Context, ref RunRef) (string, error) {
	runID, err := c.resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if _, ok, err := c.store.GetRun(ctx, runID); err != nil {
		return "", err
	} else if !ok {
		return "", fmt.Errorf("run not found: %s", runID)
	}
	return runID, c.store.DeleteRun(ctx, runID)
}

// FitnessHistories returns the best-fitness curve of every trial of a run.
func (c *Client) FitnessHistories(ctx context.Context, ref RunRef) (string, [][]float64, error) {
	detail, err := c.Show(ctx, ref)
	if err != nil {
		return "", nil, err
	}
	histories := make([][]float64, 0, len(detail.Trials))
	for _, t := range detail.Trials {
		history, ok, err := c.store.GetFitnessHistory(ctx, detail.Run.ID, t.Trial)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return "", nil, fmt.Errorf("fitness history not found for run %s trial %d", detail.Run.ID, t.Trial)
		}
		histories = append(histories, history)
	}
	return detail.Run.ID, histories, nil
}

func (c *Client) Diagnostics(ctx context.Context, ref RunRef, trialIndex int) ([]model.GenerationDiagnostics, error) {
	runID, err := c.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID, trialIndex)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run %s trial %d", runID, trialIndex)
	}
	return diagnostics, nil
}

// Plot writes the fitness curves of a run to path (format by extension).
func (c *Client) Plot(ctx context.Context, ref RunRef, path string) (string, error) {
	runID, histories, err := c.FitnessHistories(ctx, ref)
	if err != nil {
		return "", err
	}
	if err := report.WriteFitnessPlot(path, "Best fitness per generation: "+runID, histories); err != nil {
		return "", err
	}
	return runID, nil
}

// Export writes the stored records of a run as plain files under
// outDir/<run id> and returns that directory.
func (c *Client) Export(ctx context.Context, ref RunRef, outDir string) (string, error) {
	detail, err := c.Show(ctx, ref)
	if err != nil {
		return "", err
	}
	artifacts := report.RunArtifacts{
		Run:         detail.Run,
		Trials:      detail.Trials,
		Histories:   make([][]float64, 0, len(detail.Trials)),
		Diagnostics: make(map[int][]model.GenerationDiagnostics, len(detail.Trials)),
	}
	for _, t := range detail.Trials {
		history, _, err := c.store.GetFitnessHistory(ctx, detail.Run.ID, t.Trial)
		if err != nil {
			return "", err
		}
		artifacts.Histories = append(artifacts.Histories, history)
		diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, detail.Run.ID, t.Trial)
		if err != nil {
			return "", err
		}
		if ok {
			artifacts.Diagnostics[t.Trial] = diagnostics
		}
	}
	return report.WriteRunArtifacts(outDir, artifacts)
}

// PartitionSample is the membership of x in every set of a partition.
type PartitionSample struct {
	X           float64
	Memberships []float64
}

// DescribePartition evaluates an n-set triangular partition of [begin, end]
// at samples evenly spaced points.
func DescribePartition(n int, begin, end float64, samples int) ([]string, []PartitionSample, error) {
	sets := fuzzy.MakeTriangles(n, begin, end, 0, 1)
	if sets == nil {
		return nil, nil, fmt.Errorf("partition needs at least 2 sets, got %d", n)
	}
	if !(begin < end) {
		return nil, nil, fmt.Errorf("partition range [%g, %g] is empty", begin, end)
	}
	samples = max(samples, 2)
	out := make([]PartitionSample, samples)
	for i := range out {
		x := begin + (end-begin)*float64(i)/float64(samples-1)
		ms := make([]float64, len(sets))
		for s, m := range sets {
			ms[s] = m(x)
		}
		out[i] = PartitionSample{X: x, Memberships: ms}
	}
	return fuzzy.MakeLabels(n), out, nil
}
