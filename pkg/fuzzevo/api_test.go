package fuzzevo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuzzevo/internal/config"
)

func writeCSV(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("signal,noise,interaction\n")
	for i := 0; i < 60; i++ {
		x := float64(i) / 59
		label := 0
		if x > 0.5 {
			label = 1
		}
		fmt.Fprintf(&b, "%g,%g,%d\n", x, float64((i*17)%60)/60, label)
	}
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func smallConfig(data string) config.Experiment {
	cfg := config.Default()
	cfg.Data = data
	cfg.Seed = 5
	cfg.Trials = 3
	cfg.Workers = 2
	cfg.NSets = 3
	cfg.Population = 16
	cfg.Generations = 5
	cfg.Normalize()
	return cfg
}

func newClient(t *testing.T, reg prometheus.Registerer) *Client {
	t.Helper()
	client, err := New(Options{StoreKind: "memory", Registerer: reg})
	require.NoError(t, err)
	require.NoError(t, client.Init(context.Background()))
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRunRecordsMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	client := newClient(t, reg)

	summary, err := client.Run(ctx, smallConfig(writeCSV(t)))
	require.NoError(t, err)
	assert.Equal(t, 54, summary.TrainingRows)
	assert.Equal(t, 6, summary.TestRows)
	assert.Len(t, summary.Report.Trials, 3)
	assert.Equal(t, "lukasiewicz", summary.Report.Logic)
	assert.True(t, summary.Interpretation.Frozen())
	assert.Equal(t, 2, summary.Interpretation.NumPartitions(0), "seed input gets one set per category")

	runs, err := client.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, summary.RunID, runs[0].ID)
	assert.Equal(t, 16, runs[0].Config.Population)
	assert.InDelta(t, summary.Report.MeanImprovement, runs[0].Summary.MeanImprovement, 1e-12)

	detail, err := client.Show(ctx, RunRef{Latest: true})
	require.NoError(t, err)
	require.Len(t, detail.Trials, 3)
	for i, tr := range detail.Trials {
		assert.Equal(t, summary.Report.Trials[i].Signature.Fingerprint, tr.Fingerprint)
	}

	runID, histories, err := client.FitnessHistories(ctx, RunRef{RunID: summary.RunID})
	require.NoError(t, err)
	assert.Equal(t, summary.RunID, runID)
	require.Len(t, histories, 3)
	assert.Len(t, histories[0], 5)

	diagnostics, err := client.Diagnostics(ctx, RunRef{Latest: true}, 2)
	require.NoError(t, err)
	assert.Len(t, diagnostics, 5)

	assert.Equal(t, 15.0, sumGenerations(t, reg))
	assert.Equal(t, uint64(3), trialDurationCount(t, reg))
}

func gather(t *testing.T, reg *prometheus.Registry, name string) []*dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()
		}
	}
	return nil
}

func sumGenerations(t *testing.T, reg *prometheus.Registry) float64 {
	total := 0.0
	for _, m := range gather(t, reg, "fuzzevo_generations_total") {
		total += m.GetCounter().GetValue()
	}
	return total
}

func trialDurationCount(t *testing.T, reg *prometheus.Registry) uint64 {
	metrics := gather(t, reg, "fuzzevo_trial_duration_seconds")
	if len(metrics) == 0 {
		return 0
	}
	return metrics[0].GetHistogram().GetSampleCount()
}

func TestRunIsReproducibleFromSeed(t *testing.T) {
	ctx := context.Background()
	data := writeCSV(t)
	a, err := newClient(t, nil).Run(ctx, smallConfig(data))
	require.NoError(t, err)
	b, err := newClient(t, nil).Run(ctx, smallConfig(data))
	require.NoError(t, err)
	for i := range a.Report.Trials {
		assert.Equal(t, a.Report.Trials[i].Seed, b.Report.Trials[i].Seed)
		assert.Equal(t, a.Report.Trials[i].History, b.Report.Trials[i].History)
		assert.Equal(t, a.Report.Trials[i].Rules, b.Report.Trials[i].Rules)
	}
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRunRejectsBadInput(t *testing.T) {
	client := newClient(t, nil)
	ctx := context.Background()

	_, err := client.Run(ctx, smallConfig(""))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = client.Run(ctx, smallConfig(filepath.Join(t.TempDir(), "missing.csv")))
	assert.Error(t, err)

	cfg := smallConfig(writeCSV(t))
	cfg.TestProportion = 0
	_, err = client.Run(ctx, cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRunFallsBackToLukasiewicz(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	client, err := New(Options{
		StoreKind: "memory",
		Logger:    slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn})),
	})
	require.NoError(t, err)
	require.NoError(t, client.Init(ctx))
	t.Cleanup(func() { _ = client.Close() })

	cfg := smallConfig(writeCSV(t))
	cfg.Logic = "zadeh"
	summary, err := client.Run(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "lukasiewicz", summary.Report.Logic)
	assert.Contains(t, logs.String(), "unknown logic, using lukasiewicz")
	assert.Contains(t, logs.String(), "logic=zadeh")

	detail, err := client.Show(ctx, RunRef{RunID: summary.RunID})
	require.NoError(t, err)
	assert.Equal(t, "lukasiewicz", detail.Run.Config.Logic)
}

func TestLookupsWithoutRuns(t *testing.T) {
	client := newClient(t, nil)
	ctx := context.Background()

	_, err := client.Show(ctx, RunRef{Latest: true})
	assert.True(t, errors.Is(err, ErrNoRuns))
	_, err = client.Show(ctx, RunRef{})
	assert.Error(t, err)
	_, err = client.Show(ctx, RunRef{RunID: "x", Latest: true})
	assert.Error(t, err)
	_, err = client.Show(ctx, RunRef{RunID: "x"})
	assert.Error(t, err)
	_, err = client.Diagnostics(ctx, RunRef{RunID: "x"}, 0)
	assert.Error(t, err)
}

func TestPlot(t *testing.T) {
	ctx := context.Background()
	client := newClient(t, nil)
	summary, err := client.Run(ctx, smallConfig(writeCSV(t)))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "fitness.png")
	runID, err := client.Plot(ctx, RunRef{Latest: true}, out)
	require.NoError(t, err)
	assert.Equal(t, summary.RunID, runID)
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	client := newClient(t, nil)
	summary, err := client.Run(ctx, smallConfig(writeCSV(t)))
	require.NoError(t, err)

	dir, err := client.Export(ctx, RunRef{RunID: summary.RunID}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, summary.RunID, filepath.Base(dir))
	for _, name := range []string{"run.json", "trials.json", "fitness_history.csv", "diagnostics_0.json", "diagnostics_2.json"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	_, err = client.Export(ctx, RunRef{RunID: "missing"}, t.TempDir())
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	client := newClient(t, nil)
	first, err := client.Run(ctx, smallConfig(writeCSV(t)))
	require.NoError(t, err)

	deleted, err := client.Delete(ctx, RunRef{Latest: true})
	require.NoError(t, err)
	assert.Equal(t, first.RunID, deleted)

	runs, err := client.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
	_, _, err = client.FitnessHistories(ctx, RunRef{RunID: first.RunID})
	assert.Error(t, err)

	_, err = client.Delete(ctx, RunRef{RunID: first.RunID})
	assert.ErrorContains(t, err, "run not found")
}

func TestDescribePartition(t *testing.T) {
	labels, samples, err := DescribePartition(3, 0, 10, 5)
	require.NoError(t, err)
	assert.Len(t, labels, 3)
	require.Len(t, samples, 5)
	assert.Equal(t, 0.0, samples[0].X)
	assert.Equal(t, 10.0, samples[4].X)
	for _, s := range samples {
		sum := 0.0
		for _, m := range s.Memberships {
			sum += m
		}
		assert.InDelta(t, 1, sum, 1e-9)
	}
	assert.InDelta(t, 1, samples[2].Memberships[1], 1e-9)

	_, _, err = DescribePartition(1, 0, 1, 3)
	assert.Error(t, err)
	_, _, err = DescribePartition(3, 1, 1, 3)
	assert.Error(t, err)
}
