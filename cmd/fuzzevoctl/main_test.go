package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuzzevo/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithStderr(t, args...)
	return out, err
}

func executeWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeDataset(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("x,noise,label\n")
	for i := 0; i < 40; i++ {
		x := float64(i) / 39
		label := "no"
		if x > 0.5 {
			label = "yes"
		}
		fmt.Fprintf(&b, "%g,%g,%s\n", x, float64((i*7)%40)/40, label)
	}
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func smallRunArgs(data string) []string {
	return []string{
		"run",
		"--data", data,
		"--seed", "3",
		"--trials", "2",
		"--workers", "2",
		"--nsets", "3",
		"--population", "8",
		"--generations", "3",
		"--store", "memory",
		"--log-level", "error",
	}
}

type runOutput struct {
	RunID        string `json:"run_id"`
	TrainingRows int    `json:"training_rows"`
	TestRows     int    `json:"test_rows"`
	Report       struct {
		Logic  string `json:"logic"`
		Trials []struct {
			Trial       int       `json:"trial"`
			Generations int       `json:"generations"`
			History     []float64 `json:"history"`
		} `json:"trials"`
		ModeFrequency float64 `json:"mode_frequency"`
	} `json:"report"`
}

func TestRunJSON(t *testing.T) {
	data := writeDataset(t)
	out, err := execute(t, append(smallRunArgs(data), "--json", "--logic", "godel")...)
	require.NoError(t, err)

	var got runOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.RunID)
	assert.Equal(t, 40, got.TrainingRows+got.TestRows)
	assert.Equal(t, 4, got.TestRows)
	assert.Equal(t, "godel", got.Report.Logic)
	require.Len(t, got.Report.Trials, 2)
	for i, tr := range got.Report.Trials {
		assert.Equal(t, i, tr.Trial)
		assert.Equal(t, 3, tr.Generations)
		assert.Len(t, tr.History, 3)
	}
	assert.Greater(t, got.Report.ModeFrequency, 0.0)
}

func TestRunTextReport(t *testing.T) {
	data := writeDataset(t)
	plot := filepath.Join(t.TempDir(), "fitness.png")
	out, err := execute(t, append(smallRunArgs(data), "--plot", plot)...)
	require.NoError(t, err)

	assert.Contains(t, out, "Parameters:")
	assert.Contains(t, out, "Logic: lukasiewicz")
	assert.Contains(t, out, "# Trial 0")
	assert.Contains(t, out, "# Trial 1")
	assert.Contains(t, out, "TSS change:")
	assert.Contains(t, out, "Mean improvement:")
	assert.Contains(t, out, "Frequency of the most common solution:")

	info, err := os.Stat(plot)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRunConfigFileWithFlagOverride(t *testing.T) {
	data := writeDataset(t)
	cfgPath := filepath.Join(t.TempDir(), "experiment.yaml")
	yaml := fmt.Sprintf(`data: %s
seed: 9
trials: 3
nsets: 3
population: 8
generations: 2
logic: product
log:
  level: error
`, data)
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	out, err := execute(t, "run", "--config", cfgPath, "--trials", "1", "--store", "memory", "--json")
	require.NoError(t, err)

	var got runOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "product", got.Report.Logic)
	require.Len(t, got.Report.Trials, 1)
	assert.Equal(t, 2, got.Report.Trials[0].Generations)
}

func TestRunRejectsInvalidSettings(t *testing.T) {
	data := writeDataset(t)

	_, err := execute(t, append(smallRunArgs(data), "--nsets", "1")...)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig), "unexpected error: %v", err)

	_, err = execute(t, "run", "--store", "memory", "--log-level", "error")
	assert.True(t, errors.Is(err, config.ErrInvalidConfig), "unexpected error: %v", err)
}

func TestRunFallsBackToLukasiewicz(t *testing.T) {
	data := writeDataset(t)
	args := append(smallRunArgs(data), "--logic", "boolean", "--log-level", "warn", "--log-format", "text")
	out, stderr, err := executeWithStderr(t, args...)
	require.NoError(t, err)

	assert.Contains(t, out, "Logic: lukasiewicz")
	assert.Contains(t, stderr, "unknown logic, using lukasiewicz")
	assert.Contains(t, stderr, "logic=boolean")
}

func TestRunsWithEmptyStore(t *testing.T) {
	out, err := execute(t, "runs", "--store", "memory")
	require.NoError(t, err)
	assert.Equal(t, "no runs recorded\n", out)
}

func TestShowAndPlotNeedARun(t *testing.T) {
	_, err := execute(t, "show", "--store", "memory")
	assert.ErrorContains(t, err, "--latest is required")

	_, err = execute(t, "show", "abc", "--latest", "--store", "memory")
	assert.ErrorContains(t, err, "not both")

	_, err = execute(t, "plot", "--latest", "--store", "memory", "--out", filepath.Join(t.TempDir(), "p.png"))
	assert.Error(t, err)
}

func TestPartition(t *testing.T) {
	out, err := execute(t, "partition", "--sets", "3", "--samples", "5")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "x"))
	assert.Contains(t, lines[0], "is average")
	// the apex of the middle set
	assert.Contains(t, lines[3], "1.000")

	_, err = execute(t, "partition", "--sets", "1")
	assert.Error(t, err)
}

func TestEnvFileIsApplied(t *testing.T) {
	data := writeDataset(t)
	envPath := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("FUZZEVO_LOGIC=product\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("FUZZEVO_LOGIC") })

	args := []string{"--env-file", envPath}
	args = append(args, smallRunArgs(data)...)
	out, err := execute(t, append(args, "--json")...)
	require.NoError(t, err)

	var got runOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "product", got.Report.Logic)
}

func TestDeleteUnknownRun(t *testing.T) {
	_, err := execute(t, "delete", "nope", "--store", "memory")
	assert.ErrorContains(t, err, "run not found")
}
