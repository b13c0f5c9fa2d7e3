package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuzzevo/internal/evo"
	"fuzzevo/internal/truth"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	cfg.Normalize()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20, cfg.Trials)
	assert.Equal(t, 5, cfg.NSets)
	assert.Equal(t, 200, cfg.Population)
	assert.Equal(t, 20, cfg.Elites)
	assert.InDelta(t, 0.0005, cfg.Alpha, 1e-15)
	assert.InDelta(t, 0.1, cfg.TestProportion, 1e-15)
	assert.Equal(t, "memory", cfg.Store.Kind)
}

func TestNormalizeClampsPopulationAndElites(t *testing.T) {
	cfg := Default()
	cfg.Population = 3
	cfg.Normalize()
	assert.Equal(t, MinPopulation, cfg.Population)
	assert.Equal(t, 1, cfg.Elites)

	cfg = Default()
	cfg.Population = 40
	cfg.Elites = 35
	cfg.Normalize()
	assert.Equal(t, 20, cfg.Elites)

	cfg = Default()
	cfg.Population = 50
	cfg.Normalize()
	assert.Equal(t, 5, cfg.Elites)
	require.NoError(t, evo.Config{PopulationSize: cfg.Population, Elites: cfg.Elites, Generations: 1}.Validate())
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, "run.yaml", `
data: poll.csv
logic: Gödel
trials: 4
population: 60
generations: 12
operators:
  add_rule: 2
  remove_rule: 1
store:
  kind: sqlite
  path: runs.db
`)
	t.Setenv("FUZZEVO_TRIALS", "6")
	t.Setenv("FUZZEVO_ALPHA", "0.01")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "poll.csv", cfg.Data)
	assert.Equal(t, "gödel", cfg.Logic)
	assert.Equal(t, 6, cfg.Trials)
	assert.Equal(t, 60, cfg.Population)
	assert.Equal(t, 6, cfg.Elites)
	assert.Equal(t, 12, cfg.Generations)
	assert.InDelta(t, 0.01, cfg.Alpha, 1e-15)
	assert.Equal(t, map[string]float64{"add_rule": 2, "remove_rule": 1}, cfg.Operators)
	assert.Equal(t, "runs.db", cfg.Store.Path)

	logic, err := cfg.ParsedLogic()
	require.NoError(t, err)
	assert.Equal(t, "godel", logic.String())

	ec := cfg.EvolveConfig()
	assert.Equal(t, 60, ec.PopulationSize)
	assert.Equal(t, 6, ec.Elites)
	require.NoError(t, ec.Validate())
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown field": "populaton: 10\n",
		"bad operator":  "operators:\n  teleport: 1\n",
		"bad prob":      "mutation_prob: 1.5\n",
		"sqlite path":   "store:\n  kind: sqlite\n",
		"bad penalty":   "penalty: cubic\n",
		"nsets":         "nsets: 1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", body))
			assert.Error(t, err)
		})
	}

	_, err := Load(writeFile(t, "bad.yaml", "nsets: 1\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadKeepsUnknownLogic(t *testing.T) {
	t.Setenv("FUZZEVO_LOGIC", "Zadeh")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "zadeh", cfg.Logic)

	logic, err := cfg.ParsedLogic()
	assert.ErrorIs(t, err, truth.ErrUnknownLogic)
	assert.Equal(t, truth.Lukasiewicz, logic)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultTrials, cfg.Trials)
}

func TestApplyEnvReportsMalformedNumbers(t *testing.T) {
	env := map[string]string{
		"FUZZEVO_POPULATION": "many",
		"FUZZEVO_SEED":       "x",
		"FUZZEVO_LOGIC":      "product",
	}
	cfg := Default()
	err := applyEnv(&cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, "FUZZEVO_POPULATION")
	assert.ErrorContains(t, err, "FUZZEVO_SEED")
	assert.Equal(t, "product", cfg.Logic)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, "test.env", "FUZZEVO_TEST_DOTENV=loaded\n")
	t.Setenv("FUZZEVO_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("FUZZEVO_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "loaded", os.Getenv("FUZZEVO_TEST_DOTENV"))
}
