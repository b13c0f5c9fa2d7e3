// Package config loads experiment settings from a YAML file, the environment
// and .env files, applying the tool's defaults and validating the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"fuzzevo/internal/evo"
	"fuzzevo/internal/truth"
)

const (
	EnvPrefix = "FUZZEVO_"

	DefaultTrials         = 20
	DefaultNSets          = 5
	DefaultPopulation     = 200
	MinPopulation         = 8
	DefaultGenerations    = 100
	DefaultMutationTrials = 5
	DefaultMutationProb   = 0.2
	DefaultMaxConditions  = 3
	DefaultAlpha          = 0.0005
	DefaultTestProportion = 0.1
)

var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

type Log struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=auto text json"`
}

type Store struct {
	Kind string `yaml:"kind" validate:"omitempty,oneof=memory sqlite"`
	Path string `yaml:"path" validate:"required_if=Kind sqlite"`
}

// Experiment holds every setting of a run.
type Experiment struct {
	Data      string `yaml:"data"`
	Sheet     string `yaml:"sheet"`
	Output    string `yaml:"output"`
	SeedInput string `yaml:"seed_input"`
	// Category is the positive class of the TSS fitness.
	Category int    `yaml:"category" validate:"gte=0"`
	Logic    string `yaml:"logic"`
	Seed     int64  `yaml:"seed"`

	Trials         int                `yaml:"trials" validate:"gte=1"`
	Workers        int                `yaml:"workers" validate:"gte=0"`
	NSets          int                `yaml:"nsets" validate:"gte=2"`
	Population     int                `yaml:"population" validate:"gte=8"`
	Elites         int                `yaml:"elites" validate:"gte=0"`
	Generations    int                `yaml:"generations" validate:"gte=1"`
	MutationTrials int                `yaml:"mutation_trials" validate:"gte=0"`
	MutationProb   float64            `yaml:"mutation_prob" validate:"gte=0,lte=1"`
	MaxConditions  int                `yaml:"max_conditions" validate:"gte=1"`
	Alpha          float64            `yaml:"alpha" validate:"gte=0"`
	Penalty        string             `yaml:"penalty" validate:"omitempty,oneof=linear size_proportional none"`
	Goal           float64            `yaml:"goal"`
	TestProportion float64            `yaml:"test_proportion" validate:"gte=0,lt=1"`
	Operators      map[string]float64 `yaml:"operators" validate:"dive,gte=0"`

	Store       Store  `yaml:"store"`
	Log         Log    `yaml:"log"`
	MetricsAddr string `yaml:"metrics_addr"`
}

func Default() Experiment {
	return Experiment{
		Logic:          truth.Lukasiewicz.String(),
		Trials:         DefaultTrials,
		NSets:          DefaultNSets,
		Population:     DefaultPopulation,
		Generations:    DefaultGenerations,
		MutationTrials: DefaultMutationTrials,
		MutationProb:   DefaultMutationProb,
		MaxConditions:  DefaultMaxConditions,
		Alpha:          DefaultAlpha,
		Penalty:        "linear",
		TestProportion: DefaultTestProportion,
		Category:       1,
		Store:          Store{Kind: "memory"},
		Log:            Log{Level: "info", Format: "auto"},
	}
}

// Load reads the defaults, then path (when not empty), then FUZZEVO_*
// variables. The result is normalized and validated.
func Load(path string) (Experiment, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func loadFile(path string, cfg *Experiment) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Normalize clamps the population to its minimum and derives the elite count
// from it: population/10 by default, never more than population/2.
func (c *Experiment) Normalize() {
	c.Population = max(c.Population, MinPopulation)
	if c.Elites <= 0 {
		c.Elites = c.Population / 10
	}
	c.Elites = max(min(c.Elites, c.Population/2), 1)
	c.Logic = strings.ToLower(strings.TrimSpace(c.Logic))
	if c.Store.Kind == "" {
		c.Store.Kind = "memory"
	}
}

func (c Experiment) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for name := range c.Operators {
		if _, err := evo.ResolveOperator[truth.LukasiewiczValue](name, evo.OperatorOptions{}); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// EvolveConfig converts the search settings; the per-trial seed is filled in
// by the trial driver.
func (c Experiment) EvolveConfig() evo.Config {
	return evo.Config{
		PopulationSize: c.Population,
		Elites:         c.Elites,
		Generations:    c.Generations,
		MutationTrials: c.MutationTrials,
		MutationProb:   c.MutationProb,
	}
}

// ParsedLogic resolves the logic name. Unknown names are not a validation
// error: callers get Lukasiewicz together with a wrapped truth.ErrUnknownLogic
// and decide whether to warn.
func (c Experiment) ParsedLogic() (truth.Logic, error) {
	return truth.ParseLogic(c.Logic)
}

func (c Experiment) ComplexityPenalty() (evo.ComplexityPenalty, error) {
	return evo.ResolvePenalty(c.Penalty, c.Alpha)
}

type lookupFunc func(string) (string, bool)

func applyEnv(c *Experiment, lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	num := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	float := func(name string, dst *float64) {
		if v, ok := lookup(EnvPrefix + name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}

	str("DATA", &c.Data)
	str("SHEET", &c.Sheet)
	str("OUTPUT", &c.Output)
	str("SEED_INPUT", &c.SeedInput)
	str("LOGIC", &c.Logic)
	num("CATEGORY", &c.Category)
	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED: %w", EnvPrefix, err))
		} else {
			c.Seed = n
		}
	}
	num("TRIALS", &c.Trials)
	num("WORKERS", &c.Workers)
	num("NSETS", &c.NSets)
	num("POPULATION", &c.Population)
	num("ELITES", &c.Elites)
	num("GENERATIONS", &c.Generations)
	num("MUTATION_TRIALS", &c.MutationTrials)
	float("MUTATION_PROB", &c.MutationProb)
	num("MAX_CONDITIONS", &c.MaxConditions)
	float("ALPHA", &c.Alpha)
	str("PENALTY", &c.Penalty)
	float("GOAL", &c.Goal)
	float("TEST_PROPORTION", &c.TestProportion)
	str("STORE", &c.Store.Kind)
	str("STORE_PATH", &c.Store.Path)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("METRICS_ADDR", &c.MetricsAddr)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
