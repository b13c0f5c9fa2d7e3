package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunConfig is the snapshot of the settings a run was started with.
type RunConfig struct {
	Logic          string             `json:"logic"`
	Seed           int64              `json:"seed"`
	Trials         int                `json:"trials"`
	NSets          int                `json:"nsets"`
	SeedInput      string             `json:"seed_input"`
	Category       int                `json:"category"`
	Population     int                `json:"population"`
	Elites         int                `json:"elites"`
	Generations    int                `json:"generations"`
	MutationTrials int                `json:"mutation_trials"`
	MutationProb   float64            `json:"mutation_prob"`
	MaxConditions  int                `json:"max_conditions"`
	Alpha          float64            `json:"alpha"`
	Penalty        string             `json:"penalty"`
	Goal           float64            `json:"goal"`
	TestProportion float64            `json:"test_proportion"`
	Operators      map[string]float64 `json:"operators,omitempty"`
}

type RunSummary struct {
	MeanTSSBefore   float64 `json:"mean_tss_before"`
	MeanTSSAfter    float64 `json:"mean_tss_after"`
	MeanImprovement float64 `json:"mean_improvement"`
	ModeFrequency   float64 `json:"mode_frequency"`
	ModeFingerprint string  `json:"mode_fingerprint"`
	BestFitness     float64 `json:"best_fitness"`
	ElapsedMillis   int64   `json:"elapsed_ms"`
}

// Run is one invocation of the trial driver over a dataset.
type Run struct {
	VersionedRecord
	ID           string     `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	Dataset      string     `json:"dataset"`
	TrainingRows int        `json:"training_rows"`
	TestRows     int        `json:"test_rows"`
	Config       RunConfig  `json:"config"`
	Summary      RunSummary `json:"summary"`
}

// Trial records the metrics of one search. Classifier rules are never
// stored, only their fingerprint and size.
type Trial struct {
	VersionedRecord
	Trial         int     `json:"trial"`
	Seed          int64   `json:"seed"`
	BestFitness   float64 `json:"best_fitness"`
	Generations   int     `json:"generations"`
	Stopped       bool    `json:"stopped"`
	TestTSSBefore float64 `json:"test_tss_before"`
	TestTSSAfter  float64 `json:"test_tss_after"`
	TrainTSS      float64 `json:"train_tss"`
	Improvement   float64 `json:"improvement"`
	Fingerprint   string  `json:"fingerprint"`
	Rules         int     `json:"rules"`
	Complexity    int     `json:"complexity"`
	ElapsedMillis int64   `json:"elapsed_ms"`
}

type GenerationDiagnostics struct {
	Generation     int     `json:"generation"`
	BestFitness    float64 `json:"best_fitness"`
	MeanFitness    float64 `json:"mean_fitness"`
	MinFitness     float64 `json:"min_fitness"`
	MeanComplexity float64 `json:"mean_complexity"`
	MeanRules      float64 `json:"mean_rules"`
	Mutations      int     `json:"mutations"`
	Diversity      int     `json:"diversity"`
}
