package storage

import (
	"context"

	"fuzzevo/internal/model"
)

// Store persists run metrics. Histories and diagnostics are keyed by run id
// and trial index.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, id string) (model.Run, bool, error)
	// ListRuns returns runs newest first.
	ListRuns(ctx context.Context) ([]model.Run, error)
	DeleteRun(ctx context.Context, id string) error
	SaveTrials(ctx context.Context, runID string, trials []model.Trial) error
	GetTrials(ctx context.Context, runID string) ([]model.Trial, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, trial int, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string, trial int) ([]float64, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, trial int, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string, trial int) ([]model.GenerationDiagnostics, bool, error)
}
