package evo

import (
	"context"
	"log/slog"
)

// Tracer observes a running search. Implementations must be cheap: they are
// called from the search loop.
type Tracer interface {
	OnMutation(generation, individual, count int)
	OnGeneration(stats GenerationStats)
}

type NoopTracer struct{}

func (NoopTracer) OnMutation(int, int, int)     {}
func (NoopTracer) OnGeneration(GenerationStats) {}

// MultiTracer fans every event out to each tracer in order.
type MultiTracer []Tracer

func (m MultiTracer) OnMutation(generation, individual, count int) {
	for _, t := range m {
		t.OnMutation(generation, individual, count)
	}
}

func (m MultiTracer) OnGeneration(stats GenerationStats) {
	for _, t := range m {
		t.OnGeneration(stats)
	}
}

// LogTracer writes generation summaries at info level and individual
// mutation counts at debug level.
type LogTracer struct {
	Logger *slog.Logger
}

func (t LogTracer) OnMutation(generation, individual, count int) {
	if count == 0 || !t.Logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	t.Logger.Debug("mutated",
		slog.Int("generation", generation),
		slog.Int("individual", individual),
		slog.Int("count", count),
	)
}

func (t LogTracer) OnGeneration(stats GenerationStats) {
	t.Logger.Info("generation",
		slog.Int("generation", stats.Generation),
		slog.Float64("best", stats.Best),
		slog.Float64("mean", stats.Mean),
		slog.Float64("min", stats.Min),
		slog.Float64("mean_complexity", stats.MeanComplexity),
		slog.Int("mutations", stats.Mutations),
		slog.Int("diversity", stats.Diversity),
	)
}
