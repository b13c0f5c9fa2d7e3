// Package telemetry exposes search progress as Prometheus metrics.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fuzzevo/internal/evo"
)

const namespace = "fuzzevo"

// Metrics holds the collectors of one process. All methods are safe for
// concurrent use by parallel trials.
type Metrics struct {
	Generations   *prometheus.CounterVec
	Evaluations   prometheus.Counter
	Mutations     prometheus.Counter
	Operators     *prometheus.CounterVec
	BestFitness   *prometheus.GaugeVec
	MeanFitness   *prometheus.GaugeVec
	Diversity     *prometheus.GaugeVec
	TrialsRunning prometheus.Gauge
	TrialDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Generations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Completed generations by trial.",
		}, []string{"trial"}),
		Evaluations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fitness_evaluations_total",
			Help:      "Fitness evaluations over all trials.",
		}),
		Mutations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Mutations applied over all trials.",
		}),
		Operators: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operator_applications_total",
			Help:      "Mutation operator applications by operator and outcome.",
		}, []string{"operator", "changed"}),
		BestFitness: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_fitness",
			Help:      "Best fitness of the latest generation by trial.",
		}, []string{"trial"}),
		MeanFitness: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mean_fitness",
			Help:      "Mean fitness of the latest generation by trial.",
		}, []string{"trial"}),
		Diversity: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "population_diversity",
			Help:      "Distinct classifiers in the latest generation by trial.",
		}, []string{"trial"}),
		TrialsRunning: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trials_running",
			Help:      "Trials currently searching.",
		}),
		TrialDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trial_duration_seconds",
			Help:      "Wall time of finished trials.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
	}
}

// ObserveOperator matches evo.Policy.Observer.
func (m *Metrics) ObserveOperator(operator string, changed bool) {
	m.Operators.WithLabelValues(operator, strconv.FormatBool(changed)).Inc()
}

// TrialStarted marks a trial as running and returns the function that marks
// it finished.
func (m *Metrics) TrialStarted() func() {
	start := time.Now()
	m.TrialsRunning.Inc()
	return func() {
		m.TrialsRunning.Dec()
		m.TrialDuration.Observe(time.Since(start).Seconds())
	}
}

// Tracer returns an evo.Tracer recording the events of one trial.
func (m *Metrics) Tracer(trial int) evo.Tracer {
	return &trialTracer{m: m, trial: strconv.Itoa(trial)}
}

type trialTracer struct {
	m     *Metrics
	trial string
	seen  int
}

func (t *trialTracer) OnMutation(_, _, count int) {
	t.seen++
	t.m.Mutations.Add(float64(count))
}

func (t *trialTracer) OnGeneration(stats evo.GenerationStats) {
	// One fitness evaluation per mutated individual.
	t.m.Evaluations.Add(float64(t.seen))
	t.seen = 0
	t.m.Generations.WithLabelValues(t.trial).Inc()
	t.m.BestFitness.WithLabelValues(t.trial).Set(stats.Best)
	t.m.MeanFitness.WithLabelValues(t.trial).Set(stats.Mean)
	t.m.Diversity.WithLabelValues(t.trial).Set(float64(stats.Diversity))
}

// Serve exposes reg on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, reg prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
