// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"sync"
	"time"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ModeFull   = "full"
	ModeStream = "stream"

	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

var (
	initOnce sync.Once

	workflowRunsCounter     *prometheus.CounterVec
	stageExecutionsCounter  *prometheus.CounterVec
	stageDurationMetric     *prometheus.HistogramVec
	modelCallDurationMetric prometheus.Histogram
)

// Init registers metrics on the default Prometheus registry exactly once.
func Init() {
	initOnce.Do(func() {
		workflowRunsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_runs_total",
				Help: "Total number of workflow runs by execution mode and terminal status.",
			},
			[]string{"mode", "status"},
		)

		stageExecutionsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_stage_executions_total",
				Help: "Total number of stage executions by stage and status.",
			},
			[]string{"stage", "status"},
		)

		stageDurationMetric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workflow_stage_duration_seconds",
				Help:    "Duration of pipeline stage executions in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		)

		modelCallDurationMetric = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "model_call_duration_seconds",
				Help:    "Duration of language model completions in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		)

		prometheus.MustRegister(
			workflowRunsCounter,
			stageExecutionsCounter,
			stageDurationMetric,
			modelCallDurationMetric,
		)

		// Ensure counter vectors are visible at /metrics before first increment.
		for _, mode := range []string{ModeFull, ModeStream} {
			for _, status := range []string{StatusCompleted, StatusFailed, StatusCanceled} {
				workflowRunsCounter.WithLabelValues(mode, status)
			}
		}

		for _, stage := range []domain.StageName{
			domain.StageDecompose,
			domain.StageRetrieve,
			domain.StageRank,
			domain.StageSummarize,
			domain.StageCrossCheck,
			domain.StageSynthesize,
		} {
			for _, status := range []string{StatusCompleted, StatusFailed} {
				stageExecutionsCounter.WithLabelValues(string(stage), status)
			}
		}
	})
}

func IncWorkflowRun(mode, status string) {
	Init()
	workflowRunsCounter.WithLabelValues(mode, status).Inc()
}

func IncStageExecution(stage domain.StageName, status string) {
	Init()
	stageExecutionsCounter.WithLabelValues(string(stage), status).Inc()
}

func ObserveStageDuration(stage domain.StageName, d time.Duration) {
	Init()
	stageDurationMetric.WithLabelValues(string(stage)).Observe(d.Seconds())
}

func ObserveModelCallDuration(d time.Duration) {
	Init()
	modelCallDurationMetric.Observe(d.Seconds())
}
