package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestStageTotal counts pipeline transitions
	// Labels: stage (normalized/transcribed/.../failed), outcome (ok/error)
	IngestStageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wortschatz_ingest_stage_total",
			Help: "Total number of ingestion pipeline state transitions",
		},
		[]string{"stage", "outcome"},
	)

	// IngestDuration tracks time spent per pipeline stage
	IngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wortschatz_ingest_stage_duration_seconds",
			Help:    "Ingestion stage duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	// EngineReady is 1 when the transcription engine passed its probe
	EngineReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wortschatz_engine_ready",
			Help: "Transcription engine availability (0=unavailable, 1=ready)",
		},
	)

	// PoolQueueDepth is the number of jobs waiting for a worker
	PoolQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wortschatz_pool_queue_depth",
			Help: "Jobs waiting in the processing queue",
		},
	)

	// PoolBusyWorkers is the number of workers running a job
	PoolBusyWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wortschatz_pool_busy_workers",
			Help: "Workers currently processing a job",
		},
	)

	// PoolRejectedTotal counts jobs refused because the queue was full
	PoolRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wortschatz_pool_rejected_total",
			Help: "Jobs rejected because the processing queue was full",
		},
	)

	// DictionaryLookupsTotal counts lookups by where the answer came from
	// Labels: source (dictionary/fallback/cache), status (success/not_found/error)
	DictionaryLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wortschatz_dictionary_lookups_total",
			Help: "Total number of dictionary lookups",
		},
		[]string{"source", "status"},
	)

	// TempFilesRemovedTotal counts stale uploads removed by the sweeper
	TempFilesRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wortschatz_temp_files_removed_total",
			Help: "Stale temporary uploads removed by the cleanup sweeper",
		},
	)
)

// RecordStage records a pipeline transition
func RecordStage(stage string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	IngestStageTotal.WithLabelValues(stage, outcome).Inc()
}

// RecordStageDuration records how long a stage took, in seconds
func RecordStageDuration(stage string, seconds float64) {
	IngestDuration.WithLabelValues(stage).Observe(seconds)
}

// SetEngineReady sets the engine availability gauge
func SetEngineReady(ready bool) {
	if ready {
		EngineReady.Set(1)
	} else {
		EngineReady.Set(0)
	}
}

// RecordLookup records a dictionary lookup
func RecordLookup(source, status string) {
	DictionaryLookupsTotal.WithLabelValues(source, status).Inc()
}
