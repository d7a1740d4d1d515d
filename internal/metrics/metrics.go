package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eqrm_runs_enqueued_total",
		Help: "Total number of runs placed on the processing queue.",
	})

	RunsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eqrm_runs_dropped_total",
		Help: "Total number of runs rejected due to a full queue.",
	})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eqrm_runs_total",
		Help: "Total number of completed runs, labelled by mode and status.",
	}, []string{"mode", "status"})

	EventsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eqrm_events_generated_total",
		Help: "Total number of synthetic events generated, labelled by source kind.",
	}, []string{"kind"})

	SourcesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eqrm_sources_generated_total",
		Help: "Total number of sources generated, labelled by source kind.",
	}, []string{"kind"})

	TensorCells = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eqrm_activity_tensor_cells",
		Help: "Logical cell count of the most recent event activity tensor.",
	})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eqrm_run_duration_ms",
		Help:    "End-to-end run latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 10000},
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eqrm_queue_utilization_ratio",
		Help: "Current run queue utilization (0–1).",
	})
)
