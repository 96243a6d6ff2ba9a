package orchestrator

import "github.com/prometheus/client_golang/prometheus"

var (
	loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synthd",
			Subsystem: "engine",
			Name:      "loads_total",
			Help:      "Total number of model load attempts",
		},
		[]string{"capability", "outcome"},
	)

	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synthd",
			Subsystem: "engine",
			Name:      "generations_total",
			Help:      "Total number of generation calls",
		},
		[]string{"capability", "outcome"},
	)

	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "synthd",
			Subsystem: "engine",
			Name:      "generation_duration_seconds",
			Help:      "Duration of successful generation calls in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"capability"},
	)

	loadedModels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "synthd",
			Subsystem: "engine",
			Name:      "loaded_models",
			Help:      "Number of live model handles",
		},
	)
)

func init() {
	prometheus.MustRegister(loadsTotal, generationsTotal, generationDuration, loadedModels)
}
