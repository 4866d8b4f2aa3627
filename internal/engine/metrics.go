package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	solvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cratepack",
		Name:      "solves_total",
		Help:      "Number of single orderings packed outside the optimizer.",
	}, []string{"strategy"})

	unplacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cratepack",
		Name:      "unplaced_boxes_total",
		Help:      "Boxes that could not be placed in any bin.",
	}, []string{"strategy"})

	generationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cratepack",
		Name:      "generations_total",
		Help:      "Genetic algorithm generations completed.",
	})

	evaluationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cratepack",
		Name:      "evaluation_duration_seconds",
		Help:      "Time to score one generation.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"mode"})

	evaluationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cratepack",
		Name:      "evaluation_failures_total",
		Help:      "Orderings whose evaluation failed and were scored worst.",
	})

	bestFitness = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cratepack",
		Name:      "best_fitness",
		Help:      "Best fitness of the most recent generation.",
	}, []string{"objective"})
)
