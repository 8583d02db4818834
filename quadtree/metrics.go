package quadtree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultLabel = "result"
)

var (
	quadtreeNodeCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quadtree_node_count",
		Help: "The number of nodes in the most recently modified quadtree.",
	})

	quadtreeSubdivisionCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadtree_subdivision_count_total",
		Help: "The total number of quadrant subdivisions.",
	})

	quadtreeMergeCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadtree_merge_count_total",
		Help: "The total number of quadrant merges.",
	})

	quadtreeExpansionCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadtree_expansion_count_total",
		Help: "The total number of root expansions.",
	})

	quadtreeAddCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quadtree_add_count_total",
		Help: "The total number of insertion attempts by result.",
	}, []string{resultLabel})
)

func instrumentNodeCount(count int) {
	quadtreeNodeCount.Set(float64(count))
}

func instrumentSubdivision() {
	quadtreeSubdivisionCount.Inc()
}

func instrumentMerge() {
	quadtreeMergeCount.Inc()
}

func instrumentExpansion() {
	quadtreeExpansionCount.Inc()
}

func instrumentAdd(res AddResult) {
	quadtreeAddCount.
		With(prometheus.Labels{resultLabel: res.String()}).
		Inc()
}
