package culling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const resultLabel = "result"

var (
	cullingVisibleCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "culling_visible_entity_count",
		Help: "The number of entities in the last render list.",
	})

	cullingLightCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "culling_visible_light_count",
		Help: "The number of lights in the last render list.",
	})

	cullingNodeCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "culling_node_count_total",
		Help: "The total number of quadtree nodes tested against the frustum, by result.",
	}, []string{resultLabel})
)

func instrumentCull(s Stats) {
	cullingVisibleCount.Set(float64(s.Visible))
	cullingLightCount.Set(float64(s.Lights))
	cullingNodeCount.With(prometheus.Labels{resultLabel: "visited"}).Add(float64(s.NodesVisited))
	cullingNodeCount.With(prometheus.Labels{resultLabel: "skipped"}).Add(float64(s.NodesSkipped))
}
