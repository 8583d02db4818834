package physics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindLabel = "kind"

	kindNearest  = "nearest"
	kindExcept   = "except"
	kindTag      = "tag"
	kindFiltered = "filtered"
	kindFirst    = "first"
)

var (
	raycastCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "physics_raycast_count_total",
		Help: "The total number of raycasts by kind.",
	}, []string{kindLabel})

	raycastHitCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "physics_raycast_hit_count_total",
		Help: "The total number of raycasts that hit something, by kind.",
	}, []string{kindLabel})

	triangleTestCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "physics_triangle_test_count_total",
		Help: "The total number of ray/triangle tests.",
	})
)

func instrumentRaycast(kind string, hit bool) {
	labels := prometheus.Labels{kindLabel: kind}
	raycastCount.With(labels).Inc()
	if hit {
		raycastHitCount.With(labels).Inc()
	}
}

func instrumentTriangleTests(count int) {
	triangleTestCount.Add(float64(count))
}
