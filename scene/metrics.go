package scene

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const placementLabel = "placement"

var sceneEntities = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "scene_entity_count",
	Help: "The number of entities in the scene by placement.",
}, []string{
	placementLabel,
})

func instrumentEntities(total, dynamic int) {
	sceneEntities.With(prometheus.Labels{placementLabel: "all"}).Set(float64(total))
	sceneEntities.With(prometheus.Labels{placementLabel: "dynamic"}).Set(float64(dynamic))
}
