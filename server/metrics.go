package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	editKindLabel = "kind"
	resultLabel   = "result"
)

var (
	voxelEdits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "svo_voxel_edits",
		Help: "The number of voxels added to scene objects.",
	}, []string{
		editKindLabel,
	})

	objectBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "svo_object_builds",
		Help: "The number of octree builds.",
	})

	objectBuildLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "svo_object_build_latency",
		Help: "The time to build an object octree.",
	})

	raycasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "svo_raycasts",
		Help: "The number of scene raycasts.",
	}, []string{
		resultLabel,
	})

	sceneNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "svo_scene_nodes",
		Help: "The number of nodes in the packed scene buffer.",
	})
)

func instrumentEdit(kind string) {
	voxelEdits.With(prometheus.Labels{
		editKindLabel: kind,
	}).Inc()
}

func instrumentBuild(start time.Time) {
	objectBuilds.Inc()
	objectBuildLatency.Observe(time.Since(start).Seconds())
}

func instrumentRaycast(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	raycasts.With(prometheus.Labels{
		resultLabel: result,
	}).Inc()
}
