// SPDX-License-Identifier: GPL-2.0-or-later

package level

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"q2view/bsp"
)

const (
	namespace   = "q2view"
	resultLabel = "result"
	reasonLabel = "reason"
)

var (
	levelLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "level_loads_total",
		Help:      "The number of map loads by result.",
	}, []string{resultLabel})

	levelLoadSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "level_load_seconds",
		Help:      "The time it took to load a map.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	})

	levelsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "levels_loaded",
		Help:      "The number of maps in memory.",
	})

	facesDrawnTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "faces_drawn_total",
		Help:      "The number of faces that passed culling.",
	})

	facesCulledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "faces_culled_total",
		Help:      "The number of faces removed by culling.",
	}, []string{reasonLabel})
)

func instrumentLoad(l *Level, err error) {
	if err != nil {
		levelLoadsTotal.With(prometheus.Labels{resultLabel: "error"}).Inc()
		return
	}
	levelLoadsTotal.With(prometheus.Labels{resultLabel: "ok"}).Inc()
	levelLoadSeconds.Observe(l.LoadTime.Seconds())
	levelsLoaded.Inc()
}

func instrumentUnload() {
	levelsLoaded.Dec()
}

func instrumentCull(s bsp.CullStats) {
	facesDrawnTotal.Add(float64(s.Drawn))
	facesCulledTotal.With(prometheus.Labels{reasonLabel: "pvs"}).Add(float64(s.PVSCulled))
	facesCulledTotal.With(prometheus.Labels{reasonLabel: "frustum"}).Add(float64(s.FrustumCulled))
}
