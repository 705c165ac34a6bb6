package wake

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	reasonLabel = "reason"

	reasonOutOfRange     = "out_of_range"
	reasonOutOfBounds    = "out_of_bounds"
	reasonResetPending   = "reset_pending"
	reasonResetDiscarded = "reset_discarded"
)

var (
	wakeInsertedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wake_inserted_total",
		Help: "The total number of wake nodes merged into a layer index.",
	})

	wakePrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wake_pruned_total",
		Help: "The total number of expired wake nodes pruned.",
	})

	wakeDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wake_dropped_total",
		Help: "The total number of wake nodes dropped before reaching an index.",
	}, []string{reasonLabel})

	wakeResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wake_resets_total",
		Help: "The total number of committed resolution changes.",
	})

	wakeLiveNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wake_live_nodes",
		Help: "The number of wake nodes in live layer indexes.",
	})

	wakePendingNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wake_pending_nodes",
		Help: "The number of wake nodes waiting for the next tick.",
	})

	wakeActiveLayers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wake_active_layers",
		Help: "The number of layers with a live index.",
	})
)

func instrumentDropped(reason string) {
	wakeDroppedTotal.
		With(prometheus.Labels{reasonLabel: reason}).
		Inc()
}

func instrumentDroppedN(reason string, n int) {
	if n == 0 {
		return
	}
	wakeDroppedTotal.
		With(prometheus.Labels{reasonLabel: reason}).
		Add(float64(n))
}

func instrumentTick(inserted, pruned int) {
	wakeInsertedTotal.Add(float64(inserted))
	wakePrunedTotal.Add(float64(pruned))
}

func instrumentReset() {
	wakeResetsTotal.Inc()
}

// InstrumentStats publishes a stats snapshot to the gauges.
func InstrumentStats(s Stats) {
	wakeLiveNodes.Set(float64(s.LiveNodes))
	wakePendingNodes.Set(float64(s.PendingNodes))
	wakeActiveLayers.Set(float64(s.ActiveLayers))
}
