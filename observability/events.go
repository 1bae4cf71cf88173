// Package observability exposes prometheus counters tracking marketplace
// activity, fed by the engine's event stream.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"nftmarket/core/events"
	"nftmarket/core/types"
	"nftmarket/native/market"
)

type marketMetrics struct {
	opened      *prometheus.CounterVec
	settlements *prometheus.CounterVec
	bids        prometheus.Counter
	canceled    prometheus.Counter
}

var (
	metricsOnce sync.Once
	registry    *marketMetrics
)

// Metrics returns the metrics registry tracking marketplace events.
func Metrics() *marketMetrics {
	metricsOnce.Do(func() {
		registry = &marketMetrics{
			opened: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "sales",
				Name:      "opened_total",
				Help:      "Count of sales opened, segmented by sale kind.",
			}, []string{"kind"}),
			settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "sales",
				Name:      "settled_total",
				Help:      "Count of settled sales, segmented by sale kind.",
			}, []string{"kind"}),
			bids: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "sales",
				Name:      "bids_total",
				Help:      "Count of accepted ascending-auction bids.",
			}),
			canceled: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "sales",
				Name:      "canceled_total",
				Help:      "Count of canceled or ended sales.",
			}),
		}
		prometheus.MustRegister(registry.opened, registry.settlements, registry.bids, registry.canceled)
	})
	return registry
}

// Emitter adapts the metrics registry to the engine's event emitter
// interface so counters track the event stream directly.
type Emitter struct{}

func saleKind(evt events.Event) string {
	typed, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		return "unknown"
	}
	payload := typed.Event()
	if payload == nil {
		return "unknown"
	}
	if kind, ok := payload.Attributes["kind"]; ok && kind != "" {
		return kind
	}
	return "unknown"
}

// Emit implements events.Emitter.
func (Emitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	m := Metrics()
	switch evt.EventType() {
	case market.EventTypeSaleOpened:
		m.opened.WithLabelValues(saleKind(evt)).Inc()
	case market.EventTypeBidPlaced:
		m.bids.Inc()
	case market.EventTypeAuctionSettled, market.EventTypeAssetPurchased:
		m.settlements.WithLabelValues(saleKind(evt)).Inc()
	case market.EventTypeSaleCanceled:
		m.canceled.Inc()
	}
}
