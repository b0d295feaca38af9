package observability

import (
	"context"

	"github.com/aretw0/unveil/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the disclosure collectors.
type Metrics struct {
	Reveals      *prometheus.CounterVec
	Cascades     *prometheus.CounterVec
	PanelHidden  prometheus.Counter
	Signals      *prometheus.CounterVec
	ActiveViews  prometheus.Gauge
	RevealOffset *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg. A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Reveals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unveil_reveals_total",
			Help: "Total number of item reveals",
		}, []string{"item_id", "trigger"}),
		Cascades: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unveil_cascade_scheduled_total",
			Help: "Total number of scheduled cascade reveals",
		}, []string{"item_id"}),
		PanelHidden: f.NewCounter(prometheus.CounterOpts{
			Name: "unveil_panel_suppressed_total",
			Help: "Total number of views whose auxiliary panel was suppressed",
		}),
		Signals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unveil_signals_total",
			Help: "Total number of signals received by hosts",
		}, []string{"type"}),
		ActiveViews: f.NewGauge(prometheus.GaugeOpts{
			Name: "unveil_active_views",
			Help: "Number of open views held by this process",
		}),
		RevealOffset: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "unveil_reveal_position",
			Help:    "Reveal order index at which each item was revealed",
			Buckets: prometheus.LinearBuckets(1, 1, 8),
		}, []string{"item_id"}),
	}
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnReveal: func(_ context.Context, e *domain.RevealEvent) {
			m.Reveals.WithLabelValues(e.ItemID, string(e.Trigger)).Inc()
			m.RevealOffset.WithLabelValues(e.ItemID).Observe(float64(e.Count))
		},
		OnCascadeSchedule: func(_ context.Context, e *domain.CascadeEvent) {
			m.Cascades.WithLabelValues(e.ItemID).Inc()
		},
		OnPanelSuppress: func(context.Context, *domain.PanelEvent) {
			m.PanelHidden.Inc()
		},
	}
}

// ObserveSignal counts a signal received by a host.
func (m *Metrics) ObserveSignal(t domain.SignalType) {
	m.Signals.WithLabelValues(string(t)).Inc()
}
