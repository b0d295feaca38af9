package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/unveil"
	"github.com/aretw0/unveil/internal/logging"
	"github.com/aretw0/unveil/pkg/clock"
	"github.com/aretw0/unveil/pkg/domain"
	"github.com/aretw0/unveil/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordEngineLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	var logs bytes.Buffer
	hooks := observability.MergeHooks(m.Hooks(), observability.LogHooks(logging.NewWithWriter(&logs, slog.LevelInfo, false)))

	clk := clock.NewManual(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	eng, err := unveil.New(unveil.WithClock(clk), unveil.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	ctx := context.Background()
	s := eng.Start(ctx, "v1")
	eng.HandleExplicitAction(ctx, s)
	eng.HandleScrollSignal(ctx, s, 400)
	clk.Advance(time.Second)
	eng.HandleTimeSignal(ctx, s)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reveals.WithLabelValues(domain.ItemHeadline, "action")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reveals.WithLabelValues(domain.ItemEscapeWindow, "scroll")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reveals.WithLabelValues(domain.ItemRecentering, "cascade")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reveals.WithLabelValues(domain.ItemActionTranslation, "cascade")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cascades.WithLabelValues(domain.ItemRecentering)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PanelHidden))

	assert.Contains(t, logs.String(), "item_revealed")
	assert.Contains(t, logs.String(), "panel_suppressed")
}

func TestMetrics_ObserveSignal(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	m.ObserveSignal(domain.SignalScroll)
	m.ObserveSignal(domain.SignalScroll)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Signals.WithLabelValues("scroll")))
}

func TestMergeHooks_SkipsNil(t *testing.T) {
	var calls []string
	merged := observability.MergeHooks(
		domain.LifecycleHooks{OnReveal: func(context.Context, *domain.RevealEvent) { calls = append(calls, "a") }},
		domain.LifecycleHooks{},
		domain.LifecycleHooks{OnReveal: func(context.Context, *domain.RevealEvent) { calls = append(calls, "b") }},
	)
	require.NotNil(t, merged.OnReveal)
	assert.Nil(t, merged.OnPanelSuppress)

	merged.OnReveal(context.Background(), &domain.RevealEvent{})
	assert.Equal(t, []string{"a", "b"}, calls)
}
