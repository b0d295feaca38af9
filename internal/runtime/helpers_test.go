package runtime_test

import (
	"testing"
	"time"

	"github.com/aretw0/unveil/internal/runtime"
	"github.com/aretw0/unveil/pkg/clock"
	"github.com/aretw0/unveil/pkg/config"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// letterConfig mirrors the default page with single-letter items:
// B is the milestone, E and F are the cascade items.
func letterConfig() config.Config {
	cfg := config.Default()
	cfg.Items = []string{"A", "B", "C", "D", "E", "F"}
	cfg.MilestoneItem = "B"
	cfg.CascadeItems = []string{"E", "F"}
	return cfg
}

func newTestEngine(t *testing.T, cfg config.Config, opts ...runtime.EngineOption) (*runtime.Engine, *clock.Manual) {
	t.Helper()
	require.NoError(t, cfg.Validate())
	clk := clock.NewManual(t0)
	opts = append([]runtime.EngineOption{runtime.WithClock(clk)}, opts...)
	return runtime.NewEngine(cfg, opts...), clk
}
