package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/unveil/pkg/config"
	"github.com/aretw0/unveil/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, domain.DefaultOrder, cfg.Items)
	assert.Equal(t, domain.ItemHeadline, cfg.MilestoneItem)
	assert.Equal(t, 300.0, cfg.ScrollThreshold)
	assert.Equal(t, time.Second, cfg.DwellThreshold)
	assert.Equal(t, 2, cfg.CascadeThreshold)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, cfg.CascadeDelays)
	assert.True(t, cfg.IsCascade(domain.ItemRecentering))
	assert.False(t, cfg.IsCascade(domain.ItemHeadline))
	assert.Equal(t, 1, cfg.Position(domain.ItemHeadline))
	assert.Equal(t, -1, cfg.Position("unknown"))
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
scroll_threshold: 120
dwell_threshold: 2s
cascade_delays: [250ms, 750ms]
fallback:
  headline: "Custom headline"
`))
	require.NoError(t, err)

	assert.Equal(t, 120.0, cfg.ScrollThreshold)
	assert.Equal(t, 2*time.Second, cfg.DwellThreshold)
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 750 * time.Millisecond}, cfg.CascadeDelays)
	assert.Equal(t, "Custom headline", cfg.Fallback.Headline)
	// Untouched keys keep their defaults
	assert.Equal(t, domain.DefaultOrder, cfg.Items)
	assert.Equal(t, 2, cfg.CascadeThreshold)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"No Items", func(c *config.Config) { c.Items = nil }, "at least one item"},
		{"Duplicate Item", func(c *config.Config) { c.Items = append(c.Items, domain.ItemHeadline) }, "duplicate item"},
		{"Unknown Milestone", func(c *config.Config) { c.MilestoneItem = "nope" }, "milestone_item"},
		{"Milestone Is Cascade", func(c *config.Config) { c.CascadeItems = []string{domain.ItemHeadline, domain.ItemRecentering} }, "cannot be a cascade item"},
		{"Duplicate Cascade Item", func(c *config.Config) {
			c.CascadeItems = []string{domain.ItemRecentering, domain.ItemRecentering}
		}, "cascade_items: duplicate item"},
		{"Delay Count Mismatch", func(c *config.Config) { c.CascadeDelays = c.CascadeDelays[:1] }, "cascade_delays"},
		{"Negative Delay", func(c *config.Config) { c.CascadeDelays[0] = -time.Second }, "negative delay"},
		{"Zero Scroll Threshold", func(c *config.Config) { c.ScrollThreshold = 0 }, "scroll_threshold"},
		{"Zero Dwell Threshold", func(c *config.Config) { c.DwellThreshold = 0 }, "dwell_threshold"},
		{"Zero Cascade Threshold", func(c *config.Config) { c.CascadeThreshold = 0 }, "cascade_threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_RejectsDuplicateCascadeItems(t *testing.T) {
	_, err := config.Parse([]byte("cascade_items: [recentering, recentering]\ncascade_delays: [500ms, 500ms]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `cascade_items: duplicate item "recentering"`)
}

func TestLoad(t *testing.T) {
	t.Run("Empty Path Yields Defaults", func(t *testing.T) {
		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "unveil.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cascade_threshold: 3\n"), 0o644))

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.CascadeThreshold)
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("Invalid File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scroll_threshold: -1\n"), 0o644))

		_, err := config.Load(path)
		assert.ErrorContains(t, err, "scroll_threshold")
	})
}

func TestYAML_RoundTrip(t *testing.T) {
	data, err := config.Default().YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "dwell_threshold: 1s")

	cfg, err := config.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}
