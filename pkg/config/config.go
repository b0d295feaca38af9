// Package config holds the host-supplied configuration of the disclosure engine.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/aretw0/unveil/pkg/content"
	"github.com/aretw0/unveil/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Config is the canonical configuration of the disclosure controller.
type Config struct {
	// Items is the reveal order.
	Items []string `yaml:"items" mapstructure:"items"`

	// MilestoneItem is the item revealed by an explicit action. Its reveal gates the
	// auto-advance phase and suppresses the auxiliary panel.
	MilestoneItem string `yaml:"milestone_item" mapstructure:"milestone_item"`

	// CascadeItems are only ever revealed by the timed cascade, in this order.
	CascadeItems []string `yaml:"cascade_items" mapstructure:"cascade_items"`

	// ScrollThreshold is the scroll distance (pixels) that triggers the next reveal.
	ScrollThreshold float64 `yaml:"scroll_threshold" mapstructure:"scroll_threshold"`

	// DwellThreshold is the time since the last reveal that triggers the next reveal.
	DwellThreshold time.Duration `yaml:"dwell_threshold" mapstructure:"dwell_threshold"`

	// CascadeThreshold is the number of non-cascade reveals that starts the cascade.
	CascadeThreshold int `yaml:"cascade_threshold" mapstructure:"cascade_threshold"`

	// CascadeDelays holds one delay per cascade item. The first is measured from the
	// triggering reveal, each following one from the previous cascade step.
	CascadeDelays []time.Duration `yaml:"cascade_delays" mapstructure:"cascade_delays"`

	// Fallback is the copy used for missing content fields.
	Fallback content.Fallback `yaml:"fallback" mapstructure:"fallback"`

	// ViewTTL bounds how long a server-side host keeps an abandoned view.
	ViewTTL time.Duration `yaml:"view_ttl" mapstructure:"view_ttl"`
}

// Default returns the configuration of the explanation page.
func Default() Config {
	return Config{
		Items:            slices.Clone(domain.DefaultOrder),
		MilestoneItem:    domain.ItemHeadline,
		CascadeItems:     []string{domain.ItemRecentering, domain.ItemActionTranslation},
		ScrollThreshold:  300,
		DwellThreshold:   1000 * time.Millisecond,
		CascadeThreshold: 2,
		CascadeDelays:    []time.Duration{500 * time.Millisecond, 500 * time.Millisecond},
		Fallback:         content.DefaultFallback(),
		ViewTTL:          30 * time.Minute,
	}
}

// Load reads a YAML file on top of Default. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every inconsistency in the configuration.
func (c Config) Validate() error {
	var errs []error

	if len(c.Items) == 0 {
		errs = append(errs, errors.New("items: at least one item is required"))
	}
	seen := make(map[string]bool, len(c.Items))
	for _, id := range c.Items {
		if id == "" {
			errs = append(errs, errors.New("items: empty item id"))
			continue
		}
		if seen[id] {
			errs = append(errs, fmt.Errorf("items: duplicate item %q", id))
		}
		seen[id] = true
	}

	if !seen[c.MilestoneItem] {
		errs = append(errs, fmt.Errorf("milestone_item: %q is not a known item", c.MilestoneItem))
	}
	cascade := make(map[string]bool, len(c.CascadeItems))
	for _, id := range c.CascadeItems {
		if cascade[id] {
			errs = append(errs, fmt.Errorf("cascade_items: duplicate item %q", id))
		}
		cascade[id] = true
		if !seen[id] {
			errs = append(errs, fmt.Errorf("cascade_items: %q is not a known item", id))
		}
		if id == c.MilestoneItem {
			errs = append(errs, fmt.Errorf("cascade_items: milestone item %q cannot be a cascade item", id))
		}
	}
	if len(c.CascadeDelays) != len(c.CascadeItems) {
		errs = append(errs, fmt.Errorf("cascade_delays: got %d delays for %d cascade items", len(c.CascadeDelays), len(c.CascadeItems)))
	}
	for i, d := range c.CascadeDelays {
		if d < 0 {
			errs = append(errs, fmt.Errorf("cascade_delays[%d]: negative delay %s", i, d))
		}
	}

	if c.ScrollThreshold <= 0 {
		errs = append(errs, errors.New("scroll_threshold: must be positive"))
	}
	if c.DwellThreshold <= 0 {
		errs = append(errs, errors.New("dwell_threshold: must be positive"))
	}
	if c.CascadeThreshold < 1 {
		errs = append(errs, errors.New("cascade_threshold: must be at least 1"))
	}

	return errors.Join(errs...)
}

// IsCascade reports whether id is a cascade-only item.
func (c Config) IsCascade(id string) bool {
	return slices.Contains(c.CascadeItems, id)
}

// Position returns the index of id in the reveal order, or -1.
func (c Config) Position(id string) int {
	return slices.Index(c.Items, id)
}

// YAML renders the configuration as a YAML document.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
