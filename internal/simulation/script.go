// Package simulation replays a script of timed signals against the disclosure engine on a
// virtual clock, producing the exact timeline a real-time host would observe.
package simulation

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/aretw0/unveil/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Step is a signal delivered at an offset from the start of the view.
type Step struct {
	At            time.Duration `yaml:"at"`
	domain.Signal `yaml:",inline"`
}

// Script is a recorded page view.
type Script struct {
	// View names the simulated view.
	View string `yaml:"view"`

	// Duration keeps the clock running after the last step. When zero the simulation
	// stops once no cascade task is pending.
	Duration time.Duration `yaml:"duration"`

	// TickEvery injects tick signals at this interval, like a host polling for dwell.
	TickEvery time.Duration `yaml:"tick_every"`

	Steps []Step `yaml:"steps"`
}

// LoadScript reads a YAML script from path.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes and validates a YAML script. Steps are ordered by offset;
// steps sharing an offset keep their written order.
func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	slices.SortStableFunc(s.Steps, func(a, b Step) int {
		return cmp.Compare(a.At, b.At)
	})
	return s, nil
}

// Validate reports every malformed step.
func (s Script) Validate() error {
	var errs []error
	if s.Duration < 0 {
		errs = append(errs, errors.New("duration: must not be negative"))
	}
	if s.TickEvery < 0 {
		errs = append(errs, errors.New("tick_every: must not be negative"))
	}
	for i, st := range s.Steps {
		if st.At < 0 {
			errs = append(errs, fmt.Errorf("steps[%d]: negative offset %s", i, st.At))
		}
		if st.Type == "" {
			errs = append(errs, fmt.Errorf("steps[%d]: missing type", i))
		}
	}
	return errors.Join(errs...)
}

// End is the offset at which the simulation stops advancing the clock for steps.
func (s Script) End() time.Duration {
	end := s.Duration
	for _, st := range s.Steps {
		end = max(end, st.At)
	}
	return end
}
