// Package study runs the within-subjects usability study over the
// discovery pipeline: trial sequencing, timing, result recording and export.
package study

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

// ErrConfiguration marks a study configuration that can never run to
// completion. It is fatal to starting the study.
var ErrConfiguration = errors.New("invalid study configuration")

// Config is the study configuration: who is taking part, in which order
// the methods are tested, and the trials of each method.
type Config struct {
	Participant string                          `yaml:"participant" json:"participant"`
	MethodOrder []domain.Method                 `yaml:"methodOrder" json:"methodOrder"`
	Trials      map[domain.Method][]TrialConfig `yaml:"trials" json:"trials"`
}

// TrialConfig is one trial entry under a method.
type TrialConfig struct {
	ID       int          `yaml:"id" json:"id"`
	TargetID int          `yaml:"targetId" json:"targetId"`
	Prompt   string       `yaml:"prompt" json:"prompt"`
	Phase    domain.Phase `yaml:"phase" json:"phase"`
}

// TargetSet answers whether a listing id exists.
type TargetSet interface {
	Contains(id int) bool
}

// LoadConfig reads a YAML or JSON study configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read study config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML (or JSON) study configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return &cfg, nil
}

// Plan flattens the configuration into the ordered trial list: every trial
// of the first method, then every trial of the next, in declaration order.
// boundaries holds the index of the first trial of each method after the
// first.
func (c *Config) Plan() (trials []domain.TrialSpec, boundaries []int, err error) {
	if len(c.MethodOrder) == 0 {
		return nil, nil, fmt.Errorf("%w: methodOrder is empty", ErrConfiguration)
	}

	seenMethod := make(map[domain.Method]bool, len(c.MethodOrder))
	seenTrial := make(map[int]bool)
	for i, method := range c.MethodOrder {
		if !method.Valid() {
			return nil, nil, fmt.Errorf("%w: unknown method %q", ErrConfiguration, method)
		}
		if seenMethod[method] {
			return nil, nil, fmt.Errorf("%w: method %q listed twice", ErrConfiguration, method)
		}
		seenMethod[method] = true

		entries := c.Trials[method]
		if len(entries) == 0 {
			return nil, nil, fmt.Errorf("%w: method %q has no trials", ErrConfiguration, method)
		}
		if i > 0 {
			boundaries = append(boundaries, len(trials))
		}
		for _, e := range entries {
			if seenTrial[e.ID] {
				return nil, nil, fmt.Errorf("%w: duplicate trial id %d", ErrConfiguration, e.ID)
			}
			seenTrial[e.ID] = true

			phase := e.Phase
			if phase == "" {
				phase = domain.PhaseMain
			}
			if !phase.Valid() {
				return nil, nil, fmt.Errorf("%w: trial %d: unknown phase %q", ErrConfiguration, e.ID, e.Phase)
			}
			trials = append(trials, domain.TrialSpec{
				ID:       e.ID,
				TargetID: e.TargetID,
				Prompt:   e.Prompt,
				Method:   method,
				Phase:    phase,
			})
		}
	}

	for method := range c.Trials {
		if !seenMethod[method] {
			return nil, nil, fmt.Errorf("%w: trials for %q but it is not in methodOrder", ErrConfiguration, method)
		}
	}
	return trials, boundaries, nil
}

// Validate checks the configuration against the loaded catalog. A target
// that is not in the catalog could never be completed.
func (c *Config) Validate(targets TargetSet) error {
	trials, _, err := c.Plan()
	if err != nil {
		return err
	}
	for _, t := range trials {
		if !targets.Contains(t.TargetID) {
			return fmt.Errorf("%w: trial %d targets listing %d which is not in the catalog", ErrConfiguration, t.ID, t.TargetID)
		}
	}
	return nil
}
