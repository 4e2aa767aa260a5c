package ratelimit

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"contractor-verify/internal/constants"
	errs "contractor-verify/pkg/errors"
)

// ActionPolicy is the configured quota for one action name.
type ActionPolicy struct {
	Limit         int `yaml:"limit"`
	WindowMinutes int `yaml:"window_minutes"`
}

// Policy holds per-action quotas plus service-wide defaults for actions with
// no explicit entry.
type Policy struct {
	DefaultLimit  int                     `yaml:"default_limit"`
	DefaultWindow int                     `yaml:"default_window_minutes"`
	Actions       map[string]ActionPolicy `yaml:"actions"`
}

// DefaultPolicy returns the built-in quotas used when no policy file is
// configured.
func DefaultPolicy() *Policy {
	return &Policy{
		DefaultLimit:  constants.RateLimitDefault,
		DefaultWindow: constants.RateLimitWindowMinutesDefault,
	}
}

// LoadPolicy reads quotas from a YAML file. Missing defaults fall back to the
// built-in values; entries with non-positive values are rejected.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewPolicy("ratelimit.LoadPolicy", "failed to read policy file", err)
	}

	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errs.NewPolicy("ratelimit.LoadPolicy", "failed to parse policy file", err)
	}

	if p.DefaultLimit <= 0 || p.DefaultWindow <= 0 {
		return nil, errs.NewPolicy("ratelimit.LoadPolicy",
			fmt.Sprintf("defaults must be positive (limit=%d window=%d)", p.DefaultLimit, p.DefaultWindow), nil)
	}
	for name, ap := range p.Actions {
		if ap.Limit <= 0 || ap.WindowMinutes <= 0 {
			return nil, errs.NewPolicy("ratelimit.LoadPolicy",
				fmt.Sprintf("action %q must have positive limit and window", name), nil)
		}
	}
	return p, nil
}

// Resolve returns the quota for an action, falling back to the defaults when
// the action has no explicit entry.
func (p *Policy) Resolve(action string) (limit int, window time.Duration) {
	if ap, ok := p.Actions[action]; ok {
		return ap.Limit, time.Duration(ap.WindowMinutes) * time.Minute
	}
	return p.DefaultLimit, time.Duration(p.DefaultWindow) * time.Minute
}
