package throttle

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPrefix = "antiflood"
	// handlers without a configured rate are not gated
	DefaultRate time.Duration = 0
)

// Gate configuration for a single handler.
type Limit struct {
	Key  string        `yaml:"key"`
	Rate time.Duration `yaml:"rate"`
}

// Gate configuration for all handlers. Handlers without an entry share the default key and rate.
//
// Example YAML:
//
//	prefix: antiflood
//	default: 500ms
//	handlers:
//	  text:
//	    rate: 2s
//	  ban:
//	    key: commands
//	    rate: 5s
type Limits struct {
	Prefix   string           `yaml:"prefix"`
	Default  time.Duration    `yaml:"default"`
	Handlers map[string]Limit `yaml:"handlers"`
}

func DefaultLimits() Limits {
	return Limits{
		Prefix:   DefaultPrefix,
		Default:  DefaultRate,
		Handlers: map[string]Limit{},
	}
}

func LoadLimitsYAML(p string) (Limits, error) {
	raw, err := os.ReadFile(p)
	if err != nil {
		return Limits{}, err
	}
	ls := DefaultLimits()
	if err := yaml.Unmarshal(raw, &ls); err != nil {
		return Limits{}, fmt.Errorf("parsing limits file %s: %w", p, err)
	}
	if ls.Prefix == "" {
		ls.Prefix = DefaultPrefix
	}
	if ls.Default < 0 {
		return Limits{}, fmt.Errorf("negative default rate")
	}
	for name, lim := range ls.Handlers {
		if lim.Rate < 0 {
			return Limits{}, fmt.Errorf("negative rate for handler %q", name)
		}
	}
	return ls, nil
}

// Resolves the gate key and minimum interval for the named handler. A zero rate means the gate is off.
func (ls Limits) For(handler string) Limit {
	prefix := ls.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if lim, ok := ls.Handlers[handler]; ok && handler != "" {
		if lim.Key == "" {
			lim.Key = prefix + "_" + handler
		}
		return lim
	}
	return Limit{Key: prefix + "_message", Rate: ls.Default}
}
