package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule is a single tunable rule with free-form parameters.
type Rule struct {
	RuleID      string         `yaml:"rule_id"`
	Description string         `yaml:"description"`
	Params      map[string]any `yaml:"params"`
}

// RulesConfig holds externally tunable rule parameters, keyed by rule id.
type RulesConfig struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules parses the rules file. A missing file is not an error; callers fall
// back to built-in defaults.
func LoadRules(path string) (*RulesConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &RulesConfig{}, nil
		}
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var rc RulesConfig
	if err := yaml.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return &rc, nil
}

// Get returns the rule with the given id, or nil when absent.
func (rc *RulesConfig) Get(ruleID string) *Rule {
	for i := range rc.Rules {
		if rc.Rules[i].RuleID == ruleID {
			return &rc.Rules[i]
		}
	}
	return nil
}

// IntParam returns an integer parameter, falling back to def when the rule or
// parameter is missing or has the wrong type.
func (rc *RulesConfig) IntParam(ruleID, name string, def int) int {
	r := rc.Get(ruleID)
	if r == nil {
		return def
	}
	switch v := r.Params[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

// FloatParam returns a float parameter, falling back to def when the rule or
// parameter is missing or has the wrong type.
func (rc *RulesConfig) FloatParam(ruleID, name string, def float64) float64 {
	r := rc.Get(ruleID)
	if r == nil {
		return def
	}
	switch v := r.Params[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}
