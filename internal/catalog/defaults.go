// Package catalog holds the deployment-tunable catalog defaults: which
// routing strategies a data center may use and which backend groups a new
// topology joins.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/netobs/dc-catalog/internal/model"
)

// Defaults describes catalog-wide settings applied to every provisioning
// request unless the request overrides them.
type Defaults struct {
	// MemberGroups are the backend groups every new data center joins.
	MemberGroups []string `yaml:"member_groups"`
	// Strategies are the routing strategies accepted at validation time.
	Strategies []string `yaml:"strategies"`
}

// BuiltinDefaults returns the defaults used when no override file is
// configured.
func BuiltinDefaults() Defaults {
	return Defaults{
		MemberGroups: []string{"topologies_dc", "topologies_clab"},
		Strategies:   []string{model.StrategyOSPFIBGP, model.StrategyISISIBGP, model.StrategyOSPFEBGP},
	}
}

// Load reads defaults from a YAML file, falling back to the builtin values
// for any field the file leaves empty. An empty path returns the builtins.
func Load(path string) (Defaults, error) {
	d := BuiltinDefaults()
	if path == "" {
		return d, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Defaults{}, fmt.Errorf("read catalog defaults: %w", err)
	}

	var override Defaults
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return Defaults{}, fmt.Errorf("parse catalog defaults: %w", err)
	}

	if len(override.MemberGroups) > 0 {
		d.MemberGroups = override.MemberGroups
	}
	if len(override.Strategies) > 0 {
		d.Strategies = override.Strategies
	}
	return d, nil
}

// ValidStrategy reports whether the given strategy is accepted.
func (d Defaults) ValidStrategy(strategy string) bool {
	for _, s := range d.Strategies {
		if s == strategy {
			return true
		}
	}
	return false
}
