package solver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config tunes behavior that spec.md leaves to the embedding program:
// which type-constructor names satisfy which super-kind (so a host
// language can add its own List/Tuple-shaped types without touching
// satisfiesSuper), and which bare identifiers are treated as kernel
// primitives rather than unresolved-identifier failures.
type Config struct {
	// KernelIdentifiers names Instance targets that are allowed to be
	// missing from the environment (spec.md §4.5 "Instance": "a kernel
	// identifier not in env").
	KernelIdentifiers []string `yaml:"kernel_identifiers"`

	// AppendableHeads and ComparableHeads extend the built-in App1
	// heads (String, List, ...) that satisfy the appendable/comparable
	// super-kinds (spec.md §4.3.4), for host languages with additional
	// sequence-like constructors.
	AppendableHeads []string `yaml:"appendable_heads"`
	ComparableHeads []string `yaml:"comparable_heads"`
}

// LoadConfig reads a solver Config from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read solver config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse solver config: %w", err)
	}
	return &cfg, nil
}

// KernelPredicate returns an IsKernelIdentifier function for Solver
// backed by this config's KernelIdentifiers list.
func (c *Config) KernelPredicate() func(name string) bool {
	set := make(map[string]bool, len(c.KernelIdentifiers))
	for _, name := range c.KernelIdentifiers {
		set[NormalizeIdent(name)] = true
	}
	return func(name string) bool {
		return set[NormalizeIdent(name)]
	}
}
