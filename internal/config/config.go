// Package config handles configuration loading for subtick.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"subtick/internal/subtickets"

	"gopkg.in/yaml.v3"
)

// DefaultTableColumns are the child-table columns shown for ticket
// types with no explicit configuration.
var DefaultTableColumns = []string{"status", "owner"}

// TypeConfig holds per-ticket-type presentation and inheritance rules.
type TypeConfig struct {
	// ChildInherits lists the fields a new child copies from its first
	// parent when both have this type.
	ChildInherits []string `yaml:"child_inherits"`
	// TableColumns are the columns of the child table on the show view.
	TableColumns []string `yaml:"table_columns"`
}

// Config holds application configuration.
type Config struct {
	// BlockClosedParents rejects edits to tickets whose parent is
	// closed.
	BlockClosedParents bool `yaml:"block_closed_parents"`
	// SkipClosureValidation lists workflow actions exempt from closure
	// gating.
	SkipClosureValidation []string `yaml:"skip_closure_validation"`
	// RecursionDepth bounds descendant listings: -1 unbounded, 0 direct
	// children only.
	RecursionDepth int    `yaml:"recursion_depth"`
	Actor          string `yaml:"actor"`
	// Types maps a ticket type name to its per-type rules.
	Types map[string]TypeConfig `yaml:"types"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		RecursionDepth: -1,
		Actor:          "$USER",
		Types: map[string]TypeConfig{
			"task": {TableColumns: DefaultTableColumns},
			"bug":  {TableColumns: DefaultTableColumns},
		},
	}
}

// Load loads configuration from config.yaml in the given subtick
// directory. If the file doesn't exist, returns default configuration.
// Environment variables in values are expanded after loading.
func Load(dir string) (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ExpandEnvVars()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	cfg.ExpandEnvVars()
	return cfg, nil
}

// Save writes the configuration to config.yaml in the given directory.
func (c *Config) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644)
}

// RegisterType sets the rules for a ticket type, replacing any existing
// entry.
func (c *Config) RegisterType(name string, tc TypeConfig) {
	if c.Types == nil {
		c.Types = make(map[string]TypeConfig)
	}
	c.Types[name] = tc
}

// TypeConfig returns the rules for a ticket type, falling back to
// defaults for unconfigured types.
func (c *Config) TypeConfig(name string) TypeConfig {
	if tc, ok := c.Types[name]; ok {
		if len(tc.TableColumns) == 0 {
			tc.TableColumns = DefaultTableColumns
		}
		return tc
	}
	return TypeConfig{TableColumns: DefaultTableColumns}
}

// Options maps the configuration onto relationship-engine options.
func (c *Config) Options() subtickets.Options {
	return subtickets.Options{
		BlockClosedParents: c.BlockClosedParents,
		SkipActions:        c.SkipClosureValidation,
		RecursionDepth:     c.RecursionDepth,
	}
}

// ExpandEnvVars expands environment variables in configuration values.
// Supports ${VAR} and $VAR syntax.
func (c *Config) ExpandEnvVars() {
	c.Actor = expandEnv(c.Actor)
}

var (
	bracedVarRE = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareVarRE   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnv expands environment variables in a string.
// Supports ${VAR} and $VAR syntax.
func expandEnv(s string) string {
	s = bracedVarRE.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
	return bareVarRE.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}
