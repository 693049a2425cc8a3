// Package config handles configuration loading and management for fleetmux.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Kensan196948G/fleetmux/internal/registry"
	"github.com/Kensan196948G/fleetmux/internal/state"
)

// Config holds all configuration for fleetmux.
type Config struct {
	Session  SessionConfig  `mapstructure:"session"`
	Topology TopologyConfig `mapstructure:"topology"`
	Delivery DeliveryConfig `mapstructure:"delivery"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
	State    StateConfig    `mapstructure:"state"`
	Keywords KeywordsConfig `mapstructure:"keywords"`
}

// SessionConfig holds workspace discovery settings.
type SessionConfig struct {
	// Patterns is the prioritized list of session name patterns. The first
	// live session matching a pattern is used.
	Patterns []string `mapstructure:"patterns"`
}

// TopologyConfig maps roles onto pane indexes.
type TopologyConfig struct {
	LeadPane        int            `mapstructure:"lead_pane"`
	CoordinatorPane int            `mapstructure:"coordinator_pane"`
	Workers         []WorkerConfig `mapstructure:"workers"`
}

// WorkerConfig describes one worker pane.
type WorkerConfig struct {
	Pane        int      `mapstructure:"pane"`
	Specialties []string `mapstructure:"specialties"`
}

// DeliveryConfig holds pacing and retry settings.
type DeliveryConfig struct {
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	LineWait      time.Duration `mapstructure:"line_wait"`
	SettleWait    time.Duration `mapstructure:"settle_wait"`
}

// SweepConfig holds activity sweep settings.
type SweepConfig struct {
	// StaleAfter is the inactivity gap that triggers a responsiveness ping.
	StaleAfter time.Duration `mapstructure:"stale_after"`
	// Interval is the cadence of periodic sweeps in monitor --watch.
	Interval time.Duration `mapstructure:"interval"`
}

// StateConfig holds persistence settings.
type StateConfig struct {
	// DBPath overrides the state database location. Empty selects the
	// project database when present, the global one otherwise.
	DBPath string `mapstructure:"db_path"`
}

// KeywordsConfig holds keyword router settings.
type KeywordsConfig struct {
	// RulesPath points at a keyword rules YAML file. Empty uses the
	// compiled-in table.
	RulesPath string `mapstructure:"rules_path"`
}

// Registry converts the topology section into the registry's form.
func (c *Config) Registry() registry.Topology {
	topo := registry.Topology{
		LeadPane:        c.Topology.LeadPane,
		CoordinatorPane: c.Topology.CoordinatorPane,
	}
	for _, w := range c.Topology.Workers {
		topo.Workers = append(topo.Workers, registry.WorkerSlot{
			Pane:        w.Pane,
			Specialties: append([]string{}, w.Specialties...),
		})
	}
	return topo
}

// Validate rejects topologies that cannot dispatch.
func (c *Config) Validate() error {
	if len(c.Session.Patterns) == 0 {
		return fmt.Errorf("session.patterns must list at least one pattern")
	}
	if len(c.Topology.Workers) == 0 {
		return fmt.Errorf("topology.workers must list at least one worker pane")
	}
	panes := map[int]string{
		c.Topology.LeadPane:        "lead",
		c.Topology.CoordinatorPane: "coordinator",
	}
	if c.Topology.LeadPane == c.Topology.CoordinatorPane {
		return fmt.Errorf("lead and coordinator share pane %d", c.Topology.LeadPane)
	}
	for _, w := range c.Topology.Workers {
		if who, taken := panes[w.Pane]; taken {
			return fmt.Errorf("worker pane %d already assigned to %s", w.Pane, who)
		}
		panes[w.Pane] = "worker"
	}
	if c.Delivery.RetryAttempts < 1 {
		return fmt.Errorf("delivery.retry_attempts must be at least 1")
	}
	return nil
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (FLEETMUX_*)
// 2. Project config (.fleetmux.yaml in current directory or parent)
// 3. User config (~/.config/fleetmux/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("FLEETMUX")
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it
// exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values. The default topology matches the
// provisioning scripts' five-pane layout: lead, coordinator, three workers.
func setDefaults(v *viper.Viper) {
	v.SetDefault("session.patterns", []string{"fleetmux", "agents-*", "ai-team-*"})

	v.SetDefault("topology.lead_pane", 0)
	v.SetDefault("topology.coordinator_pane", 1)
	v.SetDefault("topology.workers", []map[string]any{
		{"pane": 2, "specialties": []string{"backend"}},
		{"pane": 3, "specialties": []string{"frontend"}},
		{"pane": 4, "specialties": []string{"infra"}},
	})

	v.SetDefault("delivery.retry_attempts", 3)
	v.SetDefault("delivery.retry_delay", "2s")
	v.SetDefault("delivery.line_wait", "300ms")
	v.SetDefault("delivery.settle_wait", "500ms")

	v.SetDefault("sweep.stale_after", "30m")
	v.SetDefault("sweep.interval", "3m")

	v.SetDefault("state.db_path", "")
	v.SetDefault("keywords.rules_path", "")
}

// getUserConfigDir returns the XDG config directory for fleetmux.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "fleetmux")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "fleetmux")
	}
	return filepath.Join(home, ".config", "fleetmux")
}

// findProjectConfig searches for .fleetmux.yaml in the current directory and
// parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".fleetmux.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			Patterns: []string{"fleetmux", "agents-*", "ai-team-*"},
		},
		Topology: TopologyConfig{
			LeadPane:        0,
			CoordinatorPane: 1,
			Workers: []WorkerConfig{
				{Pane: 2, Specialties: []string{"backend"}},
				{Pane: 3, Specialties: []string{"frontend"}},
				{Pane: 4, Specialties: []string{"infra"}},
			},
		},
		Delivery: DeliveryConfig{
			RetryAttempts: 3,
			RetryDelay:    2 * time.Second,
			LineWait:      300 * time.Millisecond,
			SettleWait:    500 * time.Millisecond,
		},
		Sweep: SweepConfig{
			StaleAfter: 30 * time.Minute,
			Interval:   3 * time.Minute,
		},
	}
}

// ResolveDBPath picks the state database location: explicit override first,
// then an existing project database, then the global one.
func (c *Config) ResolveDBPath() string {
	if c.State.DBPath != "" {
		return c.State.DBPath
	}
	cwd, err := os.Getwd()
	if err == nil {
		project := state.ProjectDBPath(cwd)
		if _, err := os.Stat(project); err == nil {
			return project
		}
	}
	return state.GlobalDBPath()
}
