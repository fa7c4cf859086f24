package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/egoavara/plugin-convert/internal/convert"
	"github.com/egoavara/plugin-convert/internal/core"
)

// EnvPrefix is prepended to environment overrides, e.g. PLUGIN_CONVERT_PARALLEL
const EnvPrefix = "PLUGIN_CONVERT"

// Config represents the main configuration file structure
type Config struct {
	Locale           string         `json:"locale" mapstructure:"locale"` // "auto" or ISO format (e.g., "ko-KR", "en-US")
	DefaultDirection core.Direction `json:"defaultDirection" mapstructure:"defaultDirection"`
	Parallel         int            `json:"parallel" mapstructure:"parallel"` // marketplace worker count
	Agents           AgentsConfig   `json:"agents" mapstructure:"agents"`
	Output           OutputConfig   `json:"output" mapstructure:"output"`
}

// AgentsConfig holds the provider and model given to converted agents that have none
type AgentsConfig struct {
	Provider string `json:"provider" mapstructure:"provider"`
	Model    string `json:"model" mapstructure:"model"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	JSON bool `json:"json" mapstructure:"json"`
}

// AgentDefaults returns the agent defaults in converter form
func (c *Config) AgentDefaults() convert.AgentDefaults {
	return convert.AgentDefaults{Provider: c.Agents.Provider, Model: c.Agents.Model}
}

var (
	cfg     *Config
	cfgOnce sync.Once
	cfgMu   sync.RWMutex
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Locale:           "auto",
		DefaultDirection: core.DirectionAuto,
		Parallel:         4,
		Agents: AgentsConfig{
			Provider: convert.DefaultAgentDefaults.Provider,
			Model:    convert.DefaultAgentDefaults.Model,
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(ConfigPath())
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := NewConfig()
	v.SetDefault("locale", d.Locale)
	v.SetDefault("defaultDirection", string(d.DefaultDirection))
	v.SetDefault("parallel", d.Parallel)
	v.SetDefault("agents.provider", d.Agents.Provider)
	v.SetDefault("agents.model", d.Agents.Model)
	v.SetDefault("output.json", d.Output.JSON)
	return v
}

// Load loads the configuration from file, environment and defaults
func Load() (*Config, error) {
	cfgMu.RLock()
	defer cfgMu.RUnlock()

	v := newViper()
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&config)
	return &config, nil
}

// applyDefaults fills values the file set to zero or to something unusable
func applyDefaults(c *Config) {
	d := NewConfig()
	if c.Locale == "" {
		c.Locale = d.Locale
	}
	if _, err := core.ParseDirection(string(c.DefaultDirection)); err != nil || c.DefaultDirection == "" {
		c.DefaultDirection = d.DefaultDirection
	}
	if c.Parallel <= 0 {
		c.Parallel = d.Parallel
	}
	if c.Agents.Provider == "" {
		c.Agents.Provider = d.Agents.Provider
	}
	if c.Agents.Model == "" {
		c.Agents.Model = d.Agents.Model
	}
}

// Save saves the configuration to file
func Save(config *Config) error {
	cfgMu.Lock()
	defer cfgMu.Unlock()

	path := ConfigPath()
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Get returns the current configuration (singleton)
func Get() *Config {
	cfgOnce.Do(func() {
		var err error
		cfg, err = Load()
		if err != nil {
			cfg = NewConfig()
		}
	})
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg
}

// Reload reloads the configuration from file
func Reload() error {
	newCfg, err := Load()
	if err != nil {
		return err
	}
	cfgOnce.Do(func() {})
	cfgMu.Lock()
	cfg = newCfg
	cfgMu.Unlock()
	return nil
}

// field describes a settable configuration key
type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

var fields = map[string]field{
	"locale": {
		get: func(c *Config) string { return c.Locale },
		set: func(c *Config, v string) error { c.Locale = v; return nil },
	},
	"defaultDirection": {
		get: func(c *Config) string { return string(c.DefaultDirection) },
		set: func(c *Config, v string) error {
			d, err := core.ParseDirection(v)
			if err != nil {
				return err
			}
			c.DefaultDirection = d
			return nil
		},
	},
	"parallel": {
		get: func(c *Config) string { return strconv.Itoa(c.Parallel) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("parallel must be a positive integer, got '%s'", v)
			}
			c.Parallel = n
			return nil
		},
	},
	"agents.provider": {
		get: func(c *Config) string { return c.Agents.Provider },
		set: func(c *Config, v string) error { c.Agents.Provider = v; return nil },
	},
	"agents.model": {
		get: func(c *Config) string { return c.Agents.Model },
		set: func(c *Config, v string) error { c.Agents.Model = v; return nil },
	},
	"output.json": {
		get: func(c *Config) string { return strconv.FormatBool(c.Output.JSON) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("output.json must be true or false, got '%s'", v)
			}
			c.Output.JSON = b
			return nil
		},
	},
}

// Keys returns every settable key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the string form of a key
func (c *Config) Value(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown config key '%s'. Valid keys: %s", key, strings.Join(Keys(), ", "))
	}
	return f.get(c), nil
}

// Set parses and assigns a key
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key '%s'. Valid keys: %s", key, strings.Join(Keys(), ", "))
	}
	return f.set(c, value)
}

// GetLocale returns the configured locale
func GetLocale() string {
	return Get().Locale
}
