package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "INFRACHAT_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (INFRACHAT_*). Nested keys use a double
// underscore: INFRACHAT_MEMORY__MAX_CONTEXT_TURNS -> memory.max_context_turns.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validEnvironments is the set of recognized default_environment values.
var validEnvironments = map[Environment]bool{
	EnvironmentAWS:       true,
	EnvironmentAzure:     true,
	EnvironmentGCP:       true,
	EnvironmentOnPremise: true,
	EnvironmentHybrid:    true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if !validEnvironments[c.DefaultEnvironment] {
		return fmt.Errorf("invalid default_environment %q: must be one of aws, azure, gcp, on-premise, hybrid", c.DefaultEnvironment)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Memory.MaxContextTurns <= 0 {
		return fmt.Errorf("memory.max_context_turns must be positive")
	}
	if c.Memory.RetentionDays < 0 {
		return fmt.Errorf("memory.retention_days must be non-negative")
	}

	if c.Knowledge.MaxProviders <= 0 {
		return fmt.Errorf("knowledge.max_providers must be positive")
	}

	if c.Provisioner.Binary == "" {
		return fmt.Errorf("provisioner.binary is required")
	}

	if c.Analyzer.CacheSize < 0 {
		return fmt.Errorf("analyzer.cache_size must be non-negative")
	}
	if c.Analyzer.MaxQueryLength <= 0 {
		return fmt.Errorf("analyzer.max_query_length must be positive")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if c.Log.Format != LogFormatText && c.Log.Format != LogFormatJSON {
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}

	return nil
}
