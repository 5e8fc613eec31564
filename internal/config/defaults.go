package config

import "path/filepath"

// DefaultDocsInclude selects the markdown files the docs knowledge provider reads.
var DefaultDocsInclude = []string{
	"**/*.md",
	"**/*.markdown",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:            ".infrachat",
		DefaultEnvironment: EnvironmentAWS,
		Server: ServerConfig{
			Port:            8080,
			AllowAllOrigins: false,
		},
		Memory: MemoryConfig{
			MaxContextTurns: 10,
			RetentionDays:   30,
		},
		Knowledge: KnowledgeConfig{
			Include:      append([]string(nil), DefaultDocsInclude...),
			MaxProviders: 3,
		},
		Provisioner: ProvisionerConfig{
			Binary:     "terraform",
			WorkDir:    ".",
			AllowApply: false,
		},
		Analyzer: AnalyzerConfig{
			CacheSize:      512,
			MaxQueryLength: 4000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatText,
		},
	}
}

// DatabasePath returns the SQLite file location inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "infrachat.db")
}
