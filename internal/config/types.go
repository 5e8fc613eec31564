package config

// Environment names a deployment target the plan analyzer falls back to when
// neither the request nor the session history names one.
type Environment string

const (
	EnvironmentAWS       Environment = "aws"
	EnvironmentAzure     Environment = "azure"
	EnvironmentGCP       Environment = "gcp"
	EnvironmentOnPremise Environment = "on-premise"
	EnvironmentHybrid    Environment = "hybrid"
)

// LogFormat selects the logrus formatter.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Config is the top-level infrachat configuration, corresponding to .infrachat.yml.
type Config struct {
	DataDir            string            `yaml:"data_dir" koanf:"data_dir"`
	DefaultEnvironment Environment       `yaml:"default_environment" koanf:"default_environment"`
	Server             ServerConfig      `yaml:"server" koanf:"server"`
	Memory             MemoryConfig      `yaml:"memory" koanf:"memory"`
	Knowledge          KnowledgeConfig   `yaml:"knowledge" koanf:"knowledge"`
	Provisioner        ProvisionerConfig `yaml:"provisioner" koanf:"provisioner"`
	Analyzer           AnalyzerConfig    `yaml:"analyzer" koanf:"analyzer"`
	Log                LogConfig         `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// MemoryConfig controls the session memory window and retention.
type MemoryConfig struct {
	MaxContextTurns int `yaml:"max_context_turns" koanf:"max_context_turns"`
	RetentionDays   int `yaml:"retention_days" koanf:"retention_days"`
}

// KnowledgeConfig controls the knowledge providers.
type KnowledgeConfig struct {
	DocsDir      string   `yaml:"docs_dir" koanf:"docs_dir"`
	Include      []string `yaml:"include" koanf:"include"`
	MaxProviders int      `yaml:"max_providers" koanf:"max_providers"`
}

// ProvisionerConfig describes the external provisioning CLI.
type ProvisionerConfig struct {
	Binary     string `yaml:"binary" koanf:"binary"`
	WorkDir    string `yaml:"work_dir" koanf:"work_dir"`
	AllowApply bool   `yaml:"allow_apply" koanf:"allow_apply"`
	// WriteFiles lets code generation write main.tf into WorkDir.
	WriteFiles bool `yaml:"write_files" koanf:"write_files"`
}

// AnalyzerConfig tunes the query analyzer.
type AnalyzerConfig struct {
	CacheSize      int `yaml:"cache_size" koanf:"cache_size"`
	MaxQueryLength int `yaml:"max_query_length" koanf:"max_query_length"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string    `yaml:"level" koanf:"level"`
	Format LogFormat `yaml:"format" koanf:"format"`
}
