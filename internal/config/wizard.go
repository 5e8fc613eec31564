package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// ConfigFileName is the default config file written by the wizard.
const ConfigFileName = ".infrachat.yml"

// docsDirCandidates are directories checked for existing markdown knowledge.
var docsDirCandidates = []string{"docs", "runbooks", "knowledge", "wiki"}

// detectDocsDir returns the first well-known documentation directory present
// in the working directory.
func detectDocsDir() string {
	for _, dir := range docsDirCandidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to infrachat! Let's configure your assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Default environment.
	envPrompt := promptui.Select{
		Label: "Default deployment environment",
		Items: []string{
			"aws        — Amazon Web Services",
			"azure      — Microsoft Azure",
			"gcp        — Google Cloud Platform",
			"on-premise — self-hosted datacenter",
			"hybrid     — multi-cloud",
		},
	}
	envIdx, _, err := envPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("environment selection: %w", err)
	}
	envs := []Environment{EnvironmentAWS, EnvironmentAzure, EnvironmentGCP, EnvironmentOnPremise, EnvironmentHybrid}
	cfg.DefaultEnvironment = envs[envIdx]

	// 2. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (SQLite database)",
		Default: cfg.DataDir,
	}
	cfg.DataDir, err = dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 3. Server port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			p, err := strconv.Atoi(s)
			if err != nil || p <= 0 || p > 65535 {
				return fmt.Errorf("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 4. Knowledge docs directory.
	docsPrompt := promptui.Prompt{
		Label:   "Markdown knowledge directory (leave blank to skip)",
		Default: detectDocsDir(),
	}
	cfg.Knowledge.DocsDir, err = docsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("docs dir: %w", err)
	}

	// 5. Provisioning apply.
	applyPrompt := promptui.Select{
		Label: "Allow apply/destroy through the assistant?",
		Items: []string{"no", "yes"},
	}
	applyIdx, _, err := applyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("apply selection: %w", err)
	}
	cfg.Provisioner.AllowApply = applyIdx == 1

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
