package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
	"github.com/ziadkadry99/infrachat/internal/audit"
	"github.com/ziadkadry99/infrachat/internal/config"
	"github.com/ziadkadry99/infrachat/internal/db"
	"github.com/ziadkadry99/infrachat/internal/infra"
	"github.com/ziadkadry99/infrachat/internal/knowledge"
	"github.com/ziadkadry99/infrachat/internal/logging"
	"github.com/ziadkadry99/infrachat/internal/memory"
	"github.com/ziadkadry99/infrachat/internal/orchestrator"
	"github.com/ziadkadry99/infrachat/internal/patterns"
	"github.com/ziadkadry99/infrachat/internal/progress"
	"github.com/ziadkadry99/infrachat/internal/provisioner"
	"github.com/ziadkadry99/infrachat/internal/requirements"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `infrachat init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger; --verbose forces debug level.
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logging.New(cfg.Log)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// app holds the components shared by the server, chat and mcp commands.
// Each process owns exactly one database handle.
type app struct {
	cfg          *config.Config
	log          *logrus.Logger
	db           *db.DB
	patterns     *patterns.Store
	memory       *memory.Store
	requirements *requirements.Store
	collector    *requirements.Collector
	audit        *audit.Store
	broker       *knowledge.Broker
	engine       *orchestrator.Orchestrator
}

// newApp opens the database and wires every component from cfg. An empty
// pattern catalog is seeded so that a fresh install answers immediately.
func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &app{
		cfg:          cfg,
		log:          log,
		db:           database,
		patterns:     patterns.NewStore(database),
		memory:       memory.NewStore(database, cfg.Memory.MaxContextTurns),
		requirements: requirements.NewStore(database),
		audit:        audit.NewStore(database),
	}
	a.collector = requirements.NewCollector(a.requirements, log)

	if n, err := a.patterns.Count(ctx); err != nil {
		database.Close()
		return nil, err
	} else if n == 0 {
		if _, err := patterns.Seed(ctx, a.patterns, progress.Nop{}); err != nil {
			database.Close()
			return nil, err
		}
		log.WithField("patterns", len(patterns.Catalog)).Info("seeded empty pattern catalog")
	}

	a.broker, err = newBroker(cfg, log)
	if err != nil {
		database.Close()
		return nil, err
	}

	qa, err := analyzer.New(analyzer.Options{
		CacheSize:      cfg.Analyzer.CacheSize,
		MaxQueryLength: cfg.Analyzer.MaxQueryLength,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating analyzer: %w", err)
	}

	a.engine = orchestrator.New(orchestrator.Deps{
		Analyzer:       qa,
		Patterns:       a.patterns,
		Memory:         a.memory,
		Broker:         a.broker,
		Plans:          infra.NewAnalyzer(infra.Environment(cfg.DefaultEnvironment)),
		Requirements:   a.collector,
		Audit:          a.audit,
		Log:            log,
		MaxProviders:   cfg.Knowledge.MaxProviders,
		MaxQueryLength: cfg.Analyzer.MaxQueryLength,
		WriteArtifacts: cfg.Provisioner.WriteFiles,
	})
	return a, nil
}

// newBroker registers the built-in providers, plus the docs provider when a
// docs directory is configured.
func newBroker(cfg *config.Config, log logrus.FieldLogger) (*knowledge.Broker, error) {
	broker := knowledge.NewBroker(log)

	if err := broker.Register(knowledge.NewInfrastructureProvider()); err != nil {
		return nil, err
	}

	cli := provisioner.NewCLI(cfg.Provisioner.Binary, cfg.Provisioner.WorkDir, log)
	if err := broker.Register(knowledge.NewTerraformProvider(cli, cfg.Provisioner.WorkDir, cfg.Provisioner.AllowApply)); err != nil {
		return nil, err
	}

	if cfg.Knowledge.DocsDir != "" {
		docs, err := knowledge.NewDocsProvider(cfg.Knowledge.DocsDir, cfg.Knowledge.Include, log)
		if err != nil {
			return nil, fmt.Errorf("loading docs from %s: %w", cfg.Knowledge.DocsDir, err)
		}
		if err := broker.Register(docs); err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"dir": cfg.Knowledge.DocsDir, "sections": docs.Sections()}).Info("docs provider loaded")
	}
	return broker, nil
}

// Close releases the database handle.
func (a *app) Close() error {
	return a.db.Close()
}
