package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/infrachat/internal/audit"
	"github.com/ziadkadry99/infrachat/internal/dashboard"
	"github.com/ziadkadry99/infrachat/internal/knowledge"
	"github.com/ziadkadry99/infrachat/internal/memory"
	"github.com/ziadkadry99/infrachat/internal/orchestrator"
	"github.com/ziadkadry99/infrachat/internal/patterns"
	"github.com/ziadkadry99/infrachat/internal/requirements"
	"github.com/ziadkadry99/infrachat/internal/server"
)

var (
	serverPort     int
	serverAllowAll bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server with the REST API and chat dashboard",
	Long:  `Starts the infrachat server: the conversation REST API, the WebSocket chat dashboard and the pattern, memory, requirements and knowledge endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}
		if cmd.Flags().Changed("allow-all-origins") {
			cfg.Server.AllowAllOrigins = serverAllowAll
		}

		log := newLogger(cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(server.Config{
			Port:            cfg.Server.Port,
			AllowAllOrigins: cfg.Server.AllowAllOrigins,
			Version:         Version,
		}, a.db, log)

		registerAllRoutes(srv, a)

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "infrachat server v%s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", a.db.Path())
		fmt.Fprintf(os.Stderr, "  Knowledge providers: %d\n", len(a.broker.Providers()))

		return srv.Start()
	},
}

// registerAllRoutes wires up all feature routes.
func registerAllRoutes(srv *server.Server, a *app) {
	r := srv.Router()

	// Conversation
	orchestrator.RegisterRoutes(r, a.engine)

	// Pattern catalog
	patterns.RegisterRoutes(r, a.patterns)

	// Session memory
	memory.RegisterRoutes(r, a.memory)

	// Requirements collection
	requirements.RegisterRoutes(r, a.collector)

	// Knowledge providers
	knowledge.RegisterRoutes(r, a.broker)

	// Audit trail
	audit.RegisterRoutes(r, a.audit)

	// Dashboard (chat UI)
	dash := dashboard.New(dashboard.Deps{
		Orchestrator: a.engine,
		Memory:       a.memory,
		Patterns:     a.patterns,
		Broker:       a.broker,
		Requirements: a.collector,
		Log:          a.log,
	})
	dash.RegisterRoutes(r)
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides config)")
	serverCmd.Flags().BoolVar(&serverAllowAll, "allow-all-origins", false, "Allow all CORS origins (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
