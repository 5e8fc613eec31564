package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/infrachat/internal/memory"
	"github.com/ziadkadry99/infrachat/internal/orchestrator"
	"github.com/ziadkadry99/infrachat/internal/requirements"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the conversation engine as tools.
type Server struct {
	engine    *orchestrator.Orchestrator
	collector *requirements.Collector
	memory    *memory.Store
	log       logrus.FieldLogger
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(engine *orchestrator.Orchestrator, collector *requirements.Collector, mem *memory.Store, log logrus.FieldLogger) *Server {
	s := &Server{
		engine:    engine,
		collector: collector,
		memory:    mem,
		log:       log,
	}

	s.mcp = server.NewMCPServer(
		"infrachat",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(processQueryTool, s.handleProcessQuery)
	s.mcp.AddTool(analyzeInfrastructureTool, s.handleAnalyzeInfrastructure)
	s.mcp.AddTool(getRequirementsStatusTool, s.handleGetRequirementsStatus)
	s.mcp.AddTool(answerRequirementTool, s.handleAnswerRequirement)
	s.mcp.AddTool(getConversationContextTool, s.handleGetConversationContext)
	s.mcp.AddTool(setPreferenceTool, s.handleSetPreference)
	s.mcp.AddTool(recordFeedbackTool, s.handleRecordFeedback)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
