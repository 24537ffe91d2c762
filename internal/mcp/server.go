package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/tradehand/tradehand/internal/config"
	"github.com/tradehand/tradehand/internal/intent"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"capture_submit": {
		def:     captureSubmitToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCaptureSubmit },
	},
	"task_list": {
		def:     taskListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTaskList },
	},
	"task_update": {
		def:     taskUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTaskUpdate },
	},
	"task_bulk_approve": {
		def:     taskBulkApproveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTaskBulkApprove },
	},
	"contact_search": {
		def:     contactSearchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleContactSearch },
	},
}

// AllToolNames returns a list of all registered tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates a new MCP server with tradehand tools registered.
func NewServer(db *sql.DB, cfg *config.Config, client intent.Client, logger *zap.Logger, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tradehand",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, client, logger)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, client intent.Client, logger *zap.Logger, version string) error {
	s := NewServer(db, cfg, client, logger, version)
	return server.ServeStdio(s)
}
