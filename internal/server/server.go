// Package server exposes profiles and sessions to MCP clients.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/winmatch/internal/config"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/session"
	"github.com/mj1618/winmatch/internal/version"
)

// Options holds MCP server configuration.
type Options struct {
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// Server wraps the MCP server with the platform provider, the loaded config
// and the session manager.
type Server struct {
	cfg        *config.Config
	provider   *platform.Provider
	manager    *session.Manager
	cache      *WindowCache
	providerMu sync.Mutex
	mcp        *mcpserver.MCPServer
	ctx        context.Context
}

// New creates and configures an MCP server with all winmatch tools. Sessions
// started through it run until stopped or until ctx ends.
func New(ctx context.Context, cfg *config.Config, provider *platform.Provider, manager *session.Manager, opts Options) *Server {
	s := &Server{
		cfg:      cfg,
		provider: provider,
		manager:  manager,
		cache:    NewWindowCache(opts.CacheTTL),
		ctx:      ctx,
	}
	s.mcp = mcpserver.NewMCPServer(
		"winmatch",
		version.Version,
		mcpserver.WithToolCapabilities(false),
	)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(opts Options) error {
	slog.Info("starting MCP server", "transport", opts.Transport, "port", opts.Port)
	switch opts.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", opts.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", opts.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("list_profiles",
			mcp.WithDescription("List the configured profiles: command token, window title substring, template directory and thresholds"),
		),
		s.handleListProfiles,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_windows",
			mcp.WithDescription("List visible top-level windows with their handles and client-area bounds"),
			mcp.WithString("title", mcp.Description("Only windows whose title contains this substring")),
		),
		s.handleListWindows,
	)

	s.mcp.AddTool(
		mcp.NewTool("start_session",
			mcp.WithDescription("Start the capture, match and click loop for a profile. Only one session runs at a time."),
			mcp.WithString("profile", mcp.Required(), mcp.Description("Profile command token")),
			mcp.WithNumber("duration_ms", mcp.Description("Stop the session automatically after this many milliseconds (0 = until stopped)")),
		),
		s.handleStartSession,
	)

	s.mcp.AddTool(
		mcp.NewTool("stop_session",
			mcp.WithDescription("Stop the running session and wait for it to finish its current iteration"),
		),
		s.handleStopSession,
	)

	s.mcp.AddTool(
		mcp.NewTool("session_status",
			mcp.WithDescription("Report the state and counters of the current or most recent session"),
		),
		s.handleSessionStatus,
	)

	s.mcp.AddTool(
		mcp.NewTool("match_once",
			mcp.WithDescription("Capture a profile's window once and score every template. Clicks found matches only when click is true."),
			mcp.WithString("profile", mcp.Required(), mcp.Description("Profile command token")),
			mcp.WithBoolean("click", mcp.Description("Click templates scoring below the low threshold")),
		),
		s.handleMatchOnce,
	)
}
