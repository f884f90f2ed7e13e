package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/server"
	"github.com/mj1618/winmatch/internal/session"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing winmatch tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes the profiles and
session control as tools. Agents can list windows, run one-shot matches and
start or stop sessions without the console.

Supported transports:
  stdio             Standard I/O (default)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  winmatch serve
  winmatch serve --transport streamable-http --port 8080
  winmatch serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 500, "Window list cache TTL in milliseconds (0 to disable)")
	serveCmd.Flags().Bool("stop-keys", true, "Also stop sessions with the configured stop keys")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")
	listenKeys, _ := cmd.Flags().GetBool("stop-keys")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	store, closeStore, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// stdout belongs to the stdio transport, so session progress goes
	// only to history.
	manager := session.NewManager(provider, sessionReporter(session.Discard, store))
	if listenKeys {
		combo, err := cfg.StopCombo()
		if err != nil {
			return err
		}
		manager.ListenStopKeys(ctx, combo)
	}
	defer func() {
		manager.Stop()
		manager.Wait()
	}()

	opts := server.Options{
		Transport: transport,
		Port:      port,
		CacheTTL:  time.Duration(cacheTTLMs) * time.Millisecond,
	}
	srv := server.New(ctx, cfg, provider, manager, opts)
	if err := srv.Serve(opts); err != nil {
		return fmt.Errorf("MCP server: %w", err)
	}
	return nil
}
