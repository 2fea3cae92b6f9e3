// Pharos MCP server - entry point
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/QuentinCody/pharos-mcp-server/internal/api"
	"github.com/QuentinCody/pharos-mcp-server/internal/domain/audit"
	"github.com/QuentinCody/pharos-mcp-server/internal/domain/graphql"
	"github.com/QuentinCody/pharos-mcp-server/internal/domain/tool"
	"github.com/QuentinCody/pharos-mcp-server/internal/infra/config"
	"github.com/QuentinCody/pharos-mcp-server/internal/infra/eventbus"
	"github.com/QuentinCody/pharos-mcp-server/internal/infra/sqlite"
	"github.com/QuentinCody/pharos-mcp-server/internal/mcpserver"
	"github.com/QuentinCody/pharos-mcp-server/internal/server"
	"github.com/QuentinCody/pharos-mcp-server/internal/version"
)

const shutdownGrace = 10 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("pharos-mcp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")
	stdio := fs.Bool("stdio", false, "Serve MCP over stdin/stdout instead of HTTP")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	return serve(*stdio, out)
}

// serve wires the pipeline (config → executor → gateway → MCP server) and
// blocks until the transport finishes or a shutdown signal arrives.
// Diagnostics go to stderr so the stdio transport stays clean.
func serve(stdio bool, out io.Writer) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(out, err) //nolint:errcheck
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := eventbus.New()
	if cfg.AuditDBPath != "" {
		db, dbErr := sqlite.NewDB(cfg.AuditDBPath)
		if dbErr != nil {
			fmt.Fprintln(out, dbErr) //nolint:errcheck
			return 1
		}
		defer db.Close() //nolint:errcheck
		if migErr := sqlite.MigrateUp(db); migErr != nil {
			fmt.Fprintln(out, migErr) //nolint:errcheck
			return 1
		}
		recorder := audit.NewRecorder(db, logger)
		go recorder.Start(ctx, bus)
		logger.Info("invocation log enabled", "path", cfg.AuditDBPath)
	}

	client := graphql.NewClient(cfg.Endpoint, cfg.UserAgent, cfg.QueryTimeout, logger)
	gateway := tool.NewGateway(client, bus, logger)
	mcpSrv := mcpserver.New(gateway)

	if stdio {
		if runErr := mcpSrv.RunStdio(ctx); runErr != nil && ctx.Err() == nil {
			logger.Error("stdio transport failed", "error", runErr)
			return 1
		}
		return 0
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Host
	srvCfg.Port = cfg.Port
	httpSrv := server.NewServer(api.NewRouter(mcpSrv.HTTPHandler()), srvCfg, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Start(ctx) }()

	select {
	case startErr := <-errCh:
		if startErr != nil {
			logger.Error("server failed", "error", startErr)
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if shutdownErr := httpSrv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("shutdown failed", "error", shutdownErr)
			return 1
		}
	}

	return 0
}

func printHelp(out io.Writer) {
	helpText := `Pharos MCP server — expose the Pharos GraphQL API as an MCP tool

Usage:
  pharos-mcp [options]

Options:
  --version    Show version information
  --help       Show this help message
  --stdio      Serve MCP over stdin/stdout instead of HTTP

Environment:
  PHAROS_ENDPOINT       Upstream GraphQL endpoint (default: ` + config.DefaultEndpoint + `)
  PHAROS_HOST           Listen host (default: 0.0.0.0)
  PHAROS_PORT           Listen port (default: 8080)
  PHAROS_QUERY_TIMEOUT  Upstream request timeout (default: 30s; 0 disables)
  PHAROS_AUDIT_DB       SQLite path for the invocation log (default: disabled)
  PHAROS_CONFIG         Optional YAML config file

Examples:
  pharos-mcp
  pharos-mcp --stdio
  PHAROS_PORT=9090 pharos-mcp`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
