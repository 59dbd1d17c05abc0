package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/mcpadapter"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/setup"
	applog "github.com/povarna/generative-ai-agents/classroom-agent/internal/setup/logger"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	// stdout belongs to the MCP transport, so logs go to stderr.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := applog.NewConsole(os.Getenv("LOG_LEVEL"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := setup.LoadConfig()

	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to load dependencies")
		os.Exit(1)
	}
	defer deps.Close()

	server := createMCPServer(deps)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		// EOF / "server is closing" is expected when stdin closes
		if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "server is closing") {
			logger.Debug().Err(err).Msg("MCP server stopped")
			return
		}
		logger.Error().Err(err).Msg("Failed to run mcp server")
		os.Exit(1)
	}
}

func createMCPServer(deps *setup.Dependencies) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "classroom-agent",
			Version: "1.0.0",
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_turn",
		Description: "Run one classroom interview turn (start, user_turn or next_turn). Pass back the returned session on the next call.",
	}, mcpadapter.NewRunTurnHandler(deps.Executor))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_stages",
		Description: "List the interview stages with their question, requirement and example answer",
	}, mcpadapter.ListStages)

	return server
}
