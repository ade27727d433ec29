// Command mentor-mcp serves mentor search to MCP clients over stdio. It
// reads the same configuration as the HTTP server.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/sakif/mentor-directory/internal/config"
	"github.com/sakif/mentor-directory/internal/mcp"
	sqliteRepo "github.com/sakif/mentor-directory/internal/repository/sqlite"
	"github.com/sakif/mentor-directory/internal/search"
	"github.com/sakif/mentor-directory/internal/service"
)

func main() {
	configFile := flag.String("config", "", "path to a config file")
	flag.Parse()

	_ = godotenv.Load()

	// stdout carries the protocol, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqliteRepo.New(cfg.Database.Path, logger)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	aliases, err := search.LoadAliases(cfg.Search.AliasesFile)
	if err != nil {
		logger.Error("failed to load aliases", slog.String("error", err.Error()))
		os.Exit(1)
	}

	mentors := service.NewMentorService(
		db, db, db,
		search.NewEngine(aliases, nil),
		cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize,
		logger,
	)

	logger.Info("mcp server starting", slog.String("database", cfg.Database.Path))
	if err := mcp.NewServer(mentors, logger).Serve(); err != nil {
		logger.Error("mcp server error", slog.String("error", err.Error()))
		db.Close()
		os.Exit(1)
	}
}
