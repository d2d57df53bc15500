package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/config"
	"github.com/fakturo/fakturo/internal/devserver"
	"github.com/fakturo/fakturo/pkg/database"
	"github.com/fakturo/fakturo/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Fakturo dev server",
		zap.String("host", cfg.DevServer.Host),
		zap.Int("port", cfg.DevServer.Port))

	db, err := database.New(database.Config{Path: cfg.DevServer.DBPath}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	store, err := devserver.NewStore(db, logger)
	if err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	var extractor devserver.InvoiceExtractor
	if cfg.DevServer.OpenAIKey != "" {
		extractor = devserver.NewOpenAIExtractor(cfg.DevServer.OpenAIKey, cfg.DevServer.OpenAIModel, logger)
		logger.Info("OCR extraction via OpenAI", zap.String("model", cfg.DevServer.OpenAIModel))
	} else {
		extractor = devserver.StubExtractor{}
		logger.Info("No OpenAI key configured, OCR responses are stubbed")
	}

	server := devserver.NewServer(cfg.DevServer, store, extractor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
	logger.Info("Dev server stopped")
}
