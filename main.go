package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vietcart/fulfillment/internal/server"
	"github.com/vietcart/fulfillment/internal/shipping"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "fulfillment",
	Short:   "VietCart Fulfillment - multi-carrier shipping service",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(ctx)
	}

	metrics := initMetrics()
	registry := initCarrierRegistry(cfg, logger)
	resolver, err := initResolver(cfg)
	if err != nil {
		return err
	}

	repo, repoClose, err := initRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repoClose()

	orchestrator := shipping.NewOrchestrator(registry, initFeeTable(), resolver, logger, metrics, cfg.QuoteDeadline)
	waybills := shipping.NewWaybillService(repo, registry, orchestrator, resolver, senderSettings(cfg), logger, metrics)
	bulk := shipping.NewBulkRunner(waybills, repo, registry, logger, cfg.BulkWorkers)

	logger.Info("Starting VietCart Fulfillment",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Strings("carriers", registry.Names()),
	)

	srv := server.New(server.Config{Port: cfg.Port}, registry, orchestrator, waybills, bulk, logger, metrics)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
