// Package main is a standalone TWAP watcher over a live exchange feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fd1az/stableswap-sim/business/twap"
	twapDI "github.com/fd1az/stableswap-sim/business/twap/di"
	"github.com/fd1az/stableswap-sim/internal/config"
	"github.com/fd1az/stableswap-sim/internal/health"
	"github.com/fd1az/stableswap-sim/internal/logger"
	"github.com/fd1az/stableswap-sim/internal/monolith"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := logger.LevelInfo
	if cfg.App.LogLevel == "debug" {
		logLevel = logger.LevelDebug
	}
	log := logger.New(os.Stderr, logLevel, "twapwatch", nil)
	log.Info(ctx, "starting TWAP watcher",
		"version", version,
		"symbol", cfg.Feed.Symbol,
		"window_size", cfg.TWAP.WindowSize,
	)

	healthServer := health.NewServer(8082, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	}
	defer healthServer.Stop(ctx)

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	modules := []monolith.Module{
		&twap.Module{Live: true},
	}
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	svc := twapDI.GetService(mono.Services())
	defer func() { _ = svc.Stop() }()

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "shutting down")
			return nil
		case point, ok := <-svc.Points():
			if !ok {
				log.Info(ctx, "price feed closed")
				return nil
			}
			log.Info(ctx, "twap",
				"arithmetic", point.Arithmetic,
				"geometric", point.Geometric,
				"dampening", point.Arithmetic.Sub(point.Geometric),
				"samples", point.Samples,
			)
		}
	}
}
