// Package main is the entry point for the StableSwap simulator.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/business/pool"
	poolApp "github.com/fd1az/stableswap-sim/business/pool/app"
	poolDI "github.com/fd1az/stableswap-sim/business/pool/di"
	"github.com/fd1az/stableswap-sim/business/pool/domain"
	"github.com/fd1az/stableswap-sim/business/twap"
	twapApp "github.com/fd1az/stableswap-sim/business/twap/app"
	twapDI "github.com/fd1az/stableswap-sim/business/twap/di"
	"github.com/fd1az/stableswap-sim/internal/apm"
	"github.com/fd1az/stableswap-sim/internal/config"
	"github.com/fd1az/stableswap-sim/internal/health"
	"github.com/fd1az/stableswap-sim/internal/logger"
	"github.com/fd1az/stableswap-sim/internal/metrics"
	"github.com/fd1az/stableswap-sim/internal/monolith"
	"github.com/fd1az/stableswap-sim/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run a scripted swap batch with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("stableswap-sim %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for scripted runs
	tuiMode := !*cliMode

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	// Run application
	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger (only log to stderr in CLI mode)
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting StableSwap simulator",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		// Tracing with Zipkin (local dev friendly)
		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		// Metrics with Prometheus
		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Start health check server on port 8081
	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&pool.Module{}, // Must be first - provides the engine
		&twap.Module{Live: false, SampleInterval: time.Second},
	}

	// Register all module services
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if tuiMode {
		startFunc := func() error {
			if err := mono.StartModules(ctx, modules...); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}
			engine := poolDI.GetEngine(mono.Services())
			svc := twapDI.GetService(mono.Services())
			startUIPump(ctx, engine, svc)
			return nil
		}
		stopFunc := func() {
			svc := twapDI.GetService(mono.Services())
			_ = svc.Stop()
		}
		return runTUI(ctx, startFunc, stopFunc)
	}

	// CLI mode: Start modules synchronously
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	engine := poolDI.GetEngine(mono.Services())
	svc := twapDI.GetService(mono.Services())
	return runCLI(ctx, engine, svc, log)
}

// runCLI executes a scripted batch of swaps and prints the resulting pool
// state, amplification sweep and TWAP with structured logs.
func runCLI(ctx context.Context, engine *poolApp.Engine, svc *twapApp.Service, log *logger.Logger) error {
	defer func() { _ = svc.Stop() }()

	type step struct {
		direction domain.Direction
		amount    string
	}
	batch := []step{
		{domain.DirectionXToY, "100"},
		{domain.DirectionYToX, "50"},
		{domain.DirectionXToY, "250"},
		{domain.DirectionYToX, "300"},
		{domain.DirectionXToY, "25"},
	}

	for _, s := range batch {
		record, err := engine.ExecuteSwap(ctx, s.direction, decimal.RequireFromString(s.amount))
		if err != nil {
			log.Error(ctx, "swap rejected",
				"direction", s.direction.String(),
				"amount_in", s.amount,
				"error", err,
			)
			continue
		}
		log.Info(ctx, "swap executed",
			"sequence", record.Sequence,
			"direction", record.Direction.String(),
			"amount_in", record.AmountIn,
			"amount_out", record.AmountOut,
			"invariant", record.InvariantAfter,
			"drift", record.Drift,
		)
	}

	state, err := engine.State(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pool state: %w", err)
	}
	log.Info(ctx, "final pool state",
		"x", state.X,
		"y", state.Y,
		"invariant", state.Invariant,
		"spot_price", state.SpotPrice,
		"swaps", state.SwapCount,
	)

	// Show how amplification flattens the price curve at different skews.
	ratios := []decimal.Decimal{
		decimal.RequireFromString("1"),
		decimal.RequireFromString("1.5"),
		decimal.RequireFromString("3"),
	}
	amps := []decimal.Decimal{
		decimal.RequireFromString("1"),
		decimal.RequireFromString("100"),
		decimal.RequireFromString("1000"),
	}
	points, err := engine.SweepAmplification(ctx, ratios, amps)
	if err != nil {
		return fmt.Errorf("amplification sweep failed: %w", err)
	}
	for _, pt := range points {
		log.Info(ctx, "sweep point",
			"ratio", pt.Ratio,
			"amplification", pt.Amplification,
			"spot_price", pt.Price,
		)
	}

	if point, ok := svc.Latest(); ok {
		log.Info(ctx, "twap",
			"arithmetic", point.Arithmetic,
			"geometric", point.Geometric,
			"samples", point.Samples,
		)
	}

	return nil
}

// startUIPump wires the engine and TWAP service to the running TUI.
func startUIPump(ctx context.Context, engine *poolApp.Engine, svc *twapApp.Service) {
	pushState := func() {
		state, err := engine.State(ctx)
		if err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			return
		}
		ui.Send(ui.StateMsg{State: state})
	}

	ui.OnSwap = func(direction domain.Direction, amountIn decimal.Decimal) {
		record, err := engine.ExecuteSwap(ctx, direction, amountIn)
		if err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			return
		}
		ui.Send(ui.SwapResultMsg{Record: record})
		pushState()
	}

	ui.OnSampleCurve = func() {
		state, err := engine.State(ctx)
		if err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			return
		}
		points := make([]poolApp.CurvePoint, 0, curveSamples)
		for point, err := range engine.SampleCurve(curveGrid(state.X)) {
			if err != nil {
				continue
			}
			points = append(points, point)
		}
		ui.Send(ui.CurveMsg{Points: points})
	}

	// Initial snapshot, then periodic refresh
	pushState()
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pushState()
			}
		}
	}()

	// Forward TWAP observations
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case point, ok := <-svc.Points():
				if !ok {
					return
				}
				ui.Send(ui.TWAPMsg{Point: point})
			}
		}
	}()
}

const curveSamples = 12

// curveGrid spans 25% to 300% of the current x balance.
func curveGrid(x decimal.Decimal) []decimal.Decimal {
	start := x.Mul(decimal.RequireFromString("0.25"))
	end := x.Mul(decimal.RequireFromString("3"))
	step := end.Sub(start).Div(decimal.NewFromInt(curveSamples - 1))

	xs := make([]decimal.Decimal, 0, curveSamples)
	for i := 0; i < curveSamples; i++ {
		xs = append(xs, start.Add(step.Mul(decimal.NewFromInt(int64(i)))))
	}
	return xs
}

func runTUI(ctx context.Context, startFunc func() error, stopFunc func()) error {
	// Channel to receive the start signal from the welcome screen
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	// Create and start the TUI program IMMEDIATELY (shows welcome screen)
	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	// Run simulator logic in background (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		select {
		case <-startSignal:
			// Welcome complete, start modules
		case <-ctx.Done():
			errCh <- nil
			return
		}

		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		<-ctx.Done()
		stopFunc()
		errCh <- nil
	}()

	// Run TUI (blocking)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
