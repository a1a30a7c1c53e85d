// Package pool implements the StableSwap pool bounded context.
package pool

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/stableswap-sim/business/pool/app"
	"github.com/fd1az/stableswap-sim/business/pool/domain"
	poolDI "github.com/fd1az/stableswap-sim/business/pool/di"
	"github.com/fd1az/stableswap-sim/business/pool/infra/onchain"
	"github.com/fd1az/stableswap-sim/business/pool/infra/telemetry"
	"github.com/fd1az/stableswap-sim/internal/config"
	"github.com/fd1az/stableswap-sim/internal/di"
	"github.com/fd1az/stableswap-sim/internal/logger"
	"github.com/fd1az/stableswap-sim/internal/monolith"
)

// Module implements the pool bounded context.
type Module struct{}

// RegisterServices registers all pool services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Observer - metrics when telemetry is on, no-op otherwise
	di.RegisterToken(c, poolDI.Observer, func(sr di.ServiceRegistry) app.Observer {
		cfg := sr.Get("config").(*config.Config)
		if !cfg.Telemetry.Enabled {
			return app.NopObserver{}
		}

		obs, err := telemetry.NewObserver()
		if err != nil {
			panic("failed to create telemetry observer: " + err.Error())
		}
		return obs
	})

	// Register ReserveSource (on-chain seeder) - private dependency
	di.RegisterToken(c, poolDI.ReserveSource, func(sr di.ServiceRegistry) app.ReserveSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		ethClient := sr.Get("ethClient").(*ethclient.Client)

		seeder, err := onchain.NewSeeder(ethClient, cfg.Seed, log)
		if err != nil {
			panic("failed to create onchain seeder: " + err.Error())
		}
		return seeder
	})

	// Register Engine (public - exposed to other modules)
	di.RegisterToken(c, poolDI.Engine, func(sr di.ServiceRegistry) *app.Engine {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		obs := poolDI.GetObserver(sr)

		x := cfg.Pool.BalanceXDecimal()
		y := cfg.Pool.BalanceYDecimal()

		if cfg.Seed.Enabled {
			source := poolDI.GetReserveSource(sr)
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			seededX, seededY, err := source.FetchReserves(ctx)
			if err != nil {
				panic("failed to seed reserves from chain: " + err.Error())
			}
			x, y = seededX, seededY
		}

		solverCfg := domain.SolverConfig{
			Tolerance:     cfg.Solver.ToleranceDecimal(),
			MaxIterations: cfg.Solver.MaxIterations,
		}

		p, err := domain.NewPool(
			cfg.Pool.TokenX, cfg.Pool.TokenY,
			x, y,
			cfg.Pool.AmplificationDecimal(),
			cfg.Solver.DriftToleranceDecimal(),
			solverCfg,
		)
		if err != nil {
			panic("failed to create pool: " + err.Error())
		}
		return app.NewEngine(p, log, obs)
	})

	return nil
}

// Startup initializes the pool module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	engine := poolDI.GetEngine(mono.Services())
	state, err := engine.State(ctx)
	if err != nil {
		return err
	}

	log.Info(ctx, "pool module started",
		"token_x", state.TokenX,
		"token_y", state.TokenY,
		"balance_x", state.X.String(),
		"balance_y", state.Y.String(),
		"amplification", state.Amplification.String(),
		"invariant", state.Invariant.String(),
		"spot_price", state.SpotPrice.String(),
	)
	return nil
}
