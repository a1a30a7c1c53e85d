// Package twap implements the TWAP tracking bounded context.
package twap

import (
	"context"
	"time"

	poolDI "github.com/fd1az/stableswap-sim/business/pool/di"
	"github.com/fd1az/stableswap-sim/business/twap/app"
	twapDI "github.com/fd1az/stableswap-sim/business/twap/di"
	"github.com/fd1az/stableswap-sim/business/twap/infra/feed"
	"github.com/fd1az/stableswap-sim/internal/config"
	"github.com/fd1az/stableswap-sim/internal/di"
	"github.com/fd1az/stableswap-sim/internal/logger"
	"github.com/fd1az/stableswap-sim/internal/monolith"
)

// Module implements the twap bounded context. With Live set, prices come
// from the exchange stream; otherwise the simulated pool engine is sampled.
type Module struct {
	Live bool

	// SampleInterval controls engine sampling; zero means one second.
	SampleInterval time.Duration
}

// RegisterServices registers all twap services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register PriceSource - private dependency
	di.RegisterToken(c, twapDI.PriceSource, func(sr di.ServiceRegistry) app.PriceSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if m.Live {
			source, err := feed.NewBinanceSource(feed.BinanceConfig{
				WebSocketURL:   cfg.Feed.WebSocketURL,
				HTTPURL:        cfg.Feed.HTTPURL,
				Symbol:         cfg.Feed.Symbol,
				StaleTimeout:   cfg.Feed.StaleTimeout,
				RatePerMinute:  cfg.Feed.RatePerMinute,
				EnableFallback: cfg.Feed.EnableFallback,
			}, log)
			if err != nil {
				panic("failed to create live price source: " + err.Error())
			}
			return source
		}

		engine := poolDI.GetEngine(sr)
		return feed.NewEngineSource(engine, m.SampleInterval, log)
	})

	// Register Service (public - exposed to other modules)
	di.RegisterToken(c, twapDI.Service, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		source := twapDI.GetPriceSource(sr)

		svc, err := app.NewService(cfg.TWAP.WindowSize, source, log)
		if err != nil {
			panic("failed to create twap service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup starts the TWAP service.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	svc := twapDI.GetService(mono.Services())
	if err := svc.Start(ctx); err != nil {
		return err
	}

	log.Info(ctx, "twap module started",
		"window_size", mono.Config().TWAP.WindowSize,
		"live", m.Live,
	)
	return nil
}
