package feed

import (
	"context"
	"sync"
	"time"

	poolApp "github.com/fd1az/stableswap-sim/business/pool/app"
	"github.com/fd1az/stableswap-sim/business/twap/app"
	"github.com/fd1az/stableswap-sim/business/twap/domain"
	"github.com/fd1az/stableswap-sim/internal/logger"
)

// Ensure EngineSource implements PriceSource.
var _ app.PriceSource = (*EngineSource)(nil)

// EngineSource samples the simulated pool's spot price at a fixed interval,
// so TWAPs can be tracked against the simulation instead of a live market.
type EngineSource struct {
	engine   *poolApp.Engine
	interval time.Duration
	logger   logger.LoggerInterface

	out       chan domain.Sample
	done      chan struct{}
	closeOnce sync.Once
}

// NewEngineSource creates a source polling the engine every interval.
func NewEngineSource(engine *poolApp.Engine, interval time.Duration, log logger.LoggerInterface) *EngineSource {
	if interval <= 0 {
		interval = time.Second
	}
	return &EngineSource{
		engine:   engine,
		interval: interval,
		logger:   log,
		out:      make(chan domain.Sample, 100),
		done:     make(chan struct{}),
	}
}

// Start begins sampling. The returned channel is closed when the source
// stops.
func (s *EngineSource) Start(ctx context.Context) (<-chan domain.Sample, error) {
	go s.run(ctx)
	return s.out, nil
}

func (s *EngineSource) run(ctx context.Context) {
	defer close(s.out)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			state, err := s.engine.State(ctx)
			if err != nil {
				s.logger.Warn(ctx, "spot price sample failed", "error", err)
				continue
			}
			sample := domain.Sample{Timestamp: time.Now(), Price: state.SpotPrice}
			select {
			case s.out <- sample:
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

// Close stops the sampler.
func (s *EngineSource) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}
