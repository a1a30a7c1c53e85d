package app

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/business/twap/domain"
	"github.com/fd1az/stableswap-sim/internal/logger"
)

// Point is one TWAP observation over a full window.
type Point struct {
	Timestamp  time.Time
	Arithmetic decimal.Decimal
	Geometric  decimal.Decimal
	Samples    int
}

// Service consumes a price source and maintains sliding-window TWAPs.
// Points are emitted only once the window has filled: a partial window is
// not a meaningful average.
type Service struct {
	window *domain.Window
	source PriceSource
	log    logger.LoggerInterface

	points chan Point

	mu     sync.RWMutex
	latest *Point
}

// NewService creates a TWAP service over the given source.
func NewService(windowSize int, source PriceSource, log logger.LoggerInterface) (*Service, error) {
	window, err := domain.NewWindow(windowSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		window: window,
		source: source,
		log:    log,
		points: make(chan Point, 64),
	}, nil
}

// Start begins consuming the source. It returns once the source is running;
// samples are processed in the background until the source channel closes or
// the context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	samples, err := s.source.Start(ctx)
	if err != nil {
		return err
	}

	go s.run(ctx, samples)
	return nil
}

func (s *Service) run(ctx context.Context, samples <-chan domain.Sample) {
	defer close(s.points)

	for {
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "twap service stopping", "reason", ctx.Err())
			return
		case sample, ok := <-samples:
			if !ok {
				s.log.Info(ctx, "price source closed, twap service stopping")
				return
			}
			s.onSample(ctx, sample)
		}
	}
}

func (s *Service) onSample(ctx context.Context, sample domain.Sample) {
	if err := s.window.Push(sample); err != nil {
		s.log.Warn(ctx, "sample rejected", "price", sample.Price.String(), "error", err)
		return
	}
	if !s.window.Full() {
		return
	}

	arith, err := s.window.Arithmetic()
	if err != nil {
		s.log.Error(ctx, "arithmetic twap failed", "error", err)
		return
	}
	geom, err := s.window.Geometric()
	if err != nil {
		s.log.Error(ctx, "geometric twap failed", "error", err)
		return
	}

	point := Point{
		Timestamp:  sample.Timestamp,
		Arithmetic: arith,
		Geometric:  geom,
		Samples:    s.window.Len(),
	}

	s.mu.Lock()
	s.latest = &point
	s.mu.Unlock()

	select {
	case s.points <- point:
	default:
		s.log.Warn(ctx, "twap point dropped, consumer too slow")
	}
}

// Points returns the stream of TWAP observations. The channel is closed when
// the service stops.
func (s *Service) Points() <-chan Point {
	return s.points
}

// Latest returns the most recent TWAP point, if any window has completed.
func (s *Service) Latest() (Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Point{}, false
	}
	return *s.latest, true
}

// Stop shuts down the underlying source.
func (s *Service) Stop() error {
	return s.source.Close()
}
