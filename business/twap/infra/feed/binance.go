package feed

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/stableswap-sim/business/twap/app"
	"github.com/fd1az/stableswap-sim/business/twap/domain"
	"github.com/fd1az/stableswap-sim/internal/apperror"
	"github.com/fd1az/stableswap-sim/internal/circuitbreaker"
	"github.com/fd1az/stableswap-sim/internal/httpclient"
	"github.com/fd1az/stableswap-sim/internal/logger"
	"github.com/fd1az/stableswap-sim/internal/ratelimit"
	"github.com/fd1az/stableswap-sim/internal/wsconn"
)

const (
	tracerName = "feed"

	// Binance endpoints
	BaseWSURL   = "wss://stream.binance.com:9443/ws"
	BaseHTTPURL = "https://api.binance.com"

	tickerPricePath = "/api/v3/ticker/price"
)

// Ensure BinanceSource implements PriceSource.
var _ app.PriceSource = (*BinanceSource)(nil)

// BinanceConfig holds the live price source configuration.
type BinanceConfig struct {
	WebSocketURL   string        // WebSocket URL (empty = default)
	HTTPURL        string        // REST base URL for the fallback (empty = default)
	Symbol         string        // Trading symbol, e.g. "USDCUSDT"
	StaleTimeout   time.Duration // How long before the stream is considered stale
	RatePerMinute  int           // REST poll budget for the fallback
	EnableFallback bool          // Poll REST when the stream goes stale
}

// DefaultBinanceConfig returns sensible defaults for the symbol.
func DefaultBinanceConfig(symbol string) BinanceConfig {
	return BinanceConfig{
		Symbol:         symbol,
		StaleTimeout:   5 * time.Second,
		RatePerMinute:  600,
		EnableFallback: true,
	}
}

// BinanceSource streams trade prices over WebSocket, falling back to REST
// polling through a circuit breaker when the stream goes stale.
type BinanceSource struct {
	config BinanceConfig
	logger logger.LoggerInterface

	conn    *wsconn.Client
	http    httpclient.Client
	cb      *circuitbreaker.CircuitBreaker[decimal.Decimal]
	limiter *ratelimit.Limiter

	out      chan domain.Sample
	done     chan struct{}
	lastSeen atomic.Int64 // unix ms of last emitted sample
	nextID   atomic.Int64

	closeOnce sync.Once
	wg        sync.WaitGroup

	tracer trace.Tracer
}

// NewBinanceSource creates a live price source.
func NewBinanceSource(cfg BinanceConfig, log logger.LoggerInterface) (*BinanceSource, error) {
	wsURL := cfg.WebSocketURL
	if wsURL == "" {
		wsURL = BaseWSURL
	}
	httpURL := cfg.HTTPURL
	if httpURL == "" {
		httpURL = BaseHTTPURL
	}

	s := &BinanceSource{
		config:  cfg,
		logger:  log,
		conn:    wsconn.New(wsconn.DefaultConfig(wsURL)),
		limiter: ratelimit.New(cfg.RatePerMinute),
		out:     make(chan domain.Sample, 100),
		done:    make(chan struct{}),
		tracer:  otel.Tracer(tracerName),
	}

	if cfg.EnableFallback {
		httpC, err := httpclient.New(httpclient.Config{
			BaseURL: httpURL,
			Name:    "feed",
		})
		if err != nil {
			return nil, err
		}
		s.http = httpC
		s.cb = circuitbreaker.New[decimal.Decimal](circuitbreaker.DefaultConfig("feed-fallback"))
	}

	s.conn.OnConnect(s.subscribe)
	return s, nil
}

// Start connects the stream and begins producing samples. The returned
// channel is closed when the stream ends and the fallback is exhausted.
func (s *BinanceSource) Start(ctx context.Context) (<-chan domain.Sample, error) {
	if err := s.conn.Connect(ctx); err != nil {
		if !s.config.EnableFallback {
			return nil, apperror.New(apperror.CodeFeedConnectionFailed,
				apperror.WithCause(err),
				apperror.WithContext("websocket connect failed and fallback is disabled"))
		}
		s.logger.Warn(ctx, "websocket connect failed, relying on fallback polling", "error", err)
	}

	s.wg.Add(1)
	go s.readLoop(ctx)

	if s.config.EnableFallback {
		s.wg.Add(1)
		go s.watchdog(ctx)
	}

	go func() {
		s.wg.Wait()
		close(s.out)
	}()

	return s.out, nil
}

// subscribe runs after every (re)connect to re-establish the trade stream.
func (s *BinanceSource) subscribe(ctx context.Context) error {
	req := WSRequest{
		Method: "SUBSCRIBE",
		Params: []string{strings.ToLower(s.config.Symbol) + "@" + EventTypeAggTrade},
		ID:     s.nextID.Add(1),
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return s.conn.Send(ctx, payload)
}

func (s *BinanceSource) readLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case msg, ok := <-s.conn.Messages():
			if !ok {
				s.logger.Warn(ctx, "websocket stream ended")
				return
			}
			s.handleMessage(ctx, msg)
		}
	}
}

func (s *BinanceSource) handleMessage(ctx context.Context, msg []byte) {
	// Combined streams arrive wrapped; raw streams and subscribe acks do not.
	var wrapper StreamEvent
	data := msg
	if err := json.Unmarshal(msg, &wrapper); err == nil && wrapper.Stream != "" {
		data = wrapper.Data
	}

	var event AggTradeEvent
	if err := json.Unmarshal(data, &event); err != nil || event.EventType != EventTypeAggTrade {
		return
	}

	price, err := event.ParsePrice()
	if err != nil {
		s.logger.Debug(ctx, "unparseable trade price", "price", event.Price, "error", err)
		return
	}

	s.emit(domain.Sample{Timestamp: event.Timestamp(), Price: price})
}

// watchdog polls the REST ticker whenever the stream goes quiet.
func (s *BinanceSource) watchdog(ctx context.Context) {
	defer s.wg.Done()

	interval := s.config.StaleTimeout / 2
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if !s.stale() {
				continue
			}
			s.pollOnce(ctx)
		}
	}
}

func (s *BinanceSource) stale() bool {
	last := s.lastSeen.Load()
	if last == 0 {
		return true
	}
	return time.Since(time.UnixMilli(last)) > s.config.StaleTimeout
}

func (s *BinanceSource) pollOnce(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "feed.poll_ticker",
		trace.WithAttributes(attribute.String("symbol", s.config.Symbol)),
	)
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		return
	}

	price, err := s.cb.Execute(func() (decimal.Decimal, error) {
		var resp TickerPriceResponse
		if err := s.http.GetJSON(ctx, tickerPricePath, map[string]string{"symbol": s.config.Symbol}, &resp); err != nil {
			return decimal.Zero, err
		}
		return resp.ParsePrice()
	})
	if err != nil {
		span.SetStatus(codes.Error, "ticker poll failed")
		s.logger.Warn(ctx, "fallback poll failed", "symbol", s.config.Symbol, "error", err)
		return
	}

	span.SetAttributes(attribute.String("price", price.String()))
	s.logger.Debug(ctx, "stream stale, price from fallback", "symbol", s.config.Symbol, "price", price.String())
	s.emit(domain.Sample{Timestamp: time.Now(), Price: price})
}

func (s *BinanceSource) emit(sample domain.Sample) {
	select {
	case s.out <- sample:
		s.lastSeen.Store(time.Now().UnixMilli())
	case <-s.done:
	}
}

// Close shuts the source down.
func (s *BinanceSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}
