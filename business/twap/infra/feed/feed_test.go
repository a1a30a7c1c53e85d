package feed

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	poolApp "github.com/fd1az/stableswap-sim/business/pool/app"
	poolDomain "github.com/fd1az/stableswap-sim/business/pool/domain"
	"github.com/fd1az/stableswap-sim/internal/logger"
)

func newTestSource(t *testing.T) *BinanceSource {
	t.Helper()
	cfg := DefaultBinanceConfig("USDCUSDT")
	cfg.EnableFallback = false

	src, err := NewBinanceSource(cfg, logger.New(io.Discard, logger.LevelError, "test", nil))
	if err != nil {
		t.Fatalf("NewBinanceSource() error = %v", err)
	}
	return src
}

func TestBinanceSource_HandleMessage(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantPrice string // empty = no sample expected
	}{
		{
			name:      "raw_agg_trade",
			payload:   `{"e":"aggTrade","E":1693400000000,"s":"USDCUSDT","p":"1.0003","q":"150","T":1693400000123}`,
			wantPrice: "1.0003",
		},
		{
			name:      "combined_stream_wrapper",
			payload:   `{"stream":"usdcusdt@aggTrade","data":{"e":"aggTrade","E":1693400000000,"s":"USDCUSDT","p":"0.9998","q":"75","T":1693400000456}}`,
			wantPrice: "0.9998",
		},
		{
			name:    "subscribe_ack_ignored",
			payload: `{"result":null,"id":1}`,
		},
		{
			name:    "unparseable_price_ignored",
			payload: `{"e":"aggTrade","E":1693400000000,"s":"USDCUSDT","p":"not-a-number","q":"1","T":1693400000789}`,
		},
		{
			name:    "garbage_ignored",
			payload: `not json`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestSource(t)
			src.handleMessage(context.Background(), []byte(tt.payload))

			if tt.wantPrice == "" {
				if len(src.out) != 0 {
					t.Fatalf("unexpected sample emitted for %s", tt.name)
				}
				return
			}

			select {
			case sample := <-src.out:
				want := decimal.RequireFromString(tt.wantPrice)
				if !sample.Price.Equal(want) {
					t.Errorf("price = %s, want %s", sample.Price, want)
				}
				if sample.Timestamp.IsZero() {
					t.Error("sample timestamp not set")
				}
			default:
				t.Fatal("no sample emitted")
			}
		})
	}
}

func TestBinanceSource_StaleDetection(t *testing.T) {
	src := newTestSource(t)

	// No sample seen yet: always stale.
	if !src.stale() {
		t.Error("fresh source with no samples should be stale")
	}

	src.lastSeen.Store(time.Now().UnixMilli())
	if src.stale() {
		t.Error("source should be fresh right after a sample")
	}

	src.lastSeen.Store(time.Now().Add(-time.Minute).UnixMilli())
	if !src.stale() {
		t.Error("source should be stale after a minute of silence")
	}
}

func TestEngineSource(t *testing.T) {
	pool, err := poolDomain.NewPool(
		"USDC", "USDT",
		decimal.NewFromInt(1000),
		decimal.NewFromInt(1000),
		decimal.NewFromInt(100),
		decimal.RequireFromString("0.000001"),
		poolDomain.DefaultSolverConfig(),
	)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	engine := poolApp.NewEngine(pool, log, nil)

	src := NewEngineSource(engine, 10*time.Millisecond, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	samples, err := src.Start(ctx)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case sample := <-samples:
		// Balanced pool prices at 1.
		if !sample.Price.Equal(decimal.NewFromInt(1)) {
			t.Errorf("price = %s, want 1", sample.Price)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for engine sample")
	}

	if err := src.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Channel drains and closes after Close.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-samples:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("samples channel did not close")
		}
	}
}
