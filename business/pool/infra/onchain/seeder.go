// Package onchain seeds simulation pools from live ERC-20 reserves.
package onchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/stableswap-sim/business/pool/app"
	"github.com/fd1az/stableswap-sim/internal/apperror"
	"github.com/fd1az/stableswap-sim/internal/circuitbreaker"
	"github.com/fd1az/stableswap-sim/internal/config"
	"github.com/fd1az/stableswap-sim/internal/logger"
)

const tracerName = "onchain"

// erc20ABI is the minimal fragment needed to read reserves.
const erc20ABI = `[{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"}]`

// Ensure Seeder implements ReserveSource.
var _ app.ReserveSource = (*Seeder)(nil)

// Seeder reads the two token balances held by a pool contract so a
// simulation can start from real reserves.
type Seeder struct {
	client *ethclient.Client
	cfg    config.SeedConfig
	abi    abi.ABI

	logger logger.LoggerInterface
	cb     *circuitbreaker.CircuitBreaker[[]byte]
	tracer trace.Tracer
}

// NewSeeder creates a reserve seeder over an existing Ethereum client.
func NewSeeder(client *ethclient.Client, cfg config.SeedConfig, log logger.LoggerInterface) (*Seeder, error) {
	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 ABI: %w", err)
	}

	s := &Seeder{
		client: client,
		cfg:    cfg,
		abi:    parsedABI,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}

	cbCfg := circuitbreaker.DefaultConfig("onchain-seeder")
	s.cb = circuitbreaker.New[[]byte](cbCfg)

	return s, nil
}

// FetchReserves reads the pool contract's balance of both tokens and scales
// them to human units using the configured token decimals.
func (s *Seeder) FetchReserves(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	ctx, span := s.tracer.Start(ctx, "onchain.fetch_reserves",
		trace.WithAttributes(
			attribute.String("pool", s.cfg.PoolAddress),
		),
	)
	defer span.End()

	x, err := s.balanceOf(ctx, s.cfg.TokenXAddrHex(), s.cfg.TokenXDec)
	if err != nil {
		span.SetStatus(codes.Error, "token x balance failed")
		return decimal.Zero, decimal.Zero, err
	}
	y, err := s.balanceOf(ctx, s.cfg.TokenYAddrHex(), s.cfg.TokenYDec)
	if err != nil {
		span.SetStatus(codes.Error, "token y balance failed")
		return decimal.Zero, decimal.Zero, err
	}

	span.SetAttributes(
		attribute.String("reserve_x", x.String()),
		attribute.String("reserve_y", y.String()),
	)
	span.SetStatus(codes.Ok, "reserves fetched")

	s.logger.Info(ctx, "seeded reserves from chain",
		"pool", s.cfg.PoolAddress,
		"reserve_x", x.String(),
		"reserve_y", y.String(),
	)

	return x, y, nil
}

func (s *Seeder) balanceOf(ctx context.Context, token common.Address, tokenDecimals int32) (decimal.Decimal, error) {
	callData, err := s.abi.Pack("balanceOf", s.cfg.PoolAddressHex())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to encode balanceOf: %w", err)
	}

	result, err := s.cb.Execute(func() ([]byte, error) {
		return s.client.CallContract(ctx, ethereum.CallMsg{
			To:   &token,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return decimal.Zero, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("balanceOf call failed for token %s", token.Hex())))
	}

	outputs, err := s.abi.Unpack("balanceOf", result)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode balanceOf result: %w", err)
	}
	if len(outputs) != 1 {
		return decimal.Zero, fmt.Errorf("unexpected output length: %d", len(outputs))
	}

	raw, ok := outputs[0].(*big.Int)
	if !ok {
		return decimal.Zero, fmt.Errorf("unexpected balanceOf output type %T", outputs[0])
	}

	return decimal.NewFromBigInt(raw, -tokenDecimals), nil
}
