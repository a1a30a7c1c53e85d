// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Pool      PoolConfig      `mapstructure:"pool"`
	Solver    SolverConfig    `mapstructure:"solver"`
	TWAP      TWAPConfig      `mapstructure:"twap"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Seed      SeedConfig      `mapstructure:"seed"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// PoolConfig holds the initial pool parameters.
type PoolConfig struct {
	TokenX        string  `mapstructure:"token_x"`
	TokenY        string  `mapstructure:"token_y"`
	BalanceX      float64 `mapstructure:"balance_x"`
	BalanceY      float64 `mapstructure:"balance_y"`
	Amplification float64 `mapstructure:"amplification"`
}

// BalanceXDecimal returns the initial X balance as decimal.Decimal.
func (c *PoolConfig) BalanceXDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.BalanceX)
}

// BalanceYDecimal returns the initial Y balance as decimal.Decimal.
func (c *PoolConfig) BalanceYDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.BalanceY)
}

// AmplificationDecimal returns the amplification parameter as decimal.Decimal.
func (c *PoolConfig) AmplificationDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Amplification)
}

// SolverConfig holds root-finder and drift-check tuning.
type SolverConfig struct {
	Tolerance      string `mapstructure:"tolerance"`
	MaxIterations  int    `mapstructure:"max_iterations"`
	DriftTolerance string `mapstructure:"drift_tolerance"`
}

// ToleranceDecimal returns the convergence tolerance as decimal.Decimal.
func (c *SolverConfig) ToleranceDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.Tolerance)
}

// DriftToleranceDecimal returns the invariant drift tolerance as decimal.Decimal.
func (c *SolverConfig) DriftToleranceDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.DriftTolerance)
}

// TWAPConfig holds sliding-window TWAP settings.
type TWAPConfig struct {
	WindowSize int `mapstructure:"window_size"`
}

// FeedConfig holds the live price feed configuration for the TWAP watcher.
type FeedConfig struct {
	WebSocketURL   string        `mapstructure:"websocket_url"`
	HTTPURL        string        `mapstructure:"http_url"`
	Symbol         string        `mapstructure:"symbol"`
	StaleTimeout   time.Duration `mapstructure:"stale_timeout"`
	RatePerMinute  int           `mapstructure:"rate_per_minute"`
	EnableFallback bool          `mapstructure:"enable_fallback"`
}

// SeedConfig holds the optional on-chain reserve seeding configuration.
type SeedConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	HTTPURL      string `mapstructure:"http_url"`
	PoolAddress  string `mapstructure:"pool_address"`
	TokenXAddr   string `mapstructure:"token_x_address"`
	TokenYAddr   string `mapstructure:"token_y_address"`
	TokenXDec    int32  `mapstructure:"token_x_decimals"`
	TokenYDec    int32  `mapstructure:"token_y_decimals"`
}

// PoolAddressHex returns the pool address as common.Address.
func (c *SeedConfig) PoolAddressHex() common.Address {
	return common.HexToAddress(c.PoolAddress)
}

// TokenXAddrHex returns the X token contract address as common.Address.
func (c *SeedConfig) TokenXAddrHex() common.Address {
	return common.HexToAddress(c.TokenXAddr)
}

// TokenYAddrHex returns the Y token contract address as common.Address.
func (c *SeedConfig) TokenYAddrHex() common.Address {
	return common.HexToAddress(c.TokenYAddr)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("SSIM")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "SSIM_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SSIM_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SSIM_LOG_LEVEL", "LOG_LEVEL")

	// Pool
	v.BindEnv("pool.balance_x", "SSIM_POOL_BALANCE_X")
	v.BindEnv("pool.balance_y", "SSIM_POOL_BALANCE_Y")
	v.BindEnv("pool.amplification", "SSIM_POOL_AMPLIFICATION")

	// Feed
	v.BindEnv("feed.websocket_url", "SSIM_FEED_WS_URL", "FEED_WS_URL")
	v.BindEnv("feed.http_url", "SSIM_FEED_HTTP_URL", "FEED_HTTP_URL")
	v.BindEnv("feed.symbol", "SSIM_FEED_SYMBOL")

	// Seed
	v.BindEnv("seed.enabled", "SSIM_SEED_ENABLED")
	v.BindEnv("seed.http_url", "SSIM_ETH_HTTP_URL", "ETH_HTTP_URL")
	v.BindEnv("seed.pool_address", "SSIM_SEED_POOL_ADDRESS")

	// Telemetry
	v.BindEnv("telemetry.enabled", "SSIM_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "SSIM_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "SSIM_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "stableswap-sim")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Pool defaults mirror the classic balanced demo pool.
	v.SetDefault("pool.token_x", "USDC")
	v.SetDefault("pool.token_y", "USDT")
	v.SetDefault("pool.balance_x", 1000)
	v.SetDefault("pool.balance_y", 1000)
	v.SetDefault("pool.amplification", 100)

	// Solver defaults
	v.SetDefault("solver.tolerance", "0.0000000001") // 1e-10
	v.SetDefault("solver.max_iterations", 100)
	v.SetDefault("solver.drift_tolerance", "0.000001") // 1e-6

	// TWAP defaults
	v.SetDefault("twap.window_size", 50)

	// Feed defaults
	v.SetDefault("feed.symbol", "USDCUSDT")
	v.SetDefault("feed.stale_timeout", "5s")
	v.SetDefault("feed.rate_per_minute", 600)
	v.SetDefault("feed.enable_fallback", true)

	// Seed defaults
	v.SetDefault("seed.enabled", false)
	v.SetDefault("seed.token_x_decimals", 6)
	v.SetDefault("seed.token_y_decimals", 6)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "stableswap-sim")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Pool.BalanceX <= 0 || c.Pool.BalanceY <= 0 {
		return fmt.Errorf("pool balances must be positive, got (%v, %v)", c.Pool.BalanceX, c.Pool.BalanceY)
	}
	if c.Pool.Amplification <= 0 {
		return fmt.Errorf("pool.amplification must be positive, got %v", c.Pool.Amplification)
	}
	if c.Solver.MaxIterations <= 0 {
		return fmt.Errorf("solver.max_iterations must be positive, got %d", c.Solver.MaxIterations)
	}
	if _, err := decimal.NewFromString(c.Solver.Tolerance); err != nil {
		return fmt.Errorf("invalid solver.tolerance: %w", err)
	}
	if _, err := decimal.NewFromString(c.Solver.DriftTolerance); err != nil {
		return fmt.Errorf("invalid solver.drift_tolerance: %w", err)
	}
	if c.TWAP.WindowSize <= 0 {
		return fmt.Errorf("twap.window_size must be positive, got %d", c.TWAP.WindowSize)
	}
	if c.Seed.Enabled {
		if c.Seed.HTTPURL == "" {
			return fmt.Errorf("seed.http_url is required when seeding is enabled")
		}
		if !common.IsHexAddress(c.Seed.PoolAddress) {
			return fmt.Errorf("invalid seed.pool_address: %s", c.Seed.PoolAddress)
		}
		if !common.IsHexAddress(c.Seed.TokenXAddr) || !common.IsHexAddress(c.Seed.TokenYAddr) {
			return fmt.Errorf("seed token addresses must be valid hex addresses")
		}
	}
	return nil
}
