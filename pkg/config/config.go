package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment override, e.g. SETTLEMENT_JWT_SECRET
const envPrefix = "SETTLEMENT"

// APIServerConfig represents the settlement API server configuration
type APIServerConfig struct {
	Server         ServerConfig           `mapstructure:"server"`
	Database       DatabaseConfig         `mapstructure:"database"`
	Redis          RedisConfig            `mapstructure:"redis"`
	JWT            JWTConfig              `mapstructure:"jwt"`
	Chains         map[string]ChainConfig `mapstructure:"chains"`
	Risk           RiskConfig             `mapstructure:"risk"`
	Unlock         UnlockConfig           `mapstructure:"unlock"`
	Broadcast      BroadcastConfig        `mapstructure:"broadcast"`
	Monitor        MonitorConfig          `mapstructure:"monitor"`
	Reconciliation ReconciliationConfig   `mapstructure:"reconciliation"`
	Pricing        PricingConfig          `mapstructure:"pricing"`
	Webhook        WebhookConfig          `mapstructure:"webhook"`
	RateLimit      RateLimitConfig        `mapstructure:"rate_limit"`
	Logging        LoggingConfig          `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// RedisConfig contains redis settings. An empty address list disables redis
// and the server falls back to in-process locking without rate limiting.
type RedisConfig struct {
	Addrs    []string `mapstructure:"addrs"`
	Password string   `mapstructure:"password"`
	DB       int      `mapstructure:"db"`
}

// Enabled reports whether a redis endpoint is configured
func (c RedisConfig) Enabled() bool {
	return len(c.Addrs) > 0
}

// JWTConfig configures bearer token validation. When Secret is set tokens are
// HS256, otherwise keys are fetched from JWKSURL.
type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	JWKSURL  string `mapstructure:"jwks_url"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

// ChainConfig contains per-chain RPC settings
type ChainConfig struct {
	RPCURL            string  `mapstructure:"rpc_url"`
	ChainID           int64   `mapstructure:"chain_id"`
	Confirmations     uint64  `mapstructure:"confirmations"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	NativeSymbol      string  `mapstructure:"native_symbol"`
}

// RiskConfig contains risk engine limits. Amounts are USD decimal strings.
type RiskConfig struct {
	TierLimits      map[string]string `mapstructure:"tier_limits"`
	KYCThresholdUSD string            `mapstructure:"kyc_threshold_usd"`
	ReviewRatio     string            `mapstructure:"review_ratio"`
	Window          time.Duration     `mapstructure:"window"`
}

// UnlockConfig contains wallet unlock session settings
type UnlockConfig struct {
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MinTTL      time.Duration `mapstructure:"min_ttl"`
	MaxTTL      time.Duration `mapstructure:"max_ttl"`
	TokenPepper string        `mapstructure:"token_pepper"`
	ProofMaxAge time.Duration `mapstructure:"proof_max_age"`
}

// BroadcastConfig contains broadcast settings
type BroadcastConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// MonitorConfig contains confirmation monitor settings
type MonitorConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	OrderTimeout time.Duration `mapstructure:"order_timeout"`
}

// ReconciliationConfig contains settings for the periodic reconciler
type ReconciliationConfig struct {
	InitialTimeout time.Duration `mapstructure:"initial_timeout"`
	Interval       time.Duration `mapstructure:"interval"`
	BatchSize      int           `mapstructure:"batch_size"`
	DispatchGrace  time.Duration `mapstructure:"dispatch_grace"`
}

// PricingConfig holds static USD prices used to value operations
type PricingConfig struct {
	USDPrices map[string]string `mapstructure:"usd_prices"`
}

// WebhookConfig contains provider callback verification settings
type WebhookConfig struct {
	BridgeSecret string        `mapstructure:"bridge_secret"`
	FiatSecret   string        `mapstructure:"fiat_secret"`
	MaxSkew      time.Duration `mapstructure:"max_skew"`
}

// RateLimitConfig contains per-user request limits for money-moving endpoints
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LoadAPIServer loads API server configuration from file
func LoadAPIServer(configPath string) (*APIServerConfig, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setAPIServerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config APIServerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateAPIServer(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setAPIServerDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.request_timeout", "25s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.database", "wallet_settlement")

	// Risk defaults
	v.SetDefault("risk.tier_limits", map[string]string{
		"unverified": "0",
		"basic":      "1000",
		"standard":   "10000",
		"premium":    "100000",
	})
	v.SetDefault("risk.kyc_threshold_usd", "1000")
	v.SetDefault("risk.review_ratio", "0.8")
	v.SetDefault("risk.window", "24h")

	// Unlock defaults
	v.SetDefault("unlock.default_ttl", "15m")
	v.SetDefault("unlock.min_ttl", "1m")
	v.SetDefault("unlock.max_ttl", "1h")
	v.SetDefault("unlock.proof_max_age", "5m")

	// Broadcast and monitoring defaults
	v.SetDefault("broadcast.timeout", "10s")
	v.SetDefault("monitor.poll_interval", "15s")
	v.SetDefault("monitor.order_timeout", "24h")

	// Reconciliation defaults
	v.SetDefault("reconciliation.initial_timeout", "2m")
	v.SetDefault("reconciliation.interval", "5m")
	v.SetDefault("reconciliation.batch_size", 100)
	v.SetDefault("reconciliation.dispatch_grace", "2m")

	// Webhook defaults
	v.SetDefault("webhook.max_skew", "5m")

	// Rate limit defaults
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

func validateAPIServer(config *APIServerConfig) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.JWT.Secret == "" && config.JWT.JWKSURL == "" {
		return fmt.Errorf("jwt.secret or jwt.jwks_url is required")
	}
	if len(config.Unlock.TokenPepper) < 32 {
		return fmt.Errorf("unlock.token_pepper must be at least 32 characters")
	}
	if config.Unlock.MinTTL <= 0 || config.Unlock.MinTTL > config.Unlock.DefaultTTL || config.Unlock.DefaultTTL > config.Unlock.MaxTTL {
		return fmt.Errorf("unlock ttl bounds must satisfy 0 < min_ttl <= default_ttl <= max_ttl")
	}
	if config.Broadcast.Timeout <= 0 {
		return fmt.Errorf("broadcast.timeout must be positive")
	}
	for name, c := range config.Chains {
		if c.RPCURL == "" {
			return fmt.Errorf("chains.%s.rpc_url is required", name)
		}
	}
	for tier, limit := range config.Risk.TierLimits {
		if _, err := decimal.NewFromString(limit); err != nil {
			return fmt.Errorf("risk.tier_limits.%s: %w", tier, err)
		}
	}
	if _, err := decimal.NewFromString(config.Risk.KYCThresholdUSD); err != nil {
		return fmt.Errorf("risk.kyc_threshold_usd: %w", err)
	}
	if _, err := decimal.NewFromString(config.Risk.ReviewRatio); err != nil {
		return fmt.Errorf("risk.review_ratio: %w", err)
	}
	for symbol, price := range config.Pricing.USDPrices {
		if _, err := decimal.NewFromString(price); err != nil {
			return fmt.Errorf("pricing.usd_prices.%s: %w", symbol, err)
		}
	}
	return nil
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
