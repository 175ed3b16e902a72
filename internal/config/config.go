// Package config defines the top-level configuration for the domain exchange
// core and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by DOMAINEX_* environment
// variables.
type Config struct {
	Wallet   WalletConfig  `toml:"wallet"`
	Chain    ChainConfig   `toml:"chain"`
	Market   MarketConfig  `toml:"market"`
	Redis    RedisConfig   `toml:"redis"`
	Pricing  PricingConfig `toml:"pricing"`
	Bulk     BulkConfig    `toml:"bulk"`
	LogLevel string        `toml:"log_level"`
}

// WalletConfig holds the operator's signing key sources.
type WalletConfig struct {
	PrivateKey   string `toml:"private_key"`
	KeystorePath string `toml:"keystore_path"`
	KeyPassword  string `toml:"key_password"`
}

// ChainConfig holds RPC and contract parameters. Conduits maps conduit keys
// (32-byte hex) to the conduit contract addresses that move tokens for them.
type ChainConfig struct {
	RPCURL         string            `toml:"rpc_url"`
	ChainID        int64             `toml:"chain_id"`
	Marketplace    string            `toml:"marketplace"`
	Registrar      string            `toml:"registrar"`
	Wrapper        string            `toml:"wrapper"`
	Conduits       map[string]string `toml:"conduits"`
	ReceiptTimeout duration          `toml:"receipt_timeout"`
}

// MarketConfig holds the backend API endpoint and credentials.
type MarketConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PricingConfig holds the premium price curve parameters.
type PricingConfig struct {
	GraceDays       int     `toml:"grace_days"`
	PremiumDays     int     `toml:"premium_days"`
	StartPremiumUSD float64 `toml:"start_premium_usd"`
}

// BulkConfig holds select-all aggregation parameters.
type BulkConfig struct {
	PageSize    int `toml:"page_size"`
	Concurrency int `toml:"concurrency"`
}

// duration lets TOML carry values like "120s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Defaults returns the built-in configuration a TOML file is merged over.
func Defaults() Config {
	return Config{
		Chain: ChainConfig{
			ReceiptTimeout: duration{120 * time.Second},
		},
		Redis: RedisConfig{
			PoolSize:   10,
			MaxRetries: 3,
		},
		Pricing: PricingConfig{
			GraceDays:       90,
			PremiumDays:     21,
			StartPremiumUSD: 100_000_000,
		},
		Bulk: BulkConfig{
			PageSize:    50,
			Concurrency: 4,
		},
		LogLevel: "info",
	}
}

// Validate checks that the configuration is complete enough to wire the
// application. It accumulates every problem found.
func (c *Config) Validate() error {
	var problems []string

	if c.Wallet.PrivateKey == "" && c.Wallet.KeystorePath == "" {
		problems = append(problems, "wallet: private_key or keystore_path required")
	}
	if c.Chain.RPCURL == "" {
		problems = append(problems, "chain: rpc_url required")
	}
	if c.Chain.ChainID <= 0 {
		problems = append(problems, "chain: chain_id required")
	}
	for name, addr := range map[string]string{
		"marketplace": c.Chain.Marketplace,
		"registrar":   c.Chain.Registrar,
		"wrapper":     c.Chain.Wrapper,
	} {
		if !isHexAddress(addr) {
			problems = append(problems, fmt.Sprintf("chain: %s must be a 0x address", name))
		}
	}
	for key, addr := range c.Chain.Conduits {
		if !isHexBytes32(key) || !isHexAddress(addr) {
			problems = append(problems, fmt.Sprintf("chain: conduit %q must map a bytes32 key to a 0x address", key))
		}
	}
	if c.Market.BaseURL == "" {
		problems = append(problems, "market: base_url required")
	}
	if c.Redis.Addr == "" {
		problems = append(problems, "redis: addr required")
	}
	if c.Pricing.GraceDays < 0 || c.Pricing.PremiumDays <= 0 || c.Pricing.StartPremiumUSD <= 0 {
		problems = append(problems, "pricing: grace_days >= 0, premium_days > 0, start_premium_usd > 0 required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func isHexAddress(s string) bool {
	return len(s) == 42 && strings.HasPrefix(s, "0x") && isHex(s[2:])
}

func isHexBytes32(s string) bool {
	return len(s) == 66 && strings.HasPrefix(s, "0x") && isHex(s[2:])
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
