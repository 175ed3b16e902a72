package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies DOMAINEX_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known DOMAINEX_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "DOMAINEX_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.KeystorePath, "DOMAINEX_WALLET_KEYSTORE_PATH")
	setStr(&cfg.Wallet.KeyPassword, "DOMAINEX_WALLET_KEY_PASSWORD")

	// ── Chain ──
	setStr(&cfg.Chain.RPCURL, "DOMAINEX_CHAIN_RPC_URL")
	setInt64(&cfg.Chain.ChainID, "DOMAINEX_CHAIN_ID")
	setStr(&cfg.Chain.Marketplace, "DOMAINEX_CHAIN_MARKETPLACE")
	setStr(&cfg.Chain.Registrar, "DOMAINEX_CHAIN_REGISTRAR")
	setStr(&cfg.Chain.Wrapper, "DOMAINEX_CHAIN_WRAPPER")
	setDuration(&cfg.Chain.ReceiptTimeout, "DOMAINEX_CHAIN_RECEIPT_TIMEOUT")

	// ── Market ──
	setStr(&cfg.Market.BaseURL, "DOMAINEX_MARKET_BASE_URL")
	setStr(&cfg.Market.APIKey, "DOMAINEX_MARKET_API_KEY")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "DOMAINEX_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "DOMAINEX_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "DOMAINEX_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "DOMAINEX_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "DOMAINEX_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "DOMAINEX_REDIS_TLS_ENABLED")

	// ── Pricing ──
	setInt(&cfg.Pricing.GraceDays, "DOMAINEX_PRICING_GRACE_DAYS")
	setInt(&cfg.Pricing.PremiumDays, "DOMAINEX_PRICING_PREMIUM_DAYS")
	setFloat64(&cfg.Pricing.StartPremiumUSD, "DOMAINEX_PRICING_START_PREMIUM_USD")

	// ── Bulk ──
	setInt(&cfg.Bulk.PageSize, "DOMAINEX_BULK_PAGE_SIZE")
	setInt(&cfg.Bulk.Concurrency, "DOMAINEX_BULK_CONCURRENCY")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "DOMAINEX_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
