// Command domainex executes a single fulfillment flow against the domain
// exchange: it loads configuration, wires the chain, wallet, backend, and
// cache collaborators, fetches the stored order record, and drives it through
// the approval → simulate → submit → confirm lifecycle.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/grailsmarket/domainex/internal/approval"
	"github.com/grailsmarket/domainex/internal/cache/redis"
	"github.com/grailsmarket/domainex/internal/chain"
	"github.com/grailsmarket/domainex/internal/config"
	"github.com/grailsmarket/domainex/internal/flow"
	"github.com/grailsmarket/domainex/internal/platform/grails"
	"github.com/grailsmarket/domainex/internal/wallet"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	recordID := flag.String("record", "", "marketplace order record to fulfill")
	flag.Parse()

	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Set log level from config.
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *recordID == "" {
		logger.Error("missing -record flag")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *recordID, logger); err != nil {
		logger.Error("fulfillment failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	logger.Info("fulfillment complete")
}

func run(ctx context.Context, cfg *config.Config, recordID string, logger *slog.Logger) error {
	keyHex, err := wallet.LoadKey(wallet.KeySource{
		RawPrivateKey: cfg.Wallet.PrivateKey,
		KeystorePath:  cfg.Wallet.KeystorePath,
		Password:      cfg.Wallet.KeyPassword,
	})
	if err != nil {
		return err
	}
	signer, err := wallet.NewSigner(keyHex)
	if err != nil {
		return err
	}

	backend, err := chain.Dial(cfg.Chain.RPCURL, cfg.Chain.ReceiptTimeout.Duration)
	if err != nil {
		return err
	}
	defer backend.Close()

	rdb, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	market := grails.NewClient(cfg.Market.BaseURL, cfg.Market.APIKey)
	gate := approval.NewGate(
		backend,
		signer,
		common.HexToAddress(cfg.Chain.Registrar),
		common.HexToAddress(cfg.Chain.Wrapper),
		logger,
	)

	conduits := make(map[common.Hash]common.Address, len(cfg.Chain.Conduits))
	for key, addr := range cfg.Chain.Conduits {
		conduits[common.HexToHash(key)] = common.HexToAddress(addr)
	}

	runner := flow.NewRunner(
		backend,
		signer,
		gate,
		market,
		redis.NewQueryInvalidator(rdb, logger),
		common.HexToAddress(cfg.Chain.Marketplace),
		conduits,
		logger,
	)

	req, err := market.FulfillRequest(ctx, recordID)
	if err != nil {
		return err
	}

	logger.Info("starting fulfillment flow",
		slog.String("record", recordID),
		slog.String("domain", req.Asset.Name),
		slog.String("kind", string(req.Kind)),
		slog.String("fulfiller", signer.Address().Hex()),
	)

	snap, err := runner.Run(ctx, req)
	if err != nil {
		return err
	}
	if snap.TxHash != nil {
		logger.Info("settled", slog.String("tx", snap.TxHash.Hex()))
	}
	return nil
}
