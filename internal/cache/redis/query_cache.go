package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"

	"github.com/grailsmarket/domainex/internal/domain"
)

// QueryInvalidator implements domain.QueryInvalidator over Redis.
//
// Key schema:
//
//	query:domain:{name}              - cached domain detail view
//	query:portfolio:{owner}:listings - cached portfolio listings query
//	query:portfolio:{owner}:offers   - cached portfolio offers query
type QueryInvalidator struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewQueryInvalidator creates a QueryInvalidator backed by the given Client.
func NewQueryInvalidator(c *Client, logger *slog.Logger) *QueryInvalidator {
	return &QueryInvalidator{
		rdb:    c.Underlying(),
		logger: logger.With(slog.String("component", "query_cache")),
	}
}

func domainKey(name string) string {
	return "query:domain:" + strings.ToLower(name)
}

func portfolioListingsKey(owner common.Address) string {
	return "query:portfolio:" + strings.ToLower(owner.Hex()) + ":listings"
}

func portfolioOffersKey(owner common.Address) string {
	return "query:portfolio:" + strings.ToLower(owner.Hex()) + ":offers"
}

// InvalidateAfterFulfillment deletes the fixed key set a settlement makes
// stale. Keys that are already absent are not an error.
func (q *QueryInvalidator) InvalidateAfterFulfillment(ctx context.Context, domainName string, owner common.Address) error {
	keys := []string{
		domainKey(domainName),
		portfolioListingsKey(owner),
		portfolioOffersKey(owner),
	}
	if err := q.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis: invalidate after fulfillment: %w", err)
	}
	q.logger.Debug("queries invalidated",
		slog.String("domain", domainName),
		slog.String("owner", owner.Hex()),
	)
	return nil
}

var _ domain.QueryInvalidator = (*QueryInvalidator)(nil)
