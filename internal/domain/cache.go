package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// QueryInvalidator drops cached query results that an on-chain settlement has
// made stale: the domain's detail view and the owner's portfolio listings and
// offers. Implementations must tolerate keys that are already absent.
type QueryInvalidator interface {
	InvalidateAfterFulfillment(ctx context.Context, domainName string, owner common.Address) error
}
