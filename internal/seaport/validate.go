package seaport

import (
	"math/big"
	"time"

	"github.com/grailsmarket/domainex/internal/domain"
)

// ValidateOrder checks whether an order is fulfillable at now, accumulating
// every applicable reason rather than stopping at the first. An EndTime of
// zero means the order never expires.
func ValidateOrder(o *domain.Order, now time.Time) domain.ValidationResult {
	var errs []string
	ts := big.NewInt(now.Unix())
	p := o.Parameters

	if p.StartTime.Cmp(ts) > 0 {
		errs = append(errs, "order not started yet")
	}
	if p.EndTime.Sign() != 0 && p.EndTime.Cmp(ts) < 0 {
		errs = append(errs, "order expired")
	}
	if len(p.Offer) == 0 {
		errs = append(errs, "order has no offer items")
	}
	if len(p.Consideration) == 0 {
		errs = append(errs, "order has no consideration items")
	}
	if len(o.Signature) == 0 {
		errs = append(errs, "order signature missing")
	}

	return domain.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
