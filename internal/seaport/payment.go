package seaport

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/grailsmarket/domainex/internal/domain"
)

// TotalPayment sums StartAmount over every payment-typed consideration item.
// NFT-typed consideration entries exist only to route the token in edge cases
// and are skipped. The result is a fresh big.Int; inputs are never aliased.
func TotalPayment(o *domain.Order) *big.Int {
	total := new(big.Int)
	for _, item := range o.Parameters.Consideration {
		if item.ItemType.IsPayment() {
			total.Add(total, item.StartAmount)
		}
	}
	return total
}

// PaymentToken returns the token address of the first payment-typed
// consideration item. The zero address identifies the native coin. An order
// with no payment item is malformed and yields domain.ErrNoPaymentItem.
func PaymentToken(o *domain.Order) (common.Address, error) {
	for _, item := range o.Parameters.Consideration {
		if item.ItemType.IsPayment() {
			return item.Token, nil
		}
	}
	return common.Address{}, domain.ErrNoPaymentItem
}

// UsesNativeToken reports whether any consideration item is paid in the
// native coin.
func UsesNativeToken(o *domain.Order) bool {
	for _, item := range o.Parameters.Consideration {
		if item.ItemType == domain.ItemNative {
			return true
		}
	}
	return false
}
