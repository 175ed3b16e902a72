// Package domain defines the canonical order model and shared types for the
// domain-name exchange core.
package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ItemType classifies what an offer or consideration item contains, using the
// protocol's numeric encoding.
type ItemType uint8

const (
	ItemNative ItemType = iota
	ItemERC20
	ItemERC721
	ItemERC1155
	ItemERC721WithCriteria
	ItemERC1155WithCriteria
)

// IsPayment reports whether the item moves fungible value (native coin or
// ERC-20) rather than an NFT.
func (t ItemType) IsPayment() bool {
	return t == ItemNative || t == ItemERC20
}

// IsNFT reports whether the item is token-identified (ERC-721/1155, with or
// without criteria).
func (t ItemType) IsNFT() bool {
	return !t.IsPayment()
}

// OfferItem is a single item the offerer gives up when the order fills.
type OfferItem struct {
	ItemType             ItemType
	Token                common.Address
	IdentifierOrCriteria *big.Int
	StartAmount          *big.Int
	EndAmount            *big.Int
}

// ConsiderationItem is a single item that must be received, and by whom, for
// the order to fill.
type ConsiderationItem struct {
	ItemType             ItemType
	Token                common.Address
	IdentifierOrCriteria *big.Int
	StartAmount          *big.Int
	EndAmount            *big.Int
	Recipient            common.Address
}

// OrderParameters carries the full signed intent: who offers what, what must
// come back, and the validity window. A canonical value always has non-empty
// Offer and Consideration slices and zero-value (not nil) Zone, ZoneHash and
// ConduitKey when the stored form omitted them.
type OrderParameters struct {
	Offerer                         common.Address
	Zone                            common.Address
	OrderType                       uint8
	StartTime                       *big.Int
	EndTime                         *big.Int
	ZoneHash                        common.Hash
	Salt                            *big.Int
	ConduitKey                      common.Hash
	Offer                           []OfferItem
	Consideration                   []ConsiderationItem
	TotalOriginalConsiderationItems *big.Int
}

// Order is the canonical, fully normalized protocol order. It is rebuilt from
// stored backend data for every fulfillment attempt and never mutated in
// place.
type Order struct {
	Parameters OrderParameters
	Signature  []byte
}

// ValidationResult accumulates every reason an order cannot be fulfilled.
// Valid is true exactly when Errors is empty.
type ValidationResult struct {
	Valid  bool
	Errors []string
}
