package seaport

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// The structs below mirror the exchange contract's tuple layouts. Field names
// and order are ABI-significant: accounts/abi resolves tuple components
// against these names when packing call data. Do not reorder or rename.

// WireOfferItem is the on-wire form of an offer item.
type WireOfferItem struct {
	ItemType             uint8
	Token                common.Address
	IdentifierOrCriteria *big.Int
	StartAmount          *big.Int
	EndAmount            *big.Int
}

// WireConsiderationItem is the on-wire form of a consideration item.
type WireConsiderationItem struct {
	ItemType             uint8
	Token                common.Address
	IdentifierOrCriteria *big.Int
	StartAmount          *big.Int
	EndAmount            *big.Int
	Recipient            common.Address
}

// WireOrderParameters is the on-wire form of the order parameters. Unlike the
// canonical model, OrderType follows the item lists, matching the contract
// struct.
type WireOrderParameters struct {
	Offerer                         common.Address
	Zone                            common.Address
	Offer                           []WireOfferItem
	Consideration                   []WireConsiderationItem
	OrderType                       uint8
	StartTime                       *big.Int
	EndTime                         *big.Int
	ZoneHash                        [32]byte
	Salt                            *big.Int
	ConduitKey                      [32]byte
	TotalOriginalConsiderationItems *big.Int
}

// WireOrder is a parameters+signature pair as consumed by matchOrders.
type WireOrder struct {
	Parameters WireOrderParameters
	Signature  []byte
}

// AdvancedOrder supports partial fills and criteria resolution; this system
// always fills whole (numerator/denominator 1/1) with empty extra data.
type AdvancedOrder struct {
	Parameters  WireOrderParameters
	Numerator   *big.Int
	Denominator *big.Int
	Signature   []byte
	ExtraData   []byte
}

// CriteriaResolver supplies a concrete identifier and proof for a
// criteria-based item. Fulfillments built here never use criteria items, so
// resolver lists are always empty, but the shape is part of the
// fulfillAdvancedOrder signature.
type CriteriaResolver struct {
	OrderIndex    *big.Int
	Side          uint8
	Index         *big.Int
	Identifier    *big.Int
	CriteriaProof [][32]byte
}

// FulfillmentComponent addresses one item of one order.
type FulfillmentComponent struct {
	OrderIndex *big.Int
	ItemIndex  *big.Int
}

// Fulfillment links offer items to the consideration items they satisfy in a
// match-style fulfillment.
type Fulfillment struct {
	OfferComponents         []FulfillmentComponent
	ConsiderationComponents []FulfillmentComponent
}

// AdditionalRecipient is a fee recipient beyond the seller's primary
// proceeds in a basic order.
type AdditionalRecipient struct {
	Amount    *big.Int
	Recipient common.Address
}

// BasicOrderParameters is the flattened, gas-optimized encoding of a
// single-offer, single-primary-consideration order.
type BasicOrderParameters struct {
	ConsiderationToken                common.Address
	ConsiderationIdentifier           *big.Int
	ConsiderationAmount               *big.Int
	Offerer                           common.Address
	Zone                              common.Address
	OfferToken                        common.Address
	OfferIdentifier                   *big.Int
	OfferAmount                       *big.Int
	BasicOrderType                    uint8
	StartTime                         *big.Int
	EndTime                           *big.Int
	ZoneHash                          [32]byte
	Salt                              *big.Int
	OffererConduitKey                 [32]byte
	FulfillerConduitKey               [32]byte
	TotalOriginalAdditionalRecipients *big.Int
	AdditionalRecipients              []AdditionalRecipient
	Signature                         []byte
}

// Basic order type classification for (offer item, primary consideration)
// pairs.
const (
	BasicERC721ForNative uint8 = iota
	BasicERC1155ForNative
	BasicERC721ForERC20
	BasicERC1155ForERC20
)
