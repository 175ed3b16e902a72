package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ContractClass identifies which on-chain contract holds a domain token.
type ContractClass string

const (
	// ClassWrapped means the domain lives in the semi-fungible wrapper
	// contract (ERC-1155 style).
	ClassWrapped ContractClass = "wrapped"
	// ClassUnwrapped means the domain lives in the registrar contract
	// (ERC-721 style).
	ClassUnwrapped ContractClass = "unwrapped"
)

// DomainAsset is the tokenized domain name being traded.
type DomainAsset struct {
	Name    string
	TokenID *big.Int
	Expiry  time.Time
	Class   ContractClass
	Owner   common.Address
}

// ApprovalStatus is the operator-approval state for one (owner, operator)
// pair on the contract class's collection. It is queried fresh each flow and
// never persisted.
type ApprovalStatus struct {
	Class    ContractClass
	Approved bool
}

// FlowKind identifies which marketplace record a fulfillment flow settles.
type FlowKind string

const (
	KindAcceptOffer     FlowKind = "accept_offer"
	KindPurchaseListing FlowKind = "purchase_listing"
)

// FulfillRequest is everything an orchestrator needs to run one fulfillment
// flow: the stored order JSON, the asset it trades, and the backend record to
// mark on success.
type FulfillRequest struct {
	FlowID    string
	Kind      FlowKind
	RecordID  string
	Asset     DomainAsset
	OrderData []byte
}
