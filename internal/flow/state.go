// Package flow drives a single fulfillment transaction through its lifecycle:
// review → approving → confirming → processing → success | error. The
// transition logic lives in a pure reducer (reducer.go) so it can be unit
// tested without any chain dependency; Runner (runner.go) performs the I/O
// and feeds events to the reducer.
package flow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// State is the orchestrator's position in the fulfillment lifecycle.
type State string

const (
	StateReview     State = "review"
	StateApproving  State = "approving"
	StateConfirming State = "confirming"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// Terminal reports whether no further event can move the flow, except the
// explicit retry edge out of error.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateError
}

// Snapshot is the externally visible flow state. It is created when a flow
// opens and discarded when it closes; nothing here is persisted.
type Snapshot struct {
	State         State
	TxHash        *common.Hash
	ApproveTxHash *common.Hash
	GasEstimate   uint64
	GasPrice      *big.Int
	ErrorMessage  string
}

// NewSnapshot returns the initial review-state snapshot.
func NewSnapshot() Snapshot {
	return Snapshot{State: StateReview}
}

// Event drives the reducer. Events describe facts (estimation finished,
// approval confirmed, receipt arrived), not desired states.
type Event interface {
	isEvent()
}

// GasEstimated carries the buffered gas limit and price for the eventual
// call.
type GasEstimated struct {
	Gas   uint64
	Price *big.Int
}

// ApprovalRequired fires when the gate reports the conduit is not yet an
// approved operator.
type ApprovalRequired struct{}

// ApprovalConfirmed fires once the approval transaction has one confirmation
// and the re-read shows the grant in effect.
type ApprovalConfirmed struct {
	TxHash common.Hash
}

// SubmitRequested fires when the flow asks the wallet to sign the main
// fulfillment transaction.
type SubmitRequested struct{}

// Submitted fires when the signed transaction has been broadcast.
type Submitted struct {
	TxHash common.Hash
}

// Confirmed fires when the receipt arrives with a success status.
type Confirmed struct{}

// Failed fires on any failure: parse, validation, simulation revert, wallet
// rejection, or receipt failure.
type Failed struct {
	Message string
}

// RetryRequested is the explicit user-triggered error → review edge.
type RetryRequested struct{}

func (GasEstimated) isEvent()      {}
func (ApprovalRequired) isEvent()  {}
func (ApprovalConfirmed) isEvent() {}
func (SubmitRequested) isEvent()   {}
func (Submitted) isEvent()         {}
func (Confirmed) isEvent()         {}
func (Failed) isEvent()            {}
func (RetryRequested) isEvent()    {}
