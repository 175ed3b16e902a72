package flow

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotIn(state State) Snapshot {
	s := NewSnapshot()
	s.State = state
	return s
}

func TestReduceHappyPath(t *testing.T) {
	s := NewSnapshot()
	require.Equal(t, StateReview, s.State)

	s = Reduce(s, GasEstimated{Gas: 120_000, Price: big.NewInt(1_000_000_000)})
	assert.Equal(t, StateReview, s.State)
	assert.Equal(t, uint64(120_000), s.GasEstimate)

	s = Reduce(s, SubmitRequested{})
	assert.Equal(t, StateConfirming, s.State)

	txHash := common.HexToHash("0xaaaa")
	s = Reduce(s, Submitted{TxHash: txHash})
	assert.Equal(t, StateProcessing, s.State)
	require.NotNil(t, s.TxHash)
	assert.Equal(t, txHash, *s.TxHash)

	s = Reduce(s, Confirmed{})
	assert.Equal(t, StateSuccess, s.State)
	assert.True(t, s.State.Terminal())
}

func TestReduceApprovalDetour(t *testing.T) {
	s := NewSnapshot()

	s = Reduce(s, ApprovalRequired{})
	assert.Equal(t, StateApproving, s.State)

	approveHash := common.HexToHash("0xbbbb")
	s = Reduce(s, ApprovalConfirmed{TxHash: approveHash})
	// Approval completion lands back in review; the flow continues without a
	// second user action.
	assert.Equal(t, StateReview, s.State)
	require.NotNil(t, s.ApproveTxHash)
	assert.Equal(t, approveHash, *s.ApproveTxHash)

	s = Reduce(s, SubmitRequested{})
	assert.Equal(t, StateConfirming, s.State)
}

func TestReduceFailureFromAnyActiveState(t *testing.T) {
	for _, state := range []State{StateReview, StateApproving, StateConfirming, StateProcessing, StateError} {
		s := Reduce(snapshotIn(state), Failed{Message: "boom"})
		assert.Equal(t, StateError, s.State, "from %s", state)
		assert.Equal(t, "boom", s.ErrorMessage)
	}

	// Success is final; a late failure event cannot undo it.
	s := Reduce(snapshotIn(StateSuccess), Failed{Message: "late"})
	assert.Equal(t, StateSuccess, s.State)
	assert.Empty(t, s.ErrorMessage)
}

func TestReduceRetryOnlyFromError(t *testing.T) {
	errored := snapshotIn(StateError)
	errored.ErrorMessage = "boom"
	hash := common.HexToHash("0xcccc")
	errored.TxHash = &hash
	errored.GasEstimate = 99

	s := Reduce(errored, RetryRequested{})
	assert.Equal(t, NewSnapshot(), s)

	for _, state := range []State{StateReview, StateApproving, StateConfirming, StateProcessing, StateSuccess} {
		before := snapshotIn(state)
		assert.Equal(t, before, Reduce(before, RetryRequested{}), "from %s", state)
	}
}

func TestReduceIgnoresIllegalEvents(t *testing.T) {
	cases := []struct {
		name  string
		state State
		ev    Event
	}{
		{"gas estimate after review", StateConfirming, GasEstimated{Gas: 1}},
		{"approval required mid flight", StateProcessing, ApprovalRequired{}},
		{"approval confirmed without approving", StateReview, ApprovalConfirmed{TxHash: common.HexToHash("0x01")}},
		{"submit from approving", StateApproving, SubmitRequested{}},
		{"submitted without submit request", StateReview, Submitted{TxHash: common.HexToHash("0x02")}},
		{"confirmed without submission", StateConfirming, Confirmed{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := snapshotIn(tc.state)
			assert.Equal(t, before, Reduce(before, tc.ev))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, StateSuccess.Terminal())
	assert.True(t, StateError.Terminal())
	for _, state := range []State{StateReview, StateApproving, StateConfirming, StateProcessing} {
		assert.False(t, state.Terminal())
	}
}
