package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"

	"github.com/grailsmarket/domainex/internal/chain"
	"github.com/grailsmarket/domainex/internal/domain"
	"github.com/grailsmarket/domainex/internal/seaport"
)

const (
	// fallbackGasLimit is used when gas estimation fails; estimation failure
	// must not block the flow.
	fallbackGasLimit = 500_000
	// gasBufferPercent is the safety margin applied to successful estimates.
	gasBufferPercent = 20
)

// TxSigner is the wallet boundary: it holds the fulfiller's key and signs on
// request.
type TxSigner interface {
	Address() common.Address
	SignTx(chainID *big.Int, nonce uint64, to common.Address, value *big.Int, gasLimit uint64, gasPrice *big.Int, data []byte) (*types.Transaction, error)
}

// Gate is the operator-approval boundary.
type Gate interface {
	Status(ctx context.Context, operator common.Address, class domain.ContractClass) (domain.ApprovalStatus, error)
	Approve(ctx context.Context, operator common.Address, class domain.ContractClass) (common.Hash, error)
}

// Marketplace marks backend records settled. It is called exactly once per
// flow, strictly after receipt success, never before.
type Marketplace interface {
	MarkOfferAccepted(ctx context.Context, offerID string) error
	MarkListingCancelled(ctx context.Context, listingID string) error
}

// Runner drives one fulfillment flow. It owns its Snapshot exclusively; a
// second Run while the flow is outside review is rejected with ErrFlowBusy
// rather than racing the in-flight attempt. Once a transaction is broadcast
// it cannot be retracted: cancelling the context abandons the wait, not the
// transaction.
type Runner struct {
	chain       chain.Client
	signer      TxSigner
	gate        Gate
	market      Marketplace
	invalidator domain.QueryInvalidator
	marketplace common.Address
	conduits    map[common.Hash]common.Address
	logger      *slog.Logger
	now         func() time.Time

	mu      sync.Mutex
	running bool
	snap    Snapshot
	req     domain.FulfillRequest
}

// NewRunner wires a Runner. marketplace is the exchange contract address;
// conduits maps conduit keys to the conduit contracts that move tokens for
// them.
func NewRunner(
	c chain.Client,
	signer TxSigner,
	gate Gate,
	market Marketplace,
	invalidator domain.QueryInvalidator,
	marketplace common.Address,
	conduits map[common.Hash]common.Address,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		chain:       c,
		signer:      signer,
		gate:        gate,
		market:      market,
		invalidator: invalidator,
		marketplace: marketplace,
		conduits:    conduits,
		logger:      logger.With(slog.String("component", "flow")),
		now:         time.Now,
		snap:        NewSnapshot(),
	}
}

// SetNow overrides the validation clock. Must be called before Run.
func (r *Runner) SetNow(now func() time.Time) {
	r.now = now
}

// Snapshot returns the current flow state.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Run executes the full fulfillment sequence for req. It returns the terminal
// snapshot and, when the flow failed, the causal error.
func (r *Runner) Run(ctx context.Context, req domain.FulfillRequest) (Snapshot, error) {
	r.mu.Lock()
	if r.running || r.snap.State != StateReview {
		snap := r.snap
		r.mu.Unlock()
		return snap, domain.ErrFlowBusy
	}
	if req.FlowID == "" {
		req.FlowID = uuid.New().String()
	}
	r.running = true
	r.req = req
	r.mu.Unlock()
	defer r.clearRunning()

	return r.execute(ctx)
}

// Retry is the explicit user-triggered error → review edge. It restarts the
// full sequence: fresh decode, fresh gas estimate, fresh simulation. Nothing
// retries automatically; simulation outcomes are point-in-time and a blind
// resubmit risks guaranteed-fail gas waste.
func (r *Runner) Retry(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()
	if r.running {
		snap := r.snap
		r.mu.Unlock()
		return snap, domain.ErrFlowBusy
	}
	if r.snap.State != StateError {
		snap := r.snap
		r.mu.Unlock()
		return snap, domain.ErrRetryNotAllowed
	}
	r.snap = Reduce(r.snap, RetryRequested{})
	r.running = true
	r.mu.Unlock()
	defer r.clearRunning()

	return r.execute(ctx)
}

func (r *Runner) clearRunning() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

func (r *Runner) execute(ctx context.Context) (Snapshot, error) {
	req := r.req
	log := r.logger.With(
		slog.String("flow_id", req.FlowID),
		slog.String("kind", string(req.Kind)),
		slog.String("domain", req.Asset.Name),
	)

	// 1. Decode and validate. Failures here surface before any wallet
	// interaction.
	order, err := seaport.ParseStoredOrder(req.OrderData)
	if err != nil {
		return r.fail(log, "invalid offer data", err)
	}
	if res := seaport.ValidateOrder(order, r.now()); !res.Valid {
		msg := strings.Join(res.Errors, "; ")
		return r.fail(log, msg, fmt.Errorf("flow: order validation: %s", msg))
	}

	// 2. Encode the fulfillment call: basic when the order shape allows it,
	// advanced otherwise.
	callData, callValue, err := r.buildCall(order)
	if err != nil {
		return r.fail(log, "cannot encode order for fulfillment", err)
	}
	msg := chain.CallMsg{From: r.signer.Address(), To: r.marketplace, Value: callValue, Data: callData}

	// 3. Gas estimate with the safety buffer; a failed estimate falls back
	// to a conservative constant instead of blocking the flow.
	gasLimit := uint64(fallbackGasLimit)
	if est, estErr := r.chain.EstimateGas(ctx, msg); estErr == nil {
		gasLimit = est + est*gasBufferPercent/100
	} else {
		log.Warn("gas estimation failed, using fallback",
			slog.Uint64("fallback", fallbackGasLimit),
			slog.String("error", estErr.Error()),
		)
	}
	gasPrice, err := r.chain.SuggestGasPrice(ctx)
	if err != nil {
		return r.fail(log, "cannot read gas price", err)
	}
	r.dispatch(log, GasEstimated{Gas: gasLimit, Price: gasPrice})

	// 4. Operator approval, needed only when this flow moves the signer's
	// domain token. After the approval confirms, the flow continues without
	// a second user action.
	if req.Kind == domain.KindAcceptOffer {
		conduit, err := r.conduitFor(order.Parameters.ConduitKey)
		if err != nil {
			return r.fail(log, "unknown conduit key", err)
		}
		status, err := r.gate.Status(ctx, conduit, req.Asset.Class)
		if err != nil {
			return r.fail(log, "cannot read approval status", err)
		}
		if !status.Approved {
			r.dispatch(log, ApprovalRequired{})
			hash, err := r.gate.Approve(ctx, conduit, req.Asset.Class)
			if err != nil {
				return r.fail(log, "approval failed", err)
			}
			r.dispatch(log, ApprovalConfirmed{TxHash: hash})
		}
	}

	// 5. Always simulate before broadcasting, with identical arguments. A
	// predicted revert terminates the flow; the transaction is never
	// submitted.
	simMsg := msg
	simMsg.Gas = gasLimit
	if _, simErr := r.chain.SimulateCall(ctx, simMsg); simErr != nil {
		reason := revertReason(simErr)
		return r.fail(log, "transaction would revert: "+reason,
			fmt.Errorf("%w: %s", domain.ErrSimulationReverted, reason))
	}

	// 6. Sign and broadcast.
	r.dispatch(log, SubmitRequested{})
	chainID, err := r.chain.ChainID(ctx)
	if err != nil {
		return r.fail(log, "cannot read chain id", err)
	}
	nonce, err := r.chain.PendingNonce(ctx, r.signer.Address())
	if err != nil {
		return r.fail(log, "cannot read account nonce", err)
	}
	tx, err := r.signer.SignTx(chainID, nonce, r.marketplace, callValue, gasLimit, gasPrice, callData)
	if err != nil {
		return r.fail(log, "wallet rejected the transaction", err)
	}
	if err := r.chain.SendTransaction(ctx, tx); err != nil {
		return r.fail(log, "transaction submission failed", err)
	}
	r.dispatch(log, Submitted{TxHash: tx.Hash()})

	// 7. Exactly one confirmation.
	receipt, err := r.chain.WaitForReceipt(ctx, tx.Hash(), 1)
	if err != nil {
		if errors.Is(err, domain.ErrReceiptTimeout) {
			return r.fail(log, "confirmation timed out; the transaction may still be mined", err)
		}
		return r.fail(log, "confirmation failed", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return r.fail(log, "transaction reverted on chain",
			fmt.Errorf("flow: tx %s: %w", tx.Hash().Hex(), domain.ErrReceiptFailed))
	}

	snap := r.dispatch(log, Confirmed{})
	log.Info("fulfillment confirmed", slog.String("tx", tx.Hash().Hex()))

	r.settle(ctx, log)
	return snap, nil
}

// buildCall encodes the fulfillment call data and the native value to attach.
func (r *Runner) buildCall(order *domain.Order) ([]byte, *big.Int, error) {
	value := new(big.Int)
	if seaport.UsesNativeToken(order) {
		value = seaport.TotalPayment(order)
	}

	basic, err := seaport.BuildBasicOrderParameters(order)
	if err == nil {
		data, packErr := chain.PackFulfillBasicOrder(basic)
		return data, value, packErr
	}
	if !errors.Is(err, domain.ErrUnsupportedBasicOrder) {
		return nil, nil, err
	}

	adv := seaport.BuildAdvancedOrder(order)
	// Same conduit rule as the basic path: an ERC-20 payment needs the
	// fulfiller on the offerer's conduit, native payments do not.
	key := [32]byte{}
	if !seaport.UsesNativeToken(order) {
		key = order.Parameters.ConduitKey
	}
	data, err := chain.PackFulfillAdvancedOrder(adv, nil, key, r.signer.Address())
	return data, value, err
}

// conduitFor resolves a conduit key to the contract that moves tokens for it.
// The zero key means no conduit: the exchange contract moves tokens directly.
func (r *Runner) conduitFor(key common.Hash) (common.Address, error) {
	if addr, ok := r.conduits[key]; ok {
		return addr, nil
	}
	if key == (common.Hash{}) {
		return r.marketplace, nil
	}
	return common.Address{}, fmt.Errorf("flow: no conduit configured for key %s", key.Hex())
}

// settle notifies the backend record and drops stale cached queries, exactly
// once, strictly after receipt success. Failures here are logged and do not
// change the flow state: the chain result is already final.
func (r *Runner) settle(ctx context.Context, log *slog.Logger) {
	req := r.req

	var err error
	switch req.Kind {
	case domain.KindAcceptOffer:
		err = r.market.MarkOfferAccepted(ctx, req.RecordID)
	case domain.KindPurchaseListing:
		err = r.market.MarkListingCancelled(ctx, req.RecordID)
	}
	if err != nil {
		log.Warn("backend settlement mark failed",
			slog.String("record_id", req.RecordID),
			slog.String("error", err.Error()),
		)
	}

	if err := r.invalidator.InvalidateAfterFulfillment(ctx, req.Asset.Name, req.Asset.Owner); err != nil {
		log.Warn("cache invalidation failed", slog.String("error", err.Error()))
	}
}

func (r *Runner) dispatch(log *slog.Logger, ev Event) Snapshot {
	r.mu.Lock()
	prev := r.snap.State
	r.snap = Reduce(r.snap, ev)
	next := r.snap
	r.mu.Unlock()

	if next.State != prev {
		log.Debug("flow transition",
			slog.String("from", string(prev)),
			slog.String("to", string(next.State)),
		)
	}
	return next
}

func (r *Runner) fail(log *slog.Logger, msg string, err error) (Snapshot, error) {
	snap := r.dispatch(log, Failed{Message: msg})
	log.Error("fulfillment flow failed",
		slog.String("message", msg),
		slog.String("error", err.Error()),
	)
	return snap, err
}

// revertReason trims a simulation error down to the node's short revert
// reason for display.
func revertReason(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, "execution reverted"); i >= 0 {
		msg = msg[i:]
	}
	if len(msg) > 140 {
		msg = msg[:140]
	}
	return msg
}
