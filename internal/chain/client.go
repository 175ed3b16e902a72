// Package chain is the read/write boundary to the blockchain. The rest of the
// system depends on the Client interface, so flows are testable with fakes;
// EthBackend is the production implementation over an ethclient connection.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/grailsmarket/domainex/internal/domain"
)

// CallMsg is the subset of a transaction used for gas estimation and
// simulation. Simulation reuses the exact message later submitted, so a
// revert predicted here is a revert avoided on chain.
type CallMsg struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
	Gas   uint64
}

// Client exposes the chain operations the fulfillment flow needs.
type Client interface {
	EstimateGas(ctx context.Context, msg CallMsg) (uint64, error)
	SimulateCall(ctx context.Context, msg CallMsg) ([]byte, error)
	ReadContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonce(ctx context.Context, account common.Address) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	WaitForReceipt(ctx context.Context, hash common.Hash, confirmations uint64) (*types.Receipt, error)
}

// EthBackend implements Client over a JSON-RPC connection.
type EthBackend struct {
	ec             *ethclient.Client
	receiptTimeout time.Duration
	pollInterval   time.Duration
}

// Dial connects to the given RPC endpoint. receiptTimeout bounds every
// WaitForReceipt call.
func Dial(rpcURL string, receiptTimeout time.Duration) (*EthBackend, error) {
	ec, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", rpcURL, err)
	}
	return &EthBackend{
		ec:             ec,
		receiptTimeout: receiptTimeout,
		pollInterval:   2 * time.Second,
	}, nil
}

func (b *EthBackend) EstimateGas(ctx context.Context, msg CallMsg) (uint64, error) {
	gas, err := b.ec.EstimateGas(ctx, toEthereumMsg(msg))
	if err != nil {
		return 0, fmt.Errorf("chain: estimate gas: %w", err)
	}
	return gas, nil
}

// SimulateCall performs a read-only dry run of the message against the latest
// state. A non-nil error means the call would revert.
func (b *EthBackend) SimulateCall(ctx context.Context, msg CallMsg) ([]byte, error) {
	out, err := b.ec.CallContract(ctx, toEthereumMsg(msg), nil)
	if err != nil {
		return nil, fmt.Errorf("chain: simulate call: %w", err)
	}
	return out, nil
}

func (b *EthBackend) ReadContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := b.ec.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: read contract %s: %w", to.Hex(), err)
	}
	return out, nil
}

func (b *EthBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := b.ec.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain: suggest gas price: %w", err)
	}
	return price, nil
}

func (b *EthBackend) PendingNonce(ctx context.Context, account common.Address) (uint64, error) {
	nonce, err := b.ec.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("chain: pending nonce: %w", err)
	}
	return nonce, nil
}

func (b *EthBackend) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := b.ec.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain: chain id: %w", err)
	}
	return id, nil
}

func (b *EthBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := b.ec.SendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("chain: send transaction: %w", err)
	}
	return nil
}

// WaitForReceipt polls for the transaction receipt and then for the requested
// confirmation depth. The wait is bounded by the backend's receipt timeout;
// hitting the bound yields domain.ErrReceiptTimeout; the transaction may
// still be mined afterwards, it simply can no longer be observed by this
// flow.
func (b *EthBackend) WaitForReceipt(ctx context.Context, hash common.Hash, confirmations uint64) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, b.receiptTimeout)
	defer cancel()

	var receipt *types.Receipt
	for receipt == nil {
		r, err := b.ec.TransactionReceipt(waitCtx, hash)
		if err == nil {
			receipt = r
			break
		}
		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("chain: receipt for %s: %w", hash.Hex(), domain.ErrReceiptTimeout)
		case <-time.After(b.pollInterval):
		}
	}

	for confirmations > 1 {
		head, err := b.ec.BlockNumber(waitCtx)
		if err == nil && head >= receipt.BlockNumber.Uint64()+confirmations-1 {
			return receipt, nil
		}
		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("chain: confirmations for %s: %w", hash.Hex(), domain.ErrReceiptTimeout)
		case <-time.After(b.pollInterval):
		}
	}

	return receipt, nil
}

// Close releases the underlying RPC connection.
func (b *EthBackend) Close() {
	b.ec.Close()
}

func toEthereumMsg(msg CallMsg) ethereum.CallMsg {
	to := msg.To
	return ethereum.CallMsg{
		From:  msg.From,
		To:    &to,
		Value: msg.Value,
		Data:  msg.Data,
		Gas:   msg.Gas,
	}
}

var _ Client = (*EthBackend)(nil)
