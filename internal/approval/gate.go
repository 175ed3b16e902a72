// Package approval reads and establishes operator approval for the conduit
// on the contract that holds a domain token.
package approval

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/grailsmarket/domainex/internal/chain"
	"github.com/grailsmarket/domainex/internal/domain"
)

// approveGasFallback is used when gas estimation for setApprovalForAll fails.
const approveGasFallback = 100_000

// TxSigner produces signed transactions for the operator account.
type TxSigner interface {
	Address() common.Address
	SignTx(chainID *big.Int, nonce uint64, to common.Address, value *big.Int, gasLimit uint64, gasPrice *big.Int, data []byte) (*types.Transaction, error)
}

// Gate checks and grants operator approval. Approval is per
// (owner, operator, contract) and idempotent: once Status reports true, no
// further transaction is ever issued for that triple.
type Gate struct {
	chain     chain.Client
	signer    TxSigner
	registrar common.Address
	wrapper   common.Address
	logger    *slog.Logger
}

// NewGate creates a Gate. registrar holds unwrapped domains (ERC-721),
// wrapper holds wrapped domains (ERC-1155).
func NewGate(c chain.Client, signer TxSigner, registrar, wrapper common.Address, logger *slog.Logger) *Gate {
	return &Gate{
		chain:     c,
		signer:    signer,
		registrar: registrar,
		wrapper:   wrapper,
		logger:    logger.With(slog.String("component", "approval")),
	}
}

func (g *Gate) collection(class domain.ContractClass) common.Address {
	if class == domain.ClassWrapped {
		return g.wrapper
	}
	return g.registrar
}

// Status reads the current operator-approval state for the signer on the
// collection matching the contract class. It is queried fresh each flow.
func (g *Gate) Status(ctx context.Context, operator common.Address, class domain.ContractClass) (domain.ApprovalStatus, error) {
	data, err := chain.PackIsApprovedForAll(g.signer.Address(), operator)
	if err != nil {
		return domain.ApprovalStatus{}, err
	}
	out, err := g.chain.ReadContract(ctx, g.collection(class), data)
	if err != nil {
		return domain.ApprovalStatus{}, fmt.Errorf("approval: read status: %w", err)
	}
	approved, err := chain.UnpackIsApprovedForAll(out)
	if err != nil {
		return domain.ApprovalStatus{}, err
	}
	return domain.ApprovalStatus{Class: class, Approved: approved}, nil
}

// Approve submits setApprovalForAll(operator, true), waits for one
// confirmation, and re-reads the state to confirm it took effect before the
// flow proceeds.
func (g *Gate) Approve(ctx context.Context, operator common.Address, class domain.ContractClass) (common.Hash, error) {
	collection := g.collection(class)
	data, err := chain.PackSetApprovalForAll(operator, true)
	if err != nil {
		return common.Hash{}, err
	}

	owner := g.signer.Address()
	gasLimit := uint64(approveGasFallback)
	if est, err := g.chain.EstimateGas(ctx, chain.CallMsg{From: owner, To: collection, Data: data}); err == nil {
		gasLimit = est * 120 / 100
	}

	gasPrice, err := g.chain.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("approval: gas price: %w", err)
	}
	nonce, err := g.chain.PendingNonce(ctx, owner)
	if err != nil {
		return common.Hash{}, fmt.Errorf("approval: nonce: %w", err)
	}
	chainID, err := g.chain.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("approval: chain id: %w", err)
	}

	tx, err := g.signer.SignTx(chainID, nonce, collection, new(big.Int), gasLimit, gasPrice, data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("approval: sign: %w", err)
	}
	if err := g.chain.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, fmt.Errorf("approval: submit: %w", err)
	}

	g.logger.Info("approval submitted",
		slog.String("collection", collection.Hex()),
		slog.String("operator", operator.Hex()),
		slog.String("tx", tx.Hash().Hex()),
	)

	receipt, err := g.chain.WaitForReceipt(ctx, tx.Hash(), 1)
	if err != nil {
		return tx.Hash(), fmt.Errorf("approval: confirm: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash(), fmt.Errorf("approval tx %s: %w", tx.Hash().Hex(), domain.ErrApprovalNotGranted)
	}

	// Re-read to confirm the grant actually landed.
	status, err := g.Status(ctx, operator, class)
	if err != nil {
		return tx.Hash(), err
	}
	if !status.Approved {
		return tx.Hash(), fmt.Errorf("approval: post-confirm re-read: %w", domain.ErrApprovalNotGranted)
	}
	return tx.Hash(), nil
}

// Ensure is the one-shot form: read, approve when missing, and return the
// approval transaction hash if one was needed.
func (g *Gate) Ensure(ctx context.Context, operator common.Address, class domain.ContractClass) (*common.Hash, error) {
	status, err := g.Status(ctx, operator, class)
	if err != nil {
		return nil, err
	}
	if status.Approved {
		return nil, nil
	}
	hash, err := g.Approve(ctx, operator, class)
	if err != nil {
		return nil, err
	}
	return &hash, nil
}
