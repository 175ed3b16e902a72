// Package wallet resolves the operator's signing key and produces signed
// transactions for the fulfillment flow.
package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs transactions with a locally held private key.
type Signer struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewSigner creates a Signer from a hex-encoded private key (0x prefix
// optional).
func NewSigner(privateKeyHex string) (*Signer, error) {
	key, err := crypto.HexToECDSA(trimHexPrefix(privateKeyHex))
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid private key: %w", err)
	}
	pub, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("wallet: unexpected public key type")
	}
	return &Signer{key: key, addr: crypto.PubkeyToAddress(*pub)}, nil
}

// Address returns the account this signer controls.
func (s *Signer) Address() common.Address {
	return s.addr
}

// SignTx builds and signs a legacy transaction with EIP-155 replay
// protection.
func (s *Signer) SignTx(
	chainID *big.Int,
	nonce uint64,
	to common.Address,
	value *big.Int,
	gasLimit uint64,
	gasPrice *big.Int,
	data []byte,
) (*types.Transaction, error) {
	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.NewEIP155Signer(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("wallet: sign transaction: %w", err)
	}
	return signed, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
