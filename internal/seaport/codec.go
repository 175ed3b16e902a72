// Package seaport normalizes stored marketplace orders into the canonical
// protocol model and converts them into the call shapes the exchange contract
// accepts. Everything in this package is pure: no I/O, no clocks beyond the
// timestamps callers pass in.
package seaport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/grailsmarket/domainex/internal/domain"
)

// storedEnvelope covers both stored shapes: the order either sits under a
// protocol_data wrapper or at the top level.
type storedEnvelope struct {
	ProtocolData *storedOrder      `json:"protocol_data"`
	Parameters   *storedParameters `json:"parameters"`
	Signature    string            `json:"signature"`
}

type storedOrder struct {
	Parameters *storedParameters `json:"parameters"`
	Signature  string            `json:"signature"`
}

type storedParameters struct {
	Offerer                         string       `json:"offerer"`
	Zone                            string       `json:"zone"`
	OrderType                       jsonBig      `json:"orderType"`
	StartTime                       jsonBig      `json:"startTime"`
	EndTime                         jsonBig      `json:"endTime"`
	ZoneHash                        string       `json:"zoneHash"`
	Salt                            jsonBig      `json:"salt"`
	ConduitKey                      string       `json:"conduitKey"`
	Offer                           []storedItem `json:"offer"`
	Consideration                   []storedItem `json:"consideration"`
	TotalOriginalConsiderationItems jsonBig      `json:"totalOriginalConsiderationItems"`
}

type storedItem struct {
	ItemType             jsonBig `json:"itemType"`
	Token                string  `json:"token"`
	IdentifierOrCriteria jsonBig `json:"identifierOrCriteria"`
	StartAmount          jsonBig `json:"startAmount"`
	EndAmount            jsonBig `json:"endAmount"`
	Recipient            string  `json:"recipient"`
}

// ParseStoredOrder normalizes raw stored-order JSON into a canonical Order.
// Three input shapes are accepted: {"protocol_data": {parameters, signature}},
// {parameters, signature} directly, or a JSON-encoded string of either. It
// returns domain.ErrMalformedOrder (never panics, never any other error
// class) when the data is absent or matches neither shape; the caller is
// responsible for surfacing an "invalid offer data" message and must not
// proceed to any wallet interaction.
func ParseStoredOrder(raw []byte) (*domain.Order, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("seaport: order data absent: %w", domain.ErrMalformedOrder)
	}

	// Shape 3: a JSON-encoded string of one of the object shapes.
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("seaport: decode stringified order: %w", domain.ErrMalformedOrder)
		}
		return ParseStoredOrder([]byte(inner))
	}

	var env storedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("seaport: decode stored order: %w", domain.ErrMalformedOrder)
	}

	params := env.Parameters
	signature := env.Signature
	if env.ProtocolData != nil {
		params = env.ProtocolData.Parameters
		signature = env.ProtocolData.Signature
	}
	if params == nil {
		return nil, fmt.Errorf("seaport: order parameters missing: %w", domain.ErrMalformedOrder)
	}

	return normalize(params, signature)
}

func normalize(p *storedParameters, signature string) (*domain.Order, error) {
	offer := make([]domain.OfferItem, 0, len(p.Offer))
	for _, it := range p.Offer {
		offer = append(offer, domain.OfferItem{
			ItemType:             domain.ItemType(it.ItemType.orZero().Uint64()),
			Token:                common.HexToAddress(it.Token),
			IdentifierOrCriteria: it.IdentifierOrCriteria.orZero(),
			StartAmount:          it.StartAmount.orZero(),
			EndAmount:            it.EndAmount.orZero(),
		})
	}

	consideration := make([]domain.ConsiderationItem, 0, len(p.Consideration))
	for _, it := range p.Consideration {
		consideration = append(consideration, domain.ConsiderationItem{
			ItemType:             domain.ItemType(it.ItemType.orZero().Uint64()),
			Token:                common.HexToAddress(it.Token),
			IdentifierOrCriteria: it.IdentifierOrCriteria.orZero(),
			StartAmount:          it.StartAmount.orZero(),
			EndAmount:            it.EndAmount.orZero(),
			Recipient:            common.HexToAddress(it.Recipient),
		})
	}

	total := p.TotalOriginalConsiderationItems.val
	if total == nil {
		total = big.NewInt(int64(len(consideration)))
	}

	sig := []byte{}
	if decoded, err := hexutil.Decode(signature); err == nil {
		sig = decoded
	}

	return &domain.Order{
		Parameters: domain.OrderParameters{
			Offerer:                         common.HexToAddress(p.Offerer),
			Zone:                            common.HexToAddress(p.Zone),
			OrderType:                       uint8(p.OrderType.orZero().Uint64()),
			StartTime:                       p.StartTime.orZero(),
			EndTime:                         p.EndTime.orZero(),
			ZoneHash:                        common.HexToHash(p.ZoneHash),
			Salt:                            p.Salt.orZero(),
			ConduitKey:                      common.HexToHash(p.ConduitKey),
			Offer:                           offer,
			Consideration:                   consideration,
			TotalOriginalConsiderationItems: total,
		},
		Signature: sig,
	}, nil
}
