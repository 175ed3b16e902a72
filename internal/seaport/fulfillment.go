package seaport

import (
	"fmt"
	"math/big"

	"github.com/grailsmarket/domainex/internal/domain"
)

// BuildAdvancedOrder wraps a canonical order for fulfillAdvancedOrder. The
// fill fraction is always 1/1 and extra data is always empty: this system
// never performs partial fills.
func BuildAdvancedOrder(o *domain.Order) AdvancedOrder {
	return AdvancedOrder{
		Parameters:  toWireParameters(o.Parameters),
		Numerator:   big.NewInt(1),
		Denominator: big.NewInt(1),
		Signature:   o.Signature,
		ExtraData:   []byte{},
	}
}

// BuildBasicOrderParameters flattens a single-offer order into the
// gas-optimized basic encoding. Classification follows the
// (offer, primary consideration) item-type pair; orders with multiple offer
// items, an NFT-typed primary consideration, or an unsupported pair yield
// domain.ErrUnsupportedBasicOrder and must go through the advanced path.
//
// When the payment is ERC-20 the fulfiller's conduit key must equal the
// offerer's: both sides need the same token-movement authorization for the
// ERC-20 leg. Native payments need no ERC-20 movement from the fulfiller, so
// the fulfiller key stays zero.
func BuildBasicOrderParameters(o *domain.Order) (BasicOrderParameters, error) {
	p := o.Parameters
	if len(p.Offer) != 1 {
		return BasicOrderParameters{}, fmt.Errorf("seaport: %d offer items: %w", len(p.Offer), domain.ErrUnsupportedBasicOrder)
	}
	if len(p.Consideration) == 0 {
		return BasicOrderParameters{}, fmt.Errorf("seaport: no consideration: %w", domain.ErrUnsupportedBasicOrder)
	}

	offer := p.Offer[0]
	primary := p.Consideration[0]

	orderType, err := classifyBasicOrder(offer.ItemType, primary.ItemType)
	if err != nil {
		return BasicOrderParameters{}, err
	}

	fulfillerConduitKey := [32]byte{}
	if primary.ItemType == domain.ItemERC20 {
		fulfillerConduitKey = p.ConduitKey
	}

	// Index 0 is always the seller's proceeds; everything after it is a fee
	// recipient.
	extras := make([]AdditionalRecipient, 0, len(p.Consideration)-1)
	for _, item := range p.Consideration[1:] {
		extras = append(extras, AdditionalRecipient{
			Amount:    item.StartAmount,
			Recipient: item.Recipient,
		})
	}

	return BasicOrderParameters{
		ConsiderationToken:                primary.Token,
		ConsiderationIdentifier:           primary.IdentifierOrCriteria,
		ConsiderationAmount:               primary.StartAmount,
		Offerer:                           p.Offerer,
		Zone:                              p.Zone,
		OfferToken:                        offer.Token,
		OfferIdentifier:                   offer.IdentifierOrCriteria,
		OfferAmount:                       offer.StartAmount,
		BasicOrderType:                    orderType,
		StartTime:                         p.StartTime,
		EndTime:                           p.EndTime,
		ZoneHash:                          p.ZoneHash,
		Salt:                              p.Salt,
		OffererConduitKey:                 p.ConduitKey,
		FulfillerConduitKey:               fulfillerConduitKey,
		TotalOriginalAdditionalRecipients: big.NewInt(int64(len(extras))),
		AdditionalRecipients:              extras,
		Signature:                         o.Signature,
	}, nil
}

func classifyBasicOrder(offer, consideration domain.ItemType) (uint8, error) {
	switch {
	case offer == domain.ItemERC721 && consideration == domain.ItemNative:
		return BasicERC721ForNative, nil
	case offer == domain.ItemERC1155 && consideration == domain.ItemNative:
		return BasicERC1155ForNative, nil
	case offer == domain.ItemERC721 && consideration == domain.ItemERC20:
		return BasicERC721ForERC20, nil
	case offer == domain.ItemERC1155 && consideration == domain.ItemERC20:
		return BasicERC1155ForERC20, nil
	default:
		return 0, fmt.Errorf("seaport: offer %d / consideration %d: %w",
			offer, consideration, domain.ErrUnsupportedBasicOrder)
	}
}

// BuildFulfillments pairs offer and consideration items index-for-index
// within a single order, for match-style fulfillment. One fulfillment is
// produced per index valid on both sides.
func BuildFulfillments(offerCount, considerationCount int) []Fulfillment {
	n := offerCount
	if considerationCount < n {
		n = considerationCount
	}
	out := make([]Fulfillment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Fulfillment{
			OfferComponents: []FulfillmentComponent{
				{OrderIndex: big.NewInt(0), ItemIndex: big.NewInt(int64(i))},
			},
			ConsiderationComponents: []FulfillmentComponent{
				{OrderIndex: big.NewInt(0), ItemIndex: big.NewInt(int64(i))},
			},
		})
	}
	return out
}

// ToWireOrder converts a canonical order for matchOrders.
func ToWireOrder(o *domain.Order) WireOrder {
	return WireOrder{
		Parameters: toWireParameters(o.Parameters),
		Signature:  o.Signature,
	}
}

func toWireParameters(p domain.OrderParameters) WireOrderParameters {
	offer := make([]WireOfferItem, 0, len(p.Offer))
	for _, it := range p.Offer {
		offer = append(offer, WireOfferItem{
			ItemType:             uint8(it.ItemType),
			Token:                it.Token,
			IdentifierOrCriteria: it.IdentifierOrCriteria,
			StartAmount:          it.StartAmount,
			EndAmount:            it.EndAmount,
		})
	}
	consideration := make([]WireConsiderationItem, 0, len(p.Consideration))
	for _, it := range p.Consideration {
		consideration = append(consideration, WireConsiderationItem{
			ItemType:             uint8(it.ItemType),
			Token:                it.Token,
			IdentifierOrCriteria: it.IdentifierOrCriteria,
			StartAmount:          it.StartAmount,
			EndAmount:            it.EndAmount,
			Recipient:            it.Recipient,
		})
	}
	return WireOrderParameters{
		Offerer:                         p.Offerer,
		Zone:                            p.Zone,
		Offer:                           offer,
		Consideration:                   consideration,
		OrderType:                       p.OrderType,
		StartTime:                       p.StartTime,
		EndTime:                         p.EndTime,
		ZoneHash:                        p.ZoneHash,
		Salt:                            p.Salt,
		ConduitKey:                      p.ConduitKey,
		TotalOriginalConsiderationItems: p.TotalOriginalConsiderationItems,
	}
}
