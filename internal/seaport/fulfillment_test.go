package seaport

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailsmarket/domainex/internal/domain"
)

func singleOfferOrder(offerType, considerationType domain.ItemType) *domain.Order {
	return &domain.Order{
		Parameters: domain.OrderParameters{
			Offerer:    common.HexToAddress("0x1111111111111111111111111111111111111111"),
			StartTime:  big.NewInt(1_700_000_000),
			EndTime:    big.NewInt(0),
			Salt:       big.NewInt(1),
			ConduitKey: common.HexToHash("0x0000007b02230091a7ed01230072f7006a004d60a8d4e71d599b8104250f0000"),
			Offer: []domain.OfferItem{
				{
					ItemType:             offerType,
					Token:                common.HexToAddress("0x2222222222222222222222222222222222222222"),
					IdentifierOrCriteria: big.NewInt(77),
					StartAmount:          big.NewInt(1),
					EndAmount:            big.NewInt(1),
				},
			},
			Consideration: []domain.ConsiderationItem{
				{
					ItemType:    considerationType,
					Token:       common.HexToAddress("0x3333333333333333333333333333333333333333"),
					StartAmount: big.NewInt(1000),
					EndAmount:   big.NewInt(1000),
					Recipient:   common.HexToAddress("0x1111111111111111111111111111111111111111"),
				},
				{
					ItemType:    considerationType,
					Token:       common.HexToAddress("0x3333333333333333333333333333333333333333"),
					StartAmount: big.NewInt(25),
					EndAmount:   big.NewInt(25),
					Recipient:   common.HexToAddress("0x4444444444444444444444444444444444444444"),
				},
			},
			TotalOriginalConsiderationItems: big.NewInt(2),
		},
		Signature: []byte{0x01, 0x02},
	}
}

func TestClassifyBasicOrder(t *testing.T) {
	cases := []struct {
		name          string
		offer         domain.ItemType
		consideration domain.ItemType
		want          uint8
		wantErr       bool
	}{
		{"erc721 for native", domain.ItemERC721, domain.ItemNative, BasicERC721ForNative, false},
		{"erc1155 for native", domain.ItemERC1155, domain.ItemNative, BasicERC1155ForNative, false},
		{"erc721 for erc20", domain.ItemERC721, domain.ItemERC20, BasicERC721ForERC20, false},
		{"erc1155 for erc20", domain.ItemERC1155, domain.ItemERC20, BasicERC1155ForERC20, false},
		{"erc20 offer", domain.ItemERC20, domain.ItemERC721, 0, true},
		{"nft consideration", domain.ItemERC721, domain.ItemERC721, 0, true},
		{"criteria offer", domain.ItemERC721WithCriteria, domain.ItemNative, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			basic, err := BuildBasicOrderParameters(singleOfferOrder(tc.offer, tc.consideration))
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsupportedBasicOrder)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, basic.BasicOrderType)
		})
	}
}

func TestBuildBasicOrderParametersLayout(t *testing.T) {
	o := singleOfferOrder(domain.ItemERC721, domain.ItemNative)
	basic, err := BuildBasicOrderParameters(o)
	require.NoError(t, err)

	assert.Equal(t, o.Parameters.Consideration[0].Token, basic.ConsiderationToken)
	assert.Equal(t, "1000", basic.ConsiderationAmount.String())
	assert.Equal(t, o.Parameters.Offer[0].Token, basic.OfferToken)
	assert.Equal(t, "77", basic.OfferIdentifier.String())
	assert.Equal(t, o.Parameters.Offerer, basic.Offerer)
	assert.Equal(t, o.Signature, basic.Signature)

	// Consideration item 0 is the seller's proceeds; the rest flatten into
	// additional recipients.
	require.Len(t, basic.AdditionalRecipients, 1)
	assert.Equal(t, "25", basic.AdditionalRecipients[0].Amount.String())
	assert.Equal(t, common.HexToAddress("0x4444444444444444444444444444444444444444"), basic.AdditionalRecipients[0].Recipient)
	assert.Equal(t, "1", basic.TotalOriginalAdditionalRecipients.String())
}

func TestBuildBasicOrderParametersConduitRule(t *testing.T) {
	t.Run("native payment keeps zero fulfiller key", func(t *testing.T) {
		basic, err := BuildBasicOrderParameters(singleOfferOrder(domain.ItemERC721, domain.ItemNative))
		require.NoError(t, err)
		assert.Equal(t, [32]byte{}, basic.FulfillerConduitKey)
		assert.NotEqual(t, [32]byte{}, basic.OffererConduitKey)
	})

	t.Run("erc20 payment copies the offerer key", func(t *testing.T) {
		basic, err := BuildBasicOrderParameters(singleOfferOrder(domain.ItemERC721, domain.ItemERC20))
		require.NoError(t, err)
		assert.Equal(t, basic.OffererConduitKey, basic.FulfillerConduitKey)
	})
}

func TestBuildBasicOrderParametersRejectsMultiOffer(t *testing.T) {
	o := singleOfferOrder(domain.ItemERC721, domain.ItemNative)
	o.Parameters.Offer = append(o.Parameters.Offer, o.Parameters.Offer[0])
	_, err := BuildBasicOrderParameters(o)
	assert.ErrorIs(t, err, domain.ErrUnsupportedBasicOrder)

	o.Parameters.Offer = o.Parameters.Offer[:1]
	o.Parameters.Consideration = nil
	_, err = BuildBasicOrderParameters(o)
	assert.ErrorIs(t, err, domain.ErrUnsupportedBasicOrder)
}

func TestBuildAdvancedOrderIsAlwaysFull(t *testing.T) {
	o := singleOfferOrder(domain.ItemERC721, domain.ItemNative)
	adv := BuildAdvancedOrder(o)

	assert.Equal(t, "1", adv.Numerator.String())
	assert.Equal(t, "1", adv.Denominator.String())
	assert.Equal(t, o.Signature, adv.Signature)
	assert.NotNil(t, adv.ExtraData)
	assert.Empty(t, adv.ExtraData)
	assert.Equal(t, o.Parameters.Offerer, adv.Parameters.Offerer)
	require.Len(t, adv.Parameters.Consideration, 2)
}

func TestBuildFulfillmentsPairsByIndex(t *testing.T) {
	fulfillments := BuildFulfillments(3, 2)
	require.Len(t, fulfillments, 2)

	for i, f := range fulfillments {
		require.Len(t, f.OfferComponents, 1)
		require.Len(t, f.ConsiderationComponents, 1)
		assert.Equal(t, int64(0), f.OfferComponents[0].OrderIndex.Int64())
		assert.Equal(t, int64(i), f.OfferComponents[0].ItemIndex.Int64())
		assert.Equal(t, int64(0), f.ConsiderationComponents[0].OrderIndex.Int64())
		assert.Equal(t, int64(i), f.ConsiderationComponents[0].ItemIndex.Int64())
	}

	assert.Empty(t, BuildFulfillments(0, 5))
}
