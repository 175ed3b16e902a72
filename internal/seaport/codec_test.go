package seaport

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailsmarket/domainex/internal/domain"
)

const storedParamsJSON = `{
	"offerer": "0x1111111111111111111111111111111111111111",
	"zone": "0x0000000000000000000000000000000000000000",
	"orderType": 0,
	"startTime": "1700000000",
	"endTime": "1800000000",
	"zoneHash": "0x0000000000000000000000000000000000000000000000000000000000000000",
	"salt": "12345",
	"conduitKey": "0x0000007b02230091a7ed01230072f7006a004d60a8d4e71d599b8104250f0000",
	"offer": [
		{
			"itemType": 2,
			"token": "0x2222222222222222222222222222222222222222",
			"identifierOrCriteria": "987654321",
			"startAmount": "1",
			"endAmount": "1"
		}
	],
	"consideration": [
		{
			"itemType": 0,
			"token": "0x0000000000000000000000000000000000000000",
			"identifierOrCriteria": "0",
			"startAmount": "100000000000000",
			"endAmount": "100000000000000",
			"recipient": "0x1111111111111111111111111111111111111111"
		}
	],
	"totalOriginalConsiderationItems": 1
}`

func wrappedShape(t *testing.T) []byte {
	t.Helper()
	return []byte(`{"protocol_data": {"parameters": ` + storedParamsJSON + `, "signature": "0xdeadbeef"}}`)
}

func bareShape(t *testing.T) []byte {
	t.Helper()
	return []byte(`{"parameters": ` + storedParamsJSON + `, "signature": "0xdeadbeef"}`)
}

func stringifiedShape(t *testing.T) []byte {
	t.Helper()
	encoded, err := json.Marshal(string(bareShape(t)))
	require.NoError(t, err)
	return encoded
}

func TestParseStoredOrderShapesAgree(t *testing.T) {
	fromWrapped, err := ParseStoredOrder(wrappedShape(t))
	require.NoError(t, err)
	fromBare, err := ParseStoredOrder(bareShape(t))
	require.NoError(t, err)
	fromString, err := ParseStoredOrder(stringifiedShape(t))
	require.NoError(t, err)

	assert.Equal(t, fromWrapped, fromBare)
	assert.Equal(t, fromWrapped, fromString)
}

func TestParseStoredOrderFields(t *testing.T) {
	order, err := ParseStoredOrder(wrappedShape(t))
	require.NoError(t, err)

	p := order.Parameters
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), p.Offerer)
	assert.Equal(t, uint8(0), p.OrderType)
	assert.Equal(t, "1700000000", p.StartTime.String())
	assert.Equal(t, "1800000000", p.EndTime.String())
	assert.Equal(t, common.HexToHash("0x0000007b02230091a7ed01230072f7006a004d60a8d4e71d599b8104250f0000"), p.ConduitKey)

	require.Len(t, p.Offer, 1)
	assert.Equal(t, domain.ItemERC721, p.Offer[0].ItemType)
	assert.Equal(t, "987654321", p.Offer[0].IdentifierOrCriteria.String())

	require.Len(t, p.Consideration, 1)
	assert.Equal(t, domain.ItemNative, p.Consideration[0].ItemType)
	// Amounts above 2^53 must survive bit-exact; no float64 on the path.
	assert.Equal(t, "100000000000000", p.Consideration[0].StartAmount.String())

	assert.Equal(t, "1", p.TotalOriginalConsiderationItems.String())
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, order.Signature)
}

func TestParseStoredOrderNumericStartTime(t *testing.T) {
	// startTime stored as a bare JSON number rather than a string.
	raw := []byte(`{"parameters": {
		"offerer": "0x1111111111111111111111111111111111111111",
		"startTime": 1700000000,
		"endTime": 0,
		"offer": [{"itemType": 2, "token": "0x2222222222222222222222222222222222222222", "identifierOrCriteria": "1", "startAmount": "1", "endAmount": "1"}],
		"consideration": [{"itemType": 0, "startAmount": "1000000000000000000", "endAmount": "1000000000000000000", "recipient": "0x1111111111111111111111111111111111111111"}]
	}, "signature": "0xbeef"}`)

	order, err := ParseStoredOrder(raw)
	require.NoError(t, err)
	assert.Equal(t, "1700000000", order.Parameters.StartTime.String())
	// Missing totalOriginalConsiderationItems defaults to the item count.
	assert.Equal(t, "1", order.Parameters.TotalOriginalConsiderationItems.String())
	// Missing conduitKey and zoneHash default to zero.
	assert.Equal(t, common.Hash{}, order.Parameters.ConduitKey)
	assert.Equal(t, common.Hash{}, order.Parameters.ZoneHash)
}

func TestParseStoredOrderMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
	}{
		{"empty", []byte("")},
		{"null", []byte("null")},
		{"whitespace", []byte("   ")},
		{"not json", []byte("{nope")},
		{"stringified garbage", []byte(`"{nope"`)},
		{"missing parameters", []byte(`{"signature": "0xbeef"}`)},
		{"protocol_data without parameters", []byte(`{"protocol_data": {"signature": "0xbeef"}}`)},
		{"negative amount", []byte(`{"parameters": {"offer": [{"itemType": 2, "startAmount": "-5", "endAmount": "1"}], "consideration": []}}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order, err := ParseStoredOrder(tc.raw)
			assert.Nil(t, order)
			assert.ErrorIs(t, err, domain.ErrMalformedOrder)
		})
	}
}

func TestParseStoredOrderBadSignatureBecomesEmpty(t *testing.T) {
	raw := []byte(`{"parameters": ` + storedParamsJSON + `, "signature": "zzzz"}`)
	order, err := ParseStoredOrder(raw)
	require.NoError(t, err)
	assert.Empty(t, order.Signature)
}

func TestValidateOrder(t *testing.T) {
	now := time.Unix(1_750_000_000, 0)

	base := func() *domain.Order {
		order, err := ParseStoredOrder(wrappedShape(t))
		require.NoError(t, err)
		return order
	}

	t.Run("valid", func(t *testing.T) {
		res := ValidateOrder(base(), now)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	t.Run("not started", func(t *testing.T) {
		o := base()
		o.Parameters.StartTime.SetInt64(now.Unix() + 60)
		res := ValidateOrder(o, now)
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors, "order not started yet")
	})

	t.Run("expired", func(t *testing.T) {
		o := base()
		o.Parameters.EndTime.SetInt64(now.Unix() - 60)
		res := ValidateOrder(o, now)
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors, "order expired")
	})

	t.Run("zero end time never expires", func(t *testing.T) {
		o := base()
		o.Parameters.EndTime.SetInt64(0)
		res := ValidateOrder(o, now)
		assert.True(t, res.Valid)
	})

	t.Run("accumulates all failures", func(t *testing.T) {
		o := base()
		o.Parameters.StartTime.SetInt64(now.Unix() + 60)
		o.Parameters.Offer = nil
		o.Parameters.Consideration = nil
		o.Signature = nil
		res := ValidateOrder(o, now)
		assert.False(t, res.Valid)
		assert.ElementsMatch(t, []string{
			"order not started yet",
			"order has no offer items",
			"order has no consideration items",
			"order signature missing",
		}, res.Errors)
	})
}

func TestParseBigInt(t *testing.T) {
	cases := []struct {
		name    string
		in      any
		want    string
		wantErr bool
	}{
		{"decimal string", "100000000000000", "100000000000000", false},
		{"hex string", "0x64", "100", false},
		{"json number", json.Number("42"), "42", false},
		{"integral float", float64(7), "7", false},
		{"fractional float", 1.5, "", true},
		{"negative", "-1", "", true},
		{"garbage", "abc", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseBigInt(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestParseStoredOrderErrorClassIsStable(t *testing.T) {
	// Every failure mode collapses to the single malformed-order sentinel so
	// callers branch on one error class.
	_, err := ParseStoredOrder([]byte(`[1,2,3]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedOrder))
}
