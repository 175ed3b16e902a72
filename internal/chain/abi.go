package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/grailsmarket/domainex/internal/seaport"
)

// marketplaceABIJSON covers the three fulfillment entrypoints of the exchange
// contract. Argument order inside the tuples is bit-exact with the deployed
// contract; the structs in internal/seaport mirror it.
const marketplaceABIJSON = `[
  {
    "type": "function",
    "name": "fulfillBasicOrder",
    "stateMutability": "payable",
    "inputs": [
      {
        "name": "parameters",
        "type": "tuple",
        "components": [
          {"name": "considerationToken", "type": "address"},
          {"name": "considerationIdentifier", "type": "uint256"},
          {"name": "considerationAmount", "type": "uint256"},
          {"name": "offerer", "type": "address"},
          {"name": "zone", "type": "address"},
          {"name": "offerToken", "type": "address"},
          {"name": "offerIdentifier", "type": "uint256"},
          {"name": "offerAmount", "type": "uint256"},
          {"name": "basicOrderType", "type": "uint8"},
          {"name": "startTime", "type": "uint256"},
          {"name": "endTime", "type": "uint256"},
          {"name": "zoneHash", "type": "bytes32"},
          {"name": "salt", "type": "uint256"},
          {"name": "offererConduitKey", "type": "bytes32"},
          {"name": "fulfillerConduitKey", "type": "bytes32"},
          {"name": "totalOriginalAdditionalRecipients", "type": "uint256"},
          {"name": "additionalRecipients", "type": "tuple[]", "components": [
            {"name": "amount", "type": "uint256"},
            {"name": "recipient", "type": "address"}
          ]},
          {"name": "signature", "type": "bytes"}
        ]
      }
    ],
    "outputs": [{"name": "fulfilled", "type": "bool"}]
  },
  {
    "type": "function",
    "name": "fulfillAdvancedOrder",
    "stateMutability": "payable",
    "inputs": [
      {
        "name": "advancedOrder",
        "type": "tuple",
        "components": [
          {"name": "parameters", "type": "tuple", "components": [
            {"name": "offerer", "type": "address"},
            {"name": "zone", "type": "address"},
            {"name": "offer", "type": "tuple[]", "components": [
              {"name": "itemType", "type": "uint8"},
              {"name": "token", "type": "address"},
              {"name": "identifierOrCriteria", "type": "uint256"},
              {"name": "startAmount", "type": "uint256"},
              {"name": "endAmount", "type": "uint256"}
            ]},
            {"name": "consideration", "type": "tuple[]", "components": [
              {"name": "itemType", "type": "uint8"},
              {"name": "token", "type": "address"},
              {"name": "identifierOrCriteria", "type": "uint256"},
              {"name": "startAmount", "type": "uint256"},
              {"name": "endAmount", "type": "uint256"},
              {"name": "recipient", "type": "address"}
            ]},
            {"name": "orderType", "type": "uint8"},
            {"name": "startTime", "type": "uint256"},
            {"name": "endTime", "type": "uint256"},
            {"name": "zoneHash", "type": "bytes32"},
            {"name": "salt", "type": "uint256"},
            {"name": "conduitKey", "type": "bytes32"},
            {"name": "totalOriginalConsiderationItems", "type": "uint256"}
          ]},
          {"name": "numerator", "type": "uint120"},
          {"name": "denominator", "type": "uint120"},
          {"name": "signature", "type": "bytes"},
          {"name": "extraData", "type": "bytes"}
        ]
      },
      {
        "name": "criteriaResolvers",
        "type": "tuple[]",
        "components": [
          {"name": "orderIndex", "type": "uint256"},
          {"name": "side", "type": "uint8"},
          {"name": "index", "type": "uint256"},
          {"name": "identifier", "type": "uint256"},
          {"name": "criteriaProof", "type": "bytes32[]"}
        ]
      },
      {"name": "fulfillerConduitKey", "type": "bytes32"},
      {"name": "recipient", "type": "address"}
    ],
    "outputs": [{"name": "fulfilled", "type": "bool"}]
  },
  {
    "type": "function",
    "name": "matchOrders",
    "stateMutability": "payable",
    "inputs": [
      {
        "name": "orders",
        "type": "tuple[]",
        "components": [
          {"name": "parameters", "type": "tuple", "components": [
            {"name": "offerer", "type": "address"},
            {"name": "zone", "type": "address"},
            {"name": "offer", "type": "tuple[]", "components": [
              {"name": "itemType", "type": "uint8"},
              {"name": "token", "type": "address"},
              {"name": "identifierOrCriteria", "type": "uint256"},
              {"name": "startAmount", "type": "uint256"},
              {"name": "endAmount", "type": "uint256"}
            ]},
            {"name": "consideration", "type": "tuple[]", "components": [
              {"name": "itemType", "type": "uint8"},
              {"name": "token", "type": "address"},
              {"name": "identifierOrCriteria", "type": "uint256"},
              {"name": "startAmount", "type": "uint256"},
              {"name": "endAmount", "type": "uint256"},
              {"name": "recipient", "type": "address"}
            ]},
            {"name": "orderType", "type": "uint8"},
            {"name": "startTime", "type": "uint256"},
            {"name": "endTime", "type": "uint256"},
            {"name": "zoneHash", "type": "bytes32"},
            {"name": "salt", "type": "uint256"},
            {"name": "conduitKey", "type": "bytes32"},
            {"name": "totalOriginalConsiderationItems", "type": "uint256"}
          ]},
          {"name": "signature", "type": "bytes"}
        ]
      },
      {
        "name": "fulfillments",
        "type": "tuple[]",
        "components": [
          {"name": "offerComponents", "type": "tuple[]", "components": [
            {"name": "orderIndex", "type": "uint256"},
            {"name": "itemIndex", "type": "uint256"}
          ]},
          {"name": "considerationComponents", "type": "tuple[]", "components": [
            {"name": "orderIndex", "type": "uint256"},
            {"name": "itemIndex", "type": "uint256"}
          ]}
        ]
      }
    ],
    "outputs": []
  }
]`

// collectionABIJSON is the operator-approval surface shared by the ERC-721
// registrar and the ERC-1155 wrapper.
const collectionABIJSON = `[
  {
    "type": "function",
    "name": "setApprovalForAll",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "operator", "type": "address"},
      {"name": "approved", "type": "bool"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "isApprovedForAll",
    "stateMutability": "view",
    "inputs": [
      {"name": "owner", "type": "address"},
      {"name": "operator", "type": "address"}
    ],
    "outputs": [{"name": "approved", "type": "bool"}]
  }
]`

var (
	marketplaceABI = mustParseABI(marketplaceABIJSON)
	collectionABI  = mustParseABI(collectionABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("chain: parsing ABI: %v", err))
	}
	return parsed
}

// PackFulfillBasicOrder encodes a fulfillBasicOrder call.
func PackFulfillBasicOrder(p seaport.BasicOrderParameters) ([]byte, error) {
	data, err := marketplaceABI.Pack("fulfillBasicOrder", p)
	if err != nil {
		return nil, fmt.Errorf("chain: pack fulfillBasicOrder: %w", err)
	}
	return data, nil
}

// PackFulfillAdvancedOrder encodes a fulfillAdvancedOrder call.
func PackFulfillAdvancedOrder(
	order seaport.AdvancedOrder,
	resolvers []seaport.CriteriaResolver,
	fulfillerConduitKey [32]byte,
	recipient common.Address,
) ([]byte, error) {
	if resolvers == nil {
		resolvers = []seaport.CriteriaResolver{}
	}
	data, err := marketplaceABI.Pack("fulfillAdvancedOrder", order, resolvers, fulfillerConduitKey, recipient)
	if err != nil {
		return nil, fmt.Errorf("chain: pack fulfillAdvancedOrder: %w", err)
	}
	return data, nil
}

// PackMatchOrders encodes a matchOrders call.
func PackMatchOrders(orders []seaport.WireOrder, fulfillments []seaport.Fulfillment) ([]byte, error) {
	data, err := marketplaceABI.Pack("matchOrders", orders, fulfillments)
	if err != nil {
		return nil, fmt.Errorf("chain: pack matchOrders: %w", err)
	}
	return data, nil
}

// PackSetApprovalForAll encodes a setApprovalForAll call.
func PackSetApprovalForAll(operator common.Address, approved bool) ([]byte, error) {
	data, err := collectionABI.Pack("setApprovalForAll", operator, approved)
	if err != nil {
		return nil, fmt.Errorf("chain: pack setApprovalForAll: %w", err)
	}
	return data, nil
}

// PackIsApprovedForAll encodes an isApprovedForAll read.
func PackIsApprovedForAll(owner, operator common.Address) ([]byte, error) {
	data, err := collectionABI.Pack("isApprovedForAll", owner, operator)
	if err != nil {
		return nil, fmt.Errorf("chain: pack isApprovedForAll: %w", err)
	}
	return data, nil
}

// UnpackIsApprovedForAll decodes the result of an isApprovedForAll read.
func UnpackIsApprovedForAll(result []byte) (bool, error) {
	var approved bool
	if err := collectionABI.UnpackIntoInterface(&approved, "isApprovedForAll", result); err != nil {
		return false, fmt.Errorf("chain: unpack isApprovedForAll: %w", err)
	}
	return approved, nil
}
