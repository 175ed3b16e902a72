package grails

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/grailsmarket/domainex/internal/domain"
)

// apiDomain is the backend's representation of a tokenized domain.
type apiDomain struct {
	Name    string `json:"name"`
	TokenID string `json:"token_id"`
	Expiry  int64  `json:"expiry"`
	Wrapped bool   `json:"wrapped"`
	Owner   string `json:"owner"`
}

func (d apiDomain) toDomainAsset() domain.DomainAsset {
	tokenID, ok := new(big.Int).SetString(d.TokenID, 0)
	if !ok {
		tokenID = new(big.Int)
	}
	class := domain.ClassUnwrapped
	if d.Wrapped {
		class = domain.ClassWrapped
	}
	return domain.DomainAsset{
		Name:    d.Name,
		TokenID: tokenID,
		Expiry:  time.Unix(d.Expiry, 0).UTC(),
		Class:   class,
		Owner:   common.HexToAddress(d.Owner),
	}
}

// apiOrderRecord is a stored offer or listing record, carrying the raw
// protocol order JSON exactly as the backend persisted it. The order data is
// passed through opaquely; normalization is the codec's job.
type apiOrderRecord struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Domain    apiDomain       `json:"domain"`
	OrderData json.RawMessage `json:"order_data"`
}

// apiDomainPage is one page of a portfolio listing.
type apiDomainPage struct {
	Domains []apiDomain `json:"domains"`
	Page    int         `json:"page"`
	HasMore bool        `json:"has_more"`
}
