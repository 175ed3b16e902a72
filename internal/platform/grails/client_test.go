package grails

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailsmarket/domainex/internal/domain"
)

func TestFulfillRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/orders/offer-1", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"id": "offer-1",
			"kind": "offer",
			"domain": {
				"name": "example.eth",
				"token_id": "987654321",
				"wrapped": true,
				"owner": "0x1111111111111111111111111111111111111111"
			},
			"order_data": {"parameters": {"offerer": "0x5555555555555555555555555555555555555555"}, "signature": "0xbeef"}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	req, err := c.FulfillRequest(context.Background(), "offer-1")
	require.NoError(t, err)

	assert.Equal(t, domain.KindAcceptOffer, req.Kind)
	assert.Equal(t, "offer-1", req.RecordID)
	assert.Equal(t, "example.eth", req.Asset.Name)
	assert.Equal(t, "987654321", req.Asset.TokenID.String())
	assert.Equal(t, domain.ClassWrapped, req.Asset.Class)
	// The stored order travels through untouched; decoding is the codec's
	// job, not the transport's.
	assert.JSONEq(t, `{"parameters": {"offerer": "0x5555555555555555555555555555555555555555"}, "signature": "0xbeef"}`, string(req.OrderData))
}

func TestFulfillRequestUnknownKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"id": "x-1", "kind": "auction", "domain": {"name": "a.eth"}, "order_data": {}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").FulfillRequest(context.Background(), "x-1")
	assert.ErrorContains(t, err, "unknown kind")
}

func TestFulfillRequestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").FulfillRequest(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkOfferAccepted(t *testing.T) {
	var path, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, "").MarkOfferAccepted(context.Background(), "offer-9"))
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/offers/offer-9/accept", path)
}

func TestMarkListingCancelledServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("backend exploded"))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").MarkListingCancelled(context.Background(), "listing-9")
	require.Error(t, err)
	assert.ErrorContains(t, err, "status 500")
	assert.ErrorContains(t, err, "backend exploded")
}

func TestDomainPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/domains", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("page_size"))
		w.Write([]byte(`{
			"domains": [
				{"name": "one.eth", "token_id": "1", "wrapped": false},
				{"name": "two.eth", "token_id": "2", "wrapped": true}
			],
			"page": 2,
			"has_more": true
		}`))
	}))
	defer srv.Close()

	assets, more, err := NewClient(srv.URL, "").DomainPage(context.Background(), 2, 50)
	require.NoError(t, err)
	assert.True(t, more)
	require.Len(t, assets, 2)
	assert.Equal(t, "one.eth", assets[0].Name)
	assert.Equal(t, domain.ClassUnwrapped, assets[0].Class)
	assert.Equal(t, domain.ClassWrapped, assets[1].Class)
}
