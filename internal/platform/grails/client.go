// Package grails is the REST client for the marketplace backend: stored
// order records, settlement marks, and paged portfolio listings.
package grails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/grailsmarket/domainex/internal/domain"
)

// Client talks to the marketplace backend API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a backend client. baseURL is the API root, e.g.
// "https://api.grails.market".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FulfillRequest fetches a stored offer or listing record and materializes it
// as a fulfillment request. The raw order JSON travels through unparsed.
func (c *Client) FulfillRequest(ctx context.Context, recordID string) (domain.FulfillRequest, error) {
	body, err := c.doGet(ctx, "/orders/"+url.PathEscape(recordID))
	if err != nil {
		return domain.FulfillRequest{}, fmt.Errorf("grails: get order %s: %w", recordID, err)
	}

	var record apiOrderRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return domain.FulfillRequest{}, fmt.Errorf("grails: decode order %s: %w", recordID, err)
	}

	var kind domain.FlowKind
	switch record.Kind {
	case "offer":
		kind = domain.KindAcceptOffer
	case "listing":
		kind = domain.KindPurchaseListing
	default:
		return domain.FulfillRequest{}, fmt.Errorf("grails: order %s has unknown kind %q", recordID, record.Kind)
	}

	return domain.FulfillRequest{
		Kind:      kind,
		RecordID:  record.ID,
		Asset:     record.Domain.toDomainAsset(),
		OrderData: record.OrderData,
	}, nil
}

// MarkOfferAccepted marks an offer record accepted after its fulfillment
// transaction has confirmed on chain.
func (c *Client) MarkOfferAccepted(ctx context.Context, offerID string) error {
	if err := c.doPost(ctx, "/offers/"+url.PathEscape(offerID)+"/accept", nil); err != nil {
		return fmt.Errorf("grails: mark offer %s accepted: %w", offerID, err)
	}
	return nil
}

// MarkListingCancelled marks a listing record cancelled after the domain
// changed hands on chain.
func (c *Client) MarkListingCancelled(ctx context.Context, listingID string) error {
	if err := c.doPost(ctx, "/listings/"+url.PathEscape(listingID)+"/cancel", nil); err != nil {
		return fmt.Errorf("grails: mark listing %s cancelled: %w", listingID, err)
	}
	return nil
}

// DomainPage returns one page of the caller's portfolio domains and whether
// further pages exist.
func (c *Client) DomainPage(ctx context.Context, page, pageSize int) ([]domain.DomainAsset, bool, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))

	body, err := c.doGet(ctx, "/domains?"+params.Encode())
	if err != nil {
		return nil, false, fmt.Errorf("grails: list domains page %d: %w", page, err)
	}

	var apiPage apiDomainPage
	if err := json.Unmarshal(body, &apiPage); err != nil {
		return nil, false, fmt.Errorf("grails: decode domains page %d: %w", page, err)
	}

	assets := make([]domain.DomainAsset, 0, len(apiPage.Domains))
	for _, d := range apiPage.Domains {
		assets = append(assets, d.toDomainAsset())
	}
	return assets, apiPage.HasMore, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) doPost(ctx context.Context, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
