package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

const (
	// HetznerAPIEndpoint is the default Hetzner Cloud API endpoint.
	HetznerAPIEndpoint = "https://api.hetzner.cloud/v1"

	// PricingEndpoint is the pricing API path.
	PricingEndpoint = "/pricing"
)

// Client fetches pricing data from the Hetzner API.
type Client struct {
	token      string
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a new pricing client with the given API token.
func NewClient(token string) *Client {
	return NewClientWithEndpoint(token, HetznerAPIEndpoint)
}

// NewClientWithEndpoint creates a client with a custom endpoint.
func NewClientWithEndpoint(token, endpoint string) *Client {
	return &Client{
		token:    token,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchPrices fetches the current prices for location.
func (c *Client) FetchPrices(ctx context.Context, location string) (*Prices, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+PricingEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pricing: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pricing API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return parsePricingResponse(body, location)
}

type pricingResponse struct {
	Pricing struct {
		ServerTypes []serverTypePricing `json:"server_types"`
		PrimaryIPs  []primaryIPPricing  `json:"primary_ips"`
	} `json:"pricing"`
}

type serverTypePricing struct {
	Name   string       `json:"name"`
	Prices []priceByLoc `json:"prices"`
}

type primaryIPPricing struct {
	Type   string       `json:"type"`
	Prices []priceByLoc `json:"prices"`
}

type priceByLoc struct {
	Location     string `json:"location"`
	PriceMonthly struct {
		Net string `json:"net"`
	} `json:"price_monthly"`
}

func parsePricingResponse(data []byte, location string) (*Prices, error) {
	var resp pricingResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse pricing response: %w", err)
	}

	prices := &Prices{
		Location: location,
		Servers:  make(map[string]float64),
		Live:     true,
	}

	for _, st := range resp.Pricing.ServerTypes {
		if p, ok := priceAt(st.Prices, location); ok {
			prices.Servers[st.Name] = p
		}
	}
	for _, ip := range resp.Pricing.PrimaryIPs {
		if ip.Type != "ipv4" {
			continue
		}
		if p, ok := priceAt(ip.Prices, location); ok {
			prices.PrimaryIPv4 = p
		}
	}

	return prices, nil
}

// priceAt returns the price for location, or the first listed price when
// the location is not offered.
func priceAt(prices []priceByLoc, location string) (float64, bool) {
	if len(prices) == 0 {
		return 0, false
	}
	for _, p := range prices {
		if p.Location == location {
			return parsePriceString(p.PriceMonthly.Net), true
		}
	}
	return parsePriceString(prices[0].PriceMonthly.Net), true
}

// parsePriceString converts a price string (e.g., "4.3500") to float64.
func parsePriceString(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// FetchOrDefault fetches prices from the API, falling back to defaults on error.
func FetchOrDefault(ctx context.Context, token, location string) *Prices {
	if token == "" {
		return withLocation(DefaultPrices(), location)
	}

	prices, err := NewClient(token).FetchPrices(ctx, location)
	if err != nil {
		log.Printf("[Pricing] Using built-in prices: %v", err)
		return withLocation(DefaultPrices(), location)
	}
	return prices
}

func withLocation(p *Prices, location string) *Prices {
	p.Location = location
	return p
}
