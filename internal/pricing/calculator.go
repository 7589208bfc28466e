package pricing

import (
	"fmt"
	"slices"
)

// VATRate is the German VAT rate (19%).
const VATRate = 0.19

// Prices contains net monthly Hetzner prices in EUR for one location.
type Prices struct {
	Location string

	// Servers maps server type to monthly price.
	Servers map[string]float64

	// PrimaryIPv4 is the monthly cost for a primary IPv4 address.
	PrimaryIPv4 float64

	// Live is set when the prices were fetched from the API.
	Live bool
}

// Topology is the shape of the swarm being priced.
type Topology struct {
	Stack      string
	Location   string
	ServerType string
	Managers   int
	Workers    int
}

// Estimate contains the calculated cost estimate.
type Estimate struct {
	Stack      string
	Location   string
	ServerType string

	Items    []LineItem
	Subtotal float64
	VAT      float64
	Total    float64

	// Unpriced lists server types missing from the price list.
	Unpriced []string
	Live     bool
}

// LineItem represents a single cost line item.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitType    string  `json:"unit_type"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// String returns a formatted string representation of the line item.
func (l LineItem) String() string {
	return fmt.Sprintf("%s: %d× %s @ €%.2f = €%.2f/mo",
		l.Description, l.Quantity, l.UnitType, l.UnitPrice, l.Total)
}

// AnnualCost returns the estimated annual cost.
func (e *Estimate) AnnualCost() float64 {
	return e.Total * 12
}

// Calculator prices swarm topologies.
type Calculator struct {
	prices *Prices
}

// NewCalculator creates a calculator with the built-in price list.
func NewCalculator() *Calculator {
	return &Calculator{prices: DefaultPrices()}
}

// NewCalculatorWithPrices creates a calculator with specific pricing.
func NewCalculatorWithPrices(prices *Prices) *Calculator {
	return &Calculator{prices: prices}
}

// Calculate prices one server per machine and one primary IPv4 per
// machine, since every swarm machine is reached on its public address.
func (c *Calculator) Calculate(t Topology) *Estimate {
	e := &Estimate{
		Stack:      t.Stack,
		Location:   t.Location,
		ServerType: t.ServerType,
		Items:      make([]LineItem, 0, 3),
		Live:       c.prices.Live,
	}

	serverPrice, ok := c.prices.Servers[t.ServerType]
	if !ok && t.Managers+t.Workers > 0 {
		e.Unpriced = append(e.Unpriced, t.ServerType)
	}

	e.add("Managers", t.Managers, t.ServerType, serverPrice)
	e.add("Workers", t.Workers, t.ServerType, serverPrice)
	e.add("Primary IPv4", t.Managers+t.Workers, "ipv4", c.prices.PrimaryIPv4)

	e.VAT = e.Subtotal * VATRate
	e.Total = e.Subtotal + e.VAT
	slices.Sort(e.Unpriced)
	return e
}

func (e *Estimate) add(description string, quantity int, unitType string, unitPrice float64) {
	if quantity <= 0 {
		return
	}
	total := float64(quantity) * unitPrice
	e.Items = append(e.Items, LineItem{
		Description: description,
		Quantity:    quantity,
		UnitType:    unitType,
		UnitPrice:   unitPrice,
		Total:       total,
	})
	e.Subtotal += total
}

// DefaultPrices returns hardcoded Hetzner pricing (as of January 2025).
// These are net prices in EUR before VAT.
func DefaultPrices() *Prices {
	return &Prices{
		Servers: map[string]float64{
			"cpx11": 4.35,
			"cpx21": 7.55,
			"cpx31": 13.60,
			"cpx41": 25.20,
			"cpx51": 54.90,
			"cx22":  3.79,
			"cx32":  6.80,
			"cx42":  16.40,
			"cx52":  32.40,
			"cax11": 3.79,
			"cax21": 6.49,
			"cax31": 12.49,
			"cax41": 24.49,
		},
		PrimaryIPv4: 0.50,
	}
}
