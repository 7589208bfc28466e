package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrices() *Prices {
	return &Prices{
		Location:    "fsn1",
		Servers:     map[string]float64{"cx22": 4.00, "cx32": 8.00},
		PrimaryIPv4: 0.50,
	}
}

func TestCalculator_Calculate(t *testing.T) {
	e := NewCalculatorWithPrices(testPrices()).Calculate(Topology{
		Stack:      "airflow",
		Location:   "fsn1",
		ServerType: "cx22",
		Managers:   1,
		Workers:    2,
	})

	require.Len(t, e.Items, 3)
	assert.Equal(t, LineItem{Description: "Managers", Quantity: 1, UnitType: "cx22", UnitPrice: 4, Total: 4}, e.Items[0])
	assert.Equal(t, LineItem{Description: "Workers", Quantity: 2, UnitType: "cx22", UnitPrice: 4, Total: 8}, e.Items[1])
	assert.Equal(t, LineItem{Description: "Primary IPv4", Quantity: 3, UnitType: "ipv4", UnitPrice: 0.5, Total: 1.5}, e.Items[2])

	assert.InDelta(t, 13.5, e.Subtotal, 0.001)
	assert.InDelta(t, 13.5*VATRate, e.VAT, 0.001)
	assert.InDelta(t, 13.5*(1+VATRate), e.Total, 0.001)
	assert.Empty(t, e.Unpriced)
	assert.Equal(t, "airflow", e.Stack)
}

func TestCalculator_NoWorkers(t *testing.T) {
	e := NewCalculatorWithPrices(testPrices()).Calculate(Topology{ServerType: "cx32", Managers: 1})

	require.Len(t, e.Items, 2)
	assert.Equal(t, "Managers", e.Items[0].Description)
	assert.Equal(t, "Primary IPv4", e.Items[1].Description)
	assert.InDelta(t, 8.5, e.Subtotal, 0.001)
}

func TestCalculator_UnknownServerType(t *testing.T) {
	e := NewCalculatorWithPrices(testPrices()).Calculate(Topology{ServerType: "ccx63", Managers: 1, Workers: 1})

	assert.Equal(t, []string{"ccx63"}, e.Unpriced)
	assert.InDelta(t, 1.0, e.Subtotal, 0.001)
}

func TestCalculator_DefaultPrices(t *testing.T) {
	e := NewCalculator().Calculate(Topology{ServerType: "cx22", Managers: 1})

	assert.False(t, e.Live)
	assert.Empty(t, e.Unpriced)
	assert.Greater(t, e.Total, 0.0)
}

func TestEstimate_AnnualCost(t *testing.T) {
	e := &Estimate{Total: 10}
	assert.InDelta(t, 120.0, e.AnnualCost(), 0.001)
}

func TestLineItem_String(t *testing.T) {
	item := LineItem{Description: "Workers", Quantity: 2, UnitType: "cx22", UnitPrice: 4, Total: 8}
	assert.Equal(t, "Workers: 2× cx22 @ €4.00 = €8.00/mo", item.String())
}
