package trader

import (
	"testing"

	"github.com/mwalsh/fixtrader/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionLedgerBuyThenSell(t *testing.T) {
	l := NewPositionLedger()

	l.ApplyTrade("MSFT", decimal.NewFromInt(100), 10, models.OrderSideBuy)

	p, ok := l.Position("MSFT")
	require.True(t, ok)
	assert.EqualValues(t, 10, p.NetQuantity)
	assert.True(t, p.TotalCost.Equal(decimal.NewFromInt(1000)), "total cost %s", p.TotalCost)
	require.True(t, p.HasAvgPrice())
	assert.True(t, p.AvgPrice.Equal(decimal.NewFromInt(100)), "avg price %s", p.AvgPrice)

	l.ApplyTrade("MSFT", decimal.NewFromInt(110), 10, models.OrderSideSell)

	p, ok = l.Position("MSFT")
	require.True(t, ok)
	assert.EqualValues(t, 0, p.NetQuantity)
	assert.False(t, p.HasAvgPrice(), "avg price must be undefined at zero net quantity")
	assert.True(t, p.TotalCost.Equal(decimal.NewFromInt(-100)), "total cost %s", p.TotalCost)
}

func TestPositionLedgerSellShortMatchesSell(t *testing.T) {
	l := NewPositionLedger()

	// SELL and SELL_SHORT adjust the position identically.
	l.ApplyTrade("AAPL", decimal.NewFromInt(50), 5, models.OrderSideSell)
	l.ApplyTrade("BAC", decimal.NewFromInt(50), 5, models.OrderSideSellShort)

	aapl, ok := l.Position("AAPL")
	require.True(t, ok)
	bac, ok := l.Position("BAC")
	require.True(t, ok)

	assert.Equal(t, aapl.NetQuantity, bac.NetQuantity)
	assert.True(t, aapl.TotalCost.Equal(bac.TotalCost))
	assert.EqualValues(t, -5, aapl.NetQuantity)
	require.True(t, aapl.HasAvgPrice())
	assert.True(t, aapl.AvgPrice.Equal(decimal.NewFromInt(50)), "short avg price must stay non-negative, got %s", aapl.AvgPrice)
}

func TestPositionLedgerAvgPriceRecomputedAfterEachTrade(t *testing.T) {
	l := NewPositionLedger()

	l.ApplyTrade("MSFT", decimal.NewFromInt(100), 10, models.OrderSideBuy)
	l.ApplyTrade("MSFT", decimal.NewFromInt(200), 10, models.OrderSideBuy)

	p, _ := l.Position("MSFT")
	assert.EqualValues(t, 20, p.NetQuantity)
	assert.True(t, p.AvgPrice.Equal(decimal.NewFromInt(150)), "avg price %s", p.AvgPrice)
}

func TestPositionLedgerUnknownSymbol(t *testing.T) {
	l := NewPositionLedger()

	_, ok := l.Position("NOPE")
	assert.False(t, ok)
	assert.Empty(t, l.Snapshot())
}

func TestPositionLedgerSnapshotIsolation(t *testing.T) {
	l := NewPositionLedger()
	l.ApplyTrade("MSFT", decimal.NewFromInt(100), 10, models.OrderSideBuy)

	snap := l.Snapshot()
	entry := snap["MSFT"]
	entry.NetQuantity = 999
	snap["MSFT"] = entry

	p, _ := l.Position("MSFT")
	assert.EqualValues(t, 10, p.NetQuantity)
}
