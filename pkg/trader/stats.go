package trader

import (
	"github.com/mwalsh/fixtrader/pkg/models"
	"github.com/shopspring/decimal"
)

// Statistics are derived from a trade history snapshot. Per-symbol
// values are rounded to 2 decimal places; aggregates sum the rounded
// per-symbol values.
type Statistics struct {
	Volume map[string]decimal.Decimal
	PnL    map[string]decimal.Decimal
	VWAP   map[string]decimal.Decimal

	TotalVolume decimal.Decimal
	TotalPnL    decimal.Decimal
}

// ComputeStatistics derives volume, PnL, and VWAP for every symbol in
// the snapshot. It is pure: it holds no state and mutates nothing.
//
// PnL uses the realized-cash-flow convention: buys are negative flow,
// sells and short sells positive. A symbol with no trades simply does
// not appear; there is no division by zero for VWAP.
func ComputeStatistics(trades []models.Trade) Statistics {
	notional := make(map[string]decimal.Decimal)
	quantity := make(map[string]int64)
	pnl := make(map[string]decimal.Decimal)

	for _, t := range trades {
		value := t.Notional()
		notional[t.Symbol] = notional[t.Symbol].Add(value)
		quantity[t.Symbol] += t.Quantity

		switch t.Side {
		case models.OrderSideBuy:
			pnl[t.Symbol] = pnl[t.Symbol].Sub(value)
		case models.OrderSideSell, models.OrderSideSellShort:
			pnl[t.Symbol] = pnl[t.Symbol].Add(value)
		}
	}

	stats := Statistics{
		Volume: make(map[string]decimal.Decimal, len(notional)),
		PnL:    make(map[string]decimal.Decimal, len(pnl)),
		VWAP:   make(map[string]decimal.Decimal, len(notional)),
	}

	for symbol, value := range notional {
		volume := value.Round(2)
		stats.Volume[symbol] = volume
		stats.TotalVolume = stats.TotalVolume.Add(volume)

		if qty := quantity[symbol]; qty != 0 {
			stats.VWAP[symbol] = value.Div(decimal.NewFromInt(qty)).Round(2)
		}
	}
	for symbol, value := range pnl {
		rounded := value.Round(2)
		stats.PnL[symbol] = rounded
		stats.TotalPnL = stats.TotalPnL.Add(rounded)
	}
	return stats
}
