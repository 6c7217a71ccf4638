package trader

import (
	"sync"

	"github.com/mwalsh/fixtrader/pkg/models"
	"github.com/shopspring/decimal"
)

// PositionLedger tracks the net position and volume-weighted average
// cost per symbol. Positions are created lazily on the first trade.
//
// Sells and short sells adjust the position identically: the ledger does
// not distinguish a sell that reduces a long from one that opens a
// short. That simplification is deliberate and callers must not infer
// long/short intent from the sign alone.
type PositionLedger struct {
	mu        sync.RWMutex
	positions map[string]*models.Position
}

// NewPositionLedger creates an empty ledger.
func NewPositionLedger() *PositionLedger {
	return &PositionLedger{positions: make(map[string]*models.Position)}
}

// ApplyTrade updates the symbol's position with one fill. Buys add
// quantity and cost, sells and short sells subtract the same magnitude.
// The average price is recomputed from the post-update totals on every
// trade so no incremental drift can accumulate.
func (l *PositionLedger) ApplyTrade(symbol string, price decimal.Decimal, quantity int64, side models.OrderSide) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[symbol]
	if !ok {
		p = &models.Position{Symbol: symbol}
		l.positions[symbol] = p
	}

	notional := price.Mul(decimal.NewFromInt(quantity))
	switch side {
	case models.OrderSideBuy:
		p.NetQuantity += quantity
		p.TotalCost = p.TotalCost.Add(notional)
	case models.OrderSideSell, models.OrderSideSellShort:
		p.NetQuantity -= quantity
		p.TotalCost = p.TotalCost.Sub(notional)
	default:
		return
	}

	if p.NetQuantity != 0 {
		p.AvgPrice = p.TotalCost.Div(decimal.NewFromInt(p.NetQuantity)).Abs()
	} else {
		p.AvgPrice = decimal.Zero
	}
}

// Position returns a copy of the symbol's position.
func (l *PositionLedger) Position(symbol string) (models.Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.positions[symbol]
	if !ok {
		return models.Position{}, false
	}
	return *p, true
}

// Snapshot returns a consistent copy of all positions keyed by symbol.
func (l *PositionLedger) Snapshot() map[string]models.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]models.Position, len(l.positions))
	for symbol, p := range l.positions {
		out[symbol] = *p
	}
	return out
}
