package models

import "github.com/shopspring/decimal"

// Trade is an immutable record of a single fill event. Trades are
// appended to the global history and never mutated or deleted.
type Trade struct {
	Symbol   string
	Price    decimal.Decimal
	Quantity int64
	Side     OrderSide
}

// Notional is price x quantity.
func (t Trade) Notional() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}

// Position is the net holding in one symbol. NetQuantity is positive
// for a net long. TotalCost carries the same sign convention.
type Position struct {
	Symbol      string
	NetQuantity int64
	TotalCost   decimal.Decimal
	AvgPrice    decimal.Decimal // meaningful only when NetQuantity != 0
}

// HasAvgPrice reports whether an average price is defined. It is
// undefined exactly when the net quantity is zero.
func (p Position) HasAvgPrice() bool {
	return p.NetQuantity != 0
}
