package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy       OrderSide = "buy"
	OrderSideSell      OrderSide = "sell"
	OrderSideSellShort OrderSide = "sell_short"
)

func (s OrderSide) Valid() bool {
	switch s {
	case OrderSideBuy, OrderSideSell, OrderSideSellShort:
		return true
	}
	return false
}

type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// Fill is a single execution applied to an order.
type Fill struct {
	Price    decimal.Decimal
	Quantity int64
}

// Order is the client's view of an order confirmed by the counterparty.
// Orders exist only between the NEW acknowledgement and the report that
// completes or cancels them.
type Order struct {
	ClOrdID        string
	Symbol         string
	Side           OrderSide
	Quantity       int64
	Price          decimal.Decimal // zero for market orders
	FilledQuantity int64
	Fills          []Fill
}

// Filled reports whether the order has been executed in full.
func (o *Order) Filled() bool {
	return o.FilledQuantity >= o.Quantity
}

// Clone returns a deep copy safe to hand out of the store.
func (o *Order) Clone() *Order {
	cp := *o
	cp.Fills = make([]Fill, len(o.Fills))
	copy(cp.Fills, o.Fills)
	return &cp
}

// OrderRequest describes a new order to be transmitted.
type OrderRequest struct {
	Symbol   string
	Side     OrderSide
	Type     OrderType
	Quantity int64
	Price    decimal.Decimal // required for limit orders
}

// Validate rejects requests that must never reach the wire.
func (r *OrderRequest) Validate() error {
	if r.Symbol == "" {
		return fmt.Errorf("order symbol is empty")
	}
	if !r.Side.Valid() {
		return fmt.Errorf("invalid order side %q", r.Side)
	}
	if r.Type != OrderTypeMarket && r.Type != OrderTypeLimit {
		return fmt.Errorf("invalid order type %q", r.Type)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("order quantity must be > 0")
	}
	if r.Type == OrderTypeLimit && !r.Price.IsPositive() {
		return fmt.Errorf("price must be set for limit orders")
	}
	return nil
}

// CancelRequest asks the counterparty to cancel a previously submitted
// order. The replacement ClOrdID is assigned by the transport at send time.
type CancelRequest struct {
	OrigClOrdID string
	Symbol      string
	Side        OrderSide
}

// Validate rejects cancel requests that must never reach the wire.
func (r *CancelRequest) Validate() error {
	if r.OrigClOrdID == "" {
		return fmt.Errorf("original client order id is empty")
	}
	if r.Symbol == "" {
		return fmt.Errorf("cancel symbol is empty")
	}
	if !r.Side.Valid() {
		return fmt.Errorf("invalid cancel side %q", r.Side)
	}
	return nil
}
