package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderRequestValidate(t *testing.T) {
	valid := OrderRequest{
		Symbol:   "MSFT",
		Side:     OrderSideBuy,
		Type:     OrderTypeLimit,
		Quantity: 10,
		Price:    decimal.NewFromInt(100),
	}

	tests := []struct {
		name    string
		mutate  func(r *OrderRequest)
		wantErr bool
	}{
		{name: "valid limit order", mutate: func(r *OrderRequest) {}},
		{name: "market order without price", mutate: func(r *OrderRequest) {
			r.Type = OrderTypeMarket
			r.Price = decimal.Zero
		}},
		{name: "sell short", mutate: func(r *OrderRequest) { r.Side = OrderSideSellShort }},
		{name: "empty symbol", mutate: func(r *OrderRequest) { r.Symbol = "" }, wantErr: true},
		{name: "bad side", mutate: func(r *OrderRequest) { r.Side = "long" }, wantErr: true},
		{name: "bad type", mutate: func(r *OrderRequest) { r.Type = "stop" }, wantErr: true},
		{name: "zero quantity", mutate: func(r *OrderRequest) { r.Quantity = 0 }, wantErr: true},
		{name: "negative quantity", mutate: func(r *OrderRequest) { r.Quantity = -5 }, wantErr: true},
		{name: "limit order without price", mutate: func(r *OrderRequest) { r.Price = decimal.Zero }, wantErr: true},
		{name: "limit order negative price", mutate: func(r *OrderRequest) { r.Price = decimal.NewFromInt(-1) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCancelRequestValidate(t *testing.T) {
	valid := CancelRequest{OrigClOrdID: "a-1", Symbol: "MSFT", Side: OrderSideBuy}
	assert.NoError(t, valid.Validate())

	missingID := valid
	missingID.OrigClOrdID = ""
	assert.Error(t, missingID.Validate())

	missingSymbol := valid
	missingSymbol.Symbol = ""
	assert.Error(t, missingSymbol.Validate())

	badSide := valid
	badSide.Side = "both"
	assert.Error(t, badSide.Validate())
}

func TestOrderClone(t *testing.T) {
	o := &Order{
		ClOrdID:        "a-1",
		Symbol:         "MSFT",
		Side:           OrderSideBuy,
		Quantity:       100,
		FilledQuantity: 60,
		Fills:          []Fill{{Price: decimal.NewFromInt(150), Quantity: 60}},
	}

	cp := o.Clone()
	cp.Fills[0].Quantity = 1
	cp.FilledQuantity = 1

	assert.EqualValues(t, 60, o.Fills[0].Quantity)
	assert.EqualValues(t, 60, o.FilledQuantity)
}

func TestOrderFilled(t *testing.T) {
	o := &Order{Quantity: 100, FilledQuantity: 99}
	assert.False(t, o.Filled())

	o.FilledQuantity = 100
	assert.True(t, o.Filled())

	o.FilledQuantity = 120
	assert.True(t, o.Filled())
}
