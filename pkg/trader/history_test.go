package trader

import (
	"testing"
	"time"

	"github.com/mwalsh/fixtrader/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeHistoryAppendAndSnapshot(t *testing.T) {
	h := NewTradeHistory()
	h.Append(trade("MSFT", 100, 10, models.OrderSideBuy))
	h.Append(trade("MSFT", 110, 5, models.OrderSideSell))

	snap := h.Snapshot()
	require.Len(t, snap, 2)
	assert.EqualValues(t, 10, snap[0].Quantity)
	assert.EqualValues(t, 5, snap[1].Quantity)

	// The snapshot is a copy.
	snap[0].Quantity = 999
	assert.EqualValues(t, 10, h.Snapshot()[0].Quantity)
}

func TestTradeHistorySubscribe(t *testing.T) {
	h := NewTradeHistory()

	ch, cancel := h.Subscribe()
	defer cancel()

	h.Append(trade("MSFT", 100, 10, models.OrderSideBuy))

	select {
	case got := <-ch:
		assert.Equal(t, "MSFT", got.Symbol)
		assert.True(t, got.Price.Equal(decimal.NewFromInt(100)))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for trade")
	}
}

func TestTradeHistorySlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewTradeHistory()

	_, cancel := h.Subscribe()
	defer cancel()

	// Nobody drains the channel; appends past its capacity must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			h.Append(trade("MSFT", 100, 1, models.OrderSideBuy))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("append blocked on slow subscriber")
	}
	assert.Equal(t, 200, h.Len())
}

func TestTradeHistoryCancelIsIdempotent(t *testing.T) {
	h := NewTradeHistory()

	_, cancel := h.Subscribe()
	cancel()
	cancel()

	h.Append(trade("MSFT", 100, 1, models.OrderSideBuy))
	assert.Equal(t, 1, h.Len())
}
