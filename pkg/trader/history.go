package trader

import (
	"sync"

	"github.com/mwalsh/fixtrader/pkg/models"
)

// TradeHistory is the append-only record of every fill event, in the
// order fills were applied. Subscribers receive a best-effort live feed
// of new trades; a slow subscriber drops trades rather than blocking
// the interpreter.
type TradeHistory struct {
	mu     sync.RWMutex
	trades []models.Trade
	subs   map[chan models.Trade]struct{}
}

// NewTradeHistory creates an empty history.
func NewTradeHistory() *TradeHistory {
	return &TradeHistory{subs: make(map[chan models.Trade]struct{})}
}

// Append records a trade and fans it out to subscribers.
func (h *TradeHistory) Append(t models.Trade) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.trades = append(h.trades, t)
	for ch := range h.subs {
		select {
		case ch <- t:
		default:
		}
	}
}

// Len returns the number of recorded trades.
func (h *TradeHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.trades)
}

// Snapshot returns a consistent copy of the full trade history.
func (h *TradeHistory) Snapshot() []models.Trade {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.Trade, len(h.trades))
	copy(out, h.trades)
	return out
}

// Subscribe registers a live trade feed. The returned cancel function
// must be called to release the subscription.
func (h *TradeHistory) Subscribe() (<-chan models.Trade, func()) {
	ch := make(chan models.Trade, 64)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}
