package trader

import (
	"errors"
	"sync"

	"github.com/mwalsh/fixtrader/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateOrder = errors.New("order already exists")
	ErrUnknownOrder   = errors.New("order not found")
	ErrInvalidFill    = errors.New("invalid fill quantity")
)

// OrderStore is a thread-safe in-memory store of live orders keyed by
// client order ID. An order leaves the store exactly when it is fully
// filled or its cancellation is confirmed.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]*models.Order)}
}

// Add inserts an order confirmed by a NEW acknowledgement. It returns
// ErrDuplicateOrder if the ClOrdID is already tracked.
func (s *OrderStore) Add(o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ClOrdID]; ok {
		return ErrDuplicateOrder
	}
	s.orders[o.ClOrdID] = o
	return nil
}

// ApplyFill appends a fill to the order and increases its filled
// quantity. If the fill completes the order it is removed from the
// store; removed reports whether that happened. The fill delta is
// applied before the completion check, and the whole update is one
// critical section so concurrent callers never observe a partially
// applied fill.
func (s *OrderStore) ApplyFill(clOrdID string, price decimal.Decimal, quantity int64) (order *models.Order, removed bool, err error) {
	if quantity <= 0 {
		return nil, false, ErrInvalidFill
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[clOrdID]
	if !ok {
		return nil, false, ErrUnknownOrder
	}

	o.Fills = append(o.Fills, models.Fill{Price: price, Quantity: quantity})
	o.FilledQuantity += quantity

	if o.Filled() {
		delete(s.orders, clOrdID)
		return o.Clone(), true, nil
	}
	return o.Clone(), false, nil
}

// Remove deletes an order and reports whether it was tracked.
func (s *OrderStore) Remove(clOrdID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[clOrdID]; !ok {
		return false
	}
	delete(s.orders, clOrdID)
	return true
}

// Get returns a copy of an order by ClOrdID.
func (s *OrderStore) Get(clOrdID string) (*models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[clOrdID]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// Len returns the number of live orders.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// Snapshot returns a consistent point-in-time copy of all live orders.
func (s *OrderStore) Snapshot() []*models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	return out
}
