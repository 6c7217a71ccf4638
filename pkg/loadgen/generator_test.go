package loadgen

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/mwalsh/fixtrader/pkg/models"
	"github.com/mwalsh/fixtrader/pkg/trader"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransport struct {
	mu      sync.Mutex
	orders  []models.OrderRequest
	cancels []models.CancelRequest
}

func (s *stubTransport) SendOrder(req models.OrderRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, req)
	return "cl-1", nil
}

func (s *stubTransport) SendCancel(req models.CancelRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels = append(s.cancels, req)
	return "cl-2", nil
}

func (s *stubTransport) sentOrders() []models.OrderRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.OrderRequest, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *stubTransport) sentCancels() []models.CancelRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CancelRequest, len(s.cancels))
	copy(out, s.cancels)
	return out
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestGeneratorStopsAtOrderCount(t *testing.T) {
	transport := &stubTransport{}
	g := New(transport, trader.NewOrderStore(), Config{
		Symbols:         []string{"MSFT", "AAPL"},
		OrderCount:      25,
		Duration:        time.Minute,
		OrdersPerSecond: 10_000,
	}, testLogger())

	require.NoError(t, g.RunOrders(context.Background()))

	orders := transport.sentOrders()
	assert.Len(t, orders, 25)
	for _, req := range orders {
		assert.NoError(t, req.Validate(), "generated orders must be valid")
		assert.Contains(t, []string{"MSFT", "AAPL"}, req.Symbol)
		if req.Type == models.OrderTypeLimit {
			assert.True(t, req.Price.IsPositive())
		} else {
			assert.True(t, req.Price.IsZero(), "market orders carry no price")
		}
	}
}

func TestGeneratorHonorsContextCancellation(t *testing.T) {
	transport := &stubTransport{}
	g := New(transport, trader.NewOrderStore(), Config{
		Symbols:         []string{"MSFT"},
		OrderCount:      1_000_000,
		Duration:        time.Minute,
		OrdersPerSecond: 1, // slow enough that cancellation wins
	}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := g.RunOrders(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGeneratorCancelsOnlyActiveOrders(t *testing.T) {
	transport := &stubTransport{}
	store := trader.NewOrderStore()
	require.NoError(t, store.Add(&models.Order{
		ClOrdID:  "live-1",
		Symbol:   "MSFT",
		Side:     models.OrderSideBuy,
		Quantity: 10,
	}))

	g := New(transport, store, Config{
		Symbols:          []string{"MSFT"},
		Duration:         200 * time.Millisecond,
		CancelsPerSecond: 1_000,
	}, testLogger())

	require.NoError(t, g.RunCancels(context.Background()))

	cancels := transport.sentCancels()
	require.NotEmpty(t, cancels)
	for _, req := range cancels {
		assert.Equal(t, "live-1", req.OrigClOrdID)
		assert.NoError(t, req.Validate())
	}
}

func TestGeneratorCancelsWithEmptyStore(t *testing.T) {
	transport := &stubTransport{}
	g := New(transport, trader.NewOrderStore(), Config{
		Symbols:          []string{"MSFT"},
		Duration:         100 * time.Millisecond,
		CancelsPerSecond: 1_000,
	}, testLogger())

	require.NoError(t, g.RunCancels(context.Background()))
	assert.Empty(t, transport.sentCancels())
}
