package loadgen

import (
	"context"
	"math/rand"
	"time"

	"github.com/mwalsh/fixtrader/pkg/models"
	"github.com/mwalsh/fixtrader/pkg/trader"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Transport accepts outbound requests for transmission. Both calls are
// fire-and-forget: the generator never waits for execution reports.
type Transport interface {
	SendOrder(req models.OrderRequest) (string, error)
	SendCancel(req models.CancelRequest) (string, error)
}

// Config bounds the generated load.
type Config struct {
	Symbols          []string
	OrderCount       int
	Duration         time.Duration
	OrdersPerSecond  float64
	CancelsPerSecond float64
	MinPrice         float64
	MaxPrice         float64
	MaxOrderQty      int64
}

// Generator issues synthetic orders and cancellations against the
// transport. It touches core state only through the store's snapshot
// and the transport's public API.
type Generator struct {
	transport Transport
	store     *trader.OrderStore
	cfg       Config
	logger    *logrus.Logger
}

// New creates a generator.
func New(transport Transport, store *trader.OrderStore, cfg Config, logger *logrus.Logger) *Generator {
	if cfg.MinPrice <= 0 {
		cfg.MinPrice = 100
	}
	if cfg.MaxPrice <= cfg.MinPrice {
		cfg.MaxPrice = cfg.MinPrice + 100
	}
	if cfg.MaxOrderQty <= 0 {
		cfg.MaxOrderQty = 100
	}
	if cfg.OrdersPerSecond <= 0 {
		cfg.OrdersPerSecond = 10
	}
	if cfg.CancelsPerSecond <= 0 {
		cfg.CancelsPerSecond = 10
	}
	return &Generator{
		transport: transport,
		store:     store,
		cfg:       cfg,
		logger:    logger,
	}
}

// RunOrders sends random orders until the configured count or duration
// is reached, or the context is cancelled. Pacing is enforced by a rate
// limiter rather than fixed sleeps so shutdown is immediate.
func (g *Generator) RunOrders(ctx context.Context) error {
	if len(g.cfg.Symbols) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	limiter := rate.NewLimiter(rate.Limit(g.cfg.OrdersPerSecond), 1)
	deadline := time.Now().Add(g.cfg.Duration)

	sent := 0
	for sent < g.cfg.OrderCount && time.Now().Before(deadline) {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		req := g.randomOrder(rng)
		if _, err := g.transport.SendOrder(req); err != nil {
			g.logger.WithError(err).WithField("symbol", req.Symbol).Warn("Failed to send order")
			continue
		}
		sent++
	}

	g.logger.WithField("orders_sent", sent).Info("Order generation finished")
	return nil
}

// RunCancels picks random live orders from the store snapshot and
// requests their cancellation until the duration elapses or the context
// is cancelled.
func (g *Generator) RunCancels(ctx context.Context) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + 1))
	limiter := rate.NewLimiter(rate.Limit(g.cfg.CancelsPerSecond), 1)
	deadline := time.Now().Add(g.cfg.Duration)

	sent := 0
	for time.Now().Before(deadline) {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		active := g.store.Snapshot()
		if len(active) == 0 {
			continue
		}
		order := active[rng.Intn(len(active))]

		req := models.CancelRequest{
			OrigClOrdID: order.ClOrdID,
			Symbol:      order.Symbol,
			Side:        order.Side,
		}
		if _, err := g.transport.SendCancel(req); err != nil {
			g.logger.WithError(err).WithField("orig_cl_ord_id", order.ClOrdID).Warn("Failed to send cancel")
			continue
		}
		sent++
	}

	g.logger.WithField("cancels_sent", sent).Info("Cancel generation finished")
	return nil
}

func (g *Generator) randomOrder(rng *rand.Rand) models.OrderRequest {
	sides := []models.OrderSide{models.OrderSideBuy, models.OrderSideSell, models.OrderSideSellShort}
	types := []models.OrderType{models.OrderTypeMarket, models.OrderTypeLimit}

	req := models.OrderRequest{
		Symbol:   g.cfg.Symbols[rng.Intn(len(g.cfg.Symbols))],
		Side:     sides[rng.Intn(len(sides))],
		Type:     types[rng.Intn(len(types))],
		Quantity: 1 + rng.Int63n(g.cfg.MaxOrderQty),
	}
	if req.Type == models.OrderTypeLimit {
		px := g.cfg.MinPrice + rng.Float64()*(g.cfg.MaxPrice-g.cfg.MinPrice)
		req.Price = decimal.NewFromFloat(px).Round(2)
	}
	return req
}
