package fix

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mwalsh/fixtrader/pkg/models"
	"github.com/mwalsh/fixtrader/pkg/trader"
	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	"github.com/quickfixgo/fix42/newordersingle"
	"github.com/quickfixgo/fix42/ordercancelrequest"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrSessionNotReady = errors.New("fix session not logged on")

const priceScale = 2

// Client owns the FIX initiator and the outbound message surface. It
// hands orders and cancels to the engine for transmission and never
// blocks submission on execution report processing.
type Client struct {
	app       *App
	initiator *quickfix.Initiator
	logger    *logrus.Logger
	ids       ClOrdIDGenerator
}

// NewClient builds a client from a quickfix session settings file.
func NewClient(settingsPath string, interpreter *trader.Interpreter, sessionPassword string, logger *logrus.Logger) (*Client, error) {
	f, err := os.Open(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open fix settings: %w", err)
	}
	defer f.Close()

	settings, err := quickfix.ParseSettings(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fix settings: %w", err)
	}

	app := newApp(interpreter, sessionPassword, logger)

	logFactory, err := quickfix.NewFileLogFactory(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create fix log factory: %w", err)
	}

	initiator, err := quickfix.NewInitiator(app, quickfix.NewMemoryStoreFactory(), settings, logFactory)
	if err != nil {
		return nil, fmt.Errorf("failed to create fix initiator: %w", err)
	}

	return &Client{
		app:       app,
		initiator: initiator,
		logger:    logger,
	}, nil
}

// Start connects the initiator and begins the session.
func (c *Client) Start() error {
	return c.initiator.Start()
}

// Stop logs out and tears down the session.
func (c *Client) Stop() {
	c.initiator.Stop()
}

// WaitForLogon blocks until the session has logged on or the context
// is done.
func (c *Client) WaitForLogon(ctx context.Context) error {
	return c.app.waitForLogon(ctx)
}

// SendOrder validates the request, assigns a client order ID, and hands
// a NewOrderSingle to the engine. The assigned ID is returned so the
// caller can correlate reports; the order is not tracked state until
// its acknowledgement arrives.
func (c *Client) SendOrder(req models.OrderRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	sessionID, ok := c.app.session()
	if !ok {
		return "", ErrSessionNotReady
	}

	clOrdID := c.ids.Next()
	order := newordersingle.New(
		field.NewClOrdID(clOrdID),
		field.NewHandlInst(enum.HandlInst_MANUAL_ORDER_BEST_EXECUTION),
		field.NewSymbol(req.Symbol),
		field.NewSide(sideToFIX(req.Side)),
		field.NewTransactTime(time.Now().UTC()),
		field.NewOrdType(ordTypeToFIX(req.Type)),
	)
	order.Set(field.NewOrderQty(decimal.NewFromInt(req.Quantity), 0))
	order.Set(field.NewText("New Order"))
	if req.Type == models.OrderTypeLimit {
		order.Set(field.NewPrice(req.Price, priceScale))
	}

	if err := quickfix.SendToTarget(order, sessionID); err != nil {
		return "", fmt.Errorf("failed to send order: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cl_ord_id": clOrdID,
		"symbol":    req.Symbol,
		"side":      req.Side,
		"type":      req.Type,
		"quantity":  req.Quantity,
	}).Debug("Order sent")
	return clOrdID, nil
}

// SendCancel assigns a replacement client order ID and hands an
// OrderCancelRequest to the engine.
func (c *Client) SendCancel(req models.CancelRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	sessionID, ok := c.app.session()
	if !ok {
		return "", ErrSessionNotReady
	}

	clOrdID := c.ids.Next()
	cancel := ordercancelrequest.New(
		field.NewOrigClOrdID(req.OrigClOrdID),
		field.NewClOrdID(clOrdID),
		field.NewSymbol(req.Symbol),
		field.NewSide(sideToFIX(req.Side)),
		field.NewTransactTime(time.Now().UTC()),
	)
	cancel.Set(field.NewText("Order Cancel Request"))

	if err := quickfix.SendToTarget(cancel, sessionID); err != nil {
		return "", fmt.Errorf("failed to send cancel: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cl_ord_id":      clOrdID,
		"orig_cl_ord_id": req.OrigClOrdID,
		"symbol":         req.Symbol,
	}).Debug("Cancel sent")
	return clOrdID, nil
}
