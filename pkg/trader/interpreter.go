package trader

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/mwalsh/fixtrader/pkg/models"
	"github.com/sirupsen/logrus"
)

var ErrMalformedReport = errors.New("malformed execution report")

// Counters are the confirmed server-side state transitions observed so
// far. They count acknowledgements, not client intent.
type Counters struct {
	OrdersConfirmed int64
	OrdersCancelled int64
	CancelRejects   int64
	ReportErrors    int64
}

// Interpreter drives the order store, position ledger, and trade
// history from the inbound execution report stream. It consumes one
// report at a time in the transport's delivery order and never reorders
// or buffers. Every error is locally recoverable: a bad report is
// logged and skipped, and the interpreter stays live for the next one.
type Interpreter struct {
	store   *OrderStore
	ledger  *PositionLedger
	history *TradeHistory
	logger  *logrus.Logger

	ordersConfirmed atomic.Int64
	ordersCancelled atomic.Int64
	cancelRejects   atomic.Int64
	reportErrors    atomic.Int64
}

// NewInterpreter wires an interpreter to its owned state.
func NewInterpreter(store *OrderStore, ledger *PositionLedger, history *TradeHistory, logger *logrus.Logger) *Interpreter {
	return &Interpreter{
		store:   store,
		ledger:  ledger,
		history: history,
		logger:  logger,
	}
}

// Apply classifies one execution report and applies its transition.
// Failures are logged and swallowed so one malformed report cannot halt
// processing of subsequent reports.
func (it *Interpreter) Apply(report models.ExecutionReport) {
	var err error
	switch report.ExecType {
	case models.ExecTypeNew:
		err = it.applyAck(report)
	case models.ExecTypePartialFill, models.ExecTypeFill:
		err = it.applyFill(report)
	case models.ExecTypeCanceled:
		err = it.applyCancel(report)
	case models.ExecTypeCancelReject:
		it.cancelRejects.Add(1)
		it.logger.WithFields(logrus.Fields{
			"cl_ord_id":      report.ClOrdID,
			"orig_cl_ord_id": report.OrigClOrdID,
		}).Warn("Order cancel rejected")
	default:
		it.logger.WithFields(logrus.Fields{
			"cl_ord_id": report.ClOrdID,
			"exec_type": report.ExecType.String(),
		}).Info("Ignoring execution report")
	}

	if err != nil {
		it.reportErrors.Add(1)
		it.logger.WithError(err).WithFields(logrus.Fields{
			"cl_ord_id": report.ClOrdID,
			"exec_type": report.ExecType.String(),
			"symbol":    report.Symbol,
		}).Error("Failed to apply execution report")
	}
}

// applyAck creates the order on a NEW acknowledgement. The order
// becomes tracked state only here, never at submission time.
func (it *Interpreter) applyAck(r models.ExecutionReport) error {
	if r.ClOrdID == "" || r.Symbol == "" || !r.Side.Valid() || r.OrderQty <= 0 {
		return fmt.Errorf("%w: incomplete NEW acknowledgement", ErrMalformedReport)
	}

	order := &models.Order{
		ClOrdID:  r.ClOrdID,
		Symbol:   r.Symbol,
		Side:     r.Side,
		Quantity: r.OrderQty,
	}
	// Market orders may be acknowledged without a price; the economics
	// come from LastPx on fills.
	if r.HasPrice {
		order.Price = r.Price
	}

	if err := it.store.Add(order); err != nil {
		return fmt.Errorf("duplicate acknowledgement for %s: %w", r.ClOrdID, err)
	}
	it.ordersConfirmed.Add(1)

	it.logger.WithFields(logrus.Fields{
		"cl_ord_id": r.ClOrdID,
		"symbol":    r.Symbol,
		"side":      r.Side,
		"quantity":  r.OrderQty,
	}).Info("Order acknowledged")
	return nil
}

// applyFill handles partial and full fills identically: the fill delta
// is applied first and the store removes the order once the filled
// quantity reaches the requested quantity.
func (it *Interpreter) applyFill(r models.ExecutionReport) error {
	if r.ClOrdID == "" || r.Symbol == "" || !r.Side.Valid() || r.LastQty <= 0 || !r.LastPx.IsPositive() {
		return fmt.Errorf("%w: fill without side, last price, or last quantity", ErrMalformedReport)
	}

	_, removed, err := it.store.ApplyFill(r.ClOrdID, r.LastPx, r.LastQty)
	if err != nil {
		// Unknown orders are logged and ignored; no placeholder state.
		return fmt.Errorf("fill for %s: %w", r.ClOrdID, err)
	}

	it.history.Append(models.Trade{
		Symbol:   r.Symbol,
		Price:    r.LastPx,
		Quantity: r.LastQty,
		Side:     r.Side,
	})
	it.ledger.ApplyTrade(r.Symbol, r.LastPx, r.LastQty, r.Side)

	it.logger.WithFields(logrus.Fields{
		"cl_ord_id": r.ClOrdID,
		"symbol":    r.Symbol,
		"last_px":   r.LastPx,
		"last_qty":  r.LastQty,
		"completed": removed,
	}).Info("Order filled")
	return nil
}

// applyCancel removes the order under both identifiers it may be
// tracked by. Absence of either is not an error, but a confirmation
// matching nothing at all does not count as a cancellation.
func (it *Interpreter) applyCancel(r models.ExecutionReport) error {
	if r.ClOrdID == "" && r.OrigClOrdID == "" {
		return fmt.Errorf("%w: cancel confirmation without identifiers", ErrMalformedReport)
	}

	removed := it.store.Remove(r.ClOrdID)
	if it.store.Remove(r.OrigClOrdID) {
		removed = true
	}
	if !removed {
		return fmt.Errorf("cancel confirmation for %s/%s: %w", r.ClOrdID, r.OrigClOrdID, ErrUnknownOrder)
	}
	it.ordersCancelled.Add(1)

	it.logger.WithFields(logrus.Fields{
		"cl_ord_id":      r.ClOrdID,
		"orig_cl_ord_id": r.OrigClOrdID,
	}).Info("Order cancelled")
	return nil
}

// Counters returns a consistent-enough copy of the confirmation
// counters for reporting.
func (it *Interpreter) Counters() Counters {
	return Counters{
		OrdersConfirmed: it.ordersConfirmed.Load(),
		OrdersCancelled: it.ordersCancelled.Load(),
		CancelRejects:   it.cancelRejects.Load(),
		ReportErrors:    it.reportErrors.Load(),
	}
}
