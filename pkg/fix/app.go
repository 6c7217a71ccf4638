package fix

import (
	"context"
	"sync"

	"github.com/mwalsh/fixtrader/pkg/models"
	"github.com/mwalsh/fixtrader/pkg/trader"
	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/fix42/executionreport"
	"github.com/quickfixgo/fix42/ordercancelreject"
	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/tag"
	"github.com/sirupsen/logrus"
)

// App implements quickfix.Application. Session mechanics — logon,
// heartbeats, sequence numbers, resend — belong to the engine; the app
// only translates inbound application messages into execution reports
// for the interpreter and surfaces session lifecycle to the client.
type App struct {
	*quickfix.MessageRouter

	interpreter *trader.Interpreter
	logger      *logrus.Logger
	password    string

	mu        sync.RWMutex
	sessionID quickfix.SessionID
	loggedOn  bool

	logonOnce sync.Once
	logonCh   chan struct{}
}

func newApp(interpreter *trader.Interpreter, password string, logger *logrus.Logger) *App {
	a := &App{
		MessageRouter: quickfix.NewMessageRouter(),
		interpreter:   interpreter,
		logger:        logger,
		password:      password,
		logonCh:       make(chan struct{}),
	}
	a.AddRoute(executionreport.Route(a.onExecutionReport))
	a.AddRoute(ordercancelreject.Route(a.onOrderCancelReject))
	return a
}

// OnCreate is called when a session is created.
func (a *App) OnCreate(sessionID quickfix.SessionID) {
	a.logger.WithField("session", sessionID.String()).Info("Session created")
}

// OnLogon marks the session ready for outbound traffic.
func (a *App) OnLogon(sessionID quickfix.SessionID) {
	a.mu.Lock()
	a.sessionID = sessionID
	a.loggedOn = true
	a.mu.Unlock()

	a.logonOnce.Do(func() { close(a.logonCh) })
	a.logger.WithField("session", sessionID.String()).Info("Logon")
}

// OnLogout is called when the session logs out.
func (a *App) OnLogout(sessionID quickfix.SessionID) {
	a.mu.Lock()
	a.loggedOn = false
	a.mu.Unlock()

	a.logger.WithField("session", sessionID.String()).Info("Logout")
}

// ToAdmin decorates outbound admin messages. Logon messages request a
// sequence number reset and carry the session credential when one is
// configured.
func (a *App) ToAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) {
	msgType, err := msg.Header.GetString(tag.MsgType)
	if err != nil || enum.MsgType(msgType) != enum.MsgType_LOGON {
		return
	}
	msg.Body.SetField(tag.ResetSeqNumFlag, quickfix.FIXBoolean(true))
	if a.password != "" {
		msg.Body.SetField(tag.RawDataLength, quickfix.FIXInt(len(a.password)))
		msg.Body.SetField(tag.RawData, quickfix.FIXString(a.password))
	}
}

// ToApp logs outbound application messages.
func (a *App) ToApp(msg *quickfix.Message, sessionID quickfix.SessionID) error {
	a.logger.WithField("message", msg.String()).Debug("ToApp")
	return nil
}

// FromAdmin ignores inbound admin messages.
func (a *App) FromAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return nil
}

// FromApp routes inbound application messages.
func (a *App) FromApp(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return a.Route(msg, sessionID)
}

// onExecutionReport translates the wire message into the
// transport-agnostic report form. Field extraction is lenient here: the
// interpreter owns per-exec-type validation and a malformed report is
// its problem to log and skip, never a session-level reject.
func (a *App) onExecutionReport(msg executionreport.ExecutionReport, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	execType, err := msg.GetExecType()
	if err != nil {
		a.logger.WithField("reason", err.Error()).Error("Execution report without ExecType, skipping")
		return nil
	}

	report := models.ExecutionReport{ExecType: execTypeFromFIX(execType)}
	if v, ferr := msg.GetClOrdID(); ferr == nil {
		report.ClOrdID = v
	}
	if msg.HasOrigClOrdID() {
		if v, ferr := msg.GetOrigClOrdID(); ferr == nil {
			report.OrigClOrdID = v
		}
	}
	if v, ferr := msg.GetSymbol(); ferr == nil {
		report.Symbol = v
	}
	if v, ferr := msg.GetSide(); ferr == nil {
		report.Side = sideFromFIX(v)
	}

	switch report.ExecType {
	case models.ExecTypeNew:
		if v, ferr := msg.GetOrderQty(); ferr == nil {
			report.OrderQty = v.IntPart()
		}
		if msg.HasPrice() {
			if v, ferr := msg.GetPrice(); ferr == nil {
				report.Price = v
				report.HasPrice = true
			}
		}
	case models.ExecTypePartialFill, models.ExecTypeFill:
		if v, ferr := msg.GetLastPx(); ferr == nil {
			report.LastPx = v
		}
		if v, ferr := msg.GetLastShares(); ferr == nil {
			report.LastQty = v.IntPart()
		}
	}

	a.interpreter.Apply(report)
	return nil
}

func (a *App) onOrderCancelReject(msg ordercancelreject.OrderCancelReject, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	report := models.ExecutionReport{ExecType: models.ExecTypeCancelReject}
	if v, ferr := msg.GetClOrdID(); ferr == nil {
		report.ClOrdID = v
	}
	if v, ferr := msg.GetOrigClOrdID(); ferr == nil {
		report.OrigClOrdID = v
	}

	a.interpreter.Apply(report)
	return nil
}

func (a *App) session() (quickfix.SessionID, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessionID, a.loggedOn
}

func (a *App) waitForLogon(ctx context.Context) error {
	select {
	case <-a.logonCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
