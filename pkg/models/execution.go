package models

import "github.com/shopspring/decimal"

// ExecType is the closed set of execution report classifications the
// client acts on. Anything the counterparty sends outside this set maps
// to ExecTypeOther and is recorded for observability only.
type ExecType int

const (
	ExecTypeOther ExecType = iota
	ExecTypeNew
	ExecTypePartialFill
	ExecTypeFill
	ExecTypeCanceled
	ExecTypeCancelReject
)

func (t ExecType) String() string {
	switch t {
	case ExecTypeNew:
		return "new"
	case ExecTypePartialFill:
		return "partial_fill"
	case ExecTypeFill:
		return "fill"
	case ExecTypeCanceled:
		return "canceled"
	case ExecTypeCancelReject:
		return "cancel_reject"
	default:
		return "other"
	}
}

// ExecutionReport is the transport-agnostic form of a counterparty
// execution report. Which fields are meaningful depends on ExecType;
// the interpreter validates per-type requirements.
type ExecutionReport struct {
	ExecType    ExecType
	ClOrdID     string
	OrigClOrdID string
	Symbol      string
	Side        OrderSide

	// NEW acknowledgements.
	OrderQty int64
	Price    decimal.Decimal
	HasPrice bool // market orders may be acknowledged without a price

	// Fills.
	LastPx  decimal.Decimal
	LastQty int64
}
