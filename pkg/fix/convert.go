package fix

import (
	"github.com/mwalsh/fixtrader/pkg/models"
	"github.com/quickfixgo/enum"
)

func sideToFIX(s models.OrderSide) enum.Side {
	switch s {
	case models.OrderSideSell:
		return enum.Side_SELL
	case models.OrderSideSellShort:
		return enum.Side_SELL_SHORT
	default:
		return enum.Side_BUY
	}
}

func sideFromFIX(v enum.Side) models.OrderSide {
	switch v {
	case enum.Side_BUY:
		return models.OrderSideBuy
	case enum.Side_SELL:
		return models.OrderSideSell
	case enum.Side_SELL_SHORT:
		return models.OrderSideSellShort
	default:
		return ""
	}
}

func ordTypeToFIX(t models.OrderType) enum.OrdType {
	if t == models.OrderTypeLimit {
		return enum.OrdType_LIMIT
	}
	return enum.OrdType_MARKET
}

func execTypeFromFIX(v enum.ExecType) models.ExecType {
	switch v {
	case enum.ExecType_NEW:
		return models.ExecTypeNew
	case enum.ExecType_PARTIAL_FILL:
		return models.ExecTypePartialFill
	case enum.ExecType_FILL:
		return models.ExecTypeFill
	case enum.ExecType_CANCELED:
		return models.ExecTypeCanceled
	default:
		return models.ExecTypeOther
	}
}
