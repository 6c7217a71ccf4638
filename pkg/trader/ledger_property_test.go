package trader

import (
	"testing"

	"github.com/mwalsh/fixtrader/pkg/models"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// For any trade sequence, the average price is defined exactly when the
// net quantity is non-zero, and is never negative.
func TestProperty_AvgPriceDefinedIffNonZeroPosition(t *testing.T) {
	sides := []models.OrderSide{
		models.OrderSideBuy,
		models.OrderSideSell,
		models.OrderSideSellShort,
	}

	rapid.Check(t, func(t *rapid.T) {
		l := NewPositionLedger()
		trades := rapid.IntRange(1, 30).Draw(t, "trades")

		var net int64
		for i := 0; i < trades; i++ {
			side := sides[rapid.IntRange(0, 2).Draw(t, "side")]
			qty := rapid.Int64Range(1, 100).Draw(t, "qty")
			cents := rapid.Int64Range(1, 50_000).Draw(t, "cents")
			px := decimal.New(cents, -2)

			l.ApplyTrade("SYM", px, qty, side)
			if side == models.OrderSideBuy {
				net += qty
			} else {
				net -= qty
			}

			p, ok := l.Position("SYM")
			if !ok {
				t.Fatalf("position missing after trade %d", i)
			}
			if p.NetQuantity != net {
				t.Fatalf("net quantity %d, want %d", p.NetQuantity, net)
			}
			if p.HasAvgPrice() != (net != 0) {
				t.Fatalf("avg price defined=%v with net=%d", p.HasAvgPrice(), net)
			}
			if p.HasAvgPrice() && p.AvgPrice.IsNegative() {
				t.Fatalf("negative avg price %s", p.AvgPrice)
			}
		}
	})
}
