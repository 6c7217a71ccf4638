package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/mwalsh/fixtrader/pkg/models"
	"github.com/mwalsh/fixtrader/pkg/trader"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Server exposes the client's tracked state for observability: trading
// statistics, open positions, live orders, and a websocket trade feed.
type Server struct {
	store       *trader.OrderStore
	ledger      *trader.PositionLedger
	history     *trader.TradeHistory
	interpreter *trader.Interpreter
	logger      *logrus.Logger
	port        string
	authSecret  string
	upgrader    websocket.Upgrader
}

func NewServer(store *trader.OrderStore, ledger *trader.PositionLedger, history *trader.TradeHistory, interpreter *trader.Interpreter, logger *logrus.Logger, port, authSecret string) *Server {
	return &Server{
		store:       store,
		ledger:      ledger,
		history:     history,
		interpreter: interpreter,
		logger:      logger,
		port:        port,
		authSecret:  authSecret,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/positions", s.handlePositions)
	mux.HandleFunc("/api/orders", s.handleOrders)
	mux.HandleFunc("/api/ws/trades", s.handleTradeStream)

	handler := corsMiddleware(s.authMiddleware(mux))

	s.logger.Infof("Starting API server on port %s", s.port)
	return http.ListenAndServe(":"+s.port, handler)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates a bearer token against the configured HMAC
// secret. An empty secret leaves the API open; health stays open either
// way.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authSecret == "" || r.URL.Path == "/api/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		tokenString := strings.TrimPrefix(auth, "Bearer ")
		if tokenString == "" || tokenString == auth {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(s.authSecret), nil
		})
		if err != nil || !token.Valid {
			s.logger.WithError(err).Debug("Rejected API token")
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC(),
	}
	s.writeJSON(w, response)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := trader.ComputeStatistics(s.history.Snapshot())
	counters := s.interpreter.Counters()

	response := map[string]interface{}{
		"volume":           stats.Volume,
		"pnl":              stats.PnL,
		"vwap":             stats.VWAP,
		"total_volume":     stats.TotalVolume,
		"total_pnl":        stats.TotalPnL,
		"orders_confirmed": counters.OrdersConfirmed,
		"orders_cancelled": counters.OrdersCancelled,
		"cancel_rejects":   counters.CancelRejects,
		"report_errors":    counters.ReportErrors,
		"active_orders":    s.store.Len(),
		"trades":           s.history.Len(),
	}
	s.writeJSON(w, response)
}

type positionPayload struct {
	Symbol      string           `json:"symbol"`
	NetQuantity int64            `json:"net_quantity"`
	TotalCost   decimal.Decimal  `json:"total_cost"`
	AvgPrice    *decimal.Decimal `json:"avg_price"` // null when flat
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions := s.ledger.Snapshot()

	payload := make([]positionPayload, 0, len(positions))
	for _, p := range positions {
		entry := positionPayload{
			Symbol:      p.Symbol,
			NetQuantity: p.NetQuantity,
			TotalCost:   p.TotalCost,
		}
		if p.HasAvgPrice() {
			avg := p.AvgPrice
			entry.AvgPrice = &avg
		}
		payload = append(payload, entry)
	}
	s.writeJSON(w, payload)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.store.Snapshot())
}

// handleTradeStream pushes every new trade record over a websocket.
func (s *Server) handleTradeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Error("Failed to upgrade trade stream connection")
		return
	}
	defer conn.Close()

	trades, cancel := s.history.Subscribe()
	defer cancel()

	// Reader loop only detects the peer going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for t := range trades {
		if err := conn.WriteJSON(tradePayload(t)); err != nil {
			return
		}
	}
}

func tradePayload(t models.Trade) map[string]interface{} {
	return map[string]interface{}{
		"symbol":   t.Symbol,
		"price":    t.Price,
		"quantity": t.Quantity,
		"side":     t.Side,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}
