package trading

import "time"

type EventType string

const (
	EventTradeStatus  EventType = "trade_status"
	EventOrderSummary EventType = "order_summary"
)

// Event is the audit record published for every verdict and summary the
// service hands out. Exactly one of TradeStatus and OrderSummary is set.
type Event struct {
	Type         EventType     `json:"type"`
	SessionID    string        `json:"session_id"`
	TradeStatus  *TradeStatus  `json:"trade_status,omitempty"`
	OrderSummary *OrderSummary `json:"order_summary,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Key is used for partitioning, so all events of one session stay ordered.
func (e Event) Key() string {
	return e.SessionID
}
