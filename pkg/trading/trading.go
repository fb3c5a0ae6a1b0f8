package trading

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type Status string

const (
	StatusExecuted Status = "EXECUTED"
	StatusRejected Status = "REJECTED"
)

// StockRequest is the request of the unary lookup and the price subscription.
type StockRequest struct {
	Symbol string `json:"stock_symbol"`
}

type PriceQuote struct {
	Symbol    string          `json:"stock_symbol"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// Order is created by the caller and never modified by the server.
type Order struct {
	OrderID  string          `json:"order_id"`
	Symbol   string          `json:"stock_symbol"`
	Side     Side            `json:"order_type"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// Amount is price multiplied by quantity.
func (o Order) Amount() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Quantity))
}

type OrderSummary struct {
	TotalOrders  int             `json:"total_orders"`
	SuccessCount int             `json:"success_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

type TradeStatus struct {
	OrderID   string    `json:"order_id"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
