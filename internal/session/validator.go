package session

import "github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"

const (
	MessageExecuted        = "Order Executed Successfully"
	MessageInvalidQuantity = "Quantity should be greater than 0"
)

type Verdict struct {
	Accepted bool
	Status   trading.Status
	Message  string
}

// Validate decides whether an order is executed. Only the quantity is checked.
func Validate(order trading.Order) Verdict {
	if order.Quantity <= 0 {
		return Verdict{Status: trading.StatusRejected, Message: MessageInvalidQuantity}
	}
	return Verdict{Accepted: true, Status: trading.StatusExecuted, Message: MessageExecuted}
}
