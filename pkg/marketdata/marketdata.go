package marketdata

import (
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
	"github.com/shopspring/decimal"
)

type Trade struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Size      uint32    `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

// Quote converts the trade into the latest-price record kept by the price store.
func (t Trade) Quote() trading.PriceQuote {
	return trading.PriceQuote{
		Symbol:    t.Symbol,
		Price:     decimal.NewFromFloat(t.Price),
		Timestamp: t.Timestamp.UTC(),
	}
}
