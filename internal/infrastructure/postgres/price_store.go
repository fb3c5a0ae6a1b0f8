package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Stock is a row of the stocks table: one latest price per symbol.
type Stock struct {
	ID          uint            `gorm:"primaryKey"`
	StockSymbol string          `gorm:"column:stock_symbol;uniqueIndex;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric;not null"`
	LastUpdated time.Time       `gorm:"column:last_updated"`
}

func (Stock) TableName() string {
	return "stocks"
}

func (s Stock) Quote() trading.PriceQuote {
	return trading.PriceQuote{
		Symbol:    s.StockSymbol,
		Price:     s.Price,
		Timestamp: s.LastUpdated.UTC(),
	}
}

func stockFromQuote(q trading.PriceQuote) Stock {
	return Stock{
		StockSymbol: q.Symbol,
		Price:       q.Price,
		LastUpdated: q.Timestamp.UTC(),
	}
}

type PriceStore struct {
	db *gorm.DB
}

// Open connects to dsn and makes sure the stocks table exists.
func Open(ctx context.Context, dsn string) (*PriceStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	store := NewPriceStore(db)
	if err := db.WithContext(ctx).AutoMigrate(&Stock{}); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate stocks table: %w", err)
	}
	return store, nil
}

func NewPriceStore(db *gorm.DB) *PriceStore {
	return &PriceStore{db: db}
}

func (p *PriceStore) FindBySymbol(ctx context.Context, symbol string) (trading.PriceQuote, bool, error) {
	var stock Stock
	err := p.db.WithContext(ctx).Where("stock_symbol = ?", symbol).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return trading.PriceQuote{}, false, nil
	}
	if err != nil {
		return trading.PriceQuote{}, false, err
	}
	return stock.Quote(), true, nil
}

// SaveQuote upserts the row of the quote's symbol.
func (p *PriceStore) SaveQuote(ctx context.Context, quote trading.PriceQuote) error {
	stock := stockFromQuote(quote)
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stock_symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "last_updated"}),
	}).Create(&stock).Error
}

func (p *PriceStore) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (p *PriceStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
