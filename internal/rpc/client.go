package rpc

import (
	"context"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client is a typed client for the trading service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial creates a plaintext connection to target. Options override the
// defaults.
func Dial(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)
	return grpc.NewClient(target, opts...)
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *Client) GetStockPrice(ctx context.Context, symbol string, opts ...grpc.CallOption) (trading.PriceQuote, error) {
	var quote trading.PriceQuote
	req := &trading.StockRequest{Symbol: symbol}
	if err := c.cc.Invoke(ctx, MethodGetStockPrice, req, &quote, callOptions(opts)...); err != nil {
		return trading.PriceQuote{}, err
	}
	return quote, nil
}

type QuoteSubscription struct {
	grpc.ClientStream
}

// Recv returns io.EOF after the last quote.
func (s *QuoteSubscription) Recv() (trading.PriceQuote, error) {
	var quote trading.PriceQuote
	if err := s.RecvMsg(&quote); err != nil {
		return trading.PriceQuote{}, err
	}
	return quote, nil
}

func (c *Client) SubscribeStockPrice(ctx context.Context, symbol string, opts ...grpc.CallOption) (*QuoteSubscription, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], MethodSubscribeStockPrice, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&trading.StockRequest{Symbol: symbol}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &QuoteSubscription{stream}, nil
}

type BulkOrderStream struct {
	grpc.ClientStream
}

func (s *BulkOrderStream) Send(order trading.Order) error {
	return s.SendMsg(&order)
}

// CloseAndRecv ends the order stream and waits for the summary.
func (s *BulkOrderStream) CloseAndRecv() (trading.OrderSummary, error) {
	if err := s.CloseSend(); err != nil {
		return trading.OrderSummary{}, err
	}
	var summary trading.OrderSummary
	if err := s.RecvMsg(&summary); err != nil {
		return trading.OrderSummary{}, err
	}
	return summary, nil
}

func (c *Client) BulkStockOrder(ctx context.Context, opts ...grpc.CallOption) (*BulkOrderStream, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[1], MethodBulkStockOrder, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return &BulkOrderStream{stream}, nil
}

// LiveTradingStream is full duplex: Send and Recv may be used from
// different goroutines.
type LiveTradingStream struct {
	grpc.ClientStream
}

func (s *LiveTradingStream) Send(order trading.Order) error {
	return s.SendMsg(&order)
}

func (s *LiveTradingStream) Recv() (trading.TradeStatus, error) {
	var status trading.TradeStatus
	if err := s.RecvMsg(&status); err != nil {
		return trading.TradeStatus{}, err
	}
	return status, nil
}

func (c *Client) LiveTrading(ctx context.Context, opts ...grpc.CallOption) (*LiveTradingStream, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[2], MethodLiveTrading, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return &LiveTradingStream{stream}, nil
}
