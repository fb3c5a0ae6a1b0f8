package rpc

import (
	"context"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/session"
	"github.com/matevzStinjek/distributed-trading-system/stock-trading/pkg/trading"
	"google.golang.org/grpc"
)

const (
	ServiceName = "trading.v1.StockTradingService"

	MethodGetStockPrice       = "/" + ServiceName + "/" + session.RPCGetPrice
	MethodSubscribeStockPrice = "/" + ServiceName + "/" + session.RPCSubscribePrice
	MethodBulkStockOrder      = "/" + ServiceName + "/" + session.RPCBulkOrder
	MethodLiveTrading         = "/" + ServiceName + "/" + session.RPCLiveTrading
)

// TradingServer is the server API of the stock trading service.
type TradingServer interface {
	GetStockPrice(context.Context, *trading.StockRequest) (*trading.PriceQuote, error)
	SubscribeStockPrice(*trading.StockRequest, session.QuoteStream) error
	BulkStockOrder(session.SummaryStream) error
	LiveTrading(session.TradeStream) error
}

func RegisterTradingServer(s grpc.ServiceRegistrar, srv TradingServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the four rpcs. Index positions in Streams are used by
// the client.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TradingServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: session.RPCGetPrice,
			Handler:    getStockPriceHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    session.RPCSubscribePrice,
			Handler:       subscribeStockPriceHandler,
			ServerStreams: true,
		},
		{
			StreamName:    session.RPCBulkOrder,
			Handler:       bulkStockOrderHandler,
			ClientStreams: true,
		},
		{
			StreamName:    session.RPCLiveTrading,
			Handler:       liveTradingHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "trading/v1/trading",
}

func getStockPriceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(trading.StockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TradingServer).GetStockPrice(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodGetStockPrice,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TradingServer).GetStockPrice(ctx, req.(*trading.StockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func subscribeStockPriceHandler(srv any, stream grpc.ServerStream) error {
	in := new(trading.StockRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(TradingServer).SubscribeStockPrice(in, &quoteServerStream{stream})
}

func bulkStockOrderHandler(srv any, stream grpc.ServerStream) error {
	return srv.(TradingServer).BulkStockOrder(&summaryServerStream{orderServerStream{stream}})
}

func liveTradingHandler(srv any, stream grpc.ServerStream) error {
	return srv.(TradingServer).LiveTrading(&tradeServerStream{orderServerStream{stream}})
}

type quoteServerStream struct {
	grpc.ServerStream
}

func (s *quoteServerStream) Send(quote trading.PriceQuote) error {
	return s.SendMsg(&quote)
}

type orderServerStream struct {
	grpc.ServerStream
}

// Recv returns io.EOF once the client has closed its send side.
func (s *orderServerStream) Recv() (trading.Order, error) {
	var order trading.Order
	if err := s.RecvMsg(&order); err != nil {
		return trading.Order{}, err
	}
	return order, nil
}

type summaryServerStream struct {
	orderServerStream
}

func (s *summaryServerStream) SendAndClose(summary trading.OrderSummary) error {
	return s.SendMsg(&summary)
}

type tradeServerStream struct {
	orderServerStream
}

func (s *tradeServerStream) Send(status trading.TradeStatus) error {
	return s.SendMsg(&status)
}
