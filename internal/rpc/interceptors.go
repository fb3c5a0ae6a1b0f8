package rpc

import (
	"context"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func UnaryLoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(log, info.FullMethod, start, err)
		return resp, err
	}
}

func StreamLoggingInterceptor(log *logger.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		logCall(log, info.FullMethod, start, err)
		return err
	}
}

func logCall(log *logger.Logger, method string, start time.Time, err error) {
	code := status.Code(err)
	fields := []logger.Field{
		logger.String("method", method),
		logger.String("code", code.String()),
		logger.Duration("duration", time.Since(start)),
	}

	switch code {
	case codes.OK, codes.Canceled:
		log.Debug("rpc finished", fields...)
	case codes.NotFound, codes.InvalidArgument, codes.DeadlineExceeded:
		log.Info("rpc finished", append(fields, logger.Error(err))...)
	default:
		log.Error("rpc failed", append(fields, logger.Error(err))...)
	}
}
