package rpc

import (
	"context"
	"errors"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/session"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps session errors onto grpc status codes. Errors that already
// carry a status, such as a broken transport surfaced by Recv, keep it.
func toStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, session.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, session.ErrInvalidSymbol):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}

	if st, ok := status.FromError(err); ok {
		return st.Err()
	}
	if ctx.Err() != nil {
		return status.FromContextError(ctx.Err()).Err()
	}
	return status.Error(codes.Internal, err.Error())
}
