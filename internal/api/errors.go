package api

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/matheus3301/wppsim/internal/calls"
	"github.com/matheus3301/wppsim/internal/interact"
	"github.com/matheus3301/wppsim/internal/outbox"
	"github.com/matheus3301/wppsim/internal/roster"
)

// toStatus maps a domain error onto a gRPC status. The message is the
// error text so clients can show it verbatim.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := grpcstatus.FromError(err); ok {
		return err
	}
	code := codes.Internal
	switch {
	case roster.IsNotFound(err), errors.Is(err, calls.ErrCallNotFound):
		code = codes.NotFound
	case errors.Is(err, outbox.ErrBlocked), errors.Is(err, calls.ErrBlocked),
		errors.Is(err, calls.ErrCallInProgress),
		errors.Is(err, roster.ErrConfirmationRequired),
		errors.Is(err, interact.ErrMessageDeleted):
		code = codes.FailedPrecondition
	case errors.Is(err, roster.ErrPINRequired), errors.Is(err, roster.ErrPINMismatch),
		errors.Is(err, interact.ErrNotOwner):
		code = codes.PermissionDenied
	case errors.Is(err, roster.ErrInvalidArgument), errors.Is(err, roster.ErrInvalidFolder),
		errors.Is(err, interact.ErrEmptyContent), errors.Is(err, interact.ErrNotPoll),
		errors.Is(err, interact.ErrOptionNotFound):
		code = codes.InvalidArgument
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}
	return grpcstatus.Error(code, err.Error())
}

// UnaryErrors converts handler errors to status codes and logs internal ones.
func UnaryErrors(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		st := toStatus(err)
		if grpcstatus.Code(st) == codes.Internal {
			logger.Error("rpc failed", zap.String("method", info.FullMethod), zap.Error(err))
		} else {
			logger.Debug("rpc rejected", zap.String("method", info.FullMethod), zap.Error(err))
		}
		return nil, st
	}
}

// StreamErrors is the streaming counterpart of UnaryErrors.
func StreamErrors(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		err := handler(srv, ss)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("stream ended with error", zap.String("method", info.FullMethod), zap.Error(err))
		}
		return toStatus(err)
	}
}
