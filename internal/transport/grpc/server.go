package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// NewServer builds the gRPC server with the ops service and the standard health
// service registered. Ops calls need an admin bearer token checked by tokens.
// The health status starts NOT_SERVING; call MarkServing once the store answers.
func NewServer(ops InterviewOpsServer, tokens TokenVerifier, requestTimeout time.Duration, log *slog.Logger) (*grpc.Server, *health.Server) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "grpc"))
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		timeoutInterceptor(requestTimeout),
		loggingInterceptor(log),
		authInterceptor(tokens, log),
	))

	RegisterInterviewOpsServer(srv, ops)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(opsServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}

func MarkServing(hs *health.Server) {
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(opsServiceName, healthpb.HealthCheckResponse_SERVING)
}

func timeoutInterceptor(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if d <= 0 {
			return handler(ctx, req)
		}
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return handler(ctx, req)
	}
}

func loggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("rpc finished",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}
