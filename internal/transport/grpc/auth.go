package grpc

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"interviews/backend/internal/auth"
)

const authorizationMetadata = "authorization"

type TokenVerifier interface {
	Verify(token string) (auth.Actor, error)
}

// authInterceptor admits ops calls carrying an admin bearer token. Health checks
// and any other service pass through untouched.
func authInterceptor(tokens TokenVerifier, log *slog.Logger) grpc.UnaryServerInterceptor {
	opsPrefix := "/" + opsServiceName + "/"
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !strings.HasPrefix(info.FullMethod, opsPrefix) {
			return handler(ctx, req)
		}

		token := bearerFromMetadata(ctx)
		if token == "" {
			log.Warn("unauthenticated", slog.String("method", info.FullMethod), slog.String("reason", "missing_token"))
			return nil, status.Error(codes.Unauthenticated, "bearer token is required")
		}
		actor, err := tokens.Verify(token)
		if err != nil {
			log.Warn("unauthenticated", slog.String("method", info.FullMethod), slog.String("reason", "invalid_token"))
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}
		if !actor.IsAdmin() {
			log.Warn("forbidden", slog.String("method", info.FullMethod), slog.String("actor_id", actor.ID))
			return nil, status.Error(codes.PermissionDenied, "admin role required")
		}
		return handler(auth.WithActor(ctx, actor), req)
	}
}

func bearerFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(authorizationMetadata)
	if len(values) == 0 {
		return ""
	}
	token, ok := strings.CutPrefix(strings.TrimSpace(values[0]), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
