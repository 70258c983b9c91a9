package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"interviews/backend/internal/auth"
	"interviews/backend/internal/config"
	"interviews/backend/internal/notify"
	"interviews/backend/internal/service/interviews"
	"interviews/backend/internal/store/redisconn"
	grpcTransport "interviews/backend/internal/transport/grpc"
	"interviews/backend/internal/transport/rest"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API and the operator gRPC server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		newLogger("info").Error("config load failed", slog.Any("err", err))
		return err
	}
	log := newLogger(cfg.LogLevel)
	log.Info("starting",
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("log_level", cfg.LogLevel),
	)

	tokens, err := auth.NewTokens(cfg.JWTSecret)
	if err != nil {
		log.Error("auth setup failed", slog.Any("err", err))
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg, seedPath, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.close(); err != nil {
			log.Warn("store close failed", slog.Any("err", err))
		}
	}()

	var publisher notify.Publisher = notify.LogPublisher{Logger: log}
	var limiter rest.Limiter = rest.NewMemoryLimiter()
	if cfg.RedisURL != "" {
		rdb, err := redisconn.Open(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("redis connection failed", slog.Any("err", err))
			return err
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn("redis close failed", slog.Any("err", err))
			}
		}()
		publisher = notify.NewRedisPublisher(rdb, cfg.NotifyChannel)
		limiter = rest.NewRedisLimiter(rdb)
		log.Info("redis enabled", slog.String("notify_channel", cfg.NotifyChannel))
	} else {
		log.Info("redis disabled; events are logged and rate limits are per instance")
	}
	notifier := notify.NewAsync(publisher, cfg.NotifyQueueSize, cfg.NotifyPublishTimeout, log)

	svc := interviews.NewService(be.interviews, be.apps, notifier, interviews.WithLogger(log))

	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: rest.NewRouter(rest.RouterConfig{
			AllowedOrigins: cfg.AllowedOrigins,
			RequestTimeout: cfg.HTTPRequestTimeout,
			RateLimit:      cfg.RateLimit,
			RateWindow:     cfg.RateWindow,
		}, rest.Deps{
			Interviews: rest.NewInterviewsHandler(svc, log),
			Tokens:     tokens,
			Limiter:    limiter,
			Health:     be.ping,
			Log:        log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer, healthServer := grpcTransport.NewServer(grpcTransport.NewOpsServer(svc, log), tokens, cfg.GRPCRequestTimeout, log)
	if err := be.ping(ctx); err != nil {
		log.Warn("store not reachable yet; grpc health stays NOT_SERVING", slog.Any("err", err))
	} else {
		grpcTransport.MarkServing(healthServer)
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("grpc server started", slog.String("grpc_addr", cfg.GRPCAddr()))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")
		shutdown(log, httpServer, grpcServer, cfg.ShutdownTimeout)
		return nil
	})

	err = g.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if cerr := notifier.Close(drainCtx); cerr != nil {
		log.Warn("notifier drain incomplete", slog.Any("err", cerr))
	}

	if err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
		return err
	}
	log.Info("stopped")
	return nil
}

func shutdown(log *slog.Logger, httpServer *http.Server, grpcServer *grpc.Server, timeout time.Duration) {
	log.Info("shutting down servers", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed", slog.Any("err", err))
	}

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-ctx.Done():
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		grpcServer.Stop()
	}
}
