package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"interviews/backend/internal/config"
	"interviews/backend/internal/store"
	"interviews/backend/internal/store/memory"
	"interviews/backend/internal/store/postgres"
)

func newLogger(level string) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(level)})).With(
		slog.String("service", "interviews-server"),
	)
	slog.SetDefault(log)
	return log
}

// backend bundles whichever store the config selects.
type backend struct {
	interviews store.InterviewRepository
	apps       store.ApplicationLookup
	ping       func(ctx context.Context) error
	close      func() error
}

func openBackend(ctx context.Context, cfg config.Config, seedPath string, log *slog.Logger) (*backend, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		seed, err := loadSeed(seedPath)
		if err != nil {
			return nil, err
		}
		log.Warn("using in-memory store; data is lost on restart", slog.Int("applications", len(seed)))
		return &backend{
			interviews: memory.NewInterviewRepo(),
			apps:       memory.NewApplications(seed...),
			ping:       func(context.Context) error { return nil },
			close:      func() error { return nil },
		}, nil
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return nil, err
	}
	return &backend{
		interviews: postgres.NewInterviewRepo(db),
		apps:       postgres.NewApplicationRepo(db),
		ping:       db.PingContext,
		close:      func() error { return postgres.Close(db) },
	}, nil
}

// loadSeed reads applications for the memory store from a JSON array.
func loadSeed(path string) ([]store.Application, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var rows []struct {
		ID          string `json:"id"`
		JobID       string `json:"job_id"`
		EmployerID  string `json:"employer_id"`
		ApplicantID string `json:"applicant_id"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	apps := make([]store.Application, 0, len(rows))
	for _, r := range rows {
		apps = append(apps, store.Application{ID: r.ID, JobID: r.JobID, EmployerID: r.EmployerID, ApplicantID: r.ApplicantID})
	}
	return apps, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
