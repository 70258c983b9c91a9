package rest

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"interviews/backend/internal/auth"
)

type TokenVerifier interface {
	Verify(token string) (auth.Actor, error)
}

// Authenticate resolves the bearer token into an auth.Actor on the request context.
func Authenticate(tokens TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "Missing bearer token.")
				return
			}
			actor, err := tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				log.Info("token rejected", slog.Any("err", err))
				writeError(w, http.StatusUnauthorized, "unauthenticated", "Invalid or expired token.")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

// RequestLogger logs one line per request after it completes.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			}
			if ww.Status() >= http.StatusInternalServerError {
				log.Error("http request", attrs...)
				return
			}
			log.Debug("http request", attrs...)
		})
	}
}

type Limiter interface {
	Allow(key string, limit int, window time.Duration) bool
}

// MemoryLimiter is a fixed-window counter for single-instance deployments.
// Expired buckets are swept at most once per window.
type MemoryLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*rateBucket
	nextSweep time.Time
	now       func() time.Time
}

type rateBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*rateBucket), now: time.Now}
}

func (l *MemoryLimiter) Allow(key string, limit int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextSweep) {
		l.sweep(now)
		l.nextSweep = now.Add(window)
	}
	b, ok := l.buckets[key]
	if !ok || now.After(b.windowEnd) {
		l.buckets[key] = &rateBucket{count: 1, windowEnd: now.Add(window)}
		return true
	}
	if b.count >= limit {
		return false
	}
	b.count++
	return true
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.After(b.windowEnd) {
			delete(l.buckets, key)
		}
	}
}

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter shares one fixed window across instances. It fails open when Redis
// cannot answer in time.
type RedisLimiter struct {
	client redis.UniversalClient
	script *redis.Script
	prefix string
}

func NewRedisLimiter(client redis.UniversalClient) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
		prefix: "interviews:ratelimit:",
	}
}

func (l *RedisLimiter) Allow(key string, limit int, window time.Duration) bool {
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{l.prefix + key}, ttl, limit).Int64()
	if err != nil {
		return true
	}
	return allowed == 1
}

// RateLimit throttles per actor, falling back to the client address.
func RateLimit(limiter Limiter, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 || window <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			key := "ip:" + clientIP(r)
			if actor, ok := auth.ActorFrom(r.Context()); ok {
				key = "actor:" + actor.ID
			}
			if !limiter.Allow(key, limit, window) {
				w.Header().Set("Retry-After", retryAfter(window))
				writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests. Slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfter(window time.Duration) string {
	secs := int(window.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
