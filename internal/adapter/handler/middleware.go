package handler

import (
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RequestID tags the request with X-Request-Id, generating one if absent.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

// Recovery returns middleware that recovers from panics, logs the error
// with a stack trace, and responds with 500 Internal Server Error.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "panic recovered",
						slog.Any("error", err),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog logs each request with method, path, status, duration, request
// id and, when authenticated, the caller.
func AccessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", RequestIDFromCtx(r.Context())),
			}
			if caller, ok := sw.caller(); ok {
				attrs = append(attrs, slog.String("caller", caller))
			}

			level := slog.LevelInfo
			if sw.status >= 500 {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "http.request", attrs...)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	callerAddr  string
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) caller() (string, bool) {
	return w.callerAddr, w.callerAddr != ""
}

// Auth resolves the bearer token into the caller address. Requests without a
// token pass through anonymously; an invalid token is rejected with 401.
func Auth(validator tokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			caller, err := validator.Validate(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthenticated", Message: "invalid token"})
				return
			}

			if sw, ok := w.(*statusWriter); ok {
				sw.callerAddr = caller.String()
			}
			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
		})
	}
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RateLimiter keeps one token bucket per client, dropped after a period of
// inactivity.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	limiters *cache.Cache
}

func NewRateLimiter(rps float64, burst int, idle time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: cache.New(idle, 2*idle),
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	var l *rate.Limiter
	if v, ok := rl.limiters.Get(key); ok {
		l = v.(*rate.Limiter)
	} else {
		l = rate.NewLimiter(rl.limit, rl.burst)
	}
	rl.limiters.SetDefault(key, l)
	return l.Allow()
}

// Limit rejects requests over the per-client rate with 429. Clients are keyed
// by caller address when authenticated, by remote host otherwise.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := callerFrom(r.Context())
		client := key.String()
		if err != nil {
			client = remoteHost(r.RemoteAddr)
		}

		if !rl.Allow(client) {
			retryAfter := 1
			if rl.limit > 0 {
				retryAfter = int(1/float64(rl.limit)) + 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "RateLimited", Message: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
