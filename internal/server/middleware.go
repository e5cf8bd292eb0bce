package server

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/memgraph-query/mcp/internal/auth"
	"github.com/memgraph-query/mcp/internal/config"
	"github.com/memgraph-query/mcp/internal/logger"
)

const (
	corsMaxAgeSeconds = "86400" // 24 hours
	requestIDHeader   = "X-Request-ID"
)

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned by the logging middleware, or
// an empty string outside an HTTP request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// chainMiddleware chains together all HTTP middleware
func chainMiddleware(cfg *config.Config, log *logger.Service, next http.Handler) http.Handler {
	// Execution order: PathValidator -> CORS -> RateLimit -> Credentials -> Logging -> Handler
	handler := next

	handler = loggingMiddleware(log)(handler)
	handler = credentialsMiddleware()(handler)
	if cfg.RateLimit > 0 {
		handler = rateLimitMiddleware(newRateLimiter(cfg.RateLimit, cfg.RateBurst))(handler)
	}
	handler = corsMiddleware(cfg.AllowedOrigins())(handler)
	handler = pathValidationMiddleware(cfg.HTTPPath)(handler)

	return handler
}

// credentialsMiddleware stores HTTP Basic Auth credentials, when present, in
// the request context. Tool calls without explicit credentials use them.
// Requests without credentials are let through: Memgraph often runs without
// authentication.
func credentialsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := auth.WithCredentials(r.Context(), auth.Credentials{Username: user, Password: pass})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// corsMiddleware implements CORS (Cross-Origin Resource Sharing)
// If allowedOrigins is empty, CORS is disabled
// If allowedOrigins contains "*", all origins are allowed
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowedOrigins) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")

			if slices.Contains(allowedOrigins, "*") {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin != "" && slices.Contains(allowedOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Mcp-Session-Id, Mcp-Protocol-Version")
			w.Header().Set("Access-Control-Expose-Headers", "Mcp-Session-Id, "+requestIDHeader)
			w.Header().Set("Access-Control-Max-Age", corsMaxAgeSeconds)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// pathValidationMiddleware answers 404 for every path but the MCP endpoint
func pathValidationMiddleware(path string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != path {
				http.Error(w, "Not Found: This server only handles requests to "+path, http.StatusNotFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware assigns a request id, echoes it in X-Request-ID and logs
// the request once it completes. An incoming X-Request-ID is kept.
func loggingMiddleware(log *logger.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			log.DebugContext(ctx, "HTTP Request",
				"request_id", id,
				"method", r.Method,
				"url", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"content_length", r.ContentLength,
			)
		})
	}
}

// statusRecorder captures the response status. It forwards Flush so that
// streamed responses keep working.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
