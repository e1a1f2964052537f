// Package http exposes the JSON API: authentication, account management,
// expense tracking and budget summaries.
package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"budget/internal/auth"
	applog "budget/internal/log"
	"budget/internal/services"

	"github.com/google/uuid"
)

type Server struct {
	http.Server
	users       *services.UserService
	expenses    *services.ExpenseService
	tokens      *auth.TokenIssuer
	rateLimiter *rateLimiter
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, users *services.UserService, expenses *services.ExpenseService, tokens *auth.TokenIssuer, rateLimitPerMinute int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		users:       users,
		expenses:    expenses,
		tokens:      tokens,
		rateLimiter: newRateLimiter(rateLimitPerMinute),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Open endpoints: registration and login.
	mux.HandleFunc("POST /api/v1/auth/login", s.wrap(s.handleLoginForm))
	mux.HandleFunc("POST /api/v1/auth/login-json", s.wrap(s.handleLoginJSON))
	mux.HandleFunc("POST /api/v1/auth/refresh", s.wrap(s.handleRefresh))
	mux.HandleFunc("POST /api/v1/users/{$}", s.wrap(s.handleRegister))

	// Everything below requires a bearer token.
	mux.HandleFunc("GET /api/v1/users/me/profile", s.wrap(s.requireAuth(s.handleProfile)))
	mux.HandleFunc("GET /api/v1/users/{user_id}", s.wrap(s.requireAuth(s.handleGetUser)))
	mux.HandleFunc("PUT /api/v1/users/{user_id}", s.wrap(s.requireAuth(s.handleUpdateUser)))
	mux.HandleFunc("DELETE /api/v1/users/{user_id}", s.wrap(s.requireAuth(s.handleDeleteUser)))

	mux.HandleFunc("POST /api/v1/expenses/{$}", s.wrap(s.requireAuth(s.handleCreateExpense)))
	mux.HandleFunc("GET /api/v1/expenses/{user_id}", s.wrap(s.requireAuth(s.handleListExpenses)))
	mux.HandleFunc("GET /api/v1/expenses/detail/{expense_id}", s.wrap(s.requireAuth(s.handleGetExpense)))
	mux.HandleFunc("PUT /api/v1/expenses/{expense_id}", s.wrap(s.requireAuth(s.handleUpdateExpense)))
	mux.HandleFunc("DELETE /api/v1/expenses/{expense_id}", s.wrap(s.requireAuth(s.handleDeleteExpense)))
	mux.HandleFunc("GET /api/v1/expenses/totals/{user_id}", s.wrap(s.requireAuth(s.handleSummary)))

	return s
}

// wrap adds request tracing, security headers, rate limiting and request
// logging around a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := uuid.NewString()
		logger := applog.FromContext(r.Context()).
			WithComponent(applog.ComponentHTTP).
			With(applog.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), applog.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		logger.InfoContext(ctx, "Request started", applog.NewFields().
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
			WithClientIP(clientIP).
			ToSlice()...)

		// Mutating requests count against the per-client budget.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Detail: "Rate limit exceeded. Please try again later."})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.InfoContext(ctx, "Request completed", applog.NewFields().
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
			WithHTTPResponse(rw.statusCode, time.Since(start).Milliseconds()).
			WithClientIP(clientIP).
			ToSlice()...)
	}
}

// authedHandler receives the authenticated user ID alongside the request.
type authedHandler func(w http.ResponseWriter, r *http.Request, principalID int64)

// requireAuth validates the bearer token and injects the principal.
func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "Not authenticated"})
			return
		}

		principalID, err := s.tokens.VerifyAccessToken(token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "Invalid or expired token"})
			return
		}

		next(w, r, principalID)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown stops the rate limiter cleanup goroutine and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.stop()
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
