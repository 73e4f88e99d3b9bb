package httpapi

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/assistant"
	"catatkas/backend/internal/logger"
	"catatkas/backend/internal/service"
	"catatkas/backend/internal/xid"
)

const (
	maxJSONBody   = 1 << 20
	maxBackupBody = 32 << 20
)

type API struct {
	service       *service.Service
	assistant     *assistant.Executor
	auth          *AuthManager
	log           *logger.Logger
	allowedOrigin string
	loginLimiter  *attemptLimiter
	csrfSecret    []byte
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string, log *logger.Logger) *API {
	if log == nil {
		log = logger.Default()
	}
	csrfSecret := make([]byte, 32)
	if _, err := rand.Read(csrfSecret); err != nil {
		csrfSecret = []byte("csrf-fallback-secret-change-me!!")
	}
	return &API{
		service:       svc,
		assistant:     assistant.NewExecutor(svc),
		auth:          auth,
		log:           log.WithComponent("http"),
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		csrfSecret:    csrfSecret,
	}
}

// csrfTokenForHour is an HMAC of the hour bucket, hex encoded.
func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

func (a *API) generateCSRFToken() string {
	return a.csrfTokenForHour(time.Now().UTC().Truncate(time.Hour).Unix())
}

// validateCSRFToken accepts the current and the previous hour's token.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	current := time.Now().UTC().Truncate(time.Hour).Unix()
	return hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(current))) ||
		hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(current-3600)))
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", a.handleHealth)
	mux.HandleFunc("POST /api/v1/auth/register", a.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", a.handleLogin)
	mux.HandleFunc("GET /api/v1/auth/csrf-token", a.handleCSRFToken)

	mux.HandleFunc("GET /api/v1/products", a.requireAuth(a.handleListProducts))
	mux.HandleFunc("POST /api/v1/products", a.requireAuth(a.handleCreateProduct))
	mux.HandleFunc("GET /api/v1/products/{id}", a.requireAuth(a.handleGetProduct))
	mux.HandleFunc("PATCH /api/v1/products/{id}", a.requireAuth(a.handleUpdateProduct))
	mux.HandleFunc("DELETE /api/v1/products/{id}", a.requireAuth(a.handleDeleteProduct))
	mux.HandleFunc("POST /api/v1/products/{id}/adjust-stock", a.requireAuth(a.handleAdjustStock))

	mux.HandleFunc("GET /api/v1/stock-in", a.requireAuth(a.handleListStockIns))
	mux.HandleFunc("POST /api/v1/stock-in", a.requireAuth(a.handleCreateStockIn))
	mux.HandleFunc("DELETE /api/v1/stock-in/{id}", a.requireAuth(a.handleDeleteStockIn))

	mux.HandleFunc("GET /api/v1/sales", a.requireAuth(a.handleListSales))
	mux.HandleFunc("POST /api/v1/sales", a.requireAuth(a.handleCreateSale))
	mux.HandleFunc("GET /api/v1/sales/{id}", a.requireAuth(a.handleGetSale))
	mux.HandleFunc("PUT /api/v1/sales/{id}", a.requireAuth(a.handleUpdateSale))
	mux.HandleFunc("DELETE /api/v1/sales/{id}", a.requireAuth(a.handleDeleteSale))
	mux.HandleFunc("POST /api/v1/sales/{id}/payments", a.requireAuth(a.handleAddPayment))
	mux.HandleFunc("PUT /api/v1/sales/{id}/payments/{index}", a.requireAuth(a.handleEditPayment))
	mux.HandleFunc("DELETE /api/v1/sales/{id}/payments/{index}", a.requireAuth(a.handleDeletePayment))

	mux.HandleFunc("GET /api/v1/contacts", a.requireAuth(a.handleListContacts))
	mux.HandleFunc("POST /api/v1/contacts", a.requireAuth(a.handleCreateContact))
	mux.HandleFunc("PATCH /api/v1/contacts/{id}", a.requireAuth(a.handleUpdateContact))
	mux.HandleFunc("DELETE /api/v1/contacts/{id}", a.requireAuth(a.handleDeleteContact))

	mux.HandleFunc("GET /api/v1/expenses", a.requireAuth(a.handleListExpenses))
	mux.HandleFunc("POST /api/v1/expenses", a.requireAuth(a.handleCreateExpense))
	mux.HandleFunc("PATCH /api/v1/expenses/{id}", a.requireAuth(a.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/v1/expenses/{id}", a.requireAuth(a.handleDeleteExpense))

	mux.HandleFunc("GET /api/v1/debts", a.requireAuth(a.handleDebts))
	mux.HandleFunc("GET /api/v1/debts/contacts", a.requireAuth(a.handleContactDebts))
	mux.HandleFunc("GET /api/v1/dashboard", a.requireAuth(a.handleDashboard))

	mux.HandleFunc("GET /api/v1/company", a.requireAuth(a.handleGetCompany))
	mux.HandleFunc("PUT /api/v1/company", a.requireAuth(a.handleUpdateCompany))
	mux.HandleFunc("GET /api/v1/preferences", a.requireAuth(a.handleGetPreferences))
	mux.HandleFunc("PUT /api/v1/preferences", a.requireAuth(a.handleUpdatePreferences))

	mux.HandleFunc("GET /api/v1/backup/export", a.requireAuth(a.handleExportBackup))
	mux.HandleFunc("POST /api/v1/backup/import", a.requireAuth(a.handleImportBackup))

	mux.HandleFunc("GET /api/v1/assistant/tools", a.requireAuth(a.handleAssistantTools))
	mux.HandleFunc("POST /api/v1/assistant/tool-calls", a.requireAuth(a.handleAssistantToolCalls))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, r, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err)
			return
		}

		ctx := service.WithActor(r.Context(), actor)
		ctx = logger.WithFields(ctx, "user_id", actor.UserID)
		next(w, r.WithContext(ctx))
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"csrfToken": a.generateCSRFToken(),
	})
}

// csrfExemptPaths are called before a client can hold a token.
var csrfExemptPaths = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/register",
}

// checkCSRF requires X-CSRF-Token on every state-changing request.
func (a *API) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return true
	}
	for _, exempt := range csrfExemptPaths {
		if r.URL.Path == exempt {
			return true
		}
	}
	token := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
	if !a.validateCSRFToken(token) {
		writeError(w, r, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
		return false
	}
	return true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			limit := int64(maxJSONBody)
			if r.URL.Path == "/api/v1/backup/import" {
				limit = maxBackupBody
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		requestID := xid.New("req")
		ctx := logger.WithLogger(r.Context(), a.log.With("request_id", requestID))
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		if !a.checkCSRF(w, r) {
			return
		}

		startedAt := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info(ctx, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(startedAt),
		)
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}

// fail writes err with the status its kind maps to.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, apperr.HTTPStatus(err), err)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	body := map[string]any{"error": err.Error()}
	if appErr, ok := apperr.As(err); ok {
		body["error"] = appErr.Message
		body["code"] = appErr.Kind
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
	}
	// 5xx bodies never carry internal detail.
	if status >= 500 {
		logger.Error(r.Context(), "request failed", "status", status, "error", err)
		body = map[string]any{"error": "internal server error"}
		if appErr, ok := apperr.As(err); ok && appErr.Kind == apperr.KindPersistence {
			body["error"] = "data could not be saved, please retry"
			body["code"] = appErr.Kind
		}
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
