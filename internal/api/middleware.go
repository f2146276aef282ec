package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"makerspace/internal/user"
	"makerspace/pkg/metrics"
)

const ctxKeyLogger ctxKey = "logger"

// Logger returns the request-scoped logger.
func Logger(ctx context.Context) logrus.FieldLogger {
	if l, ok := ctx.Value(ctxKeyLogger).(logrus.FieldLogger); ok {
		return l
	}
	return logrus.StandardLogger()
}

// RequestID takes X-Request-ID from the caller or generates one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// RequestLogger attaches a logger carrying the request id, logs each request
// once it completes and records HTTP metrics when m is set.
func RequestLogger(log logrus.FieldLogger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			l := log.WithField("request_id", RequestIDFromContext(r.Context()))
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), ctxKeyLogger, l)))

			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			elapsed := time.Since(start)
			if m != nil {
				m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
				m.HTTPDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
			}

			entry := l.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   sw.status,
				"bytes":    sw.bytes,
				"duration": elapsed.String(),
			})
			if sw.status >= http.StatusInternalServerError {
				entry.Warn("request")
			} else {
				entry.Debug("request")
			}
		})
	}
}

func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				Logger(r.Context()).WithFields(logrus.Fields{
					"panic": rec,
					"stack": string(debug.Stack()),
				}).Error("panic recovered")
				WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	VerifyToken(token string) (userID string, err error)
}

// UserGetter loads the current user record.
type UserGetter interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

// Authenticate requires "Authorization: Bearer <JWT>". The user is reloaded
// on every request so role changes and deactivation apply immediately.
func Authenticate(tokens TokenVerifier, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(authz) < 7 || !strings.EqualFold(authz[:7], "bearer ") {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}
			userID, err := tokens.VerifyToken(strings.TrimSpace(authz[7:]))
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
				return
			}
			u, err := users.Get(r.Context(), userID)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
				return
			}
			if !u.Active {
				WriteError(w, http.StatusForbidden, "ACCOUNT_DISABLED", "account is deactivated")
				return
			}

			ctx := WithUser(r.Context(), u)
			if l, ok := ctx.Value(ctxKeyLogger).(logrus.FieldLogger); ok {
				ctx = context.WithValue(ctx, ctxKeyLogger, l.WithField("user_id", u.ID))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFromContext(r.Context())
		if u == nil {
			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not signed in")
			return
		}
		if !u.IsAdmin() {
			WriteError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
