package httpapi

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/google/uuid"
)

// Middleware wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middleware in declaration order, so the first one listed
// sees the request first.
func Chain(handler http.Handler, middleware ...Middleware) http.Handler {
	wrapped := handler
	for i := len(middleware) - 1; i >= 0; i-- {
		if middleware[i] == nil {
			continue
		}
		wrapped = middleware[i](wrapped)
	}
	return wrapped
}

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityFromContext returns the caller placed in ctx by the session guard.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// statusRecorder remembers the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func recorderFor(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w}
}

// requestID reuses an incoming X-Request-ID or assigns a fresh one, and echoes
// it on the response.
func (s *HTTPServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(headerRequestID, id)
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r)
	})
}

// recoverPanic converts a handler panic into a logged 500.
func (s *HTTPServer) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error(r.Context(), "panic recovered",
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", r.Header.Get(headerRequestID),
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				s.writeFailure(w, r, http.StatusInternalServerError, MsgInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// accessLog records one line per request once the response is written.
func (s *HTTPServer) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := recorderFor(w)

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.Status(),
			"duration", time.Since(start),
			"request_id", r.Header.Get(headerRequestID),
		)
	})
}

// instrument records request metrics. It must wrap the mux directly so that
// r.Pattern is visible after the mux has routed the request.
func (s *HTTPServer) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := recorderFor(w)

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" || route == "/" {
			route = routeLabelUnmatched
		}
		s.metrics.observe(r.Method, route, strconv.Itoa(rec.Status()), time.Since(start))
	})
}

// requireSession is the session guard: it admits a request only with a valid
// bearer token and stores the caller's identity in the request context.
func (s *HTTPServer) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			s.metrics.rejectSession(common.ErrNoToken)
			s.writeFailure(w, r, http.StatusUnauthorized, MsgNoToken)
			return
		}

		claims, err := s.tokens.Verify(strings.TrimPrefix(header, common.BearerPrefix))
		if err != nil {
			s.metrics.rejectSession(err)
			s.writeFailure(w, r, http.StatusUnauthorized, sessionFailureMessage(err))
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, claims.Identity())
		next(w, r.WithContext(ctx))
	}
}

func sessionFailureMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return MsgTokenExpired
	case errors.Is(err, common.ErrInvalidToken):
		return MsgInvalidToken
	default:
		return MsgUnauthorized
	}
}
