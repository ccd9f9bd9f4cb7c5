// Package httpapi exposes the todokeeper services as a JSON API over HTTP.
// Every response, including failures, uses the {success, message, data}
// envelope; protected routes sit behind the bearer-token session guard.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
)

type UserService interface {
	Signup(ctx context.Context, in services.SignupInput) (*models.User, error)
	Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
}

type TodoService interface {
	CreateTodo(ctx context.Context, ownerID, title string) (*models.Todo, error)
	ListTodos(ctx context.Context, ownerID string) ([]*models.Todo, error)
	UpdateTodo(ctx context.Context, ownerID, id string, in services.UpdateTodoInput) (*models.Todo, error)
	DeleteTodo(ctx context.Context, ownerID, id string) error
}

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type HTTPServer struct {
	address         string
	logger          logging.Logger
	users           UserService
	todos           TodoService
	tokens          TokenVerifier
	metrics         *Metrics
	shutdownTimeout time.Duration
	now             func() time.Time
}

func NewHTTPServer(address string, l logging.Logger, us UserService, ts TodoService, tv TokenVerifier, shutdownTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:         address,
		logger:          l.With("module", "http_server"),
		users:           us,
		todos:           ts,
		tokens:          tv,
		metrics:         NewMetrics(),
		shutdownTimeout: shutdownTimeout,
		now:             time.Now,
	}
}

// Handler returns the full middleware chain around the route table.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("GET /auth/me", s.requireSession(s.handleMe))

	mux.HandleFunc("POST /todos", s.requireSession(s.handleCreateTodo))
	mux.HandleFunc("GET /todos", s.requireSession(s.handleListTodos))
	mux.HandleFunc("PUT /todos/{id}", s.requireSession(s.handleUpdateTodo))
	mux.HandleFunc("DELETE /todos/{id}", s.requireSession(s.handleDeleteTodo))

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("/", s.handleNotFound)

	return Chain(mux,
		s.recoverPanic,
		s.requestID,
		s.accessLog,
		s.instrument,
	)
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the configured shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
