package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

const (
	MsgInternal        = "Internal server error"
	MsgRouteNotFound   = "Route not found"
	MsgInvalidBody     = "Invalid JSON body"
	MsgEmailTaken      = "User with this email already exists"
	MsgInvalidLogin    = "Invalid email or password"
	MsgTodoNotFound    = "Todo not found"
	MsgUserNotFound    = "User not found"
	MsgForbiddenUpdate = "You do not have permission to update this todo"
	MsgForbiddenDelete = "You do not have permission to delete this todo"
	MsgNoToken         = "No authorization token provided"
	MsgTokenExpired    = "Token has expired"
	MsgInvalidToken    = "Invalid token"
	MsgUnauthorized    = "Unauthorized access"

	MsgSignedUp    = "User registered successfully"
	MsgLoggedIn    = "Login successful"
	MsgProfile     = "Profile retrieved successfully"
	MsgTodoCreated = "Todo created successfully"
	MsgTodosListed = "Todos retrieved successfully"
	MsgTodoUpdated = "Todo updated successfully"
	MsgTodoDeleted = "Todo deleted successfully"
	MsgHealthy     = "Server is running"
)

const (
	maxRequestBodyBytes = 1 << 20
	contentTypeJSON     = "application/json; charset=utf-8"
	headerRequestID     = "X-Request-ID"
	routeLabelUnmatched = "unmatched"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Count     *int   `json:"count,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type userView struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Token  string `json:"token,omitempty"`
}

type todoView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserView(u *models.User) userView {
	return userView{UserID: u.ID, Email: u.Email, Name: u.Name}
}

func newTodoView(t *models.Todo) todoView {
	return todoView{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		UserID:    t.UserID,
		CreatedAt: t.CreatedAt.UTC(),
	}
}

func newTodoViews(list []*models.Todo) []todoView {
	out := make([]todoView, 0, len(list))
	for _, t := range list {
		out = append(out, newTodoView(t))
	}
	return out
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn(r.Context(), "write response failed", "error", err, "request_id", r.Header.Get(headerRequestID))
	}
}

func (s *HTTPServer) writeFailure(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, r, status, envelope{Success: false, Message: msg})
}

// failureMessages overrides the default message for a sentinel, per route.
type failureMessages map[error]string

// writeError is the single point where service errors become HTTP statuses.
// Anything unrecognised is logged and reported as a generic 500.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error, overrides failureMessages) {
	var verr *common.ValidationError

	status, msg := http.StatusInternalServerError, MsgInternal
	switch {
	case errors.As(err, &verr):
		status, msg = http.StatusBadRequest, verr.Message
	case errors.Is(err, common.ErrAlreadyExists):
		status, msg = http.StatusConflict, MsgEmailTaken
	case errors.Is(err, common.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, MsgInvalidLogin
	case errors.Is(err, common.ErrForbidden):
		status, msg = http.StatusForbidden, MsgUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, MsgRouteNotFound
	}

	for sentinel, m := range overrides {
		if errors.Is(err, sentinel) {
			msg = m
			break
		}
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get(headerRequestID),
			"error", err,
		)
	}

	s.writeFailure(w, r, status, msg)
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err := dec.Decode(dst); err != nil {
		// An empty body reads as an empty object.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return common.NewValidationError(MsgInvalidBody)
	}
	return nil
}
