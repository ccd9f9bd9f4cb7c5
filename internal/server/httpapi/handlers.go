package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createTodoRequest struct {
	Title string `json:"title"`
}

type updateTodoRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

var (
	todoUpdateFailures = failureMessages{
		common.ErrorNotFound: MsgTodoNotFound,
		common.ErrForbidden:  MsgForbiddenUpdate,
	}
	todoDeleteFailures = failureMessages{
		common.ErrorNotFound: MsgTodoNotFound,
		common.ErrForbidden:  MsgForbiddenDelete,
	}
	profileFailures = failureMessages{
		common.ErrorNotFound: MsgUserNotFound,
	}
)

func (s *HTTPServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	user, err := s.users.Signup(r.Context(), services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	s.writeJSON(w, r, http.StatusCreated, envelope{
		Success: true,
		Message: MsgSignedUp,
		Data:    newUserView(user),
	})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	res, err := s.users.Login(r.Context(), services.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	view := newUserView(res.User)
	view.Token = res.Token

	s.writeJSON(w, r, http.StatusOK, envelope{
		Success: true,
		Message: MsgLoggedIn,
		Data:    view,
	})
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	user, err := s.users.Profile(r.Context(), id.UserID)
	if err != nil {
		s.writeError(w, r, err, profileFailures)
		return
	}

	s.writeJSON(w, r, http.StatusOK, envelope{
		Success: true,
		Message: MsgProfile,
		Data:    newUserView(user),
	})
}

func (s *HTTPServer) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	var req createTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	todo, err := s.todos.CreateTodo(r.Context(), id.UserID, req.Title)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	s.writeJSON(w, r, http.StatusCreated, envelope{
		Success: true,
		Message: MsgTodoCreated,
		Data:    newTodoView(todo),
	})
}

func (s *HTTPServer) handleListTodos(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	list, err := s.todos.ListTodos(r.Context(), id.UserID)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	count := len(list)
	s.writeJSON(w, r, http.StatusOK, envelope{
		Success: true,
		Message: MsgTodosListed,
		Data:    newTodoViews(list),
		Count:   &count,
	})
}

func (s *HTTPServer) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	var req updateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	todo, err := s.todos.UpdateTodo(r.Context(), id.UserID, r.PathValue("id"), services.UpdateTodoInput{
		Title:     req.Title,
		Completed: req.Completed,
	})
	if err != nil {
		s.writeError(w, r, err, todoUpdateFailures)
		return
	}

	s.writeJSON(w, r, http.StatusOK, envelope{
		Success: true,
		Message: MsgTodoUpdated,
		Data:    newTodoView(todo),
	})
}

func (s *HTTPServer) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	if err := s.todos.DeleteTodo(r.Context(), id.UserID, r.PathValue("id")); err != nil {
		s.writeError(w, r, err, todoDeleteFailures)
		return
	}

	s.writeJSON(w, r, http.StatusOK, envelope{Success: true, Message: MsgTodoDeleted})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, envelope{
		Success:   true,
		Message:   MsgHealthy,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *HTTPServer) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeFailure(w, r, http.StatusNotFound, MsgRouteNotFound)
}
