package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	MsgTitleRequired     = "Todo title is required"
	MsgUpdateFieldsEmpty = "At least one field (title or completed) must be provided"
)

// UpdateTodoInput carries a partial update; nil fields are left unchanged.
type UpdateTodoInput struct {
	Title     *string
	Completed *bool
}

// TodoService manages todos on behalf of an authenticated owner. Every
// read and write is scoped to ownerID; a todo owned by someone else yields
// common.ErrForbidden on update or delete and never appears in listings.
type TodoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTodoService(db *sql.DB, m repomanager.RepositoryManager) *TodoService {
	return &TodoService{db: db, repomanager: m}
}

// CreateTodo stores a new, not yet completed todo owned by ownerID.
func (s *TodoService) CreateTodo(ctx context.Context, ownerID, title string) (*models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, common.NewValidationError(MsgTitleRequired)
	}

	todo, err := s.repomanager.Todos(s.db).Create(ctx, &models.Todo{UserID: ownerID, Title: title})
	if err != nil {
		return nil, fmt.Errorf("error creating todo: %w", err)
	}
	return todo, nil
}

// ListTodos returns the owner's todos, newest first. No todos is an empty,
// non-nil slice.
func (s *TodoService) ListTodos(ctx context.Context, ownerID string) ([]*models.Todo, error) {
	list, err := s.repomanager.Todos(s.db).ListByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing todos: %w", err)
	}
	if list == nil {
		list = []*models.Todo{}
	}
	return list, nil
}

// UpdateTodo applies in to the todo with the given id. Lookup, ownership
// check and write run in one transaction.
func (s *TodoService) UpdateTodo(ctx context.Context, ownerID, id string, in UpdateTodoInput) (*models.Todo, error) {
	if in.Title == nil && in.Completed == nil {
		return nil, common.NewValidationError(MsgUpdateFieldsEmpty)
	}

	var title string
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, common.NewValidationError(MsgTitleRequired)
		}
	}

	if !validID(id) {
		return nil, common.ErrorNotFound
	}

	var updated *models.Todo
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Todos(tx)

		todo, err := s.ownedTodo(ctx, repo, ownerID, id)
		if err != nil {
			return err
		}

		if in.Title != nil {
			todo.Title = title
		}
		if in.Completed != nil {
			todo.Completed = *in.Completed
		}

		updated, err = repo.Update(ctx, todo)
		return err
	})
	if err != nil {
		return nil, classify(err, "error updating todo")
	}

	return updated, nil
}

// DeleteTodo removes the todo with the given id if ownerID owns it.
func (s *TodoService) DeleteTodo(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Todos(tx)

		if _, err := s.ownedTodo(ctx, repo, ownerID, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return classify(err, "error deleting todo")
	}

	return nil
}

// --- helpers below ---

type todoGetter interface {
	Get(ctx context.Context, id string) (*models.Todo, error)
}

func (s *TodoService) ownedTodo(ctx context.Context, repo todoGetter, ownerID, id string) (*models.Todo, error) {
	todo, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if todo.UserID != ownerID {
		return nil, common.ErrForbidden
	}
	return todo, nil
}

// classify passes not-found and forbidden through unchanged and wraps the rest.
func classify(err error, op string) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrorNotFound
	case errors.Is(err, common.ErrForbidden):
		return common.ErrForbidden
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
