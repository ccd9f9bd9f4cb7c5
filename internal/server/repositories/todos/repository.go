// Package todos stores todo items. Ownership checks live in the service layer;
// repositories only look rows up by id or owner.
package todos

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type Repository interface {
	// Create inserts a todo and fills in its id and creation time.
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)

	// Get returns the todo with the given id or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.Todo, error)

	// ListByUser returns the owner's todos, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Todo, error)

	// Update writes title and completed for todo.ID; the owner is never changed.
	Update(ctx context.Context, todo *models.Todo) (*models.Todo, error)

	// Delete removes the todo or returns common.ErrorNotFound.
	Delete(ctx context.Context, id string) error
}
