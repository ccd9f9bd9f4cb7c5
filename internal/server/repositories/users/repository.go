// Package users holds the credential store: a durable mapping from email to
// the user's id, name and password hash.
package users

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository is implemented per storage dialect. Lookups return
// common.ErrorNotFound when no row matches; Create returns
// common.ErrAlreadyExists when the email is taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
