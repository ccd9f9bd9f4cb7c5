// Package services contains server-side business logic. This file implements
// UserService, which handles signup, login and issuing session tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
)

const (
	MsgSignupFieldsRequired = "Name, email, and password are required"
	MsgInvalidEmail         = "Invalid email format"
	MsgPasswordTooShort     = "Password must be at least 6 characters long"
	MsgPasswordTooLong      = "Password must be at most 72 bytes long"
	MsgLoginFieldsRequired  = "Email and password are required"

	minPasswordLength = 6
)

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is the authenticated user plus a freshly signed session token.
type LoginResult struct {
	User  *models.User
	Token string
}

// UserService provides authentication-related operations:
// - Signup: validate input and store a new user with a bcrypt hash
// - Login: verify credentials and mint a session token
// - Profile: load the caller's own record
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
	}
}

// Signup creates a user. A taken email yields common.ErrAlreadyExists whether
// it is caught by the lookup or by the store's unique constraint.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	if name == "" || email == "" || in.Password == "" {
		return nil, common.NewValidationError(MsgSignupFieldsRequired)
	}
	if !validEmail(email) {
		return nil, common.NewValidationError(MsgInvalidEmail)
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return nil, common.NewValidationError(MsgPasswordTooShort)
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, common.NewValidationError(MsgPasswordTooLong)
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and returns a signed token. Unknown email and
// wrong password both yield common.ErrInvalidCredentials; the unknown-email
// path still runs one bcrypt comparison so the two take the same time.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, common.NewValidationError(MsgLoginFieldsRequired)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnComparison(in.Password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &LoginResult{User: user, Token: token}, nil
}

// Profile returns the user with the given id or common.ErrorNotFound.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// --- helpers below ---

func (s *UserService) burnComparison(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("todokeeper-dummy-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
