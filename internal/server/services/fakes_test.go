package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/todos"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	getErr  error

	created   *models.User
	createErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *u
	out.ID = "u-new"
	f.created = &out
	return &out, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeTodosRepo struct {
	items map[string]*models.Todo
	list  []*models.Todo

	getErr    error
	updateErr error
	deleteErr error
	listErr   error
	createErr error

	updated *models.Todo
	deleted string
}

func (f *fakeTodosRepo) Create(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *t
	out.ID = "t-new"
	return &out, nil
}

func (f *fakeTodosRepo) Get(ctx context.Context, id string) (*models.Todo, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if t, ok := f.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTodosRepo) ListByUser(ctx context.Context, userID string) ([]*models.Todo, error) {
	return f.list, f.listErr
}

func (f *fakeTodosRepo) Update(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = t
	return t, nil
}

func (f *fakeTodosRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = id
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTodosRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository          { return m.u }
func (m *fakeRepoManager) Todos(db dbx.DBTX) todos.Repository          { return m.t }

// fakeHasher treats "hash:"+plain as the hash of plain and counts Verify calls.
type fakeHasher struct {
	hashErr     error
	verifyErr   error
	verifyCalls int
}

func (h *fakeHasher) Hash(plain string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hash:" + plain, nil
}

func (h *fakeHasher) Verify(plain, hash string) (bool, error) {
	h.verifyCalls++
	if h.verifyErr != nil {
		return false, h.verifyErr
	}
	return hash == "hash:"+plain, nil
}

type fakeIssuer struct {
	err    error
	userID string
	email  string
}

func (i *fakeIssuer) Issue(userID, email string) (string, error) {
	if i.err != nil {
		return "", i.err
	}
	i.userID, i.email = userID, email
	return "token-for-" + userID, nil
}

var errDB = errors.New("db down")
