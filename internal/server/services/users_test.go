package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserSvc(t *testing.T, u *fakeUsersRepo) (*UserService, *fakeHasher, *fakeIssuer) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	h := &fakeHasher{}
	iss := &fakeIssuer{}
	return NewUserService(db, &fakeRepoManager{u: u}, h, iss), h, iss
}

func TestSignup_Success_TrimsAndHashes(t *testing.T) {
	repo := &fakeUsersRepo{}
	s, _, _ := newUserSvc(t, repo)

	u, err := s.Signup(context.Background(), SignupInput{Name: "  Alice ", Email: " a@x.com ", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, "u-new", u.ID)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "hash:secret1", repo.created.PasswordHash)
}

func TestSignup_Validation(t *testing.T) {
	cases := []struct {
		name string
		in   SignupInput
		msg  string
	}{
		{"missing name", SignupInput{Email: "a@x.com", Password: "secret1"}, MsgSignupFieldsRequired},
		{"blank name", SignupInput{Name: "   ", Email: "a@x.com", Password: "secret1"}, MsgSignupFieldsRequired},
		{"missing email", SignupInput{Name: "A", Password: "secret1"}, MsgSignupFieldsRequired},
		{"missing password", SignupInput{Name: "A", Email: "a@x.com"}, MsgSignupFieldsRequired},
		{"bad email", SignupInput{Name: "A", Email: "not-an-email", Password: "secret1"}, MsgInvalidEmail},
		{"display-name email", SignupInput{Name: "A", Email: "Al <a@x.com>", Password: "secret1"}, MsgInvalidEmail},
		{"short password", SignupInput{Name: "A", Email: "a@x.com", Password: "12345"}, MsgPasswordTooShort},
		{"long password", SignupInput{Name: "A", Email: "a@x.com", Password: strings.Repeat("p", auth.MaxPasswordBytes+1)}, MsgPasswordTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}
			s, _, _ := newUserSvc(t, repo)

			_, err := s.Signup(context.Background(), tc.in)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.EqualError(t, err, tc.msg)
			assert.Nil(t, repo.created)
		})
	}
}

func TestSignup_PasswordOfExactlySixCharsAccepted(t *testing.T) {
	s, _, _ := newUserSvc(t, &fakeUsersRepo{})
	_, err := s.Signup(context.Background(), SignupInput{Name: "A", Email: "a@x.com", Password: "123456"})
	require.NoError(t, err)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	repo := &fakeUsersRepo{byEmail: map[string]*models.User{"a@x.com": {ID: "u1", Email: "a@x.com"}}}
	s, _, _ := newUserSvc(t, repo)

	_, err := s.Signup(context.Background(), SignupInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.ErrorIs(t, err, common.ErrAlreadyExists)
	assert.Nil(t, repo.created)
}

func TestSignup_UniqueViolationOnInsert(t *testing.T) {
	repo := &fakeUsersRepo{createErr: common.ErrAlreadyExists}
	s, _, _ := newUserSvc(t, repo)

	_, err := s.Signup(context.Background(), SignupInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestSignup_StoreFailure(t *testing.T) {
	s, _, _ := newUserSvc(t, &fakeUsersRepo{getErr: errDB})

	_, err := s.Signup(context.Background(), SignupInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.ErrorIs(t, err, errDB)
	assert.NotErrorIs(t, err, common.ErrAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	repo := &fakeUsersRepo{byEmail: map[string]*models.User{
		"a@x.com": {ID: "u1", Name: "A", Email: "a@x.com", PasswordHash: "hash:secret1"},
	}}
	s, _, iss := newUserSvc(t, repo)

	res, err := s.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, "token-for-u1", res.Token)
	assert.Equal(t, "u1", res.User.ID)
	assert.Equal(t, "u1", iss.userID)
	assert.Equal(t, "a@x.com", iss.email)
}

func TestLogin_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	repo := &fakeUsersRepo{byEmail: map[string]*models.User{
		"a@x.com": {ID: "u1", Email: "a@x.com", PasswordHash: "hash:secret1"},
	}}
	s, h, _ := newUserSvc(t, repo)

	_, errWrong := s.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "nope"})
	_, errUnknown := s.Login(context.Background(), LoginInput{Email: "ghost@x.com", Password: "secret1"})

	require.ErrorIs(t, errWrong, common.ErrInvalidCredentials)
	require.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.Equal(t, 2, h.verifyCalls, "unknown email still runs one comparison")
}

func TestLogin_Validation(t *testing.T) {
	s, _, _ := newUserSvc(t, &fakeUsersRepo{})

	for _, in := range []LoginInput{{Password: "x"}, {Email: "a@x.com"}, {Email: "  ", Password: "x"}} {
		_, err := s.Login(context.Background(), in)
		require.ErrorIs(t, err, common.ErrValidation)
		assert.EqualError(t, err, MsgLoginFieldsRequired)
	}
}

func TestLogin_MalformedStoredHashIsInternal(t *testing.T) {
	repo := &fakeUsersRepo{byEmail: map[string]*models.User{"a@x.com": {ID: "u1", Email: "a@x.com"}}}
	s, h, _ := newUserSvc(t, repo)
	h.verifyErr = errDB

	_, err := s.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "secret1"})
	require.ErrorIs(t, err, errDB)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_IssueFailure(t *testing.T) {
	repo := &fakeUsersRepo{byEmail: map[string]*models.User{"a@x.com": {ID: "u1", Email: "a@x.com", PasswordHash: "hash:secret1"}}}
	s, _, iss := newUserSvc(t, repo)
	iss.err = errDB

	_, err := s.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "secret1"})
	require.ErrorIs(t, err, errDB)
}

func TestLogin_WithBcrypt(t *testing.T) {
	hasher := auth.NewBcryptHasher()
	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)

	repo := &fakeUsersRepo{byEmail: map[string]*models.User{"a@x.com": {ID: "u1", Email: "a@x.com", PasswordHash: hash}}}
	db, _ := newSQLMockDB(t)
	s := NewUserService(db, &fakeRepoManager{u: repo}, hasher, &fakeIssuer{})

	_, err = s.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = s.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "secret2"})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = s.Login(context.Background(), LoginInput{Email: "b@x.com", Password: "secret1"})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestProfile(t *testing.T) {
	repo := &fakeUsersRepo{byEmail: map[string]*models.User{"a@x.com": {ID: "u1", Name: "A", Email: "a@x.com"}}}
	s, _, _ := newUserSvc(t, repo)

	u, err := s.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "A", u.Name)

	_, err = s.Profile(context.Background(), "u2")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
