package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

const testSecret = "test-secret-0123456789-0123456789"

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Hashes Password Before Persisting", func(t *testing.T) {
		var created *models.User
		repo := &userRepoStub{
			createFn: func(_ context.Context, u *models.User) error {
				created = u
				u.ID = 1
				return nil
			},
		}
		svc := NewAuthService(repo, testSecret)

		user, err := svc.Register(ctx, "alice", "sturdy-pass1")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		require.NotNil(t, created)
		assert.NotEqual(t, "sturdy-pass1", created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword(
			[]byte(created.Password), []byte("sturdy-pass1")))
	})

	t.Run("Rejects Invalid Username", func(t *testing.T) {
		svc := NewAuthService(&userRepoStub{}, testSecret)
		_, err := svc.Register(ctx, "a!", "sturdy-pass1")
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeValidation, appErr.Code)
	})

	t.Run("Rejects Weak Password", func(t *testing.T) {
		svc := NewAuthService(&userRepoStub{}, testSecret)
		_, err := svc.Register(ctx, "alice", "short")
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeValidation, appErr.Code)
	})

	t.Run("Propagates Duplicate Username Conflict", func(t *testing.T) {
		repo := &userRepoStub{
			createFn: func(_ context.Context, _ *models.User) error {
				return models.NewConflictError("Username already taken")
			},
		}
		svc := NewAuthService(repo, testSecret)
		_, err := svc.Register(ctx, "alice", "sturdy-pass1")
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("sturdy-pass1"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{Username: "alice", Password: string(hash)}
	stored.ID = 7

	t.Run("Success Issues Verifiable Token", func(t *testing.T) {
		repo := &userRepoStub{
			getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
				return stored, nil
			},
		}
		svc := NewAuthService(repo, testSecret)

		user, token, err := svc.Login(ctx, "alice", "sturdy-pass1")
		require.NoError(t, err)
		assert.Equal(t, uint(7), user.ID)

		identity, err := svc.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, uint(7), identity.UserID)
		assert.Equal(t, "alice", identity.Username)
	})

	t.Run("Unknown User", func(t *testing.T) {
		repo := &userRepoStub{
			getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
				return nil, nil
			},
		}
		svc := NewAuthService(repo, testSecret)
		_, _, err := svc.Login(ctx, "nobody", "sturdy-pass1")
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeInvalidCredentials, appErr.Code)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		repo := &userRepoStub{
			getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
				return stored, nil
			},
		}
		svc := NewAuthService(repo, testSecret)
		_, _, err := svc.Login(ctx, "alice", "wrong-pass99")
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeInvalidCredentials, appErr.Code)
	})
}

func TestAuthService_VerifyToken(t *testing.T) {
	svc := NewAuthService(&userRepoStub{}, testSecret)

	t.Run("Garbage Token", func(t *testing.T) {
		_, err := svc.VerifyToken("not-a-token")
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeInvalidToken, appErr.Code)
	})

	t.Run("Token Signed With Different Secret", func(t *testing.T) {
		other := NewAuthService(&userRepoStub{}, "another-secret-another-secret-xx")
		token, err := other.IssueToken(1, "alice")
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeInvalidToken, appErr.Code)
	})

	t.Run("Round Trip", func(t *testing.T) {
		token, err := svc.IssueToken(42, "bob")
		require.NoError(t, err)

		identity, err := svc.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, uint(42), identity.UserID)
		assert.Equal(t, "bob", identity.Username)
	})
}
