package service

import (
	"context"
	"testing"

	"studentconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "NOT_FOUND")
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getActiveByIDFn func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deactivateFn    func(context.Context, uint) error
	listFn          func(context.Context, string, int, int) ([]models.User, int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetActiveByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getActiveByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Deactivate(ctx context.Context, id uint) error {
	return s.deactivateFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, search string, limit, offset int) ([]models.User, int64, error) {
	return s.listFn(ctx, search, limit, offset)
}

func alwaysAdmin(_ context.Context, _ uint) (bool, error) { return true, nil }

func neverAdmin(_ context.Context, _ uint) (bool, error) { return false, nil }

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, IsActive: true}, nil
		},
		getActiveByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, IsActive: true}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		deactivateFn:    func(_ context.Context, _ uint) error { return nil },
		listFn: func(_ context.Context, _ string, _, _ int) ([]models.User, int64, error) {
			return nil, 0, nil
		},
	}
}
