package scripts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/backoffice-auth/internal/auth"
	"github.com/yasinhessnawi1/backoffice-auth/internal/config"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/service"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// MockAccountRepository is a mock implementation of repository.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	if args.Error(0) == nil {
		account.ID = 1
	}
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, kind models.AccountKind, id int64) (*models.Account, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, kind models.AccountKind, email string) (*models.Account, error) {
	args := m.Called(ctx, kind, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) ExistsByEmail(ctx context.Context, kind models.AccountKind, email string) (bool, error) {
	args := m.Called(ctx, kind, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, kind models.AccountKind, id int64, passwordHash string) error {
	args := m.Called(ctx, kind, id, passwordHash)
	return args.Error(0)
}

func newTestSeeder() (*Seeder, *MockAccountRepository) {
	repo := new(MockAccountRepository)
	credentials := service.NewCredentialStore(repo, &auth.PasswordConfig{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	return NewSeeder(credentials), repo
}

func adminSettings() *config.AdminSeedSettings {
	return &config.AdminSeedSettings{
		Name:     "Ops",
		Email:    "Ops@Example.com",
		Password: "correct horse battery",
	}
}

func TestSeedAdmin_CreatesMissingAdmin(t *testing.T) {
	seeder, repo := newTestSeeder()
	ctx := context.Background()

	repo.On("GetByEmail", ctx, models.KindAdmin, "ops@example.com").
		Return(nil, utils.NewNotFoundError("Account", "ops@example.com"))
	repo.On("Create", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.Kind == models.KindAdmin && a.Email == "ops@example.com" && a.Name == "Ops" &&
			a.PasswordHash != "" && a.PasswordHash != "correct horse battery"
	})).Return(nil)

	account, created, err := seeder.SeedAdmin(ctx, adminSettings())

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), account.ID)

	ok, err := auth.VerifyPassword("correct horse battery", account.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	repo.AssertExpectations(t)
}

func TestSeedAdmin_ExistingAdminIsKept(t *testing.T) {
	seeder, repo := newTestSeeder()
	ctx := context.Background()

	existing := models.NewAccount(models.KindAdmin, "Ops", "ops@example.com")
	existing.ID = 7
	repo.On("GetByEmail", ctx, models.KindAdmin, "ops@example.com").Return(existing, nil)

	account, created, err := seeder.SeedAdmin(ctx, adminSettings())

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(7), account.ID)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSeedAdmin_NoEmailSkips(t *testing.T) {
	seeder, repo := newTestSeeder()

	account, created, err := seeder.SeedAdmin(context.Background(), &config.AdminSeedSettings{})

	require.NoError(t, err)
	assert.Nil(t, account)
	assert.False(t, created)
	repo.AssertExpectations(t)
}

func TestSeedAdmin_LookupFailure(t *testing.T) {
	seeder, repo := newTestSeeder()
	ctx := context.Background()

	repo.On("GetByEmail", ctx, models.KindAdmin, "ops@example.com").Return(nil, errors.New("connection refused"))

	_, _, err := seeder.SeedAdmin(ctx, adminSettings())

	assert.EqualError(t, err, "connection refused")
}

func TestCreateAdmin_Validation(t *testing.T) {
	seeder, _ := newTestSeeder()
	ctx := context.Background()

	_, _, err := seeder.CreateAdmin(ctx, "Ops", "ops@example.com", "")
	assert.ErrorIs(t, err, ErrAdminPasswordRequired)

	_, _, err = seeder.CreateAdmin(ctx, "Ops", "not-an-email", "secret-password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid admin email")
}

func TestCreateAdmin_DuplicateEmail(t *testing.T) {
	seeder, repo := newTestSeeder()
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(utils.ErrDuplicateEmail)

	_, created, err := seeder.CreateAdmin(ctx, "", "ops@example.com", "secret-password")

	assert.ErrorIs(t, err, utils.ErrDuplicateEmail)
	assert.False(t, created)
}

func TestSeedDatabase(t *testing.T) {
	seeder, repo := newTestSeeder()
	ctx := context.Background()

	repo.On("GetByEmail", ctx, models.KindAdmin, "ops@example.com").Return(nil, errors.New("timeout"))

	err := seeder.SeedDatabase(ctx, &config.AppConfig{Admin: *adminSettings()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed admin")
}
