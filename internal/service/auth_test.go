package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tweetledger/internal/config"
	"tweetledger/internal/model"
)

// =============================================================================
// MOCK REPOSITORY
// =============================================================================

type mockAccountRepository struct {
	createFn       func(ctx context.Context, a *model.Account) error
	getByAddressFn func(ctx context.Context, address string) (*model.Account, error)

	created []*model.Account
}

func (m *mockAccountRepository) Create(ctx context.Context, a *model.Account) error {
	m.created = append(m.created, a)
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	return nil
}

func (m *mockAccountRepository) GetByAddress(ctx context.Context, address string) (*model.Account, error) {
	if m.getByAddressFn != nil {
		return m.getByAddressFn(ctx, address)
	}
	return nil, model.ErrAccountNotFound
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret",
		AccessTokenMaxAge: 3600,
		OperatorAccounts:  []string{"deployer"},
	}
}

// =============================================================================
// REGISTER TESTS
// =============================================================================

func TestAuthService_Register_HashesPassword(t *testing.T) {
	repo := &mockAccountRepository{}
	svc := NewAuthService(repo, testConfig(), zap.NewNop())

	account, err := svc.Register(context.Background(), &model.RegisterRequest{Address: " alice ", Password: "securepassword123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Address)
	assert.NotEqual(t, "securepassword123", account.PasswordHashed)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHashed), []byte("securepassword123")))
	assert.Len(t, repo.created, 1)
}

func TestAuthService_Register_Errors(t *testing.T) {
	t.Run("empty address", func(t *testing.T) {
		repo := &mockAccountRepository{}
		svc := NewAuthService(repo, testConfig(), zap.NewNop())

		_, err := svc.Register(context.Background(), &model.RegisterRequest{Address: " ", Password: "password123"})
		assert.ErrorIs(t, err, model.ErrValidation)
		assert.Empty(t, repo.created)
	})

	t.Run("duplicate", func(t *testing.T) {
		repo := &mockAccountRepository{
			createFn: func(ctx context.Context, a *model.Account) error { return model.ErrAccountExists },
		}
		svc := NewAuthService(repo, testConfig(), zap.NewNop())

		_, err := svc.Register(context.Background(), &model.RegisterRequest{Address: "alice", Password: "password123"})
		assert.ErrorIs(t, err, model.ErrAccountExists)
	})

	t.Run("database failure is wrapped", func(t *testing.T) {
		repo := &mockAccountRepository{
			createFn: func(ctx context.Context, a *model.Account) error { return errBoom },
		}
		svc := NewAuthService(repo, testConfig(), zap.NewNop())

		_, err := svc.Register(context.Background(), &model.RegisterRequest{Address: "alice", Password: "password123"})
		assert.ErrorIs(t, err, errBoom)
		assert.False(t, errors.Is(err, model.ErrAccountExists))
	})
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func accountWithPassword(t *testing.T, address, password string) *model.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &model.Account{Address: address, PasswordHashed: string(hash)}
}

func TestAuthService_Login_IssuesToken(t *testing.T) {
	cfg := testConfig()
	repo := &mockAccountRepository{
		getByAddressFn: func(ctx context.Context, address string) (*model.Account, error) {
			return accountWithPassword(t, address, "correct-password"), nil
		},
	}
	svc := NewAuthService(repo, cfg, zap.NewNop())

	for _, tt := range []struct {
		address  string
		operator bool
	}{
		{address: "alice", operator: false},
		{address: "deployer", operator: true},
	} {
		resp, err := svc.Login(context.Background(), &model.LoginRequest{Address: tt.address, Password: "correct-password"})
		require.NoError(t, err)
		assert.Equal(t, tt.operator, resp.Operator)
		assert.Equal(t, cfg.AccessTokenMaxAge, resp.ExpiresIn)

		token, err := jwt.Parse(resp.AccessToken, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		})
		require.NoError(t, err)
		sub, err := token.Claims.GetSubject()
		require.NoError(t, err)
		assert.Equal(t, tt.address, sub)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	repo := &mockAccountRepository{
		getByAddressFn: func(ctx context.Context, address string) (*model.Account, error) {
			if address == "alice" {
				return accountWithPassword(t, address, "correct-password"), nil
			}
			return nil, model.ErrAccountNotFound
		},
	}
	svc := NewAuthService(repo, testConfig(), zap.NewNop())

	_, err := svc.Login(context.Background(), &model.LoginRequest{Address: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	// unknown accounts look the same as bad passwords
	_, err = svc.Login(context.Background(), &model.LoginRequest{Address: "bob", Password: "whatever"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}
