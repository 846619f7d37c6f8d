package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tweetledger/internal/config"
	"tweetledger/internal/model"
	"tweetledger/internal/repository"
)

// AuthService registers accounts and issues access tokens. The token subject
// is the account address, which becomes the calling principal.
type AuthService struct {
	accountRepo repository.AccountRepository
	config      *config.Config
	logger      *zap.Logger
}

func NewAuthService(accountRepo repository.AccountRepository, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		config:      cfg,
		logger:      logger.Named("auth"),
	}
}

// Register creates a new account with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.Account, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, model.ErrInvalidAccount
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		Address:        address,
		PasswordHashed: string(hashedPassword),
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, model.ErrAccountExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account registered", zap.String("account", address))
	return account, nil
}

// Login checks the password and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	account, err := s.accountRepo.GetByAddress(ctx, strings.TrimSpace(req.Address))
	if err != nil {
		// Don't reveal whether the account exists
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	operator := s.config.IsOperator(account.Address)
	token, err := s.generateAccessToken(account.Address, operator)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &model.LoginResponse{
		Account:     account,
		AccessToken: token,
		ExpiresIn:   s.config.AccessTokenMaxAge,
		Operator:    operator,
	}, nil
}

func (s *AuthService) generateAccessToken(address string, operator bool) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      address,
		"operator": operator,
		"exp":      now.Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
