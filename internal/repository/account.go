package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tweetledger/internal/model"
)

// accountRepository implements AccountRepository using sqlx
type accountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a new account. Returns ErrAccountExists on a duplicate address.
func (r *accountRepository) Create(ctx context.Context, a *model.Account) error {
	err := r.db.GetContext(ctx, &a.CreatedAt, `
		INSERT INTO accounts (address, password_hashed, created_at)
		VALUES ($1, $2, NOW())
		RETURNING created_at
	`, a.Address, a.PasswordHashed)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return model.ErrAccountExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetByAddress retrieves an account by its address
func (r *accountRepository) GetByAddress(ctx context.Context, address string) (*model.Account, error) {
	var a model.Account
	err := r.db.GetContext(ctx, &a, `
		SELECT address, password_hashed, created_at
		FROM accounts
		WHERE address = $1
	`, address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}
