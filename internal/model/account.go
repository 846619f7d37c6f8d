package model

import (
	"errors"
	"time"
)

// Account is a registered calling principal.
type Account struct {
	Address        string    `db:"address" json:"address"`
	PasswordHashed string    `db:"password_hashed" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Principal is the identity a request acts as.
type Principal struct {
	Account  string
	Operator bool
}

// RegisterRequest represents the data needed to register an account
type RegisterRequest struct {
	Address  string `json:"address" validate:"required,max=128"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Address  string `json:"address" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Account     *Account `json:"account"`
	AccessToken string   `json:"access_token"`
	ExpiresIn   int      `json:"expires_in"`
	Operator    bool     `json:"operator"`
}

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Token API error codes (used in HTTP responses)
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)
