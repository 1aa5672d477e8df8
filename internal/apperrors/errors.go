package apperrors

import (
	"errors"
	"fmt"
)

// Base error kinds. Handlers map these to transport status codes.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrUnauthorized     = errors.New("unauthorized")
)

var (
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrUserAlreadyExists = fmt.Errorf("user %w", ErrAlreadyExists)
	ErrUsernameTaken     = fmt.Errorf("username %w", ErrAlreadyExists)

	ErrRequestNotFound = fmt.Errorf("request %w", ErrNotFound)
	ErrNotRequestPayer = fmt.Errorf("%w: only the payer may settle a request", ErrForbidden)

	ErrShopItemNotFound  = fmt.Errorf("shop item %w", ErrNotFound)
	ErrChallengeNotFound = fmt.Errorf("challenge %w", ErrNotFound)

	// Specializations of ErrInvalidOperation, matchable as either
	ErrSelfOperation         = fmt.Errorf("%w: cannot transact with self", ErrInvalidOperation)
	ErrAmountNotPositive     = fmt.Errorf("%w: amount must be positive", ErrInvalidOperation)
	ErrRequestAlreadySettled = fmt.Errorf("%w: request is already settled", ErrInvalidOperation)
	ErrInsufficientFunds     = fmt.Errorf("%w: insufficient funds", ErrInvalidOperation)
)
