package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/campuscoin/api/internal/models"
)

// Storage aggregates entity repositories over a single connection or
// transaction. InTx runs fn against a Storage bound to one database
// transaction: commit if fn returns nil, full rollback otherwise.
type Storage interface {
	User() UserRepo
	Transaction() TransactionRepo
	Request() RequestRepo
	Shop() ShopRepo
	Challenge() ChallengeRepo

	InTx(ctx context.Context, fn func(Storage) error) error
}

type CreateUserParams struct {
	ExternalID  *string
	Username    string
	FullName    string
	Email       string
	Balance     int64
	GiftBalance int64
	Role        string
}

type UpdateUserParams struct {
	ExternalID *string
	FullName   *string
	Email      *string
	IsActive   *bool
}

type UserRepo interface {
	// Create user
	// Must return apperrors.ErrUserAlreadyExists on duplicate email or
	// external id, and apperrors.ErrUsernameTaken on duplicate username
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user, apperrors.ErrUserNotFound if missing.
	// forUpdate locks the row until the enclosing transaction ends
	GetUserByID(ctx context.Context, id uuid.UUID, forUpdate bool) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (models.User, error)

	ListUsers(ctx context.Context, offset int, limit int) ([]models.User, error)

	// Update only the fields set in arg
	UpdateUser(ctx context.Context, id uuid.UUID, arg UpdateUserParams) (models.User, error)

	// Add delta (may be negative) to the spendable or gift balance.
	// The database rejects a resulting negative balance; callers are
	// expected to have checked funds under a row lock first
	AddToBalance(ctx context.Context, id uuid.UUID, delta int64, gift bool) (models.User, error)

	// Active users ranked by the sum of their positive transactions
	Leaderboard(ctx context.Context, offset int, limit int) ([]models.LeaderboardEntry, error)
}

type CreateTransactionParams struct {
	UserID      uuid.UUID
	AdminID     *uuid.UUID
	Amount      int64
	Type        models.TransactionType
	Description string
	RecipientID *uuid.UUID
	RequestID   *uuid.UUID
	ShopItemID  *uuid.UUID
}

// Append-only transaction log
type TransactionRepo interface {
	CreateTransaction(ctx context.Context, arg CreateTransactionParams) (models.Transaction, error)
	ListUserTransactions(ctx context.Context, userID uuid.UUID, offset int, limit int) ([]models.Transaction, error)
	ListTransactions(ctx context.Context, offset int, limit int) ([]models.Transaction, error)
}

type CreateRequestParams struct {
	RequesterID uuid.UUID
	PayerID     uuid.UUID
	Amount      int64
	Description string
}

type RequestRepo interface {
	// Create request in pending/active state
	CreateRequest(ctx context.Context, arg CreateRequestParams) (models.Request, error)

	// Get request, apperrors.ErrRequestNotFound if missing
	GetRequestByID(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Request, error)

	// Requests where the user is requester or payer, newest first
	ListUserRequests(ctx context.Context, userID uuid.UUID, offset int, limit int) ([]models.Request, error)

	// Flip to completed/inactive. Must only be called on a row locked
	// with GetRequestByID(forUpdate) inside the settling transaction
	MarkSettled(ctx context.Context, id uuid.UUID) (models.Request, error)
}

type CreateShopItemParams struct {
	Title       string
	Description string
	Price       int64
	Image       *string
}

type ShopRepo interface {
	CreateItem(ctx context.Context, arg CreateShopItemParams) (models.ShopItem, error)
	GetItemByID(ctx context.Context, id uuid.UUID) (models.ShopItem, error)
	ListItems(ctx context.Context, offset int, limit int) ([]models.ShopItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type CreateChallengeParams struct {
	Title       string
	Description string
	Reward      int64
}

type ChallengeRepo interface {
	CreateChallenge(ctx context.Context, arg CreateChallengeParams) (models.Challenge, error)
	ListChallenges(ctx context.Context, offset int, limit int) ([]models.Challenge, error)
	DeleteChallenge(ctx context.Context, id uuid.UUID) error
}
