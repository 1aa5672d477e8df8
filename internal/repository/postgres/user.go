package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/models"
	"github.com/campuscoin/api/internal/repository"
)

type UserRepo struct {
	db DBTX
}

const userColumns = `id, created_at, external_id, username, full_name, email, balance, gift_balance, role, is_active`

const createUser = `-- name: CreateUser
INSERT INTO users (id, external_id, username, full_name, email, balance, gift_balance, role)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	role := arg.Role
	if role == "" {
		role = models.RoleStudent
	}

	rows, _ := r.db.Query(ctx, createUser,
		uuid.New(), arg.ExternalID, arg.Username, arg.FullName, arg.Email, arg.Balance, arg.GiftBalance, role,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return user, apperrors.ErrUsernameTaken
			}
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID, forUpdate bool) (models.User, error) {
	query := getUserByID
	if forUpdate {
		query += "FOR UPDATE"
	}

	rows, _ := r.db.Query(ctx, query, id)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + ` FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.db.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const getUserByExternalID = `-- name: GetUserByExternalID
SELECT ` + userColumns + ` FROM users
WHERE external_id = $1
`

func (r *UserRepo) GetUserByExternalID(ctx context.Context, externalID string) (models.User, error) {
	rows, _ := r.db.Query(ctx, getUserByExternalID, externalID)
	return collectUser(rows)
}

const listUsers = `-- name: ListUsers
SELECT ` + userColumns + ` FROM users
ORDER BY created_at
OFFSET $1 LIMIT $2
`

func (r *UserRepo) ListUsers(ctx context.Context, offset int, limit int) ([]models.User, error) {
	rows, _ := r.db.Query(ctx, listUsers, offset, limit)
	users, err := pgx.CollectRows(rows, rowToUser)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return users, nil
}

const updateUser = `-- name: UpdateUser
UPDATE users SET
	external_id = COALESCE($2, external_id),
	full_name   = COALESCE($3, full_name),
	email       = COALESCE($4, email),
	is_active   = COALESCE($5, is_active)
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) UpdateUser(ctx context.Context, id uuid.UUID, arg repository.UpdateUserParams) (models.User, error) {
	rows, _ := r.db.Query(ctx, updateUser, id, arg.ExternalID, arg.FullName, arg.Email, arg.IsActive)
	return collectUser(rows)
}

const addToBalance = `-- name: AddToBalance
UPDATE users SET balance = balance + $2
WHERE id = $1
RETURNING ` + userColumns

const addToGiftBalance = `-- name: AddToGiftBalance
UPDATE users SET gift_balance = gift_balance + $2
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) AddToBalance(ctx context.Context, id uuid.UUID, delta int64, gift bool) (models.User, error) {
	query := addToBalance
	if gift {
		query = addToGiftBalance
	}

	rows, _ := r.db.Query(ctx, query, id, delta)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return user, apperrors.ErrInsufficientFunds
		}
		return user, fmt.Errorf("db error: %w", err)
	}
}

const leaderboard = `-- name: Leaderboard
SELECT u.id, u.username, u.full_name, u.balance,
	COALESCE(SUM(t.amount) FILTER (WHERE t.amount > 0), 0) AS total_earned
FROM users u
LEFT JOIN transactions t ON t.user_id = u.id
WHERE u.is_active
GROUP BY u.id
ORDER BY total_earned DESC, u.created_at
OFFSET $1 LIMIT $2
`

func (r *UserRepo) Leaderboard(ctx context.Context, offset int, limit int) ([]models.LeaderboardEntry, error) {
	rows, _ := r.db.Query(ctx, leaderboard, offset, limit)
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LeaderboardEntry, error) {
		var e models.LeaderboardEntry
		err := row.Scan(&e.UserID, &e.Username, &e.FullName, &e.Balance, &e.TotalEarned)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.ExternalID, &u.Username, &u.FullName, &u.Email, &u.Balance, &u.GiftBalance, &u.Role, &u.IsActive)
	return u, err
}
