package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campuscoin/api/internal/models"
	"github.com/campuscoin/api/internal/repository"
)

type TransactionRepo struct {
	db DBTX
}

const transactionColumns = `id, created_at, user_id, admin_id, amount, type, description, recipient_id, request_id, shop_item_id`

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (id, user_id, admin_id, amount, type, description, recipient_id, request_id, shop_item_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + transactionColumns

func (r *TransactionRepo) CreateTransaction(ctx context.Context, arg repository.CreateTransactionParams) (models.Transaction, error) {
	rows, _ := r.db.Query(ctx, createTransaction,
		uuid.New(), arg.UserID, arg.AdminID, arg.Amount, arg.Type, arg.Description, arg.RecipientID, arg.RequestID, arg.ShopItemID,
	)
	tr, err := pgx.CollectOneRow(rows, rowToTransaction)
	if err != nil {
		return tr, fmt.Errorf("db error: %w", err)
	}

	return tr, nil
}

const listUserTransactions = `-- name: ListUserTransactions
SELECT ` + transactionColumns + ` FROM transactions
WHERE user_id = $1
ORDER BY created_at DESC
OFFSET $2 LIMIT $3
`

func (r *TransactionRepo) ListUserTransactions(ctx context.Context, userID uuid.UUID, offset int, limit int) ([]models.Transaction, error) {
	rows, _ := r.db.Query(ctx, listUserTransactions, userID, offset, limit)
	trs, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return trs, nil
}

const listTransactions = `-- name: ListTransactions
SELECT ` + transactionColumns + ` FROM transactions
ORDER BY created_at DESC
OFFSET $1 LIMIT $2
`

func (r *TransactionRepo) ListTransactions(ctx context.Context, offset int, limit int) ([]models.Transaction, error) {
	rows, _ := r.db.Query(ctx, listTransactions, offset, limit)
	trs, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return trs, nil
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.CreatedAt, &t.UserID, &t.AdminID, &t.Amount, &t.Type, &t.Description, &t.RecipientID, &t.RequestID, &t.ShopItemID)
	return t, err
}
