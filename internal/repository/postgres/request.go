package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/models"
	"github.com/campuscoin/api/internal/repository"
)

type RequestRepo struct {
	db DBTX
}

const requestColumns = `id, created_at, updated_at, requester_id, payer_id, amount, description, status, is_active`

const createRequest = `-- name: CreateRequest
INSERT INTO requests (id, requester_id, payer_id, amount, description, status, is_active)
VALUES ($1, $2, $3, $4, $5, $6, true)
RETURNING ` + requestColumns

func (r *RequestRepo) CreateRequest(ctx context.Context, arg repository.CreateRequestParams) (models.Request, error) {
	rows, _ := r.db.Query(ctx, createRequest,
		uuid.New(), arg.RequesterID, arg.PayerID, arg.Amount, arg.Description, models.RequestPending,
	)
	request, err := pgx.CollectOneRow(rows, rowToRequest)
	if err != nil {
		return request, fmt.Errorf("db error: %w", err)
	}

	return request, nil
}

const getRequestByID = `-- name: GetRequestByID
SELECT ` + requestColumns + ` FROM requests
WHERE id = $1
`

func (r *RequestRepo) GetRequestByID(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Request, error) {
	query := getRequestByID
	if forUpdate {
		query += "FOR UPDATE"
	}

	rows, _ := r.db.Query(ctx, query, id)
	return collectRequest(rows)
}

const listUserRequests = `-- name: ListUserRequests
SELECT ` + requestColumns + ` FROM requests
WHERE requester_id = $1 OR payer_id = $1
ORDER BY created_at DESC
OFFSET $2 LIMIT $3
`

func (r *RequestRepo) ListUserRequests(ctx context.Context, userID uuid.UUID, offset int, limit int) ([]models.Request, error) {
	rows, _ := r.db.Query(ctx, listUserRequests, userID, offset, limit)
	requests, err := pgx.CollectRows(rows, rowToRequest)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return requests, nil
}

const markSettled = `-- name: MarkSettled
UPDATE requests SET status = $2, is_active = false, updated_at = now()
WHERE id = $1
RETURNING ` + requestColumns

func (r *RequestRepo) MarkSettled(ctx context.Context, id uuid.UUID) (models.Request, error) {
	rows, _ := r.db.Query(ctx, markSettled, id, models.RequestCompleted)
	return collectRequest(rows)
}

func collectRequest(rows pgx.Rows) (models.Request, error) {
	request, err := pgx.CollectOneRow(rows, rowToRequest)

	switch {
	case err == nil:
		return request, nil
	case errors.Is(err, pgx.ErrNoRows):
		return request, apperrors.ErrRequestNotFound
	default:
		return request, fmt.Errorf("db error: %w", err)
	}
}

func rowToRequest(row pgx.CollectableRow) (models.Request, error) {
	var rq models.Request
	err := row.Scan(&rq.ID, &rq.CreatedAt, &rq.UpdatedAt, &rq.RequesterID, &rq.PayerID, &rq.Amount, &rq.Description, &rq.Status, &rq.IsActive)
	return rq, err
}
