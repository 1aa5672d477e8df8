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

type ShopRepo struct {
	db DBTX
}

const shopItemColumns = `id, created_at, title, description, price, image`

const createShopItem = `-- name: CreateShopItem
INSERT INTO shop_items (id, title, description, price, image)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + shopItemColumns

func (r *ShopRepo) CreateItem(ctx context.Context, arg repository.CreateShopItemParams) (models.ShopItem, error) {
	rows, _ := r.db.Query(ctx, createShopItem, uuid.New(), arg.Title, arg.Description, arg.Price, arg.Image)
	item, err := pgx.CollectOneRow(rows, rowToShopItem)
	if err != nil {
		return item, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

const getShopItemByID = `-- name: GetShopItemByID
SELECT ` + shopItemColumns + ` FROM shop_items
WHERE id = $1
`

func (r *ShopRepo) GetItemByID(ctx context.Context, id uuid.UUID) (models.ShopItem, error) {
	rows, _ := r.db.Query(ctx, getShopItemByID, id)
	item, err := pgx.CollectOneRow(rows, rowToShopItem)

	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, pgx.ErrNoRows):
		return item, apperrors.ErrShopItemNotFound
	default:
		return item, fmt.Errorf("db error: %w", err)
	}
}

const listShopItems = `-- name: ListShopItems
SELECT ` + shopItemColumns + ` FROM shop_items
ORDER BY created_at
OFFSET $1 LIMIT $2
`

func (r *ShopRepo) ListItems(ctx context.Context, offset int, limit int) ([]models.ShopItem, error) {
	rows, _ := r.db.Query(ctx, listShopItems, offset, limit)
	items, err := pgx.CollectRows(rows, rowToShopItem)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

const deleteShopItem = `-- name: DeleteShopItem
DELETE FROM shop_items
WHERE id = $1
`

func (r *ShopRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteShopItem, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrShopItemNotFound
	}

	return nil
}

func rowToShopItem(row pgx.CollectableRow) (models.ShopItem, error) {
	var i models.ShopItem
	err := row.Scan(&i.ID, &i.CreatedAt, &i.Title, &i.Description, &i.Price, &i.Image)
	return i, err
}
