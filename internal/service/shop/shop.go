package shop

import (
	"context"

	"github.com/google/uuid"

	"github.com/campuscoin/api/internal/models"
	"github.com/campuscoin/api/internal/repository"
)

// ShopService manages the catalog. Purchases live in the ledger
// service; items are only referenced from purchase transactions.
type ShopService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *ShopService {
	return &ShopService{storage: storage}
}

func (s *ShopService) CreateItem(ctx context.Context, arg repository.CreateShopItemParams) (models.ShopItem, error) {
	return s.storage.Shop().CreateItem(ctx, arg)
}

func (s *ShopService) ListItems(ctx context.Context, offset int, limit int) ([]models.ShopItem, error) {
	return s.storage.Shop().ListItems(ctx, offset, limit)
}

func (s *ShopService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.storage.Shop().DeleteItem(ctx, id)
}
