package models

import (
	"time"

	"github.com/google/uuid"
)

type ShopItem struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	Title       string
	Description string
	Price       int64
	Image       *string // base64 encoded payload
}
