package models

import (
	"time"

	"github.com/google/uuid"
)

type Challenge struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	Title       string
	Description string
	Reward      int64
}
