package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RequestPending   = "pending"
	RequestCompleted = "completed"
)

// Request is a solicitation for payment: the requester asks the payer
// for money. Settled at most once, by the payer only.
type Request struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RequesterID uuid.UUID
	PayerID     uuid.UUID
	Amount      int64
	Description string
	Status      string
	IsActive    bool
}
