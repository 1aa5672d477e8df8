package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/campuscoin/api/internal/models"
)

// Shared response payloads for entities rendered by several handlers

type userResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Balance     int64     `json:"balance"`
	GiftBalance int64     `json:"gift_balance"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Email:       u.Email,
		Balance:     u.Balance,
		GiftBalance: u.GiftBalance,
		Role:        u.Role,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

type transactionResponse struct {
	ID          uuid.UUID              `json:"id"`
	Amount      int64                  `json:"amount"`
	Type        models.TransactionType `json:"type"`
	Description string                 `json:"description"`
	RecipientID *uuid.UUID             `json:"recipient_id,omitempty"`
	RequestID   *uuid.UUID             `json:"request_id,omitempty"`
	ShopItemID  *uuid.UUID             `json:"shop_item_id,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

func toTransactionResponse(t models.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Amount:      t.Amount,
		Type:        t.Type,
		Description: t.Description,
		RecipientID: t.RecipientID,
		RequestID:   t.RequestID,
		ShopItemID:  t.ShopItemID,
		CreatedAt:   t.CreatedAt,
	}
}

type requestResponse struct {
	ID          uuid.UUID `json:"id"`
	RequesterID uuid.UUID `json:"requester_id"`
	PayerID     uuid.UUID `json:"payer_id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRequestResponse(rq models.Request) requestResponse {
	return requestResponse{
		ID:          rq.ID,
		RequesterID: rq.RequesterID,
		PayerID:     rq.PayerID,
		Amount:      rq.Amount,
		Description: rq.Description,
		Status:      rq.Status,
		IsActive:    rq.IsActive,
		CreatedAt:   rq.CreatedAt,
		UpdatedAt:   rq.UpdatedAt,
	}
}
