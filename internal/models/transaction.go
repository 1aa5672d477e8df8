package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTransfer           TransactionType = "transfer"
	TransactionTransferReceived   TransactionType = "transfer_received"
	TransactionRequestPayment     TransactionType = "request_payment"
	TransactionRequestPaymentRecv TransactionType = "request_payment_received"
	TransactionShopPurchase       TransactionType = "shop_purchase"
	TransactionCredit             TransactionType = "credit"
	TransactionDebit              TransactionType = "debit"
)

// Transaction is an immutable record of one signed balance movement.
// Negative amount is a debit, positive a credit.
type Transaction struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UserID      uuid.UUID
	AdminID     *uuid.UUID
	Amount      int64
	Type        TransactionType
	Description string
	RecipientID *uuid.UUID
	RequestID   *uuid.UUID
	ShopItemID  *uuid.UUID
}
