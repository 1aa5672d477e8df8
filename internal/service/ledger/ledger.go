package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/models"
	"github.com/campuscoin/api/internal/repository"
)

// LedgerService is the only component that mutates balances. Every
// operation runs inside one storage transaction: all invariant checks
// pass and both legs commit, or nothing does. User rows involved in a
// check-then-write are locked with FOR UPDATE so concurrent operations
// cannot overdraw an account against a stale read.
type LedgerService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *LedgerService {
	return &LedgerService{storage: storage}
}

type TransferParams struct {
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Amount      int64
	Description string

	// Spend from the sender's gift balance. Credits always land in the
	// recipient's regular balance
	UseGiftBalance bool
}

// Transfer moves Amount from sender to recipient and records a debit
// and a credit transaction that sum to zero. Returns the debit leg.
func (s *LedgerService) Transfer(ctx context.Context, p TransferParams) (models.Transaction, error) {
	var debit models.Transaction

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		if p.RecipientID == p.SenderID {
			return apperrors.ErrSelfOperation
		}
		if p.Amount <= 0 {
			return apperrors.ErrAmountNotPositive
		}

		sender, err := store.User().GetUserByID(ctx, p.SenderID, true)
		if err != nil {
			return err
		}

		funding := sender.Balance
		if p.UseGiftBalance {
			funding = sender.GiftBalance
		}
		if funding < p.Amount {
			return apperrors.ErrInsufficientFunds
		}

		recipient, err := store.User().GetUserByID(ctx, p.RecipientID, true)
		if err != nil {
			return err
		}

		if _, err := store.User().AddToBalance(ctx, sender.ID, -p.Amount, p.UseGiftBalance); err != nil {
			return err
		}
		if _, err := store.User().AddToBalance(ctx, recipient.ID, p.Amount, false); err != nil {
			return err
		}

		description := orNoDescription(p.Description)

		debit, err = store.Transaction().CreateTransaction(ctx, repository.CreateTransactionParams{
			UserID:      sender.ID,
			Amount:      -p.Amount,
			Type:        models.TransactionTransfer,
			Description: fmt.Sprintf("Sent to %s: %s", recipient.DisplayName(), description),
			RecipientID: &recipient.ID,
		})
		if err != nil {
			return err
		}

		_, err = store.Transaction().CreateTransaction(ctx, repository.CreateTransactionParams{
			UserID:      recipient.ID,
			Amount:      p.Amount,
			Type:        models.TransactionTransferReceived,
			Description: fmt.Sprintf("Received from %s: %s", sender.DisplayName(), description),
			RecipientID: &sender.ID,
		})

		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}

	return debit, nil
}

type RequestParams struct {
	RequesterID uuid.UUID
	PayerID     uuid.UUID
	Amount      int64
	Description string
}

// CreateRequest records a pending claim of the requester against the
// payer. No money moves until the payer settles it.
func (s *LedgerService) CreateRequest(ctx context.Context, p RequestParams) (models.Request, error) {
	var request models.Request

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		if _, err := store.User().GetUserByID(ctx, p.PayerID, false); err != nil {
			return err
		}
		if p.PayerID == p.RequesterID {
			return apperrors.ErrSelfOperation
		}
		if p.Amount <= 0 {
			return apperrors.ErrAmountNotPositive
		}

		var err error
		request, err = store.Request().CreateRequest(ctx, repository.CreateRequestParams{
			RequesterID: p.RequesterID,
			PayerID:     p.PayerID,
			Amount:      p.Amount,
			Description: p.Description,
		})
		return err
	})
	if err != nil {
		return models.Request{}, err
	}

	return request, nil
}

// SettleRequest pays a pending request. Only the payer named on the
// request may settle it, and only once: the balance mutation, both
// transaction legs and the pending->completed flip commit atomically.
// If the requester's account is gone the settlement fails instead of
// debiting the payer with no matching credit.
func (s *LedgerService) SettleRequest(ctx context.Context, requestID uuid.UUID, payerID uuid.UUID) (models.Request, error) {
	var settled models.Request

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		request, err := store.Request().GetRequestByID(ctx, requestID, true)
		if err != nil {
			return err
		}
		if request.PayerID != payerID {
			return apperrors.ErrNotRequestPayer
		}
		if !request.IsActive {
			return apperrors.ErrRequestAlreadySettled
		}

		payer, err := store.User().GetUserByID(ctx, payerID, true)
		if err != nil {
			return err
		}
		if payer.Balance < request.Amount {
			return apperrors.ErrInsufficientFunds
		}

		requester, err := store.User().GetUserByID(ctx, request.RequesterID, true)
		if err != nil {
			return err
		}

		if _, err := store.User().AddToBalance(ctx, payer.ID, -request.Amount, false); err != nil {
			return err
		}
		if _, err := store.User().AddToBalance(ctx, requester.ID, request.Amount, false); err != nil {
			return err
		}

		description := orNoDescription(request.Description)

		_, err = store.Transaction().CreateTransaction(ctx, repository.CreateTransactionParams{
			UserID:      payer.ID,
			Amount:      -request.Amount,
			Type:        models.TransactionRequestPayment,
			Description: description,
			RecipientID: &requester.ID,
			RequestID:   &request.ID,
		})
		if err != nil {
			return err
		}

		_, err = store.Transaction().CreateTransaction(ctx, repository.CreateTransactionParams{
			UserID:      requester.ID,
			Amount:      request.Amount,
			Type:        models.TransactionRequestPaymentRecv,
			Description: description,
			RecipientID: &payer.ID,
			RequestID:   &request.ID,
		})
		if err != nil {
			return err
		}

		settled, err = store.Request().MarkSettled(ctx, request.ID)
		return err
	})
	if err != nil {
		return models.Request{}, err
	}

	return settled, nil
}

// Purchase debits the user for a shop item. Purchases are a sink: the
// single transaction leg has no counterparty credit.
func (s *LedgerService) Purchase(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) (models.Transaction, error) {
	var receipt models.Transaction

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		item, err := store.Shop().GetItemByID(ctx, itemID)
		if err != nil {
			return err
		}

		user, err := store.User().GetUserByID(ctx, userID, true)
		if err != nil {
			return err
		}
		if user.Balance < item.Price {
			return fmt.Errorf("%w: item costs %d, balance is %d", apperrors.ErrInsufficientFunds, item.Price, user.Balance)
		}

		if _, err := store.User().AddToBalance(ctx, user.ID, -item.Price, false); err != nil {
			return err
		}

		receipt, err = store.Transaction().CreateTransaction(ctx, repository.CreateTransactionParams{
			UserID:      user.ID,
			Amount:      -item.Price,
			Type:        models.TransactionShopPurchase,
			Description: "Purchased: " + item.Title,
			ShopItemID:  &item.ID,
		})
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}

	return receipt, nil
}

type AdjustParams struct {
	UserID      uuid.UUID
	Delta       int64
	Description string
	AdminID     *uuid.UUID
}

// AdjustBalance applies a unilateral administrative credit or debit.
// There is no counterparty leg; the admin actor is recorded on the
// transaction instead.
func (s *LedgerService) AdjustBalance(ctx context.Context, p AdjustParams) (models.User, error) {
	var adjusted models.User

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		if p.Delta == 0 {
			return apperrors.ErrAmountNotPositive
		}

		user, err := store.User().GetUserByID(ctx, p.UserID, true)
		if err != nil {
			return err
		}
		if user.Balance+p.Delta < 0 {
			return apperrors.ErrInsufficientFunds
		}

		adjusted, err = store.User().AddToBalance(ctx, user.ID, p.Delta, false)
		if err != nil {
			return err
		}

		transactionType := models.TransactionCredit
		if p.Delta < 0 {
			transactionType = models.TransactionDebit
		}

		description := p.Description
		if description == "" {
			description = "Admin adjustment"
		}

		_, err = store.Transaction().CreateTransaction(ctx, repository.CreateTransactionParams{
			UserID:      user.ID,
			AdminID:     p.AdminID,
			Amount:      p.Delta,
			Type:        transactionType,
			Description: description,
		})
		return err
	})
	if err != nil {
		return models.User{}, err
	}

	return adjusted, nil
}

func orNoDescription(description string) string {
	if description == "" {
		return "No description"
	}
	return description
}
