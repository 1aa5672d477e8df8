package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/handlers/render"
	"github.com/campuscoin/api/internal/handlers/userctx"
	"github.com/campuscoin/api/internal/logger"
	"github.com/campuscoin/api/internal/service/ledger"
)

func handleTransfer(ledgerService ledgerService, l logger.Logger) http.Handler {
	type request struct {
		RecipientID    uuid.UUID `json:"recipient_id" validate:"required"`
		Amount         int64     `json:"amount" validate:"required,gt=0"`
		Description    string    `json:"description"`
		UseGiftBalance bool      `json:"use_gift_balance"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		transaction, err := ledgerService.Transfer(r.Context(), ledger.TransferParams{
			SenderID:       user.ID,
			RecipientID:    data.RecipientID,
			Amount:         data.Amount,
			Description:    data.Description,
			UseGiftBalance: data.UseGiftBalance,
		})

		switch {
		case err == nil:
			render.JSONStatus(w, toTransactionResponse(transaction), http.StatusCreated)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "Recipient not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrSelfOperation):
			render.ServiceError(w, "Cannot send money to yourself", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			render.ServiceError(w, "Insufficient funds", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrInvalidOperation):
			render.ServiceError(w, err.Error(), http.StatusBadRequest)
		default:
			l.Error("Failed to transfer", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
