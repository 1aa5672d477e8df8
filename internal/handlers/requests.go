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

func handleCreateRequest(ledgerService ledgerService, l logger.Logger) http.Handler {
	type request struct {
		PayerID     uuid.UUID `json:"payer_id" validate:"required"`
		Amount      int64     `json:"amount" validate:"required,gt=0"`
		Description string    `json:"description"`
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

		created, err := ledgerService.CreateRequest(r.Context(), ledger.RequestParams{
			RequesterID: user.ID,
			PayerID:     data.PayerID,
			Amount:      data.Amount,
			Description: data.Description,
		})

		switch {
		case err == nil:
			render.JSONStatus(w, toRequestResponse(created), http.StatusCreated)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "Payer not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrSelfOperation):
			render.ServiceError(w, "Cannot request money from yourself", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrInvalidOperation):
			render.ServiceError(w, err.Error(), http.StatusBadRequest)
		default:
			l.Error("Failed to create request", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handlePayRequest(ledgerService ledgerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid request id", http.StatusBadRequest)
			return
		}

		settled, err := ledgerService.SettleRequest(r.Context(), id, user.ID)

		switch {
		case err == nil:
			render.JSON(w, toRequestResponse(settled))
		case errors.Is(err, apperrors.ErrRequestNotFound):
			render.ServiceError(w, "Request not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrNotRequestPayer):
			render.ServiceError(w, "Only the payer can settle this request", http.StatusForbidden)
		case errors.Is(err, apperrors.ErrRequestAlreadySettled):
			render.ServiceError(w, "Request is already settled", http.StatusConflict)
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			render.ServiceError(w, "Insufficient funds", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "Requester account no longer exists", http.StatusNotFound)
		default:
			l.Error("Failed to settle request", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
