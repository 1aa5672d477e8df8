package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/handlers/render"
	"github.com/campuscoin/api/internal/handlers/userctx"
	"github.com/campuscoin/api/internal/logger"
	"github.com/campuscoin/api/internal/models"
	"github.com/campuscoin/api/internal/repository"
)

type shopItemResponse struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Image       *string   `json:"image,omitempty"`
}

func toShopItemResponse(item models.ShopItem) shopItemResponse {
	return shopItemResponse{
		ID:          item.ID,
		CreatedAt:   item.CreatedAt,
		Title:       item.Title,
		Description: item.Description,
		Price:       item.Price,
		Image:       item.Image,
	}
}

func handleListShopItems(shopService shopService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pagination(r)

		items, err := shopService.ListItems(r.Context(), offset, limit)
		if err != nil {
			l.Error("Failed to list shop items", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]shopItemResponse, 0, len(items))
		for _, item := range items {
			response = append(response, toShopItemResponse(item))
		}
		render.JSON(w, response)
	})
}

func handleCreateShopItem(shopService shopService, l logger.Logger) http.Handler {
	type request struct {
		Title       string  `json:"title" validate:"required"`
		Description string  `json:"description"`
		Price       int64   `json:"price" validate:"required,gt=0"`
		Image       *string `json:"image"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		item, err := shopService.CreateItem(r.Context(), repository.CreateShopItemParams{
			Title:       data.Title,
			Description: data.Description,
			Price:       data.Price,
			Image:       data.Image,
		})
		if err != nil {
			l.Error("Failed to create shop item", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONStatus(w, toShopItemResponse(item), http.StatusCreated)
	})
}

func handleDeleteShopItem(shopService shopService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid item id", http.StatusBadRequest)
			return
		}

		err = shopService.DeleteItem(r.Context(), id)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrShopItemNotFound):
			render.ServiceError(w, "Item not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete shop item", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handlePurchase(ledgerService ledgerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid item id", http.StatusBadRequest)
			return
		}

		receipt, err := ledgerService.Purchase(r.Context(), user.ID, id)

		switch {
		case err == nil:
			render.JSONStatus(w, toTransactionResponse(receipt), http.StatusCreated)
		case errors.Is(err, apperrors.ErrShopItemNotFound):
			render.ServiceError(w, "Item not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			render.ServiceError(w, "Insufficient funds", http.StatusBadRequest)
		default:
			l.Error("Failed to purchase item", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
