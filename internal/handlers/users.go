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

func handleListUsers(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pagination(r)

		users, err := userService.List(r.Context(), offset, limit)
		if err != nil {
			l.Error("Failed to list users", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]userResponse, 0, len(users))
		for _, u := range users {
			response = append(response, toUserResponse(u))
		}
		render.JSON(w, response)
	})
}

func handleLeaderboard(userService userService, l logger.Logger) http.Handler {
	type entry struct {
		UserID      uuid.UUID `json:"user_id"`
		Username    string    `json:"username"`
		FullName    string    `json:"full_name"`
		Balance     int64     `json:"balance"`
		TotalEarned int64     `json:"total_earned"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pagination(r)

		leaderboard, err := userService.Leaderboard(r.Context(), offset, limit)
		if err != nil {
			l.Error("Failed to get leaderboard", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]entry, 0, len(leaderboard))
		for _, e := range leaderboard {
			response = append(response, entry{
				UserID:      e.UserID,
				Username:    e.Username,
				FullName:    e.FullName,
				Balance:     e.Balance,
				TotalEarned: e.TotalEarned,
			})
		}
		render.JSON(w, response)
	})
}

func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		render.JSON(w, toUserResponse(user))
	})
}

func handleMyTransactions(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		offset, limit := pagination(r)

		transactions, err := userService.ListTransactions(r.Context(), user.ID, offset, limit)
		if err != nil {
			l.Error("Failed to list transactions", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]transactionResponse, 0, len(transactions))
		for _, t := range transactions {
			response = append(response, toTransactionResponse(t))
		}
		render.JSON(w, response)
	})
}

func handleMyRequests(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		offset, limit := pagination(r)

		requests, err := userService.ListRequests(r.Context(), user.ID, offset, limit)
		if err != nil {
			l.Error("Failed to list requests", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]requestResponse, 0, len(requests))
		for _, rq := range requests {
			response = append(response, toRequestResponse(rq))
		}
		render.JSON(w, response)
	})
}

func handleGetUser(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
			return
		}

		user, err := userService.GetByID(r.Context(), id)

		switch {
		case err == nil:
			render.JSON(w, toUserResponse(user))
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to get user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleAdjustBalance(ledgerService ledgerService, l logger.Logger) http.Handler {
	type request struct {
		Amount      int64  `json:"amount" validate:"required"`
		Description string `json:"description"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := ledgerService.AdjustBalance(r.Context(), ledger.AdjustParams{
			UserID:      id,
			Delta:       data.Amount,
			Description: data.Description,
			AdminID:     &admin.ID,
		})

		switch {
		case err == nil:
			render.JSON(w, toUserResponse(user))
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInvalidOperation):
			render.ServiceError(w, err.Error(), http.StatusBadRequest)
		default:
			l.Error("Failed to adjust balance", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
