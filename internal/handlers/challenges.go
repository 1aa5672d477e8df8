package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/handlers/render"
	"github.com/campuscoin/api/internal/logger"
	"github.com/campuscoin/api/internal/models"
	"github.com/campuscoin/api/internal/repository"
)

type challengeResponse struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Reward      int64     `json:"reward"`
}

func toChallengeResponse(c models.Challenge) challengeResponse {
	return challengeResponse{
		ID:          c.ID,
		CreatedAt:   c.CreatedAt,
		Title:       c.Title,
		Description: c.Description,
		Reward:      c.Reward,
	}
}

func handleListChallenges(challengeService challengeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pagination(r)

		challenges, err := challengeService.List(r.Context(), offset, limit)
		if err != nil {
			l.Error("Failed to list challenges", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]challengeResponse, 0, len(challenges))
		for _, c := range challenges {
			response = append(response, toChallengeResponse(c))
		}
		render.JSON(w, response)
	})
}

func handleCreateChallenge(challengeService challengeService, l logger.Logger) http.Handler {
	type request struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		Reward      int64  `json:"reward" validate:"required,gt=0"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		challenge, err := challengeService.Create(r.Context(), repository.CreateChallengeParams{
			Title:       data.Title,
			Description: data.Description,
			Reward:      data.Reward,
		})
		if err != nil {
			l.Error("Failed to create challenge", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONStatus(w, toChallengeResponse(challenge), http.StatusCreated)
	})
}

func handleDeleteChallenge(challengeService challengeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid challenge id", http.StatusBadRequest)
			return
		}

		err = challengeService.Delete(r.Context(), id)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrChallengeNotFound):
			render.ServiceError(w, "Challenge not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete challenge", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
