package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/handlers/render"
	"github.com/campuscoin/api/internal/logger"
)

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Token    string `json:"token" validate:"required"`
		FullName string `json:"full_name"`
	}

	type response struct {
		AccessToken string       `json:"access_token"`
		TokenType   string       `json:"token_type"`
		ExpiresAt   time.Time    `json:"expires_at"`
		User        userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		session, err := authService.Login(r.Context(), data.Token, data.FullName)

		switch {
		case err == nil:
			render.JSON(w, response{
				AccessToken: session.Token,
				TokenType:   "bearer",
				ExpiresAt:   session.ExpiresAt,
				User:        toUserResponse(session.User),
			})
		case errors.Is(err, apperrors.ErrUnauthorized):
			render.ServiceError(w, "Invalid or expired token", http.StatusUnauthorized)
		default:
			l.Error("Login failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
