package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campuscoin/api/internal/handlers/middleware"
	"github.com/campuscoin/api/internal/logger"
	"github.com/campuscoin/api/internal/models"
	"github.com/campuscoin/api/internal/repository"
	"github.com/campuscoin/api/internal/service/auth"
	"github.com/campuscoin/api/internal/service/ledger"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	ledgerService ledgerService,
	userService userService,
	shopService shopService,
	challengeService challengeService,
	webhookSecret string,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	adminMiddleware := middleware.AdminMiddleware()

	// Instrumentation wraps each route handler directly because the mux
	// sets r.Pattern only on the request it passes to the matched
	// handler, not on middleware applied around the mux itself
	instrument := middleware.MetricsMiddleware()
	withAuth := func(h http.Handler) http.Handler {
		return instrument(authMiddleware(h))
	}
	withAdmin := func(h http.Handler) http.Handler {
		return instrument(authMiddleware(adminMiddleware(h)))
	}
	public := instrument

	apiv1 := http.NewServeMux()

	apiv1.Handle("POST /auth/login", public(handleLogin(authService, logger)))
	apiv1.Handle("POST /webhooks/identity", public(handleIdentityWebhook(userService, webhookSecret, logger)))

	apiv1.Handle("GET /users", withAdmin(handleListUsers(userService, logger)))
	apiv1.Handle("GET /users/leaderboard", withAuth(handleLeaderboard(userService, logger)))
	apiv1.Handle("GET /users/me", withAuth(handleUserMe()))
	apiv1.Handle("GET /users/me/transactions", withAuth(handleMyTransactions(userService, logger)))
	apiv1.Handle("GET /users/me/requests", withAuth(handleMyRequests(userService, logger)))
	apiv1.Handle("GET /users/{id}", withAuth(handleGetUser(userService, logger)))
	apiv1.Handle("POST /users/{id}/balance", withAdmin(handleAdjustBalance(ledgerService, logger)))

	apiv1.Handle("POST /transactions/transfer", withAuth(handleTransfer(ledgerService, logger)))

	apiv1.Handle("POST /requests", withAuth(handleCreateRequest(ledgerService, logger)))
	apiv1.Handle("POST /requests/{id}/pay", withAuth(handlePayRequest(ledgerService, logger)))

	apiv1.Handle("GET /shop", withAuth(handleListShopItems(shopService, logger)))
	apiv1.Handle("POST /shop", withAdmin(handleCreateShopItem(shopService, logger)))
	apiv1.Handle("DELETE /shop/{id}", withAdmin(handleDeleteShopItem(shopService, logger)))
	apiv1.Handle("POST /shop/{id}/purchase", withAuth(handlePurchase(ledgerService, logger)))

	apiv1.Handle("GET /challenges", withAuth(handleListChallenges(challengeService, logger)))
	apiv1.Handle("POST /challenges", withAdmin(handleCreateChallenge(challengeService, logger)))
	apiv1.Handle("DELETE /challenges/{id}", withAdmin(handleDeleteChallenge(challengeService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", apiv1))
	root.Handle("GET /metrics", promhttp.Handler())
	root.Handle("GET /healthz", handleHealth())

	return chain(root,
		middleware.LoggerMiddleware(logger),
	)
}

func handleHealth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

type authService interface {
	// Exchange a verified identity token for a session
	// Has to return apperrors.ErrUnauthorized if the token is not valid
	Login(ctx context.Context, externalToken string, fullName string) (auth.Session, error)

	// Authenticate the request and return the acting user
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

type ledgerService interface {
	Transfer(ctx context.Context, p ledger.TransferParams) (models.Transaction, error)
	CreateRequest(ctx context.Context, p ledger.RequestParams) (models.Request, error)
	SettleRequest(ctx context.Context, requestID uuid.UUID, payerID uuid.UUID) (models.Request, error)
	Purchase(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) (models.Transaction, error)
	AdjustBalance(ctx context.Context, p ledger.AdjustParams) (models.User, error)
}

type userService interface {
	webhookUserService

	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	List(ctx context.Context, offset int, limit int) ([]models.User, error)
	Leaderboard(ctx context.Context, offset int, limit int) ([]models.LeaderboardEntry, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, offset int, limit int) ([]models.Transaction, error)
	ListRequests(ctx context.Context, userID uuid.UUID, offset int, limit int) ([]models.Request, error)
}

type shopService interface {
	CreateItem(ctx context.Context, arg repository.CreateShopItemParams) (models.ShopItem, error)
	ListItems(ctx context.Context, offset int, limit int) ([]models.ShopItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type challengeService interface {
	Create(ctx context.Context, arg repository.CreateChallengeParams) (models.Challenge, error)
	List(ctx context.Context, offset int, limit int) ([]models.Challenge, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
