package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/models"
	"github.com/campuscoin/api/internal/repository"
	"github.com/campuscoin/api/internal/testutil"
)

func Test_RequestRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Requests reference real users, create a pair per test
	createPair := func(t *testing.T, tx pgx.Tx, suffix string) (models.User, models.User) {
		users := UserRepo{db: tx}

		requester, err := users.CreateUser(t.Context(), repository.CreateUserParams{
			Username: "requester" + suffix,
			Email:    "requester" + suffix + "@campus.edu",
		})
		require.NoError(t, err)

		payer, err := users.CreateUser(t.Context(), repository.CreateUserParams{
			Username: "payer" + suffix,
			Email:    "payer" + suffix + "@campus.edu",
		})
		require.NoError(t, err)

		return requester, payer
	}

	t.Run("create request ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RequestRepo{db: tx}
			requester, payer := createPair(t, tx, "create")

			request, err := r.CreateRequest(t.Context(), repository.CreateRequestParams{
				RequesterID: requester.ID,
				PayerID:     payer.ID,
				Amount:      15,
				Description: "lunch",
			})

			require.NoError(t, err)
			assert.Equal(t, requester.ID, request.RequesterID)
			assert.Equal(t, payer.ID, request.PayerID)
			assert.Equal(t, int64(15), request.Amount)
			assert.Equal(t, models.RequestPending, request.Status)
			assert.True(t, request.IsActive)
		})
	})

	t.Run("get request by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RequestRepo{db: tx}

			_, err := r.GetRequestByID(t.Context(), uuid.New(), false)

			assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
		})
	})

	t.Run("mark settled flips status once", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RequestRepo{db: tx}
			requester, payer := createPair(t, tx, "settle")

			request, err := r.CreateRequest(t.Context(), repository.CreateRequestParams{
				RequesterID: requester.ID,
				PayerID:     payer.ID,
				Amount:      5,
			})
			require.NoError(t, err)

			settled, err := r.MarkSettled(t.Context(), request.ID)
			require.NoError(t, err)
			assert.Equal(t, models.RequestCompleted, settled.Status)
			assert.False(t, settled.IsActive)
			assert.True(t, settled.UpdatedAt.After(request.UpdatedAt) || settled.UpdatedAt.Equal(request.UpdatedAt))
		})
	})

	t.Run("list user requests includes both sides", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RequestRepo{db: tx}
			requester, payer := createPair(t, tx, "list")

			_, err := r.CreateRequest(t.Context(), repository.CreateRequestParams{
				RequesterID: requester.ID,
				PayerID:     payer.ID,
				Amount:      5,
			})
			require.NoError(t, err)

			asRequester, err := r.ListUserRequests(t.Context(), requester.ID, 0, 100)
			require.NoError(t, err)
			assert.Len(t, asRequester, 1)

			asPayer, err := r.ListUserRequests(t.Context(), payer.ID, 0, 100)
			require.NoError(t, err)
			assert.Len(t, asPayer, 1)
		})
	})
}
