package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/models"
	"github.com/campuscoin/api/internal/repository"
)

// How many suffixed usernames to try before giving up on onboarding
const usernameAttempts = 10

type UserService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *UserService {
	return &UserService{storage: storage}
}

// Onboard returns the account for the identity, creating it on first
// contact. New accounts start with the default balances and get a
// "Welcome Bonus" credit transaction in the same database transaction,
// so the balance is explained by the ledger from day one.
//
// Concurrent first logins race on the email uniqueness constraint; the
// loser re-reads the winner's row instead of failing.
func (s *UserService) Onboard(ctx context.Context, identity models.Identity) (models.User, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, identity.Email)

	switch {
	case err == nil:
		return s.backfillExternalID(ctx, user, identity.ExternalID)
	case errors.Is(err, apperrors.ErrUserNotFound):
		// proceed to create
	default:
		return models.User{}, err
	}

	user, err = s.createWithBonus(ctx, identity)
	if errors.Is(err, apperrors.ErrUserAlreadyExists) {
		return s.storage.User().GetUserByEmail(ctx, identity.Email)
	}

	return user, err
}

func (s *UserService) createWithBonus(ctx context.Context, identity models.Identity) (models.User, error) {
	fullName := identity.FullName
	if fullName == "" {
		fullName = usernameBase(identity.Email)
	}

	var externalID *string
	if identity.ExternalID != "" {
		externalID = &identity.ExternalID
	}

	var user models.User

	// Usernames are generated from the email local part; on collision
	// retry with a numeric suffix. Each attempt is its own transaction
	// because a failed insert poisons the current one.
	base := usernameBase(identity.Email)
	for attempt := range usernameAttempts {
		username := base
		if attempt > 0 {
			username = fmt.Sprintf("%s%d", base, attempt+1)
		}

		err := s.storage.InTx(ctx, func(store repository.Storage) error {
			var err error
			user, err = store.User().CreateUser(ctx, repository.CreateUserParams{
				ExternalID:  externalID,
				Username:    username,
				FullName:    fullName,
				Email:       identity.Email,
				Balance:     models.DefaultBalance,
				GiftBalance: models.DefaultGiftBalance,
			})
			if err != nil {
				return err
			}

			if user.Balance > 0 {
				_, err = store.Transaction().CreateTransaction(ctx, repository.CreateTransactionParams{
					UserID:      user.ID,
					Amount:      user.Balance,
					Type:        models.TransactionCredit,
					Description: "Welcome Bonus",
				})
			}
			return err
		})

		if errors.Is(err, apperrors.ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return models.User{}, err
		}

		return user, nil
	}

	return models.User{}, fmt.Errorf("could not find free username for %q", identity.Email)
}

func (s *UserService) backfillExternalID(ctx context.Context, user models.User, externalID string) (models.User, error) {
	if externalID == "" || user.ExternalID != nil {
		return user, nil
	}

	return s.storage.User().UpdateUser(ctx, user.ID, repository.UpdateUserParams{ExternalID: &externalID})
}

// SyncUpdated refreshes email and full name from an identity provider
// event. Unknown identities are ignored: they onboard on first login.
func (s *UserService) SyncUpdated(ctx context.Context, identity models.Identity) error {
	user, err := s.storage.User().GetUserByExternalID(ctx, identity.ExternalID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	arg := repository.UpdateUserParams{}
	if identity.Email != "" && identity.Email != user.Email {
		arg.Email = &identity.Email
	}
	if identity.FullName != "" && identity.FullName != user.FullName {
		arg.FullName = &identity.FullName
	}
	if arg.Email == nil && arg.FullName == nil {
		return nil
	}

	_, err = s.storage.User().UpdateUser(ctx, user.ID, arg)
	return err
}

// SyncDeleted soft deletes the account: the row and its transaction
// history stay, only is_active flips.
func (s *UserService) SyncDeleted(ctx context.Context, externalID string) error {
	user, err := s.storage.User().GetUserByExternalID(ctx, externalID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	inactive := false
	_, err = s.storage.User().UpdateUser(ctx, user.ID, repository.UpdateUserParams{IsActive: &inactive})
	return err
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, id, false)
}

func (s *UserService) GetByExternalID(ctx context.Context, externalID string) (models.User, error) {
	return s.storage.User().GetUserByExternalID(ctx, externalID)
}

func (s *UserService) List(ctx context.Context, offset int, limit int) ([]models.User, error) {
	return s.storage.User().ListUsers(ctx, offset, limit)
}

func (s *UserService) Leaderboard(ctx context.Context, offset int, limit int) ([]models.LeaderboardEntry, error) {
	return s.storage.User().Leaderboard(ctx, offset, limit)
}

func (s *UserService) ListTransactions(ctx context.Context, userID uuid.UUID, offset int, limit int) ([]models.Transaction, error) {
	return s.storage.Transaction().ListUserTransactions(ctx, userID, offset, limit)
}

func (s *UserService) ListRequests(ctx context.Context, userID uuid.UUID, offset int, limit int) ([]models.Request, error) {
	return s.storage.Request().ListUserRequests(ctx, userID, offset, limit)
}

// usernameBase derives a username candidate from the email local part
func usernameBase(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.ToLower(local)

	var b strings.Builder
	for _, r := range local {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
