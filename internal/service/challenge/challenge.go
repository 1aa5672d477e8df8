package challenge

import (
	"context"

	"github.com/google/uuid"

	"github.com/campuscoin/api/internal/models"
	"github.com/campuscoin/api/internal/repository"
)

// ChallengeService is plain catalog CRUD. Rewards are paid out through
// administrative balance adjustments, not by this service.
type ChallengeService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *ChallengeService {
	return &ChallengeService{storage: storage}
}

func (s *ChallengeService) Create(ctx context.Context, arg repository.CreateChallengeParams) (models.Challenge, error) {
	return s.storage.Challenge().CreateChallenge(ctx, arg)
}

func (s *ChallengeService) List(ctx context.Context, offset int, limit int) ([]models.Challenge, error) {
	return s.storage.Challenge().ListChallenges(ctx, offset, limit)
}

func (s *ChallengeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.storage.Challenge().DeleteChallenge(ctx, id)
}
