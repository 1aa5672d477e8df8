package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/models"
	"github.com/campuscoin/api/internal/repository"
)

type ChallengeRepo struct {
	db DBTX
}

const challengeColumns = `id, created_at, title, description, reward`

const createChallenge = `-- name: CreateChallenge
INSERT INTO challenges (id, title, description, reward)
VALUES ($1, $2, $3, $4)
RETURNING ` + challengeColumns

func (r *ChallengeRepo) CreateChallenge(ctx context.Context, arg repository.CreateChallengeParams) (models.Challenge, error) {
	rows, _ := r.db.Query(ctx, createChallenge, uuid.New(), arg.Title, arg.Description, arg.Reward)
	challenge, err := pgx.CollectOneRow(rows, rowToChallenge)
	if err != nil {
		return challenge, fmt.Errorf("db error: %w", err)
	}

	return challenge, nil
}

const listChallenges = `-- name: ListChallenges
SELECT ` + challengeColumns + ` FROM challenges
ORDER BY created_at
OFFSET $1 LIMIT $2
`

func (r *ChallengeRepo) ListChallenges(ctx context.Context, offset int, limit int) ([]models.Challenge, error) {
	rows, _ := r.db.Query(ctx, listChallenges, offset, limit)
	challenges, err := pgx.CollectRows(rows, rowToChallenge)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return challenges, nil
}

const deleteChallenge = `-- name: DeleteChallenge
DELETE FROM challenges
WHERE id = $1
`

func (r *ChallengeRepo) DeleteChallenge(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteChallenge, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrChallengeNotFound
	}

	return nil
}

func rowToChallenge(row pgx.CollectableRow) (models.Challenge, error) {
	var c models.Challenge
	err := row.Scan(&c.ID, &c.CreatedAt, &c.Title, &c.Description, &c.Reward)
	return c, err
}
