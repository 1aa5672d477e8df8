package postgres

import (
	"context"
	"fmt"

	"github.com/campuscoin/api/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{db: s.db}
}

func (s *Storage) Transaction() repository.TransactionRepo {
	return &TransactionRepo{db: s.db}
}

func (s *Storage) Request() repository.RequestRepo {
	return &RequestRepo{db: s.db}
}

func (s *Storage) Shop() repository.ShopRepo {
	return &ShopRepo{db: s.db}
}

func (s *Storage) Challenge() repository.ChallengeRepo {
	return &ChallengeRepo{db: s.db}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}
