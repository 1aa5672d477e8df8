package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Starting balances granted on account creation, in the smallest
// currency unit. A matching "Welcome Bonus" transaction is recorded so
// every nonzero balance is explained by the transaction log.
const (
	DefaultBalance     int64 = 25
	DefaultGiftBalance int64 = 25
)

type User struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	ExternalID  *string
	Username    string
	FullName    string
	Email       string
	Balance     int64
	GiftBalance int64
	Role        string
	IsActive    bool
}

// DisplayName is used in transaction descriptions
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type LeaderboardEntry struct {
	UserID      uuid.UUID
	Username    string
	FullName    string
	Balance     int64
	TotalEarned int64
}
