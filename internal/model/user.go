package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleStudent    = "student"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "admin+"
)

type User struct {
	ID             uuid.UUID  `db:"id"`
	Email          string     `db:"email"`
	PasswordHash   string     `db:"password_hash"`
	Name           string     `db:"name"`
	College        string     `db:"college"`
	AvatarURL      *string    `db:"avatar_url"`
	Role           string     `db:"role"`
	EmailVerified  bool       `db:"email_verified"`
	Points         int        `db:"points"`
	LastDailyClaim *time.Time `db:"last_daily_claim"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

type RefreshToken struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

type DeviceToken struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	DeviceToken string    `db:"device_token"`
	CreatedAt   time.Time `db:"created_at"`
}
