package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"portal-service/internal/model"
)

var ErrAlreadyClaimed = errors.New("daily bonus already claimed today")

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (uuid.UUID, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	AwardPoints(ctx context.Context, id uuid.UUID, points int) error
	ClaimDailyBonus(ctx context.Context, id uuid.UUID, points int) error
}

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) (uuid.UUID, error) {
	query := `INSERT INTO users (email, password_hash, name, college, role) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var newID uuid.UUID
	err := r.db.QueryRowxContext(ctx, query, user.Email, user.PasswordHash, user.Name, user.College, user.Role).Scan(&newID)

	if err != nil {
		return uuid.Nil, err
	}

	return newID, nil
}

func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := `SELECT * FROM users WHERE email = $1`
	err := r.db.GetContext(ctx, &user, query, email)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT * FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET email_verified = true, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *postgresUserRepository) AwardPoints(ctx context.Context, id uuid.UUID, points int) error {
	query := `UPDATE users SET points = points + $2, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, points)
	return err
}

// ClaimDailyBonus is a single guarded update so that two claims racing on
// the same day cannot both succeed.
func (r *postgresUserRepository) ClaimDailyBonus(ctx context.Context, id uuid.UUID, points int) error {
	query := `
		UPDATE users SET points = points + $2, last_daily_claim = CURRENT_DATE, updated_at = now()
		WHERE id = $1 AND (last_daily_claim IS NULL OR last_daily_claim < CURRENT_DATE)
	`
	res, err := r.db.ExecContext(ctx, query, id, points)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyClaimed
	}
	return nil
}
