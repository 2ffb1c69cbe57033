package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"portal-service/internal/model"
)

type BookingRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.BookingDetails, error)
}

type postgresBookingRepository struct {
	db *sqlx.DB
}

func NewPostgresBookingRepository(db *sqlx.DB) BookingRepository {
	return &postgresBookingRepository{db: db}
}

func (r *postgresBookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.BookingDetails, error) {
	bookings := []model.BookingDetails{}
	query := `
		SELECT b.id, b.session_id, b.user_id, b.category, b.slot_time, b.created_at,
		       s.title, s.tutor_name, s.session_date
		FROM bookings b
		JOIN sessions s ON s.id = b.session_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`
	err := r.db.SelectContext(ctx, &bookings, query, userID)
	return bookings, err
}
