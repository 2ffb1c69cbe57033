package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"portal-service/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrSlotNotFound  = errors.New("slot not found")
	ErrSlotTaken     = errors.New("slot already booked by someone else")
	ErrAlreadyBooked = errors.New("user already holds a booking in this session")
	ErrSessionFull   = errors.New("session is full")
)

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) (*model.Session, error)
	FindByID(ctx context.Context, sessionID uuid.UUID) (*model.Session, error)
	ListByCategory(ctx context.Context, category string) ([]model.Session, error)
	ListByCreator(ctx context.Context, category string, createdBy uuid.UUID) ([]model.Session, error)
	GetSlots(ctx context.Context, sessionID uuid.UUID) ([]model.Slot, error)
	InsertSlots(ctx context.Context, sessionID uuid.UUID, times []string) error
	BookSlot(ctx context.Context, sessionID, userID uuid.UUID, slotTime, category string) error
	JoinGroup(ctx context.Context, sessionID, userID uuid.UUID, category string) error
	ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]model.Participant, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

type postgresSessionRepository struct {
	db *sqlx.DB
}

func NewPostgresSessionRepository(db *sqlx.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) Create(ctx context.Context, session *model.Session) (*model.Session, error) {
	query := `
		INSERT INTO sessions (created_by, category, title, description, tutor_name, skills, colleges, is_group, capacity, slots_remaining, session_date, start_time, total_duration, slot_duration, expiry_date, expiry_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		session.CreatedBy, session.Category, session.Title, session.Description,
		session.TutorName, session.Skills, session.Colleges, session.IsGroup,
		session.Capacity, session.SlotsRemaining, session.SessionDate, session.StartTime,
		session.TotalDuration, session.SlotDuration, session.ExpiryDate, session.ExpiryTime,
	)

	if err := row.Scan(&session.ID, &session.CreatedAt); err != nil {
		return nil, err
	}

	return session, nil
}

func (r *postgresSessionRepository) FindByID(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	var session model.Session
	query := `SELECT * FROM sessions WHERE id = $1`
	err := r.db.GetContext(ctx, &session, query, sessionID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func (r *postgresSessionRepository) ListByCategory(ctx context.Context, category string) ([]model.Session, error) {
	sessions := []model.Session{}
	query := `SELECT * FROM sessions WHERE category = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &sessions, query, category)
	return sessions, err
}

func (r *postgresSessionRepository) ListByCreator(ctx context.Context, category string, createdBy uuid.UUID) ([]model.Session, error) {
	sessions := []model.Session{}
	query := `SELECT * FROM sessions WHERE category = $1 AND created_by = $2 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &sessions, query, category, createdBy)
	return sessions, err
}

func (r *postgresSessionRepository) GetSlots(ctx context.Context, sessionID uuid.UUID) ([]model.Slot, error) {
	slots := []model.Slot{}
	query := `SELECT * FROM session_slots WHERE session_id = $1 ORDER BY slot_time ASC`
	err := r.db.SelectContext(ctx, &slots, query, sessionID)
	return slots, err
}

// InsertSlots backfills the materialized slot list. ON CONFLICT DO NOTHING
// keeps concurrent first reads of the same session idempotent.
func (r *postgresSessionRepository) InsertSlots(ctx context.Context, sessionID uuid.UUID, times []string) error {
	query := `
		INSERT INTO session_slots (session_id, slot_time)
		VALUES ($1, $2)
		ON CONFLICT (session_id, slot_time) DO NOTHING
	`
	for _, t := range times {
		if _, err := r.db.ExecContext(ctx, query, sessionID, t); err != nil {
			return fmt.Errorf("insert slot %s: %w", t, err)
		}
	}
	return nil
}

// BookSlot marks one slot booked and writes the denormalized bookings row in
// a single transaction, so the two can never drift apart. The row lock on
// the slot makes two attempts against the same slot serialize; the loser
// sees booked = true and gets ErrSlotTaken.
func (r *postgresSessionRepository) BookSlot(ctx context.Context, sessionID, userID uuid.UUID, slotTime, category string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var alreadyBooked bool
	err = tx.QueryRowxContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM session_slots WHERE session_id = $1 AND user_id = $2 AND booked)`,
		sessionID, userID,
	).Scan(&alreadyBooked)
	if err != nil {
		return err
	}
	if alreadyBooked {
		return ErrAlreadyBooked
	}

	var booked bool
	err = tx.QueryRowxContext(ctx,
		`SELECT booked FROM session_slots WHERE session_id = $1 AND slot_time = $2 FOR UPDATE`,
		sessionID, slotTime,
	).Scan(&booked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSlotNotFound
		}
		return err
	}
	if booked {
		return ErrSlotTaken
	}

	// Two bookings by the same user can both pass the EXISTS check above;
	// the partial unique index on (session_id, user_id) catches the loser
	// here.
	_, err = tx.ExecContext(ctx,
		`UPDATE session_slots SET booked = true, user_id = $3 WHERE session_id = $1 AND slot_time = $2`,
		sessionID, slotTime, userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyBooked
		}
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (session_id, user_id, category, slot_time) VALUES ($1, $2, $3, $4)`,
		sessionID, userID, category, slotTime,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyBooked
		}
		return err
	}

	return tx.Commit()
}

// JoinGroup inserts the participant record and decrements the remaining
// capacity in one transaction. The guarded decrement is what keeps the
// counter from ever going negative under concurrent joins.
func (r *postgresSessionRepository) JoinGroup(ctx context.Context, sessionID, userID uuid.UUID, category string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (session_id, user_id, category) VALUES ($1, $2, $3)`,
		sessionID, userID, category,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyBooked
		}
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET slots_remaining = slots_remaining - 1 WHERE id = $1 AND is_group AND slots_remaining > 0`,
		sessionID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionFull
	}

	return tx.Commit()
}

func (r *postgresSessionRepository) ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]model.Participant, error) {
	participants := []model.Participant{}
	query := `
		SELECT u.id AS user_id, u.name, u.email, b.slot_time
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		WHERE b.session_id = $1
		ORDER BY b.created_at ASC
	`
	err := r.db.SelectContext(ctx, &participants, query, sessionID)
	return participants, err
}

// Delete cancels a session; slot and booking rows go with it via cascade.
func (r *postgresSessionRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	return err
}
