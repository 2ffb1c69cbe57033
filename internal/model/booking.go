package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	BookingStatusUpcoming  = "upcoming"
	BookingStatusCompleted = "completed"
)

// Booking is the denormalized record written alongside a slot or group
// booking so that "my bookings" can be listed across all service categories
// without scanning every catalog.
type Booking struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SessionID uuid.UUID `db:"session_id" json:"session_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Category  string    `db:"category" json:"category"`
	SlotTime  *string   `db:"slot_time" json:"slot_time,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BookingDetails joins a booking with its session for list views. Status is
// derived at read time, never persisted.
type BookingDetails struct {
	Booking
	Title       string  `db:"title" json:"title"`
	TutorName   string  `db:"tutor_name" json:"tutor_name"`
	SessionDate *string `db:"session_date" json:"session_date,omitempty"`
	Status      string  `db:"-" json:"status"`
}
