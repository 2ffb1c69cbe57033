package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Service categories a session can belong to. Each category gets its own
// catalog page; the booking rules are identical across all of them.
const (
	CategoryTutoring   = "tutoring"
	CategoryAdvising   = "advising"
	CategoryWorkshop   = "workshop"
	CategoryCounseling = "counseling"
)

// Session is a bookable offering. Exactly one of the two slot-tracking
// shapes is populated, selected by IsGroup: group sessions carry a remaining
// capacity counter, one-to-one sessions carve a day into fixed-size time
// slots stored in session_slots.
type Session struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	CreatedBy   uuid.UUID      `db:"created_by" json:"created_by"`
	Category    string         `db:"category" json:"category"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	TutorName   string         `db:"tutor_name" json:"tutor_name"`
	Skills      pq.StringArray `db:"skills" json:"skills"`
	Colleges    pq.StringArray `db:"colleges" json:"colleges"`
	IsGroup     bool           `db:"is_group" json:"is_group"`

	// Group shape.
	Capacity       int `db:"capacity" json:"capacity"`
	SlotsRemaining int `db:"slots_remaining" json:"slots_remaining"`

	// One-to-one shape. Times are zero-padded 24-hour "HH:MM" strings,
	// durations are minutes.
	SessionDate   *string `db:"session_date" json:"session_date,omitempty"`
	StartTime     *string `db:"start_time" json:"start_time,omitempty"`
	TotalDuration int     `db:"total_duration" json:"total_duration"`
	SlotDuration  int     `db:"slot_duration" json:"slot_duration"`

	ExpiryDate *string `db:"expiry_date" json:"expiry_date,omitempty"`
	ExpiryTime *string `db:"expiry_time" json:"expiry_time,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Slot is one independently bookable entry of a one-to-one session.
type Slot struct {
	ID        uuid.UUID  `db:"id" json:"-"`
	SessionID uuid.UUID  `db:"session_id" json:"-"`
	Time      string     `db:"slot_time" json:"time"`
	Booked    bool       `db:"booked" json:"booked"`
	UserID    *uuid.UUID `db:"user_id" json:"user,omitempty"`
}

// SessionView is what the catalog endpoints return: the session plus the
// viewer-dependent derived fields.
type SessionView struct {
	Session
	Expired       bool   `json:"expired"`
	SlotAvailable int    `json:"slot_available"`
	Slots         []Slot `json:"booked_slots,omitempty"`
}

type Participant struct {
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Name     string    `db:"name" json:"name"`
	Email    string    `db:"email" json:"email"`
	SlotTime *string   `db:"slot_time" json:"slot_time,omitempty"`
}
