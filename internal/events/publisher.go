package events

import (
	"encoding/json"
	"log"
	"time"

	"portal-service/internal/model"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjectSessionCreated   = "session.created"
	SubjectSessionCancelled = "session.cancelled"
	SubjectBookingConfirmed = "booking.confirmed"
)

type EventPublisher interface {
	PublishSessionCreated(session *model.Session) error
	PublishSessionCancelled(sessionID uuid.UUID) error
	PublishBookingConfirmed(session *model.Session, userID uuid.UUID, slotTime *string) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type SessionCreatedEvent struct {
	EventType string    `json:"event_type"`
	SessionID uuid.UUID `json:"session_id"`
	CreatedBy uuid.UUID `json:"created_by"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	IsGroup   bool      `json:"is_group"`
}

type SessionCancelledEvent struct {
	EventType   string    `json:"event_type"`
	SessionID   uuid.UUID `json:"session_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type BookingConfirmedEvent struct {
	EventType string    `json:"event_type"`
	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	SlotTime  *string   `json:"slot_time,omitempty"`
	BookedAt  time.Time `json:"booked_at"`
}

func (p *NatsPublisher) publish(subject string, event any) error {
	eventJSON, err := json.Marshal(event)

	if err != nil {
		log.Printf("Error marshalling event JSON: %v", err)
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		log.Printf("Error publishing to NATS: %v", err)
		return err
	}

	log.Printf("Published event to NATS on subject '%s'", subject)

	return nil
}

func (p *NatsPublisher) PublishSessionCreated(session *model.Session) error {
	return p.publish(SubjectSessionCreated, SessionCreatedEvent{
		EventType: SubjectSessionCreated,
		SessionID: session.ID,
		CreatedBy: session.CreatedBy,
		Category:  session.Category,
		Title:     session.Title,
		IsGroup:   session.IsGroup,
	})
}

func (p *NatsPublisher) PublishSessionCancelled(sessionID uuid.UUID) error {
	return p.publish(SubjectSessionCancelled, SessionCancelledEvent{
		EventType:   SubjectSessionCancelled,
		SessionID:   sessionID,
		CancelledAt: time.Now(),
	})
}

func (p *NatsPublisher) PublishBookingConfirmed(session *model.Session, userID uuid.UUID, slotTime *string) error {
	return p.publish(SubjectBookingConfirmed, BookingConfirmedEvent{
		EventType: SubjectBookingConfirmed,
		SessionID: session.ID,
		UserID:    userID,
		Category:  session.Category,
		Title:     session.Title,
		SlotTime:  slotTime,
		BookedAt:  time.Now(),
	})
}
