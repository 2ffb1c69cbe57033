package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"portal-service/internal/clock"
	"portal-service/internal/events"
	"portal-service/internal/model"
	"portal-service/internal/repository"
	"portal-service/internal/timeslot"

	"github.com/google/uuid"
)

var (
	ErrSessionExpired  = errors.New("session has expired")
	ErrNotGroupSession = errors.New("session does not take group joins")
	ErrNotSlotSession  = errors.New("session has no bookable time slots")
)

// BookingPoints is awarded for every confirmed booking or group join.
const BookingPoints = 10

// BookingService is the one shared booking confirmer used by every service
// category, so tutoring, advising and workshop flows cannot diverge.
type BookingService interface {
	BookSlot(ctx context.Context, sessionID, userID uuid.UUID, college, slotTime string) error
	JoinGroup(ctx context.Context, sessionID, userID uuid.UUID, college string) error
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]model.BookingDetails, error)
}

type bookingService struct {
	sessionRepo repository.SessionRepository
	bookingRepo repository.BookingRepository
	points      PointsService
	publisher   events.EventPublisher
	clock       clock.Clock
}

func NewBookingService(
	sessionRepo repository.SessionRepository,
	bookingRepo repository.BookingRepository,
	points PointsService,
	pub events.EventPublisher,
	clk clock.Clock,
) BookingService {
	return &bookingService{
		sessionRepo: sessionRepo,
		bookingRepo: bookingRepo,
		points:      points,
		publisher:   pub,
		clock:       clk,
	}
}

func (s *bookingService) loadBookableSession(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if timeslot.IsExpired(session.ExpiryDate, session.ExpiryTime, s.clock.Now()) {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// BookSlot books one time slot of a one-to-one session for the user. The
// conditional write happens inside the repository transaction; a losing
// concurrent attempt surfaces as repository.ErrSlotTaken.
func (s *bookingService) BookSlot(ctx context.Context, sessionID, userID uuid.UUID, college, slotTime string) error {
	session, err := s.loadBookableSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.IsGroup {
		return ErrNotSlotSession
	}

	if _, err := ensureSlots(ctx, s.sessionRepo, session); err != nil {
		return err
	}

	minutes, err := timeslot.ParseClock(slotTime)
	if err != nil {
		return err
	}
	normalized := timeslot.FormatClock(minutes)

	if err := s.sessionRepo.BookSlot(ctx, sessionID, userID, normalized, session.Category); err != nil {
		return err
	}

	s.awardPoints(ctx, userID, college)
	go s.publisher.PublishBookingConfirmed(session, userID, &normalized)

	return nil
}

// JoinGroup adds the user to a group session, decrementing the remaining
// capacity. Insert and decrement run in one repository transaction, so the
// counter cannot go negative however many joins race.
func (s *bookingService) JoinGroup(ctx context.Context, sessionID, userID uuid.UUID, college string) error {
	session, err := s.loadBookableSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.IsGroup {
		return ErrNotGroupSession
	}

	if err := s.sessionRepo.JoinGroup(ctx, sessionID, userID, session.Category); err != nil {
		return err
	}

	s.awardPoints(ctx, userID, college)
	go s.publisher.PublishBookingConfirmed(session, userID, nil)

	return nil
}

// awardPoints is best-effort: a points hiccup never fails a booking that the
// store already committed.
func (s *bookingService) awardPoints(ctx context.Context, userID uuid.UUID, college string) {
	if err := s.points.AwardBooking(ctx, userID, college); err != nil {
		slog.WarnContext(ctx, "failed to award booking points",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *bookingService) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]model.BookingDetails, error) {
	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	for i := range bookings {
		bookings[i].Status = deriveStatus(&bookings[i], now)
	}
	return bookings, nil
}

// deriveStatus is a read-model computation only; booking rows never persist
// a status.
func deriveStatus(b *model.BookingDetails, now time.Time) string {
	if b.SessionDate == nil {
		return model.BookingStatusUpcoming
	}
	day, err := time.ParseInLocation("2006-01-02", *b.SessionDate, now.Location())
	if err != nil {
		return model.BookingStatusUpcoming
	}
	cutoff := day.Add(24 * time.Hour)
	if b.SlotTime != nil {
		if minutes, err := timeslot.ParseClock(*b.SlotTime); err == nil {
			cutoff = day.Add(time.Duration(minutes) * time.Minute)
		}
	}
	if now.After(cutoff) {
		return model.BookingStatusCompleted
	}
	return model.BookingStatusUpcoming
}
