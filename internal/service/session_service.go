package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portal-service/internal/clock"
	"portal-service/internal/events"
	"portal-service/internal/model"
	"portal-service/internal/repository"
	"portal-service/internal/timeslot"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMissingFields   = errors.New("missing required fields")
	ErrNotSessionOwner = errors.New("only the session creator can do this")
)

type SessionService interface {
	CreateSession(ctx context.Context, session *model.Session) (*model.Session, error)
	ListForStudent(ctx context.Context, category, college string) ([]model.SessionView, error)
	ListForAdmin(ctx context.Context, category string, adminID uuid.UUID) ([]model.SessionView, error)
	GetSessionDetails(ctx context.Context, sessionID uuid.UUID) (*model.SessionView, error)
	ListParticipants(ctx context.Context, sessionID, actorID uuid.UUID, actorRole string) ([]model.Participant, error)
	CancelSession(ctx context.Context, sessionID, actorID uuid.UUID, actorRole string) error
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	publisher   events.EventPublisher
	clock       clock.Clock
}

func NewSessionService(repo repository.SessionRepository, pub events.EventPublisher, clk clock.Clock) SessionService {
	return &sessionService{sessionRepo: repo, publisher: pub, clock: clk}
}

// CreateSession validates the slot-tracking shape selected by IsGroup and
// persists the session. One-to-one sessions are stored without slot rows;
// those are materialized lazily on first read.
func (s *sessionService) CreateSession(ctx context.Context, session *model.Session) (*model.Session, error) {
	var missing []string
	if session.Title == "" {
		missing = append(missing, "title")
	}
	if session.Category == "" {
		missing = append(missing, "category")
	}
	if len(session.Colleges) == 0 {
		missing = append(missing, "colleges")
	}

	if session.IsGroup {
		if session.Capacity < 1 {
			missing = append(missing, "slots")
		}
		session.SlotsRemaining = session.Capacity
		session.SessionDate = nil
		session.StartTime = nil
		session.TotalDuration = 0
		session.SlotDuration = 0
	} else {
		if session.SessionDate == nil || *session.SessionDate == "" {
			missing = append(missing, "date")
		}
		if session.StartTime == nil || *session.StartTime == "" {
			missing = append(missing, "start time")
		}
		if session.TotalDuration < 1 {
			missing = append(missing, "total duration")
		}
		if session.SlotDuration < 1 {
			missing = append(missing, "slot duration")
		}
		session.Capacity = 0
		session.SlotsRemaining = 0
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	if !session.IsGroup {
		// Normalizing here keeps every stored start time in 24-hour form no
		// matter which form the admin typed.
		start, err := timeslot.ParseClock(*session.StartTime)
		if err != nil {
			return nil, err
		}
		normalized := timeslot.FormatClock(start)
		session.StartTime = &normalized

		if _, err := timeslot.Materialize(normalized, session.TotalDuration, session.SlotDuration); err != nil {
			return nil, err
		}
	}

	created, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}

	go s.publisher.PublishSessionCreated(created)

	return created, nil
}

// ensureSlots backfills the materialized slot list for a one-to-one session
// on first read. Safe to race: the insert is idempotent per slot time.
func ensureSlots(ctx context.Context, repo repository.SessionRepository, session *model.Session) ([]model.Slot, error) {
	slots, err := repo.GetSlots(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if len(slots) > 0 || session.StartTime == nil {
		return slots, nil
	}

	times, err := timeslot.Materialize(*session.StartTime, session.TotalDuration, session.SlotDuration)
	if err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return slots, nil
	}

	if err := repo.InsertSlots(ctx, session.ID, times); err != nil {
		return nil, err
	}
	return repo.GetSlots(ctx, session.ID)
}

func countAvailable(slots []model.Slot) int {
	available := 0
	for _, slot := range slots {
		if !slot.Booked {
			available++
		}
	}
	return available
}

func (s *sessionService) buildView(ctx context.Context, session *model.Session, includeSlots bool) (*model.SessionView, error) {
	view := &model.SessionView{
		Session: *session,
		Expired: timeslot.IsExpired(session.ExpiryDate, session.ExpiryTime, s.clock.Now()),
	}

	if session.IsGroup {
		view.SlotAvailable = session.SlotsRemaining
		return view, nil
	}

	slots, err := ensureSlots(ctx, s.sessionRepo, session)
	if err != nil {
		return nil, err
	}
	view.SlotAvailable = countAvailable(slots)
	if includeSlots {
		view.Slots = slots
	}
	return view, nil
}

// ListForStudent returns the catalog for one service category as a student
// sees it: sessions offered to the student's college, expired ones removed.
func (s *sessionService) ListForStudent(ctx context.Context, category, college string) ([]model.SessionView, error) {
	sessions, err := s.sessionRepo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	views := []model.SessionView{}
	for i := range sessions {
		session := &sessions[i]

		offered := false
		for _, c := range session.Colleges {
			if c == college {
				offered = true
				break
			}
		}
		if !offered {
			continue
		}

		view, err := s.buildView(ctx, session, false)
		if err != nil {
			return nil, err
		}
		if view.Expired {
			continue
		}
		views = append(views, *view)
	}
	return views, nil
}

// ListForAdmin returns the admin's own sessions, expired ones included and
// flagged rather than hidden.
func (s *sessionService) ListForAdmin(ctx context.Context, category string, adminID uuid.UUID) ([]model.SessionView, error) {
	sessions, err := s.sessionRepo.ListByCreator(ctx, category, adminID)
	if err != nil {
		return nil, err
	}

	views := []model.SessionView{}
	for i := range sessions {
		view, err := s.buildView(ctx, &sessions[i], false)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *sessionService) GetSessionDetails(ctx context.Context, sessionID uuid.UUID) (*model.SessionView, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return s.buildView(ctx, session, true)
}

func (s *sessionService) ListParticipants(ctx context.Context, sessionID, actorID uuid.UUID, actorRole string) ([]model.Participant, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.CreatedBy != actorID && actorRole != model.RoleSuperAdmin {
		return nil, ErrNotSessionOwner
	}
	return s.sessionRepo.ListParticipants(ctx, sessionID)
}

func (s *sessionService) CancelSession(ctx context.Context, sessionID, actorID uuid.UUID, actorRole string) error {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if session.CreatedBy != actorID && actorRole != model.RoleSuperAdmin {
		return ErrNotSessionOwner
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return err
	}

	go s.publisher.PublishSessionCancelled(sessionID)

	return nil
}
