package service_test

import (
	"context"
	"sync"

	"portal-service/internal/model"
	"portal-service/internal/repository"
	"portal-service/internal/service"

	"github.com/google/uuid"
)

// In-memory doubles mirroring the repository transaction semantics, so the
// services can be exercised without a database.

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.Session
	slots    map[uuid.UUID][]model.Slot
	joined   map[uuid.UUID]map[uuid.UUID]bool
	bookings []model.Booking
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[uuid.UUID]*model.Session),
		slots:    make(map[uuid.UUID][]model.Slot),
		joined:   make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *model.Session) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session.ID = uuid.New()
	copied := *session
	f.sessions[session.ID] = &copied
	return session, nil
}

func (f *fakeSessionRepo) FindByID(_ context.Context, sessionID uuid.UUID) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepo) ListByCategory(_ context.Context, category string) ([]model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Session{}
	for _, s := range f.sessions {
		if s.Category == category {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListByCreator(_ context.Context, category string, createdBy uuid.UUID) ([]model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Session{}
	for _, s := range f.sessions {
		if s.Category == category && s.CreatedBy == createdBy {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) GetSlots(_ context.Context, sessionID uuid.UUID) ([]model.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Slot{}, f.slots[sessionID]...), nil
}

func (f *fakeSessionRepo) InsertSlots(_ context.Context, sessionID uuid.UUID, times []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing := map[string]bool{}
	for _, s := range f.slots[sessionID] {
		existing[s.Time] = true
	}
	for _, t := range times {
		if existing[t] {
			continue
		}
		f.slots[sessionID] = append(f.slots[sessionID], model.Slot{
			ID:        uuid.New(),
			SessionID: sessionID,
			Time:      t,
		})
	}
	return nil
}

func (f *fakeSessionRepo) BookSlot(_ context.Context, sessionID, userID uuid.UUID, slotTime, category string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slots := f.slots[sessionID]
	for _, s := range slots {
		if s.Booked && s.UserID != nil && *s.UserID == userID {
			return repository.ErrAlreadyBooked
		}
	}

	for i := range slots {
		if slots[i].Time != slotTime {
			continue
		}
		if slots[i].Booked {
			return repository.ErrSlotTaken
		}
		uid := userID
		slots[i].Booked = true
		slots[i].UserID = &uid
		f.bookings = append(f.bookings, model.Booking{
			ID: uuid.New(), SessionID: sessionID, UserID: userID,
			Category: category, SlotTime: &slots[i].Time,
		})
		return nil
	}
	return repository.ErrSlotNotFound
}

func (f *fakeSessionRepo) JoinGroup(_ context.Context, sessionID, userID uuid.UUID, category string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.joined[sessionID][userID] {
		return repository.ErrAlreadyBooked
	}

	session := f.sessions[sessionID]
	if session == nil || !session.IsGroup || session.SlotsRemaining <= 0 {
		return repository.ErrSessionFull
	}
	session.SlotsRemaining--

	if f.joined[sessionID] == nil {
		f.joined[sessionID] = make(map[uuid.UUID]bool)
	}
	f.joined[sessionID][userID] = true
	f.bookings = append(f.bookings, model.Booking{
		ID: uuid.New(), SessionID: sessionID, UserID: userID, Category: category,
	})
	return nil
}

func (f *fakeSessionRepo) ListParticipants(_ context.Context, sessionID uuid.UUID) ([]model.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Participant{}
	for _, b := range f.bookings {
		if b.SessionID == sessionID {
			out = append(out, model.Participant{UserID: b.UserID, SlotTime: b.SlotTime})
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	delete(f.slots, sessionID)
	return nil
}

type fakeBookingRepo struct {
	sessions *fakeSessionRepo
}

func (f *fakeBookingRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.BookingDetails, error) {
	f.sessions.mu.Lock()
	defer f.sessions.mu.Unlock()
	out := []model.BookingDetails{}
	for _, b := range f.sessions.bookings {
		if b.UserID != userID {
			continue
		}
		details := model.BookingDetails{Booking: b}
		if s, ok := f.sessions.sessions[b.SessionID]; ok {
			details.Title = s.Title
			details.SessionDate = s.SessionDate
		}
		out = append(out, details)
	}
	return out, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	created   int
	cancelled int
	confirmed int
}

func (f *fakePublisher) PublishSessionCreated(*model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	return nil
}

func (f *fakePublisher) PublishSessionCancelled(uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
	return nil
}

func (f *fakePublisher) PublishBookingConfirmed(*model.Session, uuid.UUID, *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed++
	return nil
}

type fakePoints struct {
	mu     sync.Mutex
	awards map[uuid.UUID]int
}

func newFakePoints() *fakePoints {
	return &fakePoints{awards: make(map[uuid.UUID]int)}
}

func (f *fakePoints) AwardBooking(_ context.Context, userID uuid.UUID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.awards[userID]++
	return nil
}

func (f *fakePoints) ClaimDaily(context.Context, uuid.UUID, string) error { return nil }

func (f *fakePoints) Leaderboard(context.Context, string, int) ([]service.LeaderboardRow, error) {
	return nil, nil
}

func (f *fakePoints) awarded(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.awards[userID]
}
