package service_test

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"portal-service/internal/model"
	"portal-service/internal/repository"
	"portal-service/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users   map[uuid.UUID]*model.User
	claimed map[uuid.UUID]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[uuid.UUID]*model.User),
		claimed: make(map[uuid.UUID]bool),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) (uuid.UUID, error) {
	user.ID = uuid.New()
	f.users[user.ID] = user
	return user.ID, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserRepo) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	if u, ok := f.users[id]; ok {
		u.EmailVerified = true
	}
	return nil
}

func (f *fakeUserRepo) AwardPoints(_ context.Context, id uuid.UUID, points int) error {
	if u, ok := f.users[id]; ok {
		u.Points += points
	}
	return nil
}

func (f *fakeUserRepo) ClaimDailyBonus(_ context.Context, id uuid.UUID, points int) error {
	if f.claimed[id] {
		return repository.ErrAlreadyClaimed
	}
	f.claimed[id] = true
	if u, ok := f.users[id]; ok {
		u.Points += points
	}
	return nil
}

type fakeLeaderboard struct {
	scores map[string]map[uuid.UUID]int
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{scores: make(map[string]map[uuid.UUID]int)}
}

func (f *fakeLeaderboard) IncrementScore(_ context.Context, college string, userID uuid.UUID, points int) error {
	if f.scores[college] == nil {
		f.scores[college] = make(map[uuid.UUID]int)
	}
	f.scores[college][userID] += points
	return nil
}

func (f *fakeLeaderboard) Top(_ context.Context, college string, limit int) ([]repository.LeaderboardEntry, error) {
	entries := []repository.LeaderboardEntry{}
	for id, pts := range f.scores[college] {
		entries = append(entries, repository.LeaderboardEntry{UserID: id, Points: pts})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Points > entries[j].Points })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func newUser(repo *fakeUserRepo, name string) *model.User {
	u := &model.User{Name: name, College: "engineering", Role: model.RoleStudent}
	repo.Create(context.Background(), u)
	return u
}

func TestClaimDaily_OncePerDay(t *testing.T) {
	users := newFakeUserRepo()
	board := newFakeLeaderboard()
	points := service.NewPointsService(users, board)

	u := newUser(users, "Alice")

	require.NoError(t, points.ClaimDaily(context.Background(), u.ID, u.College))
	require.Equal(t, service.DailyClaimPoints, u.Points)

	err := points.ClaimDaily(context.Background(), u.ID, u.College)
	require.ErrorIs(t, err, repository.ErrAlreadyClaimed)
	require.Equal(t, service.DailyClaimPoints, u.Points)
}

func TestAwardBooking_UpdatesUserAndLeaderboard(t *testing.T) {
	users := newFakeUserRepo()
	board := newFakeLeaderboard()
	points := service.NewPointsService(users, board)

	u := newUser(users, "Alice")

	require.NoError(t, points.AwardBooking(context.Background(), u.ID, u.College))
	require.Equal(t, service.BookingPoints, u.Points)
	require.Equal(t, service.BookingPoints, board.scores["engineering"][u.ID])
}

func TestLeaderboard_HydratesNames(t *testing.T) {
	users := newFakeUserRepo()
	board := newFakeLeaderboard()
	points := service.NewPointsService(users, board)

	alice := newUser(users, "Alice")
	bob := newUser(users, "Bob")

	require.NoError(t, points.AwardBooking(context.Background(), alice.ID, "engineering"))
	require.NoError(t, points.AwardBooking(context.Background(), alice.ID, "engineering"))
	require.NoError(t, points.AwardBooking(context.Background(), bob.ID, "engineering"))

	rows, err := points.Leaderboard(context.Background(), "engineering", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Alice", rows[0].Name)
	require.Equal(t, 2*service.BookingPoints, rows[0].Points)
	require.Equal(t, "Bob", rows[1].Name)
}
