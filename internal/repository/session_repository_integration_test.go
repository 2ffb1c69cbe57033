package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"portal-service/internal/model"
	_ "portal-service/migrations"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type SessionRepositoryIntegrationTestSuite struct {
	suite.Suite
	db    *sqlx.DB
	repo  SessionRepository
	users UserRepository
	pgc   *postgres.PostgresContainer
	ctx   context.Context
}

func (s *SessionRepositoryIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	pgc, err := postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("could not start postgres container: %s", err)
	}
	s.pgc = pgc

	connStr, err := pgc.ConnectionString(s.ctx, "sslmode=disable")
	assert.NoError(s.T(), err)

	db, err := sqlx.Connect("pgx", connStr)
	assert.NoError(s.T(), err)
	s.db = db

	err = goose.Up(db.DB, "../../migrations")
	assert.NoError(s.T(), err)

	s.repo = NewPostgresSessionRepository(s.db)
	s.users = NewPostgresUserRepository(s.db)
}

func (s *SessionRepositoryIntegrationTestSuite) TearDownSuite() {
	s.db.Close()
	if err := s.pgc.Terminate(s.ctx); err != nil {
		log.Fatalf("failed to terminate pg container: %s", err)
	}
}

func (s *SessionRepositoryIntegrationTestSuite) seedUser(name string) uuid.UUID {
	id, err := s.users.Create(s.ctx, &model.User{
		Email:        fmt.Sprintf("%s-%s@eng.university.edu", name, uuid.New()),
		PasswordHash: "hashed_password",
		Name:         name,
		College:      "engineering",
		Role:         model.RoleStudent,
	})
	assert.NoError(s.T(), err)
	return id
}

func (s *SessionRepositoryIntegrationTestSuite) seedOneToOneSession(adminID uuid.UUID) uuid.UUID {
	date := "2025-09-20"
	start := "09:00"
	created, err := s.repo.Create(s.ctx, &model.Session{
		CreatedBy:     adminID,
		Category:      model.CategoryTutoring,
		Title:         "Integration tutoring block",
		Colleges:      []string{"engineering"},
		SessionDate:   &date,
		StartTime:     &start,
		TotalDuration: 60,
		SlotDuration:  10,
	})
	assert.NoError(s.T(), err)

	err = s.repo.InsertSlots(s.ctx, created.ID, []string{"09:00", "09:10", "09:20", "09:30", "09:40", "09:50"})
	assert.NoError(s.T(), err)
	return created.ID
}

func (s *SessionRepositoryIntegrationTestSuite) seedGroupSession(adminID uuid.UUID, capacity int) uuid.UUID {
	created, err := s.repo.Create(s.ctx, &model.Session{
		CreatedBy:      adminID,
		Category:       model.CategoryWorkshop,
		Title:          "Integration workshop",
		Colleges:       []string{"engineering"},
		IsGroup:        true,
		Capacity:       capacity,
		SlotsRemaining: capacity,
	})
	assert.NoError(s.T(), err)
	return created.ID
}

func (s *SessionRepositoryIntegrationTestSuite) TestBookSlot_ConcurrentSameSlot() {
	admin := s.seedUser("admin")
	sessionID := s.seedOneToOneSession(admin)
	userA := s.seedUser("alice")
	userB := s.seedUser("bob")

	results := make(chan error, 2)
	for _, uid := range []uuid.UUID{userA, userB} {
		uid := uid
		go func() {
			results <- s.repo.BookSlot(s.ctx, sessionID, uid, "09:10", model.CategoryTutoring)
		}()
	}

	wins, conflicts := 0, 0
	for i := 0; i < 2; i++ {
		err := <-results
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(s.T(), err, ErrSlotTaken)
			conflicts++
		}
	}
	assert.Equal(s.T(), 1, wins)
	assert.Equal(s.T(), 1, conflicts)

	slots, err := s.repo.GetSlots(s.ctx, sessionID)
	assert.NoError(s.T(), err)
	for _, slot := range slots {
		if slot.Time != "09:10" {
			continue
		}
		assert.True(s.T(), slot.Booked)
		assert.NotNil(s.T(), slot.UserID)
		assert.Contains(s.T(), []uuid.UUID{userA, userB}, *slot.UserID)
	}
}

func (s *SessionRepositoryIntegrationTestSuite) TestBookSlot_ConcurrentSameUserDifferentSlots() {
	admin := s.seedUser("admin")
	sessionID := s.seedOneToOneSession(admin)
	user := s.seedUser("carol")

	results := make(chan error, 2)
	for _, slotTime := range []string{"09:20", "09:30"} {
		slotTime := slotTime
		go func() {
			results <- s.repo.BookSlot(s.ctx, sessionID, user, slotTime, model.CategoryTutoring)
		}()
	}

	wins := 0
	for i := 0; i < 2; i++ {
		err := <-results
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(s.T(), err, ErrAlreadyBooked)
		}
	}
	assert.Equal(s.T(), 1, wins)

	slots, err := s.repo.GetSlots(s.ctx, sessionID)
	assert.NoError(s.T(), err)
	held := 0
	for _, slot := range slots {
		if slot.Booked && slot.UserID != nil && *slot.UserID == user {
			held++
		}
	}
	assert.Equal(s.T(), 1, held)
}

func (s *SessionRepositoryIntegrationTestSuite) TestJoinGroup_ConcurrentJoinsNeverOversell() {
	admin := s.seedUser("admin")
	const capacity = 2
	const attempts = 5
	sessionID := s.seedGroupSession(admin, capacity)

	users := make([]uuid.UUID, attempts)
	for i := range users {
		users[i] = s.seedUser(fmt.Sprintf("joiner-%d", i))
	}

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for _, uid := range users {
		uid := uid
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.repo.JoinGroup(s.ctx, sessionID, uid, model.CategoryWorkshop)
		}()
	}
	wg.Wait()
	close(results)

	wins, full := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSessionFull):
			full++
		default:
			s.T().Fatalf("unexpected join error: %v", err)
		}
	}
	assert.Equal(s.T(), capacity, wins)
	assert.Equal(s.T(), attempts-capacity, full)

	stored, err := s.repo.FindByID(s.ctx, sessionID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 0, stored.SlotsRemaining)

	participants, err := s.repo.ListParticipants(s.ctx, sessionID)
	assert.NoError(s.T(), err)
	assert.Len(s.T(), participants, capacity)
}

func (s *SessionRepositoryIntegrationTestSuite) TestJoinGroup_DuplicateRejectedStateUnchanged() {
	admin := s.seedUser("admin")
	sessionID := s.seedGroupSession(admin, 5)
	user := s.seedUser("dave")

	assert.NoError(s.T(), s.repo.JoinGroup(s.ctx, sessionID, user, model.CategoryWorkshop))

	err := s.repo.JoinGroup(s.ctx, sessionID, user, model.CategoryWorkshop)
	assert.ErrorIs(s.T(), err, ErrAlreadyBooked)

	stored, err := s.repo.FindByID(s.ctx, sessionID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 4, stored.SlotsRemaining)
}

func TestSessionRepositoryIntegration(t *testing.T) {
	if os.Getenv("DOCKER_HOST") == "" {
		t.Skip("Docker is not available, skipping integration test.")
	}
	suite.Run(t, new(SessionRepositoryIntegrationTestSuite))
}
