package service

import (
	"context"

	"portal-service/internal/repository"

	"github.com/google/uuid"
)

// DailyClaimPoints is granted once per calendar day per user.
const DailyClaimPoints = 5

// LeaderboardRow is a leaderboard entry hydrated with the user's name.
type LeaderboardRow struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Points int       `json:"points"`
}

type PointsService interface {
	AwardBooking(ctx context.Context, userID uuid.UUID, college string) error
	ClaimDaily(ctx context.Context, userID uuid.UUID, college string) error
	Leaderboard(ctx context.Context, college string, limit int) ([]LeaderboardRow, error)
}

type pointsService struct {
	userRepo        repository.UserRepository
	leaderboardRepo repository.LeaderboardRepository
}

func NewPointsService(userRepo repository.UserRepository, leaderboardRepo repository.LeaderboardRepository) PointsService {
	return &pointsService{
		userRepo:        userRepo,
		leaderboardRepo: leaderboardRepo,
	}
}

func (s *pointsService) AwardBooking(ctx context.Context, userID uuid.UUID, college string) error {
	if err := s.userRepo.AwardPoints(ctx, userID, BookingPoints); err != nil {
		return err
	}
	return s.leaderboardRepo.IncrementScore(ctx, college, userID, BookingPoints)
}

// ClaimDaily grants the daily bonus. The guarded update in the repository
// decides whether today's claim is still open, so concurrent claims cannot
// both win.
func (s *pointsService) ClaimDaily(ctx context.Context, userID uuid.UUID, college string) error {
	if err := s.userRepo.ClaimDailyBonus(ctx, userID, DailyClaimPoints); err != nil {
		return err
	}
	return s.leaderboardRepo.IncrementScore(ctx, college, userID, DailyClaimPoints)
}

func (s *pointsService) Leaderboard(ctx context.Context, college string, limit int) ([]LeaderboardRow, error) {
	entries, err := s.leaderboardRepo.Top(ctx, college, limit)
	if err != nil {
		return nil, err
	}

	rows := make([]LeaderboardRow, 0, len(entries))
	for _, entry := range entries {
		row := LeaderboardRow{UserID: entry.UserID, Points: entry.Points}
		if user, err := s.userRepo.FindByID(ctx, entry.UserID); err == nil {
			row.Name = user.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}
