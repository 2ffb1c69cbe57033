package api

import (
	"errors"

	"portal-service/internal/repository"
	"portal-service/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PointsHandler struct {
	pointsService service.PointsService
}

func NewPointsHandler(pointsService service.PointsService) *PointsHandler {
	return &PointsHandler{pointsService: pointsService}
}

func (h *PointsHandler) ClaimDaily(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	err = h.pointsService.ClaimDaily(c.Context(), userID, GetCollegeFromClaims(c))
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyClaimed) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not claim daily bonus"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Daily bonus claimed",
		"points":  service.DailyClaimPoints,
	})
}

func (h *PointsHandler) Leaderboard(c *fiber.Ctx) error {
	college := c.Query("college")
	if college == "" {
		college = GetCollegeFromClaims(c)
	}
	limit := c.QueryInt("limit", 10)

	rows, err := h.pointsService.Leaderboard(c.Context(), college, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch leaderboard"})
	}

	return c.Status(fiber.StatusOK).JSON(rows)
}
