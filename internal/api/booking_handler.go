package api

import (
	"errors"

	"portal-service/internal/repository"
	"portal-service/internal/service"
	"portal-service/internal/timeslot"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingService service.BookingService
	validate       *validator.Validate
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		validate:       validator.New(),
	}
}

type BookSlotRequest struct {
	SlotTime string `json:"slot_time" validate:"required"`
}

func (h *BookingHandler) BookSlot(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	var request BookSlotRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	err = h.bookingService.BookSlot(c.Context(), sessionID, userID, GetCollegeFromClaims(c), request.SlotTime)

	if err != nil {
		return bookingError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Slot booked successfully"})
}

func (h *BookingHandler) JoinGroup(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	err = h.bookingService.JoinGroup(c.Context(), sessionID, userID, GetCollegeFromClaims(c))

	if err != nil {
		return bookingError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Joined session successfully"})
}

func (h *BookingHandler) ListMyBookings(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	bookings, err := h.bookingService.ListUserBookings(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch bookings"})
	}

	return c.Status(fiber.StatusOK).JSON(bookings)
}

// bookingError maps the booking sentinels onto HTTP statuses in one place so
// every category's booking flow answers identically.
func bookingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, repository.ErrSlotNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSessionExpired):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrSlotTaken),
		errors.Is(err, repository.ErrAlreadyBooked),
		errors.Is(err, repository.ErrSessionFull):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotGroupSession),
		errors.Is(err, service.ErrNotSlotSession),
		errors.Is(err, timeslot.ErrInvalidClock):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
