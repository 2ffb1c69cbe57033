package api

import (
	"errors"
	"log/slog"

	"portal-service/internal/model"
	"portal-service/internal/service"
	"portal-service/internal/timeslot"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SessionHandler struct {
	sessionService service.SessionService
	validate       *validator.Validate
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		validate:       validator.New(),
	}
}

type CreateSessionRequest struct {
	Category    string   `json:"category" validate:"required,oneof=tutoring advising workshop counseling"`
	Title       string   `json:"title" validate:"required,min=3,max=100"`
	Description string   `json:"description,omitempty" validate:"max=500"`
	TutorName   string   `json:"tutor_name,omitempty" validate:"max=100"`
	Skills      []string `json:"skills,omitempty"`
	Colleges    []string `json:"colleges" validate:"required,min=1"`
	IsGroup     bool     `json:"is_group"`

	Slots int `json:"slots,omitempty"`

	Date          *string `json:"date,omitempty"`
	StartTime     *string `json:"start_time,omitempty"`
	TotalDuration int     `json:"total_duration,omitempty"`
	SlotDuration  int     `json:"slot_duration,omitempty"`

	ExpiryDate *string `json:"expiry_date,omitempty"`
	ExpiryTime *string `json:"expiry_time,omitempty"`
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)

	if err != nil {
		slog.ErrorContext(c.UserContext(), "Error getting user ID from claims", slog.String("error", err.Error()))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	var request CreateSessionRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	session := &model.Session{
		CreatedBy:     userID,
		Category:      request.Category,
		Title:         request.Title,
		Description:   request.Description,
		TutorName:     request.TutorName,
		Skills:        request.Skills,
		Colleges:      request.Colleges,
		IsGroup:       request.IsGroup,
		Capacity:      request.Slots,
		SessionDate:   request.Date,
		StartTime:     request.StartTime,
		TotalDuration: request.TotalDuration,
		SlotDuration:  request.SlotDuration,
		ExpiryDate:    request.ExpiryDate,
		ExpiryTime:    request.ExpiryTime,
	}

	createdSession, err := h.sessionService.CreateSession(c.Context(), session)

	if err != nil {
		if errors.Is(err, service.ErrMissingFields) ||
			errors.Is(err, timeslot.ErrInvalidClock) ||
			errors.Is(err, timeslot.ErrInvalidSlotPlan) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create session"})
	}

	return c.Status(fiber.StatusCreated).JSON(createdSession)
}

// ListSessions is the per-category catalog. Students get their college's
// non-expired sessions; admins get their own sessions, expired included.
func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	category := c.Query("category", model.CategoryTutoring)

	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	role := GetRoleFromClaims(c)

	var views []model.SessionView
	if role == model.RoleAdmin || role == model.RoleSuperAdmin {
		views, err = h.sessionService.ListForAdmin(c.Context(), category, userID)
	} else {
		views, err = h.sessionService.ListForStudent(c.Context(), category, GetCollegeFromClaims(c))
	}

	if err != nil {
		slog.ErrorContext(c.UserContext(), "Error listing sessions", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch sessions"})
	}

	return c.Status(fiber.StatusOK).JSON(views)
}

func (h *SessionHandler) GetSessionDetails(c *fiber.Ctx) error {
	sessionIDStr := c.Params("id")
	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	view, err := h.sessionService.GetSessionDetails(c.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
		}
		slog.ErrorContext(c.UserContext(), "Error getting session details", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch session details"})
	}

	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *SessionHandler) ListParticipants(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	participants, err := h.sessionService.ListParticipants(c.Context(), sessionID, userID, GetRoleFromClaims(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrNotSessionOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch participants"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(participants)
}

func (h *SessionHandler) CancelSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	err = h.sessionService.CancelSession(c.Context(), sessionID, userID, GetRoleFromClaims(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrNotSessionOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not cancel session"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Session cancelled"})
}
