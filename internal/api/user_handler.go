package api

import (
	"portal-service/internal/repository"
	"portal-service/internal/s3"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	deviceTokenRepo repository.DeviceTokenRepository
	filePresigner   *s3.FilePresigner
	validate        *validator.Validate
}

func NewUserHandler(deviceTokenRepo repository.DeviceTokenRepository, presigner *s3.FilePresigner) *UserHandler {
	return &UserHandler{
		deviceTokenRepo: deviceTokenRepo,
		filePresigner:   presigner,
		validate:        validator.New(),
	}
}

type RegisterTokenRequest struct {
	DeviceToken string `json:"device_token" validate:"required"`
}

func (h *UserHandler) RegisterDeviceToken(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	var req RegisterTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	if err := h.deviceTokenRepo.Register(c.Context(), userID, req.DeviceToken); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not register device token"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Device token registered"})
}

// GetProofUploadURL hands out a presigned URL for a proof-of-completion
// image. The object store is a black box to the rest of the system; only
// the resulting URL travels further.
func (h *UserHandler) GetProofUploadURL(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	objectKey := "proof-images/" + userID.String() + "/" + uuid.New().String() + ".jpg"

	uploadURL, err := h.filePresigner.GeneratePresignedUploadURL(objectKey)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not generate upload URL"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"upload_url": uploadURL,
		"object_key": objectKey,
	})
}

func (h *UserHandler) GetAvatarUploadURL(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	objectKey := "user-avatars/" + userID.String() + "/" + uuid.New().String() + ".jpg"

	uploadURL, err := h.filePresigner.GeneratePresignedUploadURL(objectKey)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not generate upload URL"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"upload_url": uploadURL,
		"object_key": objectKey,
	})
}
