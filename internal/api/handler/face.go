package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

// FaceService interface for the service
type FaceService interface {
	Register(ctx context.Context, name, payload string) (*domain.User, error)
	Verify(ctx context.Context, payload string) (*domain.Verification, error)
}

// FaceHandler serves the registration and verification endpoints.
type FaceHandler struct {
	service FaceService
	logger  *slog.Logger
}

func NewFaceHandler(service FaceService, logger *slog.Logger) *FaceHandler {
	return &FaceHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRequest body for POST /api/register. Image is a base64 payload,
// optionally prefixed with a data URL header.
type RegisterRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// VerifyRequest body for POST /api/verify
type VerifyRequest struct {
	Image string `json:"image"`
}

// FaceResponse is returned by both endpoints.
type FaceResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	User    *domain.UserSummary `json:"user,omitempty"`
}

// Register POST /api/register
func (h *FaceHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	user, err := h.service.Register(c.UserContext(), req.Name, req.Image)
	if err != nil {
		return err
	}

	summary := user.Summary()
	return c.JSON(FaceResponse{
		Success: true,
		Message: fmt.Sprintf("User %s registered successfully!", user.Name),
		User:    &summary,
	})
}

// Verify POST /api/verify
func (h *FaceHandler) Verify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	result, err := h.service.Verify(c.UserContext(), req.Image)
	if err != nil {
		return err
	}

	if !result.Recognized {
		return c.Status(domain.ErrNotRecognized.StatusCode).JSON(FaceResponse{
			Success: false,
			Message: domain.ErrNotRecognized.Message,
		})
	}

	h.logger.Debug("verification matched",
		"user_id", result.User.ID,
		"distance", result.Distance,
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	)

	summary := result.User.Summary()
	return c.JSON(FaceResponse{
		Success: true,
		Message: fmt.Sprintf("Welcome back, %s!", result.User.Name),
		User:    &summary,
	})
}
