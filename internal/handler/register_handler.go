package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"exelix/internal/domain"
	"exelix/internal/middleware"
	"exelix/internal/service/auth"
	"exelix/internal/service/owner"
)

type RegisterHandler struct {
	ownerService owner.Service
	authService  auth.Service
	cookies      CookieConfig
}

func NewRegisterHandler(ownerService owner.Service, authService auth.Service, cookies CookieConfig) *RegisterHandler {
	return &RegisterHandler{
		ownerService: ownerService,
		authService:  authService,
		cookies:      cookies,
	}
}

// Register binds an inactive code to a new owner. Accepts JSON or multipart with an optional photo.
func (h *RegisterHandler) Register(c *fiber.Ctx) error {
	var input domain.RegisterOwnerInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	file, closer, err := photoFromForm(c)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	created, err := h.ownerService.Register(c.Context(), input, file)
	if err != nil {
		switch {
		case errors.Is(err, owner.ErrMissingFields):
			return middleware.NewAPIError(fiber.StatusBadRequest, "MISSING_FIELDS", "Name, surname, phone are required")
		case errors.Is(err, owner.ErrQRNotFound):
			return middleware.NewAPIError(fiber.StatusNotFound, "QR_NOT_FOUND", "")
		case errors.Is(err, owner.ErrQRAlreadyActive):
			return middleware.NewAPIError(fiber.StatusBadRequest, "QR_ALREADY_ACTIVE", "")
		}
		if apiErr := photoError(err); apiErr != nil {
			return apiErr
		}
		return err
	}

	token, err := h.authService.IssueOwnerToken(created.ID)
	if err != nil {
		return err
	}
	setSessionCookie(c, middleware.OwnerCookie, token, h.cookies.OwnerMaxAge, h.cookies.Secure)

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    created,
	})
}
