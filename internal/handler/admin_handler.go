package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"exelix/internal/domain"
	"exelix/internal/middleware"
	"exelix/internal/service/admin"
	"exelix/internal/service/auth"
)

type AdminHandler struct {
	authService  auth.Service
	adminService admin.Service
	cookies      CookieConfig
}

func NewAdminHandler(authService auth.Service, adminService admin.Service, cookies CookieConfig) *AdminHandler {
	return &AdminHandler{
		authService:  authService,
		adminService: adminService,
		cookies:      cookies,
	}
}

func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var input domain.AdminLoginInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	token, err := h.authService.AdminLogin(c.Context(), input)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return middleware.NewAPIError(fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "")
		}
		return err
	}
	setSessionCookie(c, middleware.AdminCookie, token, h.cookies.AdminMaxAge, h.cookies.Secure)

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.adminService.GetStats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	params := domain.DefaultOffsetParams()
	params.Offset = c.QueryInt("offset", params.Offset)
	params.Limit = c.QueryInt("limit", params.Limit)

	owners, err := h.adminService.ListOwners(c.Context(), params)
	if err != nil {
		return err
	}
	if owners == nil {
		owners = []domain.OwnerSummary{}
	}

	return c.JSON(fiber.Map{"users": owners})
}

func (h *AdminHandler) GenerateCodes(c *fiber.Ctx) error {
	codes, err := h.adminService.GenerateCodes(c.Context(), c.QueryInt("count", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"codes": codes})
}
