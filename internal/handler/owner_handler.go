package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"exelix/internal/domain"
	"exelix/internal/middleware"
	"exelix/internal/service/owner"
)

type OwnerHandler struct {
	ownerService owner.Service
}

func NewOwnerHandler(ownerService owner.Service) *OwnerHandler {
	return &OwnerHandler{ownerService: ownerService}
}

func (h *OwnerHandler) Me(c *fiber.Ctx) error {
	current := middleware.GetCurrentOwner(c)
	if current == nil {
		return middleware.NewAPIError(fiber.StatusUnauthorized, "Unauthorized", "")
	}
	return c.JSON(fiber.Map{"user": current})
}

func (h *OwnerHandler) UpdateMe(c *fiber.Ctx) error {
	ownerID := middleware.GetCurrentOwnerID(c)

	var input domain.UpdateOwnerInput
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

	updated, err := h.ownerService.UpdateProfile(c.Context(), ownerID, input, file)
	if err != nil {
		if errors.Is(err, owner.ErrOwnerNotFound) {
			return middleware.NewAPIError(fiber.StatusUnauthorized, "Unauthorized", "")
		}
		if apiErr := photoError(err); apiErr != nil {
			return apiErr
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    updated,
	})
}

func (h *OwnerHandler) SetTelegram(c *fiber.Ctx) error {
	var body struct {
		Telegram *string `json:"telegram"`
	}
	if err := c.BodyParser(&body); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	telegram, err := h.ownerService.SetTelegram(c.Context(), middleware.GetCurrentOwnerID(c), body.Telegram)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"telegram": telegram,
	})
}

func (h *OwnerHandler) AtCar(c *fiber.Ctx) error {
	return h.setAtCar(c, true)
}

func (h *OwnerHandler) AtCarOff(c *fiber.Ctx) error {
	return h.setAtCar(c, false)
}

func (h *OwnerHandler) setAtCar(c *fiber.Ctx, atCar bool) error {
	if err := h.ownerService.SetAtCar(c.Context(), middleware.GetCurrentOwnerID(c), atCar); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"at_car":  atCar,
	})
}

func (h *OwnerHandler) PushSubscription(c *fiber.Ctx) error {
	var body struct {
		Subscription json.RawMessage `json:"subscription"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	if err := h.ownerService.SetPushSubscription(c.Context(), middleware.GetCurrentOwnerID(c), body.Subscription); err != nil {
		if errors.Is(err, owner.ErrInvalidPush) {
			return middleware.NewAPIError(fiber.StatusBadRequest, "INVALID_SUBSCRIPTION", "")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
