package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"exelix/internal/middleware"
	"exelix/internal/service/owner"
)

type QRHandler struct {
	ownerService owner.Service
}

func NewQRHandler(ownerService owner.Service) *QRHandler {
	return &QRHandler{ownerService: ownerService}
}

func (h *QRHandler) Gate(c *fiber.Ctx) error {
	code := c.Params("code")

	var viewer *uuid.UUID
	if id := middleware.GetCurrentOwnerID(c); id != uuid.Nil {
		viewer = &id
	}

	res, err := h.ownerService.Gate(c.Context(), code, viewer)
	if err != nil {
		switch {
		case errors.Is(err, owner.ErrQRNotFound):
			return middleware.NewAPIError(fiber.StatusNotFound, "QR_NOT_FOUND", "")
		case errors.Is(err, owner.ErrNoOwner):
			log.Printf("[qr] active code %q has no owner", code)
			return middleware.NewAPIError(fiber.StatusInternalServerError, "NO_OWNER", "")
		}
		return err
	}

	switch res.Action {
	case owner.GateRegister:
		return c.JSON(fiber.Map{
			"action": res.Action,
			"qrCode": res.Code,
		})
	case owner.GateCabinet:
		return c.JSON(fiber.Map{
			"action": res.Action,
			"user":   res.Owner,
		})
	default:
		return c.JSON(fiber.Map{
			"action":      res.Action,
			"qrCode":      res.Code,
			"owner":       res.Owner.Public(),
			"canCall":     true,
			"canTelegram": res.Owner.HasTelegram(),
			"telegram":    res.Owner.Telegram,
			"phone":       res.Owner.Phone,
		})
	}
}
