package handler

import (
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"exelix/internal/config"
	"exelix/internal/middleware"
	"exelix/internal/service"
	"exelix/internal/service/photo"
)

type Handlers struct {
	Notify   *NotifyHandler
	QR       *QRHandler
	Register *RegisterHandler
	Owner    *OwnerHandler
	Admin    *AdminHandler
}

// CookieConfig controls the session cookies issued to owners and admins.
type CookieConfig struct {
	Secure      bool
	OwnerMaxAge time.Duration
	AdminMaxAge time.Duration
}

func NewHandlers(services *service.Services, cfg *config.Config) *Handlers {
	cookies := CookieConfig{
		Secure:      cfg.Environment == "production",
		OwnerMaxAge: cfg.JWTOwnerExpiry,
		AdminMaxAge: cfg.JWTAdminExpiry,
	}

	return &Handlers{
		Notify:   NewNotifyHandler(services.Admission, services.Captcha, cfg.VAPIDPublicKey),
		QR:       NewQRHandler(services.Owner),
		Register: NewRegisterHandler(services.Owner, services.Auth, cookies),
		Owner:    NewOwnerHandler(services.Owner),
		Admin:    NewAdminHandler(services.Auth, services.Admin, cookies),
	}
}

func setSessionCookie(c *fiber.Ctx, name, token string, maxAge time.Duration, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// photoFromForm returns the optional "photo" upload; the caller must close the returned closer.
func photoFromForm(c *fiber.Ctx) (*photo.File, io.Closer, error) {
	header, err := c.FormFile("photo")
	if err != nil {
		return nil, nil, nil
	}

	f, err := header.Open()
	if err != nil {
		return nil, nil, middleware.BadRequest("Failed to read photo")
	}

	contentType := header.Header.Get(fiber.HeaderContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &photo.File{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: contentType,
		Reader:      f,
	}, f, nil
}

func photoError(err error) error {
	switch {
	case errors.Is(err, photo.ErrTooLarge):
		return middleware.NewAPIError(fiber.StatusRequestEntityTooLarge, "PHOTO_TOO_LARGE", "Photo must be at most 5MB")
	case errors.Is(err, photo.ErrUnsupportedType):
		return middleware.NewAPIError(fiber.StatusBadRequest, "PHOTO_INVALID", "Photo must be an image")
	case errors.Is(err, photo.ErrStorageDisabled):
		return middleware.NewAPIError(fiber.StatusServiceUnavailable, "PHOTO_UNAVAILABLE", "Photo upload is not available")
	}
	return nil
}
