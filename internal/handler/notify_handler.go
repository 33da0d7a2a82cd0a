package handler

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"exelix/internal/domain"
	"exelix/internal/middleware"
	"exelix/internal/service/admission"
	"exelix/internal/service/captcha"
)

type NotifyHandler struct {
	admissionService admission.Service
	captchaService   captcha.Service
	vapidPublicKey   string
}

func NewNotifyHandler(admissionService admission.Service, captchaService captcha.Service, vapidPublicKey string) *NotifyHandler {
	return &NotifyHandler{
		admissionService: admissionService,
		captchaService:   captchaService,
		vapidPublicKey:   vapidPublicKey,
	}
}

// sendBody keeps every field raw so that a stray non-string value filters out instead of failing the whole request.
type sendBody struct {
	QRCode       json.RawMessage `json:"qrCode"`
	Types        json.RawMessage `json:"types"`
	Fingerprint  json.RawMessage `json:"fingerprint"`
	CaptchaToken json.RawMessage `json:"hcaptchaToken"`
}

func (b sendBody) request() admission.Request {
	return admission.Request{
		QRCode:       scalarString(b.QRCode),
		Types:        tagList(b.Types),
		Fingerprint:  scalarString(b.Fingerprint),
		CaptchaToken: scalarString(b.CaptchaToken),
	}
}

// scalarString reads a JSON string or number as text. Anything else reads as empty.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case c == '-' || (c >= '0' && c <= '9'):
		return string(raw)
	}
	return ""
}

// tagList returns nil unless raw is a JSON array. Non-string elements become text that never
// names a known tag, so they are filtered later like any unknown tag.
func tagList(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil
	}

	tags := make([]string, 0, len(items))
	for _, item := range items {
		var tag string
		if err := json.Unmarshal(item, &tag); err != nil {
			tag = string(bytes.TrimSpace(item))
		}
		tags = append(tags, tag)
	}
	return tags
}

// Send is the anonymous notify endpoint. A body that does not decode is submitted
// empty so it is rejected and recorded like any other malformed request.
func (h *NotifyHandler) Send(c *fiber.Ctx) error {
	var body sendBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		body = sendBody{}
	}
	req := body.request()
	req.SenderIP = middleware.ClientIP(c)

	err := h.admissionService.Submit(c.Context(), req)
	if rej, ok := admission.AsRejection(err); ok {
		return &middleware.APIError{
			Status:  rej.Status,
			Kind:    string(rej.Kind),
			Message: rej.Message,
			Code:    rej.Code,
		}
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "SENT",
	})
}

// RecordLimited is the rate limiter hook for the send route.
func (h *NotifyHandler) RecordLimited(c *fiber.Ctx) {
	h.admissionService.RecordRejected(c.Context(), middleware.ClientIP(c))
}

func (h *NotifyHandler) Types(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"types":          domain.NotificationTypeCatalog(),
		"captchaSiteKey": h.captchaService.SiteKey(),
		"vapidPublicKey": h.vapidPublicKey,
	})
}
