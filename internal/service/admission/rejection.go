package admission

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindInvalidRequest  Kind = "INVALID_REQUEST"
	KindInvalidTypes    Kind = "INVALID_TYPES"
	KindTooFast         Kind = "TOO_FAST"
	KindCaptchaRequired Kind = "CAPTCHA_REQUIRED"
	KindCaptchaFailed   Kind = "CAPTCHA_FAILED"
	KindCaptchaError    Kind = "CAPTCHA_ERROR"
	KindSenderLimit     Kind = "SENDER_LIMIT"
	KindQRNotFound      Kind = "QR_NOT_FOUND"
	KindNoOwner         Kind = "NO_OWNER"
	KindOwnerLimit      Kind = "OWNER_LIMIT"
)

const (
	CodeLimitRegular  = "LIMIT_REGULAR"
	CodeLimitCritical = "LIMIT_CRITICAL"
)

// Rejection is a client-visible admission failure with a stable kind and HTTP status.
type Rejection struct {
	Kind    Kind   `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Status  int    `json:"-"`
}

func (r *Rejection) Error() string {
	if r.Code != "" {
		return string(r.Kind) + ": " + r.Code
	}
	return string(r.Kind)
}

func reject(kind Kind) *Rejection {
	return &Rejection{Kind: kind, Status: statusOf(kind)}
}

func (r *Rejection) withMessage(msg string) *Rejection {
	r.Message = msg
	return r
}

func (r *Rejection) withCode(code string) *Rejection {
	r.Code = code
	return r
}

// AsRejection unwraps err into a *Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

func statusOf(kind Kind) int {
	switch kind {
	case KindTooFast, KindSenderLimit, KindOwnerLimit:
		return http.StatusTooManyRequests
	case KindQRNotFound:
		return http.StatusNotFound
	case KindCaptchaError, KindNoOwner:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
