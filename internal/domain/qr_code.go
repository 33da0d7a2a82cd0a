package domain

import (
	"time"

	"github.com/google/uuid"
)

type QRStatus string

const (
	QRStatusInactive QRStatus = "inactive"
	QRStatusActive   QRStatus = "active"
)

// QRCode is pre-provisioned inactive and activated exactly once, on registration.
type QRCode struct {
	ID        uuid.UUID  `json:"id" db:"qr_code_id"`
	Code      string     `json:"code" db:"code"`
	Status    QRStatus   `json:"status" db:"status"`
	OwnerID   *uuid.UUID `json:"owner_id,omitempty" db:"owner_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

func (q *QRCode) IsActive() bool {
	return q.Status == QRStatusActive
}

type ProvisionedCode struct {
	Code string `json:"code"`
	URL  string `json:"url"`
}
