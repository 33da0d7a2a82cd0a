package domain

import (
	"time"

	"github.com/google/uuid"
)

type Admin struct {
	ID           uuid.UUID `json:"id" db:"admin_id"`
	Login        string    `json:"login" db:"login"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type AdminLoginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type AdminStats struct {
	Users                int64 `json:"users"`
	SuccessfulRequests   int64 `json:"successful_requests"`
	UnsuccessfulRequests int64 `json:"unsuccessful_requests"`
	TotalRequests        int64 `json:"total_requests"`
	InactiveQRCount      int64 `json:"inactive_qr_count"`
}
