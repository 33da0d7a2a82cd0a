package domain

import (
	"time"

	"github.com/google/uuid"
)

type AttemptOutcome string

const (
	AttemptSuccess AttemptOutcome = "success"
	AttemptFail    AttemptOutcome = "fail"
)

// SendAttempt feeds admin statistics only.
type SendAttempt struct {
	ID        uuid.UUID      `json:"id" db:"attempt_id"`
	IP        string         `json:"ip" db:"ip"`
	Outcome   AttemptOutcome `json:"outcome" db:"outcome"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
