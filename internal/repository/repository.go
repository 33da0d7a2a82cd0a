package repository

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrQRCodeNotInactive = errors.New("qr code is not inactive")

type Repositories struct {
	QRCode   QRCodeRepository
	Owner    OwnerRepository
	Event    NotificationEventRepository
	Attempt  SendAttemptRepository
	Throttle ThrottleRepository
	Admin    AdminRepository
}

// NewRepositories wires the Postgres-backed stores. Throttle may be swapped for the Redis store by the caller.
func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		QRCode:   NewQRCodeRepository(db),
		Owner:    NewOwnerRepository(db),
		Event:    NewNotificationEventRepository(db),
		Attempt:  NewSendAttemptRepository(db),
		Throttle: NewThrottleRepository(db),
		Admin:    NewAdminRepository(db),
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
