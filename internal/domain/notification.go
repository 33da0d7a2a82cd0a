package domain

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type NotificationType string

const (
	NotifBlocking        NotificationType = "blocking"
	NotifWrongPlace      NotificationType = "wrong_place"
	NotifAlarm           NotificationType = "alarm"
	NotifEvacuate        NotificationType = "evacuate"
	NotifMinorAccident   NotificationType = "minor_accident"
	NotifSeriousAccident NotificationType = "serious_accident"
)

// notificationTypes is the closed set of recognized tags, in display order.
var notificationTypes = []struct {
	Type     NotificationType
	Critical bool
}{
	{NotifBlocking, false},
	{NotifWrongPlace, false},
	{NotifAlarm, false},
	{NotifEvacuate, true},
	{NotifMinorAccident, false},
	{NotifSeriousAccident, true},
}

func AllNotificationTypes() []NotificationType {
	types := make([]NotificationType, 0, len(notificationTypes))
	for _, t := range notificationTypes {
		types = append(types, t.Type)
	}
	return types
}

func (t NotificationType) IsValid() bool {
	for _, known := range notificationTypes {
		if known.Type == t {
			return true
		}
	}
	return false
}

func (t NotificationType) IsCritical() bool {
	for _, known := range notificationTypes {
		if known.Type == t {
			return known.Critical
		}
	}
	return false
}

// NotificationTypes is stored as a TEXT[] column.
type NotificationTypes []NotificationType

// ParseNotificationTypes keeps recognized tags in request order and silently drops the rest.
func ParseNotificationTypes(raw []string) NotificationTypes {
	types := make(NotificationTypes, 0, len(raw))
	for _, r := range raw {
		t := NotificationType(r)
		if t.IsValid() {
			types = append(types, t)
		}
	}
	return types
}

func (ts NotificationTypes) HasCritical() bool {
	for _, t := range ts {
		if t.IsCritical() {
			return true
		}
	}
	return false
}

// Split counts regular and critical tags. Repeated tags count each time.
func (ts NotificationTypes) Split() (regular, critical int) {
	for _, t := range ts {
		if t.IsCritical() {
			critical++
		} else {
			regular++
		}
	}
	return regular, critical
}

func (ts NotificationTypes) Unique() NotificationTypes {
	seen := make(map[NotificationType]bool, len(ts))
	out := make(NotificationTypes, 0, len(ts))
	for _, t := range ts {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (ts NotificationTypes) Strings() []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}

func (ts NotificationTypes) Value() (driver.Value, error) {
	return pq.StringArray(ts.Strings()).Value()
}

func (ts *NotificationTypes) Scan(src interface{}) error {
	var raw pq.StringArray
	if err := raw.Scan(src); err != nil {
		return err
	}
	out := make(NotificationTypes, len(raw))
	for i, r := range raw {
		out[i] = NotificationType(r)
	}
	*ts = out
	return nil
}

// NotificationEvent is the append-only ledger row behind the daily quotas.
type NotificationEvent struct {
	ID          uuid.UUID         `json:"id" db:"event_id"`
	QRCodeID    uuid.UUID         `json:"qr_code_id" db:"qr_code_id"`
	SenderIP    string            `json:"sender_ip" db:"sender_ip"`
	Fingerprint *string           `json:"fingerprint,omitempty" db:"fingerprint"`
	Types       NotificationTypes `json:"types" db:"types"`
	IsCritical  bool              `json:"is_critical" db:"is_critical"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
}

func NewNotificationEvent(qrCodeID uuid.UUID, senderIP string, fingerprint *string, types NotificationTypes) *NotificationEvent {
	return &NotificationEvent{
		ID:          uuid.New(),
		QRCodeID:    qrCodeID,
		SenderIP:    senderIP,
		Fingerprint: fingerprint,
		Types:       types,
		IsCritical:  types.HasCritical(),
	}
}

type NotificationTypeInfo struct {
	Type     NotificationType `json:"type"`
	Critical bool             `json:"critical"`
}

func NotificationTypeCatalog() []NotificationTypeInfo {
	out := make([]NotificationTypeInfo, 0, len(notificationTypes))
	for _, t := range notificationTypes {
		out = append(out, NotificationTypeInfo{Type: t.Type, Critical: t.Critical})
	}
	return out
}
