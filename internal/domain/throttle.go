package domain

import "time"

type ThrottleKey struct {
	SenderIP    string
	Fingerprint *string
}

// String is the storage key; a missing fingerprint collapses to "x".
func (k ThrottleKey) String() string {
	fp := "x"
	if k.Fingerprint != nil && *k.Fingerprint != "" {
		fp = *k.Fingerprint
	}
	return "s:" + k.SenderIP + ":" + fp
}

type ThrottleMark struct {
	Key        string    `db:"throttle_key"`
	LastSentAt time.Time `db:"last_sent_at"`
}
