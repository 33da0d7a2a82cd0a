package domain

import (
	"time"

	"github.com/google/uuid"
)

type Lang string

const (
	LangRU Lang = "ru"
	LangKY Lang = "ky"
	LangEN Lang = "en"
)

const DefaultLang = LangRU

func (l Lang) IsValid() bool {
	switch l {
	case LangRU, LangKY, LangEN:
		return true
	default:
		return false
	}
}

// NormalizeLang returns fallback for anything outside the supported set.
func NormalizeLang(raw string, fallback Lang) Lang {
	if l := Lang(raw); l.IsValid() {
		return l
	}
	return fallback
}

// Owner is 1:1 with an active QRCode.
type Owner struct {
	ID               uuid.UUID `json:"id" db:"owner_id"`
	QRCodeID         uuid.UUID `json:"-" db:"qr_code_id"`
	Name             string    `json:"name" db:"name"`
	Surname          string    `json:"surname" db:"surname"`
	PhotoURL         *string   `json:"photo" db:"photo_url"`
	Phone            string    `json:"phone" db:"phone"`
	Telegram         *string   `json:"telegram" db:"telegram"`
	ProfileOpen      bool      `json:"profile_open" db:"profile_open"`
	PushSubscription *string   `json:"-" db:"push_subscription"`
	AtCar            bool      `json:"at_car" db:"at_car"`
	Lang             Lang      `json:"lang" db:"lang"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

func (o *Owner) HasPushSubscription() bool {
	return o.PushSubscription != nil && *o.PushSubscription != ""
}

func (o *Owner) HasTelegram() bool {
	return o.Telegram != nil && *o.Telegram != ""
}

type RegisterOwnerInput struct {
	QRCode      string `json:"qrCode" form:"qrCode"`
	Name        string `json:"name" form:"name"`
	Surname     string `json:"surname" form:"surname"`
	Phone       string `json:"phone" form:"phone"`
	Telegram    string `json:"telegram" form:"telegram"`
	ProfileOpen string `json:"profileOpen" form:"profileOpen"`
	Lang        string `json:"lang" form:"lang"`
}

func (in RegisterOwnerInput) ProfileOpenValue() bool {
	return in.ProfileOpen == "1" || in.ProfileOpen == "true"
}

type UpdateOwnerInput struct {
	Name     *string `json:"name,omitempty" form:"name"`
	Surname  *string `json:"surname,omitempty" form:"surname"`
	Phone    *string `json:"phone,omitempty" form:"phone"`
	Telegram *string `json:"telegram,omitempty" form:"telegram"`
	Lang     *string `json:"lang,omitempty" form:"lang"`
}

// PublicOwner is what an anonymous passer-by sees; personal fields stay nil unless the profile is open.
type PublicOwner struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	Photo   *string `json:"photo"`
	Phone   string  `json:"phone"`
}

func (o *Owner) Public() PublicOwner {
	if !o.ProfileOpen {
		return PublicOwner{Phone: o.Phone}
	}
	name, surname := o.Name, o.Surname
	return PublicOwner{Name: &name, Surname: &surname, Photo: o.PhotoURL, Phone: o.Phone}
}

type OwnerSummary struct {
	ID        uuid.UUID `json:"id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Surname   string    `json:"surname" db:"surname"`
	PhotoURL  *string   `json:"photo" db:"photo_url"`
	Phone     string    `json:"phone" db:"phone"`
	Telegram  *string   `json:"telegram" db:"telegram"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
