package owner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"exelix/internal/domain"
	"exelix/internal/repository"
	"exelix/internal/service/photo"
)

var (
	ErrMissingFields   = errors.New("name, surname, phone are required")
	ErrQRNotFound      = errors.New("qr code not found")
	ErrQRAlreadyActive = errors.New("qr code already active")
	ErrNoOwner         = errors.New("active qr code has no owner")
	ErrOwnerNotFound   = errors.New("owner not found")
	ErrInvalidPush     = errors.New("push subscription must be an object")
)

type GateAction string

const (
	GateRegister GateAction = "register"
	GateCabinet  GateAction = "cabinet"
	GateNotify   GateAction = "notify"
)

// GateResult tells the client what scanning a code leads to.
type GateResult struct {
	Action GateAction
	Code   string
	Owner  *domain.Owner
}

type Service interface {
	// Gate resolves a scanned code. viewer is the authenticated owner, if any.
	Gate(ctx context.Context, code string, viewer *uuid.UUID) (*GateResult, error)
	Register(ctx context.Context, input domain.RegisterOwnerInput, file *photo.File) (*domain.Owner, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Owner, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateOwnerInput, file *photo.File) (*domain.Owner, error)
	SetTelegram(ctx context.Context, id uuid.UUID, telegram *string) (*string, error)
	SetAtCar(ctx context.Context, id uuid.UUID, atCar bool) error
	// SetPushSubscription stores a Web Push subscription object; JSON null clears it.
	SetPushSubscription(ctx context.Context, id uuid.UUID, raw json.RawMessage) error
}

type service struct {
	qrRepo      repository.QRCodeRepository
	ownerRepo   repository.OwnerRepository
	photos      photo.Service
	defaultLang domain.Lang
}

func NewService(qrRepo repository.QRCodeRepository, ownerRepo repository.OwnerRepository, photos photo.Service, defaultLang domain.Lang) Service {
	if !defaultLang.IsValid() {
		defaultLang = domain.DefaultLang
	}
	return &service{
		qrRepo:      qrRepo,
		ownerRepo:   ownerRepo,
		photos:      photos,
		defaultLang: defaultLang,
	}
}

func (s *service) Gate(ctx context.Context, code string, viewer *uuid.UUID) (*GateResult, error) {
	qr, err := s.qrRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if qr == nil {
		return nil, ErrQRNotFound
	}
	if !qr.IsActive() {
		return &GateResult{Action: GateRegister, Code: code}, nil
	}

	owner, err := s.ownerRepo.GetByQRCodeID(ctx, qr.ID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrNoOwner
	}

	if viewer != nil && *viewer == owner.ID {
		return &GateResult{Action: GateCabinet, Code: code, Owner: owner}, nil
	}
	return &GateResult{Action: GateNotify, Code: code, Owner: owner}, nil
}

func (s *service) Register(ctx context.Context, input domain.RegisterOwnerInput, file *photo.File) (*domain.Owner, error) {
	code := strings.TrimSpace(input.QRCode)
	name := strings.TrimSpace(input.Name)
	surname := strings.TrimSpace(input.Surname)
	phone := strings.TrimSpace(input.Phone)
	if code == "" || name == "" || surname == "" || phone == "" {
		return nil, ErrMissingFields
	}

	qr, err := s.qrRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if qr == nil {
		return nil, ErrQRNotFound
	}
	if qr.IsActive() {
		return nil, ErrQRAlreadyActive
	}

	owner := &domain.Owner{
		ID:          uuid.New(),
		QRCodeID:    qr.ID,
		Name:        name,
		Surname:     surname,
		Phone:       phone,
		Telegram:    optional(input.Telegram),
		ProfileOpen: input.ProfileOpenValue(),
		Lang:        domain.NormalizeLang(input.Lang, s.defaultLang),
	}

	if file != nil {
		url, err := s.photos.Upload(ctx, *file)
		if err != nil {
			return nil, err
		}
		owner.PhotoURL = &url
	}

	if err := s.ownerRepo.Register(ctx, owner); err != nil {
		s.discardPhoto(ctx, owner.PhotoURL)
		if errors.Is(err, repository.ErrQRCodeNotInactive) {
			return nil, ErrQRAlreadyActive
		}
		return nil, fmt.Errorf("failed to register owner: %w", err)
	}

	return owner, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	owner, err := s.ownerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrOwnerNotFound
	}
	return owner, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateOwnerInput, file *photo.File) (*domain.Owner, error) {
	owner, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		owner.Name = strings.TrimSpace(*input.Name)
	}
	if input.Surname != nil {
		owner.Surname = strings.TrimSpace(*input.Surname)
	}
	if input.Phone != nil {
		owner.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Telegram != nil && *input.Telegram != "" {
		owner.Telegram = optional(*input.Telegram)
	}
	if input.Lang != nil {
		owner.Lang = domain.NormalizeLang(*input.Lang, owner.Lang)
	}

	if file != nil {
		url, err := s.photos.Upload(ctx, *file)
		if err != nil {
			return nil, err
		}
		owner.PhotoURL = &url
	}

	if err := s.ownerRepo.UpdateProfile(ctx, owner); err != nil {
		if file != nil {
			s.discardPhoto(ctx, owner.PhotoURL)
		}
		return nil, err
	}
	return owner, nil
}

func (s *service) SetTelegram(ctx context.Context, id uuid.UUID, telegram *string) (*string, error) {
	var value *string
	if telegram != nil {
		value = optional(*telegram)
	}
	if err := s.ownerRepo.SetTelegram(ctx, id, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (s *service) SetAtCar(ctx context.Context, id uuid.UUID, atCar bool) error {
	return s.ownerRepo.SetAtCar(ctx, id, atCar)
}

func (s *service) SetPushSubscription(ctx context.Context, id uuid.UUID, raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)

	var value *string
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '{' && json.Valid(raw):
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return ErrInvalidPush
		}
		sub := compact.String()
		value = &sub
	default:
		return ErrInvalidPush
	}

	return s.ownerRepo.SetPushSubscription(ctx, id, value)
}

// discardPhoto removes an upload whose owner row was never written.
func (s *service) discardPhoto(ctx context.Context, photoURL *string) {
	if photoURL == nil {
		return
	}
	if err := s.photos.Remove(context.WithoutCancel(ctx), *photoURL); err != nil {
		log.Printf("[owner] failed to remove orphaned photo %s: %v", *photoURL, err)
	}
}

func optional(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}
