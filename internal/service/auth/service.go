package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"exelix/internal/config"
	"exelix/internal/domain"
	"exelix/internal/repository"
)

const RoleAdmin = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("insufficient role")
)

type Service interface {
	IssueOwnerToken(ownerID uuid.UUID) (string, error)
	ValidateOwnerToken(token string) (*OwnerClaims, error)
	GetOwner(ctx context.Context, id uuid.UUID) (*domain.Owner, error)

	AdminLogin(ctx context.Context, input domain.AdminLoginInput) (string, error)
	ValidateAdminToken(token string) (*AdminClaims, error)
	// EnsureAdmin seeds the configured admin account when none exists yet.
	EnsureAdmin(ctx context.Context) error
}

type OwnerClaims struct {
	OwnerID uuid.UUID `json:"userId"`
	jwt.RegisteredClaims
}

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type service struct {
	ownerRepo repository.OwnerRepository
	adminRepo repository.AdminRepository
	cfg       *config.Config
}

func NewService(ownerRepo repository.OwnerRepository, adminRepo repository.AdminRepository, cfg *config.Config) Service {
	return &service{
		ownerRepo: ownerRepo,
		adminRepo: adminRepo,
		cfg:       cfg,
	}
}

func (s *service) IssueOwnerToken(ownerID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &OwnerClaims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTOwnerExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   ownerID.String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func (s *service) ValidateOwnerToken(tokenString string) (*OwnerClaims, error) {
	claims := &OwnerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.OwnerID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *service) GetOwner(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	return s.ownerRepo.GetByID(ctx, id)
}

func (s *service) AdminLogin(ctx context.Context, input domain.AdminLoginInput) (string, error) {
	admin, err := s.adminRepo.GetByLogin(ctx, input.Login)
	if err != nil {
		return "", err
	}
	if admin == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := &AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTAdminExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   admin.ID.String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.AdminJWTSecret()))
}

func (s *service) ValidateAdminToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.AdminJWTSecret()), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleAdmin {
		return nil, ErrForbidden
	}
	return claims, nil
}

func (s *service) EnsureAdmin(ctx context.Context) error {
	exists, err := s.adminRepo.Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check admins: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &domain.Admin{
		ID:           uuid.New(),
		Login:        s.cfg.AdminLogin,
		PasswordHash: string(hash),
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	log.Printf("Seeded admin account %q", admin.Login)
	return nil
}
