package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/daffodils/florist-api/internal/config"
	"github.com/daffodils/florist-api/internal/dto"
	"github.com/daffodils/florist-api/internal/model"
	"github.com/daffodils/florist-api/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingIdentifier  = errors.New("email or username is required")
	ErrAdminNotFound      = errors.New("admin not found")
)

type AuthService struct {
	admins    repository.AdminRepository
	jwtSecret []byte
	jwtExpiry time.Duration
	log       *slog.Logger
}

func NewAuthService(admins repository.AdminRepository, cfg config.JWTConfig, log *slog.Logger) *AuthService {
	return &AuthService{
		admins:    admins,
		jwtSecret: []byte(cfg.Secret),
		jwtExpiry: cfg.ExpiresIn,
		log:       log,
	}
}

// Login authenticates by email or username. Lookup misses, wrong passwords
// and deactivated accounts all collapse into ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	if req.Email == "" && req.Username == "" {
		return nil, ErrMissingIdentifier
	}

	var (
		admin *model.Admin
		err   error
	)
	if req.Email != "" {
		admin, err = s.admins.GetByEmail(ctx, req.Email)
	} else {
		admin, err = s.admins.GetByUsername(ctx, req.Username)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	if admin == nil || !admin.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.admins.UpdateLastLogin(ctx, admin.ID); err != nil {
		s.log.Warn("update last login failed", "admin_id", admin.ID, "error", err)
	}
	admin.LastLogin = &now

	token, err := s.generateToken(admin)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info("admin logged in", "admin_id", admin.ID, "username", admin.Username)
	return &dto.AuthResponse{Token: token, Admin: dto.ToAdminResponse(admin)}, nil
}

func (s *AuthService) GetByID(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}

// EnsureDefaultAdmin seeds a super-admin with full permissions when the
// store has no admin accounts at all.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, cfg config.AdminConfig) error {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	admin := &model.Admin{
		Username:    cfg.Username,
		Email:       cfg.Email,
		Password:    string(hash),
		Role:        "super-admin",
		Permissions: model.FullPermissions(),
		IsActive:    true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	s.log.Info("default admin created", "username", admin.Username, "email", admin.Email)
	return nil
}

func (s *AuthService) generateToken(admin *model.Admin) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":         admin.ID.String(),
		"email":       admin.Email,
		"role":        admin.Role,
		"permissions": admin.Permissions.Strings(),
		"iat":         now.Unix(),
		"exp":         now.Add(s.jwtExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
