package services

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"fulltechlicense/logger"
	"fulltechlicense/models"
	"fulltechlicense/utils"
)

// ErrInvalidCredentials respuesta única para email inexistente y password
// incorrecto, sin distinguir cuál falló.
var ErrInvalidCredentials = NewServiceError(http.StatusUnauthorized, models.AttemptError,
	"Credenciales inválidas", "")

// AuthConfig parámetros del login del backoffice.
type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
}

// AuthService autentica administradores del backoffice y emite sus access
// tokens.
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)
	FindByID(ctx context.Context, id string) (models.Admin, error)
}

type authService struct {
	db  SQLExecutor
	cfg AuthConfig
}

// NewAuthService crea el servicio de autenticación.
func NewAuthService(db SQLExecutor, cfg AuthConfig) AuthService {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 8 * time.Hour
	}
	return &authService{db: db, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return models.LoginResponse{}, ErrInvalidCredentials
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, role, created_at FROM admins WHERE LOWER(email) = ?`, email)

	var admin models.Admin
	err := row.Scan(&admin.ID, &admin.Email, &admin.Name, &admin.PasswordHash, &admin.Role, &admin.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.LoginResponse{}, err
	}

	if !utils.CheckPassword(admin.PasswordHash, req.Password) {
		logger.Warn("Failed login attempt for %s", email)
		return models.LoginResponse{}, ErrInvalidCredentials
	}

	token, expiresAt, err := utils.SignAccessToken(s.cfg.JWTSecret, admin.ID, admin.Email, admin.Role, s.cfg.AccessTokenTTL)
	if err != nil {
		return models.LoginResponse{}, err
	}

	return models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Email:     admin.Email,
		Role:      admin.Role,
	}, nil
}

func (s *authService) FindByID(ctx context.Context, id string) (models.Admin, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, role, created_at FROM admins WHERE id = ?`, id)

	var admin models.Admin
	err := row.Scan(&admin.ID, &admin.Email, &admin.Name, &admin.PasswordHash, &admin.Role, &admin.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Admin{}, NewServiceError(http.StatusNotFound, models.AttemptError, "Admin no encontrado", "")
	}
	return admin, err
}
