package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulltechlicense/models"
	"fulltechlicense/utils"
)

func seedAdmin(t *testing.T, db *sql.DB, email, password, role string) models.Admin {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	admin := models.Admin{
		ID:        utils.NewID(),
		Email:     email,
		Name:      "Operador",
		Role:      role,
		CreatedAt: utils.FormatDBTime(utils.NowUTC()),
	}
	_, err = db.Exec(
		`INSERT INTO admins (id, email, name, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		admin.ID, admin.Email, admin.Name, hash, admin.Role, admin.CreatedAt,
	)
	require.NoError(t, err)
	return admin
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(NewSQLExecutor(db), AuthConfig{JWTSecret: "secreto-auth"})

	seedAdmin(t, db, "admin@fulltech.com", "clave-segura", models.RoleSuperAdmin)

	resp, err := svc.Login(ctx, models.LoginRequest{Email: "admin@fulltech.com", Password: "clave-segura"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleSuperAdmin, resp.Role)

	claims, err := utils.VerifyAccessToken("secreto-auth", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@fulltech.com", claims.Email)
	assert.Equal(t, models.RoleSuperAdmin, claims.Role)
}

func TestLoginIsCaseInsensitiveOnEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(NewSQLExecutor(db), AuthConfig{JWTSecret: "secreto-auth"})

	seedAdmin(t, db, "admin@fulltech.com", "clave-segura", models.RoleAdmin)

	_, err := svc.Login(ctx, models.LoginRequest{Email: "  Admin@Fulltech.com ", Password: "clave-segura"})
	assert.NoError(t, err)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(NewSQLExecutor(db), AuthConfig{JWTSecret: "secreto-auth"})

	seedAdmin(t, db, "admin@fulltech.com", "clave-segura", models.RoleAdmin)

	cases := []struct {
		name string
		req  models.LoginRequest
	}{
		{"password incorrecto", models.LoginRequest{Email: "admin@fulltech.com", Password: "otra"}},
		{"email inexistente", models.LoginRequest{Email: "nadie@fulltech.com", Password: "clave-segura"}},
		{"campos vacíos", models.LoginRequest{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tc.req)
			// misma respuesta en todos los casos
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestAuthFindByID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(NewSQLExecutor(db), AuthConfig{JWTSecret: "secreto-auth"})

	admin := seedAdmin(t, db, "admin@fulltech.com", "clave-segura", models.RoleAdmin)

	found, err := svc.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.Email, found.Email)

	_, err = svc.FindByID(ctx, "no-existe")
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 404, se.HTTPStatus)
}
