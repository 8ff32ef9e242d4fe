package models

// Roles de operador. El super_admin puede generar licencias offline y
// gestionar vouchers; el rol admin cubre el resto del panel.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
)

// Admin cuenta de operador del panel.
type Admin struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	CreatedAt    string `json:"created_at"`
}

// LoginRequest cuerpo de POST /api/admin/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token de acceso emitido al operador.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}
