package models

// Tenant estados
const (
	TenantStatusActive = "ACTIVE"
)

// Tenant es el titular (comercio) de una o más licencias. Se crea al emitir
// una licencia o al canjear un voucher; no hay CRUD público de tenants.
type Tenant struct {
	ID           string  `json:"id"`
	TradeName    string  `json:"trade_name"`
	LegalName    string  `json:"legal_name"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
}

// TenantRef referencia mínima usada en respuestas.
type TenantRef struct {
	ID           string  `json:"id"`
	TradeName    string  `json:"trade_name"`
	ContactEmail *string `json:"contact_email"`
}
