package models

// Product estados
const (
	ProductStatusPublished = "PUBLISHED"
	ProductStatusDraft     = "DRAFT"
)

// Product es el software al que pertenecen licencias y vouchers.
// OfflineRequestVerifyKey es la clave pública Ed25519 (base64) con la que se
// verifica, si existe, la firma de los request files offline del producto.
type Product struct {
	ID                      string  `json:"id"`
	Name                    string  `json:"name"`
	Slug                    string  `json:"slug"`
	Status                  string  `json:"status"`
	CurrentVersion          string  `json:"current_version"`
	OfflineRequestVerifyKey *string `json:"offline_request_verify_key,omitempty"`
	CreatedAt               string  `json:"created_at"`
	UpdatedAt               string  `json:"updated_at"`
}

// ProductRef referencia mínima usada en respuestas.
type ProductRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateProductRequest alta de producto.
type CreateProductRequest struct {
	Name                    string  `json:"name"`
	Slug                    string  `json:"slug"`
	CurrentVersion          string  `json:"current_version"`
	OfflineRequestVerifyKey *string `json:"offline_request_verify_key"`
}
