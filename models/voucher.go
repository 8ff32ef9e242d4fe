package models

// Voucher estados. UNUSED→USED exactamente una vez (produce una licencia) o
// UNUSED→CANCELLED; ambos son terminales. EXPIRED lo aplica el scheduler a
// lotes con fecha de caducidad.
const (
	VoucherStatusUnused    = "UNUSED"
	VoucherStatusUsed      = "USED"
	VoucherStatusCancelled = "CANCELLED"
	VoucherStatusExpired   = "EXPIRED"
)

// Voucher es un código físico/impreso que al canjearse crea una licencia
// según su plantilla.
type Voucher struct {
	ID                  string                 `json:"id"`
	Code                string                 `json:"code"`
	Status              string                 `json:"status"`
	ProductID           string                 `json:"product_id"`
	LicenseType         string                 `json:"license_type"`
	PlanType            string                 `json:"plan_type"`
	LicenseDurationDays *int                   `json:"license_duration_days"`
	MaxDevices          int                    `json:"max_devices"`
	MaxActivations      int                    `json:"max_activations"`
	OfflineAllowed      bool                   `json:"offline_allowed"`
	RevalidateDays      *int                   `json:"revalidate_days"`
	AllowedVersionMin   *string                `json:"allowed_version_min"`
	AllowedVersionMax   *string                `json:"allowed_version_max"`
	Modules             map[string]bool        `json:"modules"`
	Features            map[string]interface{} `json:"features"`
	Notes               string                 `json:"notes"`
	BatchName           *string                `json:"batch_name"`
	ExpiresAt           *string                `json:"expires_at"`
	TenantID            *string                `json:"tenant_id"`
	LicenseID           *string                `json:"license_id"`
	UsedByEmail         *string                `json:"used_by_email"`
	UsedAt              *string                `json:"used_at"`
	CreatedAt           string                 `json:"created_at"`
}

// VoucherBatchRequest creación masiva de vouchers con una misma plantilla.
type VoucherBatchRequest struct {
	ProductID           string                 `json:"product_id"`
	Count               int                    `json:"count"`
	BatchName           *string                `json:"batch_name"`
	LicenseType         string                 `json:"license_type"`
	PlanType            string                 `json:"plan_type"`
	LicenseDurationDays *int                   `json:"license_duration_days"`
	MaxDevices          int                    `json:"max_devices"`
	MaxActivations      int                    `json:"max_activations"`
	OfflineAllowed      *bool                  `json:"offline_allowed"`
	RevalidateDays      *int                   `json:"revalidate_days"`
	AllowedVersionMin   *string                `json:"allowed_version_min"`
	AllowedVersionMax   *string                `json:"allowed_version_max"`
	Modules             map[string]bool        `json:"modules"`
	Features            map[string]interface{} `json:"features"`
	Notes               string                 `json:"notes"`
	ExpiresAt           *string                `json:"expires_at"`
}

// RedeemRequest cuerpo de POST /api/public/redeem.
type RedeemRequest struct {
	Code         string  `json:"code"`
	TradeName    string  `json:"tradeName"`
	ContactEmail *string `json:"contactEmail"`
	ContactPhone *string `json:"contactPhone"`
}

// RedeemResult respuesta del canje: producto, tenant y licencia creados o
// reutilizados dentro de la misma transacción.
type RedeemResult struct {
	Product ProductRef    `json:"product"`
	Tenant  TenantRef     `json:"tenant"`
	License RedeemLicense `json:"license"`
}

// RedeemLicense subconjunto de la licencia devuelto al canjear.
type RedeemLicense struct {
	ID        string  `json:"id"`
	Key       string  `json:"key"`
	ExpiresAt *string `json:"expires_at"`
}
