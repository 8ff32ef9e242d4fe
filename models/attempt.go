package models

// Resultados de intento de activación: la taxonomía de errores que se
// devuelve al cliente y se registra en activation_attempts.
const (
	AttemptSuccess           = "SUCCESS"
	AttemptInvalidKey        = "INVALID_KEY"
	AttemptAppMismatch       = "APP_MISMATCH"
	AttemptExpired           = "EXPIRED"
	AttemptRevoked           = "REVOKED"
	AttemptSuspended         = "SUSPENDED"
	AttemptDeviceLimit       = "DEVICE_LIMIT"
	AttemptVersionBlocked    = "VERSION_BLOCKED"
	AttemptOfflineNotAllowed = "OFFLINE_NOT_ALLOWED"
	AttemptError             = "ERROR"
)

// ActivationAttempt es el registro de auditoría de cada intento. Solo se
// escribe, nunca lo lee el protocolo.
type ActivationAttempt struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	LicenseID    *string `json:"license_id"`
	LicenseKey   *string `json:"license_key"`
	DeviceIDHash *string `json:"device_id_hash"`
	IP           *string `json:"ip"`
	Result       string  `json:"result"`
	Reason       *string `json:"reason"`
	CreatedAt    string  `json:"created_at"`
}
