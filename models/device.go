package models

// DeviceActivation vincula una licencia con un dispositivo concreto.
// Solo se guarda el hash de la huella, nunca la huella en crudo. La fila
// nunca se borra: revoked_at marca la revocación y conserva el conteo
// histórico de activaciones.
type DeviceActivation struct {
	ID           string  `json:"id"`
	LicenseID    string  `json:"license_id"`
	DeviceIDHash string  `json:"device_id_hash"`
	AppVersion   string  `json:"app_version"`
	ActivatedAt  string  `json:"activated_at"`
	LastSeenAt   string  `json:"last_seen_at"`
	RevokedAt    *string `json:"revoked_at,omitempty"`
}

// IsActive indica si el dispositivo cuenta contra max_devices.
func (d *DeviceActivation) IsActive() bool {
	return d.RevokedAt == nil || *d.RevokedAt == ""
}

// OnlineActivationRequest cuerpo de POST /api/activation/online.
type OnlineActivationRequest struct {
	LicenseKey        string `json:"licenseKey"`
	ProductID         string `json:"productId"`
	AppVersion        string `json:"appVersion"`
	DeviceFingerprint string `json:"deviceFingerprint"`
}

// RevalidationRequest cuerpo de POST /api/activation/revalidate.
type RevalidationRequest struct {
	ActivationToken   string `json:"activationToken"`
	DeviceFingerprint string `json:"deviceFingerprint"`
	AppVersion        string `json:"appVersion"`
}

// ActivationResult respuesta de activación/revalidación.
type ActivationResult struct {
	ActivationToken string `json:"activationToken"`
	OfflineDays     int    `json:"offlineDays"`
	Expiry          string `json:"expiry"`
}

// AdminDeviceRequest revocación/reactivación administrativa de un dispositivo.
type AdminDeviceRequest struct {
	LicenseID    string `json:"license_id"`
	DeviceIDHash string `json:"device_id_hash"`
}
