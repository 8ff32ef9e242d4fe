package models

// OfflineRequest estados. Un nonce pasa a USED como máximo una vez; esa es
// el ancla contra replays.
const (
	OfflineRequestStatusReceived = "RECEIVED"
	OfflineRequestStatusUsed     = "USED"
	OfflineRequestStatusRejected = "REJECTED"
)

// OfflineRequestPayload es la carga canónica que el cliente aislado genera
// y entrega fuera de banda. El checksum y la firma se calculan sobre su
// forma canónica (claves ordenadas).
type OfflineRequestPayload struct {
	ProductID         string `json:"productId"`
	AppVersion        string `json:"appVersion"`
	DeviceFingerprint string `json:"deviceFingerprint"`
	Timestamp         string `json:"timestamp"`
	Nonce             string `json:"nonce"`
}

// OfflineRequestFile es el archivo de solicitud completo que sube el
// cliente o el operador.
type OfflineRequestFile struct {
	Payload          OfflineRequestPayload `json:"payload"`
	ChecksumSHA256   string                `json:"checksumSha256"`
	SignatureEd25519 *string               `json:"signatureEd25519,omitempty"`
}

// OfflineRequest fila persistida, con upsert por nonce.
type OfflineRequest struct {
	ID          string  `json:"id"`
	Nonce       string  `json:"nonce"`
	ProductID   string  `json:"product_id"`
	TenantID    *string `json:"tenant_id"`
	LicenseID   *string `json:"license_id"`
	PayloadJSON string  `json:"payload_json"`
	PayloadHash string  `json:"payload_hash"`
	Status      string  `json:"status"`
	UsedAt      *string `json:"used_at"`
	CreatedAt   string  `json:"created_at"`
}

// OfflineLicensePayload es el contenido firmado del archivo de licencia.
// El verificador del cliente comprueba firma, deviceIdHash y expiry por su
// cuenta: el servidor no puede revalidar a un cliente sin conectividad.
type OfflineLicensePayload struct {
	LicenseID    string                 `json:"licenseId"`
	TenantID     string                 `json:"tenantId"`
	ProductID    string                 `json:"productId"`
	Features     map[string]interface{} `json:"features"`
	Modules      map[string]bool        `json:"modules"`
	Expiry       string                 `json:"expiry"`
	DeviceIDHash string                 `json:"deviceIdHash"`
	IssuedAt     string                 `json:"issuedAt"`
	RequestNonce string                 `json:"requestNonce"`
}

// OfflineLicenseFile fila inmutable con el artefacto firmado.
type OfflineLicenseFile struct {
	ID               string `json:"id"`
	OfflineRequestID string `json:"offline_request_id"`
	LicenseID        string `json:"license_id"`
	FileName         string `json:"file_name"`
	PayloadJSON      string `json:"payload_json"`
	Signature        string `json:"signature"`
	PublicKey        string `json:"public_key"`
	CreatedAt        string `json:"created_at"`
}

// GenerateOfflineLicenseRequest cuerpo de POST /api/admin/offline/license/generate.
type GenerateOfflineLicenseRequest struct {
	RequestFile OfflineRequestFile `json:"requestFile"`
	LicenseID   string             `json:"licenseId"`
}

// OfflineLicenseArtifact respuesta descargable: payload + firma + clave
// pública, todo lo que el verificador aislado necesita.
type OfflineLicenseArtifact struct {
	ID               string                `json:"id"`
	FileName         string                `json:"fileName"`
	Payload          OfflineLicensePayload `json:"payload"`
	SignatureEd25519 string                `json:"signatureEd25519"`
	PublicKeyEd25519 string                `json:"publicKeyEd25519"`
}
