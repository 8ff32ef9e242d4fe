package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fulltechlicense/models"
	"fulltechlicense/utils"
)

// Errores del flujo offline.
var (
	ErrNonceUsed = NewServiceError(http.StatusConflict, models.AttemptError,
		"Nonce ya fue usado", "")
	ErrOfflineNotAllowed = NewServiceError(http.StatusForbidden, models.AttemptOfflineNotAllowed,
		"Licencia no permite offline", "")
)

func errRequestFileInvalid(detail string) *ServiceError {
	return NewServiceError(http.StatusBadRequest, models.AttemptError, "Request file inválido", detail)
}

// OfflineConfig material criptográfico del emisor de licencias offline.
type OfflineConfig struct {
	Ed25519PrivateKeyB64 string
}

// OfflineService maneja el flujo air-gapped: validación de request files
// (checksum, firma opcional del producto, nonce) y emisión de archivos de
// licencia firmados. El nonce es la primitiva anti-replay: una vez USED,
// nunca vuelve a producir un archivo.
type OfflineService interface {
	ValidateRequest(ctx context.Context, file models.OfflineRequestFile) (models.OfflineRequest, error)
	GenerateLicenseFile(ctx context.Context, req models.GenerateOfflineLicenseRequest) (models.OfflineLicenseArtifact, error)
	ListRequests(ctx context.Context, limit int) ([]models.OfflineRequest, error)
	ListLicenseFiles(ctx context.Context, licenseID string, limit int) ([]models.OfflineLicenseFile, error)
	GetArtifact(ctx context.Context, fileID string) (models.OfflineLicenseArtifact, error)
	PublicKey() (string, error)
}

type offlineService struct {
	db       SQLExecutor
	licenses LicenseService
	products ProductService
	cfg      OfflineConfig
}

// NewOfflineService crea el servicio offline.
func NewOfflineService(db SQLExecutor, licenses LicenseService, products ProductService, cfg OfflineConfig) OfflineService {
	return &offlineService{db: db, licenses: licenses, products: products, cfg: cfg}
}

// verifyRequestFile comprueba integridad (checksum canónico) y, si el
// producto publica clave de verificación Y el archivo trae firma, la firma
// Ed25519 del cliente. Un archivo sin firmar se acepta aunque el producto
// tenga clave: la firma es opcional para el cliente.
// Devuelve los bytes canónicos del payload para reuso.
func (s *offlineService) verifyRequestFile(ctx context.Context, file models.OfflineRequestFile) ([]byte, models.Product, error) {
	canonical, err := utils.CanonicalJSON(file.Payload)
	if err != nil {
		return nil, models.Product{}, err
	}

	if !strings.EqualFold(utils.SHA256Hex(canonical), file.ChecksumSHA256) {
		return nil, models.Product{}, errRequestFileInvalid("Checksum no coincide")
	}

	product, err := s.products.FindByID(ctx, file.Payload.ProductID)
	if err != nil {
		return nil, models.Product{}, err
	}

	if product.OfflineRequestVerifyKey != nil && *product.OfflineRequestVerifyKey != "" &&
		file.SignatureEd25519 != nil {
		if !utils.Ed25519VerifyBase64(canonical, *file.SignatureEd25519, *product.OfflineRequestVerifyKey) {
			return nil, models.Product{}, errRequestFileInvalid("Firma inválida")
		}
	}

	return canonical, product, nil
}

func (s *offlineService) findRequestByNonce(ctx context.Context, nonce string) (models.OfflineRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, nonce, product_id, tenant_id, license_id, payload_json, payload_hash, status, used_at, created_at
		 FROM offline_requests WHERE nonce = ?`, nonce)

	var r models.OfflineRequest
	err := row.Scan(&r.ID, &r.Nonce, &r.ProductID, &r.TenantID, &r.LicenseID,
		&r.PayloadJSON, &r.PayloadHash, &r.Status, &r.UsedAt, &r.CreatedAt)
	return r, err
}

// ValidateRequest valida un request file subido y lo registra en estado
// RECEIVED. Un nonce ya consumido se rechaza aquí mismo, antes de que el
// operador llegue a emitir nada.
func (s *offlineService) ValidateRequest(ctx context.Context, file models.OfflineRequestFile) (models.OfflineRequest, error) {
	canonical, _, err := s.verifyRequestFile(ctx, file)
	if err != nil {
		return models.OfflineRequest{}, err
	}

	if file.Payload.Nonce == "" {
		return models.OfflineRequest{}, errRequestFileInvalid("Nonce vacío")
	}

	existing, err := s.findRequestByNonce(ctx, file.Payload.Nonce)
	switch {
	case err == nil:
		if existing.Status == models.OfflineRequestStatusUsed {
			return models.OfflineRequest{}, ErrNonceUsed
		}
		return existing, nil
	case errors.Is(err, sql.ErrNoRows):
		// primera vez que se ve este nonce
	default:
		return models.OfflineRequest{}, err
	}

	r := models.OfflineRequest{
		ID:          utils.NewID(),
		Nonce:       file.Payload.Nonce,
		ProductID:   file.Payload.ProductID,
		PayloadJSON: string(canonical),
		PayloadHash: utils.SHA256Hex(canonical),
		Status:      models.OfflineRequestStatusReceived,
		CreatedAt:   utils.FormatDBTime(utils.NowUTC()),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO offline_requests (id, nonce, product_id, tenant_id, license_id, payload_json, payload_hash, status, used_at, created_at)
		 VALUES (?, ?, ?, NULL, NULL, ?, ?, ?, NULL, ?)`,
		r.ID, r.Nonce, r.ProductID, r.PayloadJSON, r.PayloadHash, r.Status, r.CreatedAt,
	)
	if err != nil {
		return models.OfflineRequest{}, err
	}
	return r, nil
}

// GenerateLicenseFile emite el archivo de licencia firmado para un request
// file validado y una licencia elegida por el operador. Marca el nonce como
// USED; repetir la emisión con el mismo nonce devuelve conflicto.
func (s *offlineService) GenerateLicenseFile(ctx context.Context, req models.GenerateOfflineLicenseRequest) (models.OfflineLicenseArtifact, error) {
	canonical, _, err := s.verifyRequestFile(ctx, req.RequestFile)
	if err != nil {
		return models.OfflineLicenseArtifact{}, err
	}
	payload := req.RequestFile.Payload

	lic, err := s.licenses.FindByID(ctx, req.LicenseID)
	if err != nil {
		return models.OfflineLicenseArtifact{}, err
	}
	if !lic.OfflineAllowed {
		return models.OfflineLicenseArtifact{}, ErrOfflineNotAllowed
	}

	now := utils.NowUTC()

	request, err := s.findRequestByNonce(ctx, payload.Nonce)
	switch {
	case err == nil:
		if request.Status == models.OfflineRequestStatusUsed {
			return models.OfflineLicenseArtifact{}, ErrNonceUsed
		}
	case errors.Is(err, sql.ErrNoRows):
		request = models.OfflineRequest{
			ID:          utils.NewID(),
			Nonce:       payload.Nonce,
			ProductID:   payload.ProductID,
			PayloadJSON: string(canonical),
			PayloadHash: utils.SHA256Hex(canonical),
			Status:      models.OfflineRequestStatusReceived,
			CreatedAt:   utils.FormatDBTime(now),
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO offline_requests (id, nonce, product_id, tenant_id, license_id, payload_json, payload_hash, status, used_at, created_at)
			 VALUES (?, ?, ?, NULL, NULL, ?, ?, ?, NULL, ?)`,
			request.ID, request.Nonce, request.ProductID, request.PayloadJSON, request.PayloadHash, request.Status, request.CreatedAt,
		)
		if err != nil {
			return models.OfflineLicenseArtifact{}, err
		}
	default:
		return models.OfflineLicenseArtifact{}, err
	}

	// sin expiración de licencia: horizonte largo fijo de 10 años
	expiry := now.AddDate(0, 0, 3650)
	if exp := lic.ExpiresAtTime(); exp != nil {
		expiry = *exp
	}

	licPayload := models.OfflineLicensePayload{
		LicenseID:    lic.ID,
		TenantID:     lic.TenantID,
		ProductID:    lic.ProductID,
		Features:     lic.Features,
		Modules:      lic.Modules,
		Expiry:       expiry.UTC().Format(time.RFC3339),
		DeviceIDHash: utils.HashDeviceFingerprint(payload.DeviceFingerprint),
		IssuedAt:     now.UTC().Format(time.RFC3339),
		RequestNonce: payload.Nonce,
	}

	canonicalLic, err := utils.CanonicalJSON(licPayload)
	if err != nil {
		return models.OfflineLicenseArtifact{}, err
	}
	signature, err := utils.Ed25519SignBase64(canonicalLic, s.cfg.Ed25519PrivateKeyB64)
	if err != nil {
		return models.OfflineLicenseArtifact{}, err
	}
	publicKey, err := utils.Ed25519PublicKeyBase64(s.cfg.Ed25519PrivateKeyB64)
	if err != nil {
		return models.OfflineLicenseArtifact{}, err
	}

	// consumir el nonce. El filtro de estado evita una doble emisión
	// concurrente sobre la misma fila.
	res, err := s.db.ExecContext(ctx,
		`UPDATE offline_requests SET status = ?, license_id = ?, tenant_id = ?, used_at = ?
		 WHERE nonce = ? AND status != ?`,
		models.OfflineRequestStatusUsed, lic.ID, lic.TenantID, utils.FormatDBTime(now),
		payload.Nonce, models.OfflineRequestStatusUsed,
	)
	if err != nil {
		return models.OfflineLicenseArtifact{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.OfflineLicenseArtifact{}, ErrNonceUsed
	}

	file := models.OfflineLicenseFile{
		ID:               utils.NewID(),
		OfflineRequestID: request.ID,
		LicenseID:        lic.ID,
		FileName:         fmt.Sprintf("license-%s-%s.json", lic.ID, payload.Nonce),
		PayloadJSON:      string(canonicalLic),
		Signature:        signature,
		PublicKey:        publicKey,
		CreatedAt:        utils.FormatDBTime(now),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO offline_license_files (id, offline_request_id, license_id, file_name, payload_json, signature, public_key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		file.ID, file.OfflineRequestID, file.LicenseID, file.FileName, file.PayloadJSON,
		file.Signature, file.PublicKey, file.CreatedAt,
	)
	if err != nil {
		return models.OfflineLicenseArtifact{}, err
	}

	return models.OfflineLicenseArtifact{
		ID:               file.ID,
		FileName:         file.FileName,
		Payload:          licPayload,
		SignatureEd25519: signature,
		PublicKeyEd25519: publicKey,
	}, nil
}

func (s *offlineService) ListRequests(ctx context.Context, limit int) ([]models.OfflineRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, nonce, product_id, tenant_id, license_id, payload_json, payload_hash, status, used_at, created_at
		 FROM offline_requests ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.OfflineRequest, 0)
	for rows.Next() {
		var r models.OfflineRequest
		if err := rows.Scan(&r.ID, &r.Nonce, &r.ProductID, &r.TenantID, &r.LicenseID,
			&r.PayloadJSON, &r.PayloadHash, &r.Status, &r.UsedAt, &r.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *offlineService) ListLicenseFiles(ctx context.Context, licenseID string, limit int) ([]models.OfflineLicenseFile, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	query := `SELECT id, offline_request_id, license_id, file_name, payload_json, signature, public_key, created_at
		 FROM offline_license_files`
	args := []interface{}{}
	if licenseID != "" {
		query += ` WHERE license_id = ?`
		args = append(args, licenseID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]models.OfflineLicenseFile, 0)
	for rows.Next() {
		var f models.OfflineLicenseFile
		if err := rows.Scan(&f.ID, &f.OfflineRequestID, &f.LicenseID, &f.FileName,
			&f.PayloadJSON, &f.Signature, &f.PublicKey, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// GetArtifact reconstruye el artefacto descargable desde la fila inmutable.
func (s *offlineService) GetArtifact(ctx context.Context, fileID string) (models.OfflineLicenseArtifact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, offline_request_id, license_id, file_name, payload_json, signature, public_key, created_at
		 FROM offline_license_files WHERE id = ?`, fileID)

	var f models.OfflineLicenseFile
	err := row.Scan(&f.ID, &f.OfflineRequestID, &f.LicenseID, &f.FileName,
		&f.PayloadJSON, &f.Signature, &f.PublicKey, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.OfflineLicenseArtifact{}, NewServiceError(http.StatusNotFound, models.AttemptError,
			"Archivo no encontrado", "")
	}
	if err != nil {
		return models.OfflineLicenseArtifact{}, err
	}

	var payload models.OfflineLicensePayload
	if err := json.Unmarshal([]byte(f.PayloadJSON), &payload); err != nil {
		return models.OfflineLicenseArtifact{}, err
	}

	return models.OfflineLicenseArtifact{
		ID:               f.ID,
		FileName:         f.FileName,
		Payload:          payload,
		SignatureEd25519: f.Signature,
		PublicKeyEd25519: f.PublicKey,
	}, nil
}

func (s *offlineService) PublicKey() (string, error) {
	return utils.Ed25519PublicKeyBase64(s.cfg.Ed25519PrivateKeyB64)
}
