package services

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"fulltechlicense/logger"
	"fulltechlicense/models"
	"fulltechlicense/utils"
)

// ActivationConfig opciones del protocolo de activación.
type ActivationConfig struct {
	TokenSecret        string // secreto HS256 de los activation tokens
	DefaultOfflineDays int    // fallback cuando ni licencia ni settings definen la ventana
}

// ActivationService orquesta la activación online y la revalidación:
// cadena de validación ordenada con corte en el primer fallo, admisión de
// dispositivo y emisión del token firmado. Cada fallo se devuelve al
// cliente y se registra (best-effort) en el log de intentos.
type ActivationService struct {
	licenses LicenseService
	devices  DeviceService
	settings SettingsService
	attempts AttemptService
	cfg      ActivationConfig
}

// NewActivationService cablea el protocolo con sus dependencias.
func NewActivationService(licenses LicenseService, devices DeviceService, settings SettingsService, attempts AttemptService, cfg ActivationConfig) *ActivationService {
	if cfg.DefaultOfflineDays <= 0 {
		cfg.DefaultOfflineDays = 7
	}
	return &ActivationService{
		licenses: licenses,
		devices:  devices,
		settings: settings,
		attempts: attempts,
		cfg:      cfg,
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *ActivationService) logAttempt(ctx context.Context, productID, result, reason, licenseID, licenseKey, deviceIDHash, ip string) {
	s.attempts.Log(ctx, models.ActivationAttempt{
		ProductID:    productID,
		LicenseID:    strPtr(licenseID),
		LicenseKey:   strPtr(licenseKey),
		DeviceIDHash: strPtr(deviceIDHash),
		IP:           strPtr(ip),
		Result:       result,
		Reason:       strPtr(reason),
	})
}

// ttlAndExpiry calcula la ventana de revalidación (override de la licencia
// o setting global, default 7) y la expiración del token (expiración de la
// licencia si existe, si no now+ttl).
func (s *ActivationService) ttlAndExpiry(ctx context.Context, lic models.License, now time.Time) (int, time.Time) {
	ttlDays := s.settings.RevalidationDays(ctx, s.cfg.DefaultOfflineDays)
	if lic.RevalidateDays != nil && *lic.RevalidateDays > 0 {
		ttlDays = *lic.RevalidateDays
	}

	expiresAt := now.AddDate(0, 0, ttlDays)
	if exp := lic.ExpiresAtTime(); exp != nil {
		expiresAt = *exp
	}
	return ttlDays, expiresAt
}

func (s *ActivationService) issueToken(lic models.License, deviceIDHash string, ttlDays int, expiresAt, now time.Time) (models.ActivationResult, error) {
	claims := utils.ActivationClaims{
		LicenseID:     lic.ID,
		TenantID:      lic.TenantID,
		ProductID:     lic.ProductID,
		DeviceIDHash:  deviceIDHash,
		Modules:       lic.Modules,
		Features:      lic.Features,
		LicenseType:   lic.Type,
		LicenseStatus: lic.Status,
		Expiry:        expiresAt.UTC().Format(time.RFC3339),
		IssuedAtISO:   now.UTC().Format(time.RFC3339),
		OfflineDays:   ttlDays,
	}

	token, err := utils.SignActivationToken(s.cfg.TokenSecret, claims, time.Duration(ttlDays)*24*time.Hour)
	if err != nil {
		return models.ActivationResult{}, err
	}

	return models.ActivationResult{
		ActivationToken: token,
		OfflineDays:     ttlDays,
		Expiry:          expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// checkVersionWindow aplica los límites de versión de la licencia. Las
// versiones no parseables satisfacen ambos límites (fail-open documentado).
func checkVersionWindow(lic models.License, appVersion string) *ServiceError {
	if lic.AllowedVersionMin != nil && !utils.SemverGte(appVersion, *lic.AllowedVersionMin) {
		return NewServiceError(http.StatusForbidden, models.AttemptVersionBlocked,
			"Versión no permitida", "Mínima: "+*lic.AllowedVersionMin)
	}
	if lic.AllowedVersionMax != nil && !utils.SemverLte(appVersion, *lic.AllowedVersionMax) {
		return NewServiceError(http.StatusForbidden, models.AttemptVersionBlocked,
			"Versión no permitida", "Máxima: "+*lic.AllowedVersionMax)
	}
	return nil
}

// ActivateOnline ejecuta la cadena de activación: licencia existe →
// estado ACTIVE (con volcado perezoso a EXPIRED) → ventana de versión →
// admisión de dispositivo → token.
func (s *ActivationService) ActivateOnline(ctx context.Context, req models.OnlineActivationRequest, ip string) (models.ActivationResult, error) {
	now := utils.NowUTC()
	deviceIDHash := utils.HashDeviceFingerprint(req.DeviceFingerprint)

	lic, err := s.licenses.FindByKeyAndProduct(ctx, req.LicenseKey, req.ProductID)
	if err != nil {
		if se, ok := AsServiceError(err); ok {
			s.logAttempt(ctx, req.ProductID, se.Result, se.Title, "", req.LicenseKey, deviceIDHash, ip)
			return models.ActivationResult{}, se
		}
		return models.ActivationResult{}, s.internal(ctx, req.ProductID, err, req.LicenseKey, deviceIDHash, ip)
	}

	if err := s.licenses.EnsureActive(ctx, &lic, now); err != nil {
		if se, ok := AsServiceError(err); ok {
			s.logAttempt(ctx, req.ProductID, se.Result, "Estado: "+lic.Status, lic.ID, req.LicenseKey, deviceIDHash, ip)
			return models.ActivationResult{}, se
		}
		return models.ActivationResult{}, s.internal(ctx, req.ProductID, err, req.LicenseKey, deviceIDHash, ip)
	}

	if se := checkVersionWindow(lic, req.AppVersion); se != nil {
		s.logAttempt(ctx, req.ProductID, se.Result, se.Detail, lic.ID, req.LicenseKey, deviceIDHash, ip)
		return models.ActivationResult{}, se
	}

	if err := s.devices.Admit(ctx, lic, deviceIDHash, req.AppVersion, now); err != nil {
		if se, ok := AsServiceError(err); ok {
			s.logAttempt(ctx, req.ProductID, se.Result, se.Title, lic.ID, req.LicenseKey, deviceIDHash, ip)
			return models.ActivationResult{}, se
		}
		return models.ActivationResult{}, s.internal(ctx, req.ProductID, err, req.LicenseKey, deviceIDHash, ip)
	}

	ttlDays, expiresAt := s.ttlAndExpiry(ctx, lic, now)
	result, err := s.issueToken(lic, deviceIDHash, ttlDays, expiresAt, now)
	if err != nil {
		return models.ActivationResult{}, s.internal(ctx, req.ProductID, err, req.LicenseKey, deviceIDHash, ip)
	}

	s.logAttempt(ctx, req.ProductID, models.AttemptSuccess, "", lic.ID, req.LicenseKey, deviceIDHash, ip)
	return result, nil
}

// Revalidate reemite un token para un dispositivo ya activado. El token
// previo solo aporta identidad (licenseId/productId); el estado de
// autorización se relee de la licencia actual. No se repite la admisión de
// límites: se exige una fila de dispositivo existente y no revocada.
func (s *ActivationService) Revalidate(ctx context.Context, req models.RevalidationRequest, ip string) (models.ActivationResult, error) {
	now := utils.NowUTC()
	deviceIDHash := utils.HashDeviceFingerprint(req.DeviceFingerprint)

	claims, err := utils.VerifyActivationToken(s.cfg.TokenSecret, req.ActivationToken)
	if err != nil {
		return models.ActivationResult{}, NewServiceError(http.StatusUnauthorized,
			models.AttemptError, "Activation token inválido", "")
	}

	lic, err := s.licenses.FindByID(ctx, claims.LicenseID)
	if err != nil {
		if se, ok := AsServiceError(err); ok {
			s.logAttempt(ctx, claims.ProductID, se.Result, "Licencia no encontrada (revalidate)", claims.LicenseID, "", deviceIDHash, ip)
			return models.ActivationResult{}, se
		}
		return models.ActivationResult{}, s.internal(ctx, claims.ProductID, err, "", deviceIDHash, ip)
	}

	if err := s.licenses.EnsureActive(ctx, &lic, now); err != nil {
		if se, ok := AsServiceError(err); ok {
			s.logAttempt(ctx, lic.ProductID, se.Result, "Estado: "+lic.Status, lic.ID, lic.Key, deviceIDHash, ip)
			return models.ActivationResult{}, se
		}
		return models.ActivationResult{}, s.internal(ctx, lic.ProductID, err, lic.Key, deviceIDHash, ip)
	}

	device, err := s.devices.Find(ctx, lic.ID, deviceIDHash)
	if err != nil && err != sql.ErrNoRows {
		return models.ActivationResult{}, s.internal(ctx, lic.ProductID, err, lic.Key, deviceIDHash, ip)
	}
	if err == sql.ErrNoRows || !device.IsActive() {
		s.logAttempt(ctx, lic.ProductID, models.AttemptError, "Dispositivo no activo (revalidate)", lic.ID, lic.Key, deviceIDHash, ip)
		return models.ActivationResult{}, ErrDeviceNotActive
	}

	if err := s.devices.Touch(ctx, lic.ID, deviceIDHash, req.AppVersion, now); err != nil {
		return models.ActivationResult{}, s.internal(ctx, lic.ProductID, err, lic.Key, deviceIDHash, ip)
	}

	ttlDays, expiresAt := s.ttlAndExpiry(ctx, lic, now)
	result, err := s.issueToken(lic, deviceIDHash, ttlDays, expiresAt, now)
	if err != nil {
		return models.ActivationResult{}, s.internal(ctx, lic.ProductID, err, lic.Key, deviceIDHash, ip)
	}

	s.logAttempt(ctx, lic.ProductID, models.AttemptSuccess, "", lic.ID, lic.Key, deviceIDHash, ip)
	return result, nil
}

// internal registra un error inesperado y lo colapsa en la respuesta
// genérica de servidor, sin filtrar detalle interno al cliente.
func (s *ActivationService) internal(ctx context.Context, productID string, err error, licenseKey, deviceIDHash, ip string) error {
	logger.WithFields(map[string]interface{}{
		"product_id": productID,
		"error":      err.Error(),
	}).Error("Activation protocol internal error")

	s.logAttempt(ctx, productID, models.AttemptError, err.Error(), "", licenseKey, deviceIDHash, ip)
	return ErrServer
}
