package services

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"fulltechlicense/models"
	"fulltechlicense/utils"
)

const deviceColumns = `id, license_id, device_id_hash, app_version, activated_at, last_seen_at, revoked_at`

// DeviceService lleva la contabilidad de activaciones por dispositivo:
// max_devices acota los dispositivos activos concurrentes y
// max_activations el total histórico de filas creadas. Un dispositivo ya
// conocido siempre puede reactivarse, incluso en el tope (ya contó contra
// el límite al darse de alta).
type DeviceService interface {
	Admit(ctx context.Context, lic models.License, deviceIDHash, appVersion string, now time.Time) error
	Find(ctx context.Context, licenseID, deviceIDHash string) (models.DeviceActivation, error)
	Touch(ctx context.Context, licenseID, deviceIDHash, appVersion string, now time.Time) error
	ListByLicense(ctx context.Context, licenseID string) ([]models.DeviceActivation, error)
	Revoke(ctx context.Context, licenseID, deviceIDHash string) error
	Reactivate(ctx context.Context, licenseID, deviceIDHash string) error
	CountActive(ctx context.Context, licenseID string) (int, error)
	CountTotal(ctx context.Context, licenseID string) (int, error)
}

type deviceService struct {
	db SQLExecutor
}

// NewDeviceService crea la implementación sobre un SQLExecutor.
func NewDeviceService(db SQLExecutor) DeviceService {
	return &deviceService{db: db}
}

// ErrDeviceNotActive rechazo de revalidación sin fila activa.
var ErrDeviceNotActive = NewServiceError(http.StatusForbidden, models.AttemptError, "Dispositivo no activo", "")

func scanDevice(row rowScanner) (models.DeviceActivation, error) {
	var (
		dev       models.DeviceActivation
		revokedAt sql.NullString
	)
	err := row.Scan(&dev.ID, &dev.LicenseID, &dev.DeviceIDHash, &dev.AppVersion,
		&dev.ActivatedAt, &dev.LastSeenAt, &revokedAt)
	if err != nil {
		return models.DeviceActivation{}, err
	}
	if revokedAt.Valid && revokedAt.String != "" {
		dev.RevokedAt = &revokedAt.String
	}
	return dev, nil
}

func (s *deviceService) Find(ctx context.Context, licenseID, deviceIDHash string) (models.DeviceActivation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM device_activations WHERE license_id = ? AND device_id_hash = ?`,
		licenseID, deviceIDHash,
	)
	return scanDevice(row)
}

func (s *deviceService) CountActive(ctx context.Context, licenseID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM device_activations WHERE license_id = ? AND revoked_at IS NULL`,
		licenseID,
	).Scan(&n)
	return n, err
}

func (s *deviceService) CountTotal(ctx context.Context, licenseID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM device_activations WHERE license_id = ?`,
		licenseID,
	).Scan(&n)
	return n, err
}

// Admit aplica la admisión de dispositivos: cuenta antes de escribir.
// La ventana entre conteo y upsert se acepta como tope blando (el índice
// único evita filas duplicadas y las llamadas secuenciales nunca superan
// el límite); ver DESIGN.md.
func (s *deviceService) Admit(ctx context.Context, lic models.License, deviceIDHash, appVersion string, now time.Time) error {
	existing, err := s.Find(ctx, lic.ID, deviceIDHash)
	isNewDevice := err == sql.ErrNoRows
	if err != nil && !isNewDevice {
		return err
	}

	if isNewDevice {
		activeCount, err := s.CountActive(ctx, lic.ID)
		if err != nil {
			return err
		}
		if activeCount >= lic.MaxDevices {
			return NewServiceError(http.StatusForbidden, models.AttemptDeviceLimit,
				"Límite de dispositivos alcanzado", "")
		}

		totalCount, err := s.CountTotal(ctx, lic.ID)
		if err != nil {
			return err
		}
		if totalCount >= lic.MaxActivations {
			return NewServiceError(http.StatusForbidden, models.AttemptDeviceLimit,
				"Límite de activaciones alcanzado", "")
		}

		nowStr := utils.FormatDBTime(now)
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO device_activations (id, license_id, device_id_hash, app_version, activated_at, last_seen_at, revoked_at)
			VALUES (?, ?, ?, ?, ?, ?, NULL)`,
			utils.NewID(), lic.ID, deviceIDHash, appVersion, nowStr, nowStr,
		)
		return err
	}

	// Dispositivo conocido: sin chequeo de límite, y la reactivación
	// limpia una revocación previa.
	_, err = s.db.ExecContext(ctx, `
		UPDATE device_activations SET app_version = ?, last_seen_at = ?, revoked_at = NULL WHERE id = ?`,
		appVersion, utils.FormatDBTime(now), existing.ID,
	)
	return err
}

func (s *deviceService) Touch(ctx context.Context, licenseID, deviceIDHash, appVersion string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE device_activations SET last_seen_at = ?, app_version = ?
		WHERE license_id = ? AND device_id_hash = ?`,
		utils.FormatDBTime(now), appVersion, licenseID, deviceIDHash,
	)
	return err
}

func (s *deviceService) ListByLicense(ctx context.Context, licenseID string) ([]models.DeviceActivation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+deviceColumns+` FROM device_activations WHERE license_id = ? ORDER BY activated_at ASC`,
		licenseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devices := make([]models.DeviceActivation, 0)
	for rows.Next() {
		dev, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, dev)
	}
	return devices, rows.Err()
}

// Revoke marca el dispositivo como revocado (soft): la fila se conserva
// para el conteo histórico de max_activations.
func (s *deviceService) Revoke(ctx context.Context, licenseID, deviceIDHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE device_activations SET revoked_at = ? WHERE license_id = ? AND device_id_hash = ? AND revoked_at IS NULL`,
		utils.FormatDBTime(utils.NowUTC()), licenseID, deviceIDHash,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDeviceNotActive
	}
	return nil
}

func (s *deviceService) Reactivate(ctx context.Context, licenseID, deviceIDHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE device_activations SET revoked_at = NULL, last_seen_at = ? WHERE license_id = ? AND device_id_hash = ?`,
		utils.FormatDBTime(utils.NowUTC()), licenseID, deviceIDHash,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NewServiceError(http.StatusNotFound, models.AttemptError, "Dispositivo no encontrado", "")
	}
	return nil
}
