package services

import (
	"context"
	"database/sql"
	"fmt"

	"fulltechlicense/logger"
	"fulltechlicense/models"
	"fulltechlicense/utils"
)

// AttemptService es el sumidero de auditoría de intentos de activación.
// Log es fire-and-forget: un fallo al escribir jamás altera la respuesta
// del protocolo.
type AttemptService interface {
	Log(ctx context.Context, attempt models.ActivationAttempt)
	List(ctx context.Context, licenseID string, limit int) ([]models.ActivationAttempt, error)
}

type attemptService struct {
	db SQLExecutor
}

// NewAttemptService crea la implementación sobre un SQLExecutor.
func NewAttemptService(db SQLExecutor) AttemptService {
	return &attemptService{db: db}
}

func (s *attemptService) Log(ctx context.Context, attempt models.ActivationAttempt) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activation_attempts (id, product_id, license_id, license_key, device_id_hash, ip, result, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		utils.NewID(), attempt.ProductID, nullableString(attempt.LicenseID),
		nullableString(attempt.LicenseKey), nullableString(attempt.DeviceIDHash),
		nullableString(attempt.IP), attempt.Result, nullableString(attempt.Reason),
		utils.FormatDBTime(utils.NowUTC()),
	)
	if err != nil {
		logger.Error("Failed to log activation attempt: %v", err)
	}
}

func (s *attemptService) List(ctx context.Context, licenseID string, limit int) ([]models.ActivationAttempt, error) {
	query := `SELECT id, product_id, license_id, license_key, device_id_hash, ip, result, reason, created_at
		FROM activation_attempts WHERE 1=1`
	args := make([]any, 0)

	if licenseID != "" {
		query += " AND license_id = ?"
		args = append(args, licenseID)
	}
	query += " ORDER BY created_at DESC"
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]models.ActivationAttempt, 0)
	for rows.Next() {
		var (
			a            models.ActivationAttempt
			licenseIDCol sql.NullString
			licenseKey   sql.NullString
			deviceHash   sql.NullString
			ip           sql.NullString
			reason       sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.ProductID, &licenseIDCol, &licenseKey, &deviceHash, &ip, &a.Result, &reason, &a.CreatedAt); err != nil {
			return nil, err
		}
		if licenseIDCol.Valid {
			a.LicenseID = &licenseIDCol.String
		}
		if licenseKey.Valid {
			a.LicenseKey = &licenseKey.String
		}
		if deviceHash.Valid {
			a.DeviceIDHash = &deviceHash.String
		}
		if ip.Valid {
			a.IP = &ip.String
		}
		if reason.Valid {
			a.Reason = &reason.String
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
