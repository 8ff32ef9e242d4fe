package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fulltechlicense/models"
	"fulltechlicense/utils"
)

const licenseColumns = `id, tenant_id, product_id, license_key, type, plan_type, status,
	starts_at, expires_at, max_devices, max_activations, offline_allowed, revalidate_days,
	allowed_version_min, allowed_version_max, modules_json, features_json, notes, created_at, updated_at`

// LicenseFilter filtros del listado administrativo.
type LicenseFilter struct {
	Status    string
	ProductID string
	Query     string // busca en license_key
	Limit     int
}

// LicenseService es el registro autoritativo de licencias: búsqueda,
// transiciones de estado y renovación. La detección de expiración es
// perezosa: cualquier lectura que observe expires_at < now con estado
// ACTIVE voltea el estado a EXPIRED antes de decidir.
type LicenseService interface {
	FindByKeyAndProduct(ctx context.Context, key, productID string) (models.License, error)
	FindByID(ctx context.Context, id string) (models.License, error)
	EnsureActive(ctx context.Context, lic *models.License, now time.Time) error
	Suspend(ctx context.Context, id string) (models.License, error)
	Resume(ctx context.Context, id string) (models.License, error)
	Revoke(ctx context.Context, id string) (models.License, error)
	Renew(ctx context.Context, id string, addDays int) (models.License, error)
	Create(ctx context.Context, req models.CreateLicenseRequest, productSlug string) (models.License, error)
	Update(ctx context.Context, id string, req models.UpdateLicenseRequest) (models.License, error)
	List(ctx context.Context, filter LicenseFilter) ([]models.License, error)
}

type licenseService struct {
	db SQLExecutor
}

// NewLicenseService crea la implementación sobre un SQLExecutor.
func NewLicenseService(db SQLExecutor) LicenseService {
	return &licenseService{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLicense(row rowScanner) (models.License, error) {
	var (
		lic            models.License
		expiresAt      sql.NullString
		revalidateDays sql.NullInt64
		versionMin     sql.NullString
		versionMax     sql.NullString
		notes          sql.NullString
		offlineAllowed int
		modulesJSON    string
		featuresJSON   string
	)

	err := row.Scan(
		&lic.ID, &lic.TenantID, &lic.ProductID, &lic.Key, &lic.Type, &lic.PlanType, &lic.Status,
		&lic.StartsAt, &expiresAt, &lic.MaxDevices, &lic.MaxActivations, &offlineAllowed, &revalidateDays,
		&versionMin, &versionMax, &modulesJSON, &featuresJSON, &notes, &lic.CreatedAt, &lic.UpdatedAt,
	)
	if err != nil {
		return models.License{}, err
	}

	lic.OfflineAllowed = offlineAllowed != 0
	if expiresAt.Valid && expiresAt.String != "" {
		lic.ExpiresAt = &expiresAt.String
	}
	if revalidateDays.Valid {
		days := int(revalidateDays.Int64)
		lic.RevalidateDays = &days
	}
	if versionMin.Valid && versionMin.String != "" {
		lic.AllowedVersionMin = &versionMin.String
	}
	if versionMax.Valid && versionMax.String != "" {
		lic.AllowedVersionMax = &versionMax.String
	}
	if notes.Valid {
		lic.Notes = notes.String
	}

	if err := json.Unmarshal([]byte(modulesJSON), &lic.Modules); err != nil {
		lic.Modules = map[string]bool{}
	}
	if err := json.Unmarshal([]byte(featuresJSON), &lic.Features); err != nil {
		lic.Features = map[string]interface{}{}
	}
	return lic, nil
}

func marshalEntitlements(modules map[string]bool, features map[string]interface{}) (string, string) {
	if modules == nil {
		modules = map[string]bool{}
	}
	if features == nil {
		features = map[string]interface{}{}
	}
	m, _ := json.Marshal(modules)
	f, _ := json.Marshal(features)
	return string(m), string(f)
}

func (s *licenseService) FindByKeyAndProduct(ctx context.Context, key, productID string) (models.License, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+licenseColumns+` FROM licenses WHERE license_key = ? AND product_id = ?`,
		key, productID,
	)
	lic, err := scanLicense(row)
	if err == sql.ErrNoRows {
		return models.License{}, ErrLicenseNotFound
	}
	return lic, err
}

func (s *licenseService) FindByID(ctx context.Context, id string) (models.License, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+licenseColumns+` FROM licenses WHERE id = ?`, id)
	lic, err := scanLicense(row)
	if err == sql.ErrNoRows {
		return models.License{}, ErrLicenseNotFound
	}
	return lic, err
}

// EnsureActive valida estado y expiración. Si observa una licencia ACTIVE
// ya vencida la voltea a EXPIRED (idempotente: la segunda lectura ya no
// está ACTIVE y devuelve el motivo sin más efectos).
func (s *licenseService) EnsureActive(ctx context.Context, lic *models.License, now time.Time) error {
	if lic.Status == models.LicenseStatusActive && lic.IsExpired(now) {
		_, err := s.db.ExecContext(ctx,
			`UPDATE licenses SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			models.LicenseStatusExpired, utils.FormatDBTime(now), lic.ID, models.LicenseStatusActive,
		)
		if err != nil {
			return err
		}
		lic.Status = models.LicenseStatusExpired
		return ErrLicenseExpired
	}

	if lic.Status != models.LicenseStatusActive {
		return errLicenseNotActive(lic.Status)
	}
	return nil
}

func (s *licenseService) setStatus(ctx context.Context, id, status string) (models.License, error) {
	lic, err := s.FindByID(ctx, id)
	if err != nil {
		return models.License{}, err
	}

	// REVOKED es terminal; SUSPENDED solo alcanzable desde ACTIVE.
	if lic.Status == models.LicenseStatusRevoked {
		return models.License{}, NewServiceError(http.StatusConflict, models.AttemptRevoked,
			"Licencia revocada", "Estado: "+lic.Status)
	}
	if status == models.LicenseStatusSuspended && lic.Status != models.LicenseStatusActive {
		return models.License{}, NewServiceError(http.StatusConflict, models.AttemptError,
			"Transición de estado no permitida", fmt.Sprintf("%s → %s", lic.Status, status))
	}
	if status == models.LicenseStatusActive && lic.Status != models.LicenseStatusSuspended {
		return models.License{}, NewServiceError(http.StatusConflict, models.AttemptError,
			"Transición de estado no permitida", fmt.Sprintf("%s → %s", lic.Status, status))
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE licenses SET status = ?, updated_at = ? WHERE id = ?`,
		status, utils.FormatDBTime(utils.NowUTC()), id,
	)
	if err != nil {
		return models.License{}, err
	}
	lic.Status = status
	return lic, nil
}

func (s *licenseService) Suspend(ctx context.Context, id string) (models.License, error) {
	return s.setStatus(ctx, id, models.LicenseStatusSuspended)
}

func (s *licenseService) Resume(ctx context.Context, id string) (models.License, error) {
	return s.setStatus(ctx, id, models.LicenseStatusActive)
}

func (s *licenseService) Revoke(ctx context.Context, id string) (models.License, error) {
	lic, err := s.FindByID(ctx, id)
	if err != nil {
		return models.License{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE licenses SET status = ?, updated_at = ? WHERE id = ?`,
		models.LicenseStatusRevoked, utils.FormatDBTime(utils.NowUTC()), id,
	)
	if err != nil {
		return models.License{}, err
	}
	lic.Status = models.LicenseStatusRevoked
	return lic, nil
}

// Renew extiende la expiración: base = max(now, expiración actual), de modo
// que renovar una licencia ya vencida arranca el nuevo período desde hoy y
// no desde la fecha vieja. Además reactiva la licencia.
func (s *licenseService) Renew(ctx context.Context, id string, addDays int) (models.License, error) {
	lic, err := s.FindByID(ctx, id)
	if err != nil {
		return models.License{}, err
	}
	if lic.Status == models.LicenseStatusRevoked {
		return models.License{}, NewServiceError(http.StatusConflict, models.AttemptRevoked,
			"Licencia revocada", "Estado: "+lic.Status)
	}

	now := utils.NowUTC()
	base := now
	if exp := lic.ExpiresAtTime(); exp != nil && exp.After(now) {
		base = *exp
	}
	newExpiry := utils.FormatDBTime(base.AddDate(0, 0, addDays))

	_, err = s.db.ExecContext(ctx,
		`UPDATE licenses SET expires_at = ?, status = ?, updated_at = ? WHERE id = ?`,
		newExpiry, models.LicenseStatusActive, utils.FormatDBTime(now), id,
	)
	if err != nil {
		return models.License{}, err
	}

	lic.ExpiresAt = &newExpiry
	lic.Status = models.LicenseStatusActive
	return lic, nil
}

func (s *licenseService) Create(ctx context.Context, req models.CreateLicenseRequest, productSlug string) (models.License, error) {
	key, err := utils.GenerateLicenseKey(productSlug, req.Type)
	if err != nil {
		return models.License{}, err
	}

	now := utils.FormatDBTime(utils.NowUTC())
	modulesJSON, featuresJSON := marshalEntitlements(req.Modules, req.Features)

	lic := models.License{
		ID:                utils.NewID(),
		TenantID:          req.TenantID,
		ProductID:         req.ProductID,
		Key:               key,
		Type:              req.Type,
		PlanType:          req.PlanType,
		Status:            models.LicenseStatusActive,
		StartsAt:          now,
		ExpiresAt:         req.ExpiresAt,
		MaxDevices:        req.MaxDevices,
		MaxActivations:    req.MaxActivations,
		OfflineAllowed:    req.OfflineAllowed,
		RevalidateDays:    req.RevalidateDays,
		AllowedVersionMin: req.AllowedVersionMin,
		AllowedVersionMax: req.AllowedVersionMax,
		Modules:           req.Modules,
		Features:          req.Features,
		Notes:             req.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO licenses (`+licenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lic.ID, lic.TenantID, lic.ProductID, lic.Key, lic.Type, lic.PlanType, lic.Status,
		lic.StartsAt, nullableString(lic.ExpiresAt), lic.MaxDevices, lic.MaxActivations,
		boolToInt(lic.OfflineAllowed), nullableInt(lic.RevalidateDays),
		nullableString(lic.AllowedVersionMin), nullableString(lic.AllowedVersionMax),
		modulesJSON, featuresJSON, lic.Notes, now, now,
	)
	if err != nil {
		return models.License{}, err
	}
	if lic.Modules == nil {
		lic.Modules = map[string]bool{}
	}
	if lic.Features == nil {
		lic.Features = map[string]interface{}{}
	}
	return lic, nil
}

func (s *licenseService) Update(ctx context.Context, id string, req models.UpdateLicenseRequest) (models.License, error) {
	lic, err := s.FindByID(ctx, id)
	if err != nil {
		return models.License{}, err
	}

	if req.MaxDevices != nil {
		lic.MaxDevices = *req.MaxDevices
	}
	if req.MaxActivations != nil {
		lic.MaxActivations = *req.MaxActivations
	}
	if req.OfflineAllowed != nil {
		lic.OfflineAllowed = *req.OfflineAllowed
	}
	if req.RevalidateDays != nil {
		lic.RevalidateDays = req.RevalidateDays
	}
	if req.AllowedVersionMin != nil {
		lic.AllowedVersionMin = req.AllowedVersionMin
	}
	if req.AllowedVersionMax != nil {
		lic.AllowedVersionMax = req.AllowedVersionMax
	}
	if req.Modules != nil {
		lic.Modules = req.Modules
	}
	if req.Features != nil {
		lic.Features = req.Features
	}
	if req.Notes != nil {
		lic.Notes = *req.Notes
	}

	now := utils.FormatDBTime(utils.NowUTC())
	modulesJSON, featuresJSON := marshalEntitlements(lic.Modules, lic.Features)

	_, err = s.db.ExecContext(ctx, `
		UPDATE licenses SET max_devices = ?, max_activations = ?, offline_allowed = ?,
			revalidate_days = ?, allowed_version_min = ?, allowed_version_max = ?,
			modules_json = ?, features_json = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		lic.MaxDevices, lic.MaxActivations, boolToInt(lic.OfflineAllowed),
		nullableInt(lic.RevalidateDays), nullableString(lic.AllowedVersionMin),
		nullableString(lic.AllowedVersionMax), modulesJSON, featuresJSON, lic.Notes, now, id,
	)
	if err != nil {
		return models.License{}, err
	}
	lic.UpdatedAt = now
	return lic, nil
}

func (s *licenseService) List(ctx context.Context, filter LicenseFilter) ([]models.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE 1=1`
	args := make([]any, 0)

	if strings.TrimSpace(filter.Status) != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if strings.TrimSpace(filter.ProductID) != "" {
		query += " AND product_id = ?"
		args = append(args, filter.ProductID)
	}
	if strings.TrimSpace(filter.Query) != "" {
		query += " AND license_key LIKE ?"
		args = append(args, "%"+strings.ToUpper(strings.TrimSpace(filter.Query))+"%")
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	licenses := make([]models.License, 0)
	for rows.Next() {
		lic, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, lic)
	}
	return licenses, rows.Err()
}

func nullableString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func nullableInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
