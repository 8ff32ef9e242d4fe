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

	"fulltechlicense/logger"
	"fulltechlicense/models"
	"fulltechlicense/utils"
)

const voucherColumns = `id, code, status, product_id, license_type, plan_type, license_duration_days,
	max_devices, max_activations, offline_allowed, revalidate_days, allowed_version_min,
	allowed_version_max, modules_json, features_json, notes, batch_name, expires_at,
	tenant_id, license_id, used_by_email, used_at, created_at`

// Errores del flujo de vouchers.
var ErrVoucherNotFound = NewServiceError(http.StatusNotFound, models.AttemptError,
	"Código no encontrado", "")

func errVoucherNotAvailable(status string) *ServiceError {
	return NewServiceError(http.StatusConflict, models.AttemptError,
		"Código no disponible", "Estado: "+status)
}

// VoucherFilter filtros del listado administrativo.
type VoucherFilter struct {
	Status    string
	ProductID string
	BatchName string
	Limit     int
}

// VoucherService maneja lotes de códigos canjeables. El canje es
// transaccional: voucher consumido, tenant resuelto y licencia creada en un
// todo-o-nada.
type VoucherService interface {
	CreateBatch(ctx context.Context, req models.VoucherBatchRequest) ([]models.Voucher, error)
	Cancel(ctx context.Context, id string) (models.Voucher, error)
	List(ctx context.Context, filter VoucherFilter) ([]models.Voucher, error)
	FindByID(ctx context.Context, id string) (models.Voucher, error)
	Redeem(ctx context.Context, req models.RedeemRequest) (models.RedeemResult, error)
}

type voucherService struct {
	db       SQLExecutor
	products ProductService
}

// NewVoucherService crea el servicio de vouchers.
func NewVoucherService(db SQLExecutor, products ProductService) VoucherService {
	return &voucherService{db: db, products: products}
}

func scanVoucher(row rowScanner) (models.Voucher, error) {
	var (
		v              models.Voucher
		offlineAllowed int
		modulesJSON    string
		featuresJSON   string
		notes          sql.NullString
	)

	err := row.Scan(
		&v.ID, &v.Code, &v.Status, &v.ProductID, &v.LicenseType, &v.PlanType, &v.LicenseDurationDays,
		&v.MaxDevices, &v.MaxActivations, &offlineAllowed, &v.RevalidateDays, &v.AllowedVersionMin,
		&v.AllowedVersionMax, &modulesJSON, &featuresJSON, &notes, &v.BatchName, &v.ExpiresAt,
		&v.TenantID, &v.LicenseID, &v.UsedByEmail, &v.UsedAt, &v.CreatedAt,
	)
	if err != nil {
		return models.Voucher{}, err
	}

	v.OfflineAllowed = offlineAllowed != 0
	if notes.Valid {
		v.Notes = notes.String
	}
	if err := json.Unmarshal([]byte(modulesJSON), &v.Modules); err != nil {
		v.Modules = map[string]bool{}
	}
	if err := json.Unmarshal([]byte(featuresJSON), &v.Features); err != nil {
		v.Features = map[string]interface{}{}
	}
	return v, nil
}

// CreateBatch genera count vouchers con la plantilla dada. Las colisiones de
// código se reintentan contra la restricción UNIQUE; con 32^12 combinaciones
// el reintento es anecdótico.
func (s *voucherService) CreateBatch(ctx context.Context, req models.VoucherBatchRequest) ([]models.Voucher, error) {
	if req.Count <= 0 || req.Count > 1000 {
		return nil, NewServiceError(http.StatusBadRequest, models.AttemptError,
			"Lote inválido", "count debe estar entre 1 y 1000")
	}
	if _, err := s.products.FindByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	offlineAllowed := true
	if req.OfflineAllowed != nil {
		offlineAllowed = *req.OfflineAllowed
	}
	maxDevices := req.MaxDevices
	if maxDevices <= 0 {
		maxDevices = 1
	}
	maxActivations := req.MaxActivations
	if maxActivations <= 0 {
		maxActivations = maxDevices
	}

	now := utils.FormatDBTime(utils.NowUTC())
	modulesJSON, featuresJSON := marshalEntitlements(req.Modules, req.Features)

	vouchers := make([]models.Voucher, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		v := models.Voucher{
			ID:                  utils.NewID(),
			Status:              models.VoucherStatusUnused,
			ProductID:           req.ProductID,
			LicenseType:         req.LicenseType,
			PlanType:            req.PlanType,
			LicenseDurationDays: req.LicenseDurationDays,
			MaxDevices:          maxDevices,
			MaxActivations:      maxActivations,
			OfflineAllowed:      offlineAllowed,
			RevalidateDays:      req.RevalidateDays,
			AllowedVersionMin:   req.AllowedVersionMin,
			AllowedVersionMax:   req.AllowedVersionMax,
			Modules:             req.Modules,
			Features:            req.Features,
			Notes:               req.Notes,
			BatchName:           req.BatchName,
			ExpiresAt:           req.ExpiresAt,
			CreatedAt:           now,
		}
		if v.Modules == nil {
			v.Modules = map[string]bool{}
		}
		if v.Features == nil {
			v.Features = map[string]interface{}{}
		}

		inserted := false
		for attempt := 0; attempt < 6 && !inserted; attempt++ {
			code, err := utils.GenerateVoucherCode()
			if err != nil {
				return nil, err
			}
			v.Code = code

			_, err = s.db.ExecContext(ctx, `
				INSERT INTO vouchers (`+voucherColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, NULL, NULL, ?)`,
				v.ID, v.Code, v.Status, v.ProductID, v.LicenseType, v.PlanType,
				nullableInt(v.LicenseDurationDays), v.MaxDevices, v.MaxActivations,
				boolToInt(v.OfflineAllowed), nullableInt(v.RevalidateDays),
				nullableString(v.AllowedVersionMin), nullableString(v.AllowedVersionMax),
				modulesJSON, featuresJSON, v.Notes, nullableString(v.BatchName),
				nullableString(v.ExpiresAt), v.CreatedAt,
			)
			if err == nil {
				inserted = true
				break
			}
			if !isUniqueViolation(err) {
				return nil, err
			}
			logger.Warn("Voucher code collision, retrying: %s", code)
		}
		if !inserted {
			return nil, fmt.Errorf("could not generate a unique voucher code after retries")
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, nil
}

// isUniqueViolation detecta violaciones de unicidad de sqlite y mysql sin
// acoplarse a los tipos de error de cada driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func (s *voucherService) FindByID(ctx context.Context, id string) (models.Voucher, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id = ?`, id)
	v, err := scanVoucher(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voucher{}, ErrVoucherNotFound
	}
	return v, err
}

// Cancel pasa un voucher UNUSED a CANCELLED. Cualquier otro estado es
// terminal y produce conflicto.
func (s *voucherService) Cancel(ctx context.Context, id string) (models.Voucher, error) {
	v, err := s.FindByID(ctx, id)
	if err != nil {
		return models.Voucher{}, err
	}
	if v.Status != models.VoucherStatusUnused {
		return models.Voucher{}, errVoucherNotAvailable(v.Status)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE vouchers SET status = ? WHERE id = ? AND status = ?`,
		models.VoucherStatusCancelled, id, models.VoucherStatusUnused,
	)
	if err != nil {
		return models.Voucher{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Voucher{}, errVoucherNotAvailable(v.Status)
	}
	v.Status = models.VoucherStatusCancelled
	return v, nil
}

func (s *voucherService) List(ctx context.Context, filter VoucherFilter) ([]models.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE 1=1`
	args := make([]any, 0)

	if strings.TrimSpace(filter.Status) != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if strings.TrimSpace(filter.ProductID) != "" {
		query += " AND product_id = ?"
		args = append(args, filter.ProductID)
	}
	if strings.TrimSpace(filter.BatchName) != "" {
		query += " AND batch_name = ?"
		args = append(args, filter.BatchName)
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

	vouchers := make([]models.Voucher, 0)
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, rows.Err()
}

// Redeem canjea un código: dentro de una transacción consume el voucher,
// resuelve el tenant por email (o lo crea) y emite la licencia según la
// plantilla. Si cualquier paso falla no queda nada a medias.
func (s *voucherService) Redeem(ctx context.Context, req models.RedeemRequest) (models.RedeemResult, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" || strings.TrimSpace(req.TradeName) == "" {
		return models.RedeemResult{}, NewServiceError(http.StatusBadRequest, models.AttemptError,
			"Canje inválido", "code y tradeName son obligatorios")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.RedeemResult{}, err
	}
	defer tx.Rollback()

	txExec := NewTxExecutor(tx)

	row := txExec.QueryRowContext(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE code = ?`, code)
	v, err := scanVoucher(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RedeemResult{}, ErrVoucherNotFound
	}
	if err != nil {
		return models.RedeemResult{}, err
	}

	now := utils.NowUTC()

	if v.Status == models.VoucherStatusUnused && v.ExpiresAt != nil {
		if exp, perr := utils.ParseDBTime(*v.ExpiresAt); perr == nil && exp.Before(now) {
			// caducidad perezosa, el scheduler hace lo mismo en lote
			if _, err := txExec.ExecContext(ctx,
				`UPDATE vouchers SET status = ? WHERE id = ? AND status = ?`,
				models.VoucherStatusExpired, v.ID, models.VoucherStatusUnused); err != nil {
				return models.RedeemResult{}, err
			}
			if err := tx.Commit(); err != nil {
				return models.RedeemResult{}, err
			}
			return models.RedeemResult{}, errVoucherNotAvailable(models.VoucherStatusExpired)
		}
	}
	if v.Status != models.VoucherStatusUnused {
		return models.RedeemResult{}, errVoucherNotAvailable(v.Status)
	}

	product, err := NewProductService(txExec).FindByID(ctx, v.ProductID)
	if err != nil {
		return models.RedeemResult{}, err
	}

	tenant, err := findOrCreateTenant(ctx, txExec, req, now)
	if err != nil {
		return models.RedeemResult{}, err
	}

	var expiresAt *string
	if v.LicenseDurationDays != nil && *v.LicenseDurationDays > 0 {
		e := utils.FormatDBTime(now.AddDate(0, 0, *v.LicenseDurationDays))
		expiresAt = &e
	}

	// las notas de la plantilla se copian a la licencia; la procedencia del
	// canje se añade sin pisarlas
	notes := "Canje de voucher " + code
	if v.Notes != "" {
		notes = v.Notes + " | " + notes
	}

	lic, err := NewLicenseService(txExec).Create(ctx, models.CreateLicenseRequest{
		TenantID:          tenant.ID,
		ProductID:         v.ProductID,
		Type:              v.LicenseType,
		PlanType:          v.PlanType,
		ExpiresAt:         expiresAt,
		MaxDevices:        v.MaxDevices,
		MaxActivations:    v.MaxActivations,
		OfflineAllowed:    v.OfflineAllowed,
		RevalidateDays:    v.RevalidateDays,
		AllowedVersionMin: v.AllowedVersionMin,
		AllowedVersionMax: v.AllowedVersionMax,
		Modules:           v.Modules,
		Features:          v.Features,
		Notes:             notes,
	}, product.Slug)
	if err != nil {
		return models.RedeemResult{}, err
	}

	// consumir el voucher con guarda de estado: un canje concurrente del
	// mismo código pierde aquí y la transacción entera se revierte.
	res, err := txExec.ExecContext(ctx,
		`UPDATE vouchers SET status = ?, tenant_id = ?, license_id = ?, used_by_email = ?, used_at = ?
		 WHERE id = ? AND status = ?`,
		models.VoucherStatusUsed, tenant.ID, lic.ID, nullableString(req.ContactEmail),
		utils.FormatDBTime(now), v.ID, models.VoucherStatusUnused,
	)
	if err != nil {
		return models.RedeemResult{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.RedeemResult{}, errVoucherNotAvailable(models.VoucherStatusUsed)
	}

	if err := tx.Commit(); err != nil {
		return models.RedeemResult{}, err
	}

	logger.WithFields(map[string]interface{}{
		"code":       code,
		"license_id": lic.ID,
		"tenant_id":  tenant.ID,
	}).Info("Voucher redeemed")

	return models.RedeemResult{
		Product: models.ProductRef{ID: product.ID, Name: product.Name, Slug: product.Slug},
		Tenant:  models.TenantRef{ID: tenant.ID, TradeName: tenant.TradeName, ContactEmail: tenant.ContactEmail},
		License: models.RedeemLicense{ID: lic.ID, Key: lic.Key, ExpiresAt: lic.ExpiresAt},
	}, nil
}

// findOrCreateTenant reutiliza el tenant cuyo contact_email coincide (sin
// distinguir mayúsculas); si no hay email o no existe, crea uno nuevo con el
// nombre comercial dado.
func findOrCreateTenant(ctx context.Context, db SQLExecutor, req models.RedeemRequest, now time.Time) (models.Tenant, error) {
	if req.ContactEmail != nil && strings.TrimSpace(*req.ContactEmail) != "" {
		email := strings.ToLower(strings.TrimSpace(*req.ContactEmail))
		row := db.QueryRowContext(ctx,
			`SELECT id, trade_name, legal_name, contact_email, contact_phone, status, created_at
			 FROM tenants WHERE LOWER(contact_email) = ?`, email)

		var t models.Tenant
		err := row.Scan(&t.ID, &t.TradeName, &t.LegalName, &t.ContactEmail, &t.ContactPhone, &t.Status, &t.CreatedAt)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.Tenant{}, err
		}
	}

	t := models.Tenant{
		ID:           utils.NewID(),
		TradeName:    strings.TrimSpace(req.TradeName),
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Status:       models.TenantStatusActive,
		CreatedAt:    utils.FormatDBTime(now),
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO tenants (id, trade_name, legal_name, contact_email, contact_phone, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TradeName, t.LegalName, nullableString(t.ContactEmail), nullableString(t.ContactPhone),
		t.Status, t.CreatedAt,
	)
	if err != nil {
		return models.Tenant{}, err
	}
	return t, nil
}
