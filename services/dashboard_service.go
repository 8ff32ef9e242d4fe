package services

import (
	"context"

	"fulltechlicense/models"
	"fulltechlicense/utils"
)

// DashboardSummary contadores del panel.
type DashboardSummary struct {
	ActiveLicenses   int `json:"active_licenses"`
	ExpiringSoon     int `json:"expiring_soon"` // ACTIVE con expiración en ≤30 días
	ActivationsToday int `json:"activations_today"`
	DemoLicenses     int `json:"demo_licenses"`
	FullLicenses     int `json:"full_licenses"`
	UnusedVouchers   int `json:"unused_vouchers"`
	DeviceCount      int `json:"device_count"`
}

// DashboardService agrega los contadores que muestra la portada del panel.
type DashboardService interface {
	Summary(ctx context.Context) (DashboardSummary, error)
}

type dashboardService struct {
	db SQLExecutor
}

// NewDashboardService crea el servicio del dashboard.
func NewDashboardService(db SQLExecutor) DashboardService {
	return &dashboardService{db: db}
}

func (s *dashboardService) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (s *dashboardService) Summary(ctx context.Context) (DashboardSummary, error) {
	now := utils.NowUTC()
	nowStr := utils.FormatDBTime(now)
	soonStr := utils.FormatDBTime(now.AddDate(0, 0, 30))
	todayStr := utils.FormatDBTime(utils.StartOfDay(now))

	var (
		summary DashboardSummary
		err     error
	)

	// los timestamps en texto UTC de ancho fijo ordenan lexicográficamente,
	// las comparaciones de rango funcionan como strings
	if summary.ActiveLicenses, err = s.count(ctx,
		`SELECT COUNT(*) FROM licenses WHERE status = ?`, models.LicenseStatusActive); err != nil {
		return DashboardSummary{}, err
	}
	if summary.ExpiringSoon, err = s.count(ctx,
		`SELECT COUNT(*) FROM licenses WHERE status = ? AND expires_at IS NOT NULL AND expires_at > ? AND expires_at <= ?`,
		models.LicenseStatusActive, nowStr, soonStr); err != nil {
		return DashboardSummary{}, err
	}
	if summary.ActivationsToday, err = s.count(ctx,
		`SELECT COUNT(*) FROM activation_attempts WHERE result = ? AND created_at >= ?`,
		models.AttemptSuccess, todayStr); err != nil {
		return DashboardSummary{}, err
	}
	if summary.DemoLicenses, err = s.count(ctx,
		`SELECT COUNT(*) FROM licenses WHERE type = ?`, models.LicenseTypeDemo); err != nil {
		return DashboardSummary{}, err
	}
	if summary.FullLicenses, err = s.count(ctx,
		`SELECT COUNT(*) FROM licenses WHERE type = ?`, models.LicenseTypeFull); err != nil {
		return DashboardSummary{}, err
	}
	if summary.UnusedVouchers, err = s.count(ctx,
		`SELECT COUNT(*) FROM vouchers WHERE status = ?`, models.VoucherStatusUnused); err != nil {
		return DashboardSummary{}, err
	}
	if summary.DeviceCount, err = s.count(ctx,
		`SELECT COUNT(*) FROM device_activations WHERE revoked_at IS NULL`); err != nil {
		return DashboardSummary{}, err
	}

	return summary, nil
}
