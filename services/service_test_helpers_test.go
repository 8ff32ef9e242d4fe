package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"fulltechlicense/database"
	"fulltechlicense/models"
	"fulltechlicense/utils"
)

// newTestDB abre una sqlite en memoria con el esquema real. MaxOpenConns=1
// porque cada conexión de :memory: sería una base distinta.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.SetupSchema(db))
	return db
}

func seedProduct(t *testing.T, db *sql.DB, slug string) models.Product {
	t.Helper()
	svc := NewProductService(NewSQLExecutor(db))
	p, err := svc.Create(context.Background(), models.CreateProductRequest{
		Name:           "Producto " + slug,
		Slug:           slug,
		CurrentVersion: "2.0.0",
	})
	require.NoError(t, err)
	return p
}

func seedProductWithVerifyKey(t *testing.T, db *sql.DB, slug, verifyKeyB64 string) models.Product {
	t.Helper()
	svc := NewProductService(NewSQLExecutor(db))
	p, err := svc.Create(context.Background(), models.CreateProductRequest{
		Name:                    "Producto " + slug,
		Slug:                    slug,
		CurrentVersion:          "2.0.0",
		OfflineRequestVerifyKey: &verifyKeyB64,
	})
	require.NoError(t, err)
	return p
}

func seedTenant(t *testing.T, db *sql.DB, tradeName string) models.Tenant {
	t.Helper()
	tenant := models.Tenant{
		ID:        utils.NewID(),
		TradeName: tradeName,
		Status:    models.TenantStatusActive,
		CreatedAt: utils.FormatDBTime(utils.NowUTC()),
	}
	_, err := db.Exec(
		`INSERT INTO tenants (id, trade_name, legal_name, contact_email, contact_phone, status, created_at)
		 VALUES (?, ?, '', NULL, NULL, ?, ?)`,
		tenant.ID, tenant.TradeName, tenant.Status, tenant.CreatedAt,
	)
	require.NoError(t, err)
	return tenant
}

type licenseSeed struct {
	ExpiresAt         *string
	MaxDevices        int
	MaxActivations    int
	OfflineAllowed    bool
	RevalidateDays    *int
	AllowedVersionMin *string
	AllowedVersionMax *string
	Status            string
}

func seedLicense(t *testing.T, db *sql.DB, product models.Product, tenant models.Tenant, seed licenseSeed) models.License {
	t.Helper()

	if seed.MaxDevices <= 0 {
		seed.MaxDevices = 1
	}
	if seed.MaxActivations <= 0 {
		seed.MaxActivations = seed.MaxDevices
	}

	svc := NewLicenseService(NewSQLExecutor(db))
	lic, err := svc.Create(context.Background(), models.CreateLicenseRequest{
		TenantID:          tenant.ID,
		ProductID:         product.ID,
		Type:              models.LicenseTypeFull,
		PlanType:          models.PlanSubscription,
		ExpiresAt:         seed.ExpiresAt,
		MaxDevices:        seed.MaxDevices,
		MaxActivations:    seed.MaxActivations,
		OfflineAllowed:    seed.OfflineAllowed,
		RevalidateDays:    seed.RevalidateDays,
		AllowedVersionMin: seed.AllowedVersionMin,
		AllowedVersionMax: seed.AllowedVersionMax,
		Modules:           map[string]bool{"ventas": true},
		Features:          map[string]interface{}{"maxUsers": float64(3)},
	}, product.Slug)
	require.NoError(t, err)

	if seed.Status != "" && seed.Status != models.LicenseStatusActive {
		_, err := db.Exec(`UPDATE licenses SET status = ? WHERE id = ?`, seed.Status, lic.ID)
		require.NoError(t, err)
		lic.Status = seed.Status
	}
	return lic
}

func strp(s string) *string  { return &s }
func intp(i int) *int        { return &i }
func pastTime() *string      { return strp("2020-01-01 00:00:00") }
func futureTime() *string    { return strp("2099-01-01 00:00:00") }
