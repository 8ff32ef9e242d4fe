package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulltechlicense/models"
	"fulltechlicense/utils"
)

func TestFindByKeyAndProduct(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewLicenseService(NewSQLExecutor(db))

	product := seedProduct(t, db, "RESTO")
	other := seedProduct(t, db, "OTRO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{})

	found, err := svc.FindByKeyAndProduct(ctx, lic.Key, product.ID)
	require.NoError(t, err)
	assert.Equal(t, lic.ID, found.ID)

	// clave válida pero de otro producto: mismo rechazo que clave inexistente
	_, err = svc.FindByKeyAndProduct(ctx, lic.Key, other.ID)
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, models.AttemptInvalidKey, se.Result)
	assert.Equal(t, "Licencia no encontrada", se.Title)
}

func TestEnsureActiveLazyExpiry(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewLicenseService(NewSQLExecutor(db))

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{ExpiresAt: pastTime()})

	err := svc.EnsureActive(ctx, &lic, utils.NowUTC())
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, models.AttemptExpired, se.Result)
	assert.Equal(t, models.LicenseStatusExpired, lic.Status)

	// el volcado queda persistido
	stored, err := svc.FindByID(ctx, lic.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LicenseStatusExpired, stored.Status)

	// segunda lectura: mismo motivo, sin más efectos
	err = svc.EnsureActive(ctx, &stored, utils.NowUTC())
	se, ok = AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, models.AttemptExpired, se.Result)
	assert.Equal(t, "Estado: EXPIRED", se.Detail)
}

func TestEnsureActiveRejectsSuspendedAndRevoked(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewLicenseService(NewSQLExecutor(db))

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")

	suspended := seedLicense(t, db, product, tenant, licenseSeed{Status: models.LicenseStatusSuspended})
	err := svc.EnsureActive(ctx, &suspended, utils.NowUTC())
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, models.AttemptSuspended, se.Result)
	assert.Equal(t, "Licencia no activa", se.Title)
	assert.Equal(t, "Estado: SUSPENDED", se.Detail)

	revoked := seedLicense(t, db, product, tenant, licenseSeed{Status: models.LicenseStatusRevoked})
	err = svc.EnsureActive(ctx, &revoked, utils.NowUTC())
	se, ok = AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, models.AttemptRevoked, se.Result)
}

func TestStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewLicenseService(NewSQLExecutor(db))

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{})

	suspendida, err := svc.Suspend(ctx, lic.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LicenseStatusSuspended, suspendida.Status)

	// suspender dos veces no está permitido
	_, err = svc.Suspend(ctx, lic.ID)
	assert.Error(t, err)

	reanudada, err := svc.Resume(ctx, lic.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LicenseStatusActive, reanudada.Status)

	revocada, err := svc.Revoke(ctx, lic.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LicenseStatusRevoked, revocada.Status)

	// REVOKED es terminal
	_, err = svc.Suspend(ctx, lic.ID)
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 409, se.HTTPStatus)

	_, err = svc.Resume(ctx, lic.ID)
	assert.Error(t, err)

	_, err = svc.Renew(ctx, lic.ID, 30)
	assert.Error(t, err)
}

func TestRenewFromExpiredStartsAtNow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewLicenseService(NewSQLExecutor(db))

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{
		ExpiresAt: pastTime(),
		Status:    models.LicenseStatusExpired,
	})

	renewed, err := svc.Renew(ctx, lic.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, models.LicenseStatusActive, renewed.Status)

	require.NotNil(t, renewed.ExpiresAt)
	exp, err := utils.ParseDBTime(*renewed.ExpiresAt)
	require.NoError(t, err)

	// base = ahora, no la fecha vencida de 2020
	expected := utils.NowUTC().AddDate(0, 0, 30)
	assert.WithinDuration(t, expected, exp, time.Minute)
}

func TestRenewExtendsFutureExpiry(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewLicenseService(NewSQLExecutor(db))

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")

	future := utils.FormatDBTime(utils.NowUTC().AddDate(0, 0, 10))
	lic := seedLicense(t, db, product, tenant, licenseSeed{ExpiresAt: &future})

	renewed, err := svc.Renew(ctx, lic.ID, 30)
	require.NoError(t, err)

	exp, err := utils.ParseDBTime(*renewed.ExpiresAt)
	require.NoError(t, err)
	expected := utils.NowUTC().AddDate(0, 0, 40)
	assert.WithinDuration(t, expected, exp, time.Minute)
}

func TestUpdateLicensePartialFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewLicenseService(NewSQLExecutor(db))

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{MaxDevices: 2, MaxActivations: 4})

	updated, err := svc.Update(ctx, lic.ID, models.UpdateLicenseRequest{
		MaxDevices: intp(5),
		Modules:    map[string]bool{"ventas": true, "inventario": true},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.MaxDevices)
	assert.Equal(t, 4, updated.MaxActivations) // sin tocar
	assert.True(t, updated.Modules["inventario"])

	stored, err := svc.FindByID(ctx, lic.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.MaxDevices)
	assert.True(t, stored.Modules["inventario"])
}

func TestListFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewLicenseService(NewSQLExecutor(db))

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	seedLicense(t, db, product, tenant, licenseSeed{})
	seedLicense(t, db, product, tenant, licenseSeed{Status: models.LicenseStatusSuspended})

	all, err := svc.List(ctx, LicenseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.List(ctx, LicenseFilter{Status: models.LicenseStatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	byKey, err := svc.List(ctx, LicenseFilter{Query: "RESTO-FULL"})
	require.NoError(t, err)
	assert.Len(t, byKey, 2)
}
