package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulltechlicense/models"
	"fulltechlicense/utils"
)

const testTokenSecret = "secreto-de-prueba"

func newActivationService(t *testing.T, db *sql.DB) *ActivationService {
	t.Helper()
	exec := NewSQLExecutor(db)
	return NewActivationService(
		NewLicenseService(exec),
		NewDeviceService(exec),
		NewSettingsService(exec),
		NewAttemptService(exec),
		ActivationConfig{TokenSecret: testTokenSecret, DefaultOfflineDays: 7},
	)
}

func activationRequest(lic models.License, fingerprint string) models.OnlineActivationRequest {
	return models.OnlineActivationRequest{
		LicenseKey:        lic.Key,
		ProductID:         lic.ProductID,
		AppVersion:        "2.0.0",
		DeviceFingerprint: fingerprint,
	}
}

func TestActivateOnlineHappyPath(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newActivationService(t, db)

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{ExpiresAt: futureTime()})

	result, err := svc.ActivateOnline(ctx, activationRequest(lic, "caja-1"), "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.ActivationToken)
	assert.Equal(t, 7, result.OfflineDays)

	// la expiración del token es la de la licencia
	exp, err := time.Parse(time.RFC3339, result.Expiry)
	require.NoError(t, err)
	licExp, _ := utils.ParseDBTime(*lic.ExpiresAt)
	assert.Equal(t, licExp, exp.UTC())

	claims, err := utils.VerifyActivationToken(testTokenSecret, result.ActivationToken)
	require.NoError(t, err)
	assert.Equal(t, lic.ID, claims.LicenseID)
	assert.Equal(t, tenant.ID, claims.TenantID)
	assert.Equal(t, utils.HashDeviceFingerprint("caja-1"), claims.DeviceIDHash)
	assert.True(t, claims.Modules["ventas"])

	// intento registrado como SUCCESS
	attempts, err := NewAttemptService(NewSQLExecutor(db)).List(ctx, lic.ID, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, models.AttemptSuccess, attempts[0].Result)
}

func TestActivateOnlineDeviceLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newActivationService(t, db)

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{MaxDevices: 1})

	_, err := svc.ActivateOnline(ctx, activationRequest(lic, "caja-1"), "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.ActivateOnline(ctx, activationRequest(lic, "caja-2"), "10.0.0.2")
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, models.AttemptDeviceLimit, se.Result)

	// el primer dispositivo puede repetir la activación
	_, err = svc.ActivateOnline(ctx, activationRequest(lic, "caja-1"), "10.0.0.1")
	assert.NoError(t, err)
}

func TestActivateOnlineUnknownKey(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newActivationService(t, db)

	product := seedProduct(t, db, "RESTO")

	_, err := svc.ActivateOnline(ctx, models.OnlineActivationRequest{
		LicenseKey:        "RESTO-FULL-XXXX-XXXX",
		ProductID:         product.ID,
		AppVersion:        "2.0.0",
		DeviceFingerprint: "caja-1",
	}, "10.0.0.1")
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, models.AttemptInvalidKey, se.Result)
	assert.Equal(t, 404, se.HTTPStatus)
}

func TestActivateOnlineExpiredFlipsStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newActivationService(t, db)

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{ExpiresAt: pastTime()})

	_, err := svc.ActivateOnline(ctx, activationRequest(lic, "caja-1"), "10.0.0.1")
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, models.AttemptExpired, se.Result)

	var status string
	require.NoError(t, db.QueryRow(`SELECT status FROM licenses WHERE id = ?`, lic.ID).Scan(&status))
	assert.Equal(t, models.LicenseStatusExpired, status)
}

func TestActivateOnlineVersionWindow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newActivationService(t, db)

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{
		AllowedVersionMin: strp("2.0.0"),
		AllowedVersionMax: strp("2.5.0"),
	})

	cases := []struct {
		name       string
		appVersion string
		wantDetail string
	}{
		{"por debajo del mínimo", "1.9.0", "Mínima: 2.0.0"},
		{"por encima del máximo", "3.0.0", "Máxima: 2.5.0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := activationRequest(lic, "caja-"+tc.appVersion)
			req.AppVersion = tc.appVersion
			_, err := svc.ActivateOnline(ctx, req, "10.0.0.1")
			se, ok := AsServiceError(err)
			require.True(t, ok)
			assert.Equal(t, models.AttemptVersionBlocked, se.Result)
			assert.Equal(t, tc.wantDetail, se.Detail)
		})
	}

	// dentro de la ventana
	req := activationRequest(lic, "caja-ok")
	req.AppVersion = "2.3.1"
	_, err := svc.ActivateOnline(ctx, req, "10.0.0.1")
	assert.NoError(t, err)

	// versión no parseable: pasa ambos límites
	req = activationRequest(lic, "caja-rara")
	req.AppVersion = "dev-build"
	_, err = svc.ActivateOnline(ctx, req, "10.0.0.1")
	assert.NoError(t, err)
}

func TestOfflineDaysOverrides(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newActivationService(t, db)

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")

	// sin setting ni override: default 7
	licDefault := seedLicense(t, db, product, tenant, licenseSeed{})
	result, err := svc.ActivateOnline(ctx, activationRequest(licDefault, "caja-1"), "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 7, result.OfflineDays)

	// setting global
	settings := NewSettingsService(NewSQLExecutor(db))
	require.NoError(t, settings.Put(ctx, models.SettingKeyRevalidation, json.RawMessage(`{"offlineDays": 14}`)))

	licGlobal := seedLicense(t, db, product, tenant, licenseSeed{})
	result, err = svc.ActivateOnline(ctx, activationRequest(licGlobal, "caja-2"), "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 14, result.OfflineDays)

	// override por licencia gana al setting
	licOverride := seedLicense(t, db, product, tenant, licenseSeed{RevalidateDays: intp(3)})
	result, err = svc.ActivateOnline(ctx, activationRequest(licOverride, "caja-3"), "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.OfflineDays)

	// sin expiración de licencia, el expiry del token es now+ttl
	exp, err := time.Parse(time.RFC3339, result.Expiry)
	require.NoError(t, err)
	assert.WithinDuration(t, utils.NowUTC().AddDate(0, 0, 3), exp.UTC(), time.Minute)
}

func TestRevalidate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newActivationService(t, db)

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{})

	activated, err := svc.ActivateOnline(ctx, activationRequest(lic, "caja-1"), "10.0.0.1")
	require.NoError(t, err)

	result, err := svc.Revalidate(ctx, models.RevalidationRequest{
		ActivationToken:   activated.ActivationToken,
		DeviceFingerprint: "caja-1",
		AppVersion:        "2.1.0",
	}, "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.ActivationToken)

	// la revalidación actualiza la versión vista del dispositivo
	dev, err := NewDeviceService(NewSQLExecutor(db)).Find(ctx, lic.ID, utils.HashDeviceFingerprint("caja-1"))
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", dev.AppVersion)
}

func TestRevalidateRejectsBadToken(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newActivationService(t, db)

	_, err := svc.Revalidate(ctx, models.RevalidationRequest{
		ActivationToken:   "no-es-un-jwt",
		DeviceFingerprint: "caja-1",
		AppVersion:        "2.0.0",
	}, "10.0.0.1")
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 401, se.HTTPStatus)
	assert.Equal(t, "Activation token inválido", se.Title)
}

func TestRevalidateRejectsUnknownDevice(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newActivationService(t, db)

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{})

	activated, err := svc.ActivateOnline(ctx, activationRequest(lic, "caja-1"), "10.0.0.1")
	require.NoError(t, err)

	// token válido, pero la huella nunca fue admitida
	_, err = svc.Revalidate(ctx, models.RevalidationRequest{
		ActivationToken:   activated.ActivationToken,
		DeviceFingerprint: "caja-jamas-vista",
		AppVersion:        "2.0.0",
	}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrDeviceNotActive)
}

// brokenDeviceService simula un fallo de infraestructura en la consulta de
// dispositivos.
type brokenDeviceService struct {
	DeviceService
}

func (s brokenDeviceService) Find(ctx context.Context, licenseID, deviceIDHash string) (models.DeviceActivation, error) {
	return models.DeviceActivation{}, errors.New("connection reset")
}

func TestRevalidateDeviceLookupFailureIsServerError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	exec := NewSQLExecutor(db)

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{})

	healthy := newActivationService(t, db)
	activated, err := healthy.ActivateOnline(ctx, activationRequest(lic, "caja-1"), "10.0.0.1")
	require.NoError(t, err)

	broken := NewActivationService(
		NewLicenseService(exec),
		brokenDeviceService{DeviceService: NewDeviceService(exec)},
		NewSettingsService(exec),
		NewAttemptService(exec),
		ActivationConfig{TokenSecret: testTokenSecret, DefaultOfflineDays: 7},
	)

	// un fallo de base no es un rechazo de política: el cliente recibe 500
	// y puede reintentar, no 403
	_, err = broken.Revalidate(ctx, models.RevalidationRequest{
		ActivationToken:   activated.ActivationToken,
		DeviceFingerprint: "caja-1",
		AppVersion:        "2.0.0",
	}, "10.0.0.1")
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 500, se.HTTPStatus)
	assert.NotErrorIs(t, err, ErrDeviceNotActive)
}

func TestRevalidateRejectsRevokedDevice(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newActivationService(t, db)

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{})

	activated, err := svc.ActivateOnline(ctx, activationRequest(lic, "caja-1"), "10.0.0.1")
	require.NoError(t, err)

	devices := NewDeviceService(NewSQLExecutor(db))
	require.NoError(t, devices.Revoke(ctx, lic.ID, utils.HashDeviceFingerprint("caja-1")))

	_, err = svc.Revalidate(ctx, models.RevalidationRequest{
		ActivationToken:   activated.ActivationToken,
		DeviceFingerprint: "caja-1",
		AppVersion:        "2.0.0",
	}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrDeviceNotActive)
}

func TestRevalidateRejectsRevokedLicense(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newActivationService(t, db)

	product := seedProduct(t, db, "RESTO")
	tenant := seedTenant(t, db, "Comercio Uno")
	lic := seedLicense(t, db, product, tenant, licenseSeed{})

	activated, err := svc.ActivateOnline(ctx, activationRequest(lic, "caja-1"), "10.0.0.1")
	require.NoError(t, err)

	_, err = NewLicenseService(NewSQLExecutor(db)).Revoke(ctx, lic.ID)
	require.NoError(t, err)

	_, err = svc.Revalidate(ctx, models.RevalidationRequest{
		ActivationToken:   activated.ActivationToken,
		DeviceFingerprint: "caja-1",
		AppVersion:        "2.0.0",
	}, "10.0.0.1")
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, models.AttemptRevoked, se.Result)
}
