package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulltechlicense/models"
	"fulltechlicense/utils"
)

func newVoucherService(db *sql.DB) VoucherService {
	exec := NewSQLExecutor(db)
	return NewVoucherService(exec, NewProductService(exec))
}

func batchRequest(product models.Product, count int) models.VoucherBatchRequest {
	return models.VoucherBatchRequest{
		ProductID:           product.ID,
		Count:               count,
		BatchName:           strp("Lote distribuidor 2026"),
		LicenseType:         models.LicenseTypeFull,
		PlanType:            models.PlanSubscription,
		LicenseDurationDays: intp(30),
		MaxDevices:          2,
		Modules:             map[string]bool{"ventas": true},
		Notes:               "Promo distribuidores",
	}
}

func TestCreateBatch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newVoucherService(db)

	product := seedProduct(t, db, "RESTO")

	vouchers, err := svc.CreateBatch(ctx, batchRequest(product, 5))
	require.NoError(t, err)
	require.Len(t, vouchers, 5)

	seen := make(map[string]bool)
	for _, v := range vouchers {
		assert.Equal(t, models.VoucherStatusUnused, v.Status)
		assert.Equal(t, 2, v.MaxDevices)
		assert.Equal(t, 2, v.MaxActivations) // default: igual a max_devices
		assert.False(t, seen[v.Code])
		seen[v.Code] = true
	}

	listed, err := svc.List(ctx, VoucherFilter{BatchName: "Lote distribuidor 2026"})
	require.NoError(t, err)
	assert.Len(t, listed, 5)
}

func TestCreateBatchRejectsBadCount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newVoucherService(db)

	product := seedProduct(t, db, "RESTO")

	for _, count := range []int{0, -1, 1001} {
		_, err := svc.CreateBatch(ctx, batchRequest(product, count))
		se, ok := AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, 400, se.HTTPStatus)
	}
}

func TestRedeemCreatesTenantAndLicense(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newVoucherService(db)

	product := seedProduct(t, db, "RESTO")
	vouchers, err := svc.CreateBatch(ctx, batchRequest(product, 1))
	require.NoError(t, err)
	code := vouchers[0].Code

	result, err := svc.Redeem(ctx, models.RedeemRequest{
		Code:         code,
		TradeName:    "Pizzería Don Carlos",
		ContactEmail: strp("carlos@example.com"),
	})
	require.NoError(t, err)

	assert.Equal(t, product.ID, result.Product.ID)
	assert.Equal(t, "Pizzería Don Carlos", result.Tenant.TradeName)
	assert.NotEmpty(t, result.License.Key)

	// la licencia dura lo que dice la plantilla
	require.NotNil(t, result.License.ExpiresAt)
	exp, err := utils.ParseDBTime(*result.License.ExpiresAt)
	require.NoError(t, err)
	assert.WithinDuration(t, utils.NowUTC().AddDate(0, 0, 30), exp, time.Minute)

	// el voucher queda USED con referencias al tenant y la licencia
	used, err := svc.FindByID(ctx, vouchers[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoucherStatusUsed, used.Status)
	require.NotNil(t, used.LicenseID)
	assert.Equal(t, result.License.ID, *used.LicenseID)
	require.NotNil(t, used.TenantID)
	assert.Equal(t, result.Tenant.ID, *used.TenantID)
	require.NotNil(t, used.UsedByEmail)
	assert.Equal(t, "carlos@example.com", *used.UsedByEmail)

	// la licencia creada conserva las notas de la plantilla y añade la
	// procedencia del canje
	lic, err := NewLicenseService(NewSQLExecutor(db)).FindByID(ctx, result.License.ID)
	require.NoError(t, err)
	assert.Equal(t, "Promo distribuidores | Canje de voucher "+code, lic.Notes)
	assert.Equal(t, 2, lic.MaxDevices)
	assert.True(t, lic.Modules["ventas"])
}

func TestRedeemWithoutTemplateNotes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newVoucherService(db)

	product := seedProduct(t, db, "RESTO")
	req := batchRequest(product, 1)
	req.Notes = ""
	vouchers, err := svc.CreateBatch(ctx, req)
	require.NoError(t, err)

	result, err := svc.Redeem(ctx, models.RedeemRequest{Code: vouchers[0].Code, TradeName: "Comercio"})
	require.NoError(t, err)

	lic, err := NewLicenseService(NewSQLExecutor(db)).FindByID(ctx, result.License.ID)
	require.NoError(t, err)
	assert.Equal(t, "Canje de voucher "+vouchers[0].Code, lic.Notes)
}

func TestRedeemIsSingleUse(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newVoucherService(db)

	product := seedProduct(t, db, "RESTO")
	vouchers, err := svc.CreateBatch(ctx, batchRequest(product, 1))
	require.NoError(t, err)

	req := models.RedeemRequest{Code: vouchers[0].Code, TradeName: "Comercio Uno"}
	_, err = svc.Redeem(ctx, req)
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, req)
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 409, se.HTTPStatus)
	assert.Equal(t, "Código no disponible", se.Title)
	assert.Equal(t, "Estado: USED", se.Detail)

	// solo quedó una licencia
	licenses, err := NewLicenseService(NewSQLExecutor(db)).List(ctx, LicenseFilter{})
	require.NoError(t, err)
	assert.Len(t, licenses, 1)
}

func TestRedeemUnknownCode(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newVoucherService(db)

	_, err := svc.Redeem(ctx, models.RedeemRequest{Code: "FT-XXXX-XXXX-XXXX", TradeName: "Comercio"})
	assert.ErrorIs(t, err, ErrVoucherNotFound)
}

func TestRedeemExpiredVoucher(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newVoucherService(db)

	product := seedProduct(t, db, "RESTO")
	req := batchRequest(product, 1)
	req.ExpiresAt = pastTime()
	vouchers, err := svc.CreateBatch(ctx, req)
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, models.RedeemRequest{Code: vouchers[0].Code, TradeName: "Comercio"})
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 409, se.HTTPStatus)
	assert.Equal(t, "Estado: EXPIRED", se.Detail)

	// la caducidad queda persistida aunque el canje falle
	stored, err := svc.FindByID(ctx, vouchers[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoucherStatusExpired, stored.Status)
}

func TestRedeemReusesTenantByEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newVoucherService(db)

	product := seedProduct(t, db, "RESTO")
	vouchers, err := svc.CreateBatch(ctx, batchRequest(product, 2))
	require.NoError(t, err)

	first, err := svc.Redeem(ctx, models.RedeemRequest{
		Code: vouchers[0].Code, TradeName: "Comercio Uno", ContactEmail: strp("duenio@example.com"),
	})
	require.NoError(t, err)

	// mismo email con otra capitalización: mismo tenant
	second, err := svc.Redeem(ctx, models.RedeemRequest{
		Code: vouchers[1].Code, TradeName: "Comercio Uno Sucursal", ContactEmail: strp("Duenio@Example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, first.Tenant.ID, second.Tenant.ID)
}

func TestCancelVoucher(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := newVoucherService(db)

	product := seedProduct(t, db, "RESTO")
	vouchers, err := svc.CreateBatch(ctx, batchRequest(product, 1))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, vouchers[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoucherStatusCancelled, cancelled.Status)

	// CANCELLED es terminal: ni cancelar de nuevo ni canjear
	_, err = svc.Cancel(ctx, vouchers[0].ID)
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 409, se.HTTPStatus)

	_, err = svc.Redeem(ctx, models.RedeemRequest{Code: vouchers[0].Code, TradeName: "Comercio"})
	se, ok = AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "Estado: CANCELLED", se.Detail)
}
