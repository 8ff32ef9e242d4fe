package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivationTokenRoundTrip(t *testing.T) {
	claims := ActivationClaims{
		LicenseID:     "lic-1",
		TenantID:      "ten-1",
		ProductID:     "prod-1",
		DeviceIDHash:  "hash-1",
		Modules:       map[string]bool{"pos": true},
		Features:      map[string]interface{}{"maxUsers": float64(5)},
		LicenseType:   "FULL",
		LicenseStatus: "ACTIVE",
		Expiry:        "2027-01-01T00:00:00Z",
		OfflineDays:   7,
	}

	token, err := SignActivationToken("secret-a", claims, time.Hour)
	require.NoError(t, err)

	got, err := VerifyActivationToken("secret-a", token)
	require.NoError(t, err)
	assert.Equal(t, "lic-1", got.LicenseID)
	assert.Equal(t, "hash-1", got.DeviceIDHash)
	assert.Equal(t, map[string]bool{"pos": true}, got.Modules)
	assert.Equal(t, 7, got.OfflineDays)
}

func TestActivationTokenWrongSecret(t *testing.T) {
	token, err := SignActivationToken("secret-a", ActivationClaims{LicenseID: "lic-1"}, time.Hour)
	require.NoError(t, err)

	_, err = VerifyActivationToken("secret-b", token)
	assert.Error(t, err)
}

func TestActivationTokenExpired(t *testing.T) {
	token, err := SignActivationToken("secret-a", ActivationClaims{LicenseID: "lic-1"}, -time.Minute)
	require.NoError(t, err)

	_, err = VerifyActivationToken("secret-a", token)
	assert.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, expiresAt, err := SignAccessToken("auth-secret", "admin-1", "ops@fulltech.local", "super_admin", time.Hour)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	claims, err := VerifyAccessToken("auth-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, "super_admin", claims.Role)
}

func TestAudiencesAreNotInterchangeable(t *testing.T) {
	// un activation token nunca vale como access token, ni al revés
	actToken, err := SignActivationToken("shared-secret", ActivationClaims{LicenseID: "lic-1"}, time.Hour)
	require.NoError(t, err)
	_, err = VerifyAccessToken("shared-secret", actToken)
	assert.Error(t, err)

	accToken, _, err := SignAccessToken("shared-secret", "admin-1", "a@b.c", "admin", time.Hour)
	require.NoError(t, err)
	_, err = VerifyActivationToken("shared-secret", accToken)
	assert.Error(t, err)
}
