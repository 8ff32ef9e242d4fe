package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulltechlicense/models"
)

func TestSettingsPutAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewSettingsService(NewSQLExecutor(db))

	require.NoError(t, svc.Put(ctx, "branding", json.RawMessage(`{"name":"FULLTECH"}`)))

	raw, err := svc.Get(ctx, "branding")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"FULLTECH"}`, string(raw))

	// upsert sobre la misma clave
	require.NoError(t, svc.Put(ctx, "branding", json.RawMessage(`{"name":"FULLTECH POS"}`)))
	raw, err = svc.Get(ctx, "branding")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"FULLTECH POS"}`, string(raw))

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRevalidationDays(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewSettingsService(NewSQLExecutor(db))

	// sin setting: fallback
	assert.Equal(t, 7, svc.RevalidationDays(ctx, 7))

	require.NoError(t, svc.Put(ctx, models.SettingKeyRevalidation, json.RawMessage(`{"offlineDays": 21}`)))
	assert.Equal(t, 21, svc.RevalidationDays(ctx, 7))

	// valor inválido: fallback otra vez
	require.NoError(t, svc.Put(ctx, models.SettingKeyRevalidation, json.RawMessage(`{"offlineDays": 0}`)))
	assert.Equal(t, 7, svc.RevalidationDays(ctx, 7))
}
