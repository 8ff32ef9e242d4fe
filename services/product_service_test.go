package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulltechlicense/models"
)

func TestProductCreateAndFind(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProductService(NewSQLExecutor(db))

	created, err := svc.Create(ctx, models.CreateProductRequest{
		Name:           "Restobar POS",
		Slug:           "resto",
		CurrentVersion: "2.0.0",
	})
	require.NoError(t, err)
	assert.Equal(t, "RESTO", created.Slug) // siempre en mayúsculas
	assert.Equal(t, models.ProductStatusPublished, created.Status)

	byID, err := svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, byID.Name)

	// la búsqueda por slug tampoco distingue mayúsculas
	bySlug, err := svc.FindBySlug(ctx, "Resto")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)
}

func TestProductCreateValidatesInput(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProductService(NewSQLExecutor(db))

	_, err := svc.Create(ctx, models.CreateProductRequest{Name: "Sin slug"})
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 400, se.HTTPStatus)
}

func TestProductNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewProductService(NewSQLExecutor(db))

	_, err := svc.FindByID(ctx, "no-existe")
	assert.ErrorIs(t, err, ErrProductInvalid)

	_, err = svc.FindBySlug(ctx, "NADA")
	assert.ErrorIs(t, err, ErrProductInvalid)

	products, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}
