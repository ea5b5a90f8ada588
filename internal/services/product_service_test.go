package services

import (
	"context"
	"testing"

	"github.com/isdelr/inventory-manager-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_CRUD(t *testing.T) {
	db := newTestDB(t)
	pub := &recordingPublisher{}
	s := NewProductService(db, NewEventService(db, pub))
	ctx := context.Background()

	created, err := s.CreateProduct(ctx, models.Product{Name: "Desk", Price: 150, Stock: 3, Category: "Furniture"})
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	got, err := s.GetProductByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := s.UpdateProduct(ctx, created.ID, models.ProductUpdate{Stock: ptr(0), Description: ptr("Oak")})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)
	assert.Equal(t, "Oak", updated.Description)
	assert.Equal(t, 150.0, updated.Price)
	assert.Equal(t, "Desk", updated.Name)

	all, err := s.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, updated, all[0])

	require.NoError(t, s.DeleteProduct(ctx, created.ID))
	_, err = s.GetProductByID(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Product with id 1 not found", err.Error())

	assert.ErrorIs(t, s.DeleteProduct(ctx, created.ID), ErrNotFound)
	_, err = s.UpdateProduct(ctx, created.ID, models.ProductUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"product.create", "product.update", "product.delete"}, pub.types())
}
