package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/apperror"
	"storefront-service/internal/entity"
)

func newCatalog(t *testing.T, products ...entity.Product) (*CatalogService, *fakeProducts, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })

	repo := newFakeProducts(products...)
	return NewCatalogService(repo, rdb, time.Minute), repo, mr
}

var lamp = entity.Product{ID: 1, Name: "LED Desk Lamp", Price: mustDecimal("89.99"), Category: "home", Stock: 40}

func TestGetProductReadsThroughCache(t *testing.T) {
	svc, repo, mr := newCatalog(t, lamp)
	ctx := context.Background()

	p, err := svc.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "LED Desk Lamp", p.Name)
	assert.True(t, mr.Exists("product:1"))
	assert.Equal(t, time.Minute, mr.TTL("product:1"))

	p, err = svc.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.True(t, mustDecimal("89.99").Equal(p.Price))
	assert.Equal(t, 1, repo.reads)
}

func TestGetProductNotFound(t *testing.T) {
	svc, _, mr := newCatalog(t)

	_, err := svc.GetProduct(context.Background(), 5)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.False(t, mr.Exists("product:5"))
}

func TestGetProductFallsThroughWhenRedisIsDown(t *testing.T) {
	svc, _, mr := newCatalog(t, lamp)
	mr.Close()

	p, err := svc.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}

func TestUpdateProductInvalidatesCache(t *testing.T) {
	svc, _, mr := newCatalog(t, lamp)
	ctx := context.Background()

	_, err := svc.GetProduct(ctx, 1)
	require.NoError(t, err)

	update := lamp
	update.Price = mustDecimal("99.99")
	_, err = svc.UpdateProduct(ctx, 1, &update)
	require.NoError(t, err)
	assert.False(t, mr.Exists("product:1"))

	p, err := svc.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.True(t, mustDecimal("99.99").Equal(p.Price))

	_, err = svc.UpdateProduct(ctx, 8, &update)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateProductValidates(t *testing.T) {
	svc, _, _ := newCatalog(t)

	_, err := svc.CreateProduct(context.Background(), &entity.Product{Name: "Cable", Category: "electronics", Price: mustDecimal("-1")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	p, err := svc.CreateProduct(context.Background(), &entity.Product{Name: "Cable", Category: "electronics", Price: mustDecimal("9.99")})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestListProductsRejectsUnknownSort(t *testing.T) {
	svc, _, _ := newCatalog(t, lamp)

	_, err := svc.ListProducts(context.Background(), entity.ProductFilter{SortBy: "stock"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.ListProducts(context.Background(), entity.ProductFilter{SortBy: "price", Order: "sideways"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	products, err := svc.ListProducts(context.Background(), entity.ProductFilter{Category: "home", SortBy: "name", Order: "desc"})
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestSeedOnlyFillsEmptyCatalog(t *testing.T) {
	svc, repo, _ := newCatalog(t)
	ctx := context.Background()

	n, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Len(t, repo.products, 8)

	n, err = svc.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, repo.products, 8)
}
