package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront-service/internal/apperror"
	"storefront-service/internal/entity"
)

type ProductStore interface {
	ProductReader
	GetProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	CountProducts(ctx context.Context) (int, error)
}

// CatalogService serves products, caching single-product reads in Redis.
// The cache is an optimization only: any Redis failure falls through to MySQL.
type CatalogService struct {
	productRepo ProductStore
	rdb         *redis.Client
	cacheTTL    time.Duration
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(productRepo ProductStore, rdb *redis.Client, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		rdb:         rdb,
		cacheTTL:    cacheTTL,
	}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// ListProducts returns the catalog, optionally narrowed to a category and
// sorted by name or price.
func (s *CatalogService) ListProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	var fields []apperror.FieldError
	switch filter.SortBy {
	case "", entity.SortByName, entity.SortByPrice:
	default:
		fields = append(fields, apperror.FieldError{Field: "sort", Message: "must be one of name, price"})
	}
	switch filter.Order {
	case "", "asc", "desc":
	default:
		fields = append(fields, apperror.FieldError{Field: "order", Message: "must be one of asc, desc"})
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("Invalid product query", fields...)
	}

	products, err := s.productRepo.GetProducts(ctx, filter)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing products")
		return nil, err
	}
	return products, nil
}

// GetProduct reads through the product cache.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	key := productKey(id)
	productCache, err := s.rdb.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Error().Err(err).Msgf("Error getting product %d from cache", id)
	}

	if productCache != "" {
		var product entity.Product
		if err := json.Unmarshal([]byte(productCache), &product); err == nil {
			return &product, nil
		}
		logger.Error().Err(err).Msgf("Error unmarshalling cached product %d", id)
	}

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error getting product by ID %d", id)
		}
		return nil, err
	}

	s.cacheProduct(ctx, product)
	return product, nil
}

func (s *CatalogService) cacheProduct(ctx context.Context, product *entity.Product) {
	productJSON, err := json.Marshal(product)
	if err != nil {
		logger.Error().Err(err).Msgf("Error marshalling product %d", product.ID)
		return
	}
	if err := s.rdb.Set(ctx, productKey(product.ID), productJSON, s.cacheTTL).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error setting product %d in cache", product.ID)
	}
}

func validateProduct(product *entity.Product) error {
	var fields []apperror.FieldError
	if product.Name == "" {
		fields = append(fields, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if product.Category == "" {
		fields = append(fields, apperror.FieldError{Field: "category", Message: "is required"})
	}
	if product.Price.IsNegative() {
		fields = append(fields, apperror.FieldError{Field: "price", Message: "must not be negative"})
	}
	if product.Stock < 0 {
		fields = append(fields, apperror.FieldError{Field: "stock", Message: "must not be negative"})
	}
	if len(fields) > 0 {
		return apperror.Validation("Invalid product data", fields...)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.CreatedAt = time.Now().UTC()

	createdProduct, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating product")
		return nil, err
	}
	return createdProduct, nil
}

// UpdateProduct replaces the product's fields and drops its cache entry.
// Existing order items keep the price they were placed at.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, product *entity.Product) (*entity.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.ID = id

	updatedProduct, err := s.productRepo.UpdateProduct(ctx, product)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error updating product %d", id)
		}
		return nil, err
	}

	if err := s.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error deleting product %d from cache", id)
	}
	return updatedProduct, nil
}

// Seed loads the demo catalog into an empty products table. It returns the
// number of products inserted, which is zero when the catalog already has data.
func (s *CatalogService) Seed(ctx context.Context) (int, error) {
	count, err := s.productRepo.CountProducts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error counting products")
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	products := seedProducts()
	for i := range products {
		if _, err := s.CreateProduct(ctx, &products[i]); err != nil {
			return i, fmt.Errorf("seed product %q: %w", products[i].Name, err)
		}
	}

	logger.Info().Msgf("Seeded %d products", len(products))
	return len(products), nil
}
