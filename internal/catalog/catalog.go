package catalog

import (
	"context"
	"fmt"
	"time"

	"cart-service/internal/models"
	"cart-service/internal/redisclient"
	"cart-service/internal/store"
	"cart-service/internal/util"

	"go.uber.org/zap"
)

const cacheTTL = 10 * time.Minute

// Supplier serves read-only catalog records to the storefront. Lookups go
// through the Redis cache with the database as the source of truth; the
// cart never mutates what it gets back.
type Supplier struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewSupplier creates a new catalog supplier
func NewSupplier(store *store.Store, redis *redisclient.Client) *Supplier {
	return &Supplier{
		store:  store,
		redis:  redis,
		logger: util.ComponentLogger("catalog"),
	}
}

// GetProduct retrieves a product by ID (fast path via Redis)
func (s *Supplier) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogSupplier.GetProduct")
	defer span.End()

	cached, err := s.redis.GetCachedProduct(ctx, productID)
	if err != nil {
		s.logger.Warn("Product cache read failed, falling back to DB",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.redis.CacheProduct(ctx, product, cacheTTL); err != nil {
		s.logger.Warn("Failed to cache product",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}

	return product, nil
}

// ListProducts retrieves the full catalog, optionally filtered by category.
func (s *Supplier) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogSupplier.ListProducts")
	defer span.End()

	if category != "" {
		return s.store.GetProductsByCategory(ctx, category)
	}
	return s.store.GetProducts(ctx)
}

// NewArrivals retrieves products flagged as new
func (s *Supplier) NewArrivals(ctx context.Context) ([]models.Product, error) {
	return s.store.GetNewArrivals(ctx)
}

// Bestsellers retrieves products flagged as bestsellers
func (s *Supplier) Bestsellers(ctx context.Context) ([]models.Product, error) {
	return s.store.GetBestsellers(ctx)
}

// SaleProducts retrieves marked-down products
func (s *Supplier) SaleProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.GetSaleProducts(ctx)
}

// SyncCatalogToRedis warms the product cache from the database
func (s *Supplier) SyncCatalogToRedis(ctx context.Context) error {
	s.logger.Info("Starting catalog sync to Redis")

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to get products: %w", err)
	}

	for i := range products {
		if err := s.redis.CacheProduct(ctx, &products[i], cacheTTL); err != nil {
			s.logger.Error("Failed to cache product",
				zap.Int64("product_id", products[i].ID),
				zap.Error(err))
		}
	}

	s.logger.Info("Catalog sync completed", zap.Int("count", len(products)))
	return nil
}
