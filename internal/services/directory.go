package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aaravmahajanofficial/pos-terminal/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-terminal/internal/cache"
	"github.com/aaravmahajanofficial/pos-terminal/internal/config"
	"github.com/aaravmahajanofficial/pos-terminal/internal/errors"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend"
)

const catalogCacheID = "all"

// ProductDirectory is a session's snapshot of the inventory. The cart reads
// stock and names from it; scanning adds to it as products are resolved.
type ProductDirectory interface {
	Refresh(ctx context.Context) error
	Get(ctx context.Context, productID string) (*models.Product, error)
	Lookup(productID string) (models.Product, bool)
	Remember(product models.Product)
	Products() []models.Product
}

type productDirectory struct {
	mu       sync.RWMutex
	client   backend.Client
	cache    cache.Cache
	cfg      config.CacheConfig
	products map[string]models.Product
	order    []string
}

func NewProductDirectory(client backend.Client, c cache.Cache, cfg config.CacheConfig) ProductDirectory {
	return &productDirectory{
		client:   client,
		cache:    c,
		cfg:      cfg,
		products: make(map[string]models.Product),
	}
}

// Refresh replaces the snapshot with the backend catalog, falling back to the last cached catalog.
func (d *productDirectory) Refresh(ctx context.Context) error {
	logger := middleware.LoggerFromContext(ctx)
	key := cache.Key(cache.CatalogKeyPrefix, catalogCacheID)

	products, err := d.client.ListProducts(ctx)
	if err != nil {
		var cached []models.Product
		found, cacheErr := d.cache.Get(ctx, key, &cached)
		if cacheErr != nil || !found {
			logger.Error("Failed to load product catalog", slog.String("error", err.Error()))
			return errors.TransportError("Failed to load products").WithError(err)
		}

		logger.Warn("Using cached product catalog", slog.String("error", err.Error()), slog.Int("count", len(cached)))
		products = cached
	} else if err := d.cache.Set(ctx, key, products, d.cfg.DefaultTTL); err != nil {
		logger.Warn("Failed to cache product catalog", slog.String("error", err.Error()))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.products = make(map[string]models.Product, len(products))
	d.order = d.order[:0]

	for _, p := range products {
		if _, dup := d.products[p.ID]; !dup {
			d.order = append(d.order, p.ID)
		}
		d.products[p.ID] = p
	}

	return nil
}

// Get returns a full product record, from the cache when fresh, otherwise from the backend.
func (d *productDirectory) Get(ctx context.Context, productID string) (*models.Product, error) {
	logger := middleware.LoggerFromContext(ctx)

	if productID == "" {
		return nil, errors.AddValidationError("productId", "is required")
	}

	key := cache.Key(cache.ProductKeyPrefix, productID)

	var cached models.Product
	if found, err := d.cache.Get(ctx, key, &cached); err != nil {
		logger.Warn("Product cache read failed", slog.String("product_id", productID), slog.String("error", err.Error()))
	} else if found {
		// the cached record may be older than the catalog snapshot
		d.rememberIfAbsent(cached)
		return &cached, nil
	}

	product, err := d.client.GetProduct(ctx, productID)
	if err != nil {
		if backend.IsNotFound(err) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}
		if backend.IsUnauthorized(err) {
			return nil, errors.UnauthorizedError("Backend rejected the session token").WithError(err)
		}
		return nil, errors.TransportError("Failed to load product").WithError(err)
	}

	if err := d.cache.Set(ctx, key, product, d.cfg.ProductTTL); err != nil {
		logger.Warn("Failed to cache product", slog.String("product_id", productID), slog.String("error", err.Error()))
	}

	d.Remember(*product)

	return product, nil
}

// Lookup implements cart.Catalog.
func (d *productDirectory) Lookup(productID string) (models.Product, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.products[productID]

	return p, ok
}

// Remember records a product seen outside the initial catalog load, such as a scan result.
func (d *productDirectory) Remember(product models.Product) {
	if product.ID == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.products[product.ID]; !ok {
		d.order = append(d.order, product.ID)
	}
	d.products[product.ID] = product
}

func (d *productDirectory) rememberIfAbsent(product models.Product) {
	if product.ID == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.products[product.ID]; ok {
		return
	}

	d.order = append(d.order, product.ID)
	d.products[product.ID] = product
}

func (d *productDirectory) Products() []models.Product {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.Product, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.products[id])
	}

	return out
}
