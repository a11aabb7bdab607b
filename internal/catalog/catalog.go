package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// PageSize is the fixed product listing page size.
const PageSize = 12

const categoryCacheTTL = 30 * time.Minute

// Catalog owns the filter state and the last fetched page. It is the single
// writer of both; concurrent readers see a consistent snapshot.
type Catalog struct {
	backend Backend
	cache   Cache

	mu         sync.Mutex
	filters    Filters
	page       PageResult
	fetched    bool
	categories []Category
	catsLoaded bool
}

// Cache is the subset of the cache port the catalog uses. A nil Cache is
// valid: the category vocabulary is then held in memory only.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	GenerateKey(operation, key string) string
}

// New creates a Catalog with default filters. cache may be nil.
func New(backend Backend, cache Cache) *Catalog {
	return &Catalog{
		backend: backend,
		cache:   cache,
		filters: DefaultFilters(),
	}
}

// Filters returns a copy of the current filter state.
func (c *Catalog) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.filters
	f.Categories = append([]string(nil), f.Categories...)
	return f
}

// SetFilters merges partial filter changes and re-fetches. Any change to
// categories, price bounds, sort or search resets the page to 1. Applying
// the same filters twice yields the same query and result.
func (c *Catalog) SetFilters(ctx context.Context, p Partial) (PageResult, error) {
	c.mu.Lock()
	merged, reset := c.filters.merge(p)
	c.filters = merged
	c.mu.Unlock()

	if reset {
		slog.InfoContext(ctx, "filters changed, page reset", "page", merged.Page)
	}
	return c.Fetch(ctx)
}

// Fetch requests the page matching the current filters. On failure the
// previously fetched page stays visible and the error is retryable via
// Refetch.
func (c *Catalog) Fetch(ctx context.Context) (PageResult, error) {
	c.mu.Lock()
	filters := c.filters
	c.mu.Unlock()

	result, err := c.backend.Products(ctx, filters)
	if err != nil {
		return c.Page(), err
	}

	c.mu.Lock()
	c.page = result
	c.fetched = true
	c.mu.Unlock()
	return result, nil
}

// Refetch re-issues the last query unchanged. It is the manual retry
// affordance behind every error state.
func (c *Catalog) Refetch(ctx context.Context) (PageResult, error) {
	return c.Fetch(ctx)
}

// Page returns the last successfully fetched page.
func (c *Catalog) Page() PageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// TotalPages derives the page count from the last fetch. Zero before the
// first successful fetch. Guarding against requesting a page beyond it is
// the caller's job (disable "next" at the boundary).
func (c *Catalog) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fetched || c.page.TotalCount == 0 {
		return 0
	}
	return (c.page.TotalCount + PageSize - 1) / PageSize
}

// Product fetches a single product by id, bypassing filter state.
func (c *Catalog) Product(ctx context.Context, id string) (Product, error) {
	return c.backend.Product(ctx, id)
}

// Featured returns the first n products of an unfiltered default listing,
// for homepage slicing.
func (c *Catalog) Featured(ctx context.Context, n int) ([]Product, error) {
	result, err := c.backend.Products(ctx, DefaultFilters())
	if err != nil {
		return nil, err
	}
	if n > len(result.Products) {
		n = len(result.Products)
	}
	return result.Products[:n], nil
}

// Categories returns the category vocabulary. It is fetched at most once per
// session; across sessions the shared cache absorbs repeat fetches.
func (c *Catalog) Categories(ctx context.Context) ([]Category, error) {
	c.mu.Lock()
	if c.catsLoaded {
		cats := c.categories
		c.mu.Unlock()
		return cats, nil
	}
	c.mu.Unlock()

	if cats, ok := c.cachedCategories(ctx); ok {
		c.storeCategories(cats)
		return cats, nil
	}

	cats, err := c.backend.Categories(ctx)
	if err != nil {
		return nil, err
	}
	c.storeCategories(cats)
	c.writeCategoryCache(ctx, cats)
	return cats, nil
}

// InvalidateCategories forces the next Categories call to hit the backend.
func (c *Catalog) InvalidateCategories(ctx context.Context) {
	c.mu.Lock()
	c.catsLoaded = false
	c.categories = nil
	c.mu.Unlock()
	if c.cache != nil {
		if err := c.cache.Delete(ctx, c.categoryCacheKey()); err != nil {
			slog.WarnContext(ctx, "category cache delete failed", "error", err)
		}
	}
}

func (c *Catalog) storeCategories(cats []Category) {
	c.mu.Lock()
	c.categories = cats
	c.catsLoaded = true
	c.mu.Unlock()
}

func (c *Catalog) categoryCacheKey() string {
	return c.cache.GenerateKey("categories", "all")
}

func (c *Catalog) cachedCategories(ctx context.Context) ([]Category, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, c.categoryCacheKey())
	if err != nil || raw == "" {
		return nil, false
	}
	var cats []Category
	if err := json.Unmarshal([]byte(raw), &cats); err != nil {
		return nil, false
	}
	return cats, true
}

func (c *Catalog) writeCategoryCache(ctx context.Context, cats []Category) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(cats)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, c.categoryCacheKey(), string(raw), categoryCacheTTL); err != nil {
		slog.WarnContext(ctx, "category cache write failed", "error", err)
	}
}
