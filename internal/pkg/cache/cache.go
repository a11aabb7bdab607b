// Package cache defines the cache port used by the catalog layer, with a
// Redis implementation for deployments and an in-memory one for tests and
// single-process setups.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is the port the catalog depends on. Get returns "" (no error) on a
// miss so callers treat misses and absent caches uniformly.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	GenerateKey(operation, key string) string
}

func generateKey(serviceName, operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", serviceName, operation, key)
}
