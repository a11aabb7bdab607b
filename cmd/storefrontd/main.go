package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/jcmexdev/storefront/internal/api"
	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/cart/mergelog"
	mergesqlite "github.com/jcmexdev/storefront/internal/cart/mergelog/sqlite"
	"github.com/jcmexdev/storefront/internal/catalog"
	"github.com/jcmexdev/storefront/internal/gateway/httpx"
	"github.com/jcmexdev/storefront/internal/localstore"
	"github.com/jcmexdev/storefront/internal/order"
	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront/internal/session"
)

func main() {
	telemetry.InitLogger()
	ctx := context.Background()

	if shutdown, err := telemetry.SetupTracer(ctx, "storefrontd"); err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		defer func() { _ = shutdown(context.Background()) }()
	}

	httpAddr := getEnv("HTTP_ADDR", ":8080")
	apiBase := getEnv("API_BASE_URL", "http://localhost:8000/api")
	localPath := getEnv("LOCALSTORE_PATH", "./data/storefront.db")
	mergeLogPath := getEnv("MERGELOG_PATH", "./data/mergelog.db")

	store, err := localstore.Open(localPath)
	if err != nil {
		log.Fatalf("open local store: %v", err)
	}
	defer store.Close()

	var mergeRepo mergelog.Repository
	if repo, err := mergesqlite.Open(mergeLogPath); err != nil {
		// The engine is nil-safe here: merges still run, just unlogged.
		slog.Warn("merge log disabled", "error", err)
	} else {
		mergeRepo = repo
		defer repo.Close()
	}

	var c cache.Cache
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		c = cache.NewRedisCache(redisAddr, "storefront")
	} else {
		c = cache.NewMemoryCache("storefront")
	}

	client := api.New(apiBase)

	cat := catalog.New(catalog.NewAPIBackend(client), c)
	cartMgr := cart.NewManager(cart.NewGuestStore(store), cart.NewServerStore(client), mergeRepo)
	sess := session.NewManager(session.NewAPIBackend(client), client, store)
	orders := order.NewService(order.NewAPIBackend(client), cartMgr, sess)

	// Resume a persisted session so the server cart is active immediately.
	if restored, err := sess.Restore(ctx); err != nil {
		slog.Warn("session restore failed", "error", err)
	} else if restored != nil {
		if _, err := cartMgr.Login(ctx); err != nil {
			slog.Warn("cart activation on restore failed", "error", err)
		}
	}

	handler := httpx.NewHandler(cat, cartMgr, orders, sess)
	router := httpx.NewRouter(handler)

	slog.Info("storefront gateway running", "addr", httpAddr, "backend", apiBase)
	if err := http.ListenAndServe(httpAddr, router); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
