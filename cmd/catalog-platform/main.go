package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/myspares/catalog-platform/internal/api/handlers"
	"github.com/myspares/catalog-platform/internal/api/middleware"
	"github.com/myspares/catalog-platform/internal/audit"
	"github.com/myspares/catalog-platform/internal/cache"
	"github.com/myspares/catalog-platform/internal/cascade"
	"github.com/myspares/catalog-platform/internal/config"
	"github.com/myspares/catalog-platform/internal/feed"
	"github.com/myspares/catalog-platform/internal/health"
	"github.com/myspares/catalog-platform/internal/janitor"
	"github.com/myspares/catalog-platform/internal/metrics"
	"github.com/myspares/catalog-platform/internal/reconciler"
	repository "github.com/myspares/catalog-platform/internal/repositories"
	service "github.com/myspares/catalog-platform/internal/services"
	"github.com/myspares/catalog-platform/internal/telemetry"
	"github.com/myspares/catalog-platform/pkg/sendGrid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	rootCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Tracing setup
	shutdownTracing, err := telemetry.Setup(rootCtx, "catalog-platform", cfg.Env)
	if err != nil {
		slog.Warn("⚠️ Tracing disabled", slog.String("error", err.Error()))

		shutdownTracing = func(context.Context) error { return nil }
	}

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	rateLimiter := repository.NewRateLimitRepo(redisClient, cfg)
	productCache := cache.NewRedisCache(redisClient, &cfg.Cache)

	jwtKey := []byte(cfg.Security.JWTKey)
	sendGridClient := sendGrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	// The deleter probes transaction support once and degrades to
	// best-effort level-by-level deletes when the store refuses them.
	subtreeDeleter := cascade.NewSubtreeDeleter(repos.DB, cfg.Cascade.TxTimeout)

	catalogService := service.NewCatalogService(repos.Brand, repos.BikeModel, repos.Category, repos.Product, subtreeDeleter, productCache)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	cartService := service.NewCartService(repos.Cart, repos.Product)
	cartHandler := handlers.NewCartHandler(cartService)
	userService := service.NewUserService(repos.User, rateLimiter, sendGridClient, jwtKey, cfg.Security.JWTExpiryHours)
	userHandler := handlers.NewUserHandler(userService)
	auditService := service.NewAuditService(repos.Audit)
	auditHandler := handlers.NewAuditHandler(auditService)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey, repos.User)

	// Change feed wiring. The audit logger sees every watched collection;
	// the reconciler only cares about products. Handlers run in
	// registration order, so a product event is audited before any cart
	// is touched.
	listener := feed.NewListener(cfg.Feed, cfg.Database.GetDSN())
	auditLogger := audit.NewLogger(repos.Audit)
	cartReconciler := reconciler.New(repos.Product, repos.Cart, repos.Audit)

	for _, collection := range feed.WatchedCollections() {
		listener.Register(collection, auditLogger)
	}

	listener.Register(feed.CollectionProducts, cartReconciler)
	listener.Register(feed.CollectionProducts, feed.HandlerFunc(func(ctx context.Context, event *feed.ChangeEvent) {
		// keep the read cache honest; delete payloads carry the old
		// row's codes, so cascade-removed products drop out too
		if product, err := event.Product(); err == nil && product.ProductCode != "" {
			_ = productCache.Delete(ctx, cache.Key(cache.ProductKeyPrefix, product.ProductCode))
		}
	}))

	// NOTIFY drops anything sent while the connection was down, so a
	// reconnect triggers a full cart resync as catch-up.
	listener.OnReconnect = func(ctx context.Context, collection feed.Collection) {
		if collection == feed.CollectionProducts {
			cartReconciler.ResyncAllCarts(ctx)
		}
	}

	listener.Start(rootCtx)

	// Janitor setup
	sweeper := janitor.New(cfg.Janitor, repos.User, repos.Audit)
	sweeper.Start(rootCtx)

	// Health endpoint
	healthHandler, err := health.NewHealthHandler(cfg, &health.Endpoints{DB: repos.DB, RedisClient: redisClient})
	if err != nil {
		slog.Error("❌ Error building health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()

	routerMux.HandleFunc("POST /api/v1/users/register", userHandler.Register())
	routerMux.HandleFunc("POST /api/v1/users/verify", userHandler.VerifyRegistration())
	routerMux.HandleFunc("POST /api/v1/users/login", userHandler.Login())
	routerMux.HandleFunc("POST /api/v1/users/logout", authMiddleware.Authenticate(userHandler.Logout()))
	routerMux.HandleFunc("GET /api/v1/users/profile", authMiddleware.Authenticate(userHandler.Profile()))

	routerMux.HandleFunc("GET /api/v1/brands", catalogHandler.ListBrands())
	routerMux.HandleFunc("POST /api/v1/brands", authMiddleware.Authenticate(catalogHandler.CreateBrand()))
	routerMux.HandleFunc("GET /api/v1/brands/{brandCode}", catalogHandler.GetBrand())
	routerMux.HandleFunc("DELETE /api/v1/brands/{brandCode}", authMiddleware.Authenticate(catalogHandler.DeleteBrand()))
	routerMux.HandleFunc("GET /api/v1/brands/{brandCode}/models", catalogHandler.ListModels())
	routerMux.HandleFunc("POST /api/v1/brands/{brandCode}/models", authMiddleware.Authenticate(catalogHandler.CreateModel()))
	routerMux.HandleFunc("DELETE /api/v1/models/{modelCode}", authMiddleware.Authenticate(catalogHandler.DeleteModel()))
	routerMux.HandleFunc("GET /api/v1/models/{modelCode}/categories", catalogHandler.ListCategories())
	routerMux.HandleFunc("POST /api/v1/models/{modelCode}/categories", authMiddleware.Authenticate(catalogHandler.CreateCategory()))
	routerMux.HandleFunc("DELETE /api/v1/categories/{categoryCode}", authMiddleware.Authenticate(catalogHandler.DeleteCategory()))
	routerMux.HandleFunc("GET /api/v1/categories/{categoryCode}/products", catalogHandler.ListProducts())
	routerMux.HandleFunc("POST /api/v1/categories/{categoryCode}/products", authMiddleware.Authenticate(catalogHandler.CreateProduct()))
	routerMux.HandleFunc("GET /api/v1/products/{productCode}", catalogHandler.GetProduct())
	routerMux.HandleFunc("PATCH /api/v1/products/{productCode}", authMiddleware.Authenticate(catalogHandler.UpdateProduct()))
	routerMux.HandleFunc("DELETE /api/v1/products/{productCode}", authMiddleware.Authenticate(catalogHandler.DeleteProduct()))
	routerMux.HandleFunc("GET /api/v1/products/{productCode}/stock", catalogHandler.GetStock())
	routerMux.HandleFunc("POST /api/v1/products/{productCode}/stock/add", authMiddleware.Authenticate(catalogHandler.AddStock()))
	routerMux.HandleFunc("POST /api/v1/products/{productCode}/stock/reduce", authMiddleware.Authenticate(catalogHandler.ReduceStock()))

	routerMux.HandleFunc("GET /api/v1/carts", authMiddleware.Authenticate(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/carts/items", authMiddleware.Authenticate(cartHandler.AddItem()))
	routerMux.HandleFunc("DELETE /api/v1/carts/items", authMiddleware.Authenticate(cartHandler.RemoveItem()))

	routerMux.HandleFunc("GET /api/v1/audit", authMiddleware.Authenticate(auditHandler.Query()))

	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = middleware.Logging(handler)
	handler = metrics.Middleware(handler)
	handler = otelhttp.NewHandler(handler, "catalog-platform")

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	// Stop the feed workers and the janitor, then flush spans.
	stopWorkers()
	listener.Wait()
	sweeper.Wait()

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Warn("⚠️ Trace flush failed", slog.String("error", err.Error()))
	}

	slog.Info("✅ Background workers stopped")
}
