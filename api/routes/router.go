package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/threadline/warehouse-backend/api/controllers"
	"github.com/threadline/warehouse-backend/api/middleware"
	"github.com/threadline/warehouse-backend/internal/allocation"
	"github.com/threadline/warehouse-backend/internal/inventory"
	"github.com/threadline/warehouse-backend/pkg/config"
	"github.com/threadline/warehouse-backend/pkg/db"
	"github.com/threadline/warehouse-backend/pkg/enums"
	"github.com/threadline/warehouse-backend/pkg/logger"
	pkgredis "github.com/threadline/warehouse-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	registry *prometheus.Registry,
	inventoryService inventory.Service,
	allocationService allocation.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/inventory", func(r chi.Router) {
			r.Get("/{skuId}/balance", controllers.InventoryBalance(inventoryService, redisClient, cfg.Cache.BalanceTTL, logg))
			r.Get("/{skuId}/transactions", controllers.InventoryTransactions(inventoryService, logg))

			// Scanner accounts may receive stock but not correct it.
			r.Group(func(r chi.Router) {
				r.Post("/inward", controllers.InventoryInward(inventoryService, logg))
				r.Post("/quick-inward", controllers.InventoryQuickInward(inventoryService, logg))
				r.Post("/instant-inward", controllers.InventoryInstantInward(inventoryService, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAnyRole(logg, enums.RoleAdmin, enums.RoleStaff))
				r.Post("/outward", controllers.InventoryOutward(inventoryService, logg))
				r.Post("/adjust", controllers.InventoryAdjust(inventoryService, logg))
				r.Post("/allocate", controllers.InventoryAllocate(inventoryService, logg))
				r.Post("/undo", controllers.InventoryUndoInward(inventoryService, logg))
				r.Patch("/transactions/{txnId}", controllers.InventoryEditTransaction(inventoryService, logg))
				r.Delete("/transactions/{txnId}", controllers.InventoryDeleteTransaction(inventoryService, logg))
				r.Post("/transactions/{txnId}/undo", controllers.InventoryUndoTransaction(inventoryService, logg))
			})
		})

		r.Get("/v1/skus/{code}", controllers.SkuLookup(inventoryService, logg))

		r.Route("/v1/scan", func(r chi.Router) {
			r.Post("/instant", controllers.ScanInstantInward(inventoryService, logg))
			r.Post("/quick", controllers.ScanQuickInward(inventoryService, logg))
		})

		r.Route("/v1/transactions", func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, enums.RoleAdmin, enums.RoleStaff))
			r.Get("/{txnId}/matches", controllers.TransactionMatches(allocationService, logg))
			r.Post("/{txnId}/allocate", controllers.TransactionAllocate(allocationService, logg))
		})

		r.Route("/v1/rto", func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, enums.RoleAdmin, enums.RoleStaff))
			r.Post("/lines/{lineId}/receive", controllers.RTOReceiveLine(inventoryService, logg))
		})

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Delete("/transactions/{txnId}", controllers.AdminDeleteTransaction(inventoryService, logg))
		})
	})

	return r
}
