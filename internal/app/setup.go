// Package app contains the application setup for the store manager service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/dpaiva/storemanager/internal/config"
	"github.com/dpaiva/storemanager/internal/service"
	"github.com/dpaiva/storemanager/internal/store"
	"github.com/dpaiva/storemanager/internal/transport/rest"
	"github.com/dpaiva/storemanager/pkg/messaging"
	"github.com/dpaiva/storemanager/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependencies struct {
	ProductService service.ProductService
	SaleService    service.SaleService
	Logger         *slog.Logger
}

func SetupDependencies(dbPool *pgxpool.Pool, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	productStore := store.NewPgProductStore(dbPool)
	saleStore := store.NewPgSaleStore(dbPool)

	validator := service.NewStockValidator(productStore)
	adjuster := service.NewStockAdjuster(productStore, logger)

	return &Dependencies{
		ProductService: service.NewProductService(productStore),
		SaleService:    service.NewSaleService(saleStore, validator, adjuster, publisher, logger),
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewProductHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
	saleHandler := rest.NewSaleHandler(deps.SaleService, deps.Logger)
	saleHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
