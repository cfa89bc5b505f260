package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/papertrade/paper-trading-backend/internal/api/handlers"
	custommiddleware "github.com/papertrade/paper-trading-backend/internal/api/middleware"
	"github.com/papertrade/paper-trading-backend/internal/config"
	"github.com/papertrade/paper-trading-backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	portfolioService *service.PortfolioService,
	valuationService *service.ValuationService,
	executionService *service.ExecutionService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	auth := custommiddleware.NewAuth(cfg.Auth)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace, unauthenticated
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Use(auth)
			portfolioHandler := handlers.NewPortfolioHandler(portfolioService, valuationService)
			r.Post("/", portfolioHandler.Create)
			r.Get("/", portfolioHandler.Get)
			r.Get("/holdings", portfolioHandler.Holdings)
			r.Delete("/", portfolioHandler.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(auth)
			orderHandler := handlers.NewOrderHandler(executionService)
			r.Post("/", orderHandler.Place)
			r.Get("/", orderHandler.List)
		})
	})

	return r
}
