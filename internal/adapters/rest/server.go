package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"search-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// MetricsHandler - то, что роутер берет у адаптера метрик.
type MetricsHandler interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

// RouterConfig - все обработчики и настройки роутера.
type RouterConfig struct {
	Properties   *PropertiesHandler
	Favorites    *FavoritesHandler
	SavedFilters *SavedFiltersHandler
	Tools        *ToolsHandler
	Analytics    *AnalyticsHandler

	// Metrics может быть nil, тогда /metrics не регистрируется
	Metrics            MetricsHandler
	CORSAllowedOrigins []string
}

// NewRouter собирает chi-роутер с middleware и маршрутами /api/v1.
func NewRouter(cfg RouterConfig, baseLogger port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(baseLogger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", userIDHeader, traceIDHeader},
		ExposedHeaders: []string{traceIDHeader},
		MaxAge:         300,
	}))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.SetHeader("Content-Type", "application/json"))

			h := cfg.Properties
			r.Get("/properties", h.SearchFromQuery)
			r.Post("/properties", h.Create)
			r.Get("/properties/nearby", h.FindNearby)
			r.Get("/properties/{propertyID}", h.GetDetails)
			r.Get("/properties/{propertyID}/similar", h.FindSimilar)
			r.Patch("/properties/{propertyID}/status", h.UpdateStatus)

			r.Post("/search", h.SearchFromBody)
			r.Get("/search/suggestions", h.GetSuggestions)
			r.Get("/search/locations", h.GetLocations)
			r.Get("/search/amenities", h.GetAmenities)

			r.Post("/tools/mortgage", cfg.Tools.CalculateMortgage)
			r.Post("/tools/compare", cfg.Tools.CompareProperties)

			r.Get("/analytics/market", cfg.Analytics.GetMarket)
		})

		// приватные маршруты, пользователь приходит в X-User-ID от API Gateway
		r.Group(func(r chi.Router) {
			r.Use(middleware.SetHeader("Content-Type", "application/json"))
			r.Use(AuthMiddleware)

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", cfg.Favorites.List)
				r.Post("/", cfg.Favorites.AddFromBody)
				r.Post("/{propertyID}", cfg.Favorites.Add)
				r.Delete("/{propertyID}", cfg.Favorites.Remove)
				r.Post("/{propertyID}/toggle", cfg.Favorites.Toggle)
			})

			r.Get("/saved-filters", cfg.SavedFilters.Get)
			r.Put("/saved-filters", cfg.SavedFilters.Put)
			r.Delete("/saved-filters", cfg.SavedFilters.Delete)
		})
	})

	return r
}

// Server - REST API сервер.
type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

func NewServer(portNum string, handler http.Handler, baseLogger port.LoggerPort) *Server {
	srv := &http.Server{
		Addr:              ":" + portNum,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     baseLogger.WithFields(port.Fields{"component": "rest_server"}),
	}
}

// Start запускает HTTP-сервер и блокируется до остановки.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
