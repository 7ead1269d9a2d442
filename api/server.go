// Package api - Thin HTTP layer over the quote engine and the pricing store
// The API is ONLY responsible for: input binding, engine and store calls, output serialization.
// The API NEVER performs pricing logic.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cleanquote/core/engine"
	"cleanquote/core/pricing"
	"cleanquote/core/types"
	"cleanquote/internal/logging"
)

// Store is the configuration store the API reads and writes.
// *pricing.Store implements it.
type Store interface {
	Snapshot() *pricing.Snapshot
	ReplaceSettings(ctx context.Context, settings pricing.Settings) (*pricing.Snapshot, error)
	ReplacePV(ctx context.Context, cfg pricing.PVConfig) (*pricing.Snapshot, error)
	ReplaceStairwell(ctx context.Context, cfg pricing.StairwellConfig) (*pricing.Snapshot, error)
	ReplaceGlass(ctx context.Context, cfg pricing.GlassConfig) (*pricing.Snapshot, error)
	ReplaceMaintenance(ctx context.Context, cfg pricing.MaintenanceConfig) (*pricing.Snapshot, error)
	CreateCity(ctx context.Context, city pricing.CityPricing) (pricing.CityPricing, error)
	UpdateCity(ctx context.Context, id string, city pricing.CityPricing) (pricing.CityPricing, error)
	DeleteCity(ctx context.Context, id string) error
}

// Quoter prices requests. *engine.Engine implements it.
type Quoter interface {
	Quote(ctx context.Context, req types.QuoteRequest) (*engine.Quote, error)
}

// Options configures a Server
type Options struct {
	Version string
	Company string
	Engine  Quoter
	Store   Store
	Metrics *Metrics
}

// Server is the API server
type Server struct {
	router  *gin.Engine
	engine  Quoter
	store   Store
	metrics *Metrics
	version string
	company string
	now     func() time.Time
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}

	router := gin.New()
	s := &Server{
		router:  router,
		engine:  opts.Engine,
		store:   opts.Store,
		metrics: opts.Metrics,
		version: opts.Version,
		company: opts.Company,
		now:     time.Now,
		logger:  logging.Named("api"),
	}

	router.Use(requestLogger(s.logger), recovery(s.logger))
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	pricingGroup := s.router.Group("/pricing")
	{
		pricingGroup.POST("/calculate", s.handleCalculate)
		pricingGroup.POST("/calculate/pdf", s.handleCalculatePDF)

		pricingGroup.GET("/settings", s.handleGetSettings)
		pricingGroup.PUT("/settings", s.handlePutSettings)
		pricingGroup.PUT("/settings/:section", s.handlePutSection)

		pricingGroup.GET("/cities", s.handleListCities)
		pricingGroup.POST("/cities", s.handleCreateCity)
		pricingGroup.PUT("/cities/:id", s.handleUpdateCity)
		pricingGroup.DELETE("/cities/:id", s.handleDeleteCity)

		pricingGroup.GET("/export.xlsx", s.handleExportXLSX)
	}

	// Supporting endpoints
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/version", s.handleVersion)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
