// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package catalog provides the storefront backend service.
//
// This package contains the main Service type that coordinates all
// components: HTTP routing, the MongoDB store, the identity resolver,
// the favorites service, the catalog linker, the rating aggregator,
// outbound notifications, and observability infrastructure.
//
// # Usage
//
//	cfg := catalog.Config{Port: 5000, MongoURI: "mongodb://localhost:27017"}
//	svc, err := catalog.New(context.Background(), cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/fifthjohnson/storefront/pkg/httpcache"
	"github.com/fifthjohnson/storefront/pkg/logging"
	"github.com/fifthjohnson/storefront/pkg/perf"
	"github.com/fifthjohnson/storefront/services/catalog/favorites"
	"github.com/fifthjohnson/storefront/services/catalog/identity"
	"github.com/fifthjohnson/storefront/services/catalog/imagestore"
	"github.com/fifthjohnson/storefront/services/catalog/linkage"
	"github.com/fifthjohnson/storefront/services/catalog/middleware"
	"github.com/fifthjohnson/storefront/services/catalog/notify"
	"github.com/fifthjohnson/storefront/services/catalog/observability"
	"github.com/fifthjohnson/storefront/services/catalog/rating"
	"github.com/fifthjohnson/storefront/services/catalog/routes"
	"github.com/fifthjohnson/storefront/services/catalog/store"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// =============================================================================
// Interface Definition
// =============================================================================

// Service is the catalog service lifecycle.
//
// Run blocks until the server stops. Router exposes the configured Gin
// engine for integration tests.
type Service interface {
	Run() error
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds catalog service configuration. Zero values use defaults
// where noted; MongoURI and JWTSecret have none and must be set.
type Config struct {
	// Port is the HTTP server port. Default: 5000.
	Port int

	// MongoURI is the MongoDB connection string. Required.
	MongoURI string

	// Database is the database name. Default: "storefront".
	Database string

	// GinMode sets the Gin framework mode ("debug", "release", "test").
	// Default: uses the GIN_MODE env var or "debug".
	GinMode string

	// JWTSecret signs account tokens. Required.
	JWTSecret string

	// AdminAPIKey gates /v1/admin routes. Empty disables them.
	AdminAPIKey string

	// LogLevel is one of "debug", "info", "warn", "error". Default: "info".
	LogLevel string

	// LogDir enables JSON file logging when non-empty.
	LogDir string

	// ProductCacheTTL is the product listing cache lifetime. Default: 1 hour.
	ProductCacheTTL time.Duration

	// CollectionCacheTTL is the collection listing cache lifetime.
	// Collections change less often than products. Default: 2 hours.
	CollectionCacheTTL time.Duration

	// CacheMaxEntries bounds each response cache. Default: 1024.
	CacheMaxEntries int

	// RateLimitPerSecond is the per-IP request rate. Default: 20.
	RateLimitPerSecond float64

	// RateLimitBurst is the per-IP burst allowance. Default: 40.
	RateLimitBurst int

	// SMTP configures outbound email. A zero Host disables email.
	SMTP notify.SMTPConfig

	// WhatsApp configures the staff alert channel. A zero AccessToken
	// disables it.
	WhatsApp notify.WhatsAppConfig

	// AlertPhone receives staff WhatsApp pings for contact inquiries.
	AlertPhone string

	// Cloudinary configures image deletion. A zero CloudName disables
	// provider-side cleanup (detached images are orphaned, not leaked).
	Cloudinary imagestore.Config
}

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 5000
	}
	if cfg.Database == "" {
		cfg.Database = "storefront"
	}
	if cfg.ProductCacheTTL == 0 {
		cfg.ProductCacheTTL = time.Hour
	}
	if cfg.CollectionCacheTTL == 0 {
		cfg.CollectionCacheTTL = 2 * time.Hour
	}
	if cfg.CacheMaxEntries == 0 {
		cfg.CacheMaxEntries = 1024
	}
	if cfg.RateLimitPerSecond == 0 {
		cfg.RateLimitPerSecond = 20
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 40
	}
	return cfg
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use. All fields are
// read-only after New returns.
type service struct {
	config Config
	log    *logging.Logger
	router *gin.Engine
	client mongoDisconnector
	store  *store.Store
}

// mongoDisconnector is the slice of the Mongo client the service needs
// for shutdown.
type mongoDisconnector interface {
	Disconnect(ctx context.Context) error
}

// =============================================================================
// Constructor
// =============================================================================

// New creates a catalog Service: connects to MongoDB, ensures indexes,
// builds the domain components, and wires the routes.
func New(ctx context.Context, cfg Config) (Service, error) {
	cfg = applyConfigDefaults(cfg)
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MongoURI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWTSecret is required")
	}

	log := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		LogDir:  cfg.LogDir,
		Service: "catalog",
	})

	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Close()
		return nil, err
	}
	st := store.New(client.Database(cfg.Database))
	if err := st.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		log.Close()
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	s := &service{
		config: cfg,
		log:    log,
		client: client,
		store:  st,
	}
	s.initRouter()

	log.Info("catalog service initialized",
		"database", cfg.Database, "version", Version)
	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until it stops.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.log.Info("starting catalog server", "port", s.config.Port)
	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}

	slogger := s.log.Slog()
	resolver := identity.NewResolver(s.store, s.store, slogger)
	favs := favorites.NewService(s.store, s.store, slogger)
	aggregator := rating.NewAggregator(s.store, s.store, slogger)

	var images linkage.ImageDeleter
	if s.config.Cloudinary.CloudName != "" {
		images = imagestore.NewClient(s.config.Cloudinary)
	}
	linker := linkage.NewLinker(s.store, images, slogger)

	var email notify.EmailSender
	if s.config.SMTP.Host != "" {
		email = notify.NewSMTPSender(s.config.SMTP)
	}
	var whatsapp notify.WhatsAppSender
	if s.config.WhatsApp.AccessToken != "" {
		whatsapp = notify.NewWhatsAppClient(s.config.WhatsApp)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	routes.SetupRoutes(router, routes.Deps{
		Store:     s.store,
		Resolver:  resolver,
		Favorites: favs,
		Linker:    linker,
		Rating:    aggregator,

		Email:    email,
		WhatsApp: whatsapp,
		Images:   images,

		ProductCache:    httpcache.New(s.config.ProductCacheTTL, s.config.CacheMaxEntries),
		CollectionCache: httpcache.New(s.config.CollectionCacheTTL, s.config.CacheMaxEntries),

		Limiter:  middleware.NewRateLimiter(rate.Limit(s.config.RateLimitPerSecond), s.config.RateLimitBurst),
		Metrics:  observability.NewRequestMetrics(prometheus.DefaultRegisterer),
		Recorder: perf.NewRecorder(256, time.Second),
		Log:      s.log,

		JWTSecret:  []byte(s.config.JWTSecret),
		AdminKey:   s.config.AdminAPIKey,
		AlertPhone: s.config.AlertPhone,
		Version:    Version,
	})

	s.router = router
}

func (s *service) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.client != nil {
		if err := s.client.Disconnect(ctx); err != nil {
			s.log.Warn("mongo disconnect failed", "error", err)
		}
	}
	_ = s.log.Close()
}
