// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fifthjohnson/storefront/pkg/httpcache"
	"github.com/fifthjohnson/storefront/pkg/logging"
	"github.com/fifthjohnson/storefront/pkg/perf"
	"github.com/fifthjohnson/storefront/services/catalog/favorites"
	"github.com/fifthjohnson/storefront/services/catalog/handlers"
	"github.com/fifthjohnson/storefront/services/catalog/identity"
	"github.com/fifthjohnson/storefront/services/catalog/linkage"
	"github.com/fifthjohnson/storefront/services/catalog/middleware"
	"github.com/fifthjohnson/storefront/services/catalog/notify"
	"github.com/fifthjohnson/storefront/services/catalog/observability"
	"github.com/fifthjohnson/storefront/services/catalog/rating"
	"github.com/fifthjohnson/storefront/services/catalog/store"
)

// Deps carries everything the route table wires together.
type Deps struct {
	Store     *store.Store
	Resolver  *identity.Resolver
	Favorites *favorites.Service
	Linker    *linkage.Linker
	Rating    *rating.Aggregator

	Email    notify.EmailSender
	WhatsApp notify.WhatsAppSender
	Images   linkage.ImageDeleter

	// Product and collection listings cache separately so each class
	// can carry its own TTL.
	ProductCache    *httpcache.Cache
	CollectionCache *httpcache.Cache

	Limiter  *middleware.RateLimiter
	Metrics  *observability.RequestMetrics
	Recorder *perf.Recorder
	Log      *logging.Logger

	JWTSecret  []byte
	AdminKey   string
	AlertPhone string
	Version    string
}

// SetupRoutes installs every endpoint on the router.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.Health(deps.Version))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.Use(middleware.Metrics(deps.Metrics, deps.Recorder))

	// API version 1 group
	v1 := router.Group("/v1")
	v1.Use(deps.Limiter.Middleware(deps.Metrics))
	v1.Use(middleware.SessionMiddleware(deps.Resolver, deps.Log))
	v1.Use(middleware.OptionalAuth(deps.JWTSecret))
	{
		// Public catalog. Listings go through the response caches; the
		// admin group clears both after every write.
		cachedProducts := middleware.CacheResponses(deps.ProductCache, deps.Metrics)
		cachedCollections := middleware.CacheResponses(deps.CollectionCache, deps.Metrics)
		v1.GET("/products", cachedProducts, handlers.ListProducts(deps.Store, deps.Log))
		v1.GET("/products/:id", cachedProducts, handlers.GetProduct(deps.Store, deps.Log))
		v1.GET("/products/slug/:slug", cachedProducts, handlers.GetProductBySlug(deps.Store, deps.Log))
		v1.GET("/products/:id/reviews", handlers.ListProductReviews(deps.Store, deps.Log))
		v1.POST("/products/:id/reviews", handlers.CreateReview(deps.Store, deps.Rating, deps.Log))

		v1.GET("/collections", cachedCollections, handlers.ListCollections(deps.Store, deps.Log))
		v1.GET("/collections/:id", cachedCollections, handlers.GetCollection(deps.Store, deps.Log))
		v1.GET("/collections/slug/:slug", cachedCollections, handlers.GetCollectionBySlug(deps.Store, deps.Log))

		// Favorites follow the resolved identity: account when a token
		// is present, anonymous session otherwise.
		favoritesGroup := v1.Group("/favorites")
		{
			favoritesGroup.GET("", handlers.GetFavorites(deps.Favorites, deps.Log))
			favoritesGroup.POST("", handlers.AddFavorite(deps.Favorites, deps.Log))
			favoritesGroup.DELETE("", handlers.ClearFavorites(deps.Favorites, deps.Log))
			favoritesGroup.DELETE("/:productId", handlers.RemoveFavorite(deps.Favorites, deps.Log))
		}

		auth := v1.Group("/auth")
		{
			auth.POST("/register", handlers.Register(deps.Store, deps.Resolver, deps.JWTSecret, deps.Log))
			auth.POST("/login", handlers.Login(deps.Store, deps.Resolver, deps.JWTSecret, deps.Log))
			auth.POST("/logout", handlers.Logout(deps.Resolver, deps.Log))
			auth.GET("/me", middleware.RequireAuth(deps.JWTSecret), handlers.Me(deps.Store, deps.Log))
		}

		v1.POST("/contact", handlers.SubmitContact(deps.Store, handlers.ContactNotifier{
			Email:      deps.Email,
			WhatsApp:   deps.WhatsApp,
			AlertPhone: deps.AlertPhone,
		}, deps.Log))

		// Staff routes
		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin(deps.AdminKey))
		admin.Use(middleware.InvalidateCache(deps.ProductCache, deps.CollectionCache))
		{
			admin.GET("/products", handlers.AdminListProducts(deps.Store, deps.Log))
			admin.POST("/products", handlers.CreateProduct(deps.Store, deps.Log))
			admin.PATCH("/products/:id", handlers.UpdateProduct(deps.Store, deps.Log))
			admin.DELETE("/products/:id", handlers.DeleteProduct(deps.Store, deps.Log))
			admin.POST("/products/:id/images", handlers.SetProductImage(deps.Store, deps.Log))
			admin.DELETE("/products/:id/images", handlers.RemoveProductImage(deps.Store, deps.Images, deps.Log))
			admin.POST("/products/:id/recompute-rating", handlers.RecomputeProductRating(deps.Rating, deps.Log))

			admin.GET("/collections", handlers.AdminListCollections(deps.Store, deps.Log))
			admin.POST("/collections", handlers.CreateCollection(deps.Store, deps.Log))
			admin.PATCH("/collections/:id", handlers.UpdateCollection(deps.Store, deps.Log))
			admin.DELETE("/collections/:id", handlers.DeleteCollection(deps.Linker, deps.Log))
			admin.POST("/collections/:id/products", handlers.AddProductsToCollection(deps.Linker, deps.Log))
			admin.DELETE("/collections/:id/products", handlers.RemoveProductsFromCollection(deps.Linker, deps.Log))
			admin.PUT("/collections/:id/image", handlers.SetCollectionImage(deps.Store, deps.Images, deps.Log))

			admin.GET("/reviews", handlers.AdminListReviews(deps.Store, deps.Log))
			admin.PATCH("/reviews/:id/approve", handlers.ApproveReview(deps.Store, deps.Rating, deps.Log))
			admin.POST("/reviews/:id/respond", handlers.RespondToReview(deps.Store, deps.Rating, deps.Email, deps.Log))
			admin.DELETE("/reviews/:id", handlers.DeleteReview(deps.Store, deps.Rating, deps.Log))

			admin.GET("/messages", handlers.ListMessages(deps.Store, deps.Log))
			admin.GET("/messages/:id", handlers.GetMessage(deps.Store, deps.Log))
			admin.PATCH("/messages/:id/status", handlers.UpdateMessageStatus(deps.Store, deps.Log))
			admin.POST("/messages/:id/respond", handlers.RespondToMessage(deps.Store, deps.Email, deps.Log))
			admin.DELETE("/messages/:id", handlers.DeleteMessage(deps.Store, deps.Log))

			admin.GET("/perf", handlers.PerfSnapshot(deps.Recorder))
		}
	}
}
