// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fifthjohnson/storefront/pkg/logging"
	"github.com/fifthjohnson/storefront/pkg/validation"
	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
	"github.com/fifthjohnson/storefront/services/catalog/favorites"
	"github.com/fifthjohnson/storefront/services/catalog/middleware"
)

// requestIdentity pulls the resolved owner out of the request context.
// Returns nil when neither an account nor a session is present, which
// the favorites service reports as "Session not found".
func requestIdentity(c *gin.Context) *datatypes.Identity {
	id := middleware.CurrentIdentity(c)
	if id.Kind == "" {
		return nil
	}
	return &id
}

// GetFavorites returns the caller's favorite products. Inactive and
// deleted products silently drop out of the response.
func GetFavorites(svc *favorites.Service, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.Get(c.Request.Context(), requestIdentity(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Favorites retrieved", products)
	}
}

// AddFavorite adds a product to the caller's favorites. Adding an
// already-favorited product is a no-op, so retries are safe.
func AddFavorite(svc *favorites.Service, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.FavoriteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		productID, err := validation.ParseObjectID(req.ProductID)
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid product ID"))
			return
		}

		if err := svc.Add(c.Request.Context(), requestIdentity(c), productID); err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Product added to favorites", nil)
	}
}

// RemoveFavorite removes a product from the caller's favorites.
// Removing an absent product is a no-op.
func RemoveFavorite(svc *favorites.Service, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := validation.ParseObjectID(c.Param("productId"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid product ID"))
			return
		}

		if err := svc.Remove(c.Request.Context(), requestIdentity(c), productID); err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Product removed from favorites", nil)
	}
}

// ClearFavorites empties the caller's favorites.
func ClearFavorites(svc *favorites.Service, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Clear(c.Request.Context(), requestIdentity(c)); err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Favorites cleared", nil)
	}
}
