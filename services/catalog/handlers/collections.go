// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/fifthjohnson/storefront/pkg/logging"
	"github.com/fifthjohnson/storefront/pkg/validation"
	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
	"github.com/fifthjohnson/storefront/services/catalog/linkage"
	"github.com/fifthjohnson/storefront/services/catalog/store"
)

// parseCollectionFilter assembles the collection listing filter.
func parseCollectionFilter(c *gin.Context, activeOnly bool) (store.CollectionFilter, error) {
	filter := store.CollectionFilter{
		Search:     c.Query("search"),
		ActiveOnly: activeOnly,
	}
	featured, err := parseBoolParam(c, "featured")
	if err != nil {
		return filter, err
	}
	filter.Featured = featured
	return filter, nil
}

// collectionSort is the fixed listing order: explicit order first, then
// name for a stable tie-break.
var collectionSort = bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}}

// =============================================================================
// Public Collection Handlers
// =============================================================================

// ListCollections returns the public collection listing.
func ListCollections(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseCollectionFilter(c, true)
		if err != nil {
			respondError(c, log, err)
			return
		}

		collections, pages, err := st.ListCollections(c.Request.Context(), filter, parsePage(c), collectionSort)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Collections retrieved", gin.H{
			"collections": collections,
			"pagination":  pages,
		})
	}
}

// GetCollection returns one collection with its active products.
func GetCollection(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid collection ID"))
			return
		}

		ctx := c.Request.Context()
		collection, err := st.CollectionByID(ctx, id)
		if err != nil {
			respondError(c, log, err)
			return
		}

		products, pages, err := st.ListProducts(ctx,
			store.ProductFilter{Collection: &collection.ID, ActiveOnly: true},
			parsePage(c), parseProductSort(c))
		if err != nil {
			respondError(c, log, err)
			return
		}

		respondOK(c, "Collection retrieved", gin.H{
			"collection": collection,
			"products":   products,
			"pagination": pages,
		})
	}
}

// GetCollectionBySlug returns one collection by its URL slug with its
// active products.
func GetCollectionBySlug(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if err := validation.ValidateSlug(slug); err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid collection slug"))
			return
		}

		// CollectionBySlug filters on isActive, so an inactive collection
		// is a plain 404 here.
		ctx := c.Request.Context()
		collection, err := st.CollectionBySlug(ctx, slug)
		if err != nil {
			respondError(c, log, err)
			return
		}

		products, pages, err := st.ListProducts(ctx,
			store.ProductFilter{Collection: &collection.ID, ActiveOnly: true},
			parsePage(c), parseProductSort(c))
		if err != nil {
			respondError(c, log, err)
			return
		}

		respondOK(c, "Collection retrieved", gin.H{
			"collection": collection,
			"products":   products,
			"pagination": pages,
		})
	}
}

// =============================================================================
// Admin Collection Handlers
// =============================================================================

// AdminListCollections returns every collection including inactive ones.
func AdminListCollections(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseCollectionFilter(c, false)
		if err != nil {
			respondError(c, log, err)
			return
		}

		collections, pages, err := st.ListCollections(c.Request.Context(), filter, parsePage(c), collectionSort)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Collections retrieved", gin.H{
			"collections": collections,
			"pagination":  pages,
		})
	}
}

// CreateCollection creates an empty collection.
func CreateCollection(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CreateCollectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		collection := &datatypes.Collection{
			Name:        req.Name,
			Description: req.Description,
			IsActive:    true,
			Featured:    req.Featured,
			Order:       req.Order,
		}
		if err := st.InsertCollection(c.Request.Context(), collection); err != nil {
			respondError(c, log, err)
			return
		}

		log.Info("collection created", "collection_id", collection.ID.Hex(), "name", collection.Name)
		respondCreated(c, "Collection created", collection)
	}
}

// UpdateCollection applies a partial update. Renames re-derive the slug.
func UpdateCollection(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid collection ID"))
			return
		}

		var req datatypes.UpdateCollectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		set := bson.M{}
		if req.Name != nil {
			set["name"] = *req.Name
		}
		if req.Description != nil {
			set["description"] = *req.Description
		}
		if req.IsActive != nil {
			set["isActive"] = *req.IsActive
		}
		if req.Featured != nil {
			set["featured"] = *req.Featured
		}
		if req.Order != nil {
			set["order"] = *req.Order
		}
		if len(set) == 0 {
			respondError(c, log, datatypes.BadRequest("No fields to update"))
			return
		}

		collection, err := st.UpdateCollection(c.Request.Context(), id, set)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Collection updated", collection)
	}
}

// DeleteCollection removes a collection. The linker detaches it from
// every product before the document goes away, so no product is left
// referencing a dead collection.
func DeleteCollection(linker *linkage.Linker, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid collection ID"))
			return
		}

		if err := linker.DeleteCollection(c.Request.Context(), id); err != nil {
			respondError(c, log, err)
			return
		}

		log.Info("collection deleted", "collection_id", id.Hex())
		respondOK(c, "Collection deleted", nil)
	}
}

// AddProductsToCollection attaches products to a collection. The request
// is all-or-nothing: one unknown product rejects the whole batch.
func AddProductsToCollection(linker *linkage.Linker, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid collection ID"))
			return
		}

		var req datatypes.LinkProductsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		productIDs, err := validation.ParseObjectIDs(req.ProductIDs)
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid product IDs"))
			return
		}

		collection, err := linker.AddProducts(c.Request.Context(), id, productIDs)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Products added to collection", collection)
	}
}

// RemoveProductsFromCollection detaches products from a collection.
// Detaching a product that is not a member is a no-op, so retries are
// safe.
func RemoveProductsFromCollection(linker *linkage.Linker, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid collection ID"))
			return
		}

		var req datatypes.LinkProductsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		productIDs, err := validation.ParseObjectIDs(req.ProductIDs)
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid product IDs"))
			return
		}

		collection, err := linker.RemoveProducts(c.Request.Context(), id, productIDs)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Products removed from collection", collection)
	}
}

// SetCollectionImage sets or replaces the collection's hero image. The
// replaced asset is deleted from the provider best effort; the request
// succeeds even when cleanup fails.
func SetCollectionImage(st *store.Store, images linkage.ImageDeleter, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid collection ID"))
			return
		}

		var req datatypes.SetImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		ctx := c.Request.Context()
		collection, err := st.CollectionByID(ctx, id)
		if err != nil {
			respondError(c, log, err)
			return
		}

		image := &datatypes.CollectionImage{
			URL:      req.URL,
			PublicID: req.PublicID,
			AltText:  req.AltText,
		}
		if err := st.SetCollectionImage(ctx, id, image); err != nil {
			respondError(c, log, err)
			return
		}

		if images != nil && collection.Image != nil &&
			collection.Image.PublicID != "" && collection.Image.PublicID != req.PublicID {
			if err := images.Delete(ctx, collection.Image.PublicID); err != nil {
				log.Warn("replaced collection image delete failed",
					"collection_id", id.Hex(), "public_id", collection.Image.PublicID, "error", err)
			}
		}
		respondOK(c, "Collection image updated", image)
	}
}
