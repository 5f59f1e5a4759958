// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fifthjohnson/storefront/pkg/logging"
	"github.com/fifthjohnson/storefront/pkg/validation"
	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
	"github.com/fifthjohnson/storefront/services/catalog/linkage"
	"github.com/fifthjohnson/storefront/services/catalog/rating"
	"github.com/fifthjohnson/storefront/services/catalog/store"
)

// =============================================================================
// Query Parsing
// =============================================================================

// parsePage reads the page/limit query params. Out-of-range values are
// normalized by the store.
func parsePage(c *gin.Context) store.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return store.Page{Page: page, Limit: limit}
}

// parseProductFilter assembles the listing filter from query params.
// activeOnly is forced for public routes and lifted for admin ones.
func parseProductFilter(c *gin.Context, activeOnly bool) (store.ProductFilter, error) {
	filter := store.ProductFilter{
		Search:     c.Query("search"),
		ActiveOnly: activeOnly,
	}

	if raw := c.Query("collection"); raw != "" {
		id, err := validation.ParseObjectID(raw)
		if err != nil {
			return filter, datatypes.BadRequest("Invalid collection ID")
		}
		filter.Collection = &id
	}
	if raw := c.Query("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, datatypes.BadRequest("Invalid minPrice")
		}
		filter.PriceMin = &v
	}
	if raw := c.Query("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, datatypes.BadRequest("Invalid maxPrice")
		}
		filter.PriceMax = &v
	}
	var err error
	if filter.Featured, err = parseBoolParam(c, "featured"); err != nil {
		return filter, err
	}
	if filter.OnSale, err = parseBoolParam(c, "onSale"); err != nil {
		return filter, err
	}
	if filter.NewArrival, err = parseBoolParam(c, "newArrival"); err != nil {
		return filter, err
	}
	return filter, nil
}

// parseBoolParam reads an optional boolean query param; absent params
// return nil.
func parseBoolParam(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, datatypes.BadRequest("Invalid " + name)
	}
	return &v, nil
}

// parseProductSort maps the sort query param to a Mongo sort document.
// Unknown values fall back to newest-first.
func parseProductSort(c *gin.Context) bson.D {
	switch c.Query("sort") {
	case "price_asc":
		return bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "price", Value: -1}}
	case "rating":
		return bson.D{{Key: "rating", Value: -1}}
	case "name":
		return bson.D{{Key: "name", Value: 1}}
	case "oldest":
		return bson.D{{Key: "createdAt", Value: 1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}}
}

// =============================================================================
// Public Product Handlers
// =============================================================================

// ListProducts returns the public product listing: active products only,
// filtered and paginated by query params.
func ListProducts(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseProductFilter(c, true)
		if err != nil {
			respondError(c, log, err)
			return
		}

		products, pages, err := st.ListProducts(c.Request.Context(), filter, parsePage(c), parseProductSort(c))
		if err != nil {
			respondError(c, log, err)
			return
		}

		respondOK(c, "Products retrieved", gin.H{
			"products":   products,
			"pagination": pages,
		})
	}
}

// GetProduct returns one active product by ID.
func GetProduct(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid product ID"))
			return
		}

		product, err := st.ActiveProductByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Product retrieved", product)
	}
}

// GetProductBySlug returns one product by its URL slug.
func GetProductBySlug(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if err := validation.ValidateSlug(slug); err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid product slug"))
			return
		}

		// ProductBySlug filters on isActive, so an inactive product is a
		// plain 404 here.
		product, err := st.ProductBySlug(c.Request.Context(), slug)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Product retrieved", product)
	}
}

// =============================================================================
// Admin Product Handlers
// =============================================================================

// AdminListProducts returns every product including inactive ones.
func AdminListProducts(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseProductFilter(c, false)
		if err != nil {
			respondError(c, log, err)
			return
		}

		products, pages, err := st.ListProducts(c.Request.Context(), filter, parsePage(c), parseProductSort(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Products retrieved", gin.H{
			"products":   products,
			"pagination": pages,
		})
	}
}

// CreateProduct creates a product from the admin payload. Collection
// references are validated to exist before the insert.
func CreateProduct(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		ctx := c.Request.Context()

		collections := make([]primitive.ObjectID, 0, len(req.Collections))
		for _, raw := range req.Collections {
			id, _ := validation.ParseObjectID(raw)
			if _, err := st.CollectionByID(ctx, id); err != nil {
				respondError(c, log, datatypes.BadRequest("Collection "+raw+" does not exist"))
				return
			}
			collections = append(collections, id)
		}

		product := &datatypes.Product{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			SalePrice:   req.SalePrice,
			SKU:         req.SKU,
			Stock:       req.Stock,
			IsActive:    true,
			Featured:    req.Featured,
			OnSale:      req.OnSale,
			NewArrival:  req.NewArrival,
			Collections: collections,
			Images:      []datatypes.ProductImage{},
		}
		if err := st.InsertProduct(ctx, product); err != nil {
			respondError(c, log, err)
			return
		}

		log.Info("product created", "product_id", product.ID.Hex(), "name", product.Name)
		respondCreated(c, "Product created", product)
	}
}

// UpdateProduct applies a partial update. Renames re-derive the slug.
func UpdateProduct(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid product ID"))
			return
		}

		var req datatypes.UpdateProductRequest
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
		if req.Price != nil {
			set["price"] = *req.Price
		}
		if req.SalePrice != nil {
			set["salePrice"] = *req.SalePrice
		}
		if req.SKU != nil {
			set["sku"] = *req.SKU
		}
		if req.Stock != nil {
			set["stock"] = *req.Stock
		}
		if req.IsActive != nil {
			set["isActive"] = *req.IsActive
		}
		if req.Featured != nil {
			set["featured"] = *req.Featured
		}
		if req.OnSale != nil {
			set["onSale"] = *req.OnSale
		}
		if req.NewArrival != nil {
			set["newArrival"] = *req.NewArrival
		}
		if len(set) == 0 {
			respondError(c, log, datatypes.BadRequest("No fields to update"))
			return
		}

		product, err := st.UpdateProduct(c.Request.Context(), id, set)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Product updated", product)
	}
}

// DeleteProduct soft-deletes a product. The document and its reviews
// stay in the store; the product just stops appearing anywhere public.
func DeleteProduct(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid product ID"))
			return
		}

		if err := st.DeactivateProduct(c.Request.Context(), id); err != nil {
			respondError(c, log, err)
			return
		}

		log.Info("product deactivated", "product_id", id.Hex())
		respondOK(c, "Product deleted", nil)
	}
}

// SetProductImage appends an uploaded image to the product. A featured
// image demotes any previous featured one.
func SetProductImage(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid product ID"))
			return
		}

		var req datatypes.SetImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		ctx := c.Request.Context()
		product, err := st.ProductByID(ctx, id)
		if err != nil {
			respondError(c, log, err)
			return
		}

		images := product.Images
		if req.IsFeatured {
			for i := range images {
				images[i].IsFeatured = false
			}
		}
		images = append(images, datatypes.ProductImage{
			URL:        req.URL,
			PublicID:   req.PublicID,
			AltText:    req.AltText,
			IsFeatured: req.IsFeatured,
		})

		if err := st.SetProductImages(ctx, id, images); err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Product image added", images)
	}
}

// RemoveProductImage detaches an image record by its provider asset ID
// and deletes the asset best effort. Asset IDs contain slashes, so the
// ID travels as a query parameter rather than a path segment.
func RemoveProductImage(st *store.Store, images linkage.ImageDeleter, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid product ID"))
			return
		}
		publicID := c.Query("publicId")
		if publicID == "" {
			respondError(c, log, datatypes.BadRequest("publicId is required"))
			return
		}

		ctx := c.Request.Context()
		product, err := st.ProductByID(ctx, id)
		if err != nil {
			respondError(c, log, err)
			return
		}

		kept := product.Images[:0:0]
		for _, img := range product.Images {
			if img.PublicID != publicID {
				kept = append(kept, img)
			}
		}
		if len(kept) == len(product.Images) {
			respondError(c, log, datatypes.NotFound("Image not found"))
			return
		}

		if err := st.SetProductImages(ctx, id, kept); err != nil {
			respondError(c, log, err)
			return
		}

		if images != nil {
			if err := images.Delete(ctx, publicID); err != nil {
				log.Warn("product image delete failed",
					"product_id", id.Hex(), "public_id", publicID, "error", err)
			}
		}
		respondOK(c, "Product image removed", kept)
	}
}

// RecomputeProductRating forces a rating recompute. Normally ratings
// follow review mutations automatically; this exists for repair after a
// missed fire-and-forget update.
func RecomputeProductRating(agg *rating.Aggregator, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid product ID"))
			return
		}

		summary, err := agg.Recompute(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Product rating recomputed", summary)
	}
}
