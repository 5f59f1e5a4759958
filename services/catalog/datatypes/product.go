// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductImage is one image record attached to a product. PublicID is the
// image provider's asset handle and is required for best-effort deletes.
type ProductImage struct {
	URL        string `bson:"url" json:"url"`
	PublicID   string `bson:"publicId" json:"publicId"`
	AltText    string `bson:"altText,omitempty" json:"altText,omitempty"`
	IsFeatured bool   `bson:"isFeatured" json:"isFeatured"`
}

// Product is a catalog item.
//
// Collections holds the authoritative side of the product/collection
// many-to-many relation; Collection.Metadata.ProductCount is a cached view
// derived from it. Rating and ReviewCount are owned by the rating
// aggregator and must not be written anywhere else.
type Product struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Slug        string               `bson:"slug" json:"slug"`
	Description string               `bson:"description" json:"description"`
	Price       float64              `bson:"price" json:"price"`
	SalePrice   *float64             `bson:"salePrice,omitempty" json:"salePrice,omitempty"`
	SKU         string               `bson:"sku,omitempty" json:"sku,omitempty"`
	IsActive    bool                 `bson:"isActive" json:"isActive"`
	Stock       int                  `bson:"stock" json:"stock"`
	Collections []primitive.ObjectID `bson:"collections" json:"collections"`
	Images      []ProductImage       `bson:"images" json:"images"`
	Featured    bool                 `bson:"featured" json:"featured"`
	OnSale      bool                 `bson:"onSale" json:"onSale"`
	NewArrival  bool                 `bson:"newArrival" json:"newArrival"`
	Rating      float64              `bson:"rating" json:"rating"`
	ReviewCount int                  `bson:"reviewCount" json:"reviewCount"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ProductSummary is the trimmed product shape returned by list-style
// endpoints such as favorites.
type ProductSummary struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	Slug      string             `json:"slug"`
	Price     float64            `json:"price"`
	SalePrice *float64           `json:"salePrice,omitempty"`
	ImageURL  string             `json:"imageUrl,omitempty"`
	Rating    float64            `json:"rating"`
}

// Summary projects a product onto its list representation, preferring the
// featured image and falling back to the first one.
func (p *Product) Summary() ProductSummary {
	s := ProductSummary{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Price:     p.Price,
		SalePrice: p.SalePrice,
		Rating:    p.Rating,
	}
	for _, img := range p.Images {
		if img.IsFeatured {
			s.ImageURL = img.URL
			return s
		}
	}
	if len(p.Images) > 0 {
		s.ImageURL = p.Images[0].URL
	}
	return s
}

// HasCollection reports whether the product references the collection.
func (p *Product) HasCollection(collectionID primitive.ObjectID) bool {
	for _, id := range p.Collections {
		if id == collectionID {
			return true
		}
	}
	return false
}
