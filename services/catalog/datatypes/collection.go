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

// CollectionImage is the optional hero image for a collection.
type CollectionImage struct {
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
	PublicID string `bson:"publicId,omitempty" json:"publicId,omitempty"`
	AltText  string `bson:"altText,omitempty" json:"altText,omitempty"`
}

// CollectionMetadata holds derived values cached on the collection
// document. ProductCount is recomputed by the catalog linker after every
// membership mutation; it is never an independent source of truth.
type CollectionMetadata struct {
	ProductCount int64 `bson:"productCount" json:"productCount"`
}

// Collection is a named grouping of products. Membership lives on the
// product side (Product.Collections); deleting a collection detaches it
// from every product first and never deletes the products themselves.
type Collection struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Image       *CollectionImage   `bson:"image,omitempty" json:"image,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	Featured    bool               `bson:"featured" json:"featured"`
	Order       int                `bson:"order" json:"order"`
	Metadata    CollectionMetadata `bson:"metadata" json:"metadata"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
