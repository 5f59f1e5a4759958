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

// Review is a customer review of a product. Reviews are created
// unapproved and only count toward the product's displayed rating once an
// admin approves them. Any create/approve/delete must be followed by a
// rating recompute for the referenced product.
type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID  primitive.ObjectID `bson:"product" json:"productId"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"-"`
	Rating     int                `bson:"rating" json:"rating"`
	Comment    string             `bson:"comment" json:"comment"`
	IsApproved bool               `bson:"isApproved" json:"isApproved"`
	Response   string             `bson:"response,omitempty" json:"response,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RatingSummary is the pair of derived fields the aggregator writes back
// onto the product document.
type RatingSummary struct {
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
}
