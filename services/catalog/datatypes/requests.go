// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("objectid", validateObjectID)
	}
}

// validateObjectID accepts only 24-character hexadecimal document
// identifiers, rejecting malformed values before they reach the store.
func validateObjectID(fl validator.FieldLevel) bool {
	_, err := primitive.ObjectIDFromHex(fl.Field().String())
	return err == nil
}

// CreateProductRequest is the admin payload for creating a product.
type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Description string   `json:"description" binding:"required"`
	Price       float64  `json:"price" binding:"required,gte=0"`
	SalePrice   *float64 `json:"salePrice" binding:"omitempty,gte=0"`
	SKU         string   `json:"sku" binding:"omitempty,max=50"`
	Stock       int      `json:"stock" binding:"gte=0"`
	Featured    bool     `json:"featured"`
	OnSale      bool     `json:"onSale"`
	NewArrival  bool     `json:"newArrival"`
	Collections []string `json:"collections" binding:"omitempty,dive,objectid"`
}

// UpdateProductRequest carries partial product updates; nil pointers mean
// "leave unchanged".
type UpdateProductRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=100"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	SalePrice   *float64 `json:"salePrice" binding:"omitempty,gte=0"`
	SKU         *string  `json:"sku" binding:"omitempty,max=50"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
	IsActive    *bool    `json:"isActive"`
	Featured    *bool    `json:"featured"`
	OnSale      *bool    `json:"onSale"`
	NewArrival  *bool    `json:"newArrival"`
}

// CreateCollectionRequest is the admin payload for creating a collection.
type CreateCollectionRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"required,max=1000"`
	Featured    bool   `json:"featured"`
	Order       int    `json:"order"`
}

// UpdateCollectionRequest carries partial collection updates.
type UpdateCollectionRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	IsActive    *bool   `json:"isActive"`
	Featured    *bool   `json:"featured"`
	Order       *int    `json:"order"`
}

// LinkProductsRequest names the products to attach to or detach from a
// collection. Validation is all-or-nothing: one malformed ID rejects the
// whole request before any mutation.
type LinkProductsRequest struct {
	ProductIDs []string `json:"productIds" binding:"required,min=1,dive,objectid"`
}

// SetImageRequest attaches an already-uploaded provider asset to a
// product or collection.
type SetImageRequest struct {
	URL        string `json:"url" binding:"required,url"`
	PublicID   string `json:"publicId" binding:"required"`
	AltText    string `json:"altText"`
	IsFeatured bool   `json:"isFeatured"`
}

// CreateReviewRequest is the public review submission payload. Reviews
// start unapproved.
type CreateReviewRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required,max=1000"`
}

// ApproveReviewRequest toggles a review's approval flag.
type ApproveReviewRequest struct {
	IsApproved *bool `json:"isApproved" binding:"required"`
}

// RespondReviewRequest attaches an admin response to a review.
type RespondReviewRequest struct {
	Response string `json:"response" binding:"required,max=1000"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest authenticates an account.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// FavoriteRequest names the product to add to the caller's favorites.
type FavoriteRequest struct {
	ProductID string `json:"productId" binding:"required,objectid"`
}

// ContactRequest is the public contact-form payload.
type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

// UpdateMessageStatusRequest moves a contact message through the support
// workflow.
type UpdateMessageStatusRequest struct {
	Status MessageStatus `json:"status" binding:"required"`
}

// RespondMessageRequest sends a reply for a contact message.
type RespondMessageRequest struct {
	Response string `json:"response" binding:"required,max=5000"`
}
