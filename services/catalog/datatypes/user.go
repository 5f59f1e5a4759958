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

// Address is a saved shipping address on an account.
type Address struct {
	Name      string `bson:"name,omitempty" json:"name,omitempty"`
	Street    string `bson:"street,omitempty" json:"street,omitempty"`
	City      string `bson:"city,omitempty" json:"city,omitempty"`
	State     string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode   string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Country   string `bson:"country,omitempty" json:"country,omitempty"`
	IsDefault bool   `bson:"isDefault" json:"isDefault"`
}

// User is a registered account. Accounts are never hard-deleted; IsActive
// false is a soft deactivation. Favorites is mutated by the favorites
// store and, once per login/registration, by the merge-on-auth step.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"password" json:"-"`
	Name         string               `bson:"name" json:"name"`
	IsActive     bool                 `bson:"isActive" json:"-"`
	LastLogin    *time.Time           `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	Favorites    []primitive.ObjectID `bson:"favorites" json:"favorites"`
	Addresses    []Address            `bson:"addresses,omitempty" json:"addresses,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}
