// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
)

// InsertUser stores a new account. A duplicate email surfaces as
// Conflict.
func (s *Store) InsertUser(ctx context.Context, u *datatypes.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.IsActive = true
	if u.Favorites == nil {
		u.Favorites = []primitive.ObjectID{}
	}

	res, err := s.users.InsertOne(ctx, u)
	if err != nil {
		return mapWriteErr(err, "Email already in use")
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// UserByEmail loads an active account by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*datatypes.User, error) {
	var u datatypes.User
	err := s.users.FindOne(ctx, bson.M{"email": email, "isActive": true}).Decode(&u)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

// UserByID loads an account by document ID.
func (s *Store) UserByID(ctx context.Context, id primitive.ObjectID) (*datatypes.User, error) {
	var u datatypes.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id.Hex(), err)
	}
	return &u, nil
}

// SetLastLogin records the login timestamp.
func (s *Store) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"lastLogin": at, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set last login for user %s: %w", id.Hex(), err)
	}
	return nil
}

// UserFavorites returns the account's favorites set.
func (s *Store) UserFavorites(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	u, err := s.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Favorites, nil
}

// SetUserFavorites overwrites the account's favorites set. Used by
// merge-on-auth to persist the deduplicated union.
func (s *Store) SetUserFavorites(ctx context.Context, id primitive.ObjectID, favorites []primitive.ObjectID) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"favorites": favorites, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set favorites for user %s: %w", id.Hex(), err)
	}
	return nil
}

// AddUserFavorite adds a product reference idempotently.
func (s *Store) AddUserFavorite(ctx context.Context, id, productID primitive.ObjectID) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"favorites": productID}},
	)
	if err != nil {
		return fmt.Errorf("add favorite to user %s: %w", id.Hex(), err)
	}
	return nil
}

// RemoveUserFavorite removes a product reference; absent references are a
// no-op.
func (s *Store) RemoveUserFavorite(ctx context.Context, id, productID primitive.ObjectID) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"favorites": productID}},
	)
	if err != nil {
		return fmt.Errorf("remove favorite from user %s: %w", id.Hex(), err)
	}
	return nil
}

// ClearUserFavorites empties the account's favorites set.
func (s *Store) ClearUserFavorites(ctx context.Context, id primitive.ObjectID) error {
	return s.SetUserFavorites(ctx, id, []primitive.ObjectID{})
}
