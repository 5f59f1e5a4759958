// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store is the MongoDB data-access layer for the catalog service.
//
// One Store instance wraps the database handle and exposes typed methods
// per entity (products.go, collections.go, reviews.go, sessions.go,
// users.go, messages.go). There are no multi-document transactions:
// cross-entity consistency (collection counts, product ratings) is
// maintained by the convention that the owning recompute routine runs
// after every mutation. Concurrent writers race with last-write-wins,
// which the domain tolerates because every operation is idempotent or
// self-correcting on its next trigger.
package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
)

const (
	collProducts    = "products"
	collCollections = "collections"
	collReviews     = "reviews"
	collSessions    = "sessions"
	collUsers       = "users"
	collMessages    = "contactmessages"
)

// Store provides access to all catalog collections.
type Store struct {
	products    *mongo.Collection
	collections *mongo.Collection
	reviews     *mongo.Collection
	sessions    *mongo.Collection
	users       *mongo.Collection
	messages    *mongo.Collection
}

// New wraps an already-connected database handle.
func New(db *mongo.Database) *Store {
	return &Store{
		products:    db.Collection(collProducts),
		collections: db.Collection(collCollections),
		reviews:     db.Collection(collReviews),
		sessions:    db.Collection(collSessions),
		users:       db.Collection(collUsers),
		messages:    db.Collection(collMessages),
	}
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the service relies on. Safe to call
// on every startup; Mongo treats existing identical indexes as a no-op.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	sessionTTL := int32(datatypes.SessionTTL / time.Second)

	specs := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.products, []mongo.IndexModel{
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "collections", Value: 1}}},
			{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}}},
		}},
		{s.collections, []mongo.IndexModel{
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{s.reviews, []mongo.IndexModel{
			{Keys: bson.D{{Key: "product", Value: 1}, {Key: "isApproved", Value: 1}}},
		}},
		{s.sessions, []mongo.IndexModel{
			{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "lastActive", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(sessionTTL)},
		}},
		{s.users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
	}

	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateMany(ctx, spec.models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", spec.coll.Name(), err)
		}
	}
	return nil
}

// Page is a 1-based pagination request.
type Page struct {
	Page  int
	Limit int
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

func (p Page) normalize() (skip, limit int64) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	l := p.Limit
	if l < 1 {
		l = defaultPageLimit
	}
	if l > maxPageLimit {
		l = maxPageLimit
	}
	return int64(page-1) * int64(l), int64(l)
}

// PageInfo reports the pagination of a list response.
type PageInfo struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func pageInfo(p Page, total int64) PageInfo {
	_, limit := p.normalize()
	page := p.Page
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:  page,
		Limit: int(limit),
		Total: total,
		Pages: int64(math.Ceil(float64(total) / float64(limit))),
	}
}

// mapWriteErr translates driver errors at the store boundary: duplicate
// keys become Conflict so unique slug/SKU/email violations surface as 409.
func mapWriteErr(err error, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return datatypes.Conflict(conflictMsg)
	}
	return err
}

// isNoDocuments reports the driver's not-found sentinel.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
