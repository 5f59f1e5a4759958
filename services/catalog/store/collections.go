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
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
)

// CollectionFilter narrows a collection listing.
type CollectionFilter struct {
	Search     string
	Featured   *bool
	ActiveOnly bool
}

func (f CollectionFilter) query() bson.M {
	q := bson.M{}
	if f.ActiveOnly {
		q["isActive"] = true
	}
	if f.Search != "" {
		q["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": f.Search, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}
	if f.Featured != nil {
		q["featured"] = *f.Featured
	}
	return q
}

// InsertCollection stores a new collection, deriving its slug from the
// name.
func (s *Store) InsertCollection(ctx context.Context, c *datatypes.Collection) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Slug = datatypes.Slugify(c.Name)

	res, err := s.collections.InsertOne(ctx, c)
	if err != nil {
		return mapWriteErr(err, "A collection with this slug already exists")
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// CollectionByID loads a collection by its document ID.
func (s *Store) CollectionByID(ctx context.Context, id primitive.ObjectID) (*datatypes.Collection, error) {
	var c datatypes.Collection
	err := s.collections.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("Collection not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find collection %s: %w", id.Hex(), err)
	}
	return &c, nil
}

// CollectionBySlug loads an active collection by slug.
func (s *Store) CollectionBySlug(ctx context.Context, slug string) (*datatypes.Collection, error) {
	var c datatypes.Collection
	err := s.collections.FindOne(ctx, bson.M{"slug": slug, "isActive": true}).Decode(&c)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("Collection not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find collection by slug %q: %w", slug, err)
	}
	return &c, nil
}

// ListCollections returns one page of collections, sorted by display
// order unless the caller overrides the sort.
func (s *Store) ListCollections(ctx context.Context, filter CollectionFilter, page Page, sort bson.D) ([]datatypes.Collection, PageInfo, error) {
	q := filter.query()
	skip, limit := page.normalize()
	if len(sort) == 0 {
		sort = bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}}
	}

	total, err := s.collections.CountDocuments(ctx, q)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("count collections: %w", err)
	}

	opts := options.Find().SetSort(sort).SetSkip(skip).SetLimit(limit)
	cur, err := s.collections.Find(ctx, q, opts)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("list collections: %w", err)
	}
	collections := []datatypes.Collection{}
	if err := cur.All(ctx, &collections); err != nil {
		return nil, PageInfo{}, fmt.Errorf("decode collections: %w", err)
	}
	return collections, pageInfo(page, total), nil
}

// UpdateCollection applies a partial update and returns the new document.
func (s *Store) UpdateCollection(ctx context.Context, id primitive.ObjectID, set bson.M) (*datatypes.Collection, error) {
	if name, ok := set["name"].(string); ok {
		set["slug"] = datatypes.Slugify(name)
	}
	set["updatedAt"] = time.Now().UTC()

	res := s.collections.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var c datatypes.Collection
	err := res.Decode(&c)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("Collection not found")
	}
	if err != nil {
		return nil, mapWriteErr(err, "A collection with this slug already exists")
	}
	return &c, nil
}

// DeleteCollection removes the collection document. Callers must detach
// it from all products first; the linker owns that ordering.
func (s *Store) DeleteCollection(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.collections.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete collection %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return datatypes.NotFound("Collection not found")
	}
	return nil
}

// SetCollectionProductCount writes the cached membership count. Only the
// catalog linker calls this.
func (s *Store) SetCollectionProductCount(ctx context.Context, id primitive.ObjectID, count int64) error {
	_, err := s.collections.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"metadata.productCount": count}},
	)
	if err != nil {
		return fmt.Errorf("set product count for collection %s: %w", id.Hex(), err)
	}
	return nil
}

// SetCollectionImage replaces the collection's hero image.
func (s *Store) SetCollectionImage(ctx context.Context, id primitive.ObjectID, image *datatypes.CollectionImage) error {
	res, err := s.collections.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"image": image, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set image for collection %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return datatypes.NotFound("Collection not found")
	}
	return nil
}
