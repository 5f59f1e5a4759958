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

// ProductFilter narrows a product listing. Nil pointer fields are not
// applied.
type ProductFilter struct {
	Search     string
	Collection *primitive.ObjectID
	PriceMin   *float64
	PriceMax   *float64
	Featured   *bool
	OnSale     *bool
	NewArrival *bool
	ActiveOnly bool
}

func (f ProductFilter) query() bson.M {
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
	if f.Collection != nil {
		q["collections"] = *f.Collection
	}
	if f.PriceMin != nil || f.PriceMax != nil {
		price := bson.M{}
		if f.PriceMin != nil {
			price["$gte"] = *f.PriceMin
		}
		if f.PriceMax != nil {
			price["$lte"] = *f.PriceMax
		}
		q["price"] = price
	}
	if f.Featured != nil {
		q["featured"] = *f.Featured
	}
	if f.OnSale != nil {
		q["onSale"] = *f.OnSale
	}
	if f.NewArrival != nil {
		q["newArrival"] = *f.NewArrival
	}
	return q
}

// InsertProduct stores a new product, deriving its slug from the name.
func (s *Store) InsertProduct(ctx context.Context, p *datatypes.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Slug = datatypes.Slugify(p.Name)
	if p.Collections == nil {
		p.Collections = []primitive.ObjectID{}
	}
	if p.Images == nil {
		p.Images = []datatypes.ProductImage{}
	}

	res, err := s.products.InsertOne(ctx, p)
	if err != nil {
		return mapWriteErr(err, "A product with this slug or SKU already exists")
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ProductByID loads a product regardless of active state.
func (s *Store) ProductByID(ctx context.Context, id primitive.ObjectID) (*datatypes.Product, error) {
	var p datatypes.Product
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", id.Hex(), err)
	}
	return &p, nil
}

// ProductBySlug loads an active product by its slug.
func (s *Store) ProductBySlug(ctx context.Context, slug string) (*datatypes.Product, error) {
	var p datatypes.Product
	err := s.products.FindOne(ctx, bson.M{"slug": slug, "isActive": true}).Decode(&p)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find product by slug %q: %w", slug, err)
	}
	return &p, nil
}

// ActiveProductByID loads a product only if it is active.
func (s *Store) ActiveProductByID(ctx context.Context, id primitive.ObjectID) (*datatypes.Product, error) {
	var p datatypes.Product
	err := s.products.FindOne(ctx, bson.M{"_id": id, "isActive": true}).Decode(&p)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find active product %s: %w", id.Hex(), err)
	}
	return &p, nil
}

// ActiveProductSummariesByIDs resolves ids to summaries of products that
// are still active. Dangling references simply drop out of the result;
// they are not purged from the owning favorites set.
func (s *Store) ActiveProductSummariesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]datatypes.ProductSummary, error) {
	if len(ids) == 0 {
		return []datatypes.ProductSummary{}, nil
	}

	cur, err := s.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "isActive": true})
	if err != nil {
		return nil, fmt.Errorf("find products by ids: %w", err)
	}
	var products []datatypes.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	summaries := make([]datatypes.ProductSummary, 0, len(products))
	for i := range products {
		summaries = append(summaries, products[i].Summary())
	}
	return summaries, nil
}

// CountActiveByIDs counts how many of ids reference active products. Used
// for all-or-nothing validation before linkage mutations.
func (s *Store) CountActiveByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.products.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}, "isActive": true})
	if err != nil {
		return 0, fmt.Errorf("count active products: %w", err)
	}
	return n, nil
}

// ListProducts returns one page of products matching the filter.
func (s *Store) ListProducts(ctx context.Context, filter ProductFilter, page Page, sort bson.D) ([]datatypes.Product, PageInfo, error) {
	q := filter.query()
	skip, limit := page.normalize()
	if len(sort) == 0 {
		sort = bson.D{{Key: "createdAt", Value: -1}}
	}

	total, err := s.products.CountDocuments(ctx, q)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().SetSort(sort).SetSkip(skip).SetLimit(limit)
	cur, err := s.products.Find(ctx, q, opts)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("list products: %w", err)
	}
	products := []datatypes.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, PageInfo{}, fmt.Errorf("decode products: %w", err)
	}
	return products, pageInfo(page, total), nil
}

// UpdateProduct applies a partial update and returns the new document.
// Renames re-derive the slug.
func (s *Store) UpdateProduct(ctx context.Context, id primitive.ObjectID, set bson.M) (*datatypes.Product, error) {
	if name, ok := set["name"].(string); ok {
		set["slug"] = datatypes.Slugify(name)
	}
	set["updatedAt"] = time.Now().UTC()

	res := s.products.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var p datatypes.Product
	err := res.Decode(&p)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("Product not found")
	}
	if err != nil {
		return nil, mapWriteErr(err, "A product with this slug or SKU already exists")
	}
	return &p, nil
}

// DeactivateProduct soft-deletes a product. Favorites referencing it are
// filtered lazily on read rather than purged.
func (s *Store) DeactivateProduct(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.products.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("deactivate product %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return datatypes.NotFound("Product not found")
	}
	return nil
}

// SetProductRating overwrites the derived rating fields. Only the rating
// aggregator calls this.
func (s *Store) SetProductRating(ctx context.Context, id primitive.ObjectID, rating float64, count int) error {
	_, err := s.products.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"rating": rating, "reviewCount": count}},
	)
	if err != nil {
		return fmt.Errorf("set rating for product %s: %w", id.Hex(), err)
	}
	return nil
}

// SetProductImages replaces the product's image list.
func (s *Store) SetProductImages(ctx context.Context, id primitive.ObjectID, images []datatypes.ProductImage) error {
	res, err := s.products.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"images": images, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set images for product %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return datatypes.NotFound("Product not found")
	}
	return nil
}

// AddCollectionToProducts links the collection into each product's
// collections set. $addToSet keeps the membership duplicate-free, so the
// call is idempotent.
func (s *Store) AddCollectionToProducts(ctx context.Context, collectionID primitive.ObjectID, productIDs []primitive.ObjectID) error {
	_, err := s.products.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": productIDs}},
		bson.M{"$addToSet": bson.M{"collections": collectionID}},
	)
	if err != nil {
		return fmt.Errorf("add collection %s to products: %w", collectionID.Hex(), err)
	}
	return nil
}

// RemoveCollectionFromProducts unlinks the collection from the named
// products. Products that never referenced it are unaffected.
func (s *Store) RemoveCollectionFromProducts(ctx context.Context, collectionID primitive.ObjectID, productIDs []primitive.ObjectID) error {
	_, err := s.products.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": productIDs}},
		bson.M{"$pull": bson.M{"collections": collectionID}},
	)
	if err != nil {
		return fmt.Errorf("remove collection %s from products: %w", collectionID.Hex(), err)
	}
	return nil
}

// DetachCollectionFromAll removes the collection reference from every
// product that carries it. Run before deleting a collection so no product
// is left with a dangling reference.
func (s *Store) DetachCollectionFromAll(ctx context.Context, collectionID primitive.ObjectID) (int64, error) {
	res, err := s.products.UpdateMany(ctx,
		bson.M{"collections": collectionID},
		bson.M{"$pull": bson.M{"collections": collectionID}},
	)
	if err != nil {
		return 0, fmt.Errorf("detach collection %s: %w", collectionID.Hex(), err)
	}
	return res.ModifiedCount, nil
}

// CountActiveInCollection is the authoritative membership count: active
// products whose collections set contains collectionID.
func (s *Store) CountActiveInCollection(ctx context.Context, collectionID primitive.ObjectID) (int64, error) {
	n, err := s.products.CountDocuments(ctx, bson.M{"collections": collectionID, "isActive": true})
	if err != nil {
		return 0, fmt.Errorf("count products in collection %s: %w", collectionID.Hex(), err)
	}
	return n, nil
}
