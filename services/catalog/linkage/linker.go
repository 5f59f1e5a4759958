// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package linkage maintains the product/collection many-to-many relation.
//
// Products own the relation: each product document carries the set of
// collection references it belongs to. A collection's productCount is a
// cached view over that set, and RecomputeCount is its only writer. The
// recompute runs synchronously after every membership mutation, so the
// cached value converges even though there is no cross-document
// atomicity.
package linkage

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
)

// Store is the slice of the data layer the linker needs.
type Store interface {
	CollectionByID(ctx context.Context, id primitive.ObjectID) (*datatypes.Collection, error)
	DeleteCollection(ctx context.Context, id primitive.ObjectID) error
	SetCollectionProductCount(ctx context.Context, id primitive.ObjectID, count int64) error

	CountActiveByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	AddCollectionToProducts(ctx context.Context, collectionID primitive.ObjectID, productIDs []primitive.ObjectID) error
	RemoveCollectionFromProducts(ctx context.Context, collectionID primitive.ObjectID, productIDs []primitive.ObjectID) error
	DetachCollectionFromAll(ctx context.Context, collectionID primitive.ObjectID) (int64, error)
	CountActiveInCollection(ctx context.Context, collectionID primitive.ObjectID) (int64, error)
}

// ImageDeleter removes a provider asset. Failures are logged and never
// propagated; asset deletion is a best-effort side effect.
type ImageDeleter interface {
	Delete(ctx context.Context, publicID string) error
}

// Linker coordinates membership mutations and the derived count.
type Linker struct {
	store  Store
	images ImageDeleter
	log    *slog.Logger
}

// NewLinker builds a Linker. images may be nil when no provider is
// configured; a nil logger falls back to slog.Default.
func NewLinker(store Store, images ImageDeleter, log *slog.Logger) *Linker {
	if log == nil {
		log = slog.Default()
	}
	return &Linker{store: store, images: images, log: log}
}

// AddProducts links every named product to the collection and refreshes
// the cached count. Validation is all-or-nothing: if any ID does not
// resolve to an active product, nothing is mutated.
func (l *Linker) AddProducts(ctx context.Context, collectionID primitive.ObjectID, productIDs []primitive.ObjectID) (*datatypes.Collection, error) {
	if _, err := l.store.CollectionByID(ctx, collectionID); err != nil {
		return nil, err
	}

	ids := dedupeRefs(productIDs)
	active, err := l.store.CountActiveByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if active != int64(len(ids)) {
		return nil, datatypes.BadRequest("One or more products do not exist or are inactive")
	}

	if err := l.store.AddCollectionToProducts(ctx, collectionID, ids); err != nil {
		return nil, err
	}
	if _, err := l.RecomputeCount(ctx, collectionID); err != nil {
		// The membership write landed; the cached count self-corrects on
		// the next mutation.
		l.log.Warn("product count recompute failed after add",
			"collection_id", collectionID.Hex(), "error", err)
	}

	l.log.Info("linked products to collection",
		"collection_id", collectionID.Hex(), "count", len(ids))
	return l.store.CollectionByID(ctx, collectionID)
}

// RemoveProducts unlinks the named products and refreshes the cached
// count. Products that were never linked are skipped silently.
func (l *Linker) RemoveProducts(ctx context.Context, collectionID primitive.ObjectID, productIDs []primitive.ObjectID) (*datatypes.Collection, error) {
	if _, err := l.store.CollectionByID(ctx, collectionID); err != nil {
		return nil, err
	}

	ids := dedupeRefs(productIDs)
	if err := l.store.RemoveCollectionFromProducts(ctx, collectionID, ids); err != nil {
		return nil, err
	}
	if _, err := l.RecomputeCount(ctx, collectionID); err != nil {
		l.log.Warn("product count recompute failed after remove",
			"collection_id", collectionID.Hex(), "error", err)
	}

	l.log.Info("unlinked products from collection",
		"collection_id", collectionID.Hex(), "count", len(ids))
	return l.store.CollectionByID(ctx, collectionID)
}

// RecomputeCount refreshes the cached membership count from the
// authoritative product-side relation and returns it.
func (l *Linker) RecomputeCount(ctx context.Context, collectionID primitive.ObjectID) (int64, error) {
	count, err := l.store.CountActiveInCollection(ctx, collectionID)
	if err != nil {
		return 0, err
	}
	if err := l.store.SetCollectionProductCount(ctx, collectionID, count); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteCollection removes a collection in the order that avoids dangling
// references: detach from every product, then best-effort delete of the
// provider image asset, then the document itself. Products linked to the
// collection survive the delete.
func (l *Linker) DeleteCollection(ctx context.Context, collectionID primitive.ObjectID) error {
	coll, err := l.store.CollectionByID(ctx, collectionID)
	if err != nil {
		return err
	}

	detached, err := l.store.DetachCollectionFromAll(ctx, collectionID)
	if err != nil {
		return err
	}

	if l.images != nil && coll.Image != nil && coll.Image.PublicID != "" {
		if err := l.images.Delete(ctx, coll.Image.PublicID); err != nil {
			l.log.Warn("failed to delete collection image asset",
				"collection_id", collectionID.Hex(),
				"public_id", coll.Image.PublicID, "error", err)
		}
	}

	if err := l.store.DeleteCollection(ctx, collectionID); err != nil {
		return err
	}

	l.log.Info("deleted collection",
		"collection_id", collectionID.Hex(), "detached_products", detached)
	return nil
}

func dedupeRefs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
