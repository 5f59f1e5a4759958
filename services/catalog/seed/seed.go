// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package seed loads sample catalog data for development environments.
package seed

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
	"github.com/fifthjohnson/storefront/services/catalog/linkage"
	"github.com/fifthjohnson/storefront/services/catalog/store"
)

// Options controls a seeding run.
type Options struct {
	// Drop removes the products and collections collections first so
	// the run is reproducible. Never use against production data.
	Drop bool
}

// seedCollection pairs a collection with the SKUs it contains.
type seedCollection struct {
	collection datatypes.Collection
	skus       []string
}

var sampleProducts = []datatypes.Product{
	{
		Name:        "Classic Snapback",
		Description: "Structured six-panel snapback with a flat brim and embroidered logo.",
		Price:       34.99,
		SKU:         "HAT-SNAP-001",
		Stock:       120,
		IsActive:    true,
		Featured:    true,
	},
	{
		Name:        "Heritage Dad Hat",
		Description: "Unstructured cotton twill cap with an adjustable strap.",
		Price:       29.99,
		SKU:         "HAT-DAD-001",
		Stock:       200,
		IsActive:    true,
		NewArrival:  true,
	},
	{
		Name:        "Wool Beanie",
		Description: "Ribbed merino wool beanie, one size fits most.",
		Price:       24.99,
		SKU:         "HAT-BEAN-001",
		Stock:       150,
		IsActive:    true,
	},
	{
		Name:        "Trucker Mesh Cap",
		Description: "Foam front trucker cap with breathable mesh back.",
		Price:       27.99,
		SKU:         "HAT-TRUCK-001",
		Stock:       90,
		IsActive:    true,
		OnSale:      true,
	},
	{
		Name:        "Bucket Hat",
		Description: "Packable cotton bucket hat with a stitched brim.",
		Price:       31.99,
		SKU:         "HAT-BUCK-001",
		Stock:       60,
		IsActive:    true,
		NewArrival:  true,
	},
}

var sampleCollections = []seedCollection{
	{
		collection: datatypes.Collection{
			Name:        "New Arrivals",
			Description: "The latest drops, updated every season.",
			IsActive:    true,
			Featured:    true,
			Order:       1,
		},
		skus: []string{"HAT-DAD-001", "HAT-BUCK-001"},
	},
	{
		collection: datatypes.Collection{
			Name:        "Summer Essentials",
			Description: "Lightweight caps for warm weather.",
			IsActive:    true,
			Order:       2,
		},
		skus: []string{"HAT-SNAP-001", "HAT-TRUCK-001", "HAT-BUCK-001"},
	},
	{
		collection: datatypes.Collection{
			Name:        "Cold Weather",
			Description: "Warm layers for the off season.",
			IsActive:    true,
			Order:       3,
		},
		skus: []string{"HAT-BEAN-001"},
	},
}

// Run inserts the sample catalog. Products are created first, then
// collections, then the linker attaches members and sets the counts the
// same way the API does.
func Run(ctx context.Context, db *mongo.Database, opts Options) error {
	if opts.Drop {
		for _, name := range []string{"products", "collections"} {
			if err := db.Collection(name).Drop(ctx); err != nil {
				return fmt.Errorf("drop %s: %w", name, err)
			}
		}
	}

	st := store.New(db)
	if err := st.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	bySKU := make(map[string]*datatypes.Product, len(sampleProducts))
	for i := range sampleProducts {
		p := sampleProducts[i]
		if err := st.InsertProduct(ctx, &p); err != nil {
			return fmt.Errorf("insert product %s: %w", p.SKU, err)
		}
		bySKU[p.SKU] = &p
	}

	linker := linkage.NewLinker(st, nil, nil)
	for _, sc := range sampleCollections {
		coll := sc.collection
		if err := st.InsertCollection(ctx, &coll); err != nil {
			return fmt.Errorf("insert collection %s: %w", coll.Name, err)
		}

		memberIDs := make([]primitive.ObjectID, 0, len(sc.skus))
		for _, sku := range sc.skus {
			p, ok := bySKU[sku]
			if !ok {
				return fmt.Errorf("collection %s references unknown SKU %s", coll.Name, sku)
			}
			memberIDs = append(memberIDs, p.ID)
		}
		if _, err := linker.AddProducts(ctx, coll.ID, memberIDs); err != nil {
			return fmt.Errorf("link products into %s: %w", coll.Name, err)
		}
	}

	return nil
}
