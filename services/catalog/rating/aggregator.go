// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package rating recomputes a product's displayed rating and review
// count from its approved reviews.
//
// The aggregator is the sole writer of Product.Rating and
// Product.ReviewCount. Recompute is a full overwrite, so redundant calls
// are safe; concurrent calls race with last-write-wins, which converges
// on the next trigger.
package rating

import (
	"context"
	"log/slog"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
)

// ReviewSource reads the approved ratings for a product.
type ReviewSource interface {
	ApprovedRatings(ctx context.Context, productID primitive.ObjectID) ([]int, error)
}

// ProductWriter persists the derived fields.
type ProductWriter interface {
	SetProductRating(ctx context.Context, id primitive.ObjectID, rating float64, count int) error
}

// Aggregator recomputes product rating summaries.
type Aggregator struct {
	reviews  ReviewSource
	products ProductWriter
	log      *slog.Logger
}

// NewAggregator builds an Aggregator. A nil logger falls back to
// slog.Default.
func NewAggregator(reviews ReviewSource, products ProductWriter, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{reviews: reviews, products: products, log: log}
}

// Recompute recalculates and persists the product's rating summary:
// the mean of its approved reviews' ratings rounded to one decimal, or 0
// with a zero count when there are none.
func (a *Aggregator) Recompute(ctx context.Context, productID primitive.ObjectID) (datatypes.RatingSummary, error) {
	ratings, err := a.reviews.ApprovedRatings(ctx, productID)
	if err != nil {
		return datatypes.RatingSummary{}, err
	}

	summary := Summarize(ratings)
	if err := a.products.SetProductRating(ctx, productID, summary.Rating, summary.ReviewCount); err != nil {
		return datatypes.RatingSummary{}, err
	}
	return summary, nil
}

// RecomputeLogged runs Recompute as a fire-and-forget follow-up: any
// failure is logged and swallowed so the triggering review mutation still
// reports success. The value becomes consistent on the next trigger.
func (a *Aggregator) RecomputeLogged(ctx context.Context, productID primitive.ObjectID) {
	if _, err := a.Recompute(ctx, productID); err != nil {
		a.log.Error("rating recompute failed",
			"product_id", productID.Hex(), "error", err)
	}
}

// Summarize computes the displayed summary for a set of approved
// ratings.
func Summarize(ratings []int) datatypes.RatingSummary {
	if len(ratings) == 0 {
		return datatypes.RatingSummary{Rating: 0, ReviewCount: 0}
	}
	total := 0
	for _, r := range ratings {
		total += r
	}
	mean := float64(total) / float64(len(ratings))
	return datatypes.RatingSummary{
		Rating:      math.Round(mean*10) / 10,
		ReviewCount: len(ratings),
	}
}
