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

// ReviewFilter narrows an admin review listing.
type ReviewFilter struct {
	Product    *primitive.ObjectID
	IsApproved *bool
	MinRating  *int
	MaxRating  *int
}

func (f ReviewFilter) query() bson.M {
	q := bson.M{}
	if f.Product != nil {
		q["product"] = *f.Product
	}
	if f.IsApproved != nil {
		q["isApproved"] = *f.IsApproved
	}
	if f.MinRating != nil || f.MaxRating != nil {
		rating := bson.M{}
		if f.MinRating != nil {
			rating["$gte"] = *f.MinRating
		}
		if f.MaxRating != nil {
			rating["$lte"] = *f.MaxRating
		}
		q["rating"] = rating
	}
	return q
}

// InsertReview stores a new review. Reviews always start unapproved
// regardless of the submitted payload.
func (s *Store) InsertReview(ctx context.Context, r *datatypes.Review) error {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	r.IsApproved = false

	res, err := s.reviews.InsertOne(ctx, r)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	r.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ReviewByID loads a review.
func (s *Store) ReviewByID(ctx context.Context, id primitive.ObjectID) (*datatypes.Review, error) {
	var r datatypes.Review
	err := s.reviews.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("Review not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find review %s: %w", id.Hex(), err)
	}
	return &r, nil
}

// ApprovedReviewsForProduct returns the approved reviews for a product,
// newest first. The public product page reads these.
func (s *Store) ApprovedReviewsForProduct(ctx context.Context, productID primitive.ObjectID) ([]datatypes.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.reviews.Find(ctx, bson.M{"product": productID, "isApproved": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews for product %s: %w", productID.Hex(), err)
	}
	reviews := []datatypes.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}

// ApprovedRatings returns only the integer ratings of a product's
// approved reviews. This is the rating aggregator's read.
func (s *Store) ApprovedRatings(ctx context.Context, productID primitive.ObjectID) ([]int, error) {
	reviews, err := s.ApprovedReviewsForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	ratings := make([]int, 0, len(reviews))
	for _, r := range reviews {
		ratings = append(ratings, r.Rating)
	}
	return ratings, nil
}

// ListReviews returns one page of reviews for the admin screen.
func (s *Store) ListReviews(ctx context.Context, filter ReviewFilter, page Page) ([]datatypes.Review, PageInfo, error) {
	q := filter.query()
	skip, limit := page.normalize()

	total, err := s.reviews.CountDocuments(ctx, q)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("count reviews: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.reviews.Find(ctx, q, opts)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("list reviews: %w", err)
	}
	reviews := []datatypes.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, PageInfo{}, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, pageInfo(page, total), nil
}

// SetReviewApproval flips the approval flag and returns the updated
// review. The caller must recompute the product rating afterwards.
func (s *Store) SetReviewApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*datatypes.Review, error) {
	res := s.reviews.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isApproved": approved, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var r datatypes.Review
	err := res.Decode(&r)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("Review not found")
	}
	if err != nil {
		return nil, fmt.Errorf("set approval for review %s: %w", id.Hex(), err)
	}
	return &r, nil
}

// SetReviewResponse stores the admin response text.
func (s *Store) SetReviewResponse(ctx context.Context, id primitive.ObjectID, response string) (*datatypes.Review, error) {
	res := s.reviews.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"response": response, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var r datatypes.Review
	err := res.Decode(&r)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("Review not found")
	}
	if err != nil {
		return nil, fmt.Errorf("set response for review %s: %w", id.Hex(), err)
	}
	return &r, nil
}

// DeleteReview removes a review. The caller must recompute the product
// rating afterwards.
func (s *Store) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.reviews.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete review %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return datatypes.NotFound("Review not found")
	}
	return nil
}
