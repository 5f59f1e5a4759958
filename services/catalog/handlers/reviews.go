// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fifthjohnson/storefront/pkg/logging"
	"github.com/fifthjohnson/storefront/pkg/validation"
	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
	"github.com/fifthjohnson/storefront/services/catalog/notify"
	"github.com/fifthjohnson/storefront/services/catalog/rating"
	"github.com/fifthjohnson/storefront/services/catalog/store"
)

// notifyTimeout bounds the background delivery of review/contact
// notifications, which outlive the request context.
const notifyTimeout = 30 * time.Second

// =============================================================================
// Public Review Handlers
// =============================================================================

// ListProductReviews returns the approved reviews for a product, newest
// first.
func ListProductReviews(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid product ID"))
			return
		}

		reviews, err := st.ApprovedReviewsForProduct(c.Request.Context(), productID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Reviews retrieved", reviews)
	}
}

// CreateReview submits a review for a product. Reviews start unapproved;
// the rating recompute after insert reflects only the approved set.
func CreateReview(st *store.Store, agg *rating.Aggregator, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid product ID"))
			return
		}

		var req datatypes.CreateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		ctx := c.Request.Context()
		if _, err := st.ActiveProductByID(ctx, productID); err != nil {
			respondError(c, log, err)
			return
		}

		review := &datatypes.Review{
			ProductID: productID,
			Name:      req.Name,
			Email:     req.Email,
			Rating:    req.Rating,
			Comment:   req.Comment,
		}
		if err := st.InsertReview(ctx, review); err != nil {
			respondError(c, log, err)
			return
		}

		agg.RecomputeLogged(ctx, productID)

		log.Info("review submitted", "review_id", review.ID.Hex(), "product_id", productID.Hex())
		respondCreated(c, "Review submitted and pending approval", review)
	}
}

// =============================================================================
// Admin Review Handlers
// =============================================================================

// parseReviewFilter assembles the admin review listing filter.
func parseReviewFilter(c *gin.Context) (store.ReviewFilter, error) {
	var filter store.ReviewFilter

	if raw := c.Query("product"); raw != "" {
		id, err := validation.ParseObjectID(raw)
		if err != nil {
			return filter, datatypes.BadRequest("Invalid product ID")
		}
		filter.Product = &id
	}
	approved, err := parseBoolParam(c, "isApproved")
	if err != nil {
		return filter, err
	}
	filter.IsApproved = approved

	if raw := c.Query("minRating"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, datatypes.BadRequest("Invalid minRating")
		}
		filter.MinRating = &v
	}
	if raw := c.Query("maxRating"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, datatypes.BadRequest("Invalid maxRating")
		}
		filter.MaxRating = &v
	}
	return filter, nil
}

// AdminListReviews returns reviews across all products, approved or not.
func AdminListReviews(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseReviewFilter(c)
		if err != nil {
			respondError(c, log, err)
			return
		}

		reviews, pages, err := st.ListReviews(c.Request.Context(), filter, parsePage(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Reviews retrieved", gin.H{
			"reviews":    reviews,
			"pagination": pages,
		})
	}
}

// ApproveReview toggles a review's approval and recomputes the product
// rating from the new approved set. The recompute runs in-request so
// the returned review is consistent with the displayed rating.
func ApproveReview(st *store.Store, agg *rating.Aggregator, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid review ID"))
			return
		}

		var req datatypes.ApproveReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		ctx := c.Request.Context()
		review, err := st.SetReviewApproval(ctx, id, *req.IsApproved)
		if err != nil {
			respondError(c, log, err)
			return
		}

		agg.RecomputeLogged(ctx, review.ProductID)

		message := "Review approved"
		if !*req.IsApproved {
			message = "Review unapproved"
		}
		respondOK(c, message, review)
	}
}

// RespondToReview attaches an admin response and notifies the reviewer
// by email. Delivery is best effort; a failed send never fails the
// request.
func RespondToReview(st *store.Store, agg *rating.Aggregator, sender notify.EmailSender, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid review ID"))
			return
		}

		var req datatypes.RespondReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		ctx := c.Request.Context()
		review, err := st.SetReviewResponse(ctx, id, req.Response)
		if err != nil {
			respondError(c, log, err)
			return
		}

		agg.RecomputeLogged(ctx, review.ProductID)

		if sender != nil && review.Email != "" {
			product, err := st.ProductByID(ctx, review.ProductID)
			productName := "your purchase"
			if err == nil {
				productName = product.Name
			}
			go func(to, name, productName, response string) {
				ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
				defer cancel()

				body, err := notify.RenderReviewResponse(name, productName, response)
				if err == nil {
					err = sender.Send(ctx, to, "We replied to your review", body)
				}
				if err != nil {
					log.Warn("review response email failed", "review_id", id.Hex(), "error", err)
				}
			}(review.Email, review.Name, productName, req.Response)
		}

		respondOK(c, "Response added to review", review)
	}
}

// DeleteReview removes a review and recomputes the product rating.
func DeleteReview(st *store.Store, agg *rating.Aggregator, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid review ID"))
			return
		}

		ctx := c.Request.Context()
		review, err := st.ReviewByID(ctx, id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		if err := st.DeleteReview(ctx, id); err != nil {
			respondError(c, log, err)
			return
		}

		agg.RecomputeLogged(ctx, review.ProductID)

		log.Info("review deleted", "review_id", id.Hex(), "product_id", review.ProductID.Hex())
		respondOK(c, "Review deleted", nil)
	}
}
