// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package favorites maintains the per-identity set of favorited products.
//
// All operations are keyed on the tagged Identity variant, so account and
// anonymous-session owners go through the same entry points. Adds and
// removes are idempotent set mutations; reads resolve references against
// the live catalog and silently drop products that have been deleted or
// deactivated since they were favorited (the stored references are left
// in place).
package favorites

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
)

// ProductSource resolves product references for validation and display.
type ProductSource interface {
	ActiveProductByID(ctx context.Context, id primitive.ObjectID) (*datatypes.Product, error)
	ActiveProductSummariesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]datatypes.ProductSummary, error)
}

// OwnerStore mutates the favorites set of either owner variant.
type OwnerStore interface {
	UserFavorites(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error)
	AddUserFavorite(ctx context.Context, id, productID primitive.ObjectID) error
	RemoveUserFavorite(ctx context.Context, id, productID primitive.ObjectID) error
	ClearUserFavorites(ctx context.Context, id primitive.ObjectID) error

	SessionFavorites(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error)
	AddSessionFavorite(ctx context.Context, id, productID primitive.ObjectID) error
	RemoveSessionFavorite(ctx context.Context, id, productID primitive.ObjectID) error
	ClearSessionFavorites(ctx context.Context, id primitive.ObjectID) error
}

// Service is the favorites store fronting both owner variants.
type Service struct {
	owners   OwnerStore
	products ProductSource
	log      *slog.Logger
}

// NewService builds a favorites Service. A nil logger falls back to
// slog.Default.
func NewService(owners OwnerStore, products ProductSource, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{owners: owners, products: products, log: log}
}

// errNoIdentity is the failure every operation reports when the request
// carries no resolved identity.
func errNoIdentity() error { return datatypes.BadRequest("Session not found") }

// Get returns summaries of the identity's favorited products that still
// resolve to active catalog entries.
func (s *Service) Get(ctx context.Context, id *datatypes.Identity) ([]datatypes.ProductSummary, error) {
	if id == nil {
		return nil, errNoIdentity()
	}

	var (
		refs []primitive.ObjectID
		err  error
	)
	switch id.Kind {
	case datatypes.IdentityAccount:
		refs, err = s.owners.UserFavorites(ctx, id.AccountID)
	case datatypes.IdentityAnonymous:
		refs, err = s.owners.SessionFavorites(ctx, id.SessionID)
	default:
		return nil, errNoIdentity()
	}
	if err != nil {
		return nil, err
	}

	return s.products.ActiveProductSummariesByIDs(ctx, refs)
}

// Add favorites a product for the identity. Fails with NotFound when the
// product does not resolve to an active catalog entry; adding a product
// that is already favorited succeeds without duplication.
func (s *Service) Add(ctx context.Context, id *datatypes.Identity, productID primitive.ObjectID) error {
	if id == nil {
		return errNoIdentity()
	}
	if _, err := s.products.ActiveProductByID(ctx, productID); err != nil {
		return err
	}

	switch id.Kind {
	case datatypes.IdentityAccount:
		return s.owners.AddUserFavorite(ctx, id.AccountID, productID)
	case datatypes.IdentityAnonymous:
		return s.owners.AddSessionFavorite(ctx, id.SessionID, productID)
	}
	return errNoIdentity()
}

// Remove unfavorites a product. Removing an absent reference succeeds.
func (s *Service) Remove(ctx context.Context, id *datatypes.Identity, productID primitive.ObjectID) error {
	if id == nil {
		return errNoIdentity()
	}

	switch id.Kind {
	case datatypes.IdentityAccount:
		return s.owners.RemoveUserFavorite(ctx, id.AccountID, productID)
	case datatypes.IdentityAnonymous:
		return s.owners.RemoveSessionFavorite(ctx, id.SessionID, productID)
	}
	return errNoIdentity()
}

// Clear empties the identity's favorites set.
func (s *Service) Clear(ctx context.Context, id *datatypes.Identity) error {
	if id == nil {
		return errNoIdentity()
	}

	switch id.Kind {
	case datatypes.IdentityAccount:
		return s.owners.ClearUserFavorites(ctx, id.AccountID)
	case datatypes.IdentityAnonymous:
		return s.owners.ClearSessionFavorites(ctx, id.SessionID)
	}
	return errNoIdentity()
}
