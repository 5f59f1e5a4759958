// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package identity resolves each inbound request to exactly one favorites
// owner: a registered account or an anonymous session.
//
// # Resolution
//
// A request's session cookie names an anonymous session. If the session
// exists it is reused and its last-active timestamp refreshed; otherwise
// a new session with a fresh unguessable token is created and the caller
// is told to set a cookie. A valid bearer credential takes precedence as
// the effective identity, with the anonymous session kept attached for
// the one-time merge below.
//
// # Merge-on-auth
//
// Immediately after login or registration, the anonymous session's
// favorites are unioned into the account's set and the session's set is
// cleared. The two writes are not transactional; if the clear fails the
// union simply runs again on the next login, which is harmless because
// the union is idempotent.
//
// # Degradation
//
// Store errors during resolution never fail the request. The request
// proceeds without an identity and favorites operations report "Session
// not found".
package identity

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
)

// SessionStore is the slice of the data layer the resolver needs for
// anonymous sessions.
type SessionStore interface {
	SessionByToken(ctx context.Context, token string) (*datatypes.Session, error)
	InsertSession(ctx context.Context, sess *datatypes.Session) error
	TouchSession(ctx context.Context, id primitive.ObjectID) error
	ClearSessionFavorites(ctx context.Context, id primitive.ObjectID) error
	DeleteSessionByToken(ctx context.Context, token string) error
}

// AccountStore is the slice of the data layer the resolver needs for
// merge-on-auth.
type AccountStore interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*datatypes.User, error)
	SetUserFavorites(ctx context.Context, id primitive.ObjectID, favorites []primitive.ObjectID) error
}

// Resolver maps requests to identities and performs the merge-on-auth
// step.
type Resolver struct {
	sessions SessionStore
	accounts AccountStore
	log      *slog.Logger
}

// NewResolver builds a Resolver. A nil logger falls back to slog.Default.
func NewResolver(sessions SessionStore, accounts AccountStore, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{sessions: sessions, accounts: accounts, log: log}
}

// Resolve loads the session named by token, or creates a new one when the
// token is empty or stale. The second return value is true when a fresh
// session was created and the caller must set the cookie.
func (r *Resolver) Resolve(ctx context.Context, token string) (*datatypes.Session, bool, error) {
	if token != "" {
		sess, err := r.sessions.SessionByToken(ctx, token)
		if err == nil {
			if err := r.sessions.TouchSession(ctx, sess.ID); err != nil {
				// Not fatal: the session is still usable, the TTL
				// window just doesn't slide this request.
				r.log.Warn("failed to refresh session activity", "error", err)
			}
			return sess, false, nil
		}
		if datatypes.AsAPIError(err).Kind != datatypes.KindNotFound {
			return nil, false, err
		}
		// Stale or invalid token: fall through and mint a new session.
	}

	sess := &datatypes.Session{Token: uuid.NewString()}
	if err := r.sessions.InsertSession(ctx, sess); err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// MergeOnAuth unions the anonymous session's favorites into the account
// and clears the session set. Call it once right after a successful login
// or registration. A nil or empty session is a no-op.
func (r *Resolver) MergeOnAuth(ctx context.Context, accountID primitive.ObjectID, sess *datatypes.Session) error {
	if sess == nil || len(sess.Favorites) == 0 {
		return nil
	}

	user, err := r.accounts.UserByID(ctx, accountID)
	if err != nil {
		return err
	}

	merged := unionRefs(user.Favorites, sess.Favorites)
	if err := r.accounts.SetUserFavorites(ctx, accountID, merged); err != nil {
		return err
	}

	if err := r.sessions.ClearSessionFavorites(ctx, sess.ID); err != nil {
		// Best effort: the union above is idempotent, so a failed clear
		// self-heals on the next login.
		r.log.Warn("failed to clear session favorites after merge",
			"session_id", sess.ID.Hex(), "error", err)
	}
	sess.Favorites = nil

	r.log.Info("merged session favorites into account",
		"account_id", accountID.Hex(), "merged_count", len(merged))
	return nil
}

// Destroy deletes the session named by token (logout). An unknown token
// is not an error.
func (r *Resolver) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return r.sessions.DeleteSessionByToken(ctx, token)
}

// unionRefs merges two reference lists preserving first-seen order and
// dropping duplicates.
func unionRefs(a, b []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(a)+len(b))
	out := make([]primitive.ObjectID, 0, len(a)+len(b))
	for _, list := range [][]primitive.ObjectID{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
