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

	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
)

// SessionByToken loads an anonymous session by its opaque cookie token.
// Expired sessions are reaped by the TTL index, so a hit here is live by
// definition.
func (s *Store) SessionByToken(ctx context.Context, token string) (*datatypes.Session, error) {
	var sess datatypes.Session
	err := s.sessions.FindOne(ctx, bson.M{"sessionId": token}).Decode(&sess)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("Session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &sess, nil
}

// InsertSession stores a freshly created anonymous session.
func (s *Store) InsertSession(ctx context.Context, sess *datatypes.Session) error {
	now := time.Now().UTC()
	sess.CreatedAt = now
	sess.LastActive = now
	if sess.Favorites == nil {
		sess.Favorites = []primitive.ObjectID{}
	}

	res, err := s.sessions.InsertOne(ctx, sess)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	sess.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// TouchSession refreshes lastActive, pushing the TTL expiry out.
func (s *Store) TouchSession(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.sessions.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"lastActive": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("touch session %s: %w", id.Hex(), err)
	}
	return nil
}

// SessionFavorites returns the favorites set of a session.
func (s *Store) SessionFavorites(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	var sess datatypes.Session
	err := s.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&sess)
	if isNoDocuments(err) {
		return nil, datatypes.BadRequest("Session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find session %s: %w", id.Hex(), err)
	}
	return sess.Favorites, nil
}

// AddSessionFavorite adds a product reference to the session's favorites.
// $addToSet makes repeat adds a no-op.
func (s *Store) AddSessionFavorite(ctx context.Context, id, productID primitive.ObjectID) error {
	_, err := s.sessions.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"favorites": productID}},
	)
	if err != nil {
		return fmt.Errorf("add favorite to session %s: %w", id.Hex(), err)
	}
	return nil
}

// RemoveSessionFavorite removes a product reference; absent references
// are a no-op.
func (s *Store) RemoveSessionFavorite(ctx context.Context, id, productID primitive.ObjectID) error {
	_, err := s.sessions.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"favorites": productID}},
	)
	if err != nil {
		return fmt.Errorf("remove favorite from session %s: %w", id.Hex(), err)
	}
	return nil
}

// ClearSessionFavorites empties the session's favorites set (used after
// merge-on-auth and by the explicit clear operation).
func (s *Store) ClearSessionFavorites(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.sessions.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"favorites": []primitive.ObjectID{}}},
	)
	if err != nil {
		return fmt.Errorf("clear favorites for session %s: %w", id.Hex(), err)
	}
	return nil
}

// DeleteSessionByToken destroys a session explicitly (logout). Deleting a
// token that no longer exists is not an error.
func (s *Store) DeleteSessionByToken(ctx context.Context, token string) error {
	_, err := s.sessions.DeleteOne(ctx, bson.M{"sessionId": token})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
