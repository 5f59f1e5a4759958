// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// SessionCookieName is the fixed cookie carrying the anonymous
	// session token.
	SessionCookieName = "5thJohnsonSession"

	// SessionTTL is the inactivity window after which an anonymous
	// session expires. Enforced by a Mongo TTL index on lastActive and
	// mirrored in the cookie max-age.
	SessionTTL = 30 * 24 * time.Hour
)

// Session is an anonymous browsing session keyed by an opaque token. It
// exists to track favorites before login; on login or registration its
// favorites are merged into the account and cleared here.
type Session struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Token      string               `bson:"sessionId" json:"-"`
	Favorites  []primitive.ObjectID `bson:"favorites" json:"favorites"`
	LastActive time.Time            `bson:"lastActive" json:"lastActive"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
}
