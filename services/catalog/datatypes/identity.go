// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "go.mongodb.org/mongo-driver/bson/primitive"

// IdentityKind tags the two owner variants a favorites set can have.
type IdentityKind string

const (
	IdentityAccount   IdentityKind = "account"
	IdentityAnonymous IdentityKind = "anonymous"
)

// Identity is the resolved owner of favorites for the current request:
// either a registered account or an anonymous session. It replaces the
// per-handler "if userId ... else if clientSession" branching with a
// single tagged variant every favorites operation is keyed on.
type Identity struct {
	Kind      IdentityKind
	AccountID primitive.ObjectID // set when Kind == IdentityAccount
	SessionID primitive.ObjectID // set when Kind == IdentityAnonymous
}

// AccountIdentity builds the registered-account variant.
func AccountIdentity(accountID primitive.ObjectID) Identity {
	return Identity{Kind: IdentityAccount, AccountID: accountID}
}

// AnonymousIdentity builds the anonymous-session variant.
func AnonymousIdentity(sessionID primitive.ObjectID) Identity {
	return Identity{Kind: IdentityAnonymous, SessionID: sessionID}
}
