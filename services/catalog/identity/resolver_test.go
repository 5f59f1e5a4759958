// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package identity

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
)

type fakeSessions struct {
	byToken   map[string]*datatypes.Session
	inserted  []*datatypes.Session
	touched   []primitive.ObjectID
	cleared   []primitive.ObjectID
	deleted   []string
	lookupErr error
	insertErr error
	clearErr  error
}

func (f *fakeSessions) SessionByToken(_ context.Context, token string) (*datatypes.Session, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	sess, ok := f.byToken[token]
	if !ok {
		return nil, datatypes.NotFound("Session not found")
	}
	return sess, nil
}

func (f *fakeSessions) InsertSession(_ context.Context, sess *datatypes.Session) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	sess.ID = primitive.NewObjectID()
	f.inserted = append(f.inserted, sess)
	return nil
}

func (f *fakeSessions) TouchSession(_ context.Context, id primitive.ObjectID) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeSessions) ClearSessionFavorites(_ context.Context, id primitive.ObjectID) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, id)
	return nil
}

func (f *fakeSessions) DeleteSessionByToken(_ context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeAccounts struct {
	users map[primitive.ObjectID]*datatypes.User
	saved map[primitive.ObjectID][]primitive.ObjectID
}

func (f *fakeAccounts) UserByID(_ context.Context, id primitive.ObjectID) (*datatypes.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, datatypes.NotFound("User not found")
	}
	return user, nil
}

func (f *fakeAccounts) SetUserFavorites(_ context.Context, id primitive.ObjectID, favorites []primitive.ObjectID) error {
	if f.saved == nil {
		f.saved = make(map[primitive.ObjectID][]primitive.ObjectID)
	}
	f.saved[id] = favorites
	return nil
}

func TestResolver_Resolve_ReusesExistingSession(t *testing.T) {
	existing := &datatypes.Session{ID: primitive.NewObjectID(), Token: "tok-1"}
	sessions := &fakeSessions{byToken: map[string]*datatypes.Session{"tok-1": existing}}
	r := NewResolver(sessions, &fakeAccounts{}, nil)

	sess, created, err := r.Resolve(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if created {
		t.Error("Resolve should not report created for a known token")
	}
	if sess.ID != existing.ID {
		t.Errorf("Resolve returned session %s, want %s", sess.ID.Hex(), existing.ID.Hex())
	}
	if len(sessions.touched) != 1 || sessions.touched[0] != existing.ID {
		t.Errorf("Resolve should refresh the session's activity window, touched = %v", sessions.touched)
	}
}

func TestResolver_Resolve_MintsSessionForEmptyToken(t *testing.T) {
	sessions := &fakeSessions{}
	r := NewResolver(sessions, &fakeAccounts{}, nil)

	sess, created, err := r.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !created {
		t.Error("Resolve should report created for an empty token")
	}
	if sess.Token == "" {
		t.Error("minted session must carry a token")
	}
	if len(sessions.inserted) != 1 {
		t.Fatalf("expected one inserted session, got %d", len(sessions.inserted))
	}
}

func TestResolver_Resolve_MintsSessionForStaleToken(t *testing.T) {
	sessions := &fakeSessions{byToken: map[string]*datatypes.Session{}}
	r := NewResolver(sessions, &fakeAccounts{}, nil)

	sess, created, err := r.Resolve(context.Background(), "expired-tok")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !created {
		t.Error("a stale token must mint a fresh session")
	}
	if sess.Token == "expired-tok" {
		t.Error("the stale token must not be reused")
	}
}

func TestResolver_Resolve_TokensAreUnique(t *testing.T) {
	sessions := &fakeSessions{}
	r := NewResolver(sessions, &fakeAccounts{}, nil)

	a, _, err := r.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	b, _, err := r.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if a.Token == b.Token {
		t.Error("two minted sessions must not share a token")
	}
}

func TestResolver_Resolve_PropagatesStoreError(t *testing.T) {
	sessions := &fakeSessions{lookupErr: errors.New("server selection timeout")}
	r := NewResolver(sessions, &fakeAccounts{}, nil)

	if _, _, err := r.Resolve(context.Background(), "tok"); err == nil {
		t.Fatal("a non-NotFound store error must propagate")
	}
	if len(sessions.inserted) != 0 {
		t.Error("a store failure must not mint a replacement session")
	}
}

func TestResolver_MergeOnAuth_UnionsAndClears(t *testing.T) {
	shared := primitive.NewObjectID()
	onlyUser := primitive.NewObjectID()
	onlySession := primitive.NewObjectID()

	accountID := primitive.NewObjectID()
	accounts := &fakeAccounts{users: map[primitive.ObjectID]*datatypes.User{
		accountID: {ID: accountID, Favorites: []primitive.ObjectID{onlyUser, shared}},
	}}
	sess := &datatypes.Session{
		ID:        primitive.NewObjectID(),
		Favorites: []primitive.ObjectID{shared, onlySession},
	}
	sessions := &fakeSessions{}
	r := NewResolver(sessions, accounts, nil)

	if err := r.MergeOnAuth(context.Background(), accountID, sess); err != nil {
		t.Fatalf("MergeOnAuth returned error: %v", err)
	}

	merged := accounts.saved[accountID]
	want := []primitive.ObjectID{onlyUser, shared, onlySession}
	if len(merged) != len(want) {
		t.Fatalf("merged set has %d entries, want %d: %v", len(merged), len(want), merged)
	}
	for i, id := range want {
		if merged[i] != id {
			t.Errorf("merged[%d] = %s, want %s", i, merged[i].Hex(), id.Hex())
		}
	}
	if len(sessions.cleared) != 1 || sessions.cleared[0] != sess.ID {
		t.Errorf("session favorites should be cleared, cleared = %v", sessions.cleared)
	}
	if sess.Favorites != nil {
		t.Error("in-memory session favorites should be nil after merge")
	}
}

func TestResolver_MergeOnAuth_EmptySessionIsNoop(t *testing.T) {
	accounts := &fakeAccounts{}
	r := NewResolver(&fakeSessions{}, accounts, nil)

	if err := r.MergeOnAuth(context.Background(), primitive.NewObjectID(), nil); err != nil {
		t.Errorf("nil session should be a no-op, got %v", err)
	}
	if err := r.MergeOnAuth(context.Background(), primitive.NewObjectID(), &datatypes.Session{}); err != nil {
		t.Errorf("empty session should be a no-op, got %v", err)
	}
	if len(accounts.saved) != 0 {
		t.Error("no-op merge must not write account favorites")
	}
}

func TestResolver_MergeOnAuth_ClearFailureIsNotFatal(t *testing.T) {
	accountID := primitive.NewObjectID()
	fav := primitive.NewObjectID()
	accounts := &fakeAccounts{users: map[primitive.ObjectID]*datatypes.User{
		accountID: {ID: accountID},
	}}
	sessions := &fakeSessions{clearErr: errors.New("write failed")}
	r := NewResolver(sessions, accounts, nil)

	sess := &datatypes.Session{ID: primitive.NewObjectID(), Favorites: []primitive.ObjectID{fav}}
	if err := r.MergeOnAuth(context.Background(), accountID, sess); err != nil {
		t.Fatalf("a failed clear must not fail the merge: %v", err)
	}
	if len(accounts.saved[accountID]) != 1 {
		t.Error("the union must still be persisted")
	}
}

func TestResolver_Destroy(t *testing.T) {
	sessions := &fakeSessions{}
	r := NewResolver(sessions, &fakeAccounts{}, nil)

	if err := r.Destroy(context.Background(), "tok-9"); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}
	if len(sessions.deleted) != 1 || sessions.deleted[0] != "tok-9" {
		t.Errorf("Destroy should delete by token, deleted = %v", sessions.deleted)
	}

	if err := r.Destroy(context.Background(), ""); err != nil {
		t.Errorf("empty token should be a no-op, got %v", err)
	}
	if len(sessions.deleted) != 1 {
		t.Error("empty token must not reach the store")
	}
}
