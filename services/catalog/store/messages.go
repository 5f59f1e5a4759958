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

// MessageFilter narrows an admin contact-message listing. Soft-deleted
// messages are always excluded.
type MessageFilter struct {
	Status *datatypes.MessageStatus
	IsRead *bool
}

func (f MessageFilter) query() bson.M {
	q := bson.M{"isDeleted": bson.M{"$ne": true}}
	if f.Status != nil {
		q["responseStatus"] = *f.Status
	}
	if f.IsRead != nil {
		q["isRead"] = *f.IsRead
	}
	return q
}

// InsertMessage stores a contact-form submission.
func (s *Store) InsertMessage(ctx context.Context, m *datatypes.ContactMessage) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	m.Status = datatypes.MessageStatusPending

	res, err := s.messages.InsertOne(ctx, m)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// MessageByID loads a contact message, treating soft-deleted ones as
// missing.
func (s *Store) MessageByID(ctx context.Context, id primitive.ObjectID) (*datatypes.ContactMessage, error) {
	var m datatypes.ContactMessage
	err := s.messages.FindOne(ctx, bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}}).Decode(&m)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("Message not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find message %s: %w", id.Hex(), err)
	}
	return &m, nil
}

// ListMessages returns one page of non-deleted messages, newest first.
func (s *Store) ListMessages(ctx context.Context, filter MessageFilter, page Page) ([]datatypes.ContactMessage, PageInfo, error) {
	q := filter.query()
	skip, limit := page.normalize()

	total, err := s.messages.CountDocuments(ctx, q)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("count messages: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.messages.Find(ctx, q, opts)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("list messages: %w", err)
	}
	messages := []datatypes.ContactMessage{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, PageInfo{}, fmt.Errorf("decode messages: %w", err)
	}
	return messages, pageInfo(page, total), nil
}

// MarkMessageRead flags a message as read.
func (s *Store) MarkMessageRead(ctx context.Context, id primitive.ObjectID) (*datatypes.ContactMessage, error) {
	return s.updateMessage(ctx, id, bson.M{"isRead": true})
}

// SetMessageStatus moves a message through the support workflow.
func (s *Store) SetMessageStatus(ctx context.Context, id primitive.ObjectID, status datatypes.MessageStatus) (*datatypes.ContactMessage, error) {
	return s.updateMessage(ctx, id, bson.M{"responseStatus": status})
}

// SetMessageResponse stores the reply text and marks the message
// responded.
func (s *Store) SetMessageResponse(ctx context.Context, id primitive.ObjectID, response string) (*datatypes.ContactMessage, error) {
	return s.updateMessage(ctx, id, bson.M{
		"responseMessage": response,
		"responseStatus":  datatypes.MessageStatusResponded,
		"isRead":          true,
	})
}

// SoftDeleteMessage hides a message from listings without removing it.
func (s *Store) SoftDeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.messages.UpdateOne(ctx,
		bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("soft delete message %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return datatypes.NotFound("Message not found")
	}
	return nil
}

func (s *Store) updateMessage(ctx context.Context, id primitive.ObjectID, set bson.M) (*datatypes.ContactMessage, error) {
	set["updatedAt"] = time.Now().UTC()
	res := s.messages.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var m datatypes.ContactMessage
	err := res.Decode(&m)
	if isNoDocuments(err) {
		return nil, datatypes.NotFound("Message not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update message %s: %w", id.Hex(), err)
	}
	return &m, nil
}
