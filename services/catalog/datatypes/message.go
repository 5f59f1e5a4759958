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

// MessageStatus tracks the support workflow state of a contact message.
type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "pending"
	MessageStatusResponded MessageStatus = "responded"
	MessageStatusClosed    MessageStatus = "closed"
)

// ValidMessageStatus reports whether s is one of the known workflow states.
func ValidMessageStatus(s MessageStatus) bool {
	switch s {
	case MessageStatusPending, MessageStatusResponded, MessageStatusClosed:
		return true
	}
	return false
}

// ContactMessage is a support inquiry submitted through the public
// contact form. Soft-deleted messages stay in the store but are excluded
// from admin listings.
type ContactMessage struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	Subject         string             `bson:"subject" json:"subject"`
	Message         string             `bson:"message" json:"message"`
	IsRead          bool               `bson:"isRead" json:"isRead"`
	Status          MessageStatus      `bson:"responseStatus" json:"responseStatus"`
	ResponseMessage string             `bson:"responseMessage,omitempty" json:"responseMessage,omitempty"`
	IsDeleted       bool               `bson:"isDeleted" json:"-"`
	IPAddress       string             `bson:"ipAddress,omitempty" json:"-"`
	UserAgent       string             `bson:"userAgent,omitempty" json:"-"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
