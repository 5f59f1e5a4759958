// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/fifthjohnson/storefront/pkg/logging"
	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
	"github.com/fifthjohnson/storefront/services/catalog/notify"
)

// ContactNotifier bundles the outbound channels a contact submission
// fans out to. Either field may be nil to disable that channel.
type ContactNotifier struct {
	Email    notify.EmailSender
	WhatsApp notify.WhatsAppSender

	// AlertPhone receives the staff WhatsApp ping for new inquiries.
	AlertPhone string
}

// ContactStore is the slice of the data layer the contact handler needs.
type ContactStore interface {
	InsertMessage(ctx context.Context, m *datatypes.ContactMessage) error
}

// SubmitContact stores a contact-form submission, emails the sender a
// confirmation, and pings staff over WhatsApp. Both notifications are
// best effort: the message is persisted before either is attempted, and
// a failed delivery only logs.
func SubmitContact(st ContactStore, notifier ContactNotifier, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		message := &datatypes.ContactMessage{
			Name:      req.Name,
			Email:     req.Email,
			Subject:   req.Subject,
			Message:   req.Message,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := st.InsertMessage(c.Request.Context(), message); err != nil {
			respondError(c, log, err)
			return
		}

		if notifier.Email != nil {
			go func(to, name, subject string) {
				ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
				defer cancel()

				body, err := notify.RenderContactConfirmation(name, subject)
				if err == nil {
					err = notifier.Email.Send(ctx, to, "We received your message", body)
				}
				if err != nil {
					log.Warn("contact confirmation email failed",
						"message_id", message.ID.Hex(), "error", err)
				}
			}(req.Email, req.Name, req.Subject)
		}
		if notifier.WhatsApp != nil && notifier.AlertPhone != "" {
			go func(subject, from string) {
				ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
				defer cancel()

				text := "New contact inquiry from " + from + ": " + subject
				if err := notifier.WhatsApp.SendText(ctx, notifier.AlertPhone, text); err != nil {
					log.Warn("contact WhatsApp alert failed",
						"message_id", message.ID.Hex(), "error", err)
				}
			}(req.Subject, req.Name)
		}

		log.Info("contact message received", "message_id", message.ID.Hex())
		respondCreated(c, "Message sent, we will get back to you soon", gin.H{"id": message.ID})
	}
}
