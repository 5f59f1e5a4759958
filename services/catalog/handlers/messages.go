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
	"github.com/fifthjohnson/storefront/pkg/validation"
	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
	"github.com/fifthjohnson/storefront/services/catalog/notify"
	"github.com/fifthjohnson/storefront/services/catalog/store"
)

// parseMessageFilter assembles the admin message listing filter.
func parseMessageFilter(c *gin.Context) (store.MessageFilter, error) {
	var filter store.MessageFilter

	if raw := c.Query("status"); raw != "" {
		status := datatypes.MessageStatus(raw)
		if !datatypes.ValidMessageStatus(status) {
			return filter, datatypes.BadRequest("Invalid status filter")
		}
		filter.Status = &status
	}
	isRead, err := parseBoolParam(c, "isRead")
	if err != nil {
		return filter, err
	}
	filter.IsRead = isRead
	return filter, nil
}

// ListMessages returns the admin contact-message listing. Soft-deleted
// messages never appear.
func ListMessages(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseMessageFilter(c)
		if err != nil {
			respondError(c, log, err)
			return
		}

		messages, pages, err := st.ListMessages(c.Request.Context(), filter, parsePage(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Messages retrieved", gin.H{
			"messages":   messages,
			"pagination": pages,
		})
	}
}

// GetMessage returns one contact message and marks it read.
func GetMessage(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid message ID"))
			return
		}

		message, err := st.MarkMessageRead(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Message retrieved", message)
	}
}

// UpdateMessageStatus moves a message through the support workflow.
func UpdateMessageStatus(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid message ID"))
			return
		}

		var req datatypes.UpdateMessageStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		if !datatypes.ValidMessageStatus(req.Status) {
			respondError(c, log, datatypes.BadRequest("Invalid status"))
			return
		}

		message, err := st.SetMessageStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respondOK(c, "Message status updated", message)
	}
}

// RespondToMessage records a reply and emails it to the sender. The
// reply is persisted first; a failed send only logs.
func RespondToMessage(st *store.Store, sender notify.EmailSender, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid message ID"))
			return
		}

		var req datatypes.RespondMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		message, err := st.SetMessageResponse(c.Request.Context(), id, req.Response)
		if err != nil {
			respondError(c, log, err)
			return
		}

		if sender != nil {
			go func(to, name, subject, response string) {
				ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
				defer cancel()

				body, err := notify.RenderContactResponse(name, subject, response)
				if err == nil {
					err = sender.Send(ctx, to, "Re: "+subject, body)
				}
				if err != nil {
					log.Warn("contact response email failed",
						"message_id", id.Hex(), "error", err)
				}
			}(message.Email, message.Name, message.Subject, req.Response)
		}

		respondOK(c, "Response sent", message)
	}
}

// DeleteMessage soft-deletes a message. It disappears from listings but
// stays in the store for audit.
func DeleteMessage(st *store.Store, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.ParseObjectID(c.Param("id"))
		if err != nil {
			respondError(c, log, datatypes.BadRequest("Invalid message ID"))
			return
		}

		if err := st.SoftDeleteMessage(c.Request.Context(), id); err != nil {
			respondError(c, log, err)
			return
		}

		log.Info("contact message deleted", "message_id", id.Hex())
		respondOK(c, "Message deleted", nil)
	}
}
