// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the HTTP handlers for the catalog service.
//
// Handlers are constructed as closures over their dependencies and
// return gin.HandlerFunc, so routes.go reads as a plain wiring table.
// Every response uses the same JSON envelope:
//
//	{"success": true,  "message": "...", "data": ...}
//	{"success": false, "message": "...", "errors": [...]}
//
// The errors array appears only on validation failures, one entry per
// offending field.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/fifthjohnson/storefront/pkg/logging"
	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
)

// envelope is the uniform response body.
type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    any                    `json:"data,omitempty"`
	Errors  []datatypes.FieldError `json:"errors,omitempty"`
}

// respondOK writes a 200 success envelope.
func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// respondCreated writes a 201 success envelope.
func respondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

// respondError maps a domain error onto the envelope. Unrecognized
// errors become opaque 500s; the cause goes to the log, never the
// client.
func respondError(c *gin.Context, log *logging.Logger, err error) {
	apiErr := datatypes.AsAPIError(err)

	if apiErr.Kind == datatypes.KindInternal {
		log.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err)
	}

	c.JSON(apiErr.Status(), envelope{
		Success: false,
		Message: apiErr.Message,
		Errors:  apiErr.Fields,
	})
}

// respondBindError converts a gin binding failure into a 400 envelope.
// Validator errors get one entry per field; malformed JSON gets a
// generic message.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]datatypes.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, datatypes.FieldError{
				Field:   strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
				Message: fieldMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, envelope{
			Success: false,
			Message: "Validation failed",
			Errors:  fields,
		})
		return
	}

	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Message: "Invalid request body",
	})
}

// fieldMessage renders a human-readable message for one failed rule.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Value is below the minimum of " + fe.Param()
	case "max":
		return "Value is above the maximum of " + fe.Param()
	case "objectid":
		return "Must be a valid identifier"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "gte":
		return "Must be at least " + fe.Param()
	case "url":
		return "Must be a valid URL"
	}
	return "Invalid value"
}
