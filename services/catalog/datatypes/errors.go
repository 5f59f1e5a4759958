// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes defines the entities, request/response shapes, and the
// error taxonomy shared across the catalog service.
//
// Entities mirror the MongoDB documents one-to-one (bson tags are the
// storage schema, json tags are the API schema). Derived fields such as
// Product.Rating and Collection.Metadata.ProductCount are owned by exactly
// one recomputation routine; nothing else may write them.
package datatypes

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an APIError into one of the response categories
// the storefront exposes to clients.
type ErrorKind int

const (
	KindBadRequest ErrorKind = iota
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindInternal
)

// FieldError describes a single invalid input field. A validation failure
// carries one FieldError per offending field in the response envelope.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is the error type every handler understands. Domain packages
// return it directly for expected failures; unexpected errors are wrapped
// as KindInternal at the handler boundary.
type APIError struct {
	Kind    ErrorKind
	Message string
	Fields  []FieldError
	cause   error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.cause }

// Status maps the error kind to its HTTP status code.
func (e *APIError) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest builds a 400-class error.
func BadRequest(message string) *APIError {
	return &APIError{Kind: KindBadRequest, Message: message}
}

// BadRequestFields builds a 400-class error carrying per-field details.
func BadRequestFields(message string, fields []FieldError) *APIError {
	return &APIError{Kind: KindBadRequest, Message: message, Fields: fields}
}

// NotFound builds a 404-class error.
func NotFound(message string) *APIError {
	return &APIError{Kind: KindNotFound, Message: message}
}

// Unauthorized builds a 401-class error.
func Unauthorized(message string) *APIError {
	return &APIError{Kind: KindUnauthorized, Message: message}
}

// Forbidden builds a 403-class error.
func Forbidden(message string) *APIError {
	return &APIError{Kind: KindForbidden, Message: message}
}

// Conflict builds a 409-class error, typically from duplicate-key
// detection on unique slug/SKU/email indexes.
func Conflict(message string) *APIError {
	return &APIError{Kind: KindConflict, Message: message}
}

// Internal wraps an unexpected error. The wrapped cause is logged but
// never serialized to clients.
func Internal(err error) *APIError {
	return &APIError{Kind: KindInternal, Message: "Internal server error", cause: err}
}

// AsAPIError extracts an *APIError from err, wrapping unknown errors as
// KindInternal so handlers always have a status to report.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}
