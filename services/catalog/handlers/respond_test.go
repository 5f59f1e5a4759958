// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/fifthjohnson/storefront/pkg/logging"
	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logging.Logger {
	return logging.New(logging.Config{Quiet: true})
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a valid envelope: %v; body: %s", err, w.Body.String())
	}
	return env
}

func TestRespondError_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", datatypes.NotFound("Product not found"), http.StatusNotFound, "Product not found"},
		{"bad request", datatypes.BadRequest("Invalid collection ID"), http.StatusBadRequest, "Invalid collection ID"},
		{"conflict", datatypes.Conflict("A product with this slug already exists"), http.StatusConflict, "A product with this slug already exists"},
		{"unauthorized", datatypes.Unauthorized("Authentication required"), http.StatusUnauthorized, "Authentication required"},
		{"opaque internal", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}
	log := quietLogger()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/v1/products", nil)

			respondError(c, log, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			env := decodeEnvelope(t, w)
			if env.Success {
				t.Error("error envelope must report success=false")
			}
			if env.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMsg)
			}
		})
	}
}

func TestRespondError_NeverLeaksCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/products", nil)

	respondError(c, quietLogger(), errors.New("mongodb://admin:hunter2@db:27017 unreachable"))

	if strings.Contains(w.Body.String(), "hunter2") {
		t.Error("internal error details must not reach the client")
	}
}

func TestRespondBindError_ValidationFields(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/auth/register",
		strings.NewReader(`{"name":"A","email":"not-an-email","password":"short"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req datatypes.RegisterRequest
	err := c.ShouldBindJSON(&req)
	if err == nil {
		t.Fatal("binding should fail for an invalid email")
	}
	respondBindError(c, err)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Message != "Validation failed" {
		t.Errorf("message = %q, want %q", env.Message, "Validation failed")
	}
	if len(env.Errors) == 0 {
		t.Fatal("validation failure should carry field errors")
	}
	for _, fe := range env.Errors {
		if fe.Field == "" || fe.Message == "" {
			t.Errorf("field error is incomplete: %+v", fe)
		}
		if fe.Field[0] >= 'A' && fe.Field[0] <= 'Z' {
			t.Errorf("field name %q should be lower camel case", fe.Field)
		}
	}
}

func TestRespondBindError_MalformedJSON(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/contact", strings.NewReader(`{not json`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req datatypes.ContactRequest
	err := c.ShouldBindJSON(&req)
	if err == nil {
		t.Fatal("binding should fail for malformed JSON")
	}
	respondBindError(c, err)

	env := decodeEnvelope(t, w)
	if env.Message != "Invalid request body" {
		t.Errorf("message = %q, want %q", env.Message, "Invalid request body")
	}
	if len(env.Errors) != 0 {
		t.Errorf("malformed JSON should not carry field errors, got %+v", env.Errors)
	}
}

func TestEnvelope_OmitsEmptyParts(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondOK(c, "OK", nil)

	body := w.Body.String()
	if strings.Contains(body, `"data"`) {
		t.Errorf("nil data should be omitted, body: %s", body)
	}
	if strings.Contains(body, `"errors"`) {
		t.Errorf("success envelope should omit errors, body: %s", body)
	}
}
