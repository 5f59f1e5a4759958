// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testSecret = []byte("test-signing-key")

func init() {
	gin.SetMode(gin.TestMode)
}

func signedToken(t *testing.T, secret []byte, subject string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func authRouter(mw gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/protected", mw, func(c *gin.Context) {
		id, ok := GetAccountID(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"account": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"account": id.Hex()})
	})
	return router
}

func TestRequireAuth_ValidToken(t *testing.T) {
	accountID := primitive.NewObjectID()
	router := authRouter(RequireAuth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret, accountID.Hex(), time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), accountID.Hex()) {
		t.Errorf("handler should see the account ID, body: %s", w.Body.String())
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong key", "Bearer " + signedToken(t, []byte("other-key"), primitive.NewObjectID().Hex(), time.Hour)},
		{"expired", "Bearer " + signedToken(t, testSecret, primitive.NewObjectID().Hex(), -time.Hour)},
		{"subject not an id", "Bearer " + signedToken(t, testSecret, "alice", time.Hour)},
	}
	router := authRouter(RequireAuth(testSecret))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
			if !strings.Contains(w.Body.String(), "Authentication required") {
				t.Errorf("body = %s, want the auth envelope", w.Body.String())
			}
		})
	}
}

func TestRequireAuth_CaseInsensitiveBearer(t *testing.T) {
	accountID := primitive.NewObjectID()
	router := authRouter(RequireAuth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "bearer "+signedToken(t, testSecret, accountID.Hex(), time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (RFC 7235 scheme is case-insensitive)", w.Code)
	}
}

func TestOptionalAuth_ContinuesWithoutToken(t *testing.T) {
	router := authRouter(OptionalAuth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (anonymous requests pass through)", w.Code)
	}
	if !strings.Contains(w.Body.String(), "null") {
		t.Errorf("no account should be attached, body: %s", w.Body.String())
	}
}

func TestOptionalAuth_AttachesValidAccount(t *testing.T) {
	accountID := primitive.NewObjectID()
	router := authRouter(OptionalAuth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret, accountID.Hex(), time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), accountID.Hex()) {
		t.Errorf("valid token should attach the account, body: %s", w.Body.String())
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		provided   string
		wantStatus int
	}{
		{"correct key", "sekrit", "sekrit", http.StatusOK},
		{"wrong key", "sekrit", "guess", http.StatusUnauthorized},
		{"missing key", "sekrit", "", http.StatusUnauthorized},
		{"unconfigured disables admin", "", "", http.StatusUnauthorized},
		{"unconfigured rejects empty match", "", "anything", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/admin", RequireAdmin(tt.configured), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.provided != "" {
				req.Header.Set("x-api-key", tt.provided)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestGetAccountID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := GetAccountID(c); ok {
		t.Error("GetAccountID should report absence on a bare context")
	}
}
